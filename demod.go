// {{{ Copyright (c) Paul R. Tagliamonte <paul@k3xec.com>, 2022
//
// Permission is hereby granted, free of charge, to any person obtaining a copy
// of this software and associated documentation files (the "Software"), to deal
// in the Software without restriction, including without limitation the rights
// to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
// copies of the Software, and to permit persons to whom the Software is
// furnished to do so, subject to the following conditions:
//
// The above copyright notice and this permission notice shall be included in
// all copies or substantial portions of the Software.
//
// THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
// IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
// FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
// AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
// LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
// OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN
// THE SOFTWARE. }}}

package ssb

import (
	"errors"
	"math"

	"hz.tools/rf"
	"hz.tools/sdr"
)

const (
	// SampleRate is the rate of both the IQ stream the demodulator expects
	// and the audio it produces, in frames per second.
	SampleRate = 12000

	// Density is the oversampling factor of the oscillator tables. Tables
	// are built at SampleRate*Density and read every Density'th sample.
	Density = 2

	// tuneResolution is the step, in Hz, that retunes are rounded to.
	tuneResolution = 10

	// maxMix is the highest mix frequency magnitude, in Hz.
	maxMix = SampleRate/2 - 1
)

var (
	// ErrSampleRate is returned when an IQ stream is not at SampleRate.
	ErrSampleRate = errors.New("ssb: iq stream is not at the demodulator sample rate")

	// ErrNoReader is returned by Read on a Demodulator that was not built
	// with Demodulate.
	ErrNoReader = errors.New("ssb: demodulator has no iq reader")
)

// Reader will allow for the reading of demodulated 16 bit audio samples
// from an IQ stream.
type Reader interface {
	Read([]int16) (int, error)
}

// DemodulatorConfig will define how the demodulator should decode audio from
// the iq data.
type DemodulatorConfig struct {
	// RxFrequency is the offset of the signal from the center of the IQ
	// data. The receiver mixer shifts it down to zero.
	RxFrequency rf.Hz

	// BFOOffset is the frequency of the Weaver mixer, which sets where the
	// passband lands in the audio. Positive for USB, negative for LSB.
	BFOOffset rf.Hz

	// Bandwidth selects the band-pass taps.
	Bandwidth Bandwidth
}

// Demodulator contains the double heterodyne signal chain: a receiver mix,
// a pair of band-pass filters over I and Q, a Weaver mix that folds the
// wanted sideband down to real audio, and an AGC.
//
// A Demodulator is not safe for concurrent use. The Player runs one on its
// worker goroutine.
type Demodulator struct {
	reader sdr.Reader

	rx     *Oscillator
	weaver *Oscillator

	bandwidth Bandwidth
	bandpass  [2]FIRFilter

	agc AGC

	iq    sdr.SamplesC64
	mixed []float64
}

// NewDemodulator returns a Demodulator tuned to 0 Hz with both filters on
// WideSSB.
func NewDemodulator() *Demodulator {
	d := &Demodulator{
		rx:        NewOscillator(SampleRate, Density),
		weaver:    NewOscillator(SampleRate, Density),
		bandwidth: -1,
		agc:       NewAGC(),
	}
	d.SetBandwidth(WideSSB)
	return d
}

// Demodulate will create a new Demodulator, to read audio from an IQ stream
// sampled at SampleRate.
func Demodulate(reader sdr.Reader, cfg DemodulatorConfig) (*Demodulator, error) {
	switch reader.SampleFormat() {
	case sdr.SampleFormatC64:
	default:
		return nil, sdr.ErrSampleFormatMismatch
	}
	if reader.SampleRate() != SampleRate {
		return nil, ErrSampleRate
	}

	d := NewDemodulator()
	d.reader = reader
	if cfg.Bandwidth.Valid() {
		d.SetBandwidth(cfg.Bandwidth)
	}
	if inTuningRange(cfg.RxFrequency) {
		d.RetuneReceiver(QuantizeFrequency(cfg.RxFrequency))
	}
	if inTuningRange(cfg.BFOOffset) {
		d.RetuneWeaver(QuantizeFrequency(cfg.BFOOffset))
	}
	return d, nil
}

// SampleRate will return the *audio* sample rate.
func (d *Demodulator) SampleRate() uint {
	return SampleRate
}

// Bandwidth returns the selected filter.
func (d *Demodulator) Bandwidth() Bandwidth {
	return d.bandwidth
}

// SetBandwidth points both band-pass filters at the taps for bw and flushes
// their history. Unknown values are ignored. It reports whether anything
// changed.
func (d *Demodulator) SetBandwidth(bw Bandwidth) bool {
	taps := bw.taps()
	if taps == nil {
		return false
	}
	for i := range d.bandpass {
		d.bandpass[i].SetDefinition(taps)
		d.bandpass[i].Reset()
	}
	d.bandwidth = bw
	return true
}

// RetuneReceiver rebuilds the receiver oscillator for hz.
func (d *Demodulator) RetuneReceiver(hz int) {
	d.rx.Retune(hz)
}

// RetuneWeaver rebuilds the Weaver (BFO) oscillator for hz.
func (d *Demodulator) RetuneWeaver(hz int) {
	d.weaver.Retune(hz)
}

// Receiver returns the signed frequency of the receiver mixer.
func (d *Demodulator) Receiver() int {
	return d.rx.Frequency()
}

// Weaver returns the signed frequency of the Weaver mixer.
func (d *Demodulator) Weaver() int {
	return d.weaver.Frequency()
}

// Gain returns the AGC gain.
func (d *Demodulator) Gain() float64 {
	return d.agc.Gain()
}

// Peak returns the largest unscaled output magnitude seen so far.
func (d *Demodulator) Peak() float64 {
	return d.agc.Peak()
}

// Mix runs iq through both mixers and filters, writing one real sample per
// frame to out. It returns the number of samples written.
func (d *Demodulator) Mix(iq sdr.SamplesC64, out []float64) int {
	n := len(iq)
	if len(out) < n {
		n = len(out)
	}

	f0, f1 := &d.bandpass[0], &d.bandpass[1]
	for j := 0; j < n; j++ {
		inI := float64(real(iq[j]))
		inQ := float64(imag(iq[j]))

		// Receiver mix, a complex multiply.
		mixI, mixQ := d.rx.Next()
		f0.Apply(inI*mixI - inQ*mixQ)
		f1.Apply(inQ*mixI + inI*mixQ)

		// Weaver mix. The sum cancels the unwanted sideband.
		weaverI, weaverQ := d.weaver.Next()
		out[j] = f0.Value()*weaverI + f1.Value()*weaverQ
	}
	return n
}

// Process demodulates iq into pcm, running the AGC over the batch. It
// returns the number of samples written.
func (d *Demodulator) Process(iq sdr.SamplesC64, pcm []int16) int {
	if len(pcm) < len(iq) {
		iq = iq[:len(pcm)]
	}
	if cap(d.mixed) < len(iq) {
		d.mixed = make([]float64, len(iq))
	}
	mixed := d.mixed[:len(iq)]

	n := d.Mix(iq, mixed)
	d.agc.Observe(mixed[:n])
	for i, v := range mixed[:n] {
		pcm[i] = d.agc.Quantize(v)
	}
	return n
}

// Read will (partially?) fill the buffer with audio samples.
func (d *Demodulator) Read(pcm []int16) (int, error) {
	if d.reader == nil {
		return 0, ErrNoReader
	}
	if cap(d.iq) < len(pcm) {
		d.iq = make(sdr.SamplesC64, len(pcm))
	}
	buf := d.iq[:len(pcm)]

	i, err := sdr.ReadFull(d.reader, buf)
	if i > 0 {
		i = d.Process(buf[:i], pcm)
	}
	return i, err
}

// QuantizeFrequency rounds hz to the 10 Hz grid the oscillator tables are
// built on, clamped to just under half the sample rate. The sign is kept.
func QuantizeFrequency(hz rf.Hz) int {
	mix := int(hz)
	neg := mix < 0
	if neg {
		mix = -mix
	}
	mix = (mix + tuneResolution/2) / tuneResolution * tuneResolution
	if mix > maxMix {
		mix = maxMix
	}
	if neg {
		return -mix
	}
	return mix
}

// inTuningRange reports whether hz is something the mixers can be asked
// for at all. Anything at or past half the sample rate is dropped.
func inTuningRange(hz rf.Hz) bool {
	f := math.Abs(float64(hz))
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return false
	}
	return uint64(f) < SampleRate/2
}

// vim: foldmethod=marker
