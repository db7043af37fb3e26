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
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/decred/slog"

	"hz.tools/rf"
	"hz.tools/sdr"

	"hz.tools/ssb/internal/riff"
)

const (
	// BatchFrames is how many IQ frames the worker demodulates between
	// looking at its command queue.
	BatchFrames = 120

	// SliceInfoChunk is the id of the container chunk holding a SliceInfo.
	SliceInfoChunk = "0SDR"
)

var (
	// ErrChannels is returned by Open when the recording is not stereo IQ.
	ErrChannels = errors.New("ssb: recording is not 2 channel iq")

	// ErrSampleFormat is returned by Open when the recording is not 32 bit
	// float.
	ErrSampleFormat = errors.New("ssb: recording is not 32 bit float")

	// ErrNoSink is returned when a Player is built without a Sink.
	ErrNoSink = errors.New("ssb: no audio sink")
)

// Source is a seekable stream of IQ frames.
type Source interface {
	sdr.Reader

	// SeekFrame moves the read cursor to frame. Positions past the end
	// return an error and leave the cursor alone.
	SeekFrame(frame uint64) error

	// Frame returns the index of the next frame Read will return.
	Frame() uint64

	// Frames returns the number of frames in the stream.
	Frames() uint64
}

// Sink is where demodulated audio goes. Write is expected to block when
// the device is full; that is what paces playback.
type Sink interface {
	// Write queues mono 16 bit samples at SampleRate.
	Write(pcm []int16) error

	// Complete is called once each time the stream reaches its end.
	Complete()

	// Release frees the device. It is called once, after the worker has
	// stopped.
	Release() error
}

// State is where a Player is in its life.
type State int

const (
	// Paused is the state a Player starts in.
	Paused State = iota

	// Playing means the worker is demodulating.
	Playing

	// Stopped is terminal. The worker has exited or is exiting.
	Stopped
)

// String implements fmt.Stringer.
func (s State) String() string {
	switch s {
	case Paused:
		return "paused"
	case Playing:
		return "playing"
	case Stopped:
		return "stopped"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

// Tuning is the demodulator setup the worker last applied.
type Tuning struct {
	Receiver  int
	BFO       int
	Bandwidth Bandwidth
}

// PlayerConfig will define how a Player is set up.
type PlayerConfig struct {
	// Log receives worker events. Defaults to slog.Disabled.
	Log slog.Logger

	// BatchFrames overrides the number of frames per batch. Zero means
	// BatchFrames.
	BatchFrames int
}

// Player plays a recorded IQ stream through a Demodulator into a Sink.
//
// All the signal processing happens on a single worker goroutine. The
// control methods are safe to call from any goroutine; anything that
// touches the demodulator is queued as a command and applied by the worker
// between batches.
type Player struct {
	log    slog.Logger
	source Source
	sink   Sink
	closer io.Closer
	info   SliceInfo
	length time.Duration
	ifRate uint
	batch  int

	// Owned by the worker.
	demod *Demodulator
	atEnd bool

	mu       sync.Mutex
	cond     *sync.Cond
	queue    []command
	paused   bool
	stopping bool

	rxHz      rf.Hz
	bfoHz     rf.Hz
	rxMix     int
	bfoMix    int
	bandwidth Bandwidth
	frame     uint64
	gain      float64
	peak      float64
	applied   Tuning

	done      chan struct{}
	closeOnce sync.Once
	closeErr  error
}

// Open opens a recording made by the slicer and starts a paused Player on
// it. The recording must be stereo 32 bit float IQ. The Player owns sink
// from here on, and releases it if Open fails.
func Open(path string, sink Sink, cfg PlayerConfig) (*Player, error) {
	r, err := riff.Open(path)
	if err != nil {
		releaseSink(sink)
		return nil, fmt.Errorf("ssb: opening %s: %w", path, err)
	}

	var fail error
	switch {
	case r.Header.Channels != 2:
		fail = fmt.Errorf("%w: %d channels", ErrChannels, r.Header.Channels)
	case !r.Header.IsFloat32():
		fail = fmt.Errorf("%w: format %d, %d bits", ErrSampleFormat,
			r.Header.Format, r.Header.BitsPerSample)
	}
	if fail != nil {
		r.Close()
		releaseSink(sink)
		return nil, fail
	}

	var info SliceInfo
	if raw, ok := r.Chunk(SliceInfoChunk); ok {
		info = ParseSliceInfo(raw)
	}

	p, err := newPlayer(r, sink, cfg)
	if err != nil {
		r.Close()
		return nil, err
	}
	p.closer = r
	p.info = info
	p.start()
	return p, nil
}

// NewPlayer starts a paused Player reading from src. The Player owns sink
// from here on, and releases it if NewPlayer fails.
func NewPlayer(src Source, sink Sink, cfg PlayerConfig) (*Player, error) {
	p, err := newPlayer(src, sink, cfg)
	if err != nil {
		return nil, err
	}
	p.start()
	return p, nil
}

func releaseSink(sink Sink) {
	if sink != nil {
		sink.Release()
	}
}

func newPlayer(src Source, sink Sink, cfg PlayerConfig) (*Player, error) {
	if sink == nil {
		return nil, ErrNoSink
	}
	switch src.SampleFormat() {
	case sdr.SampleFormatC64:
	default:
		releaseSink(sink)
		return nil, sdr.ErrSampleFormatMismatch
	}

	log := cfg.Log
	if log == nil {
		log = slog.Disabled
	}
	batch := cfg.BatchFrames
	if batch <= 0 {
		batch = BatchFrames
	}

	p := &Player{
		log:       log,
		source:    src,
		sink:      sink,
		ifRate:    src.SampleRate(),
		batch:     batch,
		length:    framesToDuration(src.Frames()),
		demod:     NewDemodulator(),
		paused:    true,
		gain:      1,
		rxMix:     SampleRate,
		bfoMix:    SampleRate,
		bandwidth: -1,
		done:      make(chan struct{}),
	}
	p.cond = sync.NewCond(&p.mu)

	if p.ifRate != SampleRate {
		log.Warnf("iq stream is at %d Hz, expected %d Hz", p.ifRate, SampleRate)
	}

	p.SetBandwidth(WideSSB)
	p.SetRxFrequency(0)
	p.SetBFOOffset(0)
	return p, nil
}

func (p *Player) start() {
	go p.run()
}

func framesToDuration(frames uint64) time.Duration {
	return time.Duration(frames/SampleRate)*time.Second +
		time.Duration(frames%SampleRate)*time.Second/SampleRate
}

func durationToFrames(d time.Duration) uint64 {
	return uint64(d/time.Second)*SampleRate +
		uint64(d%time.Second)*SampleRate/uint64(time.Second)
}

// enqueue adds cmd to the queue and wakes the worker. mu must be held.
func (p *Player) enqueue(cmd command) {
	if p.stopping {
		return
	}
	p.queue = append(p.queue, cmd)
	p.cond.Broadcast()
}

// Play resumes playback.
func (p *Player) Play() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.stopping {
		return
	}
	p.paused = false
	p.cond.Broadcast()
}

// Pause stops frames flowing to the sink. Queued commands still apply.
func (p *Player) Pause() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.stopping {
		return
	}
	p.paused = true
	p.cond.Broadcast()
}

// State returns the current State.
func (p *Player) State() State {
	p.mu.Lock()
	defer p.mu.Unlock()
	switch {
	case p.stopping:
		return Stopped
	case p.paused:
		return Paused
	default:
		return Playing
	}
}

// Done is closed once the worker has exited.
func (p *Player) Done() <-chan struct{} {
	return p.done
}

// Close stops the worker, waits for it to exit and releases the sink. It
// is safe to call more than once; later calls return the first result.
func (p *Player) Close() error {
	p.closeOnce.Do(func() {
		p.mu.Lock()
		p.stopping = true
		p.paused = false
		p.queue = nil
		p.cond.Broadcast()
		p.mu.Unlock()

		<-p.done

		err := p.sink.Release()
		if p.closer != nil {
			if cerr := p.closer.Close(); err == nil {
				err = cerr
			}
		}
		p.closeErr = err
	})
	return p.closeErr
}

// RxFrequency returns the requested receiver offset.
func (p *Player) RxFrequency() rf.Hz {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.rxHz
}

// SetRxFrequency tunes the receiver to hz from the center of the
// recording. Offsets at or past half the sample rate are ignored.
func (p *Player) SetRxFrequency(hz rf.Hz) {
	if !inTuningRange(hz) {
		return
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	p.rxHz = hz
	if mix := QuantizeFrequency(hz); mix != p.rxMix {
		p.rxMix = mix
		p.enqueue(retuneReceiver{hz: mix})
	}
}

// BFOOffset returns the requested BFO offset.
func (p *Player) BFOOffset() rf.Hz {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.bfoHz
}

// SetBFOOffset moves the Weaver mixer. Positive offsets listen to the
// upper sideband, negative to the lower.
func (p *Player) SetBFOOffset(hz rf.Hz) {
	if !inTuningRange(hz) {
		return
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	p.bfoHz = hz
	if mix := QuantizeFrequency(hz); mix != p.bfoMix {
		p.bfoMix = mix
		p.enqueue(retuneWeaver{hz: mix})
	}
}

// Bandwidth returns the requested filter.
func (p *Player) Bandwidth() Bandwidth {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.bandwidth
}

// SetBandwidth switches both band-pass filters. Unknown values are ignored.
func (p *Player) SetBandwidth(bw Bandwidth) {
	if !bw.Valid() {
		return
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	if bw == p.bandwidth {
		return
	}
	p.bandwidth = bw
	p.enqueue(setBandwidth{bw: bw})
}

// SetMode applies the BFO offset and bandwidth of m.
func (p *Player) SetMode(m Mode) {
	p.SetBFOOffset(m.BFO())
	p.SetBandwidth(m.Bandwidth())
}

// Position returns the time of the batch last handed to the demodulator.
func (p *Player) Position() time.Duration {
	p.mu.Lock()
	defer p.mu.Unlock()
	return framesToDuration(p.frame)
}

// SetPosition seeks to d. Negative values seek to the start; values past
// the end are ignored.
func (p *Player) SetPosition(d time.Duration) {
	if d < 0 {
		d = 0
	}
	frame := durationToFrames(d)
	p.mu.Lock()
	defer p.mu.Unlock()
	p.enqueue(seek{frame: frame})
}

// Length returns the duration of the recording.
func (p *Player) Length() time.Duration {
	return p.length
}

// IFBoundary is the largest offset SetRxFrequency can reach, which is
// half the rate of the recording.
func (p *Player) IFBoundary() rf.Hz {
	return rf.Hz(p.ifRate) / 2
}

// SliceInfo returns what the slicer recorded about the recording, if
// anything.
func (p *Player) SliceInfo() SliceInfo {
	return p.info
}

// Gain returns the AGC gain as of the last batch.
func (p *Player) Gain() float64 {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.gain
}

// Peak returns the AGC peak as of the last batch.
func (p *Player) Peak() float64 {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.peak
}

// Applied returns the tuning the worker has actually applied, which lags
// the requested values until the queue drains.
func (p *Player) Applied() Tuning {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.applied
}

// dispatch pops one command and applies it with mu released. mu must be
// held. It reports whether there was anything to do.
func (p *Player) dispatch() bool {
	if len(p.queue) == 0 {
		return false
	}
	cmd := p.queue[0]
	p.queue[0] = nil
	p.queue = p.queue[1:]

	p.mu.Unlock()
	p.apply(cmd)
	p.mu.Lock()

	p.applied = Tuning{
		Receiver:  p.demod.Receiver(),
		BFO:       p.demod.Weaver(),
		Bandwidth: p.demod.Bandwidth(),
	}
	p.frame = p.source.Frame()
	return true
}

func (p *Player) run() {
	defer close(p.done)

	var (
		iq  = make(sdr.SamplesC64, p.batch)
		pcm = make([]int16, p.batch)
	)

	for {
		p.mu.Lock()
		for !p.stopping && (p.paused || p.atEnd) && len(p.queue) == 0 {
			p.cond.Wait()
		}
		if p.stopping {
			p.mu.Unlock()
			return
		}
		if p.dispatch() {
			p.mu.Unlock()
			continue
		}
		p.frame = p.source.Frame()
		p.mu.Unlock()

		n, err := p.source.Read(iq)
		if n > 0 {
			n = p.demod.Process(iq[:n], pcm)

			p.mu.Lock()
			p.gain, p.peak = p.demod.Gain(), p.demod.Peak()
			p.mu.Unlock()

			if werr := p.sink.Write(pcm[:n]); werr != nil {
				p.log.Warnf("sink write: %v", werr)
			}
		}

		switch {
		case err == nil && n > 0:
		case err == nil, errors.Is(err, io.EOF):
			p.reachEnd()
		default:
			p.log.Warnf("iq read: %v", err)
			p.reachEnd()
		}
	}
}

// reachEnd parks the worker at the end of the stream until a seek or
// Close. Only the worker calls it.
func (p *Player) reachEnd() {
	if p.atEnd {
		return
	}
	p.atEnd = true
	p.log.Infof("end of stream at frame %d", p.source.Frame())
	p.sink.Complete()

	p.mu.Lock()
	p.frame = p.source.Frame()
	p.mu.Unlock()
}

// vim: foldmethod=marker
