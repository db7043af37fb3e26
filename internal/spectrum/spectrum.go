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

// Package spectrum finds the strong signals in a block of IQ, so there is
// something to tune the receiver to.
package spectrum

import (
	"errors"
	"math"
	"math/cmplx"
	"sort"

	"github.com/mjibson/go-dsp/fft"
	"github.com/mjibson/go-dsp/window"

	"hz.tools/rf"
	"hz.tools/sdr"
)

var (
	// ErrShort is returned when there is less IQ than one FFT.
	ErrShort = errors.New("spectrum: not enough iq for one fft")

	// ErrSize is returned for an FFT size that is odd or too small.
	ErrSize = errors.New("spectrum: fft size must be even and at least 8")
)

// Spectrum is an averaged power spectrum, ordered from the most negative
// offset to the most positive.
type Spectrum struct {
	// Rate is the sample rate of the IQ it came from.
	Rate uint

	// Power is linear power per bin. Bin len(Power)/2 is 0 Hz.
	Power []float64
}

// Compute averages the Hann windowed FFTs of every whole block of size
// frames in iq.
func Compute(iq sdr.SamplesC64, rate uint, size int) (Spectrum, error) {
	if size < 8 || size%2 != 0 {
		return Spectrum{}, ErrSize
	}
	blocks := len(iq) / size
	if blocks == 0 {
		return Spectrum{}, ErrShort
	}

	var (
		win   = window.Hann(size)
		in    = make([]complex128, size)
		power = make([]float64, size)
	)
	for b := 0; b < blocks; b++ {
		block := iq[b*size : (b+1)*size]
		for i, v := range block {
			in[i] = complex128(v) * complex(win[i], 0)
		}
		out := fft.FFT(in)
		for i, v := range out {
			// Shift so the middle bin is 0 Hz.
			j := (i + size/2) % size
			m := cmplx.Abs(v)
			power[j] += m * m
		}
	}
	for i := range power {
		power[i] /= float64(blocks)
	}
	return Spectrum{Rate: rate, Power: power}, nil
}

// BinWidth is the frequency step between bins.
func (s Spectrum) BinWidth() rf.Hz {
	if len(s.Power) == 0 {
		return 0
	}
	return rf.Hz(float64(s.Rate) / float64(len(s.Power)))
}

// Offset returns the frequency of a (possibly fractional) bin.
func (s Spectrum) Offset(bin float64) rf.Hz {
	return rf.Hz((bin - float64(len(s.Power)/2)) * float64(s.BinWidth()))
}

// Floor is the median bin power, in dB. It is a decent guess at the noise.
func (s Spectrum) Floor() float64 {
	if len(s.Power) == 0 {
		return math.Inf(-1)
	}
	sorted := append([]float64(nil), s.Power...)
	sort.Float64s(sorted)
	return decibels(sorted[len(sorted)/2])
}

// Peak is one signal found in a Spectrum.
type Peak struct {
	// Offset is the frequency from the center of the IQ.
	Offset rf.Hz

	// Power is the peak bin power in dB.
	Power float64
}

// Peaks returns up to n local maxima, strongest first. Peaks within guard
// of a stronger one are dropped. The offset is refined by fitting a
// parabola through the peak bin and its neighbours.
func (s Spectrum) Peaks(n int, guard rf.Hz) []Peak {
	p := s.Power
	if len(p) < 3 || n <= 0 {
		return nil
	}

	var cand []int
	for i := 1; i < len(p)-1; i++ {
		if p[i] > p[i-1] && p[i] >= p[i+1] {
			cand = append(cand, i)
		}
	}
	sort.SliceStable(cand, func(a, b int) bool { return p[cand[a]] > p[cand[b]] })

	var peaks []Peak
	for _, i := range cand {
		off := s.Offset(float64(i) + s.interpolate(i))
		shadowed := false
		for _, have := range peaks {
			if math.Abs(float64(have.Offset-off)) < float64(guard) {
				shadowed = true
				break
			}
		}
		if shadowed {
			continue
		}
		peaks = append(peaks, Peak{Offset: off, Power: decibels(p[i])})
		if len(peaks) == n {
			break
		}
	}
	return peaks
}

// interpolate returns the fractional bin offset of the true peak near i,
// using the log power of i and its neighbours.
func (s Spectrum) interpolate(i int) float64 {
	a := decibels(s.Power[i-1])
	b := decibels(s.Power[i])
	c := decibels(s.Power[i+1])
	denom := a - 2*b + c
	if denom == 0 || math.IsInf(denom, 0) || math.IsNaN(denom) {
		return 0
	}
	d := 0.5 * (a - c) / denom
	if d > 0.5 || d < -0.5 {
		return 0
	}
	return d
}

func decibels(p float64) float64 {
	if p <= 0 {
		return math.Inf(-1)
	}
	return 10 * math.Log10(p)
}

// vim: foldmethod=marker
