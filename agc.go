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
	"math"
)

const (
	// agcTarget is the fraction of full scale the AGC steers peaks toward.
	agcTarget = 0.5

	fullScale = math.MaxInt16
)

// AGC is a peak-tracking gain control. The peak is the largest magnitude
// seen over the whole session and never decays; every batch that raises it
// pulls the gain halfway (geometrically) toward agcTarget/peak, so a single
// outlier does not collapse the gain in one step.
type AGC struct {
	gain float64
	peak float64
}

// NewAGC returns an AGC at unity gain.
func NewAGC() AGC {
	return AGC{gain: 1}
}

// Gain returns the current linear gain.
func (a *AGC) Gain() float64 {
	return a.gain
}

// Peak returns the largest magnitude observed so far.
func (a *AGC) Peak() float64 {
	return a.peak
}

// Observe folds a batch of samples into the peak tracker, and updates the
// gain once if the batch set a new peak. It reports whether it did.
func (a *AGC) Observe(batch []float64) bool {
	found := false
	for _, v := range batch {
		if m := math.Abs(v); m > a.peak {
			a.peak = m
			found = true
		}
	}
	if found {
		a.gain = math.Sqrt((agcTarget / a.peak) * a.gain)
	}
	return found
}

// Quantize scales v by the gain into a signed 16 bit sample, saturating
// rather than wrapping.
func (a *AGC) Quantize(v float64) int16 {
	s := math.Round(fullScale * a.gain * v)
	switch {
	case s > fullScale:
		return fullScale
	case s < -fullScale:
		return -fullScale
	case math.IsNaN(s):
		return 0
	}
	return int16(s)
}

// vim: foldmethod=marker
