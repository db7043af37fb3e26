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

// FIRFilter is a direct-form finite impulse response filter over a circular
// history buffer.
//
// The taps are borrowed. The filter never copies or modifies them, so the
// same tap set can back any number of filters.
type FIRFilter struct {
	history []float64
	cursor  int
	taps    []float64
}

// NewFIRFilter returns a FIRFilter bound to taps.
func NewFIRFilter(taps []float64) *FIRFilter {
	f := &FIRFilter{}
	f.SetDefinition(taps)
	return f
}

// SetDefinition binds the filter to a new tap set. If the tap count
// changes, the history is reallocated and starts out zeroed. An empty tap
// set is ignored and the filter keeps its previous definition.
func (f *FIRFilter) SetDefinition(taps []float64) {
	if len(taps) == 0 {
		return
	}
	if len(taps) != len(f.history) {
		f.history = make([]float64, len(taps))
		f.cursor = 0
	}
	f.taps = taps
}

// Len returns the tap count.
func (f *FIRFilter) Len() int {
	return len(f.history)
}

// Reset zeroes the history.
func (f *FIRFilter) Reset() {
	for i := range f.history {
		f.history[i] = 0
	}
	f.cursor = 0
}

// Apply pushes one sample into the history, overwriting the oldest.
func (f *FIRFilter) Apply(x float64) {
	if len(f.history) == 0 {
		return
	}
	f.history[f.cursor] = x
	f.cursor++
	if f.cursor >= len(f.history) {
		f.cursor = 0
	}
}

// Value returns the filter output for the current history. It has no side
// effects and may be called any number of times between Apply calls.
//
//	y[n] = sum_{k=0}^{N-1} h[k] * x[n-k]
func (f *FIRFilter) Value() float64 {
	n := len(f.history)
	if n == 0 {
		return 0
	}

	var (
		v float64
		p = f.cursor - 1
	)
	for k := 0; k < n; k++ {
		if p < 0 {
			p = n - 1
		}
		v += f.history[p] * f.taps[k]
		p--
	}
	return v
}

// RMS is a diagnostic over the history buffer.
func (f *FIRFilter) RMS() float64 {
	if len(f.history) == 0 {
		return 0
	}
	var v float64
	for _, e := range f.history {
		v += e * e
	}
	return math.Sqrt(v) / float64(len(f.history))
}

// MeanAbs is the mean absolute value over the history buffer.
func (f *FIRFilter) MeanAbs() float64 {
	if len(f.history) == 0 {
		return 0
	}
	var v float64
	for _, e := range f.history {
		v += math.Abs(e)
	}
	return v / float64(len(f.history))
}

// vim: foldmethod=marker
