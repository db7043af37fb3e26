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

// Package internal holds the IF helpers shared by the ssb commands.
package internal

import (
	"errors"

	"hz.tools/rf"
	"hz.tools/sdr"
	"hz.tools/sdr/fft"
	"hz.tools/sdr/stream"
)

var (
	// ErrFilterWidth is returned for a passband that is zero, negative or
	// wider than the sample rate.
	ErrFilterWidth = errors.New("internal: filter width out of range")

	// ErrFilterSize is returned when the mask is empty.
	ErrFilterSize = errors.New("internal: filter has no bins")
)

// Filter fills filter with a frequency domain mask that passes center
// +/- width/2 and zeros everything else. Bins are in the order an FFT
// produces them: 0 Hz first, then the positive frequencies, then the
// negative frequencies from the most negative up.
func Filter(filter []complex64, sampleRate uint, center, width rf.Hz) error {
	n := len(filter)
	if n == 0 {
		return ErrFilterSize
	}
	if width <= 0 || float64(width) > float64(sampleRate) {
		return ErrFilterWidth
	}

	var (
		binWidth = float64(sampleRate) / float64(n)
		low      = float64(center - width/2)
		high     = float64(center + width/2)
	)
	for i := range filter {
		bin := i
		if bin >= (n+1)/2 {
			bin -= n
		}
		freq := float64(bin) * binWidth
		if freq >= low && freq <= high {
			filter[i] = 1
		} else {
			filter[i] = 0
		}
	}
	return nil
}

// Prefilter runs reader through an FFT convolution that keeps only the
// passband around center. The reader must be complex64.
func Prefilter(
	reader sdr.Reader,
	planner fft.Planner,
	size int,
	center, width rf.Hz,
) (sdr.Reader, error) {
	if reader.SampleFormat() != sdr.SampleFormatC64 {
		return nil, sdr.ErrSampleFormatMismatch
	}
	filter := make([]complex64, size)
	if err := Filter(filter, reader.SampleRate(), center, width); err != nil {
		return nil, err
	}
	return stream.ConvolutionReader(reader, planner, filter)
}

// vim: foldmethod=marker
