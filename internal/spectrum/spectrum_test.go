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

package spectrum

import (
	"errors"
	"math"
	"math/cmplx"
	"testing"

	"hz.tools/rf"
	"hz.tools/sdr"
)

func tones(n int, rate uint, amps map[float64]float64) sdr.SamplesC64 {
	out := make(sdr.SamplesC64, n)
	for i := range out {
		var v complex128
		for hz, amp := range amps {
			v += complex(amp, 0) * cmplx.Exp(complex(0, 2*math.Pi*hz*float64(i)/float64(rate)))
		}
		out[i] = complex64(v)
	}
	return out
}

func TestPeaks(t *testing.T) {
	iq := tones(8192, 12000, map[float64]float64{1500: 0.5, -2300: 0.2})
	s, err := Compute(iq, 12000, 1024)
	if err != nil {
		t.Fatal(err)
	}
	if got := s.BinWidth(); math.Abs(float64(got)-12000.0/1024) > 1e-9 {
		t.Fatalf("bin width %v", float64(got))
	}

	peaks := s.Peaks(2, 100)
	if len(peaks) != 2 {
		t.Fatalf("got %d peaks", len(peaks))
	}
	for i, want := range []rf.Hz{1500, -2300} {
		if d := math.Abs(float64(peaks[i].Offset - want)); d > 3 {
			t.Errorf("peak %d at %v, want %v", i, float64(peaks[i].Offset), float64(want))
		}
	}
	if peaks[0].Power <= peaks[1].Power {
		t.Errorf("peaks out of order: %+v", peaks)
	}
	if s.Floor() >= peaks[1].Power {
		t.Errorf("floor %v above the weaker tone %v", s.Floor(), peaks[1].Power)
	}
}

func TestCenterBin(t *testing.T) {
	iq := tones(1024, 12000, map[float64]float64{0: 1})
	s, err := Compute(iq, 12000, 1024)
	if err != nil {
		t.Fatal(err)
	}
	peaks := s.Peaks(1, 0)
	if len(peaks) != 1 || math.Abs(float64(peaks[0].Offset)) > 1 {
		t.Errorf("dc tone found at %+v", peaks)
	}
}

func TestComputeErrors(t *testing.T) {
	if _, err := Compute(make(sdr.SamplesC64, 100), 12000, 1024); !errors.Is(err, ErrShort) {
		t.Errorf("short: got %v", err)
	}
	if _, err := Compute(make(sdr.SamplesC64, 100), 12000, 7); !errors.Is(err, ErrSize) {
		t.Errorf("odd: got %v", err)
	}
}

// vim: foldmethod=marker
