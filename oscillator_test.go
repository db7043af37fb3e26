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
	"testing"
)

func TestComputeSinCosZero(t *testing.T) {
	for _, rate := range []uint{12000, 192000} {
		for _, density := range []uint{1, 2, 4} {
			tab := ComputeSinCos(rate, 0, density)
			if tab.Len() != 1 {
				t.Fatalf("rate %d density %d: len %d, want 1", rate, density, tab.Len())
			}
			if tab.Samples[0] != 0.5*math.Sqrt2 {
				t.Errorf("rate %d density %d: value %v", rate, density, tab.Samples[0])
			}
			if tab.Quadrature != 0 || tab.Inverted {
				t.Errorf("rate %d density %d: quadrature %d inverted %t",
					rate, density, tab.Quadrature, tab.Inverted)
			}
		}
	}
}

func gcd(a, b uint) uint {
	for b != 0 {
		a, b = b, a%b
	}
	return a
}

func TestComputeSinCosPeriod(t *testing.T) {
	tests := []struct {
		rate, hz, density uint
	}{
		{12000, 10, 2},
		{12000, 100, 2},
		{12000, 1000, 2},
		{12000, 1010, 2},
		{12000, 1100, 2},
		{12000, 5990, 2},
		{192000, 20000, 1},
		{192000, 1200, 1},
	}
	for _, tt := range tests {
		n := tt.rate * tt.density
		tab := ComputeSinCos(tt.rate, tt.hz, tt.density)
		if want := int(n / gcd(n, tt.hz)); tab.Len() != want {
			t.Errorf("%d Hz at %d*%d: len %d, want %d", tt.hz, tt.rate, tt.density, tab.Len(), want)
		}
	}
}

func TestComputeSinCosQuadrature(t *testing.T) {
	// The cosine is read a whole number of samples after the sine, so
	// when a quarter period is not a whole number of samples it is off by
	// up to half a sample of phase.
	n := float64(SampleRate * Density)
	for hz := uint(tuneResolution); hz <= maxMix; hz += tuneResolution {
		tab := ComputeSinCos(SampleRate, hz, Density)
		if tab.Len() <= 0 {
			t.Fatalf("%d Hz: empty table", hz)
		}
		eps := math.Pi*float64(hz)/n + 1e-9
		for i := 0; i < tab.Len(); i++ {
			theta := tau * float64(i) * float64(hz) / n
			s, c := tab.At(i)
			if !near(s, math.Sin(theta), 1e-9) {
				t.Fatalf("%d Hz [%d]: sin %v, want %v", hz, i, s, math.Sin(theta))
			}
			if !near(c, math.Cos(theta), eps) {
				t.Fatalf("%d Hz [%d]: cos %v, want %v within %v", hz, i, c, math.Cos(theta), eps)
			}
		}
	}
}

func TestMinimizeSinCosGlitchShortTable(t *testing.T) {
	tab := ComputeSinCos(SampleRate, 1000, Density)
	if tab.Len() >= minGlitchTableSize {
		t.Fatalf("table of %d is not short", tab.Len())
	}
	if g := MinimizeSinCosGlitch(0.3, -0.8, tab.Quadrature, 1, tab.Samples); g != 0 {
		t.Errorf("got %d, want 0", g)
	}
}

func TestMinimizeSinCosGlitchExhaustive(t *testing.T) {
	tab := ComputeSinCos(SampleRate, 100, Density)
	l := tab.Len()
	if l < minGlitchTableSize {
		t.Fatalf("table of %d is too short to search", l)
	}
	qscale := 1.0
	if tab.Inverted {
		qscale = -1
	}

	dist := func(g int, i, q float64) float64 {
		di := tab.Samples[g] - i
		dq := tab.Samples[(g+tab.Quadrature)%l]*qscale - q
		return di*di + dq*dq
	}

	for _, prev := range [][2]float64{
		{0, 1}, {1, 0}, {0.5 * math.Sqrt2, 0.5 * math.Sqrt2}, {-0.3, 0.9}, {0.1, -0.2},
	} {
		g := MinimizeSinCosGlitch(prev[0], prev[1], tab.Quadrature, qscale, tab.Samples)
		if g < 0 || g >= l {
			t.Fatalf("index %d outside [0, %d)", g, l)
		}
		best := dist(g, prev[0], prev[1])
		for k := 0; k < l; k++ {
			if d := dist(k, prev[0], prev[1]); d < best {
				t.Fatalf("prev %v: index %d at %v beats %d at %v", prev, k, d, g, best)
			}
		}
	}

	s, c := tab.At(37)
	if g := MinimizeSinCosGlitch(s, c, tab.Quadrature, qscale, tab.Samples); g != 37 {
		t.Errorf("exact phasor: got %d, want 37", g)
	}
}

func TestOscillatorSign(t *testing.T) {
	for _, hz := range []int{1000, -1000} {
		o := NewOscillator(SampleRate, Density)
		o.Retune(hz)
		if o.Frequency() != hz {
			t.Fatalf("frequency %d, want %d", o.Frequency(), hz)
		}
		for k := 0; k < 48; k++ {
			theta := tau * 1000 * float64(k) / SampleRate
			wantQ := math.Cos(theta)
			if hz < 0 {
				wantQ = -wantQ
			}
			i, q := o.Next()
			if !near(i, math.Sin(theta), 1e-9) || !near(q, wantQ, 1e-9) {
				t.Fatalf("%d Hz step %d: (%v, %v), want (%v, %v)",
					hz, k, i, q, math.Sin(theta), wantQ)
			}
		}
	}
}

func TestOscillatorRetuneContinuity(t *testing.T) {
	o := NewOscillator(SampleRate, Density)
	o.Retune(1000)
	for i := 0; i < 17; i++ {
		o.Next()
	}

	for _, hz := range []int{1010, -1010, 2510, 100} {
		pi, pq := o.Phasor()
		o.Retune(hz)
		ni, nq := o.Phasor()
		d := math.Hypot(ni-pi, nq-pq)
		if d > 0.02 {
			t.Errorf("retune to %d: phase jump %v", hz, d)
		}
		for i := 0; i < 123; i++ {
			o.Next()
		}
	}
}

func TestOscillatorWraps(t *testing.T) {
	o := NewOscillator(SampleRate, Density)
	o.Retune(1100)
	first, _ := o.Phasor()
	for i := 0; i < o.Len()*3; i++ {
		o.Next()
	}
	again, _ := o.Phasor()
	if !near(first, again, 1e-12) {
		t.Errorf("after whole periods: %v, want %v", again, first)
	}
}

// vim: foldmethod=marker
