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
	tau = math.Pi * 2

	// zeroThreshold is the largest sample magnitude that still rounds to
	// zero once scaled to a signed 16 bit sample.
	zeroThreshold = 1.5 / 32767

	// maxSearchCycles bounds the period search in ComputeSinCos, in units
	// of sampleRate*density steps. The real period is always found well
	// before this.
	maxSearchCycles = 10

	// minGlitchTableSize is the shortest table MinimizeSinCosGlitch will
	// bother searching.
	minGlitchTableSize = 100
)

// Table is one period of a sine wave, precomputed so the mixers never call
// into math.Sin in the sample loop. The cosine is read from the same
// buffer, Quadrature samples further along.
type Table struct {
	// Samples holds sin(2*pi*i*f/(rate*density)) for one full period.
	Samples []float64

	// Quadrature is the offset into Samples that lands on the cosine of
	// the same angle.
	Quadrature int

	// Inverted is set when the sample at Quadrature sits at -1 rather than
	// +1, which means the table reads as -cos from that offset.
	Inverted bool
}

// Len returns the number of samples in one period of the table.
func (t Table) Len() int {
	return len(t.Samples)
}

// At returns the sine and cosine at index i of the table.
func (t Table) At(i int) (float64, float64) {
	l := len(t.Samples)
	s := t.Samples[i%l]
	c := t.Samples[(i+t.Quadrature)%l]
	if t.Inverted {
		c = -c
	}
	return s, c
}

// ComputeSinCos builds the smallest lookup table that holds exactly one
// period of a sine at mixFrequency, sampled at sampleRate*density.
//
// mixFrequency is a magnitude. For a negative mix frequency the caller
// negates the quadrature read instead.
//
// A zero mixFrequency yields a one sample table of 0.5*sqrt(2), which mixes
// at unity magnitude without shifting anything.
func ComputeSinCos(sampleRate, mixFrequency, density uint) Table {
	if density == 0 {
		density = 1
	}
	if mixFrequency == 0 || sampleRate == 0 {
		return Table{Samples: []float64{0.5 * math.Sqrt2}}
	}

	var (
		n     = uint64(sampleRate) * uint64(density)
		f     = uint64(mixFrequency)
		limit = n * maxSearchCycles

		samples = make([]float64, 1, n/f+1)

		closestOne    float64
		closestOneIdx int
		inverted      bool

		closestZero    = 1.0
		closestZeroIdx int
	)

	for i := uint64(1); i < limit; i++ {
		v := math.Sin(tau * float64(i) * float64(f) / float64(n))
		samples = append(samples, v)

		// The cosine starts wherever the table comes closest to unity
		// magnitude. If that sample is negative, the table has to be read
		// as an upside-down cosine.
		m := math.Abs(v)
		if m > closestOne {
			closestOne = m
			closestOneIdx = int(i)
			inverted = v < 0
		}

		// Only rising zero crossings can close the period.
		frac := (2 * i * f) / n
		if frac < 1 || frac%2 != 0 {
			continue
		}
		if m < closestZero {
			closestZero = m
			closestZeroIdx = int(i)
		}
		if i > 1 && closestZeroIdx == int(i) && m <= zeroThreshold {
			break
		}
	}

	if closestZeroIdx == 0 {
		closestZeroIdx = len(samples)
	}
	samples = samples[:closestZeroIdx]

	return Table{
		Samples:    samples,
		Quadrature: closestOneIdx % len(samples),
		Inverted:   inverted,
	}
}

// MinimizeSinCosGlitch picks the index into a freshly computed table whose
// (I, Q) phasor is closest to the one the previous table was producing when
// the frequency changed. Starting the new table there keeps the mixed output
// continuous instead of jumping back to phase zero.
//
// qscale is the sign applied to the quadrature read (see Oscillator).
// Tables shorter than a useful search window always start at 0.
func MinimizeSinCosGlitch(prevI, prevQ float64, quadrature int, qscale float64, table []float64) int {
	l := len(table)
	if l < minGlitchTableSize {
		return 0
	}

	var (
		best    int
		bestMag = math.Inf(1)
	)
	for g := 0; g < l; g++ {
		mixI := table[g]
		mixQ := table[(g+quadrature)%l] * qscale

		di := mixI - prevI
		dq := mixQ - prevQ
		mag := di*di + dq*dq
		if mag < bestMag {
			bestMag = mag
			best = g
		}
	}
	return best
}

// Oscillator is a local oscillator backed by a Table. It keeps separate
// in-phase and quadrature cursors into the table, both advanced by the
// table density for every frame.
//
// An Oscillator is not safe for concurrent use.
type Oscillator struct {
	sampleRate uint
	density    int

	hz     int
	table  []float64
	iIdx   int
	qIdx   int
	qscale float64
}

// NewOscillator returns an Oscillator sitting at 0 Hz.
func NewOscillator(sampleRate, density uint) *Oscillator {
	if density == 0 {
		density = 1
	}
	o := &Oscillator{
		sampleRate: sampleRate,
		density:    int(density),
	}
	o.install(ComputeSinCos(sampleRate, 0, density), 1)
	return o
}

func (o *Oscillator) install(t Table, sign float64) {
	o.table = t.Samples
	o.iIdx = 0
	o.qIdx = t.Quadrature
	o.qscale = sign
	if t.Inverted {
		o.qscale = -o.qscale
	}
}

// Frequency returns the signed frequency the table was last built for.
func (o *Oscillator) Frequency() int {
	return o.hz
}

// Len returns the length of the current table.
func (o *Oscillator) Len() int {
	return len(o.table)
}

// Phasor returns the current (I, Q) pair without advancing.
func (o *Oscillator) Phasor() (float64, float64) {
	return o.table[o.iIdx], o.table[o.qIdx] * o.qscale
}

// Next returns the current (I, Q) pair and moves both cursors one frame
// along.
func (o *Oscillator) Next() (float64, float64) {
	i, q := o.Phasor()
	l := len(o.table)
	o.iIdx = (o.iIdx + o.density) % l
	o.qIdx = (o.qIdx + o.density) % l
	return i, q
}

// Retune replaces the table with one for hz (which may be negative) and
// picks the starting phase that best matches the outgoing phasor.
//
// The glitch offset found for the in-phase cursor is applied to the
// quadrature cursor too. That is close to, but not exactly, the joint
// minimum.
func (o *Oscillator) Retune(hz int) {
	prevI, prevQ := o.Phasor()

	sign, mag := 1.0, hz
	if hz < 0 {
		sign, mag = -1.0, -hz
	}

	t := ComputeSinCos(o.sampleRate, uint(mag), uint(o.density))
	o.install(t, sign)

	l := len(o.table)
	g := MinimizeSinCosGlitch(prevI, prevQ, o.qIdx, o.qscale, o.table)
	o.iIdx = (o.iIdx + g) % l
	o.qIdx = (o.qIdx + g) % l
	o.hz = hz
}

// vim: foldmethod=marker
