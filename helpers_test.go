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
	"io"
	"math"
	"math/cmplx"
	"sync"
	"testing"
	"time"

	"hz.tools/sdr"
)

func near(a, b, tol float64) bool {
	return math.Abs(a-b) <= tol
}

// tone returns n frames of a complex exponential at hz.
func tone(n int, rate uint, hz, amp float64) sdr.SamplesC64 {
	out := make(sdr.SamplesC64, n)
	for i := range out {
		v := cmplx.Exp(complex(0, tau*hz*float64(i)/float64(rate)))
		out[i] = complex64(v * complex(amp, 0))
	}
	return out
}

// power is the squared magnitude of the DFT of x at hz.
func power(x []float64, rate uint, hz float64) float64 {
	var acc complex128
	for i, v := range x {
		acc += complex(v, 0) * cmplx.Exp(complex(0, -tau*hz*float64(i)/float64(rate)))
	}
	return real(acc * cmplx.Conj(acc))
}

func waitFor(t *testing.T, what string, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(5 * time.Second)
	for !cond() {
		if time.Now().After(deadline) {
			t.Fatalf("timed out waiting for %s", what)
		}
		time.Sleep(time.Millisecond)
	}
}

// memSource is an in memory Source.
type memSource struct {
	frames sdr.SamplesC64
	rate   uint
	pos    uint64

	err error
}

func newMemSource(frames sdr.SamplesC64) *memSource {
	return &memSource{frames: frames, rate: SampleRate}
}

func (m *memSource) SampleFormat() sdr.SampleFormat { return sdr.SampleFormatC64 }
func (m *memSource) SampleRate() uint               { return m.rate }
func (m *memSource) Frames() uint64                 { return uint64(len(m.frames)) }
func (m *memSource) Frame() uint64                  { return m.pos }

func (m *memSource) SeekFrame(frame uint64) error {
	if frame > uint64(len(m.frames)) {
		return errors.New("seek out of range")
	}
	m.pos = frame
	return nil
}

func (m *memSource) Read(s sdr.Samples) (int, error) {
	buf, ok := s.(sdr.SamplesC64)
	if !ok {
		return 0, sdr.ErrSampleFormatMismatch
	}
	if m.err != nil {
		return 0, m.err
	}
	if m.pos >= uint64(len(m.frames)) {
		return 0, io.EOF
	}
	n := copy(buf, m.frames[m.pos:])
	m.pos += uint64(n)
	return n, nil
}

// testSink records what the player hands it.
type testSink struct {
	mu        sync.Mutex
	samples   []int16
	writes    int
	completes int
	released  int
	writeErr  error
}

func (s *testSink) Write(pcm []int16) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.samples = append(s.samples, pcm...)
	s.writes++
	return s.writeErr
}

func (s *testSink) Complete() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.completes++
}

func (s *testSink) Release() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.released++
	return nil
}

func (s *testSink) counts() (samples, writes, completes, released int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.samples), s.writes, s.completes, s.released
}

func (s *testSink) pcm() []int16 {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]int16, len(s.samples))
	copy(out, s.samples)
	return out
}

// vim: foldmethod=marker
