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
	"context"
	"errors"
	"fmt"
	"io"
	"math"
	"time"

	"hz.tools/rf"
	"hz.tools/sdr"
)

const (
	// SliceInputRate is the IQ rate the slicer accepts.
	SliceInputRate = 192000

	// sliceDecimation is how many input frames go into each output frame.
	sliceDecimation = SliceInputRate / SampleRate

	// MaxSliceOffset is the furthest the output center can be from the
	// input center.
	MaxSliceOffset = rf.Hz(SliceInputRate / 2)

	sliceBatch = 16 * 1024
)

var (
	// ErrSliceOffset is returned when the output center is outside the
	// input recording.
	ErrSliceOffset = errors.New("ssb: output center is outside the input band")

	// ErrSliceStart is returned when the output starts before the input.
	ErrSliceStart = errors.New("ssb: output start is before input start")

	// ErrSliceNegative is returned for a negative center, offset or
	// interval.
	ErrSliceNegative = errors.New("ssb: negative slice parameter")

	// ErrSliceRate is returned when the input is not at SliceInputRate.
	ErrSliceRate = errors.New("ssb: input is not at the slicer rate")
)

// SliceConfig describes which part of a wide recording to cut out.
type SliceConfig struct {
	// InputCenter is the RF frequency at the middle of the input.
	InputCenter rf.Hz

	// InputStart is the wall clock time of the first input frame. The
	// zero value means now.
	InputStart time.Time

	// InputFlipped swaps I and Q on the way in, for hardware that puts Q
	// on the left channel.
	InputFlipped bool

	// OutputCenter is the RF frequency to put at the middle of the output.
	OutputCenter rf.Hz

	// OutputStart, if set, is the wall clock time to start the output at.
	// It takes precedence over Offset.
	OutputStart time.Time

	// Offset is how far into the input to start.
	Offset time.Duration

	// Interval is how much to cut. Zero means to the end of the input.
	Interval time.Duration
}

// SlicePlan is a validated SliceConfig in frames.
type SlicePlan struct {
	// Mix is the frequency shifted down to zero.
	Mix rf.Hz

	// Skip is the number of input frames to drop first.
	Skip uint64

	// Frames is the number of input frames to process. Zero means all.
	Frames uint64

	// Flipped swaps I and Q.
	Flipped bool

	// Info goes into the output container.
	Info SliceInfo
}

// Plan checks c and works out the frame arithmetic.
func (c SliceConfig) Plan() (SlicePlan, error) {
	switch {
	case c.InputCenter < 0:
		return SlicePlan{}, fmt.Errorf("%w: input center %v", ErrSliceNegative, c.InputCenter)
	case c.Offset < 0:
		return SlicePlan{}, fmt.Errorf("%w: offset %s", ErrSliceNegative, c.Offset)
	case c.Interval < 0:
		return SlicePlan{}, fmt.Errorf("%w: interval %s", ErrSliceNegative, c.Interval)
	}

	mix := c.OutputCenter - c.InputCenter
	if math.Abs(float64(mix)) > float64(MaxSliceOffset) {
		return SlicePlan{}, fmt.Errorf("%w: %v is %v from %v",
			ErrSliceOffset, c.OutputCenter, mix, c.InputCenter)
	}

	inputStart := c.InputStart
	if inputStart.IsZero() {
		inputStart = time.Now()
	}

	offset := c.Offset
	outputStart := inputStart.Add(offset)
	if !c.OutputStart.IsZero() {
		if c.OutputStart.Before(inputStart) {
			return SlicePlan{}, ErrSliceStart
		}
		outputStart = c.OutputStart
		offset = c.OutputStart.Sub(inputStart)
	}

	return SlicePlan{
		Mix:     mix,
		Skip:    sliceFrames(offset),
		Frames:  sliceFrames(c.Interval),
		Flipped: c.InputFlipped,
		Info: SliceInfo{
			Center: c.OutputCenter,
			Start:  outputStart.Truncate(time.Second),
		},
	}, nil
}

func sliceFrames(d time.Duration) uint64 {
	return uint64(d/time.Second)*SliceInputRate +
		uint64(d%time.Second)*SliceInputRate/uint64(time.Second)
}

// Slicer shifts a 192 kHz IQ stream, low passes it and keeps every 16th
// frame, giving 12 kHz IQ centered on the chosen frequency.
type Slicer struct {
	osc     *Oscillator
	lowpass [2]FIRFilter
	flipped bool
	phase   int
}

// NewSlicer returns a Slicer that moves mix down to zero.
func NewSlicer(mix rf.Hz, flipped bool) *Slicer {
	s := &Slicer{
		osc:     NewOscillator(SliceInputRate, 1),
		flipped: flipped,
	}
	s.osc.Retune(int(math.Round(float64(mix))))
	for i := range s.lowpass {
		s.lowpass[i].SetDefinition(sliceTaps[:])
	}
	return s
}

// Process consumes in and writes the decimated frames to out, returning
// how many it wrote. out must hold len(in)/16+1 frames.
func (s *Slicer) Process(in, out sdr.SamplesC64) int {
	n := 0
	f0, f1 := &s.lowpass[0], &s.lowpass[1]
	for _, v := range in {
		inI, inQ := float64(real(v)), float64(imag(v))
		if s.flipped {
			inI, inQ = inQ, inI
		}

		mixI, mixQ := s.osc.Next()
		f0.Apply(inI*mixI - inQ*mixQ)
		f1.Apply(inQ*mixI + inI*mixQ)

		s.phase++
		if s.phase < sliceDecimation {
			continue
		}
		s.phase = 0
		if n == len(out) {
			continue
		}
		out[n] = complex(float32(f0.Value()), float32(f1.Value()))
		n++
	}
	return n
}

type frameSeeker interface {
	SeekFrame(uint64) error
}

// Slice runs plan over src, writing 12 kHz frames to dst. It returns the
// number of frames written. A src that can seek skips ahead directly,
// anything else is read and discarded.
func Slice(ctx context.Context, src sdr.Reader, dst sdr.Writer, plan SlicePlan) (uint64, error) {
	if src.SampleFormat() != sdr.SampleFormatC64 || dst.SampleFormat() != sdr.SampleFormatC64 {
		return 0, sdr.ErrSampleFormatMismatch
	}
	if src.SampleRate() != SliceInputRate {
		return 0, fmt.Errorf("%w: %d", ErrSliceRate, src.SampleRate())
	}

	in := make(sdr.SamplesC64, sliceBatch)
	out := make(sdr.SamplesC64, sliceBatch/sliceDecimation+1)

	if err := skipFrames(ctx, src, plan.Skip, in); err != nil {
		return 0, err
	}

	var (
		slicer  = NewSlicer(plan.Mix, plan.Flipped)
		left    = plan.Frames
		written uint64
	)
	for plan.Frames == 0 || left > 0 {
		if err := ctx.Err(); err != nil {
			return written, err
		}

		buf := in
		if plan.Frames != 0 && uint64(len(buf)) > left {
			buf = buf[:left]
		}
		n, err := src.Read(buf)
		if n > 0 {
			left -= min(left, uint64(n))
			m := slicer.Process(buf[:n], out)
			if m > 0 {
				if _, werr := dst.Write(out[:m]); werr != nil {
					return written, werr
				}
				written += uint64(m)
			}
		}
		if errors.Is(err, io.EOF) || (err == nil && n == 0) {
			break
		}
		if err != nil {
			return written, err
		}
	}
	return written, nil
}

func skipFrames(ctx context.Context, src sdr.Reader, skip uint64, buf sdr.SamplesC64) error {
	if skip == 0 {
		return nil
	}
	if s, ok := src.(frameSeeker); ok {
		return s.SeekFrame(skip)
	}
	for skip > 0 {
		if err := ctx.Err(); err != nil {
			return err
		}
		chunk := buf
		if uint64(len(chunk)) > skip {
			chunk = chunk[:skip]
		}
		n, err := src.Read(chunk)
		skip -= uint64(n)
		if err != nil {
			return err
		}
		if n == 0 {
			return io.ErrUnexpectedEOF
		}
	}
	return nil
}

// vim: foldmethod=marker
