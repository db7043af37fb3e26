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

package riff

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"math"

	"hz.tools/sdr"
)

var (
	// ErrClosed is returned when writing to a closed Writer.
	ErrClosed = errors.New("riff: writer is closed")
)

// Chunk is an extra chunk written between "fmt " and "data".
type Chunk struct {
	ID   string
	Data []byte
}

// Writer writes stereo 32 bit float IQ frames to a WAVE container. The
// RIFF and data sizes are patched in by Close, so w must be seekable.
//
// Writer implements sdr.Writer.
type Writer struct {
	w          io.WriteSeeker
	sampleRate uint32

	dataSizeAt int64
	dataBytes  uint32
	buf        []byte
	closed     bool
}

// NewWriter writes the container header, the format chunk and any extra
// chunks, leaving w positioned at the start of the frame data.
func NewWriter(w io.WriteSeeker, sampleRate uint32, chunks ...Chunk) (*Writer, error) {
	const (
		channels      = 2
		bitsPerSample = 32
		blockAlign    = channels * bitsPerSample / 8
	)

	hdr := make([]byte, 0, 44)
	hdr = append(hdr, "RIFF"...)
	hdr = binary.LittleEndian.AppendUint32(hdr, 0)
	hdr = append(hdr, "WAVE"...)
	hdr = append(hdr, "fmt "...)
	hdr = binary.LittleEndian.AppendUint32(hdr, 16)
	hdr = binary.LittleEndian.AppendUint16(hdr, FormatFloat)
	hdr = binary.LittleEndian.AppendUint16(hdr, channels)
	hdr = binary.LittleEndian.AppendUint32(hdr, sampleRate)
	hdr = binary.LittleEndian.AppendUint32(hdr, sampleRate*blockAlign)
	hdr = binary.LittleEndian.AppendUint16(hdr, blockAlign)
	hdr = binary.LittleEndian.AppendUint16(hdr, bitsPerSample)

	for _, c := range chunks {
		if len(c.ID) != 4 {
			return nil, fmt.Errorf("riff: chunk id %q is not 4 bytes", c.ID)
		}
		hdr = append(hdr, c.ID...)
		hdr = binary.LittleEndian.AppendUint32(hdr, uint32(len(c.Data)))
		hdr = append(hdr, c.Data...)
	}

	hdr = append(hdr, "data"...)
	if _, err := w.Write(hdr); err != nil {
		return nil, err
	}
	at, err := w.Seek(0, io.SeekCurrent)
	if err != nil {
		return nil, err
	}
	if _, err := w.Write([]byte{0, 0, 0, 0}); err != nil {
		return nil, err
	}

	return &Writer{
		w:          w,
		sampleRate: sampleRate,
		dataSizeAt: at,
	}, nil
}

// SampleFormat implements the sdr.Writer interface.
func (w *Writer) SampleFormat() sdr.SampleFormat {
	return sdr.SampleFormatC64
}

// SampleRate implements the sdr.Writer interface.
func (w *Writer) SampleRate() uint {
	return uint(w.sampleRate)
}

// Write implements the sdr.Writer interface.
func (w *Writer) Write(samples sdr.Samples) (int, error) {
	if w.closed {
		return 0, ErrClosed
	}
	frames, ok := samples.(sdr.SamplesC64)
	if !ok {
		return 0, sdr.ErrSampleFormatMismatch
	}

	need := len(frames) * 8
	if cap(w.buf) < need {
		w.buf = make([]byte, need)
	}
	buf := w.buf[:need]
	for i, s := range frames {
		binary.LittleEndian.PutUint32(buf[i*8:], math.Float32bits(real(s)))
		binary.LittleEndian.PutUint32(buf[i*8+4:], math.Float32bits(imag(s)))
	}

	n, err := w.w.Write(buf)
	w.dataBytes += uint32(n)
	return n / 8, err
}

// Close patches the RIFF and data chunk sizes. It does not close the
// underlying writer.
func (w *Writer) Close() error {
	if w.closed {
		return nil
	}
	w.closed = true

	end, err := w.w.Seek(0, io.SeekCurrent)
	if err != nil {
		return err
	}

	var b [4]byte
	binary.LittleEndian.PutUint32(b[:], uint32(end-8))
	if _, err := w.w.Seek(4, io.SeekStart); err != nil {
		return err
	}
	if _, err := w.w.Write(b[:]); err != nil {
		return err
	}

	binary.LittleEndian.PutUint32(b[:], w.dataBytes)
	if _, err := w.w.Seek(w.dataSizeAt, io.SeekStart); err != nil {
		return err
	}
	if _, err := w.w.Write(b[:]); err != nil {
		return err
	}

	_, err = w.w.Seek(end, io.SeekStart)
	return err
}

// vim: foldmethod=marker
