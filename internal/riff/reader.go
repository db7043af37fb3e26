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

// Package riff reads and writes the chunked little-endian WAVE containers
// IQ recordings are kept in. Only stereo frames are of interest here: the
// left channel carries I and the right channel carries Q.
package riff

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"math"
	"os"

	"hz.tools/sdr"
)

const (
	// FormatPCM is the WAVE format code for integer PCM.
	FormatPCM uint16 = 1

	// FormatFloat is the WAVE format code for IEEE floating point.
	FormatFloat uint16 = 3

	// maxChunkCapture is the largest non-data chunk kept in memory. Larger
	// ones are skipped by size.
	maxChunkCapture = 64 * 1024

	pcm16Scale = 1.0 / math.MaxInt16
)

var (
	// ErrNotRIFF is returned when the stream does not start with "RIFF".
	ErrNotRIFF = errors.New("riff: missing RIFF header")

	// ErrNotWAVE is returned when the RIFF form type is not "WAVE".
	ErrNotWAVE = errors.New("riff: missing WAVE header")

	// ErrMissingFormat is returned when no usable "fmt " chunk precedes the
	// data.
	ErrMissingFormat = errors.New("riff: missing fmt chunk")

	// ErrMissingData is returned when the container has no "data" chunk.
	ErrMissingData = errors.New("riff: missing data chunk")

	// ErrUnsupported is returned by Read when the frame layout is not
	// stereo 16 bit PCM or stereo 32 bit float.
	ErrUnsupported = errors.New("riff: unsupported frame layout")

	// ErrSeekRange is returned when seeking past the end of the data.
	ErrSeekRange = errors.New("riff: seek past end of data")
)

// Header is the content of the "fmt " chunk.
type Header struct {
	Format        uint16
	Channels      uint16
	SampleRate    uint32
	ByteRate      uint32
	BlockAlign    uint16
	BitsPerSample uint16
}

func (h Header) frameSize() int64 {
	if h.BlockAlign != 0 {
		return int64(h.BlockAlign)
	}
	return int64(h.Channels) * int64(h.BitsPerSample) / 8
}

// IsFloat32 reports whether frames are 32 bit IEEE floats.
func (h Header) IsFloat32() bool {
	return h.Format == FormatFloat && h.BitsPerSample == 32
}

// IsPCM16 reports whether frames are 16 bit signed integers.
func (h Header) IsPCM16() bool {
	return h.Format == FormatPCM && h.BitsPerSample == 16
}

type decodeFunc func(dst sdr.SamplesC64, raw []byte, frameSize int)

func decodeFloat32(dst sdr.SamplesC64, raw []byte, frameSize int) {
	for i := range dst {
		b := raw[i*frameSize:]
		dst[i] = complex(
			math.Float32frombits(binary.LittleEndian.Uint32(b[0:4])),
			math.Float32frombits(binary.LittleEndian.Uint32(b[4:8])),
		)
	}
}

func decodePCM16(dst sdr.SamplesC64, raw []byte, frameSize int) {
	for i := range dst {
		b := raw[i*frameSize:]
		dst[i] = complex(
			float32(float64(int16(binary.LittleEndian.Uint16(b[0:2])))*pcm16Scale),
			float32(float64(int16(binary.LittleEndian.Uint16(b[2:4])))*pcm16Scale),
		)
	}
}

// Reader streams IQ frames out of the first data chunk of a WAVE
// container. It implements sdr.Reader, delivering sdr.SamplesC64.
type Reader struct {
	Header Header

	r      io.ReadSeeker
	closer io.Closer
	chunks map[string][]byte

	decode    decodeFunc
	frameSize int64
	dataStart int64
	dataSize  int64
	pos       int64

	raw []byte
}

// Open opens the named file and parses its header. The file is closed by
// Reader.Close.
func Open(path string) (*Reader, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	r, err := NewReader(f)
	if err != nil {
		f.Close()
		return nil, err
	}
	r.closer = f
	return r, nil
}

// NewReader parses the container header of rs, walking chunks until the
// start of the first data chunk. Chunks other than "fmt " and "data" are
// kept by id (see Chunk).
//
// A data chunk with a declared size of zero runs to the end of the stream,
// which is what a recorder that never finalised its header leaves behind.
func NewReader(rs io.ReadSeeker) (*Reader, error) {
	var hdr [12]byte
	if _, err := io.ReadFull(rs, hdr[:]); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNotRIFF, err)
	}
	if string(hdr[0:4]) != "RIFF" {
		return nil, ErrNotRIFF
	}
	if string(hdr[8:12]) != "WAVE" {
		return nil, ErrNotWAVE
	}

	r := &Reader{
		r:      rs,
		chunks: map[string][]byte{},
	}

	haveFormat := false
	for {
		var ch [8]byte
		if _, err := io.ReadFull(rs, ch[:]); err != nil {
			if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
				return nil, ErrMissingData
			}
			return nil, err
		}
		id := string(ch[0:4])
		size := int64(binary.LittleEndian.Uint32(ch[4:8]))

		switch id {
		case "fmt ":
			if size < 16 {
				return nil, fmt.Errorf("%w: fmt chunk is %d bytes", ErrMissingFormat, size)
			}
			buf := make([]byte, size)
			if _, err := io.ReadFull(rs, buf); err != nil {
				return nil, fmt.Errorf("%w: %v", ErrMissingFormat, err)
			}
			r.Header = Header{
				Format:        binary.LittleEndian.Uint16(buf[0:2]),
				Channels:      binary.LittleEndian.Uint16(buf[2:4]),
				SampleRate:    binary.LittleEndian.Uint32(buf[4:8]),
				ByteRate:      binary.LittleEndian.Uint32(buf[8:12]),
				BlockAlign:    binary.LittleEndian.Uint16(buf[12:14]),
				BitsPerSample: binary.LittleEndian.Uint16(buf[14:16]),
			}
			haveFormat = true

		case "data":
			if !haveFormat {
				return nil, ErrMissingFormat
			}
			if err := r.startData(size); err != nil {
				return nil, err
			}
			return r, nil

		default:
			if size > maxChunkCapture {
				if _, err := rs.Seek(size, io.SeekCurrent); err != nil {
					return nil, err
				}
				continue
			}
			buf := make([]byte, size)
			n, err := io.ReadFull(rs, buf)
			if err != nil && !errors.Is(err, io.ErrUnexpectedEOF) && !errors.Is(err, io.EOF) {
				return nil, err
			}
			r.chunks[id] = buf[:n]
		}
	}
}

func (r *Reader) startData(size int64) error {
	start, err := r.r.Seek(0, io.SeekCurrent)
	if err != nil {
		return err
	}
	end, err := r.r.Seek(0, io.SeekEnd)
	if err != nil {
		return err
	}
	if _, err := r.r.Seek(start, io.SeekStart); err != nil {
		return err
	}

	if size == 0 || start+size > end {
		size = end - start
	}

	r.dataStart = start
	r.dataSize = size
	r.pos = 0
	r.frameSize = r.Header.frameSize()

	switch {
	case r.Header.Channels == 2 && r.Header.IsFloat32() && r.frameSize >= 8:
		r.decode = decodeFloat32
	case r.Header.Channels == 2 && r.Header.IsPCM16() && r.frameSize >= 4:
		r.decode = decodePCM16
	}
	return nil
}

// Chunk returns the body of a non-data chunk seen before the data.
func (r *Reader) Chunk(id string) ([]byte, bool) {
	b, ok := r.chunks[id]
	return b, ok
}

// SampleFormat implements the sdr.Reader interface.
func (r *Reader) SampleFormat() sdr.SampleFormat {
	return sdr.SampleFormatC64
}

// SampleRate implements the sdr.Reader interface.
func (r *Reader) SampleRate() uint {
	return uint(r.Header.SampleRate)
}

// Frames returns the number of whole frames in the data chunk.
func (r *Reader) Frames() uint64 {
	if r.frameSize == 0 {
		return 0
	}
	return uint64(r.dataSize / r.frameSize)
}

// Frame returns the index of the next frame Read will return.
func (r *Reader) Frame() uint64 {
	if r.frameSize == 0 {
		return 0
	}
	return uint64(r.pos / r.frameSize)
}

// SeekFrame moves the read position to the given frame.
func (r *Reader) SeekFrame(frame uint64) error {
	if r.frameSize == 0 {
		return ErrUnsupported
	}
	pos := int64(frame) * r.frameSize
	if frame > uint64(r.dataSize/r.frameSize) || pos > r.dataSize {
		return ErrSeekRange
	}
	if _, err := r.r.Seek(r.dataStart+pos, io.SeekStart); err != nil {
		return err
	}
	r.pos = pos
	return nil
}

// Read implements the sdr.Reader interface. A short read near the end of
// the data returns the whole frames that were available; after that, Read
// returns io.EOF.
func (r *Reader) Read(samples sdr.Samples) (int, error) {
	buf, ok := samples.(sdr.SamplesC64)
	if !ok {
		return 0, sdr.ErrSampleFormatMismatch
	}
	if r.decode == nil {
		return 0, ErrUnsupported
	}
	if len(buf) == 0 {
		return 0, nil
	}

	remaining := (r.dataSize - r.pos) / r.frameSize
	if remaining <= 0 {
		return 0, io.EOF
	}
	n := int64(len(buf))
	if n > remaining {
		n = remaining
	}

	need := int(n * r.frameSize)
	if cap(r.raw) < need {
		r.raw = make([]byte, need)
	}
	raw := r.raw[:need]

	got, err := io.ReadFull(r.r, raw)
	r.pos += int64(got)
	frames := got / int(r.frameSize)
	r.decode(buf[:frames], raw, int(r.frameSize))

	switch {
	case err == nil:
		return frames, nil
	case errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF):
		if frames > 0 {
			return frames, nil
		}
		return 0, io.EOF
	default:
		return frames, err
	}
}

// Close closes the underlying file if the Reader was made by Open.
func (r *Reader) Close() error {
	if r.closer == nil {
		return nil
	}
	return r.closer.Close()
}

// vim: foldmethod=marker
