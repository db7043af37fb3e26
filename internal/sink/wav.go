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

package sink

import (
	"io"
	"os"

	"github.com/go-audio/audio"
	"github.com/go-audio/wav"
)

const wavPCM = 1

// WAV writes 16 bit mono PCM to a file, as fast as it is handed audio.
type WAV struct {
	enc    *wav.Encoder
	closer io.Closer
	buf    audio.IntBuffer
}

// CreateWAV creates path and writes a WAV header for rate.
func CreateWAV(path string, rate uint) (*WAV, error) {
	f, err := os.Create(path)
	if err != nil {
		return nil, err
	}
	w := NewWAV(f, rate)
	w.closer = f
	return w, nil
}

// NewWAV writes to ws, which is left open by Release.
func NewWAV(ws io.WriteSeeker, rate uint) *WAV {
	return &WAV{
		enc: wav.NewEncoder(ws, int(rate), 16, 1, wavPCM),
		buf: audio.IntBuffer{
			Format:         &audio.Format{NumChannels: 1, SampleRate: int(rate)},
			SourceBitDepth: 16,
		},
	}
}

// Write implements the ssb.Sink interface.
func (w *WAV) Write(pcm []int16) error {
	if cap(w.buf.Data) < len(pcm) {
		w.buf.Data = make([]int, len(pcm))
	}
	w.buf.Data = w.buf.Data[:len(pcm)]
	for i, v := range pcm {
		w.buf.Data[i] = int(v)
	}
	return w.enc.Write(&w.buf)
}

// Complete implements the ssb.Sink interface.
func (w *WAV) Complete() {}

// Release finishes the WAV header and closes the file.
func (w *WAV) Release() error {
	err := w.enc.Close()
	if w.closer != nil {
		if cerr := w.closer.Close(); err == nil {
			err = cerr
		}
	}
	return err
}

// vim: foldmethod=marker
