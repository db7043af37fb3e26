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
	"encoding/binary"
	"io"

	"github.com/ebitengine/oto/v3"
)

// Oto plays through the platform sound device. Samples go through a pipe
// that the oto player drains, so Write blocks at the device rate.
type Oto struct {
	player *oto.Player
	pw     *io.PipeWriter
	buf    []byte
}

// NewOto opens the sound device for mono 16 bit audio at rate. Only one
// can exist per process.
func NewOto(rate uint) (*Oto, error) {
	ctx, ready, err := oto.NewContext(&oto.NewContextOptions{
		SampleRate:   int(rate),
		ChannelCount: 1,
		Format:       oto.FormatSignedInt16LE,
	})
	if err != nil {
		return nil, err
	}
	<-ready

	pr, pw := io.Pipe()
	player := ctx.NewPlayer(pr)
	player.Play()

	return &Oto{player: player, pw: pw}, nil
}

// Write implements the ssb.Sink interface.
func (o *Oto) Write(pcm []int16) error {
	need := len(pcm) * 2
	if cap(o.buf) < need {
		o.buf = make([]byte, need)
	}
	buf := o.buf[:need]
	for i, v := range pcm {
		binary.LittleEndian.PutUint16(buf[i*2:], uint16(v))
	}
	_, err := o.pw.Write(buf)
	return err
}

// Complete implements the ssb.Sink interface.
func (o *Oto) Complete() {}

// Release implements the ssb.Sink interface.
func (o *Oto) Release() error {
	o.pw.Close()
	return o.player.Close()
}

// vim: foldmethod=marker
