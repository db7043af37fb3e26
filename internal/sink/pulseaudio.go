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
	"hz.tools/pulseaudio"
)

// paStream is the part of the PulseAudio writer this package uses. Write
// takes any of the sample slice types the stream was configured for.
type paStream interface {
	Write(samples interface{}) error
	Close()
}

var _ paStream = (*pulseaudio.Writer)(nil)

// PulseAudio plays to a PulseAudio server. Writes block while the server
// buffer is full, which paces playback in real time.
type PulseAudio struct {
	speaker paStream
	buf     []float32
}

// NewPulseAudio opens a mono float stream at rate on sinkName.
func NewPulseAudio(rate uint, sinkName string) (*PulseAudio, error) {
	speaker, err := pulseaudio.NewWriter(pulseaudio.Config{
		Format:     pulseaudio.SampleFormatFloat32NE,
		Rate:       rate,
		AppName:    appName,
		StreamName: streamName,
		Channels:   1,
		SinkName:   sinkName,
	})
	if err != nil {
		return nil, err
	}
	return &PulseAudio{speaker: speaker}, nil
}

// Write implements the ssb.Sink interface.
func (p *PulseAudio) Write(pcm []int16) error {
	if cap(p.buf) < len(pcm) {
		p.buf = make([]float32, len(pcm))
	}
	p.buf = p.buf[:len(pcm)]
	toFloat32(p.buf, pcm)
	return p.speaker.Write(p.buf)
}

// Complete implements the ssb.Sink interface.
func (p *PulseAudio) Complete() {}

// Release closes the PulseAudio stream.
func (p *PulseAudio) Release() error {
	p.speaker.Close()
	return nil
}

func toFloat32(dst []float32, pcm []int16) {
	for i, v := range pcm {
		dst[i] = float32(v) / 32768
	}
}

// vim: foldmethod=marker
