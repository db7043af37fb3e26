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

// Package sink holds the places demodulated audio can go: a PulseAudio
// stream, a local sound device via oto, or a WAV file.
//
// Every sink takes mono signed 16 bit samples and implements ssb.Sink.
package sink

import (
	"fmt"
	"sync"
)

const (
	appName    = "rf"
	streamName = "ssb"
)

// Config will define which sink to open and how.
type Config struct {
	// Kind is one of "pulseaudio", "oto" or "wav".
	Kind string

	// Rate is the sample rate of the audio.
	Rate uint

	// SinkName is the PulseAudio sink to play to. Empty means the
	// default.
	SinkName string

	// Path is the file a "wav" sink writes.
	Path string
}

// Sink is the set of methods every sink here has.
type Sink interface {
	Write(pcm []int16) error
	Complete()
	Release() error
}

// Open creates the sink cfg asks for.
func Open(cfg Config) (Sink, error) {
	switch cfg.Kind {
	case "", "pulseaudio":
		return NewPulseAudio(cfg.Rate, cfg.SinkName)
	case "oto":
		return NewOto(cfg.Rate)
	case "wav":
		if cfg.Path == "" {
			return nil, fmt.Errorf("sink: wav sink needs a path")
		}
		return CreateWAV(cfg.Path, cfg.Rate)
	default:
		return nil, fmt.Errorf("sink: unknown kind %q", cfg.Kind)
	}
}

// Notifier wraps a Sink and closes a channel the first time the stream
// ends.
type Notifier struct {
	Sink

	once sync.Once
	done chan struct{}
}

// Notify wraps s.
func Notify(s Sink) *Notifier {
	return &Notifier{Sink: s, done: make(chan struct{})}
}

// Complete passes the end of stream on to the wrapped sink.
func (n *Notifier) Complete() {
	n.Sink.Complete()
	n.once.Do(func() { close(n.done) })
}

// Completed is closed once the stream has reached its end.
func (n *Notifier) Completed() <-chan struct{} {
	return n.done
}

// vim: foldmethod=marker
