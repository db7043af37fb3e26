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
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/go-audio/wav"
)

type countSink struct {
	completes int
}

func (c *countSink) Write([]int16) error { return nil }
func (c *countSink) Complete()           { c.completes++ }
func (c *countSink) Release() error      { return nil }

func TestWAVSink(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.wav")
	w, err := CreateWAV(path, 12000)
	if err != nil {
		t.Fatal(err)
	}
	want := []int16{0, 1, -1, 32767, -32767, 1234, -4321}
	if err := w.Write(want[:3]); err != nil {
		t.Fatal(err)
	}
	if err := w.Write(want[3:]); err != nil {
		t.Fatal(err)
	}
	w.Complete()
	if err := w.Release(); err != nil {
		t.Fatal(err)
	}

	f, err := os.Open(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()

	dec := wav.NewDecoder(f)
	if !dec.IsValidFile() {
		t.Fatal("not a valid wav file")
	}
	buf, err := dec.FullPCMBuffer()
	if err != nil {
		t.Fatal(err)
	}
	if dec.SampleRate != 12000 || dec.NumChans != 1 || dec.BitDepth != 16 {
		t.Errorf("header: %d Hz, %d channels, %d bits", dec.SampleRate, dec.NumChans, dec.BitDepth)
	}
	if len(buf.Data) != len(want) {
		t.Fatalf("got %d samples, want %d", len(buf.Data), len(want))
	}
	for i, v := range want {
		if buf.Data[i] != int(v) {
			t.Errorf("sample %d: got %d, want %d", i, buf.Data[i], v)
		}
	}
}

func TestNotifier(t *testing.T) {
	inner := &countSink{}
	n := Notify(inner)

	select {
	case <-n.Completed():
		t.Fatal("completed before the end")
	default:
	}

	n.Complete()
	n.Complete()
	<-n.Completed()
	if inner.completes != 2 {
		t.Errorf("inner sink saw %d completes", inner.completes)
	}
}

func TestOpenErrors(t *testing.T) {
	if _, err := Open(Config{Kind: "wav", Rate: 12000}); err == nil {
		t.Error("wav without a path opened")
	}
	if _, err := Open(Config{Kind: "tape"}); err == nil {
		t.Error("unknown kind opened")
	}
}

// fakeStream has the method set of pulseaudio.Writer.
type fakeStream struct {
	written [][]float32
	closed  int
}

func (f *fakeStream) Write(samples interface{}) error {
	buf, ok := samples.([]float32)
	if !ok {
		return fmt.Errorf("unexpected sample type %T", samples)
	}
	f.written = append(f.written, append([]float32(nil), buf...))
	return nil
}

func (f *fakeStream) Close() { f.closed++ }

func TestPulseAudioSink(t *testing.T) {
	stream := &fakeStream{}
	p := &PulseAudio{speaker: stream}

	if err := p.Write([]int16{16384, -16384}); err != nil {
		t.Fatal(err)
	}
	if err := p.Write([]int16{0}); err != nil {
		t.Fatal(err)
	}
	if len(stream.written) != 2 || len(stream.written[0]) != 2 || len(stream.written[1]) != 1 {
		t.Fatalf("writes: %v", stream.written)
	}
	if stream.written[0][0] != 0.5 || stream.written[0][1] != -0.5 || stream.written[1][0] != 0 {
		t.Errorf("samples: %v", stream.written)
	}

	p.Complete()
	if stream.closed != 0 {
		t.Fatal("Complete closed the stream")
	}
	if err := p.Release(); err != nil {
		t.Fatal(err)
	}
	if stream.closed != 1 {
		t.Errorf("stream closed %d times, want 1", stream.closed)
	}
}

func TestToFloat32(t *testing.T) {
	out := make([]float32, 3)
	toFloat32(out, []int16{0, 16384, -32768})
	if out[0] != 0 || out[1] != 0.5 || out[2] != -1 {
		t.Errorf("got %v", out)
	}
}

// vim: foldmethod=marker
