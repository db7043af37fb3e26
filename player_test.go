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
	"encoding/binary"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"hz.tools/rf"
	"hz.tools/sdr"

	"hz.tools/ssb/internal/riff"
)

func newTestPlayer(t *testing.T, frames int) (*Player, *testSink, *memSource) {
	t.Helper()
	src := newMemSource(tone(frames, SampleRate, 1500, 0.5))
	sink := &testSink{}
	p, err := NewPlayer(src, sink, PlayerConfig{})
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { p.Close() })
	return p, sink, src
}

func waitApplied(t *testing.T, p *Player, want Tuning) {
	t.Helper()
	waitFor(t, "tuning to apply", func() bool { return p.Applied() == want })
}

func waitCompletes(t *testing.T, sink *testSink, n int) {
	t.Helper()
	waitFor(t, "end of stream", func() bool {
		_, _, c, _ := sink.counts()
		return c >= n
	})
}

func TestPlayerStartsPaused(t *testing.T) {
	p, sink, _ := newTestPlayer(t, 2400)

	waitApplied(t, p, Tuning{Receiver: 0, BFO: 0, Bandwidth: WideSSB})
	if p.State() != Paused {
		t.Errorf("state %s, want paused", p.State())
	}
	time.Sleep(20 * time.Millisecond)
	if n, _, _, _ := sink.counts(); n != 0 {
		t.Errorf("%d samples written while paused", n)
	}
	if p.Length() != 200*time.Millisecond {
		t.Errorf("length %s", p.Length())
	}
	if p.IFBoundary() != rf.Hz(6000) {
		t.Errorf("if boundary %v", float64(p.IFBoundary()))
	}
}

func TestPlayerPlaysToEnd(t *testing.T) {
	p, sink, _ := newTestPlayer(t, 1210)

	p.Play()
	if p.State() != Playing {
		t.Errorf("state %s, want playing", p.State())
	}
	waitCompletes(t, sink, 1)

	n, writes, completes, _ := sink.counts()
	if n != 1210 {
		t.Errorf("wrote %d samples, want 1210", n)
	}
	if writes != 11 {
		t.Errorf("%d writes, want 11", writes)
	}
	if completes != 1 {
		t.Errorf("%d completes, want 1", completes)
	}
	waitFor(t, "position", func() bool {
		return p.Position() == framesToDuration(1210)
	})
	if p.Gain() == 1 || p.Peak() == 0 {
		t.Errorf("gain snapshot not updated: gain %v peak %v", p.Gain(), p.Peak())
	}
}

func TestPlayerCommandsApplyWhilePaused(t *testing.T) {
	p, sink, _ := newTestPlayer(t, 1200)
	waitApplied(t, p, Tuning{Bandwidth: WideSSB})

	p.SetRxFrequency(1234)
	p.SetMode(LSB)
	waitApplied(t, p, Tuning{Receiver: 1230, BFO: -1100, Bandwidth: WideSSB})

	if got := p.RxFrequency(); got != 1234 {
		t.Errorf("rx %v, want the requested 1234", float64(got))
	}
	if got := p.BFOOffset(); got != -1100 {
		t.Errorf("bfo %v", float64(got))
	}
	if n, _, _, _ := sink.counts(); n != 0 {
		t.Fatalf("%d samples written while paused", n)
	}

	p.SetMode(CW)
	p.Play()
	waitCompletes(t, sink, 1)
	if got := p.Applied(); got != (Tuning{Receiver: 1230, BFO: 500, Bandwidth: WideCW}) {
		t.Errorf("applied %+v", got)
	}
}

func TestPlayerIgnoresBadRequests(t *testing.T) {
	p, _, _ := newTestPlayer(t, 1200)
	p.SetRxFrequency(700)
	p.SetBFOOffset(1100)

	p.SetRxFrequency(6000)
	p.SetRxFrequency(-6000.5)
	p.SetBFOOffset(9000)
	p.SetBandwidth(Bandwidth(17))

	if got := p.RxFrequency(); got != 700 {
		t.Errorf("rx %v", float64(got))
	}
	if got := p.BFOOffset(); got != 1100 {
		t.Errorf("bfo %v", float64(got))
	}
	if got := p.Bandwidth(); got != WideSSB {
		t.Errorf("bandwidth %s", got)
	}
	waitApplied(t, p, Tuning{Receiver: 700, BFO: 1100, Bandwidth: WideSSB})
}

func TestPlayerQueuesOnlyChanges(t *testing.T) {
	src := newMemSource(nil)
	p, err := newPlayer(src, &testSink{}, PlayerConfig{})
	if err != nil {
		t.Fatal(err)
	}
	// The worker is not running, so the queue can be looked at directly.
	if len(p.queue) != 3 {
		t.Fatalf("construction queued %d commands, want 3", len(p.queue))
	}

	p.SetRxFrequency(1001)
	p.SetRxFrequency(1004)
	p.SetRxFrequency(999)
	p.SetBandwidth(WideSSB)
	p.SetBandwidth(NarrowSSB)
	p.SetBandwidth(NarrowSSB)

	want := []command{
		setBandwidth{bw: WideSSB},
		retuneReceiver{hz: 0},
		retuneWeaver{hz: 0},
		retuneReceiver{hz: 1000},
		setBandwidth{bw: NarrowSSB},
	}
	if len(p.queue) != len(want) {
		t.Fatalf("queue %v, want %v", p.queue, want)
	}
	for i := range want {
		if p.queue[i] != want[i] {
			t.Errorf("queue[%d] = %#v, want %#v", i, p.queue[i], want[i])
		}
	}
	if got := p.RxFrequency(); got != 999 {
		t.Errorf("rx %v, want the last request", float64(got))
	}
}

func TestPlayerSeek(t *testing.T) {
	p, sink, _ := newTestPlayer(t, 1200)
	p.Play()
	waitCompletes(t, sink, 1)

	p.SetPosition(50 * time.Millisecond)
	waitCompletes(t, sink, 2)
	if n, _, _, _ := sink.counts(); n != 1800 {
		t.Errorf("wrote %d samples, want 1800", n)
	}

	// Out of range is ignored, negative goes to the top.
	p.SetPosition(time.Hour)
	time.Sleep(10 * time.Millisecond)
	if _, _, c, _ := sink.counts(); c != 2 {
		t.Errorf("out of range seek replayed: %d completes", c)
	}
	p.SetPosition(-time.Second)
	waitCompletes(t, sink, 3)
	if n, _, _, _ := sink.counts(); n != 3000 {
		t.Errorf("wrote %d samples, want 3000", n)
	}
}

func TestPlayerPause(t *testing.T) {
	p, sink, _ := newTestPlayer(t, SampleRate*60)
	p.Play()
	waitFor(t, "some audio", func() bool {
		n, _, _, _ := sink.counts()
		return n > 0
	})
	p.Pause()
	if p.State() != Paused {
		t.Fatalf("state %s", p.State())
	}
	time.Sleep(10 * time.Millisecond)
	before, _, _, _ := sink.counts()
	time.Sleep(20 * time.Millisecond)
	after, _, _, _ := sink.counts()
	if before != after {
		t.Errorf("audio kept flowing while paused: %d then %d", before, after)
	}
}

func TestPlayerClose(t *testing.T) {
	p, sink, _ := newTestPlayer(t, SampleRate*60)
	p.Play()

	if err := p.Close(); err != nil {
		t.Fatal(err)
	}
	select {
	case <-p.Done():
	default:
		t.Fatal("Close returned before the worker exited")
	}
	if err := p.Close(); err != nil {
		t.Fatal(err)
	}
	if _, _, _, released := sink.counts(); released != 1 {
		t.Errorf("sink released %d times", released)
	}
	if p.State() != Stopped {
		t.Errorf("state %s", p.State())
	}

	// Nothing after Close does anything.
	p.Play()
	p.SetRxFrequency(100)
	if p.State() != Stopped {
		t.Errorf("state %s after Play", p.State())
	}
}

func TestPlayerCloseWhilePaused(t *testing.T) {
	p, sink, _ := newTestPlayer(t, 1200)
	p.SetRxFrequency(300)
	if err := p.Close(); err != nil {
		t.Fatal(err)
	}
	<-p.Done()
	if n, _, _, released := sink.counts(); n != 0 || released != 1 {
		t.Errorf("samples %d released %d", n, released)
	}
}

func TestPlayerSurvivesErrors(t *testing.T) {
	src := newMemSource(tone(1200, SampleRate, 1500, 0.5))
	sink := &testSink{writeErr: errors.New("device gone")}
	p, err := NewPlayer(src, sink, PlayerConfig{})
	if err != nil {
		t.Fatal(err)
	}
	defer p.Close()

	p.Play()
	waitCompletes(t, sink, 1)
	if n, _, _, _ := sink.counts(); n != 1200 {
		t.Errorf("wrote %d samples", n)
	}

	bad := newMemSource(tone(1200, SampleRate, 1500, 0.5))
	bad.err = errors.New("disk on fire")
	badSink := &testSink{}
	q, err := NewPlayer(bad, badSink, PlayerConfig{})
	if err != nil {
		t.Fatal(err)
	}
	defer q.Close()
	q.Play()
	waitCompletes(t, badSink, 1)
}

func TestNewPlayerValidates(t *testing.T) {
	if _, err := NewPlayer(newMemSource(nil), nil, PlayerConfig{}); !errors.Is(err, ErrNoSink) {
		t.Errorf("nil sink: got %v", err)
	}
}

// writeRecording writes frames as a float32 stereo container.
func writeRecording(t *testing.T, rate uint32, frames sdr.SamplesC64, chunks ...riff.Chunk) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "slice.wav")
	f, err := os.Create(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	w, err := riff.NewWriter(f, rate, chunks...)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := w.Write(frames); err != nil {
		t.Fatal(err)
	}
	if err := w.Close(); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestOpenPlaysRecording(t *testing.T) {
	info := SliceInfo{
		Center: rf.Hz(14074000),
		Start:  time.Date(2022, 3, 4, 5, 6, 7, 0, time.UTC),
	}
	path := writeRecording(t, SampleRate, tone(SampleRate*3, SampleRate, 1500, 0.5),
		riff.Chunk{ID: SliceInfoChunk, Data: info.Bytes()})

	sink := &testSink{}
	p, err := Open(path, sink, PlayerConfig{})
	if err != nil {
		t.Fatal(err)
	}
	defer p.Close()

	if got := p.SliceInfo(); got.Center != info.Center || !got.Start.Equal(info.Start) {
		t.Errorf("slice info %+v", got)
	}
	if p.Length() != 3*time.Second {
		t.Errorf("length %s", p.Length())
	}

	p.SetBandwidth(NarrowSSB)
	p.SetBandwidth(WideSSB)
	p.SetRxFrequency(1000)
	p.SetBFOOffset(1100)
	p.Play()
	waitCompletes(t, sink, 1)

	pcm := sink.pcm()
	if len(pcm) != SampleRate*3 {
		t.Fatalf("got %d samples", len(pcm))
	}
	for i, v := range pcm {
		if v == 32767 || v == -32767 {
			t.Fatalf("sample %d clipped", i)
		}
	}

	// Once the AGC has settled, each second peaks at the same level.
	var peaks [3]int
	for i, v := range pcm {
		a := int(v)
		if a < 0 {
			a = -a
		}
		if s := i / SampleRate; a > peaks[s] {
			peaks[s] = a
		}
	}
	if peaks[1] < 14000 || peaks[1] > 18000 {
		t.Errorf("settled peak %d not near half scale", peaks[1])
	}
	if d := peaks[2] - peaks[1]; d > 100 || d < -100 {
		t.Errorf("peak still moving: %v", peaks)
	}
}

func buildHeader(format, channels, bits uint16) []byte {
	var b []byte
	b = append(b, "RIFF"...)
	b = binary.LittleEndian.AppendUint32(b, 36+8)
	b = append(b, "WAVEfmt "...)
	b = binary.LittleEndian.AppendUint32(b, 16)
	b = binary.LittleEndian.AppendUint16(b, format)
	b = binary.LittleEndian.AppendUint16(b, channels)
	b = binary.LittleEndian.AppendUint32(b, SampleRate)
	align := channels * bits / 8
	b = binary.LittleEndian.AppendUint32(b, SampleRate*uint32(align))
	b = binary.LittleEndian.AppendUint16(b, align)
	b = binary.LittleEndian.AppendUint16(b, bits)
	b = append(b, "data"...)
	b = binary.LittleEndian.AppendUint32(b, 8)
	return append(b, make([]byte, 8)...)
}

func TestOpenRejects(t *testing.T) {
	tests := []struct {
		name string
		data []byte
		want error
	}{
		{"mono", buildHeader(riff.FormatFloat, 1, 32), ErrChannels},
		{"pcm16", buildHeader(riff.FormatPCM, 2, 16), ErrSampleFormat},
		{"garbage", []byte("not a recording at all"), riff.ErrNotRIFF},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), tt.name+".wav")
			if err := os.WriteFile(path, tt.data, 0o644); err != nil {
				t.Fatal(err)
			}
			sink := &testSink{}
			if _, err := Open(path, sink, PlayerConfig{}); !errors.Is(err, tt.want) {
				t.Errorf("got %v, want %v", err, tt.want)
			}
			if _, _, _, released := sink.counts(); released != 1 {
				t.Errorf("sink released %d times", released)
			}
		})
	}
}

// vim: foldmethod=marker
