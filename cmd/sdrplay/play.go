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

package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"sync"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
	"golang.org/x/term"

	"hz.tools/rf"
	"hz.tools/ssb"
	"hz.tools/ssb/internal/sink"
)

const (
	seekStep   = 5 * time.Second
	statusTick = 200 * time.Millisecond

	keyHelp = "space play/pause  [ ] tune 10Hz  { } tune 100Hz  , . bfo  " +
		"b bandwidth  h l seek 5s  1 usb  2 lsb  3 cw  q quit"
)

var errQuit = errors.New("quit")

var playCmd = &cobra.Command{
	Use:   "play <recording>",
	Short: "listen to a recording",
	Long: `Play a 12 KHz stereo IQ recording through the demodulator. On a
terminal the keyboard tunes the receiver while it plays, otherwise it plays
to the end and exits.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		log, err := newLogger(cmd, "PLAY")
		if err != nil {
			return err
		}

		t, err := loadTuning(cmd)
		if err != nil {
			return err
		}

		sinkKind, err := cmd.Flags().GetString("sink")
		if err != nil {
			return err
		}
		sinkName, err := cmd.Flags().GetString("sink-name")
		if err != nil {
			return err
		}
		sinkPath, err := cmd.Flags().GetString("sink-path")
		if err != nil {
			return err
		}
		start, err := cmd.Flags().GetDuration("start")
		if err != nil {
			return err
		}

		out, err := sink.Open(sink.Config{
			Kind:     sinkKind,
			Rate:     ssb.SampleRate,
			SinkName: sinkName,
			Path:     sinkPath,
		})
		if err != nil {
			return err
		}
		notifier := sink.Notify(out)

		player, err := ssb.Open(args[0], notifier, ssb.PlayerConfig{Log: log})
		if err != nil {
			return err
		}
		defer player.Close()

		player.SetBandwidth(t.bandwidth)
		player.SetBFOOffset(t.bfo)
		player.SetRxFrequency(t.rx)
		if start > 0 {
			player.SetPosition(start)
		}

		log.Infof("%s: %s long, %s", args[0], player.Length(), player.SliceInfo())
		player.Play()

		fd := int(os.Stdin.Fd())
		if !term.IsTerminal(fd) {
			ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
			defer cancel()
			select {
			case <-notifier.Completed():
			case <-ctx.Done():
			}
			return player.Close()
		}

		return control(player, fd, t.mode)
	},
}

// session is the keyboard side of an interactive play.
type session struct {
	player *ssb.Player

	mu   sync.Mutex
	mode ssb.Mode
}

func control(player *ssb.Player, fd int, mode ssb.Mode) error {
	state, err := term.MakeRaw(fd)
	if err != nil {
		return err
	}
	defer term.Restore(fd, state)

	fmt.Fprint(os.Stderr, keyHelp+"\r\n")

	s := &session{player: player, mode: mode}
	g, ctx := errgroup.WithContext(context.Background())
	g.Go(func() error { return s.readKeys(os.Stdin) })
	g.Go(func() error { return s.status(ctx, os.Stderr) })

	err = g.Wait()
	fmt.Fprint(os.Stderr, "\r\n")
	if errors.Is(err, errQuit) {
		err = nil
	}
	if cerr := player.Close(); err == nil {
		err = cerr
	}
	return err
}

func (s *session) keymap() map[byte]func() {
	return map[byte]func(){
		' ': s.toggle,
		'[': func() { s.tune(-10) },
		']': func() { s.tune(10) },
		'{': func() { s.tune(-100) },
		'}': func() { s.tune(100) },
		',': func() { s.shiftBFO(-10) },
		'.': func() { s.shiftBFO(10) },
		'b': func() { s.player.SetBandwidth(s.player.Bandwidth().Next()) },
		'h': func() { s.player.SetPosition(s.player.Position() - seekStep) },
		'l': func() { s.player.SetPosition(s.player.Position() + seekStep) },
		'1': func() { s.setMode(ssb.USB) },
		'2': func() { s.setMode(ssb.LSB) },
		'3': func() { s.setMode(ssb.CW) },
	}
}

// readKeys handles keys until q, ctrl-c or the end of stdin.
func (s *session) readKeys(r io.Reader) error {
	var (
		keys = s.keymap()
		buf  = make([]byte, 16)
	)
	for {
		n, err := r.Read(buf)
		for _, c := range buf[:n] {
			switch c {
			case 'q', 3:
				return errQuit
			}
			if fn, ok := keys[c]; ok {
				fn()
			}
		}
		if err == io.EOF {
			return errQuit
		}
		if err != nil {
			return err
		}
	}
}

func (s *session) toggle() {
	if s.player.State() == ssb.Playing {
		s.player.Pause()
	} else {
		s.player.Play()
	}
}

func (s *session) tune(delta rf.Hz) {
	s.player.SetRxFrequency(s.player.RxFrequency() + delta)
}

func (s *session) shiftBFO(delta rf.Hz) {
	s.player.SetBFOOffset(s.player.BFOOffset() + delta)
}

func (s *session) setMode(m ssb.Mode) {
	s.mu.Lock()
	s.mode = m
	s.mu.Unlock()
	s.player.SetMode(m)
}

func (s *session) status(ctx context.Context, w io.Writer) error {
	ticker := time.NewTicker(statusTick)
	defer ticker.Stop()
	for {
		fmt.Fprint(w, s.line())
		select {
		case <-ctx.Done():
			return nil
		case <-s.player.Done():
			return nil
		case <-ticker.C:
		}
	}
}

func (s *session) line() string {
	s.mu.Lock()
	mode := s.mode
	s.mu.Unlock()

	var (
		p       = s.player
		applied = p.Applied()
		dial    = ssb.DialFrequency(p.SliceInfo().Center,
			rf.Hz(applied.Receiver), rf.Hz(applied.BFO), mode)
	)
	return fmt.Sprintf("\r%-7s %s / %s  %s rx %+dHz bfo %+dHz %s  dial %.3fKHz  gain %.2f\x1b[K",
		p.State(),
		p.Position().Truncate(100*time.Millisecond),
		p.Length().Truncate(time.Second),
		mode,
		applied.Receiver,
		applied.BFO,
		applied.Bandwidth,
		float64(dial)/1000,
		p.Gain(),
	)
}

func init() {
	flags := playCmd.Flags()
	flags.String("sink", "pulseaudio", "where to send the audio [pulseaudio|oto|wav]")
	flags.String("sink-name", "", "pulseaudio sink name")
	flags.String("sink-path", "", "file to write with --sink=wav")
	flags.Duration("start", 0, "position to start playing from")
	registerTuningFlags(playCmd)

	rootCmd.AddCommand(playCmd)
}

// vim: foldmethod=marker
