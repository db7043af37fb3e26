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
	"errors"
	"io"
	"time"

	"github.com/spf13/cobra"

	"hz.tools/ssb"
	"hz.tools/ssb/internal/riff"
	"hz.tools/ssb/internal/sink"
)

var renderCmd = &cobra.Command{
	Use:   "render <recording> <output.wav>",
	Short: "demodulate a recording to a wav file",
	Long: `Run a recording through the demodulator as fast as possible, writing
16 bit mono audio to a wav file.`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		log, err := newLogger(cmd, "RNDR")
		if err != nil {
			return err
		}

		t, err := loadTuning(cmd)
		if err != nil {
			return err
		}
		start, err := cmd.Flags().GetDuration("start")
		if err != nil {
			return err
		}
		length, err := cmd.Flags().GetDuration("length")
		if err != nil {
			return err
		}

		reader, err := riff.Open(args[0])
		if err != nil {
			return err
		}
		defer reader.Close()

		if reader.Header.Channels != 2 {
			return ssb.ErrChannels
		}
		if start > 0 {
			if err := reader.SeekFrame(frames(start)); err != nil {
				return err
			}
		}

		demod, err := ssb.Demodulate(reader, ssb.DemodulatorConfig{
			RxFrequency: t.rx,
			BFOOffset:   t.bfo,
			Bandwidth:   t.bandwidth,
		})
		if err != nil {
			return err
		}

		out, err := sink.CreateWAV(args[1], demod.SampleRate())
		if err != nil {
			return err
		}

		var (
			left    = frames(length)
			pcm     = make([]int16, ssb.SampleRate/10)
			written uint64
		)
		for length == 0 || left > 0 {
			buf := pcm
			if length != 0 && uint64(len(buf)) > left {
				buf = buf[:left]
			}
			n, err := demod.Read(buf)
			if n > 0 {
				if werr := out.Write(buf[:n]); werr != nil {
					out.Release()
					return werr
				}
				written += uint64(n)
				left -= min(left, uint64(n))
			}
			if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) || (err == nil && n == 0) {
				break
			}
			if err != nil {
				out.Release()
				return err
			}
		}

		log.Infof("wrote %d samples to %s", written, args[1])
		return out.Release()
	},
}

func frames(d time.Duration) uint64 {
	return uint64(d.Seconds() * ssb.SampleRate)
}

func init() {
	flags := renderCmd.Flags()
	flags.Duration("start", 0, "position to start from")
	flags.Duration("length", 0, "how much to render, 0 for the rest of the recording")
	registerTuningFlags(renderCmd)

	rootCmd.AddCommand(renderCmd)
}

// vim: foldmethod=marker
