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
	"fmt"
	"io"
	"os"
	"os/signal"
	"strconv"
	"time"

	"github.com/decred/slog"
	"github.com/spf13/cobra"

	"hz.tools/fftw"
	"hz.tools/rf"
	"hz.tools/rfcap"
	"hz.tools/sdr"
	"hz.tools/sdr/stream"
	"hz.tools/ssb"
	"hz.tools/ssb/internal"
	"hz.tools/ssb/internal/riff"
)

const (
	timeLayout = "2006/01/02-15:04:05"

	prefilterSize = 1024 * 32
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "sliceiq <input> <output>",
	Short: "cut a narrow slice out of a wide iq recording",
	Long: `Shift a frequency in a 192 KHz stereo IQ recording to zero, low pass
it and write a 12 KHz stereo float WAV file that sdrplay can listen to.`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		log, err := newLogger(cmd)
		if err != nil {
			return err
		}

		cfg, err := sliceConfig(cmd)
		if err != nil {
			return err
		}
		plan, err := cfg.Plan()
		if err != nil {
			return err
		}

		inputFormat, err := cmd.Flags().GetString("input-format")
		if err != nil {
			return err
		}
		reader, closer, err := openInput(args[0], inputFormat)
		if err != nil {
			return err
		}
		defer closer.Close()

		prefilterStr, err := cmd.Flags().GetString("prefilter")
		if err != nil {
			return err
		}
		if prefilterStr != "" {
			width, err := rf.ParseHz(prefilterStr)
			if err != nil {
				return err
			}
			reader, err = internal.Prefilter(reader, fftw.Plan, prefilterSize, plan.Mix, width)
			if err != nil {
				return err
			}
			log.Debugf("prefilter %v wide around %v", width, plan.Mix)
		}

		out, err := os.Create(args[1])
		if err != nil {
			return err
		}
		defer out.Close()

		writer, err := riff.NewWriter(out, ssb.SampleRate, riff.Chunk{
			ID:   ssb.SliceInfoChunk,
			Data: plan.Info.Bytes(),
		})
		if err != nil {
			return err
		}

		ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
		defer cancel()

		log.Infof("slicing %s: mix %v, skip %d frames, %s", args[0], plan.Mix, plan.Skip, plan.Info)
		frames, err := ssb.Slice(ctx, reader, writer, plan)
		if cerr := writer.Close(); err == nil {
			err = cerr
		}
		if err != nil {
			return err
		}
		log.Infof("wrote %d frames (%s) to %s", frames,
			time.Duration(frames)*time.Second/ssb.SampleRate, args[1])
		return out.Close()
	},
}

func newLogger(cmd *cobra.Command) (slog.Logger, error) {
	levelStr, err := cmd.Flags().GetString("log-level")
	if err != nil {
		return nil, err
	}
	level, ok := slog.LevelFromString(levelStr)
	if !ok {
		return nil, fmt.Errorf("unknown log level %q", levelStr)
	}
	log := slog.NewBackend(os.Stderr).Logger("SLCE")
	log.SetLevel(level)
	return log, nil
}

func sliceConfig(cmd *cobra.Command) (ssb.SliceConfig, error) {
	flags := cmd.Flags()

	var cfg ssb.SliceConfig
	var err error

	for _, f := range []struct {
		name string
		dst  *rf.Hz
	}{
		{"input-center", &cfg.InputCenter},
		{"output-center", &cfg.OutputCenter},
	} {
		s, err := flags.GetString(f.name)
		if err != nil {
			return cfg, err
		}
		if *f.dst, err = parseKHz(s); err != nil {
			return cfg, fmt.Errorf("--%s: %w", f.name, err)
		}
	}

	for _, f := range []struct {
		name string
		dst  *time.Time
	}{
		{"input-start", &cfg.InputStart},
		{"output-start", &cfg.OutputStart},
	} {
		s, err := flags.GetString(f.name)
		if err != nil {
			return cfg, err
		}
		if s == "" {
			continue
		}
		if *f.dst, err = parseTime(s); err != nil {
			return cfg, fmt.Errorf("--%s: %w", f.name, err)
		}
	}

	if cfg.InputFlipped, err = flags.GetBool("input-flipped"); err != nil {
		return cfg, err
	}
	if cfg.Offset, err = flags.GetDuration("output-offset"); err != nil {
		return cfg, err
	}
	if cfg.Interval, err = flags.GetDuration("output-interval"); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// parseKHz reads a bare number as KHz, and anything else as an rf.Hz
// string like "7.1MHz".
func parseKHz(s string) (rf.Hz, error) {
	if khz, err := strconv.ParseFloat(s, 64); err == nil {
		return rf.Hz(khz * 1000), nil
	}
	return rf.ParseHz(s)
}

func parseTime(s string) (time.Time, error) {
	if t, err := time.ParseInLocation(timeLayout, s, time.Local); err == nil {
		return t, nil
	}
	return time.Parse(time.RFC3339, s)
}

func openInput(path, format string) (sdr.Reader, io.Closer, error) {
	switch format {
	case "wav":
		r, err := riff.Open(path)
		if err != nil {
			return nil, nil, err
		}
		if r.Header.Channels != 2 {
			r.Close()
			return nil, nil, ssb.ErrChannels
		}
		return r, r, nil
	case "rfcap":
		f, err := os.Open(path)
		if err != nil {
			return nil, nil, err
		}
		var reader sdr.Reader
		reader, _, err = rfcap.Reader(f)
		if err != nil {
			f.Close()
			return nil, nil, err
		}
		reader, err = stream.ConvertReader(reader, sdr.SampleFormatC64)
		if err != nil {
			f.Close()
			return nil, nil, err
		}
		return reader, f, nil
	default:
		return nil, nil, fmt.Errorf("unknown input format %q", format)
	}
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}

func init() {
	flags := rootCmd.Flags()

	flags.String("input-center", "0", "center of the input, in KHz or as a frequency like 7.1MHz")
	flags.Bool("input-flipped", false, "input has I and Q swapped")
	flags.String("input-start", "", "wall clock time of the first input frame [YYYY/MM/DD-HH:MM:SS|RFC3339]")
	flags.String("input-format", "wav", "input container [wav|rfcap]")
	flags.String("output-center", "0", "frequency to center the output on, in KHz or as a frequency")
	flags.Duration("output-interval", 0, "length of the output, 0 for the rest of the input")
	flags.Duration("output-offset", 0, "how far into the input to start")
	flags.String("output-start", "", "wall clock time to start at, overrides --output-offset")
	flags.String("prefilter", "", "pass the input through an fft band pass this wide first")
	flags.String("log-level", "info", "log level [trace|debug|info|warn|error|critical|off]")
}

// vim: foldmethod=marker
