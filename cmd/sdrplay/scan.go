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
	"fmt"
	"io"
	"os"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"hz.tools/rf"
	"hz.tools/sdr"
	"hz.tools/ssb"
	"hz.tools/ssb/internal/riff"
	"hz.tools/ssb/internal/spectrum"
)

var scanCmd = &cobra.Command{
	Use:   "scan <recording>",
	Short: "list the strongest signals in a recording",
	Long: `Average the spectrum of part of a recording and print the strongest
peaks as offsets that can be passed to play --rx.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		log, err := newLogger(cmd, "SCAN")
		if err != nil {
			return err
		}

		flags := cmd.Flags()
		size, err := flags.GetInt("size")
		if err != nil {
			return err
		}
		count, err := flags.GetInt("peaks")
		if err != nil {
			return err
		}
		guardStr, err := flags.GetString("guard")
		if err != nil {
			return err
		}
		guard, err := parseHz(guardStr)
		if err != nil {
			return err
		}
		start, err := flags.GetDuration("start")
		if err != nil {
			return err
		}
		length, err := flags.GetDuration("length")
		if err != nil {
			return err
		}

		reader, err := riff.Open(args[0])
		if err != nil {
			return err
		}
		defer reader.Close()

		rate := reader.SampleRate()
		if start > 0 {
			if err := reader.SeekFrame(uint64(start.Seconds() * float64(rate))); err != nil {
				return err
			}
		}

		iq := make(sdr.SamplesC64, int(length.Seconds()*float64(rate)))
		n, err := sdr.ReadFull(reader, iq)
		switch {
		case err == nil:
		case errors.Is(err, io.EOF), errors.Is(err, io.ErrUnexpectedEOF):
			log.Debugf("recording ended after %d frames", n)
		default:
			return err
		}

		power, err := spectrum.Compute(iq[:n], rate, size)
		if err != nil {
			return err
		}

		var info ssb.SliceInfo
		if raw, ok := reader.Chunk(ssb.SliceInfoChunk); ok {
			info = ssb.ParseSliceInfo(raw)
		}

		floor := power.Floor()
		fmt.Printf("%s: %d frames at %d Hz, %v bins, floor %.1f dB\n",
			args[0], n, rate, power.BinWidth(), floor)

		tw := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
		fmt.Fprintln(tw, "OFFSET\tSNR\tDIAL")
		for _, peak := range power.Peaks(count, guard) {
			fmt.Fprintf(tw, "%+.0fHz\t%.1fdB\t%s\n",
				float64(peak.Offset), peak.Power-floor, dial(info, peak.Offset))
		}
		return tw.Flush()
	},
}

func dial(info ssb.SliceInfo, offset rf.Hz) string {
	if info.Center == 0 {
		return "-"
	}
	return fmt.Sprintf("%.3fKHz", float64(info.Center+offset)/1000)
}

func init() {
	flags := scanCmd.Flags()
	flags.Int("size", 4096, "fft size")
	flags.Int("peaks", 10, "number of peaks to list")
	flags.String("guard", "200", "drop peaks this close to a stronger one")
	flags.Duration("start", 0, "position to start reading from")
	flags.Duration("length", 10*time.Second, "how much of the recording to average")

	rootCmd.AddCommand(scanCmd)
}

// vim: foldmethod=marker
