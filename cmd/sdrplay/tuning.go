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
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"hz.tools/rf"
	"hz.tools/ssb"
)

// tuning is what the tuning flags ask for.
type tuning struct {
	rx        rf.Hz
	bfo       rf.Hz
	mode      ssb.Mode
	bandwidth ssb.Bandwidth
}

func registerTuningFlags(cmd *cobra.Command) {
	flags := cmd.Flags()
	flags.String("rx", "0", "offset of the signal from the center of the recording [<hz>|1.2KHz]")
	flags.String("bfo", "", "weaver offset, overrides the mode's default [<hz>|-1.1KHz]")
	flags.String("mode", "usb", "listening mode [usb|lsb|cw]")
	flags.String("bandwidth", "", "filter, overrides the mode's default [narrow-cw|wide-cw|narrow-ssb|wide-ssb]")
}

func loadTuning(cmd *cobra.Command) (tuning, error) {
	flags := cmd.Flags()

	modeStr, err := flags.GetString("mode")
	if err != nil {
		return tuning{}, err
	}
	mode, err := ssb.ParseMode(modeStr)
	if err != nil {
		return tuning{}, err
	}
	t := tuning{
		mode:      mode,
		bfo:       mode.BFO(),
		bandwidth: mode.Bandwidth(),
	}

	rxStr, err := flags.GetString("rx")
	if err != nil {
		return tuning{}, err
	}
	if t.rx, err = parseHz(rxStr); err != nil {
		return tuning{}, err
	}

	bfoStr, err := flags.GetString("bfo")
	if err != nil {
		return tuning{}, err
	}
	if bfoStr != "" {
		if t.bfo, err = parseHz(bfoStr); err != nil {
			return tuning{}, err
		}
	}

	bwStr, err := flags.GetString("bandwidth")
	if err != nil {
		return tuning{}, err
	}
	if bwStr != "" {
		if t.bandwidth, err = ssb.ParseBandwidth(bwStr); err != nil {
			return tuning{}, err
		}
	}
	return t, nil
}

// parseHz takes a bare number of Hz, or anything rf.ParseHz does, with an
// optional leading minus sign.
func parseHz(s string) (rf.Hz, error) {
	s = strings.TrimSpace(s)
	if hz, err := strconv.ParseFloat(s, 64); err == nil {
		return rf.Hz(hz), nil
	}
	sign := rf.Hz(1)
	if strings.HasPrefix(s, "-") {
		sign = -1
		s = s[1:]
	}
	hz, err := rf.ParseHz(s)
	if err != nil {
		return 0, err
	}
	return sign * hz, nil
}

// vim: foldmethod=marker
