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
	"bytes"
	"fmt"
	"strconv"
	"strings"
	"time"

	"hz.tools/rf"
)

const (
	sliceTimeLayout = "2006/01/02-15:04:05"

	sliceStartFlag  = "--outputStartTime="
	sliceCenterFlag = "--outputCenterKHz="

	// sliceInfoAlign is the block size the 0SDR text is padded out to.
	sliceInfoAlign = 16
)

// SliceInfo is the metadata the slicer writes into its output: where the
// recording is centered, and when it starts. It is stored as a line of
// command line style flags.
type SliceInfo struct {
	// Center is the RF frequency at the middle of the recording. Zero if
	// it was not recorded.
	Center rf.Hz

	// Start is the wall clock time of the first frame. Zero if it was not
	// recorded.
	Start time.Time

	// Raw is the text as found in the file, with non printable bytes
	// removed.
	Raw string
}

// ParseSliceInfo reads the text of a 0SDR chunk. Unknown or malformed
// flags are skipped.
func ParseSliceInfo(raw []byte) SliceInfo {
	clean := bytes.Map(func(r rune) rune {
		if r < 0x20 || r > 0x7e {
			return -1
		}
		return r
	}, raw)

	info := SliceInfo{Raw: strings.TrimSpace(string(clean))}
	for _, field := range strings.Fields(info.Raw) {
		switch {
		case strings.HasPrefix(field, sliceCenterFlag):
			khz, err := strconv.ParseFloat(strings.TrimPrefix(field, sliceCenterFlag), 64)
			if err != nil {
				continue
			}
			info.Center = rf.Hz(khz * 1000)
		case strings.HasPrefix(field, sliceStartFlag):
			t, err := time.ParseInLocation(sliceTimeLayout,
				strings.TrimPrefix(field, sliceStartFlag), time.UTC)
			if err != nil {
				continue
			}
			info.Start = t
		}
	}
	return info
}

// Bytes renders the chunk text, padded with spaces to a multiple of 16
// bytes.
func (s SliceInfo) Bytes() []byte {
	var b bytes.Buffer
	if !s.Start.IsZero() {
		fmt.Fprintf(&b, "%s%s ", sliceStartFlag, s.Start.UTC().Format(sliceTimeLayout))
	}
	fmt.Fprintf(&b, "%s%s", sliceCenterFlag,
		strconv.FormatFloat(float64(s.Center)/1000, 'f', -1, 64))
	for b.Len()%sliceInfoAlign != 0 {
		b.WriteByte(' ')
	}
	return b.Bytes()
}

// String implements fmt.Stringer.
func (s SliceInfo) String() string {
	if s.Raw != "" {
		return s.Raw
	}
	return strings.TrimSpace(string(s.Bytes()))
}

// vim: foldmethod=marker
