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
	"fmt"
	"strings"
)

// Bandwidth selects which band-pass tap set the demodulator runs.
type Bandwidth int

const (
	// NarrowCW is the narrowest filter, for CW. It currently shares its
	// taps with WideCW.
	NarrowCW Bandwidth = iota

	// WideCW is a CW filter about 250 Hz wide.
	WideCW

	// NarrowSSB is a voice filter about 1 KHz wide.
	NarrowSSB

	// WideSSB is a voice filter about 2.4 KHz wide.
	WideSSB
)

var bandwidthNames = [...]string{
	NarrowCW:  "narrow-cw",
	WideCW:    "wide-cw",
	NarrowSSB: "narrow-ssb",
	WideSSB:   "wide-ssb",
}

// Bandwidths lists every selectable Bandwidth in order.
var Bandwidths = []Bandwidth{NarrowCW, WideCW, NarrowSSB, WideSSB}

// Valid reports whether bw is one of the known modes.
func (bw Bandwidth) Valid() bool {
	return bw >= NarrowCW && bw <= WideSSB
}

// String implements fmt.Stringer.
func (bw Bandwidth) String() string {
	if !bw.Valid() {
		return fmt.Sprintf("Bandwidth(%d)", int(bw))
	}
	return bandwidthNames[bw]
}

// Next returns the following mode, wrapping around after WideSSB.
func (bw Bandwidth) Next() Bandwidth {
	if !bw.Valid() {
		return NarrowCW
	}
	return (bw + 1) % Bandwidth(len(bandwidthNames))
}

// ParseBandwidth is the inverse of Bandwidth.String.
func ParseBandwidth(s string) (Bandwidth, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	for bw, name := range bandwidthNames {
		if name == s {
			return Bandwidth(bw), nil
		}
	}
	return 0, fmt.Errorf("ssb: unknown bandwidth %q", s)
}

// taps returns the shared tap table for bw, or nil for an unknown mode.
// The returned slice aliases process wide state.
func (bw Bandwidth) taps() []float64 {
	switch bw {
	case NarrowCW:
		return narrowCWTaps[:]
	case WideCW:
		return wideCWTaps[:]
	case NarrowSSB:
		return narrowSSBTaps[:]
	case WideSSB:
		return wideSSBTaps[:]
	default:
		return nil
	}
}

// Taps returns a copy of the taps used for bw.
func Taps(bw Bandwidth) []float64 {
	t := bw.taps()
	if t == nil {
		return nil
	}
	out := make([]float64, len(t))
	copy(out, t)
	return out
}

// vim: foldmethod=marker
