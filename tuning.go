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

	"hz.tools/rf"
)

// Mode is a listening preset: a BFO offset and a filter.
type Mode int

const (
	// USB listens to the upper sideband.
	USB Mode = iota

	// LSB listens to the lower sideband.
	LSB

	// CW centers a narrow filter on a carrier, with a 500 Hz note.
	CW
)

const (
	ssbBFO = rf.Hz(1100)
	cwBFO  = rf.Hz(500)
)

var modeNames = [...]string{
	USB: "usb",
	LSB: "lsb",
	CW:  "cw",
}

// String implements fmt.Stringer.
func (m Mode) String() string {
	if m < USB || m > CW {
		return fmt.Sprintf("Mode(%d)", int(m))
	}
	return modeNames[m]
}

// ParseMode is the inverse of Mode.String.
func ParseMode(s string) (Mode, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	for m, name := range modeNames {
		if name == s {
			return Mode(m), nil
		}
	}
	return 0, fmt.Errorf("ssb: unknown mode %q", s)
}

// BFO returns the Weaver offset for m.
func (m Mode) BFO() rf.Hz {
	switch m {
	case LSB:
		return -ssbBFO
	case CW:
		return cwBFO
	default:
		return ssbBFO
	}
}

// Bandwidth returns the filter for m.
func (m Mode) Bandwidth() Bandwidth {
	if m == CW {
		return WideCW
	}
	return WideSSB
}

// DialFrequency is what a radio tuned to the same signal would show. On
// sideband modes that is the suppressed carrier, which sits one BFO offset
// away from the center of the passband. On CW it is the carrier itself.
func DialFrequency(center, rx, bfo rf.Hz, m Mode) rf.Hz {
	if m == CW {
		return center + rx
	}
	return center + rx - bfo
}

// vim: foldmethod=marker
