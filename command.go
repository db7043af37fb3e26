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

// command is a request from the control surface that the worker applies
// between batches. Commands run in the order they were queued, each exactly
// once, with the player lock released.
type command interface {
	isCommand()
}

type retuneReceiver struct{ hz int }

type retuneWeaver struct{ hz int }

type setBandwidth struct{ bw Bandwidth }

type seek struct{ frame uint64 }

func (retuneReceiver) isCommand() {}
func (retuneWeaver) isCommand()   {}
func (setBandwidth) isCommand()   {}
func (seek) isCommand()           {}

// apply runs cmd against the worker owned state. Only the worker calls it.
func (p *Player) apply(cmd command) {
	switch c := cmd.(type) {
	case retuneReceiver:
		p.demod.RetuneReceiver(c.hz)
		p.log.Debugf("receiver retuned to %d Hz (table %d)", c.hz, p.demod.rx.Len())
	case retuneWeaver:
		p.demod.RetuneWeaver(c.hz)
		p.log.Debugf("bfo retuned to %d Hz (table %d)", c.hz, p.demod.weaver.Len())
	case setBandwidth:
		if p.demod.SetBandwidth(c.bw) {
			p.log.Debugf("bandwidth set to %s", c.bw)
		}
	case seek:
		if err := p.source.SeekFrame(c.frame); err != nil {
			p.log.Debugf("seek to frame %d ignored: %v", c.frame, err)
			return
		}
		p.atEnd = false
		p.log.Debugf("seeked to frame %d", c.frame)
	default:
		p.log.Warnf("unknown command %T", cmd)
	}
}

// vim: foldmethod=marker
