// Package joypad is a minimal stand-in for the DMG's P1/JOYP register: it
// tracks which of the 8 buttons are held, reports the active-low nibble
// for whichever select line the game has driven low, and raises the
// Joypad interrupt on a 1->0 transition, matching real hardware's
// edge-triggered wakeup.
package joypad

import (
	"github.com/FabianRolfMatthiasNoll/dmgcore/internal/event"
	"github.com/FabianRolfMatthiasNoll/dmgcore/internal/interrupt"
)

// Button indexes match the DMG's two 4-bit rows.
type Button int

const (
	Right Button = iota
	Left
	Up
	Down
	A
	B
	Select
	Start
)

type Joypad struct {
	selectActions bool // P15 driven low: A/B/Select/Start selected
	selectDirs    bool // P14 driven low: directions selected
	held          [8]bool
	lastOutputLow byte // previous low nibble, for edge detection
}

func New() *Joypad { return &Joypad{lastOutputLow: 0x0F} }

// SetButton updates the held state of a single button.
func (j *Joypad) SetButton(b Button, held bool) { j.held[b] = held }

func (j *Joypad) outputLow() byte {
	var nibble byte = 0x0F
	if j.selectDirs {
		if j.held[Right] {
			nibble &^= 1 << 0
		}
		if j.held[Left] {
			nibble &^= 1 << 1
		}
		if j.held[Up] {
			nibble &^= 1 << 2
		}
		if j.held[Down] {
			nibble &^= 1 << 3
		}
	}
	if j.selectActions {
		if j.held[A] {
			nibble &^= 1 << 0
		}
		if j.held[B] {
			nibble &^= 1 << 1
		}
		if j.held[Select] {
			nibble &^= 1 << 2
		}
		if j.held[Start] {
			nibble &^= 1 << 3
		}
	}
	return nibble
}

// Poll recomputes the output nibble and raises Joypad on a high-to-low
// transition of any bit. Call after any change to held-button state.
func (j *Joypad) Poll(ic *interrupt.Controller, events *[]event.Event) {
	low := j.outputLow()
	if (j.lastOutputLow &^ low) != 0 {
		ic.Raise(interrupt.Joypad)
		*events = append(*events, event.InterruptRaised{Which: interrupt.Joypad})
	}
	j.lastOutputLow = low
}

func (j *Joypad) TryRead(addr uint16) (byte, bool) {
	if addr != 0xFF00 {
		return 0, false
	}
	v := byte(0xC0) | j.outputLow()
	if !j.selectActions {
		v |= 1 << 5
	}
	if !j.selectDirs {
		v |= 1 << 4
	}
	return v, true
}

// TryWrite updates the select lines and immediately re-polls: changing
// which row is selected can itself surface an already-held button as a
// fresh 1->0 transition.
func (j *Joypad) TryWrite(addr uint16, value byte, ic *interrupt.Controller, events *[]event.Event) bool {
	if addr != 0xFF00 {
		return false
	}
	j.selectActions = value&(1<<5) == 0
	j.selectDirs = value&(1<<4) == 0
	j.Poll(ic, events)
	return true
}
