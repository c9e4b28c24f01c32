// Package serial is a stand-in for the DMG's link-port UART: it owns
// SB/SC and implements the canonical "bit-shifting" behavior test ROMs
// rely on (Blargg's test harness included) without modeling the actual
// wire protocol or a second linked Game Boy. A write to SC with both the
// transfer-start and internal-clock bits set completes the byte
// immediately: the current SB value is reported via SerialOut, the
// Serial interrupt is raised, and the start bit is cleared.
package serial

import (
	"github.com/FabianRolfMatthiasNoll/dmgcore/internal/event"
	"github.com/FabianRolfMatthiasNoll/dmgcore/internal/interrupt"
)

const (
	transferStart byte = 0x80
	internalClock byte = 0x01
)

type Serial struct {
	sb byte
	sc byte
}

func (s *Serial) TryRead(addr uint16) (byte, bool) {
	switch addr {
	case 0xFF01:
		return s.sb, true
	case 0xFF02:
		return s.sc | 0x7E, true
	default:
		return 0, false
	}
}

// TryWrite handles the write and, when it completes a transfer, appends
// the resulting events and raises the Serial interrupt.
func (s *Serial) TryWrite(addr uint16, value byte, ic *interrupt.Controller, events *[]event.Event) bool {
	switch addr {
	case 0xFF01:
		s.sb = value
		return true
	case 0xFF02:
		s.sc = value
		if s.sc&(transferStart|internalClock) == transferStart|internalClock {
			*events = append(*events, event.SerialOut{Byte: s.sb})
			ic.Raise(interrupt.Serial)
			*events = append(*events, event.InterruptRaised{Which: interrupt.Serial})
			s.sc &^= transferStart
		}
		return true
	default:
		return false
	}
}
