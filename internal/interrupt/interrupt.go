// Package interrupt implements the DMG interrupt controller: IE/IF,
// the master enable (IME), its one-instruction-delayed EI latch, and the
// priority/vectoring rules the execution engine polls each fetch.
package interrupt

// Kind is one of the five DMG interrupt sources, in priority order
// (lowest bit, VBlank, wins ties).
type Kind int

const (
	VBlank Kind = iota
	LCDStat
	Timer
	Serial
	Joypad
)

func (k Kind) bit() byte {
	return 1 << uint(k)
}

// Vector returns the fixed handler address for the interrupt.
func (k Kind) Vector() uint16 {
	switch k {
	case VBlank:
		return 0x40
	case LCDStat:
		return 0x48
	case Timer:
		return 0x50
	case Serial:
		return 0x58
	case Joypad:
		return 0x60
	default:
		panic("interrupt: invalid Kind")
	}
}

func (k Kind) String() string {
	switch k {
	case VBlank:
		return "VBlank"
	case LCDStat:
		return "LCDStat"
	case Timer:
		return "Timer"
	case Serial:
		return "Serial"
	case Joypad:
		return "Joypad"
	default:
		return "Invalid"
	}
}

var priorityOrder = [5]Kind{VBlank, LCDStat, Timer, Serial, Joypad}

// Controller owns IME/IF/IE and the scheduled-enable latch that gives EI
// its one-instruction delay.
type Controller struct {
	ime          bool
	imeScheduled bool
	ifReg        byte
	ieReg        byte
}

// Tick promotes a scheduled IME enable. Called on every bus clock tick
// (four per m-cycle), so the promotion lands on the first tick after the
// instruction that scheduled it.
func (c *Controller) Tick() {
	if c.imeScheduled {
		c.ime = true
		c.imeScheduled = false
	}
}

func (c *Controller) Raise(k Kind)   { c.ifReg |= k.bit() }
func (c *Controller) Unraise(k Kind) { c.ifReg &^= k.bit() }

// ShouldVector reports whether an interrupt routine should start: IME set
// and at least one raised interrupt is also enabled.
func (c *Controller) ShouldVector() bool {
	return c.ime && c.ifReg&c.ieReg != 0
}

// ShouldCancelHalt reports whether HALT should end, independent of IME:
// hardware wakes on any enabled-and-raised interrupt even with IME clear,
// it just doesn't vector to it.
func (c *Controller) ShouldCancelHalt() bool {
	return c.ifReg&c.ieReg != 0
}

// HighestPriority returns the lowest-bit pending-and-enabled interrupt.
// Reports ok=false if IME is clear or nothing is pending.
func (c *Controller) HighestPriority() (k Kind, ok bool) {
	if !c.ime {
		return 0, false
	}
	candidates := c.ifReg & c.ieReg
	for _, k := range priorityOrder {
		if candidates&k.bit() != 0 {
			return k, true
		}
	}
	return 0, false
}

func (c *Controller) ScheduleIMEEnable() { c.imeScheduled = true }
func (c *Controller) EnableInterrupts()  { c.ime = true }
func (c *Controller) DisableInterrupts() {
	c.imeScheduled = false
	c.ime = false
}

func (c *Controller) IME() bool { return c.ime }

// TryRead implements the bus Peripheral contract for 0xFF0F and 0xFFFF.
func (c *Controller) TryRead(addr uint16) (byte, bool) {
	switch addr {
	case 0xFF0F:
		return c.ifReg, true // top 3 bits are reserved and already read as 0 (writes mask to 0x1F)
	case 0xFFFF:
		return c.ieReg, true
	default:
		return 0, false
	}
}

func (c *Controller) TryWrite(addr uint16, value byte) bool {
	switch addr {
	case 0xFF0F:
		c.ifReg = value & 0x1F
		return true
	case 0xFFFF:
		c.ieReg = value & 0x1F
		return true
	default:
		return false
	}
}
