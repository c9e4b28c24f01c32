// Package bus implements the DMG memory bus: WRAM/HRAM ownership, the
// fixed peripheral lookup order, Echo RAM aliasing, and the event
// collection the execution engine's reads/writes (and the ticking
// peripherals) push into. The bus owns the interrupt controller and
// timer directly, and drives the rest of the peripheral set's clocking:
// the orchestrator owns the bus, the bus owns everything below it.
package bus

import (
	"github.com/FabianRolfMatthiasNoll/dmgcore/internal/cart"
	"github.com/FabianRolfMatthiasNoll/dmgcore/internal/event"
	"github.com/FabianRolfMatthiasNoll/dmgcore/internal/interrupt"
	"github.com/FabianRolfMatthiasNoll/dmgcore/internal/joypad"
	"github.com/FabianRolfMatthiasNoll/dmgcore/internal/serial"
	"github.com/FabianRolfMatthiasNoll/dmgcore/internal/sound"
	"github.com/FabianRolfMatthiasNoll/dmgcore/internal/timer"
	"github.com/FabianRolfMatthiasNoll/dmgcore/internal/video"
)

// Peripheral is the contract every non-builtin region of the address
// space implements: a claimed address answers with ok=true.
type Peripheral interface {
	TryRead(addr uint16) (byte, bool)
	TryWrite(addr uint16, value byte) bool
}

// Bus wires WRAM, HRAM, and the peripheral set onto the 16-bit DMG
// address space.
type Bus struct {
	cart       cart.Cartridge
	wram       [0x2000]byte // 0xC000-0xDFFF
	hram       [0x7F]byte   // 0xFF80-0xFFFE
	video      *video.Video
	serial     *serial.Serial
	joypad     *joypad.Joypad
	sound      *sound.Sound
	interrupts interrupt.Controller
	timer      timer.Timer

	clockCounter uint64
	events       []event.Event
}

func New(cartridge cart.Cartridge) *Bus {
	return &Bus{
		cart:   cartridge,
		video:  video.New(),
		serial: &serial.Serial{},
		joypad: joypad.New(),
		sound:  &sound.Sound{},
		events: make([]event.Event, 0, 64),
	}
}

func (b *Bus) Interrupts() *interrupt.Controller { return &b.interrupts }
func (b *Bus) Video() *video.Video               { return b.video }
func (b *Bus) Joypad() *joypad.Joypad            { return b.joypad }
func (b *Bus) ElapsedCycles() uint64             { return b.clockCounter }

// SetButton updates a single button's held state and immediately
// re-polls the joypad so a press raises its interrupt the same m-cycle
// the host reports it, rather than waiting for the next register read.
func (b *Bus) SetButton(button joypad.Button, held bool) {
	b.joypad.SetButton(button, held)
	b.joypad.Poll(&b.interrupts, &b.events)
}

func (b *Bus) PushEvent(e event.Event) { b.events = append(b.events, e) }

// TakeEvents drains and returns everything collected since the last call.
func (b *Bus) TakeEvents() []event.Event {
	out := b.events
	b.events = make([]event.Event, 0, cap(out))
	return out
}

func (b *Bus) wramTryRead(addr uint16) (byte, bool) {
	switch {
	case addr >= 0xC000 && addr <= 0xDFFF:
		return b.wram[addr-0xC000], true
	case addr >= 0xE000 && addr <= 0xFDFF: // Echo RAM, aliased to WRAM
		return b.wram[addr-0xE000], true
	default:
		return 0, false
	}
}

func (b *Bus) wramTryWrite(addr uint16, value byte) bool {
	switch {
	case addr >= 0xC000 && addr <= 0xDFFF:
		b.wram[addr-0xC000] = value
		return true
	case addr >= 0xE000 && addr <= 0xFDFF:
		b.wram[addr-0xE000] = value
		return true
	default:
		return false
	}
}

func (b *Bus) hramTryRead(addr uint16) (byte, bool) {
	if addr >= 0xFF80 && addr <= 0xFFFE {
		return b.hram[addr-0xFF80], true
	}
	return 0, false
}

func (b *Bus) hramTryWrite(addr uint16, value byte) bool {
	if addr >= 0xFF80 && addr <= 0xFFFE {
		b.hram[addr-0xFF80] = value
		return true
	}
	return false
}

// Read performs a fixed-order peripheral lookup and emits the
// corresponding events: MemoryRead on every access, plus
// ReadFromUnmapped when nothing claims the address (in which case the
// returned value is 0xFF).
func (b *Bus) Read(addr uint16) byte {
	value, ok := b.wramTryRead(addr)
	if !ok {
		value, ok = b.cart.TryRead(addr)
	}
	if !ok {
		value, ok = b.video.TryRead(addr)
	}
	if !ok {
		value, ok = b.hramTryRead(addr)
	}
	if !ok {
		value, ok = b.joypad.TryRead(addr)
	}
	if !ok {
		value, ok = b.serial.TryRead(addr)
	}
	if !ok {
		value, ok = b.timer.TryRead(addr)
	}
	if !ok {
		value, ok = b.interrupts.TryRead(addr)
	}
	if !ok {
		value, ok = b.sound.TryRead(addr)
	}
	if !ok {
		b.PushEvent(event.ReadFromUnmapped{Addr: addr})
		value = 0xFF
	}
	b.PushEvent(event.MemoryRead{Addr: addr, Value: value})
	return value
}

// Write performs the same fixed-order lookup for writes; an unclaimed
// address emits WriteToUnmapped and the write is discarded.
func (b *Bus) Write(addr uint16, value byte) {
	ok := b.wramTryWrite(addr, value)
	if !ok {
		ok = b.cart.TryWrite(addr, value)
	}
	if !ok {
		ok = b.video.TryWrite(addr, value)
	}
	if !ok {
		ok = b.hramTryWrite(addr, value)
	}
	if !ok {
		ok = b.joypad.TryWrite(addr, value, &b.interrupts, &b.events)
	}
	if !ok && (addr == 0xFF01 || addr == 0xFF02) {
		ok = b.serial.TryWrite(addr, value, &b.interrupts, &b.events)
	}
	if !ok {
		ok = b.timer.TryWrite(addr, value)
	}
	if !ok {
		ok = b.interrupts.TryWrite(addr, value)
	}
	if !ok {
		ok = b.sound.TryWrite(addr, value)
	}
	if !ok {
		b.PushEvent(event.WriteToUnmapped{Addr: addr})
	}
	b.PushEvent(event.MemoryWritten{Addr: addr, Value: value})
}

// Tick fans one clock tick out to every ticking peripheral: timer, then
// video, then the interrupt controller's scheduled-IME promotion. Video
// advances a whole m-cycle (4 dots) per call, so it is ticked on every
// fourth clock only. Serial doesn't tick; its transfers complete
// synchronously on write.
func (b *Bus) Tick() {
	b.timer.Tick(&b.interrupts, &b.events)
	if b.clockCounter%4 == 0 {
		b.video.Tick(&b.interrupts, &b.events)
	}
	b.interrupts.Tick()
	b.clockCounter++
}
