// Package gameboy wires the register file, bus and execution engine
// together into the single stepping loop a driver program runs.
package gameboy

import (
	"github.com/FabianRolfMatthiasNoll/dmgcore/internal/bus"
	"github.com/FabianRolfMatthiasNoll/dmgcore/internal/cart"
	"github.com/FabianRolfMatthiasNoll/dmgcore/internal/event"
	"github.com/FabianRolfMatthiasNoll/dmgcore/internal/execution"
	"github.com/FabianRolfMatthiasNoll/dmgcore/internal/register"
)

// GameBoy owns the full machine state: registers, bus (and everything it
// owns in turn), and the decode/execute engine threading them together.
type GameBoy struct {
	Regs   *register.File
	Bus    *bus.Bus
	engine *execution.Engine
	next   execution.NextOperation
}

// New starts a GameBoy at the post-boot-ROM state with cartridge mapped
// onto the bus, having already fetched the opcode at 0x0100.
func New(cartridge cart.Cartridge) *GameBoy {
	regs := register.NewPostBootROM()
	b := bus.New(cartridge)
	eng := execution.New(regs, b)
	first := eng.FirstOpcode()
	return &GameBoy{
		Regs:   regs,
		Bus:    b,
		engine: eng,
		next:   execution.OpcodeOp(first),
	}
}

// NewFromROM parses rom into a cartridge before constructing the machine.
func NewFromROM(rom []byte) (*GameBoy, error) {
	c, err := cart.New(rom)
	if err != nil {
		return nil, err
	}
	return New(c), nil
}

// Step executes exactly one already-decoded operation (an instruction or
// an interrupt dispatch) and returns every event it produced.
func (g *GameBoy) Step() ([]event.Event, error) {
	next, err := g.engine.HandleNext(g.next)
	if err != nil {
		return g.Bus.TakeEvents(), err
	}
	g.next = next
	return g.Bus.TakeEvents(), nil
}

// ElapsedCycles reports the running T-state count since construction.
func (g *GameBoy) ElapsedCycles() uint64 { return g.Bus.ElapsedCycles() }
