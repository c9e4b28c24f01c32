package execution

import (
	"testing"

	"github.com/FabianRolfMatthiasNoll/dmgcore/internal/bus"
	"github.com/FabianRolfMatthiasNoll/dmgcore/internal/cart"
	"github.com/FabianRolfMatthiasNoll/dmgcore/internal/event"
	"github.com/FabianRolfMatthiasNoll/dmgcore/internal/interrupt"
	"github.com/FabianRolfMatthiasNoll/dmgcore/internal/register"
)

// newTestEngine builds an engine over a 32 KiB ROM-only cartridge with
// program placed at 0x0100, where the post-boot PC points. Operand bytes
// must live in the ROM image itself; the bus discards writes into the
// cartridge window.
func newTestEngine(t *testing.T, program ...byte) (*Engine, *register.File, *bus.Bus) {
	t.Helper()
	rom := make([]byte, 32*1024)
	copy(rom[0x0100:], program)
	c := cart.NewROMOnly(rom)
	b := bus.New(c)
	regs := register.NewPostBootROM()
	return New(regs, b), regs, b
}

func TestNopCostsOneMCycle(t *testing.T) {
	e, _, b := newTestEngine(t)
	if _, err := e.HandleNext(OpcodeOp(0x00)); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if b.ElapsedCycles() != 4 {
		t.Fatalf("NOP should cost 4 T-states via the next fetch, got %d", b.ElapsedCycles())
	}
}

// runOne executes a single already-fetched opcode and reports the
// T-states it consumed, trailing next-opcode fetch included, which is
// what the published per-opcode totals count.
func runOne(t *testing.T, opcode byte, program ...byte) uint64 {
	t.Helper()
	e, _, b := newTestEngine(t, program...)
	if _, err := e.HandleNext(OpcodeOp(opcode)); err != nil {
		t.Fatalf("unexpected error executing %#02x: %v", opcode, err)
	}
	return b.ElapsedCycles()
}

func TestPublishedCycleCounts(t *testing.T) {
	if got := runOne(t, 0x08, 0x00, 0xC0); got != 20 { // LD (a16),SP -> 0xC000
		t.Fatalf("LD (a16),SP cost %d T-states, want 20", got)
	}
	if got := runOne(t, 0xCD, 0x00, 0x40); got != 24 { // CALL a16
		t.Fatalf("CALL a16 cost %d T-states, want 24", got)
	}
	if got := runOne(t, 0xFF); got != 16 { // RST 38h
		t.Fatalf("RST cost %d T-states, want 16", got)
	}
	if got := runOne(t, 0xC5); got != 16 { // PUSH BC
		t.Fatalf("PUSH cost %d T-states, want 16", got)
	}
	if got := runOne(t, 0xC1); got != 12 { // POP BC
		t.Fatalf("POP cost %d T-states, want 12", got)
	}
	if got := runOne(t, 0xC9); got != 16 { // RET
		t.Fatalf("RET cost %d T-states, want 16", got)
	}
}

func TestAddHLBCCostsTwoMCycles(t *testing.T) {
	e, regs, b := newTestEngine(t)
	regs.SetHL(0x0FFF)
	regs.SetBC(0x0001)
	if _, err := e.HandleNext(OpcodeOp(0x09)); err != nil { // ADD HL,BC
		t.Fatalf("unexpected error: %v", err)
	}
	if regs.HL() != 0x1000 {
		t.Fatalf("HL = %#04x, want 0x1000", regs.HL())
	}
	if !regs.FlagH() {
		t.Fatalf("expected half-carry set")
	}
	if b.ElapsedCycles() != 8 {
		t.Fatalf("ADD HL,BC should cost 8 T-states, got %d", b.ElapsedCycles())
	}
}

func TestJRNotTakenCostsLessThanTaken(t *testing.T) {
	e, regs, b := newTestEngine(t)
	regs.SetFlagZ(false)
	if _, err := e.HandleNext(OpcodeOp(0x28)); err != nil { // JR Z,r8
		t.Fatalf("unexpected error: %v", err)
	}
	if b.ElapsedCycles() != 8 {
		t.Fatalf("JR Z not taken should cost 8 T-states, got %d", b.ElapsedCycles())
	}

	e2, regs2, b2 := newTestEngine(t)
	regs2.SetFlagZ(true)
	if _, err := e2.HandleNext(OpcodeOp(0x28)); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if b2.ElapsedCycles() != 12 {
		t.Fatalf("JR Z taken should cost 12 T-states, got %d", b2.ElapsedCycles())
	}
}

func TestLdRNImmediate(t *testing.T) {
	e, regs, _ := newTestEngine(t, 0x42) // operand for LD B,d8
	if _, err := e.HandleNext(OpcodeOp(0x06)); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if regs.B != 0x42 {
		t.Fatalf("B = %#02x, want 0x42", regs.B)
	}
}

func TestPushPopRoundTrip(t *testing.T) {
	e, regs, _ := newTestEngine(t)
	regs.SetBC(0xBEEF)
	if _, err := e.HandleNext(OpcodeOp(0xC5)); err != nil { // PUSH BC
		t.Fatalf("unexpected error: %v", err)
	}
	regs.SetBC(0x0000)
	if _, err := e.HandleNext(OpcodeOp(0xD1)); err != nil { // POP DE
		t.Fatalf("unexpected error: %v", err)
	}
	if regs.DE() != 0xBEEF {
		t.Fatalf("DE = %#04x, want 0xBEEF", regs.DE())
	}
}

func TestCallAndRetRoundTrip(t *testing.T) {
	e, regs, _ := newTestEngine(t, 0x34, 0x12) // CALL 0x1234's operand
	startPC := regs.PC
	if _, err := e.HandleNext(OpcodeOp(0xCD)); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	// PC lands on 0x1234, then the trailing opcode fetch advances it by one.
	if regs.PC != 0x1235 {
		t.Fatalf("PC after CALL = %#04x, want 0x1235", regs.PC)
	}
	if _, err := e.HandleNext(OpcodeOp(0xC9)); err != nil { // RET
		t.Fatalf("unexpected error: %v", err)
	}
	wantReturn := startPC + 3 // past the CALL's 2-byte operand, plus RET's trailing fetch
	if regs.PC != wantReturn {
		t.Fatalf("PC after RET = %#04x, want %#04x", regs.PC, wantReturn)
	}
}

// TestDaaAfterBCDAdd runs LD A,0x15; LD B,0x27; ADD A,B; DAA as a real
// fetched program: 15+27 in BCD is 42, with every flag clear afterward.
func TestDaaAfterBCDAdd(t *testing.T) {
	e, regs, _ := newTestEngine(t,
		0x3E, 0x15, // LD A,0x15
		0x06, 0x27, // LD B,0x27
		0x80, // ADD A,B
		0x27, // DAA
	)
	next := OpcodeOp(e.FirstOpcode())
	for i := 0; i < 4; i++ {
		var err error
		next, err = e.HandleNext(next)
		if err != nil {
			t.Fatalf("unexpected error at instruction %d: %v", i, err)
		}
	}
	if regs.A != 0x42 {
		t.Fatalf("A after DAA = %#02x, want 0x42", regs.A)
	}
	if regs.FlagZ() || regs.FlagN() || regs.FlagH() || regs.FlagC() {
		t.Fatalf("expected all flags clear after DAA, F = %#02x", regs.F)
	}
}

func TestHaltBugRereadsNextByte(t *testing.T) {
	e, regs, b := newTestEngine(t,
		0x76, // HALT
		0x3C, // INC A, read twice under the bug
	)
	ic := b.Interrupts()
	ic.TryWrite(0xFFFF, 0x01)  // enable VBlank
	ic.Raise(interrupt.VBlank) // pending, IME clear: arms the bug instead of halting

	next, err := e.HandleNext(OpcodeOp(e.FirstOpcode()))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if regs.St != register.Running {
		t.Fatalf("HALT with IME clear and a pending interrupt must not actually halt")
	}
	if next.Opcode != 0x3C {
		t.Fatalf("expected the bugged fetch to read 0x3C, got %#02x", next.Opcode)
	}
	pcAfterHalt := regs.PC
	if _, err := e.HandleNext(next); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if regs.A != 0x01 {
		t.Fatalf("INC A should have executed once, A = %#02x", regs.A)
	}
	if regs.PC != pcAfterHalt+1 {
		t.Fatalf("PC should only have advanced by 1 past the re-read byte, got %#04x vs %#04x", regs.PC, pcAfterHalt)
	}
}

func TestStopConsumesPaddingByteAsTwoByteNoop(t *testing.T) {
	e, regs, _ := newTestEngine(t, 0x00) // STOP's padding byte
	startPC := regs.PC
	if _, err := e.HandleNext(OpcodeOp(0x10)); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	// One byte for the padding, one for the trailing opcode fetch.
	if regs.PC != startPC+2 {
		t.Fatalf("PC after STOP's padding byte and the next fetch = %#04x, want %#04x", regs.PC, startPC+2)
	}
}

// TestRlcaClearsZWhereCBRlcSetsIt pins the one flag difference between
// the bare-A rotates and their CB-prefixed forms: rotating a zero A with
// RLCA leaves Z clear, while CB RLC on a zero register sets it.
func TestRlcaClearsZWhereCBRlcSetsIt(t *testing.T) {
	e, regs, _ := newTestEngine(t)
	regs.A = 0
	regs.SetFlagZ(true)
	if _, err := e.HandleNext(OpcodeOp(0x07)); err != nil { // RLCA
		t.Fatalf("unexpected error: %v", err)
	}
	if regs.FlagZ() {
		t.Fatalf("RLCA must always clear Z, even on a zero result")
	}

	e2, regs2, _ := newTestEngine(t, 0x00) // CB operand: RLC B
	regs2.B = 0
	if _, err := e2.HandleNext(OpcodeOp(0xCB)); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !regs2.FlagZ() {
		t.Fatalf("CB RLC on a zero register must set Z")
	}
}

func TestLdBBEmitsDebugTrigger(t *testing.T) {
	e, _, b := newTestEngine(t)
	if _, err := e.HandleNext(OpcodeOp(0x40)); err != nil { // LD B,B
		t.Fatalf("unexpected error: %v", err)
	}
	found := false
	for _, ev := range b.TakeEvents() {
		if _, ok := ev.(event.DebugTrigger); ok {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected a DebugTrigger event for LD B,B")
	}
}

// TestEveryOpcodeDecodes sweeps the full opcode space: the 11 unused
// bytes must fail with InvalidOpcodeError and every other byte must
// decode and execute against a zeroed ROM.
func TestEveryOpcodeDecodes(t *testing.T) {
	invalid := map[byte]bool{
		0xD3: true, 0xDB: true, 0xDD: true, 0xE3: true, 0xE4: true,
		0xEB: true, 0xEC: true, 0xED: true, 0xF4: true, 0xFC: true,
		0xFD: true,
	}
	for op := 0; op < 256; op++ {
		opcode := byte(op)
		e, _, _ := newTestEngine(t)
		_, err := e.HandleNext(OpcodeOp(opcode))
		if invalid[opcode] {
			if err == nil {
				t.Fatalf("opcode %#02x should be invalid", opcode)
			}
			if _, ok := err.(*InvalidOpcodeError); !ok {
				t.Fatalf("opcode %#02x: expected *InvalidOpcodeError, got %T", opcode, err)
			}
			continue
		}
		if err != nil {
			t.Fatalf("opcode %#02x should decode, got %v", opcode, err)
		}
	}
}

// TestFlagLowNibbleStaysZero executes every valid opcode and checks the
// flag-packing invariant afterward.
func TestFlagLowNibbleStaysZero(t *testing.T) {
	for op := 0; op < 256; op++ {
		opcode := byte(op)
		e, regs, _ := newTestEngine(t)
		regs.F = 0xF0 // all flags set going in
		if _, err := e.HandleNext(OpcodeOp(opcode)); err != nil {
			continue // invalid opcodes are covered elsewhere
		}
		if regs.F&0x0F != 0 {
			t.Fatalf("opcode %#02x left F = %#02x with a dirty low nibble", opcode, regs.F)
		}
	}
}

func TestInvalidOpcodeReturnsError(t *testing.T) {
	e, _, _ := newTestEngine(t)
	_, err := e.HandleNext(OpcodeOp(0xD3))
	if err == nil {
		t.Fatalf("expected an InvalidOpcodeError for 0xD3")
	}
	if _, ok := err.(*InvalidOpcodeError); !ok {
		t.Fatalf("expected *InvalidOpcodeError, got %T", err)
	}
}

func TestHaltThenInterruptDispatches(t *testing.T) {
	e, regs, b := newTestEngine(t, 0x76) // HALT
	ic := b.Interrupts()
	ic.EnableInterrupts()
	ic.TryWrite(0xFFFF, 0x01)

	next, err := e.HandleNext(OpcodeOp(e.FirstOpcode()))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if regs.St != register.Halted {
		t.Fatalf("expected the CPU to actually halt with IME set and nothing pending")
	}

	ic.Raise(interrupt.VBlank) // fires while halted
	next, err = e.HandleNext(next)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if regs.St != register.Running {
		t.Fatalf("expected the CPU to wake on the pending interrupt")
	}
	if !next.StartInterrupt {
		t.Fatalf("expected IME-set wake to hand off to interrupt dispatch")
	}
	if _, err := e.HandleNext(next); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	// PC lands on the vector, then the dispatch's own trailing fetch (like
	// every instruction's trailing fetch) advances it by one more byte.
	if regs.PC != 0x41 {
		t.Fatalf("PC after VBlank dispatch = %#04x, want 0x0041", regs.PC)
	}
	if b.Interrupts().IME() {
		t.Fatalf("dispatch should have cleared IME")
	}
}
