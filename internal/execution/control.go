package execution

import (
	"fmt"

	"github.com/FabianRolfMatthiasNoll/dmgcore/internal/event"
	"github.com/FabianRolfMatthiasNoll/dmgcore/internal/register"
)

func (e *Engine) noop() string { return "NOP" }

// stop consumes STOP's padding byte (0x00 on every real cartridge; the
// CGB double-speed switch that gives the second byte meaning is out of
// scope here) and otherwise behaves as a 2-byte NOP. Real DMG hardware
// halts the CPU and clocks until a joypad edge, but no Blargg/Mooneye
// test this core targets exercises that path.
func (e *Engine) stop() string {
	e.readByteAtPC()
	return "STOP"
}

// halt either puts the CPU to sleep, or-if IME is clear and an interrupt
// is already pending-leaves it running and arms the HALT bug instead:
// hardware doesn't actually halt in that case, it just fails to advance
// PC on the very next fetch.
func (e *Engine) halt() string {
	ic := e.Bus.Interrupts()
	if !ic.IME() && ic.ShouldCancelHalt() {
		e.Regs.HaltBug = true
	} else {
		e.Regs.St = register.Halted
	}
	return "HALT"
}

// halted is called instead of decodeExecuteFetch every cycle the CPU
// spends asleep. It still ticks the bus so timer and video keep
// running, and wakes on any enabled-and-pending interrupt regardless of
// IME, only handing off to interrupt dispatch when IME is actually set.
func (e *Engine) halted(next NextOperation) NextOperation {
	e.Bus.PushEvent(event.Halted{})
	e.tick4()
	if e.Bus.Interrupts().ShouldCancelHalt() {
		e.Regs.St = register.Running
		if e.Bus.Interrupts().ShouldVector() {
			return StartInterruptRoutineOp
		}
		return OpcodeOp(e.readByteAtPC())
	}
	return next
}

// startInterruptRoutine runs the fixed 5 m-cycle interrupt dispatch
// sequence: one wait cycle, a 3-cycle push of PC, then the jump to the
// vector folded into the next opcode fetch.
func (e *Engine) startInterruptRoutine() NextOperation {
	e.Bus.PushEvent(event.InterruptRoutineStarted{})
	e.tick4()
	e.pushWord(e.Regs.PC)

	k, ok := e.Bus.Interrupts().HighestPriority()
	if !ok {
		panic("execution: startInterruptRoutine invoked with nothing pending")
	}
	e.Bus.Interrupts().Unraise(k)
	e.Bus.Interrupts().DisableInterrupts()
	e.Regs.PC = k.Vector()
	e.Bus.PushEvent(event.InterruptRoutineFinished{Which: k})
	return OpcodeOp(e.readByteAtPC())
}

func (e *Engine) shouldJump(cond JumpCondition) bool {
	switch cond {
	case CondNZ:
		return !e.Regs.FlagZ()
	case CondZ:
		return e.Regs.FlagZ()
	case CondNC:
		return !e.Regs.FlagC()
	default: // CondC
		return e.Regs.FlagC()
	}
}

func condName(cond JumpCondition) string {
	switch cond {
	case CondNZ:
		return "NZ"
	case CondZ:
		return "Z"
	case CondNC:
		return "NC"
	default:
		return "C"
	}
}

func (e *Engine) jr() string {
	offset := int8(e.readByteAtPC())
	e.Regs.PC = uint16(int32(e.Regs.PC) + int32(offset))
	e.tick4()
	return "JR r8"
}

func (e *Engine) jrCc(cond JumpCondition) string {
	offset := int8(e.readByteAtPC())
	if e.shouldJump(cond) {
		e.Regs.PC = uint16(int32(e.Regs.PC) + int32(offset))
		e.tick4()
	}
	return fmt.Sprintf("JR %s,r8", condName(cond))
}

func (e *Engine) jp() string {
	addr := e.readWordAtPC()
	e.Regs.PC = addr
	e.tick4()
	return "JP a16"
}

func (e *Engine) jpCc(cond JumpCondition) string {
	addr := e.readWordAtPC()
	if e.shouldJump(cond) {
		e.Regs.PC = addr
		e.tick4()
	}
	return fmt.Sprintf("JP %s,a16", condName(cond))
}

func (e *Engine) jpHL() string {
	e.Regs.PC = e.Regs.HL()
	return "JP HL"
}

func (e *Engine) ret() string {
	e.Regs.PC = e.popWord()
	e.tick4()
	return "RET"
}

// retCc spends one internal m-cycle checking the condition, matching
// RET cc's extra cycle over the unconditional form.
func (e *Engine) retCc(cond JumpCondition) string {
	e.tick4()
	if e.shouldJump(cond) {
		e.Regs.PC = e.popWord()
		e.tick4()
	}
	return fmt.Sprintf("RET %s", condName(cond))
}

func (e *Engine) reti() string {
	e.Regs.PC = e.popWord()
	e.Bus.Interrupts().EnableInterrupts()
	e.tick4()
	return "RETI"
}

func (e *Engine) call() string {
	addr := e.readWordAtPC()
	e.pushWord(e.Regs.PC)
	e.Regs.PC = addr
	return "CALL a16"
}

func (e *Engine) callCc(cond JumpCondition) string {
	addr := e.readWordAtPC()
	if e.shouldJump(cond) {
		e.pushWord(e.Regs.PC)
		e.Regs.PC = addr
	}
	return fmt.Sprintf("CALL %s,a16", condName(cond))
}

func (e *Engine) rst(vec ResetVector) string {
	e.pushWord(e.Regs.PC)
	e.Regs.PC = uint16(vec)
	return fmt.Sprintf("RST %02Xh", uint16(vec))
}

func (e *Engine) di() string {
	e.Bus.Interrupts().DisableInterrupts()
	return "DI"
}

func (e *Engine) ei() string {
	e.Bus.Interrupts().ScheduleIMEEnable()
	return "EI"
}
