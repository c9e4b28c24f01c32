package execution

import (
	"fmt"

	"github.com/FabianRolfMatthiasNoll/dmgcore/internal/register"
)

func (e *Engine) ldRR(target, source register.Reg8) string {
	v := e.readCommonRegister(source)
	e.writeCommonRegister(target, v)
	return fmt.Sprintf("LD %s,%s", regName(target), regName(source))
}

func (e *Engine) ldRN(r register.Reg8) string {
	imm := e.readByteAtPC()
	e.writeCommonRegister(r, imm)
	return fmt.Sprintf("LD %s,d8", regName(r))
}

func (e *Engine) ldRpNn(rp register.Reg16) string {
	imm := e.readWordAtPC()
	e.Regs.Write16(rp, imm)
	return fmt.Sprintf("LD %s,d16", reg16Name(rp))
}

func (e *Engine) ldInnSp() string {
	addr := e.readWordAtPC()
	e.writeWordTo(addr, e.Regs.SP)
	return "LD (a16),SP"
}

// addHLRp costs one extra internal m-cycle on top of the opcode fetch.
func (e *Engine) addHLRp(rp register.Reg16) string {
	hl := e.Regs.HL()
	v := e.Regs.Read16(rp)
	sum := uint32(hl) + uint32(v)
	h := (hl&0x0FFF)+(v&0x0FFF) > 0x0FFF
	c := sum > 0xFFFF
	e.Regs.SetHL(uint16(sum))
	e.Regs.SetFlagN(false)
	e.Regs.SetFlagH(h)
	e.Regs.SetFlagC(c)
	e.tick4()
	return fmt.Sprintf("ADD HL,%s", reg16Name(rp))
}

func (e *Engine) ldIrpA(rp register.Reg16) string {
	e.writeByteTo(e.Regs.Read16(rp), e.Regs.A)
	return fmt.Sprintf("LD (%s),A", reg16Name(rp))
}

func (e *Engine) ldAIrp(rp register.Reg16) string {
	e.Regs.A = e.readByteAt(e.Regs.Read16(rp))
	return fmt.Sprintf("LD A,(%s)", reg16Name(rp))
}

func (e *Engine) ldHLPlusA() string {
	addr := e.Regs.HL()
	e.writeByteTo(addr, e.Regs.A)
	e.Regs.SetHL(addr + 1)
	return "LD (HL+),A"
}

func (e *Engine) ldHLMinusA() string {
	addr := e.Regs.HL()
	e.writeByteTo(addr, e.Regs.A)
	e.Regs.SetHL(addr - 1)
	return "LD (HL-),A"
}

func (e *Engine) ldAHLPlus() string {
	addr := e.Regs.HL()
	e.Regs.A = e.readByteAt(addr)
	e.Regs.SetHL(addr + 1)
	return "LD A,(HL+)"
}

func (e *Engine) ldAHLMinus() string {
	addr := e.Regs.HL()
	e.Regs.A = e.readByteAt(addr)
	e.Regs.SetHL(addr - 1)
	return "LD A,(HL-)"
}

// inc16/dec16 affect no flags and cost one internal m-cycle.
func (e *Engine) inc16(rp register.Reg16) string {
	e.Regs.Write16(rp, e.Regs.Read16(rp)+1)
	e.tick4()
	return fmt.Sprintf("INC %s", reg16Name(rp))
}

func (e *Engine) dec16(rp register.Reg16) string {
	e.Regs.Write16(rp, e.Regs.Read16(rp)-1)
	e.tick4()
	return fmt.Sprintf("DEC %s", reg16Name(rp))
}

func (e *Engine) push(rp register.Reg16) string {
	e.pushWord(e.Regs.Read16(rp))
	return fmt.Sprintf("PUSH %s", reg16Name(rp))
}

func (e *Engine) pop(rp register.Reg16) string {
	e.Regs.Write16(rp, e.popWord())
	return fmt.Sprintf("POP %s", reg16Name(rp))
}

// addSignedToSP computes SP + sign-extend(imm) along with the half-carry
// and carry flags, which (unusually) come from an 8-bit unsigned add on
// SP's low byte rather than from the signed 16-bit result. Shared by
// ADD SP,r8 and LD HL,SP+r8.
func (e *Engine) addSignedToSP(imm byte) (result uint16, h, c bool) {
	sp := e.Regs.SP
	signed := int32(int8(imm))
	result = uint16(int32(sp) + signed)
	h = (sp&0x0F)+(uint16(imm)&0x0F) > 0x0F
	c = (sp&0xFF)+uint16(imm) > 0xFF
	return result, h, c
}

func (e *Engine) addSPD() string {
	imm := e.readByteAtPC()
	result, h, c := e.addSignedToSP(imm)
	e.Regs.SP = result
	e.Regs.SetFlags(false, false, h, c)
	e.tick4()
	e.tick4()
	return "ADD SP,r8"
}

func (e *Engine) ldHLSPD() string {
	imm := e.readByteAtPC()
	result, h, c := e.addSignedToSP(imm)
	e.Regs.SetHL(result)
	e.Regs.SetFlags(false, false, h, c)
	e.tick4()
	return "LD HL,SP+r8"
}

func (e *Engine) ldSPHL() string {
	e.Regs.SP = e.Regs.HL()
	e.tick4()
	return "LD SP,HL"
}

func (e *Engine) ldIoImmA() string {
	addr := 0xFF00 + uint16(e.readByteAtPC())
	e.writeByteTo(addr, e.Regs.A)
	return "LDH (a8),A"
}

func (e *Engine) ldIoAImm() string {
	addr := 0xFF00 + uint16(e.readByteAtPC())
	e.Regs.A = e.readByteAt(addr)
	return "LDH A,(a8)"
}

func (e *Engine) ldIoCA() string {
	e.writeByteTo(0xFF00+uint16(e.Regs.C), e.Regs.A)
	return "LD (C),A"
}

func (e *Engine) ldIoAC() string {
	e.Regs.A = e.readByteAt(0xFF00 + uint16(e.Regs.C))
	return "LD A,(C)"
}

func (e *Engine) ldInnA() string {
	addr := e.readWordAtPC()
	e.writeByteTo(addr, e.Regs.A)
	return "LD (a16),A"
}

func (e *Engine) ldAInn() string {
	addr := e.readWordAtPC()
	e.Regs.A = e.readByteAt(addr)
	return "LD A,(a16)"
}
