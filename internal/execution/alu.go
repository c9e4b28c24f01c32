package execution

import (
	"fmt"

	"github.com/FabianRolfMatthiasNoll/dmgcore/internal/register"
)

func (e *Engine) inc(r register.Reg8) string {
	v := e.readCommonRegister(r)
	res, z, h := register.Inc8(v)
	e.writeCommonRegister(r, res)
	e.Regs.SetFlagZ(z)
	e.Regs.SetFlagN(false)
	e.Regs.SetFlagH(h)
	return fmt.Sprintf("INC %s", regName(r))
}

func (e *Engine) dec(r register.Reg8) string {
	v := e.readCommonRegister(r)
	res, z, h := register.Dec8(v)
	e.writeCommonRegister(r, res)
	e.Regs.SetFlagZ(z)
	e.Regs.SetFlagN(true)
	e.Regs.SetFlagH(h)
	return fmt.Sprintf("DEC %s", regName(r))
}

// alu applies op to (a, b) and writes the result plus all four flags into
// A; CP discards the result and keeps A unchanged.
func (e *Engine) alu(op AluOp, b byte) {
	a := e.Regs.A
	var res byte
	var z, n, h, c bool
	switch op {
	case AluAdd:
		res, z, n, h, c = register.Add8(a, b)
	case AluAdc:
		res, z, n, h, c = register.Adc8(a, b, e.Regs.FlagC())
	case AluSub:
		res, z, n, h, c = register.Sub8(a, b)
	case AluSbc:
		res, z, n, h, c = register.Sbc8(a, b, e.Regs.FlagC())
	case AluAnd:
		res, z, n, h, c = register.And8(a, b)
	case AluXor:
		res, z, n, h, c = register.Xor8(a, b)
	case AluOr:
		res, z, n, h, c = register.Or8(a, b)
	case AluCp:
		res, z, n, h, c = register.Sub8(a, b)
	}
	e.Regs.SetFlags(z, n, h, c)
	if op != AluCp {
		e.Regs.A = res
	}
}

func (e *Engine) aluReg(op AluOp, r register.Reg8) string {
	v := e.readCommonRegister(r)
	e.alu(op, v)
	return fmt.Sprintf("%s A,%s", aluMnemonic(op), regName(r))
}

func (e *Engine) aluImm(op AluOp) string {
	v := e.readByteAtPC()
	e.alu(op, v)
	return fmt.Sprintf("%s A,d8", aluMnemonic(op))
}

func aluMnemonic(op AluOp) string {
	switch op {
	case AluAdd:
		return "ADD"
	case AluAdc:
		return "ADC"
	case AluSub:
		return "SUB"
	case AluSbc:
		return "SBC"
	case AluAnd:
		return "AND"
	case AluXor:
		return "XOR"
	case AluOr:
		return "OR"
	default:
		return "CP"
	}
}

// rotateShift applies a CB-prefixed rotate/shift: unlike the bare-A forms
// (RLCA/RRCA/RLA/RRA), these set Z = (result == 0).
func (e *Engine) rotateShift(op RotationShiftOp, r register.Reg8) string {
	v := e.readCommonRegister(r)
	var res byte
	var c bool
	switch op {
	case RSRlc:
		res, c = register.Rlc8(v)
	case RSRrc:
		res, c = register.Rrc8(v)
	case RSRl:
		res, c = register.Rl8(v, e.Regs.FlagC())
	case RSRr:
		res, c = register.Rr8(v, e.Regs.FlagC())
	case RSSla:
		res, c = register.Sla8(v)
	case RSSra:
		res, c = register.Sra8(v)
	case RSSwap:
		res, c = register.Swap8(v), false
	default: // RSSrl
		res, c = register.Srl8(v)
	}
	e.writeCommonRegister(r, res)
	e.Regs.SetFlags(res == 0, false, false, c)
	return fmt.Sprintf("%s %s", rotationShiftMnemonic(op), regName(r))
}

func rotationShiftMnemonic(op RotationShiftOp) string {
	switch op {
	case RSRlc:
		return "RLC"
	case RSRrc:
		return "RRC"
	case RSRl:
		return "RL"
	case RSRr:
		return "RR"
	case RSSla:
		return "SLA"
	case RSSra:
		return "SRA"
	case RSSwap:
		return "SWAP"
	default:
		return "SRL"
	}
}

func (e *Engine) rlca() string {
	res, c := register.Rlc8(e.Regs.A)
	e.Regs.A = res
	e.Regs.SetFlags(false, false, false, c)
	return "RLCA"
}

func (e *Engine) rrca() string {
	res, c := register.Rrc8(e.Regs.A)
	e.Regs.A = res
	e.Regs.SetFlags(false, false, false, c)
	return "RRCA"
}

func (e *Engine) rla() string {
	res, c := register.Rl8(e.Regs.A, e.Regs.FlagC())
	e.Regs.A = res
	e.Regs.SetFlags(false, false, false, c)
	return "RLA"
}

func (e *Engine) rra() string {
	res, c := register.Rr8(e.Regs.A, e.Regs.FlagC())
	e.Regs.A = res
	e.Regs.SetFlags(false, false, false, c)
	return "RRA"
}

func (e *Engine) daa() string {
	res, z, c := register.DAA(e.Regs.A, e.Regs.FlagN(), e.Regs.FlagH(), e.Regs.FlagC())
	e.Regs.A = res
	e.Regs.SetFlagZ(z)
	e.Regs.SetFlagH(false)
	e.Regs.SetFlagC(c)
	return "DAA"
}

func (e *Engine) cpl() string {
	e.Regs.A = ^e.Regs.A
	e.Regs.SetFlagN(true)
	e.Regs.SetFlagH(true)
	return "CPL"
}

func (e *Engine) scf() string {
	e.Regs.SetFlagN(false)
	e.Regs.SetFlagH(false)
	e.Regs.SetFlagC(true)
	return "SCF"
}

func (e *Engine) ccf() string {
	e.Regs.SetFlagN(false)
	e.Regs.SetFlagH(false)
	e.Regs.SetFlagC(!e.Regs.FlagC())
	return "CCF"
}

func (e *Engine) bit(y byte, r register.Reg8) string {
	v := e.readCommonRegister(r)
	set := v&(1<<y) != 0
	e.Regs.SetFlagZ(!set)
	e.Regs.SetFlagN(false)
	e.Regs.SetFlagH(true)
	return fmt.Sprintf("BIT %d,%s", y, regName(r))
}

func (e *Engine) res(y byte, r register.Reg8) string {
	v := e.readCommonRegister(r)
	e.writeCommonRegister(r, v&^(1<<y))
	return fmt.Sprintf("RES %d,%s", y, regName(r))
}

func (e *Engine) set(y byte, r register.Reg8) string {
	v := e.readCommonRegister(r)
	e.writeCommonRegister(r, v|(1<<y))
	return fmt.Sprintf("SET %d,%s", y, regName(r))
}

func regName(r register.Reg8) string {
	switch r {
	case register.RegB:
		return "B"
	case register.RegC:
		return "C"
	case register.RegD:
		return "D"
	case register.RegE:
		return "E"
	case register.RegH:
		return "H"
	case register.RegL:
		return "L"
	case register.RegHLIndirect:
		return "(HL)"
	default:
		return "A"
	}
}

func reg16Name(r register.Reg16) string {
	switch r {
	case register.RegBC:
		return "BC"
	case register.RegDE:
		return "DE"
	case register.RegHL:
		return "HL"
	case register.RegSP:
		return "SP"
	default:
		return "AF"
	}
}
