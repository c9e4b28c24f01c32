package execution

// AluOp is the 3-bit ALU operation selector used by both register/
// immediate ALU opcodes (x=2 and x=3,z=6).
type AluOp int

const (
	AluAdd AluOp = iota
	AluAdc
	AluSub
	AluSbc
	AluAnd
	AluXor
	AluOr
	AluCp
)

func AluOpFromBits(y byte) AluOp { return AluOp(y & 0x07) }

// RotationShiftOp is the CB-prefixed x=0 rotate/shift selector.
type RotationShiftOp int

const (
	RSRlc RotationShiftOp = iota
	RSRrc
	RSRl
	RSRr
	RSSla
	RSSra
	RSSwap
	RSSrl
)

func RotationShiftOpFromBits(y byte) RotationShiftOp { return RotationShiftOp(y & 0x07) }

// JumpCondition is the 2-bit condition field shared by JR/JP/CALL/RET cc.
type JumpCondition int

const (
	CondNZ JumpCondition = iota
	CondZ
	CondNC
	CondC
)

func JumpConditionFromBits(y byte) JumpCondition { return JumpCondition(y & 0x03) }

// ResetVector is the RST target encoded in the y field: y*8.
type ResetVector uint16

func ResetVectorFromBits(y byte) ResetVector { return ResetVector(y) * 8 }
