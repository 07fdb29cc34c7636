package insts

import (
	"errors"
	"fmt"
)

// Rejection reasons surfaced as errors by the scalar Decoder. The batch
// validator never fails for these; it drops the lane instead.
var (
	ErrUnknownOpcode = errors.New("insts: unknown opcode")
	ErrUnknownFunct3 = errors.New("insts: unknown funct3")
	ErrUnknownFunct7 = errors.New("insts: unknown funct7")
	ErrUnknownShamt  = errors.New("insts: unknown shamt-high bits")
	ErrUnknownImm    = errors.New("insts: unknown system immediate")
	ErrWritesToX0    = errors.New("insts: instruction writes to x0")
)

// Instruction is a single decoded RV32I instruction.
type Instruction struct {
	// Op is the operation tag.
	Op Op
	// Rd, Rs1, Rs2 are the register selectors; slots the instruction type
	// does not use hold zero.
	Rd  uint32
	Rs1 uint32
	Rs2 uint32
	// Imm is the instruction's immediate; zero for R-type.
	Imm int32
}

// String formats the instruction in assembly-like form.
func (i *Instruction) String() string {
	switch i.Op {
	case OpECALL, OpEBREAK:
		return i.Op.String()
	case OpLUI, OpAUIPC, OpJAL:
		return fmt.Sprintf("%s x%d, %d", i.Op, i.Rd, i.Imm)
	case OpSB, OpSH, OpSW:
		return fmt.Sprintf("%s x%d, %d(x%d)", i.Op, i.Rs2, i.Imm, i.Rs1)
	case OpLB, OpLH, OpLW, OpLBU, OpLHU, OpJALR:
		return fmt.Sprintf("%s x%d, %d(x%d)", i.Op, i.Rd, i.Imm, i.Rs1)
	case OpBEQ, OpBNE, OpBLT, OpBGE, OpBLTU, OpBGEU:
		return fmt.Sprintf("%s x%d, x%d, %d", i.Op, i.Rs1, i.Rs2, i.Imm)
	case OpADD, OpSUB, OpXOR, OpOR, OpAND, OpSLL, OpSRL, OpSRA, OpSLT, OpSLTU:
		return fmt.Sprintf("%s x%d, x%d, x%d", i.Op, i.Rd, i.Rs1, i.Rs2)
	default:
		return fmt.Sprintf("%s x%d, x%d, %d", i.Op, i.Rd, i.Rs1, i.Imm)
	}
}

// Decoder decodes RV32I machine code one word at a time. It shares its
// classification with the batch validator but surfaces every rejection as a
// typed error, which makes it suitable for disassembly and debugging.
type Decoder struct{}

// NewDecoder creates a new scalar RV32I decoder.
func NewDecoder() *Decoder {
	return &Decoder{}
}

// Decode decodes a single 32-bit instruction word.
func (d *Decoder) Decode(word uint32) (*Instruction, error) {
	op, regs, imm, cause := classifyLane(
		word&0x7f,
		(word>>7)&0x1f,
		(word>>12)&0x07,
		(word>>15)&0x1f,
		(word>>20)&0x1f,
		(word>>25)&0x7f,
		immI(word), immS(word), immB(word), immU(word), immJ(word),
	)
	if cause != RejectNone {
		return nil, fmt.Errorf("%w: word 0x%08X", rejectErr(cause), word)
	}

	return &Instruction{
		Op:  op,
		Rd:  regs.Rd(),
		Rs1: regs.Rs1(),
		Rs2: regs.Rs2(),
		Imm: imm,
	}, nil
}

// rejectErr maps a rejection cause to its sentinel error.
func rejectErr(cause RejectCause) error {
	switch cause {
	case RejectOpcode:
		return ErrUnknownOpcode
	case RejectFunct3:
		return ErrUnknownFunct3
	case RejectFunct7:
		return ErrUnknownFunct7
	case RejectShamt:
		return ErrUnknownShamt
	case RejectImm:
		return ErrUnknownImm
	case RejectX0Write:
		return ErrWritesToX0
	default:
		return ErrUnknownOpcode
	}
}
