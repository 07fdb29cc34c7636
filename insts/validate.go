package insts

import (
	"fmt"
	"io"
)

// RV32I major opcodes (bits [6:0] of the instruction word).
const (
	opcodeOpReg  uint32 = 0b0110011
	opcodeOpImm  uint32 = 0b0010011
	opcodeLoad   uint32 = 0b0000011
	opcodeStore  uint32 = 0b0100011
	opcodeBranch uint32 = 0b1100011
	opcodeJALR   uint32 = 0b1100111
	opcodeJAL    uint32 = 0b1101111
	opcodeLUI    uint32 = 0b0110111
	opcodeAUIPC  uint32 = 0b0010111
	opcodeSystem uint32 = 0b1110011
)

// RejectCause identifies the sub-field that triggered a lane rejection.
type RejectCause uint8

// Rejection causes.
const (
	RejectNone RejectCause = iota
	RejectOpcode
	RejectFunct3
	RejectFunct7
	RejectShamt
	RejectImm
	RejectX0Write
)

var rejectCauseNames = [...]string{
	RejectNone:    "none",
	RejectOpcode:  "opcode",
	RejectFunct3:  "funct3",
	RejectFunct7:  "funct7",
	RejectShamt:   "shamt",
	RejectImm:     "imm",
	RejectX0Write: "x0-write",
}

// String returns the name of the rejection cause.
func (c RejectCause) String() string {
	if int(c) >= len(rejectCauseNames) {
		return "none"
	}
	return rejectCauseNames[c]
}

// Rejection is the structured diagnostic record for a dropped lane.
type Rejection struct {
	// Word is the raw instruction word.
	Word uint32
	// Lane is the lane index within the batch.
	Lane int
	// Opcode is the major opcode of the word.
	Opcode uint32
	// Cause names the sub-field that triggered the rejection.
	Cause RejectCause
}

// String formats the rejection as a one-line diagnostic.
func (r Rejection) String() string {
	return fmt.Sprintf("reject lane %d word 0x%08X opcode 0b%07b cause %s",
		r.Lane, r.Word, r.Opcode, r.Cause)
}

// Validated is the Stage-2 output: accepted instructions stored column-wise
// in four parallel growable arrays. The columns always have equal length and
// grow in lockstep; execution scans them independently.
type Validated struct {
	// Loc holds the absolute PC of each accepted instruction.
	Loc []uint32
	// Op holds the decoded operation tag.
	Op []Op
	// Regs holds the packed register selectors.
	Regs []RegBits
	// Imm holds the single relevant immediate; zero for R-type.
	Imm []int32

	diag io.Writer
}

// ValidatedOption configures a Validated at construction time.
type ValidatedOption func(*Validated)

// WithDiagnostics sets the writer that receives one formatted Rejection
// record per dropped lane. Without it, rejections are silently discarded.
func WithDiagnostics(w io.Writer) ValidatedOption {
	return func(v *Validated) {
		v.diag = w
	}
}

// NewValidated creates an empty validated batch.
func NewValidated(opts ...ValidatedOption) *Validated {
	v := &Validated{}
	for _, opt := range opts {
		opt(v)
	}
	return v
}

// Len returns the number of accepted instructions.
func (v *Validated) Len() int {
	return len(v.Loc)
}

// Clear drops all accepted instructions, keeping the column capacity.
func (v *Validated) Clear() {
	v.Loc = v.Loc[:0]
	v.Op = v.Op[:0]
	v.Regs = v.Regs[:0]
	v.Imm = v.Imm[:0]
}

// ValidateAndPack classifies every lane of the Stage-1 batch, appends the
// accepted instructions in lane order, and returns how many were accepted.
// Rejection is non-fatal: the lane is dropped with a diagnostic and the
// batch continues, so this method is total.
func (v *Validated) ValidateAndPack(b *Batch) int {
	accepted := 0
	for i := 0; i < b.Lanes(); i++ {
		op, regs, imm, cause := classifyLane(
			b.Opcode[i], b.Rd[i], b.Funct3[i], b.Rs1[i], b.Rs2[i], b.Funct7[i],
			b.ImmI[i], b.ImmS[i], b.ImmB[i], b.ImmU[i], b.ImmJ[i],
		)
		if cause != RejectNone {
			if v.diag != nil {
				fmt.Fprintln(v.diag, Rejection{
					Word:   b.Words[i],
					Lane:   i,
					Opcode: b.Opcode[i],
					Cause:  cause,
				})
			}
			continue
		}

		v.Loc = append(v.Loc, b.Base+4*uint32(i))
		v.Op = append(v.Op, op)
		v.Regs = append(v.Regs, regs)
		v.Imm = append(v.Imm, imm)
		accepted++
	}
	return accepted
}

// classifyLane classifies one extracted lane. On acceptance it returns the
// operation tag, the packed registers with unused selector slots zeroed, and
// the single immediate the operation carries; on rejection the cause names
// the offending sub-field. Both the batch validator and the scalar decoder
// go through this function, so the two can never disagree.
func classifyLane(
	opcode, rd, funct3, rs1, rs2, funct7 uint32,
	iI, iS, iB, iU, iJ int32,
) (Op, RegBits, int32, RejectCause) {
	switch opcode {
	case opcodeOpReg:
		op := classifyOpReg(funct3, funct7)
		if op == OpInvalid {
			return OpInvalid, 0, 0, RejectFunct7
		}
		if rd == 0 {
			return OpInvalid, 0, 0, RejectX0Write
		}
		return op, PackRegs(rd, rs1, rs2), 0, RejectNone

	case opcodeOpImm:
		op, cause := classifyOpImm(funct3, funct7)
		if cause != RejectNone {
			return OpInvalid, 0, 0, cause
		}
		if rd == 0 {
			return OpInvalid, 0, 0, RejectX0Write
		}
		return op, PackRegs(rd, rs1, 0), iI, RejectNone

	case opcodeLoad:
		var op Op
		switch funct3 {
		case 0:
			op = OpLB
		case 1:
			op = OpLH
		case 2:
			op = OpLW
		case 4:
			op = OpLBU
		case 5:
			op = OpLHU
		default:
			return OpInvalid, 0, 0, RejectFunct3
		}
		if rd == 0 {
			return OpInvalid, 0, 0, RejectX0Write
		}
		return op, PackRegs(rd, rs1, 0), iI, RejectNone

	case opcodeStore:
		var op Op
		switch funct3 {
		case 0:
			op = OpSB
		case 1:
			op = OpSH
		case 2:
			op = OpSW
		default:
			return OpInvalid, 0, 0, RejectFunct3
		}
		return op, PackRegs(0, rs1, rs2), iS, RejectNone

	case opcodeBranch:
		var op Op
		switch funct3 {
		case 0:
			op = OpBEQ
		case 1:
			op = OpBNE
		case 4:
			op = OpBLT
		case 5:
			op = OpBGE
		case 6:
			op = OpBLTU
		case 7:
			op = OpBGEU
		default:
			return OpInvalid, 0, 0, RejectFunct3
		}
		return op, PackRegs(0, rs1, rs2), iB, RejectNone

	case opcodeJALR:
		if funct3 != 0 {
			return OpInvalid, 0, 0, RejectFunct3
		}
		if rd == 0 {
			return OpInvalid, 0, 0, RejectX0Write
		}
		return OpJALR, PackRegs(rd, rs1, 0), iI, RejectNone

	case opcodeJAL:
		// J-type has no funct3: word bits [14:12] belong to the immediate.
		if rd == 0 {
			return OpInvalid, 0, 0, RejectX0Write
		}
		return OpJAL, PackRegs(rd, 0, 0), iJ, RejectNone

	case opcodeLUI:
		if rd == 0 {
			return OpInvalid, 0, 0, RejectX0Write
		}
		return OpLUI, PackRegs(rd, 0, 0), iU, RejectNone

	case opcodeAUIPC:
		if rd == 0 {
			return OpInvalid, 0, 0, RejectX0Write
		}
		return OpAUIPC, PackRegs(rd, 0, 0), iU, RejectNone

	case opcodeSystem:
		if funct3 != 0 {
			return OpInvalid, 0, 0, RejectFunct3
		}
		switch iI {
		case 0:
			return OpECALL, PackRegs(0, 0, 0), iI, RejectNone
		case 1:
			return OpEBREAK, PackRegs(0, 0, 0), iI, RejectNone
		default:
			return OpInvalid, 0, 0, RejectImm
		}

	default:
		return OpInvalid, 0, 0, RejectOpcode
	}
}

// classifyOpReg maps the funct3/funct7 pair of an OP (register-register)
// instruction. Any pair outside the ten defined ones yields OpInvalid.
func classifyOpReg(funct3, funct7 uint32) Op {
	switch {
	case funct3 == 0 && funct7 == 0x00:
		return OpADD
	case funct3 == 0 && funct7 == 0x20:
		return OpSUB
	case funct3 == 1 && funct7 == 0x00:
		return OpSLL
	case funct3 == 2 && funct7 == 0x00:
		return OpSLT
	case funct3 == 3 && funct7 == 0x00:
		return OpSLTU
	case funct3 == 4 && funct7 == 0x00:
		return OpXOR
	case funct3 == 5 && funct7 == 0x00:
		return OpSRL
	case funct3 == 5 && funct7 == 0x20:
		return OpSRA
	case funct3 == 6 && funct7 == 0x00:
		return OpOR
	case funct3 == 7 && funct7 == 0x00:
		return OpAND
	default:
		return OpInvalid
	}
}

// classifyOpImm maps the funct3 of an OP-IMM instruction. For the shift
// encodings (funct3 1 and 5) the funct7 field doubles as the shamt-high
// bits and is constrained: 0x00 selects slli/srli, 0x20 selects srai.
func classifyOpImm(funct3, funct7 uint32) (Op, RejectCause) {
	switch funct3 {
	case 0:
		return OpADDI, RejectNone
	case 1:
		if funct7 != 0x00 {
			return OpInvalid, RejectShamt
		}
		return OpSLLI, RejectNone
	case 2:
		return OpSLTI, RejectNone
	case 3:
		return OpSLTIU, RejectNone
	case 4:
		return OpXORI, RejectNone
	case 5:
		switch funct7 {
		case 0x00:
			return OpSRLI, RejectNone
		case 0x20:
			return OpSRAI, RejectNone
		default:
			return OpInvalid, RejectShamt
		}
	case 6:
		return OpORI, RejectNone
	default: // funct3 == 7
		return OpANDI, RejectNone
	}
}
