package insts

import (
	"errors"
	"fmt"
)

// ErrMisalignedBase is returned by Extract when the batch base PC is not a
// multiple of 4. It is the extractor's only error and is checked once per
// batch, never per lane.
var ErrMisalignedBase = errors.New("insts: misaligned batch base")

// Batch holds the Stage-1 output for one batch of instruction words as a
// structure of arrays. Every field is populated for every lane regardless
// of opcode; interpreting which fields are meaningful is Stage 2's job.
type Batch struct {
	// Base is the PC of lane 0. Always a multiple of 4.
	Base uint32

	// Architectural fields, one entry per lane.
	Opcode []uint32
	Rd     []uint32
	Funct3 []uint32
	Rs1    []uint32
	Rs2    []uint32
	Funct7 []uint32

	// All five immediate encodings, sign-extended, one entry per lane.
	ImmI []int32
	ImmS []int32
	ImmB []int32
	ImmU []int32
	ImmJ []int32

	// Words keeps the raw input for diagnostics.
	Words []uint32
}

// Lanes returns the number of lanes in the batch.
func (b *Batch) Lanes() int {
	return len(b.Words)
}

// Extractor is the Stage-1 decoder. It extracts fields and immediates from
// fixed-width batches of raw words. Each field is produced by its own tight
// loop over the lanes so the work stays branch-free and vectorizable; the
// per-lane semantics are identical to scalar decoding.
type Extractor struct {
	width int
}

// NewExtractor creates an extractor for batches of width lanes. Typical
// widths match a hardware SIMD register (4, 8, 16, 64).
func NewExtractor(width int) *Extractor {
	if width <= 0 {
		panic(fmt.Sprintf("insts: invalid batch width %d", width))
	}
	return &Extractor{width: width}
}

// Width returns the configured batch width.
func (x *Extractor) Width() int {
	return x.width
}

// Extract populates a fresh Batch from the given raw words starting at the
// given base PC. It fails only when base is not 4-aligned. Callers normally
// pass Width() words; shorter tail batches are allowed and produce fewer
// lanes.
func (x *Extractor) Extract(base uint32, words []uint32) (*Batch, error) {
	if base%4 != 0 {
		return nil, fmt.Errorf("%w: 0x%X", ErrMisalignedBase, base)
	}

	n := len(words)
	b := &Batch{
		Base:   base,
		Opcode: make([]uint32, n),
		Rd:     make([]uint32, n),
		Funct3: make([]uint32, n),
		Rs1:    make([]uint32, n),
		Rs2:    make([]uint32, n),
		Funct7: make([]uint32, n),
		ImmI:   make([]int32, n),
		ImmS:   make([]int32, n),
		ImmB:   make([]int32, n),
		ImmU:   make([]int32, n),
		ImmJ:   make([]int32, n),
		Words:  append([]uint32(nil), words...),
	}

	for i, w := range words {
		b.Opcode[i] = w & 0x7f
	}
	for i, w := range words {
		b.Rd[i] = (w >> 7) & 0x1f
	}
	for i, w := range words {
		b.Funct3[i] = (w >> 12) & 0x07
	}
	for i, w := range words {
		b.Rs1[i] = (w >> 15) & 0x1f
	}
	for i, w := range words {
		b.Rs2[i] = (w >> 20) & 0x1f
	}
	for i, w := range words {
		b.Funct7[i] = (w >> 25) & 0x7f
	}
	for i, w := range words {
		b.ImmI[i] = immI(w)
	}
	for i, w := range words {
		b.ImmS[i] = immS(w)
	}
	for i, w := range words {
		b.ImmB[i] = immB(w)
	}
	for i, w := range words {
		b.ImmU[i] = immU(w)
	}
	for i, w := range words {
		b.ImmJ[i] = immJ(w)
	}

	return b, nil
}

// immI extracts the I-type immediate: bits [31:20], sign-extended.
func immI(w uint32) int32 {
	return int32(w) >> 20
}

// immS extracts the S-type immediate: bits [31:25|11:7], sign-extended.
// The arithmetic shift from bit 31 supplies the sign and bits [11:5]; the
// rd slot supplies bits [4:0].
func immS(w uint32) int32 {
	ws := int32(w)
	return (ws>>20)&^0x1f | (ws>>7)&0x1f
}

// immB extracts the B-type immediate: bits [12|10:5|4:1|11] with bit 0
// implicitly zero, sign-extended.
func immB(w uint32) int32 {
	ws := int32(w)
	b12 := ws >> 19
	b11 := (ws >> 7) & 0x1
	b10to5 := (ws >> 25) & 0x3f
	b4to1 := (ws >> 8) & 0xf
	return b12&^0xfff | b11<<11 | b10to5<<5 | b4to1<<1
}

// immU extracts the U-type immediate: bits [31:12] in place, low 12 bits
// zero.
func immU(w uint32) int32 {
	return int32(w & 0xFFFF_F000)
}

// immJ extracts the J-type immediate: bits [20|10:1|11|19:12] with bit 0
// implicitly zero, sign-extended.
func immJ(w uint32) int32 {
	ws := int32(w)
	j20 := ws >> 11
	j19to12 := ws & 0xff000
	j11 := (ws >> 9) & 0x800
	j10to1 := (ws >> 20) & 0x7fe
	return j20&^0xf_ffff | j19to12 | j11 | j10to1
}
