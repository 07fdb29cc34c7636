package insts_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sarchlab/rv32sim/insts"
)

var _ = Describe("Extractor", func() {
	var ex *insts.Extractor

	BeforeEach(func() {
		ex = insts.NewExtractor(4)
	})

	Describe("Extract", func() {
		// ADD x1, x2, x3 -> 0x003100B3
		It("should extract every architectural field", func() {
			b, err := ex.Extract(0x8000_0000, []uint32{0x003100B3})
			Expect(err).ToNot(HaveOccurred())

			Expect(b.Opcode[0]).To(Equal(uint32(0b0110011)))
			Expect(b.Rd[0]).To(Equal(uint32(1)))
			Expect(b.Funct3[0]).To(Equal(uint32(0)))
			Expect(b.Rs1[0]).To(Equal(uint32(2)))
			Expect(b.Rs2[0]).To(Equal(uint32(3)))
			Expect(b.Funct7[0]).To(Equal(uint32(0)))
		})

		It("should record the base PC and raw words", func() {
			words := []uint32{0x003100B3, 0xFFF10093}
			b, err := ex.Extract(0x8000_0100, words)
			Expect(err).ToNot(HaveOccurred())

			Expect(b.Base).To(Equal(uint32(0x8000_0100)))
			Expect(b.Words).To(Equal(words))
			Expect(b.Lanes()).To(Equal(2))
		})

		It("should populate all fields and immediates for every word", func() {
			words := []uint32{0x0000_0000, 0xFFFF_FFFF, 0xDEAD_BEEF, 0x1234_5678}
			b, err := ex.Extract(0x8000_0000, words)
			Expect(err).ToNot(HaveOccurred())

			Expect(b.Opcode).To(HaveLen(4))
			Expect(b.Rd).To(HaveLen(4))
			Expect(b.Funct3).To(HaveLen(4))
			Expect(b.Rs1).To(HaveLen(4))
			Expect(b.Rs2).To(HaveLen(4))
			Expect(b.Funct7).To(HaveLen(4))
			Expect(b.ImmI).To(HaveLen(4))
			Expect(b.ImmS).To(HaveLen(4))
			Expect(b.ImmB).To(HaveLen(4))
			Expect(b.ImmU).To(HaveLen(4))
			Expect(b.ImmJ).To(HaveLen(4))

			Expect(b.Opcode[1]).To(Equal(uint32(0x7F)))
			Expect(b.ImmI[1]).To(Equal(int32(-1)))
		})

		It("should allow shorter tail batches", func() {
			b, err := ex.Extract(0x8000_0000, []uint32{0x003100B3, 0xFFF10093, 0x00000013})
			Expect(err).ToNot(HaveOccurred())
			Expect(b.Lanes()).To(Equal(3))
		})

		It("should reject a misaligned base", func() {
			b, err := ex.Extract(0x8000_0002, []uint32{0x003100B3})
			Expect(err).To(MatchError(insts.ErrMisalignedBase))
			Expect(b).To(BeNil())
		})
	})

	Describe("I-type immediate", func() {
		It("should sign-extend from bit 31", func() {
			// ADDI x1, x2, -1 -> 0xFFF10093
			b, err := ex.Extract(0x8000_0000, []uint32{0xFFF10093})
			Expect(err).ToNot(HaveOccurred())
			Expect(b.ImmI[0]).To(Equal(int32(-1)))
		})

		It("should cover the full 12-bit signed range", func() {
			// ADDI x1, x2, -2048 and ADDI x1, x2, 2047
			b, err := ex.Extract(0x8000_0000, []uint32{0x80010093, 0x7FF10093})
			Expect(err).ToNot(HaveOccurred())
			Expect(b.ImmI[0]).To(Equal(int32(-2048)))
			Expect(b.ImmI[1]).To(Equal(int32(2047)))
		})
	})

	Describe("S-type immediate", func() {
		It("should splice bits [11:5] and [4:0] with sign extension", func() {
			// SW x3, 8(x2) -> 0x00312423; SW x3, -1(x2) -> 0xFE312FA3
			b, err := ex.Extract(0x8000_0000, []uint32{0x00312423, 0xFE312FA3})
			Expect(err).ToNot(HaveOccurred())
			Expect(b.ImmS[0]).To(Equal(int32(8)))
			Expect(b.ImmS[1]).To(Equal(int32(-1)))
		})
	})

	Describe("B-type immediate", func() {
		It("should reassemble [12|10:5|4:1|11] with bit 0 zero", func() {
			// BEQ x1, x2, 16 -> 0x00208863; BEQ x1, x2, -8 -> 0xFE208CE3
			b, err := ex.Extract(0x8000_0000, []uint32{0x00208863, 0xFE208CE3})
			Expect(err).ToNot(HaveOccurred())
			Expect(b.ImmB[0]).To(Equal(int32(16)))
			Expect(b.ImmB[1]).To(Equal(int32(-8)))
		})
	})

	Describe("U-type immediate", func() {
		It("should keep bits [31:12] in place with a zero low part", func() {
			// LUI x1, 0x12345 -> 0x123450B7
			b, err := ex.Extract(0x8000_0000, []uint32{0x123450B7, 0xFFFFF0B7})
			Expect(err).ToNot(HaveOccurred())

			Expect(b.ImmU[0]).To(Equal(int32(0x12345000)))
			Expect(b.ImmU[0] & 0xfff).To(Equal(int32(0)))
			Expect(uint32(b.ImmU[0]) >> 12).To(Equal(uint32(0x123450B7) >> 12))

			Expect(b.ImmU[1]).To(Equal(int32(-4096)))
			Expect(uint32(b.ImmU[1]) >> 12).To(Equal(uint32(0xFFFFF0B7) >> 12))
		})
	})

	Describe("J-type immediate", func() {
		It("should reassemble [20|10:1|11|19:12] with bit 0 zero", func() {
			// JAL x1, 2048 -> 0x001000EF; JAL x1, -4 -> 0xFFDFF0EF
			b, err := ex.Extract(0x8000_0000, []uint32{0x001000EF, 0xFFDFF0EF})
			Expect(err).ToNot(HaveOccurred())
			Expect(b.ImmJ[0]).To(Equal(int32(2048)))
			Expect(b.ImmJ[1]).To(Equal(int32(-4)))
		})

		It("should place bits [19:12] without shifting", func() {
			// JAL x1, 0x1000 -> 0x000010EF
			b, err := ex.Extract(0x8000_0000, []uint32{0x000010EF})
			Expect(err).ToNot(HaveOccurred())
			Expect(b.ImmJ[0]).To(Equal(int32(0x1000)))
		})
	})
})
