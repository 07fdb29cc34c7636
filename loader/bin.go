// Package loader provides flat binary image loading for RV32 programs.
package loader

import (
	"encoding/binary"
	"fmt"
	"os"

	"github.com/sarchlab/rv32sim/dram"
)

// WordSize is the size of one RV32 instruction word in bytes.
const WordSize = 4

// Program represents a loaded flat binary image.
type Program struct {
	// Raw is the image as read from disk.
	Raw []byte
	// Words is the image split into little-endian 32-bit instruction words.
	Words []uint32
}

// Load reads a flat little-endian RV32 image from a file. The image length
// must be a whole number of 32-bit words.
func Load(path string) (*Program, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read program image: %w", err)
	}
	return FromBytes(raw)
}

// FromBytes builds a Program from an in-memory image.
func FromBytes(raw []byte) (*Program, error) {
	if len(raw)%WordSize != 0 {
		return nil, fmt.Errorf("truncated image: %d bytes is not a whole number of words", len(raw))
	}

	words := make([]uint32, len(raw)/WordSize)
	for i := range words {
		words[i] = binary.LittleEndian.Uint32(raw[i*WordSize:])
	}

	return &Program{Raw: raw, Words: words}, nil
}

// Place copies the program image into DRAM at the given address through the
// bounds-checked store path.
func Place(prog *Program, mem *dram.DRAM, addr uint64) error {
	if err := mem.LoadImage(addr, prog.Raw); err != nil {
		return fmt.Errorf("failed to place program at 0x%X: %w", addr, err)
	}
	return nil
}
