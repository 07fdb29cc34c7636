// Package dram provides the emulated main memory for the RV32 core.
//
// A DRAM is a contiguous byte buffer mapped at an absolute base address
// (0x8000_0000 by convention). All typed accesses are bounds checked and
// little endian, as required by the ISA. The instruction fetch path and the
// decoder's location arithmetic both use these absolute addresses, so the
// two agree bit-exactly.
package dram

import (
	"encoding/binary"
	"errors"
	"fmt"
)

// DefaultBase is the conventional RV32 DRAM base address.
const DefaultBase uint64 = 0x8000_0000

// ErrOutOfBounds is returned when an access falls outside the mapped region.
// The access is rejected before any byte is read or written.
var ErrOutOfBounds = errors.New("dram: access out of bounds")

// DRAM is a byte-addressable memory region with absolute addressing.
type DRAM struct {
	base uint64
	data []byte
}

// Option configures a DRAM at construction time.
type Option func(*DRAM)

// WithBase sets the absolute base address of the region.
func WithBase(base uint64) Option {
	return func(d *DRAM) {
		d.base = base
	}
}

// New creates a DRAM of the given size in bytes, mapped at DefaultBase
// unless overridden with WithBase.
func New(size uint64, opts ...Option) *DRAM {
	d := &DRAM{
		base: DefaultBase,
		data: make([]byte, size),
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Base returns the absolute start address of the region.
func (d *DRAM) Base() uint64 {
	return d.base
}

// Size returns the region size in bytes.
func (d *DRAM) Size() uint64 {
	return uint64(len(d.data))
}

// check validates an access of width bytes at addr and returns the offset
// into the backing buffer. The lower-bound comparison runs before the
// subtraction so the offset never underflows.
func (d *DRAM) check(addr, width uint64) (uint64, error) {
	if addr < d.base {
		return 0, fmt.Errorf("%w: addr 0x%X below base 0x%X", ErrOutOfBounds, addr, d.base)
	}
	off := addr - d.base
	if off+width > uint64(len(d.data)) {
		return 0, fmt.Errorf("%w: addr 0x%X width %d exceeds size %d", ErrOutOfBounds, addr, width, len(d.data))
	}
	return off, nil
}

// Load8 reads one byte at addr.
func (d *DRAM) Load8(addr uint64) (uint8, error) {
	off, err := d.check(addr, 1)
	if err != nil {
		return 0, err
	}
	return d.data[off], nil
}

// Load16 reads a little-endian 16-bit value at addr.
func (d *DRAM) Load16(addr uint64) (uint16, error) {
	off, err := d.check(addr, 2)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint16(d.data[off:]), nil
}

// Load32 reads a little-endian 32-bit value at addr.
func (d *DRAM) Load32(addr uint64) (uint32, error) {
	off, err := d.check(addr, 4)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint32(d.data[off:]), nil
}

// Load64 reads a little-endian 64-bit value at addr.
func (d *DRAM) Load64(addr uint64) (uint64, error) {
	off, err := d.check(addr, 8)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint64(d.data[off:]), nil
}

// Load128 reads a little-endian 128-bit value at addr as two 64-bit halves.
// lo holds bytes 0..7, hi holds bytes 8..15.
func (d *DRAM) Load128(addr uint64) (lo, hi uint64, err error) {
	off, err := d.check(addr, 16)
	if err != nil {
		return 0, 0, err
	}
	lo = binary.LittleEndian.Uint64(d.data[off:])
	hi = binary.LittleEndian.Uint64(d.data[off+8:])
	return lo, hi, nil
}

// Store8 writes one byte at addr.
func (d *DRAM) Store8(addr uint64, v uint8) error {
	off, err := d.check(addr, 1)
	if err != nil {
		return err
	}
	d.data[off] = v
	return nil
}

// Store16 writes a little-endian 16-bit value at addr.
func (d *DRAM) Store16(addr uint64, v uint16) error {
	off, err := d.check(addr, 2)
	if err != nil {
		return err
	}
	binary.LittleEndian.PutUint16(d.data[off:], v)
	return nil
}

// Store32 writes a little-endian 32-bit value at addr.
func (d *DRAM) Store32(addr uint64, v uint32) error {
	off, err := d.check(addr, 4)
	if err != nil {
		return err
	}
	binary.LittleEndian.PutUint32(d.data[off:], v)
	return nil
}

// Store64 writes a little-endian 64-bit value at addr.
func (d *DRAM) Store64(addr uint64, v uint64) error {
	off, err := d.check(addr, 8)
	if err != nil {
		return err
	}
	binary.LittleEndian.PutUint64(d.data[off:], v)
	return nil
}

// Store128 writes a little-endian 128-bit value at addr from two 64-bit
// halves. lo supplies bytes 0..7, hi supplies bytes 8..15.
func (d *DRAM) Store128(addr uint64, lo, hi uint64) error {
	off, err := d.check(addr, 16)
	if err != nil {
		return err
	}
	binary.LittleEndian.PutUint64(d.data[off:], lo)
	binary.LittleEndian.PutUint64(d.data[off+8:], hi)
	return nil
}

// LoadImage copies a program image into the region starting at addr.
// The whole image is bounds checked up front; nothing is written on failure.
func (d *DRAM) LoadImage(addr uint64, image []byte) error {
	off, err := d.check(addr, uint64(len(image)))
	if err != nil {
		return err
	}
	copy(d.data[off:], image)
	return nil
}
