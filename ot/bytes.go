package ot

import "errors"

// Font data is treated as a sequence of immutable byte segments. Segments are
// views into the font's binary data, created without copying. All bounds
// checking happens here; decoders above this layer never index raw bytes.

// error to be flagged if byte access is out of bounds
var errBufferBounds = errors.New("internal inconsistency: buffer bounds overflow")

// u16 returns the big-endian uint16 at the start of b.
// b must be at least 2 bytes long, this is not checked.
func u16(b []byte) uint16 {
	_ = b[1] // bounds check hint to compiler
	return uint16(b[0])<<8 | uint16(b[1])
}

// u24 returns the big-endian 3-byte uint at the start of b.
// b must be at least 3 bytes long, this is not checked.
func u24(b []byte) uint32 {
	_ = b[2] // bounds check hint to compiler
	return uint32(b[0])<<16 | uint32(b[1])<<8 | uint32(b[2])
}

// u32 returns the big-endian uint32 at the start of b.
// b must be at least 4 bytes long, this is not checked.
func u32(b []byte) uint32 {
	_ = b[3] // bounds check hint to compiler
	return uint32(b[0])<<24 | uint32(b[1])<<16 | uint32(b[2])<<8 | uint32(b[3])
}

// binarySegm is a segment of byte data within the font's binary.
type binarySegm []byte

// view returns byteSize bytes starting at index, as a segment without copying.
// The formulation `index > len(b)-byteSize` cannot overflow, as opposed to
// checking `index+byteSize`.
func (b binarySegm) view(index, byteSize int) (binarySegm, error) {
	if index < 0 || byteSize < 0 || index > len(b)-byteSize {
		return binarySegm{}, errBufferBounds
	}
	return b[index : index+byteSize], nil
}

// u16 returns the big-endian uint16 at index i, bounds-checked.
func (b binarySegm) u16(i int) (uint16, error) {
	if i < 0 || i > len(b)-2 {
		return 0, errBufferBounds
	}
	return u16(b[i:]), nil
}

// u24 returns the big-endian 3-byte uint at index i, bounds-checked.
func (b binarySegm) u24(i int) (uint32, error) {
	if i < 0 || i > len(b)-3 {
		return 0, errBufferBounds
	}
	return u24(b[i:]), nil
}

// u32 returns the big-endian uint32 at index i, bounds-checked.
func (b binarySegm) u32(i int) (uint32, error) {
	if i < 0 || i > len(b)-4 {
		return 0, errBufferBounds
	}
	return u32(b[i:]), nil
}
