// Unless explicitly stated otherwise all files in this repository are licensed
// under the Apache License Version 2.0.
// This product includes software developed as part of the siltc project.

// Package payload implements the single-payload bit-packing operations
// (spec §4.8): a Payload is a heterogeneous, fixed-width bit carrier
// that either holds a constructor's packed fields or a zero-padded
// discriminator. insertValue/extractValue bit-cast, shift, and mask a
// value into/out of a byte-addressed slot; packIntoEnumPayload and
// unpackFromPayload propagate that across a list of slots the way
// internal/strategy's single-payload strategy needs for its pack/unpack
// symbolic ops.
package payload

import (
	"math/bits"

	"github.com/silt-lang/siltc/internal/diag"
)

// Payload is a fixed-width bit carrier, modeled as a byte slice in
// little-endian order to match the [payload bytes][tag bytes] layout
// spec §4.6 assigns single-payload data types.
type Payload struct {
	Bits []byte
}

// New allocates a zeroed payload of the given byte width.
func New(width int) *Payload {
	return &Payload{Bits: make([]byte, width)}
}

// Width reports the payload's byte width.
func (p *Payload) Width() int { return len(p.Bits) }

// InsertValue bit-casts v's low width*8 bits into position at the given
// byte offset, OR-ing them into the payload (spec §4.8: "shifts it into
// position, and OR-s it into the appropriate slot"). It never clears
// bits outside [offset, offset+width) — callers that need a clean slot
// zero it first via Clear.
func (p *Payload) InsertValue(v uint64, offset, width int) error {
	if offset < 0 || width < 0 || offset+width > len(p.Bits) {
		return diag.IllTypedConstruction("payload: insertValue range [%d,%d) out of bounds for width %d", offset, offset+width, len(p.Bits))
	}
	for i := 0; i < width; i++ {
		b := byte(v >> (8 * uint(i)))
		p.Bits[offset+i] |= b
	}
	return nil
}

// ExtractValue loads, shifts, and truncates the width bytes at offset
// back into a uint64 (spec §4.8: "load, shift, truncate/extend,
// bit-cast" — the inverse of InsertValue).
func (p *Payload) ExtractValue(offset, width int) (uint64, error) {
	if offset < 0 || width < 0 || offset+width > len(p.Bits) {
		return 0, diag.IllTypedConstruction("payload: extractValue range [%d,%d) out of bounds for width %d", offset, offset+width, len(p.Bits))
	}
	var v uint64
	for i := width - 1; i >= 0; i-- {
		v = v<<8 | uint64(p.Bits[offset+i])
	}
	return v, nil
}

// Clear zeroes the byte range [offset, offset+width).
func (p *Payload) Clear(offset, width int) error {
	if offset < 0 || width < 0 || offset+width > len(p.Bits) {
		return diag.IllTypedConstruction("payload: clear range [%d,%d) out of bounds for width %d", offset, offset+width, len(p.Bits))
	}
	for i := offset; i < offset+width; i++ {
		p.Bits[i] = 0
	}
	return nil
}

// Slot is one value to pack into or unpack from an enum payload: a
// scalar value occupying width bytes starting at offset.
type Slot struct {
	Value  uint64
	Offset int
	Width  int
}

// PackIntoEnumPayload propagates a list of slot values across a payload
// (spec §4.8's packIntoEnumPayload): each slot's bits are cleared then
// inserted in turn, so repacking the same payload is idempotent.
func PackIntoEnumPayload(p *Payload, slots []Slot) error {
	for _, s := range slots {
		if err := p.Clear(s.Offset, s.Width); err != nil {
			return err
		}
		if err := p.InsertValue(s.Value, s.Offset, s.Width); err != nil {
			return err
		}
	}
	return nil
}

// UnpackFromPayload is the inverse of PackIntoEnumPayload: it reads each
// slot's offset/width back out of the payload, ignoring the Value field
// of the slots passed in.
func UnpackFromPayload(p *Payload, slots []Slot) ([]uint64, error) {
	out := make([]uint64, len(slots))
	for i, s := range slots {
		v, err := p.ExtractValue(s.Offset, s.Width)
		if err != nil {
			return nil, err
		}
		out[i] = v
	}
	return out, nil
}

// TagByteWidth mirrors internal/strategy's tag-width formula (⌈log2(n)⌉
// rounded up to a whole byte) so callers that only have a discriminator
// count, not a strategy, can size a tag slot.
func TagByteWidth(discriminatorCount int) int {
	if discriminatorCount <= 1 {
		return 1
	}
	bitWidth := bits.Len(uint(discriminatorCount - 1))
	return (bitWidth + 7) / 8
}
