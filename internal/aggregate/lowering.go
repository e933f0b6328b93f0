// Unless explicitly stated otherwise all files in this repository are licensed
// under the Apache License Version 2.0.
// This product includes software developed as part of the siltc project.

// Package aggregate implements aggregate byte-range lowering (spec
// §4.7): legalizing a sequence of proposed byte ranges — each either
// concrete (a known LLVM type) or opaque (unknown/uninterpreted bytes)
// — into a storage layout an LLVM struct type can hold.
package aggregate

import (
	"math/bits"

	llvmtypes "github.com/llir/llvm/ir/types"
)

// RangeKind distinguishes a proposed byte range with a known concrete
// LLVM type from one that is opaque storage.
type RangeKind int

const (
	RangeOpaque RangeKind = iota
	RangeConcrete
)

// Range is one proposed byte range, spec §4.7's `concrete(type, begin,
// end)` or `opaque(begin, end)`.
type Range struct {
	Kind       RangeKind
	Type       llvmtypes.Type // nil for RangeOpaque
	Begin, End int
}

func (r Range) width() int { return r.End - r.Begin }

// Entry is one element of a legalized storage layout.
type Entry struct {
	Kind  RangeKind
	Type  llvmtypes.Type
	Width int
}

// pointerWidth is the alignment chunk stretching looks for (spec §4.7
// step 2: "aligned chunk (pointer-sized)").
const pointerWidth = 8

// Lower legalizes ranges into a storage layout following spec §4.7's
// three-step algorithm: an all-opaque, all-1-byte-wide peephole; a
// stretch pass coalescing adjacent ranges sharing a pointer-sized
// aligned chunk into one opaque range; then a decomposition pass that
// copies concrete ranges verbatim and decomposes coalesced opaque ranges
// into aligned power-of-two integer chunks.
func Lower(ranges []Range) []Entry {
	if len(ranges) == 0 {
		return nil
	}
	if isAllOneByteOpaque(ranges) {
		out := make([]Entry, len(ranges))
		for i := range ranges {
			out[i] = Entry{Kind: RangeOpaque, Type: llvmtypes.I1, Width: 1}
		}
		return out
	}

	stretched := stretchPass(ranges)
	return decomposePass(stretched)
}

func isAllOneByteOpaque(ranges []Range) bool {
	for _, r := range ranges {
		if r.Kind != RangeOpaque || r.width() != 1 {
			return false
		}
	}
	return true
}

// stretchPass coalesces any two consecutive ranges that share an
// aligned pointer-sized chunk into a single opaque range covering their
// whole overlap (spec §4.7 step 2).
func stretchPass(ranges []Range) []Range {
	out := make([]Range, 0, len(ranges))
	i := 0
	for i < len(ranges) {
		if i+1 < len(ranges) && shareAlignedChunk(ranges[i], ranges[i+1]) {
			out = append(out, Range{
				Kind:  RangeOpaque,
				Begin: ranges[i].Begin,
				End:   ranges[i+1].End,
			})
			i += 2
			continue
		}
		out = append(out, ranges[i])
		i++
	}
	return out
}

func shareAlignedChunk(a, b Range) bool {
	chunkOf := func(offset int) int { return offset / pointerWidth }
	return chunkOf(a.Begin) == chunkOf(b.End-1) || chunkOf(a.End-1) == chunkOf(b.Begin)
}

// decomposePass copies concrete ranges through unchanged and decomposes
// each opaque range into aligned power-of-two integer chunks (spec §4.7
// step 3).
func decomposePass(ranges []Range) []Entry {
	var out []Entry
	for _, r := range ranges {
		if r.Kind == RangeConcrete {
			out = append(out, Entry{Kind: RangeConcrete, Type: r.Type, Width: r.width()})
			continue
		}
		out = append(out, decomposeOpaque(r.width())...)
	}
	return out
}

// decomposeOpaque splits a byte count into the largest aligned
// power-of-two integer chunks that exactly cover it (e.g. 12 bytes ->
// [i64, i32]).
func decomposeOpaque(width int) []Entry {
	var out []Entry
	for width > 0 {
		chunk := largestPowerOfTwoAtMost(width, pointerWidth)
		out = append(out, Entry{Kind: RangeOpaque, Type: intTypeForBytes(chunk), Width: chunk})
		width -= chunk
	}
	return out
}

func largestPowerOfTwoAtMost(width, cap int) int {
	if width >= cap {
		return cap
	}
	return 1 << (bits.Len(uint(width)) - 1)
}

func intTypeForBytes(n int) llvmtypes.Type {
	switch n {
	case 1:
		return llvmtypes.I8
	case 2:
		return llvmtypes.I16
	case 4:
		return llvmtypes.I32
	case 8:
		return llvmtypes.I64
	default:
		return llvmtypes.NewArray(uint64(n), llvmtypes.I8)
	}
}

// TotalWidth sums the legalized entries' widths, used by the
// aggregate-lowering-invariance property (spec §8 property 10): the sum
// of entry widths equals the total range width.
func TotalWidth(entries []Entry) int {
	total := 0
	for _, e := range entries {
		total += e.Width
	}
	return total
}
