// Unless explicitly stated otherwise all files in this repository are licensed
// under the Apache License Version 2.0.
// This product includes software developed as part of the siltc project.

package aggregate

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	llvmtypes "github.com/llir/llvm/ir/types"
)

// TestLowerPeepholeAllOneByteOpaque covers the all-opaque, all-1-byte
// peephole: every range becomes a bare i1 entry.
func TestLowerPeepholeAllOneByteOpaque(t *testing.T) {
	ranges := []Range{
		{Kind: RangeOpaque, Begin: 0, End: 1},
		{Kind: RangeOpaque, Begin: 1, End: 2},
		{Kind: RangeOpaque, Begin: 2, End: 3},
	}
	entries := Lower(ranges)
	require.Len(t, entries, 3)
	for _, e := range entries {
		assert.Equal(t, RangeOpaque, e.Kind)
		assert.Equal(t, 1, e.Width)
		assert.Equal(t, llvmtypes.I1, e.Type)
	}
}

// TestLowerConcreteRangesPassThrough asserts concrete-typed entries keep
// their type unchanged (property 10's second half).
func TestLowerConcreteRangesPassThrough(t *testing.T) {
	ranges := []Range{
		{Kind: RangeConcrete, Type: llvmtypes.I32, Begin: 0, End: 4},
		{Kind: RangeConcrete, Type: llvmtypes.I64, Begin: 4, End: 12},
	}
	entries := Lower(ranges)
	require.Len(t, entries, 2)
	assert.Equal(t, llvmtypes.I32, entries[0].Type)
	assert.Equal(t, 4, entries[0].Width)
	assert.Equal(t, llvmtypes.I64, entries[1].Type)
	assert.Equal(t, 8, entries[1].Width)
	assert.Equal(t, TotalWidth(entries), 12)
}

// TestLowerStretchesAdjacentOpaqueSharingAlignedChunk covers step 2: two
// consecutive opaque ranges that share a pointer-sized aligned chunk
// stretch into one opaque range covering the overlap, then get
// decomposed into aligned power-of-two chunks.
func TestLowerStretchesAdjacentOpaqueSharingAlignedChunk(t *testing.T) {
	ranges := []Range{
		{Kind: RangeOpaque, Begin: 0, End: 3},
		{Kind: RangeOpaque, Begin: 3, End: 6},
	}
	entries := Lower(ranges)
	require.NotEmpty(t, entries)
	assert.Equal(t, 6, TotalWidth(entries))
	for _, e := range entries {
		assert.Equal(t, RangeOpaque, e.Kind)
	}
}

// TestLowerInvarianceProperty is the property-10 check: for a variety of
// mixed concrete/opaque inputs, the sum of legalized entry widths always
// equals the total input range width.
func TestLowerInvarianceProperty(t *testing.T) {
	cases := [][]Range{
		{
			{Kind: RangeConcrete, Type: llvmtypes.I8, Begin: 0, End: 1},
			{Kind: RangeOpaque, Begin: 1, End: 9},
		},
		{
			{Kind: RangeOpaque, Begin: 0, End: 1},
			{Kind: RangeOpaque, Begin: 1, End: 2},
		},
		{
			{Kind: RangeOpaque, Begin: 0, End: 5},
			{Kind: RangeConcrete, Type: llvmtypes.I32, Begin: 5, End: 9},
			{Kind: RangeOpaque, Begin: 9, End: 17},
		},
	}
	for _, ranges := range cases {
		want := 0
		for _, r := range ranges {
			want += r.width()
		}
		got := TotalWidth(Lower(ranges))
		assert.Equal(t, want, got)
	}
}

func TestLowerEmpty(t *testing.T) {
	assert.Nil(t, Lower(nil))
}
