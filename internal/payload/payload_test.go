// Unless explicitly stated otherwise all files in this repository are licensed
// under the Apache License Version 2.0.
// This product includes software developed as part of the siltc project.

package payload

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInsertExtractRoundTrip(t *testing.T) {
	p := New(5)
	require.NoError(t, p.InsertValue(0x1234, 0, 4))
	require.NoError(t, p.InsertValue(0xAB, 4, 1))

	v, err := p.ExtractValue(0, 4)
	require.NoError(t, err)
	assert.EqualValues(t, 0x1234, v)

	tag, err := p.ExtractValue(4, 1)
	require.NoError(t, err)
	assert.EqualValues(t, 0xAB, tag)
}

func TestInsertValueOutOfRange(t *testing.T) {
	p := New(2)
	err := p.InsertValue(1, 1, 5)
	assert.Error(t, err)
}

func TestExtractValueOutOfRange(t *testing.T) {
	p := New(2)
	_, err := p.ExtractValue(1, 5)
	assert.Error(t, err)
}

// TestPackUnpackIdempotence is spec §8 property 9: for a payload P and a
// value V of a packable type, unpack(pack(P, V)) == V.
func TestPackUnpackIdempotence(t *testing.T) {
	cases := []struct {
		width int
		slots []Slot
	}{
		{width: 5, slots: []Slot{{Value: 0x1234, Offset: 0, Width: 4}, {Value: 1, Offset: 4, Width: 1}}},
		{width: 12, slots: []Slot{{Value: 0xDEADBEEF, Offset: 0, Width: 4}, {Value: 0xFF, Offset: 4, Width: 8}}},
		{width: 1, slots: []Slot{{Value: 0, Offset: 0, Width: 1}}},
	}
	for _, c := range cases {
		p := New(c.width)
		require.NoError(t, PackIntoEnumPayload(p, c.slots))

		got, err := UnpackFromPayload(p, c.slots)
		require.NoError(t, err)
		for i, s := range c.slots {
			assert.Equal(t, s.Value, got[i])
		}

		// Repacking the same payload with the same slot values is
		// idempotent: the bytes don't change on a second pass.
		before := append([]byte(nil), p.Bits...)
		require.NoError(t, PackIntoEnumPayload(p, c.slots))
		assert.Equal(t, before, p.Bits)
	}
}

func TestPackClearsPriorSlotContents(t *testing.T) {
	p := New(4)
	require.NoError(t, PackIntoEnumPayload(p, []Slot{{Value: 0xFFFFFFFF, Offset: 0, Width: 4}}))
	require.NoError(t, PackIntoEnumPayload(p, []Slot{{Value: 0x1, Offset: 0, Width: 4}}))

	got, err := UnpackFromPayload(p, []Slot{{Offset: 0, Width: 4}})
	require.NoError(t, err)
	assert.EqualValues(t, 1, got[0])
}

func TestTagByteWidth(t *testing.T) {
	assert.Equal(t, 1, TagByteWidth(1))
	assert.Equal(t, 1, TagByteWidth(2))
	assert.Equal(t, 1, TagByteWidth(3))
	assert.Equal(t, 1, TagByteWidth(256))
	assert.Equal(t, 2, TagByteWidth(257))
}
