// Unless explicitly stated otherwise all files in this repository are licensed
// under the Apache License Version 2.0.
// This product includes software developed as part of the siltc project.

package schedule

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/silt-lang/siltc/internal/ir"
	"github.com/silt-lang/siltc/internal/scope"
)

// TestIdentityFunctionSchedule is scenario A's schedule assertion: for
// `%c = copy_value x; destroy_value x; apply ret(%c)`, the schedule
// lists [copy_value, destroy_value, apply].
func TestIdentityFunctionSchedule(t *testing.T) {
	m := ir.NewModule("M")
	b := ir.NewBuilder(m)

	archT := m.GetOrInsertArchetypeType("T")
	retType := m.GetOrInsertFunctionType([]ir.Value{archT})

	id := b.CreateContinuation("id", []ir.ParamSpec{
		{Name: "T", Type: m.TypeTypeValue(), Ownership: ir.OwnershipBorrowed},
		{Name: "x", Type: archT, Ownership: ir.OwnershipOwned},
		{Name: "ret", Type: retType, Ownership: ir.OwnershipOwned},
	})
	x := id.Params[1]
	ret := id.Params[2]

	c := b.CreateCopyValue(id, x)
	destroy, err := b.CreateCleanup(id, ir.OpDestroyValue, x)
	require.NoError(t, err)
	apply, err := b.CreateApply(id, ret, []ir.Value{c})
	require.NoError(t, err)

	s := scope.Build(id, nil)
	rpo := scope.ComputeRPO(s)
	sched := Build(s, rpo)

	require.Len(t, sched.Blocks, 1)
	ops := sched.Blocks[0].PrimOps
	require.Len(t, ops, 3)
	assert.Same(t, c, ops[0])
	assert.Same(t, destroy, ops[1])
	assert.Same(t, apply, ops[2])
}

// TestScheduleTotality covers spec property 6: every primop with at
// least one transitive use by the terminal appears exactly once.
func TestScheduleTotality(t *testing.T) {
	m := ir.NewModule("M")
	b := ir.NewBuilder(m)
	i32 := m.GetOrInsertDataType("I32", nil)
	cont := b.CreateContinuation("f", []ir.ParamSpec{{Name: "x", Type: i32}})
	x := cont.Params[0]

	a := b.CreateCopyValue(cont, x)
	bb := b.CreateCopyValue(cont, a)
	cc := b.CreateCopyValue(cont, bb)
	b.CreateUnreachable(cont)

	// Wire cc as an operand of the terminal so the whole chain is
	// transitively used.
	cont.Terminal.AddOperand(cc)

	s := scope.Build(cont, nil)
	rpo := scope.ComputeRPO(s)
	sched := Build(s, rpo)

	ops := sched.Blocks[0].PrimOps
	seen := make(map[*ir.PrimOp]int)
	for _, p := range ops {
		seen[p]++
	}
	assert.Equal(t, 1, seen[a])
	assert.Equal(t, 1, seen[bb])
	assert.Equal(t, 1, seen[cc])
	for _, count := range seen {
		assert.Equal(t, 1, count)
	}
}

// TestCleanupPlacement covers spec property 7: cleanup primops appear
// contiguously immediately before the terminal.
func TestCleanupPlacement(t *testing.T) {
	m := ir.NewModule("M")
	b := ir.NewBuilder(m)
	i32 := m.GetOrInsertDataType("I32", nil)
	cont := b.CreateContinuation("f", []ir.ParamSpec{{Name: "x", Type: i32}, {Name: "y", Type: i32}})
	x, y := cont.Params[0], cont.Params[1]

	c := b.CreateCopyValue(cont, x)
	_, err := b.CreateCleanup(cont, ir.OpDestroyValue, x)
	require.NoError(t, err)
	_, err = b.CreateCleanup(cont, ir.OpDestroyValue, y)
	require.NoError(t, err)
	b.CreateUnreachable(cont)
	cont.Terminal.AddOperand(c)

	s := scope.Build(cont, nil)
	rpo := scope.ComputeRPO(s)
	sched := Build(s, rpo)

	ops := sched.Blocks[0].PrimOps
	require.Len(t, ops, 4)
	assert.Equal(t, ir.OpCopyValue, ops[0].Opcode)
	assert.Equal(t, ir.OpDestroyValue, ops[1].Opcode)
	assert.Equal(t, ir.OpDestroyValue, ops[2].Opcode)
	assert.True(t, ops[3].Opcode.IsTerminal())
}
