// Unless explicitly stated otherwise all files in this repository are licensed
// under the Apache License Version 2.0.
// This product includes software developed as part of the siltc project.

package scope

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/silt-lang/siltc/internal/ir"
)

// chain builds entry -> mid -> leaf, each via a direct function_ref
// apply with no arguments, leaf terminating in unreachable.
func chain(t *testing.T) (*ir.Module, *ir.Continuation, *ir.Continuation, *ir.Continuation) {
	t.Helper()
	m := ir.NewModule("M")
	b := ir.NewBuilder(m)

	leaf := b.CreateContinuation("leaf", nil)
	b.CreateUnreachable(leaf)

	mid := b.CreateContinuation("mid", nil)
	leafRef := b.CreateFunctionRef(mid, leaf)
	_, err := b.CreateApply(mid, leafRef, nil)
	require.NoError(t, err)

	entry := b.CreateContinuation("entry", nil)
	midRef := b.CreateFunctionRef(entry, mid)
	_, err = b.CreateApply(entry, midRef, nil)
	require.NoError(t, err)

	return m, entry, mid, leaf
}

// TestScopeClosure covers spec property 3: every successor of a scope
// member's terminal is itself in the scope (or blacklisted).
func TestScopeClosure(t *testing.T) {
	_, entry, mid, leaf := chain(t)
	s := Build(entry, nil)

	assert.True(t, s.Contains(entry))
	assert.True(t, s.Contains(mid))
	assert.True(t, s.Contains(leaf))
	assert.Len(t, s.Continuations, 3)
}

func TestScopeRespectsBlacklist(t *testing.T) {
	_, entry, mid, leaf := chain(t)
	s := Build(entry, []*ir.Continuation{mid})

	assert.True(t, s.Contains(entry))
	assert.False(t, s.Contains(mid))
	assert.False(t, s.Contains(leaf))
	assert.True(t, s.Blacklisted(mid))
}

// TestRPODeterminism covers spec property 4: RPO over identical modules
// produces identical sequences.
func TestRPODeterminism(t *testing.T) {
	_, entry1, _, _ := chain(t)
	_, entry2, _, _ := chain(t)

	r1 := ComputeRPO(Build(entry1, nil))
	r2 := ComputeRPO(Build(entry2, nil))

	require.Len(t, r1.Order, len(r2.Order))
	for i := range r1.Order {
		assert.Equal(t, r1.Order[i].Name(), r2.Order[i].Name())
	}
}

func TestRPOEntryFirst(t *testing.T) {
	_, entry, _, _ := chain(t)
	r := ComputeRPO(Build(entry, nil))
	require.NotEmpty(t, r.Order)
	assert.Same(t, entry, r.Order[0])
	assert.Equal(t, 0, r.Index(entry))
}

// TestDominatorCorrectness covers spec property 5: idom(n) dominates
// every predecessor of n, for a straight-line chain where each
// continuation's sole predecessor is the previous one.
func TestDominatorCorrectness(t *testing.T) {
	_, entry, mid, leaf := chain(t)
	s := Build(entry, nil)
	r := ComputeRPO(s)
	d := BuildDomTree(s, r)

	assert.Nil(t, d.IDom(entry))
	assert.Same(t, entry, d.IDom(mid))
	assert.Same(t, mid, d.IDom(leaf))

	assert.True(t, d.Dominates(entry, mid))
	assert.True(t, d.Dominates(entry, leaf))
	assert.True(t, d.Dominates(mid, leaf))
	assert.False(t, d.Dominates(leaf, mid))
}

// TestDominatorDiamond checks a diamond CFG (entry branches via
// switch_constr to two arms that both rejoin at join) produces entry as
// join's immediate dominator, not either arm.
func TestDominatorDiamond(t *testing.T) {
	m := ir.NewModule("M")
	b := ir.NewBuilder(m)

	nat := m.GetOrInsertDataType("Nat", nil)
	nat.Constructors = []ir.Constructor{{Name: "zero"}, {Name: "succ", Payload: nat}}

	join := b.CreateContinuation("join", nil)
	b.CreateUnreachable(join)

	left := b.CreateContinuation("left", nil)
	joinRefL := b.CreateFunctionRef(left, join)
	_, err := b.CreateApply(left, joinRefL, nil)
	require.NoError(t, err)

	right := b.CreateContinuation("right", nil)
	joinRefR := b.CreateFunctionRef(right, join)
	_, err = b.CreateApply(right, joinRefR, nil)
	require.NoError(t, err)

	entry := b.CreateContinuation("entry", []ir.ParamSpec{{Name: "n", Type: nat}})
	_, err = b.CreateSwitchConstr(entry, entry.Params[0], []ir.CaseSpec{
		{ConstructorName: "zero", Dest: left},
		{ConstructorName: "succ", Dest: right},
	}, nil)
	require.NoError(t, err)

	s := Build(entry, nil)
	r := ComputeRPO(s)
	d := BuildDomTree(s, r)

	assert.Same(t, entry, d.IDom(left))
	assert.Same(t, entry, d.IDom(right))
	assert.Same(t, entry, d.IDom(join))
	assert.True(t, d.Dominates(entry, join))
	assert.False(t, d.Dominates(left, join))
	assert.False(t, d.Dominates(right, join))
}
