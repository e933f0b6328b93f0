// Unless explicitly stated otherwise all files in this repository are licensed
// under the Apache License Version 2.0.
// This product includes software developed as part of the siltc project.

package ir

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/silt-lang/siltc/internal/diag"
)

// TestIdentityFunctionConstructsAndVerifies builds scenario A's identity
// function — @id : (T : Type) -> T -> (T -> bottom), one continuation
// with parameters (T: Type, x: T, ret: T -> bottom) and primops
// `%c = copy_value x`, `destroy_value x`, `apply ret(%c)` — and checks
// it verifies cleanly. The companion schedule-order assertion (that the
// resulting schedule lists [copy_value, destroy_value, apply]) lives in
// internal/schedule, which owns the scheduling algorithm.
func TestIdentityFunctionConstructsAndVerifies(t *testing.T) {
	m := NewModule("M")
	b := NewBuilder(m)

	archT := m.GetOrInsertArchetypeType("T")
	retType := m.GetOrInsertFunctionType([]Value{archT})

	id := b.CreateContinuation("id", []ParamSpec{
		{Name: "T", Type: m.TypeTypeValue(), Ownership: OwnershipBorrowed},
		{Name: "x", Type: archT, Ownership: OwnershipOwned},
		{Name: "ret", Type: retType, Ownership: OwnershipOwned},
	})
	x := id.Params[1]
	ret := id.Params[2]

	c := b.CreateCopyValue(id, x)
	_, err := b.CreateCleanup(id, OpDestroyValue, x)
	require.NoError(t, err)
	apply, err := b.CreateApply(id, ret, []Value{c})
	require.NoError(t, err)

	assert.Same(t, apply, id.Terminal)
	require.Len(t, id.Cleanups, 1)
	assert.Equal(t, OpDestroyValue, id.Cleanups[0].Opcode)
	assert.NoError(t, Verify(m))
}

// TestUseChainAfterOperandDrop covers scenario F: build
// `%a = copy_value %x; destroy_value %x`, drop destroy_value's operand,
// and assert %x.users() now yields only copy_value's operand.
func TestUseChainAfterOperandDrop(t *testing.T) {
	m := NewModule("M")
	b := NewBuilder(m)
	i32 := m.GetOrInsertDataType("I32", nil)
	cont := b.CreateContinuation("f", []ParamSpec{{Name: "x", Type: i32}})
	x := cont.Params[0]

	a := b.CreateCopyValue(cont, x)
	destroy, err := b.CreateCleanup(cont, OpDestroyValue, x)
	require.NoError(t, err)

	require.Len(t, x.Users(), 2)

	Drop(destroy.Operands[0])
	destroy.Operands = nil

	users := x.Users()
	require.Len(t, users, 1)
	assert.Same(t, a, users[0].Owner())
}

func TestCreateApplyArityMismatch(t *testing.T) {
	m := NewModule("M")
	b := NewBuilder(m)
	i32 := m.GetOrInsertDataType("I32", nil)
	retCont := b.CreateContinuation("ret", []ParamSpec{{Name: "v", Type: i32}})
	cont := b.CreateContinuation("f", nil)

	retRef := b.CreateFunctionRef(cont, retCont)
	_, err := b.CreateApply(cont, retRef, nil)
	require.Error(t, err)
	assert.True(t, diag.Is(err, diag.KindIllTypedConstruction))
}

func TestCreateApplyWiresDirectCallSuccessor(t *testing.T) {
	m := NewModule("M")
	b := NewBuilder(m)
	i32 := m.GetOrInsertDataType("I32", nil)
	retCont := b.CreateContinuation("ret", []ParamSpec{{Name: "v", Type: i32}})
	cont := b.CreateContinuation("f", nil)

	retRef := b.CreateFunctionRef(cont, retCont)
	apply, err := b.CreateApply(cont, retRef, []Value{retCont.Params[0]})
	require.NoError(t, err)

	require.Len(t, apply.Successors, 1)
	assert.Same(t, retCont, apply.Successors[0].Dest)
	preds := retCont.Predecessors()
	require.Len(t, preds, 1)
	assert.Same(t, apply, preds[0].Terminal)
}

func TestCreateSwitchConstrUnknownConstructor(t *testing.T) {
	m := NewModule("M")
	b := NewBuilder(m)
	nat := m.GetOrInsertDataType("Nat", nil)
	nat.Constructors = []Constructor{{Name: "zero"}, {Name: "succ", Payload: nat}}
	cont := b.CreateContinuation("scrut", []ParamSpec{{Name: "n", Type: nat}})
	dest := b.CreateContinuation("dflt", nil)

	_, err := b.CreateSwitchConstr(cont, cont.Params[0], []CaseSpec{{ConstructorName: "nope", Dest: dest}}, dest)
	require.Error(t, err)
	assert.True(t, diag.Is(err, diag.KindIllTypedConstruction))
}

func TestCreateDataInitPayloadMismatch(t *testing.T) {
	m := NewModule("M")
	b := NewBuilder(m)
	i32 := m.GetOrInsertDataType("I32", nil)
	maybe := m.GetOrInsertDataType("Maybe", []Constructor{{Name: "nothing"}, {Name: "just", Payload: i32}})
	cont := b.CreateContinuation("f", nil)

	_, err := b.CreateDataInit(cont, maybe, "just", nil)
	require.Error(t, err)
	assert.True(t, diag.Is(err, diag.KindIllTypedConstruction))
}
