// Unless explicitly stated otherwise all files in this repository are licensed
// under the Apache License Version 2.0.
// This product includes software developed as part of the siltc project.

package codegen

import (
	"testing"

	llvmir "github.com/llir/llvm/ir"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/silt-lang/siltc/internal/ir"
)

func findFunc(m *llvmir.Module, name string) *llvmir.Func {
	for _, f := range m.Funcs {
		if f.Name() == name {
			return f
		}
	}
	return nil
}

// TestEmitIdentityFunction is scenario A: one continuation with
// parameters (x: I32, ret: I32 -> _), body `%c = copy_value x;
// destroy_value x; apply ret(%c)`. Expect one emitted function with one
// block whose terminal is a ret of the copied value.
func TestEmitIdentityFunction(t *testing.T) {
	m := ir.NewModule("M")
	b := ir.NewBuilder(m)
	i32 := m.GetOrInsertRecordType("I32", nil)
	retType := m.GetOrInsertFunctionType([]ir.Value{i32})

	id := b.CreateContinuation("id", []ir.ParamSpec{
		{Name: "x", Type: i32},
		{Name: "ret", Type: retType},
	})
	x, ret := id.Params[0], id.Params[1]

	c := b.CreateCopyValue(id, x)
	_, err := b.CreateCleanup(id, ir.OpDestroyValue, x)
	require.NoError(t, err)
	_, err = b.CreateApply(id, ret, []ir.Value{c})
	require.NoError(t, err)

	lmod, err := Emit(m)
	require.NoError(t, err)
	require.NotNil(t, lmod)

	fn := findFunc(lmod, ir.MangleContinuation("id"))
	require.NotNil(t, fn)
	require.Len(t, fn.Blocks, 1)
	_, isRet := fn.Blocks[0].Term.(*llvmir.TermRet)
	assert.True(t, isRet)
}

// TestEmitNaturalSwitch is scenario B: Nat = zero | succ Nat, a
// continuation switching on a Nat scrutinee with both cases and no
// default. Expect a conditional branch (two-way-compare) in the entry
// block.
func TestEmitNaturalSwitch(t *testing.T) {
	m := ir.NewModule("M")
	b := ir.NewBuilder(m)
	nat := m.GetOrInsertDataType("Nat", nil)
	nat.Constructors = []ir.Constructor{{Name: "zero"}, {Name: "succ", Payload: nat}}

	retType := m.GetOrInsertFunctionType(nil)
	entry := b.CreateContinuation("f", []ir.ParamSpec{
		{Name: "n", Type: nat},
		{Name: "ret", Type: retType},
	})
	n, ret := entry.Params[0], entry.Params[1]

	zeroCase := b.CreateContinuation("zeroCase", nil)
	_, err := b.CreateApply(zeroCase, ret, nil)
	require.NoError(t, err)

	succCase := b.CreateContinuation("succCase", nil)
	_, err = b.CreateApply(succCase, ret, nil)
	require.NoError(t, err)

	_, err = b.CreateSwitchConstr(entry, n, []ir.CaseSpec{
		{ConstructorName: "zero", Dest: zeroCase},
		{ConstructorName: "succ", Dest: succCase},
	}, nil)
	require.NoError(t, err)

	lmod, err := Emit(m)
	require.NoError(t, err)

	fn := findFunc(lmod, ir.MangleContinuation("f"))
	require.NotNil(t, fn)
	_, isCondBr := fn.Blocks[0].Term.(*llvmir.TermCondBr)
	assert.True(t, isCondBr)
}

// TestEmitSinglePayloadConstructAndSwitch is scenario C: Maybe T =
// nothing | just T with T = I32. Builds `just(v)`, then a switch over
// it; expects data_init to pack without error and the switch to lower
// to an llvm switch on the extracted tag byte.
func TestEmitSinglePayloadConstructAndSwitch(t *testing.T) {
	m := ir.NewModule("M")
	b := ir.NewBuilder(m)
	i32 := m.GetOrInsertRecordType("I32", nil)
	maybe := m.GetOrInsertDataType("Maybe", []ir.Constructor{
		{Name: "nothing"},
		{Name: "just", Payload: i32},
	})
	retType := m.GetOrInsertFunctionType(nil)

	entry := b.CreateContinuation("g", []ir.ParamSpec{
		{Name: "v", Type: i32},
		{Name: "ret", Type: retType},
	})
	v, ret := entry.Params[0], entry.Params[1]

	init, err := b.CreateDataInit(entry, maybe, "just", v)
	require.NoError(t, err)

	nothingCase := b.CreateContinuation("nothingCase", nil)
	_, err = b.CreateApply(nothingCase, ret, nil)
	require.NoError(t, err)

	justCase := b.CreateContinuation("justCase", nil)
	_, err = b.CreateApply(justCase, ret, nil)
	require.NoError(t, err)

	_, err = b.CreateSwitchConstr(entry, init, []ir.CaseSpec{
		{ConstructorName: "nothing", Dest: nothingCase},
		{ConstructorName: "just", Dest: justCase},
	}, nil)
	require.NoError(t, err)

	lmod, err := Emit(m)
	require.NoError(t, err)

	fn := findFunc(lmod, ir.MangleContinuation("g"))
	require.NotNil(t, fn)
	_, isSwitch := fn.Blocks[0].Term.(*llvmir.TermSwitch)
	assert.True(t, isSwitch)
}
