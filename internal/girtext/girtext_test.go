// Unless explicitly stated otherwise all files in this repository are licensed
// under the Apache License Version 2.0.
// This product includes software developed as part of the siltc project.

package girtext

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/multierr"

	"github.com/silt-lang/siltc/internal/ir"
)

// buildIdentity constructs scenario A: one continuation with parameters
// (x: I32, ret: I32 -> _), body `%c = copy_value x; destroy_value x;
// apply ret(%c)`.
func buildIdentity(t *testing.T) *ir.Module {
	t.Helper()
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

	return m
}

// TestScenarioA_TextualRoundTripIsStable covers spec scenario A's
// "textual round-trip is stable" clause: Write, Parse, Write again
// yields bit-identical text, and the decoded module still verifies.
func TestScenarioA_TextualRoundTripIsStable(t *testing.T) {
	m := buildIdentity(t)
	text1 := Write(m)
	require.NotEmpty(t, text1)

	m2, err := Parse(text1)
	require.NoError(t, err)
	require.NoError(t, ir.Verify(m2))

	text2 := Write(m2)
	assert.Equal(t, text1, text2)
}

func TestWriteIdentityShape(t *testing.T) {
	m := buildIdentity(t)
	text := Write(m)
	assert.Contains(t, text, "module M where")
	assert.Contains(t, text, "record I32 {}")
	assert.Contains(t, text, "@id : (I32, (I32) -> _) -> _ {")
	assert.Contains(t, text, "bb0(%x: I32, %ret: (I32) -> _):")
	assert.Contains(t, text, "copy_value(%x)")
	assert.Contains(t, text, "destroy_value(%x)")
	assert.Contains(t, text, "apply(%ret,")
}

// buildNatSwitch constructs scenario B: Nat = zero | succ Nat, switched
// with both cases and no default, to exercise the data-decl round trip
// and the ctor -> block arm syntax.
func buildNatSwitch(t *testing.T) *ir.Module {
	t.Helper()
	m := ir.NewModule("N")
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

	return m
}

func TestScenarioB_DataDeclRoundTrip(t *testing.T) {
	m := buildNatSwitch(t)
	text1 := Write(m)
	assert.Contains(t, text1, "data Nat = zero | succ Nat")
	assert.Contains(t, text1, "zero -> bb2")
	assert.Contains(t, text1, "succ -> bb1")

	m2, err := Parse(text1)
	require.NoError(t, err)
	require.NoError(t, ir.Verify(m2))

	text2 := Write(m2)
	assert.Equal(t, text1, text2)
}

func TestParseRejectsMalformedInput(t *testing.T) {
	_, err := Parse("not a gir module")
	require.Error(t, err)
}

// TestDecodeAccumulatesPastMultipleInstructionErrors covers the
// recovery-then-continue policy: a function body with two unrelated
// undefined references must report both, not stop at the first.
func TestDecodeAccumulatesPastMultipleInstructionErrors(t *testing.T) {
	src := `module M where

@f : (I32) -> _ {
bb0(%x: I32):
  %a = copy_value(%missing1)
  %b = copy_value(%missing2)
  unreachable()
}
`
	_, err := Parse(src)
	require.Error(t, err)
	assert.Len(t, multierr.Errors(err), 2)
	assert.Contains(t, err.Error(), "missing1")
	assert.Contains(t, err.Error(), "missing2")
}

// TestDecodeAccumulatesPastBadFunctionDecl covers the per-declaration
// recovery boundary: a function whose body fails to decode must not
// prevent an unrelated, later function declaration from decoding fully.
func TestDecodeAccumulatesPastBadFunctionDecl(t *testing.T) {
	src := `module M where

@bad : (I32) -> _ {
bb0(%x: I32):
  %a = copy_value(%missing)
  unreachable()
}

@good : () -> _ {
bb0():
  unreachable()
}
`
	am := &astModule{}
	require.NoError(t, girParser.ParseString(src, am))

	m, err := decode(am)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "missing")
	assert.NotNil(t, m.LookupContinuation("good"))
}
