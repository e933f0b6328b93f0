// Unless explicitly stated otherwise all files in this repository are licensed
// under the Apache License Version 2.0.
// This product includes software developed as part of the siltc project.

package ir

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestUseChainIntegrity covers spec property 1: iterating v.Users()
// yields exactly the operands referencing v, each exactly once.
func TestUseChainIntegrity(t *testing.T) {
	m := NewModule("M")
	b := NewBuilder(m)
	i32 := m.GetOrInsertDataType("I32", nil)
	cont := b.CreateContinuation("f", []ParamSpec{{Name: "x", Type: i32}})
	x := cont.Params[0]

	op1 := NewOperand(cont, x)
	op2 := NewOperand(cont, x)

	require.True(t, x.HasUsers())
	users := x.Users()
	assert.Len(t, users, 2)
	assert.Contains(t, users, op1)
	assert.Contains(t, users, op2)

	Drop(op1)
	assert.Equal(t, []*Operand{op2}, x.Users())

	Drop(op2)
	assert.False(t, x.HasUsers())
}

// TestReplaceAllUsesWith covers spec property 2: after RAUW, v has no
// users and every former user now references the replacement.
func TestReplaceAllUsesWith(t *testing.T) {
	m := NewModule("M")
	b := NewBuilder(m)
	i32 := m.GetOrInsertDataType("I32", nil)
	cont := b.CreateContinuation("f", []ParamSpec{
		{Name: "x", Type: i32},
		{Name: "y", Type: i32},
	})
	x, y := cont.Params[0], cont.Params[1]

	op1 := NewOperand(cont, x)
	op2 := NewOperand(cont, x)

	ReplaceAllUsesWith(x, y)

	assert.False(t, x.HasUsers())
	require.Len(t, y.Users(), 2)
	for _, op := range y.Users() {
		assert.Equal(t, y, op.Value())
	}
	assert.Equal(t, y, op1.Value())
	assert.Equal(t, y, op2.Value())
}

func TestReplaceAllUsesWithNoOpOnSelf(t *testing.T) {
	m := NewModule("M")
	b := NewBuilder(m)
	i32 := m.GetOrInsertDataType("I32", nil)
	cont := b.CreateContinuation("f", []ParamSpec{{Name: "x", Type: i32}})
	x := cont.Params[0]
	op := NewOperand(cont, x)

	ReplaceAllUsesWith(x, x)

	assert.Equal(t, []*Operand{op}, x.Users())
}
