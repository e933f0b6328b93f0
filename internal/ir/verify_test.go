// Unless explicitly stated otherwise all files in this repository are licensed
// under the Apache License Version 2.0.
// This product includes software developed as part of the siltc project.

package ir

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestVerifyFailsOnMissingTerminal(t *testing.T) {
	m := NewModule("M")
	NewBuilder(m).CreateContinuation("f", nil)

	err := Verify(m)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no terminal")
}

func TestVerifyPassesForWellFormedModule(t *testing.T) {
	m := NewModule("M")
	b := NewBuilder(m)
	cont := b.CreateContinuation("f", nil)
	b.CreateUnreachable(cont)

	assert.NoError(t, Verify(m))
}

// TestVerifyContinuesPastFirstFailure checks that a failure in one
// continuation does not stop verification of the rest of the module
// (spec §7 policy: "the verifier stops at the first failure per
// continuation but continues with the next continuation").
func TestVerifyContinuesPastFirstFailure(t *testing.T) {
	m := NewModule("M")
	b := NewBuilder(m)
	b.CreateContinuation("broken-one", nil) // no terminal
	b.CreateContinuation("broken-two", nil) // no terminal
	ok := b.CreateContinuation("fine", nil)
	b.CreateUnreachable(ok)

	err := Verify(m)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "broken-one")
	assert.Contains(t, err.Error(), "broken-two")
}
