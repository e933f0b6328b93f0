// Unless explicitly stated otherwise all files in this repository are licensed
// under the Apache License Version 2.0.
// This product includes software developed as part of the siltc project.

package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/silt-lang/siltc/internal/girtext"
	"github.com/silt-lang/siltc/internal/ir"
)

// writeFixture builds the identity-function module (mirroring
// girtext_test.go's buildIdentity) and writes its textual form to a
// temp file, returning the path.
func writeFixture(t *testing.T) string {
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

	path := filepath.Join(t.TempDir(), "fixture.gir")
	require.NoError(t, os.WriteFile(path, []byte(girtext.Write(m)), 0o644))
	return path
}

func TestOptimizeSucceedsAndPrintsTextualModule(t *testing.T) {
	path := writeFixture(t)
	var stdout, stderr bytes.Buffer
	code := run([]string{"optimize", "--pass", "SimplifyCFG", path}, &stdout, &stderr)
	assert.Equal(t, 0, code)
	assert.Contains(t, stdout.String(), "module M where")
	assert.Empty(t, stderr.String())
}

func TestOptimizeUnknownPassExitsOne(t *testing.T) {
	path := writeFixture(t)
	var stdout, stderr bytes.Buffer
	code := run([]string{"optimize", "--pass", "NotARealPass", path}, &stdout, &stderr)
	assert.Equal(t, 1, code)
	assert.NotEmpty(t, stderr.String())
}

func TestOptimizeMissingFileExitsOne(t *testing.T) {
	var stdout, stderr bytes.Buffer
	code := run([]string{"optimize", filepath.Join(t.TempDir(), "missing.gir")}, &stdout, &stderr)
	assert.Equal(t, 1, code)
}

func TestDumpCFGPrintsGraphviz(t *testing.T) {
	path := writeFixture(t)
	var stdout, stderr bytes.Buffer
	code := run([]string{"dump-cfg", "--dom", path}, &stdout, &stderr)
	assert.Equal(t, 0, code)
	assert.Contains(t, stdout.String(), "digraph")
	assert.Empty(t, stderr.String())
}
