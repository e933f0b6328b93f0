// Unless explicitly stated otherwise all files in this repository are licensed
// under the Apache License Version 2.0.
// This product includes software developed as part of the siltc project.

package girtext

import (
	"github.com/silt-lang/siltc/internal/diag"
	"github.com/silt-lang/siltc/internal/ir"
)

// Parse parses src, the textual GIR format (spec §6), into a fresh
// *ir.Module. A syntax error is fatal and wrapped as IllFormedInput,
// since the grammar gives no later declaration boundary to resume from.
// Semantic decode errors (unknown type, undefined reference, bad
// constructor) do not abort the decode pass: every malformed
// declaration and instruction is its own recovery point, and decode
// returns every accumulated failure joined with go.uber.org/multierr.
func Parse(src string) (*ir.Module, error) {
	am := &astModule{}
	if err := girParser.ParseString(src, am); err != nil {
		return nil, diag.IllFormedInput(diag.Span{}, "girtext: %s", err)
	}
	return decode(am)
}
