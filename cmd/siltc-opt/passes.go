// Unless explicitly stated otherwise all files in this repository are licensed
// under the Apache License Version 2.0.
// This product includes software developed as part of the siltc project.

package main

import (
	"github.com/silt-lang/siltc/internal/diag"
	"github.com/silt-lang/siltc/internal/pipeline"
)

// passRegistry maps a --pass flag value to a fresh Pass instance. Passes
// are constructed anew per lookup (spec §4.9: passes carry no state
// across runs), so the registry holds constructors, not instances.
var passRegistry = map[string]func() pipeline.Pass{
	"SimplifyCFG": func() pipeline.Pass { return pipeline.SimplifyCFG{} },
}

// resolvePasses looks up each name in order, building a single stage that
// runs them in flag order (spec §6: "run in flag order inside one
// stage").
func resolvePasses(names []string) ([]pipeline.Pass, error) {
	passes := make([]pipeline.Pass, 0, len(names))
	for _, name := range names {
		ctor, ok := passRegistry[name]
		if !ok {
			return nil, diag.IllFormedInput(diag.Span{}, "siltc-opt: unknown pass %q", name)
		}
		passes = append(passes, ctor())
	}
	return passes, nil
}
