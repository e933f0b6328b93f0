// Unless explicitly stated otherwise all files in this repository are licensed
// under the Apache License Version 2.0.
// This product includes software developed as part of the siltc project.

// Package strategy implements data-type physical-layout strategy
// selection (spec §4.6): given a DataType's constructor shape, choose
// one of Natural, Newtype, Single-payload, Single-bit, or No-payload,
// and build the TypeInfo that realizes it. Multi-payload is a named but
// unimplemented strategy (spec: "implementation may fatal-error until
// added") and is reported via diag.InternalInvariantViolation rather
// than silently degrading to one of the implemented strategies.
package strategy

import (
	"github.com/silt-lang/siltc/internal/diag"
	"github.com/silt-lang/siltc/internal/ir"
	"github.com/silt-lang/siltc/internal/typeinfo"
)

// SwitchLowering describes how a Strategy lowers switch_constr over its
// data type (spec §4.6's per-strategy lowering table).
type SwitchLowering struct {
	Kind string // "zero-compare" | "two-way-compare" | "switch" | "cond-branch" | "payload-compare" | "unconditional"
}

// Strategy is a TypeInfo refined with the enum-specific construct,
// destruct, and switch-lowering operations every data-type strategy
// implements (spec §4.6).
type Strategy interface {
	typeinfo.TypeInfo
	DataType() *ir.DataType
	Construct(ctorName string, payload ir.Value) (typeinfo.Op, error)
	Destruct(value ir.Value, ctorName string) (typeinfo.Op, error)
	LowerSwitch(cases []ir.SwitchCase, hasDefault bool) SwitchLowering
}

// counts tallies a DataType's payload-carrying (P) vs payload-less (Q)
// constructors, and detects the Natural strategy's recursive
// zero/successor shape.
type counts struct {
	n, p, q     int
	isRecursive bool // N==2 and exactly one ctor is a single-payload recursive "successor" case
}

func countConstructors(dt *ir.DataType) counts {
	c := counts{n: len(dt.Constructors)}
	var successors int
	for _, ctor := range dt.Constructors {
		if ctor.Payload == nil {
			c.q++
			continue
		}
		c.p++
		// Types are module-uniqued (spec §3: "equality is by structural
		// identity, === suffices after uniquing"), so plain interface
		// equality against dt itself detects the recursive successor case.
		if ctor.Payload == ir.Value(dt) {
			successors++
		}
	}
	if c.n == 2 && c.p == 1 && successors == 1 {
		c.isRecursive = true
	}
	return c
}

// Select runs spec §4.6's selection algorithm over dt's constructors.
func Select(m *ir.Module, dt *ir.DataType) (Strategy, error) {
	c := countConstructors(dt)
	switch {
	case c.isRecursive:
		return newNaturalStrategy(m, dt), nil
	case c.n <= 1:
		return newNewtypeStrategy(m, dt), nil
	case c.p > 1:
		return nil, diag.InternalInvariantViolation("strategy: data type %q needs the multi-payload strategy, not yet implemented", dt.DeclName)
	case c.p == 1:
		return newSinglePayloadStrategy(m, dt), nil
	case c.q == 2:
		return newSingleBitStrategy(m, dt), nil
	default:
		return newNoPayloadStrategy(m, dt), nil
	}
}
