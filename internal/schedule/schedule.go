// Unless explicitly stated otherwise all files in this repository are licensed
// under the Apache License Version 2.0.
// This product includes software developed as part of the siltc project.

// Package schedule turns a scope into an ordered emission plan: one
// Block per continuation in RPO, each holding its continuation's primops
// in the order spec §4.4 derives them (DFS from the terminal through
// operands, reversed, cleanups, terminal). A Schedule is an ephemeral,
// per-pass artifact, never persisted on the Continuation itself (spec
// §3 lifecycle notes).
package schedule

import (
	"github.com/silt-lang/siltc/internal/ir"
	"github.com/silt-lang/siltc/internal/scope"
)

// Block is one continuation's ordered primop list, terminal included
// last.
type Block struct {
	Continuation *ir.Continuation
	PrimOps      []*ir.PrimOp
}

// Schedule is the Blocks for every continuation in a scope's RPO order.
type Schedule struct {
	Blocks []*Block
}

// Build computes the schedule for every continuation in s, ordered per
// rpo.
func Build(s *scope.Scope, rpo *scope.RPO) *Schedule {
	sched := &Schedule{Blocks: make([]*Block, len(rpo.Order))}
	for i, c := range rpo.Order {
		sched.Blocks[i] = &Block{Continuation: c, PrimOps: scheduleContinuation(c)}
	}
	return sched
}

// scheduleContinuation implements spec §4.4's per-continuation
// algorithm: worklist = [terminal]; pop, skip if visited, push onto
// stack, enqueue operand values that are primops; reverse the stack,
// drop the terminal, append cleanups, append the terminal.
func scheduleContinuation(c *ir.Continuation) []*ir.PrimOp {
	if c.Terminal == nil {
		return nil
	}

	visited := make(map[*ir.PrimOp]bool)
	var stack []*ir.PrimOp
	worklist := []*ir.PrimOp{c.Terminal}

	for len(worklist) > 0 {
		p := worklist[len(worklist)-1]
		worklist = worklist[:len(worklist)-1]
		if visited[p] {
			continue
		}
		visited[p] = true
		stack = append(stack, p)
		for _, operand := range p.Operands {
			if op, ok := operand.Value().(*ir.PrimOp); ok && !visited[op] {
				worklist = append(worklist, op)
			}
		}
	}

	out := make([]*ir.PrimOp, 0, len(stack)+len(c.Cleanups))
	for i := len(stack) - 1; i >= 0; i-- {
		if stack[i] != c.Terminal {
			out = append(out, stack[i])
		}
	}
	out = append(out, c.Cleanups...)
	out = append(out, c.Terminal)
	return out
}
