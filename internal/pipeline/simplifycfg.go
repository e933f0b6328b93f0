// Unless explicitly stated otherwise all files in this repository are licensed
// under the Apache License Version 2.0.
// This product includes software developed as part of the siltc project.

package pipeline

import (
	"github.com/silt-lang/siltc/internal/ir"
	"github.com/silt-lang/siltc/internal/scope"
)

// SimplifyCFG is the one concrete ScopePass spec §4.9 specifies exactly:
// iteratively, over a scope, (a) remove continuations with no
// predecessors after dropping their parameters' uses, and (b) collapse
// a continuation that ends with `apply` to a direct `function_ref`
// whose destination has exactly one predecessor by splicing the
// destination's terminal onto the caller and deleting the destination.
// Passes are constructed fresh on each run (spec §4.9), so SimplifyCFG
// carries no state of its own.
type SimplifyCFG struct{}

func (SimplifyCFG) Name() string { return "SimplifyCFG" }

// Run applies both rules to a fixed point. This is observably equivalent
// to the worklist-driven formulation spec §4.9 describes — each rule
// only ever shrinks the scope, so repeatedly sweeping every remaining
// continuation until neither rule fires reaches the same fixed point a
// (scope, pass-index) worklist would, just without tracking the
// per-continuation recheck order explicitly.
func (SimplifyCFG) Run(s *scope.Scope) error {
	live := make(map[*ir.Continuation]bool, len(s.Continuations))
	for _, c := range s.Continuations {
		live[c] = true
	}

	for {
		changed := false
		for c := range live {
			if c == s.Entry {
				continue
			}
			if len(c.Predecessors()) != 0 {
				continue
			}
			dropParameterUses(c)
			c.Module.RemoveContinuation(c)
			delete(live, c)
			changed = true
		}
		for c := range live {
			if mergeSinglePredecessorTailCall(c, live) {
				changed = true
			}
		}
		if !changed {
			return nil
		}
	}
}

// dropParameterUses unlinks every use of every one of c's parameters, so
// c satisfies the lifecycle precondition for RemoveContinuation (spec
// §3: "callers drop uses first").
func dropParameterUses(c *ir.Continuation) {
	for _, param := range c.Params {
		for _, op := range param.Users() {
			ir.Drop(op)
		}
	}
}

// mergeSinglePredecessorTailCall implements rule (b): if c's terminal is
// an apply directly calling a function_ref whose destination has
// exactly one predecessor (necessarily this very apply), the callee is
// inlined by transplanting its terminal onto c.
func mergeSinglePredecessorTailCall(c *ir.Continuation, live map[*ir.Continuation]bool) bool {
	oldTerm := c.Terminal
	if oldTerm == nil || oldTerm.Opcode != ir.OpApply || len(oldTerm.Operands) == 0 {
		return false
	}
	callee, ok := oldTerm.Operands[0].Value().(*ir.PrimOp)
	if !ok || callee.Opcode != ir.OpFunctionRef || callee.RefDest == nil {
		return false
	}
	dest := callee.RefDest
	if dest == c || len(dest.Predecessors()) != 1 {
		return false
	}

	args := make([]ir.Value, len(oldTerm.Operands)-1)
	for i, op := range oldTerm.Operands[1:] {
		args[i] = op.Value()
	}
	for i, param := range dest.Params {
		if i < len(args) {
			ir.ReplaceAllUsesWith(param, args[i])
		}
	}

	oldTerm.DropSuccessors()
	oldTerm.DropOperands()

	newTerm := dest.Terminal
	newTerm.Continuation = c
	c.Terminal = newTerm
	c.Cleanups = append(c.Cleanups, dest.Cleanups...)

	dest.Terminal = nil
	dest.Cleanups = nil
	dest.Module.RemoveContinuation(dest)
	delete(live, dest)
	return true
}
