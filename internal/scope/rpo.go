// Unless explicitly stated otherwise all files in this repository are licensed
// under the Apache License Version 2.0.
// This product includes software developed as part of the siltc project.

package scope

import "github.com/silt-lang/siltc/internal/ir"

// RPO is a scope's reverse-post-order numbering: RPO computed from
// identical modules always produces identical sequences (spec §8
// property 4), since the underlying post-order DFS always visits a
// continuation's successors in the terminal's own Successors order,
// itself deterministic (insertion order).
type RPO struct {
	Order []*ir.Continuation
	index map[*ir.Continuation]int
}

// ComputeRPO computes s's RPO by post-order DFS from the entry, followed
// by reversal (spec §4.3).
func ComputeRPO(s *Scope) *RPO {
	visited := make(map[*ir.Continuation]bool, len(s.Continuations))
	var postOrder []*ir.Continuation

	var visit func(c *ir.Continuation)
	visit = func(c *ir.Continuation) {
		if visited[c] {
			return
		}
		visited[c] = true
		for _, succ := range s.successors(c) {
			visit(succ)
		}
		postOrder = append(postOrder, c)
	}
	visit(s.Entry)

	order := make([]*ir.Continuation, len(postOrder))
	for i, c := range postOrder {
		order[len(postOrder)-1-i] = c
	}

	r := &RPO{Order: order, index: make(map[*ir.Continuation]int, len(order))}
	for i, c := range order {
		r.index[c] = i
	}
	return r
}

// Index returns c's position in the RPO sequence, or -1 if c was not
// reached by the DFS (e.g. an unreachable continuation still present in
// the scope's member set via some other route is never possible by
// construction, but a continuation outside the scope entirely).
func (r *RPO) Index(c *ir.Continuation) int {
	if i, ok := r.index[c]; ok {
		return i
	}
	return -1
}
