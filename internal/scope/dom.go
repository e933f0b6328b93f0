// Unless explicitly stated otherwise all files in this repository are licensed
// under the Apache License Version 2.0.
// This product includes software developed as part of the siltc project.

package scope

import "github.com/silt-lang/siltc/internal/ir"

// DomTree is the immediate-dominator relation over a scope's RPO-ordered
// continuations, built with the iterative Cooper-Harvey-Kennedy
// algorithm (spec §4.3): idom(n) is recomputed as the intersection, in
// RPO order, of the current immediate dominators of n's predecessors,
// repeated to a fixed point.
type DomTree struct {
	rpo  *RPO
	idom []int // indexed by RPO position; idom[0] (the entry) is itself
	preds [][]int
}

// BuildDomTree constructs the dominator tree for s using rpo's numbering.
// Predecessors considered are restricted to scope members (an edge from
// outside the scope cannot contribute a dominance constraint).
func BuildDomTree(s *Scope, rpo *RPO) *DomTree {
	n := len(rpo.Order)
	preds := make([][]int, n)
	for i, c := range rpo.Order {
		for _, p := range c.Predecessors() {
			if p.Terminal == nil || p.Terminal.Continuation == nil {
				continue
			}
			predCont := p.Terminal.Continuation
			if !s.member[predCont] {
				continue
			}
			if pi := rpo.Index(predCont); pi >= 0 {
				preds[i] = append(preds[i], pi)
			}
		}
	}

	idom := make([]int, n)
	for i := range idom {
		idom[i] = -1
	}
	if n > 0 {
		idom[0] = 0
	}

	changed := true
	for changed {
		changed = false
		for i := 1; i < n; i++ {
			newIdom := -1
			for _, p := range preds[i] {
				if idom[p] == -1 {
					continue
				}
				if newIdom == -1 {
					newIdom = p
					continue
				}
				newIdom = intersect(idom, p, newIdom)
			}
			if newIdom != -1 && idom[i] != newIdom {
				idom[i] = newIdom
				changed = true
			}
		}
	}

	return &DomTree{rpo: rpo, idom: idom, preds: preds}
}

// intersect walks two RPO-indexed immediate-dominator chains upward
// until they meet, per the standard Cooper-Harvey-Kennedy "intersect"
// helper (finger1/finger2 walking toward the entry, which always has the
// lowest RPO number along any dominator chain).
func intersect(idom []int, a, b int) int {
	for a != b {
		for a > b {
			a = idom[a]
		}
		for b > a {
			b = idom[b]
		}
	}
	return a
}

// IDom returns c's immediate dominator, or nil for the entry or for a
// continuation the algorithm never reached a fixed point for (meaning c
// is unreachable in this scope).
func (d *DomTree) IDom(c *ir.Continuation) *ir.Continuation {
	i := d.rpo.Index(c)
	if i <= 0 {
		return nil
	}
	if d.idom[i] == -1 {
		return nil
	}
	return d.rpo.Order[d.idom[i]]
}

// Dominates reports whether a dominates b (reflexively: a dominates
// itself), by walking b's immediate-dominator chain up to the entry.
func (d *DomTree) Dominates(a, b *ir.Continuation) bool {
	ai, bi := d.rpo.Index(a), d.rpo.Index(b)
	if ai < 0 || bi < 0 {
		return false
	}
	for {
		if bi == ai {
			return true
		}
		if bi == 0 {
			return false
		}
		bi = d.idom[bi]
		if bi == -1 {
			return false
		}
	}
}
