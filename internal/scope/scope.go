// Unless explicitly stated otherwise all files in this repository are licensed
// under the Apache License Version 2.0.
// This product includes software developed as part of the siltc project.

// Package scope implements the transitive-closure discovery, RPO
// ordering, and dominator-tree construction spec §4.3 assigns to the
// "Scope" analysis: everything reachable from an entry continuation,
// recomputed on demand after any structural change to the module rather
// than kept incrementally up to date.
package scope

import "github.com/silt-lang/siltc/internal/ir"

// Scope is the transitive closure of continuations reachable from an
// entry continuation by following terminal successors, stopping at any
// continuation named in blacklist.
type Scope struct {
	Entry         *ir.Continuation
	Continuations []*ir.Continuation
	blacklist     map[*ir.Continuation]bool
	member        map[*ir.Continuation]bool
}

// Build discovers the scope rooted at entry, flooding through terminal
// successors and stopping at any continuation in blacklist (spec §4.3).
// blacklist may be nil.
func Build(entry *ir.Continuation, blacklist []*ir.Continuation) *Scope {
	s := &Scope{
		Entry:     entry,
		blacklist: make(map[*ir.Continuation]bool, len(blacklist)),
		member:    make(map[*ir.Continuation]bool),
	}
	for _, b := range blacklist {
		s.blacklist[b] = true
	}

	worklist := []*ir.Continuation{entry}
	for len(worklist) > 0 {
		c := worklist[len(worklist)-1]
		worklist = worklist[:len(worklist)-1]
		if s.member[c] || s.blacklist[c] {
			continue
		}
		s.member[c] = true
		s.Continuations = append(s.Continuations, c)
		if c.Terminal == nil {
			continue
		}
		for _, succ := range c.Terminal.Successors {
			if succ.Dest != nil && !s.member[succ.Dest] && !s.blacklist[succ.Dest] {
				worklist = append(worklist, succ.Dest)
			}
		}
	}
	return s
}

// Contains reports whether c is a member of the scope.
func (s *Scope) Contains(c *ir.Continuation) bool { return s.member[c] }

// Blacklisted reports whether c was excluded by the scope's blacklist.
func (s *Scope) Blacklisted(c *ir.Continuation) bool { return s.blacklist[c] }

// successors returns c's terminal successor destinations that are
// members of s (blacklisted/out-of-scope destinations are never
// traversed by RPO or the dominator builder).
func (s *Scope) successors(c *ir.Continuation) []*ir.Continuation {
	if c.Terminal == nil {
		return nil
	}
	var out []*ir.Continuation
	for _, succ := range c.Terminal.Successors {
		if succ.Dest != nil && s.member[succ.Dest] {
			out = append(out, succ.Dest)
		}
	}
	return out
}
