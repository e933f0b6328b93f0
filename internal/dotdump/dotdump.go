// Unless explicitly stated otherwise all files in this repository are licensed
// under the Apache License Version 2.0.
// This product includes software developed as part of the siltc project.

// Package dotdump renders a scope's control-flow graph, and optionally
// its dominator tree, as Graphviz source (spec §4.12): one debug view
// for humans driving the compiler from the command line, never
// consumed by another compiler pass.
package dotdump

import (
	"fmt"

	"github.com/emicklei/dot"

	"github.com/silt-lang/siltc/internal/ir"
	"github.com/silt-lang/siltc/internal/scope"
)

// Options controls what dotdump.Write renders in addition to the bare
// control-flow graph.
type Options struct {
	// Dominators, when true, adds a dashed idom edge from every
	// continuation to its immediate dominator alongside the solid CFG
	// edges.
	Dominators bool
}

// Write renders the control-flow graph of the scope rooted at entry as
// Graphviz source. Nodes are labeled with the continuation's name and
// bb index in rpo order; solid edges are CFG successors labeled with
// the constructor name for switch_constr arms, "default" for the
// default arm, and left unlabeled for a plain apply/unconditional
// branch. With opts.Dominators set, a second, dashed edge set overlays
// the immediate-dominator relation computed by scope.BuildDomTree.
func Write(entry *ir.Continuation, opts Options) string {
	s := scope.Build(entry, nil)
	rpo := scope.ComputeRPO(s)

	g := dot.NewGraph(dot.Directed)
	g.Attr("rankdir", "TB")

	nodes := make(map[*ir.Continuation]dot.Node, len(rpo.Order))
	for i, c := range rpo.Order {
		n := g.Node(nodeID(c))
		n.Attr("shape", "box")
		n.Label(fmt.Sprintf("bb%d\\n%s", i, c.Name()))
		nodes[c] = n
	}

	for _, c := range rpo.Order {
		if c.Terminal == nil {
			continue
		}
		for _, succ := range c.Terminal.Successors {
			if succ.Dest == nil || !s.Contains(succ.Dest) {
				continue
			}
			e := g.Edge(nodes[c], nodes[succ.Dest])
			if label := edgeLabel(c.Terminal, succ); label != "" {
				e.Label(label)
			}
		}
	}

	if opts.Dominators {
		dom := scope.BuildDomTree(s, rpo)
		for _, c := range rpo.Order {
			idom := dom.IDom(c)
			if idom == nil {
				continue
			}
			g.Edge(nodes[c], nodes[idom]).Attr("style", "dashed").Attr("color", "gray40").Label("idom")
		}
	}

	return g.String()
}

// nodeID derives a stable Graphviz node identifier from c's address,
// since continuation names are not guaranteed unique across a scope
// (spec §3 names are diagnostic labels, not identifiers).
func nodeID(c *ir.Continuation) string {
	return fmt.Sprintf("n%p", c)
}

// edgeLabel names the switch_constr arm succ belongs to, or "" for a
// terminal with a single unconditional successor (apply to a known
// continuation).
func edgeLabel(terminal *ir.PrimOp, succ *ir.Successor) string {
	if terminal.Default == succ {
		return "default"
	}
	for _, cs := range terminal.Cases {
		if cs.Successor == succ {
			return cs.ConstructorName
		}
	}
	return ""
}
