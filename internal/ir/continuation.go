// Unless explicitly stated otherwise all files in this repository are licensed
// under the Apache License Version 2.0.
// This product includes software developed as part of the siltc project.

package ir

// Successor records one outgoing edge of a terminal primop to a
// destination Continuation. Successor records live inside the terminal
// primop that owns them and are threaded into the destination's
// predecessor list (spec §3: "a predecessor linked list rooted in
// Successor records that live inside terminal primops").
type Successor struct {
	Terminal *PrimOp
	Dest     *Continuation
	prev     *Successor
	next     *Successor
}

func (s *Successor) linkInto(dest *Continuation) {
	s.Dest = dest
	s.prev = nil
	s.next = dest.preds
	if dest.preds != nil {
		dest.preds.prev = s
	}
	dest.preds = s
}

func (s *Successor) unlink() {
	if s.Dest == nil {
		return
	}
	if s.prev != nil {
		s.prev.next = s.next
	} else {
		s.Dest.preds = s.next
	}
	if s.next != nil {
		s.next.prev = s.prev
	}
	s.prev, s.next, s.Dest = nil, nil, nil
}

// Continuation is a CPS function / basic block (spec §3): it owns an
// ordered parameter list, a single terminal primop, a list of cleanup
// primops scheduled just before the terminal, a predecessor list, and a
// back-reference to its owning module.
type Continuation struct {
	valueBase
	Module   *Module
	Params   []*Parameter
	Terminal *PrimOp
	Cleanups []*PrimOp

	preds *Successor
}

// Predecessors returns every Successor record whose destination is c, in
// most-recently-linked-first order.
func (c *Continuation) Predecessors() []*Successor {
	var out []*Successor
	for s := c.preds; s != nil; s = s.next {
		out = append(out, s)
	}
	return out
}

// ReturnParameter returns c's last parameter, the return continuation by
// convention (spec §3), or nil if c has no parameters.
func (c *Continuation) ReturnParameter() *Parameter {
	if len(c.Params) == 0 {
		return nil
	}
	return c.Params[len(c.Params)-1]
}

// ReturnType returns the type of the return continuation's own first
// parameter, i.e. the function's return type (spec §3 convention), or
// nil if that shape isn't present.
func (c *Continuation) ReturnType() Value {
	ret := c.ReturnParameter()
	if ret == nil {
		return nil
	}
	ft, ok := ret.Type().(*FunctionType)
	if !ok || len(ft.Arguments) == 0 {
		return nil
	}
	return ft.Arguments[0]
}

// FunctionType returns the FunctionType of c's parameters, suitable as
// the type of a function_ref to c.
func (c *Continuation) FunctionType() *FunctionType {
	args := make([]Value, len(c.Params))
	for i, p := range c.Params {
		args[i] = p.Type()
	}
	return c.Module.GetOrInsertFunctionType(args)
}
