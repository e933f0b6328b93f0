// Unless explicitly stated otherwise all files in this repository are licensed
// under the Apache License Version 2.0.
// This product includes software developed as part of the siltc project.

// Package ir implements the GraphIR (GIR) data model: values, the
// use-chain, parameters, continuations, primops, and the type hierarchy
// (spec §3), plus the IR builder (§4.1) and module verifier (§4.2).
package ir

import "go.uber.org/atomic"

// ID is a value's stable identity within a Module. IDs are assigned by
// the Module's monotonic counter and never reused, so an ID alone is
// enough to order values by creation time (used by textual printing).
type ID int64

// Value is the root entity of the data model (spec §3): every value
// carries a stable identity, a name, and a type (itself a Value), and
// participates in the use-chain via Operand records pointing at it.
type Value interface {
	ID() ID
	Name() string
	SetName(name string)
	Type() Value

	// Users returns every Operand currently referencing this value, in
	// most-recently-added-first order. O(users), never walks the module.
	Users() []*Operand
	// HasUsers reports whether any Operand currently references this
	// value; equivalent to "firstUse is nil" in spec §3's invariant list.
	HasUsers() bool

	// base exposes the embedded valueBase for package-internal linkage
	// (use-chain splicing, RAUW). Every concrete Value embeds valueBase,
	// so this is satisfied by promotion everywhere except here.
	base() *valueBase
}

// valueBase is embedded by every concrete Value implementation. It owns
// the doubly-linked use-chain head.
type valueBase struct {
	id       ID
	name     string
	typ      Value
	firstUse *Operand
}

func (v *valueBase) ID() ID              { return v.id }
func (v *valueBase) Name() string        { return v.name }
func (v *valueBase) SetName(name string) { v.name = name }
func (v *valueBase) Type() Value         { return v.typ }
func (v *valueBase) base() *valueBase    { return v }

func (v *valueBase) HasUsers() bool { return v.firstUse != nil }

// Users walks the use-chain and returns every Operand pointing at v.
func (v *valueBase) Users() []*Operand {
	var out []*Operand
	for op := v.firstUse; op != nil; op = op.next {
		out = append(out, op)
	}
	return out
}

func (v *valueBase) addUse(op *Operand) {
	op.prev = nil
	op.next = v.firstUse
	if v.firstUse != nil {
		v.firstUse.prev = op
	}
	v.firstUse = op
}

func (v *valueBase) removeUse(op *Operand) {
	if op.prev != nil {
		op.prev.next = op.next
	} else {
		v.firstUse = op.next
	}
	if op.next != nil {
		op.next.prev = op.prev
	}
	op.prev, op.next = nil, nil
}

// Operand records one use of a Value: the value referenced, the primop
// (or other Value) that owns this use, and the doubly-linked pointers
// threading it into the referenced value's use-chain (spec §3).
type Operand struct {
	value Value
	owner Value
	prev  *Operand
	next  *Operand
}

// NewOperand creates an operand of owner referencing val and links it
// into val's use-chain.
func NewOperand(owner Value, val Value) *Operand {
	op := &Operand{owner: owner, value: val}
	val.base().addUse(op)
	return op
}

// Value returns the value this operand references.
func (o *Operand) Value() Value { return o.value }

// Owner returns the primop (or other Value) that owns this operand.
func (o *Operand) Owner() Value { return o.owner }

// Drop unlinks op from its value's use-chain (spec §3 invariant: dropping
// an operand unlinks it from its value's use-chain). op must not be used
// afterward except to be discarded.
func Drop(op *Operand) {
	op.value.base().removeUse(op)
	op.value = nil
}

// Set repoints op at a new value, unlinking from the old use-chain and
// linking into the new one.
func (o *Operand) Set(val Value) {
	if o.value != nil {
		o.value.base().removeUse(o)
	}
	o.value = val
	val.base().addUse(o)
}

// ReplaceAllUsesWith repoints every current user of v at newVal and
// leaves v with no users (spec §8 property 2, RAUW soundness). Runs in
// O(users(v)), never walks the module.
func ReplaceAllUsesWith(v Value, newVal Value) {
	if v == newVal {
		return
	}
	vb := v.base()
	nb := newVal.base()
	for vb.firstUse != nil {
		op := vb.firstUse
		vb.removeUse(op)
		op.value = newVal
		nb.addUse(op)
	}
}

// idAllocator is a per-Module monotonic counter handing out stable
// Value IDs; go.uber.org/atomic matches the teacher corpus's habit of
// using atomic counters for any shared sequence number even in code that
// (as here, per spec §5) never actually runs concurrently.
type idAllocator struct {
	next atomic.Int64
}

func (a *idAllocator) allocate() ID {
	return ID(a.next.Inc())
}
