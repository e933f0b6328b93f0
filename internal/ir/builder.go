// Unless explicitly stated otherwise all files in this repository are licensed
// under the Apache License Version 2.0.
// This product includes software developed as part of the siltc project.

package ir

import (
	"github.com/silt-lang/siltc/internal/diag"
	"github.com/silt-lang/siltc/internal/log"
)

// illTyped builds an IllTypedConstruction error and logs it at debug
// level before returning — construction failures are routine (callers
// probe the builder to check feasibility) so they are never logged
// louder than that.
func illTyped(format string, args ...interface{}) *diag.Error {
	err := diag.IllTypedConstruction(format, args...)
	log.Global().Debugf("builder: %s", err.Error())
	return err
}

// Builder constructs continuations and primops into a Module, enforcing
// the well-formedness preconditions spec §4.1 assigns to construction
// time rather than to the verifier (arity, category, and known-callee
// checks on every terminal; unknown-constructor checks on data_init,
// data_extract, and switch_constr).
type Builder struct {
	Module *Module
}

// NewBuilder returns a Builder that constructs into m.
func NewBuilder(m *Module) *Builder {
	return &Builder{Module: m}
}

// ParamSpec describes one parameter to CreateContinuation.
type ParamSpec struct {
	Name      string
	Type      Value
	Ownership Ownership
}

// CreateContinuation creates and registers a new Continuation named name
// (suffixed on collision, spec §4.1) with the given parameters.
func (b *Builder) CreateContinuation(name string, params []ParamSpec) *Continuation {
	c := &Continuation{valueBase: valueBase{id: b.Module.ids.allocate(), typ: b.Module.typeType}}
	c.SetName(b.Module.uniqueName("", name))
	c.Params = make([]*Parameter, len(params))
	for i, spec := range params {
		p := &Parameter{
			valueBase: valueBase{id: b.Module.ids.allocate(), typ: spec.Type},
			Cont:      c,
			Index:     i,
			Ownership: spec.Ownership,
		}
		p.SetName(b.Module.uniqueName(name, spec.Name))
		c.Params[i] = p
	}
	b.Module.addContinuation(c)
	return c
}

func (b *Builder) newPrimOp(opcode Opcode, cont *Continuation, resultType Value) *PrimOp {
	p := &PrimOp{
		valueBase:    valueBase{id: b.Module.ids.allocate(), typ: resultType},
		Opcode:       opcode,
		Continuation: cont,
	}
	return p
}

// CreateFunctionRef produces a function-typed value naming dest. Per
// spec §4.1, creating a FunctionRef eventually installs a Successor
// wired into dest's predecessor list; because the terminal that will
// enclose this reference does not exist yet at this call, the wiring is
// deferred to CreateApply, which installs it when it consumes this exact
// *PrimOp as its direct callee (see resolveDirectCallee below);
// CreateSwitchConstr takes its destination continuations directly and
// wires their Successors itself. A FunctionRef that is never consumed
// that way (e.g. stored via Thicken) never gains a Successor, which is
// correct: it is not a direct, statically-scheduled call.
func (b *Builder) CreateFunctionRef(cont *Continuation, dest *Continuation) *PrimOp {
	p := b.newPrimOp(OpFunctionRef, cont, dest.FunctionType())
	p.RefDest = dest
	return p
}

// resolveDirectCallee wires a Successor from term to callee's RefDest
// whenever callee is a bare function_ref, implementing
// the deferred wiring documented on CreateFunctionRef.
func resolveDirectCallee(term *PrimOp, callee Value) {
	fr, ok := callee.(*PrimOp)
	if !ok || fr.Opcode != OpFunctionRef || fr.RefDest == nil {
		return
	}
	term.AddSuccessor(fr.RefDest)
}

// CreateApply builds an apply terminal in cont, calling callee (any
// function-typed value, typically produced by CreateFunctionRef) with
// args. Returns IllTypedConstruction on arity or argument-type mismatch.
func (b *Builder) CreateApply(cont *Continuation, callee Value, args []Value) (*PrimOp, error) {
	ft, ok := callee.Type().(*FunctionType)
	if !ok {
		return nil, illTyped("apply: callee %s is not function-typed", callee.Name())
	}
	if len(ft.Arguments) != len(args) {
		return nil, illTyped("apply: arity mismatch, expected %d arguments, got %d", len(ft.Arguments), len(args))
	}
	for i, a := range args {
		if typeKey(a.Type()) != typeKey(ft.Arguments[i]) {
			return nil, illTyped("apply: argument %d type mismatch", i)
		}
	}
	p := b.newPrimOp(OpApply, cont, nil)
	p.AddOperand(callee)
	for _, a := range args {
		p.AddOperand(a)
	}
	resolveDirectCallee(p, callee)
	cont.Terminal = p
	return p, nil
}

// CaseSpec pairs a constructor name with its destination continuation
// for CreateSwitchConstr.
type CaseSpec struct {
	ConstructorName string
	Dest            *Continuation
}

// CreateSwitchConstr builds a switch_constr terminal in cont, dispatching
// on scrutinee's constructor tag. defaultDest may be nil when cases cover
// every constructor. Returns IllTypedConstruction if scrutinee is not
// data-typed, a case names an unknown constructor, or a constructor is
// named by more than one case.
func (b *Builder) CreateSwitchConstr(cont *Continuation, scrutinee Value, cases []CaseSpec, defaultDest *Continuation) (*PrimOp, error) {
	dt, ok := scrutinee.Type().(*DataType)
	if !ok {
		return nil, illTyped("switch_constr: scrutinee %s is not data-typed", scrutinee.Name())
	}
	seen := make(map[string]bool, len(cases))
	for _, c := range cases {
		if dt.ConstructorIndex(c.ConstructorName) < 0 {
			return nil, illTyped("switch_constr: %s has no constructor %q", dt.DeclName, c.ConstructorName)
		}
		if seen[c.ConstructorName] {
			return nil, illTyped("switch_constr: constructor %q named by more than one case", c.ConstructorName)
		}
		seen[c.ConstructorName] = true
	}
	p := b.newPrimOp(OpSwitchConstr, cont, nil)
	p.AddOperand(scrutinee)
	p.DataType = dt
	for _, c := range cases {
		s := p.AddSuccessor(c.Dest)
		p.Cases = append(p.Cases, SwitchCase{ConstructorName: c.ConstructorName, Successor: s})
	}
	if defaultDest != nil {
		p.Default = p.AddSuccessor(defaultDest)
	}
	cont.Terminal = p
	return p, nil
}

// CreateUnreachable builds an unreachable terminal in cont.
func (b *Builder) CreateUnreachable(cont *Continuation) *PrimOp {
	p := b.newPrimOp(OpUnreachable, cont, nil)
	cont.Terminal = p
	return p
}

// CreateDataInit constructs a value of dataType tagged ctorName, with
// payload (nil iff the constructor is payload-less). Returns
// IllTypedConstruction on an unknown constructor or a payload-presence
// mismatch.
func (b *Builder) CreateDataInit(cont *Continuation, dataType *DataType, ctorName string, payload Value) (*PrimOp, error) {
	idx := dataType.ConstructorIndex(ctorName)
	if idx < 0 {
		return nil, illTyped("data_init: %s has no constructor %q", dataType.DeclName, ctorName)
	}
	ctor := dataType.Constructors[idx]
	if (ctor.Payload == nil) != (payload == nil) {
		return nil, illTyped("data_init: %s.%s payload presence mismatch", dataType.DeclName, ctorName)
	}
	p := b.newPrimOp(OpDataInit, cont, dataType)
	p.ConstructorName = ctorName
	p.DataType = dataType
	if payload != nil {
		p.AddOperand(payload)
	}
	return p, nil
}

// CreateDataExtract projects the payload of value under the assumption
// it was constructed via ctorName (valid only where the caller already
// knows the tag, e.g. inside the corresponding switch_constr case).
// Returns IllTypedConstruction on an unknown constructor or a
// payload-less constructor.
func (b *Builder) CreateDataExtract(cont *Continuation, value Value, ctorName string) (*PrimOp, error) {
	dt, ok := value.Type().(*DataType)
	if !ok {
		return nil, illTyped("data_extract: value %s is not data-typed", value.Name())
	}
	idx := dt.ConstructorIndex(ctorName)
	if idx < 0 {
		return nil, illTyped("data_extract: %s has no constructor %q", dt.DeclName, ctorName)
	}
	ctor := dt.Constructors[idx]
	if ctor.Payload == nil {
		return nil, illTyped("data_extract: %s.%s has no payload", dt.DeclName, ctorName)
	}
	p := b.newPrimOp(OpDataExtract, cont, ctor.Payload)
	p.ConstructorName = ctorName
	p.DataType = dt
	p.AddOperand(value)
	return p, nil
}

// CreateTuple builds a structural tuple over elems.
func (b *Builder) CreateTuple(cont *Continuation, elems []Value) *PrimOp {
	types := make([]Value, len(elems))
	for i, e := range elems {
		types[i] = e.Type()
	}
	p := b.newPrimOp(OpTuple, cont, b.Module.GetOrInsertTupleType(types))
	for _, e := range elems {
		p.AddOperand(e)
	}
	return p
}

// CreateTupleElementAddress projects the address of addr's index'th
// element. addr must be an address of a tuple type; index must be in
// range. Returns IllTypedConstruction otherwise.
func (b *Builder) CreateTupleElementAddress(cont *Continuation, addr Value, index int) (*PrimOp, error) {
	at, ok := addr.Type().(*AddressType)
	if !ok {
		return nil, illTyped("tuple_element_address: %s is not an address", addr.Name())
	}
	tt, ok := at.Pointee.(*TupleType)
	if !ok {
		return nil, illTyped("tuple_element_address: %s does not address a tuple", addr.Name())
	}
	if index < 0 || index >= len(tt.Elements) {
		return nil, illTyped("tuple_element_address: index %d out of range for %d-element tuple", index, len(tt.Elements))
	}
	p := b.newPrimOp(OpTupleElementAddress, cont, b.Module.GetOrInsertAddressType(tt.Elements[index]))
	p.AddOperand(addr)
	p.Index = index
	return p, nil
}

// CreateCopyValue increments value's logical refcount, producing an
// additional owned reference to the same object value.
func (b *Builder) CreateCopyValue(cont *Continuation, value Value) *PrimOp {
	p := b.newPrimOp(OpCopyValue, cont, value.Type())
	p.AddOperand(value)
	return p
}

// CreateCleanup builds a destroy/deallocate-kind primop and appends it
// directly to cont's cleanup list instead of leaving it to float,
// unreferenced, in the graph — cleanups have no result anyone uses, so
// without this dedicated path they would never be reachable from the
// scheduler's operand-chasing DFS (spec §4.1, §4.4). opcode must satisfy
// Opcode.IsCleanupKind.
func (b *Builder) CreateCleanup(cont *Continuation, opcode Opcode, operand Value) (*PrimOp, error) {
	if !opcode.IsCleanupKind() {
		return nil, illTyped("CreateCleanup: %s is not a cleanup-kind opcode", opcode)
	}
	p := b.newPrimOp(opcode, cont, nil)
	p.AddOperand(operand)
	cont.Cleanups = append(cont.Cleanups, p)
	return p, nil
}

// CreateLoad reads the value addressed by addr.
func (b *Builder) CreateLoad(cont *Continuation, addr Value) (*PrimOp, error) {
	at, ok := addr.Type().(*AddressType)
	if !ok {
		return nil, illTyped("load: %s is not an address", addr.Name())
	}
	p := b.newPrimOp(OpLoad, cont, at.Pointee)
	p.AddOperand(addr)
	return p, nil
}

// CreateStore writes value into the location addressed by addr.
func (b *Builder) CreateStore(cont *Continuation, value Value, addr Value) (*PrimOp, error) {
	at, ok := addr.Type().(*AddressType)
	if !ok {
		return nil, illTyped("store: %s is not an address", addr.Name())
	}
	if typeKey(at.Pointee) != typeKey(value.Type()) {
		return nil, illTyped("store: value type does not match addressed type")
	}
	p := b.newPrimOp(OpStore, cont, nil)
	p.AddOperand(value)
	p.AddOperand(addr)
	return p, nil
}

// CreateAlloca reserves stack storage for a value of typ, returning its
// address.
func (b *Builder) CreateAlloca(cont *Continuation, typ Value) *PrimOp {
	return b.newPrimOp(OpAlloca, cont, b.Module.GetOrInsertAddressType(typ))
}

// CreateAllocBox heap-allocates a reference-counted box around typ.
func (b *Builder) CreateAllocBox(cont *Continuation, typ Value) *PrimOp {
	return b.newPrimOp(OpAllocBox, cont, b.Module.GetOrInsertBoxType(typ))
}

// CreateProjectBox returns the address of the value inside box.
func (b *Builder) CreateProjectBox(cont *Continuation, box Value) (*PrimOp, error) {
	bt, ok := box.Type().(*BoxType)
	if !ok {
		return nil, illTyped("project_box: %s is not box-typed", box.Name())
	}
	p := b.newPrimOp(OpProjectBox, cont, b.Module.GetOrInsertAddressType(bt.Boxed))
	p.AddOperand(box)
	return p, nil
}

// CreateCopyAddress copies the value at src into dst, both addresses of
// the same pointee type.
func (b *Builder) CreateCopyAddress(cont *Continuation, src, dst Value) (*PrimOp, error) {
	sat, ok1 := src.Type().(*AddressType)
	dat, ok2 := dst.Type().(*AddressType)
	if !ok1 || !ok2 {
		return nil, illTyped("copy_address: operands must both be addresses")
	}
	if typeKey(sat.Pointee) != typeKey(dat.Pointee) {
		return nil, illTyped("copy_address: pointee type mismatch")
	}
	p := b.newPrimOp(OpCopyAddress, cont, nil)
	p.AddOperand(src)
	p.AddOperand(dst)
	return p, nil
}

// CreateThicken closes over fn (a statically-known, thin function value)
// with its defining environment, producing a portable (function, env)
// pair usable as a first-class value.
func (b *Builder) CreateThicken(cont *Continuation, fn Value) (*PrimOp, error) {
	if _, ok := fn.Type().(*FunctionType); !ok {
		return nil, illTyped("thicken: %s is not function-typed", fn.Name())
	}
	p := b.newPrimOp(OpThicken, cont, b.Module.GetOrInsertThickFunctionType(fn.Type()))
	p.AddOperand(fn)
	return p, nil
}

// CreateForceEffects builds an identity-typed barrier over value: a
// primop with no semantic effect of its own, used to pin an effectful
// dependency's relative order across a pass that would otherwise be free
// to reorder pure operand-chasing.
func (b *Builder) CreateForceEffects(cont *Continuation, value Value) *PrimOp {
	p := b.newPrimOp(OpForceEffects, cont, value.Type())
	p.AddOperand(value)
	return p
}
