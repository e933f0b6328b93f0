// Unless explicitly stated otherwise all files in this repository are licensed
// under the Apache License Version 2.0.
// This product includes software developed as part of the siltc project.

// Package codegen implements the LLVM emission driver (spec §4.11): it
// visits a module's top-level continuations in schedule order and
// builds an *llvmir.Module by dispatching on primop opcode, consulting
// each data type's selected strategy for physical layout. Emission
// aborts with no module produced if verification fails first (spec §7).
package codegen

import (
	"fmt"

	llvmir "github.com/llir/llvm/ir"
	llvmtypes "github.com/llir/llvm/ir/types"
	llvmvalue "github.com/llir/llvm/ir/value"

	"github.com/silt-lang/siltc/internal/diag"
	"github.com/silt-lang/siltc/internal/ir"
	"github.com/silt-lang/siltc/internal/schedule"
	"github.com/silt-lang/siltc/internal/scope"
	"github.com/silt-lang/siltc/internal/strategy"
)

var ptrI8 = llvmtypes.NewPointer(llvmtypes.I8)

// Emitter holds the per-run state of one module's lowering: the llir
// module under construction, the source module it lowers, strategy and
// value/block caches, and declared runtime externs.
type Emitter struct {
	lmod       *llvmir.Module
	gmod       *ir.Module
	strategies map[*ir.DataType]strategy.Strategy
	funcs      map[*ir.Continuation]*llvmir.Func
	blocks     map[*ir.Continuation]*llvmir.Block
	values     map[ir.Value]llvmvalue.Value
	runtime    map[string]*llvmir.Func

	// currentReturn is the return parameter of the top-level
	// continuation presently being emitted, used to recognize an
	// `apply ret(%v)` terminal as a CPS return (spec scenario A).
	currentReturn *ir.Parameter
}

func newEmitter(m *ir.Module) *Emitter {
	return &Emitter{
		lmod:       llvmir.NewModule(),
		gmod:       m,
		strategies: make(map[*ir.DataType]strategy.Strategy),
		funcs:      make(map[*ir.Continuation]*llvmir.Func),
		blocks:     make(map[*ir.Continuation]*llvmir.Block),
		values:     make(map[ir.Value]llvmvalue.Value),
		runtime:    make(map[string]*llvmir.Func),
	}
}

// Emit verifies m and, if it passes, lowers every top-level continuation
// (one with no predecessors) into an LLVM function. Verification failure
// aborts emission with no module returned (spec §7).
func Emit(m *ir.Module) (*llvmir.Module, error) {
	if err := ir.Verify(m); err != nil {
		return nil, err
	}

	e := newEmitter(m)

	var entries []*ir.Continuation
	for _, c := range m.Continuations() {
		if len(c.Predecessors()) == 0 {
			entries = append(entries, c)
		}
	}

	// Declare every top-level function's signature first so a
	// function_ref to one emitted later (mutual recursion, a thicken
	// operand) still resolves during body emission.
	for _, c := range entries {
		if err := e.declareFunc(c); err != nil {
			return nil, err
		}
	}
	for _, c := range entries {
		if err := e.emitFunc(c); err != nil {
			return nil, err
		}
	}
	return e.lmod, nil
}

func isTypeLevelParam(p *ir.Parameter) bool {
	_, ok := p.Type().(*ir.TypeType)
	return ok
}

func (e *Emitter) declareFunc(entry *ir.Continuation) error {
	var params []*llvmir.Param
	for _, p := range entry.Params {
		if isTypeLevelParam(p) {
			continue
		}
		t, err := e.llvmTypeOf(p.Type())
		if err != nil {
			return err
		}
		params = append(params, llvmir.NewParam(p.Name(), t))
	}

	retType := llvmtypes.Void
	if rt := entry.ReturnType(); rt != nil {
		t, err := e.llvmTypeOf(rt)
		if err != nil {
			return err
		}
		retType = t
	}

	fn := e.lmod.NewFunc(ir.MangleContinuation(entry.Name()), retType, params...)
	e.funcs[entry] = fn
	return nil
}

// emitFunc fills in the body of entry's already-declared function:
// builds a scope and schedule, lays out one llvm block per continuation
// in RPO order with phis for every non-erased parameter of a non-entry
// block, then emits every block's instructions and terminal in order.
func (e *Emitter) emitFunc(entry *ir.Continuation) error {
	fn := e.funcs[entry]
	e.currentReturn = entry.ReturnParameter()

	s := scope.Build(entry, nil)
	rpo := scope.ComputeRPO(s)
	sched := schedule.Build(s, rpo)

	for _, c := range rpo.Order {
		e.blocks[c] = fn.NewBlock(c.Name())
	}

	pi := 0
	for _, p := range entry.Params {
		if isTypeLevelParam(p) {
			continue
		}
		e.values[p] = fn.Params[pi]
		pi++
	}
	for _, c := range rpo.Order {
		if c == entry {
			continue
		}
		bb := e.blocks[c]
		for _, p := range c.Params {
			if isTypeLevelParam(p) {
				continue
			}
			t, err := e.llvmTypeOf(p.Type())
			if err != nil {
				return err
			}
			phi := bb.NewPhi()
			phi.Typ = t
			e.values[p] = phi
		}
	}

	for _, blk := range sched.Blocks {
		if err := e.emitBlock(blk); err != nil {
			return err
		}
	}
	return nil
}

func (e *Emitter) emitBlock(blk *schedule.Block) error {
	bb := e.blocks[blk.Continuation]
	for _, p := range blk.PrimOps {
		if p.Opcode.IsTerminal() {
			return e.emitTerminal(bb, p)
		}
		v, err := e.emitInstruction(bb, p)
		if err != nil {
			return err
		}
		if v != nil {
			e.values[p] = v
		}
	}
	return nil
}

// --- type mapping ---

var primitiveLLVMTypes = map[string]llvmtypes.Type{
	"I8": llvmtypes.I8, "I16": llvmtypes.I16, "I32": llvmtypes.I32, "I64": llvmtypes.I64,
	"F32": llvmtypes.Float, "F64": llvmtypes.Double, "Bool": llvmtypes.I1,
}

// llvmTypeOf maps a type-level ir.Value to its LLVM representation.
// Purely compile-time type machinery (Type itself, archetypes not yet
// substituted, type-metadata records) erases to void: by the time a
// value reaches this driver, its runtime shape is fully determined by
// the strategy layer, so these carry no LLVM-visible payload of their
// own (a documented simplification — a real metadata/witness runtime
// would give TypeMetadataType an actual record layout).
func (e *Emitter) llvmTypeOf(t ir.Value) (llvmtypes.Type, error) {
	switch t := t.(type) {
	case *ir.BottomType, *ir.TypeType, *ir.TypeMetadataType, *ir.ArchetypeType:
		return llvmtypes.Void, nil
	case *ir.SubstitutedType:
		return e.llvmTypeOf(t.Base)
	case *ir.DataType:
		strat, err := e.strategyFor(t)
		if err != nil {
			return nil, err
		}
		return strat.LLVMType(), nil
	case *ir.RecordType:
		if lt, ok := primitiveLLVMTypes[t.DeclName]; ok && len(t.Fields) == 0 {
			return lt, nil
		}
		fields := make([]llvmtypes.Type, len(t.Fields))
		for i, f := range t.Fields {
			ft, err := e.llvmTypeOf(f.Type)
			if err != nil {
				return nil, err
			}
			fields[i] = ft
		}
		return llvmtypes.NewStruct(fields...), nil
	case *ir.BoxType:
		return ptrI8, nil
	case *ir.FunctionType:
		args := make([]llvmtypes.Type, 0, len(t.Arguments))
		for _, a := range t.Arguments {
			at, err := e.llvmTypeOf(a)
			if err != nil {
				return nil, err
			}
			if at == llvmtypes.Void {
				continue
			}
			args = append(args, at)
		}
		return llvmtypes.NewPointer(llvmtypes.NewFunc(llvmtypes.Void, args...)), nil
	case *ir.TupleType:
		elems := make([]llvmtypes.Type, len(t.Elements))
		for i, el := range t.Elements {
			et, err := e.llvmTypeOf(el)
			if err != nil {
				return nil, err
			}
			elems[i] = et
		}
		return llvmtypes.NewStruct(elems...), nil
	case *ir.AddressType:
		pointee, err := e.llvmTypeOf(t.Pointee)
		if err != nil {
			return nil, err
		}
		return llvmtypes.NewPointer(pointee), nil
	case *ir.ThickFunctionType:
		underlying, err := e.llvmTypeOf(t.Underlying)
		if err != nil {
			return nil, err
		}
		return llvmtypes.NewStruct(underlying, ptrI8), nil
	default:
		return nil, diag.VerificationFailure("codegen: no LLVM type mapping for %T", t)
	}
}

func (e *Emitter) strategyFor(dt *ir.DataType) (strategy.Strategy, error) {
	if s, ok := e.strategies[dt]; ok {
		return s, nil
	}
	s, err := strategy.Select(e.gmod, dt)
	if err != nil {
		return nil, err
	}
	e.strategies[dt] = s
	return s, nil
}

func (e *Emitter) runtimeFunc(name string, ret llvmtypes.Type, params ...llvmtypes.Type) *llvmir.Func {
	if f, ok := e.runtime[name]; ok {
		return f
	}
	ps := make([]*llvmir.Param, len(params))
	for i, t := range params {
		ps[i] = llvmir.NewParam(fmt.Sprintf("a%d", i), t)
	}
	f := e.lmod.NewFunc(name, ret, ps...)
	e.runtime[name] = f
	return f
}

func (e *Emitter) operand(p *ir.PrimOp, i int) llvmvalue.Value {
	return e.values[p.Operands[i].Value()]
}
