// Unless explicitly stated otherwise all files in this repository are licensed
// under the Apache License Version 2.0.
// This product includes software developed as part of the siltc project.

package codegen

import (
	llvmir "github.com/llir/llvm/ir"
	llvmconstant "github.com/llir/llvm/ir/constant"
	llvmtypes "github.com/llir/llvm/ir/types"
	llvmvalue "github.com/llir/llvm/ir/value"

	"github.com/silt-lang/siltc/internal/diag"
	"github.com/silt-lang/siltc/internal/ir"
	"github.com/silt-lang/siltc/internal/strategy"
	"github.com/silt-lang/siltc/internal/typeinfo"
)

// emitInstruction lowers one non-terminal primop, returning its result
// value (nil for a cleanup-kind op or an erased-type result).
func (e *Emitter) emitInstruction(bb *llvmir.Block, p *ir.PrimOp) (llvmvalue.Value, error) {
	switch p.Opcode {
	case ir.OpFunctionRef:
		if fn, ok := e.funcs[p.RefDest]; ok {
			return fn, nil
		}
		// A function_ref whose destination is a local branch target
		// (not a top-level function) is only ever legal as a direct
		// apply/switch_constr callee, handled entirely at the terminal
		// level; reaching here means it escaped as a first-class value
		// this driver cannot represent.
		return nil, diag.VerificationFailure("codegen: function_ref to non-top-level continuation %q used as a value", p.RefDest.Name())

	case ir.OpCopyValue, ir.OpForceEffects:
		// Both are value-identity operations at the LLVM level: copy_value's
		// refcount bump and force_effects's ordering barrier have no
		// separate instruction of their own once scheduled (a documented
		// simplification — a full ARC runtime would emit a retain call for
		// heap-typed operands here).
		return e.operand(p, 0), nil

	case ir.OpDestroyValue, ir.OpDestroyAddress, ir.OpDealloca:
		return nil, e.emitDestroy(bb, p)

	case ir.OpLoad:
		addr := e.operand(p, 0)
		elemType, err := e.llvmTypeOf(p.Type())
		if err != nil {
			return nil, err
		}
		return bb.NewLoad(elemType, addr), nil

	case ir.OpStore:
		bb.NewStore(e.operand(p, 0), e.operand(p, 1))
		return nil, nil

	case ir.OpAlloca:
		elemType, err := e.llvmTypeOf(p.Type().(*ir.AddressType).Pointee)
		if err != nil {
			return nil, err
		}
		return bb.NewAlloca(elemType), nil

	case ir.OpCopyAddress:
		src, dst := e.operand(p, 0), e.operand(p, 1)
		pointeeType := src.Type().(*llvmtypes.PointerType).ElemType
		v := bb.NewLoad(pointeeType, src)
		bb.NewStore(v, dst)
		return nil, nil

	case ir.OpTuple:
		tupleType, err := e.llvmTypeOf(p.Type())
		if err != nil {
			return nil, err
		}
		var cur llvmvalue.Value = llvmconstant.NewZeroInitializer(tupleType)
		for i, op := range p.Operands {
			cur = bb.NewInsertValue(cur, e.values[op.Value()], uint64(i))
		}
		return cur, nil

	case ir.OpTupleElementAddress:
		addr := e.operand(p, 0)
		structType := addr.Type().(*llvmtypes.PointerType).ElemType
		zero := llvmconstant.NewInt(llvmtypes.I32, 0)
		idx := llvmconstant.NewInt(llvmtypes.I32, int64(p.Index))
		return bb.NewGetElementPtr(structType, addr, zero, idx), nil

	case ir.OpDataInit:
		return e.emitDataInit(bb, p)

	case ir.OpDataExtract:
		return e.emitDataExtract(bb, p)

	case ir.OpThicken:
		return e.emitThicken(bb, p)

	case ir.OpAllocBox:
		fn := e.runtimeFunc("silt_alloc_box", ptrI8)
		return bb.NewCall(fn), nil

	case ir.OpProjectBox:
		fn := e.runtimeFunc("silt_project_box", ptrI8, ptrI8)
		raw := bb.NewCall(fn, e.operand(p, 0))
		resultType, err := e.llvmTypeOf(p.Type())
		if err != nil {
			return nil, err
		}
		return bb.NewBitCast(raw, resultType), nil

	case ir.OpDeallocBox:
		fn := e.runtimeFunc("silt_dealloc_box", llvmtypes.Void, ptrI8)
		bb.NewCall(fn, e.operand(p, 0))
		return nil, nil

	default:
		return nil, diag.InternalInvariantViolation("codegen: unhandled opcode %s", p.Opcode)
	}
}

// emitDestroy interprets a cleanup-kind primop's operand TypeInfo.Destroy
// op where the operand is data-typed; destruction of any other category
// (records, tuples, boxes) has no generated code in this driver — their
// aggregate/refcount runtime is out of the strategy layer's scope, which
// covers only data-type physical layout (spec §4.6).
func (e *Emitter) emitDestroy(bb *llvmir.Block, p *ir.PrimOp) error {
	addr := p.Operands[0].Value()
	dt, ok := addr.Type().(*ir.DataType)
	if !ok {
		return nil
	}
	strat, err := e.strategyFor(dt)
	if err != nil {
		return err
	}
	op := strat.Destroy(addr)
	_, err = e.interpretOp(bb, strat, op, nil)
	return err
}

func (e *Emitter) emitThicken(bb *llvmir.Block, p *ir.PrimOp) (llvmvalue.Value, error) {
	fnVal := e.operand(p, 0)
	structType, err := e.llvmTypeOf(p.Type())
	if err != nil {
		return nil, err
	}
	st := structType.(*llvmtypes.StructType)
	fnPtr := bb.NewBitCast(fnVal, st.Fields[0])
	v := llvmvalue.Value(llvmconstant.NewZeroInitializer(structType))
	v = bb.NewInsertValue(v, fnPtr, 0)
	v = bb.NewInsertValue(v, llvmconstant.NewNull(ptrI8), 1)
	return v, nil
}

// --- data_init / data_extract, via the strategy's symbolic Op vocabulary ---

func (e *Emitter) emitDataInit(bb *llvmir.Block, p *ir.PrimOp) (llvmvalue.Value, error) {
	dt, ok := p.DataType.(*ir.DataType)
	if !ok {
		return nil, diag.VerificationFailure("codegen: data_init with no data type")
	}
	strat, err := e.strategyFor(dt)
	if err != nil {
		return nil, err
	}
	var payload ir.Value
	if len(p.Operands) > 0 {
		payload = p.Operands[0].Value()
	}
	op, err := strat.Construct(p.ConstructorName, payload)
	if err != nil {
		return nil, err
	}
	resultType, err := e.llvmTypeOf(p.Type())
	if err != nil {
		return nil, err
	}
	return e.interpretOp(bb, strat, op, resultType)
}

func (e *Emitter) emitDataExtract(bb *llvmir.Block, p *ir.PrimOp) (llvmvalue.Value, error) {
	dt, ok := p.DataType.(*ir.DataType)
	if !ok {
		return nil, diag.VerificationFailure("codegen: data_extract with no data type")
	}
	strat, err := e.strategyFor(dt)
	if err != nil {
		return nil, err
	}
	op, err := strat.Destruct(p.Operands[0].Value(), p.ConstructorName)
	if err != nil {
		return nil, err
	}
	resultType, err := e.llvmTypeOf(p.Type())
	if err != nil {
		return nil, err
	}
	return e.interpretOp(bb, strat, op, resultType)
}

// interpretOp turns one typeinfo.Op into the LLVM instructions it
// denotes (spec §4.6/§4.7's construct/destruct vocabulary); resultType
// is nil for an op with no result (a cleanup).
func (e *Emitter) interpretOp(bb *llvmir.Block, strat strategy.Strategy, op typeinfo.Op, resultType llvmtypes.Type) (llvmvalue.Value, error) {
	switch op.Kind {
	case "natural.zero":
		return llvmconstant.NewInt(resultType.(*llvmtypes.IntType), 0), nil

	case "natural.add1":
		payload := e.values[op.Operands[0]]
		one := llvmconstant.NewInt(resultType.(*llvmtypes.IntType), 1)
		return bb.NewAdd(payload, one), nil

	case "natural.sub1":
		v := e.values[op.Operands[0]]
		one := llvmconstant.NewInt(v.Type().(*llvmtypes.IntType), 1)
		return bb.NewSub(v, one), nil

	case "newtype.empty":
		return nil, nil

	case "newtype.identity":
		return e.values[op.Operands[0]], nil

	case "singlebit.false":
		return llvmconstant.False, nil

	case "singlebit.true":
		return llvmconstant.True, nil

	case "nopayload.tag":
		return llvmconstant.NewInt(resultType.(*llvmtypes.IntType), op.Tag), nil

	case "singlepayload.pack":
		arr := strat.LLVMType().(*llvmtypes.ArrayType)
		payloadBytes, tagBytes := singlePayloadOffsets(strat)
		payload := e.values[op.Operands[0]]
		return e.packBytes(bb, arr, payload, 0, payloadBytes, tagBytes, op.Tag)

	case "singlepayload.zero-with-tag":
		arr := strat.LLVMType().(*llvmtypes.ArrayType)
		payloadBytes, tagBytes := singlePayloadOffsets(strat)
		return e.packBytes(bb, arr, nil, 0, payloadBytes, tagBytes, op.Tag)

	case "singlepayload.unpack":
		arr := strat.LLVMType().(*llvmtypes.ArrayType)
		packed := e.values[op.Operands[0]]
		return e.unpackBytes(bb, arr, packed, resultType, 0), nil

	case "destroy_addr", "assign_with_copy", "lifetime.start", "lifetime.end":
		// Not exercised by any concrete scenario this driver targets; a
		// full ARC/lifetime runtime would emit retain/release or
		// llvm.lifetime intrinic calls here.
		return nil, nil

	default:
		return nil, diag.InternalInvariantViolation("codegen: unhandled typeinfo op kind %q", op.Kind)
	}
}

func singlePayloadOffsets(strat strategy.Strategy) (payloadBytes, tagBytes int) {
	schema := strat.Schema()
	payloadBytes = int(schema[0].LLVMType.(*llvmtypes.ArrayType).Len)
	tagBytes = int(schema[1].LLVMType.(*llvmtypes.ArrayType).Len)
	return
}

// packBytes type-puns payload (if non-nil) and the tagBytes-wide integer
// tagVal into arr's flat byte layout via an alloca, matching
// internal/payload's bit-carrier technique but at the LLVM IR level
// (alloca + bitcast + store, then one load of the whole aggregate).
func (e *Emitter) packBytes(bb *llvmir.Block, arr *llvmtypes.ArrayType, payload llvmvalue.Value, payloadOffset, payloadBytes, tagBytes int, tagVal int64) (llvmvalue.Value, error) {
	alloca := bb.NewAlloca(arr)
	raw := bb.NewBitCast(alloca, ptrI8)

	if payload == nil {
		bb.NewStore(llvmconstant.NewZeroInitializer(arr), alloca)
	} else {
		ptr := bb.NewGetElementPtr(llvmtypes.I8, raw, llvmconstant.NewInt(llvmtypes.I64, int64(payloadOffset)))
		typed := bb.NewBitCast(ptr, llvmtypes.NewPointer(payload.Type()))
		bb.NewStore(payload, typed)
	}

	if tagBytes > 0 {
		tagType := intTypeForWidth(tagBytes)
		ptr := bb.NewGetElementPtr(llvmtypes.I8, raw, llvmconstant.NewInt(llvmtypes.I64, int64(payloadBytes)))
		typed := bb.NewBitCast(ptr, llvmtypes.NewPointer(tagType))
		bb.NewStore(llvmconstant.NewInt(tagType, tagVal), typed)
	}

	return bb.NewLoad(arr, alloca), nil
}

func (e *Emitter) unpackBytes(bb *llvmir.Block, arr *llvmtypes.ArrayType, packed llvmvalue.Value, payloadType llvmtypes.Type, payloadOffset int) llvmvalue.Value {
	alloca := bb.NewAlloca(arr)
	bb.NewStore(packed, alloca)
	raw := bb.NewBitCast(alloca, ptrI8)
	ptr := bb.NewGetElementPtr(llvmtypes.I8, raw, llvmconstant.NewInt(llvmtypes.I64, int64(payloadOffset)))
	typed := bb.NewBitCast(ptr, llvmtypes.NewPointer(payloadType))
	return bb.NewLoad(payloadType, typed)
}

func intTypeForWidth(bytes int) *llvmtypes.IntType {
	switch {
	case bytes <= 1:
		return llvmtypes.I8
	case bytes <= 2:
		return llvmtypes.I16
	case bytes <= 4:
		return llvmtypes.I32
	default:
		return llvmtypes.I64
	}
}
