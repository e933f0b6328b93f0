// Unless explicitly stated otherwise all files in this repository are licensed
// under the Apache License Version 2.0.
// This product includes software developed as part of the siltc project.

package codegen

import (
	llvmir "github.com/llir/llvm/ir"
	llvmconstant "github.com/llir/llvm/ir/constant"
	llvmenum "github.com/llir/llvm/ir/enum"
	llvmtypes "github.com/llir/llvm/ir/types"
	llvmvalue "github.com/llir/llvm/ir/value"

	"github.com/silt-lang/siltc/internal/diag"
	"github.com/silt-lang/siltc/internal/ir"
)

// emitTerminal lowers a continuation's terminal primop: apply (to the
// return parameter, a direct function_ref in scope, or a cross-function
// call), switch_constr, or unreachable.
func (e *Emitter) emitTerminal(bb *llvmir.Block, p *ir.PrimOp) error {
	switch p.Opcode {
	case ir.OpUnreachable:
		bb.NewUnreachable()
		return nil
	case ir.OpApply:
		return e.emitApply(bb, p)
	case ir.OpSwitchConstr:
		return e.emitSwitch(bb, p)
	default:
		return diag.InternalInvariantViolation("codegen: opcode %s is not a terminal", p.Opcode)
	}
}

func (e *Emitter) emitApply(bb *llvmir.Block, p *ir.PrimOp) error {
	callee := p.Operands[0].Value()

	if param, ok := callee.(*ir.Parameter); ok && param == e.currentReturn {
		if len(p.Operands) < 2 {
			bb.NewRet(nil)
			return nil
		}
		bb.NewRet(e.values[p.Operands[1].Value()])
		return nil
	}

	fref, ok := callee.(*ir.PrimOp)
	if !ok || fref.Opcode != ir.OpFunctionRef || fref.RefDest == nil {
		return diag.VerificationFailure("codegen: apply callee is neither the return continuation nor a direct function_ref")
	}
	dest := fref.RefDest

	if destBlock, ok := e.blocks[dest]; ok {
		// A branch within the current scope: wire each argument as an
		// incoming phi edge from this block, then jump.
		args := p.Operands[1:]
		ai := 0
		for _, dp := range dest.Params {
			if isTypeLevelParam(dp) {
				continue
			}
			if ai >= len(args) {
				break
			}
			phi := e.values[dp].(*llvmir.InstPhi)
			phi.Incs = append(phi.Incs, llvmir.NewIncoming(e.values[args[ai].Value()], bb))
			ai++
		}
		bb.NewBr(destBlock)
		return nil
	}

	if fn, ok := e.funcs[dest]; ok {
		// A call to another top-level function: model as a direct call
		// followed immediately by returning (or discarding) its result.
		// True whole-program CPS-to-direct-style tail calls are out of
		// scope for this driver (a documented simplification).
		var args []llvmvalue.Value
		for _, op := range p.Operands[1:] {
			if v := e.values[op.Value()]; v != nil {
				args = append(args, v)
			}
		}
		call := bb.NewCall(fn, args...)
		if fn.Sig.RetType == llvmtypes.Void {
			bb.NewRet(nil)
		} else {
			bb.NewRet(call)
		}
		return nil
	}

	return diag.VerificationFailure("codegen: apply callee %q resolves to neither a scope block nor a top-level function", dest.Name())
}

func payloadCtorNameOf(dt *ir.DataType) string {
	for _, c := range dt.Constructors {
		if c.Payload != nil {
			return c.Name
		}
	}
	return ""
}

// tagValueForCtor reproduces the single-payload strategy's discriminator
// numbering (payload ctor implicitly 0, every other ctor numbered 1..q
// in declaration order) independently of the strategy's private state,
// since both are driven by the same public dt.Constructors order.
func tagValueForCtor(dt *ir.DataType, ctorName, payloadCtorName string) int64 {
	if ctorName == payloadCtorName {
		return 0
	}
	next := int64(1)
	for _, c := range dt.Constructors {
		if c.Payload != nil {
			continue
		}
		if c.Name == ctorName {
			return next
		}
		next++
	}
	return -1
}

func (e *Emitter) emitSwitch(bb *llvmir.Block, p *ir.PrimOp) error {
	dt, ok := p.DataType.(*ir.DataType)
	if !ok {
		return diag.VerificationFailure("codegen: switch_constr with no data type")
	}
	strat, err := e.strategyFor(dt)
	if err != nil {
		return err
	}
	lowering := strat.LowerSwitch(p.Cases, p.Default != nil)
	scrutinee := e.operand(p, 0)

	switch lowering.Kind {
	case "unconditional":
		var dest *ir.Continuation
		if len(p.Cases) > 0 {
			dest = p.Cases[0].Successor.Dest
		} else if p.Default != nil {
			dest = p.Default.Dest
		}
		bb.NewBr(e.blocks[dest])
		return nil

	case "zero-compare", "two-way-compare":
		return e.emitNaturalCompare(bb, dt, p, scrutinee)

	case "cond-branch":
		falseName, trueName := dt.Constructors[0].Name, dt.Constructors[1].Name
		var trueDest, falseDest *ir.Continuation
		for _, cs := range p.Cases {
			switch cs.ConstructorName {
			case trueName:
				trueDest = cs.Successor.Dest
			case falseName:
				falseDest = cs.Successor.Dest
			}
		}
		if trueDest == nil && p.Default != nil {
			trueDest = p.Default.Dest
		}
		if falseDest == nil && p.Default != nil {
			falseDest = p.Default.Dest
		}
		cmp := bb.NewICmp(llvmenum.IPredEQ, scrutinee, llvmconstant.True)
		bb.NewCondBr(cmp, e.blocks[trueDest], e.blocks[falseDest])
		return nil

	case "switch":
		var defaultDest *ir.Continuation
		if p.Default != nil {
			defaultDest = p.Default.Dest
		} else if len(p.Cases) > 0 {
			defaultDest = p.Cases[0].Successor.Dest
		}
		tagType := scrutinee.Type().(*llvmtypes.IntType)
		var cases []*llvmir.Case
		for _, cs := range p.Cases {
			idx := dt.ConstructorIndex(cs.ConstructorName)
			cases = append(cases, llvmir.NewCase(llvmconstant.NewInt(tagType, int64(idx)), e.blocks[cs.Successor.Dest]))
		}
		bb.NewSwitch(scrutinee, e.blocks[defaultDest], cases...)
		return nil

	case "payload-compare":
		payloadCtorName := payloadCtorNameOf(dt)
		schema := strat.Schema()
		payloadBytes := int(schema[0].LLVMType.(*llvmtypes.ArrayType).Len)
		tagByte := bb.NewExtractValue(scrutinee, uint64(payloadBytes))

		var defaultDest *ir.Continuation
		if p.Default != nil {
			defaultDest = p.Default.Dest
		} else if len(p.Cases) > 0 {
			defaultDest = p.Cases[0].Successor.Dest
		}
		var cases []*llvmir.Case
		for _, cs := range p.Cases {
			tag := tagValueForCtor(dt, cs.ConstructorName, payloadCtorName)
			cases = append(cases, llvmir.NewCase(llvmconstant.NewInt(llvmtypes.I8, tag), e.blocks[cs.Successor.Dest]))
		}
		bb.NewSwitch(tagByte, e.blocks[defaultDest], cases...)
		return nil

	default:
		return diag.InternalInvariantViolation("codegen: unhandled switch lowering kind %q", lowering.Kind)
	}
}

// emitNaturalCompare implements the Natural strategy's zero-compare and
// two-way-compare rows: an icmp against the integer zero representation,
// true branching to the zero case and false to the successor case
// (falling back to the default destination for whichever side has no
// explicit case).
func (e *Emitter) emitNaturalCompare(bb *llvmir.Block, dt *ir.DataType, p *ir.PrimOp, scrutinee llvmvalue.Value) error {
	var zeroCtor, succCtor string
	for _, c := range dt.Constructors {
		if c.Payload == nil {
			zeroCtor = c.Name
		} else {
			succCtor = c.Name
		}
	}
	var zeroDest, succDest *ir.Continuation
	for _, cs := range p.Cases {
		switch cs.ConstructorName {
		case zeroCtor:
			zeroDest = cs.Successor.Dest
		case succCtor:
			succDest = cs.Successor.Dest
		}
	}
	if zeroDest == nil && p.Default != nil {
		zeroDest = p.Default.Dest
	}
	if succDest == nil && p.Default != nil {
		succDest = p.Default.Dest
	}

	zero := llvmconstant.NewInt(scrutinee.Type().(*llvmtypes.IntType), 0)
	cmp := bb.NewICmp(llvmenum.IPredEQ, scrutinee, zero)
	bb.NewCondBr(cmp, e.blocks[zeroDest], e.blocks[succDest])
	return nil
}
