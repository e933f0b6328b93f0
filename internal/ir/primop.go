// Unless explicitly stated otherwise all files in this repository are licensed
// under the Apache License Version 2.0.
// This product includes software developed as part of the siltc project.

package ir

// Opcode is one of the primop catalog's ~25 opcodes (spec §4.2, §2).
type Opcode int

const (
	OpApply Opcode = iota
	OpFunctionRef
	OpSwitchConstr
	OpDataInit
	OpDataExtract
	OpTuple
	OpTupleElementAddress
	OpCopyValue
	OpDestroyValue
	OpLoad
	OpStore
	OpAlloca
	OpDealloca
	OpAllocBox
	OpProjectBox
	OpDeallocBox
	OpCopyAddress
	OpDestroyAddress
	OpThicken
	OpForceEffects
	OpUnreachable
)

var opcodeNames = [...]string{
	OpApply:               "apply",
	OpFunctionRef:         "function_ref",
	OpSwitchConstr:        "switch_constr",
	OpDataInit:            "data_init",
	OpDataExtract:         "data_extract",
	OpTuple:               "tuple",
	OpTupleElementAddress: "tuple_element_address",
	OpCopyValue:           "copy_value",
	OpDestroyValue:        "destroy_value",
	OpLoad:                "load",
	OpStore:               "store",
	OpAlloca:              "alloca",
	OpDealloca:            "dealloca",
	OpAllocBox:            "alloc_box",
	OpProjectBox:          "project_box",
	OpDeallocBox:          "dealloc_box",
	OpCopyAddress:         "copy_address",
	OpDestroyAddress:      "destroy_address",
	OpThicken:             "thicken",
	OpForceEffects:        "force_effects",
	OpUnreachable:         "unreachable",
}

func (o Opcode) String() string {
	if int(o) >= 0 && int(o) < len(opcodeNames) {
		return opcodeNames[o]
	}
	return "<unknown-opcode>"
}

// IsTerminal reports whether o transfers control out of its continuation
// (apply, switch_constr, unreachable — spec §3/§4.2).
func (o Opcode) IsTerminal() bool {
	return o == OpApply || o == OpSwitchConstr || o == OpUnreachable
}

// IsCleanupKind reports whether o is a destroy/deallocate-kind opcode,
// the only kinds allowed in a Continuation's Cleanups list (spec §3
// invariant).
func (o Opcode) IsCleanupKind() bool {
	switch o {
	case OpDestroyValue, OpDestroyAddress, OpDealloca, OpDeallocBox:
		return true
	default:
		return false
	}
}

// HasResult reports whether o produces a result value distinct from
// "no value" (apply/switch_constr/unreachable are terminals with no
// result; the rest all produce one, §4.2's contract table).
func (o Opcode) HasResult() bool {
	return !o.IsTerminal()
}

// SwitchCase pairs a constructor name with the Successor branching to it
// (spec §4.2 switch_constr).
type SwitchCase struct {
	ConstructorName string
	Successor       *Successor
}

// ScheduleTag distinguishes the scheduler's early placement (spec §4.4,
// implemented) from the reserved, unimplemented late placement.
type ScheduleTag int

const (
	TagEarly ScheduleTag = iota
	TagLate              // reserved, never produced by internal/schedule
)

// PrimOp is a Value with an opcode, an ordered operand list, and
// optionally one result (the primop itself, when Opcode.HasResult) —
// spec §3/§4.2.
type PrimOp struct {
	valueBase
	Opcode       Opcode
	Operands     []*Operand
	Continuation *Continuation
	Tag          ScheduleTag

	// Successors holds the outgoing control-flow edges of a terminal
	// primop; empty for non-terminals. For switch_constr, Cases aligns
	// 1:1 with the case successors and Default (if non-nil) is the
	// trailing default successor, also present in Successors.
	Successors []*Successor
	Cases      []SwitchCase
	Default    *Successor

	// DataType/ConstructorName carry the constructor-level metadata
	// data_init, data_extract, and switch_constr need beyond their plain
	// operand list (spec §4.2).
	DataType        Value
	ConstructorName string

	// Index carries tuple_element_address's element index.
	Index int

	// RefDest is set only on function_ref: the continuation it names.
	// The Successor linking a direct call's terminal to RefDest is wired
	// lazily, when the function_ref is consumed as an apply callee (see
	// builder.go), since the enclosing terminal does not yet
	// exist at function_ref-construction time.
	RefDest *Continuation
}

// AddOperand appends a new operand referencing val, linking it into
// val's use-chain, and returns it.
func (p *PrimOp) AddOperand(val Value) *Operand {
	op := NewOperand(p, val)
	p.Operands = append(p.Operands, op)
	return op
}

// AddSuccessor appends a new Successor to dest, owned by p (p must be a
// terminal primop), and links it into dest's predecessor list.
func (p *PrimOp) AddSuccessor(dest *Continuation) *Successor {
	s := &Successor{Terminal: p}
	s.linkInto(dest)
	p.Successors = append(p.Successors, s)
	return s
}

// DropOperands unlinks every operand of p from its value's use-chain.
// Used when removing p from the module.
func (p *PrimOp) DropOperands() {
	for _, op := range p.Operands {
		Drop(op)
	}
	p.Operands = nil
}

// DropSuccessors unlinks every successor of p from its destination's
// predecessor list. Used when removing p (a terminal) from the module.
func (p *PrimOp) DropSuccessors() {
	for _, s := range p.Successors {
		s.unlink()
	}
	p.Successors = nil
	p.Cases = nil
	p.Default = nil
}
