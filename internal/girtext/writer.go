// Unless explicitly stated otherwise all files in this repository are licensed
// under the Apache License Version 2.0.
// This product includes software developed as part of the siltc project.

package girtext

import (
	"fmt"
	"strings"

	"github.com/silt-lang/siltc/internal/ir"
	"github.com/silt-lang/siltc/internal/schedule"
	"github.com/silt-lang/siltc/internal/scope"
)

// Write renders m to its bit-exact textual form (spec §6): every data
// and record type reachable from an entry continuation, printed before
// the entry continuations themselves (one `@name : type { ... }` block
// per entry, scheduled in RPO with one `bbN` per continuation in scope).
func Write(m *ir.Module) string {
	entries := topLevelEntries(m)

	var funcs []*funcPlan
	datas, records := []*ir.DataType{}, []*ir.RecordType{}
	seen := make(map[ir.Value]bool)

	for _, entry := range entries {
		s := scope.Build(entry, nil)
		rpo := scope.ComputeRPO(s)
		sched := schedule.Build(s, rpo)
		funcs = append(funcs, &funcPlan{entry: entry, sched: sched})

		for _, blk := range sched.Blocks {
			for _, p := range blk.Continuation.Params {
				collectTypes(p.Type(), seen, &datas, &records)
			}
			for _, prim := range blk.PrimOps {
				collectTypes(prim.Type(), seen, &datas, &records)
				if dt, ok := prim.DataType.(*ir.DataType); ok {
					collectTypes(dt, seen, &datas, &records)
				}
			}
		}
	}

	var b strings.Builder
	fmt.Fprintf(&b, "module %s where\n\n", m.Name)

	for _, dt := range datas {
		fmt.Fprintf(&b, "data %s = %s\n\n", dt.DeclName, ctorsString(dt))
	}
	for _, rt := range records {
		fmt.Fprintf(&b, "record %s {%s}\n\n", rt.DeclName, fieldsString(rt))
	}

	for _, fp := range funcs {
		writeFunc(&b, fp)
	}

	return b.String()
}

type funcPlan struct {
	entry *ir.Continuation
	sched *schedule.Schedule
}

func topLevelEntries(m *ir.Module) []*ir.Continuation {
	var out []*ir.Continuation
	for _, c := range m.Continuations() {
		if len(c.Predecessors()) == 0 {
			out = append(out, c)
		}
	}
	return out
}

func ctorsString(dt *ir.DataType) string {
	parts := make([]string, len(dt.Constructors))
	for i, c := range dt.Constructors {
		if c.Payload == nil {
			parts[i] = c.Name
		} else {
			parts[i] = c.Name + " " + typeString(c.Payload)
		}
	}
	return strings.Join(parts, " | ")
}

func fieldsString(rt *ir.RecordType) string {
	if len(rt.Fields) == 0 {
		return ""
	}
	parts := make([]string, len(rt.Fields))
	for i, f := range rt.Fields {
		parts[i] = " " + f.Name + ": " + typeString(f.Type)
	}
	return strings.Join(parts, ",") + " "
}

// collectTypes registers every DataType/RecordType reachable from t
// (including through constructor payloads and record fields) into datas
// and records, in first-discovery order, guarding against the
// self-referential payloads recursive data declarations produce.
func collectTypes(t ir.Value, seen map[ir.Value]bool, datas *[]*ir.DataType, records *[]*ir.RecordType) {
	if t == nil || seen[t] {
		return
	}
	seen[t] = true
	switch v := t.(type) {
	case *ir.DataType:
		*datas = append(*datas, v)
		for _, c := range v.Constructors {
			collectTypes(c.Payload, seen, datas, records)
		}
	case *ir.RecordType:
		*records = append(*records, v)
		for _, f := range v.Fields {
			collectTypes(f.Type, seen, datas, records)
		}
	case *ir.TypeMetadataType:
		collectTypes(v.Of, seen, datas, records)
	case *ir.BoxType:
		collectTypes(v.Boxed, seen, datas, records)
	case *ir.SubstitutedType:
		collectTypes(v.Base, seen, datas, records)
		for _, a := range v.Args {
			collectTypes(a, seen, datas, records)
		}
	case *ir.FunctionType:
		for _, a := range v.Arguments {
			collectTypes(a, seen, datas, records)
		}
	case *ir.TupleType:
		for _, e := range v.Elements {
			collectTypes(e, seen, datas, records)
		}
	case *ir.AddressType:
		collectTypes(v.Pointee, seen, datas, records)
	case *ir.ThickFunctionType:
		collectTypes(v.Underlying, seen, datas, records)
	}
}

func writeFunc(b *strings.Builder, fp *funcPlan) {
	lookup := make(map[*ir.Continuation]int, len(fp.sched.Blocks))
	for i, blk := range fp.sched.Blocks {
		lookup[blk.Continuation] = i
	}
	blockIndexLookup = lookup

	fmt.Fprintf(b, "@%s : %s {\n", fp.entry.Name(), typeString(fp.entry.FunctionType()))
	for i, blk := range fp.sched.Blocks {
		writeBlock(b, i, blk)
	}
	b.WriteString("}\n\n")
}

func writeBlock(b *strings.Builder, index int, blk *schedule.Block) {
	params := blk.Continuation.Params
	parts := make([]string, len(params))
	for i, p := range params {
		parts[i] = "%" + p.Name() + ": " + typeString(p.Type())
		if p.Ownership == ir.OwnershipBorrowed {
			parts[i] += " borrowed"
		}
	}
	fmt.Fprintf(b, "bb%d(%s):\n", index, strings.Join(parts, ", "))

	labels := make(map[ir.Value]string)
	temp := 0
	nextLabel := func() string {
		l := fmt.Sprintf("t%d", temp)
		temp++
		return l
	}
	for _, p := range params {
		labels[p] = p.Name()
	}

	operand := func(v ir.Value) string {
		if l, ok := labels[v]; ok {
			return "%" + l
		}
		return "%" + v.Name()
	}

	for _, p := range blk.PrimOps {
		args := instrArgs(p, operand)
		if hasPrintableResult(p.Opcode) {
			label := p.Name()
			if label == "" {
				label = nextLabel()
			}
			labels[p] = label
			fmt.Fprintf(b, "  %%%s = %s(%s)\n", label, p.Opcode, strings.Join(args, ", "))
		} else {
			fmt.Fprintf(b, "  %s(%s)\n", p.Opcode, strings.Join(args, ", "))
		}
	}
}

// hasPrintableResult reports whether p's opcode produces a value other
// instructions can reference. Opcode.HasResult is true for more opcodes
// than this (it only excludes terminals), but store/copy_address and the
// cleanup-kind ops are constructed with a nil result type (spec §4.2
// contract table) and never appear as another instruction's operand.
func hasPrintableResult(op ir.Opcode) bool {
	switch op {
	case ir.OpApply, ir.OpSwitchConstr, ir.OpUnreachable,
		ir.OpStore, ir.OpCopyAddress,
		ir.OpDestroyValue, ir.OpDestroyAddress, ir.OpDealloca, ir.OpDeallocBox:
		return false
	default:
		return true
	}
}

// instrArgs renders p's argument list in the uniform per-opcode order
// the decode pass in decode.go expects.
func instrArgs(p *ir.PrimOp, operand func(ir.Value) string) []string {
	switch p.Opcode {
	case ir.OpApply:
		args := []string{operand(p.Operands[0].Value())}
		for _, op := range p.Operands[1:] {
			args = append(args, operand(op.Value()))
		}
		return args

	case ir.OpFunctionRef:
		return []string{"@" + p.RefDest.Name()}

	case ir.OpSwitchConstr:
		args := []string{operand(p.Operands[0].Value())}
		for _, cs := range p.Cases {
			args = append(args, fmt.Sprintf("%s -> bb%d", cs.ConstructorName, blockIndexOf(cs.Successor.Dest)))
		}
		if p.Default != nil {
			args = append(args, fmt.Sprintf("default -> bb%d", blockIndexOf(p.Default.Dest)))
		}
		return args

	case ir.OpDataInit:
		dt := p.DataType.(*ir.DataType)
		args := []string{dt.DeclName, p.ConstructorName}
		if len(p.Operands) > 0 {
			args = append(args, operand(p.Operands[0].Value()))
		}
		return args

	case ir.OpDataExtract:
		return []string{operand(p.Operands[0].Value()), p.ConstructorName}

	case ir.OpTuple:
		var args []string
		for _, op := range p.Operands {
			args = append(args, operand(op.Value()))
		}
		return args

	case ir.OpTupleElementAddress:
		return []string{operand(p.Operands[0].Value()), fmt.Sprintf("%d", p.Index)}

	case ir.OpAlloca:
		return []string{typeString(p.Type().(*ir.AddressType).Pointee)}

	case ir.OpAllocBox:
		return []string{typeString(p.Type().(*ir.BoxType).Boxed)}

	case ir.OpStore:
		return []string{operand(p.Operands[0].Value()), operand(p.Operands[1].Value())}

	case ir.OpCopyAddress:
		return []string{operand(p.Operands[0].Value()), operand(p.Operands[1].Value())}

	default:
		// copy_value, destroy_value, load, dealloca, project_box,
		// dealloc_box, destroy_address, thicken, force_effects: one
		// operand, no further metadata.
		if len(p.Operands) == 0 {
			return nil
		}
		return []string{operand(p.Operands[0].Value())}
	}
}

// blockIndexOf is resolved at write time by the enclosing function's
// schedule; wired through a package-level lookup populated per function
// write to keep instrArgs free of extra plumbing.
var blockIndexLookup map[*ir.Continuation]int

func blockIndexOf(c *ir.Continuation) int {
	return blockIndexLookup[c]
}

// typeString renders t in the textual type grammar (spec §6: address
// category prefixed `*`).
func typeString(t ir.Value) string {
	switch v := t.(type) {
	case *ir.BottomType:
		return "_"
	case *ir.TypeType:
		return "Type"
	case *ir.TypeMetadataType:
		return "Meta<" + typeString(v.Of) + ">"
	case *ir.DataType:
		return v.DeclName
	case *ir.RecordType:
		return v.DeclName
	case *ir.BoxType:
		return "Box<" + typeString(v.Boxed) + ">"
	case *ir.ArchetypeType:
		return v.DeclName
	case *ir.SubstitutedType:
		return baseName(v.Base) + "<" + typeStrings(v.Args) + ">"
	case *ir.FunctionType:
		return "(" + typeStrings(v.Arguments) + ") -> _"
	case *ir.TupleType:
		return "(" + typeStrings(v.Elements) + ")"
	case *ir.AddressType:
		return "*" + typeString(v.Pointee)
	case *ir.ThickFunctionType:
		return "Thick " + typeString(v.Underlying)
	default:
		return "_"
	}
}

func baseName(t ir.Value) string {
	switch v := t.(type) {
	case *ir.DataType:
		return v.DeclName
	case *ir.RecordType:
		return v.DeclName
	case *ir.ArchetypeType:
		return v.DeclName
	default:
		return typeString(t)
	}
}

func typeStrings(ts []ir.Value) string {
	parts := make([]string, len(ts))
	for i, t := range ts {
		parts[i] = typeString(t)
	}
	return strings.Join(parts, ", ")
}
