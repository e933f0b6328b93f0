// Unless explicitly stated otherwise all files in this repository are licensed
// under the Apache License Version 2.0.
// This product includes software developed as part of the siltc project.

package girtext

import (
	"strconv"
	"strings"

	"go.uber.org/multierr"

	"github.com/silt-lang/siltc/internal/diag"
	"github.com/silt-lang/siltc/internal/ir"
)

// decoder rebuilds an *ir.Module from a parsed astModule: a pre-pass
// registers every data/record type declaration and every function's
// entry continuation (so forward and mutually-recursive references
// resolve), then a second pass decodes each function's block bodies.
type decoder struct {
	m     *ir.Module
	b     *ir.Builder
	types map[string]ir.Value
	funcs map[string]*ir.Continuation
}

// decode converts a parsed module into an *ir.Module. It never aborts at
// the first malformed declaration: every data/record/function declaration
// is its own recovery boundary, and decoding continues to the next one,
// joining every failure into the returned error with go.uber.org/multierr
// (nil if none occurred). Only the failing part is left out of the built
// module: a constructor or field whose type fails to resolve is dropped
// from its otherwise-kept declaration, a function whose entry block fails
// to declare is dropped whole, and a failing block or instruction is
// dropped from its function while the rest of the body is kept. Later
// references to a dropped part report their own "unknown ..."/"undefined
// reference" errors.
func decode(am *astModule) (*ir.Module, error) {
	m := ir.NewModule(am.Name)
	d := &decoder{
		m:     m,
		b:     ir.NewBuilder(m),
		types: make(map[string]ir.Value),
		funcs: make(map[string]*ir.Continuation),
	}

	var dataDecls []*astDataDecl
	var recordDecls []*astRecordDecl
	var funcDecls []*astFuncDecl
	for _, decl := range am.Decls {
		switch {
		case decl.Data != nil:
			dataDecls = append(dataDecls, decl.Data)
			d.types[decl.Data.Name] = m.GetOrInsertDataType(decl.Data.Name, nil)
		case decl.Record != nil:
			recordDecls = append(recordDecls, decl.Record)
			d.types[decl.Record.Name] = m.GetOrInsertRecordType(decl.Record.Name, nil)
		case decl.Func != nil:
			funcDecls = append(funcDecls, decl.Func)
		}
	}

	var errs error
	for _, dd := range dataDecls {
		dt := d.types[dd.Name].(*ir.DataType)
		ctors := make([]ir.Constructor, 0, len(dd.Ctors))
		for _, c := range dd.Ctors {
			var payload ir.Value
			if c.Payload != nil {
				var err error
				payload, err = d.resolveType(c.Payload)
				if err != nil {
					errs = multierr.Append(errs, err)
					continue
				}
			}
			ctors = append(ctors, ir.Constructor{Name: c.Name, Payload: payload})
		}
		dt.Constructors = ctors
	}
	for _, rd := range recordDecls {
		rt := d.types[rd.Name].(*ir.RecordType)
		fields := make([]ir.Field, 0, len(rd.Fields))
		for _, f := range rd.Fields {
			ft, err := d.resolveType(f.Type)
			if err != nil {
				errs = multierr.Append(errs, err)
				continue
			}
			fields = append(fields, ir.Field{Name: f.Name, Type: ft})
		}
		rt.Fields = fields
	}

	for _, fd := range funcDecls {
		entry, err := d.declareFunc(fd)
		if err != nil {
			errs = multierr.Append(errs, err)
			continue
		}
		d.funcs[entry.Name()] = entry
	}
	for _, fd := range funcDecls {
		if _, ok := d.funcs[strings.TrimPrefix(fd.Name, "@")]; !ok {
			continue
		}
		if err := d.decodeFunc(fd); err != nil {
			errs = multierr.Append(errs, err)
		}
	}

	return m, errs
}

// resolveType maps an astType to its ir.Value, looking up named types
// among the data/record declarations decoded so far (or synthesizing an
// ArchetypeType for an otherwise-unknown bare name, e.g. a generic type
// parameter).
func (d *decoder) resolveType(t *astType) (ir.Value, error) {
	switch {
	case t.Func != nil:
		args := make([]ir.Value, len(t.Func.Args))
		for i, a := range t.Func.Args {
			v, err := d.resolveType(a)
			if err != nil {
				return nil, err
			}
			args[i] = v
		}
		return d.m.GetOrInsertFunctionType(args), nil

	case t.Tuple != nil:
		elems := make([]ir.Value, len(t.Tuple.Elems))
		for i, e := range t.Tuple.Elems {
			v, err := d.resolveType(e)
			if err != nil {
				return nil, err
			}
			elems[i] = v
		}
		return d.m.GetOrInsertTupleType(elems), nil

	case t.Addr != nil:
		pointee, err := d.resolveType(t.Addr.Pointee)
		if err != nil {
			return nil, err
		}
		return d.m.GetOrInsertAddressType(pointee), nil

	case t.Box != nil:
		inner, err := d.resolveType(t.Box.Inner)
		if err != nil {
			return nil, err
		}
		return d.m.GetOrInsertBoxType(inner), nil

	case t.Meta != nil:
		of, err := d.resolveType(t.Meta.Of)
		if err != nil {
			return nil, err
		}
		return d.m.GetOrInsertTypeMetadataType(of), nil

	case t.Thick != nil:
		underlying, err := d.resolveType(t.Thick.Underlying)
		if err != nil {
			return nil, err
		}
		return d.m.GetOrInsertThickFunctionType(underlying), nil

	case t.Named != nil:
		return d.resolveNamed(t.Named)

	default:
		return nil, diag.IllFormedInput(diag.Span{}, "girtext: empty type production")
	}
}

func (d *decoder) resolveNamed(n *astNamedType) (ir.Value, error) {
	switch n.Name {
	case "_":
		return d.m.BottomTypeValue(), nil
	case "Type":
		return d.m.TypeTypeValue(), nil
	}
	base, ok := d.types[n.Name]
	if !ok {
		base = d.m.GetOrInsertArchetypeType(n.Name)
		d.types[n.Name] = base
	}
	if len(n.Args) == 0 {
		return base, nil
	}
	args := make([]ir.Value, len(n.Args))
	for i, a := range n.Args {
		v, err := d.resolveType(a)
		if err != nil {
			return nil, err
		}
		args[i] = v
	}
	return d.m.GetOrInsertSubstitutedType(base, args), nil
}

// declareFunc creates fd's entry continuation (its bb0) with its
// parameter list, without yet decoding its instructions.
func (d *decoder) declareFunc(fd *astFuncDecl) (*ir.Continuation, error) {
	if len(fd.Blocks) == 0 {
		return nil, diag.IllFormedInput(diag.Span{}, "girtext: function %s has no blocks", fd.Name)
	}
	specs, err := d.paramSpecs(fd.Blocks[0].Params)
	if err != nil {
		return nil, err
	}
	name := strings.TrimPrefix(fd.Name, "@")
	return d.b.CreateContinuation(name, specs), nil
}

func (d *decoder) paramSpecs(params []*astParam) ([]ir.ParamSpec, error) {
	specs := make([]ir.ParamSpec, len(params))
	for i, p := range params {
		t, err := d.resolveType(p.Type)
		if err != nil {
			return nil, err
		}
		ownership := ir.OwnershipOwned
		if p.Borrowed != "" {
			ownership = ir.OwnershipBorrowed
		}
		specs[i] = ir.ParamSpec{Name: strings.TrimPrefix(p.Name, "%"), Type: t, Ownership: ownership}
	}
	return specs, nil
}

// decodeFunc builds every non-entry block's continuation (a pre-pass, so
// forward branches resolve) then decodes every block's instructions. A
// block whose parameter list fails to resolve is dropped from blocks but
// does not stop its siblings from being declared and decoded; any
// instruction that branches to the dropped block reports its own
// "unknown block" failure rather than this function aborting outright.
func (d *decoder) decodeFunc(fd *astFuncDecl) error {
	entry := d.funcs[strings.TrimPrefix(fd.Name, "@")]

	var errs error
	blocks := make(map[string]*ir.Continuation, len(fd.Blocks))
	blocks[fd.Blocks[0].Label] = entry
	for _, blk := range fd.Blocks[1:] {
		specs, err := d.paramSpecs(blk.Params)
		if err != nil {
			errs = multierr.Append(errs, err)
			continue
		}
		blocks[blk.Label] = d.b.CreateContinuation(blk.Label, specs)
	}

	for _, blk := range fd.Blocks {
		cont, ok := blocks[blk.Label]
		if !ok {
			continue
		}
		vals := make(map[string]ir.Value)
		for i, p := range blk.Params {
			vals[strings.TrimPrefix(p.Name, "%")] = cont.Params[i]
		}
		if err := d.decodeBlock(cont, blk, blocks, vals); err != nil {
			errs = multierr.Append(errs, err)
		}
	}
	return errs
}

// decodeBlock decodes blk's instructions in order. A malformed
// instruction does not stop the rest of the block from decoding: its
// error is accumulated and decoding resumes at the next instruction
// (any later reference to the failed instruction's result then reports
// its own "undefined reference" failure, which is accumulated in turn).
func (d *decoder) decodeBlock(cont *ir.Continuation, blk *astBlock, blocks map[string]*ir.Continuation, vals map[string]ir.Value) error {
	resolve := func(ref string) (ir.Value, error) {
		name := strings.TrimPrefix(ref, "%")
		if v, ok := vals[name]; ok {
			return v, nil
		}
		return nil, diag.IllFormedInput(diag.Span{}, "girtext: undefined reference %%%s", name)
	}

	var errs error
	for _, instr := range blk.Instrs {
		result, err := d.decodeInstr(cont, instr, blocks, resolve)
		if err != nil {
			errs = multierr.Append(errs, err)
			continue
		}
		if result != nil && instr.Result != "" {
			vals[strings.TrimPrefix(instr.Result, "%")] = result
		}
	}
	return errs
}

func (d *decoder) decodeInstr(cont *ir.Continuation, instr *astInstr, blocks map[string]*ir.Continuation, resolve func(string) (ir.Value, error)) (ir.Value, error) {
	args := instr.Args
	operand := func(i int) (ir.Value, error) {
		if i >= len(args) || args[i].Ref == "" {
			return nil, diag.IllFormedInput(diag.Span{}, "girtext: %s missing operand %d", instr.Op, i)
		}
		return resolve(args[i].Ref)
	}
	blockOf := func(label string) (*ir.Continuation, error) {
		c, ok := blocks[label]
		if !ok {
			return nil, diag.IllFormedInput(diag.Span{}, "girtext: unknown block %s", label)
		}
		return c, nil
	}

	switch instr.Op {
	case "apply":
		callee, err := operand(0)
		if err != nil {
			return nil, err
		}
		var rest []ir.Value
		for i := 1; i < len(args); i++ {
			v, err := operand(i)
			if err != nil {
				return nil, err
			}
			rest = append(rest, v)
		}
		p, err := d.b.CreateApply(cont, callee, rest)
		return p, err

	case "function_ref":
		if len(args) != 1 || !strings.HasPrefix(args[0].Ref, "@") {
			return nil, diag.IllFormedInput(diag.Span{}, "girtext: function_ref expects one @ operand")
		}
		dest, ok := d.funcs[strings.TrimPrefix(args[0].Ref, "@")]
		if !ok {
			return nil, diag.IllFormedInput(diag.Span{}, "girtext: function_ref to unknown function %s", args[0].Ref)
		}
		return d.b.CreateFunctionRef(cont, dest), nil

	case "switch_constr":
		scrutinee, err := operand(0)
		if err != nil {
			return nil, err
		}
		var cases []ir.CaseSpec
		var defaultDest *ir.Continuation
		for _, a := range args[1:] {
			if a.Case == nil {
				return nil, diag.IllFormedInput(diag.Span{}, "girtext: switch_constr expects ctor -> block arms")
			}
			dest, err := blockOf(a.Case.Dest)
			if err != nil {
				return nil, err
			}
			if a.Case.Ctor == "default" {
				defaultDest = dest
				continue
			}
			cases = append(cases, ir.CaseSpec{ConstructorName: a.Case.Ctor, Dest: dest})
		}
		return d.b.CreateSwitchConstr(cont, scrutinee, cases, defaultDest)

	case "unreachable":
		return d.b.CreateUnreachable(cont), nil

	case "data_init":
		if len(args) < 2 {
			return nil, diag.IllFormedInput(diag.Span{}, "girtext: data_init expects a type and constructor name")
		}
		dt, err := d.dataType(args[0].Ref)
		if err != nil {
			return nil, err
		}
		var payload ir.Value
		if len(args) > 2 {
			payload, err = operand(2)
			if err != nil {
				return nil, err
			}
		}
		return d.b.CreateDataInit(cont, dt, args[1].Ref, payload)

	case "data_extract":
		value, err := operand(0)
		if err != nil {
			return nil, err
		}
		if len(args) < 2 {
			return nil, diag.IllFormedInput(diag.Span{}, "girtext: data_extract expects a constructor name")
		}
		return d.b.CreateDataExtract(cont, value, args[1].Ref)

	case "tuple":
		var elems []ir.Value
		for i := range args {
			v, err := operand(i)
			if err != nil {
				return nil, err
			}
			elems = append(elems, v)
		}
		return d.b.CreateTuple(cont, elems), nil

	case "tuple_element_address":
		addr, err := operand(0)
		if err != nil {
			return nil, err
		}
		idx, err := strconv.Atoi(args[1].Ref)
		if err != nil {
			return nil, diag.IllFormedInput(diag.Span{}, "girtext: tuple_element_address index %q is not a number", args[1].Ref)
		}
		return d.b.CreateTupleElementAddress(cont, addr, idx)

	case "copy_value":
		v, err := operand(0)
		if err != nil {
			return nil, err
		}
		return d.b.CreateCopyValue(cont, v), nil

	case "destroy_value":
		return d.decodeCleanup(cont, ir.OpDestroyValue, operand)
	case "destroy_address":
		return d.decodeCleanup(cont, ir.OpDestroyAddress, operand)
	case "dealloca":
		return d.decodeCleanup(cont, ir.OpDealloca, operand)
	case "dealloc_box":
		return d.decodeCleanup(cont, ir.OpDeallocBox, operand)

	case "load":
		addr, err := operand(0)
		if err != nil {
			return nil, err
		}
		return d.b.CreateLoad(cont, addr)

	case "store":
		value, err := operand(0)
		if err != nil {
			return nil, err
		}
		addr, err := operand(1)
		if err != nil {
			return nil, err
		}
		return d.b.CreateStore(cont, value, addr)

	case "alloca":
		typ, err := d.dataType(args[0].Ref)
		if err != nil {
			return nil, err
		}
		return d.b.CreateAlloca(cont, typ), nil

	case "alloc_box":
		typ, err := d.dataType(args[0].Ref)
		if err != nil {
			return nil, err
		}
		return d.b.CreateAllocBox(cont, typ), nil

	case "project_box":
		box, err := operand(0)
		if err != nil {
			return nil, err
		}
		return d.b.CreateProjectBox(cont, box)

	case "copy_address":
		src, err := operand(0)
		if err != nil {
			return nil, err
		}
		dst, err := operand(1)
		if err != nil {
			return nil, err
		}
		return d.b.CreateCopyAddress(cont, src, dst)

	case "thicken":
		fn, err := operand(0)
		if err != nil {
			return nil, err
		}
		return d.b.CreateThicken(cont, fn)

	case "force_effects":
		v, err := operand(0)
		if err != nil {
			return nil, err
		}
		return d.b.CreateForceEffects(cont, v), nil

	default:
		return nil, diag.IllFormedInput(diag.Span{}, "girtext: unknown opcode %q", instr.Op)
	}
}

func (d *decoder) decodeCleanup(cont *ir.Continuation, opcode ir.Opcode, operand func(int) (ir.Value, error)) (ir.Value, error) {
	v, err := operand(0)
	if err != nil {
		return nil, err
	}
	return d.b.CreateCleanup(cont, opcode, v)
}

func (d *decoder) dataType(name string) (ir.Value, error) {
	t, ok := d.types[name]
	if !ok {
		return nil, diag.IllFormedInput(diag.Span{}, "girtext: unknown type %q", name)
	}
	return t, nil
}
