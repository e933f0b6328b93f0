// Unless explicitly stated otherwise all files in this repository are licensed
// under the Apache License Version 2.0.
// This product includes software developed as part of the siltc project.

package ir

import (
	"go.uber.org/multierr"

	"github.com/silt-lang/siltc/internal/diag"
	"github.com/silt-lang/siltc/internal/log"
)

// Verify checks every well-formedness invariant spec §3/§4.2 assigns to
// verification time rather than to construction time (construction-time
// checks live in builder.go and can never be violated by a Builder-built
// module; Verify exists for IR read back in from internal/girtext, which
// bypasses the builder). Verify is not allowed to index beyond a
// continuation's first failure: it records the error and moves on to the
// next continuation, returning every accumulated failure joined with
// go.uber.org/multierr.
func Verify(m *Module) error {
	var errs error
	for _, c := range m.Continuations() {
		if err := verifyContinuation(m, c); err != nil {
			log.Global().Errorf("verify: continuation %q failed: %s", c.Name(), err)
			errs = multierr.Append(errs, err)
		}
	}
	return errs
}

func verifyContinuation(m *Module, c *Continuation) error {
	if c.Terminal == nil {
		return diag.VerificationFailure("continuation %q has no terminal", c.Name())
	}
	if !c.Terminal.Opcode.IsTerminal() {
		return diag.VerificationFailure("continuation %q terminal is opcode %s, not a terminal kind", c.Name(), c.Terminal.Opcode)
	}
	for _, cl := range c.Cleanups {
		if !cl.Opcode.IsCleanupKind() {
			return diag.VerificationFailure("continuation %q cleanup list contains non-cleanup opcode %s", c.Name(), cl.Opcode)
		}
	}
	for _, s := range c.Terminal.Successors {
		if s.Dest == nil {
			return diag.VerificationFailure("continuation %q terminal has an unlinked successor", c.Name())
		}
		if m.LookupContinuation(s.Dest.Name()) == nil {
			return diag.VerificationFailure("continuation %q terminal branches to unknown continuation %q", c.Name(), s.Dest.Name())
		}
	}
	switch c.Terminal.Opcode {
	case OpApply:
		if err := verifyApply(c.Terminal); err != nil {
			return err
		}
	case OpSwitchConstr:
		if err := verifySwitchConstr(c.Terminal); err != nil {
			return err
		}
	}
	return nil
}

func verifyApply(p *PrimOp) error {
	if len(p.Operands) == 0 {
		return diag.VerificationFailure("apply has no callee operand")
	}
	callee := p.Operands[0].Value()
	ft, ok := callee.Type().(*FunctionType)
	if !ok {
		return diag.VerificationFailure("apply callee %s is not function-typed", callee.Name())
	}
	args := p.Operands[1:]
	if len(ft.Arguments) != len(args) {
		return diag.VerificationFailure("apply arity mismatch: callee expects %d arguments, got %d", len(ft.Arguments), len(args))
	}
	for i, a := range args {
		if typeKey(a.Value().Type()) != typeKey(ft.Arguments[i]) {
			return diag.VerificationFailure("apply argument %d type mismatch", i)
		}
	}
	return nil
}

func verifySwitchConstr(p *PrimOp) error {
	if len(p.Operands) == 0 {
		return diag.VerificationFailure("switch_constr has no scrutinee operand")
	}
	dt, ok := p.Operands[0].Value().Type().(*DataType)
	if !ok {
		return diag.VerificationFailure("switch_constr scrutinee is not data-typed")
	}
	seen := make(map[string]bool, len(p.Cases))
	for _, cs := range p.Cases {
		if dt.ConstructorIndex(cs.ConstructorName) < 0 {
			return diag.VerificationFailure("switch_constr case names unknown constructor %q of %s", cs.ConstructorName, dt.DeclName)
		}
		if seen[cs.ConstructorName] {
			return diag.VerificationFailure("switch_constr constructor %q named by more than one case", cs.ConstructorName)
		}
		seen[cs.ConstructorName] = true
	}
	if p.Default == nil && len(seen) != len(dt.Constructors) {
		return diag.VerificationFailure("switch_constr on %s is non-exhaustive and has no default", dt.DeclName)
	}
	return nil
}
