// Unless explicitly stated otherwise all files in this repository are licensed
// under the Apache License Version 2.0.
// This product includes software developed as part of the siltc project.

package strategy

import (
	llvmtypes "github.com/llir/llvm/ir/types"

	"github.com/silt-lang/siltc/internal/diag"
	"github.com/silt-lang/siltc/internal/ir"
	"github.com/silt-lang/siltc/internal/typeinfo"
)

// naturalStrategy implements spec §4.6's Natural representation: a
// pointer-sized integer where 0 is the non-recursive case and k is the
// k-th application of the recursive successor constructor (scenario B's
// `Nat = zero | succ Nat`). Injection is `add 1`; projection is `sub 1`.
type naturalStrategy struct {
	base
	zeroCtor, succCtor string
}

func newNaturalStrategy(m *ir.Module, dt *ir.DataType) *naturalStrategy {
	s := &naturalStrategy{base: base{module: m, dataType: dt, llvmType: llvmtypes.I64, alignment: 8, size: 8}}
	for _, ctor := range dt.Constructors {
		if ctor.Payload == nil {
			s.zeroCtor = ctor.Name
		} else {
			s.succCtor = ctor.Name
		}
	}
	return s
}

func (s *naturalStrategy) Schema() typeinfo.Schema {
	return typeinfo.Schema{{Kind: typeinfo.ElementScalar, LLVMType: s.llvmType, Alignment: s.alignment}}
}

func (s *naturalStrategy) Construct(ctorName string, payload ir.Value) (typeinfo.Op, error) {
	switch ctorName {
	case s.zeroCtor:
		return typeinfo.Op{Kind: "natural.zero"}, nil
	case s.succCtor:
		return typeinfo.Op{Kind: "natural.add1", Operands: []ir.Value{payload}}, nil
	default:
		return typeinfo.Op{}, diag.IllTypedConstruction("natural strategy: unknown constructor %q", ctorName)
	}
}

func (s *naturalStrategy) Destruct(value ir.Value, ctorName string) (typeinfo.Op, error) {
	if ctorName != s.succCtor {
		return typeinfo.Op{}, diag.IllTypedConstruction("natural strategy: %q has no payload to destruct", ctorName)
	}
	return typeinfo.Op{Kind: "natural.sub1", Operands: []ir.Value{value}}, nil
}

// LowerSwitch implements spec §4.6's Natural row: zero-compare for a
// single destination, two-way compare for two without a default, a full
// switch otherwise.
func (s *naturalStrategy) LowerSwitch(cases []ir.SwitchCase, hasDefault bool) SwitchLowering {
	switch {
	case len(cases) == 1:
		return SwitchLowering{Kind: "zero-compare"}
	case len(cases) == 2 && !hasDefault:
		return SwitchLowering{Kind: "two-way-compare"}
	default:
		return SwitchLowering{Kind: "switch"}
	}
}
