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

// singleBitStrategy implements spec §4.6's Single-bit representation:
// exactly two payload-less constructors (Q==2, P==0), stored as i1.
type singleBitStrategy struct {
	base
	trueCtor, falseCtor string
}

func newSingleBitStrategy(m *ir.Module, dt *ir.DataType) *singleBitStrategy {
	s := &singleBitStrategy{base: base{module: m, dataType: dt, llvmType: llvmtypes.I1, alignment: 1, size: 1}}
	s.falseCtor = dt.Constructors[0].Name
	s.trueCtor = dt.Constructors[1].Name
	return s
}

func (s *singleBitStrategy) Schema() typeinfo.Schema {
	return typeinfo.Schema{{Kind: typeinfo.ElementScalar, LLVMType: s.llvmType, Alignment: s.alignment}}
}

func (s *singleBitStrategy) bitFor(ctorName string) (bool, bool) {
	switch ctorName {
	case s.trueCtor:
		return true, true
	case s.falseCtor:
		return false, true
	default:
		return false, false
	}
}

func (s *singleBitStrategy) Construct(ctorName string, payload ir.Value) (typeinfo.Op, error) {
	bit, ok := s.bitFor(ctorName)
	if !ok {
		return typeinfo.Op{}, diag.IllTypedConstruction("single-bit strategy: unknown constructor %q", ctorName)
	}
	kind := "singlebit.false"
	if bit {
		kind = "singlebit.true"
	}
	return typeinfo.Op{Kind: kind}, nil
}

func (s *singleBitStrategy) Destruct(value ir.Value, ctorName string) (typeinfo.Op, error) {
	return typeinfo.Op{}, diag.IllTypedConstruction("single-bit strategy: %q has no payload to destruct", ctorName)
}

// LowerSwitch implements spec §4.6's Single-bit row: conditional branch.
func (s *singleBitStrategy) LowerSwitch(cases []ir.SwitchCase, hasDefault bool) SwitchLowering {
	return SwitchLowering{Kind: "cond-branch"}
}
