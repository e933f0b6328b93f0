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

// newtypeStrategy implements spec §4.6's Newtype representation: N<=1
// constructors, storage equals the sole payload's storage (or empty for
// a data type with no constructors at all).
type newtypeStrategy struct {
	base
	ctorName string
	hasCtor  bool
}

func newNewtypeStrategy(m *ir.Module, dt *ir.DataType) *newtypeStrategy {
	s := &newtypeStrategy{base: base{module: m, dataType: dt, alignment: 1}}
	if len(dt.Constructors) == 1 {
		s.ctorName = dt.Constructors[0].Name
		s.hasCtor = true
	}
	s.llvmType = llvmtypes.Void
	return s
}

func (s *newtypeStrategy) Schema() typeinfo.Schema {
	if !s.hasCtor {
		return nil
	}
	return typeinfo.Schema{{Kind: typeinfo.ElementAggregate, LLVMType: s.llvmType, Alignment: s.alignment}}
}

func (s *newtypeStrategy) Construct(ctorName string, payload ir.Value) (typeinfo.Op, error) {
	if !s.hasCtor || ctorName != s.ctorName {
		return typeinfo.Op{}, diag.IllTypedConstruction("newtype strategy: unknown constructor %q", ctorName)
	}
	if payload == nil {
		return typeinfo.Op{Kind: "newtype.empty"}, nil
	}
	return typeinfo.Op{Kind: "newtype.identity", Operands: []ir.Value{payload}}, nil
}

func (s *newtypeStrategy) Destruct(value ir.Value, ctorName string) (typeinfo.Op, error) {
	if !s.hasCtor || ctorName != s.ctorName {
		return typeinfo.Op{}, diag.IllTypedConstruction("newtype strategy: unknown constructor %q", ctorName)
	}
	return typeinfo.Op{Kind: "newtype.identity", Operands: []ir.Value{value}}, nil
}

// LowerSwitch implements spec §4.6's Newtype row: unconditional branch
// to the single destination.
func (s *newtypeStrategy) LowerSwitch(cases []ir.SwitchCase, hasDefault bool) SwitchLowering {
	return SwitchLowering{Kind: "unconditional"}
}
