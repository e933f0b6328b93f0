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

// noPayloadStrategy implements spec §4.6's No-payload representation:
// P==0 and Q != 2, storage is the smallest power-of-two-byte integer
// holding ceil(log2(Q-1))+1 bits.
type noPayloadStrategy struct {
	base
	tags map[string]int64
}

func newNoPayloadStrategy(m *ir.Module, dt *ir.DataType) *noPayloadStrategy {
	bits := ceilLog2(len(dt.Constructors)-1) + 1
	bytes := nextPowerOfTwo(byteWidthFor(bits))
	var llvmType llvmtypes.Type
	switch {
	case bytes <= 1:
		llvmType = llvmtypes.I8
	case bytes <= 2:
		llvmType = llvmtypes.I16
	case bytes <= 4:
		llvmType = llvmtypes.I32
	default:
		llvmType = llvmtypes.I64
	}
	s := &noPayloadStrategy{
		base: base{module: m, dataType: dt, llvmType: llvmType, alignment: bytes, size: int64(bytes)},
		tags: make(map[string]int64, len(dt.Constructors)),
	}
	for i, ctor := range dt.Constructors {
		s.tags[ctor.Name] = int64(i)
	}
	return s
}

func (s *noPayloadStrategy) Schema() typeinfo.Schema {
	return typeinfo.Schema{{Kind: typeinfo.ElementScalar, LLVMType: s.llvmType, Alignment: s.alignment}}
}

func (s *noPayloadStrategy) Construct(ctorName string, payload ir.Value) (typeinfo.Op, error) {
	tag, ok := s.tags[ctorName]
	if !ok {
		return typeinfo.Op{}, diag.IllTypedConstruction("no-payload strategy: unknown constructor %q", ctorName)
	}
	return typeinfo.Op{Kind: "nopayload.tag", Tag: tag}, nil
}

func (s *noPayloadStrategy) Destruct(value ir.Value, ctorName string) (typeinfo.Op, error) {
	return typeinfo.Op{}, diag.IllTypedConstruction("no-payload strategy: %q has no payload to destruct", ctorName)
}

// LowerSwitch implements spec §4.6's No-payload row: switch on the
// discriminator integer.
func (s *noPayloadStrategy) LowerSwitch(cases []ir.SwitchCase, hasDefault bool) SwitchLowering {
	return SwitchLowering{Kind: "switch"}
}
