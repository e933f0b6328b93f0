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

// singlePayloadStrategy implements spec §4.6's Single-payload
// representation (scenario C's `Maybe T = nothing | just T`): layout is
// [payload bytes][tag bytes], tag bytes = ceil(log2(Q+1)) rounded up to
// 8, grouped as packed i8 arrays. The payload constructor packs its
// operand into the payload region; any other constructor writes an
// all-zero payload with its discriminator in the tag bytes.
type singlePayloadStrategy struct {
	base
	payloadCtor  string
	payloadType  ir.Value
	payloadBytes int
	tagBytes     int
	noPayloadTag map[string]int64 // payload-less constructors only; payload ctor's implicit tag is 0
}

func newSinglePayloadStrategy(m *ir.Module, dt *ir.DataType) *singlePayloadStrategy {
	s := &singlePayloadStrategy{
		base:         base{module: m, dataType: dt},
		noPayloadTag: make(map[string]int64),
	}
	q := 0
	for _, ctor := range dt.Constructors {
		if ctor.Payload != nil {
			s.payloadCtor = ctor.Name
			s.payloadType = ctor.Payload
		} else {
			q++
		}
	}
	tagBits := ceilLog2(q + 1)
	s.tagBytes = byteWidthFor(tagBits)
	if s.tagBytes == 0 {
		s.tagBytes = 1
	}
	// Non-payload constructors get discriminators 1..q; 0 is reserved
	// for the payload constructor (spec: "writes ... with the
	// discriminator value in the tag bytes", payload case is the
	// implicit zero-tag case per the construction rule above it).
	next := int64(1)
	for _, ctor := range dt.Constructors {
		if ctor.Payload == nil {
			s.noPayloadTag[ctor.Name] = next
			next++
		}
	}
	s.payloadBytes = fixedByteSizeOf(m, s.payloadType)
	s.llvmType = llvmtypes.NewArray(uint64(s.payloadBytes+s.tagBytes), llvmtypes.I8)
	s.alignment = 1
	s.size = int64(s.payloadBytes + s.tagBytes)
	return s
}

// Schema reports the [payload bytes][tag bytes] layout spec §4.6 names
// (scenario C: `[4×i8; 1×i8]` for `Maybe T=i32`), both grouped as packed
// i8 arrays to avoid odd integer widths.
func (s *singlePayloadStrategy) Schema() typeinfo.Schema {
	return typeinfo.Schema{
		{Kind: typeinfo.ElementAggregate, LLVMType: llvmtypes.NewArray(uint64(s.payloadBytes), llvmtypes.I8), Alignment: 1},
		{Kind: typeinfo.ElementAggregate, LLVMType: llvmtypes.NewArray(uint64(s.tagBytes), llvmtypes.I8), Alignment: 1},
	}
}

func (s *singlePayloadStrategy) Construct(ctorName string, payload ir.Value) (typeinfo.Op, error) {
	if ctorName == s.payloadCtor {
		if payload == nil {
			return typeinfo.Op{}, diag.IllTypedConstruction("single-payload strategy: %q requires a payload", ctorName)
		}
		return typeinfo.Op{Kind: "singlepayload.pack", Operands: []ir.Value{payload}, Tag: 0}, nil
	}
	tag, ok := s.noPayloadTag[ctorName]
	if !ok {
		return typeinfo.Op{}, diag.IllTypedConstruction("single-payload strategy: unknown constructor %q", ctorName)
	}
	return typeinfo.Op{Kind: "singlepayload.zero-with-tag", Tag: tag}, nil
}

func (s *singlePayloadStrategy) Destruct(value ir.Value, ctorName string) (typeinfo.Op, error) {
	if ctorName != s.payloadCtor {
		return typeinfo.Op{}, diag.IllTypedConstruction("single-payload strategy: %q has no payload to destruct", ctorName)
	}
	return typeinfo.Op{Kind: "singlepayload.unpack", Operands: []ir.Value{value}}, nil
}

// LowerSwitch implements spec §4.6's Single-payload row: compare payload
// (tag) bits against the tag index, then branch.
func (s *singlePayloadStrategy) LowerSwitch(cases []ir.SwitchCase, hasDefault bool) SwitchLowering {
	return SwitchLowering{Kind: "payload-compare"}
}
