// Unless explicitly stated otherwise all files in this repository are licensed
// under the Apache License Version 2.0.
// This product includes software developed as part of the siltc project.

package strategy

import (
	"math/bits"

	llvmtypes "github.com/llir/llvm/ir/types"

	"github.com/silt-lang/siltc/internal/ir"
	"github.com/silt-lang/siltc/internal/typeinfo"
)

// base holds the fields and default TypeInfo method bodies every
// strategy shares, following the teacher corpus's habit of embedding a
// common struct and overriding only what differs (spec §9: "model it as
// a trait/interface with default methods").
type base struct {
	module    *ir.Module
	dataType  *ir.DataType
	llvmType  llvmtypes.Type
	alignment int

	// size is this strategy's byte width. Every strategy but Newtype
	// sets it at construction time; Newtype's own size is only as fixed
	// as its sole payload's, so it leaves size at its zero value, which
	// fixedByteSizeOf (below) treats as "unknown, fall back".
	size int64
}

func (b *base) Type() ir.Value           { return b.dataType }
func (b *base) DataType() *ir.DataType   { return b.dataType }
func (b *base) LLVMType() llvmtypes.Type { return b.llvmType }
func (b *base) Alignment() int           { return b.alignment }
func (b *base) Kind() typeinfo.Kind      { return typeinfo.KindLoadable }

// FixedSize reports b's byte width, satisfying typeinfo.FixedTypeInfo.
// Zero means "not fixed standalone" (Newtype); callers that care check
// for a positive value rather than trusting zero to mean "empty".
func (b *base) FixedSize() int64 { return b.size }

func (b *base) AllocateStack() typeinfo.LifetimeOp {
	return typeinfo.LifetimeOp{Op: typeinfo.Op{Kind: "lifetime.start"}}
}

func (b *base) DeallocateStack(addr ir.Value) typeinfo.LifetimeOp {
	return typeinfo.LifetimeOp{Op: typeinfo.Op{Kind: "lifetime.end", Operands: []ir.Value{addr}}, Addr: addr}
}

func (b *base) Destroy(addr ir.Value) typeinfo.Op {
	return typeinfo.Op{Kind: "destroy_addr", Operands: []ir.Value{addr}}
}

func (b *base) AssignWithCopy(dst, src ir.Value) typeinfo.Op {
	return typeinfo.Op{Kind: "assign_with_copy", Operands: []ir.Value{dst, src}}
}

// ceilLog2 returns ceil(log2(n)), the number of bits needed to
// discriminate n cases (spec §4.6's tag-width formulas), via
// math/bits.Len on n-1 so that exact powers of two don't round up an
// extra bit.
func ceilLog2(n int) int {
	if n <= 1 {
		return 0
	}
	return bits.Len(uint(n - 1))
}

// byteWidthFor rounds a bit count up to the next whole byte.
func byteWidthFor(bitCount int) int {
	return (bitCount + 7) / 8
}

// primitiveByteSizes is the strategy layer's registry of the built-in
// scalar record types the frontend lowers machine-width numerics to
// (spec §3 lists RecordType as the data model's nominal product type;
// there is no separate "primitive" type kind, so fixed-width numerics
// are conventionally zero-field RecordTypes named after their width).
var primitiveByteSizes = map[string]int{
	"I8": 1, "I16": 2, "I32": 4, "I64": 8,
	"F32": 4, "F64": 8, "Bool": 1,
}

// fixedByteSizeOf returns v's byte size for the purpose of laying out a
// single-payload enum's payload region. Recognized primitive record
// types report their exact width. A nested data type resolves its own
// strategy recursively and, if that strategy reports a Kind of
// KindLoadable and a nonzero FixedSize, uses it exactly; anything else
// (a non-data-type record, a Newtype payload whose size isn't fixed
// standalone, or a selection failure) falls back to a conservative
// pointer-sized (8-byte) placeholder.
func fixedByteSizeOf(m *ir.Module, v ir.Value) int {
	if rt, ok := v.(*ir.RecordType); ok {
		if n, known := primitiveByteSizes[rt.DeclName]; known && len(rt.Fields) == 0 {
			return n
		}
	}
	if dt, ok := v.(*ir.DataType); ok {
		if nested, err := Select(m, dt); err == nil && nested.Kind() == typeinfo.KindLoadable {
			if fx, ok := nested.(typeinfo.FixedTypeInfo); ok {
				if n := fx.FixedSize(); n > 0 {
					return int(n)
				}
			}
		}
	}
	return 8
}

// nextPowerOfTwo rounds n up to the next power of two, minimum 1.
func nextPowerOfTwo(n int) int {
	if n <= 1 {
		return 1
	}
	p := 1
	for p < n {
		p <<= 1
	}
	return p
}
