// Unless explicitly stated otherwise all files in this repository are licensed
// under the Apache License Version 2.0.
// This product includes software developed as part of the siltc project.

// Package typeinfo implements the TypeInfo protocol (spec §4.5): the
// capability set every type carries for stack allocation, destruction,
// and copy/move. Concrete strategies (internal/strategy) each produce a
// TypeInfo implementation; this package only fixes the interface shape
// and the symbolic Op values those implementations return. It holds no
// behavior of its own, and schemas are not memoized.
package typeinfo

import (
	llvmtypes "github.com/llir/llvm/ir/types"

	"github.com/silt-lang/siltc/internal/ir"
)

// ElementKind distinguishes a Schema element that is a single scalar
// LLVM value from one that must be carried as an opaque aggregate.
type ElementKind int

const (
	ElementScalar ElementKind = iota
	ElementAggregate
)

// SchemaElement is one entry of an Explosion.Schema (spec §4.7).
type SchemaElement struct {
	Kind      ElementKind
	LLVMType  llvmtypes.Type
	Alignment int
}

// Schema is the ordered element list an Explosion is shaped like.
type Schema []SchemaElement

// Kind tags which TypeInfo refinement a concrete implementation
// provides, so a call site holding a bare TypeInfo can decide whether
// to probe it for FixedTypeInfo with a single comparison instead of an
// unconditional type assertion (spec §4.5's "tagged-variant Kind()
// method for downcasting at call sites that need it").
type Kind int

const (
	// KindLoadable covers every strategy this driver selects (spec
	// §4.6's five implemented representations): each produces a value
	// directly manipulable without indirection through an address, and
	// each but Newtype has a size fixed at strategy-construction time.
	KindLoadable Kind = iota
)

func (k Kind) String() string {
	switch k {
	case KindLoadable:
		return "Loadable"
	default:
		return "UnknownKind"
	}
}

// TypeInfo is every type's capability set (spec §4.5's base row: schema,
// llvmType, alignment, allocateStack/deallocateStack, destroy,
// assignWithCopy).
type TypeInfo interface {
	Type() ir.Value
	Schema() Schema
	LLVMType() llvmtypes.Type
	Alignment() int
	Kind() Kind

	// AllocateStack/DeallocateStack report the llvm.lifetime.start/end
	// intrinsic calls an emitter must pair around the returned alloca's
	// lifetime, matched one-to-one (spec §4.5).
	AllocateStack() LifetimeOp
	DeallocateStack(addr ir.Value) LifetimeOp

	Destroy(addr ir.Value) Op
	AssignWithCopy(dst, src ir.Value) Op
}

// FixedTypeInfo refines TypeInfo for types whose size is known at
// strategy-construction time. Every strategy implements it through the
// shared base; Newtype (whose size is only as fixed as its sole
// payload's own, recursively) reports zero. fixedByteSizeOf (internal/strategy/base.go) is the call site that
// probes for it when sizing a nested data type's payload region.
type FixedTypeInfo interface {
	TypeInfo
	FixedSize() int64
}

// Op is a symbolic description of an emission-time effect a TypeInfo
// method schedules; the emitter (internal/codegen) is the only consumer
// that turns these into actual llir/llvm instructions, keeping this
// package free of any direct LLVM IR construction.
type Op struct {
	Kind     string
	Operands []ir.Value
	// Tag carries a constant discriminator value for ops that need one
	// (e.g. a strategy's tag-construction op); ops without one leave it
	// at zero.
	Tag int64
}

// LifetimeOp additionally carries the stack address an
// allocate/deallocate pairs with.
type LifetimeOp struct {
	Op
	Addr ir.Value
}
