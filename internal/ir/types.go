// Unless explicitly stated otherwise all files in this repository are licensed
// under the Apache License Version 2.0.
// This product includes software developed as part of the siltc project.

package ir

import (
	"fmt"
	"strings"
)

// Category distinguishes types manipulated directly (object) from types
// manipulated only indirectly, through an address (spec §3).
type Category int

const (
	CategoryObject Category = iota
	CategoryAddress
)

func (c Category) String() string {
	if c == CategoryAddress {
		return "address"
	}
	return "object"
}

// typeBase is embedded by every concrete type value.
type typeBase struct {
	valueBase
	category Category
}

func (t *typeBase) Category() Category { return t.category }

// BottomType is the type of a value that is never produced (the return
// type of unreachable / unreachable-returning continuations).
type BottomType struct{ typeBase }

// TypeType is the type of types (Type : Type, per the surface language's
// `Type` keyword).
type TypeType struct{ typeBase }

// TypeMetadataType is the type of a runtime type-metadata record for Of.
type TypeMetadataType struct {
	typeBase
	Of Value
}

// Constructor is one constructor of a DataType: a name and an optional
// payload type (nil for a payload-less constructor).
type Constructor struct {
	Name    string
	Payload Value // nil, or a Value whose Type() is TypeType
}

// DataType is a nominal sum type (spec's `data` declarations).
type DataType struct {
	typeBase
	DeclName     string
	Constructors []Constructor
}

// ConstructorIndex returns the index of the named constructor, or -1.
func (d *DataType) ConstructorIndex(name string) int {
	for i, c := range d.Constructors {
		if c.Name == name {
			return i
		}
	}
	return -1
}

// Field is one field of a RecordType.
type Field struct {
	Name string
	Type Value
}

// RecordType is a nominal product type (spec's `record` declarations).
type RecordType struct {
	typeBase
	DeclName string
	Fields   []Field
}

// BoxType is a heap-allocated, reference-counted indirection to Boxed.
type BoxType struct {
	typeBase
	Boxed Value
}

// ArchetypeType stands for an abstract (generic) type parameter.
type ArchetypeType struct {
	typeBase
	DeclName string
}

// SubstitutedType is Base with Args substituted for its archetypes.
type SubstitutedType struct {
	typeBase
	Base Value
	Args []Value
}

// FunctionType is a CPS function type: an ordered list of parameter
// types, the last of which (by convention, spec §3) is the return
// continuation's type.
type FunctionType struct {
	typeBase
	Arguments []Value
}

// TupleType is a structural product of Elements.
type TupleType struct {
	typeBase
	Elements []Value
}

// AddressType is the address-category wrapper around Pointee: a pointer
// to a value of Pointee's type, manipulated only indirectly (spec §3:
// "address-category types are manipulated indirectly"; printed with a
// leading `*`, spec §6).
type AddressType struct {
	typeBase
	Pointee Value
}

// ThickFunctionType is the result type of `thicken`: a (function, env)
// pair closing over Underlying's call signature (spec §4.2 thicken).
type ThickFunctionType struct {
	typeBase
	Underlying Value
}

// --- Module-level uniquing (spec §3: "uniqued per module, getOrInsert
// semantics, equality is by structural identity, === suffices after
// uniquing") ---

func (m *Module) newTypeBase(category Category) typeBase {
	return typeBase{valueBase: valueBase{id: m.ids.allocate(), typ: m.typeType}, category: category}
}

func (m *Module) getOrInsert(key string, build func() Value) Value {
	if existing, ok := m.typeTable[key]; ok {
		return existing
	}
	v := build()
	m.typeTable[key] = v
	return v
}

// BottomTypeValue returns the module's unique bottom-type singleton.
func (m *Module) BottomTypeValue() Value { return m.bottomType }

// TypeTypeValue returns the module's unique type-of-types singleton.
func (m *Module) TypeTypeValue() Value { return m.typeType }

// GetOrInsertTypeMetadataType returns the uniqued metadata-type for of.
func (m *Module) GetOrInsertTypeMetadataType(of Value) Value {
	key := "meta(" + typeKey(of) + ")"
	return m.getOrInsert(key, func() Value {
		tb := m.newTypeBase(CategoryObject)
		return &TypeMetadataType{typeBase: tb, Of: of}
	})
}

// GetOrInsertDataType returns the uniqued DataType named name with the
// given constructors; re-declaring the same name with different
// constructors is a RedefinitionError, surfaced by the IR builder rather
// than here (this is a pure cache lookup).
func (m *Module) GetOrInsertDataType(name string, ctors []Constructor) *DataType {
	key := "data:" + name
	v := m.getOrInsert(key, func() Value {
		tb := m.newTypeBase(CategoryObject)
		return &DataType{typeBase: tb, DeclName: name, Constructors: ctors}
	})
	return v.(*DataType)
}

// GetOrInsertRecordType returns the uniqued RecordType named name.
func (m *Module) GetOrInsertRecordType(name string, fields []Field) *RecordType {
	key := "record:" + name
	v := m.getOrInsert(key, func() Value {
		tb := m.newTypeBase(CategoryObject)
		return &RecordType{typeBase: tb, DeclName: name, Fields: fields}
	})
	return v.(*RecordType)
}

// GetOrInsertBoxType returns the uniqued box type wrapping boxed.
func (m *Module) GetOrInsertBoxType(boxed Value) *BoxType {
	key := "box(" + typeKey(boxed) + ")"
	v := m.getOrInsert(key, func() Value {
		tb := m.newTypeBase(CategoryObject)
		return &BoxType{typeBase: tb, Boxed: boxed}
	})
	return v.(*BoxType)
}

// GetOrInsertArchetypeType returns the uniqued archetype named name.
func (m *Module) GetOrInsertArchetypeType(name string) *ArchetypeType {
	key := "archetype:" + name
	v := m.getOrInsert(key, func() Value {
		tb := m.newTypeBase(CategoryObject)
		return &ArchetypeType{typeBase: tb, DeclName: name}
	})
	return v.(*ArchetypeType)
}

// GetOrInsertSubstitutedType returns the uniqued substitution of base
// with args.
func (m *Module) GetOrInsertSubstitutedType(base Value, args []Value) *SubstitutedType {
	key := "subst(" + typeKey(base) + ";" + typeKeys(args) + ")"
	v := m.getOrInsert(key, func() Value {
		tb := m.newTypeBase(CategoryObject)
		return &SubstitutedType{typeBase: tb, Base: base, Args: args}
	})
	return v.(*SubstitutedType)
}

// GetOrInsertFunctionType returns the uniqued function type over args.
func (m *Module) GetOrInsertFunctionType(args []Value) *FunctionType {
	key := "fn(" + typeKeys(args) + ")"
	v := m.getOrInsert(key, func() Value {
		tb := m.newTypeBase(CategoryObject)
		return &FunctionType{typeBase: tb, Arguments: args}
	})
	return v.(*FunctionType)
}

// GetOrInsertTupleType returns the uniqued tuple type over elems.
func (m *Module) GetOrInsertTupleType(elems []Value) *TupleType {
	key := "tuple(" + typeKeys(elems) + ")"
	v := m.getOrInsert(key, func() Value {
		tb := m.newTypeBase(CategoryObject)
		return &TupleType{typeBase: tb, Elements: elems}
	})
	return v.(*TupleType)
}

// GetOrInsertAddressType returns the uniqued address-of-pointee type.
// Address types are always CategoryAddress regardless of pointee.
func (m *Module) GetOrInsertAddressType(pointee Value) *AddressType {
	key := "addr(" + typeKey(pointee) + ")"
	v := m.getOrInsert(key, func() Value {
		tb := m.newTypeBase(CategoryAddress)
		return &AddressType{typeBase: tb, Pointee: pointee}
	})
	return v.(*AddressType)
}

// GetOrInsertThickFunctionType returns the uniqued thick-function type
// closing over underlying's call signature.
func (m *Module) GetOrInsertThickFunctionType(underlying Value) *ThickFunctionType {
	key := "thick(" + typeKey(underlying) + ")"
	v := m.getOrInsert(key, func() Value {
		tb := m.newTypeBase(CategoryObject)
		return &ThickFunctionType{typeBase: tb, Underlying: underlying}
	})
	return v.(*ThickFunctionType)
}

// typeKey produces a structural cache key for a type value, good enough
// to distinguish any two distinct types this package can construct.
// It deliberately does not need to be a parseable or printable format;
// see internal/girtext for the bit-exact textual form (spec §6).
func typeKey(v Value) string {
	switch t := v.(type) {
	case *BottomType:
		return "bottom"
	case *TypeType:
		return "type"
	case *TypeMetadataType:
		return "meta(" + typeKey(t.Of) + ")"
	case *DataType:
		return "data:" + t.DeclName
	case *RecordType:
		return "record:" + t.DeclName
	case *BoxType:
		return "box(" + typeKey(t.Boxed) + ")"
	case *ArchetypeType:
		return "archetype:" + t.DeclName
	case *SubstitutedType:
		return "subst(" + typeKey(t.Base) + ";" + typeKeys(t.Args) + ")"
	case *FunctionType:
		return "fn(" + typeKeys(t.Arguments) + ")"
	case *TupleType:
		return "tuple(" + typeKeys(t.Elements) + ")"
	case *AddressType:
		return "addr(" + typeKey(t.Pointee) + ")"
	case *ThickFunctionType:
		return "thick(" + typeKey(t.Underlying) + ")"
	default:
		return fmt.Sprintf("#%d", v.ID())
	}
}

func typeKeys(vs []Value) string {
	parts := make([]string, len(vs))
	for i, v := range vs {
		parts[i] = typeKey(v)
	}
	return strings.Join(parts, ",")
}

// CategoryOf returns v's address/object category, or CategoryObject for
// values with no meaningful category of their own (the convention the
// verifier and strategy selector both rely on).
func CategoryOf(v Value) Category {
	type categorized interface{ Category() Category }
	if c, ok := v.(categorized); ok {
		return c.Category()
	}
	return CategoryObject
}
