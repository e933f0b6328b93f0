// Unless explicitly stated otherwise all files in this repository are licensed
// under the Apache License Version 2.0.
// This product includes software developed as part of the siltc project.

package ir

import (
	"strconv"

	"go.uber.org/atomic"
)

// Module owns the continuations, the uniqued type tables, and the
// top-level bottomType/typeType singletons (spec §3). A Module is not
// safe for concurrent use (spec §5): every mutation assumes exclusive
// access.
type Module struct {
	Name string

	ids idAllocator

	continuations []*Continuation

	bottomType       *BottomType
	typeType         *TypeType
	typeMetadataType *TypeMetadataType

	typeTable map[string]Value

	// nameCounters backs the IR builder's per-base-name uniquification
	// (spec §4.1: "colliding requested names are suffixed .N").
	nameCounters map[string]*atomic.Int64
}

// NewModule creates an empty module named name, with its bottomType and
// typeType singletons already inserted.
func NewModule(name string) *Module {
	m := &Module{
		Name:         name,
		typeTable:    make(map[string]Value),
		nameCounters: make(map[string]*atomic.Int64),
	}
	m.typeType = &TypeType{typeBase: typeBase{valueBase: valueBase{id: m.ids.allocate()}, category: CategoryObject}}
	m.typeType.typ = m.typeType // Type : Type
	m.typeTable["type"] = m.typeType

	m.bottomType = &BottomType{typeBase: m.newTypeBase(CategoryObject)}
	m.typeTable["bottom"] = m.bottomType

	return m
}

// Continuations returns every continuation currently owned by m, in
// creation order.
func (m *Module) Continuations() []*Continuation {
	out := make([]*Continuation, len(m.continuations))
	copy(out, m.continuations)
	return out
}

// LookupContinuation returns the continuation named name, or nil.
func (m *Module) LookupContinuation(name string) *Continuation {
	for _, c := range m.continuations {
		if c.Name() == name {
			return c
		}
	}
	return nil
}

// addContinuation registers c as owned by m. Used only by the builder.
func (m *Module) addContinuation(c *Continuation) {
	c.Module = m
	m.continuations = append(m.continuations, c)
}

// RemoveContinuation drops c from m. Per spec §3 lifecycle rules, callers
// must have already dropped the uses on all of c's parameters (c must
// have no remaining users of any parameter) and c must have no
// predecessors.
func (m *Module) RemoveContinuation(c *Continuation) {
	for i, existing := range m.continuations {
		if existing == c {
			m.continuations = append(m.continuations[:i], m.continuations[i+1:]...)
			break
		}
	}
}

// uniqueName returns a name guaranteed unused so far in env (an
// arbitrary namespace string, typically "" for the module's continuation
// namespace or a continuation's name for its parameter namespace),
// suffixing requested with ".N" on collision (spec §4.1).
func (m *Module) uniqueName(env, requested string) string {
	key := env + "\x00" + requested
	counter, ok := m.nameCounters[key]
	if !ok {
		counter = atomic.NewInt64(0)
		m.nameCounters[key] = counter
		return requested
	}
	n := counter.Inc()
	return requested + "." + strconv.FormatInt(n, 10)
}
