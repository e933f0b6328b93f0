// Unless explicitly stated otherwise all files in this repository are licensed
// under the Apache License Version 2.0.
// This product includes software developed as part of the siltc project.

// Package diag holds the tagged failure kinds used throughout siltc.
// Errors are returned, never raised as ambient exceptions (spec §7):
// every fallible constructor, verifier, or parser entry point returns an
// error implementing this package's Kind() method so callers can branch
// with errors.As instead of string-matching messages.
package diag

import (
	"fmt"
)

// Kind identifies one of the five tagged failure classes from spec §7.
type Kind int

const (
	// KindIllFormedInput covers lexer/parser/layout errors.
	KindIllFormedInput Kind = iota
	// KindVerificationFailure covers unknown type, arity mismatch, type
	// mismatch, or a continuation without a terminal.
	KindVerificationFailure
	// KindIllTypedConstruction covers IR builder precondition violations.
	KindIllTypedConstruction
	// KindRedefinitionError covers a second definition for a named value
	// while a forward reference is outstanding.
	KindRedefinitionError
	// KindInternalInvariantViolation is reserved for conditions the
	// implementation must treat as fatal regardless of input.
	KindInternalInvariantViolation
)

func (k Kind) String() string {
	switch k {
	case KindIllFormedInput:
		return "IllFormedInput"
	case KindVerificationFailure:
		return "VerificationFailure"
	case KindIllTypedConstruction:
		return "IllTypedConstruction"
	case KindRedefinitionError:
		return "RedefinitionError"
	case KindInternalInvariantViolation:
		return "InternalInvariantViolation"
	default:
		return "UnknownKind"
	}
}

// Span is a token/source span, used by IllFormedInput to point at the
// offending token. The zero Span means "no span" (synthetic input).
type Span struct {
	File        string
	Line, Col   int
	EndLine     int
	EndCol      int
}

// Error is the concrete error type every package in siltc returns for a
// tagged failure.
type Error struct {
	Kind    Kind
	Message string
	Span    Span
}

func (e *Error) Error() string {
	if e.Span.File != "" {
		return fmt.Sprintf("%s: %s:%d:%d: %s", e.Kind, e.Span.File, e.Span.Line, e.Span.Col, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

// New builds an *Error of the given kind.
func New(kind Kind, format string, args ...interface{}) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// NewAt builds an *Error of the given kind carrying a source span.
func NewAt(kind Kind, span Span, format string, args ...interface{}) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...), Span: span}
}

// IllFormedInput is a convenience constructor for KindIllFormedInput.
func IllFormedInput(span Span, format string, args ...interface{}) *Error {
	return NewAt(KindIllFormedInput, span, format, args...)
}

// VerificationFailure is a convenience constructor for KindVerificationFailure.
func VerificationFailure(format string, args ...interface{}) *Error {
	return New(KindVerificationFailure, format, args...)
}

// IllTypedConstruction is a convenience constructor for KindIllTypedConstruction.
func IllTypedConstruction(format string, args ...interface{}) *Error {
	return New(KindIllTypedConstruction, format, args...)
}

// RedefinitionError is a convenience constructor for KindRedefinitionError.
func RedefinitionError(format string, args ...interface{}) *Error {
	return New(KindRedefinitionError, format, args...)
}

// InternalInvariantViolation is a convenience constructor for
// KindInternalInvariantViolation. Like the other constructors it just
// builds the value; call sites return it as an ordinary error (e.g.
// adding a stage to a pipeline while it is executing).
func InternalInvariantViolation(format string, args ...interface{}) *Error {
	return New(KindInternalInvariantViolation, format, args...)
}

// Is reports whether err is a *Error of the given kind.
func Is(err error, kind Kind) bool {
	e, ok := err.(*Error)
	return ok && e.Kind == kind
}
