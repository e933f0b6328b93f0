// Unless explicitly stated otherwise all files in this repository are licensed
// under the Apache License Version 2.0.
// This product includes software developed as part of the siltc project.

package strategy

// Multi-payload (P>1: more than one payload-carrying constructor) is
// named by spec §4.6 but explicitly left unspecified: "implementation
// may fatal-error until added." Select reports
// diag.InternalInvariantViolation for this shape directly rather than
// constructing a placeholder strategy, so there is intentionally no
// multiPayloadStrategy type here — the remaining four strategies
// (Natural, Newtype, Single-bit, No-payload) plus Single-payload cover
// every shape this package is asked to lay out.
