// Copyright 2015 Dorival Pedroso and Raul Durand. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package fem

import (
	"errors"
	"fmt"

	"github.com/cpmech/gosl/io"
)

// error kinds
var (

	// ErrNotImplemented indicates a formulation branch that is intentionally unhandled
	ErrNotImplemented = errors.New("not implemented")

	// ErrPreconditionViolation indicates an operation invoked before its required lifecycle stage
	// or with inconsistent arguments (e.g. wrongly sized buffers)
	ErrPreconditionViolation = errors.New("precondition violation")

	// ErrInvariantViolation indicates a broken internal assumption; e.g. an unexpected group type
	ErrInvariantViolation = errors.New("invariant violation")

	// ErrAuxNotFound indicates a missing entry in the auxiliary element data
	ErrAuxNotFound = fmt.Errorf("auxiliary data not found: %w", ErrPreconditionViolation)
)

// Error holds the kind of an error and the operation that caused it
type Error struct {
	Kind error  // one of the Err... kinds
	Op   string // operation; e.g. "Predictor.Setup"
	Msg  string // diagnostic message
}

// Error returns the diagnostic message
func (o *Error) Error() string {
	if o.Msg == "" {
		return io.Sf("%s: %v", o.Op, o.Kind)
	}
	return io.Sf("%s: %v: %s", o.Op, o.Kind, o.Msg)
}

// Unwrap returns the kind of error
func (o *Error) Unwrap() error {
	return o.Kind
}

// auxiliary ///////////////////////////////////////////////////////////////////////////////////////

// notImplemented returns a NotImplemented error
func notImplemented(op, msg string, prm ...interface{}) error {
	return &Error{ErrNotImplemented, op, io.Sf(msg, prm...)}
}

// preconditionViolation returns a PreconditionViolation error
func preconditionViolation(op, msg string, prm ...interface{}) error {
	return &Error{ErrPreconditionViolation, op, io.Sf(msg, prm...)}
}

// invariantViolation returns an InvariantViolation error
func invariantViolation(op, msg string, prm ...interface{}) error {
	return &Error{ErrInvariantViolation, op, io.Sf(msg, prm...)}
}
