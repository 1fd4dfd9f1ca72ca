// Package scalar provides the shared numeric domain discipline for the
// differentiation engines.
//
// Both engines reject, rather than silently propagate NaN/Inf through, the
// logarithm of a non-positive value and division by zero. Violations are
// detected at the point of evaluation and surface as a DomainError that
// aborts the enclosing operation.
package scalar

import (
	"errors"
	"fmt"
)

// Op identifies the operation whose domain precondition was violated.
type Op int

// Operations with restricted domains.
const (
	OpLog Op = iota
	OpDivision
)

// String returns a human-readable name for the operation.
func (op Op) String() string {
	switch op {
	case OpLog:
		return "log"
	case OpDivision:
		return "division"
	default:
		return "unknown"
	}
}

// DomainError reports that an operation was applied outside its mathematical
// domain: a non-positive logarithm argument or a zero divisor. Value is the
// offending input at the point of failure.
type DomainError struct {
	Op    Op
	Value float64
}

// Error implements the error interface.
func (e *DomainError) Error() string {
	switch e.Op {
	case OpLog:
		return fmt.Sprintf("log: undefined for non-positive argument %g", e.Value)
	case OpDivision:
		return fmt.Sprintf("division: undefined for zero divisor %g", e.Value)
	default:
		return fmt.Sprintf("domain error on value %g", e.Value)
	}
}

// CheckLog validates a logarithm argument.
func CheckLog(v float64) error {
	if v <= 0 {
		return &DomainError{Op: OpLog, Value: v}
	}
	return nil
}

// CheckDivision validates a divisor.
func CheckDivision(v float64) error {
	if v == 0 {
		return &DomainError{Op: OpDivision, Value: v}
	}
	return nil
}

// IsDomainError reports whether err is, or wraps, a DomainError.
func IsDomainError(err error) bool {
	var de *DomainError
	return errors.As(err, &de)
}
