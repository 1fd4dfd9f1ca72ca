// Copyright 2025 The Gradix Authors. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package scalar exposes the domain-error taxonomy shared by both
// differentiation engines.
package scalar

import (
	"github.com/gradix-ml/gradix/internal/scalar"
)

// Op identifies the operation whose domain precondition was violated.
type Op = scalar.Op

// Operations with restricted domains.
const (
	OpLog      Op = scalar.OpLog
	OpDivision Op = scalar.OpDivision
)

// DomainError reports a log of a non-positive value or a division by zero,
// with the offending input value.
type DomainError = scalar.DomainError

// IsDomainError reports whether err is, or wraps, a DomainError.
func IsDomainError(err error) bool {
	return scalar.IsDomainError(err)
}
