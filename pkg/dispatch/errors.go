// Copyright 2023-2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

package dispatch

import "github.com/pkg/errors"

var (
	// ErrDuplicateRegistration is returned when a backend or variable slot of an operator table
	// is registered twice. It usually means two packages claim the same operator.
	ErrDuplicateRegistration = errors.New("duplicate operator registration")

	// ErrMissingRegistration is returned by lookups when there is no implementation for the
	// requested backend (nor a fallback), or for the variable mode.
	ErrMissingRegistration = errors.New("no operator implementation registered")

	// ErrMissingSchema is returned by Registry.GetOpTable for schemas never registered.
	ErrMissingSchema = errors.New("no operator table for schema")

	// ErrMigratedOperator is returned by Registry.GetOpTable for operators handled by the Forwarder.
	ErrMigratedOperator = errors.New("operator was migrated to the kernel registry")

	// ErrKernelType is returned by Op when the registered implementation doesn't have the requested type.
	ErrKernelType = errors.New("operator implementation has an unexpected type")
)
