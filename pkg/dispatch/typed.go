// Copyright 2023-2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

package dispatch

import (
	"github.com/pkg/errors"

	"github.com/gomlx/opdispatch/pkg/core/backends"
)

// Op looks up the implementation in the table (see OpTable.Lookup) and returns it as the function type F.
//
// F must be exactly the type registered: a func literal registered with a named function type is not
// assignable to the unnamed type and vice versa. It returns an error wrapping ErrKernelType on mismatch.
func Op[F any](table *OpTable, backend backends.Backend, isVariable bool) (F, error) {
	var zero F
	fn, err := table.Lookup(backend, isVariable)
	if err != nil {
		return zero, err
	}
	typed, ok := fn.(F)
	if !ok {
		lookupFailuresCounter.WithLabelValues(reasonKernelType).Inc()
		return zero, errors.Wrapf(ErrKernelType, "schema %q: registered implementation is %T, requested %T",
			table.schema, fn, zero)
	}
	return typed, nil
}

// MustOp is like Op, but panics on error.
func MustOp[F any](table *OpTable, backend backends.Backend, isVariable bool) F {
	fn, err := Op[F](table, backend, isVariable)
	if err != nil {
		panic(err)
	}
	return fn
}
