// Copyright 2023-2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

package dispatch

import (
	"reflect"
	"sync/atomic"

	"github.com/pkg/errors"

	"github.com/gomlx/opdispatch/pkg/core/backends"
	"github.com/gomlx/opdispatch/pkg/core/schema"
)

// implementation holds one type-erased registered function.
type implementation struct {
	fn any
}

// OpTable holds the implementations of one operator schema: one per backend, plus one for
// the variable (autograd) mode.
//
// Tables are created by the Registry on the first registration of their schema, and are never removed.
// Lookups are lock-free; registrations are serialized by the Registry.
type OpTable struct {
	schema string
	op     schema.OperatorName

	backendFns  [backends.NumBackends]atomic.Pointer[implementation]
	variableFns atomic.Pointer[implementation]
}

func newOpTable(schemaStr string, op schema.OperatorName) *OpTable {
	return &OpTable{schema: schemaStr, op: op}
}

// Schema returns the operator schema the table was created for.
func (t *OpTable) Schema() string {
	return t.schema
}

// OperatorName returns the name and overload name parsed from the schema.
func (t *OpTable) OperatorName() schema.OperatorName {
	return t.op
}

// String implements fmt.Stringer.
func (t *OpTable) String() string {
	return "OpTable(" + t.schema + ")"
}

// registerBackendOp must be called with the Registry lock held.
func (t *OpTable) registerBackendOp(backend backends.Backend, fn any) error {
	if !backend.IsValid() {
		return errors.Errorf("invalid backend %s registering schema %q", backend, t.schema)
	}
	if t.backendFns[backend].Load() != nil {
		return errors.Wrapf(ErrDuplicateRegistration,
			"attempting to register function for schema %q and backend %s, but there is already a function registered",
			t.schema, backend)
	}
	t.backendFns[backend].Store(&implementation{fn: fn})
	return nil
}

// registerVariableOp must be called with the Registry lock held.
func (t *OpTable) registerVariableOp(fn any) error {
	if t.variableFns.Load() != nil {
		return errors.Wrapf(ErrDuplicateRegistration,
			"attempting to register variable function for schema %q, but there is already a function registered",
			t.schema)
	}
	t.variableFns.Store(&implementation{fn: fn})
	return nil
}

// Lookup returns the implementation for the backend or, if isVariable, the variable mode implementation.
//
// If the backend has no implementation of its own, the one registered for backends.BackendUndefined is
// returned. It returns an error wrapping ErrMissingRegistration if neither exists.
//
// The returned value is the function exactly as registered; see Op for a typed version.
func (t *OpTable) Lookup(backend backends.Backend, isVariable bool) (any, error) {
	if isVariable {
		impl := t.variableFns.Load()
		if impl == nil {
			lookupFailuresCounter.WithLabelValues(reasonMissingRegistration).Inc()
			return nil, errors.Wrapf(ErrMissingRegistration, "no variable function registered for %q", t.schema)
		}
		return impl.fn, nil
	}
	if !backend.IsValid() {
		lookupFailuresCounter.WithLabelValues(reasonMissingRegistration).Inc()
		return nil, errors.Wrapf(ErrMissingRegistration, "invalid backend %s for schema %q", backend, t.schema)
	}
	impl := t.backendFns[backend].Load()
	if impl == nil {
		impl = t.backendFns[backends.BackendUndefined].Load()
		if impl == nil {
			lookupFailuresCounter.WithLabelValues(reasonMissingRegistration).Inc()
			return nil, errors.Wrapf(ErrMissingRegistration,
				"no function is registered for schema %q on backend %s", t.schema, backend)
		}
	}
	return impl.fn, nil
}

// RegisteredBackends returns the backends with an implementation of their own, in enum order.
// backends.BackendUndefined is included if a fallback is registered.
func (t *OpTable) RegisteredBackends() []backends.Backend {
	var registered []backends.Backend
	for _, backend := range backends.Valid() {
		if t.backendFns[backend].Load() != nil {
			registered = append(registered, backend)
		}
	}
	return registered
}

// HasVariableOp returns whether a variable mode implementation is registered.
func (t *OpTable) HasVariableOp() bool {
	return t.variableFns.Load() != nil
}

// checkFunction validates fn can be stored as an implementation.
func checkFunction(schemaStr string, fn any) error {
	if fn == nil {
		return errors.Errorf("nil implementation registered for schema %q", schemaStr)
	}
	v := reflect.ValueOf(fn)
	if v.Kind() != reflect.Func {
		return errors.Errorf("implementation registered for schema %q must be a function, got %T", schemaStr, fn)
	}
	if v.IsNil() {
		return errors.Errorf("nil %T implementation registered for schema %q", fn, schemaStr)
	}
	return nil
}
