// Copyright 2023-2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

package dispatch

import (
	"slices"
	"sync"

	"github.com/pkg/errors"
	"k8s.io/klog/v2"

	"github.com/gomlx/opdispatch/pkg/core/backends"
	"github.com/gomlx/opdispatch/pkg/core/schema"
	"github.com/gomlx/opdispatch/pkg/kernelregistry"
	"github.com/gomlx/opdispatch/pkg/support/sets"
)

// Registry holds the OpTable of each registered operator schema.
//
// It is safe for concurrent use: registrations are serialized by a single mutex, while
// GetOpTable and the OpTable lookups are lock-free.
type Registry struct {
	// migrated operators are forwarded to forwarder. Read-only after construction.
	migrated  sets.Set[schema.OperatorName]
	forwarder Forwarder

	// mu serializes table creation, slot writes and appends to forwarded.
	mu sync.Mutex

	// tables maps schema string to *OpTable.
	tables sync.Map

	// names maps schema.OperatorName to the first schema string registered for it.
	names sync.Map

	// forwarded keeps the handles of forwarded registrations alive as long as the Registry.
	forwarded []*kernelregistry.Handle
}

// NewRegistry creates a Registry that forwards registrations of the migrated operators to forwarder.
//
// The migrated set is copied. The forwarder can be nil if migrated is empty.
func NewRegistry(migrated sets.Set[schema.OperatorName], forwarder Forwarder) *Registry {
	return &Registry{
		migrated:  migrated.Clone(),
		forwarder: forwarder,
	}
}

// IsMigrated returns whether the operator of the schema is handled by the Forwarder.
func (r *Registry) IsMigrated(schemaStr string) (bool, error) {
	op, err := schema.ParseOperatorName(schemaStr)
	if err != nil {
		return false, err
	}
	return r.migrated.Has(op), nil
}

// IsMigratedOperator returns whether the operator is handled by the Forwarder.
func (r *Registry) IsMigratedOperator(op schema.OperatorName) bool {
	return r.migrated.Has(op)
}

// RegisterOp registers fn as the implementation of the schema for the backend, and returns the
// Registry itself, so calls can be chained.
//
// Registering for backends.BackendUndefined provides the fallback for all backends.
// It panics with the error returned by Register if it fails: registrations are expected to
// happen during initialization, where a failure is a build defect.
func (r *Registry) RegisterOp(backend backends.Backend, schemaStr string, fn any) *Registry {
	if err := r.Register(backend, schemaStr, fn); err != nil {
		panic(err)
	}
	return r
}

// RegisterVariableOp registers fn as the variable (autograd) mode implementation of the schema, and
// returns the Registry itself, so calls can be chained.
//
// It panics with the error returned by RegisterVariable if it fails.
func (r *Registry) RegisterVariableOp(schemaStr string, fn any) *Registry {
	if err := r.RegisterVariable(schemaStr, fn); err != nil {
		panic(err)
	}
	return r
}

// Register registers fn as the implementation of the schema for the backend.
//
// If the schema's operator is migrated, the registration is forwarded: as a catch-all kernel if backend
// is backends.BackendUndefined, or as a kernel for the backend otherwise.
//
// It returns an error wrapping ErrDuplicateRegistration if the slot is already taken, or wrapping
// schema.ErrMalformedSchema if the schema can't be parsed.
func (r *Registry) Register(backend backends.Backend, schemaStr string, fn any) error {
	if err := checkFunction(schemaStr, fn); err != nil {
		registrationFailuresCounter.WithLabelValues(reasonInvalid).Inc()
		return err
	}
	if !backend.IsValid() {
		registrationFailuresCounter.WithLabelValues(reasonInvalid).Inc()
		return errors.Errorf("invalid backend %s registering schema %q", backend, schemaStr)
	}
	op, err := schema.ParseOperatorName(schemaStr)
	if err != nil {
		registrationFailuresCounter.WithLabelValues(reasonMalformedSchema).Inc()
		return err
	}

	if r.migrated.Has(op) {
		return r.forward(modeBackend, schemaStr, func(f Forwarder) (*kernelregistry.Handle, error) {
			if backend == backends.BackendUndefined {
				return f.RegisterCatchAllKernel(schemaStr, fn)
			}
			return f.RegisterKernel(schemaStr, backend, fn)
		})
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.lockedOpTable(schemaStr, op).registerBackendOp(backend, fn); err != nil {
		registrationFailuresCounter.WithLabelValues(reasonDuplicate).Inc()
		return err
	}
	registrationsCounter.WithLabelValues(modeBackend, routeLocal).Inc()
	klog.V(2).Infof("dispatch: registered %q for backend %s", schemaStr, backend)
	return nil
}

// RegisterVariable registers fn as the variable (autograd) mode implementation of the schema.
//
// If the schema's operator is migrated, the registration is forwarded as an autograd kernel.
// Errors are the same as Register.
func (r *Registry) RegisterVariable(schemaStr string, fn any) error {
	if err := checkFunction(schemaStr, fn); err != nil {
		registrationFailuresCounter.WithLabelValues(reasonInvalid).Inc()
		return err
	}
	op, err := schema.ParseOperatorName(schemaStr)
	if err != nil {
		registrationFailuresCounter.WithLabelValues(reasonMalformedSchema).Inc()
		return err
	}

	if r.migrated.Has(op) {
		return r.forward(modeVariable, schemaStr, func(f Forwarder) (*kernelregistry.Handle, error) {
			return f.RegisterAutogradKernel(schemaStr, fn)
		})
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.lockedOpTable(schemaStr, op).registerVariableOp(fn); err != nil {
		registrationFailuresCounter.WithLabelValues(reasonDuplicate).Inc()
		return err
	}
	registrationsCounter.WithLabelValues(modeVariable, routeLocal).Inc()
	klog.V(2).Infof("dispatch: registered variable function for %q", schemaStr)
	return nil
}

// lockedOpTable returns the table for the schema, creating it if needed.
//
// It must be called with Registry.mu acquired.
func (r *Registry) lockedOpTable(schemaStr string, op schema.OperatorName) *OpTable {
	if table, found := r.tables.Load(schemaStr); found {
		return table.(*OpTable)
	}
	table := newOpTable(schemaStr, op)
	r.tables.Store(schemaStr, table)
	r.names.LoadOrStore(op, schemaStr)
	return table
}

// forward a registration to the Forwarder, and keep its handle.
// The forwarder is called without holding the Registry lock.
func (r *Registry) forward(mode, schemaStr string, registerFn func(f Forwarder) (*kernelregistry.Handle, error)) error {
	if r.forwarder == nil {
		registrationFailuresCounter.WithLabelValues(reasonForward).Inc()
		return errors.Errorf("operator of schema %q is migrated, but the registry has no forwarder", schemaStr)
	}
	handle, err := registerFn(r.forwarder)
	if err != nil {
		registrationFailuresCounter.WithLabelValues(reasonForward).Inc()
		return errors.WithMessagef(err, "forwarding registration of migrated schema %q", schemaStr)
	}
	r.mu.Lock()
	r.forwarded = append(r.forwarded, handle)
	r.mu.Unlock()
	registrationsCounter.WithLabelValues(mode, routeForwarded).Inc()
	klog.V(1).Infof("dispatch: forwarded %s registration of %q: %s", mode, schemaStr, handle)
	return nil
}

// GetOpTable returns the table of the schema. The table is valid for the lifetime of the Registry,
// and can be kept by call sites.
//
// It returns an error wrapping ErrMigratedOperator if the schema's operator is migrated (ask the
// kernel registry instead), or wrapping ErrMissingSchema if nothing was registered for the schema.
func (r *Registry) GetOpTable(schemaStr string) (*OpTable, error) {
	op, err := schema.ParseOperatorName(schemaStr)
	if err != nil {
		lookupFailuresCounter.WithLabelValues(reasonMalformedSchema).Inc()
		return nil, err
	}
	if r.migrated.Has(op) {
		lookupFailuresCounter.WithLabelValues(reasonMigrated).Inc()
		return nil, errors.Wrapf(ErrMigratedOperator,
			"tried to get the operator table of %q, whose operator %s is handled by the kernel registry", schemaStr, op)
	}
	table, found := r.tables.Load(schemaStr)
	if !found {
		lookupFailuresCounter.WithLabelValues(reasonMissingSchema).Inc()
		return nil, errors.Wrapf(ErrMissingSchema, "no functions are registered for schema %q", schemaStr)
	}
	return table.(*OpTable), nil
}

// FindSchema returns the schema registered for the operator name, if any.
// Migrated operators are never found here.
func (r *Registry) FindSchema(op schema.OperatorName) (string, bool) {
	schemaStr, found := r.names.Load(op)
	if !found {
		return "", false
	}
	return schemaStr.(string), true
}

// Schemas returns the sorted list of schemas with an operator table.
func (r *Registry) Schemas() []string {
	var schemas []string
	r.tables.Range(func(key, _ any) bool {
		schemas = append(schemas, key.(string))
		return true
	})
	slices.Sort(schemas)
	return schemas
}

// MigratedOps returns a copy of the set of migrated operators.
func (r *Registry) MigratedOps() sets.Set[schema.OperatorName] {
	return r.migrated.Clone()
}
