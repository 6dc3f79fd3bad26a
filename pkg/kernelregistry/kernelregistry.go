// Copyright 2023-2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

// Package kernelregistry is the dispatcher that operators migrated out of the operator tables
// (see package dispatch) are registered with.
//
// Kernels are keyed by schema.OperatorName. Each operator has one catch-all kernel (used for any
// backend), one kernel per backend and one autograd kernel. Every registration returns a Handle
// that can be used to deregister the kernel.
package kernelregistry

import (
	"reflect"
	"slices"
	"strings"
	"sync"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"k8s.io/klog/v2"

	"github.com/gomlx/opdispatch/pkg/core/backends"
	"github.com/gomlx/opdispatch/pkg/core/schema"
)

var (
	// ErrDuplicateKernel is returned when registering a kernel for an already occupied slot.
	ErrDuplicateKernel = errors.New("kernel already registered")

	// ErrNoKernel is returned by Lookup when no kernel can serve the request.
	ErrNoKernel = errors.New("no kernel registered")

	// ErrSchemaMismatch is returned when an operator is registered with two different schemas.
	ErrSchemaMismatch = errors.New("operator registered with a different schema")

	// ErrUnknownHandle is returned by Deregister for handles not (or no longer) registered.
	ErrUnknownHandle = errors.New("unknown kernel handle")
)

// Kind of kernel slot a registration occupies.
type Kind int

const (
	KindCatchAll Kind = iota
	KindBackend
	KindAutograd
)

// String implements fmt.Stringer.
func (k Kind) String() string {
	switch k {
	case KindCatchAll:
		return "CatchAll"
	case KindBackend:
		return "Backend"
	case KindAutograd:
		return "Autograd"
	default:
		return "Kind(?)"
	}
}

// Handle identifies one kernel registration.
type Handle struct {
	ID      uuid.UUID
	Op      schema.OperatorName
	Schema  string
	Kind    Kind
	Backend backends.Backend // Only meaningful for KindBackend.
}

// String implements fmt.Stringer.
func (h *Handle) String() string {
	if h.Kind == KindBackend {
		return "<" + h.Kind.String() + " kernel " + h.Op.String() + "@" + h.Backend.String() + " id=" + h.ID.String() + ">"
	}
	return "<" + h.Kind.String() + " kernel " + h.Op.String() + " id=" + h.ID.String() + ">"
}

type kernel struct {
	fn     any
	handle *Handle
}

type operatorKernels struct {
	schema   string
	catchAll *kernel
	backends [backends.NumBackends]*kernel
	autograd *kernel
}

func (opk *operatorKernels) isEmpty() bool {
	if opk.catchAll != nil || opk.autograd != nil {
		return false
	}
	for _, k := range opk.backends {
		if k != nil {
			return false
		}
	}
	return true
}

// Registry of kernels. It is safe for concurrent use.
type Registry struct {
	mu  sync.RWMutex
	ops map[schema.OperatorName]*operatorKernels
}

// New creates an empty Registry.
func New() *Registry {
	return &Registry{ops: make(map[schema.OperatorName]*operatorKernels)}
}

var (
	globalRegistry     *Registry
	globalRegistryOnce sync.Once
)

// Global returns the process-wide kernel registry, creating it on first use.
func Global() *Registry {
	globalRegistryOnce.Do(func() { globalRegistry = New() })
	return globalRegistry
}

// RegisterCatchAllKernel registers fn as the kernel of the operator for every backend that doesn't
// have its own kernel.
func (r *Registry) RegisterCatchAllKernel(schemaStr string, fn any) (*Handle, error) {
	return r.register(schemaStr, KindCatchAll, backends.BackendUndefined, fn)
}

// RegisterKernel registers fn as the kernel of the operator for the given backend.
// Use RegisterCatchAllKernel for backend-agnostic kernels.
func (r *Registry) RegisterKernel(schemaStr string, backend backends.Backend, fn any) (*Handle, error) {
	if backend == backends.BackendUndefined || !backend.IsValid() {
		return nil, errors.Errorf("kernelregistry: invalid backend %s for kernel of %q", backend, schemaStr)
	}
	return r.register(schemaStr, KindBackend, backend, fn)
}

// RegisterAutogradKernel registers fn as the autograd (variable mode) kernel of the operator.
func (r *Registry) RegisterAutogradKernel(schemaStr string, fn any) (*Handle, error) {
	return r.register(schemaStr, KindAutograd, backends.BackendUndefined, fn)
}

func (r *Registry) register(schemaStr string, kind Kind, backend backends.Backend, fn any) (*Handle, error) {
	if fn == nil || reflect.TypeOf(fn).Kind() != reflect.Func {
		return nil, errors.Errorf("kernelregistry: kernel for %q must be a function, got %T", schemaStr, fn)
	}
	op, err := schema.ParseOperatorName(schemaStr)
	if err != nil {
		return nil, err
	}
	handle := &Handle{
		ID:      uuid.New(),
		Op:      op,
		Schema:  schemaStr,
		Kind:    kind,
		Backend: backend,
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	entry, found := r.ops[op]
	if !found {
		entry = &operatorKernels{schema: schemaStr}
		r.ops[op] = entry
	} else if entry.schema != schemaStr {
		return nil, errors.Wrapf(ErrSchemaMismatch, "operator %s registered with schema %q, now %q",
			op, entry.schema, schemaStr)
	}
	slot := entry.slot(kind, backend)
	if *slot != nil {
		return nil, errors.Wrapf(ErrDuplicateKernel, "%s kernel for operator %s (backend %s) already registered by %s",
			kind, op, backend, (*slot).handle)
	}
	*slot = &kernel{fn: fn, handle: handle}
	klog.V(2).Infof("kernelregistry: registered %s", handle)
	return handle, nil
}

func (opk *operatorKernels) slot(kind Kind, backend backends.Backend) **kernel {
	switch kind {
	case KindCatchAll:
		return &opk.catchAll
	case KindAutograd:
		return &opk.autograd
	default:
		return &opk.backends[backend]
	}
}

// Deregister removes the kernel registered with the handle.
// Once all kernels of an operator are removed, the operator's schema is forgotten.
func (r *Registry) Deregister(handle *Handle) error {
	if handle == nil {
		return errors.Wrap(ErrUnknownHandle, "kernelregistry: nil handle")
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	entry, found := r.ops[handle.Op]
	if !found {
		return errors.Wrapf(ErrUnknownHandle, "kernelregistry: %s", handle)
	}
	slot := entry.slot(handle.Kind, handle.Backend)
	if *slot == nil || (*slot).handle.ID != handle.ID {
		return errors.Wrapf(ErrUnknownHandle, "kernelregistry: %s", handle)
	}
	*slot = nil
	if entry.isEmpty() {
		delete(r.ops, handle.Op)
	}
	return nil
}

// Lookup returns the kernel for the operator: the autograd kernel if autograd is set, otherwise
// the backend kernel, falling back to the catch-all kernel.
func (r *Registry) Lookup(op schema.OperatorName, backend backends.Backend, autograd bool) (any, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	entry, found := r.ops[op]
	if !found {
		return nil, errors.Wrapf(ErrNoKernel, "operator %s not registered", op)
	}
	if autograd {
		if entry.autograd == nil {
			return nil, errors.Wrapf(ErrNoKernel, "no autograd kernel for operator %s", op)
		}
		return entry.autograd.fn, nil
	}
	if backend.IsValid() && entry.backends[backend] != nil {
		return entry.backends[backend].fn, nil
	}
	if entry.catchAll == nil {
		return nil, errors.Wrapf(ErrNoKernel, "no kernel for operator %s on backend %s", op, backend)
	}
	return entry.catchAll.fn, nil
}

// HasKernel returns whether the operator has a kernel of the kind. The backend is only used for KindBackend.
func (r *Registry) HasKernel(op schema.OperatorName, kind Kind, backend backends.Backend) bool {
	if kind == KindBackend && !backend.IsValid() {
		return false
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	entry, found := r.ops[op]
	if !found {
		return false
	}
	return *entry.slot(kind, backend) != nil
}

// Schema returns the schema the operator was registered with.
func (r *Registry) Schema(op schema.OperatorName) (string, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	entry, found := r.ops[op]
	if !found {
		return "", false
	}
	return entry.schema, true
}

// Operators returns the registered operators, sorted by name and overload name.
func (r *Registry) Operators() []schema.OperatorName {
	r.mu.RLock()
	ops := make([]schema.OperatorName, 0, len(r.ops))
	for op := range r.ops {
		ops = append(ops, op)
	}
	r.mu.RUnlock()
	slices.SortFunc(ops, func(a, b schema.OperatorName) int {
		if c := strings.Compare(a.Name, b.Name); c != 0 {
			return c
		}
		return strings.Compare(a.OverloadName, b.OverloadName)
	})
	return ops
}
