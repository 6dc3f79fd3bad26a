// Copyright 2023-2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

// Package kernels defines dispatched element-wise operators on Tensor.
//
// The implementations live in sub-packages that register themselves on import:
//
//   - reference: implementations for backends.BackendUndefined, used by every backend.
//   - cpu: parallel implementations for backends.BackendCPU.
//   - autograd: variable mode implementations, used for tensors that require gradients.
//
// Operators whose name is migrated (see dispatch.DefaultMigratedOps) are dispatched by the kernel registry.
package kernels

import (
	"sync/atomic"

	"github.com/pkg/errors"

	"github.com/gomlx/opdispatch/pkg/core/backends"
	"github.com/gomlx/opdispatch/pkg/core/schema"
	"github.com/gomlx/opdispatch/pkg/dispatch"
	"github.com/gomlx/opdispatch/pkg/kernelregistry"
)

// UnaryFn is the type registered for unary operators.
type UnaryFn func(x *Tensor) (*Tensor, error)

// BinaryFn is the type registered for binary operators.
type BinaryFn func(x, y *Tensor) (*Tensor, error)

// Schemas of the operators, in the "aten" namespace used by operator names in bytecode archives.
const (
	AddSchema  = "aten::add.Tensor(Tensor self, Tensor other) -> Tensor"
	SubSchema  = "aten::sub.Tensor(Tensor self, Tensor other) -> Tensor"
	MulSchema  = "aten::mul.Tensor(Tensor self, Tensor other) -> Tensor"
	ReluSchema = "aten::relu(Tensor self) -> Tensor"
	NegSchema  = "aten::neg(Tensor self) -> Tensor"
)

// Dispatched operators.
var (
	AddOp  = NewBinary(AddSchema)
	SubOp  = NewBinary(SubSchema)
	MulOp  = NewBinary(MulSchema)
	ReluOp = NewUnary(ReluSchema)
	NegOp  = NewUnary(NegSchema)
)

// Add returns x+y element-wise.
func Add(x, y *Tensor) (*Tensor, error) { return AddOp.Call(x, y) }

// Sub returns x-y element-wise.
func Sub(x, y *Tensor) (*Tensor, error) { return SubOp.Call(x, y) }

// Mul returns x*y element-wise.
func Mul(x, y *Tensor) (*Tensor, error) { return MulOp.Call(x, y) }

// Relu returns max(x, 0) element-wise.
func Relu(x *Tensor) (*Tensor, error) { return ReluOp.Call(x) }

// Neg returns -x element-wise.
func Neg(x *Tensor) (*Tensor, error) { return NegOp.Call(x) }

// dispatcher finds the implementation of F for one schema in the global registries.
type dispatcher[F any] struct {
	schema string
	op     schema.OperatorName

	// table is resolved on first use and kept afterwards.
	table atomic.Pointer[dispatch.OpTable]
}

func newDispatcher[F any](schemaStr string) *dispatcher[F] {
	return &dispatcher[F]{schema: schemaStr, op: schema.MustParseOperatorName(schemaStr)}
}

func (d *dispatcher[F]) lookup(backend backends.Backend, isVariable bool) (F, error) {
	registry := dispatch.Global()
	if registry.IsMigratedOperator(d.op) {
		var zero F
		fn, err := kernelregistry.Global().Lookup(d.op, backend, isVariable)
		if err != nil {
			return zero, err
		}
		typed, ok := fn.(F)
		if !ok {
			return zero, errors.Wrapf(dispatch.ErrKernelType, "kernel for %q is %T, wanted %T", d.schema, fn, zero)
		}
		return typed, nil
	}

	table := d.table.Load()
	if table == nil {
		var err error
		table, err = registry.GetOpTable(d.schema)
		if err != nil {
			var zero F
			return zero, err
		}
		d.table.Store(table)
	}
	return dispatch.Op[F](table, backend, isVariable)
}

// Unary is a dispatched unary operator.
type Unary struct {
	*dispatcher[UnaryFn]
}

// NewUnary creates the dispatched operator of the schema. It panics if the schema is malformed.
func NewUnary(schemaStr string) *Unary {
	return &Unary{newDispatcher[UnaryFn](schemaStr)}
}

// Schema of the operator.
func (u *Unary) Schema() string { return u.schema }

// Call the implementation for the backend of x, in variable mode if x requires gradients.
func (u *Unary) Call(x *Tensor) (*Tensor, error) {
	return u.call(x, x.RequiresGrad)
}

// CallBackend calls the backend implementation, ignoring whether x requires gradients.
// Variable mode implementations use it to compute their results.
func (u *Unary) CallBackend(x *Tensor) (*Tensor, error) {
	return u.call(x, false)
}

func (u *Unary) call(x *Tensor, isVariable bool) (*Tensor, error) {
	fn, err := u.lookup(x.Backend, isVariable)
	if err != nil {
		return nil, err
	}
	return fn(x)
}

// Register fn for the backend. Registering for backends.BackendUndefined provides the fallback for all backends.
// It panics on failure.
func (u *Unary) Register(backend backends.Backend, fn UnaryFn) *Unary {
	dispatch.Global().RegisterOp(backend, u.schema, fn)
	return u
}

// RegisterVariable registers fn for variable mode. It panics on failure.
func (u *Unary) RegisterVariable(fn UnaryFn) *Unary {
	dispatch.Global().RegisterVariableOp(u.schema, fn)
	return u
}

// Binary is a dispatched binary operator.
type Binary struct {
	*dispatcher[BinaryFn]
}

// NewBinary creates the dispatched operator of the schema. It panics if the schema is malformed.
func NewBinary(schemaStr string) *Binary {
	return &Binary{newDispatcher[BinaryFn](schemaStr)}
}

// Schema of the operator.
func (b *Binary) Schema() string { return b.schema }

// Call the implementation for the backend of the operands, in variable mode if either requires gradients.
func (b *Binary) Call(x, y *Tensor) (*Tensor, error) {
	return b.call(x, y, x.RequiresGrad || y.RequiresGrad)
}

// CallBackend calls the backend implementation, ignoring whether the operands require gradients.
func (b *Binary) CallBackend(x, y *Tensor) (*Tensor, error) {
	return b.call(x, y, false)
}

func (b *Binary) call(x, y *Tensor, isVariable bool) (*Tensor, error) {
	if err := CheckCompatible(x, y); err != nil {
		return nil, errors.WithMessagef(err, "calling %q", b.schema)
	}
	fn, err := b.lookup(x.Backend, isVariable)
	if err != nil {
		return nil, err
	}
	return fn(x, y)
}

// Register fn for the backend. It panics on failure.
func (b *Binary) Register(backend backends.Backend, fn BinaryFn) *Binary {
	dispatch.Global().RegisterOp(backend, b.schema, fn)
	return b
}

// RegisterVariable registers fn for variable mode. It panics on failure.
func (b *Binary) RegisterVariable(fn BinaryFn) *Binary {
	dispatch.Global().RegisterVariableOp(b.schema, fn)
	return b
}
