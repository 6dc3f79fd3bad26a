// Copyright 2023-2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

package kernels

import (
	"fmt"

	"github.com/pkg/errors"

	"github.com/gomlx/opdispatch/pkg/core/backends"
)

// ErrIncompatibleTensors is returned when the operands of a binary operator differ in length or backend.
var ErrIncompatibleTensors = errors.New("incompatible tensors")

// Tensor is a flat float32 tensor placed on a backend.
type Tensor struct {
	Backend backends.Backend
	Values  []float32

	// RequiresGrad tensors are dispatched to the variable (autograd) implementations.
	RequiresGrad bool

	// GradFn names the operation that created the tensor in variable mode, e.g. "AddBackward".
	GradFn string
}

// New creates a Tensor on the backend with a copy of the values.
func New(backend backends.Backend, values ...float32) *Tensor {
	return &Tensor{Backend: backend, Values: append([]float32(nil), values...)}
}

// Len returns the number of elements.
func (t *Tensor) Len() int {
	return len(t.Values)
}

// WithGrad marks the tensor as requiring gradients and returns it.
func (t *Tensor) WithGrad() *Tensor {
	t.RequiresGrad = true
	return t
}

// Like returns a zero tensor with the same backend and length as t.
func (t *Tensor) Like() *Tensor {
	return &Tensor{Backend: t.Backend, Values: make([]float32, len(t.Values))}
}

// String implements fmt.Stringer.
func (t *Tensor) String() string {
	s := fmt.Sprintf("Tensor[%s]%v", t.Backend, t.Values)
	if t.RequiresGrad {
		s += fmt.Sprintf(" (requires grad, grad fn %q)", t.GradFn)
	}
	return s
}

// CheckCompatible returns an error if x and y can't be the operands of an element-wise operator.
func CheckCompatible(x, y *Tensor) error {
	if x.Backend != y.Backend {
		return errors.Wrapf(ErrIncompatibleTensors, "operands on different backends %s and %s", x.Backend, y.Backend)
	}
	if len(x.Values) != len(y.Values) {
		return errors.Wrapf(ErrIncompatibleTensors, "operands of different lengths %d and %d", len(x.Values), len(y.Values))
	}
	return nil
}
