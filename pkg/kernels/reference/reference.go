// Copyright 2023-2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

// Package reference registers the backend independent implementations of the kernels operators.
//
// They are registered for backends.BackendUndefined, so they serve every backend without a
// specialized implementation. Import it for its side effects:
//
//	import _ "github.com/gomlx/opdispatch/pkg/kernels/reference"
package reference

import (
	"github.com/gomlx/opdispatch/pkg/core/backends"
	"github.com/gomlx/opdispatch/pkg/kernels"
)

func init() {
	kernels.AddOp.Register(backends.BackendUndefined, binary(func(x, y float32) float32 { return x + y }))
	kernels.SubOp.Register(backends.BackendUndefined, binary(func(x, y float32) float32 { return x - y }))
	kernels.MulOp.Register(backends.BackendUndefined, binary(func(x, y float32) float32 { return x * y }))
	kernels.ReluOp.Register(backends.BackendUndefined, unary(func(x float32) float32 { return max(x, 0) }))
	kernels.NegOp.Register(backends.BackendUndefined, unary(func(x float32) float32 { return -x }))
}

func unary(fn func(x float32) float32) kernels.UnaryFn {
	return func(x *kernels.Tensor) (*kernels.Tensor, error) {
		output := x.Like()
		for ii, v := range x.Values {
			output.Values[ii] = fn(v)
		}
		return output, nil
	}
}

func binary(fn func(x, y float32) float32) kernels.BinaryFn {
	return func(x, y *kernels.Tensor) (*kernels.Tensor, error) {
		output := x.Like()
		for ii, v := range x.Values {
			output.Values[ii] = fn(v, y.Values[ii])
		}
		return output, nil
	}
}
