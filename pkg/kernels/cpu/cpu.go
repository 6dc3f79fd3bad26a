// Copyright 2023-2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

// Package cpu registers parallel implementations of the kernels operators for backends.BackendCPU.
//
// Work is split in chunks run by the shared workerspool. Operators without a CPU implementation
// here (e.g. kernels.Sub) use the reference implementation.
package cpu

import (
	"github.com/gomlx/opdispatch/internal/workerspool"
	"github.com/gomlx/opdispatch/pkg/core/backends"
	"github.com/gomlx/opdispatch/pkg/kernels"
)

// MinChunkSize is the minimum number of elements processed by one task.
const MinChunkSize = 4096

// SetMaxParallelism sets how many chunks of one operation may run in parallel: 0 runs them all in the
// calling goroutine, and -1 makes it unlimited. The default is runtime.NumCPU().
//
// It should be called before any CPU kernel runs.
func SetMaxParallelism(maxParallelism int) {
	workerspool.Default().SetMaxParallelism(maxParallelism)
}

func init() {
	kernels.AddOp.Register(backends.BackendCPU, binary(func(x, y float32) float32 { return x + y }))
	kernels.MulOp.Register(backends.BackendCPU, binary(func(x, y float32) float32 { return x * y }))
	kernels.ReluOp.Register(backends.BackendCPU, unary(func(x float32) float32 { return max(x, 0) }))
	kernels.NegOp.Register(backends.BackendCPU, unary(func(x float32) float32 { return -x }))
}

func unary(fn func(x float32) float32) kernels.UnaryFn {
	return func(x *kernels.Tensor) (*kernels.Tensor, error) {
		output := x.Like()
		workerspool.Default().ParallelFor(x.Len(), MinChunkSize, func(start, end int) {
			for ii := start; ii < end; ii++ {
				output.Values[ii] = fn(x.Values[ii])
			}
		})
		return output, nil
	}
}

func binary(fn func(x, y float32) float32) kernels.BinaryFn {
	return func(x, y *kernels.Tensor) (*kernels.Tensor, error) {
		output := x.Like()
		workerspool.Default().ParallelFor(x.Len(), MinChunkSize, func(start, end int) {
			xs, ys, outs := x.Values[start:end], y.Values[start:end], output.Values[start:end]
			for ii := range outs {
				outs[ii] = fn(xs[ii], ys[ii])
			}
		})
		return output, nil
	}
}
