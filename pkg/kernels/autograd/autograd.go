// Copyright 2023-2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

// Package autograd registers the variable mode implementations of the kernels operators.
//
// They compute the result with the backend implementation and mark it as requiring gradients,
// recording the operation in Tensor.GradFn.
package autograd

import (
	"github.com/gomlx/opdispatch/pkg/kernels"
)

func init() {
	kernels.AddOp.RegisterVariable(binary(kernels.AddOp, "AddBackward"))
	kernels.SubOp.RegisterVariable(binary(kernels.SubOp, "SubBackward"))
	kernels.MulOp.RegisterVariable(binary(kernels.MulOp, "MulBackward"))
	kernels.ReluOp.RegisterVariable(unary(kernels.ReluOp, "ReluBackward"))
	kernels.NegOp.RegisterVariable(unary(kernels.NegOp, "NegBackward"))
}

func unary(op *kernels.Unary, gradFn string) kernels.UnaryFn {
	return func(x *kernels.Tensor) (*kernels.Tensor, error) {
		output, err := op.CallBackend(x)
		if err != nil {
			return nil, err
		}
		output.RequiresGrad = true
		output.GradFn = gradFn
		return output, nil
	}
}

func binary(op *kernels.Binary, gradFn string) kernels.BinaryFn {
	return func(x, y *kernels.Tensor) (*kernels.Tensor, error) {
		output, err := op.CallBackend(x, y)
		if err != nil {
			return nil, err
		}
		output.RequiresGrad = true
		output.GradFn = gradFn
		return output, nil
	}
}
