// Copyright 2023-2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

// Package dispatch implements the runtime operator dispatch registry.
//
// Backend packages register implementations of an operator schema, usually from their `init()` functions,
// in whatever order the Go runtime happens to initialize them:
//
//	func init() {
//		dispatch.Global().
//			RegisterOp(backends.BackendUndefined, "aten::add.Tensor(Tensor self, Tensor other) -> Tensor", addGeneric).
//			RegisterOp(backends.BackendCPU, "aten::add.Tensor(Tensor self, Tensor other) -> Tensor", addCPU).
//			RegisterVariableOp("aten::add.Tensor(Tensor self, Tensor other) -> Tensor", addVariable)
//	}
//
// A call site resolves its schema once to an *OpTable, and then looks up the implementation for each
// call, given the backend and whether it runs in variable (autograd) mode:
//
//	table, err := dispatch.Global().GetOpTable("aten::add.Tensor(Tensor self, Tensor other) -> Tensor")
//	...
//	add, err := dispatch.Op[func(x, y *Tensor) (*Tensor, error)](table, backends.BackendCUDA, false)
//
// Implementations registered for backends.BackendUndefined are the fallback for every backend without a
// specialized implementation. Each slot (backend or variable) can be registered at most once.
//
// Operators listed in the registry's migrated set are not stored in operator tables: their registrations
// are forwarded to a Forwarder (by default the kernelregistry.Global() dispatcher), and asking for their
// table is an error.
//
// Implementations are stored type-erased (as `any`). The caller is responsible for asking for the same
// function type that was registered for the schema; Op returns ErrKernelType if it doesn't match.
package dispatch
