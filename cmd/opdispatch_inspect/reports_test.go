// Copyright 2023-2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gomlx/opdispatch/pkg/bytecode"
	"github.com/gomlx/opdispatch/pkg/core/backends"
	"github.com/gomlx/opdispatch/pkg/core/schema"
	"github.com/gomlx/opdispatch/pkg/dispatch"
	"github.com/gomlx/opdispatch/pkg/kernelregistry"
	"github.com/gomlx/opdispatch/pkg/support/sets"
)

func testRegistries(t *testing.T) (*dispatch.Registry, *kernelregistry.Registry) {
	kernels := kernelregistry.New()
	registry := dispatch.NewRegistry(sets.MakeWith(schema.OperatorName{Name: "neg"}), kernels)
	fn := func(x float32) float32 { return x }
	require.NoError(t, registry.Register(backends.BackendUndefined, "relu(Tensor self) -> Tensor", fn))
	require.NoError(t, registry.Register(backends.BackendCPU, "relu(Tensor self) -> Tensor", fn))
	require.NoError(t, registry.RegisterVariable("relu(Tensor self) -> Tensor", fn))
	require.NoError(t, registry.Register(backends.BackendCUDA, "sigmoid(Tensor self) -> Tensor", fn))
	require.NoError(t, registry.Register(backends.BackendUndefined, "neg(Tensor self) -> Tensor", fn))
	require.NoError(t, registry.Register(backends.BackendCPU, "neg(Tensor self) -> Tensor", fn))
	return registry, kernels
}

var allColumns = backends.Valid()[1:]

func markFor(row []string, backend backends.Backend) string {
	return row[int(backend)-1]
}

func TestCoverageRow(t *testing.T) {
	registry, kernels := testRegistries(t)
	numColumns := backends.NumBackends // All but BackendUndefined, plus variable.

	row, missing := CoverageRow(schema.OperatorName{Name: "relu"}, allColumns, registry, kernels)
	require.Len(t, row, numColumns)
	assert.False(t, missing)
	assert.Equal(t, available, markFor(row, backends.BackendCPU))
	assert.Equal(t, fallback, markFor(row, backends.BackendCUDA))
	assert.Equal(t, available, row[numColumns-1])

	row, missing = CoverageRow(schema.OperatorName{Name: "sigmoid"}, allColumns, registry, kernels)
	assert.False(t, missing)
	assert.Equal(t, available, markFor(row, backends.BackendCUDA))
	assert.Equal(t, unavailable, markFor(row, backends.BackendCPU))
	assert.Equal(t, unavailable, row[numColumns-1])

	row, missing = CoverageRow(schema.OperatorName{Name: "neg"}, allColumns, registry, kernels)
	assert.False(t, missing)
	assert.Equal(t, available, markFor(row, backends.BackendCPU))
	assert.Equal(t, fallback, markFor(row, backends.BackendXLA))
	assert.Equal(t, unavailable, row[numColumns-1])

	row, missing = CoverageRow(schema.OperatorName{Name: "tanh"}, allColumns, registry, kernels)
	require.Len(t, row, numColumns)
	assert.True(t, missing)
}

func TestReports(t *testing.T) {
	registry, kernels := testRegistries(t)
	method := &bytecode.Method{
		Name: "forward",
		Instructions: []bytecode.Instruction{
			{Op: bytecode.OpCodeLoadc, X: 0},
			{Op: bytecode.OpCodeOp, X: 0},
			{Op: bytecode.OpCodeOp, X: 1},
			{Op: bytecode.OpCodeOp, X: 2},
			{Op: bytecode.OpCodeRet},
		},
		OpNames:      []schema.OperatorName{{Name: "relu"}, {Name: "neg"}, {Name: "tanh"}},
		Constants:    []any{"scale"},
		RegisterSize: 2,
	}

	report := InstructionsReport(method)
	assert.Contains(t, report, "LOADC")
	assert.Contains(t, report, "scale")
	assert.Contains(t, report, "relu")

	report = OperatorsReport(method, registry)
	assert.Contains(t, report, "1 unresolved")
	assert.Contains(t, report, "kernel registry")
	assert.Contains(t, report, "relu(Tensor self) -> Tensor")

	report = MethodsReport([]*bytecode.Method{method})
	assert.Contains(t, report, "forward")

	report = CoverageReport([]*bytecode.Method{method}, allColumns, registry, kernels)
	assert.Contains(t, report, "tanh")
	assert.Contains(t, report, "CUDA")

	report = CoverageReport([]*bytecode.Method{method}, []backends.Backend{backends.BackendXLA}, registry, kernels)
	assert.Contains(t, report, "XLA")
	assert.NotContains(t, report, "CUDA")

	report = RegistryReport(registry, kernels)
	assert.Contains(t, report, "sigmoid(Tensor self) -> Tensor")
	assert.Contains(t, report, "neg(Tensor self) -> Tensor")
}

func TestSelectMethods(t *testing.T) {
	bc := &bytecode.Bytecode{Methods: []*bytecode.Method{{Name: "forward"}, {Name: "reset"}}}
	methods, err := selectMethods(bc, nil)
	require.NoError(t, err)
	assert.Len(t, methods, 2)

	methods, err = selectMethods(bc, []string{"reset"})
	require.NoError(t, err)
	require.Len(t, methods, 1)
	assert.Equal(t, "reset", methods[0].Name)

	_, err = selectMethods(bc, []string{"backward"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "forward")
}
