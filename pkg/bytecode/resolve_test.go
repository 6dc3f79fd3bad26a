// Copyright 2023-2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

package bytecode

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gomlx/opdispatch/pkg/core/backends"
	"github.com/gomlx/opdispatch/pkg/core/schema"
	"github.com/gomlx/opdispatch/pkg/dispatch"
	"github.com/gomlx/opdispatch/pkg/kernelregistry"
	"github.com/gomlx/opdispatch/pkg/kernels"
	_ "github.com/gomlx/opdispatch/pkg/kernels/cpu"
	_ "github.com/gomlx/opdispatch/pkg/kernels/reference"
	"github.com/gomlx/opdispatch/pkg/support/sets"
)

func TestResolveOperators(t *testing.T) {
	const addSchema = "aten::add.Tensor(Tensor self, Tensor other) -> Tensor"
	registry := dispatch.NewRegistry(sets.MakeWith(schema.OperatorName{Name: "aten::neg"}), kernelregistry.New())
	registry.RegisterOp(backends.BackendUndefined, addSchema, func(x, y float32) float32 { return x + y })

	method := &Method{
		Name: "forward",
		OpNames: []schema.OperatorName{
			{Name: "aten::add", OverloadName: "Tensor"},
			{Name: "aten::neg"},
		},
	}
	resolved, err := method.ResolveOperators(registry)
	require.NoError(t, err)
	require.Len(t, resolved, 2)
	assert.Equal(t, addSchema, resolved[0].Schema)
	require.NotNil(t, resolved[0].Table)
	assert.Equal(t, addSchema, resolved[0].Table.Schema())
	assert.False(t, resolved[0].Migrated)
	assert.True(t, resolved[1].Migrated)
	assert.Nil(t, resolved[1].Table)
	assert.True(t, resolved[0].Resolved())
	assert.True(t, resolved[1].Resolved())

	method.OpNames = append(method.OpNames,
		schema.OperatorName{Name: "aten::mul", OverloadName: "Tensor"},
		schema.OperatorName{Name: "aten::add"})
	resolved, err = method.ResolveOperators(registry)
	require.ErrorIs(t, err, ErrUnresolvedOperator)
	assert.Contains(t, err.Error(), "aten::mul.Tensor, aten::add")
	require.Len(t, resolved, 4)
	assert.True(t, resolved[0].Resolved())
	assert.False(t, resolved[2].Resolved())
	assert.False(t, resolved[3].Resolved())
}

func TestResolveOperatorsGlobal(t *testing.T) {
	// Operator names as found in archives, resolved against the kernels' own registrations.
	method := &Method{
		Name: "forward",
		OpNames: []schema.OperatorName{
			{Name: "aten::add", OverloadName: "Tensor"},
			{Name: "aten::relu"},
			{Name: "aten::neg"},
			{Name: "aten::_cast_Byte"},
		},
	}
	resolved, err := method.ResolveOperators(dispatch.Global())
	require.NoError(t, err)
	require.Len(t, resolved, 4)
	assert.Equal(t, kernels.AddSchema, resolved[0].Schema)
	assert.Equal(t, kernels.ReluSchema, resolved[1].Schema)
	assert.True(t, resolved[2].Migrated)
	assert.True(t, resolved[3].Migrated)
	for _, op := range resolved {
		assert.True(t, op.Resolved(), "operator %s", op.Name)
	}
	_, found := kernelregistry.Global().Schema(schema.OperatorName{Name: "aten::neg"})
	assert.True(t, found)

	// Names without the namespace are not the kernels' operators.
	method.OpNames = []schema.OperatorName{{Name: "add", OverloadName: "Tensor"}, {Name: "neg"}}
	resolved, err = method.ResolveOperators(dispatch.Global())
	require.ErrorIs(t, err, ErrUnresolvedOperator)
	assert.False(t, resolved[0].Resolved())
	assert.False(t, resolved[1].Resolved())
}
