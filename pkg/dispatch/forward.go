// Copyright 2023-2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

package dispatch

import (
	"github.com/gomlx/opdispatch/pkg/core/backends"
	"github.com/gomlx/opdispatch/pkg/core/schema"
	"github.com/gomlx/opdispatch/pkg/kernelregistry"
	"github.com/gomlx/opdispatch/pkg/support/sets"
)

// Forwarder receives the registrations of migrated operators.
type Forwarder interface {
	// RegisterCatchAllKernel is used for registrations for backends.BackendUndefined.
	RegisterCatchAllKernel(schema string, fn any) (*kernelregistry.Handle, error)

	// RegisterKernel is used for registrations for a specific backend.
	RegisterKernel(schema string, backend backends.Backend, fn any) (*kernelregistry.Handle, error)

	// RegisterAutogradKernel is used for variable mode registrations.
	RegisterAutogradKernel(schema string, fn any) (*kernelregistry.Handle, error)
}

// Compile time check.
var _ Forwarder = (*kernelregistry.Registry)(nil)

// DefaultMigratedOps returns the operators the Global registry forwards to kernelregistry.Global().
// Names include the "aten" namespace, as in the schemas they are parsed from.
func DefaultMigratedOps() sets.Set[schema.OperatorName] {
	return sets.MakeWith(
		schema.OperatorName{Name: "aten::neg"},
		schema.OperatorName{Name: "aten::neg", OverloadName: "out"},
		schema.OperatorName{Name: "aten::abs"},
		schema.OperatorName{Name: "aten::abs", OverloadName: "out"},
		schema.OperatorName{Name: "aten::_cast_Byte"},
		schema.OperatorName{Name: "aten::_cast_Char"},
		schema.OperatorName{Name: "aten::_cast_Double"},
		schema.OperatorName{Name: "aten::_cast_Float"},
		schema.OperatorName{Name: "aten::_cast_Int"},
		schema.OperatorName{Name: "aten::_cast_Long"},
		schema.OperatorName{Name: "aten::_cast_Short"},
		schema.OperatorName{Name: "aten::_cast_Half"},
	)
}
