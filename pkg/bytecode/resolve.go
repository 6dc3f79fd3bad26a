// Copyright 2023-2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

package bytecode

import (
	"strings"

	"github.com/pkg/errors"

	"github.com/gomlx/opdispatch/pkg/core/schema"
	"github.com/gomlx/opdispatch/pkg/dispatch"
)

// ResolvedOperator is an operator of a Method, matched to its registration.
type ResolvedOperator struct {
	Name schema.OperatorName

	// Migrated operators are dispatched by the kernel registry: they have no Schema or Table.
	Migrated bool

	// Schema and Table of the operator, if it has a table in the registry.
	Schema string
	Table  *dispatch.OpTable
}

// Resolved returns whether the operator can be dispatched.
func (op ResolvedOperator) Resolved() bool {
	return op.Migrated || op.Table != nil
}

// ResolveOperators matches each operator of the method, in the order of Method.OpNames, to its table
// in the registry.
//
// All operators are returned, and if some are neither migrated nor registered, the error wraps
// ErrUnresolvedOperator and lists them.
func (m *Method) ResolveOperators(registry *dispatch.Registry) ([]ResolvedOperator, error) {
	resolved := make([]ResolvedOperator, len(m.OpNames))
	var missing []string
	for ii, op := range m.OpNames {
		resolved[ii].Name = op
		if registry.IsMigratedOperator(op) {
			resolved[ii].Migrated = true
			continue
		}
		schemaStr, found := registry.FindSchema(op)
		if !found {
			missing = append(missing, op.String())
			continue
		}
		table, err := registry.GetOpTable(schemaStr)
		if err != nil {
			return nil, errors.WithMessagef(err, "method %q, operator %s", m.Name, op)
		}
		resolved[ii].Schema = schemaStr
		resolved[ii].Table = table
	}
	if len(missing) > 0 {
		return resolved, errors.Wrapf(ErrUnresolvedOperator, "method %q uses operators with no registration: %s",
			m.Name, strings.Join(missing, ", "))
	}
	return resolved, nil
}
