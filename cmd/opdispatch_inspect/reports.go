// Copyright 2023-2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

package main

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"

	"github.com/gomlx/opdispatch/pkg/bytecode"
	"github.com/gomlx/opdispatch/pkg/core/backends"
	"github.com/gomlx/opdispatch/pkg/core/schema"
	"github.com/gomlx/opdispatch/pkg/dispatch"
	"github.com/gomlx/opdispatch/pkg/kernelregistry"
	"github.com/gomlx/opdispatch/pkg/support/sets"
	"github.com/gomlx/opdispatch/pkg/support/xslices"
)

const (
	available   = "✓"
	unavailable = "-"
	fallback    = "*"
)

// MethodsReport lists the methods with their sizes.
func MethodsReport(methods []*bytecode.Method) string {
	table := newPlainTable(true, lipgloss.Left, lipgloss.Right)
	table.Headers("Method", "Instructions", "Operators", "Constants", "Registers")
	for _, method := range methods {
		table.Row(method.Name,
			humanize.Comma(int64(len(method.Instructions))),
			humanize.Comma(int64(len(method.OpNames))),
			humanize.Comma(int64(len(method.Constants))),
			humanize.Comma(int64(method.RegisterSize)))
	}
	return titleStyle.Render("Methods") + "\n" + table.Render()
}

// InstructionsReport lists the instructions of the method, with the operator or constant they reference.
func InstructionsReport(method *bytecode.Method) string {
	table := newPlainTable(true, lipgloss.Right, lipgloss.Left, lipgloss.Right, lipgloss.Right, lipgloss.Left)
	table.Headers("#", "OpCode", "X", "N", "Reference")
	for ii, ins := range method.Instructions {
		var reference string
		switch {
		case ins.Op.UsesOperator():
			reference = method.OpNames[ins.X].String()
		case ins.Op.UsesConstant():
			reference = fmt.Sprintf("%v", method.Constants[ins.X])
		}
		table.Row(fmt.Sprint(ii), ins.Op.String(), fmt.Sprint(ins.X), fmt.Sprint(ins.N), reference)
	}
	return titleStyle.Render(fmt.Sprintf("Instructions of %q", method.Name)) + "\n" + table.Render()
}

// OperatorsReport lists the operators of the method and how they resolve in the registry.
func OperatorsReport(method *bytecode.Method, registry *dispatch.Registry) string {
	resolved, _ := method.ResolveOperators(registry)
	table := newTableWithReds(true, lipgloss.Right, lipgloss.Left)
	table.Table.Headers("#", "Operator", "Dispatch", "Schema")
	for ii, op := range resolved {
		var route, schemaStr string
		switch {
		case op.Migrated:
			route = "kernel registry"
		case op.Table != nil:
			route = "dispatch table"
			schemaStr = op.Schema
		default:
			route = "unresolved"
		}
		table.Row(!op.Resolved(), fmt.Sprint(ii), op.Name.String(), route, schemaStr)
	}
	title := fmt.Sprintf("Operators of %q", method.Name)
	if table.NumReds > 0 {
		title += fmt.Sprintf(" (%d unresolved)", table.NumReds)
	}
	return titleStyle.Render(title) + "\n" + table.Table.Render()
}

// CoverageRow returns, for each of the columns backends followed by variable mode, whether the operator
// has an implementation: available for its own, fallback for the backends.BackendUndefined one.
// The returned bool reports whether the operator has no implementation at all.
func CoverageRow(op schema.OperatorName, columns []backends.Backend, registry *dispatch.Registry,
	kernels *kernelregistry.Registry) ([]string, bool) {
	var row []string
	if registry.IsMigratedOperator(op) {
		hasFallback := kernels.HasKernel(op, kernelregistry.KindCatchAll, backends.BackendUndefined)
		for _, backend := range columns {
			row = append(row, coverageMark(kernels.HasKernel(op, kernelregistry.KindBackend, backend), hasFallback))
		}
		row = append(row, coverageMark(kernels.HasKernel(op, kernelregistry.KindAutograd, backends.BackendUndefined), false))
		return row, !hasAny(row)
	}

	schemaStr, found := registry.FindSchema(op)
	var table *dispatch.OpTable
	if found {
		table, _ = registry.GetOpTable(schemaStr)
	}
	registered := sets.Make[backends.Backend]()
	if table != nil {
		registered.Insert(table.RegisteredBackends()...)
	}
	hasFallback := registered.Has(backends.BackendUndefined)
	for _, backend := range columns {
		row = append(row, coverageMark(registered.Has(backend), hasFallback))
	}
	row = append(row, coverageMark(table != nil && table.HasVariableOp(), false))
	return row, !hasAny(row)
}

func coverageMark(own, hasFallback bool) string {
	switch {
	case own:
		return available
	case hasFallback:
		return fallback
	}
	return unavailable
}

func hasAny(row []string) bool {
	for _, mark := range row {
		if mark != unavailable {
			return true
		}
	}
	return false
}

// CoverageReport shows, for each operator used by the methods, which backends can run it.
func CoverageReport(methods []*bytecode.Method, columns []backends.Backend, registry *dispatch.Registry,
	kernels *kernelregistry.Registry) string {
	ops := sets.Make[schema.OperatorName]()
	for _, method := range methods {
		ops.Insert(method.OpNames...)
	}
	table := newTableWithReds(true, lipgloss.Left, lipgloss.Center)
	header := append([]string{"Operator"}, xslices.Map(columns, backends.Backend.String)...)
	header = append(header, "Variable")
	table.Table.Headers(header...)
	for _, op := range sets.SortedFunc(ops, compareOperatorNames) {
		row, missing := CoverageRow(op, columns, registry, kernels)
		table.Row(missing, append([]string{op.String()}, row...)...)
	}
	legend := fmt.Sprintf("%s: own implementation, %s: fallback implementation, %s: none", available, fallback, unavailable)
	return titleStyle.Render("Coverage") + "\n" + table.Table.Render() + "\n" + legend
}

func compareOperatorNames(a, b schema.OperatorName) int {
	return strings.Compare(a.String(), b.String())
}

// RegistryReport lists the schemas of the dispatch registry and the operators of the kernel registry.
func RegistryReport(registry *dispatch.Registry, kernels *kernelregistry.Registry) string {
	table := newPlainTable(true, lipgloss.Left)
	table.Headers("Schema", "Backends", "Variable")
	for _, schemaStr := range registry.Schemas() {
		opTable, err := registry.GetOpTable(schemaStr)
		if err != nil {
			continue
		}
		names := xslices.Map(opTable.RegisteredBackends(), backends.Backend.String)
		variable := unavailable
		if opTable.HasVariableOp() {
			variable = available
		}
		table.Row(schemaStr, strings.Join(names, ", "), variable)
	}

	migrated := newPlainTable(true, lipgloss.Left)
	migrated.Headers("Operator", "Schema")
	for _, op := range kernels.Operators() {
		schemaStr, _ := kernels.Schema(op)
		migrated.Row(op.String(), schemaStr)
	}
	return titleStyle.Render(fmt.Sprintf("Dispatch registry (%d schemas)", len(registry.Schemas()))) + "\n" +
		table.Render() + "\n" +
		titleStyle.Render("Kernel registry") + "\n" + migrated.Render()
}
