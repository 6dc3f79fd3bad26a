// Copyright 2023-2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

// opdispatch_inspect prints the contents of a bytecode archive, and how its operators are served by the
// dispatch registry.
//
// Usage:
//
//	opdispatch_inspect [-methods] [-instructions] [-operators] [-coverage] [-registry] \
//		[-method=name,...] [-backends=CPU,...] <archive.ptl|gs://bucket/object>
//
// Only -registry can be used without an archive.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"
	"github.com/janpfeifer/must"
	"github.com/pkg/errors"
	"k8s.io/klog/v2"

	"github.com/gomlx/opdispatch/pkg/bytecode"
	"github.com/gomlx/opdispatch/pkg/core/backends"
	"github.com/gomlx/opdispatch/pkg/dispatch"
	"github.com/gomlx/opdispatch/pkg/kernelregistry"
	"github.com/gomlx/opdispatch/pkg/support/fsutil"
	"github.com/gomlx/opdispatch/pkg/support/xslices"

	// Registered kernels.
	_ "github.com/gomlx/opdispatch/pkg/kernels/autograd"
	_ "github.com/gomlx/opdispatch/pkg/kernels/cpu"
	_ "github.com/gomlx/opdispatch/pkg/kernels/reference"
)

var (
	flagMethods      = flag.Bool("methods", false, "Lists the methods of the archive.")
	flagInstructions = flag.Bool("instructions", false, "Lists the instructions of each method.")
	flagRegistry     = flag.Bool("registry", false, "Lists all the registered operators.")

	flagOperators = flag.Bool("operators", false,
		"Lists the operators used by each method, and the schema they resolve to. Unresolved operators are shown in red.")

	flagCoverage = flag.Bool("coverage", false,
		"For each operator used by the archive, shows which backends have an implementation.")

	flagBackends = xslices.Flag("backends", nil,
		"Comma-separated list of backends shown by -coverage. Defaults to all backends.",
		backends.BackendString)

	flagMethodNames = xslices.Flag("method", nil,
		"Comma-separated list of methods: if set, restricts the reports to these methods.",
		func(name string) (string, error) { return name, nil })
)

var titleStyle = lipgloss.NewStyle().Bold(true).Padding(1, 4, 1, 4)

func main() {
	klog.InitFlags(nil)
	flag.Parse()

	args := flag.Args()
	if len(args) > 1 {
		klog.Errorf("Too many arguments. See 'opdispatch_inspect -help'.")
		os.Exit(1)
	}
	registry, kernels := dispatch.Global(), kernelregistry.Global()
	if len(args) == 0 {
		if !*flagRegistry {
			klog.Errorf("Missing bytecode archive to read from. See 'opdispatch_inspect -help'")
			os.Exit(1)
		}
		fmt.Println(RegistryReport(registry, kernels))
		return
	}

	records := must.M1(openArchive(context.Background(), args[0]))
	defer func() { _ = records.Close() }()
	bc := must.M1(bytecode.Load(records))
	methods := must.M1(selectMethods(bc, *flagMethodNames))

	fmt.Println(SummaryReport(args[0], records, bc))
	if *flagMethods {
		fmt.Println(MethodsReport(methods))
	}
	if *flagInstructions {
		for _, method := range methods {
			fmt.Println(InstructionsReport(method))
		}
	}
	if *flagOperators {
		for _, method := range methods {
			fmt.Println(OperatorsReport(method, registry))
		}
	}
	if *flagCoverage {
		columns := *flagBackends
		if len(columns) == 0 {
			columns = backends.Valid()[1:]
		}
		fmt.Println(CoverageReport(methods, columns, registry, kernels))
	}
	if *flagRegistry {
		fmt.Println(RegistryReport(registry, kernels))
	}
}

// selectMethods returns the methods with the given names, or all methods if names is empty.
func selectMethods(bc *bytecode.Bytecode, names []string) ([]*bytecode.Method, error) {
	if len(names) == 0 {
		return bc.Methods, nil
	}
	methods := make([]*bytecode.Method, 0, len(names))
	for _, name := range names {
		method, found := bc.Method(name)
		if !found {
			return nil, errors.Errorf("method %q not found, available methods: %v", name,
				xslices.Map(bc.Methods, func(m *bytecode.Method) string { return m.Name }))
		}
		methods = append(methods, method)
	}
	return methods, nil
}

func openArchive(ctx context.Context, location string) (*bytecode.ZipRecords, error) {
	if bytecode.IsGCSURL(location) {
		return bytecode.OpenGCS(ctx, location)
	}
	filePath, err := fsutil.ExpandHome(location)
	if err != nil {
		return nil, err
	}
	exists, err := fsutil.FileExists(filePath)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, errors.Errorf("bytecode archive %q not found", filePath)
	}
	return bytecode.OpenZip(filePath)
}

// SummaryReport of the archive: records, sizes, methods and module class.
func SummaryReport(location string, records *bytecode.ZipRecords, bc *bytecode.Bytecode) string {
	table := newPlainTable(false, lipgloss.Right, lipgloss.Left)
	table.Row("archive", location)
	table.Row("archive name", records.Archive())
	var totalSize uint64
	names := records.Records()
	for _, name := range names {
		size, _ := records.RecordSize(name)
		totalSize += size
	}
	table.Row("# records", humanize.Comma(int64(len(names))))
	table.Row("# bytes", humanize.Bytes(totalSize))
	table.Row("# methods", humanize.Comma(int64(len(bc.Methods))))
	table.Row("module class", bc.Object.Class.String())
	table.Row("# classes", humanize.Comma(int64(len(bc.Unit.Classes()))))
	return titleStyle.Render("Summary") + "\n" + table.Render()
}
