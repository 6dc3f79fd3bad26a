// Copyright 2023-2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

// copyright_header adds the license header to the Go files of the module that miss it.
//
// With -check it only lists the files missing the header, and exits with an error if there are any.
package main

import (
	"flag"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"
	"k8s.io/klog/v2"
)

var (
	flagProject = flag.String("project", "GoMLX", "Project name used in the copyright header.")
	flagCheck   = flag.Bool("check", false, "Only list files missing the header, without changing them.")
)

func main() {
	klog.InitFlags(nil)
	flag.Usage = func() {
		_, _ = fmt.Fprintf(os.Stderr, "Usage: %s [flags] [path ...]\n\n", os.Args[0])
		flag.PrintDefaults()
	}
	flag.Parse()

	roots := flag.Args()
	if len(roots) == 0 {
		roots = []string{"."}
	}
	header := Header(*flagProject)
	var missing int
	for _, root := range roots {
		err := filepath.WalkDir(root, func(filePath string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if d.IsDir() {
				if skipDir(d.Name()) {
					return filepath.SkipDir
				}
				return nil
			}
			if !strings.HasSuffix(d.Name(), ".go") || strings.HasPrefix(d.Name(), "gen_") {
				return nil
			}
			changed, err := processFile(filePath, header, *flagCheck)
			if changed {
				missing++
			}
			return err
		})
		if err != nil {
			klog.Fatalf("Error walking %q: %+v", root, err)
		}
	}
	if *flagCheck && missing > 0 {
		klog.Errorf("%d files missing the copyright header", missing)
		os.Exit(1)
	}
}

// skipDir returns whether the directory is not part of the module sources: hidden, vendored or
// starting with "_".
func skipDir(name string) bool {
	if name == "." || name == ".." {
		return false
	}
	return strings.HasPrefix(name, ".") || strings.HasPrefix(name, "_") || name == "vendor"
}

// processFile adds the header to the file if missing, and returns whether it was missing.
func processFile(filePath, header string, checkOnly bool) (bool, error) {
	content, err := os.ReadFile(filePath)
	if err != nil {
		return false, errors.Wrapf(err, "failed to read %q", filePath)
	}
	newContent, changed := AddHeader(string(content), header)
	if !changed {
		return false, nil
	}
	if checkOnly {
		klog.Infof("Missing header: %s", filePath)
		return true, nil
	}
	klog.Infof("Adding header to %s", filePath)
	if err := os.WriteFile(filePath, []byte(newContent), 0o644); err != nil {
		return true, errors.Wrapf(err, "failed to write %q", filePath)
	}
	return true, nil
}
