// Copyright 2023-2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

package main

import (
	"fmt"
	"strings"
)

// maxHeaderLine is the last line where an existing copyright notice is looked for.
const maxHeaderLine = 50

// Header returns the copyright header line for the project, followed by an empty line.
func Header(project string) string {
	return fmt.Sprintf("// Copyright 2023-2026 The %s Authors. SPDX-License-Identifier: Apache-2.0\n\n", project)
}

// AddHeader returns content with the header added, and whether it was missing.
//
// The header goes at the top of the file, or after the build constraints if there are any.
func AddHeader(content, header string) (string, bool) {
	lines := strings.Split(content, "\n")
	lastBuildTag := -1
	for ii, line := range lines {
		if ii > maxHeaderLine {
			break
		}
		trimmed := strings.TrimSpace(line)
		if strings.HasPrefix(trimmed, "// Copyright") {
			return content, false
		}
		if strings.HasPrefix(trimmed, "//go:build") || strings.HasPrefix(trimmed, "// +build") {
			lastBuildTag = ii
		}
	}
	if lastBuildTag < 0 {
		return header + content, true
	}
	prefix := strings.Join(lines[:lastBuildTag+1], "\n")
	suffix := strings.TrimLeft(strings.Join(lines[lastBuildTag+1:], "\n"), "\n")
	return prefix + "\n\n" + header + suffix, true
}
