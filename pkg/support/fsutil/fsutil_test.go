// Copyright 2023-2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

package fsutil

import (
	"os"
	"os/user"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFileExists(t *testing.T) {
	dir := t.TempDir()
	filePath := filepath.Join(dir, "archive.ptl")
	exists, err := FileExists(filePath)
	require.NoError(t, err)
	assert.False(t, exists)

	require.NoError(t, os.WriteFile(filePath, []byte("x"), 0o644))
	exists, err = FileExists(filePath)
	require.NoError(t, err)
	assert.True(t, exists)
}

func TestExpandHome(t *testing.T) {
	usr, err := user.Current()
	require.NoError(t, err)

	got, err := ExpandHome("~/models/archive.ptl")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(usr.HomeDir, "models/archive.ptl"), got)

	got, err = ExpandHome("~")
	require.NoError(t, err)
	assert.Equal(t, filepath.Clean(usr.HomeDir), got)

	got, err = ExpandHome("/tmp/archive.ptl")
	require.NoError(t, err)
	assert.Equal(t, "/tmp/archive.ptl", got)

	_, err = ExpandHome("~no_such_user_for_test/archive.ptl")
	require.Error(t, err)
}
