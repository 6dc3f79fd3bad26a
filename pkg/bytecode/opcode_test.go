// Copyright 2023-2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

package bytecode

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseOpCode(t *testing.T) {
	for name, want := range map[string]OpCode{
		"OP":              OpCodeOp,
		"LOADC":           OpCodeLoadc,
		"GET_ATTR":        OpCodeGetAttr,
		"TUPLE_CONSTRUCT": OpCodeTupleConstruct,
		"RET":             OpCodeRet,
	} {
		got, err := ParseOpCode(name)
		require.NoError(t, err)
		assert.Equal(t, want, got)
		assert.Equal(t, name, got.String())
	}
	for _, name := range []string{"", "INVALID", "NOP", "get_attr "} {
		_, err := ParseOpCode(name)
		require.ErrorIs(t, err, ErrUnknownOpCode, "op code %q", name)
	}
	assert.True(t, OpCodeOpn.UsesOperator())
	assert.False(t, OpCodeLoadc.UsesOperator())
	assert.True(t, OpCodeLoadc.UsesConstant())
}

func TestParseGCSURL(t *testing.T) {
	bucket, object, err := ParseGCSURL("gs://models/mobile/model.ptl")
	require.NoError(t, err)
	assert.Equal(t, "models", bucket)
	assert.Equal(t, "mobile/model.ptl", object)
	assert.True(t, IsGCSURL("gs://models/model.ptl"))
	assert.False(t, IsGCSURL("/tmp/model.ptl"))

	for _, url := range []string{"models/model.ptl", "gs://models", "gs:///model.ptl", "gs://models/"} {
		_, _, err := ParseGCSURL(url)
		require.Error(t, err, "url %q", url)
	}
}
