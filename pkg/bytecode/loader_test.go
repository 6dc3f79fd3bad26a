// Copyright 2023-2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

package bytecode

import (
	"archive/zip"
	"bytes"
	"os"
	"path"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gomlx/opdispatch/pkg/core/schema"
)

// methodValue builds the unpickled form of a method.
func methodValue(name string, instructions, operators, constants []any, aggOutputSize any) []any {
	return []any{name, []any{
		[]any{"instructions", instructions},
		[]any{"operators", operators},
		[]any{"constants", constants},
		[]any{"agg_output_size", aggOutputSize},
	}}
}

func forwardMethod() []any {
	return methodValue("forward",
		[]any{[]any{"OP", 0, 0}},
		[]any{[]any{"aten::add", "Tensor"}},
		[]any{1},
		1)
}

func moduleObject() pickledObject {
	return pickledObject{
		module: "__torch__", name: "Model",
		attrs: map[string]any{
			"training": false,
			"scale":    0.5,
			"weight": pickledStorage{
				module: "torch", name: "FloatStorage",
				key: "0", location: "cpu", numel: 2,
			},
		},
	}
}

func testRecords(methods ...any) MapRecords {
	return MapRecords{
		"bytecode.pkl": pickleOf(methods),
		"data.pkl":     pickleOf(moduleObject()),
		"data/0":       {0, 0, 128, 63, 0, 0, 0, 64},
	}
}

func TestLoad(t *testing.T) {
	bc, err := Load(testRecords(forwardMethod()))
	require.NoError(t, err)

	require.Len(t, bc.Methods, 1)
	method, found := bc.Method("forward")
	require.True(t, found)
	assert.Equal(t, "forward", method.Name)
	assert.Equal(t, []Instruction{{Op: OpCodeOp, X: 0, N: 0}}, method.Instructions)
	assert.Equal(t, []schema.OperatorName{{Name: "aten::add", OverloadName: "Tensor"}}, method.OpNames)
	assert.Equal(t, []any{1}, method.Constants)
	assert.Equal(t, 1, method.RegisterSize)
	_, found = bc.Method("backward")
	assert.False(t, found)

	require.NotNil(t, bc.Object)
	assert.Equal(t, "__torch__.Model", bc.Object.Class.QualifiedName)
	assert.Equal(t, []string{"scale", "training", "weight"}, bc.Object.Attrs())
	training, found := bc.Object.Attr("training")
	require.True(t, found)
	assert.Equal(t, false, training)
	scale, _ := bc.Object.Attr("scale")
	assert.Equal(t, 0.5, scale)
	weight, _ := bc.Object.Attr("weight")
	require.IsType(t, &Storage{}, weight)
	storage := weight.(*Storage)
	assert.Equal(t, "torch.FloatStorage", storage.Type)
	assert.Equal(t, "cpu", storage.Location)
	assert.Equal(t, []byte{0, 0, 128, 63, 0, 0, 0, 64}, storage.Data)

	// Classes are created on first reference, and shared.
	assert.Equal(t, []string{"__torch__.Model", "torch.FloatStorage"}, bc.Unit.Classes())
	assert.Same(t, bc.Object.Class, bc.Unit.Class("__torch__.Model"))
}

func TestLoadNestedValues(t *testing.T) {
	method := methodValue("forward",
		[]any{[]any{"LOADC", 0, 0}, []any{"LOADC", 1, 0}, []any{"LOADC", 2, 0}, []any{"RET", 0, 0}},
		[]any{},
		[]any{
			pickledList{1, 2, 3},
			pickledReduce{module: "torch._utils", name: "_rebuild_tensor_v2", args: []any{"arg", 300}},
			pickledIntDict{1: []any{2, 3}, 4: pickledList{"x"}},
		},
		3)
	bc, err := Load(testRecords(method))
	require.NoError(t, err)
	constants := bc.Methods[0].Constants
	require.Len(t, constants, 3)
	assert.Equal(t, []any{1, 2, 3}, constants[0])
	assert.Equal(t, map[any]any{1: []any{2, 3}, 4: []any{"x"}}, constants[2])
	require.IsType(t, &Object{}, constants[1])
	rebuilt := constants[1].(*Object)
	assert.Equal(t, "torch._utils._rebuild_tensor_v2", rebuilt.Class.String())
	assert.Equal(t, []any{"arg", 300}, rebuilt.Args)
	assert.Empty(t, bc.Methods[0].OpNames)
}

func TestLoadMalformed(t *testing.T) {
	testCases := []struct {
		name        string
		method      []any
		wantErr     error
		wantMessage string
	}{
		{
			name: "missing operators section",
			method: []any{"forward", []any{
				[]any{"instructions", []any{}},
				[]any{"constants", []any{}},
				[]any{"agg_output_size", 0},
			}},
			wantErr:     ErrBytecodeShape,
			wantMessage: `"operators" is expected, but got "constants"`,
		},
		{
			name: "missing trailing section",
			method: []any{"forward", []any{
				[]any{"instructions", []any{}},
				[]any{"operators", []any{}},
				[]any{"constants", []any{}},
			}},
			wantErr:     ErrBytecodeShape,
			wantMessage: `"agg_output_size" is expected, but it is missing`,
		},
		{
			name: "extra section",
			method: []any{"forward", []any{
				[]any{"instructions", []any{}},
				[]any{"operators", []any{}},
				[]any{"constants", []any{}},
				[]any{"agg_output_size", 0},
				[]any{"types", []any{}},
			}},
			wantErr:     ErrBytecodeShape,
			wantMessage: "has 5 sections, expected 4",
		},
		{
			name: "renamed operators section",
			method: []any{"forward", []any{
				[]any{"instructions", []any{}},
				[]any{"ops", []any{}},
				[]any{"constants", []any{}},
				[]any{"agg_output_size", 0},
			}},
			wantErr:     ErrBytecodeShape,
			wantMessage: `"operators" is expected, but got "ops"`,
		},
		{
			name:        "unknown op code",
			method:      methodValue("forward", []any{[]any{"FOO", 0, 0}}, []any{}, []any{}, 0),
			wantErr:     ErrUnknownOpCode,
			wantMessage: "FOO",
		},
		{
			name:        "invalid op code",
			method:      methodValue("forward", []any{[]any{"INVALID", 0, 0}}, []any{}, []any{}, 0),
			wantErr:     ErrUnknownOpCode,
			wantMessage: "INVALID",
		},
		{
			name:        "instruction with two parts",
			method:      methodValue("forward", []any{[]any{"RET", 0}}, []any{}, []any{}, 0),
			wantErr:     ErrBytecodeShape,
			wantMessage: "must have 3 elements",
		},
		{
			name:        "operator with one part",
			method:      methodValue("forward", []any{}, []any{[]any{"aten::add"}}, []any{}, 0),
			wantErr:     ErrBytecodeShape,
			wantMessage: "must have 2 elements",
		},
		{
			name:        "agg_output_size not an int",
			method:      methodValue("forward", []any{}, []any{}, []any{}, "one"),
			wantErr:     ErrBytecodeShape,
			wantMessage: "agg_output_size",
		},
		{
			name:        "operator index out of range",
			method:      methodValue("forward", []any{[]any{"OP", 1, 0}}, []any{[]any{"aten::add", ""}}, []any{}, 0),
			wantErr:     ErrBytecodeShape,
			wantMessage: "references operator 1",
		},
		{
			name:        "constant index out of range",
			method:      methodValue("forward", []any{[]any{"LOADC", 0, 0}}, []any{}, []any{}, 0),
			wantErr:     ErrBytecodeShape,
			wantMessage: "references constant 0",
		},
		{
			name:        "method name not a string",
			method:      []any{1, []any{}},
			wantErr:     ErrBytecodeShape,
			wantMessage: "name of method #0",
		},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Load(testRecords(tc.method))
			require.ErrorIs(t, err, tc.wantErr)
			assert.Contains(t, err.Error(), tc.wantMessage)
		})
	}
}

func TestLoadMissingRecords(t *testing.T) {
	records := testRecords(forwardMethod())
	delete(records, "data/0")
	_, err := Load(records)
	require.ErrorIs(t, err, ErrMissingRecord)
	assert.Contains(t, err.Error(), "data/0")

	records = testRecords(forwardMethod())
	delete(records, "data.pkl")
	_, err = Load(records)
	require.ErrorIs(t, err, ErrMissingRecord)

	_, err = Load(MapRecords{})
	require.ErrorIs(t, err, ErrMissingRecord)
	assert.Contains(t, err.Error(), "bytecode.pkl")
}

func TestLoadNotAnObject(t *testing.T) {
	records := testRecords(forwardMethod())
	records["data.pkl"] = pickleOf([]any{1, 2})
	_, err := Load(records)
	require.ErrorIs(t, err, ErrBytecodeShape)
}

// fixedDeserializer returns predefined values per archive, ignoring the pickled bytes.
type fixedDeserializer map[string]any

func (d fixedDeserializer) Deserialize(pickled []byte, unit *CompilationUnit, _ func(string) ([]byte, error)) (any, error) {
	value := d[string(pickled)]
	if value == "object" {
		return &Object{Class: unit.Class("test.Object")}, nil
	}
	return value, nil
}

func TestLoadWithDeserializer(t *testing.T) {
	records := MapRecords{
		"bytecode.pkl": []byte("bytecode"),
		"data.pkl":     []byte("data"),
	}
	deserializer := fixedDeserializer{
		"bytecode": []any{forwardMethod(), methodValue("reset", []any{[]any{"RET", 0, 0}}, []any{}, []any{}, 0)},
		"data":     "object",
	}
	bc, err := Load(records, WithDeserializer(deserializer))
	require.NoError(t, err)
	require.Len(t, bc.Methods, 2)
	assert.Equal(t, "reset", bc.Methods[1].Name)
	assert.Equal(t, OpCodeRet, bc.Methods[1].Instructions[0].Op)
	assert.Equal(t, "test.Object", bc.Object.Class.QualifiedName)
}

func zipArchive(t *testing.T, archive string, records MapRecords) []byte {
	var buf bytes.Buffer
	w := zip.NewWriter(&buf)
	for _, name := range records.Records() {
		f, err := w.Create(path.Join(archive, name))
		require.NoError(t, err)
		_, err = f.Write(records[name])
		require.NoError(t, err)
	}
	require.NoError(t, w.Close())
	return buf.Bytes()
}

func TestZipRecords(t *testing.T) {
	data := zipArchive(t, "model", testRecords(forwardMethod()))
	records, err := NewZipRecords(bytes.NewReader(data), int64(len(data)))
	require.NoError(t, err)
	assert.Equal(t, "model", records.Archive())
	assert.Equal(t, []string{"bytecode.pkl", "data.pkl", "data/0"}, records.Records())
	size, found := records.RecordSize("data/0")
	assert.True(t, found)
	assert.Equal(t, uint64(8), size)
	_, err = records.Record("model/data.pkl")
	require.ErrorIs(t, err, ErrMissingRecord)

	bc, err := Load(records)
	require.NoError(t, err)
	assert.Len(t, bc.Methods, 1)
	require.NoError(t, records.Close())
}

func TestOpenZip(t *testing.T) {
	filePath := path.Join(t.TempDir(), "model.ptl")
	require.NoError(t, os.WriteFile(filePath, zipArchive(t, "model", testRecords(forwardMethod())), 0o644))
	records, err := OpenZip(filePath)
	require.NoError(t, err)
	defer func() { require.NoError(t, records.Close()) }()
	bc, err := Load(records)
	require.NoError(t, err)
	assert.Equal(t, "forward", bc.Methods[0].Name)

	_, err = OpenZip(path.Join(t.TempDir(), "missing.ptl"))
	require.Error(t, err)
}

func TestZipRecordsInvalid(t *testing.T) {
	_, err := NewZipRecords(bytes.NewReader([]byte("not a zip")), 9)
	require.Error(t, err)

	// Entries must share the top-level directory.
	var buf bytes.Buffer
	w := zip.NewWriter(&buf)
	for _, name := range []string{"model/bytecode.pkl", "other/data.pkl"} {
		_, err := w.Create(name)
		require.NoError(t, err)
	}
	require.NoError(t, w.Close())
	_, err = NewZipRecords(bytes.NewReader(buf.Bytes()), int64(buf.Len()))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "other/data.pkl")
}
