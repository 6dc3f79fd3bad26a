// Copyright 2023-2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

package bytecode

import (
	"fmt"
	"math/big"

	"github.com/pkg/errors"
	"k8s.io/klog/v2"

	"github.com/gomlx/opdispatch/pkg/core/schema"
)

// Names of the pickled archives in a bytecode package.
const (
	BytecodeArchive = "bytecode"
	DataArchive     = "data"
)

// Instruction of a Method. The meaning of X and N depends on the Op.
type Instruction struct {
	Op OpCode
	X  int
	N  int
}

// String implements fmt.Stringer.
func (ins Instruction) String() string {
	return fmt.Sprintf("%s %d %d", ins.Op, ins.X, ins.N)
}

// Method is one compiled method of the bytecode package.
type Method struct {
	Name         string
	Instructions []Instruction

	// OpNames are the operators referenced by OpCodeOp and OpCodeOpn instructions.
	OpNames []schema.OperatorName

	// Constants referenced by OpCodeLoadc instructions.
	Constants []any

	// RegisterSize is the number of registers needed to run the method.
	RegisterSize int
}

// Bytecode is the loaded bytecode package: its methods and the module object.
type Bytecode struct {
	Methods []*Method
	Object  *Object

	// Unit holds the classes referenced by the package.
	Unit *CompilationUnit
}

// Method returns the method with the given name.
func (bc *Bytecode) Method(name string) (*Method, bool) {
	for _, method := range bc.Methods {
		if method.Name == name {
			return method, true
		}
	}
	return nil, false
}

// Option for Load.
type Option func(l *loader)

// WithDeserializer sets the Deserializer used for the pickled archives. The default is PickleDeserializer.
func WithDeserializer(deserializer Deserializer) Option {
	return func(l *loader) {
		l.deserializer = deserializer
	}
}

type loader struct {
	records      RecordReader
	deserializer Deserializer
	unit         *CompilationUnit
}

// Load the bytecode package from its records.
//
// It reads the methods from "bytecode.pkl" and the module object from "data.pkl". Persistent records
// referenced by an archive are read from "<archive>/<key>".
func Load(records RecordReader, opts ...Option) (*Bytecode, error) {
	l := &loader{
		records:      records,
		deserializer: PickleDeserializer{},
		unit:         NewCompilationUnit(),
	}
	for _, opt := range opts {
		opt(l)
	}

	methodsValue, err := l.readArchive(BytecodeArchive)
	if err != nil {
		return nil, err
	}
	methodValues, ok := methodsValue.([]any)
	if !ok {
		return nil, errors.Wrapf(ErrBytecodeShape, "%s.pkl must hold a tuple of methods, got %T",
			BytecodeArchive, methodsValue)
	}
	bc := &Bytecode{Unit: l.unit}
	bc.Methods, err = parseMethods(methodValues)
	if err != nil {
		return nil, err
	}

	objectValue, err := l.readArchive(DataArchive)
	if err != nil {
		return nil, err
	}
	bc.Object, ok = objectValue.(*Object)
	if !ok {
		return nil, errors.Wrapf(ErrBytecodeShape, "%s.pkl must hold an object, got %T", DataArchive, objectValue)
	}
	klog.V(1).Infof("bytecode: loaded %d methods, module object of class %s", len(bc.Methods), bc.Object.Class)
	return bc, nil
}

// readArchive reads and deserializes "<archive>.pkl".
func (l *loader) readArchive(archive string) (any, error) {
	pickled, err := l.records.Record(archive + ".pkl")
	if err != nil {
		return nil, err
	}
	readRecord := func(name string) ([]byte, error) {
		return l.records.Record(archive + "/" + name)
	}
	value, err := l.deserializer.Deserialize(pickled, l.unit, readRecord)
	if err != nil {
		return nil, errors.WithMessagef(err, "reading archive %q", archive)
	}
	return value, nil
}

// parseMethods converts the unpickled methods, each a tuple (name, (instructions, operators, constants,
// agg_output_size)) where each section is a tuple (section name, value).
func parseMethods(values []any) ([]*Method, error) {
	methods := make([]*Method, 0, len(values))
	for ii, value := range values {
		methodTuple, err := tupleOf(value, 2, "method #%d", ii)
		if err != nil {
			return nil, err
		}
		name, err := stringOf(methodTuple[0], "name of method #%d", ii)
		if err != nil {
			return nil, err
		}
		method := &Method{Name: name}
		sections, err := parseSections(methodTuple[1], name)
		if err != nil {
			return nil, err
		}

		insList, err := tupleOf(sections[0], -1, "instructions of method %q", name)
		if err != nil {
			return nil, err
		}
		for jj, insValue := range insList {
			ins, err := parseInstruction(insValue)
			if err != nil {
				return nil, errors.WithMessagef(err, "instruction #%d of method %q", jj, name)
			}
			method.Instructions = append(method.Instructions, ins)
		}

		opsList, err := tupleOf(sections[1], -1, "operators of method %q", name)
		if err != nil {
			return nil, err
		}
		for jj, opValue := range opsList {
			opTuple, err := tupleOf(opValue, 2, "operator #%d of method %q", jj, name)
			if err != nil {
				return nil, err
			}
			var op schema.OperatorName
			if op.Name, err = stringOf(opTuple[0], "name of operator #%d of method %q", jj, name); err != nil {
				return nil, err
			}
			if op.OverloadName, err = stringOf(opTuple[1], "overload name of operator #%d of method %q", jj, name); err != nil {
				return nil, err
			}
			method.OpNames = append(method.OpNames, op)
		}

		method.Constants, err = tupleOf(sections[2], -1, "constants of method %q", name)
		if err != nil {
			return nil, err
		}

		method.RegisterSize, err = intOf(sections[3], "agg_output_size of method %q", name)
		if err != nil {
			return nil, err
		}
		if method.RegisterSize < 0 {
			return nil, errors.Wrapf(ErrBytecodeShape, "negative agg_output_size %d for method %q",
				method.RegisterSize, name)
		}

		if err := method.check(); err != nil {
			return nil, err
		}
		methods = append(methods, method)
	}
	return methods, nil
}

func parseInstruction(value any) (Instruction, error) {
	var ins Instruction
	insTuple, err := tupleOf(value, 3, "instruction")
	if err != nil {
		return ins, err
	}
	opName, err := stringOf(insTuple[0], "op code")
	if err != nil {
		return ins, err
	}
	if ins.Op, err = ParseOpCode(opName); err != nil {
		return ins, err
	}
	if ins.X, err = intOf(insTuple[1], "X of %s", opName); err != nil {
		return ins, err
	}
	if ins.N, err = intOf(insTuple[2], "N of %s", opName); err != nil {
		return ins, err
	}
	return ins, nil
}

// check that instructions only reference existing operators and constants.
func (m *Method) check() error {
	for ii, ins := range m.Instructions {
		switch {
		case ins.Op.UsesOperator() && (ins.X < 0 || ins.X >= len(m.OpNames)):
			return errors.Wrapf(ErrBytecodeShape, "method %q instruction #%d (%s) references operator %d, but there are only %d",
				m.Name, ii, ins, ins.X, len(m.OpNames))
		case ins.Op.UsesConstant() && (ins.X < 0 || ins.X >= len(m.Constants)):
			return errors.Wrapf(ErrBytecodeShape, "method %q instruction #%d (%s) references constant %d, but there are only %d",
				m.Name, ii, ins, ins.X, len(m.Constants))
		}
	}
	return nil
}

// methodSections are the names of the sections of a method, in order.
var methodSections = []string{"instructions", "operators", "constants", "agg_output_size"}

// parseSections returns the values of the sections of a method, in the order of methodSections.
// Names are checked in order, so a missing section is reported by name.
func parseSections(value any, methodName string) ([]any, error) {
	sections, err := tupleOf(value, -1, "sections of method %q", methodName)
	if err != nil {
		return nil, err
	}
	values := make([]any, len(methodSections))
	for ii, expected := range methodSections {
		if ii >= len(sections) {
			return nil, errors.Wrapf(ErrBytecodeShape, "method %q: %q is expected, but it is missing",
				methodName, expected)
		}
		if values[ii], err = section(sections[ii], expected, methodName); err != nil {
			return nil, err
		}
	}
	if len(sections) > len(methodSections) {
		return nil, errors.Wrapf(ErrBytecodeShape, "method %q has %d sections, expected %d",
			methodName, len(sections), len(methodSections))
	}
	return values, nil
}

// section returns the value of a (name, value) tuple, checking the name is the expected one.
func section(value any, expected, methodName string) (any, error) {
	named, err := tupleOf(value, 2, "section %q of method %q", expected, methodName)
	if err != nil {
		return nil, err
	}
	name, err := stringOf(named[0], "section name of method %q", methodName)
	if err != nil {
		return nil, err
	}
	if name != expected {
		return nil, errors.Wrapf(ErrBytecodeShape, "method %q: %q is expected, but got %q", methodName, expected, name)
	}
	return named[1], nil
}

// tupleOf converts value to a tuple of the given length, or of any length if length < 0.
func tupleOf(value any, length int, format string, args ...any) ([]any, error) {
	tuple, ok := value.([]any)
	if !ok {
		return nil, errors.Wrapf(ErrBytecodeShape, "%s must be a tuple, got %T", fmt.Sprintf(format, args...), value)
	}
	if length >= 0 && len(tuple) != length {
		return nil, errors.Wrapf(ErrBytecodeShape, "%s must have %d elements, got %d",
			fmt.Sprintf(format, args...), length, len(tuple))
	}
	return tuple, nil
}

func stringOf(value any, format string, args ...any) (string, error) {
	s, ok := value.(string)
	if !ok {
		return "", errors.Wrapf(ErrBytecodeShape, "%s must be a string, got %T", fmt.Sprintf(format, args...), value)
	}
	return s, nil
}

func intOf(value any, format string, args ...any) (int, error) {
	switch v := value.(type) {
	case int:
		return v, nil
	case int64:
		return int(v), nil
	case int32:
		return int(v), nil
	case *big.Int:
		if v.IsInt64() {
			return int(v.Int64()), nil
		}
		return 0, errors.Wrapf(ErrBytecodeShape, "%s is out of range: %s", fmt.Sprintf(format, args...), v)
	}
	return 0, errors.Wrapf(ErrBytecodeShape, "%s must be an int, got %T", fmt.Sprintf(format, args...), value)
}
