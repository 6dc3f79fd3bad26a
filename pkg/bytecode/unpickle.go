// Copyright 2023-2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

package bytecode

import (
	"bytes"
	"fmt"
	"sync"

	"github.com/nlpodyssey/gopickle/pickle"
	"github.com/nlpodyssey/gopickle/types"
	"github.com/pkg/errors"

	"github.com/gomlx/opdispatch/pkg/support/xslices"
)

// Deserializer converts one pickled archive to Go values.
//
// Sequences (tuples and lists) are returned as []any, string keyed dictionaries as map[string]any,
// other dictionaries as map[any]any (keys as unpickled), and integers as int, int64 or *big.Int. Classes are resolved with unit, and persistent records
// (tensor storages) are read with readRecord.
type Deserializer interface {
	Deserialize(pickled []byte, unit *CompilationUnit, readRecord func(name string) ([]byte, error)) (any, error)
}

// CompilationUnit holds the classes referenced by the archives of one load.
// Classes are created on first reference.
type CompilationUnit struct {
	mu      sync.Mutex
	classes map[string]*ClassType
}

// NewCompilationUnit creates an empty CompilationUnit.
func NewCompilationUnit() *CompilationUnit {
	return &CompilationUnit{classes: make(map[string]*ClassType)}
}

// Class returns the class with the qualified name, creating it if it is not yet known.
func (cu *CompilationUnit) Class(qualifiedName string) *ClassType {
	cu.mu.Lock()
	defer cu.mu.Unlock()
	class, found := cu.classes[qualifiedName]
	if !found {
		class = &ClassType{QualifiedName: qualifiedName}
		cu.classes[qualifiedName] = class
	}
	return class
}

// Classes returns the qualified names of the known classes, sorted.
func (cu *CompilationUnit) Classes() []string {
	cu.mu.Lock()
	defer cu.mu.Unlock()
	return xslices.SortedKeys(cu.classes)
}

// ClassType is a class referenced by a pickled archive. Calling it creates an Object.
type ClassType struct {
	QualifiedName string
}

var _ types.Callable = (*ClassType)(nil)

// Call implements types.Callable, used when unpickling REDUCE.
func (c *ClassType) Call(args ...interface{}) (interface{}, error) {
	return &Object{Class: c, Args: args}, nil
}

// PyNew implements types.PyNewable, used when unpickling NEWOBJ.
func (c *ClassType) PyNew(args ...interface{}) (interface{}, error) {
	return &Object{Class: c, Args: args}, nil
}

// String implements fmt.Stringer.
func (c *ClassType) String() string {
	return c.QualifiedName
}

// Object is an instance of a ClassType: the module object of data.pkl, or any other object
// (e.g. a tensor rebuilt from a storage) found in the archives.
type Object struct {
	Class *ClassType

	// Args used to create the object.
	Args []any

	// State set by the pickled BUILD, usually the attributes as a map[string]any.
	State any
}

// PySetState implements types.PyStateSettable, used when unpickling BUILD.
func (o *Object) PySetState(state interface{}) error {
	o.State = state
	return nil
}

// Attr returns the attribute of the object, if its state is a dictionary of attributes.
func (o *Object) Attr(name string) (any, bool) {
	attrs, ok := o.State.(map[string]any)
	if !ok {
		return nil, false
	}
	value, found := attrs[name]
	return value, found
}

// Attrs returns the sorted names of the attributes of the object.
func (o *Object) Attrs() []string {
	attrs, _ := o.State.(map[string]any)
	return xslices.SortedKeys(attrs)
}

// String implements fmt.Stringer.
func (o *Object) String() string {
	return fmt.Sprintf("%s object", o.Class)
}

// Storage is a persistent record referenced by a pickled archive.
type Storage struct {
	// Type of the storage, e.g. "torch.FloatStorage".
	Type     string
	Key      string
	Location string
	Data     []byte
}

// String implements fmt.Stringer.
func (s *Storage) String() string {
	return fmt.Sprintf("%s(key=%s, location=%s, %d bytes)", s.Type, s.Key, s.Location, len(s.Data))
}

// PickleDeserializer implements Deserializer for Python pickle archives.
type PickleDeserializer struct{}

var _ Deserializer = PickleDeserializer{}

// maxNestingDepth of unpickled values.
const maxNestingDepth = 1000

// Deserialize implements Deserializer.
func (PickleDeserializer) Deserialize(pickled []byte, unit *CompilationUnit,
	readRecord func(name string) ([]byte, error)) (any, error) {
	unpickler := pickle.NewUnpickler(bytes.NewReader(pickled))
	unpickler.FindClass = func(module, name string) (interface{}, error) {
		return unit.Class(module + "." + name), nil
	}
	unpickler.PersistentLoad = func(pid interface{}) (interface{}, error) {
		return loadStorage(pid, readRecord)
	}
	value, err := unpickler.Load()
	if err != nil {
		return nil, errors.Wrap(err, "failed to unpickle")
	}
	return normalize(value, 0, make(map[*Object]bool))
}

// loadStorage reads the record of a persistent id of the form ("storage", type, key, location, ...).
func loadStorage(pid interface{}, readRecord func(name string) ([]byte, error)) (interface{}, error) {
	tuple, ok := pid.(*types.Tuple)
	if !ok || tuple.Len() < 4 {
		return nil, errors.Wrapf(ErrBytecodeShape, "persistent id must be a tuple of at least 4 elements, got %v", pid)
	}
	if kind, _ := tuple.Get(0).(string); kind != "storage" {
		return nil, errors.Wrapf(ErrBytecodeShape, "unsupported persistent id kind %v", tuple.Get(0))
	}
	key, ok := tuple.Get(2).(string)
	if !ok {
		return nil, errors.Wrapf(ErrBytecodeShape, "storage key must be a string, got %T", tuple.Get(2))
	}
	location, _ := tuple.Get(3).(string)
	data, err := readRecord(key)
	if err != nil {
		return nil, err
	}
	return &Storage{
		Type:     fmt.Sprint(tuple.Get(1)),
		Key:      key,
		Location: location,
		Data:     data,
	}, nil
}

// normalize converts the unpickled values to the forms documented in Deserializer.
func normalize(value any, depth int, visited map[*Object]bool) (any, error) {
	if depth > maxNestingDepth {
		return nil, errors.Wrapf(ErrBytecodeShape, "values nested more than %d levels", maxNestingDepth)
	}
	switch v := value.(type) {
	case *types.Tuple:
		return normalizeSequence(v.Len(), v.Get, depth, visited)
	case *types.List:
		return normalizeSequence(v.Len(), v.Get, depth, visited)
	case *types.Dict:
		return normalizeDict(v, depth, visited)
	case *Object:
		if visited[v] {
			return v, nil
		}
		visited[v] = true
		for ii, arg := range v.Args {
			normalized, err := normalize(arg, depth+1, visited)
			if err != nil {
				return nil, err
			}
			v.Args[ii] = normalized
		}
		state, err := normalize(v.State, depth+1, visited)
		if err != nil {
			return nil, err
		}
		v.State = state
		return v, nil
	default:
		return value, nil
	}
}

// normalizeDict returns a map[string]any if all keys are strings, and otherwise a map[any]any with the
// keys as unpickled. Values are normalized in both cases.
func normalizeDict(dict *types.Dict, depth int, visited map[*Object]bool) (any, error) {
	keys := dict.Keys()
	stringKeys := true
	for _, key := range keys {
		if _, ok := key.(string); !ok {
			stringKeys = false
			break
		}
	}
	attrs := make(map[string]any, len(keys))
	var entries map[any]any
	if !stringKeys {
		entries = make(map[any]any, len(keys))
	}
	for _, key := range keys {
		entry, _ := dict.Get(key)
		normalized, err := normalize(entry, depth+1, visited)
		if err != nil {
			return nil, err
		}
		if stringKeys {
			attrs[key.(string)] = normalized
		} else {
			entries[key] = normalized
		}
	}
	if !stringKeys {
		return entries, nil
	}
	return attrs, nil
}

func normalizeSequence(length int, get func(int) interface{}, depth int, visited map[*Object]bool) ([]any, error) {
	values := make([]any, length)
	for ii := range values {
		normalized, err := normalize(get(ii), depth+1, visited)
		if err != nil {
			return nil, err
		}
		values[ii] = normalized
	}
	return values, nil
}
