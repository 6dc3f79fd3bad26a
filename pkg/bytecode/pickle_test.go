// Copyright 2023-2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

package bytecode

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"math"
	"slices"
)

// Helpers to write protocol 2 pickles for the tests.

// pickledObject is written the way TorchScript pickles modules: GLOBAL, NEWOBJ and a BUILD with the attributes.
type pickledObject struct {
	module, name string
	attrs        map[string]any
}

// pickledStorage is written as a persistent id ("storage", GLOBAL, key, location, numel).
type pickledStorage struct {
	module, name  string
	key, location string
	numel         int
}

// pickledList is written as a list instead of a tuple.
type pickledList []any

// pickledIntDict is written as a dictionary with int keys.
type pickledIntDict map[int]any

// pickledReduce calls a GLOBAL with args.
type pickledReduce struct {
	module, name string
	args         []any
}

func pickleOf(value any) []byte {
	var buf bytes.Buffer
	buf.Write([]byte{0x80, 2}) // PROTO 2
	writePickled(&buf, value)
	buf.WriteByte('.') // STOP
	return buf.Bytes()
}

func writeGlobal(buf *bytes.Buffer, module, name string) {
	buf.WriteByte('c')
	buf.WriteString(module + "\n" + name + "\n")
}

func writePickled(buf *bytes.Buffer, value any) {
	switch v := value.(type) {
	case nil:
		buf.WriteByte('N')
	case bool:
		if v {
			buf.WriteByte(0x88) // NEWTRUE
		} else {
			buf.WriteByte(0x89) // NEWFALSE
		}
	case int:
		if v >= 0 && v < 256 {
			buf.Write([]byte{'K', byte(v)}) // BININT1
		} else {
			buf.WriteByte('J') // BININT
			_ = binary.Write(buf, binary.LittleEndian, int32(v))
		}
	case float64:
		buf.WriteByte('G') // BINFLOAT
		_ = binary.Write(buf, binary.BigEndian, math.Float64bits(v))
	case string:
		buf.WriteByte('X') // BINUNICODE
		_ = binary.Write(buf, binary.LittleEndian, uint32(len(v)))
		buf.WriteString(v)
	case []any:
		if len(v) == 0 {
			buf.WriteByte(')') // EMPTY_TUPLE
			return
		}
		buf.WriteByte('(') // MARK
		for _, item := range v {
			writePickled(buf, item)
		}
		buf.WriteByte('t') // TUPLE
	case pickledList:
		buf.WriteByte(']') // EMPTY_LIST
		if len(v) == 0 {
			return
		}
		buf.WriteByte('(')
		for _, item := range v {
			writePickled(buf, item)
		}
		buf.WriteByte('e') // APPENDS
	case pickledObject:
		writeGlobal(buf, v.module, v.name)
		buf.WriteByte(')')
		buf.WriteByte(0x81) // NEWOBJ
		buf.WriteByte('}')  // EMPTY_DICT
		if len(v.attrs) > 0 {
			buf.WriteByte('(')
			keys := make([]string, 0, len(v.attrs))
			for key := range v.attrs {
				keys = append(keys, key)
			}
			slices.Sort(keys)
			for _, key := range keys {
				writePickled(buf, key)
				writePickled(buf, v.attrs[key])
			}
			buf.WriteByte('u') // SETITEMS
		}
		buf.WriteByte('b') // BUILD
	case pickledIntDict:
		buf.WriteByte('}')
		if len(v) == 0 {
			return
		}
		buf.WriteByte('(')
		keys := make([]int, 0, len(v))
		for key := range v {
			keys = append(keys, key)
		}
		slices.Sort(keys)
		for _, key := range keys {
			writePickled(buf, key)
			writePickled(buf, v[key])
		}
		buf.WriteByte('u')
	case pickledStorage:
		buf.WriteByte('(')
		writePickled(buf, "storage")
		writeGlobal(buf, v.module, v.name)
		writePickled(buf, v.key)
		writePickled(buf, v.location)
		writePickled(buf, v.numel)
		buf.WriteByte('t')
		buf.WriteByte('Q') // BINPERSID
	case pickledReduce:
		writeGlobal(buf, v.module, v.name)
		writePickled(buf, v.args)
		buf.WriteByte('R') // REDUCE
	default:
		panic(fmt.Sprintf("pickle test helper: unsupported value %T", value))
	}
}
