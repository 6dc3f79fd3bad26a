// Copyright 2023-2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

package bytecode

import (
	"github.com/pkg/errors"
)

// OpCode of one instruction of a Method.
//
// The names are serialized in the bytecode archive: see OpCodeString for the string conversion.
type OpCode int

//go:generate go tool enumer -type=OpCode -trimprefix=OpCode -transform=snake-upper -output=gen_opcode_enumer.go opcode.go

const (
	OpCodeInvalid OpCode = iota

	// OpCodeOp calls the operator at index X of the method's operator names.
	OpCodeOp
	// OpCodeOpn calls the variadic operator at index X with N inputs.
	OpCodeOpn
	OpCodeLoad
	OpCodeMove
	OpCodeStoren
	OpCodeStore
	OpCodeDrop
	OpCodeDropr
	// OpCodeLoadc loads the constant at index X.
	OpCodeLoadc
	OpCodeJf
	OpCodeJmp
	OpCodeLoop
	OpCodeRet
	OpCodeWait
	OpCodeCall
	OpCodeGetAttr
	OpCodeSetAttr
	OpCodeListConstruct
	OpCodeListUnpack
	OpCodeTupleConstruct
	OpCodeTupleSlice
	OpCodeDictConstruct
	OpCodeNamedTupleConstruct
	OpCodeCreateObject
	OpCodeIsInstance
	OpCodeFork
	OpCodeWarn
)

// ParseOpCode converts the serialized name of an op code (e.g. "LOADC") to an OpCode.
//
// It returns an error wrapping ErrUnknownOpCode if the name is not known.
func ParseOpCode(name string) (OpCode, error) {
	code, err := OpCodeString(name)
	if err != nil || code == OpCodeInvalid {
		return OpCodeInvalid, errors.Wrapf(ErrUnknownOpCode, "op code %q", name)
	}
	return code, nil
}

// UsesOperator returns whether the instruction's X refers to an entry of Method.OpNames.
func (i OpCode) UsesOperator() bool {
	return i == OpCodeOp || i == OpCodeOpn
}

// UsesConstant returns whether the instruction's X refers to an entry of Method.Constants.
func (i OpCode) UsesConstant() bool {
	return i == OpCodeLoadc
}
