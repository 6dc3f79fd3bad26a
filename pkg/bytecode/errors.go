// Copyright 2023-2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

package bytecode

import "github.com/pkg/errors"

var (
	// ErrBytecodeShape is returned when the unpickled bytecode doesn't have the expected structure.
	ErrBytecodeShape = errors.New("malformed bytecode")

	// ErrMissingRecord is returned when a record is not present in the archive.
	ErrMissingRecord = errors.New("missing record")

	// ErrUnknownOpCode is returned for instructions with an op code name that is not known.
	ErrUnknownOpCode = errors.New("unknown op code")

	// ErrUnresolvedOperator is returned by Method.ResolveOperators if some operators are not registered.
	ErrUnresolvedOperator = errors.New("unresolved operator")
)
