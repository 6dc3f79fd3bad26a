// Copyright 2023-2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

// Package backends enumerates the execution targets an operator implementation can be registered for.
//
// The set is fixed at compile time, and each value indexes a slot of a fixed-size operator table
// (see package github.com/gomlx/opdispatch/pkg/dispatch).
//
// BackendUndefined is special: it is the zero value, and an implementation registered for it is used
// as the fallback for every backend that doesn't have a specialized implementation.
package backends

import "slices"

// Backend is an enum of the execution targets known to the dispatcher.
type Backend int

//go:generate go tool enumer -type=Backend -trimprefix=Backend -output=gen_backend_enumer.go backend.go

const (
	// BackendUndefined is the backend-agnostic default. It is the fallback slot of every operator table.
	BackendUndefined Backend = iota
	BackendCPU
	BackendCUDA
	BackendHIP
	BackendSparseCPU
	BackendSparseCUDA
	BackendSparseHIP
	BackendMSNPU
	BackendXLA
	BackendQuantizedCPU
	BackendComplexCPU
	BackendComplexCUDA
	BackendMkldnnCPU

	// BackendLast should always be kept the last, it is used as a counter/marker for Backend.
	BackendLast
)

// NumBackends is the number of valid backends, including BackendUndefined.
const NumBackends = int(BackendLast)

// IsValid returns whether b can index an operator table: BackendLast and out-of-range values are not valid.
func (b Backend) IsValid() bool {
	return b >= BackendUndefined && b < BackendLast
}

// IsSparse returns whether b is one of the sparse-layout backends.
func (b Backend) IsSparse() bool {
	switch b {
	case BackendSparseCPU, BackendSparseCUDA, BackendSparseHIP:
		return true
	default:
		return false
	}
}

// Valid returns all backends that can index an operator table, in order, starting with BackendUndefined.
func Valid() []Backend {
	return slices.Clone(BackendValues()[:NumBackends])
}
