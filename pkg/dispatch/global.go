// Copyright 2023-2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

package dispatch

import (
	"sync"

	"github.com/gomlx/opdispatch/pkg/kernelregistry"
)

var (
	globalRegistry     *Registry
	globalRegistryOnce sync.Once
)

// Global returns the process-wide Registry, creating it on first use.
//
// It forwards the DefaultMigratedOps to kernelregistry.Global(). It is never torn down.
// Tests that need isolation should use NewRegistry instead.
func Global() *Registry {
	globalRegistryOnce.Do(func() {
		globalRegistry = NewRegistry(DefaultMigratedOps(), kernelregistry.Global())
	})
	return globalRegistry
}
