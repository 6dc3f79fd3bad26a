// Copyright 2023-2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

// Package workerspool runs element-wise kernel work on a bounded number of goroutines.
package workerspool

import (
	"runtime"
	"sync"
	"sync/atomic"
)

// Pool bounds the number of goroutines running kernel work.
type Pool struct {
	// maxParallelism is a soft target for the number of tasks running at once.
	// 0 disables parallelism and a negative value makes it unlimited.
	maxParallelism int

	mu         sync.Mutex
	cond       sync.Cond // Signaled whenever numRunning decreases.
	numRunning int

	// sleeping counts callers blocked waiting for their own tasks, which temporarily frees their slot.
	sleeping atomic.Int32
}

// New returns a Pool with runtime.NumCPU() parallelism.
func New() *Pool {
	p := &Pool{maxParallelism: runtime.NumCPU()}
	p.cond = sync.Cond{L: &p.mu}
	return p
}

var (
	defaultPool     *Pool
	defaultPoolOnce sync.Once
)

// Default returns the process wide Pool shared by the kernels.
func Default() *Pool {
	defaultPoolOnce.Do(func() { defaultPool = New() })
	return defaultPool
}

// MaxParallelism returns the soft target for the number of parallel tasks.
func (p *Pool) MaxParallelism() int {
	return p.maxParallelism
}

// SetMaxParallelism changes the parallelism: 0 disables it, and -1 makes it unlimited.
//
// It should be called before any task is started.
func (p *Pool) SetMaxParallelism(maxParallelism int) {
	p.maxParallelism = maxParallelism
}

// lockedIsFull returns whether there is no slot left to start a task.
// It must be called with Pool.mu acquired.
func (p *Pool) lockedIsFull() bool {
	switch {
	case p.maxParallelism == 0:
		return true
	case p.maxParallelism < 0:
		return false
	}
	return p.numRunning >= p.maxParallelism+int(p.sleeping.Load())
}

// lockedStart runs task in a new goroutine, accounting it in numRunning.
// It must be called with Pool.mu acquired.
func (p *Pool) lockedStart(task func()) {
	p.numRunning++
	go func() {
		defer func() {
			p.mu.Lock()
			p.numRunning--
			p.cond.Signal()
			p.mu.Unlock()
		}()
		task()
	}()
}

// StartIfAvailable runs task in a new goroutine if there is a free slot, and returns whether it did.
// The caller is responsible for waiting for the task to finish.
func (p *Pool) StartIfAvailable(task func()) bool {
	if p.maxParallelism < 0 {
		go task()
		return true
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.lockedIsFull() {
		return false
	}
	p.lockedStart(task)
	return true
}

// WaitToStart blocks until there is a free slot and runs task in a new goroutine.
// With parallelism disabled, task is run inline.
func (p *Pool) WaitToStart(task func()) {
	switch {
	case p.maxParallelism < 0:
		go task()
		return
	case p.maxParallelism == 0:
		task()
		return
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	for p.lockedIsFull() {
		p.cond.Wait()
	}
	p.lockedStart(task)
}

// ParallelFor calls fn on consecutive [start, end) chunks covering [0, n), with chunks of at least
// minChunkSize elements, and returns when all are done.
//
// Chunks that can't get a free slot in the pool are run by the calling goroutine, so it never deadlocks,
// even when called from within a task.
func (p *Pool) ParallelFor(n, minChunkSize int, fn func(start, end int)) {
	if n <= 0 {
		return
	}
	minChunkSize = max(minChunkSize, 1)
	numChunks := max(p.maxParallelism, 1)
	if p.maxParallelism < 0 {
		numChunks = runtime.NumCPU()
	}
	numChunks = min(numChunks, (n+minChunkSize-1)/minChunkSize)
	if numChunks <= 1 {
		fn(0, n)
		return
	}

	chunkSize := (n + numChunks - 1) / numChunks
	var wg sync.WaitGroup
	for start := 0; start < n; start += chunkSize {
		end := min(start+chunkSize, n)
		wg.Add(1)
		task := func() {
			defer wg.Done()
			fn(start, end)
		}
		if !p.StartIfAvailable(task) {
			task()
		}
	}
	p.sleeping.Add(1)
	wg.Wait()
	p.sleeping.Add(-1)
}
