// Package workerpool provides the bounded execution context used by the
// tensor engine's elementwise/matmul kernels, by the graph store's scans
// and decay, and by the csr package's decay and connected-components
// passes. Graph and CSR compilation run sequentially and do not use it.
//
// The pool is sized to the hardware core count by default (runtime.
// GOMAXPROCS) and never grows unbounded. This package holds no global
// state: an Executor is a plain value. The tensor package keeps one
// package-level Executor that tensor.SetExecutor replaces (for example
// with Serial()); graphstore and csr build a fresh Default() executor on
// each call and accept no Executor from the caller, so their scheduling
// cannot be swapped.
package workerpool

import (
	"runtime"
	"sync/atomic"

	"golang.org/x/sync/errgroup"

	"github.com/VitaliPath/forge/pkg/forgelog"
)

// MinGrainSize is the default minimum number of loop iterations handed to
// a single worker. Below this threshold, parallelization overhead exceeds
// the benefit and ParallelFor runs the body inline.
const MinGrainSize = 64

// Executor runs work items against a bounded pool of goroutines. A single
// Executor must not be shared across concurrently-in-flight ParallelFor
// calls that nest (the pool-backed implementation guards against this by
// falling back to inline execution on re-entrancy; Serial is always safe
// to nest trivially since it never spawns goroutines).
type Executor interface {
	// ParallelFor splits [0, n) into contiguous chunks of at least
	// minGrain elements (the last chunk may be shorter) and runs
	// body(start, end) for each chunk. It blocks until every chunk has
	// completed. When chunks run on worker goroutines, a panic inside body
	// is recovered, logged, and re-raised on the calling goroutine once all
	// chunks have finished; when the range runs inline, the panic
	// propagates directly without being logged.
	ParallelFor(n, minGrain int, body func(start, end int))

	// Workers reports the configured concurrency cap.
	Workers() int
}

type pooled struct {
	workers int
	depth   atomic.Int32
}

// Pooled returns an Executor backed by golang.org/x/sync/errgroup, bounded
// to n concurrent goroutines. n <= 0 resets to runtime.GOMAXPROCS(0).
func Pooled(n int) Executor {
	if n <= 0 {
		n = runtime.GOMAXPROCS(0)
	}
	return &pooled{workers: n}
}

// Default returns a pool sized to runtime.GOMAXPROCS(0).
func Default() Executor {
	return Pooled(runtime.GOMAXPROCS(0))
}

func (p *pooled) Workers() int { return p.workers }

func (p *pooled) ParallelFor(n, minGrain int, body func(start, end int)) {
	if minGrain <= 0 {
		minGrain = MinGrainSize
	}

	if n <= minGrain || p.workers <= 1 {
		runGuarded(func() { body(0, n) })
		return
	}

	// Nesting guard: a ParallelFor invoked from inside another ParallelFor's
	// body runs inline, avoiding goroutine-count blowup on nested fan-out.
	if p.depth.Add(1) > 1 {
		p.depth.Add(-1)
		runGuarded(func() { body(0, n) })
		return
	}
	defer p.depth.Add(-1)

	grain := (n + p.workers - 1) / p.workers
	if grain < minGrain {
		grain = minGrain
	}
	numChunks := (n + grain - 1) / grain
	if numChunks <= 1 {
		runGuarded(func() { body(0, n) })
		return
	}

	sem := make(chan struct{}, p.workers)
	var g errgroup.Group
	for start := 0; start < n; start += grain {
		s, e := start, start+grain
		if e > n {
			e = n
		}
		sem <- struct{}{}
		g.Go(func() error {
			defer func() { <-sem }()
			return guarded(func() { body(s, e) })
		})
	}
	if err := g.Wait(); err != nil {
		if pe, ok := err.(panicError); ok {
			panic(pe.v)
		}
		panic(err)
	}
}

// guarded runs fn, converting a recovered panic into an error so it can
// cross the errgroup boundary and be re-raised on the caller's goroutine.
func guarded(fn func()) (err error) {
	defer func() {
		if r := recover(); r != nil {
			forgelog.L().WithField("recovered", r).Error("workerpool: worker panicked")
			err = panicError{r}
		}
	}()
	fn()
	return nil
}

// runGuarded is guarded's inline (non-errgroup) counterpart; a panic just
// propagates normally since there's no goroutine boundary to cross.
func runGuarded(fn func()) { fn() }

type panicError struct{ v any }

func (p panicError) Error() string { return "workerpool: recovered panic" }
func (p panicError) Unwrap() error {
	if err, ok := p.v.(error); ok {
		return err
	}
	return nil
}
