package tensor

import (
	"sync"

	"github.com/VitaliPath/forge/pkg/workerpool"
)

// exec is the package-wide, swappable execution context bulk elementwise
// ops and MatMul dispatch through. It defaults to a pool sized to
// GOMAXPROCS and can be swapped for workerpool.Serial() in tests that
// need deterministic execution.
var (
	execMu sync.RWMutex
	exec   workerpool.Executor = workerpool.Default()
)

// SetExecutor overrides the package-wide executor used by Add, ReLU,
// Tanh, and MatMul.
func SetExecutor(e workerpool.Executor) {
	execMu.Lock()
	defer execMu.Unlock()
	exec = e
}

// UseSerialExecutor is a convenience for tests wanting fully
// deterministic, single-goroutine execution.
func UseSerialExecutor() { SetExecutor(workerpool.Serial()) }

// UseDefaultExecutor restores the GOMAXPROCS-sized pool.
func UseDefaultExecutor() { SetExecutor(workerpool.Default()) }

func currentExecutor() workerpool.Executor {
	execMu.RLock()
	defer execMu.RUnlock()
	return exec
}

// rowParallelThreshold is the minimum row count below which elementwise
// ops just run inline rather than paying goroutine dispatch overhead.
const rowParallelThreshold = workerpool.MinGrainSize
