package workerpool_test

import (
	"sync/atomic"
	"testing"

	"github.com/VitaliPath/forge/pkg/workerpool"
)

func TestParallelForCoversWholeRange(t *testing.T) {
	const n = 10_000
	seen := make([]int32, n)

	exec := workerpool.Pooled(4)
	exec.ParallelFor(n, 8, func(start, end int) {
		for i := start; i < end; i++ {
			atomic.AddInt32(&seen[i], 1)
		}
	})

	for i, v := range seen {
		if v != 1 {
			t.Fatalf("index %d visited %d times, want 1", i, v)
		}
	}
}

func TestParallelForSmallRangeRunsInline(t *testing.T) {
	exec := workerpool.Pooled(8)
	var total int
	exec.ParallelFor(4, workerpool.MinGrainSize, func(start, end int) {
		total += end - start
	})
	if total != 4 {
		t.Fatalf("total = %d, want 4", total)
	}
}

func TestSerialRunsInline(t *testing.T) {
	exec := workerpool.Serial()
	var calls int
	exec.ParallelFor(100, 1, func(start, end int) {
		calls++
		if start != 0 || end != 100 {
			t.Fatalf("serial executor should run the whole range at once, got [%d,%d)", start, end)
		}
	})
	if calls != 1 {
		t.Fatalf("calls = %d, want 1", calls)
	}
}

func TestParallelForNestingGuardDoesNotDeadlock(t *testing.T) {
	exec := workerpool.Pooled(4)
	var total int32
	exec.ParallelFor(1000, 8, func(start, end int) {
		// Nested call from inside a worker must not spawn further
		// goroutines against the same pool.
		exec.ParallelFor(end-start, 1, func(s, e int) {
			atomic.AddInt32(&total, int32(e-s))
		})
	})
	if total != 1000 {
		t.Fatalf("total = %d, want 1000", total)
	}
}

func TestParallelForPropagatesPanic(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatal("expected panic to propagate from a worker")
		}
	}()
	exec := workerpool.Pooled(4)
	exec.ParallelFor(1000, 8, func(start, end int) {
		if start == 0 {
			panic("boom")
		}
	})
}
