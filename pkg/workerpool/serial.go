package workerpool

// serial is a deterministic, single-goroutine Executor. It runs the whole
// range inline regardless of n or minGrain, which makes tests that care
// about ordering (or that must not race) able to substitute it for the
// pool-backed Executor without changing call sites.
type serial struct{}

// Serial returns an Executor that never spawns goroutines. A panic inside
// body propagates to the caller directly, since there is no goroutine
// boundary to recover across.
func Serial() Executor { return serial{} }

func (serial) Workers() int { return 1 }

func (serial) ParallelFor(n, _ int, body func(start, end int)) {
	body(0, n)
}
