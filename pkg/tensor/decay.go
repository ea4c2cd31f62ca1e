package tensor

import "math"

// decayEpsilon is the multiplier floor below which ApplyDecay clamps to
// zero rather than carrying a sub-normal value forward.
const decayEpsilon = 1e-7

// ApplyDecay mutates a in place: x ← x·exp(-λ·max(0,t)). It takes a raw
// elapsed-time scalar with no timestamp arithmetic; graphstore.Graph's
// decay converts (now - lastModified) to days and then applies the same
// formula in its own loop, so the two stay aligned on units without
// collapsing into one signature. Never recorded on the autograd graph: decay is a
// non-differentiable maintenance operation.
func ApplyDecay[E Scalar](a *Tensor[E], lambda, elapsed float64) {
	if elapsed < 0 {
		elapsed = 0
	}
	mult := math.Exp(-lambda * elapsed)
	if mult < decayEpsilon {
		mult = 0
	}
	m := E(mult)

	exec := currentExecutor()
	exec.ParallelFor(a.shape[0], rowParallelThreshold, func(rs, re int) {
		for i := rs; i < re; i++ {
			for j := 0; j < a.shape[1]; j++ {
				a.Set(i, j, a.At(i, j)*m)
			}
		}
	})
}
