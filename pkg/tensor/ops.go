package tensor

import "fmt"

// broadcastShape computes the output shape [max(a,b) per dim] and
// validates each operand's dims are either 1 or equal to the output dim.
func broadcastShape[E Scalar](a, b *Tensor[E]) ([2]int, error) {
	var out [2]int
	for d := 0; d < 2; d++ {
		ad, bd := a.shape[d], b.shape[d]
		out[d] = ad
		if bd > out[d] {
			out[d] = bd
		}
		if ad != 1 && ad != out[d] {
			return out, fmt.Errorf("%w: operand a dim %d is %d, output dim is %d", ErrBroadcastIncompatible, d, ad, out[d])
		}
		if bd != 1 && bd != out[d] {
			return out, fmt.Errorf("%w: operand b dim %d is %d, output dim is %d", ErrBroadcastIncompatible, d, bd, out[d])
		}
	}
	return out, nil
}

// broadcastIndex maps an output coordinate back onto an operand's
// coordinate, collapsing to 0 along any dimension the operand broadcasts.
func broadcastIndex(dim, idx int) int {
	if dim == 1 {
		return 0
	}
	return idx
}

// Add performs elementwise addition with broadcasting: if shapes match
// exactly it is plain elementwise add; otherwise each operand contributes
// its single row/column along any dimension where its size is 1.
// Returns ErrBroadcastIncompatible when an operand's dimension is neither
// 1 nor the broadcast output's dimension.
func Add[E Scalar](a, b *Tensor[E]) (*Tensor[E], error) {
	outShape, err := broadcastShape(a, b)
	if err != nil {
		return nil, err
	}

	out := New[E](outShape[0], outShape[1])

	forward := func() {
		exec := currentExecutor()
		exec.ParallelFor(outShape[0], rowParallelThreshold, func(rs, re int) {
			for i := rs; i < re; i++ {
				ai := broadcastIndex(a.shape[0], i)
				bi := broadcastIndex(b.shape[0], i)
				for j := 0; j < outShape[1]; j++ {
					aj := broadcastIndex(a.shape[1], j)
					bj := broadcastIndex(b.shape[1], j)
					out.Set(i, j, a.At(ai, aj)+b.At(bi, bj))
				}
			}
		})
	}
	forward()

	out.inputs = []*Tensor[E]{a, b}
	out.backward = func() {
		// Broadcast-reduction writes may collapse multiple output cells
		// onto the same input cell (when an operand's dim was 1), so this
		// runs sequentially rather than through the pool: parallelizing
		// it would race on those collapsed writes.
		for i := 0; i < outShape[0]; i++ {
			ai := broadcastIndex(a.shape[0], i)
			bi := broadcastIndex(b.shape[0], i)
			for j := 0; j < outShape[1]; j++ {
				aj := broadcastIndex(a.shape[1], j)
				bj := broadcastIndex(b.shape[1], j)
				g := out.GradAt(i, j)
				a.AddGrad(ai, aj, g)
				b.AddGrad(bi, bj, g)
			}
		}
	}
	return out, nil
}

// ReLU applies max(0, x) elementwise. Backward routes gradient through
// cells where the forward *output* is strictly positive (so it agrees
// with the input-based gradient everywhere except exactly at 0, where it
// is defined as 0).
func ReLU[E Scalar](a *Tensor[E]) *Tensor[E] {
	out := New[E](a.shape[0], a.shape[1])

	exec := currentExecutor()
	exec.ParallelFor(a.shape[0], rowParallelThreshold, func(rs, re int) {
		for i := rs; i < re; i++ {
			for j := 0; j < a.shape[1]; j++ {
				v := a.At(i, j)
				if v > 0 {
					out.Set(i, j, v)
				}
			}
		}
	})

	out.inputs = []*Tensor[E]{a}
	out.backward = func() {
		exec := currentExecutor()
		exec.ParallelFor(a.shape[0], rowParallelThreshold, func(rs, re int) {
			for i := rs; i < re; i++ {
				for j := 0; j < a.shape[1]; j++ {
					if out.At(i, j) > 0 {
						a.AddGrad(i, j, out.GradAt(i, j))
					}
				}
			}
		})
	}
	return out
}

// Tanh applies the hyperbolic tangent elementwise. Backward multiplies
// the incoming gradient by (1 - t^2) where t is the forward output.
func Tanh[E Scalar](a *Tensor[E]) *Tensor[E] {
	out := New[E](a.shape[0], a.shape[1])

	exec := currentExecutor()
	exec.ParallelFor(a.shape[0], rowParallelThreshold, func(rs, re int) {
		for i := rs; i < re; i++ {
			for j := 0; j < a.shape[1]; j++ {
				out.Set(i, j, tanhE(a.At(i, j)))
			}
		}
	})

	out.inputs = []*Tensor[E]{a}
	out.backward = func() {
		exec := currentExecutor()
		exec.ParallelFor(a.shape[0], rowParallelThreshold, func(rs, re int) {
			for i := rs; i < re; i++ {
				for j := 0; j < a.shape[1]; j++ {
					t := out.At(i, j)
					local := E(1) - t*t
					a.AddGrad(i, j, local*out.GradAt(i, j))
				}
			}
		})
	}
	return out
}
