package tensor

import (
	"fmt"

	"github.com/VitaliPath/forge/pkg/workerpool"
)

// matmulParallelThreshold is the product m*n*p at or above which row-blocks of
// the output are dispatched across the pool rather than run inline.
const matmulParallelThreshold = 64 * 64 * 64

// matmulInto computes dst += a · b using a strided triple loop in ikj
// order for row-major cache locality. a, b and dst may be arbitrary
// strided views — in particular transposed views or gradient-buffer
// views — which is how MatMul's backward pass reuses this same kernel.
func matmulInto[E Scalar](dst, a, b *Tensor[E], exec workerpool.Executor) {
	n, m, p := a.shape[0], a.shape[1], b.shape[1]

	dispatch := func(rs, re int) {
		for i := rs; i < re; i++ {
			for k := 0; k < m; k++ {
				aik := a.At(i, k)
				if aik == 0 {
					continue
				}
				for j := 0; j < p; j++ {
					dst.Set(i, j, dst.At(i, j)+aik*b.At(k, j))
				}
			}
		}
	}

	if n*m*p >= matmulParallelThreshold {
		exec.ParallelFor(n, rowParallelThreshold, dispatch)
	} else {
		dispatch(0, n)
	}
}

// MatMul multiplies A(n,m) by B(m,p), returning C(n,p). Fails with
// ErrShapeMismatch when A.Cols != B.Rows. Backward accumulates
// A.grad += C.grad·Bᵀ and B.grad += Aᵀ·C.grad using the same strided
// kernel over gradient-buffer views.
func MatMul[E Scalar](a, b *Tensor[E]) (*Tensor[E], error) {
	if a.shape[1] != b.shape[0] {
		return nil, fmt.Errorf("%w: A is [%d,%d], B is [%d,%d]", ErrShapeMismatch, a.shape[0], a.shape[1], b.shape[0], b.shape[1])
	}

	n, p := a.shape[0], b.shape[1]
	out := New[E](n, p)

	matmulInto(out, a, b, currentExecutor())

	out.inputs = []*Tensor[E]{a, b}
	out.backward = func() {
		exec := currentExecutor()
		dC := gradView(out)
		matmulInto(gradView(a), dC, b.T(), exec)
		matmulInto(gradView(b), a.T(), dC, exec)
	}
	return out, nil
}
