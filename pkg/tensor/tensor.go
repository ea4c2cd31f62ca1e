package tensor

// Tensor is a strided view over a Storage, shaped [rows, cols], plus the
// autograd bookkeeping needed to replay a backward pass: the list of
// input tensors this one was computed from, and a closure that — when
// invoked — reads this tensor's accumulated gradient and adds the
// appropriate contribution into each input's gradient buffer.
//
// addr(i, j) = i*strides[0] + j*strides[1]. Any two Tensors may alias the
// same Storage; transpose is exactly such an alias with swapped shape and
// strides.
type Tensor[E Scalar] struct {
	storage *Storage[E]
	shape   [2]int
	strides [2]int

	inputs   []*Tensor[E]
	backward func()
}

// New allocates an owning Tensor of shape [rows, cols] in row-major
// order. If data is supplied it is adopted directly (no copy); otherwise
// a zero-filled buffer is allocated. It is a leaf: empty input list, a
// no-op backward closure.
func New[E Scalar](rows, cols int, data ...E) *Tensor[E] {
	var st *Storage[E]
	if len(data) == 0 {
		st = NewStorage[E](rows * cols)
	} else {
		if rows*cols > len(data) {
			panic("tensor: rows*cols exceeds supplied data length")
		}
		st = AdoptStorage(data)
	}
	return &Tensor[E]{
		storage: st,
		shape:   [2]int{rows, cols},
		strides: [2]int{cols, 1},
		backward: func() {},
	}
}

// NewFrom builds an owning leaf Tensor from a flat, row-major slice,
// always adopting it without copying.
func NewFrom[E Scalar](rows, cols int, data []E) *Tensor[E] {
	if rows*cols > len(data) {
		panic("tensor: rows*cols exceeds supplied data length")
	}
	return &Tensor[E]{
		storage:  AdoptStorage(data),
		shape:    [2]int{rows, cols},
		strides:  [2]int{cols, 1},
		backward: func() {},
	}
}

// view constructs a Tensor sharing the given Storage with its own
// shape/strides and no autograd tracking (used internally for transpose
// and for wrapping gradient buffers as plain tensors during MatMul's
// backward pass).
func view[E Scalar](st *Storage[E], shape, strides [2]int) *Tensor[E] {
	return &Tensor[E]{
		storage:  st,
		shape:    shape,
		strides:  strides,
		backward: func() {},
	}
}

// Rows returns the tensor's row count.
func (t *Tensor[E]) Rows() int { return t.shape[0] }

// Cols returns the tensor's column count.
func (t *Tensor[E]) Cols() int { return t.shape[1] }

// Shape returns a copy of [rows, cols].
func (t *Tensor[E]) Shape() [2]int { return t.shape }

// Strides returns a copy of [rowStride, colStride].
func (t *Tensor[E]) Strides() [2]int { return t.strides }

// IsLeaf reports whether this tensor has no recorded inputs.
func (t *Tensor[E]) IsLeaf() bool { return len(t.inputs) == 0 }

func (t *Tensor[E]) addr(i, j int) int {
	return i*t.strides[0] + j*t.strides[1]
}

// At returns the element at (i, j).
func (t *Tensor[E]) At(i, j int) E {
	return t.storage.Data[t.addr(i, j)]
}

// Set writes the element at (i, j).
func (t *Tensor[E]) Set(i, j int, v E) {
	t.storage.Data[t.addr(i, j)] = v
}

// GradAt returns the accumulated gradient at (i, j).
func (t *Tensor[E]) GradAt(i, j int) E {
	return t.storage.Grad[t.addr(i, j)]
}

// SetGrad overwrites the gradient at (i, j).
func (t *Tensor[E]) SetGrad(i, j int, v E) {
	t.storage.Grad[t.addr(i, j)] = v
}

// AddGrad accumulates v into the gradient at (i, j). Not safe to call
// concurrently for overlapping (i, j) without external synchronization.
func (t *Tensor[E]) AddGrad(i, j int, v E) {
	t.storage.Grad[t.addr(i, j)] += v
}

// T returns a zero-copy transposed view: shape and strides are swapped,
// the underlying Storage is shared. Mutating through either view is
// observable through the other; (A.T()).T() aliases A's original shape,
// strides and storage exactly.
func (t *Tensor[E]) T() *Tensor[E] {
	return view(t.storage, [2]int{t.shape[1], t.shape[0]}, [2]int{t.strides[1], t.strides[0]})
}

// gradView returns a non-autograd Tensor whose Data addresses this
// tensor's gradient buffer (same Storage.Grad slice, same shape and
// strides). MatMul's backward pass uses this to run the same strided
// matmul kernel over gradient buffers.
func gradView[E Scalar](t *Tensor[E]) *Tensor[E] {
	return view(&Storage[E]{Data: t.storage.Grad, Grad: nil}, t.shape, t.strides)
}

// ZeroGrad zeroes the gradient buffer underlying this tensor's own
// Storage. Because Storage may be shared by multiple views, this clears
// gradients for every view over the same buffer, not just this one.
// Callers must zero gradients explicitly between training iterations;
// the engine never does so on their behalf.
func (t *Tensor[E]) ZeroGrad() {
	for i := range t.storage.Grad {
		t.storage.Grad[i] = 0
	}
}

// gradAllZero reports whether every gradient cell this tensor addresses
// is zero, used by the default-seed heuristic in Backward.
func (t *Tensor[E]) gradAllZero() bool {
	for i := 0; i < t.shape[0]; i++ {
		for j := 0; j < t.shape[1]; j++ {
			if t.GradAt(i, j) != 0 {
				return false
			}
		}
	}
	return true
}

