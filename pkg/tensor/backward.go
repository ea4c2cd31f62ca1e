package tensor

// topoSort returns root and its transitive inputs in post-order (inputs
// before the tensors that consume them), via DFS with a visited set keyed
// on tensor identity.
func topoSort[E Scalar](root *Tensor[E]) []*Tensor[E] {
	visited := make(map[*Tensor[E]]bool)
	order := make([]*Tensor[E], 0)

	var dfs func(*Tensor[E])
	dfs = func(t *Tensor[E]) {
		if visited[t] {
			return
		}
		visited[t] = true
		for _, in := range t.inputs {
			dfs(in)
		}
		order = append(order, t)
	}
	dfs(root)
	return order
}

// Backward runs reverse-mode autodiff from root. If root's gradient
// buffer is entirely zero, it is seeded to one before the pass — so
// scalar-loss callers get an implicit dL/dL=1 without needing to seed it
// themselves. If a caller has already set any gradient cell non-zero,
// that seeding is left untouched. A caller that deliberately wants a
// partially-zero upstream gradient should use BackwardSeeded instead.
func (root *Tensor[E]) Backward() {
	if root.gradAllZero() {
		one := E(1)
		for i := 0; i < root.shape[0]; i++ {
			for j := 0; j < root.shape[1]; j++ {
				root.SetGrad(i, j, one)
			}
		}
	}
	root.runBackward()
}

// BackwardSeeded runs reverse-mode autodiff from root with an explicit
// seed gradient, in row-major [rows*cols] order, never inspecting the
// tensor's existing gradient buffer.
func (root *Tensor[E]) BackwardSeeded(seed []E) {
	if len(seed) != root.shape[0]*root.shape[1] {
		panic("tensor: seed length does not match root shape")
	}
	k := 0
	for i := 0; i < root.shape[0]; i++ {
		for j := 0; j < root.shape[1]; j++ {
			root.SetGrad(i, j, seed[k])
			k++
		}
	}
	root.runBackward()
}

func (root *Tensor[E]) runBackward() {
	order := topoSort(root)
	for i := len(order) - 1; i >= 0; i-- {
		order[i].backward()
	}
}
