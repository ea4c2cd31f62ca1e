package csr

import (
	"sync"

	"github.com/VitaliPath/forge/pkg/workerpool"
)

// Predicate gates whether an edge (identified by its target node index
// and weight) participates in connected-components union. A nil
// predicate accepts every edge.
type Predicate func(targetIndex int, weight float32) bool

func (p Predicate) accepts(targetIndex int, weight float32) bool {
	return p == nil || p(targetIndex, weight)
}

// dsu is a parallel disjoint-set-union over node indices: Find uses
// lock-free path splitting (safe because it only shortens paths without
// ever violating the forest invariant); Union takes per-root monitors in
// strict ascending-index order to avoid deadlock, re-verifying root
// status after acquiring both locks since a concurrent union may have
// already demoted one of them.
type dsu struct {
	parent []int32
	rank   []int32
	locks  []sync.Mutex
}

func newDSU(n int) *dsu {
	d := &dsu{
		parent: make([]int32, n),
		rank:   make([]int32, n),
		locks:  make([]sync.Mutex, n),
	}
	for i := range d.parent {
		d.parent[i] = int32(i)
	}
	return d
}

func (d *dsu) find(i int32) int32 {
	for d.parent[i] != i {
		d.parent[i] = d.parent[d.parent[i]]
		i = d.parent[i]
	}
	return i
}

func (d *dsu) union(u, v int32) {
	for {
		ru, rv := d.find(u), d.find(v)
		if ru == rv {
			return
		}
		lo, hi := ru, rv
		if hi < lo {
			lo, hi = hi, lo
		}
		d.locks[lo].Lock()
		d.locks[hi].Lock()

		if d.parent[ru] != ru || d.parent[rv] != rv {
			// A concurrent union already changed one of these roots;
			// release and retry from scratch.
			d.locks[hi].Unlock()
			d.locks[lo].Unlock()
			continue
		}

		switch {
		case d.rank[ru] < d.rank[rv]:
			d.parent[ru] = rv
		case d.rank[ru] > d.rank[rv]:
			d.parent[rv] = ru
		default:
			d.parent[rv] = ru
			d.rank[ru]++
		}

		d.locks[hi].Unlock()
		d.locks[lo].Unlock()
		return
	}
}

// ConnectedComponents partitions the snapshot's nodes into connected
// components using a parallel disjoint-set-union: all nodes are unioned
// concurrently across a GOMAXPROCS-sized worker pool built for this call,
// honoring an optional edge
// predicate, then grouped by root in a second parallel pass.
func ConnectedComponents(snap *Snapshot, predicate Predicate) [][]string {
	n := snap.NodeCount()
	d := newDSU(n)

	exec := workerpool.Default()
	exec.ParallelFor(n, workerpool.MinGrainSize, func(start, end int) {
		for u := start; u < end; u++ {
			rs, re := snap.Neighbors(u)
			for k := rs; k < re; k++ {
				target := snap.ColIdx[k]
				if predicate.accepts(int(target), snap.Weights[k]) {
					d.union(int32(u), target)
				}
			}
		}
	})

	var mu sync.Mutex
	groups := make(map[int32][]string)
	exec.ParallelFor(n, workerpool.MinGrainSize, func(start, end int) {
		for i := start; i < end; i++ {
			root := d.find(int32(i))
			mu.Lock()
			groups[root] = append(groups[root], snap.IndexToID[i])
			mu.Unlock()
		}
	})

	out := make([][]string, 0, len(groups))
	for _, ids := range groups {
		out = append(out, ids)
	}
	return out
}

// ConnectedComponentsSequential is the reference BFS implementation of
// connected components, used to validate the parallel DSU variant
// produces the same partition: for each unvisited node it BFS-expands
// over neighbors whose edges pass the predicate.
func ConnectedComponentsSequential(snap *Snapshot, predicate Predicate) [][]string {
	n := snap.NodeCount()
	visited := make([]bool, n)
	var components [][]string

	for i := 0; i < n; i++ {
		if visited[i] {
			continue
		}
		visited[i] = true
		queue := []int32{int32(i)}
		var group []string

		for len(queue) > 0 {
			cur := queue[0]
			queue = queue[1:]
			group = append(group, snap.IndexToID[cur])

			rs, re := snap.Neighbors(int(cur))
			for k := rs; k < re; k++ {
				target := snap.ColIdx[k]
				if !predicate.accepts(int(target), snap.Weights[k]) {
					continue
				}
				if !visited[target] {
					visited[target] = true
					queue = append(queue, target)
				}
			}
		}
		components = append(components, group)
	}
	return components
}
