// Package graphstore implements a concurrent, undirected, weighted graph
// store: nodes are added and edges accumulated from many goroutines at
// once, with per-node monitors and a deterministic ordinal lock order
// standing in for a global graph lock.
package graphstore

import (
	"fmt"
	"math"
	"strings"
	"sync"

	"github.com/VitaliPath/forge/pkg/csr"
	"github.com/VitaliPath/forge/pkg/workerpool"
)

// Graph is an undirected weighted graph of Node values, safe for
// concurrent use from many goroutines.
type Graph struct {
	nodes sync.Map // string -> *Node
}

// New returns an empty graph.
func New() *Graph {
	return &Graph{}
}

// GetOrAddNode atomically inserts id if absent and returns the stable
// Node reference; concurrent callers racing on the same id observe the
// same *Node. Fails with ErrInvalidID when id is empty or whitespace.
func (g *Graph) GetOrAddNode(id string, data any) (*Node, error) {
	if strings.TrimSpace(id) == "" {
		return nil, fmt.Errorf("%w: %q", ErrInvalidID, id)
	}
	n := newNode(id, data)
	actual, _ := g.nodes.LoadOrStore(id, n)
	return actual.(*Node), nil
}

// TryGetNode looks up id without failing when it is absent.
func (g *Graph) TryGetNode(id string) (*Node, bool) {
	v, ok := g.nodes.Load(id)
	if !ok {
		return nil, false
	}
	return v.(*Node), true
}

// GetNode looks up id, failing with ErrNodeMissing when absent.
func (g *Graph) GetNode(id string) (*Node, error) {
	n, ok := g.TryGetNode(id)
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrNodeMissing, id)
	}
	return n, nil
}

// lockOrdinal locks a and b's monitors in ascending id order, returning
// an unlock func that releases both in the reverse order it acquired
// them. Self-loops (a == b) acquire only one lock.
func lockOrdinal(a, b *Node) func() {
	if a == b {
		a.mu.Lock()
		return a.mu.Unlock
	}
	first, second := a, b
	if second.ID < first.ID {
		first, second = second, first
	}
	first.mu.Lock()
	second.mu.Lock()
	return func() {
		second.mu.Unlock()
		first.mu.Unlock()
	}
}

// AccumulateEdge adds delta to the weight of the reciprocal edges
// from<->to, creating them if absent, and sets last_modified to the max
// of the existing value and timestamp. Self-loops update a single edge.
// Fails with ErrNodeMissing when either endpoint is absent.
func (g *Graph) AccumulateEdge(from, to string, delta Weight, timestamp int64) error {
	fn, err := g.GetNode(from)
	if err != nil {
		return err
	}
	tn, err := g.GetNode(to)
	if err != nil {
		return err
	}

	unlock := lockOrdinal(fn, tn)
	defer unlock()

	accumulateLocked(fn, tn.ID, delta, timestamp)
	if fn != tn {
		accumulateLocked(tn, fn.ID, delta, timestamp)
	}
	return nil
}

// accumulateLocked updates n's half of the edge to neighborID. Caller
// must already hold n.mu (via lockOrdinal).
func accumulateLocked(n *Node, neighborID string, delta Weight, timestamp int64) {
	e, ok := n.edges[neighborID]
	if !ok {
		e = &edge{}
		n.edges[neighborID] = e
	}
	e.weight += delta
	if timestamp > e.lastModified {
		e.lastModified = timestamp
	}
}

// RemoveNode removes id from the graph and symmetrically deletes all
// reciprocal edges from its neighbors. Returns false when id was
// already absent; calling it twice on the same id is safe.
func (g *Graph) RemoveNode(id string) bool {
	v, loaded := g.nodes.LoadAndDelete(id)
	if !loaded {
		return false
	}
	n := v.(*Node)

	for _, neighborID := range n.Neighbors() {
		neighbor, ok := g.TryGetNode(neighborID)
		if !ok {
			continue
		}
		unlock := lockOrdinal(n, neighbor)
		// Re-check under lock: a concurrent RemoveNode may already
		// have severed this link.
		if _, stillThere := neighbor.edges[n.ID]; stillThere {
			delete(neighbor.edges, n.ID)
		}
		delete(n.edges, neighborID)
		unlock()
	}
	return true
}

// ParallelScan invokes action once per node, fanned out across a
// GOMAXPROCS-sized worker pool built for this call.
func (g *Graph) ParallelScan(action func(*Node)) {
	nodes := g.snapshotNodes()
	exec := workerpool.Default()
	exec.ParallelFor(len(nodes), workerpool.MinGrainSize, func(start, end int) {
		for i := start; i < end; i++ {
			action(nodes[i])
		}
	})
}

// ParallelProject applies selector to every node, fanned out across a
// GOMAXPROCS-sized worker pool built for this call, and returns the
// results in node-snapshot order.
func ParallelProject[T any](g *Graph, selector func(*Node) T) []T {
	nodes := g.snapshotNodes()
	out := make([]T, len(nodes))
	exec := workerpool.Default()
	exec.ParallelFor(len(nodes), workerpool.MinGrainSize, func(start, end int) {
		for i := start; i < end; i++ {
			out[i] = selector(nodes[i])
		}
	})
	return out
}

func (g *Graph) snapshotNodes() []*Node {
	var nodes []*Node
	g.nodes.Range(func(_, v any) bool {
		nodes = append(nodes, v.(*Node))
		return true
	})
	return nodes
}

const secondsPerDay = 86400

// ApplyDecay multiplies every edge weight by exp(-λ·age_days), where
// age_days = max(0, (now-last_modified)/86400), clamping sub-epsilon
// multipliers to zero. Runs through ParallelScan; never fails on a
// well-formed graph.
func (g *Graph) ApplyDecay(lambda float64, now int64) {
	g.ParallelScan(func(n *Node) {
		n.mu.Lock()
		defer n.mu.Unlock()
		for _, e := range n.edges {
			ageDays := float64(now-e.lastModified) / secondsPerDay
			if ageDays < 0 {
				ageDays = 0
			}
			mult := math.Exp(-lambda * ageDays)
			if mult < csr.DecayEpsilon {
				mult = 0
			}
			e.weight *= mult
		}
	})
}

// Compile produces an immutable CSR snapshot of the graph's current
// state. Not synchronized with concurrent mutations: callers must
// quiesce ingestion before compiling to get a consistent snapshot.
func (g *Graph) Compile() (*csr.Snapshot, error) {
	nodes := g.snapshotNodes()
	views := make([]csr.NodeView, len(nodes))
	for i, n := range nodes {
		n.mu.Lock()
		neighbors := make([]csr.NeighborView, 0, len(n.edges))
		for target, e := range n.edges {
			neighbors = append(neighbors, csr.NeighborView{
				ID:           target,
				Weight:       float32(e.weight),
				LastModified: e.lastModified,
			})
		}
		n.mu.Unlock()
		views[i] = csr.NodeView{ID: n.ID, Neighbors: neighbors}
	}
	return csr.Compile(views)
}
