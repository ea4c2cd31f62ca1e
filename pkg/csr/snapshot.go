// Package csr compiles a graph into an immutable Compressed Sparse Row
// snapshot, persists it in a byte-exact binary format, computes a
// structural topology hash over it, and runs both a parallel
// disjoint-set-union and a sequential BFS connected-components pass.
package csr

import (
	"sort"

	"github.com/VitaliPath/forge/pkg/tensor"
)

// DecayEpsilon is the multiplier floor below which edge-weight decay
// clamps to zero rather than carrying a sub-normal value forward. Shared
// between graphstore.Graph.ApplyDecay and Snapshot.ApplyDecay so both
// layers agree on the cutoff.
const DecayEpsilon = 1e-7

// NeighborView is the graph layer's view of one outgoing edge, passed
// into Compile without csr depending on the graphstore package.
type NeighborView struct {
	ID           string
	Weight       float32
	LastModified int64
}

// NodeView is the graph layer's view of one node's outgoing edges,
// passed into Compile without csr depending on the graphstore package.
type NodeView struct {
	ID        string
	Neighbors []NeighborView
}

// Snapshot is an immutable Compressed Sparse Row representation of a
// graph at a point in time. RowPtr has len(IndexToID)+1 entries; ColIdx,
// Weights and LastModified each have len(ColIdx) entries indexed in
// parallel.
type Snapshot struct {
	RowPtr       []int32
	ColIdx       []int32
	Weights      []float32
	LastModified []int64
	IDToIndex    map[string]int32
	IndexToID    []string
}

// Compile builds a deterministic Snapshot from a set of node views: nodes
// are sorted by ascending id to assign indices, and each node's edges are
// emitted sorted by target id, so two structurally identical graphs
// produce byte-identical CSR arrays regardless of ingestion order.
func Compile(nodes []NodeView) (*Snapshot, error) {
	sorted := make([]NodeView, len(nodes))
	copy(sorted, nodes)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].ID < sorted[j].ID })

	n := len(sorted)
	idToIndex := make(map[string]int32, n)
	indexToID := make([]string, n)
	for i, nv := range sorted {
		idToIndex[nv.ID] = int32(i)
		indexToID[i] = nv.ID
	}

	rowPtr := make([]int32, n+1)
	for i, nv := range sorted {
		rowPtr[i+1] = rowPtr[i] + int32(len(nv.Neighbors))
	}

	edgeCount := rowPtr[n]
	colIdx := make([]int32, 0, edgeCount)
	weights := make([]float32, 0, edgeCount)
	lastModified := make([]int64, 0, edgeCount)

	for _, nv := range sorted {
		neighbors := make([]NeighborView, len(nv.Neighbors))
		copy(neighbors, nv.Neighbors)
		sort.Slice(neighbors, func(i, j int) bool { return neighbors[i].ID < neighbors[j].ID })
		for _, nb := range neighbors {
			colIdx = append(colIdx, idToIndex[nb.ID])
			weights = append(weights, nb.Weight)
			lastModified = append(lastModified, nb.LastModified)
		}
	}

	return &Snapshot{
		RowPtr:       rowPtr,
		ColIdx:       colIdx,
		Weights:      weights,
		LastModified: lastModified,
		IDToIndex:    idToIndex,
		IndexToID:    indexToID,
	}, nil
}

// NodeCount returns the number of nodes in the snapshot.
func (s *Snapshot) NodeCount() int { return len(s.IndexToID) }

// EdgeCount returns the number of directed edge entries in the snapshot.
func (s *Snapshot) EdgeCount() int { return len(s.ColIdx) }

// Neighbors returns the [start,end) slice bounds into ColIdx/Weights/
// LastModified for node index i's outgoing edges.
func (s *Snapshot) Neighbors(i int) (start, end int32) {
	return s.RowPtr[i], s.RowPtr[i+1]
}

// WeightsAsTensor constructs a rank-2 [1, edge_count] tensor view
// aliasing the snapshot's weight buffer directly: mutations through the
// tensor are observable through the snapshot and vice versa. The
// returned tensor is a leaf with no autograd parents.
func (s *Snapshot) WeightsAsTensor() *tensor.Tensor[float32] {
	return tensor.NewFrom(1, len(s.Weights), s.Weights)
}
