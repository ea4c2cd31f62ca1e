package graphstore_test

import (
	"strconv"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/VitaliPath/forge/pkg/graphstore"
)

func TestGetOrAddNodeReturnsSameInstance(t *testing.T) {
	g := graphstore.New()
	a, err := g.GetOrAddNode("s", nil)
	require.NoError(t, err)
	b, err := g.GetOrAddNode("s", nil)
	require.NoError(t, err)
	require.Same(t, a, b)
}

func TestGetOrAddNodeRejectsBlankID(t *testing.T) {
	g := graphstore.New()
	_, err := g.GetOrAddNode("   ", nil)
	require.ErrorIs(t, err, graphstore.ErrInvalidID)
}

func TestAccumulateEdgeNodeMissing(t *testing.T) {
	g := graphstore.New()
	_, err := g.GetOrAddNode("s", nil)
	require.NoError(t, err)
	err = g.AccumulateEdge("s", "ghost", 1, 0)
	require.ErrorIs(t, err, graphstore.ErrNodeMissing)
}

func TestAccumulateEdgeIsSymmetric(t *testing.T) {
	g := graphstore.New()
	_, _ = g.GetOrAddNode("s", nil)
	_, _ = g.GetOrAddNode("t", nil)

	require.NoError(t, g.AccumulateEdge("s", "t", 2.5, 10))

	s, _ := g.GetNode("s")
	tn, _ := g.GetNode("t")

	ws, ok := s.Weight("t")
	require.True(t, ok)
	require.Equal(t, 2.5, ws)

	wt, ok := tn.Weight("s")
	require.True(t, ok)
	require.Equal(t, 2.5, wt)
}

func TestAccumulateEdgeSelfLoop(t *testing.T) {
	g := graphstore.New()
	_, _ = g.GetOrAddNode("s", nil)
	require.NoError(t, g.AccumulateEdge("s", "s", 4, 0))
	s, _ := g.GetNode("s")
	w, ok := s.Weight("s")
	require.True(t, ok)
	require.Equal(t, 4.0, w)
	require.Equal(t, 1, s.EdgeCount())
}

// S3 — Thread-safe accumulation.
func TestAccumulateEdgeConcurrentSameDirection(t *testing.T) {
	g := graphstore.New()
	_, _ = g.GetOrAddNode("s", nil)
	_, _ = g.GetOrAddNode("t", nil)

	var wg sync.WaitGroup
	for i := 0; i < 1000; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			require.NoError(t, g.AccumulateEdge("s", "t", 1.0, 0))
		}()
	}
	wg.Wait()

	s, _ := g.GetNode("s")
	tn, _ := g.GetNode("t")
	ws, _ := s.Weight("t")
	wt, _ := tn.Weight("s")
	require.Equal(t, 1000.0, ws)
	require.Equal(t, 1000.0, wt)
	require.Equal(t, 1, s.EdgeCount())
	require.Equal(t, 1, tn.EdgeCount())
}

// S4 — Deadlock freedom under concurrent cross-direction accumulation.
func TestAccumulateEdgeConcurrentCrossDirection(t *testing.T) {
	g := graphstore.New()
	_, _ = g.GetOrAddNode("A", nil)
	_, _ = g.GetOrAddNode("B", nil)

	done := make(chan struct{})
	go func() {
		var wg sync.WaitGroup
		wg.Add(2)
		go func() {
			defer wg.Done()
			for i := 0; i < 10000; i++ {
				_ = g.AccumulateEdge("A", "B", 1, 0)
			}
		}()
		go func() {
			defer wg.Done()
			for i := 0; i < 10000; i++ {
				_ = g.AccumulateEdge("B", "A", 1, 0)
			}
		}()
		wg.Wait()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("accumulate_edge did not complete within 5s; suspect deadlock")
	}

	a, _ := g.GetNode("A")
	b, _ := g.GetNode("B")
	wa, _ := a.Weight("B")
	wb, _ := b.Weight("A")
	require.Equal(t, 20000.0, wa)
	require.Equal(t, 20000.0, wb)
}

func TestRemoveNodeTwiceIsSafe(t *testing.T) {
	g := graphstore.New()
	_, _ = g.GetOrAddNode("s", nil)
	require.True(t, g.RemoveNode("s"))
	require.False(t, g.RemoveNode("s"))
}

func TestRemoveNodeSeversReciprocalEdges(t *testing.T) {
	g := graphstore.New()
	_, _ = g.GetOrAddNode("s", nil)
	_, _ = g.GetOrAddNode("t", nil)
	require.NoError(t, g.AccumulateEdge("s", "t", 1, 0))

	require.True(t, g.RemoveNode("s"))

	_, err := g.GetNode("s")
	require.ErrorIs(t, err, graphstore.ErrNodeMissing)

	tn, err := g.GetNode("t")
	require.NoError(t, err)
	require.Equal(t, 0, tn.EdgeCount())
}

func TestParallelScanVisitsEveryNode(t *testing.T) {
	g := graphstore.New()
	for i := 0; i < 500; i++ {
		_, _ = g.GetOrAddNode(string(rune('a'))+strconv.Itoa(i), nil)
	}
	var count int64
	var mu sync.Mutex
	g.ParallelScan(func(n *graphstore.Node) {
		mu.Lock()
		count++
		mu.Unlock()
	})
	require.EqualValues(t, 500, count)
}

func TestParallelProjectCollectsSelectedValues(t *testing.T) {
	g := graphstore.New()
	for i := 0; i < 10; i++ {
		_, _ = g.GetOrAddNode(strconv.Itoa(i), i)
	}
	ids := graphstore.ParallelProject(g, func(n *graphstore.Node) string { return n.ID })
	require.Len(t, ids, 10)
}

// S5 — half-life decay.
func TestGraphApplyDecayHalfLife(t *testing.T) {
	g := graphstore.New()
	_, _ = g.GetOrAddNode("s", nil)
	_, _ = g.GetOrAddNode("t", nil)
	require.NoError(t, g.AccumulateEdge("s", "t", 10, 0))

	ageSeconds := int64(138.629 * 86400)
	g.ApplyDecay(0.005, ageSeconds)

	s, _ := g.GetNode("s")
	w, _ := s.Weight("t")
	require.InDelta(t, 5.0, w, 0.1)
}

func TestGraphApplyDecayZeroAgeIsNoOp(t *testing.T) {
	g := graphstore.New()
	_, _ = g.GetOrAddNode("s", nil)
	_, _ = g.GetOrAddNode("t", nil)
	require.NoError(t, g.AccumulateEdge("s", "t", 7, 1000))

	g.ApplyDecay(0.1, 1000)

	s, _ := g.GetNode("s")
	w, _ := s.Weight("t")
	require.Equal(t, 7.0, w)
}

func TestCompileProducesDeterministicSnapshot(t *testing.T) {
	build := func() *graphstore.Graph {
		g := graphstore.New()
		_, _ = g.GetOrAddNode("A", nil)
		_, _ = g.GetOrAddNode("B", nil)
		_ = g.AccumulateEdge("A", "B", 1.0, 0)
		return g
	}

	snap1, err := build().Compile()
	require.NoError(t, err)
	snap2, err := build().Compile()
	require.NoError(t, err)

	require.Equal(t, snap1.RowPtr, snap2.RowPtr)
	require.Equal(t, snap1.ColIdx, snap2.ColIdx)
	require.Equal(t, snap1.Weights, snap2.Weights)
	require.Equal(t, snap1.IndexToID, snap2.IndexToID)
}
