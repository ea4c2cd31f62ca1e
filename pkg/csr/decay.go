package csr

import (
	"math"

	"github.com/VitaliPath/forge/pkg/workerpool"
)

// ApplyDecay multiplies every edge weight in the snapshot in place by
// exp(-λ·age_days), where age_days = max(0, (now-last_modified)/86400),
// clamping sub-epsilon multipliers to zero. Fanned out across a
// GOMAXPROCS-sized worker pool built for this call. It mutates the
// snapshot's weights in place; graphstore.Graph.ApplyDecay applies the
// same formula and cutoff to the live graph.
func (s *Snapshot) ApplyDecay(lambda float64, now int64) {
	exec := workerpool.Default()
	exec.ParallelFor(len(s.Weights), workerpool.MinGrainSize, func(start, end int) {
		for i := start; i < end; i++ {
			ageDays := float64(now-s.LastModified[i]) / secondsPerDay
			if ageDays < 0 {
				ageDays = 0
			}
			mult := math.Exp(-lambda * ageDays)
			if mult < DecayEpsilon {
				mult = 0
			}
			s.Weights[i] *= float32(mult)
		}
	})
}

const secondsPerDay = 86400
