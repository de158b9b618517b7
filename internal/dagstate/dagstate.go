// Package dagstate implements the BRPL DAG state updater (C3): the
// per-routing-tree aggregates (smoothed queue load rho, churn index beta,
// blended weighting coefficient theta, and max candidate path cost p_max)
// that the scoring function (internal/scoring) consumes on every
// comparison.
//
// Grounded on brpl_update_state in rpl-brpl.c.
package dagstate

import (
	"github.com/zeetee1235/contiki-ng-brpl/internal/contracts"
	"github.com/zeetee1235/contiki-ng-brpl/internal/fixedpoint"
	"github.com/zeetee1235/contiki-ng-brpl/internal/neighbor"
	"github.com/zeetee1235/contiki-ng-brpl/internal/queue"
)

// State is one routing tree's BRPL aggregates, spec.md §3.
type State struct {
	DAG contracts.DAGID

	QAvg  uint16 // EWMA of instantaneous queue length, [0, Scale]
	Beta  uint16 // neighbor churn, [0, Scale]
	Theta uint16 // blended weighting coefficient, [0, Scale]
	PMax  uint32 // max over current candidates of (link_metric + rank), >= 1

	Rank uint16 // self rank within the tree, externally supplied

	sampler *neighbor.Sampler
}

// Params are the fixed-point tunables consumed by Refresh. Callers
// typically source these from internal/brplconf.Params.
type Params struct {
	Scale            uint16
	QueueEWMAAlpha   uint16 // in [1, Scale]
	BetaWindowSeconds int64
}

// New returns a DAG state reset to the defaults of spec.md §3: theta=Scale,
// beta=Scale, q_avg=0, p_max=1.
func New(dag contracts.DAGID, scale uint16) *State {
	s := &State{DAG: dag, sampler: neighbor.NewSampler(scale)}
	s.Reset(scale)
	return s
}

// Reset restores the defaults used at DAG creation and on objective reset
// (brpl_reset): theta=Scale, beta=Scale, q_avg=0, p_max=1, and clears the
// neighbor snapshot buffers.
func (s *State) Reset(scale uint16) {
	s.QAvg = 0
	s.Beta = scale
	s.Theta = scale
	s.PMax = 1
	s.sampler.Reset()
}

// Refresh recomputes rho, beta, theta and p_max in order, matching
// brpl_update_state's four steps (spec.md §4.3). parents enumerates the
// candidate parents currently on this DAG; ref supplies the link metric
// used in the p_max scan (the reference objective's parent_link_metric
// hook, forwarded verbatim per spec.md §4.6).
func (s *State) Refresh(nowSeconds int64, q *queue.Meter, nbrs contracts.NeighborEnumerator, parents []*contracts.ParentRecord, ref contracts.ReferenceObjective, p Params) {
	scale := p.Scale
	if scale == 0 {
		scale = neighbor.DefaultScale
	}

	// Step 1: rho update.
	qLen := uint64(q.Length())
	qMax := q.Capacity()
	alpha := p.QueueEWMAAlpha
	if alpha == 0 {
		alpha = 1
	}
	s.QAvg = uint16((uint64(scale-alpha)*uint64(s.QAvg) + uint64(alpha)*qLen) / uint64(scale))

	var rho uint16
	if qMax > 0 {
		rho = fixedpoint.ScaleRatio(uint64(s.QAvg), uint64(qMax), scale)
	}

	// Step 2: beta update (neighbor churn).
	s.Beta = s.sampler.Refresh(nowSeconds, p.BetaWindowSeconds, nbrs, s.Beta)

	// Step 3: theta derivation. theta = beta + (scale-beta)*(scale-rho)/scale.
	thetaPart := (uint32(scale-s.Beta) * uint32(scale-rho)) / uint32(scale)
	theta := uint32(s.Beta) + thetaPart
	if theta > uint32(scale) {
		theta = uint32(scale)
	}
	s.Theta = uint16(theta)

	// Step 4: p_max scan over current candidates with finite rank.
	pMax := uint32(1)
	if ref != nil {
		for _, parent := range parents {
			if parent == nil || parent.DAG != s.DAG || parent.Rank == 0xFFFF { // 0xFFFF: RPL infinite rank
				continue
			}
			pTilde := uint32(ref.ParentLinkMetric(parent)) + uint32(parent.Rank)
			if pTilde > pMax {
				pMax = pTilde
			}
		}
	}
	s.PMax = pMax
}

// LastNeighborCount exposes the previous-neighbor buffer size
// (dag.brpl_last_nbr_count in spec.md §3).
func (s *State) LastNeighborCount() int { return s.sampler.LastNeighborCount() }

// LastBetaUpdate exposes the last beta-refresh timestamp in seconds.
func (s *State) LastBetaUpdate() int64 { return s.sampler.LastUpdate() }
