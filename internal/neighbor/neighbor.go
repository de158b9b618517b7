// Package neighbor implements the BRPL neighbor-set sampler (C2): bounded
// previous/current snapshot buffers per DAG and the Jaccard-style
// symmetric-difference churn index beta.
//
// The original C source (rpl-brpl.c, brpl_update_state) keeps a single
// static previous-neighbor buffer shared across every DAG, which spec.md
// §9 flags as a bug with multiple roots ("not multi-tree safe"). This
// package binds the buffer to the caller's Sampler instance instead, so one
// Sampler per DAG is the correct, safe usage.
package neighbor

import "github.com/zeetee1235/contiki-ng-brpl/internal/contracts"

// DefaultScale is the fixed-point unit used when a caller passes a scale of
// 0; callers should pass brplconf.Params.Scale, but this package-level
// default keeps the package usable standalone.
const DefaultScale = 1000

// MaxNeighbors bounds both snapshot buffers, mirroring NBR_TABLE_MAX_NEIGHBORS.
const MaxNeighbors = 32

// Sampler owns one DAG's previous/current neighbor snapshot buffers.
type Sampler struct {
	Scale uint16

	prev      [MaxNeighbors]contracts.ParentID
	prevCount int

	lastUpdate int64 // seconds; 0 means "never sampled"
}

// NewSampler returns a Sampler ready for use with the given fixed-point scale.
func NewSampler(scale uint16) *Sampler {
	if scale == 0 {
		scale = DefaultScale
	}
	return &Sampler{Scale: scale}
}

// Refresh re-snapshots the neighbor table if windowSeconds have elapsed
// since the last refresh, and returns the resulting churn index beta in
// [0, Scale]. If the window has not elapsed, it returns the cached value.
//
// Step 1 of spec.md §4.2: "if now - last_beta_update < window, skip (reuse
// cached beta)".
func (s *Sampler) Refresh(nowSeconds int64, windowSeconds int64, enumerator contracts.NeighborEnumerator, cachedBeta uint16) uint16 {
	if s.lastUpdate != 0 && nowSeconds-s.lastUpdate < windowSeconds {
		return cachedBeta
	}

	var curr [MaxNeighbors]contracts.ParentID
	currCount := 0
	if enumerator != nil {
		for _, id := range enumerator.Neighbors() {
			if currCount >= MaxNeighbors {
				break
			}
			curr[currCount] = id
			currCount++
		}
	}

	beta := s.symmetricDiff(s.prev[:s.prevCount], curr[:currCount])

	s.prev = curr
	s.prevCount = currCount
	s.lastUpdate = nowSeconds

	return beta
}

// symmetricDiff computes the scaled Jaccard distance between two neighbor
// snapshots: diff = |prev|+|curr|-2*intersection, union = |prev|+|curr|-
// intersection, beta = diff*Scale/union (0 if union is empty).
func (s *Sampler) symmetricDiff(prev, curr []contracts.ParentID) uint16 {
	intersection := 0
	for _, p := range prev {
		for _, c := range curr {
			if p == c {
				intersection++
				break
			}
		}
	}

	diff := len(prev) + len(curr) - 2*intersection
	union := len(prev) + len(curr) - intersection
	if union == 0 {
		return 0
	}

	val := (uint32(diff) * uint32(s.Scale)) / uint32(union)
	if val > uint32(s.Scale) {
		val = uint32(s.Scale)
	}
	return uint16(val)
}

// LastNeighborCount returns the size of the previous-neighbor buffer, the
// dag.brpl_last_nbr_count field of spec.md §3.
func (s *Sampler) LastNeighborCount() int { return s.prevCount }

// LastUpdate returns the timestamp (seconds) of the last successful refresh,
// or 0 if never refreshed.
func (s *Sampler) LastUpdate() int64 { return s.lastUpdate }

// Reset clears the buffers, matching brpl_reset's zeroing of
// brpl_last_beta_update / brpl_last_nbr_count.
func (s *Sampler) Reset() {
	s.prev = [MaxNeighbors]contracts.ParentID{}
	s.prevCount = 0
	s.lastUpdate = 0
}
