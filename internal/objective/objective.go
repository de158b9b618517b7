// Package objective implements the BRPL comparator / objective vtable (C6):
// the glue that refreshes a DAG's aggregates on demand, scores two candidate
// parents, and picks the lower-weight one, while forwarding every
// non-comparator hook to a reference objective.
//
// Grounded on brpl_best_parent, brpl_reset and the rpl_of_t rpl_brpl vtable
// in rpl-brpl.c.
package objective

import (
	"github.com/zeetee1235/contiki-ng-brpl/internal/contracts"
	"github.com/zeetee1235/contiki-ng-brpl/internal/dagstate"
	"github.com/zeetee1235/contiki-ng-brpl/internal/fixedpoint"
	"github.com/zeetee1235/contiki-ng-brpl/internal/neighbor"
	"github.com/zeetee1235/contiki-ng-brpl/internal/queue"
	"github.com/zeetee1235/contiki-ng-brpl/internal/scoring"
	"github.com/zeetee1235/contiki-ng-brpl/internal/trust"
)

// OCP_BRPL is the objective code point the routing protocol registers this
// objective under (spec.md §6).
const OCP_BRPL = 0xB2 // unassigned in the IANA RPL OCP registry at draft time

// Params bundles every compile-time-constant tunable from spec.md §6 into
// one value a caller loads once (from internal/brplconf) and passes to every
// Objective it constructs.
type Params struct {
	Scale uint16

	QueueEWMAAlpha    uint16
	BetaWindowSeconds int64

	Trust   trust.Params
	Scoring scoring.Params
}

// Objective is the stateful C6 comparator. One Objective instance serves one
// node; it keeps a DAG state per routing tree the node participates in.
type Objective struct {
	Ref         contracts.ReferenceObjective
	Queue       *queue.Meter
	Neighbors   contracts.NeighborEnumerator
	Parents     contracts.ParentEnumerator
	Clock       contracts.Clock
	TrustOracle contracts.TrustOracle

	Params Params

	states map[contracts.DAGID]*dagstate.State
}

// New constructs an Objective with an empty DAG-state registry. Ref, Queue,
// Neighbors, Parents and Clock may be supplied later; until Ref is set the
// objective degrades per spec.md §7 (no-op, selects the first parent).
func New(params Params) *Objective {
	return &Objective{
		Params: params,
		states: make(map[contracts.DAGID]*dagstate.State),
	}
}

// StateFor returns the DAG state for dag, creating it at the spec.md §3
// defaults on first use.
func (o *Objective) StateFor(dag contracts.DAGID) *dagstate.State {
	if s, ok := o.states[dag]; ok {
		return s
	}
	scale := o.Params.Scale
	if scale == 0 {
		scale = neighbor.DefaultScale
	}
	s := dagstate.New(dag, scale)
	o.states[dag] = s
	return s
}

// Reset restores dag's state to its defaults (brpl_reset), dropping any
// accumulated churn/queue history for that tree only.
func (o *Objective) Reset(dag contracts.DAGID) {
	scale := o.Params.Scale
	if scale == 0 {
		scale = neighbor.DefaultScale
	}
	o.StateFor(dag).Reset(scale)
}

// refreshedState returns dag's state after one Refresh pass against the
// current queue, neighbor and parent-table snapshots.
func (o *Objective) refreshedState(dag contracts.DAGID) *dagstate.State {
	s := o.StateFor(dag)
	if o.Queue == nil {
		return s
	}
	var parents []*contracts.ParentRecord
	if o.Parents != nil {
		parents = o.Parents.ParentsOf(dag)
	}
	var now int64
	if o.Clock != nil {
		now = o.Clock.Seconds()
	}
	s.Refresh(now, o.Queue, o.Neighbors, parents, o.Ref, dagstate.Params{
		Scale:             o.Params.Scale,
		QueueEWMAAlpha:    o.Params.QueueEWMAAlpha,
		BetaWindowSeconds: o.Params.BetaWindowSeconds,
	})
	return s
}

// scoringParams adapts Objective's Params into the subset scoring.Weight and
// scoring.ApplyTrustPenalty need.
func (o *Objective) scoringParams() scoring.Params {
	p := o.Params.Scoring
	p.Scale = o.Params.Scale
	p.Trust = o.Params.Trust
	return p
}

// weightOf scores p against an already-refreshed DAG state. Callers within
// one BestParent/Evaluate pass must refresh each distinct DAG at most once
// (spec.md §5 ordering guarantee) and pass the shared result in.
func (o *Objective) weightOf(p *contracts.ParentRecord, d *dagstate.State) int32 {
	w := scoring.Weight(d, p, d.Rank, o.Queue, o.Ref, o.scoringParams())
	return scoring.ApplyTrustPenalty(w, p, o.scoringParams())
}

// WeightOf returns the trust-adjusted weight p currently carries against its
// DAG's state, for call sites (metrics sampling, logging) that need every
// candidate's weight rather than just a pairwise winner. It does not
// refresh the DAG state itself; callers should only rely on it after a
// BestParent/Evaluate pass has refreshed p.DAG this tick (spec.md §5's
// at-most-once-per-evaluation refresh guarantee).
func (o *Objective) WeightOf(p *contracts.ParentRecord) int32 {
	if p == nil {
		return 0
	}
	return o.weightOf(p, o.StateFor(p.DAG))
}

// BestParent compares p1 and p2 and returns whichever scores lower. nil
// arguments are handled per spec.md §8 property 5 (nil paired with a
// non-nil parent always yields the non-nil one; nil paired with nil yields
// nil); a nil Ref degrades to a no-op that always keeps p1, per spec.md §7.
// Each distinct DAG among p1/p2 is refreshed at most once, per spec.md §5.
func (o *Objective) BestParent(p1, p2 *contracts.ParentRecord) *contracts.ParentRecord {
	if p1 == nil {
		return p2
	}
	if p2 == nil {
		return p1
	}
	if o.Ref == nil {
		return p1
	}

	d1 := o.refreshedState(p1.DAG)
	d2 := d1
	if p2.DAG != p1.DAG {
		d2 = o.refreshedState(p2.DAG)
	}

	w1 := o.weightOf(p1, d1)
	w2 := o.weightOf(p2, d2)
	if w2 < w1 {
		return p2
	}
	return p1
}

// UpdateParentTrust recomputes parent's trust sub-scores and total, to be
// called whenever new rank or reliability information arrives for it
// (spec.md §6's update_parent_trust hook).
func (o *Objective) UpdateParentTrust(parent *contracts.ParentRecord) {
	if parent == nil {
		return
	}
	d := o.StateFor(parent.DAG)
	var now int64
	if o.Clock != nil {
		now = o.Clock.Seconds()
	}
	trust.Update(parent, d.Rank, now, o.TrustOracle, o.Params.Trust)
}

// ParentLinkMetric forwards to Ref, or returns 0 if no reference objective
// is configured (spec.md §7 missing-dependency degradation).
func (o *Objective) ParentLinkMetric(p *contracts.ParentRecord) uint16 {
	if o.Ref == nil {
		return 0
	}
	return o.Ref.ParentLinkMetric(p)
}

// ParentHasUsableLink forwards to Ref, defaulting to true (optimistic) with
// no reference objective configured.
func (o *Objective) ParentHasUsableLink(p *contracts.ParentRecord) bool {
	if o.Ref == nil {
		return true
	}
	return o.Ref.ParentHasUsableLink(p)
}

// ParentPathCost forwards to Ref, or returns the parent's rank unmodified
// with no reference objective configured.
func (o *Objective) ParentPathCost(p *contracts.ParentRecord) uint16 {
	if o.Ref == nil {
		return p.Rank
	}
	return o.Ref.ParentPathCost(p)
}

// RankViaParent forwards to Ref, or returns the parent's rank unmodified
// with no reference objective configured.
func (o *Objective) RankViaParent(p *contracts.ParentRecord) uint16 {
	if o.Ref == nil {
		return p.Rank
	}
	return o.Ref.RankViaParent(p)
}

// Evaluation captures every intermediate BestParent needs to reproduce, used
// by internal/csvlog to emit the BRPL_WEIGHT, BRPL_TRUST and BRPL_BEST lines
// from spec.md §6 without recomputing anything.
type Evaluation struct {
	SelfRank uint16

	Parent1       contracts.ParentID
	Weight1       int32
	TrustTotal1   uint16
	Parent2       contracts.ParentID
	Weight2       int32
	TrustTotal2   uint16
	Best          contracts.ParentID

	Q, QY, QMax     uint16
	PTilde, PNorm   uint16
	DeltaQNorm      int32
	Theta           uint16
}

// Evaluate runs the same comparison as BestParent but returns every
// intermediate alongside the winner, for detailed logging call sites.
func (o *Objective) Evaluate(p1, p2 *contracts.ParentRecord) Evaluation {
	ev := Evaluation{}
	if p1 != nil {
		ev.SelfRank = o.StateFor(p1.DAG).Rank
	} else if p2 != nil {
		ev.SelfRank = o.StateFor(p2.DAG).Rank
	}

	best := o.BestParent(p1, p2)
	if best != nil {
		ev.Best = best.ID
	} else {
		ev.Best = contracts.SentinelParentID
	}

	if p1 != nil {
		d := o.StateFor(p1.DAG)
		ev.Parent1 = p1.ID
		ev.Weight1 = o.weightOf(p1, d)
		ev.TrustTotal1 = trust.Clamped(p1, o.Params.Trust)
		if o.Queue != nil {
			ev.Q = o.Queue.Length()
			ev.QMax = o.Queue.Capacity()
			ev.QY = scoring.NeighborQueue(p1, d.Rank, ev.Q, ev.QMax)
			if ev.Q >= ev.QY {
				ev.DeltaQNorm = int32(fixedpoint.ScaleRatio(uint64(ev.Q-ev.QY), uint64(ev.QMax), o.Params.Scale))
			} else {
				ev.DeltaQNorm = -int32(fixedpoint.ScaleRatio(uint64(ev.QY-ev.Q), uint64(ev.QMax), o.Params.Scale))
			}
		}
		ev.Theta = d.Theta
		if o.Ref != nil {
			ev.PTilde = o.Ref.ParentLinkMetric(p1) + p1.Rank
		}
		ev.PNorm = fixedpoint.ScaleRatio(uint64(ev.PTilde), uint64(d.PMax), o.Params.Scale)
	}
	if p2 != nil {
		d := o.StateFor(p2.DAG)
		ev.Parent2 = p2.ID
		ev.Weight2 = o.weightOf(p2, d)
		ev.TrustTotal2 = trust.Clamped(p2, o.Params.Trust)
	}

	return ev
}
