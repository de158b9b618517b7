// Package scoring implements the BRPL scoring function (C5): the scalar
// weight for one candidate parent, combining the DAG's blended coefficient
// theta, queue-pressure delta, normalized path cost, and the parent's trust
// penalty.
//
// Grounded on brpl_neighbor_queue, brpl_weight_base and
// brpl_apply_trust_penalty in rpl-brpl.c.
package scoring

import (
	"github.com/zeetee1235/contiki-ng-brpl/internal/contracts"
	"github.com/zeetee1235/contiki-ng-brpl/internal/dagstate"
	"github.com/zeetee1235/contiki-ng-brpl/internal/fixedpoint"
	"github.com/zeetee1235/contiki-ng-brpl/internal/queue"
	"github.com/zeetee1235/contiki-ng-brpl/internal/trust"
)

// PenaltyGamma selects the trust-penalty exponent (spec.md §4.5 step 7).
type PenaltyGamma int

const (
	GammaLinear  PenaltyGamma = 1
	GammaSquared PenaltyGamma = 2
)

// Params bundles the tunables Weight needs beyond what dagstate.State and
// the parent record already carry.
type Params struct {
	Scale              uint16
	TrustPenaltyGamma  PenaltyGamma
	TrustLambdaPenalty uint32
	Trust              trust.Params
}

// NeighborQueue estimates the candidate parent's queue occupancy
// (q_neighbor in spec.md §4.5 step 2): use the advertised value if valid,
// otherwise estimate it from self occupancy scaled by relative rank.
// Grounded on brpl_neighbor_queue.
func NeighborQueue(p *contracts.ParentRecord, selfRank uint16, qx, qmax uint16) uint16 {
	if p.BRPLQueueValid && p.BRPLQueueMax > 0 {
		return p.BRPLQueue
	}
	if selfRank == 0 {
		return qx
	}
	est := (uint32(qx) * uint32(p.Rank)) / uint32(selfRank)
	if est > uint32(qmax) {
		est = uint32(qmax)
	}
	return uint16(est)
}

// Weight computes the base weight W (spec.md §4.5 steps 3-6) for parent p
// on DAG d, after the caller has already refreshed d via dagstate.Refresh.
// Lower is better. All intermediates wide enough to overflow 32 bits use
// 64-bit signed accumulators per spec.md §9.
func Weight(d *dagstate.State, p *contracts.ParentRecord, selfRank uint16, q *queue.Meter, ref contracts.ReferenceObjective, params Params) int32 {
	scale := params.Scale

	qx := q.Length()
	qmax := q.Capacity()
	qy := NeighborQueue(p, selfRank, qx, qmax)
	deltaQ := int64(qx) - int64(qy)

	var linkMetric uint16
	if ref != nil {
		linkMetric = ref.ParentLinkMetric(p)
	}
	pTilde := uint64(linkMetric) + uint64(p.Rank)

	pMax := d.PMax
	if pMax < 1 {
		pMax = 1
	}
	pNorm := fixedpoint.ScaleRatio(pTilde, uint64(pMax), scale)

	var deltaQNorm int64
	if qmax > 0 {
		deltaQNorm = (deltaQ * int64(scale)) / int64(qmax)
	}

	theta := int64(d.Theta)
	weight := (theta*int64(pNorm) - int64(scale-d.Theta)*deltaQNorm) / int64(scale)

	return int32(weight)
}

// ApplyTrustPenalty scales weight by T/(Scale+lambda*D/Scale) under gamma=1,
// or T^2/(Scale^2+lambda*D^2/Scale) under gamma=2, where T is parent's
// clamped trust and D = Scale-T. A parent at full trust is unaffected. The
// factor is at most 1, so a lower-trust parent's weight moves toward zero:
// a positive weight shrinks (making the parent look cheaper) rather than
// growing. A non-positive denominator returns weight unchanged. Grounded on
// brpl_apply_trust_penalty.
func ApplyTrustPenalty(weight int32, p *contracts.ParentRecord, params Params) int32 {
	t := int64(trust.Clamped(p, params.Trust))
	scale := int64(params.Scale)
	distrust := scale - t
	lambda := int64(params.TrustLambdaPenalty)

	var num, den int64
	switch params.TrustPenaltyGamma {
	case GammaSquared:
		num = t * t
		den = scale*scale + (lambda*distrust*distrust)/scale
	default: // GammaLinear
		num = t
		den = scale + (lambda*distrust)/scale
	}

	if den <= 0 {
		return weight
	}
	return int32((int64(weight) * num) / den)
}
