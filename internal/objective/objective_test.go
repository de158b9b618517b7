package objective

import (
	"testing"

	"github.com/zeetee1235/contiki-ng-brpl/internal/contracts"
	"github.com/zeetee1235/contiki-ng-brpl/internal/queue"
	"github.com/zeetee1235/contiki-ng-brpl/internal/scoring"
	"github.com/zeetee1235/contiki-ng-brpl/internal/trust"
)

type noNeighbors struct{}

func (noNeighbors) Neighbors() []contracts.ParentID { return nil }

type staticParents map[contracts.DAGID][]*contracts.ParentRecord

func (s staticParents) ParentsOf(dag contracts.DAGID) []*contracts.ParentRecord { return s[dag] }

func defaultParams() Params {
	return Params{
		Scale:             1000,
		QueueEWMAAlpha:    100,
		BetaWindowSeconds: 60,
		Trust:             trust.Params{Scale: 1000, Min: 300, Alpha: 500, Beta: 500, LambdaShAdv: 500, LambdaShStab: 500, MinHopRankInc: 256, StabilityWindow: 120},
		Scoring:           scoring.Params{Scale: 1000, TrustPenaltyGamma: scoring.GammaLinear},
	}
}

func newTestObjective() *Objective {
	o := New(defaultParams())
	q := queue.NewMeter()
	q.Init(10, nil)
	o.Queue = q
	o.Neighbors = noNeighbors{}
	o.Ref = &MRHOF{MinHopRankInc: 256}
	return o
}

// TestBestParentNilHandling covers spec.md §8 property 5.
func TestBestParentNilHandling(t *testing.T) {
	o := newTestObjective()
	p := &contracts.ParentRecord{ID: 1, DAG: 1, Rank: 256}

	if got := o.BestParent(p, nil); got != p {
		t.Fatalf("BestParent(p, nil) = %v, want p", got)
	}
	if got := o.BestParent(nil, p); got != p {
		t.Fatalf("BestParent(nil, p) = %v, want p", got)
	}
	if got := o.BestParent(nil, nil); got != nil {
		t.Fatalf("BestParent(nil, nil) = %v, want nil", got)
	}
}

func TestBestParentDegradesToFirstWithNoReferenceObjective(t *testing.T) {
	o := newTestObjective()
	o.Ref = nil

	p1 := &contracts.ParentRecord{ID: 1, DAG: 1, Rank: 256}
	p2 := &contracts.ParentRecord{ID: 2, DAG: 1, Rank: 10}

	if got := o.BestParent(p1, p2); got != p1 {
		t.Fatalf("BestParent with nil Ref = %v, want p1 (no-op degradation)", got)
	}
}

func TestBestParentPrefersLowerLinkMetric(t *testing.T) {
	o := newTestObjective()
	p1 := &contracts.ParentRecord{ID: 1, DAG: 1, Rank: 256, LinkMetric: 10, TrustTotal: 1000}
	p2 := &contracts.ParentRecord{ID: 2, DAG: 1, Rank: 256, LinkMetric: 20, TrustTotal: 1000}

	o.Parents = staticParents{1: {p1, p2}}

	if got := o.BestParent(p1, p2); got != p1 {
		t.Fatalf("BestParent = %v, want p1 (lower link metric)", got)
	}
}

func TestResetRestoresDAGDefaults(t *testing.T) {
	o := newTestObjective()
	d := o.StateFor(1)
	d.QAvg, d.PMax = 500, 999

	o.Reset(1)

	d2 := o.StateFor(1)
	if d2.QAvg != 0 || d2.PMax != 1 {
		t.Fatalf("after Reset: QAvg=%d PMax=%d, want 0,1", d2.QAvg, d2.PMax)
	}
}

func TestForwardingHooksDegradeWithoutReference(t *testing.T) {
	o := newTestObjective()
	o.Ref = nil
	p := &contracts.ParentRecord{ID: 1, DAG: 1, Rank: 256}

	if got := o.ParentLinkMetric(p); got != 0 {
		t.Fatalf("ParentLinkMetric with nil Ref = %d, want 0", got)
	}
	if !o.ParentHasUsableLink(p) {
		t.Fatal("ParentHasUsableLink with nil Ref should be optimistic (true)")
	}
	if got := o.ParentPathCost(p); got != p.Rank {
		t.Fatalf("ParentPathCost with nil Ref = %d, want parent rank %d", got, p.Rank)
	}
	if got := o.RankViaParent(p); got != p.Rank {
		t.Fatalf("RankViaParent with nil Ref = %d, want parent rank %d", got, p.Rank)
	}
}
