package dagstate

import (
	"testing"

	"github.com/zeetee1235/contiki-ng-brpl/internal/contracts"
	"github.com/zeetee1235/contiki-ng-brpl/internal/queue"
)

type emptyNeighbors struct{}

func (emptyNeighbors) Neighbors() []contracts.ParentID { return nil }

type fixedNeighbors []contracts.ParentID

func (f fixedNeighbors) Neighbors() []contracts.ParentID { return []contracts.ParentID(f) }

type fakeRef struct{}

func (fakeRef) ParentLinkMetric(p *contracts.ParentRecord) uint16 { return p.LinkMetric }
func (fakeRef) ParentHasUsableLink(*contracts.ParentRecord) bool  { return true }
func (fakeRef) ParentPathCost(p *contracts.ParentRecord) uint16   { return p.LinkMetric + p.Rank }
func (fakeRef) RankViaParent(p *contracts.ParentRecord) uint16    { return p.Rank + 256 }

func TestRefreshKeepsInvariants(t *testing.T) {
	s := New(1, 1000)
	q := queue.NewMeter()
	q.Init(10, nil)
	for i := 0; i < 7; i++ {
		q.OnEnqueue()
	}

	parents := []*contracts.ParentRecord{
		{ID: 1, DAG: 1, Rank: 256, LinkMetric: 10},
		{ID: 2, DAG: 1, Rank: 512, LinkMetric: 40},
	}

	s.Refresh(1, q, emptyNeighbors{}, parents, fakeRef{}, Params{Scale: 1000, QueueEWMAAlpha: 100, BetaWindowSeconds: 60})

	if s.QAvg > 1000 {
		t.Fatalf("QAvg = %d, exceeds scale", s.QAvg)
	}
	if s.Beta > 1000 {
		t.Fatalf("Beta = %d, exceeds scale", s.Beta)
	}
	if s.Theta > 1000 {
		t.Fatalf("Theta = %d, exceeds scale", s.Theta)
	}
	if s.Theta < s.Beta {
		t.Fatalf("Theta %d < Beta %d, violates theta >= beta", s.Theta, s.Beta)
	}
	if s.PMax < 1 {
		t.Fatalf("PMax = %d, must be >= 1", s.PMax)
	}

	want := uint32(40 + 512) // higher of the two p~ values
	if s.PMax != want {
		t.Fatalf("PMax = %d, want %d", s.PMax, want)
	}
}

func TestThetaSaturatesWhenRhoIsZero(t *testing.T) {
	s := New(1, 1000)
	q := queue.NewMeter()
	q.Init(0, nil) // qmax 0 -> rho forced to 0 regardless of occupancy

	s.Refresh(1, q, emptyNeighbors{}, nil, fakeRef{}, Params{Scale: 1000, QueueEWMAAlpha: 100, BetaWindowSeconds: 60})

	if s.Theta != 1000 {
		t.Fatalf("Theta = %d, want 1000 when rho is 0", s.Theta)
	}
}

func TestThetaSaturatesWhenBetaIsScale(t *testing.T) {
	s := New(1, 1000)
	q := queue.NewMeter()
	q.Init(10, nil)

	// Disjoint snapshots across two refreshes drive beta to the full scale.
	s.Refresh(1, q, fixedNeighbors{1, 2}, nil, fakeRef{}, Params{Scale: 1000, QueueEWMAAlpha: 100, BetaWindowSeconds: 1})
	s.Refresh(10, q, fixedNeighbors{3, 4}, nil, fakeRef{}, Params{Scale: 1000, QueueEWMAAlpha: 100, BetaWindowSeconds: 1})

	if s.Beta != 1000 {
		t.Fatalf("Beta = %d, want 1000 for disjoint snapshots", s.Beta)
	}
	if s.Theta != 1000 {
		t.Fatalf("Theta = %d, want 1000 when beta saturates", s.Theta)
	}
}

func TestResetRestoresDefaults(t *testing.T) {
	s := New(1, 1000)
	s.QAvg, s.Beta, s.Theta, s.PMax = 500, 100, 900, 42

	s.Reset(1000)

	if s.QAvg != 0 || s.Beta != 1000 || s.Theta != 1000 || s.PMax != 1 {
		t.Fatalf("Reset() gave QAvg=%d Beta=%d Theta=%d PMax=%d, want 0,1000,1000,1", s.QAvg, s.Beta, s.Theta, s.PMax)
	}
}

func TestPMaxFloorsAtOneWithNoCandidates(t *testing.T) {
	s := New(1, 1000)
	q := queue.NewMeter()
	q.Init(10, nil)

	s.Refresh(1, q, emptyNeighbors{}, nil, fakeRef{}, Params{Scale: 1000, QueueEWMAAlpha: 100, BetaWindowSeconds: 60})

	if s.PMax != 1 {
		t.Fatalf("PMax = %d, want 1 with no candidate parents", s.PMax)
	}
}
