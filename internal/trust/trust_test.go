package trust

import (
	"testing"

	"github.com/zeetee1235/contiki-ng-brpl/internal/contracts"
)

func defaultParams() Params {
	return Params{
		Scale: 1000,
		Min:   300,

		Alpha: 500,
		Beta:  500,

		TauRank:         64,
		KappaRank:       0,
		LambdaShAdv:     1000,
		LambdaShStab:    500,
		MinHopRankInc:   256,
		StabilityWindow: 120,
	}
}

// TestComputeSinkAdvMatchesSpecExampleS5 reproduces spec.md §8 scenario S5:
// R_self=512, H=256, R_p=0, tau=64, lambda_adv=1000 -> raw trust ~838.
func TestComputeSinkAdvMatchesSpecExampleS5(t *testing.T) {
	p := defaultParams()
	got := ComputeSinkAdv(512, 0, p)
	if got != 838 {
		t.Fatalf("ComputeSinkAdv = %d, want 838", got)
	}
}

func TestComputeSinkAdvNoAnomalyIsFullTrust(t *testing.T) {
	p := defaultParams()
	// R_p + H - R_self well above 0: no sinkhole anomaly.
	got := ComputeSinkAdv(256, 512, p)
	if got != p.Scale {
		t.Fatalf("ComputeSinkAdv = %d, want %d (no anomaly)", got, p.Scale)
	}
}

func TestComputeSinkStabWarmupReturnsFullTrust(t *testing.T) {
	p := defaultParams()
	parent := &contracts.ParentRecord{LastRank: 0, LastRankUpdate: 0}

	got := ComputeSinkStab(65535, parent, 1, p)
	if got != p.Scale {
		t.Fatalf("ComputeSinkStab during warm-up = %d, want %d", got, p.Scale)
	}
}

// TestTrustTotalNeverDropsBelowFloor covers spec.md §8 property 4 and
// scenario S6: repeated large instability never drives trust_total below
// TRUST_MIN. Ranks are uint16, so the largest forced rank jump is 65535.
func TestTrustTotalNeverDropsBelowFloor(t *testing.T) {
	p := defaultParams()
	parent := &contracts.ParentRecord{
		ID:             1,
		Rank:           0, // worst-case sinkhole advertisement
		LastRank:       0,
		LastRankUpdate: 1,
	}

	for i := 0; i < 50; i++ {
		now := int64(1000 + i*200)
		Update(parent, 65535, now, nil, p)
		if parent.TrustTotal < p.Min {
			t.Fatalf("iteration %d: TrustTotal = %d, below floor %d", i, parent.TrustTotal, p.Min)
		}
		if parent.TrustTotal > p.Scale {
			t.Fatalf("iteration %d: TrustTotal = %d, exceeds scale %d", i, parent.TrustTotal, p.Scale)
		}
	}
}

func TestUpdateInitializesSubScoresToScaleOnFirstObservation(t *testing.T) {
	p := defaultParams()
	parent := &contracts.ParentRecord{ID: 1, Rank: 256, LastRankUpdate: 0}

	Update(parent, 256, 0, nil, p)

	// Every raw score is Scale here (no anomaly, no stability history, no
	// oracle), so one EWMA step from an initial value of Scale stays at Scale;
	// an uninitialized sub-score would have been blended up from 0 instead.
	if parent.TrustGray != p.Scale {
		t.Fatalf("TrustGray = %d, want %d; EnsureTrustInitialized not applied", parent.TrustGray, p.Scale)
	}
	if parent.TrustSinkAdv != p.Scale {
		t.Fatalf("TrustSinkAdv = %d, want %d; EnsureTrustInitialized not applied", parent.TrustSinkAdv, p.Scale)
	}
	if parent.TrustSinkStab != p.Scale {
		t.Fatalf("TrustSinkStab = %d, want %d; EnsureTrustInitialized not applied", parent.TrustSinkStab, p.Scale)
	}
}

func TestClampedFloorsEvenAStoredUnderflow(t *testing.T) {
	p := defaultParams()
	parent := &contracts.ParentRecord{TrustTotal: 10}

	if got := Clamped(parent, p); got != p.Min {
		t.Fatalf("Clamped = %d, want floor %d", got, p.Min)
	}
}

func TestClampedOnNilParentReturnsScale(t *testing.T) {
	p := defaultParams()
	if got := Clamped(nil, p); got != p.Scale {
		t.Fatalf("Clamped(nil) = %d, want %d", got, p.Scale)
	}
}
