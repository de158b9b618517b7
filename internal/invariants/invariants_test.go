package invariants

import (
	"testing"

	"github.com/zeetee1235/contiki-ng-brpl/internal/topology"
)

func TestThetaRangeCatchesOverflow(t *testing.T) {
	c := New()
	inv := topology.Invariant{Name: "theta", Type: "theta-range"}

	r := c.Evaluate(inv, Snapshot{Scale: 1000, Theta: 1500})
	if r.Passed {
		t.Fatal("theta-range should fail when theta exceeds scale")
	}

	r = c.Evaluate(inv, Snapshot{Scale: 1000, Theta: 900})
	if !r.Passed {
		t.Fatal("theta-range should pass when theta is within scale")
	}
}

func TestThetaGeBetaCatchesViolation(t *testing.T) {
	c := New()
	inv := topology.Invariant{Name: "tgb", Type: "theta-ge-beta"}

	r := c.Evaluate(inv, Snapshot{Scale: 1000, Theta: 400, Beta: 600})
	if r.Passed {
		t.Fatal("theta-ge-beta should fail when theta < beta")
	}
}

func TestTrustFloorCatchesViolation(t *testing.T) {
	c := New()
	inv := topology.Invariant{Name: "tf", Type: "trust-floor"}

	r := c.Evaluate(inv, Snapshot{Scale: 1000, TrustMin: 300, TrustTotal: 200})
	if r.Passed {
		t.Fatal("trust-floor should fail when trust_total < trust_min")
	}
}

func TestJaccardRoundtripMatchesExpectedBeta(t *testing.T) {
	c := New()
	inv := topology.Invariant{Name: "jr", Type: "jaccard-roundtrip"}

	snap := Snapshot{
		Scale: 1000,
		Beta:  500,
		JaccardPrevCount:       3,
		JaccardCurrCount:       3,
		JaccardIntersection:    2,
	}
	if r := c.Evaluate(inv, snap); !r.Passed {
		t.Fatalf("jaccard-roundtrip should pass: %s", r.Message)
	}

	snap.Beta = 999
	if r := c.Evaluate(inv, snap); r.Passed {
		t.Fatal("jaccard-roundtrip should fail on mismatched beta")
	}
}

func TestCriticalPassedIgnoresNonCriticalFailures(t *testing.T) {
	c := New()
	nonCritical := topology.Invariant{Name: "soft", Type: "theta-range", Critical: false}
	critical := topology.Invariant{Name: "hard", Type: "pmax-min", Critical: true}

	c.Evaluate(nonCritical, Snapshot{Scale: 1000, Theta: 5000})
	c.Evaluate(critical, Snapshot{PMax: 1})

	if !c.CriticalPassed() {
		t.Fatal("CriticalPassed() should ignore the failing non-critical invariant")
	}
	if c.AllPassed() {
		t.Fatal("AllPassed() should report the non-critical failure")
	}
}
