// Package invariants restates spec.md §8's testable properties as
// executable checks over a recorded DAG/trust snapshot, in the same
// Evaluate/EvaluateAll/CriterionResult shape as the teacher's
// pkg/monitoring/detector.FailureDetector, but against in-process state
// rather than a Prometheus query string: there is no external time-series
// store in a simulation run, the state already lives in memory.
package invariants

import (
	"fmt"
	"time"

	"github.com/zeetee1235/contiki-ng-brpl/internal/topology"
)

// Snapshot is the subset of one tick's state a check needs. It carries no
// DAG identifier; the caller picks which DAG's state to snapshot (see
// topology.Invariant.DAG).
type Snapshot struct {
	Scale uint16

	QAvg, Beta, Theta uint16
	PMax              uint32

	TrustMin, TrustTotal uint16

	// JaccardPrevCount/JaccardCurrCount/JaccardIntersection let
	// jaccard-roundtrip re-derive beta from raw set sizes, for scenarios
	// that want to assert on the sampler's inputs directly rather than its
	// already-computed Beta.
	JaccardPrevCount, JaccardCurrCount, JaccardIntersection int
}

// CriterionResult is one invariant's accumulated evaluation history.
type CriterionResult struct {
	Invariant   topology.Invariant
	Passed      bool
	LastChecked time.Time
	Evaluations int
	Failures    int
	Message     string
}

// Checker evaluates a topology's declared invariants against snapshots
// taken during a run.
type Checker struct {
	results map[string]*CriterionResult
}

// New returns an empty Checker.
func New() *Checker {
	return &Checker{results: make(map[string]*CriterionResult)}
}

// Evaluate checks inv against snap, updating and returning its running
// result.
func (c *Checker) Evaluate(inv topology.Invariant, snap Snapshot) *CriterionResult {
	result, ok := c.results[inv.Name]
	if !ok {
		result = &CriterionResult{Invariant: inv}
		c.results[inv.Name] = result
	}
	result.LastChecked = time.Now()
	result.Evaluations++

	passed, msg := checkOne(inv, snap)
	result.Passed = passed
	result.Message = msg
	if !passed {
		result.Failures++
	}
	return result
}

// EvaluateAll checks every invariant in invs against the same snapshot.
func (c *Checker) EvaluateAll(invs []topology.Invariant, snap Snapshot) map[string]*CriterionResult {
	out := make(map[string]*CriterionResult, len(invs))
	for _, inv := range invs {
		out[inv.Name] = c.Evaluate(inv, snap)
	}
	return out
}

func checkOne(inv topology.Invariant, s Snapshot) (bool, string) {
	switch inv.Type {
	case "theta-range":
		if s.Theta > s.Scale {
			return false, fmt.Sprintf("theta %d exceeds scale %d", s.Theta, s.Scale)
		}
		return true, fmt.Sprintf("theta %d within [0, %d]", s.Theta, s.Scale)

	case "theta-ge-beta":
		if s.Theta < s.Beta {
			return false, fmt.Sprintf("theta %d is less than beta %d", s.Theta, s.Beta)
		}
		if s.Beta == s.Scale && s.Theta != s.Scale {
			return false, fmt.Sprintf("theta %d should equal scale %d when beta saturates", s.Theta, s.Scale)
		}
		return true, fmt.Sprintf("theta %d >= beta %d", s.Theta, s.Beta)

	case "pmax-min":
		if s.PMax < 1 {
			return false, fmt.Sprintf("p_max %d is below the floor of 1", s.PMax)
		}
		return true, fmt.Sprintf("p_max %d >= 1", s.PMax)

	case "trust-floor":
		if s.TrustTotal < s.TrustMin {
			return false, fmt.Sprintf("trust_total %d is below trust_min %d", s.TrustTotal, s.TrustMin)
		}
		if s.TrustTotal > s.Scale {
			return false, fmt.Sprintf("trust_total %d exceeds scale %d", s.TrustTotal, s.Scale)
		}
		return true, fmt.Sprintf("trust_total %d within [%d, %d]", s.TrustTotal, s.TrustMin, s.Scale)

	case "jaccard-roundtrip":
		union := s.JaccardPrevCount + s.JaccardCurrCount - s.JaccardIntersection
		if union == 0 {
			if s.Beta != 0 {
				return false, "empty snapshots should produce beta 0"
			}
			return true, "empty snapshots produced beta 0"
		}
		diff := s.JaccardPrevCount + s.JaccardCurrCount - 2*s.JaccardIntersection
		expected := uint16((diff * int(s.Scale)) / union)
		if s.Beta != expected {
			return false, fmt.Sprintf("beta %d does not match expected %d from prev=%d curr=%d intersection=%d", s.Beta, expected, s.JaccardPrevCount, s.JaccardCurrCount, s.JaccardIntersection)
		}
		return true, fmt.Sprintf("beta %d matches Jaccard distance", s.Beta)

	default:
		return false, fmt.Sprintf("unknown invariant type %q", inv.Type)
	}
}

// AllPassed reports whether every evaluated invariant currently passes.
func (c *Checker) AllPassed() bool {
	for _, r := range c.results {
		if !r.Passed {
			return false
		}
	}
	return true
}

// CriticalPassed reports whether every invariant marked Critical currently
// passes.
func (c *Checker) CriticalPassed() bool {
	for _, r := range c.results {
		if r.Invariant.Critical && !r.Passed {
			return false
		}
	}
	return true
}

// Results returns every accumulated result.
func (c *Checker) Results() map[string]*CriterionResult {
	return c.results
}
