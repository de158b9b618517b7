// Package validate checks a parsed topology for structural and
// configuration errors before a simulation run starts. Grounded on
// pkg/scenario/validator/validator.go's accumulated errors/warnings shape.
package validate

import (
	"fmt"

	"github.com/zeetee1235/contiki-ng-brpl/internal/topology"
)

var knownInvariantTypes = map[string]bool{
	"theta-range":      true,
	"theta-ge-beta":    true,
	"pmax-min":         true,
	"trust-floor":      true,
	"jaccard-roundtrip": true,
}

// Validator accumulates structural errors and non-fatal warnings across one
// Validate call.
type Validator struct {
	Warnings []string
	Errors   []string
}

// New returns an empty Validator.
func New() *Validator {
	return &Validator{
		Warnings: make([]string, 0),
		Errors:   make([]string, 0),
	}
}

// Validate checks t, resetting any state from a previous call.
func (v *Validator) Validate(t *topology.Topology) error {
	v.Warnings = v.Warnings[:0]
	v.Errors = v.Errors[:0]

	v.validateEnvelope(t)
	v.validateDAGs(t)
	v.validateClock(t)
	v.validateInvariants(t)

	if len(v.Errors) > 0 {
		return fmt.Errorf("validation failed with %d errors", len(v.Errors))
	}
	return nil
}

// HasWarnings reports whether the last Validate call produced warnings.
func (v *Validator) HasWarnings() bool { return len(v.Warnings) > 0 }

// HasErrors reports whether the last Validate call produced errors.
func (v *Validator) HasErrors() bool { return len(v.Errors) > 0 }

func (v *Validator) validateEnvelope(t *topology.Topology) {
	if t.APIVersion == "" {
		v.Errors = append(v.Errors, "apiVersion is required")
	}
	if t.Kind != "Topology" {
		v.Errors = append(v.Errors, fmt.Sprintf("kind must be 'Topology', got %q", t.Kind))
	}
	if t.Metadata.Name == "" {
		v.Errors = append(v.Errors, "metadata.name is required")
	}
}

func (v *Validator) validateDAGs(t *topology.Topology) {
	if len(t.Spec.DAGs) == 0 {
		v.Errors = append(v.Errors, "spec.dags must have at least one entry")
		return
	}

	seenDAG := make(map[uint16]bool)
	for i, dag := range t.Spec.DAGs {
		if seenDAG[dag.ID] {
			v.Errors = append(v.Errors, fmt.Sprintf("spec.dags[%d].id %d is duplicated", i, dag.ID))
		}
		seenDAG[dag.ID] = true

		if dag.QueueCapacity == 0 {
			v.Warnings = append(v.Warnings, fmt.Sprintf("spec.dags[%d] has queueCapacity 0 (uncapped queue, rho stays 0)", i))
		}
		if len(dag.Parents) == 0 {
			v.Warnings = append(v.Warnings, fmt.Sprintf("spec.dags[%d] has no parents", i))
		}
		if dag.QueueDropPerMille > 1000 {
			v.Errors = append(v.Errors, fmt.Sprintf("spec.dags[%d].queueDropPerMille %d exceeds 1000", i, dag.QueueDropPerMille))
		}
		if dag.QueueCapacity > 0 && dag.QueueArrival.Base == 0 && dag.QueueService.Base == 0 {
			v.Warnings = append(v.Warnings, fmt.Sprintf("spec.dags[%d] has a capacity but no queueArrival/queueService workload (queue stays idle, rho stays 0)", i))
		}

		seenParent := make(map[uint16]bool)
		for j, p := range dag.Parents {
			if seenParent[p.ID] {
				v.Errors = append(v.Errors, fmt.Sprintf("spec.dags[%d].parents[%d].id %d is duplicated", i, j, p.ID))
			}
			seenParent[p.ID] = true

			if p.BRPLQueueValid && p.BRPLQueueMax == 0 {
				v.Errors = append(v.Errors, fmt.Sprintf("spec.dags[%d].parents[%d] sets brplQueueValid but brplQueueMax is 0", i, j))
			}
		}
	}
}

func (v *Validator) validateClock(t *topology.Topology) {
	if t.Spec.TickIntervalMillis <= 0 {
		v.Errors = append(v.Errors, "spec.tickIntervalMillis must be > 0")
	}
	if t.Spec.Ticks <= 0 {
		v.Errors = append(v.Errors, "spec.ticks must be > 0")
	}
}

func (v *Validator) validateInvariants(t *topology.Topology) {
	for i, inv := range t.Spec.Invariants {
		if inv.Name == "" {
			v.Errors = append(v.Errors, fmt.Sprintf("spec.invariants[%d].name is required", i))
		}
		if !knownInvariantTypes[inv.Type] {
			v.Errors = append(v.Errors, fmt.Sprintf("spec.invariants[%d].type %q is not a known invariant", i, inv.Type))
		}
	}
}
