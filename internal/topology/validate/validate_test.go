package validate

import (
	"testing"

	"github.com/zeetee1235/contiki-ng-brpl/internal/topology"
)

func validTopology() *topology.Topology {
	return &topology.Topology{
		APIVersion: "brpl/v1",
		Kind:       "Topology",
		Metadata:   topology.Metadata{Name: "demo"},
		Spec: topology.Spec{
			TickIntervalMillis: 1000,
			Ticks:              10,
			DAGs: []topology.DAG{
				{
					ID:            1,
					QueueCapacity: 16,
					Parents: []topology.Parent{
						{ID: 1, LinkMetric: topology.LinkModel{Base: 10}},
					},
				},
			},
		},
	}
}

func TestValidateAcceptsWellFormedTopology(t *testing.T) {
	v := New()
	if err := v.Validate(validTopology()); err != nil {
		t.Fatalf("Validate() failed on a well-formed topology: %v, errors=%v", err, v.Errors)
	}
}

func TestValidateRejectsWrongKind(t *testing.T) {
	topo := validTopology()
	topo.Kind = "Scenario"

	v := New()
	if err := v.Validate(topo); err == nil {
		t.Fatal("Validate() accepted kind != Topology")
	}
}

func TestValidateRejectsDuplicateDAGIDs(t *testing.T) {
	topo := validTopology()
	topo.Spec.DAGs = append(topo.Spec.DAGs, topo.Spec.DAGs[0])

	v := New()
	if err := v.Validate(topo); err == nil {
		t.Fatal("Validate() accepted duplicate DAG ids")
	}
}

func TestValidateRejectsDuplicateParentIDs(t *testing.T) {
	topo := validTopology()
	topo.Spec.DAGs[0].Parents = append(topo.Spec.DAGs[0].Parents, topo.Spec.DAGs[0].Parents[0])

	v := New()
	if err := v.Validate(topo); err == nil {
		t.Fatal("Validate() accepted duplicate parent ids within a DAG")
	}
}

func TestValidateWarnsOnUncappedQueue(t *testing.T) {
	topo := validTopology()
	topo.Spec.DAGs[0].QueueCapacity = 0

	v := New()
	if err := v.Validate(topo); err != nil {
		t.Fatalf("Validate() unexpectedly failed: %v", err)
	}
	if !v.HasWarnings() {
		t.Fatal("expected a warning for queueCapacity 0")
	}
}

func TestValidateRejectsInvalidBRPLQueueAdvertisement(t *testing.T) {
	topo := validTopology()
	topo.Spec.DAGs[0].Parents[0].BRPLQueueValid = true
	topo.Spec.DAGs[0].Parents[0].BRPLQueueMax = 0

	v := New()
	if err := v.Validate(topo); err == nil {
		t.Fatal("Validate() accepted brplQueueValid with brplQueueMax 0")
	}
}

func TestValidateRejectsUnknownInvariantType(t *testing.T) {
	topo := validTopology()
	topo.Spec.Invariants = []topology.Invariant{{Name: "x", Type: "not-a-real-check"}}

	v := New()
	if err := v.Validate(topo); err == nil {
		t.Fatal("Validate() accepted an unknown invariant type")
	}
}
