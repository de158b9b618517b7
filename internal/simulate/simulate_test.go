package simulate

import (
	"context"
	"testing"

	"github.com/rs/zerolog"

	"github.com/zeetee1235/contiki-ng-brpl/internal/brplconf"
	"github.com/zeetee1235/contiki-ng-brpl/internal/contracts"
	"github.com/zeetee1235/contiki-ng-brpl/internal/objective"
	"github.com/zeetee1235/contiki-ng-brpl/internal/report"
	"github.com/zeetee1235/contiki-ng-brpl/internal/shutdown"
	"github.com/zeetee1235/contiki-ng-brpl/internal/topology"
)

func twoParentTopology() *topology.Topology {
	return &topology.Topology{
		APIVersion: "brpl/v1",
		Kind:       "Topology",
		Metadata:   topology.Metadata{Name: "unit-test"},
		Spec: topology.Spec{
			TickIntervalMillis: 1000,
			Ticks:              5,
			DAGs: []topology.DAG{
				{
					ID:            1,
					InitialRank:   256,
					QueueCapacity: 10,
					Parents: []topology.Parent{
						{ID: 1, InitialRank: 256, LinkMetric: topology.LinkModel{Base: 10}},
						{ID: 2, InitialRank: 512, LinkMetric: topology.LinkModel{Base: 20, Jitter: 2}},
					},
				},
			},
			Invariants: []topology.Invariant{
				{Name: "theta-range", Type: "theta-range", Critical: true},
				{Name: "pmax-min", Type: "pmax-min", Critical: true},
				{Name: "trust-floor", Type: "trust-floor", Critical: true},
			},
		},
	}
}

func TestRunProducesACompletedReportWithPassingInvariants(t *testing.T) {
	topo := twoParentTopology()
	params := brplconf.DefaultParams()

	sim := New(topo, params, Config{
		Ref:         &objective.MRHOF{MinHopRankInc: uint16(params.MinHopRankInc)},
		TrustOracle: contracts.DefaultTrustOracle{Scale: params.Scale},
		Log:         zerolog.Nop(),
		Seed:        7,
	})

	run := sim.Run(context.Background())

	if run.Status != report.StatusCompleted {
		t.Fatalf("Status = %q, want %q (message: %s)", run.Status, report.StatusCompleted, run.Message)
	}
	if !run.Success {
		t.Fatalf("Success = false, want true (message: %s)", run.Message)
	}
	if len(run.DAGs) != 1 {
		t.Fatalf("len(DAGs) = %d, want 1", len(run.DAGs))
	}
	if run.DAGs[0].BestParent == 0 {
		t.Fatal("expected a best parent to have been chosen")
	}
	for _, inv := range run.Invariants {
		if inv.Critical && !inv.Passed {
			t.Fatalf("critical invariant %q failed: %s", inv.Name, inv.Message)
		}
	}
}

func TestRunStopsEarlyWhenShutdownTriggeredBeforeStart(t *testing.T) {
	topo := twoParentTopology()
	topo.Spec.Ticks = 1000
	params := brplconf.DefaultParams()

	sim := New(topo, params, Config{
		Ref:         &objective.MRHOF{MinHopRankInc: uint16(params.MinHopRankInc)},
		TrustOracle: contracts.DefaultTrustOracle{Scale: params.Scale},
		Log:         zerolog.Nop(),
		Seed:        1,
	})

	ctrl := shutdown.New(shutdown.Config{}, zerolog.Nop())
	ctrl.Stop("test: stop before first tick")
	sim.AttachShutdown(ctrl)

	run := sim.Run(context.Background())
	if run.Status != report.StatusStopped {
		t.Fatalf("Status = %q, want %q", run.Status, report.StatusStopped)
	}
}
