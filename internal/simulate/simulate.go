// Package simulate drives a BRPL core through a topology manifest, tick by
// tick, wiring together the queue meter, DAG state, trust engine, scoring,
// objective, CSV logging, metrics, invariant checking, reset and graceful
// shutdown into one runnable loop. Grounded on the phase/state-machine
// shape of pkg/core/orchestrator.Orchestrator, retargeted from "drive a
// chaos test through Docker/Kurtosis" to "drive a BRPL node through a
// simulated topology" — the routing-protocol driver spec.md scopes out, so
// this harness exists to exercise every other module end to end.
package simulate

import (
	"context"
	"math/rand"
	"time"

	"github.com/rs/zerolog"

	"github.com/zeetee1235/contiki-ng-brpl/internal/brplconf"
	"github.com/zeetee1235/contiki-ng-brpl/internal/contracts"
	"github.com/zeetee1235/contiki-ng-brpl/internal/csvlog"
	"github.com/zeetee1235/contiki-ng-brpl/internal/dagstate"
	"github.com/zeetee1235/contiki-ng-brpl/internal/invariants"
	"github.com/zeetee1235/contiki-ng-brpl/internal/metrics"
	"github.com/zeetee1235/contiki-ng-brpl/internal/objective"
	"github.com/zeetee1235/contiki-ng-brpl/internal/queue"
	"github.com/zeetee1235/contiki-ng-brpl/internal/report"
	"github.com/zeetee1235/contiki-ng-brpl/internal/reset"
	"github.com/zeetee1235/contiki-ng-brpl/internal/scoring"
	"github.com/zeetee1235/contiki-ng-brpl/internal/shutdown"
	"github.com/zeetee1235/contiki-ng-brpl/internal/topology"
	"github.com/zeetee1235/contiki-ng-brpl/internal/trust"
)

// State names one phase of the simulation lifecycle.
type State int

const (
	StateInit State = iota
	StateRunning
	StateReporting
	StateCompleted
	StateFailed
	StateStopped
)

func (s State) String() string {
	switch s {
	case StateInit:
		return "INIT"
	case StateRunning:
		return "RUNNING"
	case StateReporting:
		return "REPORTING"
	case StateCompleted:
		return "COMPLETED"
	case StateFailed:
		return "FAILED"
	case StateStopped:
		return "STOPPED"
	default:
		return "UNKNOWN"
	}
}

// dagRuntime is one DAG's live parent table plus its synthetic link and
// queue-workload models.
type dagRuntime struct {
	id      contracts.DAGID
	parents []*contracts.ParentRecord
	models  map[contracts.ParentID]topology.LinkModel

	queueArrival      topology.LinkModel
	queueService      topology.LinkModel
	queueDropPerMille uint16
}

func (d *dagRuntime) Neighbors() []contracts.ParentID {
	ids := make([]contracts.ParentID, 0, len(d.parents))
	for _, p := range d.parents {
		ids = append(ids, p.ID)
	}
	return ids
}

// parentTable implements contracts.ParentEnumerator over every DAG's
// runtime state.
type parentTable struct {
	dags map[contracts.DAGID]*dagRuntime
}

func (t *parentTable) ParentsOf(dag contracts.DAGID) []*contracts.ParentRecord {
	if d, ok := t.dags[dag]; ok {
		return d.parents
	}
	return nil
}

// Simulator owns one Objective and drives it across every DAG in a
// Topology for the configured number of ticks.
type Simulator struct {
	topo   *topology.Topology
	params brplconf.Params

	clock *simClock
	rng   *rand.Rand

	queue *queue.Meter
	obj   *objective.Objective
	table *parentTable
	dags  map[contracts.DAGID]*dagRuntime

	csv        *csvlog.Logger
	metricsReg *metrics.Registry
	sampler    *metrics.Sampler
	checker    *invariants.Checker
	resetCoord *reset.Coordinator
	stopCtrl   *shutdown.Controller

	log zerolog.Logger

	state State
}

// Config bundles the collaborators a Simulator needs beyond the topology
// and brpl configuration themselves.
type Config struct {
	Ref         contracts.ReferenceObjective
	TrustOracle contracts.TrustOracle
	CSVWriter   *csvlog.Logger
	MetricsReg  *metrics.Registry
	Log         zerolog.Logger
	Seed        int64
}

// New builds a Simulator ready to Run topo once.
func New(topo *topology.Topology, params brplconf.Params, cfg Config) *Simulator {
	table := &parentTable{dags: make(map[contracts.DAGID]*dagRuntime)}
	dags := make(map[contracts.DAGID]*dagRuntime, len(topo.Spec.DAGs))

	var queueCapacity uint16
	for i, d := range topo.Spec.DAGs {
		if i == 0 {
			queueCapacity = d.QueueCapacity
		}
		rt := &dagRuntime{
			id:                contracts.DAGID(d.ID),
			models:            make(map[contracts.ParentID]topology.LinkModel),
			queueArrival:      d.QueueArrival,
			queueService:      d.QueueService,
			queueDropPerMille: d.QueueDropPerMille,
		}
		for _, p := range d.Parents {
			id := contracts.ParentID(p.ID)
			rt.parents = append(rt.parents, &contracts.ParentRecord{
				ID:             id,
				DAG:            rt.id,
				Rank:           p.InitialRank,
				LinkMetric:     p.LinkMetric.Base,
				BRPLQueue:      p.BRPLQueue,
				BRPLQueueMax:   p.BRPLQueueMax,
				BRPLQueueValid: p.BRPLQueueValid,
			})
			rt.models[id] = p.LinkMetric
		}
		dags[rt.id] = rt
		table.dags[rt.id] = rt
	}

	q := queue.NewMeter()
	q.Init(queueCapacity, func() {
		cfg.Log.Warn().Msg("queue capacity is 0, running uncapped")
	})

	obj := objective.New(params.ObjectiveParams())
	obj.Ref = cfg.Ref
	obj.Queue = q
	obj.Parents = table
	obj.TrustOracle = cfg.TrustOracle

	clock := newSimClock()
	obj.Clock = clock

	for _, d := range topo.Spec.DAGs {
		obj.StateFor(contracts.DAGID(d.ID)).Rank = d.InitialRank
	}

	seed := cfg.Seed
	if seed == 0 {
		seed = 1
	}

	s := &Simulator{
		topo:       topo,
		params:     params,
		clock:      clock,
		rng:        rand.New(rand.NewSource(seed)),
		queue:      q,
		obj:        obj,
		table:      table,
		dags:       dags,
		csv:        cfg.CSVWriter,
		metricsReg: cfg.MetricsReg,
		checker:    invariants.New(),
		resetCoord: reset.New(obj, cfg.Log),
		log:        cfg.Log,
		state:      StateInit,
	}
	if cfg.MetricsReg != nil {
		s.sampler = metrics.NewSampler(cfg.MetricsReg)
	}
	return s
}

// AttachShutdown wires ctrl so Stop/signals end the run early.
func (s *Simulator) AttachShutdown(ctrl *shutdown.Controller) {
	s.stopCtrl = ctrl
}

// Run executes every configured tick in order, returning a completed Run
// report. Stops early (Status stopped) if the attached shutdown.Controller
// triggers.
func (s *Simulator) Run(ctx context.Context) *report.Run {
	s.state = StateRunning
	start := time.Now()

	rpt := &report.Run{
		TopologyName: s.topo.Metadata.Name,
		StartTime:    start,
		Ticks:        s.topo.Spec.Ticks,
	}

	tickInterval := time.Duration(s.topo.Spec.TickIntervalMillis) * time.Millisecond

	for tick := 0; tick < s.topo.Spec.Ticks; tick++ {
		if s.stopCtrl != nil && s.stopCtrl.IsStopped() {
			rpt.Status = report.StatusStopped
			s.state = StateStopped
			break
		}
		select {
		case <-ctx.Done():
			rpt.Status = report.StatusStopped
			s.state = StateStopped
		default:
		}
		if s.state == StateStopped {
			break
		}

		s.clock.Advance(tickInterval)
		s.tick()
	}

	if rpt.Status == "" {
		rpt.Status = report.StatusCompleted
		rpt.Success = true
		s.state = StateCompleted
	}

	s.finalize(rpt)
	return rpt
}

// tick advances every DAG by one step: jitter link metrics, refresh trust,
// run the comparator across all candidate parents, log and record metrics.
func (s *Simulator) tick() {
	for id, dag := range s.dags {
		s.obj.Neighbors = dag
		s.driveQueue(dag)

		for _, p := range dag.parents {
			p.LinkMetric = sampleLink(s.rng, dag.models[p.ID])
			s.obj.UpdateParentTrust(p)
		}

		best := reduceBest(s.obj, dag.parents)
		d := s.obj.StateFor(id)
		rho := ratio(d.QAvg, s.queue.Capacity(), s.params.Scale)

		if s.csv != nil {
			s.csv.State(id, s.queue.Length(), s.queue.Capacity(), d.QAvg, rho, d.Theta, d.PMax)
		}
		if len(dag.parents) >= 2 {
			ev := s.obj.Evaluate(dag.parents[0], dag.parents[1])
			if s.csv != nil {
				// BRPL_WEIGHT carries the base weight W; BRPL_TRUST carries W'.
				baseWeight1 := scoring.Weight(d, dag.parents[0], d.Rank, s.queue, s.obj.Ref, s.params.ScoringParams())
				s.csv.Weight(id, ev.Parent1, ev.Q, ev.QY, ev.QMax, ev.PTilde, ev.PNorm, ev.DeltaQNorm, ev.Theta, baseWeight1)
				s.csv.Trust(id, ev.Parent1, ev.TrustTotal1, s.params.TrustMin, s.params.TrustPenaltyGamma, ev.Weight1)
				s.csv.Best(id, ev.Parent1, ev.Weight1, ev.Parent2, ev.Weight2, ev.Best)
			}
		}

		s.checkInvariants(id, d, best)

		if s.sampler != nil {
			s.sampler.Sample(s.queue.Length(), s.queue.Capacity(), s.queue.EnqueuedTotal(), s.queue.DroppedTotal(),
				[]metrics.DAGSnapshot{dagSnapshot(id, d, dag.parents, s.obj)})
		}
	}
}

// driveQueue generates this tick's synthetic on_enqueue/on_dequeue/on_drop
// events for dag's share of the process-wide queue meter (spec.md §4.1,
// §5's forwarding-layer shim), per the {base, jitter} arrival/service
// models and drop chance the topology manifest declares. A zero-valued
// model (the default) produces no traffic, matching spec.md's "capacity ==
// 0 means uncapped, but callers choose whether to feed it at all" stance.
func (s *Simulator) driveQueue(dag *dagRuntime) {
	arrivals := int(sampleLink(s.rng, dag.queueArrival))
	for i := 0; i < arrivals; i++ {
		if dag.queueDropPerMille > 0 && s.rng.Intn(1000) < int(dag.queueDropPerMille) {
			s.queue.OnDrop()
		} else {
			s.queue.OnEnqueue()
		}
	}

	services := int(sampleLink(s.rng, dag.queueService))
	for i := 0; i < services; i++ {
		s.queue.OnDequeue()
	}
}

// checkInvariants evaluates every topology-declared invariant targeting dag
// (or every DAG, if Invariant.DAG is nil) against this tick's state.
func (s *Simulator) checkInvariants(id contracts.DAGID, d *dagstate.State, best *contracts.ParentRecord) {
	var trustTotal uint16 = s.params.Scale
	if best != nil {
		trustTotal = trust.Clamped(best, s.params.TrustParams())
	}
	snap := invariants.Snapshot{
		Scale:      s.params.Scale,
		QAvg:       d.QAvg,
		Beta:       d.Beta,
		Theta:      d.Theta,
		PMax:       d.PMax,
		TrustMin:   s.params.TrustMin,
		TrustTotal: trustTotal,
	}
	for _, inv := range s.topo.Spec.Invariants {
		if inv.DAG != nil && contracts.DAGID(*inv.DAG) != id {
			continue
		}
		s.checker.Evaluate(inv, snap)
	}
}

func dagSnapshot(id contracts.DAGID, d *dagstate.State, parents []*contracts.ParentRecord, obj *objective.Objective) metrics.DAGSnapshot {
	snap := metrics.DAGSnapshot{DAG: id, QAvg: d.QAvg, Beta: d.Beta, Theta: d.Theta, PMax: d.PMax}
	for _, p := range parents {
		snap.Parents = append(snap.Parents, metrics.ParentSnapshot{
			ID:       p.ID,
			Trust:    p.TrustTotal,
			Gray:     p.TrustGray,
			SinkAdv:  p.TrustSinkAdv,
			SinkStab: p.TrustSinkStab,
			Weight:   obj.WeightOf(p),
		})
	}
	return snap
}

func ratio(part, whole, scale uint16) uint16 {
	if whole == 0 {
		return 0
	}
	v := uint32(part) * uint32(scale) / uint32(whole)
	if v > uint32(scale) {
		v = uint32(scale)
	}
	return uint16(v)
}

// reduceBest folds BestParent across every candidate, left to right.
func reduceBest(obj *objective.Objective, parents []*contracts.ParentRecord) *contracts.ParentRecord {
	var best *contracts.ParentRecord
	for _, p := range parents {
		best = obj.BestParent(best, p)
	}
	return best
}

func sampleLink(rng *rand.Rand, m topology.LinkModel) uint16 {
	if m.Jitter == 0 {
		return m.Base
	}
	delta := rng.Intn(int(2*m.Jitter) + 1) - int(m.Jitter)
	v := int(m.Base) + delta
	if v < 0 {
		v = 0
	}
	return uint16(v)
}

func (s *Simulator) finalize(rpt *report.Run) {
	rpt.EndTime = time.Now()
	rpt.Duration = rpt.EndTime.Sub(rpt.StartTime).String()

	for id, dag := range s.dags {
		ds := s.obj.StateFor(id)
		best := reduceBest(s.obj, dag.parents)
		var bestID uint16
		if best != nil {
			bestID = uint16(best.ID)
		}
		rpt.DAGs = append(rpt.DAGs, report.DAGSummary{
			DAG:        uint16(id),
			QAvg:       ds.QAvg,
			Beta:       ds.Beta,
			Theta:      ds.Theta,
			PMax:       ds.PMax,
			BestParent: bestID,
		})
	}

	for _, r := range s.checker.Results() {
		rpt.Invariants = append(rpt.Invariants, report.FromCheckerResult(r))
	}
	if !s.checker.CriticalPassed() {
		rpt.Success = false
		rpt.Status = report.StatusFailed
		rpt.Message = "one or more critical invariants failed"
	}

	var dagIDs []contracts.DAGID
	for id := range s.dags {
		dagIDs = append(dagIDs, id)
	}
	s.resetCoord.ResetAll(dagIDs)
	rpt.ResetSummary = s.resetCoord.GetSummary()
	rpt.ResetLog = s.resetCoord.AuditLog()
}
