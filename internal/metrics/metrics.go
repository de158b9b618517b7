// Package metrics exposes BRPL's internal counters and DAG/trust aggregates
// as Prometheus gauges. Not part of spec.md itself (which treats
// observability as optional free-text CSV only, see internal/csvlog), but a
// natural extension of the original source's brpl-queue.c accessors and
// DAG/trust state for a long-running node, using the same
// prometheus/client_golang instrumentation API the rest of the retrieved
// corpus reaches for.
package metrics

import (
	"net/http"
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/zeetee1235/contiki-ng-brpl/internal/contracts"
)

// Registry owns every BRPL gauge in its own prometheus.Registry, rather than
// registering onto the global default, so a brpld process can run more than
// one independent BRPL core (e.g. a multi-node simulation) without metric
// collisions.
type Registry struct {
	reg *prometheus.Registry

	queueLength        prometheus.Gauge
	queueCapacity      prometheus.Gauge
	queueEnqueuedTotal prometheus.Gauge
	queueDroppedTotal  prometheus.Gauge

	dagQAvg  *prometheus.GaugeVec
	dagBeta  *prometheus.GaugeVec
	dagTheta *prometheus.GaugeVec
	dagPMax  *prometheus.GaugeVec

	parentTrustTotal    *prometheus.GaugeVec
	parentTrustGray     *prometheus.GaugeVec
	parentTrustSinkAdv  *prometheus.GaugeVec
	parentTrustSinkStab *prometheus.GaugeVec

	bestParentWeight *prometheus.GaugeVec
}

// New constructs a Registry and registers every gauge against it.
func New() *Registry {
	reg := prometheus.NewRegistry()

	r := &Registry{
		reg: reg,

		queueLength: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "brpl_queue_length",
			Help: "Current forwarding queue occupancy.",
		}),
		queueCapacity: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "brpl_queue_capacity",
			Help: "Configured forwarding queue capacity, 0 means uncapped.",
		}),
		queueEnqueuedTotal: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "brpl_queue_enqueued_total",
			Help: "Cumulative count of enqueue events, including those made while the queue was full.",
		}),
		queueDroppedTotal: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "brpl_queue_dropped_total",
			Help: "Cumulative count of dropped packets.",
		}),

		dagQAvg: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "brpl_dag_q_avg",
			Help: "Smoothed queue occupancy for a DAG.",
		}, []string{"dag"}),
		dagBeta: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "brpl_dag_beta",
			Help: "Neighbor churn index for a DAG.",
		}, []string{"dag"}),
		dagTheta: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "brpl_dag_theta",
			Help: "Blended weighting coefficient for a DAG.",
		}, []string{"dag"}),
		dagPMax: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "brpl_dag_p_max",
			Help: "Maximum candidate path cost observed for a DAG.",
		}, []string{"dag"}),

		parentTrustTotal: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "brpl_parent_trust_total",
			Help: "Combined trust score for a candidate parent.",
		}, []string{"dag", "parent"}),
		parentTrustGray: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "brpl_parent_trust_gray",
			Help: "Gray-hole (data-plane) trust sub-score for a candidate parent.",
		}, []string{"dag", "parent"}),
		parentTrustSinkAdv: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "brpl_parent_trust_sink_adv",
			Help: "Sinkhole-advertisement trust sub-score for a candidate parent.",
		}, []string{"dag", "parent"}),
		parentTrustSinkStab: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "brpl_parent_trust_sink_stab",
			Help: "Sinkhole-stability trust sub-score for a candidate parent.",
		}, []string{"dag", "parent"}),

		bestParentWeight: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "brpl_best_parent_weight",
			Help: "Most recently computed trust-adjusted weight for a candidate parent.",
		}, []string{"dag", "parent"}),
	}

	reg.MustRegister(
		r.queueLength, r.queueCapacity, r.queueEnqueuedTotal, r.queueDroppedTotal,
		r.dagQAvg, r.dagBeta, r.dagTheta, r.dagPMax,
		r.parentTrustTotal, r.parentTrustGray, r.parentTrustSinkAdv, r.parentTrustSinkStab,
		r.bestParentWeight,
	)
	return r
}

// Handler returns the http.Handler to mount at a /metrics endpoint.
func (r *Registry) Handler() http.Handler {
	return promhttp.HandlerFor(r.reg, promhttp.HandlerOpts{})
}

// ObserveQueue updates the four queue-meter gauges (C1).
func (r *Registry) ObserveQueue(length, capacity uint16, enqueuedTotal, droppedTotal uint32) {
	r.queueLength.Set(float64(length))
	r.queueCapacity.Set(float64(capacity))
	r.queueEnqueuedTotal.Set(float64(enqueuedTotal))
	r.queueDroppedTotal.Set(float64(droppedTotal))
}

// ObserveDAGState updates the four DAG-aggregate gauges (C3) for dag.
func (r *Registry) ObserveDAGState(dag contracts.DAGID, qAvg, beta, theta uint16, pMax uint32) {
	label := dagLabel(dag)
	r.dagQAvg.WithLabelValues(label).Set(float64(qAvg))
	r.dagBeta.WithLabelValues(label).Set(float64(beta))
	r.dagTheta.WithLabelValues(label).Set(float64(theta))
	r.dagPMax.WithLabelValues(label).Set(float64(pMax))
}

// ObserveParentTrust updates the four trust-sub-score gauges (C4) for one
// candidate parent on dag.
func (r *Registry) ObserveParentTrust(dag contracts.DAGID, parent contracts.ParentID, total, gray, sinkAdv, sinkStab uint16) {
	dl, pl := dagLabel(dag), parentLabel(parent)
	r.parentTrustTotal.WithLabelValues(dl, pl).Set(float64(total))
	r.parentTrustGray.WithLabelValues(dl, pl).Set(float64(gray))
	r.parentTrustSinkAdv.WithLabelValues(dl, pl).Set(float64(sinkAdv))
	r.parentTrustSinkStab.WithLabelValues(dl, pl).Set(float64(sinkStab))
}

// ObserveWeight records the last weight computed for a candidate parent
// (C5/C6).
func (r *Registry) ObserveWeight(dag contracts.DAGID, parent contracts.ParentID, weight int32) {
	r.bestParentWeight.WithLabelValues(dagLabel(dag), parentLabel(parent)).Set(float64(weight))
}

func dagLabel(dag contracts.DAGID) string     { return strconv.FormatUint(uint64(dag), 10) }
func parentLabel(p contracts.ParentID) string { return strconv.FormatUint(uint64(p), 10) }

// DAGSnapshot is one tick's worth of gauge-worthy state for a single DAG,
// the subset a simulation driver already has on hand after a BestParent or
// Evaluate call.
type DAGSnapshot struct {
	DAG             contracts.DAGID
	QAvg, Beta, Theta uint16
	PMax            uint32
	Parents         []ParentSnapshot
}

// ParentSnapshot is one candidate parent's trust and weight state.
type ParentSnapshot struct {
	ID                           contracts.ParentID
	Trust, Gray, SinkAdv, SinkStab uint16
	Weight                       int32
}

// Sampler pushes a set of DAG snapshots into a Registry once per
// simulation tick, grounded on the polling shape of the teacher's
// pkg/monitoring/collector collectLoop (there driven by a time.Ticker
// against a live Prometheus query endpoint; here driven by the
// simulation's own tick clock since there is no external metrics source).
type Sampler struct {
	reg *Registry
}

// NewSampler binds a Sampler to reg.
func NewSampler(reg *Registry) *Sampler {
	return &Sampler{reg: reg}
}

// Sample records queue state plus every DAG snapshot's aggregates, parent
// trust sub-scores and last weight.
func (s *Sampler) Sample(queueLength, queueCapacity uint16, enqueuedTotal, droppedTotal uint32, dags []DAGSnapshot) {
	s.reg.ObserveQueue(queueLength, queueCapacity, enqueuedTotal, droppedTotal)
	for _, d := range dags {
		s.reg.ObserveDAGState(d.DAG, d.QAvg, d.Beta, d.Theta, d.PMax)
		for _, p := range d.Parents {
			s.reg.ObserveParentTrust(d.DAG, p.ID, p.Trust, p.Gray, p.SinkAdv, p.SinkStab)
			s.reg.ObserveWeight(d.DAG, p.ID, p.Weight)
		}
	}
}
