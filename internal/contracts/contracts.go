// Package contracts defines the narrow collaborator interfaces the BRPL
// core consumes from its surrounding routing protocol. The core never
// reaches into a concrete routing-table or neighbor-table type; it composes
// these interfaces instead, the same way the teacher's fault-injection
// wrappers accept a narrow SidecarManager instead of a concrete Docker
// client.
package contracts

import "time"

// Clock supplies monotonic ticks and seconds. In the original C source this
// is clock_time()/clock_seconds(); CLOCK_SECOND ticks per second of
// wall-clock time.
type Clock interface {
	Now() time.Time
	Seconds() int64
}

// ParentID is a stable link-local identifier for a candidate parent.
// 0xFFFF is the sentinel used when a parent has no resolvable link-local
// address (spec.md §7, missing-dependency degradation).
type ParentID uint16

const SentinelParentID ParentID = 0xFFFF

// DAGID identifies one routing tree (RPL instance) a node participates in.
type DAGID uint16

// NeighborEnumerator walks the link-local neighbor table maintained by the
// surrounding routing protocol. Implementations should be safe to call
// repeatedly; the core only ever calls it during a DAG state refresh.
type NeighborEnumerator interface {
	// Neighbors returns the current link-local neighbor identifiers visible
	// to this node, independent of which DAG they belong to.
	Neighbors() []ParentID
}

// ParentEnumerator walks the parent table restricted to one DAG.
type ParentEnumerator interface {
	// ParentsOf returns every candidate parent currently associated with dag.
	ParentsOf(dag DAGID) []*ParentRecord
}

// ReferenceObjective is the MRHOF-like objective BRPL delegates its
// non-comparator hooks to (spec.md §4.6).
type ReferenceObjective interface {
	ParentLinkMetric(p *ParentRecord) uint16
	ParentHasUsableLink(p *ParentRecord) bool
	ParentPathCost(p *ParentRecord) uint16
	RankViaParent(p *ParentRecord) uint16
}

// TrustOracle supplies the gray-hole (data-plane) trust input. The original
// C source exposes this as a link-time weak symbol
// (__attribute__((weak)) brpl_trust_get); here it is an injected
// capability with a default implementation that always returns full trust.
type TrustOracle interface {
	// TrustGrayRaw returns a raw gray-hole trust value in [0, Scale] for the
	// given parent, or Scale if no telemetry is available for it.
	TrustGrayRaw(id ParentID) uint16
}

// DefaultTrustOracle always reports full trust, matching the default weak
// symbol behavior in rpl-brpl.c.
type DefaultTrustOracle struct{ Scale uint16 }

func (d DefaultTrustOracle) TrustGrayRaw(ParentID) uint16 { return d.Scale }

// ParentRecord is the external parent-table entry, carrying the BRPL-added
// fields spec.md §3 describes. The routing protocol's parent table owns the
// record; only the BRPL core mutates the BRPL-added fields.
type ParentRecord struct {
	ID   ParentID
	DAG  DAGID
	Rank uint16 // R_p: rank most recently advertised by this parent

	// LinkMetric is the unit-less link cost to this parent (ETX-derived),
	// the value a reference objective's ParentLinkMetric hook returns.
	LinkMetric uint16

	// Optionally advertised neighbor queue state.
	BRPLQueue      uint16
	BRPLQueueMax   uint16
	BRPLQueueValid bool

	// Stability-trust history.
	LastRank       uint16
	LastRankUpdate int64 // seconds; 0 means "no history yet"

	// Data-plane counters feeding gray-hole telemetry elsewhere.
	PacketsSent    uint32
	PacketsDropped uint32

	// Trust sub-scores in [0, Scale]; only TrustTotal is floored at TrustMin.
	TrustGray      uint16
	TrustSinkAdv   uint16
	TrustSinkStab  uint16
	TrustTotal     uint16
	trustInitAdv   bool
	trustInitStab  bool
	trustInitGray  bool
}

// Metric returns the stored link metric to this parent.
func (p *ParentRecord) Metric() uint16 { return p.LinkMetric }

// EnsureTrustInitialized seeds every sub-score to scale on first
// observation, matching brpl_init_trust / the "initial value on first
// observation is S" rule in spec.md §4.4.
func (p *ParentRecord) EnsureTrustInitialized(scale uint16) {
	if !p.trustInitAdv {
		p.TrustSinkAdv = scale
		p.trustInitAdv = true
	}
	if !p.trustInitStab {
		p.TrustSinkStab = scale
		p.trustInitStab = true
	}
	if !p.trustInitGray {
		p.TrustGray = scale
		p.trustInitGray = true
	}
	if p.TrustTotal == 0 {
		p.TrustTotal = scale
	}
}
