// Package topology describes a simulated BRPL deployment: a set of DAGs,
// each with candidate parents and a synthetic link model, driven for a
// configured number of ticks. Grounded on the apiVersion/kind/metadata/spec
// envelope of pkg/scenario/types.go, retargeted from chaos-fault scenarios
// to routing topologies.
package topology

// Topology is a complete manifest describing one simulation run.
type Topology struct {
	APIVersion string   `yaml:"apiVersion"`
	Kind       string   `yaml:"kind"`
	Metadata   Metadata `yaml:"metadata"`
	Spec       Spec     `yaml:"spec"`
}

// Metadata carries a human-facing name and optional tags, same shape as
// the teacher's scenario metadata.
type Metadata struct {
	Name        string   `yaml:"name"`
	Description string   `yaml:"description,omitempty"`
	Tags        []string `yaml:"tags,omitempty"`
}

// Spec is the routing topology and simulation clock.
type Spec struct {
	DAGs []DAG `yaml:"dags"`

	TickIntervalMillis int64 `yaml:"tickIntervalMillis"`
	Ticks              int   `yaml:"ticks"`

	Invariants []Invariant `yaml:"invariants,omitempty"`
}

// DAG describes one routing tree and its candidate parents.
type DAG struct {
	ID            uint16   `yaml:"id"`
	InitialRank   uint16   `yaml:"initialRank"`
	QueueCapacity uint16   `yaml:"queueCapacity"`
	Parents       []Parent `yaml:"parents"`

	// QueueArrival and QueueService drive the synthetic forwarding-queue
	// workload this DAG contributes to the process-wide queue meter each
	// tick: a {base, jitter} count of on_enqueue/on_dequeue calls, sampled
	// the same way link-metric jitter is. QueueDropPerMille is the chance
	// (parts per 1000) that a generated arrival is turned into an on_drop
	// instead of an on_enqueue. All default to zero (no synthetic traffic).
	QueueArrival      LinkModel `yaml:"queueArrival,omitempty"`
	QueueService      LinkModel `yaml:"queueService,omitempty"`
	QueueDropPerMille uint16    `yaml:"queueDropPerMille,omitempty"`
}

// Parent describes one candidate parent's initial state and link model.
type Parent struct {
	ID             uint16    `yaml:"id"`
	InitialRank    uint16    `yaml:"initialRank"`
	LinkMetric     LinkModel `yaml:"linkMetric"`
	BRPLQueue      uint16    `yaml:"brplQueue,omitempty"`
	BRPLQueueMax   uint16    `yaml:"brplQueueMax,omitempty"`
	BRPLQueueValid bool      `yaml:"brplQueueValid,omitempty"`
}

// LinkModel is a constant metric, or a {base, jitter} pair sampled fresh
// each tick as a stand-in for a real ETX measurement. Jitter of 0 makes
// this equivalent to a constant.
type LinkModel struct {
	Base   uint16 `yaml:"base"`
	Jitter uint16 `yaml:"jitter,omitempty"`
}

// Invariant names a check from internal/invariants to run against every
// tick's recorded state, reusing the name/type/threshold shape of the
// teacher's SuccessCriterion but restricted to the checks this repository
// actually knows how to evaluate in-process.
type Invariant struct {
	Name      string  `yaml:"name"`
	Type      string  `yaml:"type"`
	Threshold string  `yaml:"threshold,omitempty"`
	DAG       *uint16 `yaml:"dag,omitempty"`
	Critical  bool    `yaml:"critical,omitempty"`
}
