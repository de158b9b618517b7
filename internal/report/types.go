// Package report defines the JSON run-report persisted at the end of a
// simulation, and the storage helpers to save/load/list it. Grounded on
// pkg/reporting/types.go and pkg/reporting/storage.go, retargeted from a
// chaos-test execution report to a BRPL simulation run report.
package report

import (
	"time"

	"github.com/zeetee1235/contiki-ng-brpl/internal/invariants"
	"github.com/zeetee1235/contiki-ng-brpl/internal/reset"
)

// Run is a complete simulation run report.
type Run struct {
	RunID        string    `json:"run_id"`
	TopologyName string    `json:"topology_name"`
	StartTime    time.Time `json:"start_time"`
	EndTime      time.Time `json:"end_time"`
	Duration     string    `json:"duration"`

	Status  Status `json:"status"`
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`

	Ticks int `json:"ticks"`

	DAGs []DAGSummary `json:"dags"`

	Invariants []CriterionResult `json:"invariants,omitempty"`

	ResetSummary reset.Summary     `json:"reset_summary"`
	ResetLog     []reset.AuditEntry `json:"reset_log,omitempty"`

	Errors []string `json:"errors,omitempty"`
}

// Status is the terminal state of a run.
type Status string

const (
	StatusRunning   Status = "running"
	StatusCompleted Status = "completed"
	StatusFailed    Status = "failed"
	StatusStopped   Status = "stopped"
)

// DAGSummary is the final recorded aggregate state for one DAG.
type DAGSummary struct {
	DAG   uint16 `json:"dag"`
	QAvg  uint16 `json:"q_avg"`
	Beta  uint16 `json:"beta"`
	Theta uint16 `json:"theta"`
	PMax  uint32 `json:"p_max"`

	BestParent uint16 `json:"best_parent"`
}

// CriterionResult is the JSON-serializable projection of
// invariants.CriterionResult.
type CriterionResult struct {
	Name      string    `json:"name"`
	Type      string    `json:"type"`
	Passed    bool      `json:"passed"`
	Message   string    `json:"message"`
	Critical  bool      `json:"critical"`
	EvalTime  time.Time `json:"eval_time"`
}

// FromCheckerResult converts an invariants.CriterionResult into its
// JSON-serializable form.
func FromCheckerResult(r *invariants.CriterionResult) CriterionResult {
	return CriterionResult{
		Name:     r.Invariant.Name,
		Type:     r.Invariant.Type,
		Passed:   r.Passed,
		Message:  r.Message,
		Critical: r.Invariant.Critical,
		EvalTime: r.LastChecked,
	}
}
