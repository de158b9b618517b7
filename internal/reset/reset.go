// Package reset coordinates resetting every DAG a node participates in back
// to its BRPL defaults, and keeps an audit log of what was reset and when.
// Grounded on pkg/core/cleanup.Coordinator's shape (there: destroy sidecars
// and verify netns cleanliness; here: reset(dag) per spec.md §4.6 and
// record that it happened), with zerolog replacing the teacher's direct
// fmt.Println/emoji console output.
package reset

import (
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/zeetee1235/contiki-ng-brpl/internal/contracts"
)

// Resettable is satisfied by internal/objective.Objective; kept narrow so
// this package never imports the objective package directly and the
// dependency only flows one way.
type Resettable interface {
	Reset(dag contracts.DAGID)
}

// AuditEntry records one dag's reset.
type AuditEntry struct {
	Timestamp time.Time
	DAG       contracts.DAGID
	Success   bool
	Error     error
}

// Coordinator resets a set of DAGs and records each attempt.
type Coordinator struct {
	obj      Resettable
	log      zerolog.Logger
	auditLog []AuditEntry
}

// New builds a Coordinator resetting through obj.
func New(obj Resettable, log zerolog.Logger) *Coordinator {
	return &Coordinator{obj: obj, log: log, auditLog: make([]AuditEntry, 0)}
}

// ResetAll resets every dag in dags, in order, continuing past a panic-free
// reset call even if a later one would fail (Reset itself cannot currently
// fail, but the audit shape accommodates an obj whose Reset could return an
// error in the future without changing this loop).
func (c *Coordinator) ResetAll(dags []contracts.DAGID) {
	for _, dag := range dags {
		c.resetOne(dag)
	}
}

func (c *Coordinator) resetOne(dag contracts.DAGID) {
	c.obj.Reset(dag)
	c.logAudit(dag, nil)
	c.log.Info().Uint16("dag", uint16(dag)).Msg("reset dag to defaults")
}

func (c *Coordinator) logAudit(dag contracts.DAGID, err error) {
	c.auditLog = append(c.auditLog, AuditEntry{
		Timestamp: time.Now(),
		DAG:       dag,
		Success:   err == nil,
		Error:     err,
	})
}

// AuditLog returns every recorded reset, in order.
func (c *Coordinator) AuditLog() []AuditEntry {
	return c.auditLog
}

// Summary tallies the audit log.
type Summary struct {
	TotalResets int
	Succeeded   int
	Failed      int
}

// GetSummary summarizes the audit log so far.
func (c *Coordinator) GetSummary() Summary {
	s := Summary{TotalResets: len(c.auditLog)}
	for _, e := range c.auditLog {
		if e.Success {
			s.Succeeded++
		} else {
			s.Failed++
		}
	}
	return s
}

// String renders the summary for a final log line or CLI report.
func (s Summary) String() string {
	return fmt.Sprintf("reset summary: %d total, %d succeeded, %d failed", s.TotalResets, s.Succeeded, s.Failed)
}
