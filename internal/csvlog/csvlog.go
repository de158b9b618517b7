// Package csvlog emits the four stable CSV line formats BRPL defines as its
// only external text surface (spec.md §6): BRPL_STATE, BRPL_WEIGHT,
// BRPL_TRUST and BRPL_BEST. Lines are written through zerolog the way the
// teacher's pkg/reporting wraps it, one structured event per line with the
// formatted CSV payload as the message.
//
// Grounded on brpl_should_log and CSV_LOG_SAMPLE_RATE in rpl-brpl.c: the
// original gates every line behind a modulo-counter sampler so a busy node
// does not flood its console, which this package reproduces as SampleRate.
package csvlog

import (
	"fmt"
	"io"
	"sync/atomic"

	"github.com/rs/zerolog"

	"github.com/zeetee1235/contiki-ng-brpl/internal/contracts"
)

// Logger emits BRPL's four CSV record kinds at a configurable sample rate.
type Logger struct {
	zl         zerolog.Logger
	sampleRate uint32 // emit 1 line out of every sampleRate calls; 0 or 1 means every call
	counter    atomic.Uint32
}

// New builds a Logger writing to out. sampleRate of 0 or 1 logs every call;
// sampleRate of N logs every Nth call to any of the four emit methods,
// counted jointly (brpl_should_log uses one shared counter, not one per
// record kind).
func New(out io.Writer, sampleRate uint32) *Logger {
	return &Logger{
		zl:         zerolog.New(out).With().Timestamp().Logger(),
		sampleRate: sampleRate,
	}
}

// shouldLog implements the modulo-counter gate: the original increments a
// static counter on every call and logs when it wraps to zero.
func (l *Logger) shouldLog() bool {
	if l.sampleRate <= 1 {
		return true
	}
	n := l.counter.Add(1)
	return n%l.sampleRate == 0
}

// State emits BRPL_STATE,self,q,qmax,q_avg,rho,theta,p_max.
func (l *Logger) State(dag contracts.DAGID, q, qmax, qAvg, rho, theta uint16, pMax uint32) {
	if !l.shouldLog() {
		return
	}
	l.zl.Info().Msg(fmt.Sprintf("BRPL_STATE,%d,%d,%d,%d,%d,%d,%d", dag, q, qmax, qAvg, rho, theta, pMax))
}

// Weight emits BRPL_WEIGHT,self,parent,q,qy,qmax,p~,p_norm,dq_norm,theta,W.
func (l *Logger) Weight(dag contracts.DAGID, parent contracts.ParentID, q, qy, qmax, pTilde, pNorm uint16, deltaQNorm int32, theta uint16, weight int32) {
	if !l.shouldLog() {
		return
	}
	l.zl.Info().Msg(fmt.Sprintf("BRPL_WEIGHT,%d,%d,%d,%d,%d,%d,%d,%d,%d,%d",
		dag, parent, q, qy, qmax, pTilde, pNorm, deltaQNorm, theta, weight))
}

// Trust emits BRPL_TRUST,self,parent,T,TRUST_MIN,gamma,W'.
func (l *Logger) Trust(dag contracts.DAGID, parent contracts.ParentID, trustTotal, trustMin uint16, gamma int, weightPrime int32) {
	if !l.shouldLog() {
		return
	}
	l.zl.Info().Msg(fmt.Sprintf("BRPL_TRUST,%d,%d,%d,%d,%d,%d",
		dag, parent, trustTotal, trustMin, gamma, weightPrime))
}

// Best emits BRPL_BEST,self,p1,W1,p2,W2,best.
func (l *Logger) Best(dag contracts.DAGID, p1 contracts.ParentID, w1 int32, p2 contracts.ParentID, w2 int32, best contracts.ParentID) {
	if !l.shouldLog() {
		return
	}
	l.zl.Info().Msg(fmt.Sprintf("BRPL_BEST,%d,%d,%d,%d,%d,%d", dag, p1, w1, p2, w2, best))
}
