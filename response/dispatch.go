package response

import (
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/vigil-ac/vigil/check"
	"github.com/vigil-ac/vigil/event"
	"github.com/vigil-ac/vigil/internal/metrics"
	"github.com/vigil-ac/vigil/ledger"
	"github.com/vigil-ac/vigil/sink"
	"github.com/vigil-ac/vigil/worker"
)

// CorrectionApplier is the host-side collaborator that forces a player's
// authoritative position and velocity. The engine only ever requests a
// correction; it never mutates host state itself.
type CorrectionApplier interface {
	ApplyCorrection(playerID string, state event.CorrectedState)
}

// Dispatcher maps threshold crossings to decisions and queues the side
// effects (records, escalations, correction requests) for asynchronous
// delivery. Dispatch itself never blocks on a sink.
type Dispatcher struct {
	log     *logrus.Logger
	pool    *worker.Pool
	sinks   []sink.Sink
	applier CorrectionApplier

	// punishments maps check IDs to the operator-facing label forwarded on
	// escalations.
	punishments map[string]string
}

// NewDispatcher ...
func NewDispatcher(log *logrus.Logger, pool *worker.Pool, applier CorrectionApplier, punishments map[string]string, sinks ...sink.Sink) *Dispatcher {
	return &Dispatcher{
		log:         log,
		pool:        pool,
		sinks:       sinks,
		applier:     applier,
		punishments: punishments,
	}
}

// Dispatch resolves one verdict's crossed action into a decision. The mapping
// is deterministic: log allows, cancel denies (correcting when the verdict
// carries a corrected state), escalate denies and notifies operators.
func (d *Dispatcher) Dispatch(playerID string, v *check.Verdict, score float32, crossed ledger.Action, now int64) event.Decision {
	rec := sink.Record{
		ID:        uuid.NewString(),
		PlayerID:  playerID,
		CheckID:   v.CheckID,
		Severity:  v.Severity,
		Score:     score,
		Action:    crossed.String(),
		Timestamp: now,
		Data:      check.OrderedMapToString(v.Data),
	}

	switch crossed {
	case ledger.ActionLog:
		d.submitRecord(playerID, rec)
		return event.Allow()
	case ledger.ActionCancel:
		d.submitRecord(playerID, rec)
		return d.cancel(playerID, v)
	case ledger.ActionEscalate:
		d.submitRecord(playerID, rec)
		d.submitEscalation(playerID, sink.Escalation{
			Record:     rec,
			Punishment: d.punishment(v.CheckID),
		})
		return d.cancel(playerID, v)
	default:
		return event.Allow()
	}
}

func (d *Dispatcher) cancel(playerID string, v *check.Verdict) event.Decision {
	if v.Correction == nil {
		return event.Deny()
	}
	correction := *v.Correction
	if d.applier != nil {
		d.pool.Submit(playerID, func() {
			d.applier.ApplyCorrection(playerID, correction)
		})
	}
	return event.Correct(correction)
}

func (d *Dispatcher) submitRecord(playerID string, rec sink.Record) {
	d.pool.Submit(playerID, func() {
		for _, s := range d.sinks {
			if err := s.Record(rec); err != nil {
				// Sink failures are an observability problem, never a
				// pipeline one.
				d.log.Debugf("record delivery to sink failed: %v", err)
			}
		}
	})
}

func (d *Dispatcher) submitEscalation(playerID string, esc sink.Escalation) {
	metrics.Escalations.Inc()
	d.pool.Submit(playerID, func() {
		for _, s := range d.sinks {
			if err := s.Escalate(esc); err != nil {
				d.log.Debugf("escalation delivery to sink failed: %v", err)
			}
		}
	})
}

func (d *Dispatcher) punishment(checkID string) string {
	if p, ok := d.punishments[checkID]; ok && p != "" {
		return p
	}
	return "none"
}
