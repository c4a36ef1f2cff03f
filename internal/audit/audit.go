// Package audit emits well-formed governance events to the configured sinks.
// Sinks are best-effort collaborators: a sink failure never blocks the action
// that produced the event.
package audit

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// Event kinds emitted by the console.
const (
	KindPlanApplied   = "plan_applied"
	KindPlanDiscarded = "plan_discarded"
	KindAlertRaised   = "alert_raised"
)

// Event is one audit record.
type Event struct {
	ID         string    `json:"id"`
	Kind       string    `json:"kind"`
	Actor      string    `json:"actor,omitempty"`
	ActorEmail string    `json:"actorEmail,omitempty"`
	PlanID     string    `json:"planId,omitempty"`
	Summary    string    `json:"summary"`
	Detail     string    `json:"detail,omitempty"`
	At         time.Time `json:"at"`
}

// NewEvent stamps a fresh event with an id and timestamp.
func NewEvent(kind, summary string) Event {
	return Event{
		ID:      uuid.NewString(),
		Kind:    kind,
		Summary: summary,
		At:      time.Now().UTC(),
	}
}

// Sink consumes audit events.
type Sink interface {
	Record(ctx context.Context, event Event) error
}

// LogSink writes audit events to the structured log.
type LogSink struct {
	logger zerolog.Logger
}

// NewLogSink constructs a log-backed sink.
func NewLogSink(logger zerolog.Logger) *LogSink {
	return &LogSink{logger: logger.With().Str("component", "audit_log").Logger()}
}

// Record logs the event.
func (s *LogSink) Record(_ context.Context, event Event) error {
	s.logger.Info().
		Str("event_id", event.ID).
		Str("kind", event.Kind).
		Str("actor", event.Actor).
		Str("plan_id", event.PlanID).
		Str("summary", event.Summary).
		Time("at", event.At).
		Msg("audit event")
	return nil
}

// MultiSink fans one event out to every configured sink.
type MultiSink []Sink

// Record delivers to all sinks and joins any failures.
func (m MultiSink) Record(ctx context.Context, event Event) error {
	var errs []error
	for _, sink := range m {
		if sink == nil {
			continue
		}
		if err := sink.Record(ctx, event); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

var (
	_ Sink = (*LogSink)(nil)
	_ Sink = (MultiSink)(nil)
)
