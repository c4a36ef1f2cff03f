package storage

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"finops-console/internal/audit"
)

var (
	// ErrNotConfigured indicates the storage pool was not initialised.
	ErrNotConfigured = errors.New("storage: pool not configured")
)

const (
	insertAuditEventSQL = `INSERT INTO audit_events (
        id,
        kind,
        actor,
        actor_email,
        plan_id,
        summary,
        detail,
        created_at
    ) VALUES (
        $1,$2,$3,$4,$5,$6,$7,$8
    )
    ON CONFLICT (id) DO NOTHING;`

	listRecentEventsSQL = `SELECT
        id,
        kind,
        actor,
        actor_email,
        plan_id,
        summary,
        detail,
        created_at
    FROM audit_events
    ORDER BY created_at DESC
    LIMIT $1;`

	countEventsSQL = `SELECT COUNT(*) FROM audit_events;`

	insertPlanSQL = `INSERT INTO plan_history (
        plan_id,
        policy_id,
        summary,
        status,
        actor,
        branch,
        pull_request
    ) VALUES (
        $1,$2,$3,$4,$5,$6,$7
    )
    ON CONFLICT (plan_id) DO UPDATE
    SET summary      = EXCLUDED.summary,
        status       = EXCLUDED.status,
        actor        = EXCLUDED.actor,
        branch       = EXCLUDED.branch,
        pull_request = EXCLUDED.pull_request,
        updated_at   = now();`

	updatePlanStatusSQL = `UPDATE plan_history
    SET status = $2,
        branch = $3,
        pull_request = $4,
        updated_at = now()
    WHERE plan_id = $1;`

	listRecentPlansSQL = `SELECT
        plan_id,
        policy_id,
        summary,
        status,
        actor,
        branch,
        pull_request,
        created_at,
        updated_at
    FROM plan_history
    ORDER BY updated_at DESC
    LIMIT $1;`
)

// AuditEventStore defines operations for audit event persistence.
type AuditEventStore interface {
	audit.Sink
	ListRecentEvents(ctx context.Context, limit int) ([]audit.Event, error)
	CountEvents(ctx context.Context) (int64, error)
}

// PlanHistoryStore defines operations for plan history persistence.
type PlanHistoryStore interface {
	UpsertPlan(ctx context.Context, record PlanRecord) error
	UpdatePlanStatus(ctx context.Context, planID, status, branch, pullRequest string) error
	ListRecentPlans(ctx context.Context, limit int) ([]PlanRecord, error)
}

// Store aggregates access to audit events and plan history.
type Store struct {
	pool *pgxpool.Pool
}

var (
	_ AuditEventStore  = (*Store)(nil)
	_ PlanHistoryStore = (*Store)(nil)
)

// NewStore wires a pgx pool into a Store.
func NewStore(pool *pgxpool.Pool) *Store {
	return &Store{pool: pool}
}

// Close releases the underlying pool resources.
func (s *Store) Close() {
	if s == nil || s.pool == nil {
		return
	}
	s.pool.Close()
}

func (s *Store) getPool() (*pgxpool.Pool, error) {
	if s == nil || s.pool == nil {
		return nil, ErrNotConfigured
	}
	return s.pool, nil
}

// Record persists an audit event, satisfying audit.Sink.
func (s *Store) Record(ctx context.Context, event audit.Event) error {
	pool, err := s.getPool()
	if err != nil {
		return err
	}

	at := event.At
	if at.IsZero() {
		at = time.Now().UTC()
	}

	_, execErr := pool.Exec(ctx, insertAuditEventSQL,
		event.ID,
		event.Kind,
		event.Actor,
		event.ActorEmail,
		event.PlanID,
		event.Summary,
		event.Detail,
		at,
	)
	if execErr != nil {
		return fmt.Errorf("insert audit event: %w", execErr)
	}
	return nil
}

// ListRecentEvents lists the most recent audit events, newest first.
func (s *Store) ListRecentEvents(ctx context.Context, limit int) ([]audit.Event, error) {
	pool, err := s.getPool()
	if err != nil {
		return nil, err
	}

	rows, queryErr := pool.Query(ctx, listRecentEventsSQL, limit)
	if queryErr != nil {
		return nil, fmt.Errorf("list recent events: %w", queryErr)
	}
	defer rows.Close()

	events := make([]audit.Event, 0, limit)
	for rows.Next() {
		var event audit.Event
		if scanErr := rows.Scan(
			&event.ID,
			&event.Kind,
			&event.Actor,
			&event.ActorEmail,
			&event.PlanID,
			&event.Summary,
			&event.Detail,
			&event.At,
		); scanErr != nil {
			return nil, fmt.Errorf("scan audit event: %w", scanErr)
		}
		events = append(events, event)
	}
	if rows.Err() != nil {
		return nil, rows.Err()
	}
	return events, nil
}

// CountEvents counts stored audit events.
func (s *Store) CountEvents(ctx context.Context) (int64, error) {
	pool, err := s.getPool()
	if err != nil {
		return 0, err
	}
	var count int64
	if scanErr := pool.QueryRow(ctx, countEventsSQL).Scan(&count); scanErr != nil {
		return 0, fmt.Errorf("count events: %w", scanErr)
	}
	return count, nil
}

// UpsertPlan persists or refreshes a plan history record.
func (s *Store) UpsertPlan(ctx context.Context, record PlanRecord) error {
	pool, err := s.getPool()
	if err != nil {
		return err
	}

	_, execErr := pool.Exec(ctx, insertPlanSQL,
		record.PlanID,
		record.PolicyID,
		record.Summary,
		record.Status,
		record.Actor,
		record.Branch,
		record.PullRequest,
	)
	if execErr != nil {
		return fmt.Errorf("upsert plan: %w", execErr)
	}
	return nil
}

// UpdatePlanStatus advances a plan record to a terminal status.
func (s *Store) UpdatePlanStatus(ctx context.Context, planID, status, branch, pullRequest string) error {
	pool, err := s.getPool()
	if err != nil {
		return err
	}
	cmdTag, execErr := pool.Exec(ctx, updatePlanStatusSQL, planID, status, branch, pullRequest)
	if execErr != nil {
		return fmt.Errorf("update plan status: %w", execErr)
	}
	if cmdTag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

// ListRecentPlans lists plan records, most recently updated first.
func (s *Store) ListRecentPlans(ctx context.Context, limit int) ([]PlanRecord, error) {
	pool, err := s.getPool()
	if err != nil {
		return nil, err
	}

	rows, queryErr := pool.Query(ctx, listRecentPlansSQL, limit)
	if queryErr != nil {
		return nil, fmt.Errorf("list recent plans: %w", queryErr)
	}
	defer rows.Close()

	records := make([]PlanRecord, 0, limit)
	for rows.Next() {
		var record PlanRecord
		if scanErr := rows.Scan(
			&record.PlanID,
			&record.PolicyID,
			&record.Summary,
			&record.Status,
			&record.Actor,
			&record.Branch,
			&record.PullRequest,
			&record.CreatedAt,
			&record.UpdatedAt,
		); scanErr != nil {
			return nil, fmt.Errorf("scan plan record: %w", scanErr)
		}
		records = append(records, record)
	}
	if rows.Err() != nil {
		return nil, rows.Err()
	}
	return records, nil
}
