package plan

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"

	"finops-console/internal/audit"
	"finops-console/internal/manifest"
	"finops-console/internal/telemetry"
)

// State names a position in the plan lifecycle.
type State int

const (
	StateIdle State = iota
	StateGenerating
	StatePending
	StateConfirming
	StateApplied
	StateDiscarded
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateGenerating:
		return "generating"
	case StatePending:
		return "pending"
	case StateConfirming:
		return "confirming"
	case StateApplied:
		return "applied"
	case StateDiscarded:
		return "discarded"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

var (
	// ErrNoPendingPlan indicates an apply or confirm with nothing to act on.
	ErrNoPendingPlan = errors.New("plan: no pending plan")
	// ErrNotConfirmed indicates an apply attempted without the explicit
	// confirmation step.
	ErrNotConfirmed = errors.New("plan: apply requires confirmation")
	// ErrBusy indicates a mutating call while generation or apply is in
	// flight.
	ErrBusy = errors.New("plan: another plan operation is in progress")
	// ErrApplyRejected indicates the remote service refused the plan.
	ErrApplyRejected = errors.New("plan: apply rejected by remote service")
)

// ApplyOptions identify the acting operator for the apply call.
type ApplyOptions struct {
	Actor         string
	ActorEmail    string
	CommitMessage string
}

// ApplyResult is a successful apply outcome with any returned branch or
// pull-request metadata.
type ApplyResult struct {
	PlanID      string
	Status      string
	Message     string
	Branch      string
	BaseBranch  string
	PullRequest string
}

// Controller is the plan lifecycle state machine:
//
//	Idle -> Generating -> Pending -> Confirming -> Applied | Discarded
//
// with Pending/Confirming falling back to Idle on any upstream edit. There is
// exactly one writer; correctness relies on explicit transitions and
// idempotent resets, not locking.
type Controller struct {
	planner *Planner
	service PlanService
	sink    audit.Sink
	logger  zerolog.Logger

	state   State
	current manifest.Snapshot
	pending *PendingPlan
	applied *ApplyResult
}

// NewController wires a controller around the current manifest snapshot.
func NewController(planner *Planner, service PlanService, sink audit.Sink, current manifest.Snapshot, logger zerolog.Logger) *Controller {
	return &Controller{
		planner: planner,
		service: service,
		sink:    sink,
		logger:  logger.With().Str("component", "plan_controller").Logger(),
		state:   StateIdle,
		current: current,
	}
}

// State reports the current lifecycle state.
func (c *Controller) State() State {
	return c.state
}

// Current returns the cached manifest snapshot. It changes only on a
// successful apply.
func (c *Controller) Current() manifest.Snapshot {
	return c.current
}

// Pending returns the plan under review, if any.
func (c *Controller) Pending() *PendingPlan {
	return c.pending
}

// Applied returns the last successful apply result, if any.
func (c *Controller) Applied() *ApplyResult {
	return c.applied
}

// NoteEdit records an upstream form edit: any pending or confirming plan is
// silently discarded so stale plans are never re-used against new edits.
func (c *Controller) NoteEdit() {
	if c.state == StatePending || c.state == StateConfirming {
		c.logger.Debug().Msg("form edited; pending plan dropped")
	}
	if c.state != StateGenerating {
		c.pending = nil
		c.state = StateIdle
	}
}

// Generate builds a new pending plan from the cached snapshot plus the
// update. Prior plan state is cleared whether or not generation succeeds.
func (c *Controller) Generate(ctx context.Context, update manifest.Update) (*PendingPlan, error) {
	if c.state == StateGenerating || c.state == StateConfirming {
		return nil, ErrBusy
	}

	c.pending = nil
	c.state = StateGenerating

	pending, err := c.planner.Generate(ctx, c.current, update)
	if err != nil {
		c.state = StateIdle
		return nil, err
	}

	c.pending = pending
	c.state = StatePending
	return pending, nil
}

// BeginConfirm opens the confirmation step for the pending plan. Apply is
// refused until this has been called; the two-step gate is deliberate
// friction before destructive policy changes.
func (c *Controller) BeginConfirm() error {
	switch c.state {
	case StatePending:
		c.state = StateConfirming
		return nil
	case StateConfirming:
		return nil
	case StateGenerating:
		return ErrBusy
	default:
		return ErrNoPendingPlan
	}
}

// CancelConfirm steps back from confirmation to review.
func (c *Controller) CancelConfirm() {
	if c.state == StateConfirming {
		c.state = StatePending
	}
}

// Apply submits the confirmed plan. On success the candidate snapshot
// becomes the cached manifest and an audit event is emitted. On failure the
// pending plan is preserved so the operator can retry without regenerating
// the diff.
func (c *Controller) Apply(ctx context.Context, opts ApplyOptions) (*ApplyResult, error) {
	if c.state != StateConfirming {
		if c.pending == nil {
			return nil, ErrNoPendingPlan
		}
		return nil, ErrNotConfirmed
	}

	commitMessage := opts.CommitMessage
	if commitMessage == "" {
		commitMessage = c.pending.Plan.Summary
	}

	res, err := c.service.SubmitApply(ctx, telemetry.ApplyRequest{
		PlanID:        c.pending.ID,
		Plan:          c.pending.Plan,
		Patch:         c.pending.Patch,
		Actor:         opts.Actor,
		ActorEmail:    opts.ActorEmail,
		CommitMessage: commitMessage,
		PlanPayload:   c.pending.PlanPayload,
	})
	if err != nil {
		c.state = StatePending
		return nil, err
	}
	if !res.Applied() {
		c.state = StatePending
		if res.Message != "" {
			return nil, fmt.Errorf("%w: %s", ErrApplyRejected, res.Message)
		}
		return nil, ErrApplyRejected
	}

	result := &ApplyResult{
		PlanID:      c.pending.ID,
		Status:      res.Status,
		Message:     res.Message,
		Branch:      res.Branch,
		BaseBranch:  res.BaseBranch,
		PullRequest: res.PullRequest,
	}

	c.current = c.pending.NextSnapshot
	c.applied = result
	c.state = StateApplied

	event := audit.NewEvent(audit.KindPlanApplied, c.pending.Plan.Summary)
	event.Actor = opts.Actor
	event.ActorEmail = opts.ActorEmail
	event.PlanID = c.pending.ID
	event.Detail = applyDetail(result)
	c.emit(ctx, event)

	c.pending = nil
	return result, nil
}

// Discard clears the pending plan without touching the network and emits a
// neutral audit event.
func (c *Controller) Discard(ctx context.Context) error {
	if c.pending == nil {
		return ErrNoPendingPlan
	}

	event := audit.NewEvent(audit.KindPlanDiscarded, "Plan discarded before apply")
	event.PlanID = c.pending.ID
	c.emit(ctx, event)

	c.pending = nil
	c.state = StateDiscarded
	return nil
}

func (c *Controller) emit(ctx context.Context, event audit.Event) {
	if c.sink == nil {
		return
	}
	if err := c.sink.Record(ctx, event); err != nil {
		c.logger.Error().Err(err).Str("event_id", event.ID).Msg("failed to record audit event")
	}
}

func applyDetail(r *ApplyResult) string {
	switch {
	case r.PullRequest != "":
		return "pull request " + r.PullRequest
	case r.Branch != "":
		return "branch " + r.Branch
	default:
		return r.Message
	}
}
