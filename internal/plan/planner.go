// Package plan builds reviewable, diff-backed manifest change plans and
// carries them through a confirm-gated apply lifecycle.
package plan

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"finops-console/internal/manifest"
	"finops-console/internal/telemetry"
)

var (
	// ErrManifestDiffMissing indicates the remote plan named the manifest
	// path but shipped no diff content for it.
	ErrManifestDiffMissing = errors.New("plan: manifest diff entry has no content")
	// ErrEmptyDiff indicates a diff entry was still empty after reconciling
	// against the locally computed patch.
	ErrEmptyDiff = errors.New("plan: diff entry empty after reconciliation")
)

// PlanService is the remote surface the planner and controller depend on.
type PlanService interface {
	RequestPlan(ctx context.Context, req telemetry.PlanRequest) (*telemetry.PlanResponse, error)
	SubmitApply(ctx context.Context, req telemetry.ApplyRequest) (*telemetry.ApplyResponse, error)
}

// DiffItem is one review-ready diff segment of a pending plan.
type DiffItem struct {
	Path    string
	Summary string
	Content string
}

// PendingPlan is a generated, not-yet-applied change plan. It is consumed by
// apply or discard; any further form edit discards it implicitly.
type PendingPlan struct {
	ID           string
	Plan         telemetry.Plan
	PlanPayload  json.RawMessage
	Patch        string
	Diffs        []DiffItem
	NextSnapshot manifest.Snapshot
}

// Planner turns a manifest snapshot plus a proposed update into a pending
// plan backed by both a local unified diff and the remote structured plan.
type Planner struct {
	policyID string
	service  PlanService
	patch    manifest.PatchFunc
	logger   zerolog.Logger
}

// NewPlanner constructs a planner. A nil patch function selects the default
// unified-diff generator.
func NewPlanner(policyID string, service PlanService, patch manifest.PatchFunc, logger zerolog.Logger) *Planner {
	if patch == nil {
		patch = manifest.UnifiedPatch
	}
	return &Planner{
		policyID: policyID,
		service:  service,
		patch:    patch,
		logger:   logger.With().Str("component", "planner").Logger(),
	}
}

// Generate validates the update, computes the candidate snapshot and its
// patch, and reconciles the remote plan into review-ready diff items.
// Validation failures block before any network call.
func (p *Planner) Generate(ctx context.Context, current manifest.Snapshot, update manifest.Update) (*PendingPlan, error) {
	normalized, err := update.Normalize()
	if err != nil {
		return nil, err
	}

	next := manifest.Apply(current, normalized)

	before, err := current.Canonical()
	if err != nil {
		return nil, err
	}
	after, err := next.Canonical()
	if err != nil {
		return nil, err
	}

	patch, err := p.patch(before, after, "manifest@current", "manifest@proposed")
	if err != nil {
		return nil, fmt.Errorf("generate patch: %w", err)
	}

	res, err := p.service.RequestPlan(ctx, telemetry.PlanRequest{
		PolicyID: p.policyID,
		Changes:  next.FinOps,
	})
	if err != nil {
		return nil, err
	}

	diffs, err := reconcileDiffs(res.Plan, patch)
	if err != nil {
		return nil, err
	}

	pending := &PendingPlan{
		ID:           uuid.NewString(),
		Plan:         res.Plan,
		PlanPayload:  res.PlanPayload,
		Patch:        patch,
		Diffs:        diffs,
		NextSnapshot: next,
	}

	p.logger.Info().
		Str("plan_id", pending.ID).
		Int("diff_segments", len(diffs)).
		Msg("plan generated")
	return pending, nil
}

// reconcileDiffs merges the remote plan's diff entries with the local patch.
// An empty remote diff list falls back to a single synthetic item carrying
// the local patch. A manifest-path entry without content is ineligible and
// fails planning; non-manifest entries without content inherit the local
// patch, and anything still empty afterwards is a hard failure rather than a
// silent no-op.
func reconcileDiffs(remote telemetry.Plan, patch string) ([]DiffItem, error) {
	if len(remote.Diffs) == 0 {
		summary := remote.Summary
		if summary == "" {
			summary = "Policy manifest update"
		}
		if patch == "" {
			return nil, ErrEmptyDiff
		}
		return []DiffItem{{
			Path:    manifest.ManifestPath,
			Summary: summary,
			Content: patch,
		}}, nil
	}

	items := make([]DiffItem, 0, len(remote.Diffs))
	for _, d := range remote.Diffs {
		item := DiffItem{Path: d.Path, Summary: d.Summary, Content: d.Diff}
		if item.Content == "" {
			if d.Path == manifest.ManifestPath {
				return nil, fmt.Errorf("%w: %s", ErrManifestDiffMissing, d.Path)
			}
			item.Content = patch
		}
		if item.Content == "" {
			return nil, fmt.Errorf("%w: %s", ErrEmptyDiff, d.Path)
		}
		items = append(items, item)
	}

	return items, nil
}
