package app

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"finops-console/internal/manifest"
	"finops-console/internal/plan"
	"finops-console/internal/storage"
)

// Plan generates a change plan from an update file, prints its diff, and
// optionally applies or discards it. Apply requires an explicit --yes since
// it mutates the governed manifest.
func (a *App) Plan(ctx context.Context, opts PlanOptions) error {
	if opts.UpdatePath == "" {
		return errors.New("--update file is required")
	}
	if opts.Apply && opts.Discard {
		return errors.New("--apply and --discard are mutually exclusive")
	}
	if opts.Apply && !opts.Yes {
		return errors.New("--apply mutates the manifest; confirm with --yes")
	}

	update, err := readUpdate(opts.UpdatePath)
	if err != nil {
		return err
	}

	client := a.newTelemetryClient()
	policyID := a.Config.Policy.PolicyID

	current, err := client.FetchManifest(ctx, policyID)
	if err != nil {
		return fmt.Errorf("fetch manifest: %w", err)
	}

	store, closeStore, err := a.openStore(ctx)
	if err != nil {
		return err
	}
	if closeStore != nil {
		defer closeStore()
	}

	sink := a.newAuditSink(store)
	planner := plan.NewPlanner(policyID, client, nil, a.Logger)
	controller := plan.NewController(planner, client, sink, *current, a.Logger)

	pending, err := controller.Generate(ctx, update)
	if err != nil {
		var fields manifest.ValidationErrors
		if errors.As(err, &fields) {
			for _, fe := range fields {
				fmt.Fprintf(os.Stderr, "invalid %s: %s\n", fe.Field, fe.Message)
			}
			return errors.New("update file failed validation")
		}
		return err
	}

	a.recordPlan(ctx, store, storage.PlanRecord{
		PlanID:   pending.ID,
		PolicyID: policyID,
		Summary:  pending.Plan.Summary,
		Status:   storage.PlanStatusPending,
		Actor:    a.Config.Policy.Actor,
	})

	printPlan(pending)

	switch {
	case opts.Discard:
		if err := controller.Discard(ctx); err != nil {
			return err
		}
		a.recordPlanStatus(ctx, store, pending.ID, storage.PlanStatusDiscarded, "", "")
		fmt.Fprintln(os.Stdout, "plan discarded")
		return nil

	case opts.Apply:
		if err := controller.BeginConfirm(); err != nil {
			return err
		}
		result, err := controller.Apply(ctx, plan.ApplyOptions{
			Actor:         a.Config.Policy.Actor,
			ActorEmail:    a.Config.Policy.ActorEmail,
			CommitMessage: opts.CommitMessage,
		})
		if err != nil {
			return err
		}
		a.recordPlanStatus(ctx, store, result.PlanID, storage.PlanStatusApplied, result.Branch, result.PullRequest)

		fmt.Fprintf(os.Stdout, "plan %s applied: %s\n", result.PlanID, result.Message)
		if result.Branch != "" {
			fmt.Fprintf(os.Stdout, "branch: %s", result.Branch)
			if result.BaseBranch != "" {
				fmt.Fprintf(os.Stdout, " (base %s)", result.BaseBranch)
			}
			fmt.Fprintln(os.Stdout)
		}
		if result.PullRequest != "" {
			fmt.Fprintf(os.Stdout, "pull request: %s\n", result.PullRequest)
		}
		return nil

	default:
		fmt.Fprintln(os.Stdout, "dry run; re-run with --apply --yes to apply or --discard to record a discard")
		return nil
	}
}

func readUpdate(path string) (manifest.Update, error) {
	var update manifest.Update

	data, err := os.ReadFile(path)
	if err != nil {
		return update, fmt.Errorf("read update file: %w", err)
	}
	if err := json.Unmarshal(data, &update); err != nil {
		return update, fmt.Errorf("parse update file: %w", err)
	}
	return update, nil
}

func printPlan(pending *plan.PendingPlan) {
	fmt.Fprintf(os.Stdout, "plan %s\n", pending.ID)
	if pending.Plan.Summary != "" {
		fmt.Fprintf(os.Stdout, "%s\n", pending.Plan.Summary)
	}
	for _, item := range pending.Diffs {
		fmt.Fprintf(os.Stdout, "\n--- %s", item.Path)
		if item.Summary != "" {
			fmt.Fprintf(os.Stdout, " (%s)", item.Summary)
		}
		fmt.Fprintln(os.Stdout)
		fmt.Fprint(os.Stdout, item.Content)
	}
	fmt.Fprintln(os.Stdout)
}

func (a *App) recordPlan(ctx context.Context, store *storage.Store, record storage.PlanRecord) {
	if store == nil {
		return
	}
	if err := store.UpsertPlan(ctx, record); err != nil {
		a.Logger.Error().Err(err).Str("plan_id", record.PlanID).Msg("failed to persist plan record")
	}
}

func (a *App) recordPlanStatus(ctx context.Context, store *storage.Store, planID, status, branch, pullRequest string) {
	if store == nil {
		return
	}
	if err := store.UpdatePlanStatus(ctx, planID, status, branch, pullRequest); err != nil {
		a.Logger.Error().Err(err).Str("plan_id", planID).Msg("failed to update plan record")
	}
}
