package app

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"text/tabwriter"
	"time"

	"finops-console/internal/audit"
	"finops-console/internal/storage"
)

type eventLister interface {
	ListRecentEvents(ctx context.Context, limit int) ([]audit.Event, error)
}

type planLister interface {
	ListRecentPlans(ctx context.Context, limit int) ([]storage.PlanRecord, error)
}

// Audit prints recent audit events, or plan history with --plans.
func (a *App) Audit(ctx context.Context, opts AuditOptions) error {
	store, closeStore, err := a.openStore(ctx)
	if err != nil {
		return err
	}
	if store == nil {
		return errors.New("database not configured; cannot list audit history")
	}
	if closeStore != nil {
		defer closeStore()
	}

	if opts.Plans {
		return a.listPlans(ctx, store, opts.Limit)
	}
	return a.listEvents(ctx, store, opts.Limit)
}

func (a *App) listEvents(ctx context.Context, store eventLister, limit int) error {
	events, err := store.ListRecentEvents(ctx, limit)
	if err != nil {
		return err
	}
	if len(events) == 0 {
		fmt.Fprintln(os.Stdout, "no audit events found")
		return nil
	}

	writer := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(writer, "Time (UTC)\tKind\tActor\tPlan\tSummary")

	for _, event := range events {
		fmt.Fprintf(
			writer,
			"%s\t%s\t%s\t%s\t%s\n",
			event.At.UTC().Format(time.RFC3339),
			event.Kind,
			event.Actor,
			shortID(event.PlanID),
			sanitizeInline(event.Summary),
		)
	}

	writer.Flush()
	return nil
}

func (a *App) listPlans(ctx context.Context, store planLister, limit int) error {
	records, err := store.ListRecentPlans(ctx, limit)
	if err != nil {
		return err
	}
	if len(records) == 0 {
		fmt.Fprintln(os.Stdout, "no plan records found")
		return nil
	}

	writer := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(writer, "Updated (UTC)\tPlan\tStatus\tActor\tBranch\tSummary")

	for _, record := range records {
		fmt.Fprintf(
			writer,
			"%s\t%s\t%s\t%s\t%s\t%s\n",
			record.UpdatedAt.UTC().Format(time.RFC3339),
			shortID(record.PlanID),
			record.Status,
			record.Actor,
			record.Branch,
			sanitizeInline(record.Summary),
		)
	}

	writer.Flush()
	return nil
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

func sanitizeInline(v string) string {
	cleaned := strings.ReplaceAll(v, "\n", " ")
	cleaned = strings.ReplaceAll(cleaned, "\r", " ")
	return cleaned
}
