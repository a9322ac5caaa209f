package reconcile

import (
	"context"
	"fmt"
	"time"

	"medifinder-ingestor/core/utils"
)

// Target is the store side of reconciliation.
type Target interface {
	// CountStaleInventory counts rows that would be zeroed for asOf.
	CountStaleInventory(ctx context.Context, asOf time.Time) (int64, error)
	// ReconcileStaleInventory zeroes them and returns the affected row count.
	ReconcileStaleInventory(ctx context.Context, asOf time.Time) (int64, error)
}

// Options controls whether a plan is applied.
type Options struct {
	// DryRun forces a report-only run even when Confirmed is set.
	DryRun bool
	// Confirmed is set once the operator accepted the destructive change.
	Confirmed bool
}

// Summary provides aggregate numbers for a plan.
type Summary struct {
	// AsOf is the cutoff date; rows reported strictly before it are stale.
	AsOf time.Time `json:"as_of"`
	// Candidates is the number of rows with positive stock before AsOf.
	Candidates int64 `json:"candidates"`
}

// Plan is the read-only result of planning a reconciliation.
type Plan struct {
	Summary Summary `json:"summary"`
}

// Empty reports whether applying the plan would change nothing.
func (p *Plan) Empty() bool {
	return p.Summary.Candidates == 0
}

// BuildPlan counts the rows a reconciliation at asOf would change. It does NOT
// modify anything; use Apply for that.
func BuildPlan(ctx context.Context, target Target, asOf time.Time) (*Plan, error) {
	asOf = utils.DateOnly(asOf)
	n, err := target.CountStaleInventory(ctx, asOf)
	if err != nil {
		return nil, fmt.Errorf("failed to plan reconciliation: %w", err)
	}
	return &Plan{Summary: Summary{AsOf: asOf, Candidates: n}}, nil
}

// Apply executes the plan. It requires opts.Confirmed=true and
// opts.DryRun=false; otherwise it returns 0 without touching the store.
// The returned count comes from the store and may differ from the plan when
// rows changed in between.
func Apply(ctx context.Context, target Target, plan *Plan, opts Options) (int64, error) {
	if !opts.Confirmed || opts.DryRun || plan.Empty() {
		return 0, nil
	}
	n, err := target.ReconcileStaleInventory(ctx, plan.Summary.AsOf)
	if err != nil {
		return 0, fmt.Errorf("failed to apply reconciliation: %w", err)
	}
	return n, nil
}
