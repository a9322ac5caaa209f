// Package reconcile wraps the stale-stock reconciliation in a plan/apply flow
// so an operator can see how many inventory rows a cutoff date would zero
// before confirming it.
//
// # Usage
//
//	plan, err := reconcile.BuildPlan(ctx, store, asOf)
//	n, err := reconcile.Apply(ctx, store, plan, reconcile.Options{Confirmed: true})
package reconcile
