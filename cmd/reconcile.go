package cmd

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"medifinder-ingestor/core/utils"
	"medifinder-ingestor/feature/inventory/reconcile"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	asOfDate   string
	dryRun     bool
	yesConfirm bool
)

// reconcileCmd zeroes stale inventory without ingesting a file.
var reconcileCmd = &cobra.Command{
	Use:   "reconcile",
	Short: "Zero inventory rows reported before a cutoff date",
	Long: `Marks every inventory row reported strictly before --as-of that still has
stock as out of stock (stock 0, indicator Desabastecido).

Ingestion already does this with the newest report date of the extract; this
command repeats the pass on its own, for example after a partial run.

Examples:
  # Report only
  reconcile --as-of 2024-03-15 --dry-run

  # Apply with interactive confirmation
  reconcile --as-of 2024-03-15

  # Apply with auto-confirm (non-interactive)
  reconcile --as-of 2024-03-15 --yes`,
	RunE: runReconcile,
}

func init() {
	reconcileCmd.Flags().StringVar(&asOfDate, "as-of", "", "Cutoff report date (YYYY-MM-DD)")
	reconcileCmd.Flags().BoolVar(&dryRun, "dry-run", false, "Report only, never modify the store")
	reconcileCmd.Flags().BoolVar(&yesConfirm, "yes", false, "Auto-confirm destructive actions (non-interactive)")
	_ = reconcileCmd.MarkFlagRequired("as-of")

	RootCmd.AddCommand(reconcileCmd)
}

func runReconcile(cmd *cobra.Command, args []string) error {
	asOf, err := utils.ParseDate(asOfDate)
	if err != nil {
		return err
	}
	if asOf == nil {
		return errors.New("--as-of is required")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := bootstrap(ctx)
	defer a.Close()
	if err != nil {
		return err
	}

	release, err := a.runLock.Acquire(ctx)
	if err != nil {
		return err
	}
	defer release(context.Background())

	l := a.logger
	l.Info("Planning reconciliation...", zap.String("as_of", asOf.Format(utils.DateLayout)))
	plan, err := reconcile.BuildPlan(ctx, a.store, *asOf)
	if err != nil {
		return err
	}
	printReconcileReport(l, plan)

	if plan.Empty() {
		l.Info("No actions required.")
		return nil
	}
	if dryRun {
		l.Info("Dry-run mode: No changes were made.")
		return nil
	}

	if !confirmDestructiveAction() {
		l.Warn("Operation cancelled by user. No changes were made.")
		return nil
	}

	n, err := reconcile.Apply(ctx, a.store, plan, reconcile.Options{Confirmed: true})
	if err != nil {
		return err
	}
	l.Info("Reconciliation applied", zap.Int64("rows", n))
	return nil
}

// printReconcileReport logs the plan summary.
func printReconcileReport(l *zap.Logger, plan *reconcile.Plan) {
	l.Info("Reconciliation report",
		zap.String("as_of", plan.Summary.AsOf.Format(utils.DateLayout)),
		zap.Int64("candidates", plan.Summary.Candidates),
	)
}

// confirmDestructiveAction prompts the user for confirmation or uses --yes flag.
func confirmDestructiveAction() bool {
	if yesConfirm {
		fmt.Println("\n✓ Auto-confirmed via --yes flag")
		return true
	}

	fmt.Print("\n⚠️  Type 'yes' to confirm destructive actions: ")
	reader := bufio.NewReader(os.Stdin)
	response, err := reader.ReadString('\n')
	if err != nil {
		return false
	}

	return strings.TrimSpace(response) == "yes"
}
