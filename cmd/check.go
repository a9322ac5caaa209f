package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"medifinder-ingestor/core/storage"
	"medifinder-ingestor/feature/inventory/parser"

	"github.com/minio/minio-go/v7"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	fixFlag  bool
	jsonFlag bool
)

// checkResult is the outcome of one preflight check.
type checkResult struct {
	Name   string `json:"name"`
	OK     bool   `json:"ok"`
	Detail string `json:"detail,omitempty"`
}

// checkCmd verifies that an ingestion run could start.
var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Verify configuration, database schema and storage before a run",
	Long: `Runs the same startup as ingest (config, tunnel, database connection and
schema verification, run lock) and then checks the parser settings and,
when storage is enabled, the archive bucket.

Use --fix to create a missing archive bucket.`,
	Args: cobra.NoArgs,
	RunE: runCheck,
}

func init() {
	checkCmd.Flags().BoolVar(&fixFlag, "fix", false, "Create the archive bucket when it is missing")
	checkCmd.Flags().BoolVar(&jsonFlag, "json", false, "Print the results as JSON")
	RootCmd.AddCommand(checkCmd)
}

func runCheck(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	a, err := bootstrap(ctx)
	defer a.Close()
	if err != nil {
		return err
	}

	results := []checkResult{
		{Name: "database", OK: true, Detail: a.cfg.Database.Driver},
		{Name: "lock", OK: true, Detail: lockDetail(a.runLock.Enabled())},
	}

	if _, err := parser.New(a.cfg.Parser, a.logger); err != nil {
		results = append(results, checkResult{Name: "parser", Detail: err.Error()})
	} else {
		results = append(results, checkResult{Name: "parser", OK: true})
	}

	if a.cfg.Storage.Enabled {
		client, err := storage.NewClient(a.cfg.Storage)
		if err != nil {
			return fmt.Errorf("failed to create storage client: %w", err)
		}
		results = append(results, checkBucket(ctx, client, a.cfg.Storage.Bucket, fixFlag, a.logger))
	}

	failed := 0
	for _, r := range results {
		if !r.OK {
			failed++
		}
	}

	if jsonFlag {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(results); err != nil {
			return err
		}
	} else {
		for _, r := range results {
			fields := []zap.Field{zap.String("check", r.Name), zap.String("detail", r.Detail)}
			if r.OK {
				a.logger.Info("Check passed", fields...)
			} else {
				a.logger.Error("Check failed", fields...)
			}
		}
	}

	if failed > 0 {
		return fmt.Errorf("%d check(s) failed", failed)
	}
	return nil
}

// checkBucket verifies the archive bucket, creating it when fix is set.
func checkBucket(ctx context.Context, client storage.Client, bucket string, fix bool, l *zap.Logger) checkResult {
	res := checkResult{Name: "storage", Detail: bucket}

	exists, err := client.BucketExists(ctx, bucket)
	if err != nil {
		res.Detail = fmt.Sprintf("failed to check bucket %s: %v", bucket, err)
		return res
	}
	if exists {
		res.OK = true
		return res
	}
	if !fix {
		res.Detail = fmt.Sprintf("bucket %s does not exist (use --fix)", bucket)
		return res
	}

	if err := client.MakeBucket(ctx, bucket, minio.MakeBucketOptions{}); err != nil {
		res.Detail = fmt.Sprintf("failed to create bucket %s: %v", bucket, err)
		return res
	}
	l.Info("Created archive bucket", zap.String("bucket", bucket))
	res.OK = true
	return res
}

func lockDetail(enabled bool) string {
	if enabled {
		return "redis"
	}
	return "disabled"
}
