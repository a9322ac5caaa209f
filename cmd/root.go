package cmd

import (
	"fmt"
	"os"

	"medifinder-ingestor/core/logger"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// logLevel overrides log.level for a single invocation.
var logLevel string

// RootCmd represents the base command when called without any subcommands
var RootCmd = &cobra.Command{
	Use:   "medifinder-ingestor",
	Short: "Medicine inventory ingestor",
	Long: `Medifinder ingestor loads the periodic facility inventory extract into the
relational store. It resolves regions, facilities, products and product types,
upserts one inventory row per facility, product and report date, and zeroes
stock that the latest extract no longer reports.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func Execute() {
	if err := RootCmd.Execute(); err != nil {
		// Config may be what failed, so report with a fixed console logger.
		cfg := &logger.Config{
			Level:  "debug",
			Format: "console",
		}

		l, logErr := logger.New(cfg)
		if logErr == nil {
			l.Error("command failed", zap.Error(err))
			_ = l.Sync()
		} else {
			fmt.Println(err)
		}
		os.Exit(1)
	}
}

func init() {
	RootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "Log level override (DEBUG, INFO, WARNING, ERROR)")
}
