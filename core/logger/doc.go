// Package logger provides a structured logging facility based on Zap.
//
// A logger is built once per run from Config and passed explicitly to every
// component that logs. Nothing in the module reaches for a global logger.
//
// # Configuration
//
// The package supports configuration for:
//   - Level: debug, info, warning, error (the CLI selector values)
//   - Format: console or json
//   - Directory: where the per-run log file is written
//
// # Run correlation
//
// WithRunID attaches the run identifier so every entry of a single ingestion
// can be correlated across the console and the run log file.
//
// # Usage
//
//	log, _ := logger.New(&logger.Config{Level: "info", Format: "console"})
//	log = logger.WithRunID(log, runID)
//	log.Info("Ingestion started")
package logger
