package etl

// Config holds configuration for the orchestrator.
type Config struct {
	// BatchSize is the number of records between progress log entries.
	BatchSize int `mapstructure:"batch_size" default:"1000"`
}
