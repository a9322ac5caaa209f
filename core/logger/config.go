package logger

// Config holds configuration for the logger.
type Config struct {
	// Level is the minimum enabled level (debug, info, warning, error).
	Level string `mapstructure:"level" default:"info"`
	// Format is the output encoding (console, json).
	Format string `mapstructure:"format" default:"console"`
	// Directory receives one log file per run. Empty disables file output.
	Directory string `mapstructure:"directory" default:"logs"`
}
