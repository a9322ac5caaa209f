package parser

// Config holds configuration for reading extracts.
type Config struct {
	// Delimiter is the single field separator character.
	Delimiter string `mapstructure:"delimiter" default:"|"`
	// Encoding is used when the file carries no byte-order mark.
	// Any WHATWG encoding label is accepted (utf-8, latin1, windows-1252, ...).
	Encoding string `mapstructure:"encoding" default:"utf-8"`
	// ProgressInterval is the number of records between progress log entries.
	ProgressInterval int `mapstructure:"progress_interval" default:"1000"`
}
