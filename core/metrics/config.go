package metrics

// Config holds configuration for run metrics export.
type Config struct {
	// TextfilePath is where the node_exporter textfile is written. Empty disables export.
	TextfilePath string `mapstructure:"textfile_path" default:""`
	// Namespace prefixes every metric name.
	Namespace string `mapstructure:"namespace" default:"medifinder_ingest"`
}
