package config

// MetricsConfig controls the Prometheus textfile written after each command.
type MetricsConfig struct {
	// Textfile is the path handed to the node exporter textfile collector.
	// Empty disables the export.
	Textfile string `json:"textfile"`
}
