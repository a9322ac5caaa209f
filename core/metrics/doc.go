// Package metrics exports the outcome of a batch run as Prometheus gauges.
//
// A batch job has no scrape endpoint, so the Recorder writes its registry to a
// textfile picked up by node_exporter's textfile collector.
package metrics
