// Package config loads the ingestor configuration.
//
// Values come from struct tag defaults and the process environment. An
// optional .env file is loaded on top and wins over variables already set.
// Keys are SECTION_KEY
// (DATABASE_HOST, TUNNEL_ENABLED, STORAGE_ARCHIVE_PREFIX, ...).
//
// # Configuration Structure
//
// The Config struct has one section per component:
//   - Log: level, format and log directory
//   - Database: driver, credentials, pool size and retry policy
//   - Tunnel: optional SSH tunnel to the database host
//   - Parser: delimiter, fallback encoding and progress interval
//   - ETL: batch size
//   - Storage: MinIO/S3 credentials, bucket and archiving
//   - Lock: Redis address and key for the run lock
//   - Metrics: Prometheus textfile export
//
// # Usage
//
//	cfg, err := config.LoadConfig(".")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Println(cfg.Database.Host)
package config
