// Package inventory runs the ingestion of a facility inventory extract.
//
// The Service resolves the extract source (a local path or an s3:// object),
// parses it, drives the records through the store with a fresh etl.Processor,
// archives the extract and exports run metrics. Parsing, key resolution and
// reconciliation live in the parser, store, etl and reconcile subpackages.
//
// # Usage
//
//	svc := inventory.NewService(st, client, opts, log)
//	res, err := svc.Ingest(ctx, "/data/ICI_20240315.txt")
package inventory
