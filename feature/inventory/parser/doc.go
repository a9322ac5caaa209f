// Package parser turns a delimited inventory extract into typed records.
//
// The parser is tolerant: a byte-order mark selects UTF-8 or UTF-16
// decoding, an optional header line is skipped, blank lines and stray BOM
// artifacts are ignored, and each remaining line is split with CSV quoting
// rules on the configured delimiter. Lines with fewer than 25 fields or a
// blank required position are rejected and counted; numeric and date fields
// that fail coercion become absent without rejecting the line.
//
// # Usage
//
//	p, err := parser.New(cfg.Parser, log)
//	res, err := p.Parse("/data/ICI_20240315.txt")
//	log.Info("parsed", zap.Int("records", res.Produced), zap.Int("errors", res.Errors))
package parser
