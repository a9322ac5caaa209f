// Package utils provides small coercion helpers shared by the ingestion packages.
// It covers null-token detection, locale-tolerant decimal parsing and date-only
// normalization of timestamps.
package utils
