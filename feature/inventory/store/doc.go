// Package store resolves the natural keys of an extract record (region name,
// facility code, product code, product type code) into surrogate ids and
// upserts inventory facts.
//
// Facilities and products follow last-write-wins: each sighting overwrites
// the stored attributes. Regions are created on first sight and never change.
// Every operation is its own transaction through database.Pool, so a record
// that fails halfway may leave its facility or product committed without the
// inventory fact.
package store
