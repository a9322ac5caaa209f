// Package etl drives parsed extract records through the inventory store.
//
// A Processor moves from idle to running and ends completed or failed. Records
// are handled one at a time, in batches that only pace the progress log.
// Each record is validated, its product type resolved, then its region,
// facility, product and inventory fact are written. A record missing a
// required field is skipped; a record the store rejects is counted as an
// error. Neither stops the run. When every record is done, inventory reported
// before the newest report date of the run is reconciled to zero stock.
package etl
