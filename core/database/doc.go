// Package database handles database connections and transactional units of work.
//
// It wraps GORM to configure postgres (the production target), mysql or sqlite
// connections from the application's configuration.
//
// # Connect
//
// Connect opens the pool, applies the pool limits and pings the server. The
// ping is retried with a fixed delay before the run is declared unavailable.
//
// # Transactions
//
// Pool.WithTx executes one unit of work on one pooled connection. Work that
// fails on a transient connectivity error (see IsTransient) is rolled back and
// rerun; exhausted attempts surface as ErrUnavailable so callers can abort.
//
// # Schema verification
//
// VerifySchema confirms the tables and columns the ingestor writes to exist.
// The ingestor does not own the schema and never migrates it.
//
// # Usage
//
//	db, err := database.Connect(cfg.Database, log)
//	if err != nil {
//	    return err
//	}
//	pool := database.NewPool(db, cfg.Database, log)
//	err = pool.WithTx(ctx, func(tx *gorm.DB) error {
//	    return tx.Create(&row).Error
//	})
package database
