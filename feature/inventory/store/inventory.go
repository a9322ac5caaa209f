package store

import (
	"context"
	"fmt"
	"time"

	"medifinder-ingestor/core/utils"
	"medifinder-ingestor/feature/inventory/models"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// inventoryKey is the natural key of an inventory fact.
var inventoryKey = []clause.Column{{Name: "center_id"}, {Name: "product_id"}, {Name: "report_date"}}

// inventoryUpdates are overwritten when an incoming fact hits an existing key.
var inventoryUpdates = []string{
	"current_stock",
	"avg_monthly_consumption",
	"accumulated_consumption_4m",
	"measurement",
	"last_month_consumption",
	"last_month_stock",
	"status_indicator",
	"cpma_12_months_ago",
	"cpma_24_months_ago",
	"cpma_36_months_ago",
	"accumulated_consumption_12m",
	"status",
	"updated_at",
}

// UpsertInventory inserts the fact or, when its (center, product, report date)
// key exists, overwrites every measurement and status field. created reports
// which of the two happened.
func (s *Store) UpsertInventory(ctx context.Context, fact models.Inventory) (created bool, err error) {
	fact.ID = 0
	fact.ReportDate = utils.DateOnly(fact.ReportDate)

	err = s.pool.WithTx(ctx, func(tx *gorm.DB) error {
		row := fact
		row.UpdatedAt = s.now()

		var existing int64
		err := tx.Model(&models.Inventory{}).
			Where("center_id = ? AND product_id = ? AND report_date = ?", row.CenterID, row.ProductID, row.ReportDate).
			Count(&existing).Error
		if err != nil {
			return fmt.Errorf("failed to look up inventory: %w", err)
		}

		err = tx.Clauses(clause.OnConflict{
			Columns:   inventoryKey,
			DoUpdates: clause.AssignmentColumns(inventoryUpdates),
		}).Create(&row).Error
		if err != nil {
			return fmt.Errorf("failed to upsert inventory for center %d product %d: %w", row.CenterID, row.ProductID, err)
		}
		created = existing == 0
		return nil
	})
	return created, err
}

// ReconcileStaleInventory zeroes the stock of every fact reported strictly
// before asOf that still shows positive stock, and marks it out of stock.
func (s *Store) ReconcileStaleInventory(ctx context.Context, asOf time.Time) (int64, error) {
	asOf = utils.DateOnly(asOf)

	var affected int64
	err := s.pool.WithTx(ctx, func(tx *gorm.DB) error {
		res := tx.Model(&models.Inventory{}).
			Where("report_date < ? AND current_stock > ?", asOf, 0).
			Updates(map[string]any{
				"current_stock":    decimal.Zero,
				"status_indicator": models.StockOutIndicator,
				"updated_at":       s.now(),
			})
		if res.Error != nil {
			return fmt.Errorf("failed to reconcile inventory before %s: %w", asOf.Format(utils.DateLayout), res.Error)
		}
		affected = res.RowsAffected
		return nil
	})
	if err != nil {
		return 0, err
	}

	s.logger.Info("Reconciled stale inventory",
		zap.String("as_of", asOf.Format(utils.DateLayout)),
		zap.Int64("rows", affected),
	)
	return affected, nil
}

// CountStaleInventory counts the facts ReconcileStaleInventory would change.
func (s *Store) CountStaleInventory(ctx context.Context, asOf time.Time) (int64, error) {
	asOf = utils.DateOnly(asOf)

	var count int64
	err := s.pool.WithTx(ctx, func(tx *gorm.DB) error {
		return tx.Model(&models.Inventory{}).
			Where("report_date < ? AND current_stock > ?", asOf, 0).
			Count(&count).Error
	})
	if err != nil {
		return 0, fmt.Errorf("failed to count stale inventory: %w", err)
	}
	return count, nil
}
