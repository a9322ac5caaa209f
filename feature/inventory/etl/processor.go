package etl

import (
	"context"
	"errors"
	"fmt"
	"time"

	"medifinder-ingestor/core/database"
	"medifinder-ingestor/core/utils"
	"medifinder-ingestor/feature/inventory/models"
	"medifinder-ingestor/feature/inventory/store"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// ErrAlreadyRun is returned when Run is called on a Processor that left the idle state.
var ErrAlreadyRun = errors.New("processor has already run")

// Store is the persistence the orchestrator drives records through.
type Store interface {
	ResolveRegion(ctx context.Context, name string) (int64, bool, error)
	ResolveProductType(ctx context.Context, code string) (int64, bool, error)
	ResolveFacility(ctx context.Context, data store.FacilityData) (int64, bool, error)
	ResolveProduct(ctx context.Context, data store.ProductData) (int64, bool, error)
	UpsertInventory(ctx context.Context, fact models.Inventory) (bool, error)
	ReconcileStaleInventory(ctx context.Context, asOf time.Time) (int64, error)
}

// Processor runs one extract through the store. It is single use: a second
// Run returns ErrAlreadyRun.
type Processor struct {
	store    Store
	cfg      Config
	logger   *zap.Logger
	validate *validator.Validate
	now      func() time.Time

	state  State
	stats  Stats
	latest *time.Time
}

// NewProcessor creates an idle Processor.
func NewProcessor(st Store, cfg Config, logger *zap.Logger) *Processor {
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = 1000
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Processor{
		store:    st,
		cfg:      cfg,
		logger:   logger,
		validate: newValidator(),
		now:      time.Now,
		state:    StateIdle,
	}
}

// State returns the current lifecycle state.
func (p *Processor) State() State {
	return p.state
}

// Run processes every record, then reconciles stale inventory against the
// newest report date seen. Per-record failures are counted and logged; an
// unavailable database or a cancelled context stops the run and is returned
// together with the partial report.
func (p *Processor) Run(ctx context.Context, records []models.Record) (*Report, error) {
	if p.state != StateIdle {
		return nil, ErrAlreadyRun
	}
	p.state = StateRunning

	total := len(records)
	p.logger.Info("Starting ETL process", zap.Int("records", total), zap.Int("batch_size", p.cfg.BatchSize))

	for start := 0; start < total; start += p.cfg.BatchSize {
		end := min(start+p.cfg.BatchSize, total)
		if err := p.processBatch(ctx, records[start:end]); err != nil {
			return p.fail(err)
		}
		p.logger.Info("Processed batch", zap.Int("done", end), zap.Int("total", total))
	}

	reconciled, err := p.reconcile(ctx)
	if err != nil {
		return p.fail(err)
	}

	p.state = StateCompleted
	report := p.report(reconciled)
	p.logger.Info("ETL process completed", zap.Object("report", report))
	return report, nil
}

func (p *Processor) fail(err error) (*Report, error) {
	p.state = StateFailed
	report := p.report(0)
	p.logger.Error("ETL process aborted", zap.Object("report", report), zap.Error(err))
	return report, err
}

func (p *Processor) report(reconciled int64) *Report {
	r := &Report{State: p.state, Stats: p.stats, Reconciled: reconciled}
	if p.latest != nil {
		latest := *p.latest
		r.LatestReportDate = &latest
	}
	return r
}

func (p *Processor) processBatch(ctx context.Context, batch []models.Record) error {
	for i := range batch {
		if err := ctx.Err(); err != nil {
			return err
		}

		rec := &batch[i]
		err := p.processRecord(ctx, rec)
		switch {
		case err == nil:
			p.stats.Processed++
		case isFatal(err):
			return fmt.Errorf("record at line %d: %w", rec.Line, err)
		case errors.Is(err, ErrValidation):
			p.stats.Skipped++
			p.logger.Warn("Skipping record", zap.Int("line", rec.Line), zap.Error(err))
		default:
			p.stats.Errors++
			p.logger.Error("Error processing record", zap.Int("line", rec.Line), zap.Error(err))
			p.logger.Debug("Record data", zap.Int("line", rec.Line), zap.Any("record", rec))
		}
	}
	return nil
}

// processRecord resolves the product type before any region, facility or
// product write, so a record with an unknown type leaves no trace.
func (p *Processor) processRecord(ctx context.Context, rec *models.Record) error {
	if err := validateRecord(p.validate, rec); err != nil {
		return err
	}

	typeID, ok, err := p.store.ResolveProductType(ctx, rec.ProductType)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("%w: %q", store.ErrUnknownProductType, rec.ProductType)
	}

	regionID, created, err := p.store.ResolveRegion(ctx, rec.Region)
	if err != nil {
		return err
	}
	if created {
		p.stats.RegionsCreated++
	}

	centerID, created, err := p.store.ResolveFacility(ctx, store.FacilityData{
		Code:            rec.FacilityCode,
		Name:            rec.ExecutingUnit,
		RegionID:        regionID,
		Category:        rec.Category,
		ReporterName:    rec.Reporter,
		InstitutionType: rec.Institution,
		ReporterType:    rec.ReporterType,
	})
	if err != nil {
		return err
	}
	if created {
		p.stats.CentersCreated++
	} else {
		p.stats.CentersUpdated++
	}

	productID, created, err := p.store.ResolveProduct(ctx, store.ProductData{
		Code:   rec.ProductCode,
		Name:   rec.ProductName,
		TypeID: typeID,
	})
	if err != nil {
		return err
	}
	if created {
		p.stats.ProductsCreated++
	} else {
		p.stats.ProductsUpdated++
	}

	created, err = p.store.UpsertInventory(ctx, p.fact(rec, centerID, productID))
	if err != nil {
		return err
	}
	if created {
		p.stats.InventoryCreated++
	} else {
		p.stats.InventoryUpdated++
	}

	if rec.ReportDate != nil && (p.latest == nil || rec.ReportDate.After(*p.latest)) {
		latest := *rec.ReportDate
		p.latest = &latest
	}
	return nil
}

// fact maps a record onto an inventory row, filling the report date, status
// and stock defaults.
func (p *Processor) fact(rec *models.Record, centerID, productID int64) models.Inventory {
	reportDate := utils.DateOnly(p.now())
	if rec.ReportDate != nil {
		reportDate = *rec.ReportDate
	}
	status := rec.Status
	if status == "" {
		status = models.DefaultStatus
	}
	stock := decimal.Zero
	if rec.Stock.Valid {
		stock = rec.Stock.Decimal
	}

	return models.Inventory{
		CenterID:                  centerID,
		ProductID:                 productID,
		ReportDate:                reportDate,
		CurrentStock:              stock,
		AvgMonthlyConsumption:     rec.AvgMonthlyConsumption,
		AccumulatedConsumption4M:  rec.Consumption4M,
		Measurement:               rec.Measurement,
		LastMonthConsumption:      rec.LastMonthConsumption,
		LastMonthStock:            rec.LastMonthStock,
		StatusIndicator:           rec.Indicator,
		CPMA12MonthsAgo:           rec.CPMA12MonthsAgo,
		CPMA24MonthsAgo:           rec.CPMA24MonthsAgo,
		CPMA36MonthsAgo:           rec.CPMA36MonthsAgo,
		AccumulatedConsumption12M: rec.Consumption12M,
		Status:                    status,
	}
}

// reconcile zeroes stale stock. A run without any dated record skips it.
// Only an unavailable database fails the run; other reconciliation errors are
// logged and leave the count at zero.
func (p *Processor) reconcile(ctx context.Context) (int64, error) {
	if p.latest == nil {
		p.logger.Warn("No report date tracked, skipping reconciliation")
		return 0, nil
	}

	n, err := p.store.ReconcileStaleInventory(ctx, *p.latest)
	if err != nil {
		if isFatal(err) {
			return 0, err
		}
		p.logger.Error("Reconciliation failed", zap.Time("as_of", *p.latest), zap.Error(err))
		return 0, nil
	}
	return n, nil
}

func isFatal(err error) bool {
	return errors.Is(err, database.ErrUnavailable) ||
		errors.Is(err, context.Canceled) ||
		errors.Is(err, context.DeadlineExceeded)
}
