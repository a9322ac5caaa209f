package inventory

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"time"

	"medifinder-ingestor/core/logger"
	"medifinder-ingestor/core/metrics"
	"medifinder-ingestor/core/storage"
	"medifinder-ingestor/core/utils"
	"medifinder-ingestor/feature/inventory/etl"
	"medifinder-ingestor/feature/inventory/parser"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// ErrStorageDisabled is returned for s3:// sources when no storage client is configured.
var ErrStorageDisabled = errors.New("object storage is not configured")

// Options groups the settings an ingestion run needs.
type Options struct {
	Parser  parser.Config
	ETL     etl.Config
	Storage storage.Config
	Metrics metrics.Config
}

// Result describes one ingestion run.
type Result struct {
	RunID  string
	Source string
	// Parsed is the number of records the parser produced.
	Parsed int
	// LineErrors is the number of lines the parser rejected.
	LineErrors int
	Report     *etl.Report
	// ArchivedAs is the object key of the archived extract, empty when not archived.
	ArchivedAs string
}

// Service handles ingestion runs.
type Service struct {
	store  etl.Store
	client storage.Client
	opts   Options
	logger *zap.Logger
	now    func() time.Time
}

// NewService creates a new ingestion service. client may be nil when object
// storage is disabled.
func NewService(st etl.Store, client storage.Client, opts Options, logger *zap.Logger) *Service {
	return &Service{
		store:  st,
		client: client,
		opts:   opts,
		logger: logger,
		now:    time.Now,
	}
}

// Ingest loads one extract: it parses the source, drives the records through
// the store, reconciles stale stock, archives the extract and exports metrics.
// An error means the run was aborted; per-line and per-record problems only
// show up in the counts.
func (s *Service) Ingest(ctx context.Context, source string) (*Result, error) {
	res := &Result{RunID: uuid.NewString(), Source: source}
	log := logger.WithRunID(s.logger, res.RunID)
	started := s.now()
	rec := metrics.NewRecorder(s.opts.Metrics)

	log.Info("Ingestion started", zap.String("source", source))

	err := s.ingest(ctx, log, source, res)
	s.observe(log, rec, res, started, err == nil)
	if err != nil {
		return res, err
	}

	log.Info("Ingestion finished",
		zap.Int("parsed", res.Parsed),
		zap.Int("line_errors", res.LineErrors),
		zap.Object("report", res.Report),
		zap.Duration("elapsed", s.now().Sub(started)),
	)
	return res, nil
}

func (s *Service) ingest(ctx context.Context, log *zap.Logger, source string, res *Result) error {
	local, cleanup, err := s.fetch(ctx, source)
	if err != nil {
		return err
	}
	defer cleanup()

	p, err := parser.New(s.opts.Parser, log)
	if err != nil {
		return fmt.Errorf("invalid parser configuration: %w", err)
	}
	parsed, err := p.Parse(local)
	if err != nil {
		return err
	}
	res.Parsed, res.LineErrors = parsed.Produced, parsed.Errors

	report, err := etl.NewProcessor(s.store, s.opts.ETL, log).Run(ctx, parsed.Records)
	res.Report = report
	if err != nil {
		return err
	}

	if s.opts.Storage.Archive && s.client != nil {
		key := s.archiveKey(res.RunID, source)
		if err := storage.Upload(ctx, s.client, s.opts.Storage.Bucket, key, local); err != nil {
			log.Warn("Failed to archive extract", zap.String("key", key), zap.Error(err))
		} else {
			res.ArchivedAs = key
			log.Info("Archived extract", zap.String("bucket", s.opts.Storage.Bucket), zap.String("key", key))
		}
	}
	return nil
}

// fetch returns a local path for source, downloading s3:// objects first.
func (s *Service) fetch(ctx context.Context, source string) (string, func(), error) {
	bucket, key, ok := storage.ParseURI(source)
	if !ok {
		if _, err := os.Stat(source); err != nil {
			return "", func() {}, fmt.Errorf("source file not readable: %w", err)
		}
		return source, func() {}, nil
	}
	if s.client == nil {
		return "", func() {}, fmt.Errorf("%w: cannot read %s", ErrStorageDisabled, source)
	}

	local, err := storage.Download(ctx, s.client, bucket, key, "")
	if err != nil {
		return "", func() {}, err
	}
	return local, func() { _ = os.Remove(local) }, nil
}

func (s *Service) archiveKey(runID, source string) string {
	base := filepath.Base(source)
	if _, key, ok := storage.ParseURI(source); ok {
		base = path.Base(key)
	}
	day := s.now().UTC().Format(utils.DateLayout)
	return path.Join(s.opts.Storage.ArchivePrefix, day, runID+"-"+base)
}

func (s *Service) observe(log *zap.Logger, rec *metrics.Recorder, res *Result, started time.Time, ok bool) {
	rec.SetRecords("parsed", res.Parsed)
	rec.SetRecords("line_errors", res.LineErrors)
	if r := res.Report; r != nil {
		rec.SetRecords("processed", r.Stats.Processed)
		rec.SetRecords("skipped", r.Stats.Skipped)
		rec.SetRecords("errors", r.Stats.Errors)
		rec.SetEntities("region", "created", r.Stats.RegionsCreated)
		rec.SetEntities("medical_center", "created", r.Stats.CentersCreated)
		rec.SetEntities("medical_center", "updated", r.Stats.CentersUpdated)
		rec.SetEntities("product", "created", r.Stats.ProductsCreated)
		rec.SetEntities("product", "updated", r.Stats.ProductsUpdated)
		rec.SetEntities("inventory", "created", r.Stats.InventoryCreated)
		rec.SetEntities("inventory", "updated", r.Stats.InventoryUpdated)
		rec.SetReconciled(r.Reconciled)
	}
	rec.Finish(started, s.now(), ok)

	if err := rec.Flush(); err != nil {
		log.Warn("Failed to export metrics", zap.Error(err))
	}
}
