package etl

import (
	"time"

	"medifinder-ingestor/core/utils"

	"go.uber.org/zap/zapcore"
)

// State is the lifecycle of a Processor.
type State int

const (
	StateIdle State = iota
	StateRunning
	StateCompleted
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateRunning:
		return "running"
	case StateCompleted:
		return "completed"
	case StateFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// Stats counts what a run did with its records.
type Stats struct {
	// Processed records went through the whole pipeline.
	Processed int `json:"processed"`
	// Skipped records lacked a pipeline-required field.
	Skipped int `json:"skipped"`
	// Errors are records rejected by the store or by key resolution.
	Errors int `json:"errors"`

	RegionsCreated   int `json:"regions_created"`
	CentersCreated   int `json:"centers_created"`
	CentersUpdated   int `json:"centers_updated"`
	ProductsCreated  int `json:"products_created"`
	ProductsUpdated  int `json:"products_updated"`
	InventoryCreated int `json:"inventory_created"`
	InventoryUpdated int `json:"inventory_updated"`
}

// MarshalLogObject implements zapcore.ObjectMarshaler.
func (s Stats) MarshalLogObject(enc zapcore.ObjectEncoder) error {
	enc.AddInt("processed", s.Processed)
	enc.AddInt("skipped", s.Skipped)
	enc.AddInt("errors", s.Errors)
	enc.AddInt("regions_created", s.RegionsCreated)
	enc.AddInt("centers_created", s.CentersCreated)
	enc.AddInt("centers_updated", s.CentersUpdated)
	enc.AddInt("products_created", s.ProductsCreated)
	enc.AddInt("products_updated", s.ProductsUpdated)
	enc.AddInt("inventory_created", s.InventoryCreated)
	enc.AddInt("inventory_updated", s.InventoryUpdated)
	return nil
}

// Report is the outcome of one Processor run.
type Report struct {
	State State
	Stats Stats
	// Reconciled is the number of stale inventory rows zeroed.
	Reconciled int64
	// LatestReportDate is the newest report date among processed records, nil if none.
	LatestReportDate *time.Time
}

// MarshalLogObject implements zapcore.ObjectMarshaler.
func (r Report) MarshalLogObject(enc zapcore.ObjectEncoder) error {
	enc.AddString("state", r.State.String())
	enc.AddInt64("reconciled", r.Reconciled)
	if r.LatestReportDate != nil {
		enc.AddString("latest_report_date", r.LatestReportDate.Format(utils.DateLayout))
	}
	return enc.AddObject("stats", r.Stats)
}
