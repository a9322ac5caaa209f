package store

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"medifinder-ingestor/core/database"
	"medifinder-ingestor/core/utils"
	"medifinder-ingestor/feature/inventory/models"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
	"gorm.io/gorm"
)

var (
	// ErrInvalidRegion rejects blank or null-token region names before touching the database.
	ErrInvalidRegion = errors.New("invalid region name")
	// ErrUnknownProductType is returned by callers when ResolveProductType finds no match.
	ErrUnknownProductType = errors.New("unknown product type")
)

// FacilityData carries the authoritative attributes of a medical center sighting.
type FacilityData struct {
	Code            string
	Name            string
	RegionID        int64
	Category        string
	ReporterName    string
	InstitutionType string
	ReporterType    string
}

// ProductData carries the authoritative attributes of a product sighting.
type ProductData struct {
	Code   string
	Name   string
	TypeID int64
}

// Store resolves natural keys to surrogate ids and upserts inventory facts.
// Every method is one transactional unit on the pool.
type Store struct {
	pool   *database.Pool
	logger *zap.Logger
	now    func() time.Time

	regions sync.Map // name -> int64
	types   sync.Map // code -> int64
	sf      singleflight.Group
}

// New creates a Store over the pool.
func New(pool *database.Pool, logger *zap.Logger) *Store {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Store{
		pool:   pool,
		logger: logger,
		now:    func() time.Time { return time.Now().UTC() },
	}
}

// ResolveRegion returns the id of the region with the given name, creating it when absent.
// Regions are immutable, so resolved ids are cached for the life of the Store.
func (s *Store) ResolveRegion(ctx context.Context, name string) (id int64, created bool, err error) {
	name = strings.TrimSpace(name)
	if utils.IsNullToken(name) {
		return 0, false, fmt.Errorf("%w: %q", ErrInvalidRegion, name)
	}
	if cached, ok := s.regions.Load(name); ok {
		return cached.(int64), false, nil
	}

	err = s.pool.WithTx(ctx, func(tx *gorm.DB) error {
		var region models.Region
		err := tx.Where("name = ?", name).First(&region).Error
		if err == nil {
			id, created = region.ID, false
			return nil
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("failed to look up region %q: %w", name, err)
		}

		region = models.Region{Name: name}
		if err := tx.Create(&region).Error; err != nil {
			return fmt.Errorf("failed to create region %q: %w", name, err)
		}
		id, created = region.ID, true
		return nil
	})
	if err != nil {
		return 0, false, err
	}

	s.regions.Store(name, id)
	if created {
		s.logger.Debug("Created region", zap.String("name", name), zap.Int64("region_id", id))
	}
	return id, created, nil
}

// ResolveFacility looks up a medical center by code. An existing row has every
// mutable attribute overwritten; a missing one is inserted.
func (s *Store) ResolveFacility(ctx context.Context, data FacilityData) (id int64, created bool, err error) {
	code := strings.TrimSpace(data.Code)
	err = s.pool.WithTx(ctx, func(tx *gorm.DB) error {
		now := s.now()
		var center models.MedicalCenter
		err := tx.Where("code = ?", code).First(&center).Error
		switch {
		case err == nil:
			err = tx.Model(&center).Updates(map[string]any{
				"name":             data.Name,
				"region_id":        data.RegionID,
				"category":         data.Category,
				"reporter_name":    data.ReporterName,
				"institution_type": data.InstitutionType,
				"reporter_type":    data.ReporterType,
				"updated_at":       now,
			}).Error
			if err != nil {
				return fmt.Errorf("failed to update medical center %s: %w", code, err)
			}
			id, created = center.ID, false
			return nil
		case errors.Is(err, gorm.ErrRecordNotFound):
			center = models.MedicalCenter{
				Code:            code,
				Name:            data.Name,
				RegionID:        data.RegionID,
				Category:        data.Category,
				ReporterName:    data.ReporterName,
				InstitutionType: data.InstitutionType,
				ReporterType:    data.ReporterType,
				UpdatedAt:       now,
			}
			if err := tx.Create(&center).Error; err != nil {
				return fmt.Errorf("failed to create medical center %s: %w", code, err)
			}
			id, created = center.ID, true
			return nil
		default:
			return fmt.Errorf("failed to look up medical center %s: %w", code, err)
		}
	})
	if err != nil {
		return 0, false, err
	}
	return id, created, nil
}

// ResolveProduct looks up a product by code with the same overwrite-or-insert
// semantics as ResolveFacility.
func (s *Store) ResolveProduct(ctx context.Context, data ProductData) (id int64, created bool, err error) {
	code := strings.TrimSpace(data.Code)
	err = s.pool.WithTx(ctx, func(tx *gorm.DB) error {
		now := s.now()
		var product models.Product
		err := tx.Where("code = ?", code).First(&product).Error
		switch {
		case err == nil:
			err = tx.Model(&product).Updates(map[string]any{
				"name":       data.Name,
				"type_id":    data.TypeID,
				"updated_at": now,
			}).Error
			if err != nil {
				return fmt.Errorf("failed to update product %s: %w", code, err)
			}
			id, created = product.ID, false
			return nil
		case errors.Is(err, gorm.ErrRecordNotFound):
			product = models.Product{Code: code, Name: data.Name, TypeID: data.TypeID, UpdatedAt: now}
			if err := tx.Create(&product).Error; err != nil {
				return fmt.Errorf("failed to create product %s: %w", code, err)
			}
			id, created = product.ID, true
			return nil
		default:
			return fmt.Errorf("failed to look up product %s: %w", code, err)
		}
	})
	if err != nil {
		return 0, false, err
	}
	return id, created, nil
}
