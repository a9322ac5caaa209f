package store

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"medifinder-ingestor/feature/inventory/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type typeLookup struct {
	id    int64
	found bool
}

// ResolveProductType returns the id of the product type with the given code.
// On a miss it seeds the known types (ignoring ones already present) and looks
// up once more; ok is false when the code is still unknown.
func (s *Store) ResolveProductType(ctx context.Context, code string) (id int64, ok bool, err error) {
	code = strings.TrimSpace(code)
	if code == "" {
		return 0, false, nil
	}
	if cached, hit := s.types.Load(code); hit {
		return cached.(int64), true, nil
	}

	v, err, _ := s.sf.Do(code, func() (any, error) {
		var res typeLookup
		err := s.pool.WithTx(ctx, func(tx *gorm.DB) error {
			res = typeLookup{}
			lookup := func() error {
				var pt models.ProductType
				err := tx.Where("code = ?", code).First(&pt).Error
				if err == nil {
					res = typeLookup{id: pt.ID, found: true}
					return nil
				}
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return nil
				}
				return fmt.Errorf("failed to look up product type %q: %w", code, err)
			}

			if err := lookup(); err != nil || res.found {
				return err
			}

			seed := append([]models.ProductType(nil), models.SeedProductTypes...)
			err := tx.Clauses(clause.OnConflict{
				Columns:   []clause.Column{{Name: "code"}},
				DoNothing: true,
			}).Create(&seed).Error
			if err != nil {
				return fmt.Errorf("failed to seed product types: %w", err)
			}
			return lookup()
		})
		if err != nil {
			return nil, err
		}
		if res.found {
			s.types.Store(code, res.id)
		}
		return res, nil
	})
	if err != nil {
		return 0, false, err
	}

	res := v.(typeLookup)
	return res.id, res.found, nil
}
