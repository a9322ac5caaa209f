package database

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

type schemaRegion struct {
	ID   int64  `gorm:"column:region_id;primaryKey"`
	Name string `gorm:"column:name"`
}

func (schemaRegion) TableName() string { return "regions" }

type schemaRegionWide struct {
	ID   int64  `gorm:"column:region_id;primaryKey"`
	Name string `gorm:"column:name"`
	Code string `gorm:"column:code"`
}

func (schemaRegionWide) TableName() string { return "regions" }

type schemaMissing struct {
	ID int64 `gorm:"primaryKey"`
}

func (schemaMissing) TableName() string { return "not_there" }

func TestVerifySchema(t *testing.T) {
	db, err := gorm.Open(sqlite.Open(fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&schemaRegion{}))

	t.Run("Matches", func(t *testing.T) {
		assert.NoError(t, VerifySchema(db, &schemaRegion{}))
	})

	t.Run("MissingColumn", func(t *testing.T) {
		err := VerifySchema(db, &schemaRegionWide{})
		assert.ErrorIs(t, err, ErrSchemaMismatch)
		assert.Contains(t, err.Error(), "regions.code")
	})

	t.Run("MissingTable", func(t *testing.T) {
		err := VerifySchema(db, &schemaRegion{}, &schemaMissing{})
		assert.ErrorIs(t, err, ErrSchemaMismatch)
		assert.Contains(t, err.Error(), "not_there")
	})
}
