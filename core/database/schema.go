package database

import (
	"fmt"

	"gorm.io/gorm"
)

// VerifySchema checks that every table and column mapped by the given models
// exists in the connected database. It never creates or alters anything.
func VerifySchema(db *gorm.DB, models ...any) error {
	migrator := db.Migrator()
	for _, model := range models {
		stmt := &gorm.Statement{DB: db}
		if err := stmt.Parse(model); err != nil {
			return fmt.Errorf("failed to parse model %T: %w", model, err)
		}
		table := stmt.Schema.Table

		if !migrator.HasTable(model) {
			return fmt.Errorf("%w: table %s is missing", ErrSchemaMismatch, table)
		}
		for _, column := range stmt.Schema.DBNames {
			if !migrator.HasColumn(model, column) {
				return fmt.Errorf("%w: column %s.%s is missing", ErrSchemaMismatch, table, column)
			}
		}
	}
	return nil
}
