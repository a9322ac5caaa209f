package etl

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"medifinder-ingestor/feature/inventory/models"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
)

// ErrValidation marks a record missing a field the pipeline needs. Such records are skipped.
var ErrValidation = errors.New("record validation failed")

func newValidator() *validator.Validate {
	v := validator.New()

	// Report the extract column name instead of the Go field name.
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("col"), ",", 2)[0]
		if name == "-" || name == "" {
			return fld.Name
		}
		return name
	})

	// An absent decimal validates like a nil value.
	v.RegisterCustomTypeFunc(func(field reflect.Value) any {
		if d, ok := field.Interface().(decimal.NullDecimal); ok && d.Valid {
			return d.Decimal.String()
		}
		return nil
	}, decimal.NullDecimal{})

	return v
}

// validateRecord checks the pipeline-required fields and names every missing one.
func validateRecord(v *validator.Validate, rec *models.Record) error {
	err := v.Struct(rec)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return fmt.Errorf("%w: %v", ErrValidation, err)
	}
	missing := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		missing = append(missing, fe.Field())
	}
	return fmt.Errorf("%w: missing %s", ErrValidation, strings.Join(missing, ", "))
}
