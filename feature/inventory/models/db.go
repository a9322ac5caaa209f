package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Product type codes accepted by the store.
const (
	ProductTypeMedicine   = "M"
	ProductTypeInstrument = "I"
)

// Defaults applied when a record leaves the field blank.
const (
	DefaultStatus = "ACTIVO"
	// StockOutIndicator marks an inventory row zeroed by reconciliation.
	StockOutIndicator = "Desabastecido"
)

// SeedProductTypes are the product types inserted on demand.
var SeedProductTypes = []ProductType{
	{Code: ProductTypeMedicine, Name: "Medicine"},
	{Code: ProductTypeInstrument, Name: "Instrument/Supply"},
}

// Region is an administrative health region. Rows are never updated.
type Region struct {
	ID   int64  `gorm:"column:region_id;primaryKey;autoIncrement"`
	Name string `gorm:"column:name;size:255;not null;uniqueIndex"`
}

// TableName overrides the table name used by Region to `regions`
func (Region) TableName() string {
	return "regions"
}

// MedicalCenter is a reporting facility identified by its facility code.
type MedicalCenter struct {
	ID              int64     `gorm:"column:center_id;primaryKey;autoIncrement"`
	Code            string    `gorm:"column:code;size:64;not null;uniqueIndex"`
	Name            string    `gorm:"column:name;size:255"`
	RegionID        int64     `gorm:"column:region_id;not null"`
	Category        string    `gorm:"column:category;size:64"`
	ReporterName    string    `gorm:"column:reporter_name;size:255"`
	InstitutionType string    `gorm:"column:institution_type;size:64"`
	ReporterType    string    `gorm:"column:reporter_type;size:64"`
	UpdatedAt       time.Time `gorm:"column:updated_at"`
}

// TableName overrides the table name used by MedicalCenter to `medical_centers`
func (MedicalCenter) TableName() string {
	return "medical_centers"
}

// ProductType classifies products (medicine or instrument/supply).
type ProductType struct {
	ID   int64  `gorm:"column:type_id;primaryKey;autoIncrement"`
	Code string `gorm:"column:code;size:8;not null;uniqueIndex"`
	Name string `gorm:"column:name;size:64"`
}

// TableName overrides the table name used by ProductType to `product_types`
func (ProductType) TableName() string {
	return "product_types"
}

// Product is a catalog item identified by its product code.
type Product struct {
	ID        int64     `gorm:"column:product_id;primaryKey;autoIncrement"`
	Code      string    `gorm:"column:code;size:64;not null;uniqueIndex"`
	Name      string    `gorm:"column:name;size:512"`
	TypeID    int64     `gorm:"column:type_id;not null"`
	UpdatedAt time.Time `gorm:"column:updated_at"`
}

// TableName overrides the table name used by Product to `products`
func (Product) TableName() string {
	return "products"
}

// Inventory is the stock and consumption snapshot of one product at one
// facility on one report date.
type Inventory struct {
	ID                        int64               `gorm:"column:inventory_id;primaryKey;autoIncrement"`
	CenterID                  int64               `gorm:"column:center_id;not null;uniqueIndex:idx_inventory_key"`
	ProductID                 int64               `gorm:"column:product_id;not null;uniqueIndex:idx_inventory_key"`
	ReportDate                time.Time           `gorm:"column:report_date;type:date;not null;uniqueIndex:idx_inventory_key"`
	CurrentStock              decimal.Decimal     `gorm:"column:current_stock;type:numeric(20,4);not null"`
	AvgMonthlyConsumption     decimal.NullDecimal `gorm:"column:avg_monthly_consumption;type:numeric(20,4)"`
	AccumulatedConsumption4M  decimal.NullDecimal `gorm:"column:accumulated_consumption_4m;type:numeric(20,4)"`
	Measurement               decimal.NullDecimal `gorm:"column:measurement;type:numeric(20,4)"`
	LastMonthConsumption      decimal.NullDecimal `gorm:"column:last_month_consumption;type:numeric(20,4)"`
	LastMonthStock            decimal.NullDecimal `gorm:"column:last_month_stock;type:numeric(20,4)"`
	StatusIndicator           string              `gorm:"column:status_indicator;size:64"`
	CPMA12MonthsAgo           decimal.NullDecimal `gorm:"column:cpma_12_months_ago;type:numeric(20,4)"`
	CPMA24MonthsAgo           decimal.NullDecimal `gorm:"column:cpma_24_months_ago;type:numeric(20,4)"`
	CPMA36MonthsAgo           decimal.NullDecimal `gorm:"column:cpma_36_months_ago;type:numeric(20,4)"`
	AccumulatedConsumption12M decimal.NullDecimal `gorm:"column:accumulated_consumption_12m;type:numeric(20,4)"`
	Status                    string              `gorm:"column:status;size:32"`
	UpdatedAt                 time.Time           `gorm:"column:updated_at"`
}

// TableName overrides the table name used by Inventory to `inventory`
func (Inventory) TableName() string {
	return "inventory"
}

// All returns every persisted model, in dependency order.
func All() []any {
	return []any{&Region{}, &ProductType{}, &MedicalCenter{}, &Product{}, &Inventory{}}
}
