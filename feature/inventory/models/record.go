package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Column names of the extract, in file order.
const (
	ColExecutingUnit         = "nombre_ejecutora"
	ColRegion                = "diresa"
	ColCategory              = "categoria"
	ColFacilityCode          = "codpre"
	ColReporter              = "reportante"
	ColSupplyType            = "tipsum"
	ColProductCode           = "codmed"
	ColProductName           = "nombre_prod"
	ColProductType           = "tipo_prod"
	ColStock                 = "stk"
	ColAvgMonthlyConsumption = "cpma"
	ColConsumption4M         = "consumo_acum_4m"
	ColMeasurement           = "med"
	ColReportDate            = "fechareporte"
	ColStatus                = "estado"
	ColInstitution           = "institucion"
	ColReporterType          = "tipo_reportante"
	ColLastMonthConsumption  = "consumo_ult_mes"
	ColLastMonthStock        = "stk_ult_mes"
	ColIndicator             = "indicador"
	ColCPMA12MonthsAgo       = "cpma_hace_12_meses_a"
	ColCPMA24MonthsAgo       = "cpma_hace_24_meses_a"
	ColCPMA36MonthsAgo       = "cpma_hace_36_meses_a"
	ColConsumption12M        = "consumo_acum_12m"
	ColEnd                   = "fin"
)

// Columns lists every extract column in file order.
var Columns = []string{
	ColExecutingUnit, ColRegion, ColCategory, ColFacilityCode, ColReporter,
	ColSupplyType, ColProductCode, ColProductName, ColProductType, ColStock,
	ColAvgMonthlyConsumption, ColConsumption4M, ColMeasurement, ColReportDate,
	ColStatus, ColInstitution, ColReporterType, ColLastMonthConsumption,
	ColLastMonthStock, ColIndicator, ColCPMA12MonthsAgo, ColCPMA24MonthsAgo,
	ColCPMA36MonthsAgo, ColConsumption12M, ColEnd,
}

// RequiredPositions are the zero-based field positions a line must fill to become a record:
// facility name, region, category, facility code, product code, product name and product type.
var RequiredPositions = []int{0, 1, 2, 3, 6, 7, 8}

// Record is one validated line of the extract.
// Text fields are trimmed; numeric fields are absent when blank, "null" or unparsable.
type Record struct {
	// Line is the 1-based physical line number in the source file.
	Line int `col:"-"`

	ExecutingUnit string `col:"nombre_ejecutora" validate:"required"`
	Region        string `col:"diresa" validate:"required"`
	Category      string `col:"categoria" validate:"required"`
	FacilityCode  string `col:"codpre" validate:"required"`
	Reporter      string `col:"reportante"`
	SupplyType    string `col:"tipsum"`
	ProductCode   string `col:"codmed" validate:"required"`
	ProductName   string `col:"nombre_prod" validate:"required"`
	ProductType   string `col:"tipo_prod" validate:"required"`

	Stock                 decimal.NullDecimal `col:"stk" validate:"required"`
	AvgMonthlyConsumption decimal.NullDecimal `col:"cpma"`
	Consumption4M         decimal.NullDecimal `col:"consumo_acum_4m"`
	Measurement           decimal.NullDecimal `col:"med"`

	ReportDate   *time.Time `col:"fechareporte" validate:"required"`
	Status       string     `col:"estado"`
	Institution  string     `col:"institucion"`
	ReporterType string     `col:"tipo_reportante"`

	LastMonthConsumption decimal.NullDecimal `col:"consumo_ult_mes"`
	LastMonthStock       decimal.NullDecimal `col:"stk_ult_mes"`
	Indicator            string              `col:"indicador"`
	CPMA12MonthsAgo      decimal.NullDecimal `col:"cpma_hace_12_meses_a"`
	CPMA24MonthsAgo      decimal.NullDecimal `col:"cpma_hace_24_meses_a"`
	CPMA36MonthsAgo      decimal.NullDecimal `col:"cpma_hace_36_meses_a"`
	Consumption12M       decimal.NullDecimal `col:"consumo_acum_12m"`
	End                  string              `col:"fin"`
}
