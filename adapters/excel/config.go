package excel

import (
	"gostatcheck/adapters/datareadiness/coercer"
)

// DefaultSheet is the worksheet read when none is configured
const DefaultSheet = "Sheet1"

// ExcelConfig holds configuration for Excel and CSV data sources
type ExcelConfig struct {
	FilePath       string                 `json:"file_path"`
	Sheet          string                 `json:"sheet"`
	CoercionConfig coercer.CoercionConfig `json:"coercion_config"`
}

// DefaultExcelConfig returns sensible defaults for Excel processing
func DefaultExcelConfig() ExcelConfig {
	return ExcelConfig{
		Sheet:          DefaultSheet,
		CoercionConfig: coercer.DefaultCoercionConfig(),
	}
}
