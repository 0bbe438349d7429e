package models

import "gorm.io/gorm"

// MigrateTables creates or updates every table the engine persists.
func MigrateTables(db *gorm.DB) error {
	return db.AutoMigrate(
		&Item{},
		&StockTransaction{},
		&BOMLine{},
		&CostConfigItem{},
		&ProductionCostRecord{},
		&Order{},
	)
}
