package models

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// BOMLine maps one material requirement of a finished product. The
// (ProductCode, MaterialCode) pair is unique; re-importing a pair overwrites
// the line instead of duplicating it.
type BOMLine struct {
	ID           int             `gorm:"primary_key" json:"id"`
	ProductCode  string          `gorm:"uniqueIndex:idx_bom_product_material,priority:1;size:100;not null" json:"product_code"`
	MaterialCode string          `gorm:"uniqueIndex:idx_bom_product_material,priority:2;size:100;not null" json:"material_code"`
	RequiredQty  decimal.Decimal `gorm:"type:decimal(20,4);not null" json:"required_qty"`
	Unit         string          `gorm:"size:20" json:"unit"`
	Notes        string          `gorm:"type:text" json:"notes"`
	CreatedAt    time.Time       `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt    time.Time       `gorm:"autoUpdateTime" json:"updated_at"`
}

// UpsertBOMLine inserts or overwrites the unique (product, material) line.
func UpsertBOMLine(db *gorm.DB, line *BOMLine) error {
	return db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "product_code"}, {Name: "material_code"}},
		DoUpdates: clause.AssignmentColumns([]string{"required_qty", "unit", "notes", "updated_at"}),
	}).Create(line).Error
}

// ListBOMLinesForProduct returns the product's material lines in a stable
// order. An empty slice means no BOM is defined, which is not an error.
func ListBOMLinesForProduct(db *gorm.DB, productCode string) ([]BOMLine, error) {
	var lines []BOMLine
	err := db.Where("product_code = ?", productCode).
		Order("material_code").
		Find(&lines).Error
	if err != nil {
		return nil, err
	}
	return lines, nil
}
