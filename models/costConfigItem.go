package models

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// CostConfigItem is one named cost component: a flat amount or a percentage
// of its base. Components are deactivated, never deleted, so historical cost
// records keep their meaning.
type CostConfigItem struct {
	ID          int             `gorm:"primary_key" json:"id"`
	Name        string          `gorm:"uniqueIndex;size:100;not null" json:"name"`
	Role        CostRole        `gorm:"size:20;not null;default:other" json:"role"`
	Kind        CostKind        `gorm:"size:12;not null" json:"kind"`
	Value       decimal.Decimal `gorm:"type:decimal(20,4);not null" json:"value"`
	Unit        string          `gorm:"size:20" json:"unit"`
	Description string          `gorm:"type:text" json:"description"`
	IsActive    *bool           `gorm:"not null;default:true" json:"is_active"`
	CreatedAt   time.Time       `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt   time.Time       `gorm:"autoUpdateTime" json:"updated_at"`
}

// ListActiveCostConfigItems returns every active component, tax included.
func ListActiveCostConfigItems(db *gorm.DB) ([]CostConfigItem, error) {
	var items []CostConfigItem
	err := db.Where("is_active = ?", true).Order("name").Find(&items).Error
	if err != nil {
		return nil, err
	}
	return items, nil
}
