package models

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Item is one stock-keeping unit: raw material, packaging, part or finished
// product. CurrentStock, AvgUnitPrice and TotalValue form the ledger-owned
// valuation projection; nothing outside the stock workflow writes them.
type Item struct {
	ID                    int             `gorm:"primary_key" json:"id"`
	Code                  string          `gorm:"uniqueIndex;size:100;not null" json:"code"`
	Name                  string          `gorm:"size:200;not null" json:"name"`
	Category              ItemCategory    `gorm:"size:20;not null;default:raw_material" json:"category"`
	Unit                  string          `gorm:"size:20" json:"unit"`
	CurrentStock          decimal.Decimal `gorm:"type:decimal(20,4);default:0" json:"current_stock"`
	AvgUnitPrice          decimal.Decimal `gorm:"type:decimal(20,4);default:0" json:"avg_unit_price"`
	TotalValue            decimal.Decimal `gorm:"type:decimal(20,4);default:0" json:"total_value"`
	LowStockThreshold     decimal.Decimal `gorm:"type:decimal(20,4);default:0" json:"low_stock_threshold"`
	WarningStockThreshold decimal.Decimal `gorm:"type:decimal(20,4);default:0" json:"warning_stock_threshold"`
	CreatedAt             time.Time       `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt             time.Time       `gorm:"autoUpdateTime" json:"updated_at"`
}

// Default thresholds by category: finished products run on much smaller
// counts than bulk materials.
func DefaultThresholds(category ItemCategory) (low decimal.Decimal, warning decimal.Decimal) {
	if category == ItemCategoryProduct {
		return decimal.NewFromInt(10), decimal.NewFromInt(20)
	}
	return decimal.NewFromInt(100), decimal.NewFromInt(200)
}

// GetItemByCode fetches one catalog item; gorm.ErrRecordNotFound passes
// through for the caller to translate.
func GetItemByCode(db *gorm.DB, code string) (*Item, error) {
	var item Item
	if err := db.Where("code = ?", code).First(&item).Error; err != nil {
		return nil, err
	}
	return &item, nil
}

// IsBelowLowStock reports stock at or under the low threshold; negative stock
// always qualifies.
func (item *Item) IsBelowLowStock() bool {
	return item.CurrentStock.LessThanOrEqual(item.LowStockThreshold)
}

func (item *Item) IsBelowWarningStock() bool {
	return item.CurrentStock.LessThanOrEqual(item.WarningStockThreshold)
}
