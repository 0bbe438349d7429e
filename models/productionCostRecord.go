package models

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// ProductionCostRecord is one computed cost breakdown for producing Quantity
// units of a product. The stream is append-only; downstream profit math reads
// only the latest record per product.
type ProductionCostRecord struct {
	ID             int             `gorm:"primary_key" json:"id"`
	ProductCode    string          `gorm:"index:idx_cost_record_product_date,priority:1;size:100;not null" json:"product_code"`
	MaterialCost   decimal.Decimal `gorm:"type:decimal(20,4);default:0" json:"material_cost"`
	LaborCost      decimal.Decimal `gorm:"type:decimal(20,4);default:0" json:"labor_cost"`
	ManagementCost decimal.Decimal `gorm:"type:decimal(20,4);default:0" json:"management_cost"`
	TransportCost  decimal.Decimal `gorm:"type:decimal(20,4);default:0" json:"transport_cost"`
	OtherCost      decimal.Decimal `gorm:"type:decimal(20,4);default:0" json:"other_cost"`
	TaxCost        decimal.Decimal `gorm:"type:decimal(20,4);default:0" json:"tax_cost"`
	TotalCost      decimal.Decimal `gorm:"type:decimal(20,4);default:0" json:"total_cost"`
	Quantity       decimal.Decimal `gorm:"type:decimal(20,4);not null" json:"quantity"`
	UnitCost       decimal.Decimal `gorm:"type:decimal(20,4);default:0" json:"unit_cost"`
	ComputedAt     time.Time       `gorm:"index:idx_cost_record_product_date,priority:2;not null" json:"computed_at"`
	CreatedAt      time.Time       `gorm:"autoCreateTime" json:"created_at"`
}

// GetLatestCostRecord returns the authoritative record for a product, ranked
// by computation time with insertion order as tie-break. gorm.ErrRecordNotFound
// passes through when the product has never been costed.
func GetLatestCostRecord(db *gorm.DB, productCode string) (*ProductionCostRecord, error) {
	var record ProductionCostRecord
	err := db.Where("product_code = ?", productCode).
		Order("computed_at DESC").Order("id DESC").
		First(&record).Error
	if err != nil {
		return nil, err
	}
	return &record, nil
}
