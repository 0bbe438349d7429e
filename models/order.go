package models

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Order is one imported sales order line. Re-importing an order id replaces
// the row. UnitCost/TotalCost/Profit/ProfitStatus are derived from the latest
// production cost record and are never edited directly.
type Order struct {
	ID           int             `gorm:"primary_key" json:"id"`
	OrderID      string          `gorm:"uniqueIndex;size:100;not null" json:"order_id"`
	Customer     string          `gorm:"size:200" json:"customer"`
	OrderDate    string          `gorm:"size:30" json:"order_date"`
	ProductCode  string          `gorm:"index;size:100;not null" json:"product_code"`
	ProductName  string          `gorm:"size:200" json:"product_name"`
	Quantity     decimal.Decimal `gorm:"type:decimal(20,4);not null" json:"quantity"`
	SalePrice    decimal.Decimal `gorm:"type:decimal(20,4);default:0" json:"sale_price"`
	SaleTotal    decimal.Decimal `gorm:"type:decimal(20,4);default:0" json:"sale_total"`
	UnitCost     decimal.Decimal `gorm:"type:decimal(20,4);default:0" json:"unit_cost"`
	TotalCost    decimal.Decimal `gorm:"type:decimal(20,4);default:0" json:"total_cost"`
	Profit       decimal.Decimal `gorm:"type:decimal(20,4);default:0" json:"profit"`
	ProfitStatus ProfitStatus    `gorm:"size:12;not null;default:unknown" json:"profit_status"`
	CreatedAt    time.Time       `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt    time.Time       `gorm:"autoUpdateTime" json:"updated_at"`
}

// UpsertOrder inserts or replaces the row keyed by OrderID.
func UpsertOrder(db *gorm.DB, order *Order) error {
	return db.Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "order_id"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"customer", "order_date", "product_code", "product_name",
			"quantity", "sale_price", "sale_total",
			"unit_cost", "total_cost", "profit", "profit_status", "updated_at",
		}),
	}).Create(order).Error
}

// GetOrderByOrderID fetches one order; gorm.ErrRecordNotFound passes through.
func GetOrderByOrderID(db *gorm.DB, orderID string) (*Order, error) {
	var order Order
	if err := db.Where("order_id = ?", orderID).First(&order).Error; err != nil {
		return nil, err
	}
	return &order, nil
}

// SalesDemand is aggregate ordered quantity for one product.
type SalesDemand struct {
	ProductCode   string          `json:"product_code"`
	TotalQuantity decimal.Decimal `json:"total_quantity"`
}

// AggregateSalesDemand sums ordered quantities per product across all orders.
func AggregateSalesDemand(db *gorm.DB) ([]SalesDemand, error) {
	var demand []SalesDemand
	err := db.Model(&Order{}).
		Select("product_code, SUM(quantity) AS total_quantity").
		Group("product_code").
		Order("product_code").
		Scan(&demand).Error
	if err != nil {
		return nil, err
	}
	return demand, nil
}
