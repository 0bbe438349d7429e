package models

import (
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// InventorySnapshot is the read-side view of one item's valuation
// projection, handed to the display/export layer.
type InventorySnapshot struct {
	ItemCode              string          `json:"item_code"`
	Name                  string          `json:"name"`
	Category              ItemCategory    `json:"category"`
	Unit                  string          `json:"unit"`
	Stock                 decimal.Decimal `json:"stock"`
	AvgPrice              decimal.Decimal `json:"avg_price"`
	TotalValue            decimal.Decimal `json:"total_value"`
	LowStockThreshold     decimal.Decimal `json:"low_stock_threshold"`
	WarningStockThreshold decimal.Decimal `json:"warning_stock_threshold"`
	BelowLowStock         bool            `json:"below_low_stock"`
	BelowWarningStock     bool            `json:"below_warning_stock"`
}

func snapshotFromItem(item *Item) *InventorySnapshot {
	return &InventorySnapshot{
		ItemCode:              item.Code,
		Name:                  item.Name,
		Category:              item.Category,
		Unit:                  item.Unit,
		Stock:                 item.CurrentStock,
		AvgPrice:              item.AvgUnitPrice,
		TotalValue:            item.TotalValue,
		LowStockThreshold:     item.LowStockThreshold,
		WarningStockThreshold: item.WarningStockThreshold,
		BelowLowStock:         item.IsBelowLowStock(),
		BelowWarningStock:     item.IsBelowWarningStock(),
	}
}

// GetInventorySnapshot reads one item's projection.
func GetInventorySnapshot(db *gorm.DB, itemCode string) (*InventorySnapshot, error) {
	item, err := GetItemByCode(db, itemCode)
	if err != nil {
		return nil, err
	}
	return snapshotFromItem(item), nil
}

// ListInventorySnapshots reads every item's projection ordered by code.
func ListInventorySnapshots(db *gorm.DB) ([]*InventorySnapshot, error) {
	var items []Item
	if err := db.Order("code").Find(&items).Error; err != nil {
		return nil, err
	}
	snapshots := make([]*InventorySnapshot, 0, len(items))
	for i := range items {
		snapshots = append(snapshots, snapshotFromItem(&items[i]))
	}
	return snapshots, nil
}

// LedgerDrift is one item whose projection disagrees with its replayed
// transaction history.
type LedgerDrift struct {
	ItemCode       string          `json:"item_code"`
	ProjectedStock decimal.Decimal `json:"projected_stock"`
	ReplayedStock  decimal.Decimal `json:"replayed_stock"`
	ValueDrift     decimal.Decimal `json:"value_drift"`
}

// VerifyLedgerConsistency replays every item's transactions and compares the
// signed sum with the stored projection, and the stored total value with
// stock times average price. valueTolerance absorbs currency rounding on the
// stored projection; stock must match exactly.
func VerifyLedgerConsistency(db *gorm.DB, valueTolerance decimal.Decimal) ([]LedgerDrift, error) {
	var items []Item
	if err := db.Order("code").Find(&items).Error; err != nil {
		return nil, err
	}

	var drifts []LedgerDrift
	for i := range items {
		item := &items[i]
		replayed, err := ReplayStockBalance(db, item.Code)
		if err != nil {
			return nil, err
		}
		valueDrift := item.TotalValue.Sub(item.CurrentStock.Mul(item.AvgUnitPrice)).Abs()
		if !replayed.Equal(item.CurrentStock) || valueDrift.GreaterThan(valueTolerance) {
			drifts = append(drifts, LedgerDrift{
				ItemCode:       item.Code,
				ProjectedStock: item.CurrentStock,
				ReplayedStock:  replayed,
				ValueDrift:     valueDrift,
			})
		}
	}
	return drifts, nil
}
