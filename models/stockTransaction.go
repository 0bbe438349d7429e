package models

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// StockTransaction is one append-only ledger row: a single stock movement.
// Rows are never updated or deleted; the signed sum of quantities per item,
// replayed in date order, must reconcile with Item.CurrentStock.
type StockTransaction struct {
	ID              int                  `gorm:"primary_key" json:"id"`
	ItemCode        string               `gorm:"index:idx_stock_txn_item_date,priority:1;size:100;not null" json:"item_code"`
	Direction       TransactionDirection `gorm:"size:3;not null" json:"direction"`
	Quantity        decimal.Decimal      `gorm:"type:decimal(20,4);not null" json:"quantity"`
	UnitPrice       *decimal.Decimal     `gorm:"type:decimal(20,4)" json:"unit_price"`
	TotalAmount     *decimal.Decimal     `gorm:"type:decimal(20,4)" json:"total_amount"`
	TransactionDate time.Time            `gorm:"index:idx_stock_txn_item_date,priority:2;not null" json:"transaction_date"`
	Notes           string               `gorm:"type:text" json:"notes"`
	CreatedAt       time.Time            `gorm:"autoCreateTime" json:"created_at"`
}

// SignedQuantity is the movement's effect on stock on hand.
func (txn *StockTransaction) SignedQuantity() decimal.Decimal {
	if txn.Direction == TransactionDirectionOut {
		return txn.Quantity.Neg()
	}
	return txn.Quantity
}

// ListTransactionsForItem returns the item's full movement history in replay
// order (date, then insertion order for same-date rows).
func ListTransactionsForItem(db *gorm.DB, itemCode string) ([]StockTransaction, error) {
	var txns []StockTransaction
	err := db.Where("item_code = ?", itemCode).
		Order("transaction_date, id").
		Find(&txns).Error
	if err != nil {
		return nil, err
	}
	return txns, nil
}

// ReplayStockBalance sums signed quantities over the item's history.
func ReplayStockBalance(db *gorm.DB, itemCode string) (decimal.Decimal, error) {
	txns, err := ListTransactionsForItem(db, itemCode)
	if err != nil {
		return decimal.Zero, err
	}
	balance := decimal.Zero
	for i := range txns {
		balance = balance.Add(txns[i].SignedQuantity())
	}
	return balance, nil
}
