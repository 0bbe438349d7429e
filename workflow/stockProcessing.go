package workflow

import (
	"errors"
	"time"

	"bitbucket.org/mmdatafocus/factory_backend/config"
	"bitbucket.org/mmdatafocus/factory_backend/models"
	"bitbucket.org/mmdatafocus/factory_backend/utils"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// RecordTransaction posts one stock movement and reprojects the item's
// valuation in the same unit of work.
//
// Weighted-average rules:
//   - priced "in": new avg = (old_avg*old_stock + qty*price) / (old_stock+qty)
//     while old_stock+qty > 0, otherwise the average is left as it was. A
//     receipt onto zero or negative stock revalues at the incoming price
//     instead of blending, so the average never goes below zero;
//   - unpriced "in": stock rises, average unchanged;
//   - "out": stock falls, average unchanged. Remaining units keep their
//     valuation, and stock below zero is a threshold signal, not an error.
//
// Total value is always recomputed as stock times average. Returns the new
// stock level. Unknown item codes fail with utils.ErrUnknownItem and write
// nothing.
func (e *Engine) RecordTransaction(itemCode string, direction models.TransactionDirection, quantity decimal.Decimal, unitPrice *decimal.Decimal, note string) (decimal.Decimal, error) {
	if !direction.IsValid() {
		return decimal.Zero, utils.InvalidArgumentError("transaction direction %q", direction)
	}
	if !quantity.IsPositive() {
		return decimal.Zero, utils.InvalidArgumentError("transaction quantity %s must be positive", quantity)
	}
	if unitPrice != nil && unitPrice.IsNegative() {
		return decimal.Zero, utils.InvalidArgumentError("unit price %s must not be negative", *unitPrice)
	}

	unlock := e.lockItem(itemCode)
	defer unlock()

	var newStock decimal.Decimal
	err := e.runWithRetry("RecordTransaction", func(tx *gorm.DB) error {
		item, err := models.GetItemByCode(tx, itemCode)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return utils.UnknownItemError(itemCode)
			}
			return err
		}

		newAvg := item.AvgUnitPrice
		if direction == models.TransactionDirectionIn {
			newStock = item.CurrentStock.Add(quantity)
			if unitPrice != nil && newStock.IsPositive() {
				if item.CurrentStock.IsPositive() {
					oldValue := item.AvgUnitPrice.Mul(item.CurrentStock)
					inValue := quantity.Mul(*unitPrice)
					newAvg = utils.RoundStorage(oldValue.Add(inValue).DivRound(newStock, utils.StoragePrecision))
				} else {
					newAvg = utils.RoundStorage(*unitPrice)
				}
			}
		} else {
			newStock = item.CurrentStock.Sub(quantity)
		}
		newValue := utils.RoundStorage(newStock.Mul(newAvg))

		var totalAmount *decimal.Decimal
		if unitPrice != nil {
			amount := utils.RoundStorage(quantity.Mul(*unitPrice))
			totalAmount = &amount
		}
		txn := models.StockTransaction{
			ItemCode:        itemCode,
			Direction:       direction,
			Quantity:        quantity,
			UnitPrice:       unitPrice,
			TotalAmount:     totalAmount,
			TransactionDate: time.Now(),
			Notes:           note,
		}
		if err := tx.Create(&txn).Error; err != nil {
			return err
		}
		return tx.Model(item).Updates(map[string]any{
			"current_stock":  newStock,
			"avg_unit_price": newAvg,
			"total_value":    newValue,
		}).Error
	})
	if err != nil {
		return decimal.Zero, err
	}

	if newStock.IsNegative() {
		config.LogError(e.logger, "workflow", "RecordTransaction", "negative stock",
			map[string]any{"item_code": itemCode, "stock": newStock.String()},
			errors.New("stock on hand went negative"))
	}
	return newStock, nil
}

// GetCurrentStock reads the projected stock on hand.
func (e *Engine) GetCurrentStock(itemCode string) (decimal.Decimal, error) {
	item, err := models.GetItemByCode(e.db, itemCode)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return decimal.Zero, utils.UnknownItemError(itemCode)
		}
		return decimal.Zero, err
	}
	return item.CurrentStock, nil
}

// GetWeightedAvgPrice reads the projected weighted-average unit price.
func (e *Engine) GetWeightedAvgPrice(itemCode string) (decimal.Decimal, error) {
	item, err := models.GetItemByCode(e.db, itemCode)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return decimal.Zero, utils.UnknownItemError(itemCode)
		}
		return decimal.Zero, err
	}
	return item.AvgUnitPrice, nil
}

// GetInventorySnapshot reads one item's full projection for display.
func (e *Engine) GetInventorySnapshot(itemCode string) (*models.InventorySnapshot, error) {
	snapshot, err := models.GetInventorySnapshot(e.db, itemCode)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, utils.UnknownItemError(itemCode)
		}
		return nil, err
	}
	return snapshot, nil
}

// ListInventorySnapshots reads every item's projection.
func (e *Engine) ListInventorySnapshots() ([]*models.InventorySnapshot, error) {
	return models.ListInventorySnapshots(e.db)
}
