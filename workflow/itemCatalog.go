package workflow

import (
	"errors"

	"bitbucket.org/mmdatafocus/factory_backend/models"
	"bitbucket.org/mmdatafocus/factory_backend/utils"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// getOrCreateItemTx returns the catalog entry for code, inserting a fresh
// zero-stock item with category defaults when the code has never been seen.
// Existing items come back unchanged; the supplied name/category/unit only
// apply to new registrations.
func getOrCreateItemTx(tx *gorm.DB, code string, defaultName string, category models.ItemCategory, unit string) (*models.Item, error) {
	if code == "" {
		return nil, utils.InvalidArgumentError("item code is required")
	}
	item, err := models.GetItemByCode(tx, code)
	if err == nil {
		return item, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	if !category.IsValid() {
		category = models.ItemCategoryRawMaterial
	}
	if defaultName == "" {
		defaultName = code
	}
	low, warning := models.DefaultThresholds(category)
	item = &models.Item{
		Code:                  code,
		Name:                  defaultName,
		Category:              category,
		Unit:                  unit,
		CurrentStock:          decimal.Zero,
		AvgUnitPrice:          decimal.Zero,
		TotalValue:            decimal.Zero,
		LowStockThreshold:     low,
		WarningStockThreshold: warning,
	}
	if err := tx.Create(item).Error; err != nil {
		return nil, err
	}
	return item, nil
}

// GetOrCreateItem registers a catalog entry on first reference.
func (e *Engine) GetOrCreateItem(code string, defaultName string, category models.ItemCategory, unit string) (*models.Item, error) {
	var item *models.Item
	err := e.runWithRetry("GetOrCreateItem", func(tx *gorm.DB) error {
		var err error
		item, err = getOrCreateItemTx(tx, code, defaultName, category, unit)
		return err
	})
	if err != nil {
		return nil, err
	}
	return item, nil
}

// UpdateItemMetadata edits name, unit and category of an existing item.
// Stock, price and value stay ledger-owned and untouched.
func (e *Engine) UpdateItemMetadata(code string, name string, unit string, category models.ItemCategory) error {
	if !category.IsValid() {
		return utils.InvalidArgumentError("item category %q", category)
	}
	return e.runWithRetry("UpdateItemMetadata", func(tx *gorm.DB) error {
		item, err := models.GetItemByCode(tx, code)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return utils.UnknownItemError(code)
			}
			return err
		}
		return tx.Model(item).Updates(map[string]any{
			"name":     name,
			"unit":     unit,
			"category": category,
		}).Error
	})
}

// SetItemThresholds updates the low/warning stock levels.
func (e *Engine) SetItemThresholds(code string, low decimal.Decimal, warning decimal.Decimal) error {
	if warning.LessThan(low) {
		return utils.InvalidArgumentError("warning threshold %s below low threshold %s", warning, low)
	}
	return e.runWithRetry("SetItemThresholds", func(tx *gorm.DB) error {
		item, err := models.GetItemByCode(tx, code)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return utils.UnknownItemError(code)
			}
			return err
		}
		return tx.Model(item).Updates(map[string]any{
			"low_stock_threshold":     low,
			"warning_stock_threshold": warning,
		}).Error
	})
}
