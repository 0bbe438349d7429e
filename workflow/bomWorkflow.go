package workflow

import (
	"errors"
	"strings"

	"bitbucket.org/mmdatafocus/factory_backend/models"
	"bitbucket.org/mmdatafocus/factory_backend/utils"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// inferMaterialCategory maps a material code to a catalog category by the
// code-prefix convention used on import sheets. Unknown prefixes register as
// raw material.
func inferMaterialCategory(materialCode string) models.ItemCategory {
	code := strings.ToUpper(materialCode)
	switch {
	case strings.HasPrefix(code, "PKG"):
		return models.ItemCategoryPackaging
	case strings.HasPrefix(code, "PRT"):
		return models.ItemCategoryPart
	default:
		return models.ItemCategoryRawMaterial
	}
}

// UpsertBOMLine registers both codes in the catalog when unknown, then
// inserts or overwrites the unique (product, material) line. Re-importing a
// pair updates the quantity in place.
func (e *Engine) UpsertBOMLine(productCode string, materialCode string, requiredQty decimal.Decimal, unit string, notes string) error {
	if productCode == "" || materialCode == "" {
		return utils.InvalidArgumentError("product and material codes are required")
	}
	if !requiredQty.IsPositive() {
		return utils.InvalidArgumentError("required quantity %s must be positive", requiredQty)
	}
	return e.runWithRetry("UpsertBOMLine", func(tx *gorm.DB) error {
		if _, err := getOrCreateItemTx(tx, productCode, productCode, models.ItemCategoryProduct, ""); err != nil {
			return err
		}
		if _, err := getOrCreateItemTx(tx, materialCode, materialCode, inferMaterialCategory(materialCode), unit); err != nil {
			return err
		}
		return models.UpsertBOMLine(tx, &models.BOMLine{
			ProductCode:  productCode,
			MaterialCode: materialCode,
			RequiredQty:  requiredQty,
			Unit:         unit,
			Notes:        notes,
		})
	})
}

// ResolvedBOMLine is one material requirement joined with the live ledger
// projection of that material.
type ResolvedBOMLine struct {
	MaterialCode string          `json:"material_code"`
	RequiredQty  decimal.Decimal `json:"required_qty"`
	Unit         string          `json:"unit"`
	AvgUnitPrice decimal.Decimal `json:"avg_unit_price"`
	CurrentStock decimal.Decimal `json:"current_stock"`
}

// ResolveBOM returns the product's material lines with current prices and
// stock, ordered by material code. An empty result means no BOM is defined
// for the product; callers decide whether that is fatal.
func (e *Engine) ResolveBOM(productCode string) ([]ResolvedBOMLine, error) {
	lines, err := models.ListBOMLinesForProduct(e.db, productCode)
	if err != nil {
		return nil, err
	}
	resolved := make([]ResolvedBOMLine, 0, len(lines))
	for i := range lines {
		line := &lines[i]
		entry := ResolvedBOMLine{
			MaterialCode: line.MaterialCode,
			RequiredQty:  line.RequiredQty,
			Unit:         line.Unit,
		}
		item, err := models.GetItemByCode(e.db, line.MaterialCode)
		if err == nil {
			entry.AvgUnitPrice = item.AvgUnitPrice
			entry.CurrentStock = item.CurrentStock
		} else if !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, err
		}
		resolved = append(resolved, entry)
	}
	return resolved, nil
}

// MaterialRequirement is the total quantity of one material needed for a
// production quantity.
type MaterialRequirement struct {
	MaterialCode string          `json:"material_code"`
	TotalQty     decimal.Decimal `json:"total_qty"`
	Unit         string          `json:"unit"`
}

// MaterialRequirementsFor scales every BOM line by the production quantity.
// Resolution is single-level: a material that is itself a BOM product is not
// expanded further.
func (e *Engine) MaterialRequirementsFor(productCode string, quantity decimal.Decimal) ([]MaterialRequirement, error) {
	if !quantity.IsPositive() {
		return nil, utils.InvalidArgumentError("production quantity %s must be positive", quantity)
	}
	resolved, err := e.ResolveBOM(productCode)
	if err != nil {
		return nil, err
	}
	requirements := make([]MaterialRequirement, 0, len(resolved))
	for _, line := range resolved {
		requirements = append(requirements, MaterialRequirement{
			MaterialCode: line.MaterialCode,
			TotalQty:     line.RequiredQty.Mul(quantity),
			Unit:         line.Unit,
		})
	}
	return requirements, nil
}
