package workflow

import (
	"errors"
	"fmt"

	"bitbucket.org/mmdatafocus/factory_backend/models"
	"bitbucket.org/mmdatafocus/factory_backend/utils"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// PurchaseLine is one parsed purchase row handed in by the upload layer.
type PurchaseLine struct {
	ItemCode  string          `json:"item_code" validate:"required"`
	Name      string          `json:"name"`
	Category  string          `json:"category"`
	Unit      string          `json:"unit"`
	Quantity  decimal.Decimal `json:"quantity"`
	UnitPrice decimal.Decimal `json:"unit_price"`
	OtherFees decimal.Decimal `json:"other_fees"`
}

// BOMLineInput is one parsed BOM row.
type BOMLineInput struct {
	ProductCode  string          `json:"product_code" validate:"required"`
	MaterialCode string          `json:"material_code" validate:"required"`
	RequiredQty  decimal.Decimal `json:"required_qty"`
	Unit         string          `json:"unit"`
	Notes        string          `json:"notes"`
}

// SalesLine is one parsed sales-order row.
type SalesLine struct {
	OrderID     string          `json:"order_id" validate:"required"`
	Customer    string          `json:"customer"`
	Date        string          `json:"date"`
	ProductCode string          `json:"product_code" validate:"required"`
	ProductName string          `json:"product_name"`
	Quantity    decimal.Decimal `json:"quantity"`
	SalePrice   decimal.Decimal `json:"sale_price"`
}

// RowFailure records one rejected row of a batch.
type RowFailure struct {
	Index int    `json:"index"`
	Key   string `json:"key"`
	Error string `json:"error"`
}

// BatchResult summarizes a batch import. One bad row never aborts the batch;
// Success is false only when no row made it through.
type BatchResult struct {
	Total     int          `json:"total"`
	Succeeded int          `json:"succeeded"`
	Failures  []RowFailure `json:"failures"`
	Success   bool         `json:"success"`
}

func (r *BatchResult) fail(index int, key string, err error) {
	r.Failures = append(r.Failures, RowFailure{Index: index, Key: key, Error: err.Error()})
}

func (r *BatchResult) finish() {
	r.Success = r.Succeeded > 0
}

// ImportPurchaseLines receives purchased stock. Each row registers the item
// on first sight, then posts a priced incoming movement that reweights the
// average price. Extra fees are folded into the valuation by spreading them
// over the received quantity.
func (e *Engine) ImportPurchaseLines(lines []PurchaseLine) *BatchResult {
	result := &BatchResult{Total: len(lines)}
	for i, line := range lines {
		if err := e.importPurchaseLine(line); err != nil {
			result.fail(i, line.ItemCode, err)
			continue
		}
		result.Succeeded++
	}
	result.finish()
	return result
}

func (e *Engine) importPurchaseLine(line PurchaseLine) error {
	if err := e.validate.Struct(line); err != nil {
		return utils.InvalidArgumentError("purchase line: %v", err)
	}
	if !line.Quantity.IsPositive() {
		return utils.InvalidArgumentError("purchase quantity %s must be positive", line.Quantity)
	}
	if line.UnitPrice.IsNegative() || line.OtherFees.IsNegative() {
		return utils.InvalidArgumentError("purchase price and fees must not be negative")
	}

	category := inferMaterialCategory(line.ItemCode)
	if line.Category != "" {
		parsed, err := models.ParseItemCategory(line.Category)
		if err != nil {
			return utils.InvalidArgumentError("item category %q", line.Category)
		}
		category = parsed
	}
	if _, err := e.GetOrCreateItem(line.ItemCode, line.Name, category, line.Unit); err != nil {
		return err
	}

	// Fees ride on the valuation price so total value stays stock x avg.
	effectivePrice := line.UnitPrice.Add(line.OtherFees.DivRound(line.Quantity, utils.StoragePrecision))
	note := fmt.Sprintf("purchase import: %s x %s @ %s", line.ItemCode, line.Quantity, line.UnitPrice)
	_, err := e.RecordTransaction(line.ItemCode, models.TransactionDirectionIn, line.Quantity, &effectivePrice, note)
	return err
}

// ImportBOMLines upserts BOM rows; re-imported (product, material) pairs
// update in place.
func (e *Engine) ImportBOMLines(lines []BOMLineInput) *BatchResult {
	result := &BatchResult{Total: len(lines)}
	for i, line := range lines {
		key := line.ProductCode + "/" + line.MaterialCode
		if err := e.validate.Struct(line); err != nil {
			result.fail(i, key, utils.InvalidArgumentError("bom line: %v", err))
			continue
		}
		if err := e.UpsertBOMLine(line.ProductCode, line.MaterialCode, line.RequiredQty, line.Unit, line.Notes); err != nil {
			result.fail(i, key, err)
			continue
		}
		result.Succeeded++
	}
	result.finish()
	return result
}

// ImportSalesOrders upserts orders by order id, deducts finished-good stock
// and stamps profit fields from the latest cost record. An order whose
// product has never been costed still imports; its profit status stays
// "unknown".
func (e *Engine) ImportSalesOrders(lines []SalesLine) *BatchResult {
	result := &BatchResult{Total: len(lines)}
	for i, line := range lines {
		if err := e.importSalesLine(line); err != nil {
			result.fail(i, line.OrderID, err)
			continue
		}
		result.Succeeded++
	}
	result.finish()
	return result
}

func (e *Engine) importSalesLine(line SalesLine) error {
	if err := e.validate.Struct(line); err != nil {
		return utils.InvalidArgumentError("sales line: %v", err)
	}
	if !line.Quantity.IsPositive() {
		return utils.InvalidArgumentError("sale quantity %s must be positive", line.Quantity)
	}
	if line.SalePrice.IsNegative() {
		return utils.InvalidArgumentError("sale price %s must not be negative", line.SalePrice)
	}

	order := models.Order{
		OrderID:      line.OrderID,
		Customer:     line.Customer,
		OrderDate:    line.Date,
		ProductCode:  line.ProductCode,
		ProductName:  line.ProductName,
		Quantity:     line.Quantity,
		SalePrice:    line.SalePrice,
		SaleTotal:    utils.RoundStorage(line.Quantity.Mul(line.SalePrice)),
		ProfitStatus: models.ProfitStatusUnknown,
	}
	if err := e.runWithRetry("ImportSalesOrders", func(tx *gorm.DB) error {
		return models.UpsertOrder(tx, &order)
	}); err != nil {
		return err
	}

	if _, err := e.DeductFinishedGoodForSale(line.ProductCode, line.Quantity, line.OrderID); err != nil {
		return err
	}

	if _, err := e.CostOrder(line.OrderID); err != nil && !errors.Is(err, utils.ErrUncostedProduct) {
		return err
	}
	return nil
}

// ApplyCostConfigUpdates upserts cost components in a batch.
func (e *Engine) ApplyCostConfigUpdates(updates []CostConfigUpdate) *BatchResult {
	result := &BatchResult{Total: len(updates)}
	for i, update := range updates {
		if err := e.UpsertCostConfigItem(update); err != nil {
			result.fail(i, update.Name, err)
			continue
		}
		result.Succeeded++
	}
	result.finish()
	return result
}
