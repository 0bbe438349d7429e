package workflow

import (
	"fmt"

	"bitbucket.org/mmdatafocus/factory_backend/config"
	"bitbucket.org/mmdatafocus/factory_backend/models"
	"bitbucket.org/mmdatafocus/factory_backend/utils"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// DeductFinishedGoodForSale posts one outgoing movement against the finished
// good for a sale. The product is registered on first sight, and a shortfall
// (negative stock after the deduction) is logged, never blocked on.
func (e *Engine) DeductFinishedGoodForSale(productCode string, quantity decimal.Decimal, orderID string) (decimal.Decimal, error) {
	if !quantity.IsPositive() {
		return decimal.Zero, utils.InvalidArgumentError("sale quantity %s must be positive", quantity)
	}
	if _, err := e.GetOrCreateItem(productCode, productCode, models.ItemCategoryProduct, ""); err != nil {
		return decimal.Zero, err
	}
	note := fmt.Sprintf("sales order %s: %s x %s", orderID, productCode, quantity)
	// RecordTransaction logs the shortfall when the deduction oversells
	newStock, err := e.RecordTransaction(productCode, models.TransactionDirectionOut, quantity, nil, note)
	if err != nil {
		return decimal.Zero, err
	}
	return newStock, nil
}

// MaterialDeductionResult is the outcome of one material deduction inside a
// production run.
type MaterialDeductionResult struct {
	MaterialCode string          `json:"material_code"`
	RequiredQty  decimal.Decimal `json:"required_qty"`
	NewStock     decimal.Decimal `json:"new_stock"`
	Err          error           `json:"-"`
}

// ProductionResult is the outcome of converting one product's demand.
type ProductionResult struct {
	ProductCode   string                    `json:"product_code"`
	RunRef        string                    `json:"run_ref"`
	TotalQuantity decimal.Decimal           `json:"total_quantity"`
	Materials     []MaterialDeductionResult `json:"materials"`
	Err           error                     `json:"-"`
}

// Succeeded reports whether every material deduction committed.
func (r *ProductionResult) Succeeded() bool {
	if r.Err != nil {
		return false
	}
	for _, m := range r.Materials {
		if m.Err != nil {
			return false
		}
	}
	return true
}

// ConvertSalesDemandToProduction turns aggregate demand into raw-material
// deductions, one outgoing movement per required material sized to
// required-per-unit times demand. Insufficient stock never blocks a
// deduction.
//
// The conversion is best-effort, not atomic: each material posts
// independently, a failed material is recorded and does not roll back
// already-committed ones, and a product without BOM lines is reported failed
// without aborting the remaining products.
func (e *Engine) ConvertSalesDemandToProduction(demand []models.SalesDemand) []ProductionResult {
	results := make([]ProductionResult, 0, len(demand))
	for _, d := range demand {
		results = append(results, e.runProductionDeduction(d.ProductCode, d.TotalQuantity))
	}
	return results
}

// ConvertAllSalesOrders aggregates ordered quantities per product and
// converts the whole demand.
func (e *Engine) ConvertAllSalesOrders() ([]ProductionResult, error) {
	demand, err := models.AggregateSalesDemand(e.db)
	if err != nil {
		return nil, err
	}
	return e.ConvertSalesDemandToProduction(demand), nil
}

func (e *Engine) runProductionDeduction(productCode string, totalQuantity decimal.Decimal) ProductionResult {
	result := ProductionResult{
		ProductCode:   productCode,
		RunRef:        fmt.Sprintf("PROD-%s-%s", productCode, uuid.NewString()[:8]),
		TotalQuantity: totalQuantity,
	}
	if !totalQuantity.IsPositive() {
		result.Err = utils.InvalidArgumentError("demand quantity %s must be positive", totalQuantity)
		return result
	}

	requirements, err := e.MaterialRequirementsFor(productCode, totalQuantity)
	if err != nil {
		result.Err = err
		return result
	}
	if len(requirements) == 0 {
		result.Err = utils.NoBOMDefinedError(productCode)
		config.LogError(e.logger, "workflow", "ConvertSalesDemandToProduction", "skipping product",
			map[string]any{"product_code": productCode}, result.Err)
		return result
	}

	for _, req := range requirements {
		note := fmt.Sprintf("production run %s: %s x %s", result.RunRef, req.MaterialCode, req.TotalQty)
		newStock, err := e.RecordTransaction(req.MaterialCode, models.TransactionDirectionOut, req.TotalQty, nil, note)
		entry := MaterialDeductionResult{
			MaterialCode: req.MaterialCode,
			RequiredQty:  req.TotalQty,
			NewStock:     newStock,
			Err:          err,
		}
		if err != nil {
			config.LogError(e.logger, "workflow", "ConvertSalesDemandToProduction", "material deduction failed",
				map[string]any{"run_ref": result.RunRef, "material_code": req.MaterialCode}, err)
		}
		result.Materials = append(result.Materials, entry)
	}
	return result
}
