package workflow

import (
	"errors"
	"fmt"

	"bitbucket.org/mmdatafocus/factory_backend/models"
	"bitbucket.org/mmdatafocus/factory_backend/utils"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// ClassifyProfit compares a sale's takings with its computed cost.
func ClassifyProfit(saleTotal decimal.Decimal, totalCost decimal.Decimal) (decimal.Decimal, models.ProfitStatus) {
	profit := saleTotal.Sub(totalCost)
	switch {
	case profit.IsPositive():
		return profit, models.ProfitStatusProfit
	case profit.IsNegative():
		return profit, models.ProfitStatusLoss
	default:
		return profit, models.ProfitStatusBreakEven
	}
}

// OrderProfitResult is the derived profit view of one order.
type OrderProfitResult struct {
	OrderID   string              `json:"order_id"`
	UnitCost  decimal.Decimal     `json:"unit_cost"`
	TotalCost decimal.Decimal     `json:"total_cost"`
	Profit    decimal.Decimal     `json:"profit"`
	Status    models.ProfitStatus `json:"status"`
}

// CostOrder stamps an order's profit fields from the latest production cost
// record of its product. A product that has never been costed leaves the
// fields zeroed with status "unknown" and surfaces utils.ErrUncostedProduct;
// callers must not read unknown as break-even.
func (e *Engine) CostOrder(orderID string) (*OrderProfitResult, error) {
	order, err := models.GetOrderByOrderID(e.db, orderID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("order %s not found: %w", orderID, err)
		}
		return nil, err
	}

	record, err := e.LatestCostRecord(order.ProductCode)
	if err != nil {
		if !errors.Is(err, utils.ErrUncostedProduct) {
			return nil, err
		}
		uncosted := &OrderProfitResult{OrderID: orderID, Status: models.ProfitStatusUnknown}
		updateErr := e.runWithRetry("CostOrder", func(tx *gorm.DB) error {
			return tx.Model(order).Updates(map[string]any{
				"unit_cost":     decimal.Zero,
				"total_cost":    decimal.Zero,
				"profit":        decimal.Zero,
				"profit_status": models.ProfitStatusUnknown,
			}).Error
		})
		if updateErr != nil {
			return nil, updateErr
		}
		return uncosted, err
	}

	totalCost := utils.RoundStorage(record.UnitCost.Mul(order.Quantity))
	profit, status := ClassifyProfit(order.SaleTotal, totalCost)

	err = e.runWithRetry("CostOrder", func(tx *gorm.DB) error {
		return tx.Model(order).Updates(map[string]any{
			"unit_cost":     record.UnitCost,
			"total_cost":    totalCost,
			"profit":        profit,
			"profit_status": status,
		}).Error
	})
	if err != nil {
		return nil, err
	}

	return &OrderProfitResult{
		OrderID:   orderID,
		UnitCost:  record.UnitCost,
		TotalCost: totalCost,
		Profit:    profit,
		Status:    status,
	}, nil
}
