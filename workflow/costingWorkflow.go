package workflow

import (
	"errors"
	"time"

	"bitbucket.org/mmdatafocus/factory_backend/models"
	"bitbucket.org/mmdatafocus/factory_backend/utils"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// CostConfigUpdate creates or overwrites one named cost component.
type CostConfigUpdate struct {
	Name        string          `json:"name" validate:"required"`
	Role        models.CostRole `json:"role" validate:"required"`
	Kind        models.CostKind `json:"kind" validate:"required"`
	Value       decimal.Decimal `json:"value"`
	Unit        string          `json:"unit"`
	Description string          `json:"description"`
}

// UpsertCostConfigItem inserts or overwrites a component by name and
// reactivates it if it was deactivated.
func (e *Engine) UpsertCostConfigItem(update CostConfigUpdate) error {
	if err := e.validate.Struct(update); err != nil {
		return utils.InvalidArgumentError("cost config update: %v", err)
	}
	if !update.Role.IsConfigurable() {
		return utils.InvalidArgumentError("cost role %q", update.Role)
	}
	if !update.Kind.IsValid() {
		return utils.InvalidArgumentError("cost kind %q", update.Kind)
	}
	if update.Value.IsNegative() {
		return utils.InvalidArgumentError("cost value %s must not be negative", update.Value)
	}
	active := true
	return e.runWithRetry("UpsertCostConfigItem", func(tx *gorm.DB) error {
		return tx.Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "name"}},
			DoUpdates: clause.AssignmentColumns([]string{
				"role", "kind", "value", "unit", "description", "is_active", "updated_at",
			}),
		}).Create(&models.CostConfigItem{
			Name:        update.Name,
			Role:        update.Role,
			Kind:        update.Kind,
			Value:       update.Value,
			Unit:        update.Unit,
			Description: update.Description,
			IsActive:    &active,
		}).Error
	})
}

// DeactivateCostConfigItem soft-deletes a component. Historical cost records
// that were computed with it stay untouched.
func (e *Engine) DeactivateCostConfigItem(name string) error {
	return e.runWithRetry("DeactivateCostConfigItem", func(tx *gorm.DB) error {
		result := tx.Model(&models.CostConfigItem{}).
			Where("name = ?", name).
			Update("is_active", false)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return utils.InvalidArgumentError("cost config item %q not found", name)
		}
		return nil
	})
}

// CostComponent is one line of a computed breakdown with its share of the
// total for reporting.
type CostComponent struct {
	Role       models.CostRole `json:"role"`
	Amount     decimal.Decimal `json:"amount"`
	ShareOfPct decimal.Decimal `json:"share_of_total_pct"`
}

// CostBreakdown is the full result of one production cost computation.
type CostBreakdown struct {
	ProductCode string          `json:"product_code"`
	Quantity    decimal.Decimal `json:"quantity"`
	Components  []CostComponent `json:"components"`
	Subtotal    decimal.Decimal `json:"subtotal"`
	Total       decimal.Decimal `json:"total"`
	UnitCost    decimal.Decimal `json:"unit_cost"`
	RecordID    int             `json:"record_id"`
}

// Component returns the amount for one role, zero when absent.
func (b *CostBreakdown) Component(role models.CostRole) decimal.Decimal {
	for _, c := range b.Components {
		if c.Role == role {
			return c.Amount
		}
	}
	return decimal.Zero
}

// ComputeCost prices the production of quantity units of a product.
//
// Material cost comes from the BOM joined with live weighted-average prices,
// so the same product costed at two times can differ as prices drift. Active
// non-tax components are additive and independent: labor converts fixed
// values through laborHours, management/transport apply flat, percentages
// always base on material cost, and unclassified components bucket into
// "other". Tax is computed last from the pre-tax subtotal.
//
// The breakdown is persisted as a new ProductionCostRecord and becomes the
// latest record for the product. A product without BOM lines fails with
// utils.ErrNoBOMDefined and persists nothing.
func (e *Engine) ComputeCost(productCode string, quantity decimal.Decimal, laborHours decimal.Decimal) (*CostBreakdown, error) {
	if !quantity.IsPositive() {
		return nil, utils.InvalidArgumentError("cost quantity %s must be positive", quantity)
	}

	resolved, err := e.ResolveBOM(productCode)
	if err != nil {
		return nil, err
	}
	if len(resolved) == 0 {
		return nil, utils.NoBOMDefinedError(productCode)
	}

	materialCost := decimal.Zero
	for _, line := range resolved {
		materialCost = materialCost.Add(line.RequiredQty.Mul(quantity).Mul(line.AvgUnitPrice))
	}
	materialCost = utils.RoundStorage(materialCost)

	configItems, err := models.ListActiveCostConfigItems(e.db)
	if err != nil {
		return nil, err
	}

	labor := decimal.Zero
	management := decimal.Zero
	transport := decimal.Zero
	other := decimal.Zero
	var taxItem *models.CostConfigItem

	for i := range configItems {
		item := &configItems[i]
		switch item.Role {
		case models.CostRoleTax:
			// computed last, from the subtotal
			taxItem = item
		case models.CostRoleLabor:
			if item.Kind == models.CostKindFixed {
				labor = labor.Add(laborHours.Mul(item.Value))
			} else {
				labor = labor.Add(utils.PercentageOf(materialCost, item.Value))
			}
		case models.CostRoleManagement:
			if item.Kind == models.CostKindFixed {
				management = management.Add(item.Value)
			} else {
				management = management.Add(utils.PercentageOf(materialCost, item.Value))
			}
		case models.CostRoleTransport:
			if item.Kind == models.CostKindFixed {
				transport = transport.Add(item.Value)
			} else {
				transport = transport.Add(utils.PercentageOf(materialCost, item.Value))
			}
		default:
			if item.Kind == models.CostKindFixed {
				other = other.Add(item.Value)
			} else {
				other = other.Add(utils.PercentageOf(materialCost, item.Value))
			}
		}
	}

	subtotal := materialCost.Add(labor).Add(management).Add(transport).Add(other)
	tax := decimal.Zero
	if taxItem != nil {
		if taxItem.Kind == models.CostKindFixed {
			tax = taxItem.Value
		} else {
			tax = utils.PercentageOf(subtotal, taxItem.Value)
		}
	}
	total := subtotal.Add(tax)
	unitCost := utils.SafeUnitValue(total, quantity)

	record := models.ProductionCostRecord{
		ProductCode:    productCode,
		MaterialCost:   materialCost,
		LaborCost:      labor,
		ManagementCost: management,
		TransportCost:  transport,
		OtherCost:      other,
		TaxCost:        tax,
		TotalCost:      total,
		Quantity:       quantity,
		UnitCost:       unitCost,
		ComputedAt:     time.Now(),
	}
	if err := e.runWithRetry("ComputeCost", func(tx *gorm.DB) error {
		return tx.Create(&record).Error
	}); err != nil {
		return nil, err
	}

	breakdown := &CostBreakdown{
		ProductCode: productCode,
		Quantity:    quantity,
		Subtotal:    subtotal,
		Total:       total,
		UnitCost:    unitCost,
		RecordID:    record.ID,
	}
	for _, c := range []CostComponent{
		{Role: models.CostRoleMaterial, Amount: materialCost},
		{Role: models.CostRoleLabor, Amount: labor},
		{Role: models.CostRoleOther, Amount: other},
		{Role: models.CostRoleManagement, Amount: management},
		{Role: models.CostRoleTransport, Amount: transport},
		{Role: models.CostRoleTax, Amount: tax},
	} {
		c.ShareOfPct = utils.ShareOfTotal(c.Amount, total)
		breakdown.Components = append(breakdown.Components, c)
	}
	return breakdown, nil
}

// LatestCostRecord returns the authoritative cost record for a product.
// utils.ErrUncostedProduct marks a product that has never been costed.
func (e *Engine) LatestCostRecord(productCode string) (*models.ProductionCostRecord, error) {
	record, err := models.GetLatestCostRecord(e.db, productCode)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, utils.UncostedProductError(productCode)
		}
		return nil, err
	}
	return record, nil
}
