package workflow_test

import (
	"errors"
	"testing"

	"bitbucket.org/mmdatafocus/factory_backend/models"
	"bitbucket.org/mmdatafocus/factory_backend/utils"
	"bitbucket.org/mmdatafocus/factory_backend/workflow"
)

// seedP1 builds the P1 scenario: BOM {MAT1: 2}, MAT1 priced at 12.
func seedP1(t *testing.T, e *workflow.Engine) {
	t.Helper()
	if err := e.UpsertBOMLine("P1", "MAT1", d(t, "2"), "kg", ""); err != nil {
		t.Fatalf("upsert bom: %v", err)
	}
	receiveStock(t, e, "MAT1", "100", "10")
	receiveStock(t, e, "MAT1", "50", "16")
}

func seedStandardCostConfig(t *testing.T, e *workflow.Engine) {
	t.Helper()
	updates := []workflow.CostConfigUpdate{
		{Name: "labor_rate", Role: models.CostRoleLabor, Kind: models.CostKindFixed, Value: d(t, "60"), Unit: "hour"},
		{Name: "management_rate", Role: models.CostRoleManagement, Kind: models.CostKindPercentage, Value: d(t, "15")},
		{Name: "tax", Role: models.CostRoleTax, Kind: models.CostKindPercentage, Value: d(t, "13")},
	}
	if res := e.ApplyCostConfigUpdates(updates); !res.Success || res.Succeeded != len(updates) {
		t.Fatalf("cost config seed failed: %+v", res)
	}
}

func TestComputeCostFullBreakdown(t *testing.T) {
	e := newTestEngine(t)
	seedP1(t, e)
	seedStandardCostConfig(t, e)

	breakdown, err := e.ComputeCost("P1", d(t, "1"), d(t, "2"))
	if err != nil {
		t.Fatalf("compute: %v", err)
	}

	wantDecimal(t, "material", breakdown.Component(models.CostRoleMaterial), "24")
	wantDecimal(t, "labor", breakdown.Component(models.CostRoleLabor), "120")
	wantDecimal(t, "management", breakdown.Component(models.CostRoleManagement), "3.6")
	wantDecimal(t, "subtotal", breakdown.Subtotal, "147.6")
	wantDecimal(t, "tax", breakdown.Component(models.CostRoleTax), "19.188")
	wantDecimal(t, "total", breakdown.Total, "166.788")
	wantDecimal(t, "unit cost", breakdown.UnitCost, "166.788")
	wantDecimal(t, "rounded tax", utils.RoundCurrency(breakdown.Component(models.CostRoleTax)), "19.19")
	wantDecimal(t, "rounded total", utils.RoundCurrency(breakdown.Total), "166.79")
}

func TestTaxComputedLastFromSubtotal(t *testing.T) {
	e := newTestEngine(t)
	seedP1(t, e)
	seedStandardCostConfig(t, e)

	breakdown, err := e.ComputeCost("P1", d(t, "1"), d(t, "2"))
	if err != nil {
		t.Fatalf("compute: %v", err)
	}
	// tax == subtotal * 13 / 100, never total-based
	wantTax := utils.PercentageOf(breakdown.Subtotal, d(t, "13"))
	if !breakdown.Component(models.CostRoleTax).Equal(wantTax) {
		t.Fatalf("tax %s != subtotal-based %s", breakdown.Component(models.CostRoleTax), wantTax)
	}
	if !breakdown.Total.Equal(breakdown.Subtotal.Add(wantTax)) {
		t.Fatalf("total %s != subtotal+tax", breakdown.Total)
	}
}

func TestComputeCostWithoutComponents(t *testing.T) {
	e := newTestEngine(t)
	seedP1(t, e)
	seedStandardCostConfig(t, e)
	for _, name := range []string{"labor_rate", "management_rate", "tax"} {
		if err := e.DeactivateCostConfigItem(name); err != nil {
			t.Fatalf("deactivate %s: %v", name, err)
		}
	}

	breakdown, err := e.ComputeCost("P1", d(t, "4"), d(t, "2"))
	if err != nil {
		t.Fatalf("compute: %v", err)
	}
	// 2 units of MAT1 per product at price 12, quantity 4
	wantDecimal(t, "material", breakdown.Component(models.CostRoleMaterial), "96")
	if !breakdown.Total.Equal(breakdown.Component(models.CostRoleMaterial)) {
		t.Fatalf("with all components off, total %s must equal material", breakdown.Total)
	}
	wantDecimal(t, "unit cost", breakdown.UnitCost, "24")
}

func TestComputeCostArgumentAndBOMErrors(t *testing.T) {
	e := newTestEngine(t)
	mustRegister(t, e, "P1", models.ItemCategoryProduct)

	if _, err := e.ComputeCost("P1", d(t, "0"), d(t, "1")); !errors.Is(err, utils.ErrInvalidArgument) {
		t.Fatalf("zero quantity: want ErrInvalidArgument, got %v", err)
	}
	if _, err := e.ComputeCost("P1", d(t, "1"), d(t, "1")); !errors.Is(err, utils.ErrNoBOMDefined) {
		t.Fatalf("no bom: want ErrNoBOMDefined, got %v", err)
	}

	// nothing may be persisted on either failure
	var count int64
	if err := e.DB().Model(&models.ProductionCostRecord{}).Count(&count).Error; err != nil {
		t.Fatalf("count: %v", err)
	}
	if count != 0 {
		t.Fatalf("no cost record may be written on failure, got %d", count)
	}
}

func TestLatestCostRecordWins(t *testing.T) {
	e := newTestEngine(t)
	seedP1(t, e)

	if _, err := e.ComputeCost("P1", d(t, "1"), d(t, "0")); err != nil {
		t.Fatalf("first compute: %v", err)
	}
	// price drift changes material cost on the next computation
	receiveStock(t, e, "MAT1", "150", "20")
	second, err := e.ComputeCost("P1", d(t, "1"), d(t, "0"))
	if err != nil {
		t.Fatalf("second compute: %v", err)
	}

	latest, err := e.LatestCostRecord("P1")
	if err != nil {
		t.Fatalf("latest: %v", err)
	}
	if latest.ID != second.RecordID {
		t.Fatalf("latest record %d, want the most recent %d", latest.ID, second.RecordID)
	}

	var count int64
	if err := e.DB().Model(&models.ProductionCostRecord{}).Where("product_code = ?", "P1").Count(&count).Error; err != nil {
		t.Fatalf("count: %v", err)
	}
	if count != 2 {
		t.Fatalf("history must be retained, got %d records", count)
	}
}

func TestCostConfigUpsertAndValidation(t *testing.T) {
	e := newTestEngine(t)

	update := workflow.CostConfigUpdate{Name: "labor_rate", Role: models.CostRoleLabor, Kind: models.CostKindFixed, Value: d(t, "60")}
	if err := e.UpsertCostConfigItem(update); err != nil {
		t.Fatalf("upsert: %v", err)
	}
	update.Value = d(t, "80")
	if err := e.UpsertCostConfigItem(update); err != nil {
		t.Fatalf("re-upsert: %v", err)
	}

	items, err := models.ListActiveCostConfigItems(e.DB())
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(items) != 1 {
		t.Fatalf("upsert by name must not duplicate, got %d", len(items))
	}
	wantDecimal(t, "value", items[0].Value, "80")

	bad := workflow.CostConfigUpdate{Name: "x", Role: models.CostRoleMaterial, Kind: models.CostKindFixed, Value: d(t, "1")}
	if err := e.UpsertCostConfigItem(bad); !errors.Is(err, utils.ErrInvalidArgument) {
		t.Fatalf("material role must be rejected, got %v", err)
	}
	if err := e.DeactivateCostConfigItem("nope"); !errors.Is(err, utils.ErrInvalidArgument) {
		t.Fatalf("deactivate unknown: want ErrInvalidArgument, got %v", err)
	}
}
