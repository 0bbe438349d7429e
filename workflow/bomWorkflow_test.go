package workflow_test

import (
	"errors"
	"testing"

	"bitbucket.org/mmdatafocus/factory_backend/models"
	"bitbucket.org/mmdatafocus/factory_backend/utils"
)

func TestUpsertBOMLineIsIdempotent(t *testing.T) {
	e := newTestEngine(t)

	if err := e.UpsertBOMLine("P1", "MAT1", d(t, "2"), "kg", "first import"); err != nil {
		t.Fatalf("upsert: %v", err)
	}
	if err := e.UpsertBOMLine("P1", "MAT1", d(t, "3"), "kg", "re-import"); err != nil {
		t.Fatalf("re-upsert: %v", err)
	}

	lines, err := models.ListBOMLinesForProduct(e.DB(), "P1")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(lines) != 1 {
		t.Fatalf("want exactly one line for the pair, got %d", len(lines))
	}
	wantDecimal(t, "required qty", lines[0].RequiredQty, "3")
	if lines[0].Notes != "re-import" {
		t.Fatalf("notes not overwritten: %q", lines[0].Notes)
	}
}

func TestUpsertBOMLineAutoRegistersCodes(t *testing.T) {
	e := newTestEngine(t)

	if err := e.UpsertBOMLine("P1", "PKG-BOX", d(t, "1"), "pcs", ""); err != nil {
		t.Fatalf("upsert: %v", err)
	}

	product, err := models.GetItemByCode(e.DB(), "P1")
	if err != nil {
		t.Fatalf("product not registered: %v", err)
	}
	if product.Category != models.ItemCategoryProduct {
		t.Fatalf("product category = %s", product.Category)
	}
	wantDecimal(t, "product low threshold", product.LowStockThreshold, "10")

	material, err := models.GetItemByCode(e.DB(), "PKG-BOX")
	if err != nil {
		t.Fatalf("material not registered: %v", err)
	}
	if material.Category != models.ItemCategoryPackaging {
		t.Fatalf("PKG prefix should register packaging, got %s", material.Category)
	}
	wantDecimal(t, "material low threshold", material.LowStockThreshold, "100")
}

func TestResolveBOMEmptyIsNotAnError(t *testing.T) {
	e := newTestEngine(t)
	mustRegister(t, e, "P1", models.ItemCategoryProduct)

	resolved, err := e.ResolveBOM("P1")
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if len(resolved) != 0 {
		t.Fatalf("want empty resolution, got %d lines", len(resolved))
	}
}

func TestResolveBOMJoinsLiveProjection(t *testing.T) {
	e := newTestEngine(t)
	if err := e.UpsertBOMLine("P1", "MAT1", d(t, "2"), "kg", ""); err != nil {
		t.Fatalf("upsert: %v", err)
	}
	receiveStock(t, e, "MAT1", "100", "10")
	receiveStock(t, e, "MAT1", "50", "16")

	resolved, err := e.ResolveBOM("P1")
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if len(resolved) != 1 {
		t.Fatalf("want 1 line, got %d", len(resolved))
	}
	wantDecimal(t, "avg price", resolved[0].AvgUnitPrice, "12")
	wantDecimal(t, "current stock", resolved[0].CurrentStock, "150")
}

func TestMaterialRequirementsScaleSingleLevel(t *testing.T) {
	e := newTestEngine(t)
	// SUB is itself a product with its own BOM; it must not expand
	if err := e.UpsertBOMLine("P1", "SUB", d(t, "2"), "pcs", ""); err != nil {
		t.Fatalf("upsert: %v", err)
	}
	if err := e.UpsertBOMLine("SUB", "MAT1", d(t, "5"), "kg", ""); err != nil {
		t.Fatalf("upsert sub: %v", err)
	}

	reqs, err := e.MaterialRequirementsFor("P1", d(t, "3"))
	if err != nil {
		t.Fatalf("requirements: %v", err)
	}
	if len(reqs) != 1 {
		t.Fatalf("single-level resolution must return 1 requirement, got %d", len(reqs))
	}
	if reqs[0].MaterialCode != "SUB" {
		t.Fatalf("requirement = %s, want SUB", reqs[0].MaterialCode)
	}
	wantDecimal(t, "total qty", reqs[0].TotalQty, "6")

	if _, err := e.MaterialRequirementsFor("P1", d(t, "0")); !errors.Is(err, utils.ErrInvalidArgument) {
		t.Fatalf("zero quantity: want ErrInvalidArgument, got %v", err)
	}
}
