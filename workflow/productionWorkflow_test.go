package workflow_test

import (
	"errors"
	"testing"

	"bitbucket.org/mmdatafocus/factory_backend/models"
	"bitbucket.org/mmdatafocus/factory_backend/utils"
	"bitbucket.org/mmdatafocus/factory_backend/workflow"
)

func TestDeductFinishedGoodForSale(t *testing.T) {
	e := newTestEngine(t)

	// never-seen product registers with zero stock, then oversells
	newStock, err := e.DeductFinishedGoodForSale("P1", d(t, "3"), "ORD-1")
	if err != nil {
		t.Fatalf("deduct: %v", err)
	}
	wantDecimal(t, "stock", newStock, "-3")

	item, err := models.GetItemByCode(e.DB(), "P1")
	if err != nil {
		t.Fatalf("item: %v", err)
	}
	if item.Category != models.ItemCategoryProduct {
		t.Fatalf("auto-registered category = %s", item.Category)
	}
	wantDecimal(t, "avg price stays zero", item.AvgUnitPrice, "0")
}

func TestConvertSalesDemandDeductsRegardlessOfStock(t *testing.T) {
	e := newTestEngine(t)
	if err := e.UpsertBOMLine("P1", "MAT1", d(t, "2"), "kg", ""); err != nil {
		t.Fatalf("upsert: %v", err)
	}
	// MAT1 has only 1 unit on hand; demand needs 6
	receiveStock(t, e, "MAT1", "1", "10")

	results := e.ConvertSalesDemandToProduction([]models.SalesDemand{
		{ProductCode: "P1", TotalQuantity: d(t, "3")},
	})
	if len(results) != 1 {
		t.Fatalf("want 1 result, got %d", len(results))
	}
	res := results[0]
	if !res.Succeeded() {
		t.Fatalf("deduction must not block on stock: %+v", res)
	}
	if len(res.Materials) != 1 {
		t.Fatalf("want 1 material deduction, got %d", len(res.Materials))
	}
	wantDecimal(t, "required", res.Materials[0].RequiredQty, "6")
	wantDecimal(t, "new stock", res.Materials[0].NewStock, "-5")

	// price untouched by the outgoing movement
	price, _ := e.GetWeightedAvgPrice("MAT1")
	wantDecimal(t, "avg price", price, "10")
}

func TestConvertSalesDemandIsBestEffort(t *testing.T) {
	e := newTestEngine(t)
	if err := e.UpsertBOMLine("P2", "MAT2", d(t, "1"), "kg", ""); err != nil {
		t.Fatalf("upsert: %v", err)
	}

	results := e.ConvertSalesDemandToProduction([]models.SalesDemand{
		{ProductCode: "NOBOM", TotalQuantity: d(t, "5")},
		{ProductCode: "P2", TotalQuantity: d(t, "4")},
	})
	if len(results) != 2 {
		t.Fatalf("want 2 results, got %d", len(results))
	}

	if results[0].Err == nil || !errors.Is(results[0].Err, utils.ErrNoBOMDefined) {
		t.Fatalf("product without BOM must report ErrNoBOMDefined, got %v", results[0].Err)
	}
	if !results[1].Succeeded() {
		t.Fatalf("failure on one product must not abort the next: %+v", results[1])
	}
	stock, _ := e.GetCurrentStock("MAT2")
	wantDecimal(t, "MAT2 stock", stock, "-4")
}

func TestConvertAllSalesOrdersAggregatesDemand(t *testing.T) {
	e := newTestEngine(t)
	if err := e.UpsertBOMLine("P1", "MAT1", d(t, "2"), "kg", ""); err != nil {
		t.Fatalf("upsert: %v", err)
	}
	sales := e.ImportSalesOrders([]workflow.SalesLine{
		{OrderID: "ORD-1", Customer: "A", ProductCode: "P1", Quantity: d(t, "3"), SalePrice: d(t, "200")},
		{OrderID: "ORD-2", Customer: "B", ProductCode: "P1", Quantity: d(t, "2"), SalePrice: d(t, "180")},
	})
	if !sales.Success || sales.Succeeded != 2 {
		t.Fatalf("sales import failed: %+v", sales)
	}

	results, err := e.ConvertAllSalesOrders()
	if err != nil {
		t.Fatalf("convert all: %v", err)
	}
	if len(results) != 1 {
		t.Fatalf("want demand for 1 product, got %d", len(results))
	}
	// two orders of 3 and 2 units, BOM 2 per unit -> 10 deducted
	wantDecimal(t, "deducted", results[0].Materials[0].RequiredQty, "10")
}
