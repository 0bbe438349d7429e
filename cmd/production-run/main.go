package main

import (
	"fmt"
	"os"

	"bitbucket.org/mmdatafocus/factory_backend/config"
	"bitbucket.org/mmdatafocus/factory_backend/models"
	"bitbucket.org/mmdatafocus/factory_backend/workflow"
)

// production-run aggregates sales demand per product and deducts the raw
// materials each product's BOM requires. Products without a BOM are reported
// and skipped; material shortfalls deduct into negative stock.
func main() {
	db, err := config.OpenDatabase()
	if err != nil {
		fmt.Fprintf(os.Stderr, "open database: %v\n", err)
		os.Exit(2)
	}
	if err := models.MigrateTables(db); err != nil {
		fmt.Fprintf(os.Stderr, "migrate: %v\n", err)
		os.Exit(2)
	}
	logger := config.NewLogger()
	engine := workflow.NewEngine(db, logger)

	results, err := engine.ConvertAllSalesOrders()
	if err != nil {
		fmt.Fprintf(os.Stderr, "aggregate sales demand: %v\n", err)
		os.Exit(2)
	}
	if len(results) == 0 {
		fmt.Println("no sales demand found")
		return
	}

	failed := 0
	for _, res := range results {
		if res.Err != nil {
			failed++
			fmt.Printf("SKIP %s (demand %s): %v\n", res.ProductCode, res.TotalQuantity, res.Err)
			continue
		}
		fmt.Printf("RUN %s: %s x %s\n", res.RunRef, res.ProductCode, res.TotalQuantity)
		for _, m := range res.Materials {
			if m.Err != nil {
				failed++
				fmt.Printf("  FAIL %s x %s: %v\n", m.MaterialCode, m.RequiredQty, m.Err)
				continue
			}
			marker := "ok"
			if m.NewStock.IsNegative() {
				marker = "negative stock"
			}
			fmt.Printf("  %s x %s -> stock %s (%s)\n", m.MaterialCode, m.RequiredQty, m.NewStock, marker)
		}
	}
	if failed > 0 {
		os.Exit(1)
	}
}
