package main

import (
	"flag"
	"fmt"
	"os"

	"bitbucket.org/mmdatafocus/factory_backend/config"
	"bitbucket.org/mmdatafocus/factory_backend/models"
	"github.com/shopspring/decimal"
)

// ledger-audit replays every item's stock transactions and compares the
// result with the stored projection. Exit code 1 on any drift.
func main() {
	toleranceStr := flag.String("tolerance", "0.01", "allowed |total_value - stock*avg_price| per item")
	flag.Parse()

	tolerance, err := decimal.NewFromString(*toleranceStr)
	if err != nil {
		fmt.Fprintf(os.Stderr, "invalid --tolerance: %v\n", err)
		os.Exit(2)
	}

	db, err := config.OpenDatabase()
	if err != nil {
		fmt.Fprintf(os.Stderr, "open database: %v\n", err)
		os.Exit(2)
	}

	drifts, err := models.VerifyLedgerConsistency(db, tolerance)
	if err != nil {
		fmt.Fprintf(os.Stderr, "audit failed: %v\n", err)
		os.Exit(2)
	}

	if len(drifts) == 0 {
		fmt.Println("ledger audit clean: every projection matches its transaction history")
		return
	}
	for _, d := range drifts {
		fmt.Printf("DRIFT %s: projected stock %s, replayed %s, value drift %s\n",
			d.ItemCode, d.ProjectedStock, d.ReplayedStock, d.ValueDrift)
	}
	os.Exit(1)
}
