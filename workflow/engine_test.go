package workflow_test

import (
	"fmt"
	"io"
	"strings"
	"testing"

	"bitbucket.org/mmdatafocus/factory_backend/models"
	"bitbucket.org/mmdatafocus/factory_backend/workflow"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func newTestEngine(t *testing.T) *workflow.Engine {
	t.Helper()
	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", name)
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	// one connection keeps sqlite write transactions serialized; the
	// engine's per-item lock handles logical interleaving
	if sqlDB, err := db.DB(); err == nil {
		sqlDB.SetMaxOpenConns(1)
	}
	if err := models.MigrateTables(db); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return workflow.NewEngine(db, logger)
}

func d(t *testing.T, s string) decimal.Decimal {
	t.Helper()
	v, err := decimal.NewFromString(s)
	if err != nil {
		t.Fatalf("bad decimal %q: %v", s, err)
	}
	return v
}

func wantDecimal(t *testing.T, what string, got decimal.Decimal, want string) {
	t.Helper()
	if !got.Equal(d(t, want)) {
		t.Fatalf("%s = %s, want %s", what, got, want)
	}
}

func receiveStock(t *testing.T, e *workflow.Engine, code string, qty string, price string) {
	t.Helper()
	p := d(t, price)
	if _, err := e.RecordTransaction(code, models.TransactionDirectionIn, d(t, qty), &p, "test receipt"); err != nil {
		t.Fatalf("receive %s x %s @ %s: %v", code, qty, price, err)
	}
}

func mustRegister(t *testing.T, e *workflow.Engine, code string, category models.ItemCategory) {
	t.Helper()
	if _, err := e.GetOrCreateItem(code, code, category, "pcs"); err != nil {
		t.Fatalf("register %s: %v", code, err)
	}
}
