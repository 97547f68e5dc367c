package services

import (
	"fmt"
	"testing"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/finleaf/finops/internal/models"
)

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	// unique in-memory DB per test name to avoid leakage via shared cache
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	if err := db.AutoMigrate(
		&models.Client{}, &models.BillingPhase{}, &models.ReceivableEntry{},
		&models.Invoice{}, &models.InvoiceLineItem{}, &models.PaymentReceived{},
		&models.ReviewFlag{},
	); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}

func d(v string) decimal.Decimal {
	out, err := decimal.NewFromString(v)
	if err != nil {
		panic(err)
	}
	return out
}

func dptr(v string) *decimal.Decimal {
	out := d(v)
	return &out
}

func iptr(n int) *int { return &n }

func sptr(s string) *string { return &s }

func testLog() zerolog.Logger { return zerolog.Nop() }

// seedFlatClient creates an active flat-MRR client directly.
func seedFlatClient(t *testing.T, db *gorm.DB, flat string) *models.Client {
	t.Helper()
	flatAmount := d(flat)
	cycle := "Monthly"
	c := &models.Client{
		Name:         "Acme Corp",
		Status:       models.ClientActive,
		PricingModel: "flat_mrr",
		BillingCycle: &cycle,
		Currency:     "USD",
		FlatAmount:   &flatAmount,
	}
	c.RecomputeFinancials()
	if err := db.Create(c).Error; err != nil {
		t.Fatalf("seed client: %v", err)
	}
	return c
}
