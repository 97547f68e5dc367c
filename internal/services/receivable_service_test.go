package services

import (
	"testing"

	"github.com/finleaf/finops/internal/billing"
	"github.com/finleaf/finops/internal/models"
)

func TestRegenerateMonthlyCalendar(t *testing.T) {
	db := setupTestDB(t)
	svc := NewReceivableService(db, testLog())
	c := seedFlatClient(t, db, "2000")

	entries, err := svc.Regenerate(c.ID, "2026-02", 12)
	if err != nil {
		t.Fatalf("regenerate: %v", err)
	}
	if len(entries) != 12 {
		t.Fatalf("expected 12 entries, got %d", len(entries))
	}
	if entries[0].Month != "2026-02" || entries[11].Month != "2027-01" {
		t.Errorf("month window wrong: first=%s last=%s", entries[0].Month, entries[11].Month)
	}
	for _, e := range entries {
		if e.Status != billing.ReceivablePending {
			t.Errorf("entry %s status = %s, want pending", e.Month, e.Status)
		}
		if !e.Amount.Equal(d("2000")) {
			t.Errorf("entry %s amount = %s, want 2000", e.Month, e.Amount)
		}
	}
}

func TestRegenerateIsIdempotent(t *testing.T) {
	db := setupTestDB(t)
	svc := NewReceivableService(db, testLog())
	c := seedFlatClient(t, db, "2000")

	first, err := svc.Regenerate(c.ID, "2026-02", 12)
	if err != nil {
		t.Fatalf("first regenerate: %v", err)
	}
	second, err := svc.Regenerate(c.ID, "2026-02", 12)
	if err != nil {
		t.Fatalf("second regenerate: %v", err)
	}
	if len(first) != len(second) {
		t.Fatalf("regeneration changed row count: %d then %d", len(first), len(second))
	}
	for i := range first {
		if first[i].Month != second[i].Month || !first[i].Amount.Equal(second[i].Amount) {
			t.Errorf("row %d differs after regeneration: %+v vs %+v", i, first[i], second[i])
		}
	}
}

func TestRegeneratePreservesInvoicedRows(t *testing.T) {
	db := setupTestDB(t)
	svc := NewReceivableService(db, testLog())
	c := seedFlatClient(t, db, "2000")

	entries, err := svc.Regenerate(c.ID, "2026-02", 6)
	if err != nil {
		t.Fatalf("regenerate: %v", err)
	}
	// lock the March row in as invoiced with its original amount
	locked := entries[1]
	if err := db.Model(&models.ReceivableEntry{}).Where("id = ?", locked.ID).
		Update("status", billing.ReceivableInvoiced).Error; err != nil {
		t.Fatalf("mark invoiced: %v", err)
	}

	// price change, then regenerate
	if err := db.Model(c).Update("flat_amount", d("3000")).Error; err != nil {
		t.Fatalf("update amount: %v", err)
	}
	c.FlatAmount = dptr("3000")
	c.RecomputeFinancials()
	if err := db.Model(c).Update("mrr", c.MRR).Error; err != nil {
		t.Fatalf("update mrr: %v", err)
	}

	after, err := svc.Regenerate(c.ID, "2026-02", 6)
	if err != nil {
		t.Fatalf("second regenerate: %v", err)
	}
	if len(after) != 6 {
		t.Fatalf("expected 6 entries, got %d", len(after))
	}
	for _, e := range after {
		switch e.Month {
		case locked.Month:
			if e.ID != locked.ID || e.Status != billing.ReceivableInvoiced || !e.Amount.Equal(d("2000")) {
				t.Errorf("invoiced row was touched: %+v", e)
			}
		default:
			if e.Status != billing.ReceivablePending || !e.Amount.Equal(d("3000")) {
				t.Errorf("pending row not refreshed: %+v", e)
			}
		}
	}
}

func TestRegenerateInactiveClientClearsPending(t *testing.T) {
	db := setupTestDB(t)
	svc := NewReceivableService(db, testLog())
	c := seedFlatClient(t, db, "2000")

	if _, err := svc.Regenerate(c.ID, "2026-02", 12); err != nil {
		t.Fatalf("regenerate: %v", err)
	}
	if err := db.Model(c).Update("status", models.ClientInactive).Error; err != nil {
		t.Fatalf("deactivate: %v", err)
	}
	after, err := svc.Regenerate(c.ID, "2026-02", 12)
	if err != nil {
		t.Fatalf("regenerate inactive: %v", err)
	}
	if len(after) != 0 {
		t.Errorf("inactive client should have no pending receivables, got %d", len(after))
	}
}

func TestRegenerateUnknownCycleFlagsAndFallsBack(t *testing.T) {
	db := setupTestDB(t)
	svc := NewReceivableService(db, testLog())
	c := seedFlatClient(t, db, "2000")
	if err := db.Model(c).Update("billing_cycle", "Fortnightly").Error; err != nil {
		t.Fatalf("update cycle: %v", err)
	}

	entries, err := svc.Regenerate(c.ID, "2026-02", 12)
	if err != nil {
		t.Fatalf("regenerate: %v", err)
	}
	// Monthly fallback still yields a full calendar
	if len(entries) != 12 {
		t.Errorf("expected 12 entries under Monthly fallback, got %d", len(entries))
	}
	var flags []models.ReviewFlag
	if err := db.Where("entity_type = ? AND entity_id = ?", "Client", c.ID).Find(&flags).Error; err != nil {
		t.Fatalf("load flags: %v", err)
	}
	if len(flags) == 0 {
		t.Fatal("expected a review flag for the unrecognized cycle")
	}
	if flags[0].Source != "generation" || flags[0].Field != "billingCycle" {
		t.Errorf("unexpected flag: %+v", flags[0])
	}
}

func TestListByKindSplitsRevenue(t *testing.T) {
	db := setupTestDB(t)
	svc := NewReceivableService(db, testLog())
	c := seedFlatClient(t, db, "2000")
	if err := db.Model(c).Update("one_time_revenue", d("5000")).Error; err != nil {
		t.Fatalf("update one-time revenue: %v", err)
	}
	// the standalone one-time figure only surfaces alongside phases
	phases := []models.BillingPhase{
		{ClientID: c.ID, Position: 0, Cycle: "Monthly", DurationMonths: 12, Amount: d("2000")},
	}
	if err := db.Create(&phases).Error; err != nil {
		t.Fatalf("create phases: %v", err)
	}

	if _, err := svc.Regenerate(c.ID, "2026-02", 12); err != nil {
		t.Fatalf("regenerate: %v", err)
	}
	recurring, err := svc.ListByKind(c.ID, billing.KindMRR)
	if err != nil {
		t.Fatalf("list mrr: %v", err)
	}
	oneTime, err := svc.ListByKind(c.ID, billing.KindOneTime)
	if err != nil {
		t.Fatalf("list one_time: %v", err)
	}
	if len(recurring) != 12 {
		t.Errorf("expected 12 recurring entries, got %d", len(recurring))
	}
	if len(oneTime) != 1 || !oneTime[0].Amount.Equal(d("5000")) {
		t.Errorf("expected one 5000 one-time entry, got %+v", oneTime)
	}
}
