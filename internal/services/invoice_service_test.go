package services

import (
	"errors"
	"strings"
	"testing"
	"time"

	"gorm.io/gorm"

	"github.com/finleaf/finops/internal/billing"
	"github.com/finleaf/finops/internal/models"
)

// seedReceivable creates a client with one pending receivable row.
func seedReceivable(t *testing.T, db *gorm.DB, amount string) (*models.Client, *models.ReceivableEntry) {
	t.Helper()
	c := seedFlatClient(t, db, amount)
	rec := &models.ReceivableEntry{
		ClientID:    c.ID,
		Month:       "2026-02",
		Amount:      d(amount),
		Description: "Monthly Subscription",
		Status:      billing.ReceivablePending,
	}
	if err := db.Create(rec).Error; err != nil {
		t.Fatalf("seed receivable: %v", err)
	}
	return c, rec
}

func TestCreateFromReceivable(t *testing.T) {
	db := setupTestDB(t)
	svc := NewInvoiceService(db)
	_, rec := seedReceivable(t, db, "2000")

	inv, err := svc.CreateFromReceivable(rec.ID, "Net 30", 30)
	if err != nil {
		t.Fatalf("create invoice: %v", err)
	}
	if !strings.HasPrefix(inv.Number, "INV-") {
		t.Errorf("invoice number = %q", inv.Number)
	}
	if inv.Status != billing.InvoiceDraft {
		t.Errorf("status = %s, want draft", inv.Status)
	}
	if !inv.Total.Equal(d("2000")) || !inv.BalanceDue.Equal(d("2000")) {
		t.Errorf("totals wrong: total=%s balance=%s", inv.Total, inv.BalanceDue)
	}
	if len(inv.LineItems) != 1 || !strings.Contains(inv.LineItems[0].Description, "2026-02") {
		t.Errorf("line items wrong: %+v", inv.LineItems)
	}

	var after models.ReceivableEntry
	if err := db.First(&after, rec.ID).Error; err != nil {
		t.Fatalf("reload receivable: %v", err)
	}
	if after.Status != billing.ReceivableInvoiced || after.InvoiceID == nil || *after.InvoiceID != inv.ID {
		t.Errorf("receivable not linked: %+v", after)
	}

	// a receivable can only be invoiced once
	if _, err := svc.CreateFromReceivable(rec.ID, "", 0); !errors.Is(err, ErrReceivableNotInvoicable) {
		t.Errorf("expected ErrReceivableNotInvoicable, got %v", err)
	}
}

func TestCreateFromReceivableNotFound(t *testing.T) {
	db := setupTestDB(t)
	svc := NewInvoiceService(db)
	if _, err := svc.CreateFromReceivable(404, "", 0); !errors.Is(err, ErrReceivableNotFound) {
		t.Errorf("expected ErrReceivableNotFound, got %v", err)
	}
}

func TestInvoiceNumberSequence(t *testing.T) {
	db := setupTestDB(t)
	svc := NewInvoiceService(db)
	_, rec1 := seedReceivable(t, db, "1000")
	rec2 := &models.ReceivableEntry{
		ClientID: rec1.ClientID, Month: "2026-03", Amount: d("1000"),
		Description: "Monthly Subscription", Status: billing.ReceivablePending,
	}
	if err := db.Create(rec2).Error; err != nil {
		t.Fatalf("seed second receivable: %v", err)
	}

	inv1, err := svc.CreateFromReceivable(rec1.ID, "", 0)
	if err != nil {
		t.Fatalf("first invoice: %v", err)
	}
	inv2, err := svc.CreateFromReceivable(rec2.ID, "", 0)
	if err != nil {
		t.Fatalf("second invoice: %v", err)
	}
	if inv1.Number == inv2.Number {
		t.Errorf("duplicate invoice numbers: %s", inv1.Number)
	}
}

func TestInvoiceSendAndVoid(t *testing.T) {
	db := setupTestDB(t)
	svc := NewInvoiceService(db)
	_, rec := seedReceivable(t, db, "2000")
	inv, err := svc.CreateFromReceivable(rec.ID, "", 0)
	if err != nil {
		t.Fatalf("create invoice: %v", err)
	}

	sent, err := svc.Send(inv.ID)
	if err != nil {
		t.Fatalf("send: %v", err)
	}
	if sent.Status != billing.InvoiceSent {
		t.Errorf("status = %s, want sent", sent.Status)
	}
	// sending is a draft-only transition
	if _, err := svc.Send(inv.ID); !errors.Is(err, ErrInvalidStatusChange) {
		t.Errorf("expected ErrInvalidStatusChange on double send, got %v", err)
	}

	voided, err := svc.Void(inv.ID)
	if err != nil {
		t.Fatalf("void: %v", err)
	}
	if voided.Status != billing.InvoiceVoid {
		t.Errorf("status = %s, want void", voided.Status)
	}
	if _, err := svc.Void(inv.ID); !errors.Is(err, ErrInvalidStatusChange) {
		t.Errorf("expected ErrInvalidStatusChange on double void, got %v", err)
	}
}

func TestInvoiceDisplayStatusOverdueIsDerived(t *testing.T) {
	db := setupTestDB(t)
	svc := NewInvoiceService(db)
	_, rec := seedReceivable(t, db, "2000")
	inv, err := svc.CreateFromReceivable(rec.ID, "", 7)
	if err != nil {
		t.Fatalf("create invoice: %v", err)
	}
	if _, err := svc.Send(inv.ID); err != nil {
		t.Fatalf("send: %v", err)
	}
	got, err := svc.Get(inv.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	future := time.Now().AddDate(0, 0, 30)
	if s := got.DisplayStatus(future); s != billing.InvoiceOverdue {
		t.Errorf("display status past due = %s, want overdue", s)
	}
	// the stored status never becomes overdue
	if got.Status != billing.InvoiceSent {
		t.Errorf("persisted status = %s, want sent", got.Status)
	}
}
