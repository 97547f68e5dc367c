package billing

import (
	"testing"
	"time"
)

func TestApplyPaymentPartialThenPaid(t *testing.T) {
	out := ApplyPayment(d("1000"), d("0"), d("400"), InvoiceUnpaid)
	if !out.AmountPaid.Equal(d("400")) || !out.BalanceDue.Equal(d("600")) {
		t.Fatalf("after 400: paid=%s balance=%s", out.AmountPaid, out.BalanceDue)
	}
	if out.Status != InvoicePartiallyPaid || out.PaidNow {
		t.Fatalf("after 400: status=%s paidNow=%v", out.Status, out.PaidNow)
	}

	out = ApplyPayment(d("1000"), out.AmountPaid, d("600"), out.Status)
	if !out.BalanceDue.IsZero() || out.Status != InvoicePaid {
		t.Fatalf("after 600: balance=%s status=%s", out.BalanceDue, out.Status)
	}
	if !out.PaidNow {
		t.Fatal("transition into paid must report PaidNow")
	}
}

func TestApplyPaymentAlreadyPaidNotPaidAgain(t *testing.T) {
	out := ApplyPayment(d("1000"), d("1000"), d("50"), InvoicePaid)
	if out.PaidNow {
		t.Fatal("already-paid invoice must not retrigger PaidNow")
	}
	if !out.Clamped || !out.BalanceDue.IsZero() {
		t.Fatalf("overpayment should clamp balance at 0 and flag, got balance=%s clamped=%v", out.BalanceDue, out.Clamped)
	}
}

func TestApplyPaymentZeroAmountLeavesStatus(t *testing.T) {
	out := ApplyPayment(d("1000"), d("0"), d("0"), InvoiceSent)
	if out.Status != InvoiceSent {
		t.Fatalf("zero payment should leave status unchanged, got %s", out.Status)
	}
}

func TestReversePayment(t *testing.T) {
	out := ReversePayment(d("1000"), d("1000"), d("600"))
	if out.Status != InvoicePartiallyPaid || !out.BalanceDue.Equal(d("600")) {
		t.Fatalf("reverse 600: %+v", out)
	}
	out = ReversePayment(d("1000"), d("400"), d("400"))
	if out.Status != InvoiceUnpaid || !out.AmountPaid.IsZero() {
		t.Fatalf("reverse all: %+v", out)
	}
}

func TestDisplayStatusOverdueDerivedAtReadTime(t *testing.T) {
	now := time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC)
	due := now.AddDate(0, 0, -5)
	if got := DisplayStatus(InvoiceUnpaid, d("100"), due, now); got != InvoiceOverdue {
		t.Fatalf("past-due unpaid invoice should display overdue, got %s", got)
	}
	if got := DisplayStatus(InvoicePartiallyPaid, d("100"), now.AddDate(0, 0, 5), now); got != InvoicePartiallyPaid {
		t.Fatalf("not yet due should keep status, got %s", got)
	}
	// terminal and pre-send states never show overdue
	for _, st := range []string{InvoiceDraft, InvoiceVoid, InvoicePaid} {
		if got := DisplayStatus(st, d("100"), due, now); got != st {
			t.Fatalf("%s should not display overdue, got %s", st, got)
		}
	}
}

func TestCanVoid(t *testing.T) {
	for _, st := range []string{InvoiceDraft, InvoiceSent, InvoiceUnpaid, InvoicePartiallyPaid, InvoicePaid} {
		if !CanVoid(st) {
			t.Errorf("%s should be voidable", st)
		}
	}
	if CanVoid(InvoiceVoid) {
		t.Error("void is terminal")
	}
}
