package billing

import (
	"time"

	"github.com/shopspring/decimal"
)

// Invoice statuses. draft/sent/void move via explicit transitions; unpaid,
// partially_paid and paid are driven by reconciliation arithmetic. overdue is
// a read-time display state and is never persisted by reconciliation.
const (
	InvoiceDraft         = "draft"
	InvoiceSent          = "sent"
	InvoiceUnpaid        = "unpaid"
	InvoicePartiallyPaid = "partially_paid"
	InvoiceOverdue       = "overdue"
	InvoicePaid          = "paid"
	InvoiceVoid          = "void"
)

// Receivable entry statuses.
const (
	ReceivablePending  = "pending"
	ReceivableInvoiced = "invoiced"
	ReceivablePaid     = "paid"
	ReceivableOverdue  = "overdue"
)

// PaymentOutcome is the result of applying one payment against an invoice.
type PaymentOutcome struct {
	AmountPaid decimal.Decimal
	BalanceDue decimal.Decimal
	Status     string
	// PaidNow is true only on the transition into paid; the caller sets
	// paidAt exactly then.
	PaidNow bool
	// Clamped is true when the raw balance went negative (overpayment or a
	// lost-update race surfacing after the fact). The balance is clamped at
	// zero and the caller flags the invoice for manual review.
	Clamped bool
}

// ApplyPayment recomputes an invoice's paid/balance/status for a payment of
// amount. Pure arithmetic over the pre-payment state: the caller must supply
// amountPaid read inside the same transaction that persists the outcome, so
// concurrent payments against one invoice serialize at the persistence
// boundary rather than here.
func ApplyPayment(total, amountPaid, amount decimal.Decimal, currentStatus string) PaymentOutcome {
	newPaid := amountPaid.Add(amount)
	rawBalance := total.Sub(newPaid)
	out := PaymentOutcome{AmountPaid: newPaid, BalanceDue: rawBalance, Status: currentStatus}
	if rawBalance.IsNegative() {
		out.BalanceDue = decimal.Zero
		out.Clamped = true
	}
	switch {
	case out.BalanceDue.LessThanOrEqual(decimal.Zero):
		out.PaidNow = currentStatus != InvoicePaid
		out.Status = InvoicePaid
	case newPaid.IsPositive():
		out.Status = InvoicePartiallyPaid
	}
	return out
}

// ReversePayment backs a voided payment's amount out of the invoice. The
// status falls back to partially_paid or unpaid depending on what remains.
func ReversePayment(total, amountPaid, amount decimal.Decimal) PaymentOutcome {
	newPaid := amountPaid.Sub(amount)
	if newPaid.IsNegative() {
		newPaid = decimal.Zero
	}
	out := PaymentOutcome{AmountPaid: newPaid, BalanceDue: total.Sub(newPaid)}
	switch {
	case out.BalanceDue.LessThanOrEqual(decimal.Zero):
		out.Status = InvoicePaid
	case newPaid.IsPositive():
		out.Status = InvoicePartiallyPaid
	default:
		out.Status = InvoiceUnpaid
	}
	return out
}

// DisplayStatus derives the user-facing invoice status at read time. An
// outstanding balance past the due date shows as overdue without ever being
// written back.
func DisplayStatus(status string, balanceDue decimal.Decimal, dueDate time.Time, now time.Time) string {
	switch status {
	case InvoiceDraft, InvoiceVoid, InvoicePaid:
		return status
	}
	if balanceDue.IsPositive() && !dueDate.IsZero() && now.After(dueDate) {
		return InvoiceOverdue
	}
	return status
}

// CanVoid reports whether an invoice status may transition to void. Paid
// invoices can still be voided administratively.
func CanVoid(status string) bool {
	return status != InvoiceVoid
}
