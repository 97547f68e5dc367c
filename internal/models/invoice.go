package models

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/finleaf/finops/internal/billing"
)

// Invoice is a billing document. BalanceDue is always max(0, Total-AmountPaid)
// and Status follows from the reconciliation arithmetic except for the
// explicit draft/sent/void transitions. Overdue is derived at read time and
// never stored.
type Invoice struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	Number string `gorm:"size:50;uniqueIndex" json:"number"`

	ClientID uint    `gorm:"index;not null" json:"client_id"`
	Client   *Client `gorm:"foreignKey:ClientID" json:"client,omitempty"`

	InvoiceDate time.Time  `gorm:"not null" json:"invoice_date"`
	DueDate     time.Time  `json:"due_date"`
	PaidAt      *time.Time `json:"paid_at,omitempty"`

	Terms    string `gorm:"size:500" json:"terms,omitempty"`
	Currency string `gorm:"size:10;not null;default:'USD'" json:"currency"`

	LineItems []InvoiceLineItem `gorm:"foreignKey:InvoiceID" json:"line_items,omitempty"`

	Subtotal   decimal.Decimal `gorm:"type:decimal(15,2);default:0" json:"subtotal"`
	Total      decimal.Decimal `gorm:"type:decimal(15,2);default:0" json:"total"`
	AmountPaid decimal.Decimal `gorm:"type:decimal(15,2);default:0" json:"amount_paid"`
	BalanceDue decimal.Decimal `gorm:"type:decimal(15,2);default:0" json:"balance_due"`

	Status string `gorm:"size:20;default:'draft';index" json:"status"`
}

// IsDraft returns true if the invoice has not been sent yet.
func (i *Invoice) IsDraft() bool {
	return i.Status == billing.InvoiceDraft
}

// IsSettled returns true once reconciliation has fully paid the invoice.
func (i *Invoice) IsSettled() bool {
	return i.Status == billing.InvoicePaid
}

// RecomputeTotals sums the line items into Subtotal/Total and refreshes
// BalanceDue against what has already been paid.
func (i *Invoice) RecomputeTotals() {
	sum := decimal.Zero
	for _, item := range i.LineItems {
		sum = sum.Add(item.Amount)
	}
	i.Subtotal = sum
	i.Total = sum
	i.BalanceDue = i.Total.Sub(i.AmountPaid)
	if i.BalanceDue.IsNegative() {
		i.BalanceDue = decimal.Zero
	}
}

// DisplayStatus derives the user-facing status, surfacing overdue when the
// balance is outstanding past the due date.
func (i *Invoice) DisplayStatus(now time.Time) string {
	return billing.DisplayStatus(i.Status, i.BalanceDue, i.DueDate, now)
}

// InvoiceLineItem is one ordered line of an invoice.
type InvoiceLineItem struct {
	ID        uint `gorm:"primaryKey" json:"id"`
	InvoiceID uint `gorm:"index;not null" json:"invoice_id"`

	Description string          `gorm:"size:500;not null" json:"description"`
	Quantity    int             `gorm:"not null;default:1" json:"quantity"`
	UnitAmount  decimal.Decimal `gorm:"type:decimal(15,2)" json:"unit_amount"`
	Amount      decimal.Decimal `gorm:"type:decimal(15,2)" json:"amount"`

	// Position for ordering
	Position int `gorm:"default:0" json:"position"`
}

// GenerateInvoiceNumber generates a unique invoice number.
// Format: INV-YYYY-NNNN (e.g., INV-2026-0001)
func GenerateInvoiceNumber(db *gorm.DB, year int) (string, error) {
	from := time.Date(year, 1, 1, 0, 0, 0, 0, time.UTC)
	to := from.AddDate(1, 0, 0)
	var count int64
	err := db.Model(&Invoice{}).
		Where("invoice_date >= ? AND invoice_date < ?", from, to).
		Count(&count).Error
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("INV-%d-%04d", year, count+1), nil
}
