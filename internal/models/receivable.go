package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// ReceivableEntry is one expected billing event produced by the projection
// engine. Month is YYYY-MM so string ordering matches calendar ordering.
// Entries are regenerable: pending rows are replaced on regeneration, invoiced
// and paid rows are never touched.
type ReceivableEntry struct {
	ID          uint            `gorm:"primaryKey" json:"id"`
	ClientID    uint            `gorm:"not null;index" json:"client_id"`
	Month       string          `gorm:"size:7;not null;index" json:"month"`
	Amount      decimal.Decimal `gorm:"type:decimal(15,2)" json:"amount"`
	Description string          `gorm:"not null" json:"description"`
	Status      string          `gorm:"not null;default:'pending';index" json:"status"` // pending, invoiced, paid, overdue
	InvoiceID   *uint           `gorm:"index" json:"invoice_id"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
}
