package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// PaymentReceived is an append-only record of one payment event. Recording a
// payment mutates its invoice's paid/balance/status inside the same
// transaction; the payment row itself only ever changes status
// (confirmed -> void).
type PaymentReceived struct {
	ID        uint   `gorm:"primaryKey" json:"id"`
	Reference string `gorm:"size:36;uniqueIndex" json:"reference"`

	InvoiceID uint `gorm:"not null;index" json:"invoice_id"`
	ClientID  uint `gorm:"not null;index" json:"client_id"`

	Amount decimal.Decimal `gorm:"type:decimal(15,2);not null" json:"amount"`
	Date   time.Time       `gorm:"not null" json:"date"`
	Mode   string          `gorm:"size:50" json:"mode"` // e.g. wire, card, check
	Status string          `gorm:"size:20;not null;default:'confirmed'" json:"status"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

const (
	PaymentDraft     = "draft"
	PaymentConfirmed = "confirmed"
	PaymentVoid      = "void"
)
