package models

import "time"

// ReviewFlag marks a record for operator review: configuration fallbacks
// taken during receivable generation, balances clamped during reconciliation.
// The flows that raise flags never fail; the flag is the degradation record.
type ReviewFlag struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	EntityType string    `gorm:"size:50;not null;index" json:"entity_type"` // "Client", "Invoice", ...
	EntityID   uint      `gorm:"not null;index" json:"entity_id"`
	Source     string    `gorm:"size:50;not null" json:"source"` // "generation", "reconciliation"
	Field      string    `gorm:"size:100" json:"field"`
	Message    string    `gorm:"size:500;not null" json:"message"`
	Resolved   bool      `gorm:"default:false;index" json:"resolved"`
	CreatedAt  time.Time `json:"created_at"`
}
