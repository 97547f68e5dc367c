package models

import (
	"strconv"
	"time"

	"github.com/shopspring/decimal"

	"github.com/finleaf/finops/internal/billing"
)

// Client is a billable entity. MRR and AnnualRunRate are always derived from
// the pricing inputs through billing.ComputeMRR; they are never edited
// directly once seats, cost, discount or cycle change.
type Client struct {
	ID           uint    `gorm:"primaryKey" json:"id"`
	Name         string  `gorm:"not null;index" json:"name"`
	ContactEmail string  `json:"contact_email"`
	Status       string  `gorm:"not null;default:'active';index" json:"status"` // active, inactive
	PricingModel string  `gorm:"not null" json:"pricing_model"`                 // per_seat, flat_mrr, one_time_only
	BillingCycle *string `json:"billing_cycle"`                                 // nullable, required unless one-time
	Currency     string  `gorm:"not null;default:'USD'" json:"currency"`

	PerSeatCost     *decimal.Decimal `gorm:"type:decimal(15,2)" json:"per_seat_cost"`
	SeatCount       *int             `json:"seat_count"`
	FlatAmount      *decimal.Decimal `gorm:"type:decimal(15,2)" json:"flat_amount"`
	DiscountPercent decimal.Decimal  `gorm:"type:decimal(5,2);default:0" json:"discount_percent"` // [0,100]

	MRR            decimal.Decimal `gorm:"type:decimal(15,2);default:0" json:"mrr"`
	OneTimeRevenue decimal.Decimal `gorm:"type:decimal(15,2);default:0" json:"one_time_revenue"`
	AnnualRunRate  decimal.Decimal `gorm:"type:decimal(15,2);default:0" json:"annual_run_rate"`

	// BillingPhases, when present, replace the single-cycle BillingCycle for
	// receivables purposes. Owned exclusively by the client and replaced
	// atomically with it.
	BillingPhases []BillingPhase `gorm:"foreignKey:ClientID" json:"billing_phases,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

const (
	ClientActive   = "active"
	ClientInactive = "inactive"
)

// BillingPhase is one ordered segment of a phased billing arrangement.
type BillingPhase struct {
	ID             uint            `gorm:"primaryKey" json:"id"`
	ClientID       uint            `gorm:"not null;index" json:"client_id"`
	Position       int             `gorm:"not null" json:"position"`
	Cycle          string          `gorm:"not null" json:"cycle"` // Monthly, Quarterly, Half Yearly, Annual, One Time
	DurationMonths int             `gorm:"not null;default:0" json:"duration_months"`
	Amount         decimal.Decimal `gorm:"type:decimal(15,2)" json:"amount"`
	Note           string          `json:"note"`
	CreatedAt      time.Time       `json:"created_at"`
}

// RecomputeFinancials reapplies the canonical MRR/ARR formulas to the
// client's current pricing inputs.
func (c *Client) RecomputeFinancials() {
	perSeat := decimal.Zero
	if c.PerSeatCost != nil {
		perSeat = *c.PerSeatCost
	}
	seats := 0
	if c.SeatCount != nil {
		seats = *c.SeatCount
	}
	flat := decimal.Zero
	if c.FlatAmount != nil {
		flat = *c.FlatAmount
	}
	c.MRR = billing.ComputeMRR(billing.PricingModel(c.PricingModel), perSeat, seats, flat, c.DiscountPercent)
	c.AnnualRunRate = billing.AnnualRunRate(c.MRR, c.OneTimeRevenue)
}

// BillingConfig projects the client into the pure generator input. Phase
// cycle strings that fail to parse fall back to Monthly; the fallback is
// surfaced through the returned problems so the caller can flag it.
func (c *Client) BillingConfig() (billing.ClientConfig, []billing.Problem) {
	cfg := billing.ClientConfig{
		ClientID:       c.ID,
		Active:         c.Status == ClientActive,
		PricingModel:   billing.PricingModel(c.PricingModel),
		MRR:            c.MRR,
		OneTimeRevenue: c.OneTimeRevenue,
	}
	var problems []billing.Problem
	if c.BillingCycle != nil {
		cycle, fellBack := billing.CycleOrDefault(*c.BillingCycle)
		if fellBack {
			problems = append(problems, billing.Problem{Field: "billingCycle", Message: "unrecognized cycle " + *c.BillingCycle + ", treated as Monthly"})
		}
		cfg.BillingCycle = cycle
	}
	for i, ph := range c.BillingPhases {
		cycle, fellBack := billing.CycleOrDefault(ph.Cycle)
		if fellBack {
			problems = append(problems, billing.Problem{Field: "billingPhases[" + strconv.Itoa(i) + "].cycle", Message: "unrecognized cycle " + ph.Cycle + ", treated as Monthly"})
		}
		cfg.Phases = append(cfg.Phases, billing.Phase{
			Cycle:          cycle,
			DurationMonths: ph.DurationMonths,
			Amount:         ph.Amount,
			Note:           ph.Note,
		})
	}
	return cfg, problems
}
