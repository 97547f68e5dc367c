package ai

import (
	"encoding/json"

	"github.com/shopspring/decimal"

	"github.com/finleaf/finops/internal/models"
	"github.com/finleaf/finops/internal/services"
)

// ChatUpdate is the chat oracle's interpretation of a natural-language edit
// instruction. The oracle is prompted to compute MRR/ARR with the canonical
// formulas, but its figures are advisory only: Vet recomputes them
// server-side and the deterministic result always wins.
type ChatUpdate struct {
	Updates               services.UpdateInput `json:"updates"`
	ComputedMRR           *decimal.Decimal     `json:"computed_mrr"`
	ComputedAnnualRunRate *decimal.Decimal     `json:"computed_annual_run_rate"`
	Reasoning             string               `json:"reasoning"`
	ClarificationNeeded   bool                 `json:"clarification_needed"`
	ClarificationQuestion string               `json:"clarification_question"`
}

// ParseChatUpdate validates raw chat-oracle JSON.
func ParseChatUpdate(raw []byte) (*ChatUpdate, error) {
	var upd ChatUpdate
	if err := json.Unmarshal(raw, &upd); err != nil {
		return nil, &SchemaError{Issues: []FieldIssue{{Path: "$", Message: "not a valid chat update: " + err.Error()}}}
	}
	if upd.ClarificationNeeded && upd.ClarificationQuestion == "" {
		return nil, &SchemaError{Issues: []FieldIssue{{Path: "clarification_question", Message: "required when clarification_needed"}}}
	}
	return &upd, nil
}

// MRRMismatch records an oracle financial figure that disagreed with the
// deterministic recomputation and was discarded.
type MRRMismatch struct {
	Field    string          `json:"field"`
	Proposed decimal.Decimal `json:"proposed"`
	Computed decimal.Decimal `json:"computed"`
}

// Vet projects a chat update onto a client and reports any oracle-proposed
// MRR/ARR figure that disagrees with the formula. Only fields present in the
// update are applied; the returned client copy carries the deterministic
// financials regardless of what the oracle computed.
func Vet(c models.Client, upd ChatUpdate) (models.Client, []MRRMismatch) {
	in := upd.Updates
	if in.Name != nil {
		c.Name = *in.Name
	}
	if in.ContactEmail != nil {
		c.ContactEmail = *in.ContactEmail
	}
	if in.Status != nil {
		c.Status = *in.Status
	}
	if in.PricingModel != nil {
		c.PricingModel = *in.PricingModel
	}
	if in.BillingCycle != nil {
		c.BillingCycle = in.BillingCycle
	}
	if in.PerSeatCost != nil {
		c.PerSeatCost = in.PerSeatCost
	}
	if in.SeatCount != nil {
		c.SeatCount = in.SeatCount
	}
	if in.FlatAmount != nil {
		c.FlatAmount = in.FlatAmount
	}
	if in.DiscountPercent != nil {
		c.DiscountPercent = *in.DiscountPercent
	}
	if in.OneTimeRevenue != nil {
		c.OneTimeRevenue = *in.OneTimeRevenue
	}
	c.RecomputeFinancials()

	var mismatches []MRRMismatch
	if upd.ComputedMRR != nil && !upd.ComputedMRR.Equal(c.MRR) {
		mismatches = append(mismatches, MRRMismatch{Field: "mrr", Proposed: *upd.ComputedMRR, Computed: c.MRR})
	}
	if upd.ComputedAnnualRunRate != nil && !upd.ComputedAnnualRunRate.Equal(c.AnnualRunRate) {
		mismatches = append(mismatches, MRRMismatch{Field: "annual_run_rate", Proposed: *upd.ComputedAnnualRunRate, Computed: c.AnnualRunRate})
	}
	return c, mismatches
}
