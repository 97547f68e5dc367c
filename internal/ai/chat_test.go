package ai

import (
	"testing"

	"github.com/shopspring/decimal"

	"github.com/finleaf/finops/internal/models"
	"github.com/finleaf/finops/internal/services"
)

func dptr(v string) *decimal.Decimal {
	d := decimal.RequireFromString(v)
	return &d
}

func perSeatClient() models.Client {
	seats := 10
	c := models.Client{
		Name:         "Acme",
		Status:       models.ClientActive,
		PricingModel: "per_seat",
		PerSeatCost:  dptr("100"),
		SeatCount:    &seats,
	}
	c.RecomputeFinancials()
	return c
}

func TestVetAppliesOnlyPresentFields(t *testing.T) {
	c := perSeatClient()
	seats := 20
	vetted, mismatches := Vet(c, ChatUpdate{Updates: services.UpdateInput{SeatCount: &seats}})
	if *vetted.SeatCount != 20 {
		t.Fatalf("seat_count = %d", *vetted.SeatCount)
	}
	if !vetted.MRR.Equal(decimal.RequireFromString("2000")) {
		t.Fatalf("mrr = %s, want 2000", vetted.MRR)
	}
	if vetted.Name != "Acme" {
		t.Fatalf("untouched field changed: %q", vetted.Name)
	}
	if len(mismatches) != 0 {
		t.Fatalf("unexpected mismatches: %v", mismatches)
	}
}

func TestVetOverridesOracleFinancials(t *testing.T) {
	c := perSeatClient()
	seats := 20
	upd := ChatUpdate{
		Updates:               services.UpdateInput{SeatCount: &seats},
		ComputedMRR:           dptr("1234"),
		ComputedAnnualRunRate: dptr("9999"),
	}
	vetted, mismatches := Vet(c, upd)
	if !vetted.MRR.Equal(decimal.RequireFromString("2000")) {
		t.Fatalf("deterministic mrr must win, got %s", vetted.MRR)
	}
	if !vetted.AnnualRunRate.Equal(decimal.RequireFromString("24000")) {
		t.Fatalf("arr = %s, want 24000", vetted.AnnualRunRate)
	}
	if len(mismatches) != 2 {
		t.Fatalf("want 2 recorded mismatches, got %v", mismatches)
	}
}

func TestParseChatUpdateClarification(t *testing.T) {
	raw := []byte(`{"updates": {}, "clarification_needed": true, "clarification_question": "Which plan?"}`)
	upd, err := ParseChatUpdate(raw)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !upd.ClarificationNeeded || upd.ClarificationQuestion == "" {
		t.Fatalf("clarification lost: %+v", upd)
	}

	if _, err := ParseChatUpdate([]byte(`{"clarification_needed": true}`)); err == nil {
		t.Fatal("clarification without question must fail the schema")
	}
}
