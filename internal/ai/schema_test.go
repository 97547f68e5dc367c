package ai

import (
	"errors"
	"testing"

	"github.com/shopspring/decimal"
)

func TestParseExtractionPerSeat(t *testing.T) {
	raw := []byte(`{
		"customer_name": "Acme Corp",
		"pricing_model": "per_seat",
		"per_seat_cost": "$249.00",
		"seats": 15,
		"discount": "10",
		"billing_cycle": "Yearly"
	}`)
	ext, err := ParseExtraction(raw)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ext.CustomerName != "Acme Corp" {
		t.Errorf("customer_name = %q", ext.CustomerName)
	}
	if ext.PerSeatCost == nil || !ext.PerSeatCost.Equal(decimal.RequireFromString("249")) {
		t.Errorf("per_seat_cost = %v", ext.PerSeatCost)
	}
	if ext.SeatCount == nil || *ext.SeatCount != 15 {
		t.Errorf("seat_count = %v", ext.SeatCount)
	}
	if !ext.DiscountPercent.Equal(decimal.RequireFromString("10")) {
		t.Errorf("discount_percent = %s", ext.DiscountPercent)
	}
	if ext.BillingFrequency != "annual" {
		t.Errorf("billing_frequency = %q, want annual", ext.BillingFrequency)
	}
}

func TestParseExtractionAliasFirstMatchWins(t *testing.T) {
	// both canonical and alias present: canonical is first in the alias list
	raw := []byte(`{
		"customer_name": "A",
		"client_name": "B",
		"pricing_model": "flat_mrr",
		"flat_amount": 1000
	}`)
	ext, err := ParseExtraction(raw)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ext.CustomerName != "A" {
		t.Fatalf("customer_name = %q, canonical key must win", ext.CustomerName)
	}
}

func TestParseExtractionPhases(t *testing.T) {
	raw := []byte(`{
		"customer_name": "Phased Inc",
		"pricing_model": "flat_mrr",
		"flat_amount": "2,500.00",
		"phases": [
			{"cycle": "once", "duration_months": "1", "amount": 5000, "note": "setup"},
			{"frequency": "Quarterly", "duration": 0, "amount": "7,500"}
		]
	}`)
	ext, err := ParseExtraction(raw)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(ext.BillingPhases) != 2 {
		t.Fatalf("got %d phases", len(ext.BillingPhases))
	}
	if ext.BillingPhases[0].Cycle != "One Time" || ext.BillingPhases[0].DurationMonths != 1 {
		t.Errorf("phase[0] = %+v", ext.BillingPhases[0])
	}
	if ext.BillingPhases[1].Cycle != "Quarterly" || !ext.BillingPhases[1].Amount.Equal(decimal.RequireFromString("7500")) {
		t.Errorf("phase[1] = %+v", ext.BillingPhases[1])
	}
}

func TestParseExtractionSchemaErrors(t *testing.T) {
	raw := []byte(`{
		"pricing_model": "pay_what_you_want",
		"seat_count": "twelve",
		"discount_percent": 150,
		"billing_frequency": "fortnightly"
	}`)
	_, err := ParseExtraction(raw)
	if err == nil {
		t.Fatal("expected schema error")
	}
	var se *SchemaError
	if !errors.As(err, &se) {
		t.Fatalf("expected *SchemaError, got %T", err)
	}
	wantPaths := map[string]bool{
		"customer_name":     false,
		"pricing_model":     false,
		"seat_count":        false,
		"discount_percent":  false,
		"billing_frequency": false,
	}
	for _, is := range se.Issues {
		if _, ok := wantPaths[is.Path]; ok {
			wantPaths[is.Path] = true
		}
	}
	for path, seen := range wantPaths {
		if !seen {
			t.Errorf("missing issue for %s in %v", path, se.Issues)
		}
	}
}

func TestParseExtractionNotAnObject(t *testing.T) {
	if _, err := ParseExtraction([]byte(`"just a string"`)); err == nil {
		t.Fatal("expected schema error for non-object payload")
	}
}

func TestParseExtractionRequiredByModel(t *testing.T) {
	raw := []byte(`{"customer_name": "X", "pricing_model": "per_seat"}`)
	_, err := ParseExtraction(raw)
	var se *SchemaError
	if !errors.As(err, &se) {
		t.Fatalf("expected *SchemaError, got %v", err)
	}
	if len(se.Issues) != 2 {
		t.Fatalf("want issues for per_seat_cost and seat_count, got %v", se.Issues)
	}
}
