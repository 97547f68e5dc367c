package billing

import "github.com/shopspring/decimal"

// ClientConfig carries the billing inputs the generator needs. It is a plain
// value so generation stays a pure function over persisted client state.
type ClientConfig struct {
	ClientID       uint
	Active         bool
	PricingModel   PricingModel
	BillingCycle   Cycle
	MRR            decimal.Decimal
	OneTimeRevenue decimal.Decimal
	Phases         []Phase
}

// Entry is one expected billing event in the receivables calendar.
type Entry struct {
	ClientID    uint
	Month       Month
	Amount      decimal.Decimal
	Description string
}

const DefaultHorizonMonths = 12

// GenerateForClient produces the expected receivables calendar for a client
// over a horizon starting at start. Pure and deterministic; regeneration with
// the same inputs yields an identical sequence.
//
// Inactive clients generate nothing. Clients with billing phases use the phase
// scheduler and ignore the single-cycle BillingCycle field; everything else
// dispatches on the pricing model.
func GenerateForClient(c ClientConfig, start Month, horizonMonths int) ([]Entry, []Problem) {
	if !c.Active {
		return nil, nil
	}
	if horizonMonths <= 0 {
		horizonMonths = DefaultHorizonMonths
	}
	if len(c.Phases) > 0 {
		return generateWithPhases(c, start, horizonMonths)
	}

	if c.PricingModel == ModelOneTimeOnly {
		return []Entry{{
			ClientID:    c.ClientID,
			Month:       start,
			Amount:      c.OneTimeRevenue,
			Description: "One-Time Revenue",
		}}, nil
	}

	cycle := c.BillingCycle
	if cycle == "" || cycle == CycleOneTime {
		cycle = CycleMonthly
	}
	step := cycle.Months(horizonMonths)
	amount := c.MRR.Mul(decimal.NewFromInt(int64(step)))
	desc := cycle.Label() + " Subscription"

	var entries []Entry
	for off := 0; off+step <= horizonMonths; off += step {
		entries = append(entries, Entry{
			ClientID:    c.ClientID,
			Month:       start.AddMonths(off),
			Amount:      amount,
			Description: desc,
		})
	}
	return entries, nil
}

// generateWithPhases expands the phase schedule into entries and, when the
// client also carries a standalone one-time revenue figure, appends one extra
// entry for it at the start month. The extra entry is additive: a one-time
// phase and oneTimeRevenue both surface, as distinct lines.
func generateWithPhases(c ClientConfig, start Month, horizonMonths int) ([]Entry, []Problem) {
	charges, problems := Schedule(c.Phases, horizonMonths)
	entries := make([]Entry, 0, len(charges)+1)
	for _, ch := range charges {
		desc := ch.Label + " Subscription"
		if ch.Cycle == CycleOneTime {
			desc = "One-Time Setup"
		}
		entries = append(entries, Entry{
			ClientID:    c.ClientID,
			Month:       start.AddMonths(ch.MonthOffset),
			Amount:      ch.Amount,
			Description: desc,
		})
	}
	if c.OneTimeRevenue.IsPositive() {
		entries = append(entries, Entry{
			ClientID:    c.ClientID,
			Month:       start,
			Amount:      c.OneTimeRevenue,
			Description: "One-Time Revenue",
		})
	}
	return entries, problems
}
