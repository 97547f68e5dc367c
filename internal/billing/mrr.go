package billing

import "github.com/shopspring/decimal"

var (
	hundred = decimal.NewFromInt(100)
	twelve  = decimal.NewFromInt(12)
)

// applyDiscount reduces an amount by a percentage in [0,100]. Out-of-range
// discounts are clamped rather than rejected; the validation layer reports
// them before they get here.
func applyDiscount(amount, discountPct decimal.Decimal) decimal.Decimal {
	if discountPct.IsNegative() {
		discountPct = decimal.Zero
	}
	if discountPct.GreaterThan(hundred) {
		discountPct = hundred
	}
	return amount.Mul(hundred.Sub(discountPct)).Div(hundred)
}

// ComputeMRR is the canonical monthly recurring revenue formula. It is the
// single authority: manual edits, chat-driven updates and profitability
// recalculation all recompute through it, and any figure an AI oracle proposes
// is replaced by this result.
//
//	per_seat:      perSeatCost * seatCount * (1 - discount/100)
//	flat_mrr:      flatAmount * (1 - discount/100)
//	one_time_only: 0
func ComputeMRR(model PricingModel, perSeatCost decimal.Decimal, seatCount int, flatAmount, discountPct decimal.Decimal) decimal.Decimal {
	switch model {
	case ModelPerSeat:
		base := perSeatCost.Mul(decimal.NewFromInt(int64(seatCount)))
		return applyDiscount(base, discountPct)
	case ModelFlatMRR:
		return applyDiscount(flatAmount, discountPct)
	case ModelOneTimeOnly:
		return decimal.Zero
	}
	return decimal.Zero
}

// AnnualRunRate is mrr*12 plus one-time revenue.
func AnnualRunRate(mrr, oneTimeRevenue decimal.Decimal) decimal.Decimal {
	return mrr.Mul(twelve).Add(oneTimeRevenue)
}
