package billing

import "strings"

// Cycle is a billing cycle. Closed set: adding a cycle means updating
// Months and the parse table together.
type Cycle string

const (
	CycleMonthly    Cycle = "Monthly"
	CycleQuarterly  Cycle = "Quarterly"
	CycleHalfYearly Cycle = "Half Yearly"
	CycleAnnual     Cycle = "Annual"
	CycleOneTime    Cycle = "One Time"
)

// PricingModel identifies how a client is charged.
type PricingModel string

const (
	ModelPerSeat     PricingModel = "per_seat"
	ModelFlatMRR     PricingModel = "flat_mrr"
	ModelOneTimeOnly PricingModel = "one_time_only"
)

// Months returns the cycle length in months. A one-time cycle consumes the
// whole horizon: it fires once and never recurs.
func (c Cycle) Months(horizonMonths int) int {
	switch c {
	case CycleMonthly:
		return 1
	case CycleQuarterly:
		return 3
	case CycleHalfYearly:
		return 6
	case CycleAnnual:
		return 12
	case CycleOneTime:
		return horizonMonths
	}
	return 1
}

// Label is the cycle name used in receivable descriptions.
func (c Cycle) Label() string {
	if c == CycleOneTime {
		return "One-Time"
	}
	return string(c)
}

var cycleAliases = map[string]Cycle{
	"monthly":     CycleMonthly,
	"quarterly":   CycleQuarterly,
	"half yearly": CycleHalfYearly,
	"half-yearly": CycleHalfYearly,
	"semiannual":  CycleHalfYearly,
	"annual":      CycleAnnual,
	"yearly":      CycleAnnual,
	"annually":    CycleAnnual,
	"one time":    CycleOneTime,
	"one-time":    CycleOneTime,
	"one_time":    CycleOneTime,
}

// ParseCycle resolves a cycle string, accepting common aliases.
func ParseCycle(s string) (Cycle, bool) {
	c, ok := cycleAliases[strings.ToLower(strings.TrimSpace(s))]
	return c, ok
}

// CycleOrDefault resolves a cycle string, falling back to Monthly when the
// value is unrecognized. The bool reports whether the fallback was taken so
// callers can flag the configuration for review instead of failing the
// generation flow.
func CycleOrDefault(s string) (Cycle, bool) {
	if c, ok := ParseCycle(s); ok {
		return c, false
	}
	return CycleMonthly, true
}
