package billing

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// Phase is one time-boxed segment of a phased billing arrangement.
// DurationMonths = 0 means the phase runs until the end of the horizon and is
// only meaningful on the last phase.
type Phase struct {
	Cycle          Cycle
	DurationMonths int
	Amount         decimal.Decimal
	Note           string
}

// ScheduledCharge is one expected charge emitted by the scheduler, positioned
// relative to the projection start month.
type ScheduledCharge struct {
	MonthOffset int
	Cycle       Cycle
	Amount      decimal.Decimal
	Label       string
}

// Problem is a recoverable configuration issue found while scheduling. The
// schedule is still produced; callers log the problem and flag it for review.
type Problem struct {
	Field   string
	Message string
}

func (p Problem) String() string { return p.Field + ": " + p.Message }

// Schedule expands ordered billing phases into concrete charges over a
// horizon. Pure: identical inputs always yield identical output.
//
// Each phase consumes DurationMonths months of the horizon, or everything
// remaining when DurationMonths is 0. A zero duration on a non-final phase is
// a configuration error; it is reported but treated the same way, so any later
// phases are silently truncated. Charges recur every cycle length anchored at
// the phase's own first month, not at offset 0. A one-time phase emits exactly
// one charge at its start regardless of duration.
func Schedule(phases []Phase, horizonMonths int) ([]ScheduledCharge, []Problem) {
	if horizonMonths <= 0 || len(phases) == 0 {
		return nil, nil
	}
	var charges []ScheduledCharge
	var problems []Problem

	offset := 0
	for i, ph := range phases {
		if offset >= horizonMonths {
			break
		}
		remaining := horizonMonths - offset
		span := ph.DurationMonths
		if span <= 0 {
			if i != len(phases)-1 {
				problems = append(problems, Problem{
					Field:   fmt.Sprintf("billingPhases[%d].durationMonths", i),
					Message: "zero duration on a non-final phase; phase runs to horizon end and later phases are skipped",
				})
			}
			span = remaining
		}
		if span > remaining {
			span = remaining
		}

		if ph.Cycle == CycleOneTime {
			charges = append(charges, ScheduledCharge{
				MonthOffset: offset,
				Cycle:       ph.Cycle,
				Amount:      ph.Amount,
				Label:       ph.Cycle.Label(),
			})
			offset += ph.DurationMonths
			if ph.DurationMonths <= 0 {
				break
			}
			continue
		}

		step := ph.Cycle.Months(horizonMonths)
		if step < 1 {
			step = 1
		}
		for rel := 0; rel < span; rel += step {
			charges = append(charges, ScheduledCharge{
				MonthOffset: offset + rel,
				Cycle:       ph.Cycle,
				Amount:      ph.Amount,
				Label:       ph.Cycle.Label(),
			})
		}
		offset += span
		if ph.DurationMonths <= 0 {
			break
		}
	}
	return charges, problems
}
