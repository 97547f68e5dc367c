package ai

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

// FieldIssue pinpoints one schema violation in an oracle response.
type FieldIssue struct {
	Path    string `json:"path"`
	Message string `json:"message"`
}

// SchemaError carries every violation found in a response. Responses that
// fail the schema never reach persistence or any financial calculation.
type SchemaError struct {
	Issues []FieldIssue
}

func (e *SchemaError) Error() string {
	parts := make([]string, len(e.Issues))
	for i, is := range e.Issues {
		parts[i] = is.Path + ": " + is.Message
	}
	return "extraction schema validation failed: " + strings.Join(parts, "; ")
}

// ExtractedPhase is one billing phase proposed by contract extraction.
type ExtractedPhase struct {
	Cycle          string          `json:"cycle"`
	DurationMonths int             `json:"duration_months"`
	Amount         decimal.Decimal `json:"amount"`
	Note           string          `json:"note"`
}

// Extraction is a contract-extraction result that passed the schema boundary.
// Frequency is normalized to one of monthly/quarterly/annual/one_time; all
// numeric fields are coerced from whatever shape the oracle produced.
type Extraction struct {
	CustomerName     string           `json:"customer_name"`
	PricingModel     string           `json:"pricing_model"`
	PerSeatCost      *decimal.Decimal `json:"per_seat_cost"`
	SeatCount        *int             `json:"seat_count"`
	FlatAmount       *decimal.Decimal `json:"flat_amount"`
	DiscountPercent  decimal.Decimal  `json:"discount_percent"`
	OneTimeRevenue   decimal.Decimal  `json:"one_time_revenue"`
	BillingFrequency string           `json:"billing_frequency"`
	BillingPhases    []ExtractedPhase `json:"billing_phases"`
}

// keyAliases maps each canonical extraction key to the alternates oracles
// have been observed to produce. Order matters: for each canonical key the
// first alias present in the payload wins, deterministically.
var keyAliases = []struct {
	canonical string
	aliases   []string
}{
	{"customer_name", []string{"customer_name", "client_name", "customer", "company_name", "company"}},
	{"pricing_model", []string{"pricing_model", "pricing_type", "model"}},
	{"per_seat_cost", []string{"per_seat_cost", "seat_cost", "price_per_seat", "per_seat_price"}},
	{"seat_count", []string{"seat_count", "seats", "num_seats", "license_count"}},
	{"flat_amount", []string{"flat_amount", "flat_mrr", "flat_fee", "monthly_amount"}},
	{"discount_percent", []string{"discount_percent", "discount", "discount_pct"}},
	{"one_time_revenue", []string{"one_time_revenue", "one_time_fee", "setup_fee", "onetime_revenue"}},
	{"billing_frequency", []string{"billing_frequency", "frequency", "billing_cycle", "cycle"}},
	{"billing_phases", []string{"billing_phases", "phases", "billing_schedule"}},
}

// frequencyAliases normalizes oracle billing frequencies into the closed set
// the engine understands.
var frequencyAliases = map[string]string{
	"monthly":     "monthly",
	"month":       "monthly",
	"per month":   "monthly",
	"quarterly":   "quarterly",
	"quarter":     "quarterly",
	"per quarter": "quarterly",
	"annual":      "annual",
	"annually":    "annual",
	"yearly":      "annual",
	"year":        "annual",
	"one_time":    "one_time",
	"one-time":    "one_time",
	"one time":    "one_time",
	"once":        "one_time",
	"onetime":     "one_time",
}

var phaseFrequencies = map[string]string{
	"monthly":   "Monthly",
	"quarterly": "Quarterly",
	"annual":    "Annual",
	"one_time":  "One Time",
}

var pricingModels = map[string]bool{
	"per_seat":      true,
	"flat_mrr":      true,
	"one_time_only": true,
}

// ParseExtraction validates raw oracle JSON against the extraction schema.
// It returns either a fully validated Extraction or a *SchemaError listing
// every field that failed; it never silently coerces a failing field.
func ParseExtraction(raw []byte) (*Extraction, error) {
	var payload map[string]json.RawMessage
	if err := json.Unmarshal(raw, &payload); err != nil {
		return nil, &SchemaError{Issues: []FieldIssue{{Path: "$", Message: "not a JSON object: " + err.Error()}}}
	}

	// normalize key aliases into canonical form, first match wins
	canon := make(map[string]json.RawMessage, len(keyAliases))
	for _, ka := range keyAliases {
		for _, alias := range ka.aliases {
			if v, ok := payload[alias]; ok {
				canon[ka.canonical] = v
				break
			}
		}
	}

	var issues []FieldIssue
	addIssue := func(path, msg string) { issues = append(issues, FieldIssue{Path: path, Message: msg}) }

	out := &Extraction{}

	if v, ok := canon["customer_name"]; ok {
		if err := json.Unmarshal(v, &out.CustomerName); err != nil {
			addIssue("customer_name", "must be a string")
		}
	}
	if strings.TrimSpace(out.CustomerName) == "" {
		addIssue("customer_name", "required")
	}

	if v, ok := canon["pricing_model"]; ok {
		var m string
		if err := json.Unmarshal(v, &m); err != nil {
			addIssue("pricing_model", "must be a string")
		} else if m = strings.ToLower(strings.TrimSpace(m)); !pricingModels[m] {
			addIssue("pricing_model", "unknown pricing model "+strconv.Quote(m))
		} else {
			out.PricingModel = m
		}
	} else {
		addIssue("pricing_model", "required")
	}

	if v, ok := canon["per_seat_cost"]; ok {
		if d, err := coerceDecimal(v); err != nil {
			addIssue("per_seat_cost", err.Error())
		} else {
			out.PerSeatCost = &d
		}
	}
	if v, ok := canon["seat_count"]; ok {
		if n, err := coerceInt(v); err != nil {
			addIssue("seat_count", err.Error())
		} else {
			out.SeatCount = &n
		}
	}
	if v, ok := canon["flat_amount"]; ok {
		if d, err := coerceDecimal(v); err != nil {
			addIssue("flat_amount", err.Error())
		} else {
			out.FlatAmount = &d
		}
	}
	if v, ok := canon["discount_percent"]; ok {
		if d, err := coerceDecimal(v); err != nil {
			addIssue("discount_percent", err.Error())
		} else if d.IsNegative() || d.GreaterThan(decimal.NewFromInt(100)) {
			addIssue("discount_percent", "must be within [0,100]")
		} else {
			out.DiscountPercent = d
		}
	}
	if v, ok := canon["one_time_revenue"]; ok {
		if d, err := coerceDecimal(v); err != nil {
			addIssue("one_time_revenue", err.Error())
		} else if d.IsNegative() {
			addIssue("one_time_revenue", "must not be negative")
		} else {
			out.OneTimeRevenue = d
		}
	}

	if v, ok := canon["billing_frequency"]; ok {
		var f string
		if err := json.Unmarshal(v, &f); err != nil {
			addIssue("billing_frequency", "must be a string")
		} else if norm, ok := frequencyAliases[strings.ToLower(strings.TrimSpace(f))]; !ok {
			addIssue("billing_frequency", "unknown frequency "+strconv.Quote(f))
		} else {
			out.BillingFrequency = norm
		}
	}

	if v, ok := canon["billing_phases"]; ok {
		phases, phaseIssues := parsePhases(v)
		issues = append(issues, phaseIssues...)
		out.BillingPhases = phases
	}

	switch out.PricingModel {
	case "per_seat":
		if out.PerSeatCost == nil {
			addIssue("per_seat_cost", "required for per_seat pricing")
		}
		if out.SeatCount == nil {
			addIssue("seat_count", "required for per_seat pricing")
		}
	case "flat_mrr":
		if out.FlatAmount == nil {
			addIssue("flat_amount", "required for flat_mrr pricing")
		}
	}

	if len(issues) > 0 {
		return nil, &SchemaError{Issues: issues}
	}
	return out, nil
}

type rawPhase struct {
	Cycle          json.RawMessage `json:"cycle"`
	Frequency      json.RawMessage `json:"frequency"`
	DurationMonths json.RawMessage `json:"duration_months"`
	Duration       json.RawMessage `json:"duration"`
	Amount         json.RawMessage `json:"amount"`
	Note           string          `json:"note"`
}

func parsePhases(v json.RawMessage) ([]ExtractedPhase, []FieldIssue) {
	var raws []rawPhase
	if err := json.Unmarshal(v, &raws); err != nil {
		return nil, []FieldIssue{{Path: "billing_phases", Message: "must be an array of phase objects"}}
	}
	var issues []FieldIssue
	phases := make([]ExtractedPhase, 0, len(raws))
	for i, rp := range raws {
		path := "billing_phases[" + strconv.Itoa(i) + "]"
		var ph ExtractedPhase
		ph.Note = rp.Note

		cycleRaw := rp.Cycle
		if cycleRaw == nil {
			cycleRaw = rp.Frequency
		}
		if cycleRaw == nil {
			issues = append(issues, FieldIssue{Path: path + ".cycle", Message: "required"})
		} else {
			var c string
			if err := json.Unmarshal(cycleRaw, &c); err != nil {
				issues = append(issues, FieldIssue{Path: path + ".cycle", Message: "must be a string"})
			} else if norm, ok := frequencyAliases[strings.ToLower(strings.TrimSpace(c))]; !ok {
				issues = append(issues, FieldIssue{Path: path + ".cycle", Message: "unknown cycle " + strconv.Quote(c)})
			} else {
				ph.Cycle = phaseFrequencies[norm]
			}
		}

		durRaw := rp.DurationMonths
		if durRaw == nil {
			durRaw = rp.Duration
		}
		if durRaw != nil {
			if n, err := coerceInt(durRaw); err != nil {
				issues = append(issues, FieldIssue{Path: path + ".duration_months", Message: err.Error()})
			} else if n < 0 {
				issues = append(issues, FieldIssue{Path: path + ".duration_months", Message: "must not be negative"})
			} else {
				ph.DurationMonths = n
			}
		}

		if rp.Amount == nil {
			issues = append(issues, FieldIssue{Path: path + ".amount", Message: "required"})
		} else if d, err := coerceDecimal(rp.Amount); err != nil {
			issues = append(issues, FieldIssue{Path: path + ".amount", Message: err.Error()})
		} else if d.IsNegative() {
			issues = append(issues, FieldIssue{Path: path + ".amount", Message: "must not be negative"})
		} else {
			ph.Amount = d
		}

		phases = append(phases, ph)
	}
	return phases, issues
}

// coerceDecimal accepts a JSON number or a numeric string, including values
// with currency adornment such as "$1,200.00".
func coerceDecimal(v json.RawMessage) (decimal.Decimal, error) {
	var num json.Number
	if err := json.Unmarshal(v, &num); err == nil {
		return decimal.NewFromString(num.String())
	}
	var s string
	if err := json.Unmarshal(v, &s); err != nil {
		return decimal.Zero, fmt.Errorf("must be a number or numeric string")
	}
	s = strings.TrimSpace(s)
	s = strings.TrimLeft(s, "$€£₹ ")
	s = strings.ReplaceAll(s, ",", "")
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, fmt.Errorf("not a parsable amount")
	}
	return d, nil
}

func coerceInt(v json.RawMessage) (int, error) {
	d, err := coerceDecimal(v)
	if err != nil {
		return 0, err
	}
	if !d.IsInteger() {
		return 0, fmt.Errorf("must be a whole number")
	}
	return int(d.IntPart()), nil
}
