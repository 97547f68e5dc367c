package billing

import "github.com/shopspring/decimal"

// currencySymbols is immutable startup configuration, not runtime state.
var currencySymbols = map[string]string{
	"USD": "$",
	"EUR": "€",
	"GBP": "£",
	"INR": "₹",
}

// FormatAmount renders a monetary value with its currency symbol and two
// decimal places, grouping thousands.
func FormatAmount(currency string, amount decimal.Decimal) string {
	symbol, ok := currencySymbols[currency]
	if !ok {
		symbol = currency + " "
	}
	neg := amount.IsNegative()
	s := amount.Abs().StringFixed(2)

	// group the integer part with commas
	dot := len(s) - 3
	intPart, frac := s[:dot], s[dot:]
	var grouped []byte
	for i, c := range []byte(intPart) {
		if i > 0 && (len(intPart)-i)%3 == 0 {
			grouped = append(grouped, ',')
		}
		grouped = append(grouped, c)
	}
	out := symbol + string(grouped) + frac
	if neg {
		out = "-" + out
	}
	return out
}
