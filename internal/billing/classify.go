package billing

import "strings"

// Kind classifies a receivable's revenue for reporting. Classification never
// affects generation.
type Kind string

const (
	KindMRR     Kind = "mrr"
	KindOneTime Kind = "one_time"
	KindMixed   Kind = "mixed"
)

var recurringMarkers = []string{"monthly", "quarterly", "half yearly", "annual", "subscription"}
var oneTimeMarkers = []string{"one-time", "one time", "setup"}

// Classify buckets a receivable description by marker substrings. A
// description matching both recurring and one-time markers, or neither, is
// mixed.
func Classify(description string) Kind {
	d := strings.ToLower(description)
	recurring := containsAny(d, recurringMarkers)
	oneTime := containsAny(d, oneTimeMarkers)
	switch {
	case recurring && !oneTime:
		return KindMRR
	case oneTime && !recurring:
		return KindOneTime
	}
	return KindMixed
}

func containsAny(s string, markers []string) bool {
	for _, m := range markers {
		if strings.Contains(s, m) {
			return true
		}
	}
	return false
}
