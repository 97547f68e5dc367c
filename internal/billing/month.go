package billing

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Month is a calendar month in "YYYY-MM" form. The string representation is
// lexically sortable, which the receivable queries rely on.
type Month string

// ParseMonth validates a YYYY-MM string.
func ParseMonth(s string) (Month, error) {
	parts := strings.SplitN(s, "-", 2)
	if len(parts) != 2 || len(parts[0]) != 4 || len(parts[1]) != 2 {
		return "", fmt.Errorf("invalid month %q, expected YYYY-MM", s)
	}
	year, err := strconv.Atoi(parts[0])
	if err != nil || year < 1 {
		return "", fmt.Errorf("invalid year in month %q", s)
	}
	mon, err := strconv.Atoi(parts[1])
	if err != nil || mon < 1 || mon > 12 {
		return "", fmt.Errorf("invalid month number in %q", s)
	}
	return Month(s), nil
}

// MonthOf truncates a time to its calendar month.
func MonthOf(t time.Time) Month {
	return Month(t.Format("2006-01"))
}

func (m Month) String() string { return string(m) }

func (m Month) split() (year, mon int) {
	year, _ = strconv.Atoi(string(m)[:4])
	mon, _ = strconv.Atoi(string(m)[5:])
	return year, mon
}

// AddMonths returns the month n months later, rolling the year as needed.
// Negative n walks backwards.
func (m Month) AddMonths(n int) Month {
	year, mon := m.split()
	total := year*12 + (mon - 1) + n
	return Month(fmt.Sprintf("%04d-%02d", total/12, total%12+1))
}

// Before reports whether m is strictly earlier than other.
func (m Month) Before(other Month) bool { return string(m) < string(other) }

// FirstDay returns midnight UTC on the first day of the month.
func (m Month) FirstDay() time.Time {
	year, mon := m.split()
	return time.Date(year, time.Month(mon), 1, 0, 0, 0, 0, time.UTC)
}
