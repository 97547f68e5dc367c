package billing

import "testing"

func TestClassify(t *testing.T) {
	tests := []struct {
		desc string
		want Kind
	}{
		{"Monthly Subscription", KindMRR},
		{"Quarterly Subscription", KindMRR},
		{"Annual Subscription", KindMRR},
		{"One-Time Setup", KindOneTime},
		{"One-Time Revenue", KindOneTime},
		{"Setup fee", KindOneTime},
		{"Monthly Subscription + One-Time Setup", KindMixed},
		{"Consulting retainer", KindMixed},
		{"", KindMixed},
	}
	for _, tt := range tests {
		if got := Classify(tt.desc); got != tt.want {
			t.Errorf("Classify(%q) = %s, want %s", tt.desc, got, tt.want)
		}
	}
}

func TestFormatAmount(t *testing.T) {
	tests := []struct {
		currency string
		amount   string
		want     string
	}{
		{"USD", "1234567.5", "$1,234,567.50"},
		{"EUR", "999.9", "€999.90"},
		{"USD", "-42", "-$42.00"},
		{"CHF", "10", "CHF 10.00"},
	}
	for _, tt := range tests {
		if got := FormatAmount(tt.currency, d(tt.amount)); got != tt.want {
			t.Errorf("FormatAmount(%s, %s) = %q, want %q", tt.currency, tt.amount, got, tt.want)
		}
	}
}
