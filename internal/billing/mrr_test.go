package billing

import "testing"

func TestComputeMRRPerSeat(t *testing.T) {
	mrr := ComputeMRR(ModelPerSeat, d("249"), 15, d("0"), d("10"))
	if !mrr.Equal(d("3361.5")) {
		t.Fatalf("mrr = %s, want 3361.5", mrr)
	}
	arr := AnnualRunRate(mrr, d("2000"))
	if !arr.Equal(d("42338")) {
		t.Fatalf("arr = %s, want 42338", arr)
	}
}

func TestComputeMRRFlat(t *testing.T) {
	tests := []struct {
		flat, discount, want string
	}{
		{"5000", "0", "5000"},
		{"5000", "20", "4000"},
		{"1234.56", "50", "617.28"},
	}
	for _, tt := range tests {
		if got := ComputeMRR(ModelFlatMRR, d("0"), 0, d(tt.flat), d(tt.discount)); !got.Equal(d(tt.want)) {
			t.Errorf("flat %s discount %s%% = %s, want %s", tt.flat, tt.discount, got, tt.want)
		}
	}
}

func TestComputeMRROneTimeOnly(t *testing.T) {
	if got := ComputeMRR(ModelOneTimeOnly, d("999"), 99, d("999"), d("0")); !got.IsZero() {
		t.Fatalf("one_time_only mrr = %s, want 0", got)
	}
}

func TestComputeMRRClampsDiscount(t *testing.T) {
	if got := ComputeMRR(ModelFlatMRR, d("0"), 0, d("100"), d("150")); !got.IsZero() {
		t.Fatalf("discount over 100%% should clamp to zero mrr, got %s", got)
	}
	if got := ComputeMRR(ModelFlatMRR, d("0"), 0, d("100"), d("-10")); !got.Equal(d("100")) {
		t.Fatalf("negative discount should clamp to no discount, got %s", got)
	}
}
