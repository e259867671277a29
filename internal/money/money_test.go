package money

import "testing"

func TestCentsFromUnits(t *testing.T) {
	cases := []struct {
		units float64
		want  int64
	}{
		{0, 0},
		{1, 100},
		{20.01, 2001},
		{0.1, 10},
		{19.99, 1999},
		{1234.56, 123456},
		{-15, -1500},
	}
	for _, tc := range cases {
		if got := CentsFromUnits(tc.units); got != tc.want {
			t.Fatalf("CentsFromUnits(%v) = %d, want %d", tc.units, got, tc.want)
		}
	}
}

func TestUnitsFromCents(t *testing.T) {
	if got := UnitsFromCents(2001); got != 20.01 {
		t.Fatalf("UnitsFromCents(2001) = %v, want 20.01", got)
	}
	if got := UnitsFromCents(-1500); got != -15.0 {
		t.Fatalf("UnitsFromCents(-1500) = %v, want -15", got)
	}
}

func TestFormatCentsAlwaysTwoDecimals(t *testing.T) {
	cases := []struct {
		cents int64
		want  string
	}{
		{0, "0.00"},
		{5, "0.05"},
		{2000, "20.00"},
		{2001, "20.01"},
		{-1550, "-15.50"},
	}
	for _, tc := range cases {
		if got := FormatCents(tc.cents); got != tc.want {
			t.Fatalf("FormatCents(%d) = %q, want %q", tc.cents, got, tc.want)
		}
	}
}
