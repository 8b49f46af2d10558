package utils

import "testing"

func TestFormatMinorUnits(t *testing.T) {
	cases := []struct {
		in   int64
		want string
	}{
		{0, "0"},
		{999, "999"},
		{1000, "1.000"},
		{450000, "450.000"},
		{1500000, "1.500.000"},
		{-450000, "-450.000"},
	}
	for _, tc := range cases {
		if got := FormatMinorUnits(tc.in); got != tc.want {
			t.Fatalf("FormatMinorUnits(%d) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestFormatAmountLabel(t *testing.T) {
	if got := FormatAmountLabel("IDR", 450000); got != "IDR 450.000" {
		t.Fatalf("got %q", got)
	}
	if got := FormatAmountLabel("", 450000); got != "450.000" {
		t.Fatalf("got %q", got)
	}
}
