package util

import "testing"

func TestClamp(t *testing.T) {
	cases := []struct{ v, lo, hi, want int }{
		{5, 1, 10, 5},
		{0, 1, 10, 1},
		{11, 1, 10, 10},
		{3, 10, 1, 3}, // inverted bounds
		{-4, 2, -2, -2},
	}
	for _, tc := range cases {
		if got := Clamp(tc.v, tc.lo, tc.hi); got != tc.want {
			t.Errorf("Clamp(%d, %d, %d) = %d, want %d", tc.v, tc.lo, tc.hi, got, tc.want)
		}
	}
	if got := Clamp(uint64(0), 1, 1024); got != 1 {
		t.Errorf("snapshot interval clamp = %d", got)
	}
}
