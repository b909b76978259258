package services

import (
	"testing"
	"time"
)

func TestQualify(t *testing.T) {
	now := time.Date(2026, time.March, 1, 12, 0, 0, 0, time.UTC)

	cases := []struct {
		name      string
		year      string
		mileage   string
		qualified bool
		plans     []string
	}{
		{"new low mileage", "2022", "50,000", true, []string{"Works Plan", "Works Plus Plan"}},
		{"six years is still works", "2020", " 119,999 ", true, []string{"Works Plan", "Works Plus Plan"}},
		{"works mileage limit is exclusive", "2020", "120000", true, []string{"Standard Plan"}},
		{"standard by age", "2018", "150000", true, []string{"Standard Plan"}},
		{"ten years is still standard", "2016", "199999", true, []string{"Standard Plan"}},
		{"too old", "2015", "10", false, nil},
		{"too many km", "2024", "200000", false, nil},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := Qualify(tc.year, tc.mileage, now)
			if got.Qualified != tc.qualified {
				t.Fatalf("expected qualified=%v, got %v", tc.qualified, got.Qualified)
			}
			names := got.PlanNames()
			if len(names) != len(tc.plans) {
				t.Fatalf("expected plans %v, got %v", tc.plans, names)
			}
			for i := range names {
				if names[i] != tc.plans[i] {
					t.Fatalf("expected plans %v, got %v", tc.plans, names)
				}
			}
			if got.Error != "" {
				t.Fatalf("unexpected error %q", got.Error)
			}
		})
	}
}

func TestQualifyInvalidInput(t *testing.T) {
	now := time.Date(2026, time.March, 1, 12, 0, 0, 0, time.UTC)
	for _, in := range [][2]string{{"abc", "1000"}, {"2020", "lots"}, {"", ""}} {
		got := Qualify(in[0], in[1], now)
		if got.Qualified {
			t.Fatalf("Qualify(%q, %q): expected not qualified", in[0], in[1])
		}
		if got.Error != "invalid vehicle data" {
			t.Fatalf("Qualify(%q, %q): expected invalid vehicle data, got %q", in[0], in[1], got.Error)
		}
	}
}
