package core

import "testing"

func TestBuildYearSummary(t *testing.T) {
	totals := map[string]int64{
		"Travel":                  600000, // above the 5000.00 cap
		"Meals and Entertainment": 10000,  // under cap, 50% rate
		"Parking":                 5000,   // no rule configured
	}
	s := BuildYearSummary(2025, totals, DefaultDeductionRules())

	if s.Year != 2025 {
		t.Fatalf("year = %d", s.Year)
	}
	if s.Total.Cents != 615000 {
		t.Fatalf("total = %d, want 615000", s.Total.Cents)
	}
	if len(s.Categories) != 3 {
		t.Fatalf("expected 3 categories, got %d", len(s.Categories))
	}
	// Sorted by name: Meals, Parking, Travel
	meals, parking, travel := s.Categories[0], s.Categories[1], s.Categories[2]

	if meals.Deductible.Cents != 5000 {
		t.Errorf("meals deductible = %d, want 5000 (50%% of 10000)", meals.Deductible.Cents)
	}
	if travel.Deductible.Cents != 500000 {
		t.Errorf("travel deductible = %d, want capped 500000", travel.Deductible.Cents)
	}
	if parking.Deductible.Cents != 5000 {
		t.Errorf("parking deductible = %d, want uncapped 5000", parking.Deductible.Cents)
	}
	if parking.Limit.Cents != 0 {
		t.Errorf("parking should carry no limit")
	}
}

func TestBuildYearSummaryEmpty(t *testing.T) {
	s := BuildYearSummary(2025, nil, DefaultDeductionRules())
	if s.Total.Cents != 0 || len(s.Categories) != 0 {
		t.Fatalf("empty totals should produce an empty summary")
	}
}
