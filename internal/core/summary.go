package core

import "sort"

// CategorySummary aggregates one category's spending for a year against
// its deduction rule.
type CategorySummary struct {
	Category   string
	Total      Money
	Limit      Money
	Rate       float64
	Deductible Money
}

// YearSummary is the year-end view: per-category totals with deductible
// amounts, ordered by category name.
type YearSummary struct {
	Year       int
	Total      Money
	Categories []CategorySummary
}

// BuildYearSummary computes the deductible amount per category:
// min(total, limit) scaled by the category rate. Categories without a rule
// are reported with their full total and no cap.
func BuildYearSummary(year int, totals map[string]int64, rules map[string]DeductionRule) YearSummary {
	s := YearSummary{Year: year}
	for category, cents := range totals {
		line := CategorySummary{
			Category: category,
			Total:    Money{Cents: cents},
			Rate:     1.0,
		}
		if rule, ok := rules[category]; ok {
			capped := cents
			if rule.LimitCents > 0 && capped > rule.LimitCents {
				capped = rule.LimitCents
			}
			line.Limit = Money{Cents: rule.LimitCents}
			line.Rate = rule.Rate
			line.Deductible = Money{Cents: int64(float64(capped) * rule.Rate)}
		} else {
			line.Deductible = Money{Cents: cents}
		}
		s.Total.Cents += cents
		s.Categories = append(s.Categories, line)
	}
	sort.Slice(s.Categories, func(i, j int) bool {
		return s.Categories[i].Category < s.Categories[j].Category
	})
	return s
}
