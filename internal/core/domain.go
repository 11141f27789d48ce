package core

import (
	"errors"
	"strings"
	"time"
)

// CategoryMiscellaneous is the fallback category used whenever no keyword
// bucket matches a receipt, or a classification lookup fails.
const CategoryMiscellaneous = "Miscellaneous"

// SentinelCents marks "no amount could be parsed". It is deliberately
// non-zero so callers can tell an unparsed receipt apart from a missing
// one; zero is never a valid extracted amount.
const SentinelCents int64 = 1

type (
	Date struct {
		time.Time
	}

	Money struct {
		Cents int64
	}

	// Receipt is the interpretation of one receipt's OCR text. It is
	// derived data; the caller decides whether to persist it as an Expense.
	Receipt struct {
		Category   string
		Amount     Money
		VendorLine string
	}

	Expense struct {
		Year        int
		Date        Date
		Category    string
		Description string
		Amount      Money
	}

	// DeductionRule bounds how much of a category's yearly total counts as
	// deductible: min(total, LimitCents) scaled by Rate.
	DeductionRule struct {
		LimitCents int64
		Rate       float64
	}
)

var (
	ErrInvalidDay       = errors.New("invalid day")
	ErrInvalidMonth     = errors.New("invalid month")
	ErrInvalidAmount    = errors.New("invalid amount")
	ErrEmptyDescription = errors.New("empty description")
	ErrEmptyCategory    = errors.New("empty category")
)

// NewDate creates a new Date from year, month, day.
func NewDate(year, month, day int) Date {
	return Date{Time: time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)}
}

func (d Date) Validate() error {
	if d.IsZero() {
		return errors.New("date cannot be zero")
	}
	_, month, day := d.Date()
	if day < 1 || day > 31 {
		return ErrInvalidDay
	}
	if month < 1 || month > 12 {
		return ErrInvalidMonth
	}
	return nil
}

// Day returns the day of the month.
func (d Date) Day() int {
	return d.Time.Day()
}

// Month returns the month as an int (1-12).
func (d Date) Month() int {
	return int(d.Time.Month())
}

// Year returns the year.
func (d Date) Year() int {
	return d.Time.Year()
}

func (m Money) Validate() error {
	if m.Cents <= 0 {
		return ErrInvalidAmount
	}
	return nil
}

// IsSentinel reports whether the amount is the "unparsed" marker rather
// than a real measurement.
func (m Money) IsSentinel() bool {
	return m.Cents == SentinelCents
}

func (e Expense) Validate() error {
	if err := e.Date.Validate(); err != nil {
		return err
	}
	if e.Year < 2000 || e.Year > 2100 {
		return errors.New("year out of range")
	}
	if len(strings.TrimSpace(e.Description)) == 0 {
		return ErrEmptyDescription
	}
	if len(e.Description) > 200 {
		return errors.New("description too long (max 200 characters)")
	}
	if err := e.Amount.Validate(); err != nil {
		return err
	}
	if strings.TrimSpace(e.Category) == "" {
		return ErrEmptyCategory
	}
	return nil
}

// DefaultKeywordTable is the keyword -> category map used by the keyword
// classifier when no table is configured. Matching is lowercase substring.
func DefaultKeywordTable() map[string]string {
	return map[string]string{
		"food":       "Meals and Entertainment",
		"restaurant": "Meals and Entertainment",
		"uber":       "Travel",
		"hotel":      "Travel",
		"flight":     "Travel",
		"pen":        "Supplies",
		"paper":      "Supplies",
		"internet":   "Utilities",
		"hydro":      "Utilities",
		"misc":       CategoryMiscellaneous,
	}
}

// DefaultDeductionRules returns the per-category annual deduction caps
// applied by year-end summaries.
func DefaultDeductionRules() map[string]DeductionRule {
	return map[string]DeductionRule{
		"Meals and Entertainment": {LimitCents: 300000, Rate: 0.5},
		"Travel":                  {LimitCents: 500000, Rate: 1.0},
		"Supplies":                {LimitCents: 200000, Rate: 1.0},
		"Utilities":               {LimitCents: 150000, Rate: 1.0},
		CategoryMiscellaneous:     {LimitCents: 100000, Rate: 1.0},
	}
}
