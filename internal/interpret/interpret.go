// Package interpret derives a vendor line, a category and a monetary total
// from raw OCR text using line-oriented heuristics. Extraction is
// best-effort: unparseable input falls back to the Miscellaneous category
// and the one-cent sentinel amount, never to zero.
package interpret

import (
	"context"
	"regexp"
	"strconv"
	"strings"
	"unicode"

	"ricevute/internal/core"
)

// Classifier assigns a category to a receipt given its raw text and the
// already-selected vendor line. Implementations return
// core.CategoryMiscellaneous when nothing matches or a lookup fails.
type Classifier interface {
	Classify(ctx context.Context, raw, vendorLine string) string
}

// Interpreter turns OCR text into a core.Receipt using a pluggable
// categorization strategy.
type Interpreter struct {
	classifier Classifier
}

func New(classifier Classifier) *Interpreter {
	return &Interpreter{classifier: classifier}
}

func (i *Interpreter) Interpret(ctx context.Context, raw string) core.Receipt {
	vendor := vendorLine(raw)
	return core.Receipt{
		VendorLine: vendor,
		Category:   i.classifier.Classify(ctx, raw, vendor),
		Amount:     core.Money{Cents: extractAmountCents(raw)},
	}
}

// vendorLine picks the first line with more than one whitespace-separated
// token and at least one letter; "Vendor" when none qualifies.
func vendorLine(raw string) string {
	for _, line := range strings.Split(raw, "\n") {
		line = strings.TrimSpace(line)
		if len(strings.Fields(line)) < 2 {
			continue
		}
		if strings.IndexFunc(line, unicode.IsLetter) >= 0 {
			return line
		}
	}
	return "Vendor"
}

// amountToken matches decimal amounts with exactly two places, optionally
// preceded by a dollar sign.
var amountToken = regexp.MustCompile(`\$?\s?(\d+\.\d{2})`)

// extractAmountCents scans for the first line where "total" co-occurs with
// a currency marker and takes that line's maximum amount token. Without
// such a line it takes the maximum token anywhere in the text, and without
// any token at all it returns the sentinel.
func extractAmountCents(raw string) int64 {
	for _, line := range strings.Split(raw, "\n") {
		if !strings.Contains(strings.ToLower(line), "total") {
			continue
		}
		if !strings.Contains(line, "$") {
			continue
		}
		if cents, ok := maxAmountCents(line); ok {
			return cents
		}
	}
	if cents, ok := maxAmountCents(raw); ok {
		return cents
	}
	return core.SentinelCents
}

func maxAmountCents(s string) (int64, bool) {
	var max int64
	found := false
	for _, m := range amountToken.FindAllStringSubmatch(s, -1) {
		cents, err := tokenToCents(m[1])
		if err != nil {
			continue
		}
		if !found || cents > max {
			max = cents
			found = true
		}
	}
	return max, found
}

// tokenToCents converts "12.50" to 1250 without floating point.
func tokenToCents(token string) (int64, error) {
	whole, frac, _ := strings.Cut(token, ".")
	w, err := strconv.ParseInt(whole, 10, 64)
	if err != nil {
		return 0, err
	}
	f, err := strconv.ParseInt(frac, 10, 64)
	if err != nil {
		return 0, err
	}
	return w*100 + f, nil
}
