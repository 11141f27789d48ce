package interpret

import (
	"context"
	"sort"
	"strings"

	"ricevute/internal/core"
)

// KeywordClassifier buckets receipts by substring match against a fixed
// keyword table. Within a line the first keyword (in stable sorted order)
// wins; across the document the last matching line wins, overwriting
// earlier matches. The scan order is load-bearing: downstream behavior
// documents last-line-wins.
type KeywordClassifier struct {
	table    map[string]string
	keywords []string
}

var _ Classifier = (*KeywordClassifier)(nil)

func NewKeywordClassifier(table map[string]string) *KeywordClassifier {
	if len(table) == 0 {
		table = core.DefaultKeywordTable()
	}
	keywords := make([]string, 0, len(table))
	for k := range table {
		keywords = append(keywords, k)
	}
	sort.Strings(keywords)
	return &KeywordClassifier{table: table, keywords: keywords}
}

func (c *KeywordClassifier) Classify(_ context.Context, raw, _ string) string {
	category := core.CategoryMiscellaneous
	for _, line := range strings.Split(raw, "\n") {
		if match, ok := c.classifyLine(line); ok {
			category = match
		}
	}
	return category
}

func (c *KeywordClassifier) classifyLine(line string) (string, bool) {
	lower := strings.ToLower(line)
	for _, keyword := range c.keywords {
		if strings.Contains(lower, keyword) {
			return c.table[keyword], true
		}
	}
	return "", false
}
