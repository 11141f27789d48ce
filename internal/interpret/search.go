package interpret

import (
	"context"
	"io"
	"net/http"
	"net/url"
	"time"

	"ricevute/internal/core"
)

// SearchClassifier looks the vendor up against a web-search endpoint and
// buckets the returned snippet text with the same keyword table the local
// strategy uses. Any failure along the way degrades to Miscellaneous; the
// pipeline never fails on categorization.
type SearchClassifier struct {
	endpoint string
	keywords *KeywordClassifier
	http     *http.Client
}

var _ Classifier = (*SearchClassifier)(nil)

func NewSearchClassifier(endpoint string, table map[string]string) *SearchClassifier {
	return &SearchClassifier{
		endpoint: endpoint,
		keywords: NewKeywordClassifier(table),
		http:     &http.Client{Timeout: 15 * time.Second},
	}
}

func (c *SearchClassifier) Classify(ctx context.Context, _, vendorLine string) string {
	u, err := url.Parse(c.endpoint)
	if err != nil {
		return core.CategoryMiscellaneous
	}
	q := u.Query()
	q.Set("q", vendorLine)
	u.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return core.CategoryMiscellaneous
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return core.CategoryMiscellaneous
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return core.CategoryMiscellaneous
	}
	snippet, err := io.ReadAll(io.LimitReader(resp.Body, 256<<10))
	if err != nil {
		return core.CategoryMiscellaneous
	}
	return c.keywords.Classify(ctx, string(snippet), vendorLine)
}
