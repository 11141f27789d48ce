package config

import (
	"bufio"
	"os"
	"strconv"
	"strings"

	"ricevute/internal/core"
)

// loadKeywordTable reads "keyword=Category" lines from path. Falls back to
// the built-in table when the file is absent or yields nothing.
func loadKeywordTable(path string) map[string]string {
	if path == "" {
		return core.DefaultKeywordTable()
	}
	table := map[string]string{}
	for _, line := range readLines(path) {
		k, v, ok := strings.Cut(line, "=")
		if !ok {
			continue
		}
		k = strings.ToLower(strings.TrimSpace(k))
		v = strings.TrimSpace(v)
		if k == "" || v == "" {
			continue
		}
		table[k] = v
	}
	if len(table) == 0 {
		return core.DefaultKeywordTable()
	}
	return table
}

// loadDeductionRules reads "Category=limit_cents:rate" lines from path.
func loadDeductionRules(path string) map[string]core.DeductionRule {
	if path == "" {
		return core.DefaultDeductionRules()
	}
	rules := map[string]core.DeductionRule{}
	for _, line := range readLines(path) {
		name, value, ok := strings.Cut(line, "=")
		if !ok {
			continue
		}
		limitStr, rateStr, _ := strings.Cut(strings.TrimSpace(value), ":")
		limit, err := strconv.ParseInt(strings.TrimSpace(limitStr), 10, 64)
		if err != nil || limit < 0 {
			continue
		}
		rate := 1.0
		if rateStr != "" {
			if r, err := strconv.ParseFloat(strings.TrimSpace(rateStr), 64); err == nil && r > 0 && r <= 1 {
				rate = r
			}
		}
		rules[strings.TrimSpace(name)] = core.DeductionRule{LimitCents: limit, Rate: rate}
	}
	if len(rules) == 0 {
		return core.DefaultDeductionRules()
	}
	return rules
}

func readLines(path string) []string {
	f, err := os.Open(path)
	if err != nil {
		return nil
	}
	defer f.Close()
	var out []string
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		out = append(out, line)
	}
	return out
}
