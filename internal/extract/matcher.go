// Package extract turns raw invoice text into an InvoiceRecord.
// Extraction is a pure function of the text: same input, same record.
package extract

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/shopspring/decimal"
)

// Matcher attempts to pull one field candidate out of invoice text
type Matcher interface {
	TryExtract(text string) (string, bool)
}

type patternMatcher struct {
	re    *regexp.Regexp
	group int
}

// Pattern builds a case-insensitive matcher returning capture group 1
func Pattern(expr string) Matcher {
	return PatternGroup(expr, 1)
}

// PatternGroup builds a case-insensitive matcher returning the given group.
// Group 0 returns the whole match.
func PatternGroup(expr string, group int) Matcher {
	return &patternMatcher{
		re:    regexp.MustCompile(`(?i)` + expr),
		group: group,
	}
}

func (m *patternMatcher) TryExtract(text string) (string, bool) {
	match := m.re.FindStringSubmatch(text)
	if match == nil || len(match) <= m.group {
		return "", false
	}
	candidate := strings.TrimSpace(match[m.group])
	if candidate == "" {
		return "", false
	}
	return candidate, true
}

// FirstMatch runs matchers in order, most specific first; the first
// success is authoritative and later matchers are not consulted.
func FirstMatch(text string, matchers []Matcher) (string, bool) {
	for _, m := range matchers {
		if candidate, ok := m.TryExtract(text); ok {
			return candidate, true
		}
	}
	return "", false
}

var currencyToken = regexp.MustCompile(`(?i)\b(?:TZS|TSh)\b\.?`)

// ParseAmount normalizes an extracted amount fragment: currency tokens on
// either side are stripped case-insensitively, thousands separators
// removed. Negative or unparseable candidates are rejected.
func ParseAmount(fragment string) (decimal.Decimal, error) {
	s := currencyToken.ReplaceAllString(fragment, "")
	s = strings.ReplaceAll(s, ",", "")
	s = strings.TrimSpace(s)

	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, err
	}
	if d.IsNegative() {
		return decimal.Zero, fmt.Errorf("negative amount %s", d)
	}
	return d, nil
}
