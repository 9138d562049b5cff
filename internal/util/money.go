package util

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/shopspring/decimal"
)

var (
	thousandsDot   = regexp.MustCompile(`^\d{1,3}(?:\.\d{3})+$`)
	thousandsComma = regexp.MustCompile(`^\d{1,3}(?:,\d{3})+$`)
)

// ParseMoney reads order totals as exported by the store: "R$ 1.234,56", "1234.56", "89,90".
func ParseMoney(raw string) (decimal.Decimal, error) {
	s := strings.ReplaceAll(raw, "\u00A0", " ")
	s = strings.ReplaceAll(s, "R$", "")
	s = strings.ReplaceAll(s, " ", "")
	if s == "" {
		return decimal.Zero, fmt.Errorf("empty amount")
	}
	return decimal.NewFromString(normalizeNumericToken(s))
}

func normalizeNumericToken(token string) string {
	if thousandsDot.MatchString(token) {
		return strings.ReplaceAll(token, ".", "")
	}
	if thousandsComma.MatchString(token) && !strings.Contains(token, ".") {
		return strings.ReplaceAll(token, ",", "")
	}
	lastDot := strings.LastIndex(token, ".")
	lastComma := strings.LastIndex(token, ",")
	switch {
	case lastDot >= 0 && lastComma >= 0 && lastComma > lastDot:
		return strings.ReplaceAll(strings.ReplaceAll(token, ".", ""), ",", ".")
	case lastDot >= 0 && lastComma >= 0:
		return strings.ReplaceAll(token, ",", "")
	case lastComma >= 0:
		return strings.ReplaceAll(token, ",", ".")
	default:
		return token
	}
}
