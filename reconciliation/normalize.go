package reconciliation

import (
	"math"
	"strconv"
	"strings"
)

// ParseAmount parses a decimal string, stripping thousands separators.
// Null/empty/unparseable input yields 0; it never fails.
func ParseAmount(s string) float64 {
	s = strings.TrimSpace(strings.ReplaceAll(s, ",", ""))
	if s == "" {
		return 0
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0
	}
	return v
}

// cents is the bucket key: round(x*100). Rounding to whole cents before
// bucketing is what makes 10.001 and 10.004 collide on 10.00. Plain round,
// not banker's rounding.
func cents(x float64) int64 {
	return int64(math.Round(x * 100))
}

// NormalizeStatus collapses a free-text status into the two-valued
// classification. There is no "unknown" bucket: anything that is not
// PAID/SUCCEEDED/COMPLETED counts as pending, null included.
func NormalizeStatus(s string) string {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "PAID", "SUCCEEDED", "COMPLETED":
		return "paid"
	}
	return "pending"
}

// NormalizeCustomer trims and lowercases. An empty result means "no customer"
// and can never satisfy a customer match.
func NormalizeCustomer(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// breakdownKey labels a raw status for summary breakdowns.
func breakdownKey(raw string) string {
	if strings.TrimSpace(raw) == "" {
		return "(empty)"
	}
	return raw
}
