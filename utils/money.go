package utils

import (
	"math"
	"strconv"
	"strings"
)

// Round2 rounds x to 2 decimal places (banking-style simple round).
func Round2(x float64) float64 {
	return math.Round(x*100) / 100
}

// ParseMoney parses a decimal string, tolerating thousands separators and
// surrounding whitespace. Returns def when the input is empty or unparseable.
func ParseMoney(s string, def float64) float64 {
	s = strings.TrimSpace(strings.ReplaceAll(s, ",", ""))
	if s == "" {
		return def
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return def
	}
	return v
}
