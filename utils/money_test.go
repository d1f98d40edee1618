package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRound2(t *testing.T) {
	assert.Equal(t, 10.0, Round2(10.004))
	// 10.005 lands just below the midpoint in binary floating point
	assert.Equal(t, 10.0, Round2(10.005))
	assert.Equal(t, 10.01, Round2(10.0051))
	assert.Equal(t, -2.5, Round2(-2.499))
	assert.Equal(t, 0.0, Round2(0))
}

func TestParseMoney(t *testing.T) {
	assert.Equal(t, 1234.56, ParseMoney("1,234.56", 0))
	assert.Equal(t, 99.9, ParseMoney(" 99.9 ", 0))
	assert.Equal(t, 7.0, ParseMoney("", 7))
	assert.Equal(t, 7.0, ParseMoney("abc", 7))
}

func TestUpdatesFromPtrDTO(t *testing.T) {
	type patch struct {
		Name  *string  `json:"name"`
		Rate  *float64 `json:"hourly_rate"`
		Skip  *string  `json:"-"`
		Unset *string  `json:"unset"`
	}
	name := "Jane"
	rate := 42.5
	skip := "x"

	updates := UpdatesFromPtrDTO(&patch{Name: &name, Rate: &rate, Skip: &skip})
	assert.Equal(t, map[string]any{"name": "Jane", "hourly_rate": 42.5}, updates)
}

func TestNormalizeDTO(t *testing.T) {
	type form struct {
		Name  *string  `json:"name"`
		Rate  *float64 `json:"rate"`
		Email string   `json:"email" normalize:"email"`
		Due   string   `json:"due_date" normalize:"date"`
	}
	name := "  Jane  "
	rate := 10.0051
	f := form{Name: &name, Rate: &rate, Email: " Jane@Example.COM ", Due: "2026-03-01T10:30:00Z"}

	NormalizeDTO(&f)
	assert.Equal(t, "Jane", *f.Name)
	assert.Equal(t, 10.01, *f.Rate)
	assert.Equal(t, "jane@example.com", f.Email)
	assert.Equal(t, "2026-03-01", f.Due)

	// The date rule leaves an already-plain day alone.
	g := form{Due: "2026-03-01"}
	NormalizeDTO(&g)
	assert.Equal(t, "2026-03-01", g.Due)
}
