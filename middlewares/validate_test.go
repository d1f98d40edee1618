package middlewares

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestYMDRule(t *testing.T) {
	type form struct {
		Due string `validate:"omitempty,ymd"`
	}

	assert.NoError(t, validate.Struct(form{}))
	assert.NoError(t, validate.Struct(form{Due: "2026-03-01"}))
	assert.Error(t, validate.Struct(form{Due: "03/01/2026"}))
	assert.Error(t, validate.Struct(form{Due: "2026-13-01"}))
	assert.Error(t, validate.Struct(form{Due: "2026-03-01T00:00:00Z"}))
}
