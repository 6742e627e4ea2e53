package middleware

import (
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClockAndDateValidators(t *testing.T) {
	v := validator.New()
	require.NoError(t, v.RegisterValidation("clock", validClock))
	require.NoError(t, v.RegisterValidation("dateonly", validDateOnly))

	assert.NoError(t, v.Var("08:30", "clock"))
	assert.NoError(t, v.Var("23:59", "clock"))
	assert.Error(t, v.Var("8:30am", "clock"))
	assert.Error(t, v.Var("25:00", "clock"))

	assert.NoError(t, v.Var("2026-09-14", "dateonly"))
	assert.Error(t, v.Var("14/09/2026", "dateonly"))
	assert.Error(t, v.Var("2026-13-01", "dateonly"))
}
