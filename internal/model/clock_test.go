package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseClock(t *testing.T) {
	m, err := ParseClock("08:30")
	require.NoError(t, err)
	assert.Equal(t, 8*60+30, m)

	_, err = ParseClock("25:00")
	assert.Error(t, err)
	_, err = ParseClock("08:75")
	assert.Error(t, err)
	_, err = ParseClock("bogus")
	assert.Error(t, err)
}

func TestFormatClock(t *testing.T) {
	assert.Equal(t, "08:05", FormatClock(8*60+5))
	assert.Equal(t, "00:00", FormatClock(0))
	assert.Equal(t, "23:59", FormatClock(23*60+59))
}
