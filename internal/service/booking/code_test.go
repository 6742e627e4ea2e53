package booking

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateCodeFormat(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 100; i++ {
		code, err := generateCode()
		require.NoError(t, err)
		assert.Regexp(t, `^AP[A-Z0-9]{10}$`, code)
		seen[code] = true
	}
	// collisions at this sample size would indicate a broken generator
	assert.Len(t, seen, 100)
}
