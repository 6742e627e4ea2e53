package booking

import (
	"crypto/rand"
	"fmt"
)

const (
	codePrefix   = "AP"
	codeAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
	codeLength   = 10
)

// generateCode produces a human-readable appointment code such as
// "AP7K2M9QX4TB". Uniqueness is enforced by the database constraint;
// the caller retries once on a collision.
func generateCode() (string, error) {
	buf := make([]byte, codeLength)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("failed to generate appointment code: %w", err)
	}
	for i, b := range buf {
		buf[i] = codeAlphabet[int(b)%len(codeAlphabet)]
	}
	return codePrefix + string(buf), nil
}
