package lifecycle

import (
	"crypto/rand"
	"crypto/subtle"
	"fmt"
	"strings"
)

// keyAlphabet omits look-alike characters (0/O, 1/I). Its length divides
// 256, so reducing a random byte modulo len keeps the draw uniform.
const keyAlphabet = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"

// DefaultKeyCodeLength is used when no length is configured.
const DefaultKeyCodeLength = 8

// NewKeyCode returns a random release code of n characters drawn from a
// cryptographically secure source.
func NewKeyCode(n int) (string, error) {
	if n <= 0 {
		n = DefaultKeyCodeLength
	}
	buf := make([]byte, n)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("read random: %w", err)
	}
	for i, b := range buf {
		buf[i] = keyAlphabet[int(b)%len(keyAlphabet)]
	}
	return string(buf), nil
}

// keyMatches compares a submitted code with the stored one in constant time.
// Surrounding whitespace is ignored; case must match exactly.
func keyMatches(stored, submitted string) bool {
	if stored == "" {
		return false
	}
	a := []byte(stored)
	b := []byte(strings.TrimSpace(submitted))
	return subtle.ConstantTimeCompare(a, b) == 1
}
