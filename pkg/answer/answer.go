// Package answer implements answer commitments for clues: a submitted
// answer is normalized, hashed, and compared against the stored
// commitment. The plaintext answer never leaves this package.
package answer

import (
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"strings"
)

// Normalize trims surrounding whitespace and lowercases the answer so
// that matching is case-insensitive.
func Normalize(raw string) string {
	return strings.ToLower(strings.TrimSpace(raw))
}

// Commitment returns the hex-encoded SHA-256 of the normalized answer.
func Commitment(raw string) string {
	sum := sha256.Sum256([]byte(Normalize(raw)))
	return hex.EncodeToString(sum[:])
}

// Verify reports whether raw matches the stored commitment. Malformed
// input is treated as a non-match, never an error.
func Verify(raw, commitment string) bool {
	if commitment == "" {
		return false
	}
	computed := Commitment(raw)
	return subtle.ConstantTimeCompare([]byte(computed), []byte(commitment)) == 1
}
