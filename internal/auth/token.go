package auth

import (
	"crypto/rand"
	"fmt"
)

// TokenLength is the fixed length of every bearer token. Verification
// rejects anything else before touching the store.
const TokenLength = 36

const tokenAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789"

// generateToken returns a random 36-character alphanumeric string.
// Bytes past the largest multiple of the alphabet size are redrawn so
// the modulo cannot skew toward the start of the alphabet.
func generateToken() (string, error) {
	const limit = 256 - 256%len(tokenAlphabet)

	out := make([]byte, 0, TokenLength)
	buf := make([]byte, TokenLength)
	for len(out) < TokenLength {
		if _, err := rand.Read(buf); err != nil {
			return "", fmt.Errorf("reading randomness: %w", err)
		}
		for _, b := range buf {
			if int(b) >= limit {
				continue
			}
			out = append(out, tokenAlphabet[int(b)%len(tokenAlphabet)])
			if len(out) == TokenLength {
				break
			}
		}
	}
	return string(out), nil
}
