package auth

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateToken(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 200; i++ {
		token, err := generateToken()
		require.NoError(t, err)
		require.Len(t, token, TokenLength)

		for _, r := range token {
			isAlnum := (r >= 'A' && r <= 'Z') || (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9')
			assert.True(t, isAlnum, "token contains non-alphanumeric %q", r)
		}

		assert.False(t, seen[token], "duplicate token generated")
		seen[token] = true
	}
}

func TestGenerateTokenCoversAlphabet(t *testing.T) {
	// 200 tokens is 7200 character draws; a character the generator can
	// actually produce is missing from that sample with probability on
	// the order of 1e-50.
	counts := make(map[byte]int)
	for i := 0; i < 200; i++ {
		token, err := generateToken()
		require.NoError(t, err)
		for j := 0; j < len(token); j++ {
			counts[token[j]]++
		}
	}

	for i := 0; i < len(tokenAlphabet); i++ {
		assert.Positive(t, counts[tokenAlphabet[i]],
			"character %q never generated", tokenAlphabet[i])
	}
}
