package roomcode

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNormalize(t *testing.T) {
	req := require.New(t)

	req.Equal("ABC12", Normalize("abc12"))
	req.Equal("ABC12", Normalize("  ABC12\t"))
	req.Equal("", Normalize("   "))
	req.Equal("X1", Normalize("x1"))
}

func TestValid(t *testing.T) {
	req := require.New(t)

	req.True(Valid("AB23"))
	req.True(Valid("abcd23"))
	req.False(Valid("ABC"), "too short")
	req.False(Valid("ABCDEFG"), "too long")
	req.False(Valid("AB0CD"), "0 is not in the alphabet")
	req.False(Valid("AB1CD"), "1 is not in the alphabet")
	req.False(Valid(""))
}

func TestGenerate(t *testing.T) {
	req := require.New(t)

	seen := make(map[string]bool)
	for i := 0; i < 100; i++ {
		code := Generate()
		req.Len(code, GeneratedLength)
		req.True(Valid(code))
		for _, r := range code {
			req.True(strings.ContainsRune(Alphabet, r))
		}
		seen[code] = true
	}
	// 32^5 possibilities; 100 draws colliding down to a handful would mean a
	// broken generator.
	req.Greater(len(seen), 90)
}
