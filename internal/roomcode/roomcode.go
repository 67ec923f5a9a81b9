package roomcode

import (
	"crypto/rand"
	"strings"
)

// Alphabet excludes visually confusable characters (I, O, 0, 1).
const Alphabet = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"

const (
	MinLength       = 4
	MaxLength       = 6
	GeneratedLength = 5
)

// Normalize trims whitespace and uppercases a room code. Every lookup goes
// through this so case and whitespace differences never produce distinct rooms.
func Normalize(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

// Valid reports whether a normalized code could have been produced by Generate.
// Client-supplied codes are accepted as-is after normalization; this check only
// guards server-generated codes.
func Valid(code string) bool {
	code = Normalize(code)
	if len(code) < MinLength || len(code) > MaxLength {
		return false
	}
	for _, r := range code {
		if !strings.ContainsRune(Alphabet, r) {
			return false
		}
	}
	return true
}

// Generate returns a random 5-character room code from the unambiguous
// alphabet. The alphabet has 32 characters, so indexing by byte is unbiased.
func Generate() string {
	buf := make([]byte, GeneratedLength)
	if _, err := rand.Read(buf); err != nil {
		panic("roomcode: crypto/rand unavailable: " + err.Error())
	}
	out := make([]byte, GeneratedLength)
	for i, b := range buf {
		out[i] = Alphabet[int(b)%len(Alphabet)]
	}
	return string(out)
}
