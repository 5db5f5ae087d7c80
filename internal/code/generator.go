package code

import (
	"crypto/rand"
	"math/big"
)

// Alphabet for room codes. 32 symbols; ambiguous glyphs (0/O, 1/I) are
// excluded so codes survive being read aloud or typed from a small screen.
const defaultAlphabet = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"

// DefaultLength is the standard room code length.
const DefaultLength = 6

// Generator produces random room codes. It makes no uniqueness guarantee;
// collision handling belongs to the room store's create path.
type Generator struct {
	alphabet string
	length   int
}

// New creates a generator for codes of the given length.
func New(length int) *Generator {
	if length <= 0 {
		length = DefaultLength
	}
	return &Generator{
		alphabet: defaultAlphabet,
		length:   length,
	}
}

// Generate returns a new random code of the configured length.
func (g *Generator) Generate() (string, error) {
	result := make([]byte, g.length)
	alphabetLen := big.NewInt(int64(len(g.alphabet)))

	for i := 0; i < g.length; i++ {
		n, err := rand.Int(rand.Reader, alphabetLen)
		if err != nil {
			return "", err
		}
		result[i] = g.alphabet[n.Int64()]
	}

	return string(result), nil
}
