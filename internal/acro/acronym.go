// Package acro implements the acronym phrase game: acronym generation,
// phrase validation and reaction voting.
package acro

import (
	"math/rand"
	"strings"
)

const (
	MinLength = 3
	MaxLength = 9
)

// letterWeights is the relative frequency of each letter a-z in English text.
var letterWeights = [26]float64{
	0.08167, 0.01492, 0.02782, 0.04253, 0.12702, 0.02228, 0.02015,
	0.06094, 0.06966, 0.00153, 0.00772, 0.04025, 0.02406, 0.06749,
	0.07507, 0.01929, 0.00095, 0.05987, 0.06327, 0.09056, 0.02758,
	0.00978, 0.02360, 0.00150, 0.01974, 0.00074,
}

// Acronym is a sequence of lowercase letters players expand into a phrase.
type Acronym string

// Generate picks a length uniformly from [min, max] (in either order) and
// then draws each letter independently from the frequency table.
func Generate(rng *rand.Rand, lo, hi int) Acronym {
	if lo > hi {
		lo, hi = hi, lo
	}
	n := lo + rng.Intn(hi-lo+1)

	var total float64
	for _, w := range letterWeights {
		total += w
	}

	letters := make([]byte, n)
	for i := range letters {
		letters[i] = pickLetter(rng.Float64() * total)
	}
	return Acronym(letters)
}

func pickLetter(r float64) byte {
	for i, w := range letterWeights {
		if r < w {
			return byte('a' + i)
		}
		r -= w
	}
	return 'e'
}

// Valid reports whether phrase expands the acronym: one whitespace separated
// word per letter, each starting with that letter, case-insensitively.
func (a Acronym) Valid(phrase string) bool {
	words := strings.Fields(phrase)
	if len(words) != len(a) || len(a) == 0 {
		return false
	}
	for i, w := range words {
		first := strings.ToLower(w[:1])
		if first[0] != a[i] {
			return false
		}
	}
	return true
}

// String renders the acronym upper-cased with spaces between letters.
func (a Acronym) String() string {
	parts := make([]string, len(a))
	for i := range a {
		parts[i] = strings.ToUpper(string(a[i]))
	}
	return strings.Join(parts, " ")
}
