// Package dictionary holds the immutable word set shared by every game instance.
//
// A Dictionary is built once at startup and only read afterwards, so it is safe
// to share between goroutines without locking.
package dictionary

import (
	"bufio"
	_ "embed"
	"fmt"
	"io"
	"os"
	"strings"
)

// DefaultMinLength keeps words of three letters or more. 4x4 boards score
// three letter words; 5x5 boards drop them in the solver.
const DefaultMinLength = 3

//go:embed default_words.txt
var embeddedWords string

// Dictionary is a read-only set of lowercase words.
type Dictionary struct {
	words map[string]struct{}
}

// New builds a dictionary from the given words without any length filter.
// Words are lowercased and trimmed; empty entries are skipped.
func New(words ...string) *Dictionary {
	d := &Dictionary{words: make(map[string]struct{}, len(words))}
	for _, w := range words {
		w = normalize(w)
		if w == "" {
			continue
		}
		d.words[w] = struct{}{}
	}
	return d
}

// Load reads one word per line and keeps words with at least minLength
// alphabetic letters.
func Load(r io.Reader, minLength int) (*Dictionary, error) {
	d := &Dictionary{words: make(map[string]struct{})}
	sc := bufio.NewScanner(r)
	for sc.Scan() {
		w := normalize(sc.Text())
		if len(w) < minLength || !isAlpha(w) {
			continue
		}
		d.words[w] = struct{}{}
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("read word list: %w", err)
	}
	return d, nil
}

// LoadFile loads a word list from path, or the embedded default list when
// path is empty.
func LoadFile(path string, minLength int) (*Dictionary, error) {
	if path == "" {
		return Load(strings.NewReader(embeddedWords), minLength)
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open word list %s: %w", path, err)
	}
	defer f.Close()
	return Load(f, minLength)
}

// Contains reports whether w is in the dictionary. w must already be lowercase.
func (d *Dictionary) Contains(w string) bool {
	_, ok := d.words[w]
	return ok
}

// Len returns the number of words.
func (d *Dictionary) Len() int { return len(d.words) }

// Each calls fn for every word until fn returns false. Order is unspecified.
func (d *Dictionary) Each(fn func(word string) bool) {
	for w := range d.words {
		if !fn(w) {
			return
		}
	}
}

func normalize(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

func isAlpha(s string) bool {
	for _, r := range s {
		if r < 'a' || r > 'z' {
			return false
		}
	}
	return true
}
