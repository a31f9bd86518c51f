package boggle

import (
	"sort"

	"wordgames-server/internal/dictionary"
)

// WordSet is the set of words found on a board.
type WordSet map[string]struct{}

func (s WordSet) Contains(w string) bool {
	_, ok := s[w]
	return ok
}

// Sorted returns the words in alphabetical order.
func (s WordSet) Sorted() []string {
	out := make([]string, 0, len(s))
	for w := range s {
		out = append(out, w)
	}
	sort.Strings(out)
	return out
}

// MinWordLength is the shortest word that counts on a board of the given size.
func MinWordLength(size int) int {
	if size >= 5 {
		return 4
	}
	return 3
}

// Solve returns every dictionary word that can be spelled on the board by a
// path of distinct, adjacent (including diagonal) cells.
func Solve(b Board, dict *dictionary.Dictionary) WordSet {
	found := make(WordSet)
	if b.IsEmpty() || dict == nil {
		return found
	}

	var onBoard [256]bool
	for _, c := range b.cells {
		onBoard[c] = true
	}

	minLen := MinWordLength(b.size)
	words := make(map[string]struct{})
	prefixes := make(map[string]struct{})
	dict.Each(func(w string) bool {
		if len(w) < minLen || len(w) > len(b.cells) {
			return true
		}
		for i := 0; i < len(w); i++ {
			if !onBoard[w[i]] {
				return true
			}
		}
		words[w] = struct{}{}
		for i := 2; i <= len(w); i++ {
			prefixes[w[:i]] = struct{}{}
		}
		return true
	})
	if len(words) == 0 {
		return found
	}

	s := &search{
		board:    b,
		words:    words,
		prefixes: prefixes,
		visited:  make([]bool, len(b.cells)),
		path:     make([]byte, 0, len(b.cells)),
		found:    found,
	}
	for y := 0; y < b.size; y++ {
		for x := 0; x < b.size; x++ {
			s.extend(x, y)
		}
	}
	return found
}

type search struct {
	board    Board
	words    map[string]struct{}
	prefixes map[string]struct{}
	visited  []bool
	path     []byte
	found    WordSet
}

// extend appends the cell at (x, y) to the current path and keeps walking
// while the letters so far are a prefix of some candidate word.
func (s *search) extend(x, y int) {
	idx := y*s.board.size + x
	s.visited[idx] = true
	s.path = append(s.path, s.board.cells[idx])
	defer func() {
		s.visited[idx] = false
		s.path = s.path[:len(s.path)-1]
	}()

	prefix := string(s.path)
	if len(s.path) >= 2 {
		if _, ok := s.prefixes[prefix]; !ok {
			return
		}
	}
	if _, ok := s.words[prefix]; ok {
		s.found[prefix] = struct{}{}
	}

	size := s.board.size
	for ny := max(0, y-1); ny <= min(size-1, y+1); ny++ {
		for nx := max(0, x-1); nx <= min(size-1, x+1); nx++ {
			if s.visited[ny*size+nx] {
				continue
			}
			s.extend(nx, ny)
		}
	}
}
