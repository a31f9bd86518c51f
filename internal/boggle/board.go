package boggle

import (
	"errors"
	"math/rand"
	"strings"
)

const (
	MinSize = 3
	MaxSize = 9
)

// Board is a square grid of lowercase letters stored row-major.
type Board struct {
	size  int
	cells []byte
}

// NewBoard builds a board from rows of letters. Every row must have the same
// length as the number of rows.
func NewBoard(rows ...string) (Board, error) {
	size := len(rows)
	cells := make([]byte, 0, size*size)
	for _, row := range rows {
		if len(row) != size {
			return Board{}, errors.New("INVALID_BOARD: board must be square")
		}
		cells = append(cells, strings.ToLower(row)...)
	}
	return Board{size: size, cells: cells}, nil
}

// Roll shuffles the dice for size into the grid, one die per cell, and turns
// up one random face on each.
func Roll(rng *rand.Rand, size int) (Board, error) {
	dice, err := DiceFor(size)
	if err != nil {
		return Board{}, err
	}

	cells := make([]byte, len(dice))
	for cell, die := range rng.Perm(len(dice)) {
		faces := dice[die]
		cells[cell] = faces[rng.Intn(len(faces))] + ('a' - 'A')
	}
	return Board{size: size, cells: cells}, nil
}

func (b Board) Size() int { return b.size }

// IsEmpty reports whether the board has no cells.
func (b Board) IsEmpty() bool { return len(b.cells) == 0 }

// At returns the letter at column x, row y.
func (b Board) At(x, y int) byte { return b.cells[y*b.size+x] }

// Rows returns the board as one string per row.
func (b Board) Rows() []string {
	rows := make([]string, b.size)
	for y := range rows {
		rows[y] = string(b.cells[y*b.size : (y+1)*b.size])
	}
	return rows
}

// String renders the board upper-cased with letters separated by spaces.
func (b Board) String() string {
	var sb strings.Builder
	for y, row := range b.Rows() {
		if y > 0 {
			sb.WriteByte('\n')
		}
		for x := range row {
			if x > 0 {
				sb.WriteByte(' ')
			}
			sb.WriteByte(row[x] - ('a' - 'A'))
		}
	}
	return sb.String()
}
