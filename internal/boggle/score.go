package boggle

// Points returns the score of a found word by its length.
// The table is fixed so stored results stay comparable between games.
func Points(word string) int {
	switch n := len(word); {
	case n < 3:
		return 0
	case n <= 4:
		return 1
	case n == 5:
		return 2
	case n == 6:
		return 3
	case n == 7:
		return 5
	default:
		return 11
	}
}
