package boggle

import (
	"errors"
	"fmt"
)

// ErrNoDice is returned for board sizes without a dice table.
var ErrNoDice = errors.New("UNIMPLEMENTED_CONFIGURATION: no dice defined for board size")

// Classic 4x4 dice.
var Dice16 = [16]string{
	"AACIOT", "AHMORS", "EGKLUY", "ABILTY", "ACDEMP",
	"EGINTV", "GILRUW", "ELPSTU", "DENOSW", "ACELRS",
	"ABJMOQ", "EEFHIY", "EHINPS", "DKNOTU", "ADENVZ",
	"BIFORX",
}

// Big 5x5 dice. Boards of this size disallow three letter words.
var Dice25 = [25]string{
	"AAAFRS", "AAEEEE", "AAFIRS", "ADENNN", "AEEEEM",
	"AEEGMU", "AEGMNN", "AFIRSY", "BJKQXZ", "CCNSTW",
	"CEIILT", "CEIPST", "DDLNOR", "DHHLOR", "IKLMQU",
	"DHLNOR", "EIIITT", "CEILPT", "EMOTTT", "ENSSSU",
	"FIPRSY", "GORRVW", "HIPRRY", "NOOTUW", "OOOTTU",
}

// DiceFor returns the dice used to roll a board of the given side length.
func DiceFor(size int) ([]string, error) {
	switch size {
	case 4:
		return Dice16[:], nil
	case 5:
		return Dice25[:], nil
	default:
		return nil, fmt.Errorf("%w: %d", ErrNoDice, size)
	}
}
