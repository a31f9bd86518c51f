package game

import (
	"errors"
	"fmt"
)

// UnexpectedErrorText is shown to players when a game dies for a reason they
// cannot act on. Details go to the log.
const UnexpectedErrorText = "An unexpected error occurred, if this error persists please contact the author."

var (
	// ErrActiveSession is returned when a channel already runs a game.
	ErrActiveSession = errors.New("ACTIVE_SESSION: A game is already running in this channel")

	// ErrNotEnoughPlayers means nobody qualified for the final standings.
	ErrNotEnoughPlayers = errors.New("NOT_ENOUGH_PLAYERS: Not enough players")

	// ErrUnknownGame is returned for a game name with no registered kind.
	ErrUnknownGame = errors.New("UNKNOWN_GAME: No such game")
)

// ConfigError carries a message meant to be shown to the user as is.
type ConfigError struct {
	Message string
}

func (e *ConfigError) Error() string { return e.Message }

func configErrorf(format string, args ...any) error {
	return &ConfigError{Message: fmt.Sprintf(format, args...)}
}

// UnimplementedConfigError is returned when a clamped setting is in range
// but the game has no way to honor it, such as a board size without dice.
type UnimplementedConfigError struct {
	Setting string
	Value   int
	Err     error
}

func (e *UnimplementedConfigError) Error() string {
	return fmt.Sprintf("UNIMPLEMENTED_CONFIGURATION: %s=%d is not supported", e.Setting, e.Value)
}

func (e *UnimplementedConfigError) Unwrap() error { return e.Err }
