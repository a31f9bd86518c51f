package server

import (
	"errors"
	"strings"
)

const maxChannelLength = 32

// NormalizeChannel lowercases and trims a channel name.
func NormalizeChannel(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

// ValidateChannel accepts 1 to 32 characters of a-z, 0-9, '-' and '_'.
func ValidateChannel(name string) error {
	if name == "" {
		return errors.New("CHANNEL_INVALID: Channel name cannot be empty")
	}
	if len(name) > maxChannelLength {
		return errors.New("CHANNEL_INVALID: Channel name too long (max 32 characters)")
	}
	for _, ch := range name {
		switch {
		case ch >= 'a' && ch <= 'z', ch >= '0' && ch <= '9', ch == '-', ch == '_':
		default:
			return errors.New("CHANNEL_INVALID: Channel name may only contain a-z, 0-9, '-' and '_'")
		}
	}
	return nil
}
