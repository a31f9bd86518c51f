package server

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/rs/zerolog/log"

	"wordgames-server/internal/game"
)

// CommandPrefix starts every chat command.
const CommandPrefix = "!"

// Command is a parsed chat command such as "!boggle {"size": 4}".
type Command struct {
	Name string
	Args string
}

// ParseCommand splits text into a command name and its raw arguments.
func ParseCommand(text string) (Command, bool) {
	text = strings.TrimSpace(text)
	if !strings.HasPrefix(text, CommandPrefix) {
		return Command{}, false
	}
	name, args, _ := strings.Cut(strings.TrimPrefix(text, CommandPrefix), " ")
	if name == "" {
		return Command{}, false
	}
	return Command{Name: strings.ToLower(name), Args: strings.TrimSpace(args)}, true
}

// runCommand executes cmd for member and returns the reply for the channel.
// handled is false when cmd is not a known command, in which case the text
// is treated as ordinary chat.
func (s *Server) runCommand(ctx context.Context, member Member, cmd Command) (reply string, handled bool) {
	switch cmd.Name {
	case "help":
		return helpText(cmd.Args), true
	case "stats":
		return s.statsText(ctx, member, cmd.Args), true
	}

	if _, err := game.Lookup(cmd.Name); err != nil {
		return "", false
	}
	_, err := s.runner.StartGame(s.runCtx, member.Channel, cmd.Name, cmd.Args)
	var cfgErr *game.ConfigError
	switch {
	case err == nil:
		return "", true
	case errors.As(err, &cfgErr):
		return cfgErr.Message, true
	case errors.Is(err, game.ErrActiveSession):
		return "A game is already running in this channel.", true
	default:
		log.Error().Err(err).Str("channel", member.Channel).Str("game", cmd.Name).Msg("failed to start game")
		return game.UnexpectedErrorText, true
	}
}

func helpText(topic string) string {
	topic = strings.ToLower(strings.TrimPrefix(strings.TrimSpace(topic), CommandPrefix))
	if topic != "" {
		k, err := game.Lookup(topic)
		if err != nil {
			return fmt.Sprintf("There is no game called %q.", topic)
		}
		return (&game.Message{Header: fmt.Sprintf("How to play %s:", k.Name), Body: k.Rules + "\n"}).Text()
	}

	lines := []string{"Commands:"}
	for _, k := range game.Kinds() {
		lines = append(lines, fmt.Sprintf("%s%s [settings]: %s", CommandPrefix, k.Name, k.Brief))
	}
	lines = append(lines,
		CommandPrefix+"stats <game>: Show your wins and losses.",
		CommandPrefix+"help <game>: Show the rules of a game.",
	)
	return strings.Join(lines, "\n")
}

func (s *Server) statsText(ctx context.Context, member Member, arg string) string {
	name := strings.ToLower(strings.TrimSpace(arg))
	if _, err := game.Lookup(name); err != nil {
		return fmt.Sprintf("Usage: %sstats <game>", CommandPrefix)
	}
	rec, err := s.stats.GetRecord(ctx, name, member.Username)
	if err != nil {
		log.Error().Err(err).Str("game", name).Str("player", member.Username).Msg("failed to load stats")
		return game.UnexpectedErrorText
	}
	return fmt.Sprintf("%s has %d wins and %d losses in %s.", member.Username, rec.Wins, rec.Losses, name)
}
