package server

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"wordgames-server/internal/game"
)

// Sink delivers game output to a channel.
type Sink interface {
	Send(ctx context.Context, channel string, msg *game.Message) error
}

// Runner drives game instances. Each instance gets one goroutine that calls
// Next, delivers the step's message and sleeps for the step's wait. A wait
// is never cut short; ctx is only checked between steps.
type Runner struct {
	registry *Registry
	sink     Sink
	deps     game.Deps
	sleep    func(time.Duration)
	log      zerolog.Logger

	wg sync.WaitGroup
}

// NewRunner builds a runner. deps.Flags is always the registry.
func NewRunner(registry *Registry, sink Sink, deps game.Deps, logger zerolog.Logger) *Runner {
	deps.Flags = registry
	return &Runner{
		registry: registry,
		sink:     sink,
		deps:     deps,
		sleep:    time.Sleep,
		log:      logger,
	}
}

// StartGame creates a gameName instance for channel from the player's raw
// configuration, registers it and starts driving it. Configuration problems
// come back as *game.ConfigError and a busy channel as game.ErrActiveSession.
func (r *Runner) StartGame(ctx context.Context, channel, gameName, rawConfig string) (game.Instance, error) {
	kind, err := game.Lookup(gameName)
	if err != nil {
		return nil, err
	}
	if _, busy := r.registry.Lookup(channel); busy {
		return nil, game.ErrActiveSession
	}

	inst, err := kind.Make(channel, rawConfig, r.deps)
	if err != nil {
		return nil, err
	}
	if err := r.registry.Register(inst); err != nil {
		return nil, err
	}

	r.log.Info().
		Str("channel", channel).
		Str("game", gameName).
		Str("instance", inst.ID()).
		Msgf("started %s", inst)

	r.wg.Add(1)
	go r.run(ctx, inst)
	return inst, nil
}

func (r *Runner) run(ctx context.Context, inst game.Instance) {
	defer r.wg.Done()
	defer r.registry.Unregister(inst)
	defer inst.Close()

	logger := r.log.With().
		Str("channel", inst.Channel()).
		Str("game", inst.Game()).
		Str("instance", inst.ID()).
		Logger()

	for {
		if err := ctx.Err(); err != nil {
			logger.Info().Str("phase", inst.Phase().String()).Msg("game stopped by shutdown")
			return
		}

		step, more, err := inst.Next(ctx)
		if err != nil {
			if ctx.Err() != nil {
				logger.Info().Err(err).Msg("game stopped by shutdown")
				return
			}
			r.fail(ctx, logger, inst, err)
			return
		}
		if step.Message != nil {
			if err := r.sink.Send(ctx, inst.Channel(), step.Message); err != nil {
				logger.Warn().Err(err).Str("kind", string(step.Message.Kind)).Msg("failed to deliver game message")
			}
		}
		if !more {
			logger.Info().Msg("game finished")
			return
		}
		if step.Wait > 0 {
			r.sleep(step.Wait)
		}
	}
}

// fail reports err to the channel. Configuration problems are shown as is,
// anything else gets the generic text and goes to the log.
func (r *Runner) fail(ctx context.Context, logger zerolog.Logger, inst game.Instance, err error) {
	text := game.UnexpectedErrorText
	var cfgErr *game.ConfigError
	var unimpl *game.UnimplementedConfigError
	switch {
	case errors.As(err, &cfgErr):
		text = cfgErr.Message
		logger.Info().Err(err).Msg("game stopped by configuration")
	case errors.As(err, &unimpl):
		text = unimpl.Error()
		logger.Info().Err(err).Msg("game stopped by configuration")
	default:
		logger.Error().Err(err).Str("phase", inst.Phase().String()).Msg("game failed")
	}

	msg := &game.Message{Kind: game.KindNotice, Header: text}
	if err := r.sink.Send(context.WithoutCancel(ctx), inst.Channel(), msg); err != nil {
		logger.Warn().Err(err).Msg("failed to deliver error message")
	}
}

// Stop closes every running instance and waits for their goroutines until
// ctx expires. Instances asleep in a wait exit when they wake.
func (r *Runner) Stop(ctx context.Context) error {
	for _, inst := range r.registry.Active() {
		inst.Close()
	}

	done := make(chan struct{})
	go func() {
		r.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
