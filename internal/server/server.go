package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/coder/websocket"
	"github.com/rs/zerolog/log"

	"wordgames-server/internal/config"
	"wordgames-server/internal/database"
	"wordgames-server/internal/dictionary"
	"wordgames-server/internal/game"
)

type Server struct {
	port              int
	statsDriver       string
	idleTimeout       time.Duration
	stats             StatsStore
	registry          *Registry
	runner            *Runner
	connectionManager *ConnectionManager
	sessionManager    *SessionManager
	rateLimiter       *RateLimiter
	connectionHealth  *ConnectionHealth

	// runCtx outlives requests; games started from chat run under it.
	runCtx      context.Context
	stopRunners context.CancelFunc
}

// New wires a server around an open stats store.
func New(cfg config.Config, dict *dictionary.Dictionary, stats StatsStore) *Server {
	policy := game.SinglePlayerWins
	if cfg.RequireOpponent {
		policy = game.OpponentRequired
	}

	runCtx, stop := context.WithCancel(context.Background())
	s := &Server{
		port:              cfg.Port,
		statsDriver:       cfg.StatsDriver,
		idleTimeout:       cfg.IdleTimeout,
		stats:             stats,
		registry:          NewRegistry(),
		connectionManager: NewConnectionManager(),
		sessionManager:    NewSessionManager(),
		rateLimiter:       NewRateLimiter(cfg.RateLimitPerSecond, time.Second),
		connectionHealth:  NewConnectionHealth(),
		runCtx:            runCtx,
		stopRunners:       stop,
	}
	s.runner = NewRunner(s.registry, s.connectionManager, game.Deps{
		Dictionary: dict,
		Recorder:   stats,
		Policy:     policy,
		Warmup:     cfg.Warmup(),
		Logger:     &log.Logger,
	}, log.Logger)
	return s
}

// NewServer opens the configured stats backend and word list and returns the
// server together with its HTTP listener.
func NewServer(ctx context.Context, cfg config.Config) (*Server, *http.Server, error) {
	dict, err := dictionary.LoadFile(cfg.WordsFile, cfg.MinWordLength)
	if err != nil {
		return nil, nil, fmt.Errorf("load dictionary: %w", err)
	}
	log.Info().Int("words", dict.Len()).Str("file", cfg.WordsFile).Msg("dictionary loaded")

	stats, err := openStats(ctx, cfg)
	if err != nil {
		return nil, nil, err
	}

	s := New(cfg, dict, stats)
	go s.cleanupTask()

	httpServer := &http.Server{
		Addr:        fmt.Sprintf(":%d", s.port),
		Handler:     s.RegisterRoutes(),
		IdleTimeout: time.Minute,
		ReadTimeout: 10 * time.Second,
	}
	return s, httpServer, nil
}

func openStats(ctx context.Context, cfg config.Config) (StatsStore, error) {
	switch cfg.StatsDriver {
	case config.DriverPostgres:
		pool, err := database.OpenPostgres(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, err
		}
		log.Info().Msg("stats stored in postgres")
		return NewPostgresStats(pool), nil
	default:
		db, err := database.OpenSQLite(ctx, cfg.SQLitePath)
		if err != nil {
			return nil, err
		}
		log.Info().Str("path", cfg.SQLitePath).Msg("stats stored in sqlite")
		return NewSQLStats(db), nil
	}
}

// cleanupTask closes idle connections and forgets stale sessions and rate
// limit windows.
func (s *Server) cleanupTask() {
	ticker := time.NewTicker(time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-s.runCtx.Done():
			return
		case <-ticker.C:
			s.cleanup()
		}
	}
}

func (s *Server) cleanup() {
	s.rateLimiter.Cleanup()

	for _, connID := range s.connectionHealth.GetInactiveConnections(s.idleTimeout) {
		if conn := s.connectionManager.GetConnection(connID); conn != nil {
			conn.Close(websocket.StatusPolicyViolation, "Idle timeout")
		}
		s.connectionHealth.RemoveConnection(connID)
	}

	if removed := s.sessionManager.PruneIdle(24 * time.Hour); removed > 0 {
		log.Info().Int("sessions", removed).Msg("pruned idle sessions")
	}
}

// Shutdown cancels every running game, tells its channel and closes the
// stats store.
func (s *Server) Shutdown(ctx context.Context) error {
	s.stopRunners()

	for _, inst := range s.registry.Active() {
		msg := &game.Message{Kind: game.KindNotice, Header: "The server is restarting, this game has been cancelled."}
		if err := s.connectionManager.Send(ctx, inst.Channel(), msg); err != nil {
			log.Warn().Err(err).Str("channel", inst.Channel()).Msg("failed to notify channel of shutdown")
		}
	}

	var errs []error
	if err := s.runner.Stop(ctx); err != nil {
		errs = append(errs, fmt.Errorf("stop games: %w", err))
	}
	if err := s.stats.Close(); err != nil {
		errs = append(errs, fmt.Errorf("close stats: %w", err))
	}
	return errors.Join(errs...)
}
