package server

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"wordgames-server/internal/game"
)

// DefaultLeaderboardLimit is used when a caller asks for no particular size.
const DefaultLeaderboardLimit = game.TableLimit

// Record is one player's win/loss count for a game.
type Record struct {
	Game   string `json:"game"`
	Player string `json:"player"`
	Wins   int    `json:"wins"`
	Losses int    `json:"losses"`
}

// StatsStore persists per-game results.
type StatsStore interface {
	game.ResultRecorder
	// GetRecord returns player's record. A player who never finished a game
	// has a zero record, not an error.
	GetRecord(ctx context.Context, game, player string) (Record, error)
	// Leaderboard returns the best records for game by wins, then fewest
	// losses.
	Leaderboard(ctx context.Context, game string, limit int) ([]Record, error)
	Ping(ctx context.Context) error
	Close() error
}

func outcomeDeltas(outcome game.Outcome) (wins, losses int, err error) {
	switch outcome {
	case game.OutcomeWin:
		return 1, 0, nil
	case game.OutcomeLoss:
		return 0, 1, nil
	}
	return 0, 0, fmt.Errorf("INVALID_OUTCOME: %q", outcome)
}

func leaderboardLimit(limit int) int {
	if limit <= 0 {
		return DefaultLeaderboardLimit
	}
	return min(limit, 100)
}

// SQLStats stores statistics in sqlite through database/sql.
type SQLStats struct {
	db *sql.DB
}

func NewSQLStats(db *sql.DB) *SQLStats {
	return &SQLStats{db: db}
}

const sqliteUpsert = `
	INSERT INTO statistics (game, player, wins, losses)
	VALUES (?, ?, ?, ?)
	ON CONFLICT (game, player) DO UPDATE SET
		wins = statistics.wins + excluded.wins,
		losses = statistics.losses + excluded.losses,
		updated_at = CURRENT_TIMESTAMP
`

// IncrementResult adds one win or loss for every player in a single
// transaction.
func (s *SQLStats) IncrementResult(ctx context.Context, gameName string, outcome game.Outcome, players []string) error {
	wins, losses, err := outcomeDeltas(outcome)
	if err != nil {
		return err
	}
	if len(players) == 0 {
		return nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin stats transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, sqliteUpsert)
	if err != nil {
		return fmt.Errorf("prepare stats upsert: %w", err)
	}
	defer stmt.Close()

	for _, p := range players {
		if _, err := stmt.ExecContext(ctx, gameName, p, wins, losses); err != nil {
			return fmt.Errorf("failed to record %s for %s: %w", outcome, p, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit stats: %w", err)
	}
	return nil
}

func (s *SQLStats) GetRecord(ctx context.Context, gameName, player string) (Record, error) {
	rec := Record{Game: gameName, Player: player}
	err := s.db.QueryRowContext(ctx,
		`SELECT wins, losses FROM statistics WHERE game = ? AND player = ?`,
		gameName, player,
	).Scan(&rec.Wins, &rec.Losses)
	if errors.Is(err, sql.ErrNoRows) {
		return rec, nil
	}
	if err != nil {
		return Record{}, fmt.Errorf("failed to load record for %s: %w", player, err)
	}
	return rec, nil
}

func (s *SQLStats) Leaderboard(ctx context.Context, gameName string, limit int) ([]Record, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT player, wins, losses FROM statistics
		WHERE game = ?
		ORDER BY wins DESC, losses ASC, player ASC
		LIMIT ?
	`, gameName, leaderboardLimit(limit))
	if err != nil {
		return nil, fmt.Errorf("failed to query leaderboard: %w", err)
	}
	defer rows.Close()

	records := []Record{}
	for rows.Next() {
		rec := Record{Game: gameName}
		if err := rows.Scan(&rec.Player, &rec.Wins, &rec.Losses); err != nil {
			return nil, fmt.Errorf("failed to scan leaderboard row: %w", err)
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating leaderboard rows: %w", err)
	}
	return records, nil
}

func (s *SQLStats) Ping(ctx context.Context) error { return s.db.PingContext(ctx) }

func (s *SQLStats) Close() error { return s.db.Close() }

// PostgresStats stores statistics in postgres through a pgx pool.
type PostgresStats struct {
	pool *pgxpool.Pool
}

func NewPostgresStats(pool *pgxpool.Pool) *PostgresStats {
	return &PostgresStats{pool: pool}
}

const postgresUpsert = `
	INSERT INTO statistics (game, player, wins, losses)
	VALUES ($1, $2, $3, $4)
	ON CONFLICT (game, player) DO UPDATE SET
		wins = statistics.wins + EXCLUDED.wins,
		losses = statistics.losses + EXCLUDED.losses,
		updated_at = now()
`

func (s *PostgresStats) IncrementResult(ctx context.Context, gameName string, outcome game.Outcome, players []string) error {
	wins, losses, err := outcomeDeltas(outcome)
	if err != nil {
		return err
	}
	if len(players) == 0 {
		return nil
	}

	return pgx.BeginFunc(ctx, s.pool, func(tx pgx.Tx) error {
		batch := &pgx.Batch{}
		for _, p := range players {
			batch.Queue(postgresUpsert, gameName, p, wins, losses)
		}
		if err := tx.SendBatch(ctx, batch).Close(); err != nil {
			return fmt.Errorf("failed to record %s for %s: %w", outcome, strings.Join(players, ", "), err)
		}
		return nil
	})
}

func (s *PostgresStats) GetRecord(ctx context.Context, gameName, player string) (Record, error) {
	rec := Record{Game: gameName, Player: player}
	err := s.pool.QueryRow(ctx,
		`SELECT wins, losses FROM statistics WHERE game = $1 AND player = $2`,
		gameName, player,
	).Scan(&rec.Wins, &rec.Losses)
	if errors.Is(err, pgx.ErrNoRows) {
		return rec, nil
	}
	if err != nil {
		return Record{}, fmt.Errorf("failed to load record for %s: %w", player, err)
	}
	return rec, nil
}

func (s *PostgresStats) Leaderboard(ctx context.Context, gameName string, limit int) ([]Record, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT game, player, wins, losses FROM statistics
		WHERE game = $1
		ORDER BY wins DESC, losses ASC, player ASC
		LIMIT $2
	`, gameName, leaderboardLimit(limit))
	if err != nil {
		return nil, fmt.Errorf("failed to query leaderboard: %w", err)
	}
	records, err := pgx.CollectRows(rows, pgx.RowToStructByPos[Record])
	if err != nil {
		return nil, fmt.Errorf("failed to scan leaderboard: %w", err)
	}
	return records, nil
}

func (s *PostgresStats) Ping(ctx context.Context) error { return s.pool.Ping(ctx) }

func (s *PostgresStats) Close() error {
	s.pool.Close()
	return nil
}
