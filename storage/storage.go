package storage

import (
	"context"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"jackaroo-server/room"
)

const createTableSQL = `
CREATE TABLE IF NOT EXISTS match_history (
	id UUID PRIMARY KEY,
	played_at TIMESTAMPTZ NOT NULL DEFAULT now(),
	room_code TEXT NOT NULL,
	player_names TEXT[] NOT NULL,
	winner_seat SMALLINT,
	rounds INT NOT NULL,
	end_reason TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_match_history_played_at ON match_history(played_at DESC);
`

// Store persists and retrieves match history.
type Store struct {
	pool *pgxpool.Pool
}

// NewStore connects to Postgres and ensures the match_history table exists.
// If databaseURL is empty, NewStore returns (nil, nil) and no persistence
// occurs; every method tolerates a nil receiver.
func NewStore(ctx context.Context, databaseURL string) (*Store, error) {
	if databaseURL == "" {
		return nil, nil
	}
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, err
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, err
	}
	if _, err := pool.Exec(ctx, createTableSQL); err != nil {
		pool.Close()
		return nil, err
	}
	slog.Info("connected to Postgres", "tag", "storage")
	return &Store{pool: pool}, nil
}

// Close closes the connection pool.
func (s *Store) Close() {
	if s != nil && s.pool != nil {
		s.pool.Close()
	}
}

// InsertMatchResult records a finished match. WinnerSeat -1 (abandoned) is
// stored as NULL.
func (s *Store) InsertMatchResult(ctx context.Context, res room.MatchResult) error {
	if s == nil || s.pool == nil {
		return nil
	}
	var winner *int
	if res.WinnerSeat >= 0 {
		winner = &res.WinnerSeat
	}
	_, err := s.pool.Exec(ctx, `
		INSERT INTO match_history (id, room_code, player_names, winner_seat, rounds, end_reason)
		VALUES ($1, $2, $3, $4, $5, $6)`,
		res.MatchID, res.RoomCode, res.Players, winner, res.Rounds, res.EndReason)
	return err
}

// MatchRecord is a single row returned for the history API.
type MatchRecord struct {
	ID          string   `json:"id"`
	PlayedAt    string   `json:"played_at"` // ISO8601
	RoomCode    string   `json:"room_code"`
	PlayerNames []string `json:"player_names"`
	WinnerSeat  *int     `json:"winner_seat"` // null when abandoned
	Rounds      int      `json:"rounds"`
	EndReason   string   `json:"end_reason"`
}

// ListRecent returns the most recent matches, newest first.
func (s *Store) ListRecent(ctx context.Context, limit int) ([]MatchRecord, error) {
	if s == nil || s.pool == nil {
		return []MatchRecord{}, nil
	}
	if limit <= 0 {
		limit = 20
	}
	if limit > 200 {
		limit = 200
	}
	rows, err := s.pool.Query(ctx, `
		SELECT id, played_at, room_code, player_names, winner_seat, rounds, end_reason
		FROM match_history
		ORDER BY played_at DESC
		LIMIT $1`,
		limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []MatchRecord
	for rows.Next() {
		var r MatchRecord
		var playedAt time.Time
		if err := rows.Scan(&r.ID, &playedAt, &r.RoomCode, &r.PlayerNames, &r.WinnerSeat, &r.Rounds, &r.EndReason); err != nil {
			return nil, err
		}
		r.PlayedAt = playedAt.UTC().Format(time.RFC3339)
		out = append(out, r)
	}
	return out, rows.Err()
}
