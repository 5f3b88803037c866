package storage

import (
	"context"

	"jackaroo-server/room"
)

// HistoryStore abstracts persistence for match history. Implementations can
// be swapped for testing (mocks) or different backends.
type HistoryStore interface {
	ListRecent(ctx context.Context, limit int) ([]MatchRecord, error)
	InsertMatchResult(ctx context.Context, res room.MatchResult) error
	Close()
}

// Ensure *Store implements HistoryStore at compile time.
var _ HistoryStore = (*Store)(nil)
