package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/solarsmart/salesbot/internal/core"
	"github.com/solarsmart/salesbot/pkg/log"
)

// MemoryRepo is the durable append-only conversation log, one row per
// utterance in the memory(user_id, message, timestamp) table.
type MemoryRepo struct {
	db *sql.DB
}

func NewMemoryRepo(db *sql.DB) *MemoryRepo {
	return &MemoryRepo{db: db}
}

func (r *MemoryRepo) Append(ctx context.Context, userID, text string) error {
	query := `INSERT INTO memory (user_id, message, timestamp) VALUES (?, ?, ?)`
	_, err := r.db.ExecContext(ctx, query, userID, text, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("%w: failed to insert memory entry: %v", core.ErrStorage, err)
	}
	return nil
}

func (r *MemoryRepo) Read(ctx context.Context, userID string) ([]core.Entry, error) {
	// The id tiebreaker preserves insertion order when timestamps collide.
	query := `SELECT user_id, message, timestamp FROM memory WHERE user_id = ? ORDER BY timestamp, id`

	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to query memory: %v", core.ErrStorage, err)
	}
	defer rows.Close()

	entries := make([]core.Entry, 0)
	for rows.Next() {
		var e core.Entry
		if err := rows.Scan(&e.UserID, &e.Text, &e.Timestamp); err != nil {
			return nil, fmt.Errorf("%w: failed to scan memory entry: %v", core.ErrStorage, err)
		}
		entries = append(entries, e)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: %v", core.ErrStorage, err)
	}

	log.FromCtx(ctx).Debug().Str("user_id", userID).Int("count", len(entries)).Msg("loaded memory entries")
	return entries, nil
}
