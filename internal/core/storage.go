package core

import "context"

// MemoryRepository is the durable, append-only per-user conversation log.
//
// Append commits synchronously: once it returns nil the entry survives a
// crash. Read returns a user's entries oldest first; an unknown user yields
// an empty slice, not an error.
type MemoryRepository interface {
	Append(ctx context.Context, userID, text string) error
	Read(ctx context.Context, userID string) ([]Entry, error)
}
