// Package store persists runtime settings. Everything else the
// application tracks is deliberately session scoped and lives in memory.
package store

import "context"

// StateStore is a string key/value store for runtime-tunable settings.
// Values are stored as written; parsing is the caller's concern.
type StateStore interface {
	GetState(ctx context.Context, key string) (string, bool)
	SetState(ctx context.Context, key, val string) error
	DeleteState(ctx context.Context, key string) error
}
