package session

import (
	"context"
	"time"
)

// Fixed keys of the durable per-session store. Each key is read and written
// independently; there is no transaction across them.
const (
	KeyToken          = "token"
	KeyTokenExpiresAt = "token_expires_at"
	KeyCartID         = "cart_id"
)

// Store is durable client storage addressed by session ID. Get returns
// domain.ErrNotFound when the key is absent.
type Store interface {
	Get(ctx context.Context, sessionID, key string) (string, error)
	Set(ctx context.Context, sessionID, key, value string) error
	Delete(ctx context.Context, sessionID, key string) error
}

// Pruner is implemented by stores that do not expire values by themselves.
type Pruner interface {
	Prune(ctx context.Context, before time.Time) (int64, error)
}
