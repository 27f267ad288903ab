package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"storefront/internal/domain"
	"storefront/internal/repository/session"
)

// tokenManager persists the customer access token and its expiry as two
// keys of the session store. mu keeps a reader from seeing one key of a
// pair that is still being written.
type tokenManager struct {
	store session.Store
	now   func() time.Time
	log   *zap.Logger

	mu sync.Mutex
}

func newTokenManager(store session.Store, log *zap.Logger) *tokenManager {
	return &tokenManager{store: store, now: time.Now, log: log}
}

// Load returns the stored token. A token whose expiry is missing, unparsable
// or past is purged and reported as domain.ErrTokenExpired.
func (m *tokenManager) Load(ctx context.Context, sid string) (domain.AccessToken, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	tok, err := m.store.Get(ctx, sid, session.KeyToken)
	if errors.Is(err, domain.ErrNotFound) || (err == nil && strings.TrimSpace(tok) == "") {
		m.dropStrayExpiry(ctx, sid)
		return domain.AccessToken{}, domain.ErrUnauthenticated
	}
	if err != nil {
		return domain.AccessToken{}, fmt.Errorf("load token: %w", err)
	}

	raw, err := m.store.Get(ctx, sid, session.KeyTokenExpiresAt)
	if err != nil && !errors.Is(err, domain.ErrNotFound) {
		return domain.AccessToken{}, fmt.Errorf("load token expiry: %w", err)
	}
	expiresAt, perr := time.Parse(time.RFC3339Nano, strings.TrimSpace(raw))
	at := domain.AccessToken{Token: tok, ExpiresAt: expiresAt}
	if err != nil || perr != nil || at.Expired(m.now()) {
		if err := m.purge(ctx, sid); err != nil {
			return domain.AccessToken{}, err
		}
		return domain.AccessToken{}, domain.ErrTokenExpired
	}
	return at, nil
}

// dropStrayExpiry removes an expiry left without its token.
func (m *tokenManager) dropStrayExpiry(ctx context.Context, sid string) {
	_, err := m.store.Get(ctx, sid, session.KeyTokenExpiresAt)
	if errors.Is(err, domain.ErrNotFound) {
		return
	}
	if err == nil {
		err = m.store.Delete(ctx, sid, session.KeyTokenExpiresAt)
	}
	if err != nil {
		m.log.Warn("drop stray token expiry", zap.Error(err))
	}
}

// Save writes the expiry before the token so a token is never stored
// without one.
func (m *tokenManager) Save(ctx context.Context, sid string, at domain.AccessToken) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err := m.store.Set(ctx, sid, session.KeyTokenExpiresAt, at.ExpiresAt.UTC().Format(time.RFC3339Nano)); err != nil {
		return fmt.Errorf("save token expiry: %w", err)
	}
	if err := m.store.Set(ctx, sid, session.KeyToken, at.Token); err != nil {
		return fmt.Errorf("save token: %w", err)
	}
	return nil
}

func (m *tokenManager) Purge(ctx context.Context, sid string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.purge(ctx, sid)
}

func (m *tokenManager) purge(ctx context.Context, sid string) error {
	if err := m.store.Delete(ctx, sid, session.KeyToken); err != nil {
		return fmt.Errorf("purge token: %w", err)
	}
	if err := m.store.Delete(ctx, sid, session.KeyTokenExpiresAt); err != nil {
		return fmt.Errorf("purge token expiry: %w", err)
	}
	return nil
}
