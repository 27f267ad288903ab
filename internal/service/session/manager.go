package session

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"storefront/internal/notify"
	sessrepo "storefront/internal/repository/session"
	"storefront/internal/service/auth"
	"storefront/internal/service/cart"
	"storefront/internal/service/profile"
)

// Gateway is everything the per-session objects need from the commerce gateway.
type Gateway interface {
	cart.Gateway
	auth.Gateway
	profile.Gateway
}

// Session bundles the state objects of one browser session.
type Session struct {
	ID      string
	Cart    *cart.Session
	Auth    *auth.Holder
	Profile *profile.Holder

	init     sync.Once
	lastSeen time.Time
}

// Manager builds per-session objects on first use and evicts idle ones.
// Eviction only drops in-memory state; the durable store keeps the token
// and the cart subscription for when the session returns.
type Manager struct {
	gw       Gateway
	store    sessrepo.Store
	notifier notify.Notifier
	log      *zap.Logger
	idle     time.Duration
	now      func() time.Time
	group    singleflight.Group

	mu       sync.Mutex
	sessions map[string]*Session
	onEvict  []func(sid string)
}

func NewManager(gw Gateway, store sessrepo.Store, n notify.Notifier, log *zap.Logger, idle time.Duration) *Manager {
	if log == nil {
		log = zap.NewNop()
	}
	if idle <= 0 {
		idle = time.Hour
	}
	return &Manager{
		gw:       gw,
		store:    store,
		notifier: n,
		log:      log,
		idle:     idle,
		now:      time.Now,
		sessions: map[string]*Session{},
	}
}

// NewID returns a fresh session ID.
func NewID() string {
	return uuid.NewString()
}

// ValidID reports whether id looks like an ID issued by NewID.
func ValidID(id string) bool {
	_, err := uuid.Parse(id)
	return err == nil
}

// OnEvict registers fn to run for every evicted session.
func (m *Manager) OnEvict(fn func(sid string)) {
	m.mu.Lock()
	m.onEvict = append(m.onEvict, fn)
	m.mu.Unlock()
}

// Get returns the session for sid, building it on first access: the stored
// token is validated, the profile synced and the subscribed cart hydrated.
func (m *Manager) Get(ctx context.Context, sid string) *Session {
	m.mu.Lock()
	s, ok := m.sessions[sid]
	if !ok {
		s = m.build(sid)
		m.sessions[sid] = s
	}
	s.lastSeen = m.now()
	m.mu.Unlock()

	s.init.Do(func() {
		if at, ok := s.Auth.Restore(ctx); ok {
			s.Profile.Sync(ctx, at.Token)
		}
		s.Cart.Hydrate(ctx)
	})
	return s
}

func (m *Manager) build(sid string) *Session {
	p := profile.New(sid, m.gw, m.notifier, m.log)
	a := auth.New(sid, m.gw, m.store, m.notifier, m.log, auth.WithProfile(p))
	c := cart.New(sid, m.gw, m.store, m.notifier, m.log,
		cart.WithTokenSource(a),
		cart.WithGroup(&m.group),
	)
	return &Session{ID: sid, Cart: c, Auth: a, Profile: p}
}

// Len reports how many sessions are held in memory.
func (m *Manager) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sessions)
}

// Sweep evicts sessions idle for longer than the configured duration and
// returns how many were dropped. Sessions with a cart mutation in flight are kept.
func (m *Manager) Sweep() int {
	m.mu.Lock()
	cutoff := m.now().Add(-m.idle)
	var evicted []string
	for sid, s := range m.sessions {
		if s.lastSeen.Before(cutoff) && !s.Cart.IsUpdating() {
			delete(m.sessions, sid)
			evicted = append(evicted, sid)
		}
	}
	hooks := append([]func(string){}, m.onEvict...)
	m.mu.Unlock()

	for _, sid := range evicted {
		for _, fn := range hooks {
			fn(sid)
		}
	}
	if len(evicted) > 0 {
		m.log.Debug("evicted idle sessions", zap.Int("count", len(evicted)))
	}
	return len(evicted)
}

// Run sweeps every interval until ctx is done.
func (m *Manager) Run(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		interval = time.Minute
	}
	t := time.NewTicker(interval)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			m.Sweep()
		}
	}
}
