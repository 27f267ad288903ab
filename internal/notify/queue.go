package notify

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

// Kind styles a banner on the presentation side.
type Kind string

const (
	KindSuccess Kind = "success"
	KindError   Kind = "error"
)

// Interval selects how long a banner stays visible.
type Interval int

const (
	Standard Interval = iota
	Short
)

// maxPerSession bounds how many undrained banners a session keeps; the
// oldest are dropped first.
const maxPerSession = 20

// Banner is a transient, auto-dismissing notification.
type Banner struct {
	ID          string    `json:"id"`
	Kind        Kind      `json:"kind"`
	Title       string    `json:"title"`
	CreatedAt   time.Time `json:"createdAt"`
	AutoCloseMS int64     `json:"autoClose"`
	expiresAt   time.Time
}

// Notifier is the single failure/success reporting channel of the services.
type Notifier interface {
	Notify(sessionID string, kind Kind, title string, interval Interval)
}

// Queue buffers banners per session until the presentation layer drains them.
type Queue struct {
	mu      sync.Mutex
	std     time.Duration
	short   time.Duration
	now     func() time.Time
	banners map[string][]Banner
}

func NewQueue(std, short time.Duration) *Queue {
	if std <= 0 {
		std = 7500 * time.Millisecond
	}
	if short <= 0 {
		short = 3 * time.Second
	}
	return &Queue{std: std, short: short, now: time.Now, banners: map[string][]Banner{}}
}

func (q *Queue) Notify(sessionID string, kind Kind, title string, interval Interval) {
	d := q.std
	if interval == Short {
		d = q.short
	}
	q.mu.Lock()
	defer q.mu.Unlock()
	now := q.now()
	list := append(q.banners[sessionID], Banner{
		ID:          uuid.NewString(),
		Kind:        kind,
		Title:       title,
		CreatedAt:   now,
		AutoCloseMS: d.Milliseconds(),
		expiresAt:   now.Add(d),
	})
	if len(list) > maxPerSession {
		list = list[len(list)-maxPerSession:]
	}
	q.banners[sessionID] = list
}

// Drain returns the session's banners that have not auto-closed yet, oldest
// first, and empties the queue.
func (q *Queue) Drain(sessionID string) []Banner {
	q.mu.Lock()
	defer q.mu.Unlock()
	list := q.banners[sessionID]
	delete(q.banners, sessionID)
	now := q.now()
	out := make([]Banner, 0, len(list))
	for _, b := range list {
		if now.Before(b.expiresAt) {
			out = append(out, b)
		}
	}
	return out
}

// Forget drops every banner of an evicted session.
func (q *Queue) Forget(sessionID string) {
	q.mu.Lock()
	delete(q.banners, sessionID)
	q.mu.Unlock()
}
