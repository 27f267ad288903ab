package cart

import (
	"sync"

	"github.com/google/uuid"
)

type opKind string

const (
	opAdd    opKind = "add"
	opRemove opKind = "remove"
	opUpdate opKind = "update"
)

type pending struct {
	id     string
	kind   opKind
	lineID string
}

// registry tracks queued and in-flight mutations in issue order. It only
// feeds the busy flag and the deletion markers; ordering is enforced by the
// session's mutation queue.
type registry struct {
	mu   sync.Mutex
	reqs []pending
}

func (r *registry) begin(kind opKind, lineID string) string {
	id := uuid.NewString()
	r.mu.Lock()
	r.reqs = append(r.reqs, pending{id: id, kind: kind, lineID: lineID})
	r.mu.Unlock()
	return id
}

func (r *registry) end(id string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i, p := range r.reqs {
		if p.id == id {
			r.reqs = append(r.reqs[:i], r.reqs[i+1:]...)
			return
		}
	}
}

func (r *registry) busy() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.reqs) > 0
}

// deleting returns each line ID with a pending removal once, in issue order.
func (r *registry) deleting() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := []string{}
	seen := map[string]bool{}
	for _, p := range r.reqs {
		if p.kind != opRemove || p.lineID == "" || seen[p.lineID] {
			continue
		}
		seen[p.lineID] = true
		out = append(out, p.lineID)
	}
	return out
}
