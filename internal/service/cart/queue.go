package cart

import (
	"context"
	"sync"
)

// mutationQueue admits one holder at a time, strictly in arrival order.
type mutationQueue struct {
	mu   sync.Mutex
	tail chan struct{}
}

// acquire blocks until every earlier holder has released. On cancellation
// the slot is still handed on once the predecessor finishes.
func (q *mutationQueue) acquire(ctx context.Context) (func(), error) {
	q.mu.Lock()
	prev := q.tail
	done := make(chan struct{})
	q.tail = done
	q.mu.Unlock()

	release := func() { close(done) }
	if prev == nil {
		return release, nil
	}
	select {
	case <-prev:
		return release, nil
	case <-ctx.Done():
		go func() {
			<-prev
			close(done)
		}()
		return nil, ctx.Err()
	}
}
