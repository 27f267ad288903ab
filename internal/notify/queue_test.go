package notify

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestQueue(now *time.Time) *Queue {
	q := NewQueue(7500*time.Millisecond, 3*time.Second)
	q.now = func() time.Time { return *now }
	return q
}

func TestQueueDrainOrderAndIsolation(t *testing.T) {
	now := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	q := newTestQueue(&now)

	q.Notify("s1", KindSuccess, "first", Standard)
	q.Notify("s1", KindError, "second", Short)
	q.Notify("s2", KindSuccess, "other", Standard)

	got := q.Drain("s1")
	require.Len(t, got, 2)
	assert.Equal(t, "first", got[0].Title)
	assert.Equal(t, int64(7500), got[0].AutoCloseMS)
	assert.Equal(t, KindError, got[1].Kind)
	assert.Equal(t, int64(3000), got[1].AutoCloseMS)
	assert.NotEqual(t, got[0].ID, got[1].ID)

	assert.Empty(t, q.Drain("s1"))
	assert.Len(t, q.Drain("s2"), 1)
}

func TestQueueDropsAutoClosedBanners(t *testing.T) {
	now := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	q := newTestQueue(&now)

	q.Notify("s1", KindSuccess, "short", Short)
	q.Notify("s1", KindSuccess, "long", Standard)
	now = now.Add(5 * time.Second)

	got := q.Drain("s1")
	require.Len(t, got, 1)
	assert.Equal(t, "long", got[0].Title)
}

func TestQueueBoundsPerSession(t *testing.T) {
	now := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	q := newTestQueue(&now)
	for i := 0; i < maxPerSession+5; i++ {
		q.Notify("s1", KindSuccess, fmt.Sprintf("m%d", i), Standard)
	}
	got := q.Drain("s1")
	require.Len(t, got, maxPerSession)
	assert.Equal(t, "m5", got[0].Title)
}

func TestQueueForget(t *testing.T) {
	q := NewQueue(0, 0)
	q.Notify("s1", KindError, "x", Standard)
	q.Forget("s1")
	assert.Empty(t, q.Drain("s1"))
}
