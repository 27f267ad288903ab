package cart

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"storefront/internal/domain"
	"storefront/internal/gateway"
	"storefront/internal/notify"
	"storefront/internal/repository/session"
)

type line struct {
	id    string
	merch string
	qty   int
}

func cartJSON(id string, lines ...line) string {
	nodes := make([]string, 0, len(lines))
	total := 0
	for _, l := range lines {
		total += l.qty
		nodes = append(nodes, fmt.Sprintf(`{"id":%q,"quantity":%d,"merchandise":{"id":%q,"title":"Default"}}`, l.id, l.qty, l.merch))
	}
	return fmt.Sprintf(`{"id":%q,"totalQuantity":%d,"lines":{"nodes":[%s]}}`, id, total, strings.Join(nodes, ","))
}

func mutationEnv(t *testing.T, cart string, userErrors ...string) gateway.Envelope[gateway.CartMutationRes] {
	t.Helper()
	ue := make([]string, 0, len(userErrors))
	for _, m := range userErrors {
		ue = append(ue, fmt.Sprintf(`{"message":%q}`, m))
	}
	body := fmt.Sprintf(`{"data":{"payload":{"cart":%s,"userErrors":[%s]}}}`, cart, strings.Join(ue, ","))
	var res gateway.CartMutationRes
	require.NoError(t, json.Unmarshal([]byte(body), &res))
	return gateway.Envelope[gateway.CartMutationRes]{Res: &res}
}

func queryEnv(t *testing.T, cart string) gateway.Envelope[gateway.CartQueryRes] {
	t.Helper()
	var res gateway.CartQueryRes
	require.NoError(t, json.Unmarshal([]byte(fmt.Sprintf(`{"data":{"cart":%s}}`, cart)), &res))
	return gateway.Envelope[gateway.CartQueryRes]{Res: &res}
}

type stubGateway struct {
	mu sync.Mutex

	createResults []gateway.Envelope[gateway.CartMutationRes]
	addResults    []gateway.Envelope[gateway.CartMutationRes]
	removeResult  gateway.Envelope[gateway.CartMutationRes]
	updateResult  gateway.Envelope[gateway.CartMutationRes]
	getResult     gateway.Envelope[gateway.CartQueryRes]
	removeGate    chan struct{}
	onCreate      func()

	createCalls int
	addCalls    int
	removeCalls int
	updateCalls int
	getCalls    int
	calls       []string

	lastCreate       gateway.CreateCartParams
	lastAddCartID    string
	lastRemoveCartID string
	lastRemoveLines  []string
	lastUpdateLines  []domain.LineUpdate
	lastGetID        string
	createCtxErr     error
}

func pick[T any](list []T, n int) T {
	if n >= len(list) {
		n = len(list) - 1
	}
	return list[n]
}

func (s *stubGateway) CreateCart(ctx context.Context, p gateway.CreateCartParams) gateway.Envelope[gateway.CartMutationRes] {
	if s.onCreate != nil {
		s.onCreate()
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lastCreate = p
	s.createCtxErr = ctx.Err()
	s.calls = append(s.calls, "create")
	res := pick(s.createResults, s.createCalls)
	s.createCalls++
	return res
}

func (s *stubGateway) AddCartLines(_ context.Context, cartID string, _ []domain.LineInput) gateway.Envelope[gateway.CartMutationRes] {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lastAddCartID = cartID
	s.calls = append(s.calls, "add")
	res := pick(s.addResults, s.addCalls)
	s.addCalls++
	return res
}

func (s *stubGateway) RemoveCartLines(_ context.Context, cartID string, lineIDs []string) gateway.Envelope[gateway.CartMutationRes] {
	if s.removeGate != nil {
		<-s.removeGate
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.removeCalls++
	s.lastRemoveCartID = cartID
	s.lastRemoveLines = lineIDs
	s.calls = append(s.calls, "remove:"+strings.Join(lineIDs, ","))
	return s.removeResult
}

func (s *stubGateway) UpdateCartLines(_ context.Context, _ string, lines []domain.LineUpdate) gateway.Envelope[gateway.CartMutationRes] {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.updateCalls++
	s.lastUpdateLines = lines
	s.calls = append(s.calls, "update")
	return s.updateResult
}

func (s *stubGateway) GetCart(_ context.Context, cartID string) gateway.Envelope[gateway.CartQueryRes] {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.getCalls++
	s.lastGetID = cartID
	return s.getResult
}

type banner struct {
	kind  notify.Kind
	title string
}

type stubNotifier struct {
	mu      sync.Mutex
	banners []banner
}

func (n *stubNotifier) Notify(_ string, kind notify.Kind, title string, _ notify.Interval) {
	n.mu.Lock()
	n.banners = append(n.banners, banner{kind: kind, title: title})
	n.mu.Unlock()
}

type staticToken string

func (t staticToken) CurrentToken(context.Context) string { return string(t) }

func newTestSession(gw *stubGateway, opts ...Option) (*Session, session.Store, *stubNotifier) {
	store := session.NewMemory()
	n := &stubNotifier{}
	return New("sid", gw, store, n, zap.NewNop(), opts...), store, n
}

func TestAddCreatesAndSubscribesNewCart(t *testing.T) {
	gw := &stubGateway{createResults: []gateway.Envelope[gateway.CartMutationRes]{
		mutationEnv(t, cartJSON("C1", line{"L1", "X", 1})),
	}}
	s, store, n := newTestSession(gw, WithTokenSource(staticToken("cust-token")))

	res := s.Add(context.Background(), AddInput{MerchandiseID: "X", Quantity: 1, NewCart: true})
	require.True(t, res.OK, res.Message)

	id, err := store.Get(context.Background(), "sid", session.KeyCartID)
	require.NoError(t, err)
	assert.Equal(t, "C1", id)

	cart := s.Snapshot()
	require.NotNil(t, cart)
	require.Len(t, cart.Lines, 1)
	assert.Equal(t, 1, cart.Lines[0].Quantity)
	assert.Equal(t, "X", cart.Lines[0].Merchandise.ID)

	assert.Equal(t, "cust-token", gw.lastCreate.CustomerAccessToken)
	assert.Equal(t, []domain.LineInput{{MerchandiseID: "X", Quantity: 1}}, gw.lastCreate.Lines)
	assert.Equal(t, StateReady, s.State())
	assert.False(t, s.IsUpdating())
	assert.Equal(t, []banner{{notify.KindSuccess, MsgAdded}}, n.banners)
}

func TestAddSubscribesEvenWhenCallerCancels(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	gw := &stubGateway{
		createResults: []gateway.Envelope[gateway.CartMutationRes]{mutationEnv(t, cartJSON("C1", line{"L1", "X", 1}))},
		onCreate:      cancel,
	}
	s, store, _ := newTestSession(gw)

	res := s.Add(ctx, AddInput{MerchandiseID: "X", Quantity: 1})
	require.True(t, res.OK, res.Message)
	assert.NoError(t, gw.createCtxErr)
	require.Error(t, ctx.Err())

	id, err := store.Get(context.Background(), "sid", session.KeyCartID)
	require.NoError(t, err)
	assert.Equal(t, "C1", id)
	assert.Equal(t, "C1", s.Snapshot().ID)
}

func TestAddUsesSubscribedCart(t *testing.T) {
	gw := &stubGateway{addResults: []gateway.Envelope[gateway.CartMutationRes]{
		mutationEnv(t, cartJSON("C1", line{"L1", "X", 1}, line{"L2", "Y", 2})),
	}}
	s, store, _ := newTestSession(gw)
	require.NoError(t, store.Set(context.Background(), "sid", session.KeyCartID, "C1"))

	res := s.Add(context.Background(), AddInput{MerchandiseID: "Y", Quantity: 2})
	require.True(t, res.OK)
	assert.Equal(t, 0, gw.createCalls)
	assert.Equal(t, "C1", gw.lastAddCartID)
	assert.Len(t, s.Snapshot().Lines, 2)
}

func TestAddNewCartDiscardsSubscription(t *testing.T) {
	gw := &stubGateway{createResults: []gateway.Envelope[gateway.CartMutationRes]{
		mutationEnv(t, cartJSON("C2", line{"L9", "Z", 1})),
	}}
	s, store, _ := newTestSession(gw)
	require.NoError(t, store.Set(context.Background(), "sid", session.KeyCartID, "C1"))

	res := s.Add(context.Background(), AddInput{MerchandiseID: "Z", Quantity: 1, NewCart: true})
	require.True(t, res.OK)
	assert.Equal(t, 1, gw.createCalls)
	assert.Equal(t, 0, gw.addCalls)
	id, _ := store.Get(context.Background(), "sid", session.KeyCartID)
	assert.Equal(t, "C2", id)
}

func TestAddFinalCartIsLastSuccessfulResponse(t *testing.T) {
	gw := &stubGateway{addResults: []gateway.Envelope[gateway.CartMutationRes]{
		mutationEnv(t, cartJSON("C1", line{"L1", "X", 2})),
		mutationEnv(t, "null", "Merchandise is sold out"),
		{Err: true, Message: "dial tcp: connection refused"},
		mutationEnv(t, cartJSON("C1", line{"L1", "X", 3})),
		mutationEnv(t, "null", "Quantity exceeds availability"),
	}}
	s, store, n := newTestSession(gw)
	require.NoError(t, store.Set(context.Background(), "sid", session.KeyCartID, "C1"))

	for i := 0; i < 5; i++ {
		s.Add(context.Background(), AddInput{MerchandiseID: "X", Quantity: 1})
	}
	cart := s.Snapshot()
	require.NotNil(t, cart)
	assert.Equal(t, 3, cart.Lines[0].Quantity)
	assert.Equal(t, "C1", gw.lastAddCartID)

	require.Len(t, n.banners, 5)
	assert.Equal(t, "Cart error: Merchandise is sold out", n.banners[1].title)
	assert.Equal(t, "Cart error: dial tcp: connection refused", n.banners[2].title)
	assert.Equal(t, notify.KindError, n.banners[4].kind)
}

func TestAddFailureKeepsCartAndSubscription(t *testing.T) {
	gw := &stubGateway{createResults: []gateway.Envelope[gateway.CartMutationRes]{
		{Err: true, Message: gateway.MsgMissingToken, Cause: gateway.ErrMissingToken},
	}}
	s, store, n := newTestSession(gw)

	res := s.Add(context.Background(), AddInput{MerchandiseID: "X", Quantity: 1})
	assert.False(t, res.OK)
	assert.Equal(t, gateway.MsgMissingToken, res.Message)
	assert.ErrorIs(t, res.Err, gateway.ErrMissingToken)
	assert.Nil(t, s.Snapshot())
	_, err := store.Get(context.Background(), "sid", session.KeyCartID)
	assert.ErrorIs(t, err, domain.ErrNotFound)
	assert.Equal(t, "Cart error: "+gateway.MsgMissingToken, n.banners[0].title)
}

func TestAddEmptyPayloadUsesFallbackMessage(t *testing.T) {
	gw := &stubGateway{createResults: []gateway.Envelope[gateway.CartMutationRes]{mutationEnv(t, "null")}}
	s, _, n := newTestSession(gw)

	res := s.Add(context.Background(), AddInput{MerchandiseID: "X", Quantity: 1})
	assert.False(t, res.OK)
	assert.Equal(t, MsgUnknown, res.Message)
	assert.ErrorIs(t, res.Err, domain.ErrRejected)
	assert.Equal(t, "Cart error: "+MsgUnknown, n.banners[0].title)
}

func TestAddValidatesLocally(t *testing.T) {
	gw := &stubGateway{}
	s, _, _ := newTestSession(gw)

	res := s.Add(context.Background(), AddInput{MerchandiseID: "X", Quantity: 0, Silent: true})
	assert.False(t, res.OK)
	assert.ErrorIs(t, res.Err, domain.ErrInvalidInput)
	assert.Equal(t, []string{"quantity"}, res.Fields)

	res = s.Add(context.Background(), AddInput{MerchandiseID: " ", Quantity: 1, Silent: true})
	assert.ErrorIs(t, res.Err, domain.ErrInvalidInput)
	assert.Empty(t, gw.calls)
}

func TestSilentSuppressesBannersOnly(t *testing.T) {
	gw := &stubGateway{createResults: []gateway.Envelope[gateway.CartMutationRes]{
		mutationEnv(t, cartJSON("C1", line{"L1", "X", 1})),
	}}
	s, store, n := newTestSession(gw)

	res := s.Add(context.Background(), AddInput{MerchandiseID: "X", Quantity: 1, Silent: true})
	require.True(t, res.OK)
	assert.Empty(t, n.banners)
	id, _ := store.Get(context.Background(), "sid", session.KeyCartID)
	assert.Equal(t, "C1", id)
}

func seededSession(t *testing.T, gw *stubGateway) (*Session, session.Store, *stubNotifier) {
	t.Helper()
	gw.createResults = []gateway.Envelope[gateway.CartMutationRes]{
		mutationEnv(t, cartJSON("C1", line{"L1", "X", 1}, line{"L2", "Y", 1})),
	}
	s, store, n := newTestSession(gw)
	require.True(t, s.Add(context.Background(), AddInput{MerchandiseID: "X", Quantity: 1, Silent: true}).OK)
	return s, store, n
}

func TestUpdateQuantityFailureLeavesCartUnchanged(t *testing.T) {
	gw := &stubGateway{}
	s, _, n := seededSession(t, gw)
	before := s.Snapshot()
	gw.updateResult = mutationEnv(t, "null", "Quantity must be lower than 2")

	res := s.UpdateQuantity(context.Background(), "L1", 3, false)
	assert.False(t, res.OK)
	assert.Equal(t, "Quantity must be lower than 2", res.Message)
	assert.Equal(t, before, s.Snapshot())
	assert.False(t, s.IsUpdating())
	assert.Equal(t, StateReady, s.State())
	assert.Equal(t, []domain.LineUpdate{{ID: "L1", Quantity: 3}}, gw.lastUpdateLines)
	assert.Equal(t, "Cart error: Quantity must be lower than 2", n.banners[0].title)
}

func TestUpdateQuantitySuccess(t *testing.T) {
	gw := &stubGateway{}
	s, _, n := seededSession(t, gw)
	gw.updateResult = mutationEnv(t, cartJSON("C1", line{"L1", "X", 3}, line{"L2", "Y", 1}))

	res := s.UpdateQuantity(context.Background(), "L1", 3, false)
	require.True(t, res.OK)
	l, ok := s.Snapshot().Line("L1")
	require.True(t, ok)
	assert.Equal(t, 3, l.Quantity)
	assert.Equal(t, MsgUpdated, n.banners[0].title)

	res = s.UpdateQuantity(context.Background(), "L1", -1, true)
	assert.ErrorIs(t, res.Err, domain.ErrInvalidInput)
	assert.Equal(t, 1, gw.updateCalls)
}

func TestRemoveWithoutCartMakesNoCall(t *testing.T) {
	gw := &stubGateway{}
	s, _, n := newTestSession(gw)

	res := s.Remove(context.Background(), "L1", false)
	assert.True(t, res.OK)
	assert.NoError(t, res.Err)
	assert.Equal(t, 0, gw.removeCalls)
	assert.Empty(t, n.banners)
	assert.False(t, s.IsUpdating())
}

func TestRemoveReplacesCart(t *testing.T) {
	gw := &stubGateway{}
	s, _, n := seededSession(t, gw)
	gw.removeResult = mutationEnv(t, cartJSON("C1", line{"L2", "Y", 1}))

	res := s.Remove(context.Background(), "L1", false)
	require.True(t, res.OK)
	assert.Equal(t, "C1", gw.lastRemoveCartID)
	assert.Equal(t, []string{"L1"}, gw.lastRemoveLines)
	_, ok := s.Snapshot().Line("L1")
	assert.False(t, ok)
	assert.Equal(t, MsgRemoved, n.banners[0].title)
}

func TestConcurrentRemovalsAreSerializedAndMarked(t *testing.T) {
	gw := &stubGateway{removeGate: make(chan struct{})}
	s, _, _ := seededSession(t, gw)
	gw.removeResult = mutationEnv(t, cartJSON("C1"))

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		s.Remove(context.Background(), "L1", true)
	}()
	require.Eventually(t, func() bool { return len(s.DeletingLines()) == 1 }, time.Second, time.Millisecond)
	wg.Add(1)
	go func() {
		defer wg.Done()
		s.Remove(context.Background(), "L2", true)
	}()
	require.Eventually(t, func() bool { return len(s.DeletingLines()) == 2 }, time.Second, time.Millisecond)

	assert.Equal(t, []string{"L1", "L2"}, s.DeletingLines())
	assert.True(t, s.IsUpdating())
	require.Eventually(t, func() bool { return s.State() == StateMutating }, time.Second, time.Millisecond)

	gw.removeGate <- struct{}{}
	gw.removeGate <- struct{}{}
	wg.Wait()

	assert.Equal(t, []string{"create", "remove:L1", "remove:L2"}, gw.calls)
	assert.Empty(t, s.DeletingLines())
	assert.False(t, s.IsUpdating())
	assert.Equal(t, StateReady, s.State())
}

func TestHydrateLoadsSubscribedCart(t *testing.T) {
	gw := &stubGateway{getResult: queryEnv(t, cartJSON("C1", line{"L1", "X", 2}))}
	s, store, _ := newTestSession(gw)
	require.NoError(t, store.Set(context.Background(), "sid", session.KeyCartID, "C1"))
	assert.Equal(t, StateUninitialized, s.State())

	res := s.Hydrate(context.Background())
	require.True(t, res.OK)
	assert.Equal(t, StateReady, s.State())
	assert.Equal(t, "C1", gw.lastGetID)
	assert.Equal(t, 2, s.Snapshot().TotalQuantity)

	s.Hydrate(context.Background())
	assert.Equal(t, 1, gw.getCalls)
}

func TestHydrateWithoutSubscriptionMakesNoCall(t *testing.T) {
	gw := &stubGateway{}
	s, _, _ := newTestSession(gw)

	res := s.Hydrate(context.Background())
	assert.True(t, res.OK)
	assert.Equal(t, 0, gw.getCalls)
	assert.Equal(t, StateReady, s.State())
	assert.Nil(t, s.Snapshot())
}

func TestGetFailureIsNoOp(t *testing.T) {
	gw := &stubGateway{}
	s, store, n := seededSession(t, gw)
	before := s.Snapshot()
	gw.getResult = gateway.Envelope[gateway.CartQueryRes]{Err: true, Message: gateway.MsgParse, Cause: gateway.ErrParse}

	res := s.Get(context.Background())
	assert.False(t, res.OK)
	assert.Equal(t, before, s.Snapshot())
	id, _ := store.Get(context.Background(), "sid", session.KeyCartID)
	assert.Equal(t, "C1", id)
	assert.Empty(t, n.banners)
}

func TestGetUnsubscribesStaleCart(t *testing.T) {
	gw := &stubGateway{}
	s, store, _ := seededSession(t, gw)
	gw.getResult = queryEnv(t, "null")

	res := s.Get(context.Background())
	assert.True(t, res.OK)
	assert.Nil(t, s.Snapshot())
	_, err := store.Get(context.Background(), "sid", session.KeyCartID)
	assert.ErrorIs(t, err, domain.ErrNotFound)

	gw.createResults = []gateway.Envelope[gateway.CartMutationRes]{mutationEnv(t, cartJSON("C9", line{"L1", "X", 1}))}
	require.True(t, s.Add(context.Background(), AddInput{MerchandiseID: "X", Quantity: 1}).OK)
	assert.Equal(t, 2, gw.createCalls)
	assert.Equal(t, 0, gw.addCalls)
}

func TestSnapshotIsACopy(t *testing.T) {
	gw := &stubGateway{}
	s, _, _ := seededSession(t, gw)
	snap := s.Snapshot()
	snap.Lines[0].Quantity = 99
	assert.Equal(t, 1, s.Snapshot().Lines[0].Quantity)
}

func TestViewReportsState(t *testing.T) {
	gw := &stubGateway{}
	s, _, _ := seededSession(t, gw)
	v := s.View()
	assert.Equal(t, StateReady, v.State)
	assert.False(t, v.Updating)
	assert.Empty(t, v.DeletingLines)
	assert.Equal(t, "C1", v.Cart.ID)
}
