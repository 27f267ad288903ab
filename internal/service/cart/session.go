package cart

import (
	"context"
	"errors"
	"strings"
	"sync"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"storefront/internal/domain"
	"storefront/internal/gateway"
	"storefront/internal/notify"
	"storefront/internal/repository/session"
)

// State is the lifecycle position of a cart session.
type State string

const (
	StateUninitialized State = "uninitialized"
	StateHydrating     State = "hydrating"
	StateReady         State = "ready"
	StateMutating      State = "mutating"
)

const (
	MsgAdded       = "Successfully added item(s) to cart"
	MsgRemoved     = "Successfully removed item(s) from cart"
	MsgUpdated     = "Successfully updated cart"
	MsgUnknown     = "Unknown error occurred while updating cart"
	cartErrorTitle = "Cart error: "
)

// Gateway is the subset of the commerce gateway the cart session needs.
type Gateway interface {
	CreateCart(ctx context.Context, p gateway.CreateCartParams) gateway.Envelope[gateway.CartMutationRes]
	AddCartLines(ctx context.Context, cartID string, lines []domain.LineInput) gateway.Envelope[gateway.CartMutationRes]
	RemoveCartLines(ctx context.Context, cartID string, lineIDs []string) gateway.Envelope[gateway.CartMutationRes]
	UpdateCartLines(ctx context.Context, cartID string, lines []domain.LineUpdate) gateway.Envelope[gateway.CartMutationRes]
	GetCart(ctx context.Context, cartID string) gateway.Envelope[gateway.CartQueryRes]
}

// TokenSource yields the current customer access token, or "" when signed out.
type TokenSource interface {
	CurrentToken(ctx context.Context) string
}

type Option func(*Session)

// WithTokenSource binds newly created carts to the signed-in customer.
func WithTokenSource(ts TokenSource) Option {
	return func(s *Session) { s.tokens = ts }
}

// WithGroup shares a singleflight group between sessions.
func WithGroup(g *singleflight.Group) Option {
	return func(s *Session) { s.group = g }
}

// Session holds one browser session's authoritative in-memory cart. The cart
// is replaced wholesale by every successful gateway response and left
// untouched by every failure. Mutations and refreshes are applied one at a
// time in issue order.
type Session struct {
	id       string
	gw       Gateway
	store    session.Store
	notifier notify.Notifier
	log      *zap.Logger
	tokens   TokenSource
	group    *singleflight.Group

	queue    mutationQueue
	registry registry

	mu    sync.RWMutex
	state State
	cart  *domain.Cart
}

func New(id string, gw Gateway, store session.Store, n notify.Notifier, log *zap.Logger, opts ...Option) *Session {
	if log == nil {
		log = zap.NewNop()
	}
	s := &Session{
		id:       id,
		gw:       gw,
		store:    store,
		notifier: n,
		log:      log.With(zap.String("session", id)),
		state:    StateUninitialized,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.group == nil {
		s.group = &singleflight.Group{}
	}
	return s
}

// AddInput is one add-to-cart intent.
type AddInput struct {
	MerchandiseID string `json:"merchandiseId"`
	Quantity      int    `json:"quantity"`
	NewCart       bool   `json:"newCart"`
	Silent        bool   `json:"silent"`
}

// View is a consistent read of the session for presentation.
type View struct {
	State         State        `json:"state"`
	Cart          *domain.Cart `json:"cart"`
	Updating      bool         `json:"isUpdating"`
	DeletingLines []string     `json:"deletingLines"`
}

func (s *Session) State() State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state
}

// Snapshot returns a copy of the current cart, or nil when none is held.
func (s *Session) Snapshot() *domain.Cart {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.cart.Clone()
}

// IsUpdating reports whether any mutation is queued or in flight.
func (s *Session) IsUpdating() bool {
	return s.registry.busy()
}

// DeletingLines lists line IDs with a removal queued or in flight.
func (s *Session) DeletingLines() []string {
	return s.registry.deleting()
}

func (s *Session) View() View {
	return View{
		State:         s.State(),
		Cart:          s.Snapshot(),
		Updating:      s.IsUpdating(),
		DeletingLines: s.DeletingLines(),
	}
}

// Hydrate loads the subscribed cart on first access. Later calls are no-ops.
func (s *Session) Hydrate(ctx context.Context) domain.Result {
	s.mu.Lock()
	if s.state != StateUninitialized {
		s.mu.Unlock()
		return domain.Succeeded()
	}
	s.state = StateHydrating
	s.mu.Unlock()
	return s.Get(ctx)
}

// Get refreshes the cart from the gateway. Concurrent calls share one fetch.
// A failed fetch leaves the cart as is. A cart the gateway no longer knows is
// unsubscribed and the session falls back to an empty cart.
func (s *Session) Get(ctx context.Context) domain.Result {
	v, _, _ := s.group.Do(s.id+":get", func() (any, error) {
		return s.refresh(context.WithoutCancel(ctx)), nil
	})
	return v.(domain.Result)
}

func (s *Session) refresh(ctx context.Context) domain.Result {
	release, err := s.queue.acquire(ctx)
	if err != nil {
		return domain.Failed(err, err.Error())
	}
	defer release()
	defer s.settle()

	subscribed := s.subscribedID(ctx)
	cartID := s.currentID()
	if cartID == "" {
		cartID = subscribed
	}
	if cartID == "" {
		return domain.Succeeded()
	}

	env := s.gw.GetCart(ctx, cartID)
	if res := env.Result(nil, MsgUnknown); !res.OK {
		s.log.Warn("cart refresh failed", zap.String("cart_id", cartID), zap.String("message", res.Message))
		return res
	}
	fresh := env.Res.Cart()
	if fresh == nil {
		s.log.Info("cart no longer exists, unsubscribing", zap.String("cart_id", cartID))
		if subscribed == cartID {
			s.unsubscribe(ctx)
		}
		s.replace(nil)
		return domain.Succeeded()
	}
	s.replace(fresh)
	return domain.Succeeded()
}

// Add puts merchandise in the cart, creating a cart first when none is
// subscribed or a new cart is requested.
func (s *Session) Add(ctx context.Context, in AddInput) domain.Result {
	in.MerchandiseID = strings.TrimSpace(in.MerchandiseID)
	if in.MerchandiseID == "" {
		return s.reject(in.Silent, "merchandise required", "merchandiseId")
	}
	if in.Quantity < 1 {
		return s.reject(in.Silent, "quantity must be at least 1", "quantity")
	}

	reqID := s.registry.begin(opAdd, "")
	defer s.registry.end(reqID)
	release, err := s.queue.acquire(ctx)
	if err != nil {
		return domain.Failed(err, err.Error())
	}
	defer release()
	// An issued mutation is applied whenever its response arrives.
	ctx = context.WithoutCancel(ctx)
	s.enter()
	defer s.settle()

	if in.NewCart {
		s.unsubscribe(ctx)
	}
	cartID := s.subscribedID(ctx)
	if cartID == "" {
		cartID = s.currentID()
	}
	create := in.NewCart || cartID == ""
	lines := []domain.LineInput{{MerchandiseID: in.MerchandiseID, Quantity: in.Quantity}}

	var env gateway.Envelope[gateway.CartMutationRes]
	if create {
		p := gateway.CreateCartParams{Lines: lines}
		if s.tokens != nil {
			p.CustomerAccessToken = s.tokens.CurrentToken(ctx)
		}
		env = s.gw.CreateCart(ctx, p)
	} else {
		env = s.gw.AddCartLines(ctx, cartID, lines)
	}

	fresh, res := s.apply(env, in.Silent, MsgAdded)
	if res.OK && create {
		s.subscribe(ctx, fresh.ID)
	}
	return res
}

// Remove deletes a line. Without a cart it is a no-op and no gateway call is
// made.
func (s *Session) Remove(ctx context.Context, lineID string, silent bool) domain.Result {
	if strings.TrimSpace(lineID) == "" {
		return s.reject(silent, "line required", "lineId")
	}
	reqID := s.registry.begin(opRemove, lineID)
	defer s.registry.end(reqID)
	release, err := s.queue.acquire(ctx)
	if err != nil {
		return domain.Failed(err, err.Error())
	}
	defer release()
	// An issued mutation is applied whenever its response arrives.
	ctx = context.WithoutCancel(ctx)

	cartID := s.currentID()
	if cartID == "" {
		s.log.Debug("remove without cart ignored", zap.String("line_id", lineID))
		return domain.Succeeded()
	}
	s.enter()
	defer s.settle()

	_, res := s.apply(s.gw.RemoveCartLines(ctx, cartID, []string{lineID}), silent, MsgRemoved)
	return res
}

// UpdateQuantity sets a line's quantity; zero removes the line. Silent mode
// suits rapid stepper clicks.
func (s *Session) UpdateQuantity(ctx context.Context, lineID string, quantity int, silent bool) domain.Result {
	if strings.TrimSpace(lineID) == "" {
		return s.reject(silent, "line required", "lineId")
	}
	if quantity < 0 {
		return s.reject(silent, "quantity must not be negative", "quantity")
	}
	kind := opUpdate
	if quantity == 0 {
		kind = opRemove
	}
	reqID := s.registry.begin(kind, lineID)
	defer s.registry.end(reqID)
	release, err := s.queue.acquire(ctx)
	if err != nil {
		return domain.Failed(err, err.Error())
	}
	defer release()
	// An issued mutation is applied whenever its response arrives.
	ctx = context.WithoutCancel(ctx)

	cartID := s.currentID()
	if cartID == "" {
		return domain.Failed(domain.ErrNoCart, domain.ErrNoCart.Error())
	}
	s.enter()
	defer s.settle()

	env := s.gw.UpdateCartLines(ctx, cartID, []domain.LineUpdate{{ID: lineID, Quantity: quantity}})
	_, res := s.apply(env, silent, MsgUpdated)
	return res
}

// apply installs the cart carried by a mutation response, or reports why it
// cannot. The held cart is untouched on failure.
func (s *Session) apply(env gateway.Envelope[gateway.CartMutationRes], silent bool, success string) (*domain.Cart, domain.Result) {
	var userErrors []gateway.UserError
	if env.Res != nil {
		userErrors = env.Res.UserErrors()
	}
	res := env.Result(userErrors, MsgUnknown)
	var fresh *domain.Cart
	if res.OK {
		if fresh = env.Res.Cart(); fresh == nil {
			res = domain.Failed(domain.ErrRejected, MsgUnknown)
		}
	}
	if !res.OK {
		s.log.Warn("cart mutation failed", zap.String("message", res.Message), zap.Error(res.Err))
		s.notify(silent, notify.KindError, cartErrorTitle+res.Message)
		return nil, res
	}
	s.replace(fresh)
	s.notify(silent, notify.KindSuccess, success)
	return fresh, res
}

func (s *Session) reject(silent bool, msg, field string) domain.Result {
	s.notify(silent, notify.KindError, cartErrorTitle+msg)
	res := domain.Failed(domain.ErrInvalidInput, msg)
	res.Fields = []string{field}
	return res
}

func (s *Session) notify(silent bool, kind notify.Kind, title string) {
	if silent || s.notifier == nil {
		return
	}
	s.notifier.Notify(s.id, kind, title, notify.Short)
}

func (s *Session) enter() {
	s.mu.Lock()
	s.state = StateMutating
	s.mu.Unlock()
}

// settle returns the session to ready whatever the outcome.
func (s *Session) settle() {
	s.mu.Lock()
	s.state = StateReady
	s.mu.Unlock()
}

func (s *Session) replace(c *domain.Cart) {
	s.mu.Lock()
	s.cart = c
	s.mu.Unlock()
}

func (s *Session) currentID() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.cart == nil {
		return ""
	}
	return s.cart.ID
}

func (s *Session) subscribedID(ctx context.Context) string {
	id, err := s.store.Get(ctx, s.id, session.KeyCartID)
	if err != nil {
		if !errors.Is(err, domain.ErrNotFound) {
			s.log.Warn("read cart subscription", zap.Error(err))
		}
		return ""
	}
	return id
}

func (s *Session) subscribe(ctx context.Context, cartID string) {
	if cartID == "" {
		return
	}
	if err := s.store.Set(ctx, s.id, session.KeyCartID, cartID); err != nil {
		s.log.Error("subscribe to cart", zap.String("cart_id", cartID), zap.Error(err))
	}
}

func (s *Session) unsubscribe(ctx context.Context) {
	if err := s.store.Delete(ctx, s.id, session.KeyCartID); err != nil {
		s.log.Error("unsubscribe from cart", zap.Error(err))
	}
}
