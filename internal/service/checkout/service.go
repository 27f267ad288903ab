package checkout

import (
	"context"
	"strings"
	"sync"

	"go.uber.org/zap"

	"storefront/internal/domain"
	"storefront/internal/gateway"
	"storefront/internal/notify"
)

const (
	msgUnknown     = "Unknown error occurred while creating checkout"
	msgEmptyLines  = "There is nothing to check out"
	checkoutPrefix = "Checkout error: "
)

type Gateway interface {
	CreateCheckout(ctx context.Context, p gateway.CreateCheckoutParams) gateway.Envelope[gateway.CheckoutMutationRes]
}

// Params describes the checkout to create.
type Params struct {
	Email           string                     `json:"email"`
	LineItems       []gateway.CheckoutLineItem `json:"lineItems"`
	ShippingAddress *domain.CheckoutAddress    `json:"shippingAddress,omitempty"`
}

type entry struct {
	checkout *domain.Checkout
	creating int
}

// Service creates checkouts and remembers the last one per session.
type Service struct {
	gw       Gateway
	notifier notify.Notifier
	log      *zap.Logger

	mu       sync.Mutex
	sessions map[string]*entry
}

func New(gw Gateway, n notify.Notifier, log *zap.Logger) *Service {
	if log == nil {
		log = zap.NewNop()
	}
	return &Service{gw: gw, notifier: n, log: log, sessions: map[string]*entry{}}
}

// LineItemsFromCart converts cart lines into checkout line items.
func LineItemsFromCart(c *domain.Cart) []gateway.CheckoutLineItem {
	if c == nil {
		return nil
	}
	out := make([]gateway.CheckoutLineItem, 0, len(c.Lines))
	for _, l := range c.Lines {
		if l.Quantity > 0 && l.Merchandise.ID != "" {
			out = append(out, gateway.CheckoutLineItem{VariantID: l.Merchandise.ID, Quantity: l.Quantity})
		}
	}
	return out
}

func (s *Service) Create(ctx context.Context, sid string, p Params) (*domain.Checkout, domain.Result) {
	if len(p.LineItems) == 0 {
		s.notify(sid, checkoutPrefix+msgEmptyLines)
		res := domain.Failed(domain.ErrInvalidInput, msgEmptyLines)
		res.Fields = []string{"lineItems"}
		return nil, res
	}

	s.begin(sid)
	defer s.end(sid)

	env := s.gw.CreateCheckout(ctx, gateway.CreateCheckoutParams{
		Email:           strings.TrimSpace(p.Email),
		LineItems:       p.LineItems,
		ShippingAddress: p.ShippingAddress,
	})
	var userErrors []gateway.UserError
	if env.Res != nil {
		userErrors = env.Res.UserErrors()
	}
	res := env.Result(userErrors, msgUnknown)
	var co *domain.Checkout
	if res.OK {
		if co = env.Res.Checkout(); co == nil {
			res = domain.Failed(domain.ErrRejected, msgUnknown)
		}
	}
	if !res.OK {
		s.log.Warn("checkout create failed", zap.String("session", sid), zap.String("message", res.Message))
		s.notify(sid, checkoutPrefix+res.Message)
		return nil, res
	}

	s.mu.Lock()
	s.entry(sid).checkout = co
	s.mu.Unlock()
	return co, res
}

// Last returns the most recently created checkout of the session.
func (s *Service) Last(sid string) *domain.Checkout {
	s.mu.Lock()
	defer s.mu.Unlock()
	if e, ok := s.sessions[sid]; ok {
		return e.checkout
	}
	return nil
}

// Creating reports whether a checkout creation is in flight for the session.
func (s *Service) Creating(sid string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.sessions[sid]
	return ok && e.creating > 0
}

// Forget drops the state of an evicted session.
func (s *Service) Forget(sid string) {
	s.mu.Lock()
	delete(s.sessions, sid)
	s.mu.Unlock()
}

func (s *Service) entry(sid string) *entry {
	e, ok := s.sessions[sid]
	if !ok {
		e = &entry{}
		s.sessions[sid] = e
	}
	return e
}

func (s *Service) begin(sid string) {
	s.mu.Lock()
	s.entry(sid).creating++
	s.mu.Unlock()
}

func (s *Service) end(sid string) {
	s.mu.Lock()
	s.entry(sid).creating--
	s.mu.Unlock()
}

func (s *Service) notify(sid, title string) {
	if s.notifier != nil {
		s.notifier.Notify(sid, notify.KindError, title, notify.Standard)
	}
}
