package profile

import (
	"context"
	"slices"
	"strings"
	"sync"

	"go.uber.org/zap"

	"storefront/internal/domain"
	"storefront/internal/format"
	"storefront/internal/gateway"
	"storefront/internal/notify"
	"storefront/internal/validate"
)

const (
	MsgUpdated       = "Successfully updated your information!"
	MsgInvalidFields = "Invalid fields, please double check"
	MsgLoginAgain    = "Please log in with your new password"
	msgLoadUnknown   = "Unknown error occurred while loading profile data"
	msgUpdateUnknown = "Unknown error occurred updating your account"
	msgNoCustomer    = "Could not load profile data for this session"
)

// Gateway is the subset of the commerce gateway used for profiles.
type Gateway interface {
	GetProfile(ctx context.Context, token string) gateway.Envelope[gateway.CustomerQueryRes]
	GetAccountDetails(ctx context.Context, token string) gateway.Envelope[gateway.CustomerQueryRes]
	UpdateCustomer(ctx context.Context, token string, update gateway.CustomerUpdate) gateway.Envelope[gateway.CustomerMutationRes]
	Login(ctx context.Context, email, password string) gateway.Envelope[gateway.CustomerMutationRes]
}

// Holder caches one session's customer profile. It refetches only when it
// is handed a token different from the one it last fetched with.
type Holder struct {
	id       string
	gw       Gateway
	notifier notify.Notifier
	log      *zap.Logger

	mu          sync.Mutex
	profile     *domain.Customer
	loading     int
	cachedToken string
	// stale is set when the last fetch for cachedToken failed.
	stale bool
}

func New(id string, gw Gateway, n notify.Notifier, log *zap.Logger) *Holder {
	if log == nil {
		log = zap.NewNop()
	}
	return &Holder{id: id, gw: gw, notifier: n, log: log.With(zap.String("session", id))}
}

// Sync fetches silently when token is new and non-empty, or when the last
// fetch for it failed.
func (h *Holder) Sync(ctx context.Context, token string) {
	if token == "" {
		return
	}
	h.mu.Lock()
	if token == h.cachedToken && !h.stale {
		h.mu.Unlock()
		return
	}
	h.cachedToken = token
	h.stale = false
	h.mu.Unlock()
	h.fetch(ctx, token, true)
}

// Refresh refetches with the last token seen.
func (h *Holder) Refresh(ctx context.Context, silent bool) domain.Result {
	h.mu.Lock()
	token := h.cachedToken
	h.mu.Unlock()
	if token == "" {
		return domain.Failed(domain.ErrUnauthenticated, domain.ErrUnauthenticated.Error())
	}
	return h.fetch(ctx, token, silent)
}

// Clear drops the cached profile and the token it belongs to.
func (h *Holder) Clear() {
	h.mu.Lock()
	h.profile = nil
	h.cachedToken = ""
	h.stale = false
	h.mu.Unlock()
}

// Profile returns a copy of the cached profile, or nil.
func (h *Holder) Profile() *domain.Customer {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.profile == nil {
		return nil
	}
	c := *h.profile
	c.Orders = slices.Clone(h.profile.Orders)
	c.Addresses = slices.Clone(h.profile.Addresses)
	return &c
}

func (h *Holder) Loading() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.loading > 0
}

func (h *Holder) fetch(ctx context.Context, token string, silent bool) domain.Result {
	h.mu.Lock()
	h.loading++
	h.mu.Unlock()
	defer func() {
		h.mu.Lock()
		h.loading--
		h.mu.Unlock()
	}()

	env := h.gw.GetProfile(ctx, token)
	res := env.Result(nil, msgLoadUnknown)
	if res.OK && env.Res.Customer() == nil {
		res = domain.Failed(domain.ErrUnauthenticated, msgNoCustomer)
	}
	if !res.OK {
		h.mu.Lock()
		if h.cachedToken == token {
			h.stale = true
		}
		h.mu.Unlock()
		h.log.Warn("profile fetch failed", zap.String("message", res.Message))
		if !silent {
			h.notify(notify.KindError, res.Message)
		}
		return res
	}

	h.mu.Lock()
	if h.cachedToken == token {
		h.profile = env.Res.Customer()
		h.stale = false
	}
	h.mu.Unlock()
	return domain.Succeeded()
}

// AccountDetails reads the editable account fields for token.
func (h *Holder) AccountDetails(ctx context.Context, token string) (*domain.Customer, domain.Result) {
	if token == "" {
		return nil, domain.Failed(domain.ErrUnauthenticated, domain.ErrUnauthenticated.Error())
	}
	env := h.gw.GetAccountDetails(ctx, token)
	res := env.Result(nil, msgLoadUnknown)
	if !res.OK {
		return nil, res
	}
	c := env.Res.Customer()
	if c == nil {
		return nil, domain.Failed(domain.ErrUnauthenticated, msgNoCustomer)
	}
	return c, res
}

// Details is the account details form.
type Details struct {
	FirstName        string `json:"firstName"`
	LastName         string `json:"lastName"`
	Email            string `json:"email"`
	Phone            string `json:"phone"`
	Password         string `json:"password"`
	PasswordConfirm  string `json:"passwordConfirm"`
	AcceptsMarketing bool   `json:"acceptsMarketing"`
}

// UpdateDetails validates and saves the form. When the password changed the
// customer is signed in again and the fresh token is returned; the old token
// is revoked by the gateway.
func (h *Holder) UpdateDetails(ctx context.Context, token string, d Details) (domain.Result, *domain.AccessToken) {
	if token == "" {
		return domain.Failed(domain.ErrUnauthenticated, domain.ErrUnauthenticated.Error()), nil
	}
	form := validate.Account{
		FirstName:       d.FirstName,
		LastName:        d.LastName,
		Email:           d.Email,
		Phone:           d.Phone,
		Password:        d.Password,
		PasswordConfirm: d.PasswordConfirm,
	}
	if invalid := form.Invalid(); len(invalid) > 0 {
		h.notify(notify.KindError, MsgInvalidFields)
		res := domain.Failed(domain.ErrInvalidInput, MsgInvalidFields)
		res.Fields = invalid
		return res, nil
	}

	first, last, email := strings.TrimSpace(d.FirstName), strings.TrimSpace(d.LastName), strings.TrimSpace(d.Email)
	phone := format.StandardizePhone(d.Phone)
	update := gateway.CustomerUpdate{
		FirstName:        &first,
		LastName:         &last,
		Email:            &email,
		AcceptsMarketing: &d.AcceptsMarketing,
	}
	if phone != "" {
		update.Phone = &phone
	}
	if d.Password != "" {
		update.Password = &d.Password
	}

	env := h.gw.UpdateCustomer(ctx, token, update)
	var userErrors []gateway.UserError
	if env.Res != nil {
		userErrors = env.Res.UserErrors()
	}
	if res := env.Result(userErrors, msgUpdateUnknown); !res.OK {
		h.log.Warn("customer update failed", zap.String("message", res.Message))
		h.notify(notify.KindError, res.Message)
		return res, nil
	}
	h.notify(notify.KindSuccess, MsgUpdated)

	if d.Password == "" {
		h.fetch(ctx, token, true)
		return domain.Succeeded(), nil
	}
	fresh := h.relogin(ctx, email, d.Password)
	if fresh == nil {
		h.notify(notify.KindError, MsgLoginAgain)
		h.Clear()
		res := domain.Failed(domain.ErrUnauthenticated, MsgLoginAgain)
		return res, nil
	}
	return domain.Succeeded(), fresh
}

func (h *Holder) relogin(ctx context.Context, email, password string) *domain.AccessToken {
	env := h.gw.Login(ctx, email, password)
	if env.Err || env.Res == nil {
		h.log.Warn("re-login after password change failed", zap.String("message", env.Message))
		return nil
	}
	return env.Res.AccessToken()
}

func (h *Holder) notify(kind notify.Kind, title string) {
	if h.notifier != nil {
		h.notifier.Notify(h.id, kind, title, notify.Standard)
	}
}
