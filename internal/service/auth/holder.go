package auth

import (
	"context"
	"errors"
	"strings"
	"time"

	"go.uber.org/zap"

	"storefront/internal/domain"
	"storefront/internal/gateway"
	"storefront/internal/notify"
	"storefront/internal/repository/session"
	"storefront/internal/validate"
)

const (
	MsgLoggedIn        = "Success!! (You're in)"
	MsgAccountCreated  = "Account created! Congrats!"
	MsgRecoverSent     = "Check your email for the reset link"
	MsgPasswordReset   = "Your password has been reset"
	MsgInvalidFields   = "Invalid fields, please double check"
	MsgInvalidEmail    = "Looks like your email might be invalid"
	msgLoginRejected   = "Looks like you may have entered incorrect info"
	msgLoginUnknown    = "Unknown Login error occurred..."
	msgCreateUnknown   = "Unknown account creation error occurred"
	msgRecoverUnknown  = "Unknown error occurred, could not send recovery email"
	msgResetUnknown    = "Unknown error occurred while resetting your password"
	msgTokenNotPersist = "Could not keep you signed in, please try again"
)

// Gateway is the subset of the commerce gateway used for authentication.
type Gateway interface {
	CreateCustomer(ctx context.Context, p gateway.CreateCustomerParams) gateway.Envelope[gateway.CustomerMutationRes]
	Login(ctx context.Context, email, password string) gateway.Envelope[gateway.CustomerMutationRes]
	Logout(ctx context.Context, token string) gateway.Envelope[gateway.CustomerMutationRes]
	RecoverAccount(ctx context.Context, email string) gateway.Envelope[gateway.CustomerMutationRes]
	ResetPassword(ctx context.Context, id, resetToken, password string) gateway.Envelope[gateway.CustomerMutationRes]
}

// ProfileSink is told when the signed-in customer changes.
type ProfileSink interface {
	Sync(ctx context.Context, token string)
	Clear()
}

type Option func(*Holder)

func WithProfile(p ProfileSink) Option {
	return func(h *Holder) { h.profile = p }
}

// Holder owns one session's customer access token. The token lives in the
// durable session store and is validated against its expiry on every read.
type Holder struct {
	id       string
	gw       Gateway
	tokens   *tokenManager
	notifier notify.Notifier
	profile  ProfileSink
	log      *zap.Logger
}

func New(id string, gw Gateway, store session.Store, n notify.Notifier, log *zap.Logger, opts ...Option) *Holder {
	if log == nil {
		log = zap.NewNop()
	}
	log = log.With(zap.String("session", id))
	h := &Holder{
		id:       id,
		gw:       gw,
		tokens:   newTokenManager(store, log),
		notifier: n,
		log:      log,
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Restore reads the stored token. Expired or malformed tokens are purged
// and reported absent.
func (h *Holder) Restore(ctx context.Context) (domain.AccessToken, bool) {
	at, err := h.tokens.Load(ctx, h.id)
	if err != nil {
		if errors.Is(err, domain.ErrTokenExpired) {
			h.log.Info("discarded expired access token")
		} else if !errors.Is(err, domain.ErrUnauthenticated) {
			h.log.Warn("restore access token", zap.Error(err))
		}
		return domain.AccessToken{}, false
	}
	return at, true
}

// CurrentToken returns the valid token or "".
func (h *Holder) CurrentToken(ctx context.Context) string {
	at, ok := h.Restore(ctx)
	if !ok {
		return ""
	}
	return at.Token
}

// Status reports whether a valid token is held and when it expires.
type Status struct {
	Authenticated bool       `json:"authenticated"`
	ExpiresAt     *time.Time `json:"expiresAt,omitempty"`
}

func (h *Holder) Status(ctx context.Context) Status {
	at, ok := h.Restore(ctx)
	if !ok {
		return Status{}
	}
	exp := at.ExpiresAt
	return Status{Authenticated: true, ExpiresAt: &exp}
}

// Login exchanges credentials for an access token.
func (h *Holder) Login(ctx context.Context, email, password string) domain.Result {
	email = strings.TrimSpace(email)
	var invalid []string
	if !validate.NotEmpty(email) {
		invalid = append(invalid, "email")
	}
	if !validate.NotEmpty(password) {
		invalid = append(invalid, "password")
	}
	if len(invalid) > 0 {
		return h.invalid(MsgInvalidFields, invalid...)
	}
	return h.login(ctx, email, password, true)
}

func (h *Holder) login(ctx context.Context, email, password string, announce bool) domain.Result {
	env := h.gw.Login(ctx, email, password)
	var userErrors []gateway.UserError
	if env.Res != nil {
		userErrors = env.Res.UserErrors()
	}
	res := env.Result(userErrors, msgLoginRejected)
	if !res.OK {
		return h.fail(res)
	}
	at := env.Res.AccessToken()
	if at == nil {
		return h.fail(domain.Failed(domain.ErrRejected, msgLoginUnknown))
	}
	if res := h.Adopt(ctx, *at); !res.OK {
		return res
	}
	if announce {
		h.notify(notify.KindSuccess, MsgLoggedIn)
	}
	return res
}

// Adopt stores a token obtained elsewhere and refreshes the profile for it.
func (h *Holder) Adopt(ctx context.Context, at domain.AccessToken) domain.Result {
	if err := h.tokens.Save(ctx, h.id, at); err != nil {
		h.log.Error("persist access token", zap.Error(err))
		return h.fail(domain.Failed(err, msgTokenNotPersist))
	}
	if h.profile != nil {
		h.profile.Sync(ctx, at.Token)
	}
	return domain.Succeeded()
}

// SignupInput is the create account form.
type SignupInput struct {
	FirstName        string `json:"firstName"`
	LastName         string `json:"lastName"`
	Email            string `json:"email"`
	Password         string `json:"password"`
	AcceptsMarketing bool   `json:"acceptsMarketing"`
}

// CreateAccount registers a customer and signs them in. A rejected creation
// (for example an existing account) still attempts the login.
func (h *Holder) CreateAccount(ctx context.Context, in SignupInput) domain.Result {
	in.Email = strings.TrimSpace(in.Email)
	form := validate.Signup{FirstName: in.FirstName, LastName: in.LastName, Email: in.Email, Password: in.Password}
	if invalid := form.Invalid(); len(invalid) > 0 {
		return h.invalid(MsgInvalidFields, invalid...)
	}

	env := h.gw.CreateCustomer(ctx, gateway.CreateCustomerParams{
		Email:            in.Email,
		Password:         in.Password,
		FirstName:        strings.TrimSpace(in.FirstName),
		LastName:         strings.TrimSpace(in.LastName),
		AcceptsMarketing: in.AcceptsMarketing,
	})
	if res := env.Result(nil, msgCreateUnknown); !res.OK {
		return h.fail(res)
	}
	if env.Res.CustomerID() != "" {
		h.notify(notify.KindSuccess, MsgAccountCreated)
	} else if ue := env.Res.UserErrors(); len(ue) > 0 {
		h.log.Info("customer create rejected, attempting login", zap.String("message", ue[0].Message))
	}
	return h.login(ctx, in.Email, in.Password, true)
}

// Logout revokes the token remotely on a best-effort basis, then forgets it
// locally and drops the cached profile.
func (h *Holder) Logout(ctx context.Context) domain.Result {
	if tok := h.CurrentToken(ctx); tok != "" {
		env := h.gw.Logout(ctx, tok)
		var userErrors []gateway.UserError
		if env.Res != nil {
			userErrors = env.Res.UserErrors()
		}
		if res := env.Result(userErrors, ""); !res.OK {
			h.log.Warn("remote token revocation failed", zap.String("message", res.Message))
		}
	}
	if err := h.tokens.Purge(ctx, h.id); err != nil {
		h.log.Error("purge access token", zap.Error(err))
	}
	if h.profile != nil {
		h.profile.Clear()
	}
	return domain.Succeeded()
}

// Recover asks the gateway to email a password reset link.
func (h *Holder) Recover(ctx context.Context, email string) domain.Result {
	email = strings.TrimSpace(email)
	if !validate.NotEmpty(email) {
		return h.invalid(MsgInvalidEmail, "email")
	}
	env := h.gw.RecoverAccount(ctx, email)
	var userErrors []gateway.UserError
	if env.Res != nil {
		userErrors = env.Res.UserErrors()
	}
	if res := env.Result(userErrors, msgRecoverUnknown); !res.OK {
		return h.fail(res)
	}
	h.notify(notify.KindSuccess, MsgRecoverSent)
	return domain.Succeeded()
}

// ResetInput carries the values from a password reset link.
type ResetInput struct {
	ID         string `json:"id"`
	ResetToken string `json:"resetToken"`
	Password   string `json:"password"`
}

// Reset sets a new password and signs in with the token it returns.
func (h *Holder) Reset(ctx context.Context, in ResetInput) domain.Result {
	var invalid []string
	if !validate.NotEmpty(in.ID) {
		invalid = append(invalid, "id")
	}
	if !validate.NotEmpty(in.ResetToken) {
		invalid = append(invalid, "resetToken")
	}
	if !validate.NotEmpty(in.Password) {
		invalid = append(invalid, "password")
	}
	if len(invalid) > 0 {
		return h.invalid(MsgInvalidFields, invalid...)
	}

	env := h.gw.ResetPassword(ctx, in.ID, in.ResetToken, in.Password)
	var userErrors []gateway.UserError
	if env.Res != nil {
		userErrors = env.Res.UserErrors()
	}
	if res := env.Result(userErrors, msgResetUnknown); !res.OK {
		return h.fail(res)
	}
	if at := env.Res.AccessToken(); at != nil {
		if res := h.Adopt(ctx, *at); !res.OK {
			return res
		}
	}
	h.notify(notify.KindSuccess, MsgPasswordReset)
	return domain.Succeeded()
}

func (h *Holder) invalid(msg string, fields ...string) domain.Result {
	h.notify(notify.KindError, msg)
	res := domain.Failed(domain.ErrInvalidInput, msg)
	res.Fields = fields
	return res
}

func (h *Holder) fail(res domain.Result) domain.Result {
	h.log.Warn("auth operation failed", zap.String("message", res.Message), zap.Error(res.Err))
	h.notify(notify.KindError, res.Message)
	return res
}

func (h *Holder) notify(kind notify.Kind, title string) {
	if h.notifier != nil {
		h.notifier.Notify(h.id, kind, title, notify.Standard)
	}
}
