package auth

import (
	"context"
	"encoding/json"
	"sync"
	"sync/atomic"
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

var testNow = time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

func customerEnv(t *testing.T, body string) gateway.Envelope[gateway.CustomerMutationRes] {
	t.Helper()
	var res gateway.CustomerMutationRes
	require.NoError(t, json.Unmarshal([]byte(body), &res))
	return gateway.Envelope[gateway.CustomerMutationRes]{Res: &res}
}

const tokenBody = `{"data":{"payload":{"customerAccessToken":{"accessToken":"tok-1","expiresAt":"2024-06-01T00:00:00Z"},"customerUserErrors":[]}}}`

type stubGateway struct {
	createResult  gateway.Envelope[gateway.CustomerMutationRes]
	loginResult   gateway.Envelope[gateway.CustomerMutationRes]
	logoutResult  gateway.Envelope[gateway.CustomerMutationRes]
	recoverResult gateway.Envelope[gateway.CustomerMutationRes]
	resetResult   gateway.Envelope[gateway.CustomerMutationRes]

	createCalls     int
	loginCalls      int
	logoutCalls     int
	lastCreate      gateway.CreateCustomerParams
	lastEmail       string
	lastPassword    string
	lastLogoutToken string
	lastRecover     string
	lastResetID     string
}

func (s *stubGateway) CreateCustomer(_ context.Context, p gateway.CreateCustomerParams) gateway.Envelope[gateway.CustomerMutationRes] {
	s.createCalls++
	s.lastCreate = p
	return s.createResult
}

func (s *stubGateway) Login(_ context.Context, email, password string) gateway.Envelope[gateway.CustomerMutationRes] {
	s.loginCalls++
	s.lastEmail = email
	s.lastPassword = password
	return s.loginResult
}

func (s *stubGateway) Logout(_ context.Context, token string) gateway.Envelope[gateway.CustomerMutationRes] {
	s.logoutCalls++
	s.lastLogoutToken = token
	return s.logoutResult
}

func (s *stubGateway) RecoverAccount(_ context.Context, email string) gateway.Envelope[gateway.CustomerMutationRes] {
	s.lastRecover = email
	return s.recoverResult
}

func (s *stubGateway) ResetPassword(_ context.Context, id, _, _ string) gateway.Envelope[gateway.CustomerMutationRes] {
	s.lastResetID = id
	return s.resetResult
}

type stubProfile struct {
	synced  []string
	cleared int
}

func (p *stubProfile) Sync(_ context.Context, token string) { p.synced = append(p.synced, token) }
func (p *stubProfile) Clear()                               { p.cleared++ }

type stubNotifier struct {
	titles []string
	kinds  []notify.Kind
}

func (n *stubNotifier) Notify(_ string, kind notify.Kind, title string, _ notify.Interval) {
	n.kinds = append(n.kinds, kind)
	n.titles = append(n.titles, title)
}

func newTestHolder(gw *stubGateway) (*Holder, session.Store, *stubProfile, *stubNotifier) {
	store := session.NewMemory()
	p := &stubProfile{}
	n := &stubNotifier{}
	h := New("sid", gw, store, n, zap.NewNop(), WithProfile(p))
	h.tokens.now = func() time.Time { return testNow }
	return h, store, p, n
}

func seedToken(t *testing.T, store session.Store, token, expiresAt string) {
	t.Helper()
	require.NoError(t, store.Set(context.Background(), "sid", session.KeyToken, token))
	if expiresAt != "" {
		require.NoError(t, store.Set(context.Background(), "sid", session.KeyTokenExpiresAt, expiresAt))
	}
}

func assertPurged(t *testing.T, store session.Store) {
	t.Helper()
	_, err := store.Get(context.Background(), "sid", session.KeyToken)
	assert.ErrorIs(t, err, domain.ErrNotFound)
	_, err = store.Get(context.Background(), "sid", session.KeyTokenExpiresAt)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestRestoreValidToken(t *testing.T) {
	h, store, _, _ := newTestHolder(&stubGateway{})
	seedToken(t, store, "tok", "2024-05-02T00:00:00Z")

	at, ok := h.Restore(context.Background())
	require.True(t, ok)
	assert.Equal(t, "tok", at.Token)
	assert.Equal(t, time.Date(2024, 5, 2, 0, 0, 0, 0, time.UTC), at.ExpiresAt)
	assert.Equal(t, "tok", h.CurrentToken(context.Background()))
}

func TestRestorePurgesExpiredToken(t *testing.T) {
	cases := map[string]string{
		"past":        "2024-04-30T23:59:59Z",
		"exactly now": testNow.Format(time.RFC3339),
		"unparsable":  "tomorrow",
		"missing":     "",
	}
	for name, exp := range cases {
		t.Run(name, func(t *testing.T) {
			h, store, _, _ := newTestHolder(&stubGateway{})
			seedToken(t, store, "tok", exp)

			_, ok := h.Restore(context.Background())
			assert.False(t, ok)
			assertPurged(t, store)
			assert.False(t, h.Status(context.Background()).Authenticated)
		})
	}
}

func TestRestoreWithoutToken(t *testing.T) {
	h, store, _, _ := newTestHolder(&stubGateway{})
	require.NoError(t, store.Set(context.Background(), "sid", session.KeyTokenExpiresAt, "2030-01-01T00:00:00Z"))

	_, ok := h.Restore(context.Background())
	assert.False(t, ok)
	assertPurged(t, store)
}

func TestLoginStoresTokenAndSyncsProfile(t *testing.T) {
	gw := &stubGateway{loginResult: customerEnv(t, tokenBody)}
	h, store, p, n := newTestHolder(gw)

	res := h.Login(context.Background(), " ada@example.com ", "secret")
	require.True(t, res.OK, res.Message)
	assert.Equal(t, "ada@example.com", gw.lastEmail)

	tok, err := store.Get(context.Background(), "sid", session.KeyToken)
	require.NoError(t, err)
	assert.Equal(t, "tok-1", tok)
	exp, err := store.Get(context.Background(), "sid", session.KeyTokenExpiresAt)
	require.NoError(t, err)
	assert.Equal(t, "2024-06-01T00:00:00Z", exp)

	assert.Equal(t, []string{"tok-1"}, p.synced)
	assert.Equal(t, []string{MsgLoggedIn}, n.titles)

	st := h.Status(context.Background())
	assert.True(t, st.Authenticated)
	require.NotNil(t, st.ExpiresAt)
}

// midWriteStore runs during once, right after the first Set lands.
type midWriteStore struct {
	session.Store
	once   sync.Once
	during func()
}

func (s *midWriteStore) Set(ctx context.Context, sid, key, value string) error {
	err := s.Store.Set(ctx, sid, key, value)
	s.once.Do(s.during)
	return err
}

func TestLoginSurvivesConcurrentRestore(t *testing.T) {
	gw := &stubGateway{loginResult: customerEnv(t, tokenBody)}
	store := &midWriteStore{Store: session.NewMemory()}
	h := New("sid", gw, store, &stubNotifier{}, zap.NewNop())
	h.tokens.now = func() time.Time { return testNow }

	var wg sync.WaitGroup
	var restored domain.AccessToken
	store.during = func() {
		wg.Add(1)
		go func() {
			defer wg.Done()
			restored, _ = h.Restore(context.Background())
		}()
		time.Sleep(20 * time.Millisecond)
	}

	res := h.Login(context.Background(), "ada@example.com", "secret")
	require.True(t, res.OK, res.Message)
	wg.Wait()

	assert.Equal(t, "tok-1", restored.Token)
	assert.Equal(t, "tok-1", h.CurrentToken(context.Background()))
	tok, err := store.Get(context.Background(), "sid", session.KeyToken)
	require.NoError(t, err)
	assert.Equal(t, "tok-1", tok)
}

type countingStore struct {
	session.Store
	deletes atomic.Int32
}

func (s *countingStore) Delete(ctx context.Context, sid, key string) error {
	s.deletes.Add(1)
	return s.Store.Delete(ctx, sid, key)
}

func TestSignedOutReadsDoNotWrite(t *testing.T) {
	store := &countingStore{Store: session.NewMemory()}
	h := New("sid", &stubGateway{}, store, &stubNotifier{}, zap.NewNop())

	for i := 0; i < 3; i++ {
		assert.Empty(t, h.CurrentToken(context.Background()))
		assert.False(t, h.Status(context.Background()).Authenticated)
	}
	assert.Equal(t, int32(0), store.deletes.Load())
}

func TestLoginUserErrorKeepsSignedOut(t *testing.T) {
	gw := &stubGateway{loginResult: customerEnv(t,
		`{"data":{"payload":{"customerAccessToken":null,"customerUserErrors":[{"code":"UNIDENTIFIED_CUSTOMER","message":"Unidentified customer"}]}}}`)}
	h, store, p, n := newTestHolder(gw)

	res := h.Login(context.Background(), "ada@example.com", "wrong")
	assert.False(t, res.OK)
	assert.Equal(t, "Unidentified customer", res.Message)
	assert.ErrorIs(t, res.Err, domain.ErrRejected)
	assertPurged(t, store)
	assert.Empty(t, p.synced)
	assert.Equal(t, []notify.Kind{notify.KindError}, n.kinds)
}

func TestLoginWithoutTokenInPayload(t *testing.T) {
	gw := &stubGateway{loginResult: customerEnv(t, `{"data":{"payload":{"customerAccessToken":null,"customerUserErrors":[]}}}`)}
	h, _, _, _ := newTestHolder(gw)

	res := h.Login(context.Background(), "ada@example.com", "pw")
	assert.False(t, res.OK)
	assert.Equal(t, msgLoginUnknown, res.Message)
}

func TestLoginValidatesLocally(t *testing.T) {
	gw := &stubGateway{}
	h, _, _, n := newTestHolder(gw)

	res := h.Login(context.Background(), " ", "")
	assert.ErrorIs(t, res.Err, domain.ErrInvalidInput)
	assert.Equal(t, []string{"email", "password"}, res.Fields)
	assert.Equal(t, 0, gw.loginCalls)
	assert.Equal(t, []string{MsgInvalidFields}, n.titles)
}

func TestCreateAccountThenLogin(t *testing.T) {
	gw := &stubGateway{
		createResult: customerEnv(t, `{"data":{"payload":{"customer":{"id":"gid://customer/1"},"customerUserErrors":[]}}}`),
		loginResult:  customerEnv(t, tokenBody),
	}
	h, _, p, n := newTestHolder(gw)

	res := h.CreateAccount(context.Background(), SignupInput{FirstName: "Ada", LastName: "L", Email: "ada@example.com", Password: "pw", AcceptsMarketing: true})
	require.True(t, res.OK)
	assert.True(t, gw.lastCreate.AcceptsMarketing)
	assert.Equal(t, 1, gw.loginCalls)
	assert.Equal(t, "pw", gw.lastPassword)
	assert.Equal(t, []string{MsgAccountCreated, MsgLoggedIn}, n.titles)
	assert.Equal(t, []string{"tok-1"}, p.synced)
}

func TestCreateAccountRejectedStillAttemptsLogin(t *testing.T) {
	gw := &stubGateway{
		createResult: customerEnv(t, `{"data":{"payload":{"customer":null,"customerUserErrors":[{"code":"TAKEN","message":"Email has already been taken"}]}}}`),
		loginResult:  customerEnv(t, tokenBody),
	}
	h, _, _, n := newTestHolder(gw)

	res := h.CreateAccount(context.Background(), SignupInput{FirstName: "Ada", LastName: "L", Email: "ada@example.com", Password: "pw"})
	assert.True(t, res.OK)
	assert.Equal(t, 1, gw.loginCalls)
	assert.Equal(t, []string{MsgLoggedIn}, n.titles)
}

func TestCreateAccountTransportFailureSkipsLogin(t *testing.T) {
	gw := &stubGateway{createResult: gateway.Envelope[gateway.CustomerMutationRes]{Err: true, Message: "timeout", Cause: gateway.ErrTransport}}
	h, _, _, _ := newTestHolder(gw)

	res := h.CreateAccount(context.Background(), SignupInput{FirstName: "Ada", LastName: "L", Email: "ada@example.com", Password: "pw"})
	assert.False(t, res.OK)
	assert.Equal(t, "timeout", res.Message)
	assert.ErrorIs(t, res.Err, gateway.ErrTransport)
	assert.Equal(t, 0, gw.loginCalls)

	res = h.CreateAccount(context.Background(), SignupInput{Email: "ada@example.com"})
	assert.Equal(t, []string{"firstName", "lastName", "password"}, res.Fields)
	assert.Equal(t, 1, gw.createCalls)
}

func TestLogoutIsBestEffort(t *testing.T) {
	gw := &stubGateway{logoutResult: gateway.Envelope[gateway.CustomerMutationRes]{Err: true, Message: "offline"}}
	h, store, p, _ := newTestHolder(gw)
	seedToken(t, store, "tok", "2024-05-02T00:00:00Z")

	res := h.Logout(context.Background())
	assert.True(t, res.OK)
	assert.Equal(t, "tok", gw.lastLogoutToken)
	assertPurged(t, store)
	assert.Equal(t, 1, p.cleared)
}

func TestLogoutWithoutTokenSkipsRemoteCall(t *testing.T) {
	gw := &stubGateway{}
	h, _, p, _ := newTestHolder(gw)

	assert.True(t, h.Logout(context.Background()).OK)
	assert.Equal(t, 0, gw.logoutCalls)
	assert.Equal(t, 1, p.cleared)
}

func TestRecover(t *testing.T) {
	gw := &stubGateway{recoverResult: customerEnv(t, `{"data":{"payload":{"customerUserErrors":[]}}}`)}
	h, _, _, n := newTestHolder(gw)

	res := h.Recover(context.Background(), "")
	assert.ErrorIs(t, res.Err, domain.ErrInvalidInput)
	assert.Equal(t, MsgInvalidEmail, res.Message)

	res = h.Recover(context.Background(), "ada@example.com")
	assert.True(t, res.OK)
	assert.Equal(t, "ada@example.com", gw.lastRecover)
	assert.Equal(t, MsgRecoverSent, n.titles[len(n.titles)-1])
}

func TestResetAdoptsReturnedToken(t *testing.T) {
	gw := &stubGateway{resetResult: customerEnv(t, tokenBody)}
	h, store, p, n := newTestHolder(gw)

	res := h.Reset(context.Background(), ResetInput{ID: "gid://customer/1", ResetToken: "rt", Password: "new"})
	require.True(t, res.OK)
	assert.Equal(t, "gid://customer/1", gw.lastResetID)
	tok, _ := store.Get(context.Background(), "sid", session.KeyToken)
	assert.Equal(t, "tok-1", tok)
	assert.Equal(t, []string{"tok-1"}, p.synced)
	assert.Equal(t, []string{MsgPasswordReset}, n.titles)
}
