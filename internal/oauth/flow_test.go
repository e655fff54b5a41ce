package oauth

import (
	"context"
	"net/url"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/dropDatabas3/socialauth/internal/cache"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubAdapter struct {
	Base
	exchangeCalls atomic.Int32
	userCalls     atomic.Int32

	tokenResp TokenResponse
	userResp  func(tok *Token, extra map[string]string) UserResponse
	panicOn   string

	mu       sync.Mutex
	gotExtra map[string]string
}

func (s *stubAdapter) ExchangeCode(_ context.Context, cb *Callback) TokenResponse {
	s.exchangeCalls.Add(1)
	if s.panicOn == "exchange" {
		panic("boom")
	}
	return s.tokenResp
}

func (s *stubAdapter) UserInfo(_ context.Context, tok *Token, extra map[string]string) UserResponse {
	s.userCalls.Add(1)
	s.mu.Lock()
	s.gotExtra = extra
	s.mu.Unlock()
	if s.userResp != nil {
		return s.userResp(tok, extra)
	}
	return Success(&User{UUID: s.QualifiedID("42"), Username: "alice"})
}

var stubSource = Source{
	Name:           "stub",
	AuthorizeURL:   "https://idp.example.com/authorize",
	Scopes:         []string{"read", "write"},
	ScopeDelimiter: ",",
}

func newStub(t *testing.T, cfg Config) (*stubAdapter, *Flow, cache.Client) {
	t.Helper()
	c := cache.NewMemory(time.Minute)
	a := &stubAdapter{
		Base:      NewBase(cfg, stubSource, Deps{Cache: c}),
		tokenResp: Success(&Token{AccessToken: "AT1", ExpiresIn: 7200}),
	}
	return a, NewFlow(a, cfg, c), c
}

var stubCfg = Config{ClientID: "cid", ClientSecret: "secret", RedirectURI: "https://app.example.com/cb"}

func TestAuthorize_URLAndStateCached(t *testing.T) {
	ctx := context.Background()
	_, f, c := newStub(t, stubCfg)

	raw, err := f.Authorize(ctx, "")
	require.NoError(t, err)

	u, err := url.Parse(raw)
	require.NoError(t, err)
	q := u.Query()
	assert.Equal(t, "idp.example.com", u.Host)
	assert.Equal(t, "cid", q.Get("client_id"))
	assert.Equal(t, "https://app.example.com/cb", q.Get("redirect_uri"))
	assert.Equal(t, "code", q.Get("response_type"))
	assert.Equal(t, "read,write", q.Get("scope"))

	state := q.Get("state")
	require.NotEmpty(t, state)
	v, err := c.Get(ctx, StateKey(state))
	require.NoError(t, err)
	assert.Equal(t, state, v)
}

func TestAuthorize_StatePrecedence(t *testing.T) {
	ctx := context.Background()

	cfg := stubCfg
	cfg.State = "from-config"
	_, f, _ := newStub(t, cfg)

	raw, err := f.Authorize(ctx, "explicit")
	require.NoError(t, err)
	assert.Contains(t, raw, "state=explicit")

	raw, err = f.Authorize(ctx, "")
	require.NoError(t, err)
	assert.Contains(t, raw, "state=from-config")
}

func TestLogin_UnknownStateNeverExchanges(t *testing.T) {
	a, f, _ := newStub(t, stubCfg)

	resp := f.Login(context.Background(), map[string]string{"code": "c1", "state": "unknown"}, nil)

	assert.Equal(t, StatusFailure, resp.Status)
	assert.Equal(t, 400, resp.Code)
	assert.Equal(t, "state mismatch or expired", resp.Message)
	assert.Nil(t, resp.Data)
	assert.Zero(t, a.exchangeCalls.Load())
	assert.Zero(t, a.userCalls.Load())
}

func TestLogin_ExpiredStateRejected(t *testing.T) {
	ctx := context.Background()
	c := cache.NewMemory(time.Minute)
	a := &stubAdapter{Base: NewBase(stubCfg, stubSource, Deps{Cache: c}), tokenResp: Success(&Token{AccessToken: "x"})}
	f := NewFlow(a, stubCfg, c, WithStateTTL(10*time.Millisecond))

	raw, err := f.Authorize(ctx, "")
	require.NoError(t, err)
	u, _ := url.Parse(raw)
	time.Sleep(30 * time.Millisecond)

	resp := f.Login(ctx, map[string]string{"code": "c1", "state": u.Query().Get("state")}, nil)
	assert.Equal(t, StatusFailure, resp.Status)
	assert.Zero(t, a.exchangeCalls.Load())
}

func TestLogin_HappyPathCallsEachStepOnce(t *testing.T) {
	ctx := context.Background()
	a, f, _ := newStub(t, stubCfg)

	raw, err := f.Authorize(ctx, "")
	require.NoError(t, err)
	u, _ := url.Parse(raw)
	state := u.Query().Get("state")

	resp := f.Login(ctx, map[string]string{"code": "c1", "state": state, "foo": "bar"}, map[string]string{"iv": "x"})

	require.True(t, resp.OK(), resp.Message)
	assert.Equal(t, "stub_42", resp.Data.UUID)
	assert.Equal(t, "alice", resp.Data.Username)
	assert.Equal(t, "stub", resp.Data.Source)
	require.NotNil(t, resp.Data.Token)
	assert.Equal(t, "AT1", resp.Data.Token.AccessToken)
	assert.EqualValues(t, 1, a.exchangeCalls.Load())
	assert.EqualValues(t, 1, a.userCalls.Load())
	assert.Equal(t, map[string]string{"foo": "bar", "iv": "x"}, a.gotExtra)
}

func TestLogin_StateIsSingleUse(t *testing.T) {
	ctx := context.Background()
	a, f, _ := newStub(t, stubCfg)

	raw, _ := f.Authorize(ctx, "s-1")
	require.Contains(t, raw, "state=s-1")

	first := f.Login(ctx, map[string]string{"code": "c1", "state": "s-1"}, nil)
	require.True(t, first.OK())

	replay := f.Login(ctx, map[string]string{"code": "c1", "state": "s-1"}, nil)
	assert.Equal(t, StatusFailure, replay.Status)
	assert.EqualValues(t, 1, a.exchangeCalls.Load())
}

func TestLogin_ReplayableWhenSingleUseDisabled(t *testing.T) {
	ctx := context.Background()
	c := cache.NewMemory(time.Minute)
	a := &stubAdapter{Base: NewBase(stubCfg, stubSource, Deps{Cache: c}), tokenResp: Success(&Token{AccessToken: "x"})}
	f := NewFlow(a, stubCfg, c, WithSingleUseState(false))

	_, err := f.Authorize(ctx, "s-2")
	require.NoError(t, err)
	assert.True(t, f.Login(ctx, map[string]string{"code": "c", "state": "s-2"}, nil).OK())
	assert.True(t, f.Login(ctx, map[string]string{"code": "c", "state": "s-2"}, nil).OK())
}

func TestLogin_IgnoreCheckState(t *testing.T) {
	cfg := stubCfg
	cfg.IgnoreCheckState = true
	a, f, _ := newStub(t, cfg)

	resp := f.Login(context.Background(), map[string]string{"code": "c1", "state": "whatever"}, nil)
	assert.True(t, resp.OK())
	assert.EqualValues(t, 1, a.exchangeCalls.Load())
}

func TestLogin_TokenFailurePropagates(t *testing.T) {
	a, f, _ := newStub(t, stubCfg)
	a.tokenResp = Failure[*Token]("bad_verification_code")

	resp := f.Login(context.Background(), map[string]string{"code": "c1"}, nil)

	assert.Equal(t, StatusFailure, resp.Status)
	assert.Equal(t, "bad_verification_code", resp.Message)
	assert.Nil(t, resp.Data)
	assert.EqualValues(t, 1, a.exchangeCalls.Load())
	assert.Zero(t, a.userCalls.Load())
}

func TestLogin_TimeoutPropagates(t *testing.T) {
	a, f, _ := newStub(t, stubCfg)
	a.tokenResp = Timeout[*Token]("deadline exceeded")

	resp := f.Login(context.Background(), map[string]string{"code": "c1"}, nil)
	assert.Equal(t, StatusTimeout, resp.Status)
	assert.Equal(t, 408, resp.Code)
}

func TestLogin_ProviderErrorParam(t *testing.T) {
	a, f, _ := newStub(t, stubCfg)

	resp := f.Login(context.Background(), map[string]string{"error": "access_denied", "error_description": "user said no"}, nil)
	assert.Equal(t, StatusFailure, resp.Status)
	assert.Equal(t, "access_denied: user said no", resp.Message)
	assert.Zero(t, a.exchangeCalls.Load())
}

func TestLogin_EmptyUUIDIsError(t *testing.T) {
	a, f, _ := newStub(t, stubCfg)
	a.userResp = func(*Token, map[string]string) UserResponse { return Success(&User{Username: "x"}) }

	resp := f.Login(context.Background(), map[string]string{"code": "c1"}, nil)
	assert.Equal(t, StatusError, resp.Status)
	assert.Nil(t, resp.Data)
}

func TestLogin_AdapterPanicBecomesError(t *testing.T) {
	a, f, _ := newStub(t, stubCfg)
	a.panicOn = "exchange"

	resp := f.Login(context.Background(), map[string]string{"code": "c1"}, nil)
	assert.Equal(t, StatusError, resp.Status)
	assert.Contains(t, resp.Message, "boom")
}

func TestRefreshRevoke_DefaultNotImplemented(t *testing.T) {
	_, f, _ := newStub(t, stubCfg)
	ctx := context.Background()

	r := f.Refresh(ctx, &Token{RefreshToken: "r"})
	assert.Equal(t, StatusNotImplemented, r.Status)
	assert.Equal(t, 501, r.Code)

	v := f.Revoke(ctx, &Token{AccessToken: "a"})
	assert.Equal(t, StatusNotImplemented, v.Status)
	assert.False(t, v.Data)
}

func TestLogin_ConcurrentFlows(t *testing.T) {
	ctx := context.Background()
	a, f, _ := newStub(t, stubCfg)

	var wg sync.WaitGroup
	var ok atomic.Int32
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			raw, err := f.Authorize(ctx, "")
			if err != nil {
				return
			}
			u, _ := url.Parse(raw)
			if f.Login(ctx, map[string]string{"code": "c", "state": u.Query().Get("state")}, nil).OK() {
				ok.Add(1)
			}
		}()
	}
	wg.Wait()
	assert.EqualValues(t, 20, ok.Load())
	assert.EqualValues(t, 20, a.exchangeCalls.Load())
}
