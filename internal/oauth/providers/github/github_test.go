package github

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sync/atomic"
	"testing"
	"time"

	"github.com/dropDatabas3/socialauth/internal/cache"
	"github.com/dropDatabas3/socialauth/internal/oauth"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubServer struct {
	*httptest.Server
	tokenCalls atomic.Int32
	userCalls  atomic.Int32
	emails     []map[string]any
	userBody   string
}

func newStubServer(t *testing.T) *stubServer {
	t.Helper()
	s := &stubServer{userBody: `{"id":42,"login":"alice","name":"Alice","avatar_url":"https://a/1.png"}`}
	mux := http.NewServeMux()
	mux.HandleFunc("/login/oauth/access_token", func(w http.ResponseWriter, r *http.Request) {
		s.tokenCalls.Add(1)
		_ = r.ParseForm()
		w.Header().Set("Content-Type", "application/json")
		if r.PostForm.Get("code") != "c1" {
			_, _ = w.Write([]byte(`{"error":"bad_verification_code","error_description":"The code passed is incorrect or expired."}`))
			return
		}
		assert.Equal(t, "cid", r.PostForm.Get("client_id"))
		assert.Equal(t, "application/json", r.Header.Get("Accept"))
		_, _ = w.Write([]byte(`{"access_token":"AT1","expires_in":7200}`))
	})
	mux.HandleFunc("/user", func(w http.ResponseWriter, r *http.Request) {
		s.userCalls.Add(1)
		if r.Header.Get("Authorization") != "token AT1" {
			w.WriteHeader(http.StatusUnauthorized)
			_, _ = w.Write([]byte(`{"message":"Bad credentials"}`))
			return
		}
		_, _ = w.Write([]byte(s.userBody))
	})
	mux.HandleFunc("/user/emails", func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(s.emails)
	})
	s.Server = httptest.NewServer(mux)
	t.Cleanup(s.Close)
	return s
}

func newFlow(t *testing.T, srv *stubServer) *oauth.Flow {
	t.Helper()
	reg := oauth.NewRegistry()
	reg.Register(Source, Factory)
	f, err := oauth.NewBuilder(reg).
		Source(ProviderName).
		Config(oauth.Config{
			ClientID:       "cid",
			ClientSecret:   "secret",
			RedirectURI:    "https://app.example.com/cb",
			AccessTokenURL: srv.URL + "/login/oauth/access_token",
			UserInfoURL:    srv.URL + "/user",
		}).
		Cache(cache.NewMemory(time.Minute)).
		Build()
	require.NoError(t, err)
	return f
}

func TestLogin_EndToEnd(t *testing.T) {
	ctx := context.Background()
	srv := newStubServer(t)
	f := newFlow(t, srv)

	raw, err := f.Authorize(ctx, "")
	require.NoError(t, err)
	u, err := url.Parse(raw)
	require.NoError(t, err)
	assert.Equal(t, "github.com", u.Host)
	assert.Equal(t, "user", u.Query().Get("scope"))

	resp := f.Login(ctx, map[string]string{"code": "c1", "state": u.Query().Get("state")}, nil)
	require.True(t, resp.OK(), resp.Message)
	assert.Equal(t, "github_42", resp.Data.UUID)
	assert.Equal(t, "alice", resp.Data.Username)
	assert.Equal(t, "AT1", resp.Data.Token.AccessToken)
	assert.EqualValues(t, 1, srv.tokenCalls.Load())
	assert.EqualValues(t, 1, srv.userCalls.Load())
}

func TestLogin_CSRFRejection(t *testing.T) {
	srv := newStubServer(t)
	f := newFlow(t, srv)

	resp := f.Login(context.Background(), map[string]string{"code": "c1", "state": "unknown"}, nil)
	assert.Equal(t, oauth.StatusFailure, resp.Status)
	assert.Nil(t, resp.Data)
	assert.Zero(t, srv.tokenCalls.Load())
}

func TestLogin_BadCode(t *testing.T) {
	srv := newStubServer(t)
	f := newFlow(t, srv)

	resp := f.Login(context.Background(), map[string]string{"code": "expired"}, nil)
	assert.Equal(t, oauth.StatusFailure, resp.Status)
	assert.Contains(t, resp.Message, "bad_verification_code")
	assert.Zero(t, srv.userCalls.Load())
}

func TestUserInfo_PrimaryEmailFallback(t *testing.T) {
	srv := newStubServer(t)
	srv.emails = []map[string]any{
		{"email": "old@example.com", "primary": false, "verified": true},
		{"email": "alice@example.com", "primary": true, "verified": true},
	}
	f := newFlow(t, srv)

	resp := f.Adapter().UserInfo(context.Background(), &oauth.Token{AccessToken: "AT1"}, nil)
	require.True(t, resp.OK())
	assert.Equal(t, "alice@example.com", resp.Data.Email)
}

func TestUserInfo_Unauthorized(t *testing.T) {
	srv := newStubServer(t)
	f := newFlow(t, srv)

	resp := f.Adapter().UserInfo(context.Background(), &oauth.Token{AccessToken: "nope"}, nil)
	assert.Equal(t, oauth.StatusUnauthorized, resp.Status)
}

func TestRefresh_NotImplemented(t *testing.T) {
	f := newFlow(t, newStubServer(t))
	assert.Equal(t, oauth.StatusNotImplemented, f.Refresh(context.Background(), &oauth.Token{RefreshToken: "r"}).Status)
}
