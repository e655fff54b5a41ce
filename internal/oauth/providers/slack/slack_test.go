package slack

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/dropDatabas3/socialauth/internal/oauth"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newAdapter(t *testing.T, h http.Handler) oauth.Adapter {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	a, err := Factory(oauth.Config{
		ClientID: "cid", ClientSecret: "s", RedirectURI: "https://app/cb",
		AccessTokenURL: srv.URL + "/token", UserInfoURL: srv.URL + "/user", RevokeTokenURL: srv.URL + "/revoke",
	}, Source, oauth.Deps{})
	require.NoError(t, err)
	return a
}

func TestExchangeAndUserInfo(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/token", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"ok":true,"team":{"id":"T1"},"authed_user":{"id":"U1","access_token":"xoxp-1"}}`))
	})
	mux.HandleFunc("/user", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "U1", r.URL.Query().Get("user"))
		assert.Equal(t, "Bearer xoxp-1", r.Header.Get("Authorization"))
		_, _ = w.Write([]byte(`{"ok":true,"user":{"id":"U1","name":"bob","profile":{"real_name":"Bob","image_72":"https://i/72","email":"bob@example.com"}}}`))
	})
	a := newAdapter(t, mux)

	tr := a.ExchangeCode(context.Background(), &oauth.Callback{Code: "c"})
	require.True(t, tr.OK(), tr.Message)
	assert.Equal(t, "xoxp-1", tr.Data.AccessToken)
	assert.Equal(t, "T1", tr.Data.Get("team_id"))

	ur := a.UserInfo(context.Background(), tr.Data, nil)
	require.True(t, ur.OK(), ur.Message)
	assert.Equal(t, "slack_U1", ur.Data.UUID)
	assert.Equal(t, "Bob", ur.Data.Nickname)
	assert.Equal(t, "https://i/72", ur.Data.Avatar)
}

func TestOkFalse(t *testing.T) {
	a := newAdapter(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"ok":false,"error":"invalid_code"}`))
	}))
	tr := a.ExchangeCode(context.Background(), &oauth.Callback{Code: "c"})
	assert.Equal(t, oauth.StatusFailure, tr.Status)
	assert.Equal(t, "slack: invalid_code", tr.Message)

	rr := a.Revoke(context.Background(), &oauth.Token{AccessToken: "x"})
	assert.Equal(t, oauth.StatusFailure, rr.Status)
}

func TestRevoke(t *testing.T) {
	a := newAdapter(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"ok":true,"revoked":true}`))
	}))
	rr := a.Revoke(context.Background(), &oauth.Token{AccessToken: "x"})
	require.True(t, rr.OK())
	assert.True(t, rr.Data)
}
