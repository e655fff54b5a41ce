package facebook

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/dropDatabas3/socialauth/internal/oauth"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newAdapter(t *testing.T, h http.HandlerFunc) oauth.Adapter {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	a, err := Factory(oauth.Config{
		ClientID: "cid", ClientSecret: "s", RedirectURI: "https://app/cb",
		AccessTokenURL: srv.URL, UserInfoURL: srv.URL, RevokeTokenURL: srv.URL,
	}, Source, oauth.Deps{})
	require.NoError(t, err)
	return a
}

func TestExchangeCode_GraphError(t *testing.T) {
	a := newAdapter(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"error":{"message":"This authorization code has expired.","type":"OAuthException","code":100}}`))
	})
	resp := a.ExchangeCode(context.Background(), &oauth.Callback{Code: "old"})
	assert.Equal(t, oauth.StatusFailure, resp.Status)
	assert.Equal(t, "facebook: This authorization code has expired.", resp.Message)
}

func TestUserInfo(t *testing.T) {
	a := newAdapter(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, userFields, r.URL.Query().Get("fields"))
		_, _ = w.Write([]byte(`{"id":"10158","name":"Ann","email":"ann@example.com","picture":{"data":{"url":"https://fb/p.jpg"}}}`))
	})
	resp := a.UserInfo(context.Background(), &oauth.Token{AccessToken: "AT"}, nil)
	require.True(t, resp.OK(), resp.Message)
	assert.Equal(t, "facebook_10158", resp.Data.UUID)
	assert.Equal(t, "https://fb/p.jpg", resp.Data.Avatar)
	assert.Equal(t, oauth.GenderUnknown, resp.Data.Gender)
}

func TestRevoke(t *testing.T) {
	a := newAdapter(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodDelete, r.Method)
		_, _ = w.Write([]byte(`{"success":true}`))
	})
	resp := a.Revoke(context.Background(), &oauth.Token{AccessToken: "AT"})
	require.True(t, resp.OK(), resp.Message)
	assert.True(t, resp.Data)
}
