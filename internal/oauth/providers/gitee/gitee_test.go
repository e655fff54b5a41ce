package gitee

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
		AccessTokenURL: srv.URL, UserInfoURL: srv.URL, RefreshTokenURL: srv.URL,
	}, Source, oauth.Deps{})
	require.NoError(t, err)
	return a
}

func TestExchangeCode_DefaultExpiry(t *testing.T) {
	a := newAdapter(t, func(w http.ResponseWriter, r *http.Request) {
		_ = r.ParseForm()
		assert.Equal(t, "authorization_code", r.PostForm.Get("grant_type"))
		assert.Equal(t, "c1", r.PostForm.Get("code"))
		_, _ = w.Write([]byte(`{"access_token":"AT","refresh_token":"RT","scope":"user_info"}`))
	})
	resp := a.ExchangeCode(context.Background(), &oauth.Callback{Code: "c1"})
	require.True(t, resp.OK(), resp.Message)
	assert.Equal(t, "AT", resp.Data.AccessToken)
	assert.EqualValues(t, defaultExpiresIn, resp.Data.ExpiresIn)
}

func TestExchangeCode_Error(t *testing.T) {
	a := newAdapter(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"error":"invalid_grant","error_description":"授权码无效"}`))
	})
	resp := a.ExchangeCode(context.Background(), &oauth.Callback{Code: "bad"})
	assert.Equal(t, oauth.StatusFailure, resp.Status)
	assert.Equal(t, "gitee: 授权码无效", resp.Message)
	assert.Nil(t, resp.Data)
}

func TestRefresh(t *testing.T) {
	a := newAdapter(t, func(w http.ResponseWriter, r *http.Request) {
		_ = r.ParseForm()
		assert.Equal(t, "refresh_token", r.PostForm.Get("grant_type"))
		assert.Equal(t, "RT", r.PostForm.Get("refresh_token"))
		_, _ = w.Write([]byte(`{"access_token":"AT2","expires_in":86400}`))
	})
	resp := a.Refresh(context.Background(), &oauth.Token{RefreshToken: "RT"})
	require.True(t, resp.OK(), resp.Message)
	assert.EqualValues(t, 86400, resp.Data.ExpiresIn)

	resp = a.Refresh(context.Background(), &oauth.Token{})
	assert.Equal(t, oauth.StatusFailure, resp.Status)
}

func TestUserInfo(t *testing.T) {
	a := newAdapter(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer AT" {
			w.WriteHeader(http.StatusUnauthorized)
			_, _ = w.Write([]byte(`{"message":"401 Unauthorized: Access token does not exist"}`))
			return
		}
		_, _ = w.Write([]byte(`{"id":1234,"login":"zhang","name":"张三","bio":"hi","email":"z@example.com"}`))
	})
	resp := a.UserInfo(context.Background(), &oauth.Token{AccessToken: "AT"}, nil)
	require.True(t, resp.OK(), resp.Message)
	assert.Equal(t, "gitee_1234", resp.Data.UUID)
	assert.Equal(t, "zhang", resp.Data.Username)
	assert.Equal(t, "hi", resp.Data.Remark)

	resp = a.UserInfo(context.Background(), &oauth.Token{AccessToken: "nope"}, nil)
	assert.Equal(t, oauth.StatusFailure, resp.Status)
	assert.Contains(t, resp.Message, "Access token does not exist")
}
