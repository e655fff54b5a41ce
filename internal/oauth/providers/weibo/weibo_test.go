package weibo

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

func TestExchangeCode_KeepsUID(t *testing.T) {
	a := newAdapter(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"access_token":"AT","expires_in":157679999,"remind_in":"157679999","uid":"1404376560"}`))
	})
	resp := a.ExchangeCode(context.Background(), &oauth.Callback{Code: "c"})
	require.True(t, resp.OK(), resp.Message)
	assert.Equal(t, "1404376560", resp.Data.UID)
	assert.Equal(t, "157679999", resp.Data.Extra["remind_in"])
}

func TestUserInfo(t *testing.T) {
	a := newAdapter(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "1404376560", r.URL.Query().Get("uid"))
		_, _ = w.Write([]byte(`{"id":1404376560,"idstr":"1404376560","screen_name":"zaku","name":"zaku","gender":"m","avatar_large":"https://tva/large.jpg","location":"北京 朝阳区"}`))
	})
	resp := a.UserInfo(context.Background(), &oauth.Token{AccessToken: "AT", UID: "1404376560"}, nil)
	require.True(t, resp.OK(), resp.Message)
	assert.Equal(t, "weibo_1404376560", resp.Data.UUID)
	assert.Equal(t, oauth.GenderMale, resp.Data.Gender)
	assert.Equal(t, "https://tva/large.jpg", resp.Data.Avatar)
}

func TestUserInfo_Error(t *testing.T) {
	a := newAdapter(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"error":"expired_token","error_code":21327}`))
	})
	resp := a.UserInfo(context.Background(), &oauth.Token{AccessToken: "AT"}, nil)
	assert.Equal(t, oauth.StatusFailure, resp.Status)
	assert.Equal(t, "weibo: expired_token", resp.Message)
}

func TestRevoke(t *testing.T) {
	a := newAdapter(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "AT", r.URL.Query().Get("access_token"))
		_, _ = w.Write([]byte(`{"result":"true"}`))
	})
	resp := a.Revoke(context.Background(), &oauth.Token{AccessToken: "AT"})
	require.True(t, resp.OK(), resp.Message)
	assert.True(t, resp.Data)
}

func TestRefreshNotImplemented(t *testing.T) {
	a := newAdapter(t, func(http.ResponseWriter, *http.Request) {})
	resp := a.Refresh(context.Background(), &oauth.Token{RefreshToken: "RT"})
	assert.Equal(t, oauth.StatusNotImplemented, resp.Status)
}
