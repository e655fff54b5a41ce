package meituan

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/dropDatabas3/socialauth/internal/oauth"
	"github.com/dropDatabas3/socialauth/internal/security/signing"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUserInfo_Signed(t *testing.T) {
	now := time.Unix(1700000000, 0)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		assert.Equal(t, "1700000000", q.Get("timestamp"))
		assert.Equal(t, signing.MD5Hex("app", "1700000000", "sec"), q.Get("sign"))
		_, _ = w.Write([]byte(`{"status":"success","data":{"openid":"o1","nickname":"美团用户","avatar":"https://a"}}`))
	}))
	defer srv.Close()

	a, err := Factory(oauth.Config{ClientID: "app", ClientSecret: "sec", UserInfoURL: srv.URL},
		Source, oauth.Deps{Now: func() time.Time { return now }})
	require.NoError(t, err)

	resp := a.UserInfo(context.Background(), &oauth.Token{AccessToken: "at"}, nil)
	require.True(t, resp.OK(), resp.Message)
	assert.Equal(t, "meituan_o1", resp.Data.UUID)
	assert.Equal(t, "美团用户", resp.Data.Nickname)
}

func TestUserInfo_StatusNotSuccess(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"status":"fail","error":{"message":"token expired"}}`))
	}))
	defer srv.Close()

	a, err := Factory(oauth.Config{ClientID: "app", ClientSecret: "sec", UserInfoURL: srv.URL}, Source, oauth.Deps{})
	require.NoError(t, err)
	resp := a.UserInfo(context.Background(), &oauth.Token{AccessToken: "at"}, nil)
	assert.Equal(t, oauth.StatusFailure, resp.Status)
	assert.Equal(t, "meituan: token expired", resp.Message)
}

func TestExchange_EmptyCode(t *testing.T) {
	a, err := Factory(oauth.Config{ClientID: "app", ClientSecret: "sec"}, Source, oauth.Deps{})
	require.NoError(t, err)
	resp := a.ExchangeCode(context.Background(), &oauth.Callback{})
	assert.Equal(t, oauth.StatusFailure, resp.Status)
}
