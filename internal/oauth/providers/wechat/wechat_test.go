package wechat

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/dropDatabas3/socialauth/internal/cache"
	"github.com/dropDatabas3/socialauth/internal/oauth"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newBuilder(srv *httptest.Server) *oauth.Builder {
	reg := oauth.NewRegistry()
	reg.Register(Source, Factory)
	reg.Register(OpenSource, Factory)
	cfg := oauth.Config{ClientID: "wxid", ClientSecret: "sec", RedirectURI: "https://app/cb"}
	if srv != nil {
		cfg.AccessTokenURL = srv.URL + "/token"
		cfg.UserInfoURL = srv.URL + "/userinfo"
		cfg.RefreshTokenURL = srv.URL + "/refresh"
	}
	return oauth.NewBuilder(reg).Config(cfg).Cache(cache.NewMemory(0))
}

func TestAuthorizeURL(t *testing.T) {
	f, err := newBuilder(nil).Source(ProviderName).Build()
	require.NoError(t, err)
	u, err := f.Authorize(context.Background(), "st")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(u, "https://open.weixin.qq.com/connect/oauth2/authorize?"))
	assert.True(t, strings.HasSuffix(u, "#wechat_redirect"))
	assert.Contains(t, u, "appid=wxid")
	assert.Contains(t, u, "scope=snsapi_userinfo")

	f, err = newBuilder(nil).Source("WeChat-Open").Build()
	require.NoError(t, err)
	u, err = f.Authorize(context.Background(), "st")
	require.NoError(t, err)
	assert.Contains(t, u, "/connect/qrconnect?")
	assert.Contains(t, u, "scope=snsapi_login")
}

func TestLogin_UnionID(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/token", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("code") != "C" {
			_, _ = w.Write([]byte(`{"errcode":40029,"errmsg":"invalid code"}`))
			return
		}
		_, _ = w.Write([]byte(`{"access_token":"AT","expires_in":7200,"refresh_token":"RT","openid":"OID","scope":"snsapi_userinfo"}`))
	})
	mux.HandleFunc("/userinfo", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "OID", r.URL.Query().Get("openid"))
		_, _ = w.Write([]byte(`{"openid":"OID","unionid":"UID","nickname":"微信用户","sex":1,"country":"中国","province":"广东","city":"广州","headimgurl":"https://wx/h"}`))
	})
	mux.HandleFunc("/refresh", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "RT", r.URL.Query().Get("refresh_token"))
		_, _ = w.Write([]byte(`{"access_token":"AT2","expires_in":7200,"refresh_token":"RT","openid":"OID"}`))
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	f, err := newBuilder(srv).Source(ProviderName).Build()
	require.NoError(t, err)

	resp := f.Login(context.Background(), map[string]string{"code": "C"}, nil)
	require.True(t, resp.OK(), resp.Message)
	assert.Equal(t, "wechat_UID", resp.Data.UUID)
	assert.Equal(t, oauth.GenderMale, resp.Data.Gender)
	assert.Equal(t, "中国 广东 广州", resp.Data.Location)

	rr := f.Refresh(context.Background(), resp.Data.Token)
	require.True(t, rr.OK(), rr.Message)
	assert.Equal(t, "AT2", rr.Data.AccessToken)

	bad := f.Login(context.Background(), map[string]string{"code": "X"}, nil)
	assert.Equal(t, oauth.StatusFailure, bad.Status)
	assert.Equal(t, "wechat: 40029 invalid code", bad.Message)
}
