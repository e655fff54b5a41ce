package wechatmini

import (
	"context"
	"encoding/base64"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/dropDatabas3/socialauth/internal/cache"
	"github.com/dropDatabas3/socialauth/internal/oauth"
	"github.com/dropDatabas3/socialauth/internal/security/signing"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	sessionKey = []byte("0123456789abcdef")
	iv         = []byte("fedcba9876543210")
)

func encrypt(t *testing.T, plain string) string {
	t.Helper()
	ct, err := signing.EncryptCBC(sessionKey, iv, []byte(plain))
	require.NoError(t, err)
	return base64.StdEncoding.EncodeToString(ct)
}

func newFlow(t *testing.T) *oauth.Flow {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		if q.Get("js_code") != "JS1" {
			_, _ = w.Write([]byte(`{"errcode":40029,"errmsg":"invalid code"}`))
			return
		}
		assert.Equal(t, "wxapp", q.Get("appid"))
		_, _ = w.Write([]byte(`{"openid":"OID","session_key":"` + base64.StdEncoding.EncodeToString(sessionKey) + `"}`))
	}))
	t.Cleanup(srv.Close)

	reg := oauth.NewRegistry()
	reg.Register(Source, Factory)
	f, err := oauth.NewBuilder(reg).Source("wechat-mini").
		Config(oauth.Config{ClientID: "wxapp", ClientSecret: "s", AccessTokenURL: srv.URL}).
		Cache(cache.NewMemory(0)).Build()
	require.NoError(t, err)
	return f
}

func callback(t *testing.T, code, plain string) map[string]string {
	return map[string]string{
		"code":           code,
		"encrypted_data": encrypt(t, plain),
		"iv":             base64.StdEncoding.EncodeToString(iv),
	}
}

func TestLogin_DecryptsProfile(t *testing.T) {
	f := newFlow(t)
	plain := `{"nickName":"小程序","gender":2,"country":"China","province":"","city":"Shenzhen","avatarUrl":"https://wx/a","watermark":{"appid":"wxapp","timestamp":1700000000}}`

	resp := f.Login(context.Background(), callback(t, "JS1", plain), nil)
	require.True(t, resp.OK(), resp.Message)
	assert.Equal(t, "wechat_mini_OID", resp.Data.UUID)
	assert.Equal(t, oauth.GenderFemale, resp.Data.Gender)
	assert.Equal(t, "China Shenzhen", resp.Data.Location)
	assert.Equal(t, oauth.KindSession, resp.Data.Token.Kind)
	assert.EqualValues(t, 7200, resp.Data.Token.ExpiresIn)
}

func TestLogin_WatermarkMismatch(t *testing.T) {
	f := newFlow(t)
	plain := `{"nickName":"x","watermark":{"appid":"other"}}`
	resp := f.Login(context.Background(), callback(t, "JS1", plain), nil)
	assert.Equal(t, oauth.StatusFailure, resp.Status)
	assert.Contains(t, resp.Message, "watermark")
}

func TestLogin_MissingPayload(t *testing.T) {
	f := newFlow(t)
	resp := f.Login(context.Background(), map[string]string{"code": "JS1"}, nil)
	assert.Equal(t, oauth.StatusFailure, resp.Status)
}

func TestLogin_BadCode(t *testing.T) {
	f := newFlow(t)
	resp := f.Login(context.Background(), callback(t, "nope", `{}`), nil)
	assert.Equal(t, oauth.StatusFailure, resp.Status)
	assert.Equal(t, "wechat_mini: invalid code", resp.Message)
}

func TestAuthorizeUnsupported(t *testing.T) {
	f := newFlow(t)
	_, err := f.Authorize(context.Background(), "")
	assert.ErrorIs(t, err, ErrNoAuthorize)
}

func TestUserInfo_UnionIDOnCopy(t *testing.T) {
	a, err := Factory(oauth.Config{ClientID: "wxapp", ClientSecret: "s"}, Source, oauth.Deps{})
	require.NoError(t, err)
	tok := &oauth.Token{AccessToken: base64.StdEncoding.EncodeToString(sessionKey), OpenID: "OID"}
	plain := `{"nickName":"n","unionId":"UID9","watermark":{"appid":"wxapp"}}`

	resp := a.UserInfo(context.Background(), tok, map[string]string{
		"encrypted_data": encrypt(t, plain),
		"iv":             base64.StdEncoding.EncodeToString(iv),
	})
	require.True(t, resp.OK(), resp.Message)
	assert.Equal(t, "UID9", resp.Data.Token.UnionID)
	assert.Empty(t, tok.UnionID)
}
