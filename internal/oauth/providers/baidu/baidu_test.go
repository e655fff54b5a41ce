package baidu

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
		AccessTokenURL: srv.URL, UserInfoURL: srv.URL, RefreshTokenURL: srv.URL, RevokeTokenURL: srv.URL,
	}, Source, oauth.Deps{})
	require.NoError(t, err)
	return a
}

func TestAuthorizeParams(t *testing.T) {
	a, err := Factory(oauth.Config{ClientID: "cid", ClientSecret: "s"}, Source, oauth.Deps{})
	require.NoError(t, err)
	p, err := a.AuthorizeParams(context.Background(), "st", nil)
	require.NoError(t, err)
	assert.Equal(t, "popup", p.Get("display"))
	assert.Equal(t, "basic netdisk", p.Get("scope"))
}

func TestUserInfo(t *testing.T) {
	a := newAdapter(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "json", r.URL.Query().Get("format"))
		_, _ = w.Write([]byte(`{"userid":"2097322476","username":"wl19871011","portrait":"e2c1776c31393837313031319605","sex":"0"}`))
	})
	resp := a.UserInfo(context.Background(), &oauth.Token{AccessToken: "AT"}, nil)
	require.True(t, resp.OK(), resp.Message)
	assert.Equal(t, "baidu_2097322476", resp.Data.UUID)
	assert.Equal(t, avatarURL+"e2c1776c31393837313031319605", resp.Data.Avatar)
	assert.Equal(t, oauth.GenderFemale, resp.Data.Gender)
}

func TestUserInfo_Error(t *testing.T) {
	a := newAdapter(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"error_code":"110","error_msg":"Access token invalid or no longer valid"}`))
	})
	resp := a.UserInfo(context.Background(), &oauth.Token{AccessToken: "AT"}, nil)
	assert.Equal(t, oauth.StatusFailure, resp.Status)
	assert.Equal(t, "baidu: Access token invalid or no longer valid", resp.Message)
}

func TestRefreshAndRevoke(t *testing.T) {
	a := newAdapter(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodPost {
			_ = r.ParseForm()
			assert.Equal(t, "refresh_token", r.PostForm.Get("grant_type"))
			_, _ = w.Write([]byte(`{"access_token":"AT2","refresh_token":"RT2","expires_in":2592000}`))
			return
		}
		_, _ = w.Write([]byte(`{"result":1}`))
	})
	tr := a.Refresh(context.Background(), &oauth.Token{RefreshToken: "RT"})
	require.True(t, tr.OK(), tr.Message)
	assert.Equal(t, "RT2", tr.Data.RefreshToken)

	rr := a.Revoke(context.Background(), &oauth.Token{AccessToken: "AT2"})
	require.True(t, rr.OK(), rr.Message)
	assert.True(t, rr.Data)
}
