// Package meituan implements the Meituan adapter. User info requests are
// signed with md5(app_id + timestamp + secret).
package meituan

import (
	"context"
	"net/http"
	"net/url"
	"strconv"

	"github.com/dropDatabas3/socialauth/internal/httpclient"
	"github.com/dropDatabas3/socialauth/internal/oauth"
	"github.com/dropDatabas3/socialauth/internal/security/signing"
)

const ProviderName = "meituan"

var Source = oauth.Source{
	Name:           ProviderName,
	AuthorizeURL:   "https://openapi.waimai.meituan.com/oauth/authorize",
	AccessTokenURL: "https://openapi.waimai.meituan.com/oauth/access_token",
	UserInfoURL:    "https://openapi.waimai.meituan.com/oauth/userinfo",
}

type Adapter struct {
	oauth.Base
}

func Factory(cfg oauth.Config, src oauth.Source, deps oauth.Deps) (oauth.Adapter, error) {
	return &Adapter{Base: oauth.NewBase(cfg, src, deps)}, nil
}

func (a *Adapter) ExchangeCode(ctx context.Context, cb *oauth.Callback) oauth.TokenResponse {
	if cb.Code == "" {
		return oauth.Failure[*oauth.Token]("meituan: code required")
	}
	form := url.Values{}
	form.Set("grant_type", "authorization_code")
	form.Set("code", cb.Code)
	form.Set("client_id", a.Cfg.ClientID)
	form.Set("client_secret", a.Cfg.ClientSecret)
	form.Set("redirect_uri", a.Cfg.RedirectURI)

	p, err := a.Fetch(ctx, http.MethodPost, a.Src.AccessTokenURL, httpclient.WithForm(form), httpclient.WithAcceptJSON())
	if p.Has("error") {
		return oauth.Failure[*oauth.Token]("meituan: " + p.First("error_description", "error"))
	}
	if err != nil {
		return oauth.FromError[*oauth.Token](err)
	}
	tok := a.StandardToken(p, cb.Code)
	if tok.TokenType == "" {
		tok.TokenType = "Bearer"
	}
	return oauth.Success(tok)
}

// Sign returns the request signature for the given unix timestamp.
func (a *Adapter) Sign(timestamp string) string {
	return signing.MD5Hex(a.Cfg.ClientID, timestamp, a.Cfg.ClientSecret)
}

func (a *Adapter) UserInfo(ctx context.Context, tok *oauth.Token, _ map[string]string) oauth.UserResponse {
	ts := strconv.FormatInt(a.Now().Unix(), 10)
	q := url.Values{}
	q.Set("app_id", a.Cfg.ClientID)
	q.Set("access_token", tok.AccessToken)
	q.Set("timestamp", ts)
	q.Set("sign", a.Sign(ts))

	p, err := a.Fetch(ctx, http.MethodGet, a.Src.UserInfoURL, httpclient.WithQuery(q))
	if p != nil && p.String("status") != "success" {
		msg := p.Object("error").String("message")
		if msg == "" {
			msg = "user info request rejected"
		}
		return oauth.Failure[*oauth.User]("meituan: " + msg)
	}
	if err != nil {
		return oauth.FromError[*oauth.User](err)
	}

	d := p.Object("data")
	return oauth.Success(&oauth.User{
		UUID:     a.QualifiedID(d.String("openid")),
		Username: d.String("username"),
		Nickname: d.String("nickname"),
		Avatar:   d.String("avatar"),
		Gender:   oauth.GenderUnknown,
		Source:   ProviderName,
		Token:    tok,
		Raw:      p,
	})
}
