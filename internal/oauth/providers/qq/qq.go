// Package qq implements the QQ Connect adapter. QQ returns the token as a
// form body (or JSON with fmt=json) and the openid through a separate
// JSONP "me" endpoint.
package qq

import (
	"context"
	"encoding/json"
	"net/url"
	"strings"

	"github.com/dropDatabas3/socialauth/internal/httpclient"
	"github.com/dropDatabas3/socialauth/internal/oauth"
)

const ProviderName = "qq"

const meURL = "https://graph.qq.com/oauth2.0/me"

var Source = oauth.Source{
	Name:            ProviderName,
	AuthorizeURL:    "https://graph.qq.com/oauth2.0/authorize",
	AccessTokenURL:  "https://graph.qq.com/oauth2.0/token",
	UserInfoURL:     "https://graph.qq.com/user/get_user_info",
	RefreshTokenURL: "https://graph.qq.com/oauth2.0/token",
	Scopes:          []string{"get_user_info"},
	ScopeDelimiter:  ",",
}

type Adapter struct {
	oauth.Base
	meURL string
}

// Factory builds the adapter. Extras "me_url" overrides the openid endpoint.
func Factory(cfg oauth.Config, src oauth.Source, deps oauth.Deps) (oauth.Adapter, error) {
	return &Adapter{Base: oauth.NewBase(cfg, src, deps), meURL: cfg.Extra("me_url", meURL)}, nil
}

// decode accepts JSON, JSONP (callback( {...} );) and form bodies.
func decode(body string) oauth.Payload {
	body = strings.TrimSpace(body)
	if i, j := strings.IndexByte(body, '{'), strings.LastIndexByte(body, '}'); i >= 0 && j > i {
		dec := json.NewDecoder(strings.NewReader(body[i : j+1]))
		dec.UseNumber()
		var m map[string]any
		if dec.Decode(&m) == nil {
			return m
		}
	}
	p := oauth.Payload{}
	if v, err := url.ParseQuery(body); err == nil {
		for k := range v {
			p[k] = v.Get(k)
		}
	}
	return p
}

func qqError(p oauth.Payload) string {
	if p.Has("error") && p.String("error") != "0" {
		return "qq: " + p.First("error_description", "error")
	}
	if p.Has("ret") && p.Int64("ret") != 0 {
		return "qq: " + p.First("msg", "ret")
	}
	return ""
}

func (a *Adapter) call(ctx context.Context, endpoint string, q url.Values) (oauth.Payload, error) {
	resp, err := a.HTTP.Get(ctx, endpoint, httpclient.WithQuery(q))
	if resp == nil {
		return nil, err
	}
	return decode(resp.Text()), err
}

func (a *Adapter) ExchangeCode(ctx context.Context, cb *oauth.Callback) oauth.TokenResponse {
	q := url.Values{}
	q.Set("grant_type", "authorization_code")
	q.Set("client_id", a.Cfg.ClientID)
	q.Set("client_secret", a.Cfg.ClientSecret)
	q.Set("code", cb.Code)
	q.Set("redirect_uri", a.Cfg.RedirectURI)
	q.Set("fmt", "json")
	return a.token(ctx, a.Src.AccessTokenURL, q, cb.Code)
}

func (a *Adapter) Refresh(ctx context.Context, tok *oauth.Token) oauth.TokenResponse {
	if tok.RefreshToken == "" {
		return oauth.Failure[*oauth.Token]("qq: refresh_token required")
	}
	q := url.Values{}
	q.Set("grant_type", "refresh_token")
	q.Set("client_id", a.Cfg.ClientID)
	q.Set("client_secret", a.Cfg.ClientSecret)
	q.Set("refresh_token", tok.RefreshToken)
	q.Set("fmt", "json")
	return a.token(ctx, a.Src.RefreshTokenURL, q, "")
}

func (a *Adapter) token(ctx context.Context, endpoint string, q url.Values, code string) oauth.TokenResponse {
	p, err := a.call(ctx, endpoint, q)
	if msg := qqError(p); msg != "" {
		return oauth.Failure[*oauth.Token](msg)
	}
	if err != nil {
		return oauth.FromError[*oauth.Token](err)
	}
	tok := oauth.Token{
		AccessToken:  p.String("access_token"),
		ExpiresIn:    p.Int64("expires_in"),
		RefreshToken: p.String("refresh_token"),
		Code:         code,
	}
	if tok.AccessToken == "" {
		return oauth.Failure[*oauth.Token]("qq: no access_token in response")
	}

	me, err := a.call(ctx, a.meURL, url.Values{"access_token": {tok.AccessToken}, "unionid": {"1"}, "fmt": {"json"}})
	if msg := qqError(me); msg != "" {
		return oauth.Failure[*oauth.Token](msg)
	}
	if err != nil {
		return oauth.FromError[*oauth.Token](err)
	}
	tok.OpenID = me.String("openid")
	tok.UnionID = me.String("unionid")
	if tok.OpenID == "" {
		return oauth.Failure[*oauth.Token]("qq: openid missing")
	}
	return oauth.Success(a.NewToken(tok))
}

var genders = oauth.GenderTable{"男": oauth.GenderMale, "女": oauth.GenderFemale}

func (a *Adapter) UserInfo(ctx context.Context, tok *oauth.Token, _ map[string]string) oauth.UserResponse {
	q := url.Values{}
	q.Set("access_token", tok.AccessToken)
	q.Set("oauth_consumer_key", a.Cfg.ClientID)
	q.Set("openid", tok.OpenID)

	p, err := a.call(ctx, a.Src.UserInfoURL, q)
	if msg := qqError(p); msg != "" {
		return oauth.Failure[*oauth.User](msg)
	}
	if err != nil {
		return oauth.FromError[*oauth.User](err)
	}

	id := tok.UnionID
	if id == "" {
		id = tok.OpenID
	}
	return oauth.Success(&oauth.User{
		UUID:     a.QualifiedID(id),
		Username: p.String("nickname"),
		Nickname: p.String("nickname"),
		Avatar:   p.First("figureurl_qq_2", "figureurl_qq_1"),
		Location: oauth.JoinNonEmpty(" ", p.String("province"), p.String("city")),
		Gender:   genders.Resolve(p.String("gender")),
		Source:   ProviderName,
		Token:    tok,
		Raw:      p,
	})
}
