// Package wechat implements the WeChat official-account (mp) and WeChat
// open-platform (website QR login) adapters. Both share the token and
// userinfo endpoints and differ only in the authorize step.
package wechat

import (
	"context"
	"net/http"
	"net/url"

	"github.com/dropDatabas3/socialauth/internal/httpclient"
	"github.com/dropDatabas3/socialauth/internal/oauth"
)

const (
	ProviderName     = "wechat"
	OpenProviderName = "wechat_open"
)

const (
	tokenURL   = "https://api.weixin.qq.com/sns/oauth2/access_token"
	userURL    = "https://api.weixin.qq.com/sns/userinfo"
	refreshURL = "https://api.weixin.qq.com/sns/oauth2/refresh_token"
)

// Source is the official-account (in-app browser) login.
var Source = oauth.Source{
	Name:            ProviderName,
	AuthorizeURL:    "https://open.weixin.qq.com/connect/oauth2/authorize",
	AccessTokenURL:  tokenURL,
	UserInfoURL:     userURL,
	RefreshTokenURL: refreshURL,
	Scopes:          []string{"snsapi_userinfo"},
	ScopeDelimiter:  ",",
}

// OpenSource is the open-platform QR code login.
var OpenSource = oauth.Source{
	Name:            OpenProviderName,
	AuthorizeURL:    "https://open.weixin.qq.com/connect/qrconnect",
	AccessTokenURL:  tokenURL,
	UserInfoURL:     userURL,
	RefreshTokenURL: refreshURL,
	Scopes:          []string{"snsapi_login"},
	ScopeDelimiter:  ",",
}

type Adapter struct {
	oauth.Base
}

func Factory(cfg oauth.Config, src oauth.Source, deps oauth.Deps) (oauth.Adapter, error) {
	return &Adapter{Base: oauth.NewBase(cfg, src, deps)}, nil
}

// AuthorizeParams uses appid and requires the #wechat_redirect fragment.
func (a *Adapter) AuthorizeParams(_ context.Context, state string, _ map[string]string) (url.Values, error) {
	v := url.Values{}
	v.Set("appid", a.Cfg.ClientID)
	v.Set("redirect_uri", a.Cfg.RedirectURI)
	v.Set("response_type", "code")
	v.Set("scope", a.Scope())
	v.Set("state", state)
	return v, nil
}

func (a *Adapter) AuthorizeURL(params url.Values) string {
	return oauth.JoinURL(a.Src.AuthorizeURL, params) + "#wechat_redirect"
}

// apiError reports a non-zero errcode.
func apiError(p oauth.Payload) string {
	if p.Int64("errcode") == 0 {
		return ""
	}
	return "wechat: " + p.String("errcode") + " " + p.String("errmsg")
}

func (a *Adapter) ExchangeCode(ctx context.Context, cb *oauth.Callback) oauth.TokenResponse {
	q := url.Values{}
	q.Set("appid", a.Cfg.ClientID)
	q.Set("secret", a.Cfg.ClientSecret)
	q.Set("code", cb.Code)
	q.Set("grant_type", "authorization_code")
	return a.token(ctx, a.Src.AccessTokenURL, q, cb.Code)
}

func (a *Adapter) Refresh(ctx context.Context, tok *oauth.Token) oauth.TokenResponse {
	if tok.RefreshToken == "" {
		return oauth.Failure[*oauth.Token]("wechat: refresh_token required")
	}
	q := url.Values{}
	q.Set("appid", a.Cfg.ClientID)
	q.Set("grant_type", "refresh_token")
	q.Set("refresh_token", tok.RefreshToken)
	return a.token(ctx, a.Src.RefreshTokenURL, q, "")
}

func (a *Adapter) token(ctx context.Context, endpoint string, q url.Values, code string) oauth.TokenResponse {
	p, err := a.Fetch(ctx, http.MethodGet, endpoint, httpclient.WithQuery(q))
	if msg := apiError(p); msg != "" {
		return oauth.Failure[*oauth.Token](msg)
	}
	if err != nil {
		return oauth.FromError[*oauth.Token](err)
	}
	return oauth.Success(a.StandardToken(p, code))
}

func (a *Adapter) UserInfo(ctx context.Context, tok *oauth.Token, _ map[string]string) oauth.UserResponse {
	q := url.Values{}
	q.Set("access_token", tok.AccessToken)
	q.Set("openid", tok.OpenID)
	q.Set("lang", "zh_CN")

	p, err := a.Fetch(ctx, http.MethodGet, a.Src.UserInfoURL, httpclient.WithQuery(q))
	if msg := apiError(p); msg != "" {
		return oauth.Failure[*oauth.User](msg)
	}
	if err != nil {
		return oauth.FromError[*oauth.User](err)
	}

	// unionid is stable across every app of the same open-platform account.
	id := p.String("unionid")
	if id == "" {
		id = p.String("openid")
	}
	location := oauth.JoinNonEmpty(" ", p.String("country"), p.String("province"), p.String("city"))
	return oauth.Success(&oauth.User{
		UUID:     a.QualifiedID(id),
		Username: p.String("nickname"),
		Nickname: p.String("nickname"),
		Avatar:   p.String("headimgurl"),
		Location: location,
		Gender:   oauth.ParseGender(p["sex"]),
		Source:   a.Src.Name,
		Token:    tok,
		Raw:      p,
	})
}
