// Package oschina implements the OSChina adapter.
package oschina

import (
	"context"
	"net/http"
	"net/url"

	"github.com/dropDatabas3/socialauth/internal/httpclient"
	"github.com/dropDatabas3/socialauth/internal/oauth"
)

const ProviderName = "oschina"

var Source = oauth.Source{
	Name:            ProviderName,
	AuthorizeURL:    "https://www.oschina.net/action/oauth2/authorize",
	AccessTokenURL:  "https://www.oschina.net/action/openapi/token",
	UserInfoURL:     "https://www.oschina.net/action/openapi/user",
	RefreshTokenURL: "https://www.oschina.net/action/openapi/token",
}

type Adapter struct {
	oauth.Base
}

func Factory(cfg oauth.Config, src oauth.Source, deps oauth.Deps) (oauth.Adapter, error) {
	return &Adapter{Base: oauth.NewBase(cfg, src, deps)}, nil
}

func (a *Adapter) ExchangeCode(ctx context.Context, cb *oauth.Callback) oauth.TokenResponse {
	q := url.Values{}
	q.Set("grant_type", "authorization_code")
	q.Set("code", cb.Code)
	q.Set("client_id", a.Cfg.ClientID)
	q.Set("client_secret", a.Cfg.ClientSecret)
	q.Set("redirect_uri", a.Cfg.RedirectURI)
	q.Set("dataType", "json")
	return a.token(ctx, a.Src.AccessTokenURL, q, cb.Code)
}

func (a *Adapter) Refresh(ctx context.Context, tok *oauth.Token) oauth.TokenResponse {
	if tok.RefreshToken == "" {
		return oauth.Failure[*oauth.Token]("oschina: refresh_token required")
	}
	q := url.Values{}
	q.Set("grant_type", "refresh_token")
	q.Set("refresh_token", tok.RefreshToken)
	q.Set("client_id", a.Cfg.ClientID)
	q.Set("client_secret", a.Cfg.ClientSecret)
	q.Set("redirect_uri", a.Cfg.RedirectURI)
	q.Set("dataType", "json")
	return a.token(ctx, a.Src.RefreshTokenURL, q, "")
}

func (a *Adapter) token(ctx context.Context, endpoint string, q url.Values, code string) oauth.TokenResponse {
	p, err := a.Fetch(ctx, http.MethodGet, endpoint, httpclient.WithQuery(q))
	if msg := p.First("error_description", "error"); msg != "" {
		return oauth.Failure[*oauth.Token]("oschina: " + msg)
	}
	if err != nil {
		return oauth.FromError[*oauth.Token](err)
	}
	tok := a.StandardToken(p, code)
	if tok.AccessToken == "" {
		return oauth.Failure[*oauth.Token]("oschina: no access_token in response")
	}
	return oauth.Success(tok)
}

func (a *Adapter) UserInfo(ctx context.Context, tok *oauth.Token, _ map[string]string) oauth.UserResponse {
	p, err := a.Fetch(ctx, http.MethodGet, a.Src.UserInfoURL,
		httpclient.WithQuery(url.Values{"access_token": {tok.AccessToken}, "dataType": {"json"}}))
	if msg := p.First("error_description", "error"); msg != "" {
		return oauth.Failure[*oauth.User]("oschina: " + msg)
	}
	if err != nil {
		return oauth.FromError[*oauth.User](err)
	}
	return oauth.Success(&oauth.User{
		UUID:     a.QualifiedID(p.String("id")),
		Username: p.String("name"),
		Nickname: p.String("name"),
		Avatar:   p.String("avatar"),
		Blog:     p.String("url"),
		Location: p.String("location"),
		Email:    p.String("email"),
		Gender:   oauth.ParseGender(p["gender"]),
		Source:   ProviderName,
		Token:    tok,
		Raw:      p,
	})
}
