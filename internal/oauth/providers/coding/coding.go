// Package coding implements the CODING adapter. Each team has its own
// host, so the endpoints are usually overridden through the config.
package coding

import (
	"context"
	"net/http"
	"net/url"

	"github.com/dropDatabas3/socialauth/internal/httpclient"
	"github.com/dropDatabas3/socialauth/internal/oauth"
)

const ProviderName = "coding"

var Source = oauth.Source{
	Name:           ProviderName,
	AuthorizeURL:   "https://coding.net/oauth_authorize.html",
	AccessTokenURL: "https://coding.net/api/oauth/access_token",
	UserInfoURL:    "https://coding.net/api/account/current_user",
	Scopes:         []string{"user", "email"},
	ScopeDelimiter: ",",
}

type Adapter struct {
	oauth.Base
}

func Factory(cfg oauth.Config, src oauth.Source, deps oauth.Deps) (oauth.Adapter, error) {
	return &Adapter{Base: oauth.NewBase(cfg, src, deps)}, nil
}

func (a *Adapter) ExchangeCode(ctx context.Context, cb *oauth.Callback) oauth.TokenResponse {
	form := url.Values{}
	form.Set("grant_type", "authorization_code")
	form.Set("code", cb.Code)
	form.Set("client_id", a.Cfg.ClientID)
	form.Set("client_secret", a.Cfg.ClientSecret)

	p, err := a.Fetch(ctx, http.MethodPost, a.Src.AccessTokenURL, httpclient.WithForm(form), httpclient.WithAcceptJSON())
	if msg := p.First("error_description", "error"); msg != "" {
		return oauth.Failure[*oauth.Token]("coding: " + msg)
	}
	if err != nil {
		return oauth.FromError[*oauth.Token](err)
	}
	tok := a.StandardToken(p, cb.Code)
	if tok.AccessToken == "" {
		return oauth.Failure[*oauth.Token]("coding: no access_token in response")
	}
	return oauth.Success(tok)
}

func (a *Adapter) UserInfo(ctx context.Context, tok *oauth.Token, _ map[string]string) oauth.UserResponse {
	p, err := a.Fetch(ctx, http.MethodGet, a.Src.UserInfoURL,
		httpclient.WithQuery(url.Values{"access_token": {tok.AccessToken}}),
		httpclient.WithHeader("Authorization", "token "+tok.AccessToken))
	if msg := p.First("error_description", "error"); msg != "" {
		return oauth.Failure[*oauth.User]("coding: " + msg)
	}
	if p.Has("code") && p.Int64("code") != 0 {
		return oauth.Failure[*oauth.User]("coding: " + p.First("msg", "message", "code"))
	}
	if err != nil {
		return oauth.FromError[*oauth.User](err)
	}

	u := p
	if p.Has("data") {
		u = p.Object("data")
	}
	return oauth.Success(&oauth.User{
		UUID:     a.QualifiedID(u.String("id")),
		Username: u.First("global_key", "name"),
		Nickname: u.String("name"),
		Avatar:   u.String("avatar"),
		Blog:     u.String("home_page"),
		Company:  u.String("company"),
		Location: u.String("location"),
		Email:    u.String("email"),
		Remark:   u.String("slogan"),
		Gender:   oauth.ParseGender(u["sex"]),
		Source:   ProviderName,
		Token:    tok,
		Raw:      p,
	})
}
