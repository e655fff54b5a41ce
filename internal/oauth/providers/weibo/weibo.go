// Package weibo implements the Sina Weibo adapter.
package weibo

import (
	"context"
	"net/http"
	"net/url"

	"github.com/dropDatabas3/socialauth/internal/httpclient"
	"github.com/dropDatabas3/socialauth/internal/oauth"
)

const ProviderName = "weibo"

var Source = oauth.Source{
	Name:           ProviderName,
	AuthorizeURL:   "https://api.weibo.com/oauth2/authorize",
	AccessTokenURL: "https://api.weibo.com/oauth2/access_token",
	UserInfoURL:    "https://api.weibo.com/2/users/show.json",
	RevokeTokenURL: "https://api.weibo.com/oauth2/revokeoauth2",
	Scopes:         []string{"email"},
	ScopeDelimiter: ",",
}

var genders = oauth.GenderTable{"m": oauth.GenderMale, "f": oauth.GenderFemale}

type Adapter struct {
	oauth.Base
}

func Factory(cfg oauth.Config, src oauth.Source, deps oauth.Deps) (oauth.Adapter, error) {
	return &Adapter{Base: oauth.NewBase(cfg, src, deps)}, nil
}

func (a *Adapter) ExchangeCode(ctx context.Context, cb *oauth.Callback) oauth.TokenResponse {
	form := url.Values{}
	form.Set("client_id", a.Cfg.ClientID)
	form.Set("client_secret", a.Cfg.ClientSecret)
	form.Set("code", cb.Code)
	form.Set("redirect_uri", a.Cfg.RedirectURI)
	form.Set("grant_type", "authorization_code")

	p, err := a.Fetch(ctx, http.MethodPost, a.Src.AccessTokenURL, httpclient.WithForm(form))
	if msg := p.First("error_description", "error"); msg != "" {
		return oauth.Failure[*oauth.Token]("weibo: " + msg)
	}
	if err != nil {
		return oauth.FromError[*oauth.Token](err)
	}
	return oauth.Success(a.StandardToken(p, cb.Code))
}

func (a *Adapter) UserInfo(ctx context.Context, tok *oauth.Token, _ map[string]string) oauth.UserResponse {
	q := url.Values{}
	q.Set("access_token", tok.AccessToken)
	q.Set("uid", tok.UID)

	p, err := a.Fetch(ctx, http.MethodGet, a.Src.UserInfoURL, httpclient.WithQuery(q))
	if msg := p.String("error"); msg != "" {
		return oauth.Failure[*oauth.User]("weibo: " + msg)
	}
	if err != nil {
		return oauth.FromError[*oauth.User](err)
	}
	return oauth.Success(&oauth.User{
		UUID:     a.QualifiedID(p.First("idstr", "id")),
		Username: p.String("screen_name"),
		Nickname: p.String("name"),
		Avatar:   p.First("avatar_large", "profile_image_url"),
		Blog:     p.String("url"),
		Location: p.String("location"),
		Remark:   p.String("description"),
		Gender:   genders.Resolve(p.String("gender")),
		Source:   ProviderName,
		Token:    tok,
		Raw:      p,
	})
}

func (a *Adapter) Revoke(ctx context.Context, tok *oauth.Token) oauth.RevokeResponse {
	q := url.Values{}
	q.Set("access_token", tok.AccessToken)
	p, err := a.Fetch(ctx, http.MethodGet, a.Src.RevokeTokenURL, httpclient.WithQuery(q))
	if msg := p.String("error"); msg != "" {
		return oauth.Failure[bool]("weibo: " + msg)
	}
	if err != nil {
		return oauth.FromError[bool](err)
	}
	return oauth.Success(p.String("result") == "true")
}
