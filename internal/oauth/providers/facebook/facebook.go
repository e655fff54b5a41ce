// Package facebook implements the Facebook Graph API adapter.
package facebook

import (
	"context"
	"net/http"
	"net/url"

	"github.com/dropDatabas3/socialauth/internal/httpclient"
	"github.com/dropDatabas3/socialauth/internal/oauth"
)

const ProviderName = "facebook"

const (
	userFields    = "id,name,email,picture.width(400)"
	permissionURL = "https://graph.facebook.com/me/permissions"
)

var Source = oauth.Source{
	Name:           ProviderName,
	AuthorizeURL:   "https://www.facebook.com/v9.0/dialog/oauth",
	AccessTokenURL: "https://graph.facebook.com/v9.0/oauth/access_token",
	UserInfoURL:    "https://graph.facebook.com/v9.0/me",
	RevokeTokenURL: permissionURL,
	Scopes:         []string{"public_profile", "email"},
	ScopeDelimiter: ",",
}

type Adapter struct {
	oauth.Base
}

func Factory(cfg oauth.Config, src oauth.Source, deps oauth.Deps) (oauth.Adapter, error) {
	return &Adapter{Base: oauth.NewBase(cfg, src, deps)}, nil
}

// graphError reads {"error": {"message": ...}}.
func graphError(p oauth.Payload) string {
	if !p.Has("error") {
		return ""
	}
	if msg := p.Object("error").String("message"); msg != "" {
		return "facebook: " + msg
	}
	return "facebook: " + p.String("error")
}

func (a *Adapter) ExchangeCode(ctx context.Context, cb *oauth.Callback) oauth.TokenResponse {
	q := url.Values{}
	q.Set("client_id", a.Cfg.ClientID)
	q.Set("client_secret", a.Cfg.ClientSecret)
	q.Set("code", cb.Code)
	q.Set("redirect_uri", a.Cfg.RedirectURI)

	p, err := a.Fetch(ctx, http.MethodGet, a.Src.AccessTokenURL, httpclient.WithQuery(q))
	if msg := graphError(p); msg != "" {
		return oauth.Failure[*oauth.Token](msg)
	}
	if err != nil {
		return oauth.FromError[*oauth.Token](err)
	}
	return oauth.Success(a.StandardToken(p, cb.Code))
}

func (a *Adapter) UserInfo(ctx context.Context, tok *oauth.Token, _ map[string]string) oauth.UserResponse {
	q := url.Values{}
	q.Set("access_token", tok.AccessToken)
	q.Set("fields", userFields)

	p, err := a.Fetch(ctx, http.MethodGet, a.Src.UserInfoURL, httpclient.WithQuery(q))
	if msg := graphError(p); msg != "" {
		return oauth.Failure[*oauth.User](msg)
	}
	if err != nil {
		return oauth.FromError[*oauth.User](err)
	}
	return oauth.Success(&oauth.User{
		UUID:     a.QualifiedID(p.String("id")),
		Username: p.String("name"),
		Nickname: p.String("name"),
		Avatar:   p.Path("picture.data.url"),
		Email:    p.String("email"),
		Gender:   oauth.GenderUnknown,
		Source:   ProviderName,
		Token:    tok,
		Raw:      p,
	})
}

// Revoke removes every permission the user granted to the app.
func (a *Adapter) Revoke(ctx context.Context, tok *oauth.Token) oauth.RevokeResponse {
	q := url.Values{}
	q.Set("access_token", tok.AccessToken)
	p, err := a.Fetch(ctx, http.MethodDelete, a.Src.RevokeTokenURL, httpclient.WithQuery(q))
	if msg := graphError(p); msg != "" {
		return oauth.Failure[bool](msg)
	}
	if err != nil {
		return oauth.FromError[bool](err)
	}
	return oauth.Success(p.Bool("success"))
}
