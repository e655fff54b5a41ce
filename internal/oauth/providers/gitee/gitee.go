// Package gitee implements the Gitee adapter.
package gitee

import (
	"context"
	"net/http"
	"net/url"

	"github.com/dropDatabas3/socialauth/internal/httpclient"
	"github.com/dropDatabas3/socialauth/internal/oauth"
)

const ProviderName = "gitee"

// defaultExpiresIn is used when the token response omits expires_in.
const defaultExpiresIn = 7200

var Source = oauth.Source{
	Name:            ProviderName,
	AuthorizeURL:    "https://gitee.com/oauth/authorize",
	AccessTokenURL:  "https://gitee.com/oauth/token",
	UserInfoURL:     "https://gitee.com/api/v5/user",
	RefreshTokenURL: "https://gitee.com/oauth/token",
	Scopes:          []string{"user_info"},
	ScopeDelimiter:  ",",
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
	form.Set("redirect_uri", a.Cfg.RedirectURI)
	return a.token(ctx, a.Src.AccessTokenURL, form, cb.Code)
}

func (a *Adapter) Refresh(ctx context.Context, tok *oauth.Token) oauth.TokenResponse {
	if tok.RefreshToken == "" {
		return oauth.Failure[*oauth.Token]("gitee: refresh_token required")
	}
	form := url.Values{}
	form.Set("grant_type", "refresh_token")
	form.Set("refresh_token", tok.RefreshToken)
	return a.token(ctx, a.Src.RefreshTokenURL, form, "")
}

func (a *Adapter) token(ctx context.Context, endpoint string, form url.Values, code string) oauth.TokenResponse {
	p, err := a.Fetch(ctx, http.MethodPost, endpoint, httpclient.WithForm(form), httpclient.WithAcceptJSON())
	if msg := p.First("error_description", "error"); msg != "" {
		return oauth.Failure[*oauth.Token]("gitee: " + msg)
	}
	if err != nil {
		return oauth.FromError[*oauth.Token](err)
	}
	tok := a.StandardToken(p, code)
	if tok.AccessToken == "" {
		return oauth.Failure[*oauth.Token]("gitee: no access_token in response")
	}
	if tok.ExpiresIn == 0 {
		tok.ExpiresIn = defaultExpiresIn
	}
	return oauth.Success(tok)
}

func (a *Adapter) UserInfo(ctx context.Context, tok *oauth.Token, _ map[string]string) oauth.UserResponse {
	p, err := a.Fetch(ctx, http.MethodGet, a.Src.UserInfoURL, httpclient.WithBearer(tok.AccessToken))
	if msg := p.First("message", "error"); msg != "" && !p.Has("id") {
		return oauth.Failure[*oauth.User]("gitee: " + msg)
	}
	if err != nil {
		return oauth.FromError[*oauth.User](err)
	}
	return oauth.Success(&oauth.User{
		UUID:     a.QualifiedID(p.String("id")),
		Username: p.String("login"),
		Nickname: p.String("name"),
		Avatar:   p.String("avatar_url"),
		Blog:     p.String("blog"),
		Company:  p.String("company"),
		Location: p.String("location"),
		Email:    p.String("email"),
		Remark:   p.String("bio"),
		Gender:   oauth.GenderUnknown,
		Source:   ProviderName,
		Token:    tok,
		Raw:      p,
	})
}
