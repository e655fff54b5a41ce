// Package baidu implements the Baidu adapter.
package baidu

import (
	"context"
	"net/http"
	"net/url"

	"github.com/dropDatabas3/socialauth/internal/httpclient"
	"github.com/dropDatabas3/socialauth/internal/oauth"
)

const ProviderName = "baidu"

// avatarURL prefixes the "portrait" id returned by getInfo.
const avatarURL = "https://himg.bdimg.com/sys/portrait/item/"

var Source = oauth.Source{
	Name:            ProviderName,
	AuthorizeURL:    "https://openapi.baidu.com/oauth/2.0/authorize",
	AccessTokenURL:  "https://openapi.baidu.com/oauth/2.0/token",
	UserInfoURL:     "https://openapi.baidu.com/rest/2.0/passport/users/getInfo",
	RefreshTokenURL: "https://openapi.baidu.com/oauth/2.0/token",
	RevokeTokenURL:  "https://openapi.baidu.com/rest/2.0/passport/auth/revokeAuthorization",
	Scopes:          []string{"basic", "netdisk"},
	ScopeDelimiter:  " ",
}

// Baidu reports sex as "1" male / "0" female.
var genders = oauth.GenderTable{"1": oauth.GenderMale, "0": oauth.GenderFemale}

type Adapter struct {
	oauth.Base
}

func Factory(cfg oauth.Config, src oauth.Source, deps oauth.Deps) (oauth.Adapter, error) {
	return &Adapter{Base: oauth.NewBase(cfg, src, deps)}, nil
}

func (a *Adapter) AuthorizeParams(_ context.Context, state string, _ map[string]string) (url.Values, error) {
	v := a.DefaultAuthorizeParams(state)
	v.Set("display", "popup")
	return v, nil
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
		return oauth.Failure[*oauth.Token]("baidu: refresh_token required")
	}
	form := url.Values{}
	form.Set("grant_type", "refresh_token")
	form.Set("refresh_token", tok.RefreshToken)
	form.Set("client_id", a.Cfg.ClientID)
	form.Set("client_secret", a.Cfg.ClientSecret)
	return a.token(ctx, a.Src.RefreshTokenURL, form, "")
}

func (a *Adapter) token(ctx context.Context, endpoint string, form url.Values, code string) oauth.TokenResponse {
	p, err := a.Fetch(ctx, http.MethodPost, endpoint, httpclient.WithForm(form))
	if msg := p.First("error_description", "error"); msg != "" {
		return oauth.Failure[*oauth.Token]("baidu: " + msg)
	}
	if err != nil {
		return oauth.FromError[*oauth.Token](err)
	}
	return oauth.Success(a.StandardToken(p, code))
}

func (a *Adapter) UserInfo(ctx context.Context, tok *oauth.Token, _ map[string]string) oauth.UserResponse {
	q := url.Values{}
	q.Set("access_token", tok.AccessToken)
	q.Set("format", "json")

	p, err := a.Fetch(ctx, http.MethodGet, a.Src.UserInfoURL, httpclient.WithQuery(q))
	if p.Has("error_code") {
		return oauth.Failure[*oauth.User]("baidu: " + p.First("error_msg", "error_code"))
	}
	if err != nil {
		return oauth.FromError[*oauth.User](err)
	}

	avatar := ""
	if portrait := p.String("portrait"); portrait != "" {
		avatar = avatarURL + portrait
	}
	username := p.First("username", "uname")
	return oauth.Success(&oauth.User{
		UUID:     a.QualifiedID(p.First("userid", "openid")),
		Username: username,
		Nickname: username,
		Avatar:   avatar,
		Remark:   p.String("userdetail"),
		Gender:   genders.Resolve(p.String("sex")),
		Source:   ProviderName,
		Token:    tok,
		Raw:      p,
	})
}

func (a *Adapter) Revoke(ctx context.Context, tok *oauth.Token) oauth.RevokeResponse {
	q := url.Values{}
	q.Set("access_token", tok.AccessToken)
	p, err := a.Fetch(ctx, http.MethodGet, a.Src.RevokeTokenURL, httpclient.WithQuery(q))
	if p.Has("error_code") {
		return oauth.Failure[bool]("baidu: " + p.First("error_msg", "error_code"))
	}
	if err != nil {
		return oauth.FromError[bool](err)
	}
	return oauth.Success(p.Int64("result") == 1)
}
