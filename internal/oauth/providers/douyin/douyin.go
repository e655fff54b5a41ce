// Package douyin implements the Douyin (TikTok China) adapter. Requests use
// client_key instead of client_id and replies are wrapped in {message, data}.
package douyin

import (
	"context"
	"net/http"
	"net/url"

	"github.com/dropDatabas3/socialauth/internal/httpclient"
	"github.com/dropDatabas3/socialauth/internal/oauth"
)

const ProviderName = "douyin"

var Source = oauth.Source{
	Name:            ProviderName,
	AuthorizeURL:    "https://open.douyin.com/platform/oauth/connect",
	AccessTokenURL:  "https://open.douyin.com/oauth/access_token/",
	UserInfoURL:     "https://open.douyin.com/oauth/userinfo/",
	RefreshTokenURL: "https://open.douyin.com/oauth/refresh_token/",
	Scopes:          []string{"user_info"},
	ScopeDelimiter:  ",",
}

type Adapter struct {
	oauth.Base
}

func Factory(cfg oauth.Config, src oauth.Source, deps oauth.Deps) (oauth.Adapter, error) {
	return &Adapter{Base: oauth.NewBase(cfg, src, deps)}, nil
}

func (a *Adapter) AuthorizeParams(_ context.Context, state string, _ map[string]string) (url.Values, error) {
	v := a.DefaultAuthorizeParams(state)
	v.Del("client_id")
	v.Set("client_key", a.Cfg.ClientID)
	return v, nil
}

func (a *Adapter) ExchangeCode(ctx context.Context, cb *oauth.Callback) oauth.TokenResponse {
	q := url.Values{}
	q.Set("client_key", a.Cfg.ClientID)
	q.Set("client_secret", a.Cfg.ClientSecret)
	q.Set("code", cb.Code)
	q.Set("grant_type", "authorization_code")
	return a.token(ctx, a.Src.AccessTokenURL, q, cb.Code, nil)
}

func (a *Adapter) Refresh(ctx context.Context, tok *oauth.Token) oauth.TokenResponse {
	if tok.RefreshToken == "" {
		return oauth.Failure[*oauth.Token]("douyin: refresh_token required")
	}
	q := url.Values{}
	q.Set("client_key", a.Cfg.ClientID)
	q.Set("refresh_token", tok.RefreshToken)
	q.Set("grant_type", "refresh_token")
	return a.token(ctx, a.Src.RefreshTokenURL, q, "", tok)
}

// token keeps open_id and scope of prev when a refresh reply omits them.
func (a *Adapter) token(ctx context.Context, endpoint string, q url.Values, code string, prev *oauth.Token) oauth.TokenResponse {
	env, err := a.Fetch(ctx, http.MethodGet, endpoint, httpclient.WithQuery(q))
	data := env.Object("data")
	if env != nil && env.String("message") != "success" {
		return oauth.Failure[*oauth.Token](failure(env))
	}
	if err != nil {
		return oauth.FromError[*oauth.Token](err)
	}
	tok := a.StandardToken(data, code)
	if prev != nil {
		if tok.OpenID == "" {
			tok.OpenID = prev.OpenID
		}
		if tok.Scope == "" {
			tok.Scope = prev.Scope
		}
		if tok.RefreshToken == "" {
			tok.RefreshToken = prev.RefreshToken
		}
	}
	return oauth.Success(tok)
}

func (a *Adapter) UserInfo(ctx context.Context, tok *oauth.Token, _ map[string]string) oauth.UserResponse {
	q := url.Values{}
	q.Set("access_token", tok.AccessToken)
	q.Set("open_id", tok.OpenID)

	env, err := a.Fetch(ctx, http.MethodGet, a.Src.UserInfoURL, httpclient.WithQuery(q))
	data := env.Object("data")
	if env != nil && env.String("message") != "success" {
		return oauth.Failure[*oauth.User](failure(env))
	}
	if err != nil {
		return oauth.FromError[*oauth.User](err)
	}
	return oauth.Success(&oauth.User{
		UUID:     a.QualifiedID(tok.OpenID),
		Username: data.String("nickname"),
		Nickname: data.String("nickname"),
		Avatar:   data.String("avatar"),
		Location: data.String("city"),
		Gender:   oauth.ParseGender(data["gender"]),
		Source:   ProviderName,
		Token:    tok,
		Raw:      env,
	})
}

func failure(env oauth.Payload) string {
	if d := env.Object("data").String("description"); d != "" {
		return "douyin: " + d
	}
	return "douyin: " + env.String("message")
}
