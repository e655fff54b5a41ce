// Package taobao implements the Taobao adapter. The token response already
// carries the user identity; the nick is kept in the cache so UserInfo can
// be served without a signed TOP gateway call.
package taobao

import (
	"context"
	"net/http"
	"net/url"
	"time"

	"github.com/dropDatabas3/socialauth/internal/httpclient"
	"github.com/dropDatabas3/socialauth/internal/oauth"
)

const ProviderName = "taobao"

var Source = oauth.Source{
	Name:            ProviderName,
	AuthorizeURL:    "https://oauth.taobao.com/authorize",
	AccessTokenURL:  "https://oauth.taobao.com/token",
	UserInfoURL:     "https://gw.api.taobao.com/router/rest",
	RefreshTokenURL: "https://oauth.taobao.com/token",
}

const nickKey = "user_nick"

type Adapter struct {
	oauth.Base
}

func Factory(cfg oauth.Config, src oauth.Source, deps oauth.Deps) (oauth.Adapter, error) {
	return &Adapter{Base: oauth.NewBase(cfg, src, deps)}, nil
}

// NickCacheKey is the cache key of the nick for a Taobao user id.
func NickCacheKey(openID string) string { return "taobao_user_nick_" + openID }

func (a *Adapter) AuthorizeParams(_ context.Context, state string, _ map[string]string) (url.Values, error) {
	v := url.Values{}
	v.Set("response_type", "code")
	v.Set("client_id", a.Cfg.ClientID)
	v.Set("redirect_uri", a.Cfg.RedirectURI)
	v.Set("view", "web")
	v.Set("state", state)
	return v, nil
}

func (a *Adapter) ExchangeCode(ctx context.Context, cb *oauth.Callback) oauth.TokenResponse {
	form := url.Values{}
	form.Set("grant_type", "authorization_code")
	form.Set("client_id", a.Cfg.ClientID)
	form.Set("client_secret", a.Cfg.ClientSecret)
	form.Set("code", cb.Code)
	form.Set("redirect_uri", a.Cfg.RedirectURI)
	form.Set("view", "web")
	return a.token(ctx, form, cb.Code, nil)
}

func (a *Adapter) Refresh(ctx context.Context, tok *oauth.Token) oauth.TokenResponse {
	if tok.RefreshToken == "" {
		return oauth.Failure[*oauth.Token]("taobao: refresh_token required")
	}
	form := url.Values{}
	form.Set("grant_type", "refresh_token")
	form.Set("client_id", a.Cfg.ClientID)
	form.Set("client_secret", a.Cfg.ClientSecret)
	form.Set("refresh_token", tok.RefreshToken)
	return a.token(ctx, form, "", tok)
}

func (a *Adapter) token(ctx context.Context, form url.Values, code string, prev *oauth.Token) oauth.TokenResponse {
	endpoint := a.Src.AccessTokenURL
	if prev != nil {
		endpoint = a.Src.RefreshTokenURL
	}
	p, err := a.Fetch(ctx, http.MethodPost, endpoint, httpclient.WithForm(form))
	if p.Has("error") {
		return oauth.Failure[*oauth.Token]("taobao: " + p.First("error_description", "error"))
	}
	if err != nil {
		return oauth.FromError[*oauth.Token](err)
	}

	tok := a.StandardToken(p, code)
	tok.TokenType = "Bearer"
	tok.OpenID = p.String("taobao_user_id")
	tok.UnionID = p.String("taobao_open_uid")
	nick := p.String("taobao_user_nick")
	if prev != nil {
		tok.OpenID = firstNonEmpty(tok.OpenID, prev.OpenID)
		tok.UnionID = firstNonEmpty(tok.UnionID, prev.UnionID)
		tok.RefreshToken = firstNonEmpty(tok.RefreshToken, prev.RefreshToken)
		nick = firstNonEmpty(nick, prev.Get(nickKey))
	}
	if tok.AccessToken == "" {
		return oauth.Failure[*oauth.Token]("taobao: no access_token in response")
	}
	if tok.Extra == nil {
		tok.Extra = map[string]string{}
	}
	if nick != "" {
		tok.Extra[nickKey] = nick
		ttl := time.Duration(tok.ExpiresIn) * time.Second
		_ = a.Cache.Set(ctx, NickCacheKey(tok.OpenID), nick, ttl)
	}
	return oauth.Success(tok)
}

func (a *Adapter) UserInfo(ctx context.Context, tok *oauth.Token, _ map[string]string) oauth.UserResponse {
	nick, err := a.Cache.Get(ctx, NickCacheKey(tok.OpenID))
	if err != nil || nick == "" {
		nick = tok.Get(nickKey)
	}
	return oauth.Success(&oauth.User{
		UUID:     a.QualifiedID(tok.OpenID),
		Username: nick,
		Nickname: nick,
		Gender:   oauth.GenderUnknown,
		Source:   ProviderName,
		Token:    tok,
		Raw:      map[string]any{"user_nick": nick, "open_id": tok.OpenID, "union_id": tok.UnionID},
	})
}

func firstNonEmpty(a, b string) string {
	if a != "" {
		return a
	}
	return b
}
