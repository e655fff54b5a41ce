// Package jd implements the JD (Jingdong) adapter. The user profile comes
// from the routerjson API, whose calls carry an MD5 signature over the
// sorted key/value pairs wrapped in the app secret.
package jd

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"
	"strconv"

	"github.com/dropDatabas3/socialauth/internal/httpclient"
	"github.com/dropDatabas3/socialauth/internal/oauth"
	"github.com/dropDatabas3/socialauth/internal/security/signing"
)

const ProviderName = "jd"

const (
	methodUserInfo = "jingdong.user.getUserInfoByOpenId"
	responseKey    = "jingdong_user_getUserInfoByOpenId_response"
)

var Source = oauth.Source{
	Name:            ProviderName,
	AuthorizeURL:    "https://open-oauth.jd.com/oauth2/to_login",
	AccessTokenURL:  "https://open-oauth.jd.com/oauth2/access_token",
	UserInfoURL:     "https://api.jd.com/routerjson",
	RefreshTokenURL: "https://open-oauth.jd.com/oauth2/refresh_token",
	Scopes:          []string{"snsapi_base"},
	ScopeDelimiter:  ",",
}

type Adapter struct {
	oauth.Base
}

func Factory(cfg oauth.Config, src oauth.Source, deps oauth.Deps) (oauth.Adapter, error) {
	return &Adapter{Base: oauth.NewBase(cfg, src, deps)}, nil
}

func (a *Adapter) AuthorizeParams(_ context.Context, state string, _ map[string]string) (url.Values, error) {
	v := url.Values{}
	v.Set("app_key", a.Cfg.ClientID)
	v.Set("response_type", "code")
	v.Set("redirect_uri", a.Cfg.RedirectURI)
	v.Set("scope", a.Scope())
	v.Set("state", state)
	return v, nil
}

func (a *Adapter) ExchangeCode(ctx context.Context, cb *oauth.Callback) oauth.TokenResponse {
	form := url.Values{}
	form.Set("app_key", a.Cfg.ClientID)
	form.Set("app_secret", a.Cfg.ClientSecret)
	form.Set("grant_type", "authorization_code")
	form.Set("code", cb.Code)
	return a.token(ctx, a.Src.AccessTokenURL, form, cb.Code)
}

func (a *Adapter) Refresh(ctx context.Context, tok *oauth.Token) oauth.TokenResponse {
	if tok.RefreshToken == "" {
		return oauth.Failure[*oauth.Token]("jd: refresh_token required")
	}
	form := url.Values{}
	form.Set("app_key", a.Cfg.ClientID)
	form.Set("app_secret", a.Cfg.ClientSecret)
	form.Set("grant_type", "refresh_token")
	form.Set("refresh_token", tok.RefreshToken)
	return a.token(ctx, a.Src.RefreshTokenURL, form, "")
}

func (a *Adapter) token(ctx context.Context, endpoint string, form url.Values, code string) oauth.TokenResponse {
	p, err := a.Fetch(ctx, http.MethodPost, endpoint, httpclient.WithForm(form))
	if p != nil && p.String("access_token") == "" {
		return oauth.Failure[*oauth.Token]("jd: " + p.First("error_description", "msg", "error"))
	}
	if err != nil {
		return oauth.FromError[*oauth.Token](err)
	}
	tok := a.StandardToken(p, code)
	tok.TokenType = "Bearer"
	tok.OpenID = p.First("open_id", "uid")
	return oauth.Success(tok)
}

// Sign computes the routerjson signature of params.
func (a *Adapter) Sign(params map[string]string) string {
	return signing.MD5Pairs(params, a.Cfg.ClientSecret)
}

func (a *Adapter) UserInfo(ctx context.Context, tok *oauth.Token, _ map[string]string) oauth.UserResponse {
	bizJSON, _ := json.Marshal(map[string]string{"openId": tok.OpenID})
	params := map[string]string{
		"method":            methodUserInfo,
		"access_token":      tok.AccessToken,
		"app_key":           a.Cfg.ClientID,
		"timestamp":         strconv.FormatInt(a.Now().UnixMilli(), 10),
		"v":                 "2.0",
		"360buy_param_json": string(bizJSON),
	}
	form := url.Values{}
	for k, v := range params {
		form.Set(k, v)
	}
	form.Set("sign", a.Sign(params))

	p, err := a.Fetch(ctx, http.MethodPost, a.Src.UserInfoURL, httpclient.WithForm(form))
	body := p.Object(responseKey)
	for _, e := range []oauth.Payload{p.Object("error_response"), body.Object("error_response")} {
		if len(e) > 0 {
			return oauth.Failure[*oauth.User]("jd: " + e.First("zh_desc", "en_desc", "code"))
		}
	}
	if err != nil {
		return oauth.FromError[*oauth.User](err)
	}

	info := body.Object("result").Object("data").Object("userInfo")
	nick := info.String("nickName")
	return oauth.Success(&oauth.User{
		UUID:     a.QualifiedID(tok.OpenID),
		Username: nick,
		Nickname: nick,
		Avatar:   info.String("imageUrl"),
		Gender:   oauth.ParseGender(info["gendar"]),
		Source:   ProviderName,
		Token:    tok,
		Raw:      body,
	})
}
