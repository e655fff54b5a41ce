// Package alipay implements the Alipay adapter. Gateway calls are signed
// with the application's RSA private key (client_secret); when the Alipay
// public key is configured, response signatures are verified too.
package alipay

import (
	"bytes"
	"context"
	"crypto/rsa"
	"encoding/json"
	"fmt"
	"net/url"
	"strings"

	"github.com/dropDatabas3/socialauth/internal/httpclient"
	"github.com/dropDatabas3/socialauth/internal/oauth"
	"github.com/dropDatabas3/socialauth/internal/observability/logger"
	"github.com/dropDatabas3/socialauth/internal/security/signing"
)

const ProviderName = "alipay"

const (
	methodToken    = "alipay.system.oauth.token"
	methodUserInfo = "alipay.user.info.share"

	timestampLayout = "2006-01-02 15:04:05"
	codeSuccess     = "10000"
)

var Source = oauth.Source{
	Name:            ProviderName,
	AuthorizeURL:    "https://openauth.alipay.com/oauth2/publicAppAuthorize.htm",
	AccessTokenURL:  "https://openapi.alipay.com/gateway.do",
	UserInfoURL:     "https://openapi.alipay.com/gateway.do",
	RefreshTokenURL: "https://openapi.alipay.com/gateway.do",
	Scopes:          []string{"auth_user"},
	ScopeDelimiter:  ",",
}

type Adapter struct {
	oauth.Base
	signer *signing.RSASigner
	pub    *rsa.PublicKey
}

// Factory parses the signing key. Extras "sign_type" selects RSA or RSA2
// (default RSA2).
func Factory(cfg oauth.Config, src oauth.Source, deps oauth.Deps) (oauth.Adapter, error) {
	signer, err := signing.NewRSASigner(cfg.ClientSecret, signing.ParseSignType(cfg.Extra("sign_type", "RSA2")))
	if err != nil {
		return nil, fmt.Errorf("alipay: private key: %w", err)
	}
	a := &Adapter{Base: oauth.NewBase(cfg, src, deps), signer: signer}
	if cfg.PublicKey != "" {
		if a.pub, err = signing.ParsePublicKey(cfg.PublicKey); err != nil {
			return nil, fmt.Errorf("alipay: public key: %w", err)
		}
	}
	return a, nil
}

func (a *Adapter) AuthorizeParams(_ context.Context, state string, _ map[string]string) (url.Values, error) {
	v := url.Values{}
	v.Set("app_id", a.Cfg.ClientID)
	v.Set("scope", a.Scope())
	v.Set("redirect_uri", a.Cfg.RedirectURI)
	v.Set("state", state)
	return v, nil
}

// call signs the common and business parameters and returns the body of the
// method's response envelope.
func (a *Adapter) call(ctx context.Context, endpoint, method string, biz map[string]string) (oauth.Payload, error) {
	params := map[string]string{
		"app_id":    a.Cfg.ClientID,
		"method":    method,
		"charset":   "utf-8",
		"sign_type": string(a.signer.Type()),
		"timestamp": a.Now().Format(timestampLayout),
		"version":   "1.0",
	}
	for k, v := range biz {
		params[k] = v
	}
	sign, err := a.signer.SignParams(params)
	if err != nil {
		return nil, err
	}
	q := url.Values{}
	for k, v := range params {
		q.Set(k, v)
	}
	q.Set("sign", sign)

	resp, err := a.HTTP.Get(ctx, endpoint, httpclient.WithQuery(q), httpclient.WithAcceptJSON())
	if err != nil {
		return nil, err
	}

	var env map[string]json.RawMessage
	if err := json.Unmarshal(resp.Body, &env); err != nil {
		return nil, fmt.Errorf("alipay: decode envelope: %w", err)
	}
	if raw, ok := env["error_response"]; ok {
		e := decodeObject(raw)
		return nil, &gatewayError{Code: e.String("code"), Msg: e.First("sub_msg", "msg")}
	}
	respKey := responseKey(method)
	raw, ok := env[respKey]
	if !ok {
		return nil, fmt.Errorf("alipay: %s missing in response", respKey)
	}
	if a.pub != nil {
		var sig string
		_ = json.Unmarshal(env["sign"], &sig)
		if err := signing.VerifyRSA(a.pub, a.signer.Type(), string(raw), sig); err != nil {
			logger.ForAdapter(ctx, ProviderName, method).Warn("response signature mismatch", logger.Err(err))
			return nil, &gatewayError{Code: "sign", Msg: "response signature mismatch"}
		}
	}
	return decodeObject(raw), nil
}

// responseKey: "alipay.user.info.share" -> "alipay_user_info_share_response".
func responseKey(method string) string {
	return strings.ReplaceAll(method, ".", "_") + "_response"
}

func decodeObject(raw []byte) oauth.Payload {
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	var m map[string]any
	_ = dec.Decode(&m)
	return m
}

type gatewayError struct {
	Code string
	Msg  string
}

func (e *gatewayError) Error() string { return "alipay: " + e.Code + " " + e.Msg }

func failure[T any](err error) oauth.Response[T] {
	if ge, ok := err.(*gatewayError); ok {
		return oauth.Failure[T](ge.Error())
	}
	return oauth.FromError[T](err)
}

func (a *Adapter) ExchangeCode(ctx context.Context, cb *oauth.Callback) oauth.TokenResponse {
	return a.token(ctx, a.Src.AccessTokenURL, map[string]string{"grant_type": "authorization_code", "code": cb.Code}, cb.Code)
}

func (a *Adapter) Refresh(ctx context.Context, tok *oauth.Token) oauth.TokenResponse {
	if tok.RefreshToken == "" {
		return oauth.Failure[*oauth.Token]("alipay: refresh_token required")
	}
	return a.token(ctx, a.Src.RefreshTokenURL, map[string]string{"grant_type": "refresh_token", "refresh_token": tok.RefreshToken}, "")
}

func (a *Adapter) token(ctx context.Context, endpoint string, biz map[string]string, code string) oauth.TokenResponse {
	p, err := a.call(ctx, endpoint, methodToken, biz)
	if err != nil {
		return failure[*oauth.Token](err)
	}
	tok := a.StandardToken(p, code)
	tok.TokenType = "Bearer"
	tok.OpenID = p.First("open_id", "user_id")
	tok.UID = p.String("user_id")
	if tok.AccessToken == "" {
		return oauth.Failure[*oauth.Token]("alipay: no access_token in response")
	}
	return oauth.Success(tok)
}

var genders = oauth.GenderTable{"m": oauth.GenderMale, "f": oauth.GenderFemale}

func (a *Adapter) UserInfo(ctx context.Context, tok *oauth.Token, _ map[string]string) oauth.UserResponse {
	p, err := a.call(ctx, a.Src.UserInfoURL, methodUserInfo, map[string]string{"auth_token": tok.AccessToken})
	if err != nil {
		return failure[*oauth.User](err)
	}
	if c := p.String("code"); c != codeSuccess {
		return oauth.Failure[*oauth.User]("alipay: " + c + " " + p.First("sub_msg", "msg"))
	}
	id := tok.OpenID
	if id == "" {
		id = p.First("open_id", "user_id")
	}
	return oauth.Success(&oauth.User{
		UUID:     a.QualifiedID(id),
		Username: p.String("nick_name"),
		Nickname: p.String("nick_name"),
		Avatar:   p.String("avatar"),
		Mobile:   p.String("mobile"),
		Location: p.String("province") + p.String("city"),
		Gender:   genders.Resolve(p.String("gender")),
		Source:   ProviderName,
		Token:    tok,
		Raw:      p,
	})
}
