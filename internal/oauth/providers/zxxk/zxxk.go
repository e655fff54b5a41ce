// Package zxxk implements the ZXXK (Xueke) single sign-on adapter.
//
// Authorize parameters are partly AES-ECB encrypted with the app secret and
// signed with an MD5 over the sorted values. After login, the identity
// carries a service URL that drops the user into the requested ZXXK service.
package zxxk

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"github.com/dropDatabas3/socialauth/internal/httpclient"
	"github.com/dropDatabas3/socialauth/internal/oauth"
	"github.com/dropDatabas3/socialauth/internal/security/signing"
)

const ProviderName = "zxxk"

var Source = oauth.Source{
	Name:           ProviderName,
	AuthorizeURL:   "https://sso.zxxk.com/oauth2/authorize",
	AccessTokenURL: "https://sso.zxxk.com/oauth2/accessToken",
	UserInfoURL:    "https://sso.zxxk.com/oauth2/profile",
}

var ErrServiceRequired = errors.New("zxxk: service required")

type Adapter struct {
	oauth.Base
}

func Factory(cfg oauth.Config, src oauth.Source, deps oauth.Deps) (oauth.Adapter, error) {
	return &Adapter{Base: oauth.NewBase(cfg, src, deps)}, nil
}

// encrypt returns base64(AES-ECB(secret, s)), or "" for an empty s.
func (a *Adapter) encrypt(s string) (string, error) {
	if s == "" {
		return "", nil
	}
	return signing.EncryptECBBase64([]byte(a.Cfg.ClientSecret), s)
}

// Sign is the upper-case MD5 of the sorted parameter values followed by the
// app secret.
func (a *Adapter) Sign(params url.Values) string {
	flat := make(map[string]string, len(params))
	for k := range params {
		flat[k] = params.Get(k)
	}
	return signing.MD5Values(flat, a.Cfg.ClientSecret)
}

// AuthorizeParams reads "service" (required), "open_id" and "extra" from
// extra, falling back to the config extras.
func (a *Adapter) AuthorizeParams(_ context.Context, state string, extra map[string]string) (url.Values, error) {
	get := func(k string) string {
		if v := extra[k]; v != "" {
			return v
		}
		return a.Cfg.Extra(k, "")
	}
	service := get("service")
	if service == "" {
		return nil, ErrServiceRequired
	}

	openID, err := a.encrypt(get("open_id"))
	if err != nil {
		return nil, fmt.Errorf("zxxk: encrypt open_id: %w", err)
	}
	timespan, err := a.encrypt(strconv.FormatInt(a.Now().UnixMilli(), 10))
	if err != nil {
		return nil, fmt.Errorf("zxxk: encrypt timespan: %w", err)
	}
	ext, err := a.encrypt(get("extra"))
	if err != nil {
		return nil, fmt.Errorf("zxxk: encrypt extra: %w", err)
	}

	v := url.Values{}
	v.Set("client_id", a.Cfg.ClientID)
	v.Set("open_id", openID)
	v.Set("service", service)
	v.Set("redirect_uri", a.Cfg.RedirectURI)
	v.Set("timespan", timespan)
	v.Set("extra", ext)
	v.Set("signature", a.Sign(v))
	v.Set("state", state)
	return v, nil
}

func (a *Adapter) ExchangeCode(ctx context.Context, cb *oauth.Callback) oauth.TokenResponse {
	if cb.Code == "" {
		return oauth.Failure[*oauth.Token]("zxxk: code required")
	}
	q := url.Values{}
	q.Set("client_id", a.Cfg.ClientID)
	q.Set("code", cb.Code)
	q.Set("redirect_uri", a.Cfg.RedirectURI)
	q.Set("signature", a.Sign(q))

	p, err := a.Fetch(ctx, http.MethodPost, a.Src.AccessTokenURL, httpclient.WithQuery(q), httpclient.WithAcceptJSON())
	if msg := p.String("error"); msg != "" {
		return oauth.Failure[*oauth.Token]("zxxk: " + msg)
	}
	if err != nil {
		return oauth.FromError[*oauth.Token](err)
	}
	if p.String("access_token") == "" {
		return oauth.Failure[*oauth.Token]("zxxk: no access_token in response")
	}
	return oauth.Success(a.NewToken(oauth.Token{
		AccessToken: p.String("access_token"),
		TokenType:   "Bearer",
		ExpiresIn:   p.Int64("expires"),
		Code:        cb.Code,
	}))
}

func (a *Adapter) UserInfo(ctx context.Context, tok *oauth.Token, _ map[string]string) oauth.UserResponse {
	p, err := a.Fetch(ctx, http.MethodGet, a.Src.UserInfoURL,
		httpclient.WithQuery(url.Values{"access_token": {tok.AccessToken}}), httpclient.WithAcceptJSON())
	if msg := p.String("error"); msg != "" {
		return oauth.Failure[*oauth.User]("zxxk: " + msg)
	}
	if err != nil {
		return oauth.FromError[*oauth.User](err)
	}

	openID := p.String("open_id")
	tok = tok.Clone()
	tok.OpenID = openID
	return oauth.Success(&oauth.User{
		UUID:       a.QualifiedID(openID),
		Username:   openID,
		Gender:     oauth.GenderUnknown,
		Source:     ProviderName,
		Token:      tok,
		Raw:        p,
		ServiceURL: a.ServiceURL(openID),
	})
}

// ServiceURL builds the login URL of the configured service for openID:
// <sso host>/login?service=<service>?<service_args>&_openid=<openID>.
// service_args is a query string in the config extras. It returns "" when
// no service is configured.
func (a *Adapter) ServiceURL(openID string) string {
	service := a.Cfg.Extra("service", "")
	if service == "" {
		return ""
	}
	u, err := url.Parse(a.Src.UserInfoURL)
	if err != nil {
		return ""
	}
	args, _ := url.ParseQuery(a.Cfg.Extra("service_args", ""))
	if args == nil {
		args = url.Values{}
	}
	args.Set("_openid", openID)
	q := url.Values{"service": {service + "?" + args.Encode()}}
	return u.Scheme + "://" + u.Host + "/login?" + q.Encode()
}
