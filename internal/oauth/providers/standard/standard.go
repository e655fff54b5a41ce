// Package standard is the adapter shared by providers that follow RFC 6749
// closely enough for golang.org/x/oauth2: the code exchange and refresh go
// through oauth2.Config, the profile comes from a JSON userinfo endpoint
// and, when the token response carries an id_token, its claims fill the
// fields the profile left empty.
package standard

import (
	"context"
	"errors"
	"math"
	"net/http"
	"net/url"
	"time"

	"github.com/coreos/go-oidc/v3/oidc"
	"github.com/dropDatabas3/socialauth/internal/httpclient"
	"github.com/dropDatabas3/socialauth/internal/oauth"
	"golang.org/x/oauth2"
)

// Profile is the provider-neutral subset of a userinfo document.
type Profile struct {
	ID       string
	Username string
	Nickname string
	Avatar   string
	Blog     string
	Company  string
	Location string
	Email    string
	Remark   string
	Gender   oauth.Gender
}

// Variant describes how a provider differs from the plain protocol.
type Variant struct {
	// Issuer and JWKSURL enable id_token verification. Both may be
	// overridden with the config extras "issuer" and "jwks_url"; an empty
	// Issuer skips the issuer check (multi-tenant providers).
	Issuer  string
	JWKSURL string

	// AuthParams are added to every authorize request.
	AuthParams map[string]string

	// Profile maps a userinfo document. Nil means the identity comes from
	// the id_token alone.
	Profile func(p oauth.Payload) Profile

	// ClaimExtras are id_token claims copied into Token.Extra.
	ClaimExtras []string

	// RevokeParam names the form field carrying the token on revoke.
	// RevokeWithClient adds client_id and client_secret to the form.
	RevokeParam      string
	RevokeWithClient bool
}

type Adapter struct {
	oauth.Base
	variant  Variant
	conf     *oauth2.Config
	client   *http.Client
	verifier *oidc.IDTokenVerifier
}

type httpClientProvider interface {
	HTTPClient() *http.Client
}

// New returns a Factory for variant.
func New(variant Variant) oauth.Factory {
	return func(cfg oauth.Config, src oauth.Source, deps oauth.Deps) (oauth.Adapter, error) {
		a := &Adapter{Base: oauth.NewBase(cfg, src, deps), variant: variant}
		a.client = http.DefaultClient
		if hp, ok := a.HTTP.(httpClientProvider); ok {
			a.client = hp.HTTPClient()
		}
		a.conf = &oauth2.Config{
			ClientID:     cfg.ClientID,
			ClientSecret: cfg.ClientSecret,
			RedirectURL:  cfg.RedirectURI,
			Endpoint: oauth2.Endpoint{
				AuthURL:   a.Src.AuthorizeURL,
				TokenURL:  a.Src.AccessTokenURL,
				AuthStyle: oauth2.AuthStyleInParams,
			},
		}
		if s := a.Scope(); s != "" {
			a.conf.Scopes = []string{s}
		}

		jwksURL := cfg.Extra("jwks_url", variant.JWKSURL)
		if jwksURL != "" && cfg.Extra("verify_id_token", "true") != "false" {
			keys := oidc.NewRemoteKeySet(oidc.ClientContext(context.Background(), a.client), jwksURL)
			issuer := cfg.Extra("issuer", variant.Issuer)
			a.verifier = oidc.NewVerifier(issuer, keys, &oidc.Config{
				ClientID:        cfg.ClientID,
				SkipIssuerCheck: issuer == "",
				Now:             a.Now,
			})
		}
		return a, nil
	}
}

func (a *Adapter) ctx(ctx context.Context) context.Context {
	return context.WithValue(ctx, oauth2.HTTPClient, a.client)
}

// AuthorizeParams are the query of oauth2.Config.AuthCodeURL plus the
// provider's fixed parameters.
func (a *Adapter) AuthorizeParams(_ context.Context, state string, _ map[string]string) (url.Values, error) {
	opts := make([]oauth2.AuthCodeOption, 0, len(a.variant.AuthParams))
	for k, v := range a.variant.AuthParams {
		opts = append(opts, oauth2.SetAuthURLParam(k, v))
	}
	u, err := url.Parse(a.conf.AuthCodeURL(state, opts...))
	if err != nil {
		return nil, err
	}
	return u.Query(), nil
}

func (a *Adapter) ExchangeCode(ctx context.Context, cb *oauth.Callback) oauth.TokenResponse {
	t, err := a.conf.Exchange(a.ctx(ctx), cb.Code)
	if err != nil {
		return tokenError(a.Src.Name, err)
	}
	return oauth.Success(a.token(t, cb.Code))
}

func (a *Adapter) Refresh(ctx context.Context, tok *oauth.Token) oauth.TokenResponse {
	if tok.RefreshToken == "" {
		return oauth.Failure[*oauth.Token](a.Src.Name + ": refresh_token required")
	}
	conf := *a.conf
	conf.Endpoint.TokenURL = a.Src.RefreshTokenURL
	if conf.Endpoint.TokenURL == "" {
		conf.Endpoint.TokenURL = a.Src.AccessTokenURL
	}
	t, err := conf.TokenSource(a.ctx(ctx), &oauth2.Token{RefreshToken: tok.RefreshToken}).Token()
	if err != nil {
		return tokenError(a.Src.Name, err)
	}
	out := a.token(t, "")
	if out.RefreshToken == "" {
		out.RefreshToken = tok.RefreshToken
	}
	return oauth.Success(out)
}

func tokenError(name string, err error) oauth.TokenResponse {
	var re *oauth2.RetrieveError
	if errors.As(err, &re) {
		msg := re.ErrorDescription
		if msg == "" {
			msg = re.ErrorCode
		}
		if msg == "" && re.Response != nil {
			msg = re.Response.Status
		}
		return oauth.Failure[*oauth.Token](name + ": " + msg)
	}
	return oauth.FromError[*oauth.Token](err)
}

func (a *Adapter) token(t *oauth2.Token, code string) *oauth.Token {
	tok := oauth.Token{
		AccessToken:  t.AccessToken,
		TokenType:    t.TokenType,
		RefreshToken: t.RefreshToken,
		Code:         code,
	}
	if !t.Expiry.IsZero() {
		tok.ExpiresIn = int64(math.Round(time.Until(t.Expiry).Seconds()))
	}
	if s, ok := t.Extra("id_token").(string); ok {
		tok.IDToken = s
	}
	if s, ok := t.Extra("scope").(string); ok {
		tok.Scope = s
	}
	return a.NewToken(tok)
}

func (a *Adapter) UserInfo(ctx context.Context, tok *oauth.Token, _ map[string]string) oauth.UserResponse {
	var (
		prof Profile
		raw  oauth.Payload
	)
	if a.variant.Profile != nil && a.Src.UserInfoURL != "" {
		p, err := a.Fetch(ctx, http.MethodGet, a.Src.UserInfoURL, httpclient.WithBearer(tok.AccessToken))
		if err != nil {
			if msg := apiError(p); msg != "" {
				return oauth.Failure[*oauth.User](a.Src.Name + ": " + msg)
			}
			return oauth.FromError[*oauth.User](err)
		}
		prof, raw = a.variant.Profile(p), p
	}

	if tok.IDToken != "" {
		claims, err := a.claims(ctx, tok.IDToken)
		if err != nil {
			return oauth.Failure[*oauth.User](a.Src.Name + ": " + err.Error())
		}
		claims.fill(&prof)
		if len(a.variant.ClaimExtras) > 0 {
			tok = tok.Clone()
			for _, k := range a.variant.ClaimExtras {
				if v := strClaim(claims.Raw, k); v != "" {
					if tok.Extra == nil {
						tok.Extra = map[string]string{}
					}
					tok.Extra[k] = v
				}
			}
		}
		if raw == nil {
			raw = oauth.Payload(claims.Raw)
		}
	}

	if prof.ID == "" {
		return oauth.Failure[*oauth.User](a.Src.Name + ": no user id in profile")
	}
	if prof.Gender == "" {
		prof.Gender = oauth.GenderUnknown
	}
	return oauth.Success(&oauth.User{
		UUID:     a.QualifiedID(prof.ID),
		Username: prof.Username,
		Nickname: prof.Nickname,
		Avatar:   prof.Avatar,
		Blog:     prof.Blog,
		Company:  prof.Company,
		Location: prof.Location,
		Email:    prof.Email,
		Remark:   prof.Remark,
		Gender:   prof.Gender,
		Source:   a.Src.Name,
		Token:    tok,
		Raw:      raw,
	})
}

// apiError extracts the message of the common JSON error shapes.
func apiError(p oauth.Payload) string {
	if p == nil {
		return ""
	}
	if e := p.Object("error"); len(e) > 0 {
		return e.First("message", "code")
	}
	return p.First("error_description", "error", "message")
}

func (a *Adapter) Revoke(ctx context.Context, tok *oauth.Token) oauth.RevokeResponse {
	if a.Src.RevokeTokenURL == "" || a.variant.RevokeParam == "" {
		return a.Base.Revoke(ctx, tok)
	}
	form := url.Values{}
	form.Set(a.variant.RevokeParam, tok.AccessToken)
	if a.variant.RevokeWithClient {
		form.Set("client_id", a.Cfg.ClientID)
		form.Set("client_secret", a.Cfg.ClientSecret)
	}
	resp, err := a.HTTP.Post(ctx, a.Src.RevokeTokenURL, httpclient.WithForm(form))
	if err != nil {
		if resp != nil {
			if m, derr := resp.Map(); derr == nil {
				if msg := apiError(m); msg != "" {
					return oauth.Failure[bool](a.Src.Name + ": " + msg)
				}
			}
		}
		return oauth.FromError[bool](err)
	}
	return oauth.Success(true)
}
