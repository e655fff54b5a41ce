package oauth

import (
	"context"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/dropDatabas3/socialauth/internal/cache"
	"github.com/dropDatabas3/socialauth/internal/httpclient"
)

// Base is the shared default strategy embedded by adapters. It provides the
// standard authorize parameters and URL, and NotImplemented refresh/revoke.
// Adapters override only the steps that differ.
type Base struct {
	Cfg   Config
	Src   Source
	HTTP  httpclient.Client
	Cache cache.Client

	now func() time.Time
}

// NewBase applies the config endpoint overrides to src and fills missing
// deps with process defaults.
func NewBase(cfg Config, src Source, deps Deps) Base {
	if deps.HTTP == nil {
		deps.HTTP = httpclient.MustDefault()
	}
	if deps.Cache == nil {
		deps.Cache = cache.Default()
	}
	if deps.Now == nil {
		deps.Now = time.Now
	}
	return Base{
		Cfg:   cfg,
		Src:   src.WithOverrides(cfg),
		HTTP:  deps.HTTP,
		Cache: deps.Cache,
		now:   deps.Now,
	}
}

func (b *Base) Source() Source { return b.Src }

// Now returns the adapter clock.
func (b *Base) Now() time.Time {
	if b.now == nil {
		return time.Now()
	}
	return b.now()
}

// Scope resolves the scope string for the authorize request.
func (b *Base) Scope() string { return ResolveScope(b.Cfg, b.Src) }

// DefaultAuthorizeParams: response_type=code, client_id, redirect_uri, state
// and scope when one resolves.
func (b *Base) DefaultAuthorizeParams(state string) url.Values {
	v := url.Values{}
	v.Set("response_type", "code")
	v.Set("client_id", b.Cfg.ClientID)
	v.Set("redirect_uri", b.Cfg.RedirectURI)
	v.Set("state", state)
	if s := b.Scope(); s != "" {
		v.Set("scope", s)
	}
	return v
}

func (b *Base) AuthorizeParams(_ context.Context, state string, _ map[string]string) (url.Values, error) {
	return b.DefaultAuthorizeParams(state), nil
}

func (b *Base) AuthorizeURL(params url.Values) string {
	return JoinURL(b.Src.AuthorizeURL, params)
}

func (b *Base) Refresh(context.Context, *Token) TokenResponse {
	return NotImplemented[*Token](b.Src.Name + ": refresh not supported")
}

func (b *Base) Revoke(context.Context, *Token) RevokeResponse {
	return NotImplemented[bool](b.Src.Name + ": revoke not supported")
}

// QualifiedID prefixes a provider user id with the source name.
func (b *Base) QualifiedID(id string) string {
	if id == "" {
		return ""
	}
	return b.Src.Name + "_" + id
}

// NewToken stamps kind and creation time on a token built by an adapter.
func (b *Base) NewToken(t Token) *Token {
	if t.Kind == "" {
		t.Kind = KindBearer
	}
	if t.CreatedAt.IsZero() {
		t.CreatedAt = b.Now()
	}
	return &t
}

// JoinURL appends params to base, keeping any query base already has.
func JoinURL(base string, params url.Values) string {
	if len(params) == 0 {
		return base
	}
	sep := "?"
	if strings.Contains(base, "?") {
		sep = "&"
	}
	return base + sep + params.Encode()
}

// Fetch performs a call and decodes a JSON object body. A non-2xx reply with
// a JSON body is returned as the payload together with the status error, so
// the adapter can surface the provider's own message before classifying err.
func (b *Base) Fetch(ctx context.Context, method, rawURL string, opts ...httpclient.Option) (Payload, error) {
	resp, err := b.Do(ctx, method, rawURL, opts...)
	if resp == nil {
		return nil, err
	}
	m, derr := resp.Map()
	if derr != nil {
		if err != nil {
			return nil, err
		}
		return nil, derr
	}
	return Payload(m), err
}

// Do performs a raw call on the adapter transport.
func (b *Base) Do(ctx context.Context, method, rawURL string, opts ...httpclient.Option) (*httpclient.Response, error) {
	switch method {
	case http.MethodPost:
		return b.HTTP.Post(ctx, rawURL, opts...)
	case http.MethodPut:
		return b.HTTP.Put(ctx, rawURL, opts...)
	case http.MethodDelete:
		return b.HTTP.Delete(ctx, rawURL, opts...)
	default:
		return b.HTTP.Get(ctx, rawURL, opts...)
	}
}

var standardTokenFields = []string{
	"access_token", "token_type", "expires_in", "refresh_token", "scope", "id_token",
	"uid", "openid", "open_id", "unionid", "union_id",
}

// StandardToken maps the usual OAuth2 token fields of p. Unmapped scalar
// fields are kept in Token.Extra.
func (b *Base) StandardToken(p Payload, code string) *Token {
	return b.NewToken(Token{
		AccessToken:  p.String("access_token"),
		TokenType:    p.String("token_type"),
		ExpiresIn:    p.Int64("expires_in"),
		RefreshToken: p.String("refresh_token"),
		Scope:        p.String("scope"),
		IDToken:      p.String("id_token"),
		UID:          p.String("uid"),
		OpenID:       p.First("openid", "open_id"),
		UnionID:      p.First("unionid", "union_id"),
		Code:         code,
		Extra:        p.Strings(standardTokenFields...),
	})
}
