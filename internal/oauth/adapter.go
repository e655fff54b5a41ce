package oauth

import (
	"context"
	"net/url"
	"time"

	"github.com/dropDatabas3/socialauth/internal/cache"
	"github.com/dropDatabas3/socialauth/internal/httpclient"
)

// Adapter implements the provider specific steps of the flow.
//
// Adapters never return raw errors to the engine: transport and parsing
// problems are classified with FromError, provider rejections are Failure
// responses.
type Adapter interface {
	// Source returns the descriptor with config overrides applied.
	Source() Source

	// AuthorizeParams returns the redirect query. It always contains state.
	// extra carries adapter specific inputs (e.g. zxxk's "service").
	AuthorizeParams(ctx context.Context, state string, extra map[string]string) (url.Values, error)

	// AuthorizeURL renders params onto the authorize endpoint.
	AuthorizeURL(params url.Values) string

	ExchangeCode(ctx context.Context, cb *Callback) TokenResponse
	UserInfo(ctx context.Context, tok *Token, extra map[string]string) UserResponse

	// Refresh and Revoke return NotImplemented when unsupported.
	Refresh(ctx context.Context, tok *Token) TokenResponse
	Revoke(ctx context.Context, tok *Token) RevokeResponse
}

// CallbackChecker is implemented by adapters that need more than a code in
// the callback. A non-nil error fails the login before any network call.
type CallbackChecker interface {
	CheckCallback(cb *Callback) error
}

// Deps are the collaborators handed to every adapter factory.
type Deps struct {
	HTTP  httpclient.Client
	Cache cache.Client
	Now   func() time.Time
}

// Factory builds an Adapter for one application config.
type Factory func(cfg Config, src Source, deps Deps) (Adapter, error)
