// Package twitter implements the Twitter OAuth 1.0a three-legged adapter.
//
// Authorize obtains a request token and keeps its secret in the cache until
// the callback returns oauth_token and oauth_verifier. The CSRF state rides
// on the oauth_callback URL so the flow can check it on return.
package twitter

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/dropDatabas3/socialauth/internal/httpclient"
	"github.com/dropDatabas3/socialauth/internal/oauth"
	"github.com/dropDatabas3/socialauth/internal/observability/logger"
	"github.com/dropDatabas3/socialauth/internal/security/signing"
)

const ProviderName = "twitter"

var Source = oauth.Source{
	Name:            ProviderName,
	AuthorizeURL:    "https://api.twitter.com/oauth/authenticate",
	AccessTokenURL:  "https://api.twitter.com/oauth/access_token",
	UserInfoURL:     "https://api.twitter.com/1.1/account/verify_credentials.json",
	RequestTokenURL: "https://api.twitter.com/oauth/request_token",
}

type Adapter struct {
	oauth.Base
	signer signing.OAuth1
}

func Factory(cfg oauth.Config, src oauth.Source, deps oauth.Deps) (oauth.Adapter, error) {
	a := &Adapter{Base: oauth.NewBase(cfg, src, deps)}
	a.signer = signing.OAuth1{ConsumerKey: cfg.ClientID, ConsumerSecret: cfg.ClientSecret, Now: a.Now}
	return a, nil
}

// SecretCacheKey is the cache key of a request token secret.
func SecretCacheKey(requestToken string) string { return "twitter_token_secret_" + requestToken }

func (a *Adapter) callbackURL(state string) string {
	if state == "" {
		return a.Cfg.RedirectURI
	}
	return oauth.JoinURL(a.Cfg.RedirectURI, url.Values{"state": {state}})
}

// AuthorizeParams performs the request-token leg.
func (a *Adapter) AuthorizeParams(ctx context.Context, state string, _ map[string]string) (url.Values, error) {
	endpoint := a.Src.RequestTokenURL
	auth := a.signer.Header(http.MethodPost, endpoint, "", "", nil,
		map[string]string{"oauth_callback": a.callbackURL(state)})

	resp, err := a.HTTP.Post(ctx, endpoint, httpclient.WithHeader("Authorization", auth))
	if err != nil {
		logger.ForAdapter(ctx, ProviderName, "RequestToken").Warn("request token failed", logger.Err(err))
		return nil, fmt.Errorf("twitter: request token: %w", err)
	}
	form, err := resp.Form()
	if err != nil {
		return nil, fmt.Errorf("twitter: request token: %w", err)
	}
	token, secret := form.Get("oauth_token"), form.Get("oauth_token_secret")
	if token == "" || secret == "" {
		return nil, fmt.Errorf("twitter: request token missing in response")
	}
	if err := a.Cache.Set(ctx, SecretCacheKey(token), secret, 0); err != nil {
		return nil, fmt.Errorf("twitter: cache request token: %w", err)
	}
	return url.Values{"oauth_token": {token}}, nil
}

func (a *Adapter) CheckCallback(cb *oauth.Callback) error {
	if cb.OAuthToken == "" || cb.OAuthVerifier == "" {
		return fmt.Errorf("twitter: oauth_token and oauth_verifier required")
	}
	return nil
}

func (a *Adapter) ExchangeCode(ctx context.Context, cb *oauth.Callback) oauth.TokenResponse {
	key := SecretCacheKey(cb.OAuthToken)
	secret, err := a.Cache.Get(ctx, key)
	if err != nil {
		return oauth.Failure[*oauth.Token]("twitter: request token unknown or expired")
	}
	if err := a.Cache.Delete(ctx, key); err != nil {
		logger.ForAdapter(ctx, ProviderName, "ExchangeCode").Warn("request token secret not deleted",
			logger.String("cache_key", key), logger.Err(err))
	}

	endpoint := a.Src.AccessTokenURL
	auth := a.signer.Header(http.MethodPost, endpoint, cb.OAuthToken, secret, nil,
		map[string]string{"oauth_verifier": cb.OAuthVerifier})
	resp, err := a.HTTP.Post(ctx, endpoint, httpclient.WithHeader("Authorization", auth))
	if err != nil {
		if resp != nil && len(resp.Body) > 0 {
			return oauth.Failure[*oauth.Token]("twitter: " + resp.Text())
		}
		return oauth.FromError[*oauth.Token](err)
	}
	form, err := resp.Form()
	if err != nil {
		return oauth.Error[*oauth.Token](err.Error())
	}
	if form.Get("oauth_token") == "" {
		return oauth.Failure[*oauth.Token]("twitter: no oauth_token in response")
	}
	return oauth.Success(a.NewToken(oauth.Token{
		AccessToken: form.Get("oauth_token"),
		TokenSecret: form.Get("oauth_token_secret"),
		UID:         form.Get("user_id"),
		Kind:        oauth.KindOAuth1,
		Extra:       map[string]string{"screen_name": form.Get("screen_name")},
	}))
}

func (a *Adapter) UserInfo(ctx context.Context, tok *oauth.Token, _ map[string]string) oauth.UserResponse {
	params := map[string]string{"include_email": "true"}
	endpoint := a.Src.UserInfoURL
	auth := a.signer.Header(http.MethodGet, endpoint, tok.AccessToken, tok.TokenSecret, params, nil)

	p, err := a.Fetch(ctx, http.MethodGet, endpoint,
		httpclient.WithQuery(url.Values{"include_email": {"true"}}),
		httpclient.WithHeader("Authorization", auth))
	if errs, ok := p["errors"].([]any); ok && len(errs) > 0 {
		msg := "request rejected"
		if e, ok := errs[0].(map[string]any); ok {
			msg = oauth.Payload(e).First("message", "code")
		}
		return oauth.Failure[*oauth.User]("twitter: " + msg)
	}
	if err != nil {
		return oauth.FromError[*oauth.User](err)
	}

	return oauth.Success(&oauth.User{
		UUID:     a.QualifiedID(p.First("id_str", "id")),
		Username: p.String("screen_name"),
		Nickname: p.String("name"),
		Avatar:   normalAvatar(p.String("profile_image_url_https")),
		Blog:     p.String("url"),
		Location: p.String("location"),
		Email:    p.String("email"),
		Remark:   p.String("description"),
		Gender:   oauth.GenderUnknown,
		Source:   ProviderName,
		Token:    tok,
		Raw:      p,
	})
}

// normalAvatar drops the "_normal" size suffix to get the original image.
func normalAvatar(u string) string {
	return strings.Replace(u, "_normal", "", 1)
}
