// Package slack implements the Slack (OAuth v2) adapter.
package slack

import (
	"context"
	"net/http"
	"net/url"

	"github.com/dropDatabas3/socialauth/internal/httpclient"
	"github.com/dropDatabas3/socialauth/internal/oauth"
)

const ProviderName = "slack"

var Source = oauth.Source{
	Name:           ProviderName,
	AuthorizeURL:   "https://slack.com/oauth/v2/authorize",
	AccessTokenURL: "https://slack.com/api/oauth.v2.access",
	UserInfoURL:    "https://slack.com/api/users.info",
	RevokeTokenURL: "https://slack.com/api/auth.revoke",
	Scopes:         []string{"users:read", "users:read.email"},
	ScopeDelimiter: ",",
}

type Adapter struct {
	oauth.Base
}

func Factory(cfg oauth.Config, src oauth.Source, deps oauth.Deps) (oauth.Adapter, error) {
	return &Adapter{Base: oauth.NewBase(cfg, src, deps)}, nil
}

// slackError reports an ok=false envelope.
func slackError(p oauth.Payload) string {
	if p == nil || !p.Has("ok") || p.Bool("ok") {
		return ""
	}
	return "slack: " + p.First("error", "warning")
}

func (a *Adapter) ExchangeCode(ctx context.Context, cb *oauth.Callback) oauth.TokenResponse {
	form := url.Values{}
	form.Set("code", cb.Code)
	form.Set("client_id", a.Cfg.ClientID)
	form.Set("client_secret", a.Cfg.ClientSecret)
	form.Set("redirect_uri", a.Cfg.RedirectURI)

	p, err := a.Fetch(ctx, http.MethodPost, a.Src.AccessTokenURL, httpclient.WithForm(form))
	if msg := slackError(p); msg != "" {
		return oauth.Failure[*oauth.Token](msg)
	}
	if err != nil {
		return oauth.FromError[*oauth.Token](err)
	}

	tok := a.StandardToken(p, cb.Code)
	authed := p.Object("authed_user")
	if tok.AccessToken == "" {
		tok.AccessToken = authed.String("access_token")
	}
	if tok.AccessToken == "" {
		return oauth.Failure[*oauth.Token]("slack: no access_token in response")
	}
	tok.UID = authed.String("id")
	if tok.Extra == nil {
		tok.Extra = map[string]string{}
	}
	tok.Extra["team_id"] = p.Path("team.id")
	tok.Extra["authed_user_id"] = tok.UID
	return oauth.Success(tok)
}

func (a *Adapter) UserInfo(ctx context.Context, tok *oauth.Token, _ map[string]string) oauth.UserResponse {
	p, err := a.Fetch(ctx, http.MethodGet, a.Src.UserInfoURL,
		httpclient.WithQuery(url.Values{"user": {tok.UID}}),
		httpclient.WithBearer(tok.AccessToken))
	if msg := slackError(p); msg != "" {
		return oauth.Failure[*oauth.User](msg)
	}
	if err != nil {
		return oauth.FromError[*oauth.User](err)
	}

	u := p.Object("user")
	prof := u.Object("profile")
	return oauth.Success(&oauth.User{
		UUID:     a.QualifiedID(u.String("id")),
		Username: u.String("name"),
		Nickname: prof.First("display_name", "real_name"),
		Avatar:   prof.First("image_192", "image_72"),
		Location: u.String("tz"),
		Email:    prof.String("email"),
		Gender:   oauth.GenderUnknown,
		Source:   ProviderName,
		Token:    tok,
		Raw:      p,
	})
}

func (a *Adapter) Revoke(ctx context.Context, tok *oauth.Token) oauth.RevokeResponse {
	p, err := a.Fetch(ctx, http.MethodGet, a.Src.RevokeTokenURL, httpclient.WithBearer(tok.AccessToken))
	if msg := slackError(p); msg != "" {
		return oauth.Failure[bool](msg)
	}
	if err != nil {
		return oauth.FromError[bool](err)
	}
	return oauth.Success(p.Bool("revoked"))
}
