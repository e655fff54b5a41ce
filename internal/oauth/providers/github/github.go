// Package github implements the GitHub adapter. GitHub is plain OAuth 2.0
// without ID tokens, so identity comes from a separate API call.
package github

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"github.com/dropDatabas3/socialauth/internal/httpclient"
	"github.com/dropDatabas3/socialauth/internal/oauth"
)

const ProviderName = "github"

// Source is the GitHub descriptor.
var Source = oauth.Source{
	Name:           ProviderName,
	AuthorizeURL:   "https://github.com/login/oauth/authorize",
	AccessTokenURL: "https://github.com/login/oauth/access_token",
	UserInfoURL:    "https://api.github.com/user",
	Scopes:         []string{"user"},
	ScopeDelimiter: " ",
}

// Adapter is the GitHub adapter.
type Adapter struct {
	oauth.Base
}

// Factory builds the adapter.
func Factory(cfg oauth.Config, src oauth.Source, deps oauth.Deps) (oauth.Adapter, error) {
	return &Adapter{Base: oauth.NewBase(cfg, src, deps)}, nil
}

// tokenResponse is the response from GitHub's token endpoint.
type tokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	Scope       string `json:"scope"`
	Error       string `json:"error,omitempty"`
	ErrorDesc   string `json:"error_description,omitempty"`
}

// ExchangeCode exchanges the authorization code for an access token.
func (a *Adapter) ExchangeCode(ctx context.Context, cb *oauth.Callback) oauth.TokenResponse {
	form := url.Values{}
	form.Set("client_id", a.Cfg.ClientID)
	form.Set("client_secret", a.Cfg.ClientSecret)
	form.Set("code", cb.Code)
	form.Set("redirect_uri", a.Cfg.RedirectURI)

	resp, err := a.HTTP.Post(ctx, a.Src.AccessTokenURL, httpclient.WithForm(form), httpclient.WithAcceptJSON())
	if err != nil {
		return oauth.FromError[*oauth.Token](err)
	}

	var tr tokenResponse
	if err := resp.JSON(&tr); err != nil {
		return oauth.Error[*oauth.Token](err.Error())
	}
	if tr.Error != "" {
		return oauth.Failure[*oauth.Token](fmt.Sprintf("github: %s - %s", tr.Error, tr.ErrorDesc))
	}
	if tr.AccessToken == "" {
		return oauth.Failure[*oauth.Token]("github: no access_token in response")
	}

	return oauth.Success(a.NewToken(oauth.Token{
		AccessToken: tr.AccessToken,
		TokenType:   tr.TokenType,
		Scope:       tr.Scope,
		Code:        cb.Code,
	}))
}

// userInfo contains user information from the GitHub API.
type userInfo struct {
	ID        int64  `json:"id"`
	Login     string `json:"login"`
	Name      string `json:"name"`
	Email     string `json:"email"`
	AvatarURL string `json:"avatar_url"`
	Blog      string `json:"blog"`
	Bio       string `json:"bio"`
	Location  string `json:"location"`
	Company   string `json:"company"`
}

type emailInfo struct {
	Email    string `json:"email"`
	Primary  bool   `json:"primary"`
	Verified bool   `json:"verified"`
}

// UserInfo fetches the profile. When the public email is hidden it falls
// back to the primary verified address from /user/emails.
func (a *Adapter) UserInfo(ctx context.Context, tok *oauth.Token, _ map[string]string) oauth.UserResponse {
	auth := httpclient.WithHeader("Authorization", "token "+tok.AccessToken)
	resp, err := a.HTTP.Get(ctx, a.Src.UserInfoURL, auth, httpclient.WithAcceptJSON())
	if err != nil {
		return oauth.FromError[*oauth.User](err)
	}

	var info userInfo
	if err := resp.JSON(&info); err != nil {
		return oauth.Error[*oauth.User](err.Error())
	}
	raw, err := resp.Map()
	if err != nil {
		return oauth.Error[*oauth.User](err.Error())
	}
	if info.ID == 0 {
		return oauth.Failure[*oauth.User]("github: user id missing: " + oauth.Payload(raw).String("message"))
	}

	email := info.Email
	if email == "" {
		email = a.primaryEmail(ctx, tok.AccessToken)
	}

	return oauth.Success(&oauth.User{
		UUID:     a.QualifiedID(strconv.FormatInt(info.ID, 10)),
		Username: info.Login,
		Nickname: info.Name,
		Avatar:   info.AvatarURL,
		Blog:     info.Blog,
		Company:  info.Company,
		Location: info.Location,
		Email:    email,
		Remark:   info.Bio,
		Gender:   oauth.GenderUnknown,
		Source:   ProviderName,
		Token:    tok,
		Raw:      raw,
	})
}

// primaryEmail returns "" on any error; email is optional.
func (a *Adapter) primaryEmail(ctx context.Context, accessToken string) string {
	u, err := url.Parse(a.Src.UserInfoURL)
	if err != nil {
		return ""
	}
	u.Path += "/emails"
	resp, err := a.Do(ctx, http.MethodGet, u.String(),
		httpclient.WithHeader("Authorization", "token "+accessToken), httpclient.WithAcceptJSON())
	if err != nil {
		return ""
	}
	var emails []emailInfo
	if err := resp.JSON(&emails); err != nil {
		return ""
	}
	for _, e := range emails {
		if e.Primary && e.Verified {
			return e.Email
		}
	}
	return ""
}
