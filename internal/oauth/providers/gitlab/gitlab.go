// Package gitlab implements GitLab sign-in. Self-managed instances override
// the endpoints (and the issuer/jwks_url extras) in the config.
package gitlab

import (
	"github.com/dropDatabas3/socialauth/internal/oauth"
	"github.com/dropDatabas3/socialauth/internal/oauth/providers/standard"
)

const ProviderName = "gitlab"

var Source = oauth.Source{
	Name:            ProviderName,
	AuthorizeURL:    "https://gitlab.com/oauth/authorize",
	AccessTokenURL:  "https://gitlab.com/oauth/token",
	UserInfoURL:     "https://gitlab.com/api/v4/user",
	RefreshTokenURL: "https://gitlab.com/oauth/token",
	RevokeTokenURL:  "https://gitlab.com/oauth/revoke",
	Scopes:          []string{"read_user", "openid", "profile", "email"},
	ScopeDelimiter:  " ",
}

var Factory = standard.New(standard.Variant{
	Issuer:  "https://gitlab.com",
	JWKSURL: "https://gitlab.com/oauth/discovery/keys",
	Profile: func(p oauth.Payload) standard.Profile {
		return standard.Profile{
			ID:       p.String("id"),
			Username: p.String("username"),
			Nickname: p.String("name"),
			Avatar:   p.String("avatar_url"),
			Blog:     p.First("website_url", "web_url"),
			Company:  p.String("organization"),
			Location: p.String("location"),
			Email:    p.First("email", "public_email"),
			Remark:   p.String("bio"),
		}
	},
	RevokeParam:      "token",
	RevokeWithClient: true,
})
