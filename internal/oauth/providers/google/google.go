// Package google implements Google sign-in on top of the standard adapter.
// The id_token is verified against Google's published keys.
package google

import (
	"github.com/dropDatabas3/socialauth/internal/oauth"
	"github.com/dropDatabas3/socialauth/internal/oauth/providers/standard"
)

const ProviderName = "google"

var Source = oauth.Source{
	Name:            ProviderName,
	AuthorizeURL:    "https://accounts.google.com/o/oauth2/v2/auth",
	AccessTokenURL:  "https://oauth2.googleapis.com/token",
	UserInfoURL:     "https://www.googleapis.com/oauth2/v3/userinfo",
	RefreshTokenURL: "https://oauth2.googleapis.com/token",
	RevokeTokenURL:  "https://oauth2.googleapis.com/revoke",
	Scopes:          []string{"openid", "profile", "email"},
	ScopeDelimiter:  " ",
}

var Factory = standard.New(standard.Variant{
	Issuer:  "https://accounts.google.com",
	JWKSURL: "https://www.googleapis.com/oauth2/v3/certs",
	AuthParams: map[string]string{
		"access_type":            "offline",
		"include_granted_scopes": "true",
	},
	Profile: func(p oauth.Payload) standard.Profile {
		return standard.Profile{
			ID:       p.String("sub"),
			Username: p.String("email"),
			Nickname: p.First("name", "given_name"),
			Avatar:   p.String("picture"),
			Email:    p.String("email"),
			Location: p.String("locale"),
		}
	},
	RevokeParam: "token",
})
