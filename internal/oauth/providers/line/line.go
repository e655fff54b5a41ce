// Package line implements LINE Login v2.1.
package line

import (
	"github.com/dropDatabas3/socialauth/internal/oauth"
	"github.com/dropDatabas3/socialauth/internal/oauth/providers/standard"
)

const ProviderName = "line"

var Source = oauth.Source{
	Name:            ProviderName,
	AuthorizeURL:    "https://access.line.me/oauth2/v2.1/authorize",
	AccessTokenURL:  "https://api.line.me/oauth2/v2.1/token",
	UserInfoURL:     "https://api.line.me/v2/profile",
	RefreshTokenURL: "https://api.line.me/oauth2/v2.1/token",
	RevokeTokenURL:  "https://api.line.me/oauth2/v2.1/revoke",
	Scopes:          []string{"profile", "openid", "email"},
	ScopeDelimiter:  " ",
}

// LINE signs id_tokens with the channel secret (HS256), so the claims are
// decoded rather than checked against a key set.
var Factory = standard.New(standard.Variant{
	Profile: func(p oauth.Payload) standard.Profile {
		return standard.Profile{
			ID:       p.String("userId"),
			Username: p.String("displayName"),
			Nickname: p.String("displayName"),
			Avatar:   p.String("pictureUrl"),
			Remark:   p.String("statusMessage"),
		}
	},
	RevokeParam:      "access_token",
	RevokeWithClient: true,
})
