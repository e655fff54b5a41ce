// Package amazon implements Login with Amazon.
package amazon

import (
	"github.com/dropDatabas3/socialauth/internal/oauth"
	"github.com/dropDatabas3/socialauth/internal/oauth/providers/standard"
)

const ProviderName = "amazon"

var Source = oauth.Source{
	Name:            ProviderName,
	AuthorizeURL:    "https://www.amazon.com/ap/oa",
	AccessTokenURL:  "https://api.amazon.com/auth/o2/token",
	UserInfoURL:     "https://api.amazon.com/user/profile",
	RefreshTokenURL: "https://api.amazon.com/auth/o2/token",
	Scopes:          []string{"profile"},
	ScopeDelimiter:  " ",
}

var Factory = standard.New(standard.Variant{
	Profile: func(p oauth.Payload) standard.Profile {
		return standard.Profile{
			ID:       p.String("user_id"),
			Username: p.First("email", "name"),
			Nickname: p.String("name"),
			Email:    p.String("email"),
			Location: p.String("postal_code"),
		}
	},
})
