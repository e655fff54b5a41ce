// Package microsoft implements Microsoft identity platform (v2.0) sign-in.
// The common endpoint serves every tenant, so the id_token issuer is not
// pinned; tid and oid are kept on the token.
package microsoft

import (
	"github.com/dropDatabas3/socialauth/internal/oauth"
	"github.com/dropDatabas3/socialauth/internal/oauth/providers/standard"
)

const ProviderName = "microsoft"

var Source = oauth.Source{
	Name:            ProviderName,
	AuthorizeURL:    "https://login.microsoftonline.com/common/oauth2/v2.0/authorize",
	AccessTokenURL:  "https://login.microsoftonline.com/common/oauth2/v2.0/token",
	UserInfoURL:     "https://graph.microsoft.com/v1.0/me",
	RefreshTokenURL: "https://login.microsoftonline.com/common/oauth2/v2.0/token",
	Scopes:          []string{"openid", "profile", "email", "offline_access", "User.Read"},
	ScopeDelimiter:  " ",
}

var Factory = standard.New(standard.Variant{
	JWKSURL:     "https://login.microsoftonline.com/common/discovery/v2.0/keys",
	AuthParams:  map[string]string{"response_mode": "query"},
	ClaimExtras: []string{"tid", "oid"},
	Profile: func(p oauth.Payload) standard.Profile {
		return standard.Profile{
			ID:       p.String("id"),
			Username: p.First("userPrincipalName", "mail"),
			Nickname: p.String("displayName"),
			Company:  p.String("companyName"),
			Location: p.String("officeLocation"),
			Email:    p.First("mail", "userPrincipalName"),
			Remark:   p.String("jobTitle"),
		}
	},
})
