package standard

import (
	"context"
	"errors"
	"fmt"

	"github.com/dropDatabas3/socialauth/internal/oauth"
	jwtv5 "github.com/golang-jwt/jwt/v5"
)

// IDClaims are the OpenID Connect claims used to complete a Profile.
type IDClaims struct {
	Sub           string
	Iss           string
	Email         string
	EmailVerified bool
	Name          string
	GivenName     string
	FamilyName    string
	Nickname      string
	Picture       string
	Locale        string
	Gender        string
	Raw           jwtv5.MapClaims
}

// claims verifies raw against the provider JWKS when a verifier is
// configured, otherwise decodes it without verification (the token came
// straight from the token endpoint over TLS).
func (a *Adapter) claims(ctx context.Context, raw string) (*IDClaims, error) {
	m := jwtv5.MapClaims{}
	if a.verifier != nil {
		idt, err := a.verifier.Verify(a.ctx(ctx), raw)
		if err != nil {
			return nil, fmt.Errorf("invalid id_token: %w", err)
		}
		if err := idt.Claims(&m); err != nil {
			return nil, fmt.Errorf("id_token claims: %w", err)
		}
	} else {
		if _, _, err := jwtv5.NewParser().ParseUnverified(raw, m); err != nil {
			return nil, fmt.Errorf("malformed id_token: %w", err)
		}
	}
	if strClaim(m, "sub") == "" {
		return nil, errors.New("id_token without sub")
	}
	return &IDClaims{
		Raw:           m,
		Sub:           strClaim(m, "sub"),
		Iss:           strClaim(m, "iss"),
		Email:         strClaim(m, "email"),
		EmailVerified: boolClaim(m, "email_verified"),
		Name:          strClaim(m, "name"),
		GivenName:     strClaim(m, "given_name"),
		FamilyName:    strClaim(m, "family_name"),
		Nickname:      strClaim(m, "nickname"),
		Picture:       strClaim(m, "picture"),
		Locale:        strClaim(m, "locale"),
		Gender:        strClaim(m, "gender"),
	}, nil
}

// fill sets the empty fields of p.
func (c *IDClaims) fill(p *Profile) {
	set := func(dst *string, vals ...string) {
		for _, v := range vals {
			if *dst == "" && v != "" {
				*dst = v
			}
		}
	}
	set(&p.ID, c.Sub)
	set(&p.Username, c.Nickname, c.Email, c.Name)
	set(&p.Nickname, c.Name, c.GivenName)
	set(&p.Avatar, c.Picture)
	set(&p.Email, c.Email)
	set(&p.Location, c.Locale)
	if p.Gender == "" || p.Gender == oauth.GenderUnknown {
		p.Gender = oauth.ParseGender(c.Gender)
	}
}

func strClaim(m jwtv5.MapClaims, k string) string {
	if s, _ := m[k].(string); s != "" {
		return s
	}
	return ""
}

func boolClaim(m jwtv5.MapClaims, k string) bool {
	if b, ok := m[k].(bool); ok {
		return b
	}
	return false
}
