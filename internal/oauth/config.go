package oauth

import (
	"fmt"
	"strings"
)

// Config is the application registration at one provider.
type Config struct {
	ClientID     string
	ClientSecret string // private key for RSA-signed providers
	RedirectURI  string
	PublicKey    string
	Scope        []string
	State        string

	// IgnoreCheckState disables CSRF state validation on login.
	IgnoreCheckState bool

	// Endpoint overrides. Empty values keep the source descriptor's URL.
	AuthorizeURL    string
	AccessTokenURL  string
	UserInfoURL     string
	RefreshTokenURL string
	RevokeTokenURL  string

	// Extras carries provider specific settings (sign_type, service, ...).
	Extras map[string]string
}

// Validate checks the fields every adapter needs.
func (c Config) Validate() error {
	if strings.TrimSpace(c.ClientID) == "" {
		return fmt.Errorf("%w: client_id required", ErrConfig)
	}
	if strings.TrimSpace(c.ClientSecret) == "" {
		return fmt.Errorf("%w: client_secret required", ErrConfig)
	}
	return nil
}

// Extra returns Extras[key] or def when it is missing or empty.
func (c Config) Extra(key, def string) string {
	if v, ok := c.Extras[key]; ok && v != "" {
		return v
	}
	return def
}
