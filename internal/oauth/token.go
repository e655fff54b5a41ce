package oauth

import "time"

// TokenKind tells how a credential authenticates later calls.
type TokenKind string

const (
	// KindBearer is a plain OAuth2 access token.
	KindBearer TokenKind = "bearer"
	// KindOAuth1 is an OAuth1.0a token that must be paired with TokenSecret
	// to sign every authenticated request.
	KindOAuth1 TokenKind = "oauth1"
	// KindSession is a per-session symmetric key (not a capability token).
	KindSession TokenKind = "session"
)

// Token is the normalized credential returned by a token exchange.
// It is not mutated after construction; a refresh yields a new Token.
type Token struct {
	AccessToken  string            `json:"access_token"`
	TokenType    string            `json:"token_type,omitempty"`
	ExpiresIn    int64             `json:"expires_in,omitempty"`
	RefreshToken string            `json:"refresh_token,omitempty"`
	UID          string            `json:"uid,omitempty"`
	OpenID       string            `json:"open_id,omitempty"`
	UnionID      string            `json:"union_id,omitempty"`
	Scope        string            `json:"scope,omitempty"`
	IDToken      string            `json:"id_token,omitempty"`
	Code         string            `json:"code,omitempty"`
	Kind         TokenKind         `json:"kind"`
	TokenSecret  string            `json:"token_secret,omitempty"`
	CreatedAt    time.Time         `json:"created_at"`
	Extra        map[string]string `json:"extra,omitempty"`
}

// ExpiresAt returns the wall-clock expiry, or the zero time when the token
// carries no lifetime.
func (t *Token) ExpiresAt() time.Time {
	if t == nil || t.ExpiresIn <= 0 || t.CreatedAt.IsZero() {
		return time.Time{}
	}
	return t.CreatedAt.Add(time.Duration(t.ExpiresIn) * time.Second)
}

// Expired reports whether the token is past its lifetime at now.
// Tokens without a lifetime never expire.
func (t *Token) Expired(now time.Time) bool {
	exp := t.ExpiresAt()
	if exp.IsZero() {
		return false
	}
	return !now.Before(exp)
}

// Get returns a side-channel value or "".
func (t *Token) Get(key string) string {
	if t == nil || t.Extra == nil {
		return ""
	}
	return t.Extra[key]
}

// Clone returns a copy of t with its own Extra map. User-info steps that learn
// new identifiers attach them to the clone, leaving the caller's token as is.
func (t *Token) Clone() *Token {
	if t == nil {
		return nil
	}
	c := *t
	if t.Extra != nil {
		c.Extra = make(map[string]string, len(t.Extra))
		for k, v := range t.Extra {
			c.Extra[k] = v
		}
	}
	return &c
}
