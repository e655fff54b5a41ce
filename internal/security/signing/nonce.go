package signing

import tokens "github.com/dropDatabas3/socialauth/internal/security/token"

func defaultNonce() string { return tokens.NewNonce() }
