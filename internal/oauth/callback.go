package oauth

// Callback is the normalized form of the parameters an identity provider
// sends back to the redirect URI.
type Callback struct {
	Code             string
	State            string
	OAuthToken       string
	OAuthVerifier    string
	User             string
	Error            string
	ErrorDescription string
	ErrorURI         string

	// Extras holds every parameter not recognized above, verbatim.
	Extras map[string]string
}

// ParseCallback builds a Callback from raw redirect parameters. "code" falls
// back to "auth_code" and then "authorization_code" for providers that use
// a different name.
func ParseCallback(params map[string]string) *Callback {
	cb := &Callback{Extras: map[string]string{}}
	var authCode, authorizationCode string
	for k, v := range params {
		switch k {
		case "code":
			cb.Code = v
		case "auth_code":
			authCode = v
		case "authorization_code":
			authorizationCode = v
		case "state":
			cb.State = v
		case "oauth_token":
			cb.OAuthToken = v
		case "oauth_verifier":
			cb.OAuthVerifier = v
		case "user":
			cb.User = v
		case "error":
			cb.Error = v
		case "error_description":
			cb.ErrorDescription = v
		case "error_uri":
			cb.ErrorURI = v
		default:
			cb.Extras[k] = v
		}
	}
	if cb.Code == "" {
		cb.Code = authCode
	}
	if cb.Code == "" {
		cb.Code = authorizationCode
	}
	return cb
}

// Get returns an unrecognized callback parameter.
func (c *Callback) Get(key string) string {
	if c == nil {
		return ""
	}
	return c.Extras[key]
}
