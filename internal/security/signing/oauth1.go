package signing

import (
	"crypto/hmac"
	"crypto/sha1" //nolint:gosec // mandated by OAuth1.0a HMAC-SHA1
	"encoding/base64"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"time"
)

// OAuth1 signs requests with HMAC-SHA1 as defined by RFC 5849.
type OAuth1 struct {
	ConsumerKey    string
	ConsumerSecret string

	// Now and Nonce default to time.Now and a random value.
	Now   func() time.Time
	Nonce func() string
}

// Header returns the Authorization header value for a request. params are
// the request's query/form parameters (they are signed but not placed in the
// header); token and tokenSecret may be empty for the request-token step.
// extraOAuth adds protocol parameters such as oauth_callback or oauth_verifier.
func (s OAuth1) Header(method, rawURL, token, tokenSecret string, params, extraOAuth map[string]string) string {
	oauthParams := s.protocolParams(token, extraOAuth)

	all := make(map[string]string, len(params)+len(oauthParams))
	for k, v := range params {
		all[k] = v
	}
	for k, v := range oauthParams {
		all[k] = v
	}
	oauthParams["oauth_signature"] = s.Sign(method, rawURL, all, tokenSecret)

	keys := make([]string, 0, len(oauthParams))
	for k := range oauthParams {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, PercentEncode(k)+`="`+PercentEncode(oauthParams[k])+`"`)
	}
	return "OAuth " + strings.Join(parts, ", ")
}

func (s OAuth1) protocolParams(token string, extra map[string]string) map[string]string {
	now := time.Now
	if s.Now != nil {
		now = s.Now
	}
	nonce := defaultNonce
	if s.Nonce != nil {
		nonce = s.Nonce
	}
	p := map[string]string{
		"oauth_consumer_key":     s.ConsumerKey,
		"oauth_nonce":            nonce(),
		"oauth_signature_method": "HMAC-SHA1",
		"oauth_timestamp":        strconv.FormatInt(now().Unix(), 10),
		"oauth_version":          "1.0",
	}
	if token != "" {
		p["oauth_token"] = token
	}
	for k, v := range extra {
		p[k] = v
	}
	return p
}

// Sign returns the Base64 HMAC-SHA1 signature of the signature base string
// keyed with enc(consumerSecret)&enc(tokenSecret).
func (s OAuth1) Sign(method, rawURL string, params map[string]string, tokenSecret string) string {
	key := PercentEncode(s.ConsumerSecret) + "&" + PercentEncode(tokenSecret)
	mac := hmac.New(sha1.New, []byte(key))
	mac.Write([]byte(BaseString(method, rawURL, params)))
	return base64.StdEncoding.EncodeToString(mac.Sum(nil))
}

// BaseString builds METHOD&enc(url)&enc(sorted params). Query parameters of
// rawURL are folded into the parameter set.
func BaseString(method, rawURL string, params map[string]string) string {
	all := map[string]string{}
	base := rawURL
	if u, err := url.Parse(rawURL); err == nil {
		for k, vs := range u.Query() {
			if len(vs) > 0 {
				all[k] = vs[0]
			}
		}
		u.RawQuery = ""
		u.Fragment = ""
		u.Scheme = strings.ToLower(u.Scheme)
		u.Host = strings.ToLower(u.Host)
		base = u.String()
	}
	for k, v := range params {
		all[k] = v
	}

	keys := make([]string, 0, len(all))
	for k := range all {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	pairs := make([]string, 0, len(keys))
	for _, k := range keys {
		pairs = append(pairs, PercentEncode(k)+"="+PercentEncode(all[k]))
	}
	return strings.ToUpper(method) + "&" + PercentEncode(base) + "&" + PercentEncode(strings.Join(pairs, "&"))
}

// PercentEncode encodes s per RFC 3986: only ALPHA, DIGIT and "-._~" are left
// unescaped.
func PercentEncode(s string) string {
	const hexd = "0123456789ABCDEF"
	var b strings.Builder
	for i := 0; i < len(s); i++ {
		c := s[i]
		if ('A' <= c && c <= 'Z') || ('a' <= c && c <= 'z') || ('0' <= c && c <= '9') ||
			c == '-' || c == '.' || c == '_' || c == '~' {
			b.WriteByte(c)
			continue
		}
		b.WriteByte('%')
		b.WriteByte(hexd[c>>4])
		b.WriteByte(hexd[c&15])
	}
	return b.String()
}
