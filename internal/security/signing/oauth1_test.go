package signing

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

// Worked example from Twitter's "Creating a signature" guide.
var (
	exConsumerKey    = "xvz1evFS4wEEPTGEFPHBog"
	exConsumerSecret = "kAcSOqF21Fu85e7zjz7ZN2U4ZRhfV3WpwPAoE3Z7kBw"
	exToken          = "370773112-GmHxMAgYyLbNEtIKZeRNFsMKPR9EyMZeS9weJAEb"
	exTokenSecret    = "LswwdoUaIvS8ltyTt5jkRh4J50vUPVVHtR2YPi5kE"
	exNonce          = "kYjzVBB8Y0ZFabxSWbWovY3uYSQ2pTgmZeNu2VS4cg"
	exTimestamp      = int64(1318622958)
	exURL            = "https://api.twitter.com/1.1/statuses/update.json"
	exParams         = map[string]string{
		"status":           "Hello Ladies + Gentlemen, a signed OAuth request!",
		"include_entities": "true",
	}
	exSignature = "hCtSmYh+iHYCEqBWrE7C7hYmtUk="
)

func exampleSigner() OAuth1 {
	return OAuth1{
		ConsumerKey:    exConsumerKey,
		ConsumerSecret: exConsumerSecret,
		Now:            func() time.Time { return time.Unix(exTimestamp, 0) },
		Nonce:          func() string { return exNonce },
	}
}

func TestOAuth1_SignKnownVector(t *testing.T) {
	params := map[string]string{
		"oauth_consumer_key":     exConsumerKey,
		"oauth_nonce":            exNonce,
		"oauth_signature_method": "HMAC-SHA1",
		"oauth_timestamp":        "1318622958",
		"oauth_token":            exToken,
		"oauth_version":          "1.0",
	}
	for k, v := range exParams {
		params[k] = v
	}
	assert.Equal(t, exSignature, exampleSigner().Sign("POST", exURL, params, exTokenSecret))
}

func TestOAuth1_Header(t *testing.T) {
	h := exampleSigner().Header("POST", exURL, exToken, exTokenSecret, exParams, nil)

	assert.True(t, strings.HasPrefix(h, "OAuth "))
	assert.Contains(t, h, `oauth_signature="hCtSmYh%2BiHYCEqBWrE7C7hYmtUk%3D"`)
	assert.Contains(t, h, `oauth_token="`+exToken+`"`)
	assert.NotContains(t, h, "status=")
}

func TestOAuth1_HeaderWithoutToken(t *testing.T) {
	h := exampleSigner().Header("POST", "https://api.example.com/oauth/request_token", "", "", nil,
		map[string]string{"oauth_callback": "https://app/cb"})
	assert.NotContains(t, h, "oauth_token=")
	assert.Contains(t, h, `oauth_callback="https%3A%2F%2Fapp%2Fcb"`)
}

func TestBaseString_FoldsQuery(t *testing.T) {
	a := BaseString("get", "https://API.example.com/r?b=2", map[string]string{"a": "1"})
	b := BaseString("GET", "https://api.example.com/r", map[string]string{"a": "1", "b": "2"})
	assert.Equal(t, b, a)
	assert.True(t, strings.HasPrefix(a, "GET&https%3A%2F%2Fapi.example.com%2Fr&"))
}

func TestPercentEncode(t *testing.T) {
	assert.Equal(t, "Ladies%20%2B%20Gentlemen", PercentEncode("Ladies + Gentlemen"))
	assert.Equal(t, "An%20encoded%20string%21", PercentEncode("An encoded string!"))
	assert.Equal(t, "Dogs%2C%20Cats%20%26%20Mice", PercentEncode("Dogs, Cats & Mice"))
	assert.Equal(t, "-._~", PercentEncode("-._~"))
	assert.Equal(t, "%E2%98%83", PercentEncode("☃"))
}
