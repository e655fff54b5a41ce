// Package signing implements the request signing and payload encryption
// schemes used by providers that do not follow bearer-token OAuth2:
//
//   - OAuth1.0a HMAC-SHA1 request signatures (three-legged flows)
//   - RSA PKCS#1 v1.5 signatures over a canonical parameter string
//   - MD5 concatenation signatures
//   - AES ECB/CBC with PKCS#7 padding
//
// Every function is pure apart from the OAuth1 clock and nonce, which are
// injectable for tests.
package signing
