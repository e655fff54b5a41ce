package signing

import (
	"crypto"
	"crypto/rand"
	"crypto/rsa"
	"crypto/sha1" //nolint:gosec // RSA-SHA1 is still offered by some providers
	"crypto/sha256"
	"crypto/x509"
	"encoding/base64"
	"encoding/pem"
	"errors"
	"fmt"
	"sort"
	"strings"
)

// SignType selects the digest of an RSA signature.
type SignType string

const (
	SignRSA  SignType = "RSA"  // SHA1withRSA
	SignRSA2 SignType = "RSA2" // SHA256withRSA
)

const pemLineWidth = 64

// ErrInvalidKey is returned when key material cannot be parsed.
var ErrInvalidKey = errors.New("signing: invalid RSA key")

// ParseSignType maps "RSA"/"RSA2" (case-insensitive) to a SignType;
// anything else is RSA2.
func ParseSignType(s string) SignType {
	if strings.EqualFold(strings.TrimSpace(s), string(SignRSA)) {
		return SignRSA
	}
	return SignRSA2
}

func (t SignType) hash() crypto.Hash {
	if t == SignRSA {
		return crypto.SHA1
	}
	return crypto.SHA256
}

func (t SignType) digest(content string) []byte {
	if t == SignRSA {
		h := sha1.Sum([]byte(content)) //nolint:gosec
		return h[:]
	}
	h := sha256.Sum256([]byte(content))
	return h[:]
}

// CanonicalString drops empty values and the "sign" parameter, sorts the rest
// by key and joins them as key=value pairs with "&". Values are not escaped.
func CanonicalString(params map[string]string) string {
	keys := make([]string, 0, len(params))
	for k, v := range params {
		if v == "" || k == "sign" {
			continue
		}
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var b strings.Builder
	for i, k := range keys {
		if i > 0 {
			b.WriteByte('&')
		}
		b.WriteString(k)
		b.WriteByte('=')
		b.WriteString(params[k])
	}
	return b.String()
}

// WrapPEM frames raw Base64 key material with header/footer lines of kind
// ("RSA PRIVATE KEY", "PUBLIC KEY"), wrapping the body at 64 characters.
// Material that already has a PEM header is returned unchanged.
func WrapPEM(material, kind string) string {
	if strings.Contains(material, "-----BEGIN") {
		return material
	}
	body := strings.Join(strings.Fields(material), "")
	var b strings.Builder
	b.WriteString("-----BEGIN " + kind + "-----\n")
	for len(body) > pemLineWidth {
		b.WriteString(body[:pemLineWidth])
		b.WriteByte('\n')
		body = body[pemLineWidth:]
	}
	if body != "" {
		b.WriteString(body)
		b.WriteByte('\n')
	}
	b.WriteString("-----END " + kind + "-----\n")
	return b.String()
}

// ParsePrivateKey accepts PEM (PKCS#1 or PKCS#8) or bare Base64 key material.
// Bare material is wrapped into PEM first; if that does not decode it is
// parsed as Base64 DER.
func ParsePrivateKey(material string) (*rsa.PrivateKey, error) {
	material = strings.TrimSpace(material)
	if material == "" {
		return nil, fmt.Errorf("%w: empty private key", ErrInvalidKey)
	}
	if block, _ := pem.Decode([]byte(WrapPEM(material, "RSA PRIVATE KEY"))); block != nil {
		if k, err := privateFromDER(block.Bytes); err == nil {
			return k, nil
		}
	}
	der, err := base64.StdEncoding.DecodeString(strings.Join(strings.Fields(material), ""))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidKey, err)
	}
	return privateFromDER(der)
}

func privateFromDER(der []byte) (*rsa.PrivateKey, error) {
	if k, err := x509.ParsePKCS1PrivateKey(der); err == nil {
		return k, nil
	}
	k, err := x509.ParsePKCS8PrivateKey(der)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidKey, err)
	}
	rk, ok := k.(*rsa.PrivateKey)
	if !ok {
		return nil, fmt.Errorf("%w: not an RSA key", ErrInvalidKey)
	}
	return rk, nil
}

// ParsePublicKey accepts PEM (PKIX or PKCS#1) or bare Base64 key material.
func ParsePublicKey(material string) (*rsa.PublicKey, error) {
	material = strings.TrimSpace(material)
	var der []byte
	if block, _ := pem.Decode([]byte(WrapPEM(material, "PUBLIC KEY"))); block != nil {
		der = block.Bytes
	} else {
		b, err := base64.StdEncoding.DecodeString(strings.Join(strings.Fields(material), ""))
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidKey, err)
		}
		der = b
	}
	if k, err := x509.ParsePKIXPublicKey(der); err == nil {
		if rk, ok := k.(*rsa.PublicKey); ok {
			return rk, nil
		}
		return nil, fmt.Errorf("%w: not an RSA key", ErrInvalidKey)
	}
	k, err := x509.ParsePKCS1PublicKey(der)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidKey, err)
	}
	return k, nil
}

// RSASigner signs canonical parameter strings with a private key.
type RSASigner struct {
	key *rsa.PrivateKey
	typ SignType
}

// NewRSASigner parses privateKey (see ParsePrivateKey) for the given type.
func NewRSASigner(privateKey string, typ SignType) (*RSASigner, error) {
	k, err := ParsePrivateKey(privateKey)
	if err != nil {
		return nil, err
	}
	return &RSASigner{key: k, typ: typ}, nil
}

// Type returns the configured digest type.
func (s *RSASigner) Type() SignType { return s.typ }

// Sign returns the Base64 PKCS#1 v1.5 signature of content.
func (s *RSASigner) Sign(content string) (string, error) {
	sig, err := rsa.SignPKCS1v15(rand.Reader, s.key, s.typ.hash(), s.typ.digest(content))
	if err != nil {
		return "", fmt.Errorf("signing: rsa sign: %w", err)
	}
	return base64.StdEncoding.EncodeToString(sig), nil
}

// SignParams signs CanonicalString(params).
func (s *RSASigner) SignParams(params map[string]string) (string, error) {
	return s.Sign(CanonicalString(params))
}

// VerifyRSA checks a Base64 signature over content.
func VerifyRSA(pub *rsa.PublicKey, typ SignType, content, signature string) error {
	sig, err := base64.StdEncoding.DecodeString(signature)
	if err != nil {
		return fmt.Errorf("signing: decode signature: %w", err)
	}
	return rsa.VerifyPKCS1v15(pub, typ.hash(), typ.digest(content), sig)
}

// VerifyParams checks a signature over CanonicalString(params).
func VerifyParams(pub *rsa.PublicKey, typ SignType, params map[string]string, signature string) error {
	return VerifyRSA(pub, typ, CanonicalString(params), signature)
}
