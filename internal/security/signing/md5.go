package signing

import (
	"crypto/md5" //nolint:gosec // provider-mandated signature scheme
	"encoding/hex"
	"sort"
	"strings"
)

// MD5Values sorts params by key, concatenates the values (not the keys),
// appends secret and returns the upper-case hex MD5.
func MD5Values(params map[string]string, secret string) string {
	var b strings.Builder
	for _, k := range sortedKeys(params) {
		b.WriteString(params[k])
	}
	b.WriteString(secret)
	return MD5Upper(b.String())
}

// MD5Pairs returns upper hex MD5(secret + k1v1k2v2... + secret), keys sorted.
func MD5Pairs(params map[string]string, secret string) string {
	var b strings.Builder
	b.WriteString(secret)
	for _, k := range sortedKeys(params) {
		b.WriteString(k)
		b.WriteString(params[k])
	}
	b.WriteString(secret)
	return MD5Upper(b.String())
}

// MD5Hex returns the lower-case hex MD5 of the concatenated parts.
func MD5Hex(parts ...string) string {
	sum := md5.Sum([]byte(strings.Join(parts, ""))) //nolint:gosec
	return hex.EncodeToString(sum[:])
}

// MD5Upper returns the upper-case hex MD5 of s.
func MD5Upper(s string) string {
	return strings.ToUpper(MD5Hex(s))
}

func sortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
