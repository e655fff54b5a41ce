package oauth

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// Gender is the normalized gender of an identity.
type Gender string

const (
	GenderUnknown Gender = "unknown"
	GenderMale    Gender = "male"
	GenderFemale  Gender = "female"
)

// GenderTable maps provider-specific raw encodings (lowercased) to a Gender.
type GenderTable map[string]Gender

// DefaultGenders covers the encodings shared by most providers.
var DefaultGenders = GenderTable{
	"1":      GenderMale,
	"m":      GenderMale,
	"male":   GenderMale,
	"男":      GenderMale,
	"2":      GenderFemale,
	"f":      GenderFemale,
	"female": GenderFemale,
	"女":      GenderFemale,
}

// Resolve normalizes raw into one of the three Gender values. It is total:
// nil, unsupported types and unknown values all resolve to GenderUnknown.
func (t GenderTable) Resolve(raw any) Gender {
	key, ok := genderKey(raw)
	if !ok {
		return GenderUnknown
	}
	if g, ok := t[key]; ok {
		return g
	}
	return GenderUnknown
}

// ParseGender resolves raw against DefaultGenders.
func ParseGender(raw any) Gender { return DefaultGenders.Resolve(raw) }

func genderKey(raw any) (string, bool) {
	var s string
	switch v := raw.(type) {
	case nil:
		return "", false
	case string:
		s = v
	case json.Number:
		s = v.String()
	case int:
		s = strconv.Itoa(v)
	case int64:
		s = strconv.FormatInt(v, 10)
	case float64:
		s = strconv.FormatFloat(v, 'f', -1, 64)
	case bool:
		return "", false
	case fmt.Stringer:
		s = v.String()
	default:
		return "", false
	}
	s = strings.ToLower(strings.TrimSpace(s))
	return s, s != ""
}
