package oauth

import (
	"encoding/json"
	"strconv"
	"strings"
)

// Payload is a decoded JSON object from a provider. Its accessors tolerate
// the loose typing providers use (numbers as strings and the reverse).
type Payload map[string]any

// Has reports whether key is present.
func (p Payload) Has(key string) bool {
	_, ok := p[key]
	return ok
}

// String returns key as a string. Numbers are formatted without exponent;
// nil, objects and arrays yield "".
func (p Payload) String(key string) string {
	return asString(p[key])
}

// First returns the first non-empty string among keys.
func (p Payload) First(keys ...string) string {
	for _, k := range keys {
		if s := p.String(k); s != "" {
			return s
		}
	}
	return ""
}

// Int64 returns key as an integer, or 0.
func (p Payload) Int64(key string) int64 {
	switch v := p[key].(type) {
	case json.Number:
		if n, err := v.Int64(); err == nil {
			return n
		}
		if f, err := v.Float64(); err == nil {
			return int64(f)
		}
	case float64:
		return int64(v)
	case int:
		return int64(v)
	case int64:
		return v
	case string:
		n, _ := strconv.ParseInt(strings.TrimSpace(v), 10, 64)
		return n
	}
	return 0
}

// Bool returns key as a boolean.
func (p Payload) Bool(key string) bool {
	switch v := p[key].(type) {
	case bool:
		return v
	case string:
		b, _ := strconv.ParseBool(v)
		return b
	}
	return p.Int64(key) != 0
}

// Object returns the nested object under key, or an empty Payload.
func (p Payload) Object(key string) Payload {
	if m, ok := p[key].(map[string]any); ok {
		return Payload(m)
	}
	if m, ok := p[key].(Payload); ok {
		return m
	}
	return Payload{}
}

// Path walks nested objects separated by dots ("picture.data.url").
func (p Payload) Path(path string) string {
	parts := strings.Split(path, ".")
	cur := p
	for _, k := range parts[:len(parts)-1] {
		cur = cur.Object(k)
	}
	return cur.String(parts[len(parts)-1])
}

// Strings flattens the scalar fields of p into a string map, used for the
// token side channel.
func (p Payload) Strings(skip ...string) map[string]string {
	out := make(map[string]string, len(p))
outer:
	for k := range p {
		for _, s := range skip {
			if k == s {
				continue outer
			}
		}
		if s := p.String(k); s != "" {
			out[k] = s
		}
	}
	return out
}

func asString(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return x
	case json.Number:
		return x.String()
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	case int:
		return strconv.Itoa(x)
	case int64:
		return strconv.FormatInt(x, 10)
	case bool:
		return strconv.FormatBool(x)
	default:
		return ""
	}
}

// JoinNonEmpty joins the non-empty parts with sep.
func JoinNonEmpty(sep string, parts ...string) string {
	out := parts[:0:0]
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return strings.Join(out, sep)
}
