package oauth

import (
	"strings"
	"sync"
)

var (
	scopesMu      sync.RWMutex
	defaultScopes = map[string][]string{}
)

// RegisterDefaultScopes sets the default scopes used for provider name when
// the application config does not list any.
func RegisterDefaultScopes(name string, scopes ...string) {
	scopesMu.Lock()
	defer scopesMu.Unlock()
	defaultScopes[NormalizeName(name)] = append([]string(nil), scopes...)
}

// DefaultScopes returns the registered default scopes for name.
func DefaultScopes(name string) []string {
	scopesMu.RLock()
	defer scopesMu.RUnlock()
	return append([]string(nil), defaultScopes[NormalizeName(name)]...)
}

// ResolveScope returns the scope string for an authorize request: the config
// scopes win, then the default-scope table, then the descriptor's own list.
func ResolveScope(cfg Config, src Source) string {
	scopes := cfg.Scope
	if len(scopes) == 0 {
		scopes = DefaultScopes(src.Name)
	}
	if len(scopes) == 0 {
		scopes = src.Scopes
	}
	delim := src.ScopeDelimiter
	if delim == "" {
		delim = " "
	}
	return strings.Join(scopes, delim)
}
