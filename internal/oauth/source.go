package oauth

import "strings"

// Source describes a provider's endpoints. It is static data; per
// application overrides come from Config.
type Source struct {
	Name            string
	AuthorizeURL    string
	AccessTokenURL  string
	UserInfoURL     string
	RefreshTokenURL string
	RevokeTokenURL  string
	RequestTokenURL string // three-legged flows only

	// Scopes are the provider's default scopes, joined with ScopeDelimiter.
	Scopes         []string
	ScopeDelimiter string
}

// WithOverrides returns a copy of s with the endpoint overrides of cfg applied.
func (s Source) WithOverrides(cfg Config) Source {
	if cfg.AuthorizeURL != "" {
		s.AuthorizeURL = cfg.AuthorizeURL
	}
	if cfg.AccessTokenURL != "" {
		s.AccessTokenURL = cfg.AccessTokenURL
	}
	if cfg.UserInfoURL != "" {
		s.UserInfoURL = cfg.UserInfoURL
	}
	if cfg.RefreshTokenURL != "" {
		s.RefreshTokenURL = cfg.RefreshTokenURL
	}
	if cfg.RevokeTokenURL != "" {
		s.RevokeTokenURL = cfg.RevokeTokenURL
	}
	if v := cfg.Extra("request_token_url", ""); v != "" {
		s.RequestTokenURL = v
	}
	return s
}

// NormalizeName canonicalizes a provider name: trimmed, lowercase and with
// dashes turned into underscores ("WeChat-Open" -> "wechat_open").
func NormalizeName(name string) string {
	return strings.ReplaceAll(strings.ToLower(strings.TrimSpace(name)), "-", "_")
}
