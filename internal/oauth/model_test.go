package oauth

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"testing"
	"time"

	"github.com/dropDatabas3/socialauth/internal/httpclient"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGender_Total(t *testing.T) {
	cases := map[any]Gender{
		"1": GenderMale, "m": GenderMale, "M": GenderMale, " male ": GenderMale, "男": GenderMale,
		"2": GenderFemale, "f": GenderFemale, "Female": GenderFemale, "女": GenderFemale,
		1: GenderMale, 2: GenderFemale, float64(1): GenderMale, json.Number("2"): GenderFemale,
		"0": GenderUnknown, "x": GenderUnknown, "": GenderUnknown, 3: GenderUnknown, true: GenderUnknown,
	}
	for raw, want := range cases {
		assert.Equal(t, want, ParseGender(raw), "raw %v", raw)
	}
	assert.Equal(t, GenderUnknown, ParseGender(nil))
	assert.Equal(t, GenderUnknown, ParseGender([]string{"m"}))

	custom := GenderTable{"0": GenderFemale}
	for _, raw := range []any{"0", "1", "m", nil} {
		g := custom.Resolve(raw)
		assert.Contains(t, []Gender{GenderUnknown, GenderMale, GenderFemale}, g)
	}
}

func TestParseCallback(t *testing.T) {
	cb := ParseCallback(map[string]string{"auth_code": "ac", "state": "s", "encrypted_data": "ed"})
	assert.Equal(t, "ac", cb.Code)
	assert.Equal(t, "s", cb.State)
	assert.Equal(t, "ed", cb.Get("encrypted_data"))
	assert.NotContains(t, cb.Extras, "auth_code")

	cb = ParseCallback(map[string]string{"code": "c", "auth_code": "ac"})
	assert.Equal(t, "c", cb.Code)

	cb = ParseCallback(map[string]string{"authorization_code": "z", "oauth_token": "t", "oauth_verifier": "v"})
	assert.Equal(t, "z", cb.Code)
	assert.Equal(t, "t", cb.OAuthToken)
	assert.Equal(t, "v", cb.OAuthVerifier)
}

func TestToken_Expiry(t *testing.T) {
	created := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	tok := &Token{AccessToken: "a", ExpiresIn: 7200, CreatedAt: created}

	assert.Equal(t, created.Add(2*time.Hour), tok.ExpiresAt())
	assert.False(t, tok.Expired(created.Add(time.Hour)))
	assert.True(t, tok.Expired(created.Add(2*time.Hour)))

	forever := &Token{AccessToken: "a", CreatedAt: created}
	assert.True(t, forever.ExpiresAt().IsZero())
	assert.False(t, forever.Expired(created.Add(1000*time.Hour)))
}

func TestResponse_Kinds(t *testing.T) {
	assert.Equal(t, 200, Success(1).Code)
	assert.Equal(t, 400, Failure[int]("x").Code)
	assert.Equal(t, 401, Unauthorized[int]("x").Code)
	assert.Equal(t, 408, Timeout[int]("x").Code)
	assert.Equal(t, 500, Error[int]("x").Code)
	assert.Equal(t, 501, NotImplemented[int]("x").Code)

	f := Failure[*Token]("nope")
	assert.Nil(t, f.Data)
	u := Convert[*User](f)
	assert.Equal(t, StatusFailure, u.Status)
	assert.Equal(t, "nope", u.Message)
	assert.Nil(t, u.Data)
}

type timeoutErr struct{}

func (timeoutErr) Error() string   { return "i/o timeout" }
func (timeoutErr) Timeout() bool   { return true }
func (timeoutErr) Temporary() bool { return true }

var _ net.Error = timeoutErr{}

func TestFromError(t *testing.T) {
	assert.Equal(t, StatusTimeout, FromError[int](context.DeadlineExceeded).Status)
	assert.Equal(t, StatusTimeout, FromError[int](fmt.Errorf("post: %w", timeoutErr{})).Status)
	assert.Equal(t, StatusUnauthorized, FromError[int](&httpclient.StatusError{StatusCode: 401}).Status)
	assert.Equal(t, StatusError, FromError[int](&httpclient.StatusError{StatusCode: 502}).Status)
	assert.Equal(t, StatusError, FromError[int](errors.New("parse")).Status)
}

func TestResolveScope(t *testing.T) {
	src := Source{Name: "scope_test_src", Scopes: []string{"a", "b"}, ScopeDelimiter: ","}
	assert.Equal(t, "a,b", ResolveScope(Config{}, src))

	RegisterDefaultScopes("scope_test_src", "x", "y")
	assert.Equal(t, "x,y", ResolveScope(Config{}, src))

	assert.Equal(t, "z", ResolveScope(Config{Scope: []string{"z"}}, src))

	src.ScopeDelimiter = ""
	assert.Equal(t, "x y", ResolveScope(Config{}, src))
}

func TestPayload(t *testing.T) {
	var p Payload
	require.NoError(t, json.Unmarshal([]byte(`{"id":42,"big":12345678901234,"s":"7","o":{"x":{"y":"deep"}},"ok":true}`), &p))
	assert.Equal(t, "42", p.String("id"))
	assert.Equal(t, "12345678901234", p.String("big"))
	assert.EqualValues(t, 7, p.Int64("s"))
	assert.Equal(t, "deep", p.Path("o.x.y"))
	assert.Equal(t, "", p.Path("o.missing.y"))
	assert.True(t, p.Bool("ok"))
	assert.Equal(t, "7", p.First("nope", "s"))
}

func TestConfig_Validate(t *testing.T) {
	assert.ErrorIs(t, Config{}.Validate(), ErrConfig)
	assert.ErrorIs(t, Config{ClientID: "a"}.Validate(), ErrConfig)
	assert.NoError(t, Config{ClientID: "a", ClientSecret: "b"}.Validate())
	assert.Equal(t, "RSA2", Config{}.Extra("sign_type", "RSA2"))
}

func TestJoinURL(t *testing.T) {
	assert.Equal(t, "https://a/b?x=1", JoinURL("https://a/b", map[string][]string{"x": {"1"}}))
	assert.Equal(t, "https://a/b?k=v&x=1", JoinURL("https://a/b?k=v", map[string][]string{"x": {"1"}}))
}

func TestToken_CloneOwnsExtra(t *testing.T) {
	tok := &Token{AccessToken: "a", Extra: map[string]string{"k": "v"}}
	c := tok.Clone()
	c.OpenID = "o"
	c.Extra["k"] = "changed"

	assert.Empty(t, tok.OpenID)
	assert.Equal(t, "v", tok.Get("k"))
	assert.Nil(t, (*Token)(nil).Clone())
}
