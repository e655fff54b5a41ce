// Package httpclient is the HTTP transport used by provider adapters.
//
// It exposes verb methods (Get, Post, Put, Delete) that take per-call
// options for query, form/JSON bodies, headers and timeout. Non-2xx
// responses are returned together with a *StatusError so callers can still
// inspect the provider's error body.
package httpclient

import (
	"bytes"
	"context"
	"crypto/tls"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const (
	DefaultTimeout   = 10 * time.Second
	DefaultUserAgent = "socialauth"
	maxBodyBytes     = 4 << 20
)

// Client performs HTTP calls against provider endpoints.
type Client interface {
	Get(ctx context.Context, rawURL string, opts ...Option) (*Response, error)
	Post(ctx context.Context, rawURL string, opts ...Option) (*Response, error)
	Put(ctx context.Context, rawURL string, opts ...Option) (*Response, error)
	Delete(ctx context.Context, rawURL string, opts ...Option) (*Response, error)
}

// Config configures the transport.
type Config struct {
	Timeout            time.Duration
	Proxy              string
	InsecureSkipVerify bool
	UserAgent          string
	Headers            map[string]string
}

// HTTP is the net/http backed Client.
type HTTP struct {
	cfg    Config
	client *http.Client
}

var _ Client = (*HTTP)(nil)

// New builds a Client from cfg.
func New(cfg Config) (*HTTP, error) {
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}
	if cfg.UserAgent == "" {
		cfg.UserAgent = DefaultUserAgent
	}

	tr := http.DefaultTransport.(*http.Transport).Clone()
	if cfg.Proxy != "" {
		pu, err := url.Parse(cfg.Proxy)
		if err != nil {
			return nil, fmt.Errorf("httpclient: invalid proxy %q: %w", cfg.Proxy, err)
		}
		tr.Proxy = http.ProxyURL(pu)
	}
	if cfg.InsecureSkipVerify {
		tr.TLSClientConfig = &tls.Config{InsecureSkipVerify: true} //nolint:gosec // opt-in for sandbox providers
	}

	return &HTTP{
		cfg:    cfg,
		client: &http.Client{Timeout: cfg.Timeout, Transport: tr},
	}, nil
}

// MustDefault returns a Client with default settings.
func MustDefault() *HTTP {
	c, err := New(Config{})
	if err != nil {
		panic(err)
	}
	return c
}

// HTTPClient exposes the underlying *http.Client (used by golang.org/x/oauth2).
func (h *HTTP) HTTPClient() *http.Client { return h.client }

func (h *HTTP) Get(ctx context.Context, rawURL string, opts ...Option) (*Response, error) {
	return h.do(ctx, http.MethodGet, rawURL, opts)
}

func (h *HTTP) Post(ctx context.Context, rawURL string, opts ...Option) (*Response, error) {
	return h.do(ctx, http.MethodPost, rawURL, opts)
}

func (h *HTTP) Put(ctx context.Context, rawURL string, opts ...Option) (*Response, error) {
	return h.do(ctx, http.MethodPut, rawURL, opts)
}

func (h *HTTP) Delete(ctx context.Context, rawURL string, opts ...Option) (*Response, error) {
	return h.do(ctx, http.MethodDelete, rawURL, opts)
}

func (h *HTTP) do(ctx context.Context, method, rawURL string, opts []Option) (*Response, error) {
	rc := &request{headers: http.Header{}}
	for _, o := range opts {
		o(rc)
	}
	if rc.err != nil {
		return nil, rc.err
	}

	u, err := url.Parse(rawURL)
	if err != nil {
		return nil, fmt.Errorf("httpclient: parse url: %w", err)
	}
	if len(rc.query) > 0 {
		q := u.Query()
		for k, vs := range rc.query {
			for _, v := range vs {
				q.Add(k, v)
			}
		}
		u.RawQuery = q.Encode()
	}

	if rc.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, rc.timeout)
		defer cancel()
	}

	var body io.Reader
	if rc.body != nil {
		body = bytes.NewReader(rc.body)
	}
	req, err := http.NewRequestWithContext(ctx, method, u.String(), body)
	if err != nil {
		return nil, err
	}

	req.Header.Set("User-Agent", h.cfg.UserAgent)
	for k, v := range h.cfg.Headers {
		req.Header.Set(k, v)
	}
	if rc.contentType != "" {
		req.Header.Set("Content-Type", rc.contentType)
	}
	for k, vs := range rc.headers {
		req.Header[k] = vs
	}

	resp, err := h.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	b, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, fmt.Errorf("httpclient: read body: %w", err)
	}

	out := &Response{StatusCode: resp.StatusCode, Header: resp.Header, Body: b}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return out, &StatusError{Method: method, URL: u.Redacted(), StatusCode: resp.StatusCode, Body: b}
	}
	return out, nil
}

type request struct {
	query       url.Values
	headers     http.Header
	body        []byte
	contentType string
	timeout     time.Duration
	err         error
}

// Option customizes a single call.
type Option func(*request)

// WithQuery appends query parameters to the URL.
func WithQuery(v url.Values) Option {
	return func(r *request) {
		if r.query == nil {
			r.query = url.Values{}
		}
		for k, vs := range v {
			r.query[k] = append(r.query[k], vs...)
		}
	}
}

// WithForm sends v as an application/x-www-form-urlencoded body.
func WithForm(v url.Values) Option {
	return func(r *request) {
		r.body = []byte(v.Encode())
		r.contentType = "application/x-www-form-urlencoded"
	}
}

// WithJSON sends v encoded as JSON.
func WithJSON(v any) Option {
	return func(r *request) {
		b, err := json.Marshal(v)
		if err != nil {
			r.err = fmt.Errorf("httpclient: encode json: %w", err)
			return
		}
		r.body = b
		r.contentType = "application/json"
	}
}

// WithHeader sets a request header.
func WithHeader(key, value string) Option {
	return func(r *request) { r.headers.Set(key, value) }
}

// WithBearer sets "Authorization: Bearer <token>".
func WithBearer(token string) Option {
	return WithHeader("Authorization", "Bearer "+token)
}

// WithAcceptJSON sets "Accept: application/json".
func WithAcceptJSON() Option {
	return WithHeader("Accept", "application/json")
}

// WithTimeout bounds this call independently of the client timeout.
func WithTimeout(d time.Duration) Option {
	return func(r *request) { r.timeout = d }
}

// Response is a fully read HTTP response.
type Response struct {
	StatusCode int
	Header     http.Header
	Body       []byte
}

// Text returns the body as a string.
func (r *Response) Text() string { return string(r.Body) }

// IsJSON reports whether the body looks like a JSON object or array.
func (r *Response) IsJSON() bool {
	t := bytes.TrimSpace(r.Body)
	return len(t) > 0 && (t[0] == '{' || t[0] == '[')
}

// JSON decodes the body into v.
func (r *Response) JSON(v any) error {
	if err := json.Unmarshal(r.Body, v); err != nil {
		return fmt.Errorf("httpclient: decode json: %w", err)
	}
	return nil
}

// Map decodes a JSON object body keeping numbers as json.Number.
func (r *Response) Map() (map[string]any, error) {
	dec := json.NewDecoder(bytes.NewReader(r.Body))
	dec.UseNumber()
	var m map[string]any
	if err := dec.Decode(&m); err != nil {
		return nil, fmt.Errorf("httpclient: decode json object: %w", err)
	}
	return m, nil
}

// Form decodes an application/x-www-form-urlencoded body.
func (r *Response) Form() (url.Values, error) {
	v, err := url.ParseQuery(strings.TrimSpace(string(r.Body)))
	if err != nil {
		return nil, fmt.Errorf("httpclient: decode form: %w", err)
	}
	return v, nil
}
