// Package config carga la configuración del servicio de demo y de la CLI:
// archivo YAML + overrides por variables de entorno (OAUTH_*).
package config

import (
	"errors"
	"fmt"
	"os"
	"sort"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/dropDatabas3/socialauth/internal/cache"
	"github.com/dropDatabas3/socialauth/internal/httpclient"
	"github.com/dropDatabas3/socialauth/internal/oauth"
	"github.com/dropDatabas3/socialauth/internal/security/secretbox"
)

type Config struct {
	Log struct {
		// dev | prod
		Env   string `yaml:"env"`
		Level string `yaml:"level"`
	} `yaml:"log"`

	HTTP struct {
		Timeout            string            `yaml:"timeout"`
		Proxy              string            `yaml:"proxy"`
		InsecureSkipVerify bool              `yaml:"insecure_skip_verify"` // sólo sandbox
		UserAgent          string            `yaml:"user_agent"`
		Headers            map[string]string `yaml:"headers"`
	} `yaml:"http"`

	Cache struct {
		Kind       string `yaml:"kind"` // memory | redis
		Prefix     string `yaml:"prefix"`
		DefaultTTL string `yaml:"default_ttl"`
		Redis      struct {
			Addr     string `yaml:"addr"`
			Password string `yaml:"password"`
			DB       int    `yaml:"db"`
		} `yaml:"redis"`
	} `yaml:"cache"`

	State struct {
		TTL string `yaml:"ttl"`
		// nil => true
		SingleUse *bool `yaml:"single_use"`
	} `yaml:"state"`

	Server struct {
		Addr      string `yaml:"addr"`
		RateLimit struct {
			Requests int    `yaml:"requests"`
			Window   string `yaml:"window"`
		} `yaml:"rate_limit"`
	} `yaml:"server"`

	SecretBoxConfig struct {
		MasterKey string `yaml:"master_key"` // base64(32 bytes)
	} `yaml:"secretbox"`

	// Providers indexado por nombre normalizado (github, wechat_open, ...).
	Providers map[string]Provider `yaml:"providers"`
}

// Provider es el registro de la app en un provider.
type Provider struct {
	ClientID         string            `yaml:"client_id"`
	ClientSecret     string            `yaml:"client_secret"` // puede venir "sealed:..."
	RedirectURI      string            `yaml:"redirect_uri"`
	PublicKey        string            `yaml:"public_key"`
	Scope            []string          `yaml:"scope"`
	State            string            `yaml:"state"`
	IgnoreCheckState bool              `yaml:"ignore_check_state"`
	AuthorizeURL     string            `yaml:"authorize_url"`
	AccessTokenURL   string            `yaml:"access_token_url"`
	UserInfoURL      string            `yaml:"user_info_url"`
	RefreshTokenURL  string            `yaml:"refresh_token_url"`
	RevokeTokenURL   string            `yaml:"revoke_token_url"`
	Extras           map[string]string `yaml:"extras"`
}

// Load lee path (si no está vacío), aplica env y defaults.
func Load(path string) (*Config, error) {
	var c Config
	if path != "" {
		b, err := os.ReadFile(path)
		if err != nil {
			return nil, err
		}
		if err := yaml.Unmarshal(b, &c); err != nil {
			return nil, fmt.Errorf("config: parse %s: %w", path, err)
		}
	}
	c.applyEnvOverrides()
	c.applyDefaults()
	return &c, nil
}

func (c *Config) applyDefaults() {
	if c.Log.Env == "" {
		c.Log.Env = "dev"
	}
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
	if c.HTTP.Timeout == "" {
		c.HTTP.Timeout = "10s"
	}
	if c.Cache.Kind == "" {
		c.Cache.Kind = "memory"
	}
	if c.Cache.Prefix == "" {
		c.Cache.Prefix = cache.DefaultPrefix
	}
	if c.Cache.DefaultTTL == "" {
		c.Cache.DefaultTTL = "3m"
	}
	if c.State.TTL == "" {
		c.State.TTL = "3m"
	}
	if c.Server.Addr == "" {
		c.Server.Addr = ":8080"
	}
	if c.Server.RateLimit.Window == "" {
		c.Server.RateLimit.Window = "1m"
	}
	if c.Server.RateLimit.Requests == 0 {
		c.Server.RateLimit.Requests = 60
	}

	// normalizar nombres para que "WeChat-Open" y "wechat_open" sean lo mismo
	if len(c.Providers) > 0 {
		norm := make(map[string]Provider, len(c.Providers))
		for k, v := range c.Providers {
			norm[oauth.NormalizeName(k)] = v
		}
		c.Providers = norm
	}
}

func getEnvStr(key string) (string, bool) {
	v := os.Getenv(key)
	return v, v != ""
}

func getEnvInt(key string) (int, bool) {
	if s, ok := getEnvStr(key); ok {
		if n, err := strconv.Atoi(strings.TrimSpace(s)); err == nil {
			return n, true
		}
	}
	return 0, false
}

func getEnvBool(key string) (bool, bool) {
	if s, ok := getEnvStr(key); ok {
		if b, err := strconv.ParseBool(strings.TrimSpace(s)); err == nil {
			return b, true
		}
	}
	return false, false
}

// applyEnvOverrides: pisa config.yaml con variables de entorno.
func (c *Config) applyEnvOverrides() {
	// LOG
	if v, ok := getEnvStr("OAUTH_LOG_ENV"); ok {
		c.Log.Env = strings.ToLower(v)
	}
	if v, ok := getEnvStr("OAUTH_LOG_LEVEL"); ok {
		c.Log.Level = strings.ToLower(v)
	}

	// HTTP
	if v, ok := getEnvStr("OAUTH_HTTP_TIMEOUT"); ok {
		c.HTTP.Timeout = v
	}
	if v, ok := getEnvStr("OAUTH_HTTP_PROXY"); ok {
		c.HTTP.Proxy = v
	}
	if v, ok := getEnvBool("OAUTH_HTTP_INSECURE_SKIP_VERIFY"); ok {
		c.HTTP.InsecureSkipVerify = v
	}

	// CACHE
	if v, ok := getEnvStr("OAUTH_CACHE_KIND"); ok {
		c.Cache.Kind = strings.ToLower(v)
	}
	if v, ok := getEnvStr("OAUTH_CACHE_PREFIX"); ok {
		c.Cache.Prefix = v
	}
	if v, ok := getEnvStr("OAUTH_REDIS_ADDR"); ok {
		c.Cache.Redis.Addr = v
	}
	if v, ok := getEnvStr("OAUTH_REDIS_PASSWORD"); ok {
		c.Cache.Redis.Password = v
	}
	if v, ok := getEnvInt("OAUTH_REDIS_DB"); ok {
		c.Cache.Redis.DB = v
	}

	// STATE
	if v, ok := getEnvStr("OAUTH_STATE_TTL"); ok {
		c.State.TTL = v
	}
	if v, ok := getEnvBool("OAUTH_STATE_SINGLE_USE"); ok {
		c.State.SingleUse = &v
	}

	// SERVER
	if v, ok := getEnvStr("OAUTH_SERVER_ADDR"); ok {
		c.Server.Addr = v
	}
	if v, ok := getEnvInt("OAUTH_RATE_REQUESTS"); ok {
		c.Server.RateLimit.Requests = v
	}
	if v, ok := getEnvStr("OAUTH_RATE_WINDOW"); ok {
		c.Server.RateLimit.Window = v
	}

	// SECRETBOX
	if v, ok := getEnvStr(secretbox.EnvVar); ok {
		c.SecretBoxConfig.MasterKey = v
	}

	// ───── Providers ─────
	// OAUTH_<NAME>_CLIENT_ID / _CLIENT_SECRET / _REDIRECT_URI
	for _, kv := range os.Environ() {
		k, v, ok := strings.Cut(kv, "=")
		if !ok || v == "" || !strings.HasPrefix(k, "OAUTH_") {
			continue
		}
		for _, suffix := range []string{"_CLIENT_ID", "_CLIENT_SECRET", "_REDIRECT_URI"} {
			if !strings.HasSuffix(k, suffix) {
				continue
			}
			name := strings.TrimSuffix(strings.TrimPrefix(k, "OAUTH_"), suffix)
			if name == "" {
				continue
			}
			c.setProviderField(oauth.NormalizeName(name), suffix, v)
		}
	}
}

func (c *Config) setProviderField(name, suffix, v string) {
	if c.Providers == nil {
		c.Providers = map[string]Provider{}
	}
	// el yaml puede haber usado otra grafía del mismo nombre
	key := name
	for k := range c.Providers {
		if oauth.NormalizeName(k) == name {
			key = k
			break
		}
	}
	p := c.Providers[key]
	switch suffix {
	case "_CLIENT_ID":
		p.ClientID = v
	case "_CLIENT_SECRET":
		p.ClientSecret = v
	case "_REDIRECT_URI":
		p.RedirectURI = v
	}
	c.Providers[key] = p
}

// Validate chequea los valores que no tienen default razonable.
func (c *Config) Validate() error {
	var errs []error
	for _, d := range []struct{ name, v string }{
		{"http.timeout", c.HTTP.Timeout},
		{"cache.default_ttl", c.Cache.DefaultTTL},
		{"state.ttl", c.State.TTL},
		{"server.rate_limit.window", c.Server.RateLimit.Window},
	} {
		if _, err := time.ParseDuration(d.v); err != nil {
			errs = append(errs, fmt.Errorf("config: %s: %w", d.name, err))
		}
	}
	switch c.Cache.Kind {
	case "memory":
	case "redis":
		if c.Cache.Redis.Addr == "" {
			errs = append(errs, errors.New("config: cache.redis.addr required for redis cache"))
		}
	default:
		errs = append(errs, fmt.Errorf("config: unknown cache.kind %q", c.Cache.Kind))
	}
	for _, name := range c.ProviderNames() {
		p := c.Providers[name]
		if p.ClientID == "" || p.ClientSecret == "" {
			errs = append(errs, fmt.Errorf("config: providers.%s: client_id and client_secret required", name))
		}
	}
	return errors.Join(errs...)
}

// ProviderNames lista los providers configurados, ordenados.
func (c *Config) ProviderNames() []string {
	out := make([]string, 0, len(c.Providers))
	for k := range c.Providers {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

func mustDur(s string, def time.Duration) time.Duration {
	if d, err := time.ParseDuration(s); err == nil && d > 0 {
		return d
	}
	return def
}

// HTTPClient traduce el bloque http al transporte.
func (c *Config) HTTPClient() httpclient.Config {
	return httpclient.Config{
		Timeout:            mustDur(c.HTTP.Timeout, httpclient.DefaultTimeout),
		Proxy:              c.HTTP.Proxy,
		InsecureSkipVerify: c.HTTP.InsecureSkipVerify,
		UserAgent:          c.HTTP.UserAgent,
		Headers:            c.HTTP.Headers,
	}
}

// CacheTTL es el TTL por defecto del cache.
func (c *Config) CacheTTL() time.Duration { return mustDur(c.Cache.DefaultTTL, cache.DefaultTTL) }

// StateTTL es el TTL del state CSRF.
func (c *Config) StateTTL() time.Duration { return mustDur(c.State.TTL, cache.DefaultTTL) }

// SingleUseState indica si un state validado se borra del cache.
func (c *Config) SingleUseState() bool { return c.State.SingleUse == nil || *c.State.SingleUse }

// RateWindow es la ventana del rate limiter del server.
func (c *Config) RateWindow() time.Duration { return mustDur(c.Server.RateLimit.Window, time.Minute) }

// SecretBox abre la caja con la master key. nil si no hay key.
func (c *Config) SecretBox() (*secretbox.Box, error) {
	if strings.TrimSpace(c.SecretBoxConfig.MasterKey) == "" {
		return nil, nil
	}
	return secretbox.New(c.SecretBoxConfig.MasterKey)
}

// OAuth devuelve el oauth.Config de name con los secretos ya revelados.
func (c *Config) OAuth(name string, box *secretbox.Box) (oauth.Config, error) {
	p, ok := c.Providers[oauth.NormalizeName(name)]
	if !ok {
		return oauth.Config{}, fmt.Errorf("%w: provider %q not configured", oauth.ErrConfig, name)
	}
	secret, err := secretbox.Reveal(box, p.ClientSecret)
	if err != nil {
		return oauth.Config{}, fmt.Errorf("config: providers.%s.client_secret: %w", name, err)
	}
	extras := make(map[string]string, len(p.Extras))
	for k, v := range p.Extras {
		extras[k] = v
	}
	return oauth.Config{
		ClientID:         p.ClientID,
		ClientSecret:     secret,
		RedirectURI:      p.RedirectURI,
		PublicKey:        p.PublicKey,
		Scope:            append([]string(nil), p.Scope...),
		State:            p.State,
		IgnoreCheckState: p.IgnoreCheckState,
		AuthorizeURL:     p.AuthorizeURL,
		AccessTokenURL:   p.AccessTokenURL,
		UserInfoURL:      p.UserInfoURL,
		RefreshTokenURL:  p.RefreshTokenURL,
		RevokeTokenURL:   p.RevokeTokenURL,
		Extras:           extras,
	}, nil
}

// ConfigFunc adapta la tabla de providers al Builder. Un secreto sellado
// que no se puede abrir deja al provider como no configurado.
func (c *Config) ConfigFunc(box *secretbox.Box) oauth.ConfigFunc {
	return func(source string) (oauth.Config, bool) {
		cfg, err := c.OAuth(source, box)
		if err != nil {
			return oauth.Config{}, false
		}
		return cfg, true
	}
}
