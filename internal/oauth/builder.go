package oauth

import (
	"fmt"
	"sort"

	"github.com/dropDatabas3/socialauth/internal/cache"
	"github.com/dropDatabas3/socialauth/internal/httpclient"
)

// ConfigFunc produces the application config for a provider lazily.
type ConfigFunc func(source string) (Config, bool)

// Builder resolves a provider name to an adapter and wraps it in a Flow.
//
// Descriptor lookup tries the built-in table first, then sources added with
// ExtendSources. Adapter lookup tries factories added with Register first,
// then built-in factories.
type Builder struct {
	builtin      *Registry
	source       string
	cfg          *Config
	cfgFunc      ConfigFunc
	extSources   map[string]Source
	extFactories map[string]Factory
	cache        cache.Client
	http         httpclient.Client
	flowOpts     []FlowOption
}

// NewBuilder returns a builder over the built-in registry (may be nil).
func NewBuilder(builtin *Registry) *Builder {
	if builtin == nil {
		builtin = NewRegistry()
	}
	return &Builder{
		builtin:      builtin,
		extSources:   map[string]Source{},
		extFactories: map[string]Factory{},
	}
}

func (b *Builder) Source(name string) *Builder {
	b.source = NormalizeName(name)
	return b
}

func (b *Builder) Config(cfg Config) *Builder {
	b.cfg = &cfg
	return b
}

func (b *Builder) ConfigFunc(fn ConfigFunc) *Builder {
	b.cfgFunc = fn
	return b
}

// ExtendSources adds descriptors that are not in the built-in table. They are
// visible to this builder only, scopes included.
func (b *Builder) ExtendSources(srcs ...Source) *Builder {
	for _, s := range srcs {
		s.Name = NormalizeName(s.Name)
		b.extSources[s.Name] = s
	}
	return b
}

// Register adds an extension adapter factory; it shadows a built-in one.
func (b *Builder) Register(name string, f Factory) *Builder {
	b.extFactories[NormalizeName(name)] = f
	return b
}

func (b *Builder) Cache(c cache.Client) *Builder {
	b.cache = c
	return b
}

func (b *Builder) HTTP(h httpclient.Client) *Builder {
	b.http = h
	return b
}

func (b *Builder) FlowOptions(opts ...FlowOption) *Builder {
	b.flowOpts = append(b.flowOpts, opts...)
	return b
}

// Names lists every provider the builder can resolve.
func (b *Builder) Names() []string {
	seen := map[string]bool{}
	for _, n := range b.builtin.Names() {
		seen[n] = true
	}
	for n := range b.extSources {
		seen[n] = true
	}
	out := make([]string, 0, len(seen))
	for n := range seen {
		out = append(out, n)
	}
	sort.Strings(out)
	return out
}

// Build resolves config, descriptor and adapter. Every failure wraps ErrConfig.
func (b *Builder) Build() (*Flow, error) {
	if b.source == "" {
		return nil, fmt.Errorf("%w: source name is empty", ErrConfig)
	}

	cfg, ok := b.resolveConfig()
	if !ok {
		return nil, fmt.Errorf("%w: no config for source %q", ErrConfig, b.source)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", b.source, err)
	}

	src, ok := b.builtin.Source(b.source)
	if !ok {
		src, ok = b.extSources[b.source]
	}
	if !ok {
		return nil, fmt.Errorf("%w: source %q not found", ErrConfig, b.source)
	}

	factory, ok := b.extFactories[b.source]
	if !ok {
		factory, ok = b.builtin.Factory(b.source)
	}
	if !ok {
		return nil, fmt.Errorf("%w: no adapter for source %q", ErrConfig, b.source)
	}

	c := b.cache
	if c == nil {
		c = cache.Default()
	}
	adapter, err := factory(cfg, src, Deps{HTTP: b.http, Cache: c})
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrConfig, b.source, err)
	}
	return NewFlow(adapter, cfg, c, b.flowOpts...), nil
}

func (b *Builder) resolveConfig() (Config, bool) {
	if b.cfg != nil {
		return *b.cfg, true
	}
	if b.cfgFunc != nil {
		return b.cfgFunc(b.source)
	}
	return Config{}, false
}
