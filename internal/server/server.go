// Package server es el server HTTP de demo: redirige al provider, recibe el
// callback y devuelve la identidad normalizada como JSON.
package server

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/dropDatabas3/socialauth/internal/cache"
	"github.com/dropDatabas3/socialauth/internal/httpclient"
	"github.com/dropDatabas3/socialauth/internal/oauth"
	"github.com/dropDatabas3/socialauth/internal/observability/logger"
	"github.com/dropDatabas3/socialauth/internal/rate"
)

const shutdownTimeout = 10 * time.Second

// Options son las dependencias del server. Limiter nil desactiva el rate limit.
type Options struct {
	Registry   *oauth.Registry
	ConfigFunc oauth.ConfigFunc
	Cache      cache.Client
	HTTP       httpclient.Client
	Limiter    rate.Limiter
	FlowOpts   []oauth.FlowOption
	Metrics    http.Handler
}

type Server struct {
	opts Options

	mu    sync.Mutex
	flows map[string]*oauth.Flow
}

func New(opts Options) *Server {
	if opts.Cache == nil {
		opts.Cache = cache.Default()
	}
	if opts.Metrics == nil {
		opts.Metrics = promhttp.Handler()
	}
	return &Server{opts: opts, flows: map[string]*oauth.Flow{}}
}

// Handler arma el router chi.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(withLogging)
	r.Use(middleware.Recoverer)

	r.Get("/healthz", s.healthz)
	r.Get("/providers", s.providers)
	r.Method(http.MethodGet, "/metrics", s.opts.Metrics)

	r.Group(func(r chi.Router) {
		r.Use(withRateLimit(s.opts.Limiter))
		r.Get("/login/{provider}", s.login)
		r.Get("/callback/{provider}", s.callback)
		r.Post("/callback/{provider}", s.callback)
	})
	return r
}

// flow construye (una vez) el Flow de name.
func (s *Server) flow(name string) (*oauth.Flow, error) {
	name = oauth.NormalizeName(name)

	s.mu.Lock()
	defer s.mu.Unlock()
	if f, ok := s.flows[name]; ok {
		return f, nil
	}

	b := oauth.NewBuilder(s.opts.Registry).
		Source(name).
		ConfigFunc(s.opts.ConfigFunc).
		Cache(s.opts.Cache).
		FlowOptions(s.opts.FlowOpts...)
	if s.opts.HTTP != nil {
		b = b.HTTP(s.opts.HTTP)
	}
	f, err := b.Build()
	if err != nil {
		return nil, err
	}
	s.flows[name] = f
	return f, nil
}

// Run sirve h en addr hasta que ctx se cancela y luego hace shutdown.
func Run(ctx context.Context, addr string, h http.Handler) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           h,
		ReadHeaderTimeout: 10 * time.Second,
		WriteTimeout:      30 * time.Second,
	}
	log := logger.Named("server")

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info("listening", zap.String("addr", addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		sctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		log.Info("shutting down")
		return srv.Shutdown(sctx)
	})
	return g.Wait()
}
