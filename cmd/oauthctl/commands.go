package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/dropDatabas3/socialauth/internal/httpclient"
	"github.com/dropDatabas3/socialauth/internal/infra/cachefactory"
	"github.com/dropDatabas3/socialauth/internal/metrics"
	"github.com/dropDatabas3/socialauth/internal/oauth"
	"github.com/dropDatabas3/socialauth/internal/observability/logger"
	"github.com/dropDatabas3/socialauth/internal/rate"
	"github.com/dropDatabas3/socialauth/internal/security/secretbox"
	"github.com/dropDatabas3/socialauth/internal/server"
)

func newProvidersCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "providers",
		Short: "Lista los providers disponibles y si están configurados",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "PROVIDER\tCONFIGURED")
			fn := a.cfg.ConfigFunc(a.box)
			for _, name := range a.reg.Names() {
				_, ok := fn(name)
				fmt.Fprintf(tw, "%s\t%t\n", name, ok)
			}
			return tw.Flush()
		},
	}
}

// flowOptions traduce el bloque state de la config.
func (a *app) flowOptions() []oauth.FlowOption {
	return []oauth.FlowOption{
		oauth.WithStateTTL(a.cfg.StateTTL()),
		oauth.WithSingleUseState(a.cfg.SingleUseState()),
	}
}

func newAuthorizeCmd(a *app) *cobra.Command {
	var (
		state string
		extra []string
	)
	cmd := &cobra.Command{
		Use:   "authorize <provider>",
		Short: "Imprime la URL de autorización del provider",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			// el state tiene que quedar donde el server lo va a buscar
			h, err := cachefactory.Open(ctx, cachefactory.FromConfig(a.cfg))
			if err != nil {
				return err
			}
			defer h.Close()

			hc, err := httpclient.New(a.cfg.HTTPClient())
			if err != nil {
				return err
			}
			f, err := oauth.NewBuilder(a.reg).
				Source(args[0]).
				ConfigFunc(a.cfg.ConfigFunc(a.box)).
				Cache(h.Cache).
				HTTP(hc).
				FlowOptions(a.flowOptions()...).
				Build()
			if err != nil {
				return err
			}

			ext, err := parseKV(extra)
			if err != nil {
				return err
			}
			u, err := f.AuthorizeWith(ctx, state, ext)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), u)
			return nil
		},
	}
	cmd.Flags().StringVar(&state, "state", "", "state CSRF explícito (default: UUID aleatorio)")
	cmd.Flags().StringArrayVar(&extra, "extra", nil, "parámetro extra del adapter, key=value (repetible)")
	return cmd
}

func parseKV(items []string) (map[string]string, error) {
	out := make(map[string]string, len(items))
	for _, it := range items {
		k, v, ok := strings.Cut(it, "=")
		if !ok || strings.TrimSpace(k) == "" {
			return nil, fmt.Errorf("extra inválido %q: se espera key=value", it)
		}
		out[strings.TrimSpace(k)] = v
	}
	return out, nil
}

func newServeCmd(a *app) *cobra.Command {
	var addr string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Levanta el server de demo (/login, /callback, /providers, /metrics)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			log := logger.Named("serve")

			h, err := cachefactory.Open(ctx, cachefactory.FromConfig(a.cfg))
			if err != nil {
				return err
			}
			defer h.Close()

			hc, err := httpclient.New(a.cfg.HTTPClient())
			if err != nil {
				return err
			}
			if err := metrics.RegisterFlow(nil); err != nil {
				return err
			}

			var lim rate.Limiter
			if h.Redis != nil {
				lim = rate.NewRedisLimiter(h.Redis, a.cfg.Cache.Prefix+"rl:", a.cfg.Server.RateLimit.Requests, a.cfg.RateWindow())
				logger.S().Infof("rate limit: %d requests per %s per client", a.cfg.Server.RateLimit.Requests, a.cfg.RateWindow())
			} else {
				log.Info("rate limit disabled: requires cache.kind=redis")
			}

			srv := server.New(server.Options{
				Registry:   a.reg,
				ConfigFunc: a.cfg.ConfigFunc(a.box),
				Cache:      h.Cache,
				HTTP:       hc,
				Limiter:    lim,
				FlowOpts:   a.flowOptions(),
			})
			if addr == "" {
				addr = a.cfg.Server.Addr
			}
			log.Info("providers configured", zap.Strings("providers", a.cfg.ProviderNames()))
			if err := server.Run(ctx, addr, srv.Handler()); err != nil && !errors.Is(err, context.Canceled) {
				return err
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "", "dirección de escucha (default server.addr)")
	return cmd
}

func newSealCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "seal <secret>",
		Short: "Sella un client secret para guardarlo en config.yaml",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if a.box == nil {
				return secretbox.ErrNoKey
			}
			sealed, err := a.box.Seal(args[0])
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), sealed)
			return nil
		},
	}
}
