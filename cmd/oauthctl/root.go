package main

import (
	"errors"
	"io/fs"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/dropDatabas3/socialauth/internal/config"
	"github.com/dropDatabas3/socialauth/internal/oauth"
	"github.com/dropDatabas3/socialauth/internal/oauth/builtin"
	"github.com/dropDatabas3/socialauth/internal/observability/logger"
	"github.com/dropDatabas3/socialauth/internal/security/secretbox"
)

const defaultConfigPath = "config.yaml"

// app es el estado compartido por los subcomandos, cargado en PersistentPreRunE.
type app struct {
	configPath string
	envFile    string

	cfg *config.Config
	box *secretbox.Box
	reg *oauth.Registry
}

func newRootCmd() *cobra.Command {
	a := &app{
		configPath: envOr("OAUTH_CONFIG", ""),
		envFile:    ".env",
		reg:        builtin.Registry(),
	}

	root := &cobra.Command{
		Use:           "oauthctl",
		Short:         "Login social con GitHub, WeChat, Alipay, Twitter y otros providers",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.load()
		},
		PersistentPostRun: func(*cobra.Command, []string) {
			_ = logger.Sync()
		},
	}
	root.PersistentFlags().StringVarP(&a.configPath, "config", "c", a.configPath, "archivo YAML de configuración (env OAUTH_CONFIG)")
	root.PersistentFlags().StringVar(&a.envFile, "env-file", a.envFile, "archivo .env a cargar si existe")

	root.AddCommand(
		newProvidersCmd(a),
		newAuthorizeCmd(a),
		newServeCmd(a),
		newSealCmd(a),
	)
	return root
}

func (a *app) load() error {
	if a.envFile != "" {
		if err := godotenv.Load(a.envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return err
		}
	}

	path := a.configPath
	if path == "" {
		if _, err := os.Stat(defaultConfigPath); err == nil {
			path = defaultConfigPath
		}
	}
	cfg, err := config.Load(path)
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return err
	}
	a.cfg = cfg

	logger.Init(logger.Config{Env: cfg.Log.Env, Level: cfg.Log.Level, ServiceName: "oauthctl"})

	box, err := cfg.SecretBox()
	if err != nil {
		return err
	}
	a.box = box
	return nil
}

func envOr(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}
