package main

import (
	"log/slog"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/goliatone/go-formview/internal/contact"
	"github.com/goliatone/go-formview/pkg/render/template/gotemplate"
)

type app struct {
	envFile string
	cfg     config
	logger  *slog.Logger
	close   func() error
	engine  *gotemplate.Engine
}

func newRootCmd() *cobra.Command {
	a := &app{}
	var flags config

	cmd := &cobra.Command{
		Use:          "formview",
		Short:        "Serve or fill the sample contact form",
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig(a.envFile)
			if err != nil {
				return err
			}
			pf := cmd.Flags()
			if pf.Changed("addr") {
				cfg.Addr = flags.Addr
			}
			if pf.Changed("templates") {
				cfg.Templates = flags.Templates
			}
			if pf.Changed("cache") {
				cfg.Cache = flags.Cache
			}
			if pf.Changed("log-level") {
				cfg.LogLevel = flags.LogLevel
			}
			if pf.Changed("log-file") {
				cfg.LogFile = flags.LogFile
			}
			if pf.Changed("watch") {
				cfg.Watch = flags.Watch
			}
			a.cfg = cfg

			logger, closer, err := newLogger(cmd.ErrOrStderr(), cfg.LogLevel, cfg.LogFile)
			if err != nil {
				return err
			}
			a.logger = logger
			a.close = closer
			return nil
		},
		PersistentPostRunE: func(*cobra.Command, []string) error {
			var err error
			if a.engine != nil {
				err = a.engine.Close()
			}
			if a.close != nil {
				if cerr := a.close(); err == nil {
					err = cerr
				}
			}
			return err
		},
	}

	defaults := defaultConfig()
	pf := cmd.PersistentFlags()
	pf.StringVar(&a.envFile, "env-file", ".env", "dotenv file read before FORMVIEW_* variables")
	pf.StringVar(&flags.Addr, "addr", defaults.Addr, "listen address")
	pf.StringVar(&flags.Templates, "templates", defaults.Templates, "template source dir overriding the embedded templates")
	pf.StringVar(&flags.Cache, "cache", defaults.Cache, "compiled template cache dir")
	pf.StringVar(&flags.LogLevel, "log-level", defaults.LogLevel, "log level (debug, info, warn, error)")
	pf.StringVar(&flags.LogFile, "log-file", "", "also write JSON logs to this file")
	pf.BoolVar(&flags.Watch, "watch", false, "invalidate compiled templates when sources change")

	cmd.AddCommand(newServeCmd(a), newFillCmd(a))
	return cmd
}

// newEngine builds the shared template engine. Templates found in the
// configured source dir win over the embedded ones.
func (a *app) newEngine() (*gotemplate.Engine, error) {
	logger := a.logger
	opts := []gotemplate.Option{
		gotemplate.WithFS(contact.Templates()),
		gotemplate.WithCacheDir(a.cfg.Cache),
		gotemplate.WithAutoReload(true),
		gotemplate.WithLogger(logger),
	}
	if dir := a.cfg.Templates; dir != "" {
		if info, err := os.Stat(dir); err == nil && info.IsDir() {
			abs, err := filepath.Abs(dir)
			if err != nil {
				return nil, err
			}
			opts = append(opts, gotemplate.WithBaseDir(abs), gotemplate.WithWatch(a.cfg.Watch))
		} else if a.cfg.Watch {
			logger.Warn("template dir not found, watch disabled", "dir", dir)
		}
	}

	engine, err := gotemplate.New(opts...)
	if err != nil {
		return nil, err
	}
	a.engine = engine
	return engine, nil
}
