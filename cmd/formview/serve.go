package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"

	"github.com/goliatone/go-formview/internal/contact"
	"github.com/goliatone/go-formview/pkg/form"
	"github.com/goliatone/go-formview/pkg/metrics"
)

const sessionCookie = "formview_user"

func newServeCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Serve the contact form over HTTP",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			return a.serve(ctx)
		},
	}
}

func (a *app) serve(ctx context.Context) error {
	engine, err := a.newEngine()
	if err != nil {
		return fmt.Errorf("serve: %w", err)
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	rec, err := metrics.NewPrometheus(reg)
	if err != nil {
		return fmt.Errorf("serve: register metrics: %w", err)
	}

	contactCfg := contact.Config{
		Engine:     engine,
		Sender:     contact.LogSender(a.logger),
		ThanksPath: "/contact/thanks",
	}
	common := []form.OptionFn{
		form.WithHandlerLogger(a.logger),
		form.WithHandlerMetrics(rec),
		form.WithSession(cookieSession),
		form.WithEnv(map[string]string{"app": "formview"}),
	}

	mux := http.NewServeMux()
	if _, err := form.RegisterRoutes(mux, "/", contact.Factory(contactCfg), append(common, form.WithRoutePath("/contact"))...); err != nil {
		return fmt.Errorf("serve: %w", err)
	}
	if _, err := form.RegisterRoutes(mux, "/", contact.ThanksFactory(contactCfg), append(common, form.WithRoutePath("/contact/thanks"))...); err != nil {
		return fmt.Errorf("serve: %w", err)
	}
	mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))

	srv := &http.Server{
		Addr:              a.cfg.Addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		a.logger.Info("listening", "addr", a.cfg.Addr, "templates", a.cfg.Templates, "watch", a.cfg.Watch)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("serve: %w", err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	a.logger.Info("shutting down")
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("serve: shutdown: %w", err)
	}
	return nil
}

// cookieSession treats a formview_user cookie as a signed-in session.
func cookieSession(r *http.Request) (map[string]any, bool) {
	c, err := r.Cookie(sessionCookie)
	if err != nil || c.Value == "" {
		return nil, false
	}
	return map[string]any{"user": c.Value}, true
}
