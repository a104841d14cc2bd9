package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/ayusman/mudra/internal/app"
	"github.com/ayusman/mudra/internal/config"
	"github.com/ayusman/mudra/internal/detector"
	"github.com/ayusman/mudra/internal/gesture"
	"github.com/ayusman/mudra/internal/server"
	"github.com/ayusman/mudra/internal/store"
)

func newServeCommand(v *viper.Viper) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP/WebSocket API and the detection pipeline",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, log, err := loadConfig(v)
			if err != nil {
				return err
			}
			defer log.Sync()

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			return serve(ctx, cfg, log)
		},
	}

	flags := cmd.Flags()
	flags.String("addr", ":8080", "HTTP listen address")
	flags.String("db", "", "SQLite database path (default is $HOME/.mudra/mudra.db)")
	flags.String("web", "", "directory of static files to serve")
	flags.String("estimator", "", "pose estimator command writing one JSON frame per line")
	flags.StringSlice("estimator-arg", nil, "argument passed to the estimator (repeatable)")
	flags.Int("max-hands", 2, "maximum hands classified per frame")
	flags.Bool("enabled", true, "start with detection enabled")

	bindFlag(v, "http.addr", flags.Lookup("addr"))
	bindFlag(v, "store.path", flags.Lookup("db"))
	bindFlag(v, "web.static_dir", flags.Lookup("web"))
	bindFlag(v, "estimator.command", flags.Lookup("estimator"))
	bindFlag(v, "estimator.args", flags.Lookup("estimator-arg"))
	bindFlag(v, "estimator.max_hands", flags.Lookup("max-hands"))
	bindFlag(v, "classifier.enabled", flags.Lookup("enabled"))

	return cmd
}

// serve runs until ctx is cancelled or the HTTP server fails.
func serve(ctx context.Context, cfg config.Config, log *zap.Logger) error {
	if err := os.MkdirAll(filepath.Dir(cfg.Store.Path), 0755); err != nil {
		return fmt.Errorf("create data directory: %w", err)
	}

	st, err := store.New(cfg.Store.Path)
	if err != nil {
		return fmt.Errorf("initialize store: %w", err)
	}
	defer st.Close()

	seeded, err := st.Mudras().Seed(gesture.DefaultCatalog().Entries())
	if err != nil {
		return fmt.Errorf("seed catalog: %w", err)
	}
	log.Info("Opened store", zap.String("path", st.Path()), zap.Int("seeded", seeded))

	var src detector.Source
	if cfg.Estimator.Command != "" {
		ps, err := detector.NewProcessSource(detector.Config{
			Command:  cfg.Estimator.Command,
			Args:     cfg.Estimator.Args,
			MaxHands: cfg.Estimator.MaxHands,
		}, log.Named("estimator"))
		if err != nil {
			return err
		}
		defer ps.Close()
		src = ps
	} else {
		log.Info("No estimator configured; accepting frames over HTTP and WebSocket only")
	}

	app.RegisterMetrics()
	a := app.New(app.Config{
		Store:   st,
		Source:  src,
		Thumb:   cfg.Thumb(),
		Enabled: cfg.Classifier.Enabled,
		Logger:  log.Named("app"),
	})
	// Settings changed through the API outlive restarts.
	if err := a.LoadSettings(); err != nil {
		log.Warn("Ignoring stored settings", zap.Error(err))
	}

	if cfg.Web.StaticDir != "" {
		log.Info("Serving static files", zap.String("dir", cfg.Web.StaticDir))
	}
	srv := server.New(server.Config{
		StaticDir: cfg.Web.StaticDir,
		Store:     st,
		App:       a,
		Logger:    log.Named("http"),
	})
	defer srv.Close()

	httpSrv := &http.Server{
		Addr:              cfg.HTTP.Addr,
		Handler:           srv,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("Starting HTTP server", zap.String("addr", cfg.HTTP.Addr))
		if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	if src != nil {
		go func() {
			if err := a.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
				log.Error("Detection pipeline failed", zap.Error(err))
			}
		}()
	}

	select {
	case <-ctx.Done():
		log.Info("Received shutdown signal")
	case err := <-errCh:
		return fmt.Errorf("http server: %w", err)
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.HTTP.ShutdownSec)*time.Second)
	defer cancel()

	if err := httpSrv.Shutdown(shutdownCtx); err != nil {
		log.Error("Error during shutdown", zap.Error(err))
	}

	log.Info("Server stopped gracefully")
	return nil
}
