package cli

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
	"github.com/yasite/internal/db"
	"github.com/yasite/internal/router"
)

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:       "serve <news|notes>",
		Short:     "Run one of the web sites",
		Long:      `Start the HTTP server for the news site or the notes site. Both share the same database and users.`,
		Args:      cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
		ValidArgs: []string{router.SiteNews, router.SiteNotes},
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return serve(ctx, args[0])
		},
	}
}

func serve(ctx context.Context, site string) error {
	gin.SetMode(cfg.GinMode)

	if err := openDatabase(); err != nil {
		return err
	}
	defer closeDatabase()

	engine, err := router.SetupRouter(site, db.DB, router.Options{
		SessionSecret:      cfg.SessionSecret,
		SecureCookies:      cfg.SecureCookies,
		HomeNewsCount:      cfg.HomeNewsCount,
		LoginRatePerMinute: cfg.LoginRatePerMinute,
		Logger:             appLogger,
	})
	if err != nil {
		return err
	}

	srv := &http.Server{
		Addr:              cfg.ListenAddr,
		Handler:           engine,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	appLogger.Info("starting server",
		slog.String("site", site),
		slog.String("addr", cfg.ListenAddr),
		slog.String("environment", cfg.Environment),
		slog.String("database", cfg.DatabasePath),
	)

	errCh := make(chan error, 1)
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("failed to run server: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	appLogger.Info("shutting down server", slog.String("site", site))
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("graceful shutdown failed: %w", err)
	}
	return <-errCh
}
