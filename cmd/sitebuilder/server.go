package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
	"github.com/thatcatcamp/sitebuilder/internal/config"
	"github.com/thatcatcamp/sitebuilder/internal/db"
	"github.com/thatcatcamp/sitebuilder/internal/handlers"
	"github.com/thatcatcamp/sitebuilder/internal/middleware"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

var serverCmd = &cobra.Command{
	Use:   "server",
	Short: "Server operations",
	Long:  "Serve image style derivatives over HTTP",
}

var serverStartCmd = &cobra.Command{
	Use:   "start",
	Short: "Start the HTTP server",
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := initDB(); err != nil {
			return err
		}

		rateLimit := config.GetInt("server.rate_limit")
		rateInterval := config.GetDuration("server.rate_interval")
		var limiter *middleware.RateLimiter
		if rateLimit > 0 && rateInterval > 0 {
			limiter = middleware.NewRateLimiter(rateLimit, rateInterval)
			defer limiter.Stop()
		}

		ipFilter, err := middleware.NewIPFilter(
			config.GetStringSlice("server.blocked_ips"),
			config.GetStringSlice("server.allowed_ips"))
		if err != nil {
			return fmt.Errorf("invalid IP filter: %w", err)
		}

		if verbose {
			gin.SetMode(gin.DebugMode)
		} else {
			gin.SetMode(gin.ReleaseMode)
		}

		router, err := handlers.NewRouter(db.GetDB(), handlers.RouterOptions{
			Derivatives: handlers.DerivativeOptions{
				FilesDir:  config.GetString("storage.files_dir"),
				StylesDir: config.GetString("storage.styles_dir"),
				Quality:   config.GetInt("images.jpeg_quality"),
			},
			Limiter:  limiter,
			IPFilter: ipFilter,
			HSTS:     config.GetBool("server.hsts"),

			TrustedProxies: config.GetStringSlice("server.trusted_proxies"),
		})
		if err != nil {
			return err
		}

		port := config.GetString("server.http_port")
		if port == "" {
			port = "8080"
		}
		srv := &http.Server{
			Addr:              ":" + port,
			Handler:           router,
			ReadHeaderTimeout: 10 * time.Second,
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		g, ctx := errgroup.WithContext(ctx)
		g.Go(func() error {
			zap.L().Info("HTTP server listening", zap.String("addr", srv.Addr))
			fmt.Fprintf(cmd.OutOrStdout(), "Serving image styles on http://localhost:%s/styles/\n", port)
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return fmt.Errorf("HTTP server error: %w", err)
			}
			return nil
		})
		g.Go(func() error {
			<-ctx.Done()
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			zap.L().Info("shutting down HTTP server")
			return srv.Shutdown(shutdownCtx)
		})

		return g.Wait()
	},
}

func init() {
	serverCmd.AddCommand(serverStartCmd)
	rootCmd.AddCommand(serverCmd)
}
