package cmd

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/MeKo-Tech/reversejp/internal/server"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve reverse lookups over HTTP",
	Long: `Serve reverse lookups over HTTP.

Endpoints:
  GET /v1/reverse?lon=..&lat=..          matches in index order
  GET /v1/reverse/map?lon=..&lat=..      matches keyed by region code
  GET /v1/reverse.geojson?lon=..&lat=..  matches as a GeoJSON FeatureCollection
  GET /healthz                           200 once the index is loaded
  GET /metrics                           Prometheus metrics`,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().String("addr", "127.0.0.1:8080", "Listen address (host:port)")
	serveCmd.Flags().String("cache-control", "no-store", "Cache-Control header for lookup responses")
	serveCmd.Flags().Bool("preload", true, "Build the index at startup instead of on the first request")
	serveCmd.Flags().Duration("shutdown-timeout", 10*time.Second, "Grace period for in-flight requests on shutdown")

	mustBind := func(key string, name string) {
		if err := viper.BindPFlag(key, serveCmd.Flags().Lookup(name)); err != nil {
			panic(fmt.Sprintf("failed to bind flag: %v", err))
		}
	}

	mustBind("serve.addr", "addr")
	mustBind("serve.cache_control", "cache-control")
	mustBind("serve.preload", "preload")
	mustBind("serve.shutdown_timeout", "shutdown-timeout")
}

func runServe(cmd *cobra.Command, args []string) error {
	if logger == nil {
		initLogging()
	}

	addr := viper.GetString("serve.addr")
	cacheControl := viper.GetString("serve.cache_control")
	preload := viper.GetBool("serve.preload")
	shutdownTimeout := viper.GetDuration("serve.shutdown_timeout")

	lazy := newLazyEngine()
	if preload {
		go func() {
			if _, err := lazy.Get(); err != nil {
				logger.Error("failed to load region index", "source", dataSource(), "error", err)
			}
		}()
	}

	h := server.New(lazy, server.Config{CacheControl: cacheControl}, logger)

	logger.Info("lookup server listening",
		"addr", addr,
		"source", dataSource(),
		"preload", preload,
	)

	srv := &http.Server{
		Addr:              addr,
		Handler:           server.AccessLog(logger, h.Routes()),
		ReadHeaderTimeout: 5 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logger.Info("shutting down", "timeout", shutdownTimeout)
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	if err := <-errCh; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
