package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/fjod/go_cart/shop-cart/internal/cart"
	"github.com/fjod/go_cart/shop-cart/internal/catalog"
	"github.com/fjod/go_cart/shop-cart/internal/config"
	h "github.com/fjod/go_cart/shop-cart/internal/http"
	"github.com/fjod/go_cart/shop-cart/internal/metrics"
	"github.com/fjod/go_cart/shop-cart/internal/session"
	"github.com/fjod/go_cart/shop-cart/pkg/logger"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"golang.org/x/sync/errgroup"
)

func main() {
	cfg := config.Load()
	log := logger.New(logger.Options{
		Service:   "shop-cart",
		Env:       cfg.AppEnv,
		Level:     cfg.LogLevel,
		AddSource: true,
	})

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	products, err := loadCatalog(ctx, cfg)
	if err != nil {
		log.Error("catalog load failed", slog.Any("err", err))
		os.Exit(1)
	}
	log.Info("catalog loaded", slog.Int("products", products.Len()), slog.String("source", catalogSource(cfg)))

	m := metrics.New()

	sessions := session.NewRegistry(
		func() *cart.Store {
			return cart.NewStore(products, cart.WithLogger(log), cart.WithRecorder(m))
		},
		session.WithTTL(cfg.SessionTTL),
		session.WithCleanupInterval(cfg.SessionCleanupInterval),
		session.WithGauge(m),
		session.WithLogger(log),
	)
	defer sessions.Close()

	router := h.NewRouter(h.RouterConfig{
		Catalog:            products,
		Sessions:           sessions,
		Metrics:            m,
		Logger:             log,
		RequestTimeout:     cfg.RequestTimeout,
		MaxRequestBodySize: cfg.MaxRequestBodySize,
	})

	srv := &http.Server{
		Addr:              ":" + cfg.HTTPPort,
		Handler:           otelhttp.NewHandler(router, "shop-cart"),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      10 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		log.Info("http server starting", slog.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		log.Info("shutdown requested")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		log.Error("server error", slog.Any("err", err))
		os.Exit(1)
	}
	log.Info("bye")
}

func loadCatalog(ctx context.Context, cfg *config.Config) (*catalog.Catalog, error) {
	if cfg.CatalogDBPath == "" {
		return catalog.Default(), nil
	}
	return catalog.LoadSQLite(ctx, cfg.CatalogDBPath)
}

func catalogSource(cfg *config.Config) string {
	if cfg.CatalogDBPath == "" {
		return "seed"
	}
	return cfg.CatalogDBPath
}
