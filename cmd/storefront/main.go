package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/lynixdevs/urbanthreads/internal/auth"
	"github.com/lynixdevs/urbanthreads/internal/cart"
	"github.com/lynixdevs/urbanthreads/internal/catalog"
	"github.com/lynixdevs/urbanthreads/internal/checkout"
	"github.com/lynixdevs/urbanthreads/internal/config"
	"github.com/lynixdevs/urbanthreads/internal/db"
	handler "github.com/lynixdevs/urbanthreads/internal/handler/http"
	"github.com/lynixdevs/urbanthreads/internal/notify"
	"github.com/lynixdevs/urbanthreads/internal/order"
	"github.com/lynixdevs/urbanthreads/internal/profile"
)

func main() {
	zerolog.SetGlobalLevel(zerolog.DebugLevel)

	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})
	log.Logger = log.With().Str("service", "storefront").Logger()

	log.Info().Msg("Storefront starting...")

	cfg, err := config.Load(".env")
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load config")
	}

	if err := db.Migrate(cfg.Postgres, "migrations"); err != nil {
		log.Fatal().Err(err).Msg("Failed to apply migrations")
	}

	pg, err := db.New(context.Background(), cfg.Postgres)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to database")
	}
	defer pg.Close()

	cartStore, err := cart.NewBoltStore(cfg.App.CartDBPath)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to open cart store")
	}
	defer cartStore.Close()

	profileRepo := profile.NewRepository(pg.Pool)
	profileService := profile.NewService(profileRepo)

	sessionRepo := auth.NewSessionRepository(pg.Pool)
	authService := auth.NewService(profileRepo, sessionRepo, cfg.App.SessionTTL)

	catalogService := catalog.NewService(catalog.NewRepository(pg.Pool))
	if err := catalogService.Refresh(context.Background()); err != nil {
		log.Warn().Err(err).Msg("Initial catalog refresh failed, starting with empty snapshot")
	}

	refreshCtx, stopRefresh := context.WithCancel(context.Background())
	defer stopRefresh()
	go refreshCatalog(refreshCtx, catalogService, cfg.App.CatalogRefreshInterval)

	cartService := cart.NewService(cartStore)

	orderRepo := order.NewRepository(pg.Pool)
	orderService := order.NewService(orderRepo, profileService)

	notifier := notify.NewClient(cfg.Notify.Endpoint, cfg.Notify.Timeout)
	checkoutService := checkout.NewService(orderRepo, cartService, profileRepo, notifier)

	router := handler.NewRouter(authService, handler.Handlers{
		Auth:     handler.NewAuthHandler(authService),
		Catalog:  handler.NewCatalogHandler(catalogService),
		Cart:     handler.NewCartHandler(cartService, catalogService),
		Checkout: handler.NewCheckoutHandler(checkoutService),
		Order:    handler.NewOrderHandler(orderService),
		Profile:  handler.NewProfileHandler(profileService),
	})

	srv := &http.Server{
		Addr:         ":" + cfg.App.Port,
		Handler:      router,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	go func() {
		log.Info().Str("port", cfg.App.Port).Msg("Starting HTTP server")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("Server failed")
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	<-sigChan
	log.Info().Msg("Shutting down...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal().Err(err).Msg("Shutdown failed")
	}
	log.Info().Msg("Server stopped")
}

// refreshCatalog reloads the catalog snapshot on a fixed interval. A failed
// reload keeps the previous snapshot; the error is only logged.
func refreshCatalog(ctx context.Context, svc *catalog.Service, interval time.Duration) {
	if interval <= 0 {
		return
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := svc.Refresh(ctx); err != nil {
				log.Warn().Err(err).Msg("Periodic catalog refresh failed")
			}
		}
	}
}
