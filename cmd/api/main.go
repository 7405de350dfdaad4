package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"correctnow/internal/adapter/repo"
	"correctnow/internal/cache"
	"correctnow/internal/http/handlers"
	httpapi "correctnow/internal/http/httpapi"
	"correctnow/internal/infra"
	"correctnow/internal/infra/geoip"
	"correctnow/internal/lang"
	"correctnow/internal/middleware"
	"correctnow/internal/providers/proof"
	"correctnow/internal/quota"
)

func main() {
	_ = godotenv.Load()

	cfg, err := infra.LoadConfig()
	if err != nil {
		panic(err)
	}
	logger := infra.NewLogger(cfg.AppEnv)

	ctx := context.Background()
	dbpool, err := infra.NewDBPool(ctx, cfg)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to connect database")
	}
	defer dbpool.Close()

	geo, err := geoip.NewResolver(cfg.GeoIPDBPath)
	if err != nil {
		logger.Warn().Err(err).Msg("geoip database unavailable, country hints disabled")
	}
	var lookup middleware.CountryLookup
	if geo != nil {
		lookup = geo.CountryCode
	}

	checker, err := proof.NewGeminiChecker(proof.GeminiOptions{
		APIKey:  cfg.GeminiAPIKey,
		Model:   cfg.GeminiModel,
		BaseURL: cfg.GeminiBaseURL,
	})
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to build proofreading checker")
	}

	ledger := quota.NewLedger(time.Now, cache.New[int](cfg.CacheMaxEntries))
	detector := lang.NewDetector(cfg.CacheMaxEntries, time.Now)
	limiter := middleware.NewAnonLimiter(cfg.AnonRateLimit, cfg.AnonRateWindow, cfg.ExtensionAPIKey, cfg.CacheMaxEntries, time.Now)

	sqlRunner := infra.NewSQLRunner(dbpool, logger)
	quotas := repo.NewQuotaStore(sqlRunner)

	app := handlers.NewApp(cfg, logger, checker, ledger, quotas, detector)

	router := httpapi.NewRouter(app, httpapi.Options{
		JWTSecret:      cfg.JWTSecret,
		AllowedOrigins: cfg.AllowedOrigins,
		AnonLimiter:    limiter,
		CountryLookup:  lookup,
	})

	server := infra.NewHTTPServer(cfg, router)

	go func() {
		logger.Info().Msgf("API listening on :%s", cfg.Port)
		if err := server.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal().Err(err).Msg("http server failed")
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTPIdleTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("failed to shutdown server")
	}
	logger.Info().Msg("server stopped")
}
