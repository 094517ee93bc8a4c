package main

import (
	"context"
	"log"
	"net/http"
	"os/signal"
	"syscall"

	httpapi "github.com/i474232898/weather-forecast-proxy/internal/api/http"
	"github.com/i474232898/weather-forecast-proxy/internal/config"
	"github.com/i474232898/weather-forecast-proxy/internal/weather"
	"github.com/i474232898/weather-forecast-proxy/internal/weather/providers"
)

func main() {
	// Load configuration.
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	// Shared HTTP client for outbound provider calls.
	httpClient := &http.Client{
		Timeout: cfg.UpstreamTimeout,
	}

	provider := providers.NewWeatherAPIProvider(providers.HTTPClientConfig{
		Client: httpClient,
		Breaker: providers.BreakerConfig{
			MaxFailures: uint32(cfg.BreakerMaxFailures),
			OpenTimeout: cfg.BreakerOpenTimeout,
		},
	}, cfg.WeatherAPIKey, cfg.WeatherAPIBaseURL)

	service := weather.NewService(provider, cfg.UpstreamTimeout)

	app := httpapi.NewApp(service, httpapi.Options{AccessLog: cfg.AccessLog})

	addr := cfg.Addr()
	go func() {
		log.Printf("INFO: listening on %s", addr)
		if err := app.Listen(addr); err != nil {
			log.Fatalf("fiber server stopped: %v", err)
		}
	}()

	// Wait for termination signal
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		log.Printf("error during shutdown: %v", err)
	}
}
