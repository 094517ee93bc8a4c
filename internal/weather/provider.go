package weather

import (
	"context"
)

// Provider abstracts the upstream forecast source (WeatherAPI.com).
type Provider interface {
	Name() string
	FetchForecast(ctx context.Context, location string, days int) (WeatherResponse, error)
}
