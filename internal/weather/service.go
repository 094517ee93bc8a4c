package weather

import (
	"context"
	"fmt"
	"strings"
	"time"
)

// Service sits between the HTTP layer and the upstream provider.
type Service struct {
	provider Provider
	timeout  time.Duration
}

// NewService creates a new Service. A non-positive timeout leaves the
// caller's context deadline untouched.
func NewService(provider Provider, timeout time.Duration) *Service {
	return &Service{
		provider: provider,
		timeout:  timeout,
	}
}

// GetForecast fetches the fixed-window forecast for location. Every call is a
// fresh upstream round-trip.
func (s *Service) GetForecast(ctx context.Context, location string) (WeatherResponse, error) {
	location = strings.TrimSpace(location)
	if location == "" {
		return WeatherResponse{}, ErrEmptyLocation
	}

	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	resp, err := s.provider.FetchForecast(ctx, location, ForecastDays)
	if err != nil {
		return WeatherResponse{}, err
	}

	if len(resp.DailyForecast) != ForecastDays {
		return WeatherResponse{}, ShapeError("daily_forecast",
			fmt.Errorf("provider %s returned %d days, want %d", s.provider.Name(), len(resp.DailyForecast), ForecastDays))
	}

	return resp, nil
}
