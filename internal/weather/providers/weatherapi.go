package providers

import (
	"context"
	"fmt"
	"net/url"
	"strconv"

	"github.com/i474232898/weather-forecast-proxy/internal/weather"
	"github.com/sony/gobreaker"
)

// DefaultWeatherAPIURL is the WeatherAPI.com forecast endpoint.
const DefaultWeatherAPIURL = "https://api.weatherapi.com/v1/forecast.json"

// WeatherAPIProvider implements the weather.Provider interface for WeatherAPI.com.
type WeatherAPIProvider struct {
	name    string
	apiKey  string
	baseURL string
	httpCfg HTTPClientConfig
	circuit *gobreaker.CircuitBreaker
}

func NewWeatherAPIProvider(httpCfg HTTPClientConfig, apiKey, baseURL string) *WeatherAPIProvider {
	if baseURL == "" {
		baseURL = DefaultWeatherAPIURL
	}

	return &WeatherAPIProvider{
		name:    "weatherapi",
		apiKey:  apiKey,
		baseURL: baseURL,
		httpCfg: httpCfg,
		circuit: newCircuitBreaker("weatherapi", httpCfg.Breaker),
	}
}

func (p *WeatherAPIProvider) Name() string {
	return p.name
}

// FetchForecast performs one forecast.json call and reshapes the payload.
// The returned forecast holds exactly days entries in upstream order.
func (p *WeatherAPIProvider) FetchForecast(ctx context.Context, location string, days int) (weather.WeatherResponse, error) {
	if location == "" {
		return weather.WeatherResponse{}, weather.ErrEmptyLocation
	}

	body, err := doRequest(ctx, p.httpCfg.Client, p.circuit, p.forecastURL(location, days))
	if err != nil {
		return weather.WeatherResponse{}, err
	}

	doc, err := decodeDocument(body)
	if err != nil {
		return weather.WeatherResponse{}, err
	}

	return parseForecast(doc, days)
}

func (p *WeatherAPIProvider) forecastURL(location string, days int) string {
	values := url.Values{}
	values.Set("key", p.apiKey)
	values.Set("q", location)
	values.Set("days", strconv.Itoa(days))

	return fmt.Sprintf("%s?%s", p.baseURL, values.Encode())
}

func parseForecast(doc node, days int) (weather.WeatherResponse, error) {
	var (
		out weather.WeatherResponse
		err error
	)

	if out.Location, err = doc.get("location").get("name").str(); err != nil {
		return weather.WeatherResponse{}, err
	}

	current := doc.get("current")
	if out.TempC, err = current.get("temp_c").float(); err != nil {
		return weather.WeatherResponse{}, err
	}
	if out.Condition, err = current.get("condition").get("text").str(); err != nil {
		return weather.WeatherResponse{}, err
	}

	forecastDays := doc.get("forecast").get("forecastday")
	items, err := forecastDays.array()
	if err != nil {
		return weather.WeatherResponse{}, err
	}
	if len(items) < days {
		return weather.WeatherResponse{}, weather.ShapeError(forecastDays.path,
			fmt.Errorf("got %d days, want %d", len(items), days))
	}

	out.DailyForecast = make([]weather.DailyForecast, 0, days)
	for _, item := range items[:days] {
		day, err := parseDay(item)
		if err != nil {
			return weather.WeatherResponse{}, err
		}
		out.DailyForecast = append(out.DailyForecast, day)
	}

	return out, nil
}

func parseDay(item node) (weather.DailyForecast, error) {
	var (
		d   weather.DailyForecast
		err error
	)

	if d.Date, err = item.get("date").str(); err != nil {
		return d, err
	}

	day := item.get("day")
	if d.MaxTempC, err = day.get("maxtemp_c").float(); err != nil {
		return d, err
	}
	if d.MinTempC, err = day.get("mintemp_c").float(); err != nil {
		return d, err
	}
	if d.Condition, err = day.get("condition").get("text").str(); err != nil {
		return d, err
	}

	return d, nil
}
