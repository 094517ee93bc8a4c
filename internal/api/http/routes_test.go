package httpapi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/i474232898/weather-forecast-proxy/internal/weather"
	"github.com/i474232898/weather-forecast-proxy/internal/weather/providers"
)

// upstreamPayload mimics forecast.json for the given resolved name.
func upstreamPayload(name string) string {
	days := make([]string, 0, weather.ForecastDays)
	for i := 0; i < weather.ForecastDays; i++ {
		days = append(days, fmt.Sprintf(
			`{"date":"2024-01-%02d","day":{"maxtemp_c":16.0,"mintemp_c":10.0,"condition":{"text":"Cloudy"}}}`, i+1))
	}
	nameJSON, _ := json.Marshal(name)
	return fmt.Sprintf(
		`{"location":{"name":%s},"current":{"temp_c":15.0,"condition":{"text":"Cloudy"}},"forecast":{"forecastday":[%s]}}`,
		nameJSON, strings.Join(days, ","))
}

// newTestApp wires the real provider and service against a stub upstream.
func newTestApp(t *testing.T, upstream http.HandlerFunc) *fiber.App {
	t.Helper()
	srv := httptest.NewServer(upstream)
	t.Cleanup(srv.Close)

	provider := providers.NewWeatherAPIProvider(providers.HTTPClientConfig{
		Client:  &http.Client{Timeout: 2 * time.Second},
		Breaker: providers.BreakerConfig{MaxFailures: 100, OpenTimeout: time.Minute},
	}, "secret-key", srv.URL+"/v1/forecast.json")

	return NewApp(weather.NewService(provider, 2*time.Second), Options{})
}

// captureLog redirects the standard logger for the duration of the test.
func captureLog(t *testing.T) *bytes.Buffer {
	t.Helper()
	var buf bytes.Buffer
	prevOut, prevFlags := log.Writer(), log.Flags()
	log.SetOutput(&buf)
	t.Cleanup(func() {
		log.SetOutput(prevOut)
		log.SetFlags(prevFlags)
	})
	return &buf
}

func doGet(t *testing.T, app *fiber.App, target string) (*http.Response, []byte) {
	t.Helper()
	resp, err := app.Test(httptest.NewRequest(http.MethodGet, target, nil), -1)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("read body: %v", err)
	}
	return resp, body
}

func TestGetWeatherEndToEnd(t *testing.T) {
	app := newTestApp(t, func(w http.ResponseWriter, r *http.Request) {
		if got := r.URL.Query().Get("q"); got != "London" {
			t.Errorf("expected q=London, got %q", got)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, upstreamPayload("London"))
	})

	resp, body := doGet(t, app, "/weather?location=London")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected status %d, got %d: %s", http.StatusOK, resp.StatusCode, body)
	}
	if ct := resp.Header.Get(fiber.HeaderContentType); !strings.HasPrefix(ct, fiber.MIMEApplicationJSON) {
		t.Fatalf("expected json content type, got %q", ct)
	}

	var got weather.WeatherResponse
	if err := json.Unmarshal(body, &got); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if got.Location != "London" || got.TempC != 15.0 || got.Condition != "Cloudy" {
		t.Fatalf("unexpected body: %s", body)
	}
	if len(got.DailyForecast) != weather.ForecastDays {
		t.Fatalf("expected %d days, got %d", weather.ForecastDays, len(got.DailyForecast))
	}
	first := got.DailyForecast[0]
	if first.Date != "2024-01-01" || first.MaxTempC != 16.0 || first.MinTempC != 10.0 || first.Condition != "Cloudy" {
		t.Fatalf("unexpected first day: %+v", first)
	}

	// The wire format uses the snake_case names callers depend on.
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(body, &raw); err != nil {
		t.Fatalf("decode raw body: %v", err)
	}
	for _, key := range []string{"location", "temp_c", "condition", "daily_forecast"} {
		if _, ok := raw[key]; !ok {
			t.Fatalf("missing key %q in %s", key, body)
		}
	}
}

func TestGetWeatherMissingLocation(t *testing.T) {
	app := newTestApp(t, func(w http.ResponseWriter, r *http.Request) {
		t.Error("upstream must not be called")
	})

	for _, target := range []string{"/weather", "/weather?location=", "/weather?location=%20%20"} {
		resp, body := doGet(t, app, target)
		if resp.StatusCode != http.StatusBadRequest {
			t.Fatalf("%s: expected status %d, got %d", target, http.StatusBadRequest, resp.StatusCode)
		}

		var errBody struct {
			Error   bool   `json:"error"`
			Message string `json:"message"`
		}
		if err := json.Unmarshal(body, &errBody); err != nil {
			t.Fatalf("%s: decode body: %v", target, err)
		}
		if !errBody.Error || errBody.Message != msgLocationRequired {
			t.Fatalf("%s: unexpected body %s", target, body)
		}
	}
}

func TestGetWeatherUpstreamFailureIsGeneric(t *testing.T) {
	tests := map[string]http.HandlerFunc{
		"unauthorized": func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusUnauthorized)
			_, _ = io.WriteString(w, `{"error":{"code":2006,"message":"API key secret-key is invalid"}}`)
		},
		"malformed json": func(w http.ResponseWriter, r *http.Request) {
			_, _ = io.WriteString(w, `{"location":`)
		},
		"missing field": func(w http.ResponseWriter, r *http.Request) {
			_, _ = io.WriteString(w, `{"location":{"name":"London"},"current":{"condition":{"text":"Cloudy"}}}`)
		},
	}

	for name, upstream := range tests {
		t.Run(name, func(t *testing.T) {
			logs := captureLog(t)
			app := newTestApp(t, upstream)

			resp, body := doGet(t, app, "/weather?location=London")
			if resp.StatusCode != http.StatusInternalServerError {
				t.Fatalf("expected status %d, got %d", http.StatusInternalServerError, resp.StatusCode)
			}
			if bytes.Contains(body, []byte("secret-key")) || !bytes.Contains(body, []byte(msgFetchFailed)) {
				t.Fatalf("unexpected body %s", body)
			}

			lines := strings.Split(strings.TrimSpace(logs.String()), "\n")
			if len(lines) != 1 || !strings.Contains(lines[0], "ERROR:") || !strings.Contains(lines[0], `location="London"`) {
				t.Fatalf("expected exactly one error log line, got %q", logs.String())
			}
		})
	}
}

type panickingService struct{}

func (panickingService) GetForecast(context.Context, string) (weather.WeatherResponse, error) {
	panic("boom")
}

func TestGetWeatherRecoversFromPanic(t *testing.T) {
	captureLog(t)
	app := NewApp(panickingService{}, Options{})

	resp, body := doGet(t, app, "/weather?location=London")
	if resp.StatusCode != http.StatusInternalServerError {
		t.Fatalf("expected status %d, got %d", http.StatusInternalServerError, resp.StatusCode)
	}
	if bytes.Contains(body, []byte("boom")) {
		t.Fatalf("panic detail leaked: %s", body)
	}
}

func TestGetWeatherConcurrentRequests(t *testing.T) {
	app := newTestApp(t, func(w http.ResponseWriter, r *http.Request) {
		// Resolve to an upper-cased name so responses are distinguishable.
		_, _ = io.WriteString(w, upstreamPayload(strings.ToUpper(r.URL.Query().Get("q"))))
	})

	const n = 25
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()

			location := fmt.Sprintf("city-%d", i)
			req := httptest.NewRequest(http.MethodGet, "/weather?location="+url.QueryEscape(location), nil)
			resp, err := app.Test(req, -1)
			if err != nil {
				t.Errorf("request %d: %v", i, err)
				return
			}
			defer resp.Body.Close()

			var got weather.WeatherResponse
			if err := json.NewDecoder(resp.Body).Decode(&got); err != nil {
				t.Errorf("request %d: decode: %v", i, err)
				return
			}
			if want := strings.ToUpper(location); got.Location != want {
				t.Errorf("request %d: expected location %q, got %q", i, want, got.Location)
			}
		}(i)
	}
	wg.Wait()
}

func TestHealth(t *testing.T) {
	app := NewApp(panickingService{}, Options{})

	resp, body := doGet(t, app, "/health")
	if resp.StatusCode != http.StatusOK || !bytes.Contains(body, []byte(`"ok"`)) {
		t.Fatalf("unexpected health response %d %s", resp.StatusCode, body)
	}
}
