package providers

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"time"

	"github.com/i474232898/weather-forecast-proxy/internal/weather"
	"github.com/sony/gobreaker"
)

// maxBodyBytes bounds how much of an upstream body is read.
const maxBodyBytes = 4 << 20

// BreakerConfig controls when the circuit around a provider opens.
type BreakerConfig struct {
	// MaxFailures is the number of consecutive failures that opens the circuit.
	MaxFailures uint32
	// OpenTimeout is how long the circuit stays open before a probe request is let through.
	OpenTimeout time.Duration
}

// HTTPClientConfig bundles the HTTP client and breaker settings.
type HTTPClientConfig struct {
	Client  *http.Client
	Breaker BreakerConfig
}

var (
	errNoHTTPClient = errors.New("http client not configured")
	errBodyTooLarge = errors.New("upstream body exceeds size limit")
)

func newCircuitBreaker(name string, cfg BreakerConfig) *gobreaker.CircuitBreaker {
	maxFailures := cfg.MaxFailures
	if maxFailures == 0 {
		maxFailures = 5
	}

	return gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        name,
		MaxRequests: 1,
		Interval:    1 * time.Minute,
		Timeout:     cfg.OpenTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= maxFailures
		},
	})
}

// doRequest performs a single GET through the circuit breaker and returns the
// body of a 2xx response. There are no retries. Transport failures and 5xx/429
// responses count against the breaker; other 4xx responses do not.
func doRequest(
	ctx context.Context,
	client *http.Client,
	cb *gobreaker.CircuitBreaker,
	rawURL string,
) ([]byte, error) {
	if client == nil {
		return nil, weather.NetworkError(errNoHTTPClient, false)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, weather.NetworkError(fmt.Errorf("failed to create request: %w", err), false)
	}
	req.Header.Set("Accept", "application/json")

	result, err := cb.Execute(func() (interface{}, error) {
		resp, execErr := client.Do(req)
		if execErr != nil {
			return nil, weather.NetworkError(redactURLError(execErr), isTimeout(ctx, execErr))
		}

		if resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500 {
			drainAndClose(resp)
			return nil, weather.StatusError(resp.StatusCode)
		}

		return resp, nil
	})
	if err != nil {
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			return nil, weather.NetworkError(fmt.Errorf("circuit breaker %s: %w", cb.Name(), err), false)
		}
		return nil, err
	}

	resp, ok := result.(*http.Response)
	if !ok {
		return nil, weather.NetworkError(fmt.Errorf("unexpected result type from circuit breaker"), false)
	}
	defer resp.Body.Close()

	// The body of an error response is never parsed.
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		drainAndClose(resp)
		return nil, weather.StatusError(resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes+1))
	if err != nil {
		return nil, weather.NetworkError(fmt.Errorf("failed to read response body: %w", err), isTimeout(ctx, err))
	}
	if len(body) > maxBodyBytes {
		return nil, weather.NetworkError(errBodyTooLarge, false)
	}

	return body, nil
}

func isTimeout(ctx context.Context, err error) bool {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}

// redactURLError drops the request URL, which carries the API key, from
// transport errors before they reach the logs.
func redactURLError(err error) error {
	var urlErr *url.Error
	if !errors.As(err, &urlErr) {
		return err
	}
	u, parseErr := url.Parse(urlErr.URL)
	if parseErr != nil {
		return fmt.Errorf("%s: %w", urlErr.Op, urlErr.Err)
	}
	u.RawQuery = ""
	return fmt.Errorf("%s %q: %w", urlErr.Op, u.Redacted(), urlErr.Err)
}

func drainAndClose(resp *http.Response) {
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, maxBodyBytes))
	_ = resp.Body.Close()
}
