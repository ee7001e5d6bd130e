package feed

import (
	"context"
	"errors"
	"fmt"
	"math"
	"net/http"
	"time"

	"github.com/sony/gobreaker"
)

// BackoffConfig controls exponential backoff behaviour for feed requests.
type BackoffConfig struct {
	MaxRetries      int
	InitialInterval time.Duration
	MaxInterval     time.Duration
}

var (
	errRateLimited = errors.New("rate limited")
	errServerError = errors.New("server error")
	errUnexpected  = errors.New("unexpected status code")
	errCircuitOpen = errors.New("circuit breaker open")
)

// fetch gets one feed file with retries, exponential backoff, and the feed's
// circuit breaker. The caller owns the response body on success.
func (f *StationFeed) fetch(ctx context.Context, file string) (*http.Response, error) {
	var attempt int
	var lastErr error

	for {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, f.baseURL+"/"+file, nil)
		if err != nil {
			return nil, err
		}

		result, err := f.circuit.Execute(func() (interface{}, error) {
			resp, execErr := f.client.Do(req)
			if execErr != nil {
				return nil, execErr
			}

			// Classify rate limiting and server errors explicitly.
			switch {
			case resp.StatusCode == http.StatusTooManyRequests:
				resp.Body.Close()
				return nil, errRateLimited
			case resp.StatusCode >= 500:
				resp.Body.Close()
				return nil, errServerError
			case resp.StatusCode < 200 || resp.StatusCode >= 300:
				resp.Body.Close()
				return nil, fmt.Errorf("%w: %d", errUnexpected, resp.StatusCode)
			}

			return resp, nil
		})

		if err == nil {
			return result.(*http.Response), nil
		}

		// An open circuit means the feed is down; retrying here only delays
		// the abort, so propagate immediately.
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			return nil, fmt.Errorf("%w: %v", errCircuitOpen, err)
		}

		lastErr = err
		if attempt >= f.backoff.MaxRetries {
			return nil, lastErr
		}

		delay := f.backoff.InitialInterval * time.Duration(math.Pow(2, float64(attempt)))
		if f.backoff.MaxInterval > 0 && delay > f.backoff.MaxInterval {
			delay = f.backoff.MaxInterval
		}

		timer := time.NewTimer(delay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil, ctx.Err()
		case <-timer.C:
		}

		attempt++
	}
}
