package geocoding

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"golang.org/x/time/rate"
)

// DefaultTimeout bounds every upstream call. There are no retries.
const DefaultTimeout = 10 * time.Second

// HTTPClient defines the interface for making HTTP requests.
// This allows for easy mocking in tests.
type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}

// secretParams are redacted from logged request URLs.
var secretParams = []string{"apiKey", "apikey", "key"}

// httpFetcher performs rate limited GET requests against a JSON API.
type httpFetcher struct {
	name    string
	client  HTTPClient
	limiter *rate.Limiter
	log     *slog.Logger
	headers map[string]string
}

func newHTTPClient(timeout time.Duration) *http.Client {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &http.Client{Timeout: timeout}
}

// newLimiter builds a limiter allowing rps requests per second. Zero or less means unlimited.
func newLimiter(rps int) *rate.Limiter {
	if rps <= 0 {
		return rate.NewLimiter(rate.Inf, 0)
	}
	return rate.NewLimiter(rate.Limit(rps), rps)
}

// getJSON sends a GET request to reqURL and decodes the JSON body into out.
func (f *httpFetcher) getJSON(ctx context.Context, reqURL *url.URL, out any) error {
	if err := f.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("rate limit exceeded: %w", err)
	}

	f.log.DebugContext(ctx, "Provider request URL", "provider", f.name, "url", redactURL(reqURL))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL.String(), nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Accept", "application/json")
	for key, value := range f.headers {
		req.Header.Set(key, value)
	}

	resp, err := f.client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to execute %s request: %w", f.name, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response body: %w", err)
	}

	switch resp.StatusCode {
	case http.StatusOK:
		// continue
	case http.StatusUnauthorized, http.StatusForbidden:
		f.log.ErrorContext(ctx, "Provider rejected credentials", "provider", f.name, "status", resp.StatusCode)
		return fmt.Errorf("%w: %s API returned status %d: %s", ErrUnauthorized, f.name, resp.StatusCode, string(body))
	default:
		f.log.ErrorContext(ctx, "Provider API error", "provider", f.name, "status", resp.StatusCode, "body", string(body))
		return fmt.Errorf("%s API returned status %d: %s", f.name, resp.StatusCode, string(body))
	}

	f.log.DebugContext(ctx, "Provider raw response", "provider", f.name, "body", string(body))

	if err = json.Unmarshal(body, out); err != nil {
		f.log.ErrorContext(ctx, "Failed to parse provider response", "provider", f.name, "error", err)
		return fmt.Errorf("failed to decode %s response: %w", f.name, err)
	}

	return nil
}

func redactURL(u *url.URL) string {
	clone := *u
	query := clone.Query()
	for _, param := range secretParams {
		if query.Has(param) {
			query.Set(param, "REDACTED")
		}
	}
	clone.RawQuery = query.Encode()
	return clone.String()
}

func mustParseURL(raw string) *url.URL {
	u, err := url.Parse(raw)
	if err != nil {
		panic(fmt.Sprintf("invalid provider endpoint %q: %v", raw, err))
	}
	return u
}

// withQuery returns a copy of base with params set on its query string.
func withQuery(base *url.URL, params url.Values) *url.URL {
	clone := *base
	query := clone.Query()
	for key, values := range params {
		for _, value := range values {
			query.Set(key, value)
		}
	}
	clone.RawQuery = query.Encode()
	return &clone
}
