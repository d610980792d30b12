package engine

import (
	"context"
	"fmt"
	"io"
	"net/http"

	stealth "github.com/anatolykoptev/go-stealth"
)

// Re-export stealth types and functions for engine consumers.
type BrowserClient = stealth.BrowserClient

func ChromeHeaders() map[string]string { return stealth.ChromeHeaders() }
func RandomUserAgent() string          { return stealth.RandomUserAgent() }

// maxPageBytes bounds watch-page reads.
const maxPageBytes = 6 * 1024 * 1024

// FetchPage GETs an HTML page. The stealth browser client is preferred when
// configured; otherwise the plain HTTP client is used with RetryHTTP.
// Returns the body and the final status code.
func FetchPage(ctx context.Context, pageURL string) ([]byte, int, error) {
	if cfg.BrowserClient != nil {
		headers := ChromeHeaders()
		headers["accept-language"] = "en-US,en;q=0.9"
		type page struct {
			body   []byte
			status int
		}
		p, err := RetryDo(ctx, DefaultRetryConfig, func() (page, error) {
			data, _, status, err := cfg.BrowserClient.Do(http.MethodGet, pageURL, headers, nil)
			if err != nil {
				return page{}, err
			}
			if isRetryableStatus(status) {
				return page{}, &HTTPStatusError{StatusCode: status}
			}
			return page{body: data, status: status}, nil
		})
		if err == nil {
			return p.body, p.status, nil
		}
		if ctx.Err() != nil {
			return nil, 0, ctx.Err()
		}
		// Fall through to the plain client: proxies in the pool can be dead.
	}

	resp, err := RetryHTTP(ctx, DefaultRetryConfig, func() (*http.Response, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
		if err != nil {
			return nil, err
		}
		req.Header.Set("User-Agent", RandomUserAgent())
		req.Header.Set("Accept-Language", "en-US,en;q=0.9")
		req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")
		return cfg.HTTPClient.Do(req)
	})
	if err != nil {
		return nil, 0, fmt.Errorf("fetch page: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxPageBytes))
	if err != nil {
		return nil, resp.StatusCode, fmt.Errorf("read page: %w", err)
	}
	return body, resp.StatusCode, nil
}
