package rest

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/tidwall/gjson"
	"golang.org/x/time/rate"
)

// ErrInvalidJSON is returned when an upstream answers 2xx with a body that is not JSON.
var ErrInvalidJSON = errors.New("upstream returned invalid JSON")

//go:generate mockgen -source=client.go -destination=mock_fetcher.go -package=rest Fetcher

// Fetcher issues a single GET against a base URL and returns the raw JSON body.
type Fetcher interface {
	FetchJSON(ctx context.Context, path string, query url.Values) ([]byte, error)
}

// FetchError describes a failed upstream call. StatusCode is zero when the
// request never produced a response.
type FetchError struct {
	URL        string
	StatusCode int
	Err        error
}

func (e *FetchError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("GET %s: unexpected status code: %d", e.URL, e.StatusCode)
	}
	return fmt.Sprintf("GET %s: %v", e.URL, e.Err)
}

func (e *FetchError) Unwrap() error {
	return e.Err
}

// Extensions is reported alongside the GraphQL error for the failing field.
func (e *FetchError) Extensions() map[string]interface{} {
	ext := map[string]interface{}{"code": "UPSTREAM_FETCH_FAILED"}
	if e.StatusCode != 0 {
		ext["status"] = e.StatusCode
	}
	return ext
}

type Config struct {
	BaseURL   string
	UserAgent string
	Timeout   time.Duration
	RPS       float64
}

type Client struct {
	httpClient *http.Client
	userAgent  string
	baseURL    string
	limiter    *rate.Limiter
}

func NewClient(cfg Config) *Client {
	limit := rate.Inf
	if cfg.RPS > 0 {
		limit = rate.Limit(cfg.RPS)
	}
	return &Client{
		httpClient: &http.Client{
			Timeout: cfg.Timeout,
		},
		userAgent: cfg.UserAgent,
		baseURL:   strings.TrimRight(cfg.BaseURL, "/"),
		limiter:   rate.NewLimiter(limit, 1),
	}
}

// WithHTTPClient replaces the underlying client, e.g. with one bound to an httptest server.
func (c *Client) WithHTTPClient(hc *http.Client) *Client {
	c.httpClient = hc
	return c
}

func (c *Client) BaseURL() string {
	return c.baseURL
}

// FetchJSON issues exactly one GET to baseURL+path. There is no retry and no
// caching; a failure is reported to the caller as a *FetchError.
func (c *Client) FetchJSON(ctx context.Context, path string, query url.Values) ([]byte, error) {
	u := c.baseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}

	if err := c.limiter.Wait(ctx); err != nil {
		return nil, &FetchError{URL: redactURL(u), Err: err}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, &FetchError{URL: redactURL(u), Err: err}
	}
	req.Header.Set("Accept", "application/json")
	if c.userAgent != "" {
		req.Header.Set("User-Agent", c.userAgent)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		var uerr *url.Error
		if errors.As(err, &uerr) {
			err = uerr.Err
		}
		return nil, &FetchError{URL: redactURL(u), Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil, &FetchError{URL: redactURL(u), StatusCode: resp.StatusCode}
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &FetchError{URL: redactURL(u), Err: err}
	}
	if !gjson.ValidBytes(body) {
		return nil, &FetchError{URL: redactURL(u), Err: ErrInvalidJSON}
	}
	return body, nil
}

// redactURL hides credentials carried in the query string so they never end
// up in logs or GraphQL error messages.
func redactURL(raw string) string {
	u, err := url.Parse(raw)
	if err != nil {
		return raw
	}
	q := u.Query()
	redacted := false
	for _, key := range []string{"api_key", "apikey", "token"} {
		if q.Has(key) {
			q.Set(key, "REDACTED")
			redacted = true
		}
	}
	if !redacted {
		return raw
	}
	u.RawQuery = q.Encode()
	return u.String()
}
