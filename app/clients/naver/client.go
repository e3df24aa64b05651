package naver

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/time/rate"
)

// DefaultBaseURL is the English-Korean dictionary search endpoint
const DefaultBaseURL = "https://en.dict.naver.com/api3/enko/search"

// ErrNotFound is returned when search endpoint responds with 404
var ErrNotFound = errors.New("word not found")

// Client implements integration with Naver dictionary search.
// It returns raw response bodies, parsing is done by voca.ParseSearchResponse.
type Client struct {
	baseURL string
	client  *http.Client
	limiter *rate.Limiter
}

// Options configures Client
type Options struct {
	BaseURL           string
	Timeout           time.Duration
	RequestsPerSecond float64
}

// Search fetches search response body for the word
func (c *Client) Search(ctx context.Context, word string) ([]byte, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("wait for rate limiter: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	query := req.URL.Query()
	query.Add("lang", "en")
	query.Add("query", word)
	req.URL.RawQuery = query.Encode()

	log.Debug().Str("word", word).Str("url", req.URL.String()).Msg("naver search request")
	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch naver dictionary: %w", err)
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response body: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		if resp.StatusCode == http.StatusNotFound {
			return nil, ErrNotFound
		}
		log.Error().
			Str("status", resp.Status).
			Str("word", word).
			Str("body", string(body)).
			Msg("unsuccessful response from naver dictionary")
		return nil, fmt.Errorf("unsuccessful API response %v", resp.StatusCode)
	}
	return body, nil
}

// NewClient creates Client. Zero RequestsPerSecond disables throttling.
func NewClient(opts Options) (*Client, error) {
	baseURL := opts.BaseURL
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if _, err := url.ParseRequestURI(baseURL); err != nil {
		return nil, fmt.Errorf("invalid base URL %q: %w", baseURL, err)
	}
	limit := rate.Inf
	if opts.RequestsPerSecond > 0 {
		limit = rate.Limit(opts.RequestsPerSecond)
	}
	return &Client{
		baseURL: baseURL,
		client:  &http.Client{Timeout: opts.Timeout},
		limiter: rate.NewLimiter(limit, 1),
	}, nil
}
