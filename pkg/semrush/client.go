// Package semrush queries the SEMrush traffic summary API. It is the
// fallback traffic source when SimilarWeb is unavailable.
package semrush

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/rotisserie/eris"

	"github.com/sells-group/appraisal-cli/internal/resilience"
)

const defaultBaseURL = "https://api.semrush.com"

// Summary is the monthly traffic summary for a domain.
type Summary struct {
	Visits float64 `json:"visits"`
	Trend  string  `json:"trend"`
}

// Client fetches traffic summaries.
type Client interface {
	TrafficSummary(ctx context.Context, domain string) (*Summary, error)
}

// Option configures the client.
type Option func(*httpClient)

// WithBaseURL overrides the default API base URL.
func WithBaseURL(u string) Option {
	return func(c *httpClient) {
		c.baseURL = u
	}
}

// WithHTTPClient overrides the default http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *httpClient) {
		c.http = hc
	}
}

type httpClient struct {
	apiKey  string
	baseURL string
	http    *http.Client
}

// NewClient creates a SEMrush client.
func NewClient(apiKey string, opts ...Option) Client {
	c := &httpClient{
		apiKey:  apiKey,
		baseURL: defaultBaseURL,
		http: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

func (c *httpClient) TrafficSummary(ctx context.Context, domain string) (*Summary, error) {
	endpoint := c.baseURL + "/analytics/traffic/summary/" + url.PathEscape(domain)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, eris.Wrap(err, "semrush: create request")
	}
	req.Header.Set("api-key", c.apiKey)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, eris.Wrap(err, "semrush: send request")
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, eris.Wrap(err, "semrush: read response")
	}

	if resp.StatusCode != http.StatusOK {
		err := eris.Errorf("semrush: unexpected status %d: %s", resp.StatusCode, string(body))
		if resilience.IsTransientHTTPStatus(resp.StatusCode) {
			return nil, resilience.NewTransientError(err, resp.StatusCode)
		}
		return nil, err
	}

	var s Summary
	if err := json.Unmarshal(body, &s); err != nil {
		return nil, eris.Wrap(err, "semrush: unmarshal response")
	}

	return &s, nil
}
