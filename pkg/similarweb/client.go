// Package similarweb queries the SimilarWeb traffic API.
package similarweb

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/rotisserie/eris"

	"github.com/sells-group/appraisal-cli/internal/resilience"
)

const defaultBaseURL = "https://api.similarweb.com/v1/website"

// MonthlyVisits is one month in the visits series.
type MonthlyVisits struct {
	Date   string  `json:"date"`
	Visits float64 `json:"visits"`
}

// Client fetches monthly visit series for a domain.
type Client interface {
	Visits(ctx context.Context, domain string) ([]MonthlyVisits, error)
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

// NewClient creates a SimilarWeb client.
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

type visitsResponse struct {
	Visits []MonthlyVisits `json:"visits"`
}

func (c *httpClient) Visits(ctx context.Context, domain string) ([]MonthlyVisits, error) {
	q := url.Values{}
	q.Set("country", "999")
	q.Set("granularity", "monthly")
	q.Set("main_domain_only", "false")
	q.Set("format", "json")

	endpoint := fmt.Sprintf("%s/%s/total-traffic-and-engagement/visits?%s",
		c.baseURL, url.PathEscape(domain), q.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, eris.Wrap(err, "similarweb: create request")
	}
	req.Header.Set("api-key", c.apiKey)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, eris.Wrap(err, "similarweb: send request")
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, eris.Wrap(err, "similarweb: read response")
	}

	if resp.StatusCode != http.StatusOK {
		err := eris.Errorf("similarweb: unexpected status %d: %s", resp.StatusCode, string(body))
		if resilience.IsTransientHTTPStatus(resp.StatusCode) {
			return nil, resilience.NewTransientError(err, resp.StatusCode)
		}
		return nil, err
	}

	var vr visitsResponse
	if err := json.Unmarshal(body, &vr); err != nil {
		return nil, eris.Wrap(err, "similarweb: unmarshal response")
	}
	if len(vr.Visits) == 0 {
		return nil, eris.New("similarweb: no traffic data available")
	}

	return vr.Visits, nil
}
