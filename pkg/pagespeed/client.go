// Package pagespeed queries the Google PageSpeed Insights v5 API for a
// mobile Lighthouse performance score.
package pagespeed

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"

	"github.com/rotisserie/eris"
	"golang.org/x/time/rate"

	"github.com/sells-group/appraisal-cli/internal/resilience"
)

const defaultBaseURL = "https://www.googleapis.com/pagespeedonline/v5/runPagespeed"

// Client runs a page-speed test for a domain and returns a 0-100 score.
type Client interface {
	Score(ctx context.Context, domain string) (int, error)
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

// WithRateLimit caps outgoing requests per second. PSI quotas are tight on
// shared keys.
func WithRateLimit(perSecond float64) Option {
	return func(c *httpClient) {
		if perSecond > 0 {
			c.limiter = rate.NewLimiter(rate.Limit(perSecond), 1)
		}
	}
}

type httpClient struct {
	apiKey  string
	baseURL string
	http    *http.Client
	limiter *rate.Limiter
}

// NewClient creates a PageSpeed Insights client. The overall deadline is the
// caller's context; Lighthouse runs routinely take tens of seconds.
func NewClient(apiKey string, opts ...Option) Client {
	c := &httpClient{
		apiKey:  apiKey,
		baseURL: defaultBaseURL,
		http:    &http.Client{},
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

type runResponse struct {
	LighthouseResult struct {
		Categories struct {
			Performance struct {
				Score *float64 `json:"score"`
			} `json:"performance"`
		} `json:"categories"`
	} `json:"lighthouseResult"`
}

func (c *httpClient) Score(ctx context.Context, domain string) (int, error) {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return 0, eris.Wrap(err, "pagespeed: rate limit wait")
		}
	}

	q := url.Values{}
	q.Set("url", "https://"+domain)
	q.Set("strategy", "mobile")
	q.Set("category", "PERFORMANCE")
	q.Set("fields", "lighthouseResult.categories.performance.score")
	if c.apiKey != "" {
		q.Set("key", c.apiKey)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"?"+q.Encode(), nil)
	if err != nil {
		return 0, eris.Wrap(err, "pagespeed: create request")
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return 0, eris.Wrap(err, "pagespeed: send request")
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return 0, eris.Wrap(err, "pagespeed: read response")
	}

	if resp.StatusCode != http.StatusOK {
		err := eris.Errorf("pagespeed: unexpected status %d: %s", resp.StatusCode, string(body))
		if resilience.IsTransientHTTPStatus(resp.StatusCode) {
			return 0, resilience.NewTransientError(err, resp.StatusCode)
		}
		return 0, err
	}

	var rr runResponse
	if err := json.Unmarshal(body, &rr); err != nil {
		return 0, eris.Wrap(err, "pagespeed: unmarshal response")
	}
	if rr.LighthouseResult.Categories.Performance.Score == nil {
		return 0, eris.New("pagespeed: no performance score in response")
	}

	score := int(*rr.LighthouseResult.Categories.Performance.Score*100 + 0.5)
	if score < 0 {
		score = 0
	}
	if score > 100 {
		score = 100
	}
	return score, nil
}
