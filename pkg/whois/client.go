// Package whois queries a who-dat style WHOIS JSON API.
package whois

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/rotisserie/eris"
)

const defaultBaseURL = "https://who-dat.as93.net"

// Record holds the registration facts we extract from a WHOIS response.
type Record struct {
	CreatedDate    *time.Time
	ExpirationDate *time.Time
	Registrar      string
}

// Client performs WHOIS lookups.
type Client interface {
	Lookup(ctx context.Context, domain string) (*Record, error)
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
	baseURL string
	http    *http.Client
}

// NewClient creates a WHOIS client.
func NewClient(opts ...Option) Client {
	c := &httpClient{
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

// lookupResponse mirrors the subset of the who-dat payload we use.
type lookupResponse struct {
	Domain struct {
		CreatedDate    string `json:"created_date"`
		ExpirationDate string `json:"expiration_date"`
	} `json:"domain"`
	Registrar struct {
		Name string `json:"name"`
	} `json:"registrar"`
}

func (c *httpClient) Lookup(ctx context.Context, domain string) (*Record, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/"+url.PathEscape(domain), nil)
	if err != nil {
		return nil, eris.Wrap(err, "whois: create request")
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, eris.Wrap(err, "whois: send request")
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, eris.Wrap(err, "whois: read response")
	}

	if resp.StatusCode != http.StatusOK {
		return nil, eris.Errorf("whois: unexpected status %d: %s", resp.StatusCode, string(body))
	}

	var lr lookupResponse
	if err := json.Unmarshal(body, &lr); err != nil {
		return nil, eris.Wrap(err, "whois: unmarshal response")
	}

	return &Record{
		CreatedDate:    parseDate(lr.Domain.CreatedDate),
		ExpirationDate: parseDate(lr.Domain.ExpirationDate),
		Registrar:      lr.Registrar.Name,
	}, nil
}

// WHOIS servers are inconsistent about date formats; try the common ones.
var dateLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05Z",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

func parseDate(s string) *time.Time {
	if s == "" {
		return nil
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return &t
		}
	}
	return nil
}
