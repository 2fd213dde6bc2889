// Package hunter provides a client for the Hunter.io domain-search API, the
// contact-discovery source for lead qualification.
package hunter

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/rotisserie/eris"
	"golang.org/x/time/rate"
)

const (
	defaultBaseURL  = "https://api.hunter.io/v2"
	defaultPageSize = 10
)

// Client performs domain searches against the contact-discovery provider.
type Client interface {
	// DomainSearch fetches a single page of contacts for a domain.
	DomainSearch(ctx context.Context, domain string, limit, offset int) (*SearchData, error)
	// DomainSearchAll pages through all contacts for a domain, waiting on the
	// inter-page rate limiter between requests.
	DomainSearchAll(ctx context.Context, domain string) (*SearchData, error)
}

// SearchData is the payload of a domain-search response.
type SearchData struct {
	Domain       string  `json:"domain"`
	Organization string  `json:"organization"`
	Emails       []Email `json:"emails"`
}

// Email is a single contact record from a domain search. Confidence is nil
// when the provider omits a score.
type Email struct {
	Value       string `json:"value"`
	FirstName   string `json:"first_name"`
	LastName    string `json:"last_name"`
	Position    string `json:"position"`
	Confidence  *int   `json:"confidence"`
	LinkedIn    string `json:"linkedin"`
	PhoneNumber string `json:"phone_number"`
}

// StatusError is returned for non-200 provider responses. It carries the
// HTTP status and the provider-supplied detail text (raw body when no
// structured detail is available).
type StatusError struct {
	StatusCode int
	Detail     string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("hunter: status %d: %s", e.StatusCode, e.Detail)
}

// Option configures the client.
type Option func(*httpClient)

// WithBaseURL overrides the default API base URL.
func WithBaseURL(url string) Option {
	return func(c *httpClient) {
		c.baseURL = url
	}
}

// WithPageSize sets the per-request result limit.
func WithPageSize(n int) Option {
	return func(c *httpClient) {
		if n > 0 {
			c.pageSize = n
		}
	}
}

// WithPageLimiter sets the rate limiter applied between paginated requests.
func WithPageLimiter(l *rate.Limiter) Option {
	return func(c *httpClient) {
		c.limiter = l
	}
}

// WithHTTPClient overrides the default http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *httpClient) {
		c.http = hc
	}
}

type httpClient struct {
	apiKey   string
	baseURL  string
	pageSize int
	limiter  *rate.Limiter
	http     *http.Client
}

// NewClient creates a domain-search client. The API key is passed as a query
// parameter on every request.
func NewClient(apiKey string, opts ...Option) Client {
	c := &httpClient{
		apiKey:   apiKey,
		baseURL:  defaultBaseURL,
		pageSize: defaultPageSize,
		limiter:  rate.NewLimiter(rate.Every(1200*time.Millisecond), 1),
		http: &http.Client{
			Timeout: 30 * time.Second,
			Transport: &http.Transport{
				MaxIdleConnsPerHost: 10,
				IdleConnTimeout:     90 * time.Second,
			},
		},
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

// searchResponse is the provider's response envelope.
type searchResponse struct {
	Data   SearchData `json:"data"`
	Errors []struct {
		ID      string `json:"id"`
		Code    int    `json:"code"`
		Details string `json:"details"`
	} `json:"errors"`
}

func (c *httpClient) DomainSearch(ctx context.Context, domain string, limit, offset int) (*SearchData, error) {
	if limit <= 0 {
		limit = c.pageSize
	}

	q := url.Values{}
	q.Set("domain", domain)
	q.Set("api_key", c.apiKey)
	q.Set("limit", strconv.Itoa(limit))
	if offset > 0 {
		q.Set("offset", strconv.Itoa(offset))
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/domain-search?"+q.Encode(), nil)
	if err != nil {
		return nil, eris.Wrap(err, "hunter: create request")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, eris.Wrap(err, "hunter: send request")
	}
	defer resp.Body.Close() //nolint:errcheck

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, eris.Wrap(err, "hunter: read response")
	}

	if resp.StatusCode != http.StatusOK {
		return nil, &StatusError{
			StatusCode: resp.StatusCode,
			Detail:     errorDetail(body),
		}
	}

	var result searchResponse
	if err := json.Unmarshal(body, &result); err != nil {
		return nil, eris.Wrap(err, "hunter: unmarshal response")
	}

	return &result.Data, nil
}

func (c *httpClient) DomainSearchAll(ctx context.Context, domain string) (*SearchData, error) {
	all := &SearchData{Domain: domain}

	for offset := 0; ; offset += c.pageSize {
		if offset > 0 && c.limiter != nil {
			if err := c.limiter.Wait(ctx); err != nil {
				return nil, eris.Wrap(err, "hunter: page limiter wait")
			}
		}

		page, err := c.DomainSearch(ctx, domain, c.pageSize, offset)
		if err != nil {
			return nil, err
		}

		if page.Organization != "" {
			all.Organization = page.Organization
		}
		all.Emails = append(all.Emails, page.Emails...)

		if len(page.Emails) < c.pageSize {
			return all, nil
		}
	}
}

// errorDetail extracts the provider's structured error detail, falling back
// to the raw body.
func errorDetail(body []byte) string {
	var envelope searchResponse
	if err := json.Unmarshal(body, &envelope); err == nil && len(envelope.Errors) > 0 && envelope.Errors[0].Details != "" {
		return envelope.Errors[0].Details
	}
	return string(body)
}
