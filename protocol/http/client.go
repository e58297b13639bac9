// Package http provides the HTTP client facade shared by the service clients.
package http

import (
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/kycflow/kycflow/errors"
)

const (
	defaultTimeout     = 30 * time.Second
	defaultContentType = "application/json"
)

// Client sends requests to a single service.
// It binds the base URL and the default headers of the service.
type Client struct {
	baseURL    *url.URL
	header     http.Header
	httpClient *http.Client
}

// ClientOption represents an option of Client.
type ClientOption func(*Client)

// WithHTTPClient returns an option to send requests with hc.
func WithHTTPClient(hc *http.Client) ClientOption {
	return func(c *Client) {
		if hc != nil {
			c.httpClient = hc
		}
	}
}

// WithTimeout returns an option to bound each request by d.
func WithTimeout(d time.Duration) ClientOption {
	return func(c *Client) {
		if d > 0 {
			hc := *c.httpClient
			hc.Timeout = d
			c.httpClient = &hc
		}
	}
}

// WithHeader returns an option to add a default header.
func WithHeader(key, value string) ClientOption {
	return func(c *Client) {
		c.header.Add(key, value)
	}
}

// NewClient returns a client for the service served at baseURL.
// JSON is the default content type of request bodies.
func NewClient(baseURL string, opts ...ClientOption) (*Client, error) {
	u, err := url.Parse(baseURL)
	if err != nil {
		return nil, errors.Wrapf(err, "invalid base url %q", baseURL)
	}
	if u.Scheme == "" || u.Host == "" {
		return nil, errors.Errorf("invalid base url %q: scheme and host are required", baseURL)
	}
	u.Path = strings.TrimSuffix(u.Path, "/")
	c := &Client{
		baseURL: u,
		header: http.Header{
			"Content-Type": []string{defaultContentType},
		},
		httpClient: &http.Client{Timeout: defaultTimeout},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// BaseURL returns the base URL of c.
func (c *Client) BaseURL() string {
	return c.baseURL.String()
}

func (c *Client) buildURL(path string, query url.Values) *url.URL {
	u := *c.baseURL
	if path != "" && !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	u.Path = c.baseURL.Path + path
	u.RawPath = ""
	if len(query) > 0 {
		u.RawQuery = query.Encode()
	}
	return &u
}
