// Package casekeeper provides the client of the case service.
package casekeeper

import (
	"context"
	"net/http"

	kychttp "github.com/kycflow/kycflow/protocol/http"
)

// VerificationIDQuery is the query of the verification id in a created case.
const VerificationIDQuery = ".proprietors[0].verifications[0].id"

// Client is the facade of the case service.
type Client struct {
	http *kychttp.Client
}

// New returns a client of the case service served at baseURL.
func New(baseURL string, opts ...kychttp.ClientOption) (*Client, error) {
	c, err := kychttp.NewClient(baseURL, opts...)
	if err != nil {
		return nil, err
	}
	return &Client{http: c}, nil
}

// HTTP returns the underlying HTTP client.
func (c *Client) HTTP() *kychttp.Client {
	return c.http
}

// CasePayload returns a case with a single proprietor holding the verifications.
func CasePayload(verifications ...any) map[string]any {
	if verifications == nil {
		verifications = []any{}
	}
	return map[string]any{
		"proprietors": []any{
			map[string]any{
				"verifications": verifications,
			},
		},
	}
}

// CreateCaseRequest returns the request to create a case.
func (c *Client) CreateCaseRequest(payload any, cred kychttp.Credential) *kychttp.Request {
	return &kychttp.Request{
		Method:     http.MethodPost,
		Path:       "/cases",
		Body:       payload,
		Credential: cred,
	}
}

// CreateCase creates a case.
func (c *Client) CreateCase(ctx context.Context, payload any, cred kychttp.Credential) (*kychttp.Response, error) {
	return c.http.Do(ctx, c.CreateCaseRequest(payload, cred))
}
