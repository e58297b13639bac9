// Package kyccore provides the client of the verification service.
package kyccore

import (
	"context"
	"net/http"

	"github.com/kycflow/kycflow/errors"
	"github.com/kycflow/kycflow/fixture"
	kychttp "github.com/kycflow/kycflow/protocol/http"
)

// Process is a sub-process of a verification.
type Process string

const (
	FrontIDCards Process = "frontIdCards"
	BackIDCards  Process = "backIdCards"
	Dopa         Process = "dopa"
)

// Processes lists the processes in the order a verification goes through them.
var Processes = []Process{FrontIDCards, BackIDCards, Dopa}

// Valid reports whether p is a known process.
func (p Process) Valid() bool {
	switch p {
	case FrontIDCards, BackIDCards, Dopa:
		return true
	default:
		return false
	}
}

// ResultField returns the field of the process result in responses.
func (p Process) ResultField() string {
	switch p {
	case FrontIDCards:
		return "frontIdCardResult"
	case BackIDCards:
		return "backIdCardResult"
	case Dopa:
		return "dopaResult"
	default:
		return string(p) + "Result"
	}
}

// Asset returns the fixture uploaded for the process.
func (p Process) Asset() string {
	switch p {
	case FrontIDCards:
		return "frontIdCard.jpg"
	case BackIDCards:
		return "backIdCard.jpg"
	default:
		return string(p) + ".jpg"
	}
}

// Client is the facade of the verification service.
// It returns the raw status and the parsed body of every call and never validates them.
type Client struct {
	http     *kychttp.Client
	fixtures *fixture.Store
}

// New returns a client of the verification service served at baseURL.
func New(baseURL string, fixtures *fixture.Store, opts ...kychttp.ClientOption) (*Client, error) {
	c, err := kychttp.NewClient(baseURL, opts...)
	if err != nil {
		return nil, err
	}
	return &Client{http: c, fixtures: fixtures}, nil
}

// HTTP returns the underlying HTTP client.
func (c *Client) HTTP() *kychttp.Client {
	return c.http
}

// VerificationPath returns the path of the verification id.
// id may be a template like "{{verificationId}}".
func VerificationPath(id string) string {
	return "/verifications/" + id
}

// ProcessPath returns the path of the process of the verification id.
func ProcessPath(id string, p Process) string {
	return VerificationPath(id) + "/" + string(p)
}

// CreateRequest returns the request to create a verification.
// cred may be nil.
func (c *Client) CreateRequest(payload any, cred kychttp.Credential) *kychttp.Request {
	return &kychttp.Request{
		Method:     http.MethodPost,
		Path:       "/verifications",
		Body:       payload,
		Credential: cred,
	}
}

// GetRequest returns the request to get the verification id.
// cred may be nil; the record is readable without credentials.
func (c *Client) GetRequest(id string, cred kychttp.Credential) *kychttp.Request {
	return &kychttp.Request{
		Method:     http.MethodGet,
		Path:       VerificationPath(id),
		Credential: cred,
	}
}

// PatchRootRequest returns the request to patch the root fields like pdpaConsented.
func (c *Client) PatchRootRequest(id string, payload any) *kychttp.Request {
	return &kychttp.Request{
		Method: http.MethodPatch,
		Path:   VerificationPath(id),
		Body:   payload,
	}
}

// PatchProcessRequest returns the request to patch the process p like confirming it.
func (c *Client) PatchProcessRequest(id string, payload any, p Process) (*kychttp.Request, error) {
	if !p.Valid() {
		return nil, errors.Errorf("unknown process %q", p)
	}
	return &kychttp.Request{
		Method: http.MethodPatch,
		Path:   ProcessPath(id, p),
		Body:   payload,
	}, nil
}

// UploadDocumentRequest returns the request to upload the fixture asset of p.
// The body is a multipart form with a single "file" field.
// It returns a TransportError if the fixture cannot be read.
func (c *Client) UploadDocumentRequest(id string, p Process, asset string) (*kychttp.Request, error) {
	if !p.Valid() {
		return nil, errors.Errorf("unknown process %q", p)
	}
	if c.fixtures == nil {
		return nil, errors.Transportf("no fixture store to read %q", asset)
	}
	if asset == "" {
		asset = p.Asset()
	}
	a, err := c.fixtures.Load(asset)
	if err != nil {
		return nil, err
	}
	return &kychttp.Request{
		Method: http.MethodPost,
		Path:   ProcessPath(id, p),
		Files: []kychttp.FilePart{
			{
				Field:       "file",
				Filename:    a.Name,
				ContentType: a.ContentType,
				Content:     a.Bytes(),
			},
		},
	}, nil
}

// Create creates a verification with the config payload.
func (c *Client) Create(ctx context.Context, payload any, cred kychttp.Credential) (*kychttp.Response, error) {
	return c.http.Do(ctx, c.CreateRequest(payload, cred))
}

// Get gets the verification id.
func (c *Client) Get(ctx context.Context, id string, cred kychttp.Credential) (*kychttp.Response, error) {
	return c.http.Do(ctx, c.GetRequest(id, cred))
}

// PatchRoot patches the root fields of the verification id.
func (c *Client) PatchRoot(ctx context.Context, id string, payload any) (*kychttp.Response, error) {
	return c.http.Do(ctx, c.PatchRootRequest(id, payload))
}

// PatchProcess patches the process p of the verification id.
func (c *Client) PatchProcess(ctx context.Context, id string, payload any, p Process) (*kychttp.Response, error) {
	req, err := c.PatchProcessRequest(id, payload, p)
	if err != nil {
		return nil, err
	}
	return c.http.Do(ctx, req)
}

// UploadDocument uploads the fixture asset for the process p.
// An empty asset means the default asset of p.
func (c *Client) UploadDocument(ctx context.Context, id string, p Process, asset string) (*kychttp.Response, error) {
	req, err := c.UploadDocumentRequest(id, p, asset)
	if err != nil {
		return nil, err
	}
	return c.http.Do(ctx, req)
}
