package http

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/kycflow/kycflow/errors"
	"github.com/kycflow/kycflow/protocol/http/marshaler"
)

// Credential authorizes a request.
type Credential interface {
	Apply(req *http.Request) error
}

// Request represents a request sent by Client.
type Request struct {
	Method string         `yaml:"method"`
	Path   string         `yaml:"path"`
	Query  url.Values     `yaml:"query,omitempty"`
	Header http.Header    `yaml:"header,omitempty"`
	Body   any            `yaml:"body,omitempty"`
	Files  []FilePart     `yaml:"files,omitempty"`
	Fields map[string]any `yaml:"fields,omitempty"`

	// Credential is optional. A request without credential is sent anonymously.
	Credential Credential `yaml:"-"`
}

// Do sends req and returns the response.
// It returns a TransportError if no response is received.
// A response of any status is returned as is.
func (c *Client) Do(ctx context.Context, req *Request) (*Response, error) {
	httpReq, err := c.newHTTPRequest(ctx, req)
	if err != nil {
		return nil, err
	}
	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, errors.Transportf("%s %s: %s", httpReq.Method, httpReq.URL, err)
	}
	defer resp.Body.Close()
	res, err := newResponse(resp)
	if err != nil {
		return nil, errors.Transportf("%s %s: %s", httpReq.Method, httpReq.URL, err)
	}
	return res, nil
}

func (c *Client) newHTTPRequest(ctx context.Context, req *Request) (*http.Request, error) {
	method := strings.ToUpper(req.Method)
	if method == "" {
		method = http.MethodGet
	}
	header := c.header.Clone()
	for k, vs := range req.Header {
		header.Del(k)
		for _, v := range vs {
			header.Add(k, v)
		}
	}

	var body io.Reader
	switch {
	case len(req.Files) > 0:
		b, contentType, err := encodeMultipart(req.Fields, req.Files)
		if err != nil {
			return nil, errors.Wrap(err, "failed to encode multipart body")
		}
		header.Set("Content-Type", contentType)
		body = bytes.NewReader(b)
	case req.Body != nil:
		contentType := header.Get("Content-Type")
		m := marshaler.Get(contentType)
		if m == nil {
			return nil, errors.Errorf("no marshaler for %q", contentType)
		}
		b, err := m.Marshal(req.Body)
		if err != nil {
			return nil, errors.Wrapf(err, "failed to marshal request body as %s", m.MediaType())
		}
		body = bytes.NewReader(b)
	default:
		header.Del("Content-Type")
	}

	httpReq, err := http.NewRequestWithContext(ctx, method, c.buildURL(req.Path, req.Query).String(), body)
	if err != nil {
		return nil, errors.Wrap(err, "failed to create request")
	}
	httpReq.Header = header
	if req.Credential != nil {
		if err := req.Credential.Apply(httpReq); err != nil {
			return nil, err
		}
	}
	return httpReq, nil
}
