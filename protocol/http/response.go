package http

import (
	"bytes"
	"encoding/json"
	"io"
	"mime"
	"net/http"
	"strings"

	"github.com/mattn/go-encoding"
	"golang.org/x/text/transform"

	"github.com/kycflow/kycflow/errors"
	"github.com/kycflow/kycflow/protocol/http/unmarshaler"
)

// Response represents a response returned by Client.
// The facade never validates it.
type Response struct {
	Status     string      `yaml:"status"`
	StatusCode int         `yaml:"statusCode"`
	Header     http.Header `yaml:"header,omitempty"`
	Body       any         `yaml:"body,omitempty"`
	Raw        []byte      `yaml:"-"`
}

// StatusLine implements protocol.Response interface.
func (r *Response) StatusLine() string {
	return r.Status
}

// OK reports whether the status code is 2xx.
func (r *Response) OK() bool {
	return r.StatusCode >= 200 && r.StatusCode < 300
}

func newResponse(resp *http.Response) (*Response, error) {
	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, errors.Wrap(err, "failed to read response body")
	}
	contentType := resp.Header.Get("Content-Type")
	decoded, err := decodeCharset(raw, contentType)
	if err != nil {
		return nil, err
	}
	body, err := unmarshalBody(decoded, contentType)
	if err != nil {
		return nil, err
	}
	return &Response{
		Status:     resp.Status,
		StatusCode: resp.StatusCode,
		Header:     resp.Header,
		Body:       body,
		Raw:        raw,
	}, nil
}

func decodeCharset(b []byte, contentType string) ([]byte, error) {
	_, params, err := mime.ParseMediaType(contentType)
	if err != nil {
		return b, nil //nolint:nilerr
	}
	charset := strings.ToLower(params["charset"])
	if charset == "" || charset == "utf-8" || charset == "utf8" {
		return b, nil
	}
	enc := encoding.GetEncoding(charset)
	if enc == nil {
		return nil, errors.Errorf("unsupported charset %q", charset)
	}
	decoded, err := io.ReadAll(transform.NewReader(bytes.NewReader(b), enc.NewDecoder()))
	if err != nil {
		return nil, errors.Wrapf(err, "failed to decode %s body", charset)
	}
	return decoded, nil
}

func unmarshalBody(b []byte, contentType string) (any, error) {
	if len(b) == 0 {
		return nil, nil
	}
	u := unmarshaler.Get(contentType)
	if contentType == "" && json.Valid(b) {
		u = unmarshaler.Get("application/json")
	}
	v, err := u.Unmarshal(b)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to unmarshal response body as %s", u.MediaType())
	}
	return v, nil
}
