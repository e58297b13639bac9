// Package protocolmeta attaches run metadata to outgoing requests.
package protocolmeta

import (
	"net/http"
	"net/url"
)

// StepKey is the header carrying the full name of the step which sent the request.
// Services can correlate their logs with the failing step through it.
const StepKey = "X-Kycflow-Step"

// EncodeHTTPValue encodes a value for use in HTTP headers using URL path escaping.
func EncodeHTTPValue(value string) string {
	return url.PathEscape(value)
}

// DecodeHTTPValue decodes a value encoded by EncodeHTTPValue.
func DecodeHTTPValue(value string) (string, error) {
	return url.PathUnescape(value)
}

// WithStep returns a copy of h with the step header.
// h is returned as is if step is empty.
func WithStep(h http.Header, step string) http.Header {
	if step == "" {
		return h
	}
	h = h.Clone()
	if h == nil {
		h = http.Header{}
	}
	h.Set(StepKey, EncodeHTTPValue(step))
	return h
}
