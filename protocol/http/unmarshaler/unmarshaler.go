// Package unmarshaler provides the response body unmarshalers keyed by media type.
package unmarshaler

import (
	"fmt"
	"mime"
	"strings"
	"sync"
)

var (
	m            sync.Mutex
	unmarshalers = map[string]ResponseUnmarshaler{}
)

// ResponseUnmarshaler is the interface that unmarshals a response body.
type ResponseUnmarshaler interface {
	MediaType() string
	Unmarshal(data []byte) (any, error)
}

// Register registers the unmarshaler.
func Register(u ResponseUnmarshaler) error {
	m.Lock()
	defer m.Unlock()
	mediaType := strings.ToLower(u.MediaType())
	if _, ok := unmarshalers[mediaType]; ok {
		return fmt.Errorf("unmarshaler for %s is already registered", mediaType)
	}
	unmarshalers[mediaType] = u
	return nil
}

// Get returns the unmarshaler for the media type of contentType.
// Unknown media types are treated as binary.
func Get(contentType string) ResponseUnmarshaler {
	mediaType, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		return binary
	}
	mediaType = strings.ToLower(mediaType)
	m.Lock()
	defer m.Unlock()
	if u, ok := unmarshalers[mediaType]; ok {
		return u
	}
	if strings.HasSuffix(mediaType, "+json") {
		return unmarshalers["application/json"]
	}
	if strings.HasPrefix(mediaType, "text/") {
		return unmarshalers["text/plain"]
	}
	return binary
}
