// Package marshaler provides the request body marshalers keyed by media type.
package marshaler

import (
	"fmt"
	"mime"
	"strings"
	"sync"
)

var (
	m          sync.Mutex
	marshalers = map[string]RequestMarshaler{}
)

// RequestMarshaler is the interface that marshals a request body.
type RequestMarshaler interface {
	MediaType() string
	Marshal(v any) ([]byte, error)
}

// Register registers the marshaler.
// It fails if a marshaler for the same media type is already registered.
func Register(marshaler RequestMarshaler) error {
	m.Lock()
	defer m.Unlock()
	mediaType := strings.ToLower(marshaler.MediaType())
	if _, ok := marshalers[mediaType]; ok {
		return fmt.Errorf("marshaler for %s is already registered", mediaType)
	}
	marshalers[mediaType] = marshaler
	return nil
}

// Get returns the marshaler for the media type of contentType.
// It returns nil if no marshaler is registered.
func Get(contentType string) RequestMarshaler {
	mediaType, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		return nil
	}
	m.Lock()
	defer m.Unlock()
	return marshalers[strings.ToLower(mediaType)]
}
