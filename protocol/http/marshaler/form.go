package marshaler

import (
	"fmt"
	"net/url"
	"sort"
)

func init() {
	if err := Register(&formMarshaler{}); err != nil {
		panic(err)
	}
}

type formMarshaler struct{}

// MediaType implements RequestMarshaler interface.
func (m *formMarshaler) MediaType() string {
	return "application/x-www-form-urlencoded"
}

// Marshal implements RequestMarshaler interface.
func (m *formMarshaler) Marshal(v any) ([]byte, error) {
	switch vv := v.(type) {
	case url.Values:
		return []byte(vv.Encode()), nil
	case map[string]string:
		values := url.Values{}
		for k, s := range vv {
			values.Set(k, s)
		}
		return []byte(values.Encode()), nil
	case map[string]any:
		keys := make([]string, 0, len(vv))
		for k := range vv {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		values := url.Values{}
		for _, k := range keys {
			values.Set(k, fmt.Sprint(vv[k]))
		}
		return []byte(values.Encode()), nil
	default:
		return nil, fmt.Errorf("expected form values but got %T", v)
	}
}
