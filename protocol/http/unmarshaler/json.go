package unmarshaler

import (
	"bytes"
	"encoding/json"
)

func init() {
	if err := Register(&jsonUnmarshaler{}); err != nil {
		panic(err)
	}
}

type jsonUnmarshaler struct{}

// MediaType implements ResponseUnmarshaler interface.
func (u *jsonUnmarshaler) MediaType() string {
	return "application/json"
}

// Unmarshal implements ResponseUnmarshaler interface.
// Numbers are decoded as json.Number.
func (u *jsonUnmarshaler) Unmarshal(data []byte) (any, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, nil
	}
	d := json.NewDecoder(bytes.NewReader(data))
	d.UseNumber()
	var v any
	if err := d.Decode(&v); err != nil {
		return nil, err
	}
	return v, nil
}
