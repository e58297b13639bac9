package unmarshaler

func init() {
	if err := Register(&textUnmarshaler{}); err != nil {
		panic(err)
	}
}

var binary = &binaryUnmarshaler{}

type textUnmarshaler struct{}

// MediaType implements ResponseUnmarshaler interface.
func (u *textUnmarshaler) MediaType() string {
	return "text/plain"
}

// Unmarshal implements ResponseUnmarshaler interface.
func (u *textUnmarshaler) Unmarshal(data []byte) (any, error) {
	return string(data), nil
}

type binaryUnmarshaler struct{}

// MediaType implements ResponseUnmarshaler interface.
func (u *binaryUnmarshaler) MediaType() string {
	return "application/octet-stream"
}

// Unmarshal implements ResponseUnmarshaler interface.
func (u *binaryUnmarshaler) Unmarshal(data []byte) (any, error) {
	return data, nil
}
