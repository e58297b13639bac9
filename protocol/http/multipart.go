package http

import (
	"bytes"
	"fmt"
	"mime/multipart"
	"net/textproto"
	"sort"
	"strings"
)

var quoteEscaper = strings.NewReplacer("\\", "\\\\", `"`, "\\\"")

// FilePart represents a file attached to a multipart body.
type FilePart struct {
	Field       string `yaml:"field"`
	Filename    string `yaml:"filename"`
	ContentType string `yaml:"contentType"`
	Content     []byte `yaml:"-"`
}

func encodeMultipart(fields map[string]any, files []FilePart) ([]byte, string, error) {
	var b bytes.Buffer
	w := multipart.NewWriter(&b)

	keys := make([]string, 0, len(fields))
	for k := range fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		if err := w.WriteField(k, fmt.Sprint(fields[k])); err != nil {
			return nil, "", err
		}
	}

	for _, f := range files {
		h := textproto.MIMEHeader{}
		h.Set("Content-Disposition", fmt.Sprintf(`form-data; name="%s"; filename="%s"`,
			quoteEscaper.Replace(f.Field), quoteEscaper.Replace(f.Filename)))
		contentType := f.ContentType
		if contentType == "" {
			contentType = "application/octet-stream"
		}
		h.Set("Content-Type", contentType)
		h.Set("Content-Length", fmt.Sprint(len(f.Content)))
		part, err := w.CreatePart(h)
		if err != nil {
			return nil, "", err
		}
		if _, err := part.Write(f.Content); err != nil {
			return nil, "", err
		}
	}
	if err := w.Close(); err != nil {
		return nil, "", err
	}
	return b.Bytes(), w.FormDataContentType(), nil
}
