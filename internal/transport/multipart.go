package transport

import (
	"bytes"
	"fmt"
	"mime/multipart"
	"net/textproto"
	"strings"

	"github.com/google/uuid"

	"github.com/stelitsyn-sc/zappifest/internal/params"
)

// maxBoundaryAttempts caps boundary regeneration on payload collisions.
const maxBoundaryAttempts = 8

var quoteEscaper = strings.NewReplacer("\\", "\\\\", `"`, "\\\"")

// newBoundary returns a random multipart boundary.
func newBoundary() string {
	return "zappifest-" + strings.ReplaceAll(uuid.NewString(), "-", "")
}

// encodeMultipart renders p as a multipart/form-data body. Lists emit one part
// per element under the same name; File values become file parts.
func encodeMultipart(p params.Params) ([]byte, string, error) {
	boundary, err := pickBoundary(p, newBoundary)
	if err != nil {
		return nil, "", err
	}

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	if err := mw.SetBoundary(boundary); err != nil {
		return nil, "", err
	}

	for _, f := range p.Fields() {
		switch v := f.Value.(type) {
		case params.Text:
			err = mw.WriteField(f.Key, string(v))
		case params.Bool:
			err = mw.WriteField(f.Key, v.String())
		case params.List:
			for _, item := range v {
				if err = mw.WriteField(f.Key, item); err != nil {
					break
				}
			}
		case params.File:
			err = writeFile(mw, f.Key, v)
		case nil:
			err = mw.WriteField(f.Key, "")
		default:
			err = fmt.Errorf("field %s: unsupported value %T", f.Key, v)
		}
		if err != nil {
			return nil, "", err
		}
	}

	if err := mw.Close(); err != nil {
		return nil, "", err
	}
	return buf.Bytes(), mw.FormDataContentType(), nil
}

func writeFile(mw *multipart.Writer, key string, file params.File) error {
	contentType := file.ContentType
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", fmt.Sprintf(`form-data; name="%s"; filename="%s"`,
		quoteEscaper.Replace(key), quoteEscaper.Replace(file.Filename)))
	h.Set("Content-Type", contentType)
	h.Set("Content-Transfer-Encoding", "binary")

	w, err := mw.CreatePart(h)
	if err != nil {
		return err
	}
	_, err = w.Write(file.Data)
	return err
}

// pickBoundary draws boundaries until one does not occur in any payload.
func pickBoundary(p params.Params, gen func() string) (string, error) {
	for i := 0; i < maxBoundaryAttempts; i++ {
		boundary := gen()
		if !collides(p, boundary) {
			return boundary, nil
		}
	}
	return "", fmt.Errorf("could not find a multipart boundary absent from the payload")
}

func collides(p params.Params, boundary string) bool {
	b := []byte(boundary)
	for _, f := range p.Fields() {
		switch v := f.Value.(type) {
		case params.Text:
			if strings.Contains(string(v), boundary) {
				return true
			}
		case params.List:
			for _, item := range v {
				if strings.Contains(item, boundary) {
					return true
				}
			}
		case params.File:
			if bytes.Contains(v.Data, b) || strings.Contains(v.Filename, boundary) {
				return true
			}
		}
	}
	return false
}
