package httpclient

import (
	"bytes"
	"fmt"
	"io"
	"mime/multipart"
	"net/textproto"
	"strings"
)

// MultipartForm is an upload body. It is encoded again for every attempt so
// replays after a credential refresh send identical content.
type MultipartForm struct {
	Fields []FormField
	Files  []FormFile
}

// FormField is a plain multipart value.
type FormField struct {
	Name  string
	Value string
}

// FormFile is a file part. Open is called once per attempt; when it is nil
// Data is sent instead.
type FormFile struct {
	FieldName   string
	FileName    string
	ContentType string
	Data        []byte
	Open        func() (io.Reader, error)
}

// encode writes the form and returns the body together with its
// multipart/form-data content type carrying the boundary.
func (f *MultipartForm) encode() (*bytes.Buffer, string, error) {
	buf := &bytes.Buffer{}
	w := multipart.NewWriter(buf)

	for _, field := range f.Fields {
		if err := w.WriteField(field.Name, field.Value); err != nil {
			return nil, "", fmt.Errorf("write field %q: %w", field.Name, err)
		}
	}

	for i := range f.Files {
		if err := writeFile(w, &f.Files[i]); err != nil {
			return nil, "", err
		}
	}

	if err := w.Close(); err != nil {
		return nil, "", fmt.Errorf("close multipart writer: %w", err)
	}
	return buf, w.FormDataContentType(), nil
}

func writeFile(w *multipart.Writer, file *FormFile) error {
	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", fmt.Sprintf(`form-data; name="%s"; filename="%s"`,
		escapeQuotes(file.FieldName), escapeQuotes(file.FileName)))
	contentType := file.ContentType
	if contentType == "" {
		contentType = ContentTypeOctetStream
	}
	h.Set(HeaderContentType, contentType)

	part, err := w.CreatePart(h)
	if err != nil {
		return fmt.Errorf("create part %q: %w", file.FieldName, err)
	}

	var src io.Reader = bytes.NewReader(file.Data)
	if file.Open != nil {
		if src, err = file.Open(); err != nil {
			return fmt.Errorf("open file %q: %w", file.FileName, err)
		}
		defer closeReader(src)
	}
	if _, err := io.Copy(part, src); err != nil {
		return fmt.Errorf("copy file %q: %w", file.FileName, err)
	}
	return nil
}

// closeReader closes r when the caller handed over an io.Closer.
func closeReader(r io.Reader) {
	if closer, ok := r.(io.Closer); ok {
		_ = closer.Close()
	}
}

var quoteEscaper = strings.NewReplacer("\\", "\\\\", `"`, "\\\"")

func escapeQuotes(s string) string {
	return quoteEscaper.Replace(s)
}
