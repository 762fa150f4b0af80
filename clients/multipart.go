package clients

import (
	"bytes"
	"fmt"
	"mime/multipart"
	"net/textproto"
)

// FormFile is a file part of a multipart body.
type FormFile struct {
	Field       string
	FileName    string
	ContentType string
	Data        []byte
}

// FormField is a plain text part. Empty values are skipped.
type FormField struct {
	Name  string
	Value string
}

// MultipartRequest builds a POST whose body is replayable, so a refreshed
// retry sends the same bytes.
func MultipartRequest(path string, file FormFile, fields ...FormField) (Request, error) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)

	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", fmt.Sprintf(`form-data; name=%q; filename=%q`, file.Field, file.FileName))
	contentType := file.ContentType
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	h.Set("Content-Type", contentType)

	part, err := w.CreatePart(h)
	if err != nil {
		return Request{}, err
	}
	if _, err := part.Write(file.Data); err != nil {
		return Request{}, err
	}

	for _, f := range fields {
		if f.Value == "" {
			continue
		}
		if err := w.WriteField(f.Name, f.Value); err != nil {
			return Request{}, err
		}
	}
	if err := w.Close(); err != nil {
		return Request{}, err
	}

	return Request{
		Method:      "POST",
		Path:        path,
		Body:        buf.Bytes(),
		ContentType: w.FormDataContentType(),
	}, nil
}
