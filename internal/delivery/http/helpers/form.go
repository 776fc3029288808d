package helpers

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/gorilla/schema"

	"campusevents/internal/domain"
)

// MaxMultipartBytes bounds a multipart request: one image plus the text fields.
const MaxMultipartBytes = domain.MaxImageSize + 1<<20

var formDecoder = func() *schema.Decoder {
	d := schema.NewDecoder()
	d.IgnoreUnknownKeys(true)
	return d
}()

// ParseMultipartForm limits the body to MaxMultipartBytes, parses it, and decodes the text
// fields into dst using its schema tags when dst is non-nil. On failure it writes a 400 and
// returns false.
func ParseMultipartForm(w http.ResponseWriter, r *http.Request, dst any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, MaxMultipartBytes)
	if err := r.ParseMultipartForm(MaxMultipartBytes); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			WriteJSONError(w, http.StatusBadRequest, ErrCodeBadRequest, fmt.Sprintf("request exceeds %d MB", MaxMultipartBytes>>20))
			return false
		}
		WriteJSONError(w, http.StatusBadRequest, ErrCodeBadRequest, "invalid multipart form")
		return false
	}
	if dst == nil {
		return true
	}
	if err := formDecoder.Decode(dst, r.MultipartForm.Value); err != nil {
		WriteJSONError(w, http.StatusBadRequest, ErrCodeBadRequest, err.Error())
		return false
	}
	return true
}

// FormImage reads the named file field of a parsed multipart form. A missing field yields nil.
func FormImage(r *http.Request, field string) (*domain.Image, error) {
	file, header, err := r.FormFile(field)
	if errors.Is(err, http.ErrMissingFile) {
		return nil, nil
	}
	if err != nil {
		return nil, domain.NewValidationError("invalid " + field + " upload")
	}
	defer file.Close()

	data, err := io.ReadAll(io.LimitReader(file, domain.MaxImageSize+1))
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", field, err)
	}
	contentType := strings.TrimSpace(header.Header.Get("Content-Type"))
	if contentType == "" || contentType == "application/octet-stream" {
		contentType = http.DetectContentType(data)
	}
	size := header.Size
	if size < int64(len(data)) {
		size = int64(len(data))
	}
	return &domain.Image{
		Filename:    header.Filename,
		ContentType: contentType,
		Size:        size,
		Data:        data,
	}, nil
}
