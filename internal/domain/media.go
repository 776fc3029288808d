package domain

import (
	"context"
	"fmt"
	"strings"
)

// MaxImageSize is the largest accepted upload, in bytes.
const MaxImageSize = 5 << 20

// Media folders.
const (
	FolderEventPosters = "event_posters"
	FolderAvatars      = "avatars"
)

var allowedImageTypes = map[string]bool{
	"image/jpeg": true,
	"image/png":  true,
	"image/gif":  true,
	"image/webp": true,
}

// Image is an uploaded image held in memory.
type Image struct {
	Filename    string
	ContentType string
	Size        int64
	Data        []byte
}

// Validate checks size and content type. label names the field in the returned problem.
func (img *Image) Validate(label string) error {
	if img == nil || img.Size == 0 || len(img.Data) == 0 {
		return NewValidationError(label + " is empty")
	}
	if img.Size > MaxImageSize || int64(len(img.Data)) > MaxImageSize {
		return NewValidationError(fmt.Sprintf("%s exceeds %d MB", label, MaxImageSize>>20))
	}
	ct := strings.ToLower(strings.TrimSpace(strings.Split(img.ContentType, ";")[0]))
	if !allowedImageTypes[ct] {
		return NewValidationError(label + " must be a JPEG, PNG, GIF or WebP image")
	}
	return nil
}

// MediaStore persists uploaded images and returns their public URL.
// Failures are reported wrapped in ErrUpstream.
type MediaStore interface {
	Upload(ctx context.Context, folder, name string, img *Image) (url string, err error)
}
