package media

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"campusevents/internal/domain"
)

// LocalStore writes images under a directory that the HTTP server exposes at baseURL.
type LocalStore struct {
	dir     string
	baseURL string
	logger  *slog.Logger
}

// NewLocalStore creates dir if needed. baseURL defaults to "/media".
func NewLocalStore(dir, baseURL string, logger *slog.Logger) (*LocalStore, error) {
	if dir == "" {
		dir = "uploads"
	}
	if baseURL == "" {
		baseURL = "/media"
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("media: create %s: %w", dir, err)
	}
	return &LocalStore{dir: dir, baseURL: baseURL, logger: logger}, nil
}

// Dir returns the directory files are written to.
func (s *LocalStore) Dir() string {
	return s.dir
}

func (s *LocalStore) Upload(ctx context.Context, folder, name string, img *domain.Image) (string, error) {
	key := objectKey(folder, name, img.ContentType)
	dst := filepath.Join(s.dir, filepath.FromSlash(key))
	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return "", fmt.Errorf("%w: media: %v", domain.ErrUpstream, err)
	}
	if err := os.WriteFile(dst, img.Data, 0o644); err != nil {
		return "", fmt.Errorf("%w: media: %v", domain.ErrUpstream, err)
	}
	s.logger.DebugContext(ctx, "media stored", "key", key, "bytes", len(img.Data))
	return publicURL(s.baseURL, key), nil
}
