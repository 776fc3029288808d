package media

import (
	"fmt"
	"log/slog"
	"path"
	"regexp"
	"strings"

	"github.com/google/uuid"

	"campusevents/internal/domain"
)

// S3Config holds configuration for the S3 (or S3-compatible) store.
type S3Config struct {
	Bucket          string
	Region          string
	Endpoint        string
	AccessKeyID     string
	SecretAccessKey string
}

// Config holds configuration for creating a media store.
type Config struct {
	Provider      string
	LocalDir      string
	PublicBaseURL string
	S3            S3Config
}

// NewMediaStore creates a store from config. Provider "s3" uploads to a bucket; "local" or unknown writes to disk.
func NewMediaStore(cfg Config, logger *slog.Logger) (domain.MediaStore, error) {
	switch cfg.Provider {
	case "s3":
		if cfg.S3.Bucket == "" {
			return nil, fmt.Errorf("media: S3_BUCKET is required for the s3 provider")
		}
		return newS3Store(cfg, logger), nil
	case "local", "":
	default:
		logger.Warn("unknown media provider, using local", "provider", cfg.Provider)
	}
	store, err := NewLocalStore(cfg.LocalDir, cfg.PublicBaseURL, logger)
	if err != nil {
		return nil, err
	}
	return store, nil
}

var extByType = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
	"image/gif":  ".gif",
	"image/webp": ".webp",
}

var unsafeNameChars = regexp.MustCompile(`[^a-z0-9-]+`)

// objectKey returns folder/<name>-<random><ext>. name is reduced to [a-z0-9-].
func objectKey(folder, name, contentType string) string {
	base := strings.Trim(unsafeNameChars.ReplaceAllString(strings.ToLower(name), "-"), "-")
	if base == "" {
		base = "image"
	}
	ct := strings.ToLower(strings.TrimSpace(strings.Split(contentType, ";")[0]))
	return path.Join(folder, base+"-"+uuid.NewString()[:8]+extByType[ct])
}

func publicURL(baseURL, key string) string {
	return strings.TrimRight(baseURL, "/") + "/" + key
}
