package media

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"campusevents/internal/domain"
)

type objectPutter interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

type s3Store struct {
	client  objectPutter
	bucket  string
	baseURL string
	logger  *slog.Logger
}

func newS3Store(cfg Config, logger *slog.Logger) *s3Store {
	s3cfg := cfg.S3
	awsCfg := aws.Config{
		Region: s3cfg.Region,
		Credentials: aws.NewCredentialsCache(
			credentials.NewStaticCredentialsProvider(
				s3cfg.AccessKeyID,
				s3cfg.SecretAccessKey,
				"",
			),
		),
	}
	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if s3cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(s3cfg.Endpoint)
			o.UsePathStyle = true
		}
	})

	baseURL := cfg.PublicBaseURL
	if baseURL == "" {
		switch {
		case s3cfg.Endpoint != "":
			baseURL = s3cfg.Endpoint + "/" + s3cfg.Bucket
		default:
			baseURL = fmt.Sprintf("https://%s.s3.%s.amazonaws.com", s3cfg.Bucket, s3cfg.Region)
		}
	}
	return &s3Store{client: client, bucket: s3cfg.Bucket, baseURL: baseURL, logger: logger}
}

func (s *s3Store) Upload(ctx context.Context, folder, name string, img *domain.Image) (string, error) {
	key := objectKey(folder, name, img.ContentType)
	result, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(s.bucket),
		Key:           aws.String(key),
		Body:          bytes.NewReader(img.Data),
		ContentType:   aws.String(img.ContentType),
		ContentLength: aws.Int64(int64(len(img.Data))),
	})
	if err != nil {
		return "", fmt.Errorf("%w: failed to upload to S3: %v", domain.ErrUpstream, err)
	}
	s.logger.InfoContext(ctx, "media uploaded to S3", "key", key, "etag", aws.ToString(result.ETag))
	return publicURL(s.baseURL, key), nil
}
