package storage

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strings"

	"github.com/astro-web3/recipebox/internal/domain/recipe"
	"github.com/astro-web3/recipebox/pkg/logger"
	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

const imagePrefix = "images/"

type S3Config struct {
	Endpoint        string
	Region          string
	Bucket          string
	AccessKeyID     string
	SecretAccessKey string
	// PublicBaseURL is prepended to object keys in returned URLs. Defaults to
	// <endpoint>/<bucket>.
	PublicBaseURL string
}

type objectAPI interface {
	PutObject(ctx context.Context, in *s3.PutObjectInput, opts ...func(*s3.Options)) (*s3.PutObjectOutput, error)
	DeleteObject(ctx context.Context, in *s3.DeleteObjectInput, opts ...func(*s3.Options)) (*s3.DeleteObjectOutput, error)
}

// S3Storage stores recipe photos in an S3-compatible bucket using path-style
// addressing.
type S3Storage struct {
	client  objectAPI
	bucket  string
	baseURL string
}

var _ recipe.ImageStorage = (*S3Storage)(nil)

func NewS3Storage(cfg S3Config) *S3Storage {
	opts := s3.Options{
		Region:       cfg.Region,
		UsePathStyle: true,
	}
	if cfg.AccessKeyID != "" {
		opts.Credentials = credentials.NewStaticCredentialsProvider(cfg.AccessKeyID, cfg.SecretAccessKey, "")
	}
	if cfg.Endpoint != "" {
		opts.BaseEndpoint = aws.String(cfg.Endpoint)
	}

	baseURL := cfg.PublicBaseURL
	if baseURL == "" {
		endpoint := cfg.Endpoint
		if endpoint == "" {
			endpoint = fmt.Sprintf("https://s3.%s.amazonaws.com", cfg.Region)
		}
		baseURL = strings.TrimSuffix(endpoint, "/") + "/" + cfg.Bucket
	}

	return &S3Storage{
		client:  s3.New(opts),
		bucket:  cfg.Bucket,
		baseURL: strings.TrimSuffix(baseURL, "/"),
	}
}

func (s *S3Storage) Upload(ctx context.Context, base64Data, name string) (string, error) {
	data, err := recipe.DecodePhoto(base64Data)
	if err != nil {
		return "", err
	}

	key := imagePrefix + name + ".jpg"
	_, err = s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(data),
		ContentType: aws.String(http.DetectContentType(data)),
	})
	if err != nil {
		return "", fmt.Errorf("put object %q: %w", key, err)
	}

	logger.InfoContext(ctx, "recipe photo uploaded", slog.String("key", key), slog.Int("bytes", len(data)))
	return s.baseURL + "/" + key, nil
}

// Delete removes the object behind a URL returned by Upload. URLs outside the
// bucket are ignored.
func (s *S3Storage) Delete(ctx context.Context, rawURL string) error {
	key, ok := s.keyFor(rawURL)
	if !ok {
		return nil
	}

	_, err := s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return fmt.Errorf("delete object %q: %w", key, err)
	}
	return nil
}

func (s *S3Storage) keyFor(rawURL string) (string, bool) {
	if !strings.HasPrefix(rawURL, s.baseURL+"/") {
		return "", false
	}
	key, err := url.PathUnescape(strings.TrimPrefix(rawURL, s.baseURL+"/"))
	if err != nil || !strings.HasPrefix(key, imagePrefix) {
		return "", false
	}
	return key, true
}
