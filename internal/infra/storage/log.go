package storage

import (
	"context"
	"log/slog"

	"github.com/astro-web3/recipebox/internal/domain/recipe"
	"github.com/astro-web3/recipebox/pkg/logger"
)

const placeholderBaseURL = "https://storage.example.com/images/"

// LogStorage validates photos and logs them instead of storing them. It is
// used when no bucket is configured.
type LogStorage struct{}

var _ recipe.ImageStorage = LogStorage{}

func (LogStorage) Upload(ctx context.Context, base64Data, name string) (string, error) {
	data, err := recipe.DecodePhoto(base64Data)
	if err != nil {
		return "", err
	}

	logger.InfoContext(ctx, "recipe photo accepted (not stored)",
		slog.String("name", name),
		slog.Int("bytes", len(data)),
	)
	return placeholderBaseURL + name + ".jpg", nil
}

func (LogStorage) Delete(ctx context.Context, url string) error {
	logger.InfoContext(ctx, "recipe photo delete (not stored)", slog.String("url", url))
	return nil
}
