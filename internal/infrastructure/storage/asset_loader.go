package storage

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/wmartinez/presupuestos/internal/application/port"
	"github.com/wmartinez/presupuestos/internal/quote"
	"go.uber.org/zap"
)

// LocalAssetLoader reads template images from disk. Reads honour ctx cancellation,
// so a caller-side timeout turns a stuck read into an error.
type LocalAssetLoader struct {
	logger *zap.Logger
}

// NewLocalAssetLoader creates a new LocalAssetLoader
func NewLocalAssetLoader(logger *zap.Logger) *LocalAssetLoader {
	return &LocalAssetLoader{logger: logger}
}

type readResult struct {
	data []byte
	err  error
}

// LoadImage reads the image at path. The image type is taken from the extension.
func (l *LocalAssetLoader) LoadImage(ctx context.Context, path string) (*quote.Image, error) {
	imageType, err := imageTypeFor(path)
	if err != nil {
		return nil, err
	}

	done := make(chan readResult, 1)
	go func() {
		data, err := os.ReadFile(path)
		done <- readResult{data: data, err: err}
	}()

	select {
	case <-ctx.Done():
		l.logger.Warn("Asset load abandoned", zap.String("path", path), zap.Error(ctx.Err()))
		return nil, fmt.Errorf("loading %s: %w", path, ctx.Err())
	case res := <-done:
		if res.err != nil {
			return nil, fmt.Errorf("failed to read asset: %w", res.err)
		}
		if len(res.data) == 0 {
			return nil, fmt.Errorf("asset %s is empty", path)
		}

		l.logger.Debug("Asset loaded", zap.String("path", path), zap.Int("size", len(res.data)))

		return &quote.Image{
			Name: strings.TrimSuffix(filepath.Base(path), filepath.Ext(path)),
			Type: imageType,
			Data: res.data,
		}, nil
	}
}

func imageTypeFor(path string) (string, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".png":
		return "PNG", nil
	case ".jpg", ".jpeg":
		return "JPG", nil
	default:
		return "", fmt.Errorf("unsupported image type: %s", filepath.Ext(path))
	}
}

var _ port.AssetLoader = (*LocalAssetLoader)(nil)
