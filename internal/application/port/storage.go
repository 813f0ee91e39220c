package port

import (
	"context"
	"errors"

	"github.com/wmartinez/presupuestos/internal/quote"
)

// ErrAlreadyExists is returned by FileStorage.Create when the path is taken
var ErrAlreadyExists = errors.New("already exists")

// FileStorage defines file storage operations
type FileStorage interface {
	Save(ctx context.Context, path string, content []byte) error
	// Create writes content only when nothing exists at path yet
	Create(ctx context.Context, path string, content []byte) error
	Read(ctx context.Context, path string) ([]byte, error)
	Exists(ctx context.Context, path string) bool
	Delete(ctx context.Context, path string) error
	GetFullPath(relativePath string) string
}

// AssetLoader loads the raster assets drawn under the quote text
type AssetLoader interface {
	LoadImage(ctx context.Context, path string) (*quote.Image, error)
}
