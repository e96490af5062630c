package storage

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/google/uuid"
)

// ImageStore writes uploaded food images below Dir and serves them from URLPrefix.
type ImageStore struct {
	Dir       string
	URLPrefix string
}

func NewImageStore(dir string) *ImageStore {
	return &ImageStore{Dir: dir, URLPrefix: "/uploads/"}
}

// Save stores src as food_<id>_<random><ext> and returns its public URL.
func (s *ImageStore) Save(ctx context.Context, foodID, ext string, src io.Reader) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if err := os.MkdirAll(s.Dir, 0o755); err != nil {
		return "", fmt.Errorf("create upload directory: %w", err)
	}

	filename := fmt.Sprintf("food_%s_%s%s", foodID, uuid.NewString()[:8], ext)
	path := filepath.Join(s.Dir, filename)
	dst, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("create image file: %w", err)
	}
	if _, err := io.Copy(dst, src); err != nil {
		dst.Close()
		os.Remove(path)
		return "", fmt.Errorf("write image file: %w", err)
	}
	if err := dst.Close(); err != nil {
		return "", fmt.Errorf("close image file: %w", err)
	}
	return s.URLPrefix + filename, nil
}
