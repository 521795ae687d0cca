package storage

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"eventlive/internal/domain"
)

// localImageStore keeps cover images on the local filesystem under baseDir.
// References are paths like "/events/<name>.webp", matching what the upload
// pipeline writes.
type localImageStore struct {
	baseDir string
}

// NewLocalImageStore returns an ImageStore rooted at baseDir.
func NewLocalImageStore(baseDir string) domain.ImageStore {
	return &localImageStore{baseDir: baseDir}
}

// NewImageRef produces a stored reference for a freshly uploaded cover image.
// The random name prevents collisions and hides original filenames.
func NewImageRef() string {
	return "/events/" + uuid.NewString() + ".webp"
}

func (s *localImageStore) Save(ctx context.Context, data []byte) (string, error) {
	ref := NewImageRef()
	path := filepath.Join(s.baseDir, filepath.Clean(strings.TrimPrefix(ref, "/")))
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return "", fmt.Errorf("create image dir: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("write image: %w", err)
	}
	return ref, nil
}

func (s *localImageStore) Delete(ctx context.Context, ref string) error {
	clean := filepath.Clean(strings.TrimPrefix(ref, "/"))
	if clean == "." || strings.HasPrefix(clean, "..") {
		return fmt.Errorf("invalid image ref %q", ref)
	}
	path := filepath.Join(s.baseDir, clean)
	if err := os.Remove(path); err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("remove image: %w", err)
	}
	return nil
}
