package imagestore

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"inventory-service/internal/util"

	"github.com/disintegration/imaging"
)

const (
	maxDimension = 800
	jpegQuality  = 85
)

// Store owns the product image lifecycle: every stored file is written,
// replaced, and removed through it, so a replace never leaves the previous
// file behind.
type Store struct {
	dir string
}

// New creates an image store rooted at dir, creating it if needed
func New(dir string) (*Store, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create image directory: %w", err)
	}
	return &Store{dir: dir}, nil
}

// Save decodes the uploaded image, bounds it to maxDimension, re-encodes it
// as JPEG, and returns the stored filename.
func (s *Store) Save(productName string, r io.Reader) (string, error) {
	img, err := imaging.Decode(r)
	if err != nil {
		return "", fmt.Errorf("failed to decode image: %w", err)
	}

	bounds := img.Bounds()
	if bounds.Dx() > maxDimension || bounds.Dy() > maxDimension {
		img = imaging.Fit(img, maxDimension, maxDimension, imaging.Lanczos)
	}

	filename := fmt.Sprintf("%s-%d.jpg", slug(productName), time.Now().UnixNano())
	f, err := os.Create(filepath.Join(s.dir, filename))
	if err != nil {
		return "", fmt.Errorf("failed to create image file: %w", err)
	}
	defer f.Close()

	if err := imaging.Encode(f, img, imaging.JPEG, imaging.JPEGQuality(jpegQuality)); err != nil {
		return "", fmt.Errorf("failed to encode image: %w", err)
	}

	util.ImagesStoredTotal.Inc()
	return filename, nil
}

// Replace stores the new image and removes the previous file, if any
func (s *Store) Replace(previous *string, productName string, r io.Reader) (string, error) {
	filename, err := s.Save(productName, r)
	if err != nil {
		return "", err
	}

	if previous != nil && *previous != "" {
		if err := s.Remove(*previous); err != nil {
			return filename, err
		}
	}
	return filename, nil
}

// Remove deletes a stored file; a missing file is not an error
func (s *Store) Remove(filename string) error {
	err := os.Remove(filepath.Join(s.dir, filename))
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to remove image: %w", err)
	}
	return nil
}

// Path returns the filesystem path for a stored filename
func (s *Store) Path(filename string) string {
	return filepath.Join(s.dir, filename)
}

// Exists reports whether a stored file is present
func (s *Store) Exists(filename string) bool {
	_, err := os.Stat(filepath.Join(s.dir, filename))
	return err == nil
}

func slug(name string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(strings.TrimSpace(name)) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
		case r == ' ' || r == '-' || r == '_':
			b.WriteByte('-')
		}
	}
	if b.Len() == 0 {
		return "product"
	}
	return b.String()
}
