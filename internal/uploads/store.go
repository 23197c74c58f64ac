// Package uploads keeps product images on local disk under a public /uploads prefix.
package uploads

import (
	"errors"
	"fmt"
	"github.com/ariefcatur/go-storefront/internal/apperr"
	"github.com/google/uuid"
	"io"
	"os"
	"path"
	"path/filepath"
	"strings"
)

const (
	PublicPrefix = "/uploads"
	productsDir  = "products"

	// MaxImageBytes bounds a single uploaded image.
	MaxImageBytes = 5 << 20
)

var allowedExt = map[string]bool{".jpg": true, ".jpeg": true, ".png": true, ".gif": true, ".webp": true}

var (
	ErrImageType = apperr.Invalid("Image must be a jpg, png, gif or webp file")
	ErrImageSize = apperr.Invalid("Image is too large")
)

type Store struct {
	Dir string
}

func NewStore(dir string) *Store { return &Store{Dir: dir} }

// SaveProductImage writes r under a fresh name and returns its public path,
// e.g. /uploads/products/<uuid>.png.
func (s *Store) SaveProductImage(r io.Reader, filename string) (string, error) {
	ext := strings.ToLower(filepath.Ext(filename))
	if !allowedExt[ext] {
		return "", ErrImageType
	}

	dir := filepath.Join(s.Dir, productsDir)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create upload dir: %w", err)
	}

	name := uuid.NewString() + ext
	full := filepath.Join(dir, name)
	f, err := os.OpenFile(full, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return "", fmt.Errorf("create image: %w", err)
	}
	n, err := io.Copy(f, io.LimitReader(r, MaxImageBytes+1))
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	if err == nil && n > MaxImageBytes {
		err = ErrImageSize
	}
	if err != nil {
		_ = os.Remove(full)
		return "", err
	}
	return path.Join(PublicPrefix, productsDir, name), nil
}

// Remove deletes a file previously returned by SaveProductImage.
// Paths outside the products directory and missing files are ignored.
func (s *Store) Remove(publicPath string) error {
	prefix := path.Join(PublicPrefix, productsDir) + "/"
	if !strings.HasPrefix(publicPath, prefix) {
		return nil
	}
	name := strings.TrimPrefix(publicPath, prefix)
	if name == "" || name != path.Base(name) || name == ".." {
		return nil
	}
	err := os.Remove(filepath.Join(s.Dir, productsDir, name))
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	return err
}
