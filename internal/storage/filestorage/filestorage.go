// Package filestorage persists source images and composites on local disk.
package filestorage

import (
	"fmt"
	"image"
	"os"
	"path/filepath"
	"strings"

	"github.com/UnendingLoop/WatermarkDesk/internal/model"
	"github.com/disintegration/imaging"
	"github.com/google/uuid"
)

type Store struct {
	jpegQuality int
}

func New(jpegQuality int) *Store {
	if jpegQuality <= 0 || jpegQuality > 100 {
		jpegQuality = 95
	}
	return &Store{jpegQuality: jpegQuality}
}

// Load decodes the image at path. Filesystem failures map to model.ErrIO,
// undecodable data to model.ErrDecode.
func (s *Store) Load(path string) (*model.SourceImage, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: open %q: %v", model.ErrIO, path, err)
	}
	defer f.Close()

	img, name, err := image.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("%w: decode %q: %v", model.ErrDecode, path, err)
	}

	format, err := imaging.FormatFromExtension(name)
	if err != nil {
		return nil, fmt.Errorf("%w: unsupported format %q in %q", model.ErrDecode, name, path)
	}

	return &model.SourceImage{Image: img, Format: format, Path: path}, nil
}

// Save encodes img to path in the format implied by the extension, falling
// back to the given source format when the extension is unknown. The file is
// written to a temporary sibling and renamed into place, so a failed save
// never corrupts an existing file at path.
func (s *Store) Save(img image.Image, path string, fallback imaging.Format) error {
	format := formatForPath(path, fallback)

	dir := filepath.Dir(path)
	tmp := filepath.Join(dir, "."+filepath.Base(path)+"."+uuid.NewString()+".tmp")

	f, err := os.Create(tmp)
	if err != nil {
		return fmt.Errorf("%w: create %q: %v", model.ErrIO, tmp, err)
	}

	if err := imaging.Encode(f, img, format, imaging.JPEGQuality(s.jpegQuality)); err != nil {
		f.Close()
		os.Remove(tmp)
		return fmt.Errorf("%w: encode %q: %v", model.ErrIO, path, err)
	}
	if err := f.Close(); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("%w: close %q: %v", model.ErrIO, tmp, err)
	}

	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("%w: rename %q to %q: %v", model.ErrIO, tmp, path, err)
	}
	return nil
}

func formatForPath(path string, fallback imaging.Format) imaging.Format {
	ext := strings.TrimPrefix(strings.ToLower(filepath.Ext(path)), ".")
	if format, err := imaging.FormatFromExtension(ext); err == nil {
		return format
	}
	return fallback
}
