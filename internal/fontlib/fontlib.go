// Package fontlib resolves font family names to opentype faces
package fontlib

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/UnendingLoop/WatermarkDesk/internal/model"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/opentype"
)

// FallbackFamily is the display name the UI shows for the bundled face.
const FallbackFamily = "Go Regular"

type faceKey struct {
	path string
	size int
}

// Library indexes .ttf/.otf files found under the configured directories.
// It is owned by the UI thread, so access is not synchronized.
type Library struct {
	dirs  []string
	index map[string]string // lower-cased family -> font file path
	names []string          // display names, sorted
	fonts map[string]*opentype.Font
	faces map[faceKey]font.Face
}

// New builds the index once at startup. When dirs is empty the standard
// per-platform font locations are scanned. Unreadable directories are skipped.
func New(dirs []string) *Library {
	if len(dirs) == 0 {
		dirs = defaultDirs()
	}

	l := &Library{
		dirs:  dirs,
		index: make(map[string]string),
		fonts: make(map[string]*opentype.Font),
		faces: make(map[faceKey]font.Face),
	}
	l.scan()
	return l
}

// Families lists the indexed family names sorted alphabetically, for the
// font picker. The bundled fallback is always present.
func (l *Library) Families() []string {
	out := make([]string, 0, len(l.names)+1)
	out = append(out, FallbackFamily)
	out = append(out, l.names...)
	return out
}

// Face resolves family to a rendering face of the given point size.
// An empty family or FallbackFamily selects the bundled face; an unknown
// family fails with model.ErrFontNotFound.
func (l *Library) Face(family string, size int) (font.Face, error) {
	if size <= 0 {
		size = 12
	}

	path, err := l.resolve(family)
	if err != nil {
		return nil, err
	}

	key := faceKey{path: path, size: size}
	if face, ok := l.faces[key]; ok {
		return face, nil
	}

	fnt, err := l.font(path)
	if err != nil {
		return nil, err
	}

	face, err := opentype.NewFace(fnt, &opentype.FaceOptions{
		Size:    float64(size),
		DPI:     72,
		Hinting: font.HintingFull,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: face %q at size %d: %v", model.ErrRender, family, size, err)
	}

	l.faces[key] = face
	return face, nil
}

func (l *Library) resolve(family string) (string, error) {
	family = strings.TrimSpace(family)
	if family == "" || family == FallbackFamily {
		return "", nil // empty path means the bundled face
	}

	needle := strings.ToLower(family)
	if path, ok := l.index[needle]; ok {
		return path, nil
	}

	// Partial match the way the original app matched system fonts by name.
	// Walk the sorted names so ambiguous needles resolve the same way every time.
	for _, name := range l.names {
		key := strings.ToLower(name)
		if strings.Contains(key, needle) {
			return l.index[key], nil
		}
	}

	return "", fmt.Errorf("%w: %q", model.ErrFontNotFound, family)
}

func (l *Library) font(path string) (*opentype.Font, error) {
	if fnt, ok := l.fonts[path]; ok {
		return fnt, nil
	}

	var data []byte
	if path == "" {
		data = goregular.TTF
	} else {
		raw, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("%w: read font %q: %v", model.ErrRender, path, err)
		}
		data = raw
	}

	fnt, err := opentype.Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%w: parse font %q: %v", model.ErrRender, path, err)
	}

	l.fonts[path] = fnt
	return fnt, nil
}

func (l *Library) scan() {
	for _, dir := range l.dirs {
		_ = filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
			if err != nil || d.IsDir() {
				return nil
			}
			ext := strings.ToLower(filepath.Ext(path))
			if ext != ".ttf" && ext != ".otf" {
				return nil
			}
			name := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
			key := strings.ToLower(name)
			if _, dup := l.index[key]; !dup {
				l.index[key] = path
				l.names = append(l.names, name)
			}
			return nil
		})
	}
	sort.Strings(l.names)
}

func defaultDirs() []string {
	home, _ := os.UserHomeDir()
	return []string{
		"/usr/share/fonts",
		"/usr/local/share/fonts",
		filepath.Join(home, ".fonts"),
		filepath.Join(home, ".local/share/fonts"),
		"/Library/Fonts",
		"/System/Library/Fonts",
		filepath.Join(home, "Library/Fonts"),
		`C:\Windows\Fonts`,
	}
}
