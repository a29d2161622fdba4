// Package store persists assembled audio artifacts in a flat directory and
// serves them back by filename. Filenames are safe to embed in a URL path
// and never collide across concurrent conversions.
package store

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"
)

var ErrNotFound = errors.New("artifact not found")

type Config struct {
	Dir string `yaml:"dir"`
}

type Store struct {
	dir string
}

func New(cfg *Config) (*Store, error) {
	dir := cfg.Dir
	if dir == "" {
		dir = "audio"
	}

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create artifact dir: %w", err)
	}

	return &Store{dir: dir}, nil
}

// Save writes data under "{base}-{timestamp}.mp3". If that name is already
// taken a counter suffix is appended until the create succeeds; O_EXCL makes
// the claim atomic, so two concurrent saves of the same base never share a
// file.
func (s *Store) Save(base string, data []byte) (string, error) {
	base = sanitize(base)
	stamp := time.Now().UTC().Format("20060102150405")

	for i := 1; ; i++ {
		name := fmt.Sprintf("%s-%s.mp3", base, stamp)
		if i > 1 {
			name = fmt.Sprintf("%s-%s-%d.mp3", base, stamp, i)
		}

		f, err := os.OpenFile(filepath.Join(s.dir, name), os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
		if errors.Is(err, os.ErrExist) {
			continue
		}
		if err != nil {
			return "", fmt.Errorf("failed to create artifact file: %w", err)
		}

		if _, err := f.Write(data); err != nil {
			f.Close()
			os.Remove(filepath.Join(s.dir, name))

			return "", fmt.Errorf("failed to write artifact: %w", err)
		}

		if err := f.Close(); err != nil {
			return "", fmt.Errorf("failed to close artifact: %w", err)
		}

		return name, nil
	}
}

// Open returns the stored artifact by the filename Save handed out.
func (s *Store) Open(name string) (io.ReadCloser, error) {
	if name == "" || name != filepath.Base(name) || strings.HasPrefix(name, ".") {
		return nil, fmt.Errorf("%w: %q", ErrNotFound, name)
	}

	f, err := os.Open(filepath.Join(s.dir, name))
	if errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("%w: %q", ErrNotFound, name)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to open artifact: %w", err)
	}

	return f, nil
}

// sanitize reduces base to characters that are safe in both a filename and a
// URL path segment.
func sanitize(base string) string {
	b := strings.Builder{}

	for _, r := range base {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_', r == '.':
			b.WriteRune(r)
		default:
			b.WriteByte('-')
		}
	}

	out := strings.Trim(b.String(), "-.")
	if out == "" {
		out = "audio"
	}

	return out
}
