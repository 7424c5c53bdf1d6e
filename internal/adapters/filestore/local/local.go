package local

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log"
	"os"
	"path/filepath"

	"github.com/ewilliams-labs/encore/internal/core/domain"
)

// Store keeps assets as files in a single directory.
type Store struct {
	root  string
	debug bool
}

// New returns a store rooted at root, creating the directory if needed.
func New(root string, debug bool) (*Store, error) {
	if root == "" {
		return nil, errors.New("local: root directory is required")
	}
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, fmt.Errorf("local: couldn't create %q: %w", root, err)
	}
	return &Store{root: root, debug: debug}, nil
}

func (s *Store) Put(ctx context.Context, key string, r io.Reader, size int64, mimeType string) error {
	dst := filepath.Join(s.root, key)
	tmp, err := os.CreateTemp(s.root, ".upload-*")
	if err != nil {
		return fmt.Errorf("local: couldn't create temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	n, err := io.Copy(tmp, r)
	if err != nil {
		tmp.Close()
		return fmt.Errorf("local: couldn't write %q: %w", dst, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("local: couldn't write %q: %w", dst, err)
	}
	if size >= 0 && n != size {
		return fmt.Errorf("local: short write for %q: got %d of %d bytes", key, n, size)
	}
	// Rename is atomic, so readers never observe a partial asset.
	if err := os.Rename(tmp.Name(), dst); err != nil {
		return fmt.Errorf("local: couldn't move upload to %q: %w", dst, err)
	}
	if s.debug {
		log.Printf("local: stored %s (%d bytes, %s)", key, n, mimeType)
	}
	return nil
}

func (s *Store) Stat(ctx context.Context, key string) (domain.AssetInfo, error) {
	info, err := os.Stat(filepath.Join(s.root, key))
	if err != nil {
		return domain.AssetInfo{}, mapErr(key, err)
	}
	if info.IsDir() {
		return domain.AssetInfo{}, domain.ErrNotFound
	}
	return domain.AssetInfo{Key: key, Size: info.Size()}, nil
}

// OpenRange opens a fresh handle per call so concurrent readers never share
// a file offset.
func (s *Store) OpenRange(ctx context.Context, key string, offset, length int64) (io.ReadCloser, error) {
	f, err := os.Open(filepath.Join(s.root, key))
	if err != nil {
		return nil, mapErr(key, err)
	}
	return &sectionReadCloser{
		SectionReader: io.NewSectionReader(f, offset, length),
		file:          f,
	}, nil
}

func (s *Store) Delete(ctx context.Context, key string) error {
	if err := os.Remove(filepath.Join(s.root, key)); err != nil {
		return mapErr(key, err)
	}
	if s.debug {
		log.Printf("local: deleted %s", key)
	}
	return nil
}

// Ping checks that the root directory is still there.
func (s *Store) Ping(ctx context.Context) error {
	info, err := os.Stat(s.root)
	if err != nil {
		return fmt.Errorf("local: %w", err)
	}
	if !info.IsDir() {
		return fmt.Errorf("local: %q is not a directory", s.root)
	}
	return nil
}

type sectionReadCloser struct {
	*io.SectionReader
	file *os.File
}

func (r *sectionReadCloser) Close() error {
	return r.file.Close()
}

func mapErr(key string, err error) error {
	if errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("local: %s: %w", key, domain.ErrNotFound)
	}
	return fmt.Errorf("local: %s: %w", key, err)
}
