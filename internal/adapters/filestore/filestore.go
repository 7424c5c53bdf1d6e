// Package filestore selects where uploaded audio lives.
package filestore

import (
	"context"
	"fmt"
	"io"
	"path"
	"strings"

	"github.com/ewilliams-labs/encore/internal/adapters/filestore/local"
	"github.com/ewilliams-labs/encore/internal/adapters/filestore/s3"
	"github.com/ewilliams-labs/encore/internal/core/domain"
	"github.com/ewilliams-labs/encore/internal/core/ports"
)

type backend interface {
	ports.AssetStore
	Ping(ctx context.Context) error
}

// Store is an AssetStore over a local directory or an S3 bucket.
type Store struct {
	fs backend
}

var _ ports.AssetStore = (*Store)(nil)

// New builds a Store. Supported types:
//
//	local  conn is a directory
//	s3     conn is key:secret@bucket.region, optionally followed by @endpoint
func New(ctx context.Context, typ, conn string, debug bool) (*Store, error) {
	var fs backend
	switch typ {
	case "local":
		candidate, err := local.New(conn, debug)
		if err != nil {
			return nil, fmt.Errorf("filestore: %w", err)
		}
		fs = candidate
	case "s3":
		cfg, err := parseS3Conn(conn)
		if err != nil {
			return nil, err
		}
		cfg.Debug = debug
		candidate, err := s3.New(ctx, cfg)
		if err != nil {
			return nil, fmt.Errorf("filestore: %w", err)
		}
		fs = candidate
	default:
		return nil, fmt.Errorf("filestore: unknown file storage type %q", typ)
	}
	return &Store{fs: fs}, nil
}

func parseS3Conn(conn string) (s3.Config, error) {
	split := strings.SplitN(conn, "@", 3)
	if len(split) < 2 {
		return s3.Config{}, fmt.Errorf("filestore: invalid s3 connection string %q", conn)
	}
	auth := strings.SplitN(split[0], ":", 2)
	if len(auth) != 2 {
		return s3.Config{}, fmt.Errorf("filestore: invalid s3 auth string %q", conn)
	}
	loc := strings.SplitN(split[1], ".", 2)
	if len(loc) != 2 || loc[0] == "" || loc[1] == "" {
		return s3.Config{}, fmt.Errorf("filestore: invalid s3 location string %q", conn)
	}
	cfg := s3.Config{
		Key:    auth[0],
		Secret: auth[1],
		Bucket: loc[0],
		Region: loc[1],
	}
	if len(split) == 3 {
		cfg.Endpoint = split[2]
	}
	return cfg, nil
}

func (s *Store) Put(ctx context.Context, key string, r io.Reader, size int64, mimeType string) error {
	if err := validKey(key); err != nil {
		return err
	}
	return s.fs.Put(ctx, key, r, size, mimeType)
}

func (s *Store) Stat(ctx context.Context, key string) (domain.AssetInfo, error) {
	if err := validKey(key); err != nil {
		return domain.AssetInfo{}, err
	}
	return s.fs.Stat(ctx, key)
}

func (s *Store) OpenRange(ctx context.Context, key string, offset, length int64) (io.ReadCloser, error) {
	if err := validKey(key); err != nil {
		return nil, err
	}
	if offset < 0 || length < 0 {
		return nil, fmt.Errorf("filestore: invalid window %d+%d: %w", offset, length, domain.ErrInvalidArgument)
	}
	return s.fs.OpenRange(ctx, key, offset, length)
}

func (s *Store) Delete(ctx context.Context, key string) error {
	if err := validKey(key); err != nil {
		return err
	}
	return s.fs.Delete(ctx, key)
}

// Ping reports whether the backing storage is reachable.
func (s *Store) Ping(ctx context.Context) error {
	return s.fs.Ping(ctx)
}

// Keys are flat object names; anything that could escape the store root is
// rejected.
func validKey(key string) error {
	if key == "" || key != path.Base(key) || key == "." || key == ".." || strings.ContainsAny(key, `/\`) {
		return fmt.Errorf("filestore: invalid asset key %q: %w", key, domain.ErrInvalidArgument)
	}
	return nil
}
