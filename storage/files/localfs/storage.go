// Package localfs stores objects on the local filesystem, for development.
package localfs

import (
	"context"
	"io"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"

	"github.com/trezcool/taqyeem/core"
)

var errBadKey = errors.New("object key escapes the storage directory")

type Storage struct {
	dir     string
	baseURL string
}

var _ core.ObjectStorage = (*Storage)(nil) // interface compliance check

// New stores objects under dir; their URLs start with baseURL.
func New(dir, baseURL string) (*Storage, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, errors.Wrap(err, "creating storage directory")
	}
	return &Storage{dir: dir, baseURL: strings.TrimRight(baseURL, "/")}, nil
}

func (s *Storage) Dir() string { return s.dir }

func (s *Storage) path(key string) (string, error) {
	clean := path.Clean("/" + key)
	if key == "" || clean == "/" {
		return "", errBadKey
	}
	return filepath.Join(s.dir, filepath.FromSlash(clean)), nil
}

func (s *Storage) Upload(_ context.Context, key string, r io.Reader, _ string) (string, error) {
	fp, err := s.path(key)
	if err != nil {
		return "", err
	}
	if err = os.MkdirAll(filepath.Dir(fp), 0o755); err != nil {
		return "", errors.Wrap(err, "creating object directory")
	}

	f, err := os.Create(fp)
	if err != nil {
		return "", errors.Wrap(err, "creating object "+key)
	}
	if _, err = io.Copy(f, r); err != nil {
		_ = f.Close()
		_ = os.Remove(fp)
		return "", errors.Wrap(err, "writing object "+key)
	}
	if err = f.Close(); err != nil {
		return "", errors.Wrap(err, "closing object "+key)
	}
	return s.baseURL + path.Clean("/"+key), nil
}

func (s *Storage) Delete(_ context.Context, key string) error {
	fp, err := s.path(key)
	if err != nil {
		return err
	}
	if err = os.Remove(fp); err != nil && !os.IsNotExist(err) {
		return errors.Wrap(err, "deleting object "+key)
	}
	return nil
}
