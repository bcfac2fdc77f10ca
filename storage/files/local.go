// Package filestore implements core.FileStorage on the local disk & on S3.
package filestore

import (
	"context"
	"encoding/json"
	"io"
	"os"
	"path/filepath"

	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/trezcool/schoolops/core"
)

// LocalStorage keeps each file next to a JSON sidecar holding its metadata.
type LocalStorage struct {
	dir string
}

var _ core.FileStorage = (*LocalStorage)(nil)

func NewLocalStorage(dir string) (*LocalStorage, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, errors.Wrap(err, "creating upload directory")
	}
	return &LocalStorage{dir: dir}, nil
}

func (s *LocalStorage) path(id string) string { return filepath.Join(s.dir, id) }

func (s *LocalStorage) metaPath(id string) string { return filepath.Join(s.dir, id+".json") }

func (s *LocalStorage) Save(_ context.Context, f core.File, r io.Reader) (core.File, error) {
	f.ID = uuid.New().String()
	f.CreatedAt = core.NowFunc().UTC()

	out, err := os.OpenFile(s.path(f.ID), os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return core.File{}, errors.Wrap(err, "creating file")
	}
	n, err := io.Copy(out, r)
	if cErr := out.Close(); err == nil {
		err = cErr
	}
	if err != nil {
		_ = os.Remove(s.path(f.ID))
		return core.File{}, errors.Wrap(err, "writing file")
	}
	f.Size = n

	meta, err := json.Marshal(f)
	if err != nil {
		return core.File{}, errors.Wrap(err, "encoding file metadata")
	}
	if err = os.WriteFile(s.metaPath(f.ID), meta, 0o644); err != nil {
		_ = os.Remove(s.path(f.ID))
		return core.File{}, errors.Wrap(err, "writing file metadata")
	}
	return f, nil
}

func (s *LocalStorage) Open(_ context.Context, id string) (core.File, io.ReadCloser, error) {
	if _, err := uuid.Parse(id); err != nil {
		return core.File{}, nil, core.ErrFileNotFound
	}

	meta, err := os.ReadFile(s.metaPath(id))
	if err != nil {
		if os.IsNotExist(err) {
			return core.File{}, nil, core.ErrFileNotFound
		}
		return core.File{}, nil, errors.Wrap(err, "reading file metadata")
	}
	var f core.File
	if err = json.Unmarshal(meta, &f); err != nil {
		return core.File{}, nil, errors.Wrap(err, "decoding file metadata")
	}

	rc, err := os.Open(s.path(id))
	if err != nil {
		if os.IsNotExist(err) {
			return core.File{}, nil, core.ErrFileNotFound
		}
		return core.File{}, nil, errors.Wrap(err, "opening file")
	}
	return f, rc, nil
}

func (s *LocalStorage) Delete(_ context.Context, id string) error {
	if _, err := uuid.Parse(id); err != nil {
		return core.ErrFileNotFound
	}
	if err := os.Remove(s.metaPath(id)); err != nil {
		if os.IsNotExist(err) {
			return core.ErrFileNotFound
		}
		return errors.Wrap(err, "deleting file metadata")
	}
	if err := os.Remove(s.path(id)); err != nil && !os.IsNotExist(err) {
		return errors.Wrap(err, "deleting file")
	}
	return nil
}
