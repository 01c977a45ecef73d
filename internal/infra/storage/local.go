package storage

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"sort"

	"github.com/signaldrift/signaldrift/internal/application"
	"github.com/signaldrift/signaldrift/internal/domain/documents"
)

// LocalStore keeps uploaded documents in a flat directory. The stored
// filename (timestamp prefix + original name) is the identifier.
type LocalStore struct {
	dir   string
	clock application.Clock
}

func NewLocal(dir string, clock application.Clock) (*LocalStore, error) {
	if clock == nil {
		clock = application.SystemClock{}
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	return &LocalStore{dir: dir, clock: clock}, nil
}

func (s *LocalStore) Save(ctx context.Context, originalName string, r io.Reader, size int64) (documents.FileInfo, error) {
	now := s.clock.Now()
	stored := documents.StoredName(now, filepath.Base(originalName))
	path := filepath.Join(s.dir, stored)

	f, err := os.Create(path)
	if err != nil {
		return documents.FileInfo{}, err
	}
	written, err := io.Copy(f, r)
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		os.Remove(path)
		return documents.FileInfo{}, err
	}

	return documents.FileInfo{
		Filename:   stored,
		Size:       written,
		UploadedAt: now.UTC(),
	}, nil
}

func (s *LocalStore) List(ctx context.Context) ([]documents.FileInfo, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return nil, err
	}

	var out []documents.FileInfo
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		fi, err := e.Info()
		if err != nil {
			continue
		}
		uploaded, ok := documents.UploadedAtFromName(e.Name())
		if !ok {
			uploaded = fi.ModTime().UTC()
		}
		out = append(out, documents.FileInfo{
			Filename:   e.Name(),
			Size:       fi.Size(),
			UploadedAt: uploaded,
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].UploadedAt.After(out[j].UploadedAt) })
	return out, nil
}

func (s *LocalStore) Delete(ctx context.Context, filename string) error {
	// filepath.Base keeps deletes inside the upload dir
	path := filepath.Join(s.dir, filepath.Base(filename))
	if err := os.Remove(path); err != nil {
		if os.IsNotExist(err) {
			return documents.ErrNotFound
		}
		return err
	}
	return nil
}

func (s *LocalStore) Open(ctx context.Context, filename string) (io.ReadCloser, error) {
	f, err := os.Open(filepath.Join(s.dir, filepath.Base(filename)))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, documents.ErrNotFound
		}
		return nil, err
	}
	return f, nil
}
