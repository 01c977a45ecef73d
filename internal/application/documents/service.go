package documents

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	domain "github.com/signaldrift/signaldrift/internal/domain/documents"
)

// AllowedExtensions mirrors the upload allow-list enforced at ingest.
var AllowedExtensions = map[string]bool{
	".pdf":  true,
	".docx": true,
	".doc":  true,
	".txt":  true,
	".csv":  true,
	".xlsx": true,
	".xls":  true,
	".md":   true,
	".rtf":  true,
}

// ErrDisallowedType wraps the verbatim detail message for a rejected upload.
type ErrDisallowedType struct {
	Ext string
}

func (e *ErrDisallowedType) Error() string {
	return fmt.Sprintf("File type '%s' not allowed", e.Ext)
}

// Service implements document use-cases over a FileStore.
type Service struct {
	Files domain.FileStore
}

// List returns the current server-side document collection.
func (s *Service) List(ctx context.Context) ([]domain.FileInfo, error) {
	return s.Files.List(ctx)
}

// Upload validates the extension and stores the file under a timestamped name.
func (s *Service) Upload(ctx context.Context, originalName string, r io.Reader, size int64) (domain.FileInfo, error) {
	ext := strings.ToLower(filepath.Ext(originalName))
	if !AllowedExtensions[ext] {
		return domain.FileInfo{}, &ErrDisallowedType{Ext: ext}
	}
	return s.Files.Save(ctx, originalName, r, size)
}

// Delete removes a document by its stored filename.
func (s *Service) Delete(ctx context.Context, filename string) error {
	return s.Files.Delete(ctx, filename)
}
