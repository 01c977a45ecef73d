// Package documents holds the client-side view of the uploaded
// document collection.
package documents

import (
	"context"
	"net/url"
	"sync/atomic"

	"github.com/signaldrift/signaldrift/internal/client/gateway"
	domain "github.com/signaldrift/signaldrift/internal/domain/documents"
)

// Store owns the document list shown to the user. The list is always a
// verbatim snapshot of the last successful listing fetch, replaced
// wholesale and never mutated speculatively. Methods are called from a
// single goroutine.
type Store struct {
	gw *gateway.Client

	files []domain.FileInfo
	err   string

	// gen tags in-flight operations; Close bumps it so late results
	// from a torn-down view are dropped instead of applied. Atomic
	// because Close may run while an operation goroutine is blocked.
	gen atomic.Int64
}

func NewStore(gw *gateway.Client) *Store {
	return &Store{gw: gw}
}

// Files returns the current snapshot.
func (s *Store) Files() []domain.FileInfo { return s.files }

// Err returns the last mutation error, empty when the last mutation
// succeeded. Listing failures never set it.
func (s *Store) Err() string { return s.err }

// Load refreshes the list. A listing failure is silent: the previous
// snapshot stays in place and no error is surfaced.
func (s *Store) Load(ctx context.Context) {
	gen := s.gen.Load()
	res := gateway.FetchJSON[domain.FileList](ctx, s.gw, "/api/v1/documents")
	if gen != s.gen.Load() {
		return
	}
	if res.OK {
		s.files = res.Data.Files
	}
}

// Upload sends the file then refreshes the list. The refresh is
// sequenced strictly after the upload response and runs whether or not
// the upload was accepted.
func (s *Store) Upload(ctx context.Context, filename string, content []byte) {
	gen := s.gen.Load()
	res := gateway.UploadFile[domain.FileInfo](ctx, s.gw, "/api/v1/documents", filename, content)
	if gen != s.gen.Load() {
		return
	}
	s.err = res.Err
	s.Load(ctx)
}

// Delete removes a document by stored filename then refreshes the list,
// whether or not the delete was accepted.
func (s *Store) Delete(ctx context.Context, filename string) {
	gen := s.gen.Load()
	res := s.gw.Delete(ctx, "/api/v1/documents/"+url.PathEscape(filename))
	if gen != s.gen.Load() {
		return
	}
	s.err = res.Err
	s.Load(ctx)
}

// Close invalidates any outstanding operation so its result is never
// applied to this store.
func (s *Store) Close() {
	s.gen.Add(1)
}
