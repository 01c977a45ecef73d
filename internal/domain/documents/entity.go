package documents

import (
	"fmt"
	"time"
)

// FileInfo describes one uploaded document as stored server-side.
// Filename is the stored name with the ingestion timestamp prefix and is
// the sole stable identifier for delete and run association.
type FileInfo struct {
	Filename   string    `json:"filename"`
	Size       int64     `json:"size"`
	UploadedAt time.Time `json:"uploaded_at"`
}

// FileList is the wire envelope for document listings.
type FileList struct {
	Files []FileInfo `json:"files"`
}

// StoredName builds the stored filename for an upload: the ingestion
// timestamp prefix followed by the original name.
func StoredName(now time.Time, original string) string {
	return fmt.Sprintf("%s_%s", now.UTC().Format("20060102_150405"), original)
}

// UploadedAtFromName recovers the ingestion timestamp from a stored
// filename prefix. ok is false when the name carries no valid prefix.
func UploadedAtFromName(filename string) (time.Time, bool) {
	if len(filename) < 16 || filename[15] != '_' {
		return time.Time{}, false
	}
	t, err := time.Parse("20060102_150405", filename[:15])
	if err != nil {
		return time.Time{}, false
	}
	return t.UTC(), true
}
