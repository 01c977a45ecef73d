// Package format holds the display helpers shared by the CLI and TUI.
package format

import (
	"bytes"
	"encoding/json"
	"fmt"
	"regexp"
	"strings"
)

// storedPrefix matches the timestamp prefix added to uploaded filenames.
var storedPrefix = regexp.MustCompile(`^\d{8}_\d{6}_`)

// DisplayName strips the upload timestamp prefix from a stored filename.
func DisplayName(filename string) string {
	return storedPrefix.ReplaceAllString(filename, "")
}

// Extension returns the uppercased extension after the last dot, or ""
// when the name has none.
func Extension(filename string) string {
	i := strings.LastIndex(filename, ".")
	if i < 0 || i == len(filename)-1 {
		return ""
	}
	return strings.ToUpper(filename[i+1:])
}

// FormatSize renders a byte count: exact below 1 KB, one decimal above.
func FormatSize(bytes int64) string {
	switch {
	case bytes < 1024:
		return fmt.Sprintf("%d B", bytes)
	case bytes < 1024*1024:
		return fmt.Sprintf("%.1f KB", float64(bytes)/1024)
	default:
		return fmt.Sprintf("%.1f MB", float64(bytes)/(1024*1024))
	}
}

// FormatDuration renders a run duration: milliseconds below one second,
// one-decimal seconds above.
func FormatDuration(ms int64) string {
	if ms < 1000 {
		return fmt.Sprintf("%dms", ms)
	}
	return fmt.Sprintf("%.1fs", float64(ms)/1000)
}

// PrettyJSON re-indents s when it is valid JSON and returns it
// unchanged otherwise.
func PrettyJSON(s string) string {
	var buf bytes.Buffer
	if err := json.Indent(&buf, []byte(s), "", "  "); err != nil {
		return s
	}
	return buf.String()
}
