package format

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDisplayName(t *testing.T) {
	tests := []struct {
		name     string
		filename string
		want     string
	}{
		{"strips timestamp prefix", "20260216_120000_report.pdf", "report.pdf"},
		{"no prefix passes through", "report.pdf", "report.pdf"},
		{"strips only one prefix", "20260216_120000_20260101_000000_x.txt", "20260101_000000_x.txt"},
		{"short digits not stripped", "2026_1200_report.pdf", "2026_1200_report.pdf"},
		{"prefix without underscore kept", "20260216120000report.pdf", "20260216120000report.pdf"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, DisplayName(tt.filename))
		})
	}
}

func TestExtension(t *testing.T) {
	assert.Equal(t, "PDF", Extension("report.pdf"))
	assert.Equal(t, "XLSX", Extension("data.v2.xlsx"))
	assert.Equal(t, "", Extension("README"))
	assert.Equal(t, "", Extension("trailing."))
}

func TestFormatSize(t *testing.T) {
	assert.Equal(t, "0 B", FormatSize(0))
	assert.Equal(t, "512 B", FormatSize(512))
	assert.Equal(t, "1023 B", FormatSize(1023))
	assert.Equal(t, "1.0 KB", FormatSize(1024))
	assert.Equal(t, "2.0 KB", FormatSize(2048))
	assert.Equal(t, "1.5 KB", FormatSize(1536))
	assert.Equal(t, "1.0 MB", FormatSize(1024*1024))
	assert.Equal(t, "2.5 MB", FormatSize(2621440))
}

func TestFormatDuration(t *testing.T) {
	assert.Equal(t, "0ms", FormatDuration(0))
	assert.Equal(t, "999ms", FormatDuration(999))
	assert.Equal(t, "1.0s", FormatDuration(1000))
	assert.Equal(t, "1.5s", FormatDuration(1500))
	assert.Equal(t, "12.3s", FormatDuration(12345))
}

func TestPrettyJSON(t *testing.T) {
	assert.Equal(t, "{\n  \"a\": 1\n}", PrettyJSON(`{"a":1}`))
	assert.Equal(t, "not json at all", PrettyJSON("not json at all"))
	assert.Equal(t, "", PrettyJSON(""))
}
