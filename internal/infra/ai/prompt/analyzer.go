package prompt

import (
	"fmt"
	"path/filepath"
	"strings"
)

// maxInlineBytes caps how much document text is inlined into the user
// message. Larger documents are truncated with a marker so the model
// knows the text is partial.
const maxInlineBytes = 256 * 1024

// textExtensions are the document types whose bytes are safe to inline
// verbatim. Binary formats are described instead.
var textExtensions = map[string]bool{
	".txt": true,
	".md":  true,
	".csv": true,
	".rtf": true,
}

// GetSystemPrompt pins the model to the analyst role and JSON-only output.
func GetSystemPrompt() string {
	return `You are a document analysis engine. Follow the user's analysis instructions exactly. When the instructions ask for JSON, produce one valid JSON object only, with no markdown fences and no commentary.`
}

// GetUserMessage builds the user message: the analysis prompt followed by
// the document, inlined for text formats and described otherwise.
func GetUserMessage(analysisPrompt, filename string, content []byte) string {
	var b strings.Builder
	b.WriteString(analysisPrompt)
	b.WriteString("\n\n---\n")

	ext := strings.ToLower(filepath.Ext(filename))
	if textExtensions[ext] {
		text := content
		truncated := false
		if len(text) > maxInlineBytes {
			text = text[:maxInlineBytes]
			truncated = true
		}
		fmt.Fprintf(&b, "Document %q:\n\n%s", filename, text)
		if truncated {
			b.WriteString("\n\n[document truncated]")
		}
	} else {
		fmt.Fprintf(&b, "Document %q (%d bytes, %s format). The raw bytes cannot be inlined; analyse based on the available metadata and state clearly when evidence is unavailable.",
			filename, len(content), strings.TrimPrefix(ext, "."))
	}
	return b.String()
}
