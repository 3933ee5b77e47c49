package generate

import (
	"encoding/json"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/joseph-ayodele/reportai/constants"
)

// MaxPromptCharsPerDocument caps how much extracted text of one document is
// sent to a model.
const MaxPromptCharsPerDocument = 4000

// BuildSystemPrompt states the template contract for t.
func BuildSystemPrompt(kind constants.ReportKind, t Template) string {
	parts := []string{
		"You are a report writer. Return ONLY JSON that matches the provided JSON Schema.",
		fmt.Sprintf("Write a %s report in a %s tone, focusing on %s.", strings.ToLower(kind.Title()), t.Tone, t.Focus),
		"The report must contain exactly these sections, in this order: " + strings.Join(t.Sections, "; ") + ".",
		"Each section is an object with 'heading' (the exact section name) and 'body' (markdown, without repeating the heading).",
		"Base every statement on the supplied documents; do not invent figures.",
		"Never output null.",
	}
	return strings.Join(parts, " ")
}

// BuildUserPrompt lists the documents with their (clipped) text.
func BuildUserPrompt(kind constants.ReportKind, docs []DocumentSummary) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Report kind: %s\n", kind.Title())
	fmt.Fprintf(&b, "Documents: %d\n", len(docs))
	for i, d := range docs {
		fmt.Fprintf(&b, "\n### Document %d: %s (%s, %s)\n", i+1, d.Name, formatKB(d.SizeBytes), d.MediaType)
		text := d.Text
		if len(text) > MaxPromptCharsPerDocument {
			text = clip(text, MaxPromptCharsPerDocument) + "\n[...truncated]"
		}
		b.WriteString(text)
		b.WriteString("\n")
	}
	return b.String()
}

// SchemaPrompt renders the sections schema for inclusion in a message.
func SchemaPrompt(t Template) string {
	b, _ := json.MarshalIndent(SectionsSchema(t), "", "  ")
	return "JSON Schema:\n" + string(b)
}

// clip cuts s to at most max bytes without splitting a rune.
func clip(s string, max int) string {
	if len(s) <= max {
		return s
	}
	for max > 0 && !utf8.RuneStart(s[max]) {
		max--
	}
	return s[:max]
}

func formatKB(n int64) string {
	return fmt.Sprintf("%dKB", (n+512)/1024)
}
