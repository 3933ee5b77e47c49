package export

import (
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/joseph-ayodele/reportai/constants"
	"github.com/joseph-ayodele/reportai/internal/entity"
)

var unsafeName = regexp.MustCompile(`[^a-z0-9]+`)

// FileName turns a report title into a download name with ext.
func FileName(title, ext string) string {
	base := strings.Trim(unsafeName.ReplaceAllString(strings.ToLower(title), "_"), "_")
	if base == "" {
		base = "report"
	}
	return base + "." + strings.TrimPrefix(ext, ".")
}

// ReportText renders r as a plain-text download. Minimal is the content
// alone; standard adds a metadata header; detailed also lists sources and
// closes with a footer.
func ReportText(r entity.Report, tmpl constants.ExportTemplate) string {
	if tmpl == constants.ExportMinimal {
		return strings.TrimRight(r.Content, "\n") + "\n"
	}

	var b strings.Builder
	b.WriteString(r.Title + "\n")
	b.WriteString(strings.Repeat("=", len([]rune(r.Title))) + "\n")
	fmt.Fprintf(&b, "Kind: %s\n", r.Kind.Title())
	fmt.Fprintf(&b, "Created: %s\n", r.CreatedAt.UTC().Format(time.DateOnly))
	fmt.Fprintf(&b, "Updated: %s\n", r.UpdatedAt.UTC().Format(time.DateOnly))
	if tmpl == constants.ExportDetailed {
		fmt.Fprintf(&b, "Status: %s\n", r.Status)
		fmt.Fprintf(&b, "Pages: %d\n", r.PageEstimate)
		if r.DocumentSource != "" {
			fmt.Fprintf(&b, "Sources: %s\n", r.DocumentSource)
		}
	}
	b.WriteString("\n")
	b.WriteString(strings.TrimRight(r.Content, "\n"))
	b.WriteString("\n")
	if tmpl == constants.ExportDetailed {
		fmt.Fprintf(&b, "\n-- %s (%d source documents)\n", r.ID, len(r.DocumentIDs))
	}
	return b.String()
}
