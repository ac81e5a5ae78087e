package review

import (
	"fmt"
	"strings"

	"github.com/a3tai/mcp-idp-review/internal/navigation"
	"github.com/a3tai/mcp-idp-review/internal/selection"
	"github.com/a3tai/mcp-idp-review/internal/workspace"
)

func mark(selected bool) string {
	if selected {
		return "[x]"
	}
	return "[ ]"
}

func cursor(focused bool) string {
	if focused {
		return "> "
	}
	return "  "
}

// Outline renders a batch as an indented tree. Selected documents and pages are marked
// [x] and the focused element is prefixed with >.
func Outline(b *workspace.Batch, docs, pages *selection.State, focus navigation.Focus) string {
	stats := b.Stats()
	var out strings.Builder
	fmt.Fprintf(&out, "Batch: %s (%d documents, %d pages)\n", b.Name, stats.Documents, stats.Pages)

	for _, c := range b.Classes {
		focused := focus.Context == navigation.ContextClasses && focus.ClassID == c.ID
		fmt.Fprintf(&out, "%s%s [%s] (%d documents)\n", cursor(focused), c.Name, c.ID, len(c.Documents))

		for _, d := range c.Documents {
			focused := focus.Context == navigation.ContextDocuments && focus.DocumentID == d.ID
			line := fmt.Sprintf("%s  %s %s %q", cursor(focused), mark(docs.IsSelected(d.ID)), d.ID, d.Name)
			if d.Rejected {
				line += " REJECTED"
			}
			if d.SuggestedClass != "" {
				line += " suggested: " + d.SuggestedClass
			}
			out.WriteString(line + "\n")

			for _, p := range d.Pages {
				focused := (focus.Context == navigation.ContextPages || focus.Context == navigation.ContextAllPages) &&
					focus.PageID == p.ID
				line := fmt.Sprintf("%s    %s %s", cursor(focused), mark(pages.IsSelected(p.ID)), p.ID)
				if p.Source.File != "" {
					line += fmt.Sprintf(" %s#%d", p.Source.File, p.Source.Page)
				}
				if p.Rotation != 0 {
					line += fmt.Sprintf(" rotated %d", p.Rotation)
				}
				out.WriteString(line + "\n")
			}

			for _, f := range d.Fields {
				status := "unverified"
				if f.Verified {
					status = "verified"
				}
				fmt.Fprintf(&out, "        %s = %q (%s, confidence %.2f)\n", f.Name, f.Value, status, f.Confidence)
			}
		}
	}
	return out.String()
}
