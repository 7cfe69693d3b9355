package export

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
)

// Section is one titled table of a report.
type Section struct {
	Title string
	Notes []string
	Table Tabular
}

// MarkdownTable renders t as a GitHub-flavored Markdown table. Empty cells
// are shown as "-".
func MarkdownTable(t Tabular) string {
	header := t.Header()
	if len(header) == 0 {
		return ""
	}
	var b strings.Builder
	writeRow(&b, header)
	sep := make([]string, len(header))
	for i := range sep {
		sep[i] = "---"
	}
	writeRow(&b, sep)
	for _, rec := range t.Records() {
		cells := make([]string, len(rec))
		for i, c := range rec {
			if c == "" {
				c = "-"
			}
			cells[i] = c
		}
		writeRow(&b, cells)
	}
	return b.String()
}

func writeRow(b *strings.Builder, cells []string) {
	b.WriteString("|")
	for _, c := range cells {
		b.WriteString(" ")
		b.WriteString(strings.ReplaceAll(c, "|", `\|`))
		b.WriteString(" |")
	}
	b.WriteString("\n")
}

// Report renders a titled Markdown document with one section per table.
func Report(title string, sections []Section) string {
	var b strings.Builder
	fmt.Fprintf(&b, "# %s\n\n", title)
	for _, s := range sections {
		fmt.Fprintf(&b, "## %s\n\n", s.Title)
		for _, n := range s.Notes {
			fmt.Fprintf(&b, "_%s_\n\n", n)
		}
		if s.Table == nil || len(s.Table.Records()) == 0 {
			b.WriteString("No rows.\n\n")
			continue
		}
		b.WriteString(MarkdownTable(s.Table))
		b.WriteString("\n")
	}
	return b.String()
}

var md = goldmark.New(goldmark.WithExtensions(extension.GFM))

// RenderHTML converts Markdown to an HTML fragment.
func RenderHTML(markdown string) ([]byte, error) {
	var buf bytes.Buffer
	if err := md.Convert([]byte(markdown), &buf); err != nil {
		return nil, fmt.Errorf("failed to render markdown: %w", err)
	}
	return buf.Bytes(), nil
}
