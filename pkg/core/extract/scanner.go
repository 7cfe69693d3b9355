// Package extract locates the row-groups of a statement page.
package extract

import (
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"statement_scraper/pkg/core/statement"
)

// Markers are the style classes the provider uses uniformly on all three
// statement pages.
type Markers struct {
	Row   string `yaml:"row"`   // one row-group per line item
	Label string `yaml:"label"` // line-item label span
	Note  string `yaml:"note"`  // currency/unit annotation span
}

// DefaultMarkers returns the classes the provider renders today.
func DefaultMarkers() Markers {
	return Markers{Row: "D(tbr)", Label: "Va(m)", Note: "Fz(xs)"}
}

// RowLocator finds the raw rows of one statement page. The pipeline depends
// on this interface only, so it can run against synthetic fixtures.
type RowLocator interface {
	LocateRows(doc *goquery.Document, kind statement.Kind) (*statement.Extraction, error)
}

// Scanner is the goquery RowLocator.
type Scanner struct {
	markers  Markers
	rowSel   string
	labelSel string
	noteSel  string
}

// NewScanner creates a scanner for the given markers. Empty fields fall back
// to DefaultMarkers.
func NewScanner(m Markers) *Scanner {
	def := DefaultMarkers()
	if m.Row == "" {
		m.Row = def.Row
	}
	if m.Label == "" {
		m.Label = def.Label
	}
	if m.Note == "" {
		m.Note = def.Note
	}
	return &Scanner{
		markers:  m,
		rowSel:   classSelector("div", m.Row),
		labelSel: classSelector("span", m.Label),
		noteSel:  classSelector("span", m.Note),
	}
}

// ParseDocument parses a markup snapshot.
func ParseDocument(html string) (*goquery.Document, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, fmt.Errorf("failed to parse HTML: %w", err)
	}
	return doc, nil
}

// LocateRows scans doc for the statement's row-groups.
//
// The first row-group is the period header: all its spans become Headers.
// Every later row-group is a line item whose cells are all of its nested
// divs in document order (label cell, structural wrappers, then values).
// Labels are the distinct label-marker spans across all rows.
func (s *Scanner) LocateRows(doc *goquery.Document, kind statement.Kind) (*statement.Extraction, error) {
	if doc == nil {
		return nil, statement.StructureError("locate", kind, "", "empty document")
	}

	ext := &statement.Extraction{Kind: kind}
	ext.Notes = s.collectNotes(doc)

	rows := doc.Find(s.rowSel)
	if rows.Length() == 0 {
		return nil, statement.StructureError("locate", kind, "",
			fmt.Sprintf("no row-group marker %q", s.markers.Row))
	}

	rows.First().Find("span").Each(func(_ int, span *goquery.Selection) {
		ext.Headers = append(ext.Headers, strings.TrimSpace(span.Text()))
	})
	if len(ext.Headers) <= kind.HeaderLabelColumns() {
		return nil, statement.StructureError("locate", kind, "",
			fmt.Sprintf("header row has %d cells, no periods", len(ext.Headers)))
	}

	seen := make(map[string]bool)
	rows.Each(func(i int, row *goquery.Selection) {
		raw := statement.RawRow{Index: i}
		row.Find(s.labelSel).Each(func(_ int, span *goquery.Selection) {
			text := strings.TrimSpace(span.Text())
			if text == "" {
				return
			}
			if raw.Label == "" {
				raw.Label = text
			}
			if !seen[text] {
				seen[text] = true
				ext.Labels = append(ext.Labels, text)
			}
		})
		if i > 0 {
			row.Find("div").Each(func(j int, cell *goquery.Selection) {
				raw.Cells = append(raw.Cells, statement.RawCell{
					Row:  i,
					Col:  j,
					Text: strings.TrimSpace(cell.Text()),
				})
			})
		}
		ext.Rows = append(ext.Rows, raw)
	})

	if len(ext.Labels) == 0 {
		return nil, statement.StructureError("locate", kind, "",
			fmt.Sprintf("no label marker %q", s.markers.Label))
	}
	return ext, nil
}

func (s *Scanner) collectNotes(doc *goquery.Document) []string {
	var notes []string
	seen := make(map[string]bool)
	doc.Find(s.noteSel).Each(func(_ int, span *goquery.Selection) {
		text := strings.TrimSpace(span.Text())
		if text == "" || seen[text] {
			return
		}
		seen[text] = true
		notes = append(notes, text)
	})
	return notes
}

func classSelector(tag, class string) string {
	return fmt.Sprintf("%s[class~=%q]", tag, class)
}
