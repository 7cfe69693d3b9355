package statement

import "strings"

// RawCell is the text of one markup cell and its position in the page.
type RawCell struct {
	Row  int
	Col  int
	Text string
}

// RawRow is one row-group of the statement page. Row 0 is the period
// header; every other row is a line item whose first cell holds the label.
type RawRow struct {
	Index int
	// Label is the text of the row's label marker, empty for the header row
	// and for rows the page renders without one.
	Label string
	Cells []RawCell
}

// Name returns the line-item name: the label marker when present,
// otherwise the first cell's text.
func (r RawRow) Name() string {
	if r.Label != "" {
		return r.Label
	}
	if len(r.Cells) == 0 {
		return ""
	}
	return strings.TrimSpace(r.Cells[0].Text)
}

// Extraction is everything one scan of a statement page produced. It is
// created per call, so nothing leaks from one statement into the next.
type Extraction struct {
	Kind Kind
	// Rows holds the header row first, then the line items in page order.
	Rows []RawRow
	// Headers are the header row's cell texts, label columns included.
	Headers []string
	// Labels are the distinct line-item labels in first-seen order.
	Labels []string
	// Notes are currency/unit annotations, deduplicated by exact text.
	Notes []string
}

// Periods returns the header cells that name reporting periods.
func (e *Extraction) Periods() []string {
	n := e.Kind.HeaderLabelColumns()
	if len(e.Headers) <= n {
		return nil
	}
	return e.Headers[n:]
}

// LineItems returns the rows after the header row.
func (e *Extraction) LineItems() []RawRow {
	if len(e.Rows) < 2 {
		return nil
	}
	return e.Rows[1:]
}
