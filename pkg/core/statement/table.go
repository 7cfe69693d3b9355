package statement

import "time"

// Synthetic columns present in every statement table.
const (
	ColumnCompany = "Company"
	ColumnTime    = "Time"
)

// PeriodLayout is how period dates are rendered in flat-file output.
const PeriodLayout = "2006-01-02"

// Row is one reporting period.
type Row struct {
	Company string           `json:"company"`
	Time    time.Time        `json:"time"`
	Values  map[string]Value `json:"values"`
}

// Table is a normalized statement: one row per period, one column per line
// item. Columns always starts with Company and Time followed by line items
// in the order the page first showed them.
type Table struct {
	Kind    Kind     `json:"kind"`
	Company string   `json:"company"`
	Columns []string `json:"columns"`
	Rows    []Row    `json:"rows"`
	Notes   []string `json:"notes,omitempty"`
}

// Len returns the number of periods.
func (t *Table) Len() int {
	if t == nil {
		return 0
	}
	return len(t.Rows)
}

// LineItems returns the line-item columns, without Company and Time.
func (t *Table) LineItems() []string {
	if len(t.Columns) <= 2 {
		return nil
	}
	return t.Columns[2:]
}

// HasColumn reports whether name is one of the table's line items.
func (t *Table) HasColumn(name string) bool {
	for _, c := range t.LineItems() {
		if c == name {
			return true
		}
	}
	return false
}

// ColumnAt returns the column name at position pos of Columns.
func (t *Table) ColumnAt(pos int) (string, bool) {
	if pos < 0 || pos >= len(t.Columns) {
		return "", false
	}
	return t.Columns[pos], true
}

// Value returns the cell for period i and line item name. ok is false when
// the period or the column does not exist.
func (t *Table) Value(i int, name string) (Value, bool) {
	if i < 0 || i >= len(t.Rows) {
		return Missing, false
	}
	v, ok := t.Rows[i].Values[name]
	return v, ok
}

// Header implements the export row source.
func (t *Table) Header() []string {
	return append([]string(nil), t.Columns...)
}

// Records renders every row in Columns order.
func (t *Table) Records() [][]string {
	out := make([][]string, 0, len(t.Rows))
	for _, r := range t.Rows {
		rec := make([]string, len(t.Columns))
		for i, c := range t.Columns {
			switch c {
			case ColumnCompany:
				rec[i] = r.Company
			case ColumnTime:
				rec[i] = r.Time.Format(PeriodLayout)
			default:
				rec[i] = r.Values[c].String()
			}
		}
		out = append(out, rec)
	}
	return out
}
