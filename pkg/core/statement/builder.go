package statement

// =============================================================================
// TABLE BUILDER - raw rows + headers -> period-indexed table
// =============================================================================

// lineItem is one row of the working grid: a label and its per-header cells.
type lineItem struct {
	name  string
	cells []RawCell
}

// Build assembles the statement table for company from one extraction.
//
// Each line-item row loses its label cell and the kind's structural cells;
// what remains must line up with Headers[1:]. The grid is then transposed so
// periods become rows, and the leading label/TTM rows left over from the
// header are dropped (two for income and cash flow, one for the balance
// sheet). Every surviving cell is normalized.
func Build(ext *Extraction, company string) (*Table, error) {
	if ext == nil {
		return nil, &Error{Op: "build", Company: company, Detail: "no extraction", Err: ErrMalformedTable}
	}
	kind := ext.Kind
	periods := ext.Periods()
	if len(periods) == 0 {
		return nil, malformed(kind, company, "header row %q has no periods", ext.Headers)
	}
	if len(ext.Labels) == 0 {
		return nil, malformed(kind, company, "no line-item labels")
	}

	lines, err := workingGrid(ext, company)
	if err != nil {
		return nil, err
	}
	grid := transpose(lines, len(ext.Headers))

	// grid[0] holds the labels, grid[1] the TTM column when present.
	dropped := kind.HeaderLabelColumns()
	if len(grid)-dropped != len(periods) {
		return nil, malformed(kind, company, "%d grid rows after dropping %d header rows, want %d periods",
			len(grid)-dropped, dropped, len(periods))
	}
	grid = grid[dropped:]

	columnOf, err := labelColumns(ext, lines, company)
	if err != nil {
		return nil, err
	}

	table := &Table{
		Kind:    kind,
		Company: company,
		Columns: append([]string{ColumnCompany, ColumnTime}, ext.Labels...),
		Rows:    make([]Row, 0, len(periods)),
		Notes:   append([]string(nil), ext.Notes...),
	}

	for p, cells := range grid {
		at, err := ParsePeriod(periods[p])
		if err != nil {
			return nil, malformed(kind, company, "%v", err)
		}
		row := Row{Company: company, Time: at, Values: make(map[string]Value, len(ext.Labels))}
		for j, cell := range cells {
			name, ok := columnOf[j]
			if !ok {
				continue
			}
			v, err := NormalizeText(cell.Text)
			if err != nil {
				return nil, withCell(err, kind, company, cell.Row, cell.Col)
			}
			row.Values[name] = v
		}
		if len(row.Values) != len(ext.Labels) {
			return nil, malformed(kind, company, "period %s has %d values for %d columns",
				periods[p], len(row.Values), len(ext.Labels))
		}
		table.Rows = append(table.Rows, row)
	}

	return table, nil
}

// workingGrid strips the label and structural cells from every line item and
// checks that each one carries exactly one cell per non-label header column.
func workingGrid(ext *Extraction, company string) ([]lineItem, error) {
	kind := ext.Kind
	skip := 1 + kind.LeadingStructuralCells()
	want := len(ext.Headers) - 1

	items := ext.LineItems()
	lines := make([]lineItem, 0, len(items))
	for _, row := range items {
		if len(row.Cells) < skip {
			return nil, malformed(kind, company, "row %d (%q) has %d cells, need at least %d",
				row.Index, row.Name(), len(row.Cells), skip)
		}
		values := row.Cells[skip:]
		if len(values) != want {
			return nil, malformed(kind, company, "row %d (%q) has %d values for %d header columns",
				row.Index, row.Name(), len(values), want)
		}
		lines = append(lines, lineItem{name: row.Name(), cells: values})
	}
	return lines, nil
}

// transpose turns line-item rows into header-column rows. Row 0 of the
// result is the label row; its cells carry the line-item names.
func transpose(lines []lineItem, width int) [][]RawCell {
	grid := make([][]RawCell, width)
	for c := range grid {
		grid[c] = make([]RawCell, len(lines))
	}
	for j, l := range lines {
		grid[0][j] = RawCell{Col: 0, Text: l.name}
		for c, cell := range l.cells {
			grid[c+1][j] = cell
		}
	}
	return grid
}

// labelColumns maps grid column j to its line-item name. Only rows whose
// name is one of the collected labels become columns; a repeated name keeps
// its first row. Every collected label must be backed by a row.
func labelColumns(ext *Extraction, lines []lineItem, company string) (map[int]string, error) {
	known := make(map[string]bool, len(ext.Labels))
	for _, l := range ext.Labels {
		known[l] = true
	}

	columnOf := make(map[int]string, len(ext.Labels))
	seen := make(map[string]bool, len(ext.Labels))
	for j, l := range lines {
		if !known[l.name] || seen[l.name] {
			continue
		}
		seen[l.name] = true
		columnOf[j] = l.name
	}

	for _, l := range ext.Labels {
		if !seen[l] {
			return nil, malformed(ext.Kind, company, "label %q has no line-item row", l)
		}
	}
	return columnOf, nil
}
