package extract_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"statement_scraper/pkg/core/extract"
	"statement_scraper/pkg/core/extract/extracttest"
	"statement_scraper/pkg/core/statement"
)

func locate(t *testing.T, html string, kind statement.Kind) (*statement.Extraction, error) {
	t.Helper()
	doc, err := extract.ParseDocument(html)
	require.NoError(t, err)
	return extract.NewScanner(extract.DefaultMarkers()).LocateRows(doc, kind)
}

func TestScanner_LocateRows(t *testing.T) {
	page := extracttest.Page{
		Kind:    statement.IncomeStatement,
		Note:    "All numbers in thousands",
		Periods: []string{"9/30/2021", "9/30/2020"},
		Items: []extracttest.Item{
			{Label: "Total Revenue", Values: []string{"400", "365", "274"}},
			{Label: "Cost of Revenue", Values: []string{"200", "212", "169"}},
		},
	}

	ext, err := locate(t, page.HTML(), statement.IncomeStatement)
	require.NoError(t, err)

	assert.Equal(t, page.Headers(), ext.Headers)
	assert.Equal(t, []string{"9/30/2021", "9/30/2020"}, ext.Periods())
	assert.Equal(t, []string{"Total Revenue", "Cost of Revenue"}, ext.Labels)
	assert.Equal(t, []string{"All numbers in thousands"}, ext.Notes)
	require.Len(t, ext.Rows, 3)

	first := ext.Rows[1]
	assert.Equal(t, "Total Revenue", first.Name())
	// label cell, two structural wrappers, then TTM and the two periods
	require.Len(t, first.Cells, 6)
	assert.Equal(t, "400", first.Cells[3].Text)
	assert.Equal(t, 1, first.Cells[3].Row)
}

func TestScanner_NotesAreDeduplicated(t *testing.T) {
	page := extracttest.Page{
		Kind:    statement.BalanceSheet,
		Note:    "Currency in USD",
		Periods: []string{"9/30/2021"},
		Items:   []extracttest.Item{{Label: "Total Assets", Values: []string{"1"}}},
	}
	html := `<span class="Fz(xs)">Currency in USD</span>` + page.HTML() + `<span class="Fz(xs) Mt(4px)">Currency in USD</span>`

	ext, err := locate(t, html, statement.BalanceSheet)
	require.NoError(t, err)
	assert.Equal(t, []string{"Currency in USD"}, ext.Notes)
}

func TestScanner_StructureChanged(t *testing.T) {
	tests := []struct {
		name string
		html string
	}{
		{"no row groups", `<html><body><div class="D(tbl)"><span class="Va(m)">Total Assets</span></div></body></html>`},
		{"header without periods", `<div class="D(tbr)"><div><span>Breakdown</span></div></div>` +
			extracttest.ItemHTML(extracttest.Item{Label: "Total Assets", Values: []string{"1"}})},
		{"no labels", `<div class="D(tbr)"><div><span>Breakdown</span></div><div><span>9/30/2021</span></div></div>` +
			`<div class="D(tbr)"><div>Total Assets</div><div>1</div></div>`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := locate(t, tt.html, statement.BalanceSheet)
			require.Error(t, err)
			assert.True(t, errors.Is(err, statement.ErrStructureChanged), "got %v", err)
		})
	}
}

func TestScanner_CustomMarkers(t *testing.T) {
	html := `<div class="row"><div><span>Breakdown</span></div><div><span>12/31/2021</span></div></div>` +
		`<div class="row"><div class="cell"><div><div><span class="lbl">Total Assets</span></div></div></div><div>42</div></div>`

	doc, err := extract.ParseDocument(html)
	require.NoError(t, err)

	ext, err := extract.NewScanner(extract.Markers{Row: "row", Label: "lbl"}).LocateRows(doc, statement.BalanceSheet)
	require.NoError(t, err)
	assert.Equal(t, []string{"Total Assets"}, ext.Labels)

	table, err := statement.Build(ext, "X")
	require.NoError(t, err)
	v, ok := table.Value(0, "Total Assets")
	require.True(t, ok)
	assert.Equal(t, statement.Number(42), v)
}
