package features

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"statement_scraper/pkg/core/schema"
	"statement_scraper/pkg/core/statement"
)

type fakeSource struct {
	company string
	tables  map[statement.Kind]*statement.Table
}

func (f fakeSource) Company() string { return f.company }

func (f fakeSource) Table(kind statement.Kind) (*statement.Table, bool) {
	t, ok := f.tables[kind]
	return t, ok
}

var periods = []time.Time{
	time.Date(2021, 9, 30, 0, 0, 0, 0, time.UTC),
	time.Date(2021, 6, 30, 0, 0, 0, 0, time.UTC),
	time.Date(2021, 3, 31, 0, 0, 0, 0, time.UTC),
}

// table builds a statement table whose columns are given in order; cols
// maps each column to its per-period values, nil meaning missing.
func table(kind statement.Kind, n int, order []string, cols map[string][]*float64) *statement.Table {
	t := &statement.Table{Kind: kind, Company: "AAPL", Columns: append([]string{statement.ColumnCompany, statement.ColumnTime}, order...)}
	for i := 0; i < n; i++ {
		row := statement.Row{Company: "AAPL", Time: periods[i], Values: map[string]statement.Value{}}
		for _, c := range order {
			if v := cols[c][i]; v != nil {
				row.Values[c] = statement.Number(*v)
			} else {
				row.Values[c] = statement.Missing
			}
		}
		t.Rows = append(t.Rows, row)
	}
	return t
}

func f(v float64) *float64 { return &v }

func repeat(n int, v float64) []*float64 {
	out := make([]*float64, n)
	for i := range out {
		out[i] = f(v)
	}
	return out
}

// fullSource fills every v1 column with a constant per statement.
func fullSource(n int) fakeSource {
	income := []string{"Total Revenue", "Cost of Revenue", "Gross Profit", "Operating Income", "Interest Expense", "Net Income"}
	balance := []string{"Total Assets", "Current Assets", "Inventory", "Cash And Cash Equivalents",
		"Total Liabilities Net Minority Interest", "Current Liabilities", "Stockholders' Equity"}
	cash := []string{"Operating Cash Flow", "Investing Cash Flow"}

	fill := func(cols []string) map[string][]*float64 {
		m := map[string][]*float64{}
		for i, c := range cols {
			m[c] = repeat(n, float64(100*(i+1)))
		}
		return m
	}
	return fakeSource{company: "AAPL", tables: map[statement.Kind]*statement.Table{
		statement.IncomeStatement: table(statement.IncomeStatement, n, income, fill(income)),
		statement.BalanceSheet:    table(statement.BalanceSheet, n, balance, fill(balance)),
		statement.CashFlow:        table(statement.CashFlow, n, cash, fill(cash)),
	}}
}

func TestProject_AllPeriods(t *testing.T) {
	ft, err := NewProjector(schema.V1, nil).Project(fullSource(3))
	require.NoError(t, err)

	assert.Equal(t, schema.V1.FeatureNames(), ft.Columns)
	require.Equal(t, 3, ft.Len())
	assert.Equal(t, 0, ft.Dropped)

	row := ft.Rows[0]
	assert.Equal(t, "AAPL", row.Company)
	assert.True(t, row.Time.Equal(periods[0]))
	v, ok := row.Get("total_revenue")
	require.True(t, ok)
	assert.Equal(t, 100.0, v)
	// positional: first line item of the cash flow page
	v, _ = row.Get("operating_cashflow")
	assert.Equal(t, 100.0, v)
	v, _ = row.Get("current_liabilities")
	assert.Equal(t, 600.0, v)
}

func TestProject_DropsPeriodWithMissingRequiredValue(t *testing.T) {
	src := fullSource(3)
	src.tables[statement.BalanceSheet].Rows[1].Values["Current Assets"] = statement.Missing

	ft, err := NewProjector(schema.V1, nil).Project(src)
	require.NoError(t, err)
	require.Equal(t, 2, ft.Len())
	assert.Equal(t, 1, ft.Dropped)
	assert.True(t, ft.Rows[1].Time.Equal(periods[2]))
}

func TestProject_MismatchedPeriodCounts(t *testing.T) {
	src := fullSource(3)
	short := fullSource(2)
	src.tables[statement.CashFlow] = short.tables[statement.CashFlow]

	ft, err := NewProjector(schema.V1, nil).Project(src)
	require.NoError(t, err)
	assert.Equal(t, 2, ft.Len())
	assert.Equal(t, 1, ft.Dropped)
}

func TestProject_MissingStatement(t *testing.T) {
	src := fullSource(2)
	delete(src.tables, statement.CashFlow)

	_, err := NewProjector(schema.V1, nil).Project(src)
	assert.True(t, errors.Is(err, ErrIncompleteFeatureSet), "got %v", err)
}

func TestProject_MissingRequiredColumnDropsEverything(t *testing.T) {
	src := fullSource(2)
	bs := src.tables[statement.BalanceSheet]
	bs.Columns = bs.Columns[:len(bs.Columns)-1] // no Stockholders' Equity

	ft, err := NewProjector(schema.V1, nil).Project(src)
	require.NoError(t, err)
	assert.Equal(t, 0, ft.Len())
	assert.Equal(t, 2, ft.Dropped)
}

func TestProject_OptionalFeatures(t *testing.T) {
	ft, err := NewProjector(schema.V2, nil).Project(fullSource(2))
	require.NoError(t, err)
	require.Equal(t, 2, ft.Len())

	row := ft.Rows[0]
	_, ok := row.Get("EBIT")
	assert.False(t, ok, "EBIT has no source column")
	v, ok := row.Get("investing_cashflow")
	require.True(t, ok)
	assert.Equal(t, 200.0, v)
	_, ok = row.Get("end_cash")
	assert.False(t, ok, "End Cash Position has no source column")

	rec := ft.Records()[0]
	for i, c := range ft.Columns {
		if c == "EBIT" {
			assert.Equal(t, "", rec[i])
		}
	}
}

func TestProject_TruncatesToInteger(t *testing.T) {
	src := fullSource(1)
	src.tables[statement.IncomeStatement].Rows[0].Values["Net Income"] = statement.Number(1234.9)

	ft, err := NewProjector(schema.V1, nil).Project(src)
	require.NoError(t, err)
	v, _ := ft.Rows[0].Get("net_income")
	assert.Equal(t, 1234.0, v)
}

func TestProject_FractionalFeatureKeepsDecimals(t *testing.T) {
	src := fullSource(1)
	is := src.tables[statement.IncomeStatement]
	is.Columns = append(is.Columns, "Basic EPS")
	is.Rows[0].Values["Basic EPS"] = statement.Number(1.52)
	is.Rows[0].Values["Net Income"] = statement.Number(1234.9)

	ft, err := NewProjector(schema.V2, nil).Project(src)
	require.NoError(t, err)
	require.Equal(t, 1, ft.Len())

	eps, ok := ft.Rows[0].Get("EPS")
	require.True(t, ok)
	assert.Equal(t, 1.52, eps)
	ni, _ := ft.Rows[0].Get("net_income")
	assert.Equal(t, 1234.0, ni)

	rec := ft.Records()[0]
	for i, c := range ft.Columns {
		if c == "EPS" {
			assert.Equal(t, "1.52", rec[i])
		}
	}
}

func TestProject_DropsPeriodOutOfIntegerRange(t *testing.T) {
	src := fullSource(2)
	src.tables[statement.BalanceSheet].Rows[0].Values["Total Assets"] = statement.Number(1e19)
	src.tables[statement.BalanceSheet].Rows[1].Values["Total Assets"] = statement.Number(-1e19)

	ft, err := NewProjector(schema.V1, nil).Project(src)
	require.NoError(t, err)
	assert.Equal(t, 0, ft.Len())
	assert.Equal(t, 2, ft.Dropped)
}
