package schema

import (
	"fmt"

	"statement_scraper/pkg/core/statement"
)

// Default is the schema used when none is configured.
const Default = "v1"

func bs(col string) Source { return Source{Kind: statement.BalanceSheet, Column: col} }
func is(col string) Source { return Source{Kind: statement.IncomeStatement, Column: col} }
func cf(col string) Source { return Source{Kind: statement.CashFlow, Column: col} }

var v1Features = []Feature{
	{Name: "current_assets", Source: bs("Current Assets")},
	{Name: "current_liabilities", Source: bs("Current Liabilities")},
	{Name: "inventories", Source: bs("Inventory")},
	{Name: "cash&cashequiv", Source: bs("Cash And Cash Equivalents")},
	{Name: "total_assets", Source: bs("Total Assets")},
	{Name: "total_liabilities", Source: bs("Total Liabilities Net Minority Interest")},
	{Name: "shareholder_equity", Source: bs("Stockholders' Equity")},
	// The provider labels this figure differently from company to company,
	// so it is taken from the first line-item column of the cash flow page.
	// This breaks silently if a page ever leads with another line item.
	{Name: "operating_cashflow", Source: Source{Kind: statement.CashFlow, Position: 2}},
	{Name: "gross_profit", Source: is("Gross Profit")},
	{Name: "operating_income", Source: is("Operating Income")},
	{Name: "total_revenue", Source: is("Total Revenue")},
	{Name: "net_income", Source: is("Net Income")},
	{Name: "interest_expense", Source: is("Interest Expense")},
	{Name: "cost_of_good_sold", Source: is("Cost of Revenue")},
}

var v1Metrics = []Metric{
	{Name: "current_ratio", Numerator: Ref("current_assets"), Denominator: Ref("current_liabilities")},
	{Name: "acidtest_ratio", Numerator: Minus("current_assets", "inventories"), Denominator: Ref("current_liabilities")},
	{Name: "cash_ratio", Numerator: Ref("cash&cashequiv"), Denominator: Ref("current_liabilities")},
	{Name: "operating_cash_flow_ratio", Numerator: Ref("operating_cashflow"), Denominator: Ref("current_liabilities")},
	{Name: "debt_ratio", Numerator: Ref("total_liabilities"), Denominator: Ref("total_assets")},
	{Name: "return_on_asset_ratio", Numerator: Ref("net_income"), Denominator: Ref("total_assets")},
	{Name: "debt_to_equity_ratio", Numerator: Ref("total_liabilities"), Denominator: Ref("shareholder_equity")},
	{Name: "interest_coverage_ratio", Numerator: Ref("operating_income"), Denominator: Ref("interest_expense")},
	{Name: "return_on_equity_ratio", Numerator: Ref("net_income"), Denominator: Ref("shareholder_equity")},
	{Name: "gross_margin_ratio", Numerator: Ref("gross_profit"), Denominator: Ref("total_revenue")},
	{Name: "operating_margin_ratio", Numerator: Ref("operating_income"), Denominator: Ref("total_revenue")},
}

// V1 is the base feature/metric set.
var V1 = register(&Schema{
	Version:  "v1",
	Features: v1Features,
	Metrics:  v1Metrics,
})

// V2 adds cash movement, EBIT, EPS and EBITDA features, a net profit
// margin, and measures interest coverage on EBIT instead of operating
// income. The added features are optional: the page does not show them for
// every company.
var V2 = register(&Schema{
	Version: "v2",
	Features: pick(v1Features,
		"current_assets", "current_liabilities", "inventories", "cash&cashequiv",
		"total_assets", "total_liabilities", "shareholder_equity", "operating_cashflow",
		"gross_profit",
		Feature{Name: "investing_cashflow", Source: cf("Investing Cash Flow"), Optional: true},
		Feature{Name: "financing_cashflow", Source: cf("Financing Cash Flow"), Optional: true},
		Feature{Name: "end_cash", Source: cf("End Cash Position"), Optional: true},
		"operating_income", "total_revenue", "net_income", "interest_expense", "cost_of_good_sold",
		Feature{Name: "EBIT", Source: is("EBIT"), Optional: true},
		Feature{Name: "EPS", Source: is("Basic EPS"), Optional: true, Fractional: true},
		Feature{Name: "EBITDA", Source: is("Normalized EBITDA"), Optional: true},
	),
	Metrics: override(
		append([]Metric{{Name: "net_profit_margin", Numerator: Ref("net_income"), Denominator: Ref("total_revenue")}}, v1Metrics...),
		Metric{Name: "interest_coverage_ratio", Numerator: Ref("EBIT"), Denominator: Ref("interest_expense")},
	),
})

// pick builds a feature list in the given order. A string reuses the base
// feature of that name; a Feature is added as is.
func pick(base []Feature, items ...any) []Feature {
	out := make([]Feature, 0, len(items))
	for _, it := range items {
		switch v := it.(type) {
		case string:
			f, ok := (&Schema{Features: base}).Feature(v)
			if !ok {
				panic("schema: unknown base feature " + v)
			}
			out = append(out, f)
		case Feature:
			out = append(out, v)
		default:
			panic(fmt.Sprintf("schema: unsupported feature item %T", it))
		}
	}
	return out
}

// override replaces the metrics of the same name, keeping their position.
func override(metrics []Metric, with ...Metric) []Metric {
	out := append([]Metric(nil), metrics...)
	for _, w := range with {
		for i := range out {
			if out[i].Name == w.Name {
				out[i] = w
			}
		}
	}
	return out
}
