// Package statement turns the row-groups of a financial statement page into
// a typed, period-indexed table.
package statement

import (
	"fmt"
	"strings"
)

// Kind identifies one of the three financial statements.
type Kind int

const (
	IncomeStatement Kind = iota
	BalanceSheet
	CashFlow
)

// AllKinds lists the statements in the order a full session extracts them.
var AllKinds = []Kind{IncomeStatement, BalanceSheet, CashFlow}

// String returns the display name used by the provider's page titles.
func (k Kind) String() string {
	switch k {
	case IncomeStatement:
		return "Income Statement"
	case BalanceSheet:
		return "Balance Sheet"
	case CashFlow:
		return "Cash Flow"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// Slug is the short identifier used in file names and config.
func (k Kind) Slug() string {
	switch k {
	case IncomeStatement:
		return "income_statement"
	case BalanceSheet:
		return "balance_sheet"
	case CashFlow:
		return "cash_flow"
	default:
		return fmt.Sprintf("kind_%d", int(k))
	}
}

// PagePath is the provider URL path segment for the statement page.
func (k Kind) PagePath() string {
	switch k {
	case IncomeStatement:
		return "financials"
	case BalanceSheet:
		return "balance-sheet"
	case CashFlow:
		return "cash-flow"
	default:
		return ""
	}
}

// HeaderLabelColumns is the number of leading header cells that are labels
// rather than periods. The balance sheet has no trailing-twelve-months column,
// so it carries one fewer.
func (k Kind) HeaderLabelColumns() int {
	if k == BalanceSheet {
		return 1
	}
	return 2
}

// LeadingStructuralCells is the number of nested cells that follow the label
// cell of every line-item row (expand/collapse wrappers) and carry no value.
func (k Kind) LeadingStructuralCells() int {
	return 2
}

// Valid reports whether k is one of the known statements.
func (k Kind) Valid() bool {
	return k >= IncomeStatement && k <= CashFlow
}

// ParseKind accepts a slug, a display name or a short alias.
func ParseKind(s string) (Kind, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "income", "income_statement", "income statement", "financials":
		return IncomeStatement, nil
	case "balance", "balance_sheet", "balance sheet", "balance-sheet":
		return BalanceSheet, nil
	case "cashflow", "cash_flow", "cash flow", "cash-flow":
		return CashFlow, nil
	}
	return 0, fmt.Errorf("unknown statement %q", s)
}

func (k Kind) MarshalText() ([]byte, error) {
	if !k.Valid() {
		return nil, fmt.Errorf("invalid statement kind %d", int(k))
	}
	return []byte(k.Slug()), nil
}

func (k *Kind) UnmarshalText(text []byte) error {
	parsed, err := ParseKind(string(text))
	if err != nil {
		return err
	}
	*k = parsed
	return nil
}
