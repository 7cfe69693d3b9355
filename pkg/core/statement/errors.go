package statement

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrStructureChanged means the expected row-group or label markers are
	// absent: the page layout no longer matches the extractor.
	ErrStructureChanged = errors.New("statement structure changed")

	// ErrUnparseableValue means a cell's text matched no normalization rule.
	ErrUnparseableValue = errors.New("unparseable value")

	// ErrMalformedTable means row and column counts disagree after the
	// working grid was built.
	ErrMalformedTable = errors.New("malformed statement table")
)

// Error carries the context a human needs to investigate a failed
// extraction. Err is always one of the sentinels above, optionally wrapped.
type Error struct {
	Op        string
	Kind      Kind
	Company   string
	Text      string // offending cell text, for ErrUnparseableValue
	Detail    string
	Err       error
	HasKind   bool
	hasCellID bool
	Row, Col  int
}

func (e *Error) Error() string {
	var b strings.Builder
	b.WriteString(e.Op)
	if e.HasKind {
		fmt.Fprintf(&b, " [%s]", e.Kind)
	}
	if e.Company != "" {
		fmt.Fprintf(&b, " company=%s", e.Company)
	}
	if e.hasCellID {
		fmt.Fprintf(&b, " cell=(%d,%d)", e.Row, e.Col)
	}
	if e.Text != "" || errors.Is(e.Err, ErrUnparseableValue) {
		fmt.Fprintf(&b, " text=%q", e.Text)
	}
	b.WriteString(": ")
	b.WriteString(e.Err.Error())
	if e.Detail != "" {
		b.WriteString(": ")
		b.WriteString(e.Detail)
	}
	return b.String()
}

func (e *Error) Unwrap() error { return e.Err }

// StructureError builds an ErrStructureChanged error for kind/company.
func StructureError(op string, kind Kind, company, detail string) *Error {
	return &Error{Op: op, Kind: kind, HasKind: true, Company: company, Detail: detail, Err: ErrStructureChanged}
}

func malformed(kind Kind, company, format string, args ...any) *Error {
	return &Error{
		Op:      "build",
		Kind:    kind,
		HasKind: true,
		Company: company,
		Detail:  fmt.Sprintf(format, args...),
		Err:     ErrMalformedTable,
	}
}

// withCell stamps the grid position on a normalization error.
func withCell(err error, kind Kind, company string, row, col int) error {
	var se *Error
	if errors.As(err, &se) {
		se.Kind, se.HasKind = kind, true
		se.Company = company
		se.Row, se.Col, se.hasCellID = row, col, true
		return se
	}
	return err
}

// WithCompany stamps company on err when it is a statement error that does
// not carry one yet. Extractors do not know which company a page belongs to;
// the session does.
func WithCompany(err error, company string) error {
	var se *Error
	if errors.As(err, &se) && se.Company == "" {
		se.Company = company
	}
	return err
}
