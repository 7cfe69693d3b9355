// Package store holds the statement tables of one company session and
// persists finished sessions to PostgreSQL.
package store

import (
	"fmt"

	"statement_scraper/pkg/core/statement"
)

// Statements is the per-session StatementStore: one company and up to one
// table per statement kind. It is not safe for concurrent use; a session is
// single-threaded.
type Statements struct {
	company string
	tables  map[statement.Kind]*statement.Table
}

// NewStatements creates an empty store for company.
func NewStatements(company string) *Statements {
	return &Statements{
		company: company,
		tables:  make(map[statement.Kind]*statement.Table, len(statement.AllKinds)),
	}
}

// Company returns the company identifier the store belongs to.
func (s *Statements) Company() string { return s.company }

// Set stores t, replacing any earlier table of the same kind.
func (s *Statements) Set(t *statement.Table) error {
	if t == nil {
		return fmt.Errorf("nil statement table")
	}
	if !t.Kind.Valid() {
		return fmt.Errorf("invalid statement kind %d", int(t.Kind))
	}
	if t.Company != s.company {
		return fmt.Errorf("table for company %q stored in session for %q", t.Company, s.company)
	}
	s.tables[t.Kind] = t
	return nil
}

// Table returns the stored table for kind.
func (s *Statements) Table(kind statement.Kind) (*statement.Table, bool) {
	t, ok := s.tables[kind]
	return t, ok
}

// Reset forgets the table for kind.
func (s *Statements) Reset(kind statement.Kind) {
	delete(s.tables, kind)
}

// ResetAll forgets every table.
func (s *Statements) ResetAll() {
	for k := range s.tables {
		delete(s.tables, k)
	}
}

// Complete reports whether all three statements are present.
func (s *Statements) Complete() bool {
	for _, k := range statement.AllKinds {
		if _, ok := s.tables[k]; !ok {
			return false
		}
	}
	return true
}

// Tables returns the stored tables in extraction order.
func (s *Statements) Tables() []*statement.Table {
	out := make([]*statement.Table, 0, len(s.tables))
	for _, k := range statement.AllKinds {
		if t, ok := s.tables[k]; ok {
			out = append(out, t)
		}
	}
	return out
}
