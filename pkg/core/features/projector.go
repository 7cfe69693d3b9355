// Package features joins the three statement tables of one company into a
// single table of canonical features, one row per period.
package features

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/sirupsen/logrus"

	"statement_scraper/pkg/core/logger"
	"statement_scraper/pkg/core/schema"
	"statement_scraper/pkg/core/statement"
)

// ErrIncompleteFeatureSet means a statement needed by the schema has not
// been extracted.
var ErrIncompleteFeatureSet = errors.New("incomplete feature set")

// StatementSource provides the extracted statement tables of one company.
type StatementSource interface {
	Company() string
	Table(kind statement.Kind) (*statement.Table, bool)
}

// Row is one period of the features table. Values holds only the features
// that resolved; optional ones may be absent. Every value is a whole number
// except for fractional features.
type Row struct {
	Time    time.Time          `json:"time"`
	Company string             `json:"company"`
	Values  map[string]float64 `json:"values"`
}

// Get returns the feature value and whether it is present.
func (r Row) Get(name string) (float64, bool) {
	v, ok := r.Values[name]
	return v, ok
}

// Table is the joined features table.
type Table struct {
	Schema  string   `json:"schema"`
	Columns []string `json:"columns"`
	Rows    []Row    `json:"rows"`
	// Dropped counts the income statement periods excluded for missing
	// required values or for falling outside a shorter statement.
	Dropped int `json:"dropped"`
}

// Len returns the number of retained periods.
func (t *Table) Len() int {
	if t == nil {
		return 0
	}
	return len(t.Rows)
}

// Header implements the export row source.
func (t *Table) Header() []string {
	return append([]string(nil), t.Columns...)
}

// Records renders each row in Columns order; absent features are empty.
func (t *Table) Records() [][]string {
	out := make([][]string, 0, len(t.Rows))
	for _, r := range t.Rows {
		rec := make([]string, len(t.Columns))
		for i, c := range t.Columns {
			switch c {
			case schema.FeatureTime:
				rec[i] = r.Time.Format(statement.PeriodLayout)
			case schema.FeatureCompany:
				rec[i] = r.Company
			default:
				if v, ok := r.Values[c]; ok {
					rec[i] = strconv.FormatFloat(v, 'f', -1, 64)
				}
			}
		}
		out = append(out, rec)
	}
	return out
}

// maxWhole is 2^63: whole-number features must fit in an int64.
const maxWhole = float64(1 << 63)

// Projector selects schema features out of the statement tables.
type Projector struct {
	schema *schema.Schema
	log    logrus.FieldLogger
}

// NewProjector creates a projector for s. A nil logger discards output.
func NewProjector(s *schema.Schema, log logrus.FieldLogger) *Projector {
	if log == nil {
		log = logger.Discard()
	}
	return &Projector{schema: s, log: log}
}

// resolved is a feature bound to a concrete table column.
type resolved struct {
	feature schema.Feature
	table   *statement.Table
	column  string
	found   bool
}

// Project builds the features table. Periods come from the income
// statement and are aligned with the other statements by row position.
// A period is dropped when a required feature is missing there or when
// another statement has fewer periods. Dropping every period yields an
// empty table, not an error; only a statement that was never extracted is
// an error.
func (p *Projector) Project(src StatementSource) (*Table, error) {
	tables := make(map[statement.Kind]*statement.Table, len(statement.AllKinds))
	for _, kind := range statement.AllKinds {
		t, ok := src.Table(kind)
		if !ok || t == nil {
			return nil, fmt.Errorf("%w: %s not extracted for %s", ErrIncompleteFeatureSet, kind, src.Company())
		}
		tables[kind] = t
	}
	income := tables[statement.IncomeStatement]

	log := p.log.WithFields(logrus.Fields{"company": src.Company(), "schema": p.schema.Version})
	for kind, t := range tables {
		if t.Len() != income.Len() {
			log.WithFields(logrus.Fields{"statement": kind.String(), "periods": t.Len(), "income_periods": income.Len()}).
				Warn("statement period count differs from income statement")
		}
	}

	bound := p.bind(tables, log)

	out := &Table{Schema: p.schema.Version, Columns: p.schema.FeatureNames()}
	for i, ir := range income.Rows {
		row, ok := p.projectRow(i, ir, bound, log)
		if !ok {
			out.Dropped++
			continue
		}
		out.Rows = append(out.Rows, row)
	}

	log.WithFields(logrus.Fields{"rows": len(out.Rows), "dropped": out.Dropped}).Info("projected features")
	return out, nil
}

func (p *Projector) bind(tables map[statement.Kind]*statement.Table, log logrus.FieldLogger) []resolved {
	bound := make([]resolved, 0, len(p.schema.Features))
	for _, f := range p.schema.Features {
		t := tables[f.Source.Kind]
		r := resolved{feature: f, table: t}
		if f.Source.Positional() {
			// Only line-item positions count; Company and Time sit at 0 and 1.
			if col, ok := t.ColumnAt(f.Source.Position); ok && f.Source.Position >= 2 {
				r.column, r.found = col, true
			}
		} else if t.HasColumn(f.Source.Column) {
			r.column, r.found = f.Source.Column, true
		}
		if !r.found {
			entry := log.WithFields(logrus.Fields{"feature": f.Name, "source": f.Source.String()})
			if f.Optional {
				entry.Debug("optional feature has no source column")
			} else {
				entry.Warn("required feature has no source column; every period will be dropped")
			}
		}
		bound = append(bound, r)
	}
	return bound
}

func (p *Projector) projectRow(i int, ir statement.Row, bound []resolved, log logrus.FieldLogger) (Row, bool) {
	row := Row{Time: ir.Time, Company: ir.Company, Values: make(map[string]float64, len(bound))}
	for _, b := range bound {
		if i >= b.table.Len() {
			return Row{}, false
		}
		if !b.table.Rows[i].Time.Equal(ir.Time) {
			log.WithFields(logrus.Fields{"period": i, "statement": b.table.Kind.String()}).
				Debug("period dates differ across statements")
		}
		if !b.found {
			if b.feature.Optional {
				continue
			}
			return Row{}, false
		}
		v, _ := b.table.Value(i, b.column)
		f, ok := v.Float()
		if !ok {
			if b.feature.Optional {
				continue
			}
			return Row{}, false
		}
		if !b.feature.Fractional {
			if f >= maxWhole || f < -maxWhole {
				log.WithFields(logrus.Fields{"period": i, "feature": b.feature.Name, "value": f}).
					Warn("value out of integer range, dropping period")
				return Row{}, false
			}
			f = float64(int64(f))
		}
		row.Values[b.feature.Name] = f
	}
	return row, true
}
