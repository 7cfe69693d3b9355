// Package pipeline runs one company's scrape session: markup -> rows ->
// statement tables -> features -> metrics.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"statement_scraper/pkg/core/calc"
	"statement_scraper/pkg/core/extract"
	"statement_scraper/pkg/core/features"
	"statement_scraper/pkg/core/logger"
	"statement_scraper/pkg/core/render"
	"statement_scraper/pkg/core/schema"
	"statement_scraper/pkg/core/statement"
	"statement_scraper/pkg/core/store"
)

// Session scrapes the statements of one company. It is single-threaded:
// each stage consumes its whole input before the next one starts, and a
// Session must not be shared between goroutines.
type Session struct {
	RunID uuid.UUID

	source  render.PageSource
	locator extract.RowLocator
	schema  *schema.Schema
	store   *store.Statements
	log     logrus.FieldLogger

	features *features.Table
	metrics  *calc.MetricsTable
}

// Option customizes a Session.
type Option func(*Session)

// WithLocator replaces the default goquery scanner.
func WithLocator(l extract.RowLocator) Option {
	return func(s *Session) { s.locator = l }
}

// WithSchema selects the feature/metric schema.
func WithSchema(sc *schema.Schema) Option {
	return func(s *Session) { s.schema = sc }
}

// WithLogger sets the session logger.
func WithLogger(l logrus.FieldLogger) Option {
	return func(s *Session) { s.log = l }
}

// NewSession creates an empty session for company. source may be nil when
// pages are handed in with ExtractHTML.
func NewSession(company string, source render.PageSource, opts ...Option) (*Session, error) {
	if company == "" {
		return nil, fmt.Errorf("company code is required")
	}
	s := &Session{
		RunID:   uuid.New(),
		source:  source,
		locator: extract.NewScanner(extract.DefaultMarkers()),
		schema:  schema.V1,
		store:   store.NewStatements(company),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.log == nil {
		s.log = logger.Discard()
	}
	s.log = s.log.WithFields(logrus.Fields{"company": company, "run_id": s.RunID.String()})
	return s, nil
}

// Company returns the session's company identifier.
func (s *Session) Company() string { return s.store.Company() }

// Store exposes the session's statement tables.
func (s *Session) Store() *store.Statements { return s.store }

// Schema returns the schema the session derives features with.
func (s *Session) Schema() *schema.Schema { return s.schema }

// FetchStatement renders the page for kind and extracts its table.
func (s *Session) FetchStatement(ctx context.Context, kind statement.Kind) (*statement.Table, error) {
	if s.source == nil {
		return nil, fmt.Errorf("session for %s has no page source", s.Company())
	}
	html, err := s.source.FetchStatement(ctx, s.Company(), kind)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch %s: %w", kind, err)
	}
	return s.ExtractHTML(kind, html)
}

// ExtractHTML runs the extraction pipeline on a ready markup snapshot and
// stores the resulting table. All working state (rows, headers, labels,
// notes) lives in the call, so statements can be extracted in any order
// without resetting anything in between.
func (s *Session) ExtractHTML(kind statement.Kind, html string) (*statement.Table, error) {
	log := s.log.WithField("statement", kind.String())

	doc, err := extract.ParseDocument(html)
	if err != nil {
		return nil, statement.WithCompany(
			statement.StructureError("parse", kind, s.Company(), err.Error()), s.Company())
	}

	ext, err := s.locator.LocateRows(doc, kind)
	if err != nil {
		log.WithError(err).Error("statement layout not recognized")
		return nil, statement.WithCompany(err, s.Company())
	}
	log.WithFields(logrus.Fields{
		"rows":    len(ext.Rows),
		"periods": len(ext.Periods()),
		"labels":  len(ext.Labels),
	}).Debug("located rows")

	table, err := statement.Build(ext, s.Company())
	if err != nil {
		log.WithError(err).Error("failed to build statement table")
		return nil, err
	}

	if _, had := s.store.Table(kind); had {
		log.Debug("replacing previously extracted table")
	}
	if err := s.store.Set(table); err != nil {
		return nil, err
	}
	s.invalidate()

	log.WithFields(logrus.Fields{"periods": table.Len(), "columns": len(table.Columns)}).Info("extracted statement")
	return table, nil
}

// FetchAll extracts the three statements in turn. A failing statement is
// logged and reported in the joined error; the others are still attempted.
func (s *Session) FetchAll(ctx context.Context) error {
	var errs []error
	for _, kind := range statement.AllKinds {
		if err := ctx.Err(); err != nil {
			errs = append(errs, err)
			break
		}
		if _, err := s.FetchStatement(ctx, kind); err != nil {
			s.log.WithField("statement", kind.String()).WithError(err).Warn("statement skipped")
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Reset drops the stored table for kind and anything derived from it.
func (s *Session) Reset(kind statement.Kind) {
	s.store.Reset(kind)
	s.invalidate()
}

func (s *Session) invalidate() {
	s.features = nil
	s.metrics = nil
}

// Features projects the stored statements onto the schema's features.
func (s *Session) Features() (*features.Table, error) {
	if s.features != nil {
		return s.features, nil
	}
	ft, err := features.NewProjector(s.schema, s.log).Project(s.store)
	if err != nil {
		return nil, err
	}
	s.features = ft
	return ft, nil
}

// Metrics computes the schema's ratios from the features table.
func (s *Session) Metrics() (*calc.MetricsTable, error) {
	if s.metrics != nil {
		return s.metrics, nil
	}
	ft, err := s.Features()
	if err != nil {
		return nil, err
	}
	s.metrics = calc.NewComputer(s.schema, s.log).Compute(ft)
	return s.metrics, nil
}

// Snapshot collects what the session has produced so far. Features and
// metrics are included when they can be derived; otherwise the reason is
// logged and the snapshot carries the statements only.
func (s *Session) Snapshot() *store.Snapshot {
	snap := &store.Snapshot{
		RunID:      s.RunID,
		Company:    s.Company(),
		Schema:     s.schema.Version,
		CreatedAt:  time.Now().UTC(),
		Statements: s.store.Tables(),
	}
	m, err := s.Metrics()
	if err != nil {
		s.log.WithError(err).Warn("snapshot has no features or metrics")
		return snap
	}
	snap.Features = s.features
	snap.Metrics = m
	return snap
}

// Save persists the session snapshot.
func (s *Session) Save(ctx context.Context, repo store.Repository) error {
	snap := s.Snapshot()
	if err := repo.SaveSnapshot(ctx, snap); err != nil {
		return err
	}
	s.log.WithField("statements", len(snap.Statements)).Info("saved snapshot")
	return nil
}
