// Package render obtains the markup snapshot of a statement page. It sits
// outside the extraction pipeline, which only needs the resulting HTML.
package render

import (
	"context"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"statement_scraper/pkg/core/export"
	"statement_scraper/pkg/core/statement"
)

// DefaultBaseURL is the provider's site root.
const DefaultBaseURL = "https://finance.yahoo.com"

// PageSource returns the rendered markup of one statement page.
type PageSource interface {
	FetchStatement(ctx context.Context, company string, kind statement.Kind) (string, error)
}

// StatementURL builds <base>/quote/<company>/<page>?p=<company>.
func StatementURL(base, company string, kind statement.Kind) string {
	if base == "" {
		base = DefaultBaseURL
	}
	c := url.PathEscape(company)
	return fmt.Sprintf("%s/quote/%s/%s?p=%s", strings.TrimRight(base, "/"), c, kind.PagePath(), url.QueryEscape(company))
}

// DirSource serves previously saved pages from a directory, one file per
// company and statement: <dir>/<company>_<statement-slug>.html.
type DirSource struct {
	Dir string
}

// NewDirSource creates a directory-backed source.
func NewDirSource(dir string) *DirSource {
	return &DirSource{Dir: dir}
}

// Path returns the file a page is read from and saved to.
func (s *DirSource) Path(company string, kind statement.Kind) string {
	return filepath.Join(s.Dir, fmt.Sprintf("%s_%s.html", export.SafeName(company), kind.Slug()))
}

// FetchStatement reads the saved page.
func (s *DirSource) FetchStatement(ctx context.Context, company string, kind statement.Kind) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	data, err := os.ReadFile(s.Path(company, kind))
	if err != nil {
		return "", fmt.Errorf("failed to read %s page for %s: %w", kind, company, err)
	}
	return string(data), nil
}

// Save writes a page so later runs can replay it.
func (s *DirSource) Save(company string, kind statement.Kind, html string) error {
	if err := os.MkdirAll(s.Dir, 0o755); err != nil {
		return fmt.Errorf("failed to create page dir: %w", err)
	}
	if err := os.WriteFile(s.Path(company, kind), []byte(html), 0o644); err != nil {
		return fmt.Errorf("failed to save %s page for %s: %w", kind, company, err)
	}
	return nil
}

// Recording wraps a source and saves every page it returns into a
// DirSource, so a live run can be replayed offline.
type Recording struct {
	Source PageSource
	Into   *DirSource
}

// FetchStatement fetches from the wrapped source and saves the result.
func (r *Recording) FetchStatement(ctx context.Context, company string, kind statement.Kind) (string, error) {
	html, err := r.Source.FetchStatement(ctx, company, kind)
	if err != nil {
		return "", err
	}
	if err := r.Into.Save(company, kind, html); err != nil {
		return "", err
	}
	return html, nil
}
