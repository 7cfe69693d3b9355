// Package export writes tables as flat files and renders human-readable
// reports.
package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// Tabular is any table with named columns and ordered rows.
type Tabular interface {
	Header() []string
	Records() [][]string
}

// WriteCSV writes the header line and every record of t.
func WriteCSV(w io.Writer, t Tabular) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(t.Header()); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}
	if err := cw.WriteAll(t.Records()); err != nil {
		return fmt.Errorf("failed to write records: %w", err)
	}
	return nil
}

var unsafeName = strings.NewReplacer("/", "_", "\\", "_", " ", "_")

// SafeName replaces path separators and spaces in a company code so it can
// be used inside a file name.
func SafeName(company string) string {
	return unsafeName.Replace(company)
}

// FileName is <company>_<table>.csv with path separators removed.
func FileName(company, table string) string {
	return fmt.Sprintf("%s_%s.csv", SafeName(company), table)
}

// WriteCSVFile writes t into dir under FileName and returns the path.
func WriteCSVFile(dir, company, table string, t Tabular) (string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create output dir: %w", err)
	}
	path := filepath.Join(dir, FileName(company, table))
	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("failed to create %s: %w", path, err)
	}
	if err := WriteCSV(f, t); err != nil {
		f.Close()
		return "", err
	}
	if err := f.Close(); err != nil {
		return "", fmt.Errorf("failed to close %s: %w", path, err)
	}
	return path, nil
}
