// Package calc derives the financial ratios of a features table.
package calc

import (
	"encoding/json"
	"math"
	"strconv"
	"time"

	"github.com/sirupsen/logrus"

	"statement_scraper/pkg/core/features"
	"statement_scraper/pkg/core/logger"
	"statement_scraper/pkg/core/schema"
	"statement_scraper/pkg/core/statement"
)

// MetricsRow is one period of computed ratios. Undefined ratios are NaN.
type MetricsRow struct {
	Time    time.Time
	Company string
	Values  map[string]float64
}

// Get returns the ratio and whether it is defined.
func (r MetricsRow) Get(name string) (float64, bool) {
	v, ok := r.Values[name]
	if !ok || math.IsNaN(v) {
		return math.NaN(), false
	}
	return v, true
}

type metricsRowJSON struct {
	Time    time.Time           `json:"time"`
	Company string              `json:"company"`
	Values  map[string]*float64 `json:"values"`
}

// MarshalJSON writes undefined ratios as null.
func (r MetricsRow) MarshalJSON() ([]byte, error) {
	out := metricsRowJSON{Time: r.Time, Company: r.Company, Values: make(map[string]*float64, len(r.Values))}
	for k, v := range r.Values {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			out.Values[k] = nil
			continue
		}
		v := v
		out.Values[k] = &v
	}
	return json.Marshal(out)
}

func (r *MetricsRow) UnmarshalJSON(data []byte) error {
	var in metricsRowJSON
	if err := json.Unmarshal(data, &in); err != nil {
		return err
	}
	r.Time, r.Company = in.Time, in.Company
	r.Values = make(map[string]float64, len(in.Values))
	for k, v := range in.Values {
		if v == nil {
			r.Values[k] = math.NaN()
			continue
		}
		r.Values[k] = *v
	}
	return nil
}

// MetricsTable holds the ratios for every period of a features table.
type MetricsTable struct {
	Schema  string       `json:"schema"`
	Columns []string     `json:"columns"`
	Rows    []MetricsRow `json:"rows"`
}

// Len returns the number of periods.
func (t *MetricsTable) Len() int {
	if t == nil {
		return 0
	}
	return len(t.Rows)
}

// Header implements the export row source.
func (t *MetricsTable) Header() []string {
	return append([]string(nil), t.Columns...)
}

// Records renders each row; undefined ratios are empty.
func (t *MetricsTable) Records() [][]string {
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
				if v, ok := r.Get(c); ok {
					rec[i] = strconv.FormatFloat(v, 'f', -1, 64)
				}
			}
		}
		out = append(out, rec)
	}
	return out
}

// Computer evaluates the schema's metrics.
type Computer struct {
	schema *schema.Schema
	log    logrus.FieldLogger
}

// NewComputer creates a metric computer for s. A nil logger discards output.
func NewComputer(s *schema.Schema, log logrus.FieldLogger) *Computer {
	if log == nil {
		log = logger.Discard()
	}
	return &Computer{schema: s, log: log}
}

// Compute derives every metric for every row of ft. An undefined ratio is
// contained to its own cell; the computation never fails.
func (c *Computer) Compute(ft *features.Table) *MetricsTable {
	out := &MetricsTable{Schema: c.schema.Version, Columns: c.schema.MetricNames()}
	if ft == nil {
		return out
	}

	undefined := 0
	for _, fr := range ft.Rows {
		row := MetricsRow{Time: fr.Time, Company: fr.Company, Values: make(map[string]float64, len(c.schema.Metrics))}
		for _, m := range c.schema.Metrics {
			v := Ratio(Eval(m.Numerator, fr), Eval(m.Denominator, fr))
			if math.IsNaN(v) {
				undefined++
			}
			row.Values[m.Name] = v
		}
		out.Rows = append(out.Rows, row)
	}

	c.log.WithFields(logrus.Fields{
		"schema":    c.schema.Version,
		"rows":      len(out.Rows),
		"undefined": undefined,
	}).Info("computed metrics")
	return out
}
