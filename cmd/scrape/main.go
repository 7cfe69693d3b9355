package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"statement_scraper/pkg/core/calc"
	"statement_scraper/pkg/core/config"
	"statement_scraper/pkg/core/export"
	"statement_scraper/pkg/core/extract"
	"statement_scraper/pkg/core/features"
	"statement_scraper/pkg/core/logger"
	"statement_scraper/pkg/core/pipeline"
	"statement_scraper/pkg/core/render"
	"statement_scraper/pkg/core/schema"
	"statement_scraper/pkg/core/statement"
	"statement_scraper/pkg/core/store"
)

func main() {
	company := flag.String("company", "", "company code, e.g. AAPL")
	configPath := flag.String("config", "", "optional YAML config file")
	which := flag.String("statement", "all", "all|income|balance|cashflow")
	outDir := flag.String("out", "", "output directory (overrides config)")
	save := flag.Bool("save", false, "persist the snapshot to DATABASE_URL")
	load := flag.Bool("load", false, "re-export the latest snapshot stored in DATABASE_URL instead of scraping")
	flag.Parse()

	if *company == "" {
		fmt.Fprintln(os.Stderr, "Error: -company is required")
		flag.Usage()
		os.Exit(2)
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	if *outDir != "" {
		cfg.OutputDir = *outDir
	}

	log, err := logger.New(cfg.Log.Level, cfg.Log.File)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if *load {
		err = reexport(ctx, cfg, log, *company)
	} else {
		err = run(ctx, cfg, log, *company, *which, *save)
	}
	if err != nil {
		log.WithError(err).Error("scrape failed")
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg config.Config, log *logrus.Logger, company, which string, save bool) error {
	sc, err := schema.Lookup(cfg.Schema)
	if err != nil {
		return err
	}

	session, err := pipeline.NewSession(company, pageSource(cfg, log),
		pipeline.WithLocator(extract.NewScanner(cfg.Markers)),
		pipeline.WithSchema(sc),
		pipeline.WithLogger(log),
	)
	if err != nil {
		return err
	}
	log.WithFields(logrus.Fields{"company": company, "source": cfg.Source, "schema": sc.Version}).Info("starting scrape")

	// 1. Statements
	if strings.EqualFold(which, "all") {
		if err := session.FetchAll(ctx); err != nil {
			log.WithError(err).Warn("some statements failed")
		}
	} else {
		kind, err := statement.ParseKind(which)
		if err != nil {
			return err
		}
		if _, err := session.FetchStatement(ctx, kind); err != nil {
			return err
		}
	}

	var tables []*statement.Table
	for _, kind := range statement.AllKinds {
		if t, ok := session.Store().Table(kind); ok {
			tables = append(tables, t)
		}
	}

	// 2. Features and metrics
	var ft *features.Table
	var mt *calc.MetricsTable
	if session.Store().Complete() {
		if ft, err = session.Features(); err != nil {
			return err
		}
		if mt, err = session.Metrics(); err != nil {
			return err
		}
		log.WithFields(logrus.Fields{"periods": ft.Len(), "dropped": ft.Dropped}).Info("computed metrics")
	} else {
		log.Warn("statements incomplete, skipping features and metrics")
	}

	// 3. Files
	if err := writeOutputs(cfg.OutputDir, company, tables, ft, mt, log); err != nil {
		return err
	}

	// 4. Persist
	if save {
		if err := saveSnapshot(ctx, cfg, session); err != nil {
			return err
		}
	}
	return nil
}

// reexport writes the files of the latest stored run for company.
func reexport(ctx context.Context, cfg config.Config, log *logrus.Logger, company string) error {
	repo, err := openRepo(ctx, cfg)
	if err != nil {
		return err
	}
	defer store.Close()

	snap, err := repo.LoadSnapshot(ctx, company)
	if err != nil {
		return err
	}
	log.WithFields(logrus.Fields{
		"company": company,
		"run_id":  snap.RunID.String(),
		"schema":  snap.Schema,
		"created": snap.CreatedAt.Format(time.RFC3339),
	}).Info("loaded snapshot")

	var tables []*statement.Table
	for _, kind := range statement.AllKinds {
		if t, ok := snap.Statement(kind); ok {
			tables = append(tables, t)
		}
	}
	return writeOutputs(cfg.OutputDir, company, tables, snap.Features, snap.Metrics, log)
}

// writeOutputs writes one CSV per table and the HTML report. ft and mt may
// be nil.
func writeOutputs(dir, company string, tables []*statement.Table, ft *features.Table, mt *calc.MetricsTable, log logrus.FieldLogger) error {
	if len(tables) == 0 {
		return fmt.Errorf("no statement could be extracted for %s", company)
	}

	var sections []export.Section
	for _, t := range tables {
		path, err := export.WriteCSVFile(dir, company, t.Kind.Slug(), t)
		if err != nil {
			return err
		}
		log.WithField("path", path).Info("wrote statement")
		sections = append(sections, export.Section{Title: t.Kind.String(), Notes: t.Notes, Table: t})
	}
	if ft != nil {
		if _, err := export.WriteCSVFile(dir, company, "features", ft); err != nil {
			return err
		}
		sections = append(sections, export.Section{Title: "Features", Table: ft})
	}
	if mt != nil {
		if _, err := export.WriteCSVFile(dir, company, "metrics", mt); err != nil {
			return err
		}
		sections = append(sections, export.Section{Title: "Metrics", Table: mt})
	}

	html, err := export.RenderHTML(export.Report(company+" financial statements", sections))
	if err != nil {
		return err
	}
	reportPath := filepath.Join(dir, export.SafeName(company)+"_report.html")
	if err := os.WriteFile(reportPath, html, 0o644); err != nil {
		return fmt.Errorf("failed to write report: %w", err)
	}
	log.WithField("path", reportPath).Info("wrote report")
	return nil
}

func pageSource(cfg config.Config, log logrus.FieldLogger) render.PageSource {
	var src render.PageSource
	switch cfg.Source {
	case config.SourceFile:
		src = render.NewDirSource(cfg.FixturesDir)
	default:
		src = render.NewChromeSource(cfg.ChromeConfig(), log)
	}
	if cfg.RecordDir != "" {
		src = &render.Recording{Source: src, Into: render.NewDirSource(cfg.RecordDir)}
	}
	return src
}

func openRepo(ctx context.Context, cfg config.Config) (*store.SnapshotRepo, error) {
	if cfg.DatabaseURL == "" {
		return nil, fmt.Errorf("database access needs DATABASE_URL")
	}
	if err := store.InitDB(ctx, cfg.DatabaseURL); err != nil {
		return nil, err
	}
	repo := store.NewSnapshotRepo(nil)
	if err := repo.EnsureSchema(ctx); err != nil {
		store.Close()
		return nil, err
	}
	return repo, nil
}

func saveSnapshot(ctx context.Context, cfg config.Config, session *pipeline.Session) error {
	repo, err := openRepo(ctx, cfg)
	if err != nil {
		return err
	}
	defer store.Close()
	return session.Save(ctx, repo)
}
