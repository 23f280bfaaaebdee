// Package main seeds a catalog backend from a YAML fixture.
//
// The default target is the SQLite catalog; --target cms publishes the same
// artists and releases to the headless CMS instead.
//
// Usage:
//
//	go run ./cmd/seed                                  # embedded fixture into {data}/catalog.db
//	go run ./cmd/seed --fixture catalog.yaml --db ./catalog.db
//	CMS_TOKEN=... go run ./cmd/seed --target cms
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/trinestudio/trine-server/internal/catalog/fixture"
	"github.com/trinestudio/trine-server/internal/cms"
	"github.com/trinestudio/trine-server/internal/config"
	"github.com/trinestudio/trine-server/internal/store/sqlite"
)

const (
	targetSQLite = "sqlite"
	targetCMS    = "cms"
)

type options struct {
	target      string
	fixturePath string
	dbPath      string
	dryRun      bool
	cms         cms.Config
}

func main() {
	target := flag.String("target", targetSQLite, "Where to seed: sqlite or cms")
	fixturePath := flag.String("fixture", "", "YAML fixture (default: embedded catalog)")
	dbPath := flag.String("db", "", "SQLite catalog path (default: {data}/catalog.db)")
	dryRun := flag.Bool("dry-run", false, "Load and validate the fixture without writing")
	flag.Parse()

	// Environment and .env supply the data path and CMS settings.
	cfg, err := config.Load(nil)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	opts := options{
		target:      *target,
		fixturePath: *fixturePath,
		dbPath:      *dbPath,
		dryRun:      *dryRun,
		cms: cms.Config{
			ProjectID:  cfg.CMS.ProjectID,
			Dataset:    cfg.CMS.Dataset,
			APIVersion: cfg.CMS.APIVersion,
			Token:      cfg.CMS.Token,
			Timeout:    cfg.CMS.Timeout,
		},
	}
	if opts.fixturePath == "" {
		opts.fixturePath = cfg.Catalog.FixturePath
	}
	if opts.dbPath == "" {
		opts.dbPath = cfg.Catalog.DBPath
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	if err := run(ctx, opts, os.Stdout); err != nil {
		log.Fatalf("Seed failed: %v", err)
	}
}

func run(ctx context.Context, opts options, out io.Writer) error {
	source := opts.fixturePath
	if source == "" {
		source = "embedded catalog"
	}
	fmt.Fprintf(out, "Loading fixture: %s\n", source)

	repo, err := fixture.LoadFile(opts.fixturePath)
	if err != nil {
		return err
	}
	doc := repo.Snapshot()
	fmt.Fprintf(out, "Found %d artists and %d releases\n", len(doc.Artists), len(doc.Releases))

	switch opts.target {
	case targetSQLite:
		return seedSQLite(ctx, opts, doc, out)
	case targetCMS:
		return seedCMS(ctx, opts, doc, out)
	default:
		return fmt.Errorf("unknown target %q (must be sqlite or cms)", opts.target)
	}
}

func seedSQLite(ctx context.Context, opts options, doc fixture.Document, out io.Writer) error {
	if opts.dryRun {
		fmt.Fprintf(out, "Dry run: would import into %s\n", opts.dbPath)
		return nil
	}

	fmt.Fprintf(out, "Opening database at: %s\n", opts.dbPath)
	if err := os.MkdirAll(filepath.Dir(opts.dbPath), 0o755); err != nil {
		return fmt.Errorf("create database directory: %w", err)
	}

	db, err := sqlite.Open(opts.dbPath, slog.New(slog.DiscardHandler))
	if err != nil {
		return err
	}
	defer db.Close()

	if err := db.Import(ctx, doc.Artists, doc.Releases); err != nil {
		return err
	}

	artists, releases, tracks, err := db.Counts(ctx)
	if err != nil {
		return fmt.Errorf("count catalog: %w", err)
	}
	fmt.Fprintf(out, "Imported %d artists, %d releases, %d tracks\n", artists, releases, tracks)
	return nil
}

func seedCMS(ctx context.Context, opts options, doc fixture.Document, out io.Writer) error {
	docs := make([]map[string]any, 0, len(doc.Artists)+len(doc.Releases))
	for _, a := range doc.Artists {
		docs = append(docs, cms.ArtistDocument(a))
	}
	for _, r := range doc.Releases {
		docs = append(docs, cms.ReleaseDocument(r))
	}

	if opts.dryRun {
		fmt.Fprintf(out, "Dry run: would publish %d documents to %s/%s\n", len(docs), opts.cms.ProjectID, opts.cms.Dataset)
		return nil
	}

	client, err := cms.NewClient(opts.cms, slog.New(slog.DiscardHandler))
	if err != nil {
		return err
	}

	resp, err := client.Publish(ctx, docs...)
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "Published %d documents (transaction %s)\n", len(resp.Results), resp.TransactionID)
	return nil
}
