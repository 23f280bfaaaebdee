// Package store persists in-progress submission drafts in Badger so a form
// session survives cache eviction and server restarts.
package store

import (
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/dgraph-io/badger/v4"
)

// Store wraps a Badger database instance.
type Store struct {
	db     *badger.DB
	logger *slog.Logger

	// Generic entities
	Drafts *Entity[Draft]
}

// Options configures Open.
type Options struct {
	// Path is the database directory. Ignored when InMemory is set.
	Path     string
	InMemory bool
	// DraftTTL expires drafts that have not been touched for this long.
	// Zero keeps them forever.
	DraftTTL time.Duration
}

// Open opens (or creates) the draft database.
func Open(opts Options, logger *slog.Logger) (*Store, error) {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	bopts := badger.DefaultOptions(opts.Path)
	if opts.InMemory {
		bopts = badger.DefaultOptions("").WithInMemory(true)
	}
	bopts.Logger = nil            // Disable Badger's internal logging
	bopts.SyncWrites = true       // Drafts are small; durability beats throughput
	bopts.CompactL0OnClose = true // Compact L0 tables on close for faster startup

	db, err := badger.Open(bopts)
	if err != nil {
		return nil, fmt.Errorf("failed to open badger db: %w", err)
	}

	s := &Store{
		db:     db,
		logger: logger,
	}
	s.Drafts = NewEntity[Draft](s, "draft:").WithTTL(opts.DraftTTL)

	logger.Info("Draft database opened", "path", opts.Path, "in_memory", opts.InMemory)
	return s, nil
}

// Close gracefully closes the database connection.
func (s *Store) Close() error {
	s.logger.Info("Closing draft database")
	return s.db.Close()
}

// RunGC reclaims space from expired and deleted drafts. Nothing to collect
// and in-memory databases are not errors.
func (s *Store) RunGC() error {
	err := s.db.RunValueLogGC(0.5)
	if err == nil || errors.Is(err, badger.ErrNoRewrite) || errors.Is(err, badger.ErrGCInMemoryMode) {
		return nil
	}
	return err
}
