package main

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/samber/do/v2"

	"github.com/trinestudio/trine-server/internal/catalog"
	"github.com/trinestudio/trine-server/internal/config"
	"github.com/trinestudio/trine-server/internal/di/providers"
	"github.com/trinestudio/trine-server/internal/logger"
	"github.com/trinestudio/trine-server/internal/search"
	"github.com/trinestudio/trine-server/internal/store"
)

// commandContext lazily loads configuration and opens the pieces a command
// asks for. The catalog and search index come from the same providers the
// server uses.
type commandContext struct {
	backend     string
	fixturePath string
	dbPath      string
	dataPath    string
	envFile     string
	jsonOutput  bool

	configOnce sync.Once
	config     *config.Config
	configErr  error

	injector *do.RootScope
	drafts   *store.Store
}

func newCommandContext() *commandContext {
	return &commandContext{}
}

func (c *commandContext) ensureConfig() (*config.Config, error) {
	c.configOnce.Do(func() {
		args := []string{"--env-file", c.envFile}
		for flag, value := range map[string]string{
			"--catalog-backend": c.backend,
			"--catalog-fixture": c.fixturePath,
			"--catalog-db":      c.dbPath,
			"--data-path":       c.dataPath,
		} {
			if strings.TrimSpace(value) != "" {
				args = append(args, flag, value)
			}
		}
		c.config, c.configErr = config.Load(args)
	})
	return c.config, c.configErr
}

func (c *commandContext) ensureInjector() (*do.RootScope, error) {
	if c.injector != nil {
		return c.injector, nil
	}
	cfg, err := c.ensureConfig()
	if err != nil {
		return nil, err
	}

	injector := do.New()
	do.ProvideValue(injector, cfg)
	do.ProvideValue(injector, logger.New(logger.Config{
		Writer:      os.Stderr,
		Level:       slog.LevelWarn,
		Environment: cfg.App.Environment,
	}))
	do.Provide(injector, providers.ProvideCatalog)
	do.Provide(injector, providers.ProvideSearchIndex)

	c.injector = injector
	return injector, nil
}

func (c *commandContext) catalog() (*catalog.Service, error) {
	injector, err := c.ensureInjector()
	if err != nil {
		return nil, err
	}
	handle, err := do.Invoke[*providers.CatalogHandle](injector)
	if err != nil {
		return nil, fmt.Errorf("open catalog: %w", err)
	}
	return handle.Service, nil
}

func (c *commandContext) searchIndex() (*search.SearchIndex, error) {
	injector, err := c.ensureInjector()
	if err != nil {
		return nil, err
	}
	handle, err := do.Invoke[*providers.SearchIndexHandle](injector)
	if err != nil {
		return nil, fmt.Errorf("build search index: %w", err)
	}
	return handle.SearchIndex, nil
}

func (c *commandContext) draftStore() (*store.Store, error) {
	if c.drafts != nil {
		return c.drafts, nil
	}
	cfg, err := c.ensureConfig()
	if err != nil {
		return nil, err
	}
	path := filepath.Join(cfg.Data.BasePath, "drafts")
	if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("no draft store at %s", path)
	}
	s, err := store.Open(store.Options{Path: path}, slog.New(slog.DiscardHandler))
	if err != nil {
		return nil, err
	}
	c.drafts = s
	return s, nil
}

func (c *commandContext) close() error {
	var errs []error
	if c.injector != nil {
		if report := c.injector.Shutdown(); report != nil && !report.Succeed {
			errs = append(errs, report)
		}
		c.injector = nil
	}
	if c.drafts != nil {
		errs = append(errs, c.drafts.Close())
		c.drafts = nil
	}
	return errors.Join(errs...)
}
