package providers

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/samber/do/v2"

	"github.com/trinestudio/trine-server/internal/api"
	"github.com/trinestudio/trine-server/internal/catalog"
	"github.com/trinestudio/trine-server/internal/catalog/fixture"
	"github.com/trinestudio/trine-server/internal/cms"
	"github.com/trinestudio/trine-server/internal/config"
	"github.com/trinestudio/trine-server/internal/logger"
	"github.com/trinestudio/trine-server/internal/store/sqlite"
)

// CatalogHandle wraps the catalog service and the backend behind it.
type CatalogHandle struct {
	*catalog.Service
	Backend string
	// Features is set when the backend has homepage features.
	Features api.FeatureSource
	// CMS is the content repository when Backend is cms.
	CMS   *cms.Repository
	close func() error
}

// Shutdown implements do.Shutdownable.
func (h *CatalogHandle) Shutdown() error {
	if h.close == nil {
		return nil
	}
	return h.close()
}

// ProvideCatalog opens the configured catalog backend.
func ProvideCatalog(i do.Injector) (*CatalogHandle, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)
	catalogLog := log.Component("catalog")

	handle := &CatalogHandle{Backend: cfg.Catalog.Backend}

	var repo catalog.Repository
	switch cfg.Catalog.Backend {
	case config.CatalogBackendSQLite:
		if err := os.MkdirAll(filepath.Dir(cfg.Catalog.DBPath), 0o755); err != nil {
			return nil, fmt.Errorf("create catalog directory: %w", err)
		}
		db, err := sqlite.Open(cfg.Catalog.DBPath, catalogLog.Logger)
		if err != nil {
			return nil, err
		}
		repo = db
		handle.close = db.Close

	case config.CatalogBackendCMS:
		client, err := cms.NewClient(cms.Config{
			ProjectID:  cfg.CMS.ProjectID,
			Dataset:    cfg.CMS.Dataset,
			APIVersion: cfg.CMS.APIVersion,
			UseCDN:     cfg.CMS.UseCDN,
			Token:      cfg.CMS.Token,
			Timeout:    cfg.CMS.Timeout,
		}, catalogLog.Logger)
		if err != nil {
			return nil, err
		}
		cmsRepo := cms.NewRepository(client, 0, catalogLog.Logger)
		repo = cmsRepo
		handle.CMS = cmsRepo
		handle.Features = cmsRepo
		handle.close = func() error {
			cmsRepo.Close()
			return nil
		}

	default:
		fx, err := fixture.LoadFile(cfg.Catalog.FixturePath)
		if err != nil {
			return nil, err
		}
		repo = fx
	}

	handle.Service = catalog.NewService(repo, catalogLog.Logger)

	log.Info("Catalog ready",
		"backend", cfg.Catalog.Backend,
		"fixture", cfg.Catalog.FixturePath,
	)

	return handle, nil
}
