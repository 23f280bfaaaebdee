// Package di provides dependency injection configuration for the TRINE server.
package di

import (
	"github.com/samber/do/v2"

	"github.com/trinestudio/trine-server/internal/config"
	"github.com/trinestudio/trine-server/internal/di/providers"
	"github.com/trinestudio/trine-server/internal/logger"
)

// NewContainer creates and configures the DI container with all providers.
func NewContainer() *do.RootScope {
	injector := do.New()

	// Core infrastructure
	do.Provide(injector, providers.ProvideConfig)
	do.Provide(injector, providers.ProvideLogger)

	// Catalog and search
	do.Provide(injector, providers.ProvideCatalog)
	do.Provide(injector, providers.ProvideSearchIndex)

	// Submissions
	do.Provide(injector, providers.ProvideDraftStore)
	do.Provide(injector, providers.ProvideFormManager)

	// Workers
	do.Provide(injector, providers.ProvideDraftGCJob)
	do.Provide(injector, providers.ProvideSearchRefreshJob)

	// Server
	do.Provide(injector, providers.ProvideHTTPServer)

	return injector
}

// Bootstrap initializes all services and returns handles for lifecycle management.
// This triggers lazy initialization of all core services.
func Bootstrap(injector *do.RootScope) error {
	if _, err := do.Invoke[*config.Config](injector); err != nil {
		return err
	}
	_ = do.MustInvoke[*logger.Logger](injector)

	if _, err := do.Invoke[*providers.CatalogHandle](injector); err != nil {
		return err
	}
	_ = do.MustInvoke[*providers.SearchIndexHandle](injector)

	if _, err := do.Invoke[*providers.DraftStoreHandle](injector); err != nil {
		return err
	}
	_ = do.MustInvoke[*providers.FormManagerHandle](injector)

	// Workers
	_ = do.MustInvoke[*providers.DraftGCJob](injector)
	_ = do.MustInvoke[*providers.SearchRefreshJob](injector)

	// Server
	_ = do.MustInvoke[*providers.HTTPServerHandle](injector)

	return nil
}
