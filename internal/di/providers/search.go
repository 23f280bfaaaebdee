package providers

import (
	"context"
	"fmt"

	"github.com/samber/do/v2"

	"github.com/trinestudio/trine-server/internal/catalog"
	"github.com/trinestudio/trine-server/internal/logger"
	"github.com/trinestudio/trine-server/internal/search"
)

// SearchIndexHandle wraps the search index with shutdown capability.
type SearchIndexHandle struct {
	*search.SearchIndex
}

// Shutdown implements do.Shutdownable.
func (h *SearchIndexHandle) Shutdown() error {
	return h.Close()
}

// ProvideSearchIndex builds an in-memory Bleve index over the catalog.
// The catalog is small and its source of truth lives elsewhere, so the
// index is rebuilt on every start instead of persisted.
func ProvideSearchIndex(i do.Injector) (*SearchIndexHandle, error) {
	log := do.MustInvoke[*logger.Logger](i)
	catalogHandle := do.MustInvoke[*CatalogHandle](i)

	index, err := search.NewSearchIndex(search.Options{
		Logger: log.Component("search").Logger,
	})
	if err != nil {
		return nil, err
	}

	if err := ReindexCatalog(context.Background(), catalogHandle.Service, index); err != nil {
		// The API still serves the catalog; search comes back on the next refresh.
		log.Warn("Initial search index build failed", "error", err)
	}

	docCount, _ := index.DocumentCount()
	log.Info("Search index initialized", "documents", docCount)

	return &SearchIndexHandle{SearchIndex: index}, nil
}

// ReindexCatalog replaces the index contents with the current catalog.
func ReindexCatalog(ctx context.Context, svc *catalog.Service, index *search.SearchIndex) error {
	artists, err := svc.ListArtists(ctx, catalog.ArtistFilter{})
	if err != nil {
		return fmt.Errorf("list artists: %w", err)
	}
	releases, err := svc.ListReleases(ctx, catalog.ReleaseFilter{})
	if err != nil {
		return fmt.Errorf("list releases: %w", err)
	}
	return index.Reindex(artists, releases)
}
