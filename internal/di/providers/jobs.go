package providers

import (
	"context"
	"time"

	"github.com/samber/do/v2"

	"github.com/trinestudio/trine-server/internal/config"
	"github.com/trinestudio/trine-server/internal/logger"
)

const (
	draftGCInterval       = time.Hour
	searchRefreshInterval = 10 * time.Minute
)

// DraftGCJob reclaims space from expired submission drafts.
type DraftGCJob struct {
	cancel context.CancelFunc
}

// Shutdown implements do.Shutdownable.
func (j *DraftGCJob) Shutdown() error {
	j.cancel()
	return nil
}

// ProvideDraftGCJob provides the periodic draft garbage collection job.
func ProvideDraftGCJob(i do.Injector) (*DraftGCJob, error) {
	drafts := do.MustInvoke[*DraftStoreHandle](i)
	log := do.MustInvoke[*logger.Logger](i)

	ctx, cancel := context.WithCancel(context.Background())
	if drafts.Store == nil {
		return &DraftGCJob{cancel: cancel}, nil
	}

	go func() {
		ticker := time.NewTicker(draftGCInterval)
		defer ticker.Stop()

		for {
			select {
			case <-ticker.C:
				if err := drafts.RunGC(); err != nil {
					log.Warn("Draft garbage collection failed", "error", err)
				}
			case <-ctx.Done():
				return
			}
		}
	}()

	log.Info("Draft GC job started", "interval", draftGCInterval)

	return &DraftGCJob{cancel: cancel}, nil
}

// SearchRefreshJob rebuilds the search index from the CMS. Content edited
// in the studio reaches search within one interval.
type SearchRefreshJob struct {
	cancel context.CancelFunc
}

// Shutdown implements do.Shutdownable.
func (j *SearchRefreshJob) Shutdown() error {
	j.cancel()
	return nil
}

// ProvideSearchRefreshJob provides the periodic search refresh. Only the
// CMS backend changes while the server runs.
func ProvideSearchRefreshJob(i do.Injector) (*SearchRefreshJob, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)
	catalogHandle := do.MustInvoke[*CatalogHandle](i)
	indexHandle := do.MustInvoke[*SearchIndexHandle](i)

	ctx, cancel := context.WithCancel(context.Background())
	if cfg.Catalog.Backend != config.CatalogBackendCMS {
		return &SearchRefreshJob{cancel: cancel}, nil
	}

	go func() {
		ticker := time.NewTicker(searchRefreshInterval)
		defer ticker.Stop()

		for {
			select {
			case <-ticker.C:
				catalogHandle.CMS.Invalidate()
				if err := ReindexCatalog(ctx, catalogHandle.Service, indexHandle.SearchIndex); err != nil {
					log.Warn("Search refresh failed", "error", err)
					continue
				}
				count, _ := indexHandle.DocumentCount()
				log.Debug("Search index refreshed", "documents", count)
			case <-ctx.Done():
				return
			}
		}
	}()

	log.Info("Search refresh job started", "interval", searchRefreshInterval)

	return &SearchRefreshJob{cancel: cancel}, nil
}
