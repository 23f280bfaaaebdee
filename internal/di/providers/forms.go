package providers

import (
	"path/filepath"

	"github.com/samber/do/v2"

	"github.com/trinestudio/trine-server/internal/config"
	"github.com/trinestudio/trine-server/internal/form"
	"github.com/trinestudio/trine-server/internal/logger"
	"github.com/trinestudio/trine-server/internal/store"
)

// DraftStoreHandle wraps the draft store with shutdown capability.
// Store is nil when drafts are disabled.
type DraftStoreHandle struct {
	*store.Store
}

// Shutdown implements do.Shutdownable.
func (h *DraftStoreHandle) Shutdown() error {
	if h.Store == nil {
		return nil
	}
	return h.Close()
}

// ProvideDraftStore opens the Badger draft database under the data path.
func ProvideDraftStore(i do.Injector) (*DraftStoreHandle, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)

	if !cfg.Submission.Drafts {
		log.Info("Submission drafts disabled")
		return &DraftStoreHandle{}, nil
	}

	path := filepath.Join(cfg.Data.BasePath, "drafts")
	db, err := store.Open(store.Options{
		Path:     path,
		DraftTTL: draftRetention,
	}, log.Component("drafts").Logger)
	if err != nil {
		return nil, err
	}

	return &DraftStoreHandle{Store: db}, nil
}

// FormManagerHandle wraps the submission session manager.
type FormManagerHandle struct {
	*form.Manager
}

// Shutdown implements do.Shutdownable.
func (h *FormManagerHandle) Shutdown() error {
	h.Close()
	return nil
}

// ProvideFormManager provides the submission session manager and its transport.
func ProvideFormManager(i do.Injector) (*FormManagerHandle, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)
	drafts := do.MustInvoke[*DraftStoreHandle](i)
	formLog := log.Component("forms")

	transport := form.NewTransport(form.TransportConfig{
		Endpoint: cfg.Submission.Endpoint,
		FormName: cfg.Submission.FormName,
		Timeout:  cfg.Submission.Timeout,
	}, formLog.Logger)

	// A nil *store.Store must not become a non-nil interface.
	var draftStore form.DraftStore
	if drafts.Store != nil {
		draftStore = drafts.Store
	}

	manager := form.NewManager(form.ManagerConfig{
		TTL:         cfg.Submission.SessionTTL,
		MaxSessions: cfg.Submission.MaxSessions,
	}, transport, draftStore, formLog.Logger)

	if cfg.Submission.Endpoint == "" {
		log.Warn("No submission endpoint configured; submissions are only logged")
	} else {
		log.Info("Submission transport ready", "endpoint", cfg.Submission.Endpoint, "form_name", cfg.Submission.FormName)
	}

	return &FormManagerHandle{Manager: manager}, nil
}
