package form

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/karlseguin/ccache/v3"

	"github.com/trinestudio/trine-server/internal/errors"
)

// DraftStore persists in-progress sessions so they survive cache eviction
// and restarts. LoadDraft returns errors.ErrNotFound for unknown sessions.
type DraftStore interface {
	SaveDraft(ctx context.Context, snap Snapshot) error
	LoadDraft(ctx context.Context, sessionID string) (Snapshot, error)
	DeleteDraft(ctx context.Context, sessionID string) error
}

// ManagerConfig bounds the live session cache.
type ManagerConfig struct {
	TTL         time.Duration
	MaxSessions int
}

const (
	defaultSessionTTL  = 2 * time.Hour
	defaultMaxSessions = 10_000
	draftWriteTimeout  = 5 * time.Second
)

// Manager owns the live form sessions. Sessions idle longer than the TTL are
// dropped from memory; with a DraftStore they are restored on next access.
type Manager struct {
	cache     *ccache.Cache[*Engine]
	ttl       time.Duration
	transport Transport
	drafts    DraftStore
	logger    *slog.Logger

	// restoreMu serializes draft restores so one session maps to one engine.
	restoreMu sync.Mutex
}

// NewManager creates a session manager. drafts may be nil.
func NewManager(cfg ManagerConfig, transport Transport, drafts DraftStore, logger *slog.Logger) *Manager {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	if cfg.TTL <= 0 {
		cfg.TTL = defaultSessionTTL
	}
	if cfg.MaxSessions <= 0 {
		cfg.MaxSessions = defaultMaxSessions
	}

	cache := ccache.New(ccache.Configure[*Engine]().
		MaxSize(int64(cfg.MaxSessions)).
		GetsPerPromote(3).
		ItemsToPrune(uint32(max(1, cfg.MaxSessions/100))))

	return &Manager{
		cache:     cache,
		ttl:       cfg.TTL,
		transport: transport,
		drafts:    drafts,
		logger:    logger,
	}
}

// Create starts a new session at step 1.
func (m *Manager) Create(ctx context.Context) (*Engine, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	e := New(m.transport, m.engineOptions()...)
	m.cache.Set(e.ID(), e, m.ttl)
	m.saveDraft(e.Snapshot())

	m.logger.Info("form session started", "session_id", e.ID())
	return e, nil
}

// Get returns a live session, restoring it from drafts when it has left
// the cache.
func (m *Manager) Get(ctx context.Context, sessionID string) (*Engine, error) {
	if e := m.live(sessionID); e != nil {
		return e, nil
	}
	if m.drafts == nil {
		return nil, errors.NotFoundf("form session %q not found", sessionID)
	}

	m.restoreMu.Lock()
	defer m.restoreMu.Unlock()

	if e := m.live(sessionID); e != nil {
		return e, nil
	}

	snap, err := m.drafts.LoadDraft(ctx, sessionID)
	if err != nil {
		if errors.Is(err, errors.ErrNotFound) {
			return nil, errors.NotFoundf("form session %q not found", sessionID)
		}
		return nil, errors.Wrap(err, errors.CodeInternal, "load form draft")
	}

	e := Restore(snap, m.transport, m.engineOptions()...)
	m.cache.Set(sessionID, e, m.ttl)
	m.logger.Info("form session restored from draft", "session_id", sessionID, "state", snap.State)
	return e, nil
}

// Discard cancels any in-flight submit and forgets the session. Engines
// already handed out stop accepting changes.
func (m *Manager) Discard(ctx context.Context, sessionID string) error {
	found := false
	if item := m.cache.Get(sessionID); item != nil {
		item.Value().Discard()
		m.cache.Delete(sessionID)
		found = !item.Expired()
	}

	if m.drafts != nil {
		if _, err := m.drafts.LoadDraft(ctx, sessionID); err == nil {
			found = true
		}
		if err := m.drafts.DeleteDraft(ctx, sessionID); err != nil && !errors.Is(err, errors.ErrNotFound) {
			return errors.Wrap(err, errors.CodeInternal, "delete form draft")
		}
	}

	if !found {
		return errors.NotFoundf("form session %q not found", sessionID)
	}
	m.logger.Info("form session discarded", "session_id", sessionID)
	return nil
}

// Count returns the number of sessions held in memory.
func (m *Manager) Count() int {
	return m.cache.ItemCount()
}

// Close stops the cache's background worker.
func (m *Manager) Close() {
	m.cache.Stop()
}

func (m *Manager) live(sessionID string) *Engine {
	item := m.cache.Get(sessionID)
	if item == nil || item.Expired() {
		return nil
	}
	item.Extend(m.ttl)
	return item.Value()
}

func (m *Manager) engineOptions() []Option {
	opts := []Option{WithLogger(m.logger)}
	if m.drafts != nil {
		opts = append(opts, WithChangeHook(m.saveDraft))
	}
	return opts
}

func (m *Manager) saveDraft(snap Snapshot) {
	if m.drafts == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), draftWriteTimeout)
	defer cancel()
	if err := m.drafts.SaveDraft(ctx, snap); err != nil {
		m.logger.Warn("failed to save form draft", "session_id", snap.ID, "error", err)
	}
}
