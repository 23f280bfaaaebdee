package store

import (
	"context"
	"time"

	"github.com/trinestudio/trine-server/internal/form"
)

// Draft is a persisted form session.
type Draft struct {
	Session form.Snapshot `json:"session"`
	SavedAt time.Time     `json:"savedAt"`
}

var _ form.DraftStore = (*Store)(nil)

// SaveDraft stores the latest snapshot of a session, renewing its TTL.
func (s *Store) SaveDraft(ctx context.Context, snap form.Snapshot) error {
	return s.Drafts.Save(ctx, snap.ID, &Draft{Session: snap, SavedAt: time.Now()})
}

// LoadDraft returns the saved snapshot of a session.
func (s *Store) LoadDraft(ctx context.Context, sessionID string) (form.Snapshot, error) {
	d, err := s.Drafts.Get(ctx, sessionID)
	if err != nil {
		return form.Snapshot{}, err
	}
	return d.Session, nil
}

// DeleteDraft removes a session's draft.
func (s *Store) DeleteDraft(ctx context.Context, sessionID string) error {
	return s.Drafts.Delete(ctx, sessionID)
}

// ListDrafts returns every stored draft.
func (s *Store) ListDrafts(ctx context.Context) ([]*Draft, error) {
	var drafts []*Draft
	for d, err := range s.Drafts.List(ctx) {
		if err != nil {
			return nil, err
		}
		drafts = append(drafts, d)
	}
	return drafts, nil
}
