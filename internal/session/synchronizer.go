// Package session implements the catalog edit session: a locally-owned
// draft, coalesced pushes to the persistence collaborator, and asynchronous
// reference resolution feeding back into the draft.
package session

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/benbjohnson/clock"

	"github.com/reelistapp/reelist-server/internal/domain"
)

// DefaultWindow is the quiet period after the last edit before the draft is
// pushed to the persistence collaborator.
const DefaultWindow = 250 * time.Millisecond

// Persister is the external persistence collaborator. Persist has
// create-or-update semantics keyed by catalog id and returns the accepted
// document.
type Persister interface {
	Persist(ctx context.Context, doc domain.Catalog) (domain.Catalog, error)
}

// Patch is a partial update merged synchronously into the draft.
type Patch struct {
	Name          *string
	Enabled       *bool
	ContentType   *domain.ContentType
	SetFilters    map[domain.FilterKey]string
	DeleteFilters []domain.FilterKey
	Refs          map[domain.FilterKey][]domain.RefItem
}

// pushState is the debounce state machine: idle -> pending -> firing. An
// edit while pending restarts the deadline; it never extends it.
type pushState int

const (
	pushIdle pushState = iota
	pushPending
	pushFiring
)

// Synchronizer owns the single authoritative draft of the catalog being
// edited. Edits apply synchronously; pushes coalesce behind a sliding quiet
// window. Switching catalog identity discards pending work, never flushes it.
type Synchronizer struct {
	persister Persister
	clk       clock.Clock
	window    time.Duration
	logger    *slog.Logger

	mu       sync.Mutex
	seeded   bool
	identity string
	draft    domain.Catalog
	refs     map[domain.FilterKey][]domain.RefItem

	state       pushState
	timer       *clock.Timer
	lastPushErr error
}

// NewSynchronizer creates a synchronizer. A zero window uses DefaultWindow;
// a nil clk uses the wall clock.
func NewSynchronizer(persister Persister, window time.Duration, clk clock.Clock, logger *slog.Logger) *Synchronizer {
	if window <= 0 {
		window = DefaultWindow
	}
	if clk == nil {
		clk = clock.New()
	}
	return &Synchronizer{
		persister: persister,
		clk:       clk,
		window:    window,
		logger:    logger,
		refs:      make(map[domain.FilterKey][]domain.RefItem),
	}
}

// Seed replaces the draft wholesale. A new catalog identity discards the
// pending push and all editable reference state; re-seeding the same
// identity preserves local edits and returns false. Seeding never schedules
// a push by itself.
func (s *Synchronizer) Seed(cat domain.Catalog) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.seeded && cat.ID == s.identity {
		return false
	}

	s.cancelLocked()
	s.seeded = true
	s.identity = cat.ID
	s.draft = cat.Clone()
	s.lastPushErr = nil
	s.refs = make(map[domain.FilterKey][]domain.RefItem)
	for _, key := range domain.ReferenceKeys() {
		if raw := s.draft.Filter(key); raw != "" {
			s.refs[key] = domain.ParseRefList(key, raw)
		}
	}
	return true
}

// PrimeRefs installs a server-supplied pre-resolved editable sequence for a
// reference key without scheduling a push.
func (s *Synchronizer) PrimeRefs(key domain.FilterKey, items []domain.RefItem) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.setRefsLocked(key, items)
}

// Edit merges a patch into the draft immediately and schedules a coalesced
// push. Edits before the first Seed are dropped.
func (s *Synchronizer) Edit(patch Patch) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.seeded {
		if s.logger != nil {
			s.logger.Warn("edit before seed dropped")
		}
		return
	}

	s.applyLocked(patch)
	s.scheduleLocked()
}

// FlushNow cancels any pending timer and pushes the draft immediately.
// Used before an explicit save so the persisted document is never stale.
func (s *Synchronizer) FlushNow(ctx context.Context) error {
	s.mu.Lock()
	if !s.seeded {
		s.mu.Unlock()
		return nil
	}
	s.cancelLocked()
	s.state = pushFiring
	doc := s.projectionLocked()
	s.mu.Unlock()

	err := s.push(ctx, doc)

	s.mu.Lock()
	if s.state == pushFiring {
		s.state = pushIdle
	}
	s.lastPushErr = err
	s.mu.Unlock()
	return err
}

// Close abandons the session: the pending timer is cancelled without
// pushing. An in-progress edit on a catalog the user navigated away from is
// never silently persisted later.
func (s *Synchronizer) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cancelLocked()
}

// Identity returns the id of the currently seeded catalog.
func (s *Synchronizer) Identity() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.identity
}

// Draft returns a copy of the current draft.
func (s *Synchronizer) Draft() domain.Catalog {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.draft.Clone()
}

// Refs returns a copy of the editable sequence for a reference key.
func (s *Synchronizer) Refs(key domain.FilterKey) []domain.RefItem {
	s.mu.Lock()
	defer s.mu.Unlock()
	items := s.refs[key]
	out := make([]domain.RefItem, len(items))
	copy(out, items)
	return out
}

// RefSignature returns the current input signature for a reference key,
// compared at resolution-commit time to detect superseded results.
func (s *Synchronizer) RefSignature(key domain.FilterKey) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return domain.RefSignature(s.refs[key])
}

// Projection assembles the document exactly as a push would: reference-type
// filters carry the delimiter-joined id projection of their editable
// sequences. Labels are never part of it.
func (s *Synchronizer) Projection() domain.Catalog {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.projectionLocked()
}

// LastPushError returns the outcome of the most recent timer-driven push.
func (s *Synchronizer) LastPushError() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastPushErr
}

// applyLocked merges one patch into the draft.
func (s *Synchronizer) applyLocked(patch Patch) {
	if patch.Name != nil {
		s.draft.Name = *patch.Name
		s.draft.UpdatedAt = time.Now()
	}
	if patch.Enabled != nil {
		s.draft.Enabled = *patch.Enabled
		s.draft.UpdatedAt = time.Now()
	}
	if patch.ContentType != nil {
		s.draft.ContentType = *patch.ContentType
		s.draft.UpdatedAt = time.Now()
	}
	for key, value := range patch.SetFilters {
		s.draft.SetFilter(key, value)
		if key.Reference() {
			// Raw edits to a reference value re-derive the editable form.
			s.refs[key] = domain.ParseRefList(key, value)
		}
	}
	for _, key := range patch.DeleteFilters {
		s.draft.DeleteFilter(key)
		delete(s.refs, key)
	}
	for key, items := range patch.Refs {
		s.setRefsLocked(key, items)
	}
}

// setRefsLocked replaces one editable sequence and its draft projection.
func (s *Synchronizer) setRefsLocked(key domain.FilterKey, items []domain.RefItem) {
	copied := make([]domain.RefItem, len(items))
	copy(copied, items)
	if len(copied) == 0 {
		delete(s.refs, key)
		s.draft.DeleteFilter(key)
		return
	}
	s.refs[key] = copied
	s.draft.SetFilter(key, domain.JoinRefIDs(key, copied))
}

// scheduleLocked restarts the quiet window.
func (s *Synchronizer) scheduleLocked() {
	if s.timer != nil {
		s.timer.Stop()
	}
	s.state = pushPending
	s.timer = s.clk.AfterFunc(s.window, s.fire)
}

// cancelLocked stops the pending timer, discarding the scheduled push.
func (s *Synchronizer) cancelLocked() {
	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
	s.state = pushIdle
}

// fire runs when the quiet window elapses with no further edits.
func (s *Synchronizer) fire() {
	s.mu.Lock()
	if s.state != pushPending {
		s.mu.Unlock()
		return
	}
	s.state = pushFiring
	s.timer = nil
	doc := s.projectionLocked()
	s.mu.Unlock()

	err := s.push(context.Background(), doc)

	s.mu.Lock()
	if s.state == pushFiring {
		s.state = pushIdle
	}
	s.lastPushErr = err
	s.mu.Unlock()
}

// push sends one document to the persistence collaborator. A rejection
// leaves the draft untouched; the user's edits stay visible and editable.
func (s *Synchronizer) push(ctx context.Context, doc domain.Catalog) error {
	_, err := s.persister.Persist(ctx, doc)
	if err != nil {
		if s.logger != nil {
			s.logger.Warn("catalog push rejected", "catalog_id", doc.ID, "error", err)
		}
		return err
	}
	if s.logger != nil {
		s.logger.Debug("catalog pushed", "catalog_id", doc.ID)
	}
	return nil
}

// projectionLocked builds the push document from the draft.
func (s *Synchronizer) projectionLocked() domain.Catalog {
	doc := s.draft.Clone()
	for key, items := range s.refs {
		doc.SetFilter(key, domain.JoinRefIDs(key, items))
	}
	return doc
}
