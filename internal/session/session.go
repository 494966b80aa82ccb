package session

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/benbjohnson/clock"

	"github.com/reelistapp/reelist-server/internal/domain"
	"github.com/reelistapp/reelist-server/internal/gesture"
	"github.com/reelistapp/reelist-server/internal/resolve"
)

// Config holds session tuning knobs.
type Config struct {
	// Window is the coalescing quiet window for pushes.
	Window time.Duration
}

// Session is the end-to-end catalog edit experience: it seeds a draft from a
// catalog document, drives asynchronous reference resolution, owns the
// tri-state genre selection, and projects the draft back into a document for
// preview or save.
type Session struct {
	sync   *Synchronizer
	lookup resolve.Lookup
	clk    clock.Clock
	logger *slog.Logger

	mu       sync.Mutex
	resolver *resolve.Resolver
	genres   *domain.SelectionSet
}

// New creates an edit session. A nil clk uses the wall clock.
func New(persister Persister, lookup resolve.Lookup, cfg Config, clk clock.Clock, logger *slog.Logger) *Session {
	if clk == nil {
		clk = clock.New()
	}
	return &Session{
		sync:   NewSynchronizer(persister, cfg.Window, clk, logger),
		lookup: lookup,
		clk:    clk,
		logger: logger,
		genres: domain.NewSelectionSet(),
	}
}

// Seed loads a catalog into the session. A new identity resets the genre
// selection, the resolution cache, and any pending push; re-seeding the same
// identity preserves local edits and in-flight resolution.
//
// preResolved carries server-supplied {id, label} sequences per reference
// key; those are trusted as-is and skip resolution. Every other reference
// filter with placeholder labels is resolved asynchronously, and resolved
// sequences flow back into the draft as edits.
func (s *Session) Seed(ctx context.Context, cat domain.Catalog, preResolved map[domain.FilterKey][]domain.RefItem) {
	changed := s.sync.Seed(cat)

	s.mu.Lock()
	fresh := changed || s.resolver == nil
	if fresh {
		s.resolver = resolve.New(s.lookup, s.logger)
		s.genres = domain.ParseSelection(cat.Filter(domain.FilterGenres))
	}
	resolver := s.resolver
	identity := cat.ID
	s.mu.Unlock()

	// Resolution outlives the seeding call; results are discarded by the
	// staleness checks in commitResolved, never canceled mid-flight.
	ctx = context.WithoutCancel(ctx)

	for _, key := range domain.ReferenceKeys() {
		if items, ok := preResolved[key]; ok {
			if ns, ok := key.Namespace(); ok {
				resolver.Prime(ns, items)
			}
			// Installing server-supplied sequences on a same-identity
			// re-seed would clobber local edits.
			if fresh {
				s.sync.PrimeRefs(key, items)
			}
			continue
		}
		if domain.AnyPlaceholder(s.sync.Refs(key)) {
			go s.resolveKey(ctx, key, identity, resolver)
		}
	}
}

// resolveKey resolves one reference filter and commits the result if it is
// still current when it arrives.
func (s *Session) resolveKey(ctx context.Context, key domain.FilterKey, identity string, resolver *resolve.Resolver) {
	ns, ok := key.Namespace()
	if !ok {
		return
	}
	items := s.sync.Refs(key)
	out, ok := resolver.Resolve(ctx, ns, items)
	if !ok {
		return
	}
	s.commitResolved(key, identity, resolver, out)
}

// commitResolved applies a finished resolution unless the session moved on:
// to a different catalog identity, a fresh resolver, or a changed filter
// value. Stale results are dropped, never merged.
func (s *Session) commitResolved(key domain.FilterKey, identity string, resolver *resolve.Resolver, out []domain.RefItem) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.resolver != resolver || s.sync.Identity() != identity {
		return
	}
	if domain.RefSignature(out) != s.sync.RefSignature(key) {
		return
	}
	s.sync.Edit(Patch{Refs: map[domain.FilterKey][]domain.RefItem{key: out}})
}

// Rename edits the catalog name.
func (s *Session) Rename(name string) {
	s.sync.Edit(Patch{Name: &name})
}

// SetEnabled edits the enabled flag.
func (s *Session) SetEnabled(enabled bool) {
	s.sync.Edit(Patch{Enabled: &enabled})
}

// SetContentType switches the content type. The genre selection resets
// because option universes differ per content type.
func (s *Session) SetContentType(ct domain.ContentType) {
	s.mu.Lock()
	s.genres.Reset()
	s.mu.Unlock()
	s.sync.Edit(Patch{
		ContentType:   &ct,
		DeleteFilters: []domain.FilterKey{domain.FilterGenres},
	})
}

// SetFilter edits one raw filter value. For reference keys the editable
// sequence re-derives from the value and resolution restarts for it.
func (s *Session) SetFilter(ctx context.Context, key domain.FilterKey, value string) {
	s.sync.Edit(Patch{SetFilters: map[domain.FilterKey]string{key: value}})

	if !key.Reference() {
		return
	}
	s.mu.Lock()
	resolver := s.resolver
	identity := s.sync.Identity()
	s.mu.Unlock()
	if resolver != nil {
		go s.resolveKey(context.WithoutCancel(ctx), key, identity, resolver)
	}
}

// DeleteFilter removes a filter entirely.
func (s *Session) DeleteFilter(key domain.FilterKey) {
	s.sync.Edit(Patch{DeleteFilters: []domain.FilterKey{key}})
}

// AddRef appends one entity to a reference filter. Items picked from search
// results arrive with their label already known, so no resolution is needed;
// the label is primed into the cache for any later re-parse of the value.
func (s *Session) AddRef(key domain.FilterKey, item domain.RefItem) {
	ns, ok := key.Namespace()
	if !ok {
		return
	}

	items := s.sync.Refs(key)
	for _, existing := range items {
		if existing.ID == item.ID {
			return
		}
	}
	items = append(items, item)

	s.mu.Lock()
	if s.resolver != nil && !item.Placeholder() {
		s.resolver.Prime(ns, []domain.RefItem{item})
	}
	s.mu.Unlock()

	s.sync.Edit(Patch{Refs: map[domain.FilterKey][]domain.RefItem{key: items}})
}

// RemoveRef removes one entity from a reference filter.
func (s *Session) RemoveRef(key domain.FilterKey, id string) {
	items := s.sync.Refs(key)
	kept := items[:0]
	for _, it := range items {
		if it.ID != id {
			kept = append(kept, it)
		}
	}
	if len(kept) == len(items) {
		return
	}
	s.sync.Edit(Patch{Refs: map[domain.FilterKey][]domain.RefItem{key: kept}})
}

// OnGesture routes a classified gesture on a genre item: tap toggles
// include, hold forces exclude.
func (s *Session) OnGesture(ev gesture.Event) {
	switch ev.Action {
	case gesture.ActionTap:
		s.ToggleGenre(ev.ItemID)
	case gesture.ActionHold:
		s.ExcludeGenre(ev.ItemID)
	}
}

// ToggleGenre flips a genre between included and neutral.
func (s *Session) ToggleGenre(id string) {
	s.editGenres(func(g *domain.SelectionSet) { g.ToggleInclude(id) })
}

// ExcludeGenre forces a genre into the excluded set.
func (s *Session) ExcludeGenre(id string) {
	s.editGenres(func(g *domain.SelectionSet) { g.Exclude(id) })
}

// ClearGenre returns a genre to neutral.
func (s *Session) ClearGenre(id string) {
	s.editGenres(func(g *domain.SelectionSet) { g.Clear(id) })
}

// AdvanceGenre cycles a genre neutral -> included -> excluded -> neutral,
// for tap-only UIs.
func (s *Session) AdvanceGenre(id string) {
	s.editGenres(func(g *domain.SelectionSet) { g.Advance(id) })
}

// GenreState returns the tri-state of a genre id.
func (s *Session) GenreState(id string) domain.SelectionState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.genres.State(id)
}

// editGenres mutates the selection and mirrors it into the draft.
func (s *Session) editGenres(fn func(*domain.SelectionSet)) {
	s.mu.Lock()
	fn(s.genres)
	encoded := s.genres.Encode()
	s.mu.Unlock()

	if encoded == "" {
		s.sync.Edit(Patch{DeleteFilters: []domain.FilterKey{domain.FilterGenres}})
		return
	}
	s.sync.Edit(Patch{SetFilters: map[domain.FilterKey]string{domain.FilterGenres: encoded}})
}

// Draft returns a copy of the current draft, labels included.
func (s *Session) Draft() domain.Catalog {
	return s.sync.Draft()
}

// Refs returns a copy of the editable sequence for a reference key.
func (s *Session) Refs(key domain.FilterKey) []domain.RefItem {
	return s.sync.Refs(key)
}

// Preview assembles the persisted-form document without touching the
// debounce timer or the persistence collaborator.
func (s *Session) Preview() domain.Catalog {
	return s.sync.Projection()
}

// Save flushes the draft immediately and returns the pushed document. The
// draft is not rolled back on rejection; the caller decides whether to retry.
func (s *Session) Save(ctx context.Context) (domain.Catalog, error) {
	err := s.sync.FlushNow(ctx)
	return s.sync.Projection(), err
}

// LastPushError exposes the outcome of the most recent coalesced push.
func (s *Session) LastPushError() error {
	return s.sync.LastPushError()
}

// Close abandons the session, discarding any pending push.
func (s *Session) Close() {
	s.sync.Close()
}
