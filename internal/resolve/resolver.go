// Package resolve upgrades placeholder identifier labels in reference-type
// filter values to display labels, one identifier namespace at a time.
package resolve

import (
	"context"
	"log/slog"
	"sync"

	"golang.org/x/sync/singleflight"

	"github.com/reelistapp/reelist-server/internal/domain"
	"github.com/reelistapp/reelist-server/internal/errors"
)

// Candidate is one ranked result of a text search.
type Candidate struct {
	ID    string `json:"id"`
	Label string `json:"label"`
}

// Lookup is the external collaborator that turns identifiers into labels.
type Lookup interface {
	// FetchByID returns the display label for an identifier. Absent
	// identifiers return an error.
	FetchByID(ctx context.Context, ns domain.Namespace, id string) (string, error)

	// SearchByText returns ranked label candidates for a free-text query.
	SearchByText(ctx context.Context, ns domain.Namespace, text string) ([]Candidate, error)
}

// Resolver resolves placeholder labels with a session-lifetime cache,
// per-identifier in-flight dedup, and a superseded-input guard. One Resolver
// belongs to one edit session and is discarded with it.
type Resolver struct {
	lookup Lookup
	logger *slog.Logger

	mu    sync.Mutex
	cache map[domain.Namespace]map[string]string
	sigs  map[domain.Namespace]string

	flight singleflight.Group
}

// New creates a resolver backed by the given lookup collaborator.
func New(lookup Lookup, logger *slog.Logger) *Resolver {
	return &Resolver{
		lookup: lookup,
		logger: logger,
		cache:  make(map[domain.Namespace]map[string]string),
		sigs:   make(map[domain.Namespace]string),
	}
}

// Resolve returns a new sequence of the same length and order with labels
// upgraded where possible. Items that already carry a real label are left
// alone; if none is a placeholder, no lookup calls are made at all.
//
// The second return is false when the input was superseded by a newer
// Resolve call for the same namespace while lookups were in flight. Callers
// must discard such results instead of committing them.
func (r *Resolver) Resolve(ctx context.Context, ns domain.Namespace, items []domain.RefItem) ([]domain.RefItem, bool) {
	sig := domain.RefSignature(items)

	r.mu.Lock()
	r.sigs[ns] = sig
	r.mu.Unlock()

	out := make([]domain.RefItem, len(items))
	copy(out, items)

	if !domain.AnyPlaceholder(out) {
		return out, true
	}

	for i := range out {
		if !out[i].Placeholder() {
			continue
		}
		label, ok := r.labelFor(ctx, ns, out[i].ID)
		if !ok {
			// Per-item failure: keep the placeholder, keep going.
			continue
		}
		out[i].Label = label
	}

	r.mu.Lock()
	current := r.sigs[ns]
	r.mu.Unlock()

	if current != sig {
		// A newer filter value arrived while we were looking things up.
		// Committing now would clobber state we no longer own.
		if r.logger != nil {
			r.logger.Debug("discarding stale resolution", "namespace", ns, "signature", sig)
		}
		return nil, false
	}
	return out, true
}

// Prime stores already-resolved labels, e.g. a server-supplied pre-resolved
// list, so later resolutions of the same identifiers hit the cache.
func (r *Resolver) Prime(ns domain.Namespace, items []domain.RefItem) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, it := range items {
		if it.Placeholder() {
			continue
		}
		r.primeLocked(ns, it.ID, it.Label)
	}
}

// labelFor returns the label for one identifier, deduplicating concurrent
// lookups of the same (namespace, id) pair.
func (r *Resolver) labelFor(ctx context.Context, ns domain.Namespace, id string) (string, bool) {
	if label, ok := r.cached(ns, id); ok {
		return label, true
	}

	v, err, _ := r.flight.Do(string(ns)+":"+id, func() (any, error) {
		// A concurrent flight may have finished and populated the cache
		// between our miss and this call.
		if label, ok := r.cached(ns, id); ok {
			return label, nil
		}

		label, err := r.fetch(ctx, ns, id)
		if err != nil {
			return "", err
		}

		r.mu.Lock()
		r.primeLocked(ns, id, label)
		r.mu.Unlock()
		return label, nil
	})
	if err != nil {
		if r.logger != nil {
			r.logger.Debug("identifier resolution failed", "namespace", ns, "id", id, "error", err)
		}
		return "", false
	}
	return v.(string), true
}

// fetch tries fetch-by-id first, then falls back to a text search on the
// raw identifier and takes the top candidate.
func (r *Resolver) fetch(ctx context.Context, ns domain.Namespace, id string) (string, error) {
	label, err := r.lookup.FetchByID(ctx, ns, id)
	if err == nil && label != "" {
		return label, nil
	}

	candidates, serr := r.lookup.SearchByText(ctx, ns, id)
	if serr == nil && len(candidates) > 0 && candidates[0].Label != "" {
		return candidates[0].Label, nil
	}

	if err != nil {
		return "", err
	}
	if serr != nil {
		return "", serr
	}
	return "", errors.NotFoundf("no label for %s %s", ns, id)
}

// cached reads one cache entry.
func (r *Resolver) cached(ns domain.Namespace, id string) (string, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	label, ok := r.cache[ns][id]
	return label, ok
}

// primeLocked writes one cache entry. Callers hold r.mu.
func (r *Resolver) primeLocked(ns domain.Namespace, id, label string) {
	m, ok := r.cache[ns]
	if !ok {
		m = make(map[string]string)
		r.cache[ns] = m
	}
	m[id] = label
}
