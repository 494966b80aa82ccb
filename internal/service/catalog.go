package service

import (
	"context"
	"log/slog"
	"time"

	"github.com/reelistapp/reelist-server/internal/domain"
	"github.com/reelistapp/reelist-server/internal/errors"
	"github.com/reelistapp/reelist-server/internal/id"
	"github.com/reelistapp/reelist-server/internal/store"
	"github.com/reelistapp/reelist-server/internal/validation"
)

// CatalogService orchestrates catalog CRUD. It is also the persistence
// collaborator edit sessions push their drafts to.
type CatalogService struct {
	store     *store.Store
	logger    *slog.Logger
	validator *validation.Validator
}

// NewCatalogService creates a new catalog service.
func NewCatalogService(store *store.Store, logger *slog.Logger) *CatalogService {
	return &CatalogService{
		store:     store,
		logger:    logger,
		validator: validation.New(),
	}
}

// CreateCatalogRequest contains fields for creating a catalog.
type CreateCatalogRequest struct {
	Name        string                      `json:"name" validate:"required,min=1,max=100"`
	ContentType domain.ContentType          `json:"content_type" validate:"required,oneof=movie series"`
	Filters     map[domain.FilterKey]string `json:"filters"`
	Enabled     bool                        `json:"enabled"`
}

// Create creates a new catalog.
func (s *CatalogService) Create(ctx context.Context, req CreateCatalogRequest) (*domain.Catalog, error) {
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}

	catalogID, err := id.Generate("cat")
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	cat := &domain.Catalog{
		ID:          catalogID,
		Name:        req.Name,
		ContentType: req.ContentType,
		Filters:     req.Filters,
		Enabled:     req.Enabled,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if cat.Filters == nil {
		cat.Filters = make(map[domain.FilterKey]string)
	}

	if err := s.validateFilters(cat); err != nil {
		return nil, err
	}

	if err := s.store.Catalogs.Create(ctx, catalogID, cat); err != nil {
		return nil, err
	}

	s.logger.Info("catalog created", "id", catalogID, "name", req.Name, "content_type", req.ContentType)
	return cat, nil
}

// Get returns a single catalog.
func (s *CatalogService) Get(ctx context.Context, catalogID string) (*domain.Catalog, error) {
	return s.store.Catalogs.Get(ctx, catalogID)
}

// List returns all catalogs.
func (s *CatalogService) List(ctx context.Context) ([]*domain.Catalog, error) {
	var catalogs []*domain.Catalog
	for cat, err := range s.store.Catalogs.List(ctx) {
		if err != nil {
			return nil, err
		}
		catalogs = append(catalogs, cat)
	}
	return catalogs, nil
}

// Delete removes a catalog. Idempotent.
func (s *CatalogService) Delete(ctx context.Context, catalogID string) error {
	if err := s.store.Catalogs.Delete(ctx, catalogID); err != nil {
		return err
	}
	s.logger.Info("catalog deleted", "id", catalogID)
	return nil
}

// Persist validates and stores a pushed draft document, implementing the
// edit session's persistence contract. The document arrives in persisted
// form: filter values carry identifiers only, never display labels.
func (s *CatalogService) Persist(ctx context.Context, doc domain.Catalog) (domain.Catalog, error) {
	if err := s.validator.Validate(doc); err != nil {
		return domain.Catalog{}, err
	}
	if err := s.validateFilters(&doc); err != nil {
		return domain.Catalog{}, err
	}

	doc.UpdatedAt = time.Now().UTC()

	err := s.store.Catalogs.Update(ctx, doc.ID, &doc)
	if errors.Is(err, errors.ErrNotFound) {
		// First push of a catalog created elsewhere, e.g. seeded drafts.
		err = s.store.Catalogs.Create(ctx, doc.ID, &doc)
	}
	if err != nil {
		return domain.Catalog{}, err
	}

	s.logger.Debug("catalog persisted", "id", doc.ID)
	return doc, nil
}

// validateFilters rejects unknown filter keys and non-identifier values in
// reference filters.
func (s *CatalogService) validateFilters(cat *domain.Catalog) error {
	if unknown := cat.UnrecognizedFilterKeys(); len(unknown) > 0 {
		return errors.ValidationWithDetails("unrecognized filter keys", unknown)
	}

	for _, key := range domain.ReferenceKeys() {
		raw, ok := cat.Filters[key]
		if !ok {
			continue
		}
		for _, item := range domain.ParseRefList(key, raw) {
			if !domain.BareNumericID(item.ID) {
				return errors.Validationf("filter %s: %q is not an identifier", key, item.ID)
			}
		}
	}
	return nil
}
