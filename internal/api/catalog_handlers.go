package api

import (
	"context"
	"net/http"
	"time"

	"github.com/danielgtaylor/huma/v2"

	"github.com/reelistapp/reelist-server/internal/domain"
	"github.com/reelistapp/reelist-server/internal/service"
)

func (s *Server) registerCatalogRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "listCatalogs",
		Method:      http.MethodGet,
		Path:        "/api/v1/catalogs",
		Summary:     "List catalogs",
		Description: "Returns all configured catalogs",
		Tags:        []string{"Catalogs"},
	}, s.handleListCatalogs)

	huma.Register(s.api, huma.Operation{
		OperationID: "createCatalog",
		Method:      http.MethodPost,
		Path:        "/api/v1/catalogs",
		Summary:     "Create catalog",
		Description: "Creates a new catalog",
		Tags:        []string{"Catalogs"},
	}, s.handleCreateCatalog)

	huma.Register(s.api, huma.Operation{
		OperationID: "getCatalog",
		Method:      http.MethodGet,
		Path:        "/api/v1/catalogs/{id}",
		Summary:     "Get catalog",
		Description: "Returns a catalog by ID",
		Tags:        []string{"Catalogs"},
	}, s.handleGetCatalog)

	huma.Register(s.api, huma.Operation{
		OperationID: "deleteCatalog",
		Method:      http.MethodDelete,
		Path:        "/api/v1/catalogs/{id}",
		Summary:     "Delete catalog",
		Description: "Deletes a catalog",
		Tags:        []string{"Catalogs"},
	}, s.handleDeleteCatalog)
}

// === DTOs ===

type CatalogResponse struct {
	ID          string            `json:"id" doc:"Catalog ID"`
	Name        string            `json:"name" doc:"Display name"`
	ContentType string            `json:"content_type" doc:"Content type: movie or series"`
	Enabled     bool              `json:"enabled" doc:"Whether the catalog is active"`
	Filters     map[string]string `json:"filters" doc:"Persisted filter values keyed by filter key"`
	CreatedAt   time.Time         `json:"created_at" doc:"Creation time"`
	UpdatedAt   time.Time         `json:"updated_at" doc:"Last update time"`
}

type ListCatalogsResponse struct {
	Catalogs []CatalogResponse `json:"catalogs" doc:"List of catalogs"`
}

type ListCatalogsOutput struct {
	Body ListCatalogsResponse
}

type CreateCatalogRequest struct {
	Name        string            `json:"name" validate:"required,min=1,max=100" doc:"Display name"`
	ContentType string            `json:"content_type" validate:"required,oneof=movie series" doc:"Content type"`
	Filters     map[string]string `json:"filters,omitempty" doc:"Initial filter values"`
	Enabled     bool              `json:"enabled,omitempty" doc:"Whether the catalog starts active"`
}

type CreateCatalogInput struct {
	Body CreateCatalogRequest
}

type CatalogOutput struct {
	Body CatalogResponse
}

type GetCatalogInput struct {
	ID string `path:"id" doc:"Catalog ID"`
}

type DeleteCatalogInput struct {
	ID string `path:"id" doc:"Catalog ID"`
}

// MessageResponse is a simple success message response.
type MessageResponse struct {
	Message string `json:"message" doc:"Human-readable result"`
}

// MessageOutput wraps a message response for huma.
type MessageOutput struct {
	Body MessageResponse
}

// === Handlers ===

func (s *Server) handleListCatalogs(ctx context.Context, _ *struct{}) (*ListCatalogsOutput, error) {
	catalogs, err := s.services.Catalog.List(ctx)
	if err != nil {
		return nil, err
	}

	resp := make([]CatalogResponse, len(catalogs))
	for i, c := range catalogs {
		resp[i] = mapCatalogResponse(c)
	}

	return &ListCatalogsOutput{Body: ListCatalogsResponse{Catalogs: resp}}, nil
}

func (s *Server) handleCreateCatalog(ctx context.Context, input *CreateCatalogInput) (*CatalogOutput, error) {
	filters := make(map[domain.FilterKey]string, len(input.Body.Filters))
	for k, v := range input.Body.Filters {
		filters[domain.FilterKey(k)] = v
	}

	c, err := s.services.Catalog.Create(ctx, service.CreateCatalogRequest{
		Name:        input.Body.Name,
		ContentType: domain.ContentType(input.Body.ContentType),
		Filters:     filters,
		Enabled:     input.Body.Enabled,
	})
	if err != nil {
		return nil, err
	}

	return &CatalogOutput{Body: mapCatalogResponse(c)}, nil
}

func (s *Server) handleGetCatalog(ctx context.Context, input *GetCatalogInput) (*CatalogOutput, error) {
	c, err := s.services.Catalog.Get(ctx, input.ID)
	if err != nil {
		return nil, err
	}

	return &CatalogOutput{Body: mapCatalogResponse(c)}, nil
}

func (s *Server) handleDeleteCatalog(ctx context.Context, input *DeleteCatalogInput) (*MessageOutput, error) {
	if err := s.services.Catalog.Delete(ctx, input.ID); err != nil {
		return nil, err
	}

	return &MessageOutput{Body: MessageResponse{Message: "Catalog deleted"}}, nil
}

// === Mappers ===

func mapCatalogResponse(c *domain.Catalog) CatalogResponse {
	filters := make(map[string]string, len(c.Filters))
	for k, v := range c.Filters {
		filters[string(k)] = v
	}
	return CatalogResponse{
		ID:          c.ID,
		Name:        c.Name,
		ContentType: string(c.ContentType),
		Enabled:     c.Enabled,
		Filters:     filters,
		CreatedAt:   c.CreatedAt,
		UpdatedAt:   c.UpdatedAt,
	}
}
