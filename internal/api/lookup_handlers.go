package api

import (
	"context"
	"errors"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/reelistapp/reelist-server/internal/domain"
	domainerrors "github.com/reelistapp/reelist-server/internal/errors"
	"github.com/reelistapp/reelist-server/internal/tmdb"
)

func (s *Server) registerLookupRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "searchEntities",
		Method:      http.MethodGet,
		Path:        "/api/v1/lookup/{namespace}/search",
		Summary:     "Search entities",
		Description: "Returns ranked entity candidates for a free-text query",
		Tags:        []string{"Lookup"},
	}, s.handleSearchEntities)

	huma.Register(s.api, huma.Operation{
		OperationID: "getEntity",
		Method:      http.MethodGet,
		Path:        "/api/v1/lookup/{namespace}/{entityID}",
		Summary:     "Get entity",
		Description: "Returns the display label for an entity identifier",
		Tags:        []string{"Lookup"},
	}, s.handleGetEntity)
}

// === DTOs ===

type SearchEntitiesInput struct {
	Namespace string `path:"namespace" doc:"Identifier namespace: person, company, keyword, or network"`
	Query     string `query:"q" required:"true" doc:"Free-text query"`
}

type CandidateResponse struct {
	ID    string `json:"id" doc:"Entity identifier"`
	Label string `json:"label" doc:"Display label"`
}

type SearchEntitiesResponse struct {
	Candidates []CandidateResponse `json:"candidates" doc:"Ranked candidates"`
}

type SearchEntitiesOutput struct {
	Body SearchEntitiesResponse
}

type GetEntityInput struct {
	Namespace string `path:"namespace" doc:"Identifier namespace"`
	EntityID  string `path:"entityID" doc:"Entity identifier"`
}

type EntityOutput struct {
	Body CandidateResponse
}

// === Handlers ===

func (s *Server) handleSearchEntities(ctx context.Context, input *SearchEntitiesInput) (*SearchEntitiesOutput, error) {
	ns := domain.Namespace(input.Namespace)
	if !ns.Valid() {
		return nil, domainerrors.Validationf("unknown namespace %q", input.Namespace)
	}

	candidates, err := s.services.Lookup.SearchByText(ctx, ns, input.Query)
	if err != nil {
		return nil, mapLookupError(err)
	}

	resp := make([]CandidateResponse, len(candidates))
	for i, c := range candidates {
		resp[i] = CandidateResponse{ID: c.ID, Label: c.Label}
	}

	return &SearchEntitiesOutput{Body: SearchEntitiesResponse{Candidates: resp}}, nil
}

func (s *Server) handleGetEntity(ctx context.Context, input *GetEntityInput) (*EntityOutput, error) {
	ns := domain.Namespace(input.Namespace)
	if !ns.Valid() {
		return nil, domainerrors.Validationf("unknown namespace %q", input.Namespace)
	}

	label, err := s.services.Lookup.FetchByID(ctx, ns, input.EntityID)
	if err != nil {
		return nil, mapLookupError(err)
	}

	return &EntityOutput{Body: CandidateResponse{ID: input.EntityID, Label: label}}, nil
}

// mapLookupError translates lookup client failures into coded domain errors.
func mapLookupError(err error) error {
	switch {
	case errors.Is(err, tmdb.ErrNotFound):
		return domainerrors.NotFound("entity not found")
	case errors.Is(err, tmdb.ErrInvalidID):
		return domainerrors.Validation("invalid entity identifier")
	case errors.Is(err, tmdb.ErrUnsupported):
		return domainerrors.Validation("namespace does not support this lookup")
	case errors.Is(err, tmdb.ErrNoAPIKey):
		return domainerrors.Internal("lookup service not configured")
	default:
		return err
	}
}
