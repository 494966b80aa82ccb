package api

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/reelistapp/reelist-server/internal/domain"
	domainerrors "github.com/reelistapp/reelist-server/internal/errors"
	"github.com/reelistapp/reelist-server/internal/gesture"
	"github.com/reelistapp/reelist-server/internal/service"
)

func (s *Server) registerEditorRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "openEditSession",
		Method:      http.MethodPost,
		Path:        "/api/v1/catalogs/{id}/sessions",
		Summary:     "Open edit session",
		Description: "Opens an interactive edit session for a catalog",
		Tags:        []string{"Editor"},
	}, s.handleOpenSession)

	huma.Register(s.api, huma.Operation{
		OperationID: "getEditSession",
		Method:      http.MethodGet,
		Path:        "/api/v1/sessions/{id}",
		Summary:     "Get edit session",
		Description: "Returns the current draft state of an edit session",
		Tags:        []string{"Editor"},
	}, s.handleGetSession)

	huma.Register(s.api, huma.Operation{
		OperationID: "updateEditSession",
		Method:      http.MethodPatch,
		Path:        "/api/v1/sessions/{id}",
		Summary:     "Update edit session",
		Description: "Applies name, enabled, or content type edits to the draft",
		Tags:        []string{"Editor"},
	}, s.handleUpdateSession)

	huma.Register(s.api, huma.Operation{
		OperationID: "pressSession",
		Method:      http.MethodPost,
		Path:        "/api/v1/sessions/{id}/press",
		Summary:     "Deliver press event",
		Description: "Routes a raw press event on a genre item into the session",
		Tags:        []string{"Editor"},
	}, s.handlePress)

	huma.Register(s.api, huma.Operation{
		OperationID: "setSessionFilter",
		Method:      http.MethodPut,
		Path:        "/api/v1/sessions/{id}/filters/{key}",
		Summary:     "Set filter",
		Description: "Sets a raw filter value on the draft",
		Tags:        []string{"Editor"},
	}, s.handleSetFilter)

	huma.Register(s.api, huma.Operation{
		OperationID: "deleteSessionFilter",
		Method:      http.MethodDelete,
		Path:        "/api/v1/sessions/{id}/filters/{key}",
		Summary:     "Delete filter",
		Description: "Removes a filter from the draft",
		Tags:        []string{"Editor"},
	}, s.handleDeleteFilter)

	huma.Register(s.api, huma.Operation{
		OperationID: "addSessionRef",
		Method:      http.MethodPost,
		Path:        "/api/v1/sessions/{id}/refs/{key}",
		Summary:     "Add reference",
		Description: "Adds an entity reference to a reference-type filter",
		Tags:        []string{"Editor"},
	}, s.handleAddRef)

	huma.Register(s.api, huma.Operation{
		OperationID: "removeSessionRef",
		Method:      http.MethodDelete,
		Path:        "/api/v1/sessions/{id}/refs/{key}/{refID}",
		Summary:     "Remove reference",
		Description: "Removes an entity reference from a reference-type filter",
		Tags:        []string{"Editor"},
	}, s.handleRemoveRef)

	huma.Register(s.api, huma.Operation{
		OperationID: "advanceSessionGenre",
		Method:      http.MethodPost,
		Path:        "/api/v1/sessions/{id}/genres/{genreID}/advance",
		Summary:     "Advance genre state",
		Description: "Cycles a genre through neutral, included, excluded",
		Tags:        []string{"Editor"},
	}, s.handleAdvanceGenre)

	huma.Register(s.api, huma.Operation{
		OperationID: "clearSessionGenre",
		Method:      http.MethodDelete,
		Path:        "/api/v1/sessions/{id}/genres/{genreID}",
		Summary:     "Clear genre state",
		Description: "Returns a genre to neutral",
		Tags:        []string{"Editor"},
	}, s.handleClearGenre)

	huma.Register(s.api, huma.Operation{
		OperationID: "previewSession",
		Method:      http.MethodGet,
		Path:        "/api/v1/sessions/{id}/preview",
		Summary:     "Preview persisted form",
		Description: "Returns the document the draft would persist as, without side effects",
		Tags:        []string{"Editor"},
	}, s.handlePreview)

	huma.Register(s.api, huma.Operation{
		OperationID: "saveSession",
		Method:      http.MethodPost,
		Path:        "/api/v1/sessions/{id}/save",
		Summary:     "Save session",
		Description: "Flushes the draft to the store immediately",
		Tags:        []string{"Editor"},
	}, s.handleSaveSession)

	huma.Register(s.api, huma.Operation{
		OperationID: "closeEditSession",
		Method:      http.MethodDelete,
		Path:        "/api/v1/sessions/{id}",
		Summary:     "Close edit session",
		Description: "Tears the session down, discarding any unsaved push",
		Tags:        []string{"Editor"},
	}, s.handleCloseSession)
}

// === DTOs ===

type CapabilitiesRequest struct {
	Pointer                 bool `json:"pointer,omitempty" doc:"Platform delivers pointer events"`
	Touch                   bool `json:"touch,omitempty" doc:"Platform delivers touch events"`
	Mouse                   bool `json:"mouse,omitempty" doc:"Platform delivers mouse events"`
	UnreliablePointerCancel bool `json:"unreliable_pointer_cancel,omitempty" doc:"Pointer streams lose cancel events mid-press"`
}

type OpenSessionInput struct {
	ID   string `path:"id" doc:"Catalog ID"`
	Body CapabilitiesRequest
}

type RefItemResponse struct {
	ID    string `json:"id" doc:"Entity identifier"`
	Label string `json:"label" doc:"Display label, equals the ID until resolved"`
}

type SessionResponse struct {
	SessionID  string                       `json:"session_id" doc:"Edit session ID"`
	Modalities []string                     `json:"modalities" doc:"Negotiated press modalities"`
	Draft      CatalogResponse              `json:"draft" doc:"Current draft state"`
	Refs       map[string][]RefItemResponse `json:"refs,omitempty" doc:"Display items per reference-type filter"`
}

type SessionOutput struct {
	Body SessionResponse
}

type SessionIDInput struct {
	ID string `path:"id" doc:"Session ID"`
}

type UpdateSessionRequest struct {
	Name        *string `json:"name,omitempty" doc:"New display name"`
	Enabled     *bool   `json:"enabled,omitempty" doc:"New enabled flag"`
	ContentType *string `json:"content_type,omitempty" doc:"New content type, resets genre selection"`
}

type UpdateSessionInput struct {
	ID   string `path:"id" doc:"Session ID"`
	Body UpdateSessionRequest
}

type PressRequest struct {
	Modality string  `json:"modality" validate:"required" doc:"Input modality: pointer, touch, or mouse"`
	Phase    string  `json:"phase" validate:"required" doc:"Press phase: start, move, end, or cancel"`
	ItemID   string  `json:"item_id" validate:"required" doc:"Genre item the press targets"`
	X        float64 `json:"x,omitempty" doc:"Press x coordinate"`
	Y        float64 `json:"y,omitempty" doc:"Press y coordinate"`
}

type PressInput struct {
	ID   string `path:"id" doc:"Session ID"`
	Body PressRequest
}

type SetFilterRequest struct {
	Value string `json:"value" doc:"Raw filter value"`
}

type SetFilterInput struct {
	ID   string `path:"id" doc:"Session ID"`
	Key  string `path:"key" doc:"Filter key"`
	Body SetFilterRequest
}

type FilterKeyInput struct {
	ID  string `path:"id" doc:"Session ID"`
	Key string `path:"key" doc:"Filter key"`
}

type AddRefRequest struct {
	RefID string `json:"id" validate:"required" doc:"Entity identifier"`
	Label string `json:"label,omitempty" doc:"Known display label, omit to resolve later"`
}

type AddRefInput struct {
	ID   string `path:"id" doc:"Session ID"`
	Key  string `path:"key" doc:"Reference-type filter key"`
	Body AddRefRequest
}

type RemoveRefInput struct {
	ID    string `path:"id" doc:"Session ID"`
	Key   string `path:"key" doc:"Reference-type filter key"`
	RefID string `path:"refID" doc:"Entity identifier to remove"`
}

type GenreInput struct {
	ID      string `path:"id" doc:"Session ID"`
	GenreID string `path:"genreID" doc:"Genre identifier"`
}

// === Handlers ===

func (s *Server) handleOpenSession(ctx context.Context, input *OpenSessionInput) (*SessionOutput, error) {
	caps := gesture.Capabilities{
		Pointer:                 input.Body.Pointer,
		Touch:                   input.Body.Touch,
		Mouse:                   input.Body.Mouse,
		UnreliablePointerCancel: input.Body.UnreliablePointerCancel,
	}
	if len(gesture.SelectModalities(caps)) == 0 {
		return nil, domainerrors.Validation("capabilities select no input modality")
	}

	sessionID, err := s.services.Editor.Open(ctx, input.ID, caps)
	if err != nil {
		return nil, err
	}

	return s.sessionOutput(sessionID)
}

func (s *Server) handleGetSession(_ context.Context, input *SessionIDInput) (*SessionOutput, error) {
	return s.sessionOutput(input.ID)
}

func (s *Server) handleUpdateSession(_ context.Context, input *UpdateSessionInput) (*SessionOutput, error) {
	sess, err := s.services.Editor.Session(input.ID)
	if err != nil {
		return nil, err
	}

	if input.Body.ContentType != nil {
		ct := domain.ContentType(*input.Body.ContentType)
		if !ct.Valid() {
			return nil, domainerrors.Validationf("unknown content type %q", *input.Body.ContentType)
		}
		sess.SetContentType(ct)
	}
	if input.Body.Name != nil {
		sess.Rename(*input.Body.Name)
	}
	if input.Body.Enabled != nil {
		sess.SetEnabled(*input.Body.Enabled)
	}

	return s.sessionOutput(input.ID)
}

func (s *Server) handlePress(_ context.Context, input *PressInput) (*MessageOutput, error) {
	modality, ok := gesture.ParseModality(input.Body.Modality)
	if !ok {
		return nil, domainerrors.Validationf("unknown modality %q", input.Body.Modality)
	}

	err := s.services.Editor.Press(input.ID, service.PressInput{
		Modality: modality,
		Phase:    service.PressPhase(input.Body.Phase),
		ItemID:   input.Body.ItemID,
		X:        input.Body.X,
		Y:        input.Body.Y,
	})
	if err != nil {
		return nil, err
	}

	return &MessageOutput{Body: MessageResponse{Message: "Press accepted"}}, nil
}

func (s *Server) handleSetFilter(ctx context.Context, input *SetFilterInput) (*SessionOutput, error) {
	key := domain.FilterKey(input.Key)
	if !key.Recognized() {
		return nil, domainerrors.Validationf("unknown filter key %q", input.Key)
	}

	sess, err := s.services.Editor.Session(input.ID)
	if err != nil {
		return nil, err
	}

	sess.SetFilter(ctx, key, input.Body.Value)
	return s.sessionOutput(input.ID)
}

func (s *Server) handleDeleteFilter(_ context.Context, input *FilterKeyInput) (*SessionOutput, error) {
	key := domain.FilterKey(input.Key)
	if !key.Recognized() {
		return nil, domainerrors.Validationf("unknown filter key %q", input.Key)
	}

	sess, err := s.services.Editor.Session(input.ID)
	if err != nil {
		return nil, err
	}

	sess.DeleteFilter(key)
	return s.sessionOutput(input.ID)
}

func (s *Server) handleAddRef(_ context.Context, input *AddRefInput) (*SessionOutput, error) {
	key := domain.FilterKey(input.Key)
	if !key.Reference() {
		return nil, domainerrors.Validationf("filter key %q does not hold references", input.Key)
	}
	if !domain.BareNumericID(input.Body.RefID) {
		return nil, domainerrors.Validationf("reference id %q is not a numeric identifier", input.Body.RefID)
	}

	sess, err := s.services.Editor.Session(input.ID)
	if err != nil {
		return nil, err
	}

	sess.AddRef(key, domain.RefItem{ID: input.Body.RefID, Label: input.Body.Label})
	return s.sessionOutput(input.ID)
}

func (s *Server) handleRemoveRef(_ context.Context, input *RemoveRefInput) (*SessionOutput, error) {
	key := domain.FilterKey(input.Key)
	if !key.Reference() {
		return nil, domainerrors.Validationf("filter key %q does not hold references", input.Key)
	}

	sess, err := s.services.Editor.Session(input.ID)
	if err != nil {
		return nil, err
	}

	sess.RemoveRef(key, input.RefID)
	return s.sessionOutput(input.ID)
}

func (s *Server) handleAdvanceGenre(_ context.Context, input *GenreInput) (*SessionOutput, error) {
	sess, err := s.services.Editor.Session(input.ID)
	if err != nil {
		return nil, err
	}

	sess.AdvanceGenre(input.GenreID)
	return s.sessionOutput(input.ID)
}

func (s *Server) handleClearGenre(_ context.Context, input *GenreInput) (*SessionOutput, error) {
	sess, err := s.services.Editor.Session(input.ID)
	if err != nil {
		return nil, err
	}

	sess.ClearGenre(input.GenreID)
	return s.sessionOutput(input.ID)
}

func (s *Server) handlePreview(_ context.Context, input *SessionIDInput) (*CatalogOutput, error) {
	sess, err := s.services.Editor.Session(input.ID)
	if err != nil {
		return nil, err
	}

	preview := sess.Preview()
	return &CatalogOutput{Body: mapCatalogResponse(&preview)}, nil
}

func (s *Server) handleSaveSession(ctx context.Context, input *SessionIDInput) (*CatalogOutput, error) {
	saved, err := s.services.Editor.Save(ctx, input.ID)
	if err != nil {
		return nil, err
	}

	return &CatalogOutput{Body: mapCatalogResponse(&saved)}, nil
}

func (s *Server) handleCloseSession(_ context.Context, input *SessionIDInput) (*MessageOutput, error) {
	if err := s.services.Editor.Close(input.ID); err != nil {
		return nil, err
	}

	return &MessageOutput{Body: MessageResponse{Message: "Session closed"}}, nil
}

// === Mappers ===

func (s *Server) sessionOutput(sessionID string) (*SessionOutput, error) {
	sess, err := s.services.Editor.Session(sessionID)
	if err != nil {
		return nil, err
	}
	modalities, err := s.services.Editor.Modalities(sessionID)
	if err != nil {
		return nil, err
	}

	names := make([]string, len(modalities))
	for i, m := range modalities {
		names[i] = m.String()
	}

	refs := make(map[string][]RefItemResponse)
	for _, key := range domain.ReferenceKeys() {
		items := sess.Refs(key)
		if len(items) == 0 {
			continue
		}
		out := make([]RefItemResponse, len(items))
		for i, it := range items {
			out[i] = RefItemResponse{ID: it.ID, Label: it.Label}
		}
		refs[string(key)] = out
	}

	draft := sess.Draft()
	return &SessionOutput{Body: SessionResponse{
		SessionID:  sessionID,
		Modalities: names,
		Draft:      mapCatalogResponse(&draft),
		Refs:       refs,
	}}, nil
}
