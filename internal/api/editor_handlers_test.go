package api

import (
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// openSession opens an edit session with pointer capabilities and returns
// its ID.
func (ts *testServer) openSession(t *testing.T, catalogID string) string {
	t.Helper()

	resp := ts.api.Post("/api/v1/catalogs/"+catalogID+"/sessions", map[string]any{
		"pointer": true,
	})
	require.Equal(t, http.StatusOK, resp.Code, "open failed: %s", resp.Body.String())

	var envelope testEnvelope[SessionResponse]
	require.NoError(t, unmarshalBody(resp.Body.Bytes(), &envelope))
	require.NotEmpty(t, envelope.Data.SessionID)
	return envelope.Data.SessionID
}

// getSession fetches the current session state.
func (ts *testServer) getSession(t *testing.T, sessionID string) SessionResponse {
	t.Helper()

	resp := ts.api.Get("/api/v1/sessions/" + sessionID)
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())

	var envelope testEnvelope[SessionResponse]
	require.NoError(t, unmarshalBody(resp.Body.Bytes(), &envelope))
	return envelope.Data
}

func (ts *testServer) press(t *testing.T, sessionID, phase, itemID string) {
	t.Helper()

	resp := ts.api.Post("/api/v1/sessions/"+sessionID+"/press", map[string]any{
		"modality": "pointer",
		"phase":    phase,
		"item_id":  itemID,
		"x":        100.0,
		"y":        100.0,
	})
	require.Equal(t, http.StatusOK, resp.Code, "press failed: %s", resp.Body.String())
}

func TestOpenSession(t *testing.T) {
	ts := setupTestServer(t)
	catalogID := ts.createCatalog(t, "Heist Night", map[string]string{"genres": "28,80"})

	resp := ts.api.Post("/api/v1/catalogs/"+catalogID+"/sessions", map[string]any{
		"pointer": true,
	})
	require.Equal(t, http.StatusOK, resp.Code)

	var envelope testEnvelope[SessionResponse]
	require.NoError(t, unmarshalBody(resp.Body.Bytes(), &envelope))
	assert.Contains(t, envelope.Data.SessionID, "sess-")
	assert.Equal(t, []string{"pointer"}, envelope.Data.Modalities)
	assert.Equal(t, "28,80", envelope.Data.Draft.Filters["genres"])
}

func TestOpenSession_UnreliablePointerFallsBack(t *testing.T) {
	ts := setupTestServer(t)
	catalogID := ts.createCatalog(t, "Heist Night", nil)

	resp := ts.api.Post("/api/v1/catalogs/"+catalogID+"/sessions", map[string]any{
		"pointer":                   true,
		"touch":                     true,
		"mouse":                     true,
		"unreliable_pointer_cancel": true,
	})
	require.Equal(t, http.StatusOK, resp.Code)

	var envelope testEnvelope[SessionResponse]
	require.NoError(t, unmarshalBody(resp.Body.Bytes(), &envelope))
	assert.ElementsMatch(t, []string{"touch", "mouse"}, envelope.Data.Modalities)
}

func TestOpenSession_NoModalities(t *testing.T) {
	ts := setupTestServer(t)
	catalogID := ts.createCatalog(t, "Heist Night", nil)

	resp := ts.api.Post("/api/v1/catalogs/"+catalogID+"/sessions", map[string]any{})
	assert.Equal(t, http.StatusBadRequest, resp.Code)
}

func TestOpenSession_UnknownCatalog(t *testing.T) {
	ts := setupTestServer(t)

	resp := ts.api.Post("/api/v1/catalogs/cat-missing/sessions", map[string]any{
		"pointer": true,
	})
	assert.Equal(t, http.StatusNotFound, resp.Code)
}

func TestGetSession_Unknown(t *testing.T) {
	ts := setupTestServer(t)

	resp := ts.api.Get("/api/v1/sessions/sess-missing")
	assert.Equal(t, http.StatusNotFound, resp.Code)
}

func TestPress_TapTogglesGenre(t *testing.T) {
	ts := setupTestServer(t)
	catalogID := ts.createCatalog(t, "Heist Night", map[string]string{"genres": "28,80"})
	sessionID := ts.openSession(t, catalogID)

	ts.press(t, sessionID, "start", "28")
	ts.clk.Add(100 * time.Millisecond)
	ts.press(t, sessionID, "end", "28")

	state := ts.getSession(t, sessionID)
	assert.Equal(t, "80", state.Draft.Filters["genres"])
}

func TestPress_HoldExcludesGenre(t *testing.T) {
	ts := setupTestServer(t)
	catalogID := ts.createCatalog(t, "Heist Night", map[string]string{"genres": "28,80"})
	sessionID := ts.openSession(t, catalogID)

	ts.press(t, sessionID, "start", "27")
	ts.clk.Add(500 * time.Millisecond)
	ts.press(t, sessionID, "end", "27")

	state := ts.getSession(t, sessionID)
	assert.Equal(t, "28,80,-27", state.Draft.Filters["genres"])
}

func TestPress_UnnegotiatedModality(t *testing.T) {
	ts := setupTestServer(t)
	catalogID := ts.createCatalog(t, "Heist Night", nil)
	sessionID := ts.openSession(t, catalogID)

	resp := ts.api.Post("/api/v1/sessions/"+sessionID+"/press", map[string]any{
		"modality": "touch",
		"phase":    "start",
		"item_id":  "28",
	})
	assert.Equal(t, http.StatusBadRequest, resp.Code)
}

func TestPress_UnknownModality(t *testing.T) {
	ts := setupTestServer(t)
	catalogID := ts.createCatalog(t, "Heist Night", nil)
	sessionID := ts.openSession(t, catalogID)

	resp := ts.api.Post("/api/v1/sessions/"+sessionID+"/press", map[string]any{
		"modality": "stylus",
		"phase":    "start",
		"item_id":  "28",
	})
	assert.Equal(t, http.StatusBadRequest, resp.Code)
}

func TestUpdateSession(t *testing.T) {
	ts := setupTestServer(t)
	catalogID := ts.createCatalog(t, "Heist Night", map[string]string{"genres": "28,80"})
	sessionID := ts.openSession(t, catalogID)

	resp := ts.api.Patch("/api/v1/sessions/"+sessionID, map[string]any{
		"name":    "Crime Classics",
		"enabled": false,
	})
	require.Equal(t, http.StatusOK, resp.Code)

	var envelope testEnvelope[SessionResponse]
	require.NoError(t, unmarshalBody(resp.Body.Bytes(), &envelope))
	assert.Equal(t, "Crime Classics", envelope.Data.Draft.Name)
	assert.False(t, envelope.Data.Draft.Enabled)
}

func TestUpdateSession_ContentTypeResetsGenres(t *testing.T) {
	ts := setupTestServer(t)
	catalogID := ts.createCatalog(t, "Heist Night", map[string]string{"genres": "28,80"})
	sessionID := ts.openSession(t, catalogID)

	resp := ts.api.Patch("/api/v1/sessions/"+sessionID, map[string]any{
		"content_type": "series",
	})
	require.Equal(t, http.StatusOK, resp.Code)

	var envelope testEnvelope[SessionResponse]
	require.NoError(t, unmarshalBody(resp.Body.Bytes(), &envelope))
	assert.Equal(t, "series", envelope.Data.Draft.ContentType)
	assert.NotContains(t, envelope.Data.Draft.Filters, "genres")
}

func TestUpdateSession_BadContentType(t *testing.T) {
	ts := setupTestServer(t)
	catalogID := ts.createCatalog(t, "Heist Night", nil)
	sessionID := ts.openSession(t, catalogID)

	resp := ts.api.Patch("/api/v1/sessions/"+sessionID, map[string]any{
		"content_type": "podcast",
	})
	assert.Equal(t, http.StatusBadRequest, resp.Code)
}

func TestSetAndDeleteFilter(t *testing.T) {
	ts := setupTestServer(t)
	catalogID := ts.createCatalog(t, "Heist Night", nil)
	sessionID := ts.openSession(t, catalogID)

	resp := ts.api.Put("/api/v1/sessions/"+sessionID+"/filters/year", map[string]any{
		"value": "2020",
	})
	require.Equal(t, http.StatusOK, resp.Code)

	var envelope testEnvelope[SessionResponse]
	require.NoError(t, unmarshalBody(resp.Body.Bytes(), &envelope))
	assert.Equal(t, "2020", envelope.Data.Draft.Filters["year"])

	resp = ts.api.Delete("/api/v1/sessions/" + sessionID + "/filters/year")
	require.Equal(t, http.StatusOK, resp.Code)
	envelope = testEnvelope[SessionResponse]{}
	require.NoError(t, unmarshalBody(resp.Body.Bytes(), &envelope))
	assert.NotContains(t, envelope.Data.Draft.Filters, "year")
}

func TestSetFilter_UnknownKey(t *testing.T) {
	ts := setupTestServer(t)
	catalogID := ts.createCatalog(t, "Heist Night", nil)
	sessionID := ts.openSession(t, catalogID)

	resp := ts.api.Put("/api/v1/sessions/"+sessionID+"/filters/with_color", map[string]any{
		"value": "blue",
	})
	assert.Equal(t, http.StatusBadRequest, resp.Code)
}

func TestAddAndRemoveRef(t *testing.T) {
	ts := setupTestServer(t)
	catalogID := ts.createCatalog(t, "Heist Night", nil)
	sessionID := ts.openSession(t, catalogID)

	resp := ts.api.Post("/api/v1/sessions/"+sessionID+"/refs/with_cast", map[string]any{
		"id":    "500",
		"label": "Tom Cruise",
	})
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())

	var envelope testEnvelope[SessionResponse]
	require.NoError(t, unmarshalBody(resp.Body.Bytes(), &envelope))
	require.Len(t, envelope.Data.Refs["with_cast"], 1)
	assert.Equal(t, "Tom Cruise", envelope.Data.Refs["with_cast"][0].Label)
	assert.Equal(t, "500", envelope.Data.Draft.Filters["with_cast"])

	resp = ts.api.Delete("/api/v1/sessions/" + sessionID + "/refs/with_cast/500")
	require.Equal(t, http.StatusOK, resp.Code)
	envelope = testEnvelope[SessionResponse]{}
	require.NoError(t, unmarshalBody(resp.Body.Bytes(), &envelope))
	assert.Empty(t, envelope.Data.Refs["with_cast"])
	assert.NotContains(t, envelope.Data.Draft.Filters, "with_cast")
}

func TestAddRef_RejectsLabelAsID(t *testing.T) {
	ts := setupTestServer(t)
	catalogID := ts.createCatalog(t, "Heist Night", nil)
	sessionID := ts.openSession(t, catalogID)

	resp := ts.api.Post("/api/v1/sessions/"+sessionID+"/refs/with_cast", map[string]any{
		"id": "Tom Cruise",
	})
	assert.Equal(t, http.StatusBadRequest, resp.Code)
}

func TestAddRef_NonReferenceKey(t *testing.T) {
	ts := setupTestServer(t)
	catalogID := ts.createCatalog(t, "Heist Night", nil)
	sessionID := ts.openSession(t, catalogID)

	resp := ts.api.Post("/api/v1/sessions/"+sessionID+"/refs/genres", map[string]any{
		"id": "28",
	})
	assert.Equal(t, http.StatusBadRequest, resp.Code)
}

func TestAdvanceAndClearGenre(t *testing.T) {
	ts := setupTestServer(t)
	catalogID := ts.createCatalog(t, "Heist Night", map[string]string{"genres": "28"})
	sessionID := ts.openSession(t, catalogID)

	resp := ts.api.Post("/api/v1/sessions/" + sessionID + "/genres/35/advance")
	require.Equal(t, http.StatusOK, resp.Code)

	var envelope testEnvelope[SessionResponse]
	require.NoError(t, unmarshalBody(resp.Body.Bytes(), &envelope))
	assert.Equal(t, "28,35", envelope.Data.Draft.Filters["genres"])

	resp = ts.api.Delete("/api/v1/sessions/" + sessionID + "/genres/35")
	require.Equal(t, http.StatusOK, resp.Code)
	envelope = testEnvelope[SessionResponse]{}
	require.NoError(t, unmarshalBody(resp.Body.Bytes(), &envelope))
	assert.Equal(t, "28", envelope.Data.Draft.Filters["genres"])
}

func TestPreviewAndSave(t *testing.T) {
	ts := setupTestServer(t)
	catalogID := ts.createCatalog(t, "Heist Night", map[string]string{"genres": "28,80"})
	sessionID := ts.openSession(t, catalogID)

	ts.press(t, sessionID, "start", "28")
	ts.clk.Add(100 * time.Millisecond)
	ts.press(t, sessionID, "end", "28")

	// Preview reflects the edit without persisting it.
	resp := ts.api.Get("/api/v1/sessions/" + sessionID + "/preview")
	require.Equal(t, http.StatusOK, resp.Code)

	var previewEnvelope testEnvelope[CatalogResponse]
	require.NoError(t, unmarshalBody(resp.Body.Bytes(), &previewEnvelope))
	assert.Equal(t, "80", previewEnvelope.Data.Filters["genres"])

	resp = ts.api.Get("/api/v1/catalogs/" + catalogID)
	require.Equal(t, http.StatusOK, resp.Code)

	var storedEnvelope testEnvelope[CatalogResponse]
	require.NoError(t, unmarshalBody(resp.Body.Bytes(), &storedEnvelope))
	assert.Equal(t, "28,80", storedEnvelope.Data.Filters["genres"])

	// Save flushes immediately.
	resp = ts.api.Post("/api/v1/sessions/" + sessionID + "/save")
	require.Equal(t, http.StatusOK, resp.Code)

	resp = ts.api.Get("/api/v1/catalogs/" + catalogID)
	require.Equal(t, http.StatusOK, resp.Code)
	storedEnvelope = testEnvelope[CatalogResponse]{}
	require.NoError(t, unmarshalBody(resp.Body.Bytes(), &storedEnvelope))
	assert.Equal(t, "80", storedEnvelope.Data.Filters["genres"])
}

func TestCloseSession_DiscardsPending(t *testing.T) {
	ts := setupTestServer(t)
	catalogID := ts.createCatalog(t, "Heist Night", map[string]string{"genres": "28,80"})
	sessionID := ts.openSession(t, catalogID)

	ts.press(t, sessionID, "start", "28")
	ts.clk.Add(100 * time.Millisecond)
	ts.press(t, sessionID, "end", "28")

	resp := ts.api.Delete("/api/v1/sessions/" + sessionID)
	require.Equal(t, http.StatusOK, resp.Code)

	resp = ts.api.Get("/api/v1/sessions/" + sessionID)
	assert.Equal(t, http.StatusNotFound, resp.Code)

	resp = ts.api.Get("/api/v1/catalogs/" + catalogID)
	require.Equal(t, http.StatusOK, resp.Code)

	var envelope testEnvelope[CatalogResponse]
	require.NoError(t, unmarshalBody(resp.Body.Bytes(), &envelope))
	assert.Equal(t, "28,80", envelope.Data.Filters["genres"])
}
