package providers

import (
	"github.com/samber/do/v2"

	"github.com/reelistapp/reelist-server/internal/config"
	"github.com/reelistapp/reelist-server/internal/logger"
	"github.com/reelistapp/reelist-server/internal/service"
	"github.com/reelistapp/reelist-server/internal/tmdb"
)

// TMDBClientHandle wraps the TMDB client with shutdown capability.
type TMDBClientHandle struct {
	*tmdb.Client
}

// Shutdown implements do.Shutdownable.
func (h *TMDBClientHandle) Shutdown() error {
	h.Close()
	return nil
}

// ProvideTMDBClient provides the rate-limited TMDB lookup client.
func ProvideTMDBClient(i do.Injector) (*TMDBClientHandle, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)

	client := tmdb.New(tmdb.Config{
		APIKey:            cfg.TMDB.APIKey,
		BaseURL:           cfg.TMDB.BaseURL,
		RequestsPerSecond: cfg.TMDB.RequestsPerSecond,
		Burst:             cfg.TMDB.Burst,
	}, log.Logger)

	if cfg.TMDB.APIKey == "" {
		log.Warn("No TMDB API key configured - reference lookups will fail")
	}

	return &TMDBClientHandle{Client: client}, nil
}

// ProvideCatalogService provides the catalog CRUD service.
func ProvideCatalogService(i do.Injector) (*service.CatalogService, error) {
	storeHandle := do.MustInvoke[*StoreHandle](i)
	log := do.MustInvoke[*logger.Logger](i)

	return service.NewCatalogService(storeHandle.Store, log.Logger), nil
}

// EditorServiceHandle wraps the editor service with shutdown capability.
type EditorServiceHandle struct {
	*service.EditorService
}

// Shutdown implements do.Shutdownable.
func (h *EditorServiceHandle) Shutdown() error {
	h.EditorService.Shutdown()
	return nil
}

// ProvideEditorService provides the edit session service.
func ProvideEditorService(i do.Injector) (*EditorServiceHandle, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)
	catalogService := do.MustInvoke[*service.CatalogService](i)
	tmdbHandle := do.MustInvoke[*TMDBClientHandle](i)

	editor := service.NewEditorService(catalogService, tmdbHandle.Client, cfg.Editor, nil, log.Logger)
	return &EditorServiceHandle{EditorService: editor}, nil
}
