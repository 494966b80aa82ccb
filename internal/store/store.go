// Package store persists catalog documents in a Badger database.
package store

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/dgraph-io/badger/v4"

	"github.com/reelistapp/reelist-server/internal/domain"
)

// Store wraps a Badger database instance.
type Store struct {
	db     *badger.DB
	logger *slog.Logger

	// Generic entities
	Catalogs *Entity[domain.Catalog]
}

// New creates a new Store instance with the given database path.
func New(path string, logger *slog.Logger) (*Store, error) {
	opts := badger.DefaultOptions(path)
	opts.Logger = nil            // Disable Badger's internal logging
	opts.SyncWrites = true       // Ensure writes are synced to disk to prevent corruption on crashes
	opts.CompactL0OnClose = true // Compact L0 tables on close for faster startup

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("failed to open badger db: %w", err)
	}

	store := &Store{
		db:     db,
		logger: logger,
	}

	// Initialize generic entities
	store.initCatalogs()

	if logger != nil {
		logger.Info("Badger database opened successfully", "path", path)
	}

	return store, nil
}

// Close gracefully closes the database connection.
func (s *Store) Close() error {
	if s.logger != nil {
		s.logger.Info("Closing database connection")
	}
	return s.db.Close()
}

// initCatalogs initializes the Catalogs entity on the store.
// Catalog names are unique per store, case-insensitively.
func (s *Store) initCatalogs() {
	s.Catalogs = NewEntity[domain.Catalog](s, "catalog:").
		WithIndex("name",
			func(c *domain.Catalog) []string {
				return []string{normalizeName(c.Name)}
			},
			normalizeName,
		)
}

// normalizeName folds a catalog name for index storage and lookup.
func normalizeName(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}
