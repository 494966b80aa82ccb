package store

import (
	"context"
	"encoding/json/v2"
	"errors"
	"fmt"
	"iter"
	"strings"

	"github.com/dgraph-io/badger/v4"

	domainerrors "github.com/reelistapp/reelist-server/internal/errors"
)

// Entity is a typed collection of JSON documents under one key prefix, with
// optional unique secondary indexes.
type Entity[T any] struct {
	store   *Store
	prefix  string
	indexes []index[T]
}

type index[T any] struct {
	name      string
	keys      func(*T) []string
	transform func(string) string // applied to lookup values, nil for exact match
}

// NewEntity creates a collection for type T under the given key prefix.
func NewEntity[T any](s *Store, prefix string) *Entity[T] {
	return &Entity[T]{store: s, prefix: prefix}
}

// WithIndex adds a unique secondary index. keys derives the index values from
// a document; transform normalizes lookup values (nil for exact match) and
// must match whatever normalization keys applies.
func (e *Entity[T]) WithIndex(name string, keys func(*T) []string, transform func(string) string) *Entity[T] {
	e.indexes = append(e.indexes, index[T]{name: name, keys: keys, transform: transform})
	return e
}

func (e *Entity[T]) indexKey(name, value string) []byte {
	return []byte(e.prefix + "idx:" + name + ":" + value)
}

// checkIndexConflicts fails with ErrAlreadyExists when any index value is
// already claimed. skip holds values owned by the document being updated.
func (e *Entity[T]) checkIndexConflicts(txn *badger.Txn, entity *T, skip map[string]bool) error {
	for _, idx := range e.indexes {
		for _, value := range idx.keys(entity) {
			if skip[idx.name+":"+value] {
				continue
			}
			_, err := txn.Get(e.indexKey(idx.name, value))
			if err == nil {
				return fmt.Errorf("index %s conflict on key %s: %w", idx.name, value, domainerrors.ErrAlreadyExists)
			}
			if !errors.Is(err, badger.ErrKeyNotFound) {
				return fmt.Errorf("failed to check index key: %w", err)
			}
		}
	}
	return nil
}

func (e *Entity[T]) writeIndexKeys(txn *badger.Txn, entity *T, id string) error {
	for _, idx := range e.indexes {
		for _, value := range idx.keys(entity) {
			if err := txn.Set(e.indexKey(idx.name, value), []byte(id)); err != nil {
				return fmt.Errorf("failed to set index key: %w", err)
			}
		}
	}
	return nil
}

func (e *Entity[T]) deleteIndexKeys(txn *badger.Txn, entity *T) error {
	for _, idx := range e.indexes {
		for _, value := range idx.keys(entity) {
			if err := txn.Delete(e.indexKey(idx.name, value)); err != nil {
				return fmt.Errorf("failed to delete index key: %w", err)
			}
		}
	}
	return nil
}

func decodeItem[T any](item *badger.Item, into *T) error {
	return item.Value(func(val []byte) error {
		if err := json.Unmarshal(val, into); err != nil {
			return fmt.Errorf("failed to unmarshal entity: %w", err)
		}
		return nil
	})
}

// Create stores a new document. Returns ErrAlreadyExists when the id or any
// index value is taken.
func (e *Entity[T]) Create(ctx context.Context, id string, entity *T) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	key := []byte(e.prefix + id)
	data, err := json.Marshal(entity)
	if err != nil {
		return fmt.Errorf("failed to marshal entity: %w", err)
	}

	return e.store.db.Update(func(txn *badger.Txn) error {
		_, err := txn.Get(key)
		if err == nil {
			return domainerrors.ErrAlreadyExists
		}
		if !errors.Is(err, badger.ErrKeyNotFound) {
			return fmt.Errorf("failed to check existing key: %w", err)
		}

		if err := e.checkIndexConflicts(txn, entity, nil); err != nil {
			return err
		}
		if err := txn.Set(key, data); err != nil {
			return fmt.Errorf("failed to set key: %w", err)
		}
		return e.writeIndexKeys(txn, entity, id)
	})
}

// Get retrieves a document by id. Returns ErrNotFound when absent.
func (e *Entity[T]) Get(ctx context.Context, id string) (*T, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var entity T
	err := e.store.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(e.prefix + id))
		if errors.Is(err, badger.ErrKeyNotFound) {
			return domainerrors.ErrNotFound
		}
		if err != nil {
			return fmt.Errorf("failed to get key: %w", err)
		}
		return decodeItem(item, &entity)
	})
	if err != nil {
		return nil, err
	}
	return &entity, nil
}

// GetByIndex retrieves a document through a secondary index. The index's
// transform, when set, normalizes the lookup value first.
func (e *Entity[T]) GetByIndex(ctx context.Context, indexName, value string) (*T, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	for _, idx := range e.indexes {
		if idx.name == indexName && idx.transform != nil {
			value = idx.transform(value)
			break
		}
	}

	var id string
	err := e.store.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(e.indexKey(indexName, value))
		if errors.Is(err, badger.ErrKeyNotFound) {
			return domainerrors.ErrNotFound
		}
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			id = string(val)
			return nil
		})
	})
	if err != nil {
		return nil, err
	}

	return e.Get(ctx, id)
}

// Update replaces an existing document and reconciles its index entries.
// Returns ErrNotFound when absent.
func (e *Entity[T]) Update(ctx context.Context, id string, entity *T) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	key := []byte(e.prefix + id)
	data, err := json.Marshal(entity)
	if err != nil {
		return fmt.Errorf("failed to marshal entity: %w", err)
	}

	return e.store.db.Update(func(txn *badger.Txn) error {
		var old T
		item, err := txn.Get(key)
		if errors.Is(err, badger.ErrKeyNotFound) {
			return domainerrors.ErrNotFound
		}
		if err != nil {
			return fmt.Errorf("failed to get existing key: %w", err)
		}
		if err := decodeItem(item, &old); err != nil {
			return err
		}

		if err := e.deleteIndexKeys(txn, &old); err != nil {
			return err
		}

		// Values the old document held are free for the new one to reuse.
		owned := make(map[string]bool)
		for _, idx := range e.indexes {
			for _, value := range idx.keys(&old) {
				owned[idx.name+":"+value] = true
			}
		}
		if err := e.checkIndexConflicts(txn, entity, owned); err != nil {
			return err
		}

		if err := txn.Set(key, data); err != nil {
			return fmt.Errorf("failed to set key: %w", err)
		}
		return e.writeIndexKeys(txn, entity, id)
	})
}

// Delete removes a document and its index entries. Deleting an absent id is
// not an error.
func (e *Entity[T]) Delete(ctx context.Context, id string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	return e.store.db.Update(func(txn *badger.Txn) error {
		var entity T
		key := []byte(e.prefix + id)
		item, err := txn.Get(key)
		if errors.Is(err, badger.ErrKeyNotFound) {
			return nil
		}
		if err != nil {
			return fmt.Errorf("failed to get key: %w", err)
		}
		if err := decodeItem(item, &entity); err != nil {
			return err
		}

		if err := e.deleteIndexKeys(txn, &entity); err != nil {
			return err
		}
		if err := txn.Delete(key); err != nil {
			return fmt.Errorf("failed to delete key: %w", err)
		}
		return nil
	})
}

// List returns an iterator over all documents in the collection.
func (e *Entity[T]) List(ctx context.Context) iter.Seq2[*T, error] {
	return func(yield func(*T, error) bool) {
		e.store.db.View(func(txn *badger.Txn) error {
			opts := badger.DefaultIteratorOptions
			opts.Prefix = []byte(e.prefix)
			opts.PrefetchValues = true

			it := txn.NewIterator(opts)
			defer it.Close()

			for it.Seek([]byte(e.prefix)); it.ValidForPrefix([]byte(e.prefix)); it.Next() {
				if ctx.Err() != nil {
					yield(nil, ctx.Err())
					return ctx.Err()
				}

				if strings.HasPrefix(string(it.Item().Key())[len(e.prefix):], "idx:") {
					continue
				}

				var entity T
				if err := it.Item().Value(func(val []byte) error {
					return json.Unmarshal(val, &entity)
				}); err != nil {
					yield(nil, err)
					return err
				}
				if !yield(&entity, nil) {
					return nil
				}
			}
			return nil
		})
	}
}
