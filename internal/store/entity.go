package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"iter"
	"strings"

	"github.com/dgraph-io/badger/v4"
)

const (
	uniqueIndexMarker = "idx:"
	listIndexMarker   = "lidx:"
)

// Entity provides generic CRUD operations for any domain type.
//
// Every operation has a transaction-scoped twin (createTx, getTx, ...) so the
// entity stores can compose several writes into one atomic commit.
type Entity[T any] struct {
	store       *Store
	prefix      string
	indexes     []Index[T]
	listIndexes []Index[T]
}

// Index defines a secondary index on an entity.
type Index[T any] struct {
	name            string
	keyGen          func(*T) []string
	lookupTransform func(string) string // Optional transformation for lookups
}

// IndexConflictError reports which unique index rejected a write.
type IndexConflictError struct {
	Index string
	Value string
}

func (e *IndexConflictError) Error() string {
	return fmt.Sprintf("index %s conflict on key %s", e.Index, e.Value)
}

// Unwrap makes index conflicts match ErrAlreadyExists.
func (e *IndexConflictError) Unwrap() error { return ErrAlreadyExists }

// NewEntity creates a new Entity instance for type T.
func NewEntity[T any](s *Store, prefix string) *Entity[T] {
	return &Entity[T]{
		store:  s,
		prefix: prefix,
	}
}

// WithIndexTransform adds a unique secondary index with lookup transformation.
// The lookupTransform function is applied to search values before index lookup,
// enabling case-insensitive searches, normalization, etc.
func (e *Entity[T]) WithIndexTransform(name string, keyGen func(*T) []string, lookupTransform func(string) string) *Entity[T] {
	e.indexes = append(e.indexes, Index[T]{
		name:            name,
		keyGen:          keyGen,
		lookupTransform: lookupTransform,
	})
	return e
}

// WithListIndex adds a non-unique secondary index. Many entities may share a
// value; ListByIndex returns all of them.
func (e *Entity[T]) WithListIndex(name string, keyGen func(*T) []string) *Entity[T] {
	e.listIndexes = append(e.listIndexes, Index[T]{
		name:   name,
		keyGen: keyGen,
	})
	return e
}

// Create creates a new entity with the given ID.
// Returns ErrAlreadyExists if an entity with this ID already exists, or an
// *IndexConflictError if a unique index value is taken. A lost optimistic
// race is reported as ErrTxnConflict.
func (e *Entity[T]) Create(ctx context.Context, id string, entity *T) error {
	return e.store.update(ctx, func(txn *badger.Txn) error {
		return e.createTx(txn, id, entity)
	})
}

func (e *Entity[T]) createTx(txn *badger.Txn, id string, entity *T) error {
	data, err := json.Marshal(entity)
	if err != nil {
		return fmt.Errorf("failed to marshal entity: %w", err)
	}

	exists, err := keyExists(txn, buildKey(e.prefix, id))
	if err != nil {
		return fmt.Errorf("failed to check existing key: %w", err)
	}
	if exists {
		return ErrAlreadyExists
	}

	for _, idx := range e.indexes {
		for _, value := range idx.keyGen(entity) {
			taken, err := keyExists(txn, buildIndexKey(e.prefix, idx.name, value))
			if err != nil {
				return fmt.Errorf("failed to check index key: %w", err)
			}
			if taken {
				return &IndexConflictError{Index: idx.name, Value: value}
			}
		}
	}

	if err := txn.Set([]byte(e.prefix+id), data); err != nil {
		return fmt.Errorf("failed to set key: %w", err)
	}
	return e.setIndexes(txn, id, entity)
}

// Get retrieves an entity by ID.
// Returns ErrNotFound if the entity does not exist.
func (e *Entity[T]) Get(ctx context.Context, id string) (*T, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var entity *T
	err := e.store.db.View(func(txn *badger.Txn) error {
		var err error
		entity, err = e.getTx(txn, id)
		return err
	})
	if err != nil {
		return nil, err
	}
	return entity, nil
}

func (e *Entity[T]) getTx(txn *badger.Txn, id string) (*T, error) {
	key := buildKey(e.prefix, id)
	defer releaseKey(key)

	item, err := txn.Get(key)
	if errors.Is(err, badger.ErrKeyNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get key: %w", err)
	}

	var entity T
	err = item.Value(func(val []byte) error {
		return json.Unmarshal(val, &entity)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to unmarshal entity: %w", err)
	}
	return &entity, nil
}

// GetMany fetches entities by ID in one read transaction, in the order given.
// Missing IDs are skipped.
func (e *Entity[T]) GetMany(ctx context.Context, ids []string) ([]*T, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	out := make([]*T, 0, len(ids))
	err := e.store.db.View(func(txn *badger.Txn) error {
		for _, id := range ids {
			entity, err := e.getTx(txn, id)
			if errors.Is(err, ErrNotFound) {
				continue
			}
			if err != nil {
				return err
			}
			out = append(out, entity)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// GetByIndex retrieves an entity by unique secondary index.
// If the index has a lookup transform, it will be applied to the value before lookup.
func (e *Entity[T]) GetByIndex(ctx context.Context, indexName, value string) (*T, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	for _, idx := range e.indexes {
		if idx.name == indexName && idx.lookupTransform != nil {
			value = idx.lookupTransform(value)
			break
		}
	}

	var entity *T
	err := e.store.db.View(func(txn *badger.Txn) error {
		indexKey := buildIndexKey(e.prefix, indexName, value)
		defer releaseKey(indexKey)

		item, err := txn.Get(indexKey)
		if errors.Is(err, badger.ErrKeyNotFound) {
			return ErrNotFound
		}
		if err != nil {
			return err
		}

		var id string
		if err := item.Value(func(val []byte) error {
			id = string(val)
			return nil
		}); err != nil {
			return err
		}

		entity, err = e.getTx(txn, id)
		return err
	})
	if err != nil {
		return nil, err
	}
	return entity, nil
}

// ListByIndex returns every entity whose list index named indexName has value.
func (e *Entity[T]) ListByIndex(ctx context.Context, indexName, value string) ([]*T, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var out []*T
	err := e.store.db.View(func(txn *badger.Txn) error {
		var err error
		out, err = e.listByIndexTx(txn, indexName, value)
		return err
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (e *Entity[T]) listByIndexTx(txn *badger.Txn, indexName, value string) ([]*T, error) {
	prefix := listIndexPrefix(e.prefix, indexName, value)

	// A read-write transaction allows only one open iterator; collect ids and
	// close it before fetching.
	var ids []string
	opts := badger.DefaultIteratorOptions
	opts.Prefix = prefix
	opts.PrefetchValues = false
	it := txn.NewIterator(opts)
	for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
		id := string(it.Item().Key()[len(prefix):])
		// A value that extends this one ("go" vs "go:x") shares the prefix.
		if strings.Contains(id, ":") {
			continue
		}
		ids = append(ids, id)
	}
	it.Close()

	out := make([]*T, 0, len(ids))
	for _, id := range ids {
		entity, err := e.getTx(txn, id)
		if errors.Is(err, ErrNotFound) {
			continue
		}
		if err != nil {
			return nil, err
		}
		out = append(out, entity)
	}
	return out, nil
}

// updateTx replaces an existing entity, moving its index keys.
// Returns ErrNotFound if the entity does not exist.
func (e *Entity[T]) updateTx(txn *badger.Txn, id string, entity *T) error {
	data, err := json.Marshal(entity)
	if err != nil {
		return fmt.Errorf("failed to marshal entity: %w", err)
	}

	old, err := e.getTx(txn, id)
	if err != nil {
		return err
	}

	// Check new unique values, ignoring ones the entity already owns.
	for _, idx := range e.indexes {
		owned := make(map[string]bool)
		for _, v := range idx.keyGen(old) {
			owned[v] = true
		}
		for _, v := range idx.keyGen(entity) {
			if owned[v] {
				continue
			}
			taken, err := keyExists(txn, buildIndexKey(e.prefix, idx.name, v))
			if err != nil {
				return fmt.Errorf("failed to check index key: %w", err)
			}
			if taken {
				return &IndexConflictError{Index: idx.name, Value: v}
			}
		}
	}

	if err := e.deleteIndexes(txn, id, old); err != nil {
		return err
	}
	if err := txn.Set([]byte(e.prefix+id), data); err != nil {
		return fmt.Errorf("failed to set key: %w", err)
	}
	return e.setIndexes(txn, id, entity)
}

// List returns an iterator over all entities.
func (e *Entity[T]) List(ctx context.Context) iter.Seq2[*T, error] {
	return func(yield func(*T, error) bool) {
		err := e.store.db.View(func(txn *badger.Txn) error {
			prefix := []byte(e.prefix)
			opts := badger.DefaultIteratorOptions
			opts.Prefix = prefix
			opts.PrefetchValues = true

			it := txn.NewIterator(opts)
			defer it.Close()

			for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
				if err := ctx.Err(); err != nil {
					return err
				}

				remainder := string(it.Item().Key()[len(prefix):])
				if strings.HasPrefix(remainder, uniqueIndexMarker) || strings.HasPrefix(remainder, listIndexMarker) {
					continue
				}

				var entity T
				err := it.Item().Value(func(val []byte) error {
					return json.Unmarshal(val, &entity)
				})
				if err != nil {
					return fmt.Errorf("failed to unmarshal entity: %w", err)
				}

				if !yield(&entity, nil) {
					return errStopIteration
				}
			}
			return nil
		})
		if err != nil && !errors.Is(err, errStopIteration) {
			yield(nil, err)
		}
	}
}

// Collect drains List into a slice.
func (e *Entity[T]) Collect(ctx context.Context) ([]*T, error) {
	var out []*T
	for entity, err := range e.List(ctx) {
		if err != nil {
			return nil, err
		}
		out = append(out, entity)
	}
	return out, nil
}

var errStopIteration = errors.New("iteration stopped")

func (e *Entity[T]) setIndexes(txn *badger.Txn, id string, entity *T) error {
	for _, idx := range e.indexes {
		for _, v := range idx.keyGen(entity) {
			if err := txn.Set([]byte(e.prefix+uniqueIndexMarker+idx.name+":"+v), []byte(id)); err != nil {
				return fmt.Errorf("failed to set index key: %w", err)
			}
		}
	}
	for _, idx := range e.listIndexes {
		for _, v := range idx.keyGen(entity) {
			if err := txn.Set([]byte(e.prefix+listIndexMarker+idx.name+":"+v+":"+id), nil); err != nil {
				return fmt.Errorf("failed to set list index key: %w", err)
			}
		}
	}
	return nil
}

func (e *Entity[T]) deleteIndexes(txn *badger.Txn, id string, entity *T) error {
	for _, idx := range e.indexes {
		for _, v := range idx.keyGen(entity) {
			if err := txn.Delete([]byte(e.prefix + uniqueIndexMarker + idx.name + ":" + v)); err != nil {
				return fmt.Errorf("failed to delete index key: %w", err)
			}
		}
	}
	for _, idx := range e.listIndexes {
		for _, v := range idx.keyGen(entity) {
			if err := txn.Delete([]byte(e.prefix + listIndexMarker + idx.name + ":" + v + ":" + id)); err != nil {
				return fmt.Errorf("failed to delete list index key: %w", err)
			}
		}
	}
	return nil
}

// keyExists reports whether key is present, releasing the pooled key.
func keyExists(txn *badger.Txn, key []byte) (bool, error) {
	defer releaseKey(key)
	_, err := txn.Get(key)
	if err == nil {
		return true, nil
	}
	if errors.Is(err, badger.ErrKeyNotFound) {
		return false, nil
	}
	return false, err
}
