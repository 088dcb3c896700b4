package store_test

import (
	"context"
	"errors"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stackit/stackit-server/internal/store"
)

type testEntity struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
	Group string `json:"group"`
}

func newTestStore(t *testing.T) *store.Store {
	t.Helper()

	s, err := store.New(filepath.Join(t.TempDir(), "db"), nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })

	return s
}

func newTestEntity(s *store.Store) *store.Entity[testEntity] {
	return store.NewEntity[testEntity](s, "test:").
		WithIndexTransform("email",
			func(e *testEntity) []string {
				return []string{strings.ToLower(e.Email)}
			},
			strings.ToLower,
		).
		WithListIndex("group", func(e *testEntity) []string {
			if e.Group == "" {
				return nil
			}
			return []string{e.Group}
		})
}

func TestEntity_CreateAndGet(t *testing.T) {
	s := newTestStore(t)
	entity := newTestEntity(s)
	ctx := context.Background()

	in := &testEntity{ID: "1", Name: "Ada", Email: "ada@example.com"}
	require.NoError(t, entity.Create(ctx, "1", in))

	got, err := entity.Get(ctx, "1")
	require.NoError(t, err)
	assert.Equal(t, in, got)
}

func TestEntity_Create_AlreadyExists(t *testing.T) {
	s := newTestStore(t)
	entity := newTestEntity(s)
	ctx := context.Background()

	require.NoError(t, entity.Create(ctx, "1", &testEntity{ID: "1", Email: "a@example.com"}))

	err := entity.Create(ctx, "1", &testEntity{ID: "1", Email: "b@example.com"})
	assert.ErrorIs(t, err, store.ErrAlreadyExists)
}

func TestEntity_Create_IndexConflict(t *testing.T) {
	s := newTestStore(t)
	entity := newTestEntity(s)
	ctx := context.Background()

	require.NoError(t, entity.Create(ctx, "1", &testEntity{ID: "1", Email: "same@example.com"}))

	err := entity.Create(ctx, "2", &testEntity{ID: "2", Email: "same@example.com"})
	var conflict *store.IndexConflictError
	require.True(t, errors.As(err, &conflict))
	assert.Equal(t, "email", conflict.Index)
	assert.ErrorIs(t, err, store.ErrAlreadyExists)

	_, err = entity.Get(ctx, "2")
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestEntity_Get_NotFound(t *testing.T) {
	s := newTestStore(t)
	entity := newTestEntity(s)

	_, err := entity.Get(context.Background(), "missing")
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestEntity_GetByIndex(t *testing.T) {
	s := newTestStore(t)
	entity := newTestEntity(s)
	ctx := context.Background()

	require.NoError(t, entity.Create(ctx, "1", &testEntity{ID: "1", Email: "ada@example.com"}))

	got, err := entity.GetByIndex(ctx, "email", "ada@example.com")
	require.NoError(t, err)
	assert.Equal(t, "1", got.ID)

	got, err = entity.GetByIndex(ctx, "email", "ADA@Example.com")
	require.NoError(t, err)
	assert.Equal(t, "1", got.ID)

	_, err = entity.GetByIndex(ctx, "email", "nobody@example.com")
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestEntity_ListByIndex_DoesNotLeakIntoLongerValues(t *testing.T) {
	s := newTestStore(t)
	entity := newTestEntity(s)
	ctx := context.Background()

	require.NoError(t, entity.Create(ctx, "1", &testEntity{ID: "1", Email: "1@x", Group: "go"}))
	require.NoError(t, entity.Create(ctx, "2", &testEntity{ID: "2", Email: "2@x", Group: "go:generics"}))
	require.NoError(t, entity.Create(ctx, "3", &testEntity{ID: "3", Email: "3@x", Group: "golang"}))

	members, err := entity.ListByIndex(ctx, "group", "go")
	require.NoError(t, err)
	require.Len(t, members, 1)
	assert.Equal(t, "1", members[0].ID)
}

func TestEntity_List_SkipsIndexKeys(t *testing.T) {
	s := newTestStore(t)
	entity := newTestEntity(s)
	ctx := context.Background()

	for _, id := range []string{"1", "2", "3"} {
		require.NoError(t, entity.Create(ctx, id, &testEntity{ID: id, Email: id + "@example.com", Group: "g"}))
	}

	seen := 0
	for e, err := range entity.List(ctx) {
		require.NoError(t, err)
		assert.NotEmpty(t, e.ID)
		seen++
	}
	assert.Equal(t, 3, seen)
}

func TestEntity_List_StopsEarly(t *testing.T) {
	s := newTestStore(t)
	entity := newTestEntity(s)
	ctx := context.Background()

	for _, id := range []string{"1", "2", "3"} {
		require.NoError(t, entity.Create(ctx, id, &testEntity{ID: id, Email: id + "@example.com"}))
	}

	seen := 0
	for _, err := range entity.List(ctx) {
		require.NoError(t, err)
		seen++
		if seen == 2 {
			break
		}
	}
	assert.Equal(t, 2, seen)
}

func TestEntity_GetMany_SkipsMissing(t *testing.T) {
	s := newTestStore(t)
	entity := newTestEntity(s)
	ctx := context.Background()

	require.NoError(t, entity.Create(ctx, "1", &testEntity{ID: "1", Email: "1@x"}))
	require.NoError(t, entity.Create(ctx, "2", &testEntity{ID: "2", Email: "2@x"}))

	got, err := entity.GetMany(ctx, []string{"2", "missing", "1"})
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "2", got[0].ID)
	assert.Equal(t, "1", got[1].ID)
}

func TestEntity_CancelledContext(t *testing.T) {
	s := newTestStore(t)
	entity := newTestEntity(s)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := entity.Create(ctx, "1", &testEntity{ID: "1"})
	assert.ErrorIs(t, err, context.Canceled)

	_, err = entity.Get(ctx, "1")
	assert.ErrorIs(t, err, context.Canceled)
}
