package filestore

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"contact-intake-api/models"
	"contact-intake-api/store"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) *SubmissionStore {
	t.Helper()
	s, err := NewSubmissionStore(filepath.Join(t.TempDir(), "submissions"))
	require.NoError(t, err)
	return s
}

func sampleSubmission(id string) models.Submission {
	return models.Submission{
		ID:             id,
		SubmissionDate: time.Date(2024, 3, 1, 10, 30, 0, 0, time.UTC),
		Status:         models.StatusPending,
		Fields: map[string]any{
			"nombre":   "Ana Pérez",
			"telefono": "555-0101",
		},
	}
}

func TestSubmissionStore_CreateAndGet(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.Create(ctx, sampleSubmission("ana_perez-1")))

	got, err := s.Get(ctx, "ana_perez-1")
	require.NoError(t, err)
	assert.Equal(t, "ana_perez-1", got.ID)
	assert.Equal(t, models.StatusPending, got.Status)
	assert.Equal(t, "Ana Pérez", got.FieldString("nombre"))
	assert.True(t, got.SubmissionDate.Equal(time.Date(2024, 3, 1, 10, 30, 0, 0, time.UTC)))
	assert.Nil(t, got.UpdatedAt)
}

func TestSubmissionStore_CreateDuplicate(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.Create(ctx, sampleSubmission("dup")))

	second := sampleSubmission("dup")
	second.Fields["nombre"] = "Someone Else"
	err := s.Create(ctx, second)
	assert.ErrorIs(t, err, store.ErrAlreadyExists)

	got, err := s.Get(ctx, "dup")
	require.NoError(t, err)
	assert.Equal(t, "Ana Pérez", got.FieldString("nombre"), "existing record must be untouched")
}

func TestSubmissionStore_CreateLeavesNoTempFiles(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.Create(ctx, sampleSubmission("a")))
	_ = s.Create(ctx, sampleSubmission("a"))

	entries, err := os.ReadDir(s.Dir())
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "a.json", entries[0].Name())
}

func TestSubmissionStore_CreateRejectsUnsafeID(t *testing.T) {
	s := newTestStore(t)

	for _, id := range []string{"", "../escape", "nested/id", ".hidden"} {
		err := s.Create(context.Background(), sampleSubmission(id))
		assert.ErrorIs(t, err, store.ErrInvalidID, "id %q", id)
	}
}

func TestSubmissionStore_GetMissing(t *testing.T) {
	s := newTestStore(t)

	_, err := s.Get(context.Background(), "nope")
	assert.ErrorIs(t, err, store.ErrNotFound)

	_, err = s.Get(context.Background(), "../admin")
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestSubmissionStore_GetUsesFileNameWhenIDMissing(t *testing.T) {
	s := newTestStore(t)
	legacy := `{"nombre":"Luis","telefono":"555","status":"Pendiente"}`
	require.NoError(t, os.WriteFile(filepath.Join(s.Dir(), "luis-legacy.json"), []byte(legacy), 0o644))

	got, err := s.Get(context.Background(), "luis-legacy")
	require.NoError(t, err)
	assert.Equal(t, "luis-legacy", got.ID)
	assert.Equal(t, models.StatusPending, got.Status.Canonical())
}

func TestSubmissionStore_List(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.Create(ctx, sampleSubmission("one")))
	require.NoError(t, s.Create(ctx, sampleSubmission("two")))
	require.NoError(t, os.WriteFile(filepath.Join(s.Dir(), "notes.txt"), []byte("ignore me"), 0o644))
	require.NoError(t, os.Mkdir(filepath.Join(s.Dir(), "archive.json"), 0o755))

	subs, err := s.List(ctx)
	require.NoError(t, err)
	require.Len(t, subs, 2)

	ids := []string{subs[0].ID, subs[1].ID}
	assert.ElementsMatch(t, []string{"one", "two"}, ids)
}

func TestSubmissionStore_ListCorruptFile(t *testing.T) {
	s := newTestStore(t)
	require.NoError(t, os.WriteFile(filepath.Join(s.Dir(), "bad.json"), []byte("{not json"), 0o644))

	_, err := s.List(context.Background())
	var storageErr *store.StorageError
	assert.ErrorAs(t, err, &storageErr)
}

func TestSubmissionStore_Put(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	sub := sampleSubmission("p")
	require.NoError(t, s.Create(ctx, sub))

	now := time.Date(2024, 3, 2, 8, 0, 0, 0, time.UTC)
	sub.Status = models.StatusCompleted
	sub.UpdatedAt = &now
	require.NoError(t, s.Put(ctx, sub))

	got, err := s.Get(ctx, "p")
	require.NoError(t, err)
	assert.Equal(t, models.StatusCompleted, got.Status)
	require.NotNil(t, got.UpdatedAt)
	assert.True(t, got.UpdatedAt.Equal(now))
}

func TestSubmissionStore_PutMissing(t *testing.T) {
	s := newTestStore(t)

	err := s.Put(context.Background(), sampleSubmission("ghost"))
	assert.ErrorIs(t, err, store.ErrNotFound)

	_, err = os.Stat(filepath.Join(s.Dir(), "ghost.json"))
	assert.True(t, os.IsNotExist(err), "Put must not create records")
}

func TestSubmissionStore_Delete(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.Create(ctx, sampleSubmission("d")))
	require.NoError(t, s.Delete(ctx, "d"))

	_, err := s.Get(ctx, "d")
	assert.ErrorIs(t, err, store.ErrNotFound)

	assert.ErrorIs(t, s.Delete(ctx, "d"), store.ErrNotFound)
}
