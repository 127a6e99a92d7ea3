package file_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/abduss/docshelf/internal/apperr"
	"github.com/abduss/docshelf/internal/file"
	"github.com/abduss/docshelf/internal/storage/storagetest"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newRecord(name string, at time.Time) file.Record {
	fileType, _ := file.TypeFromName(name)
	return file.Record{
		ID:           uuid.New(),
		StoredName:   "blob_" + name,
		OriginalName: name,
		DisplayName:  name,
		SizeBytes:    42,
		Type:         fileType,
		UploadedAt:   at.UTC().Truncate(time.Microsecond),
		BlobPath:     "blob_" + name,
	}
}

func TestRepositoryLifecycle(t *testing.T) {
	pool := storagetest.NewPostgres(t)
	repo := file.NewRepository(pool)
	ctx := context.Background()
	now := time.Now()

	first := newRecord("Alpha.md", now.Add(-time.Minute))
	second := newRecord("beta.pdf", now)
	require.NoError(t, repo.Insert(ctx, first))
	require.NoError(t, repo.Insert(ctx, second))

	got, err := repo.FindByID(ctx, first.ID)
	require.NoError(t, err)
	got.UploadedAt = got.UploadedAt.UTC()
	assert.Equal(t, first, got)

	byName, err := repo.FindByOriginalName(ctx, "ALPHA.MD")
	require.NoError(t, err)
	assert.Equal(t, first.ID, byName.ID)

	list, err := repo.List(ctx, file.ListFilter{})
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, second.ID, list[0].ID, "newest first")

	require.NoError(t, repo.UpdateDisplayName(ctx, first.ID, "Renamed 100%"))
	matched, err := repo.List(ctx, file.ListFilter{Query: "100%"})
	require.NoError(t, err)
	require.Len(t, matched, 1)
	assert.Equal(t, first.ID, matched[0].ID)

	folderID := uuid.New()
	require.NoError(t, repo.UpdateFolder(ctx, second.ID, &folderID))
	inFolder, err := repo.ListByFolder(ctx, folderID)
	require.NoError(t, err)
	require.Len(t, inFolder, 1)

	objects, err := repo.ListObjectsForFolder(ctx, folderID)
	require.NoError(t, err)
	require.Len(t, objects, 1)
	assert.Equal(t, second.BlobPath, objects[0].BlobPath)

	require.NoError(t, repo.DeleteByIDs(ctx, []uuid.UUID{objects[0].ID}))
	_, err = repo.FindByID(ctx, second.ID)
	assert.True(t, errors.Is(err, file.ErrFileNotFound))

	require.NoError(t, repo.Delete(ctx, first.ID))
	assert.True(t, errors.Is(repo.Delete(ctx, first.ID), file.ErrFileNotFound))
}

func TestRepositoryRejectsDuplicateNameKey(t *testing.T) {
	pool := storagetest.NewPostgres(t)
	repo := file.NewRepository(pool)
	ctx := context.Background()

	require.NoError(t, repo.Insert(ctx, newRecord("report.pdf", time.Now())))
	err := repo.Insert(ctx, newRecord("REPORT.pdf", time.Now()))
	assert.Equal(t, apperr.KindCatalog, apperr.KindOf(err))

	require.NoError(t, repo.DeleteAll(ctx))
	list, err := repo.List(ctx, file.ListFilter{})
	require.NoError(t, err)
	assert.Empty(t, list)
}
