package folder_test

import (
	"context"
	"errors"
	"testing"

	"github.com/abduss/docshelf/internal/folder"
	"github.com/abduss/docshelf/internal/storage/storagetest"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFolderRepository(t *testing.T) {
	pool := storagetest.NewPostgres(t)
	repo := folder.NewRepository(pool)
	ctx := context.Background()

	created, err := repo.Create(ctx, "Reports")
	require.NoError(t, err)
	assert.Equal(t, "Reports", created.Name)
	assert.False(t, created.CreatedAt.IsZero())

	require.NoError(t, repo.Rename(ctx, created.ID, "Archive"))
	got, err := repo.Get(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, "Archive", got.Name)

	list, err := repo.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 1)

	require.NoError(t, repo.Delete(ctx, created.ID))
	_, err = repo.Get(ctx, created.ID)
	assert.True(t, errors.Is(err, folder.ErrFolderNotFound))
	assert.True(t, errors.Is(repo.Rename(ctx, uuid.New(), "x"), folder.ErrFolderNotFound))
}
