package folder

import (
	"context"
	"errors"
	"time"

	"github.com/abduss/docshelf/internal/apperr"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const repositoryTimeout = 5 * time.Second

// Repository allows access to folder persistence.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a folder repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// Create inserts a new folder.
func (r *Repository) Create(ctx context.Context, name string) (Folder, error) {
	ctx, cancel := context.WithTimeout(ctx, repositoryTimeout)
	defer cancel()

	query := `
INSERT INTO folders (id, name)
VALUES ($1, $2)
RETURNING id, name, created_at;`

	var f Folder
	if err := r.pool.QueryRow(ctx, query, uuid.New(), name).Scan(&f.ID, &f.Name, &f.CreatedAt); err != nil {
		return Folder{}, apperr.Wrap(apperr.KindCatalog, "create folder", err)
	}
	return f, nil
}

// List returns all folders, oldest first.
func (r *Repository) List(ctx context.Context) ([]Folder, error) {
	ctx, cancel := context.WithTimeout(ctx, repositoryTimeout)
	defer cancel()

	rows, err := r.pool.Query(ctx, `SELECT id, name, created_at FROM folders ORDER BY created_at ASC, name ASC;`)
	if err != nil {
		return nil, apperr.Wrap(apperr.KindCatalog, "list folders", err)
	}
	defer rows.Close()

	folders := []Folder{}
	for rows.Next() {
		var f Folder
		if err := rows.Scan(&f.ID, &f.Name, &f.CreatedAt); err != nil {
			return nil, apperr.Wrap(apperr.KindCatalog, "scan folder", err)
		}
		folders = append(folders, f)
	}
	if err := rows.Err(); err != nil {
		return nil, apperr.Wrap(apperr.KindCatalog, "iterate folders", err)
	}
	return folders, nil
}

// Get fetches a single folder.
func (r *Repository) Get(ctx context.Context, id uuid.UUID) (Folder, error) {
	ctx, cancel := context.WithTimeout(ctx, repositoryTimeout)
	defer cancel()

	var f Folder
	err := r.pool.QueryRow(ctx, `SELECT id, name, created_at FROM folders WHERE id = $1;`, id).
		Scan(&f.ID, &f.Name, &f.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Folder{}, ErrFolderNotFound
		}
		return Folder{}, apperr.Wrap(apperr.KindCatalog, "get folder", err)
	}
	return f, nil
}

// Rename updates the folder name.
func (r *Repository) Rename(ctx context.Context, id uuid.UUID, name string) error {
	ctx, cancel := context.WithTimeout(ctx, repositoryTimeout)
	defer cancel()

	tag, err := r.pool.Exec(ctx, `UPDATE folders SET name = $2 WHERE id = $1;`, id, name)
	if err != nil {
		return apperr.Wrap(apperr.KindCatalog, "rename folder", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrFolderNotFound
	}
	return nil
}

// Delete removes the folder row only; callers cascade files first.
func (r *Repository) Delete(ctx context.Context, id uuid.UUID) error {
	ctx, cancel := context.WithTimeout(ctx, repositoryTimeout)
	defer cancel()

	tag, err := r.pool.Exec(ctx, `DELETE FROM folders WHERE id = $1;`, id)
	if err != nil {
		return apperr.Wrap(apperr.KindCatalog, "delete folder", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrFolderNotFound
	}
	return nil
}
