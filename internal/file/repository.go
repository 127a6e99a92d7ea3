package file

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/abduss/docshelf/internal/apperr"
	"github.com/abduss/docshelf/internal/folder"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

const repoTimeout = 5 * time.Second

const recordColumns = `id, stored_name, original_name, display_name, size_bytes, file_type, blob_path, folder_id, uploaded_at`

// Repository is the PostgreSQL-backed catalog of file records.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository builds a new file repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// Insert stores a new record. The lowercased original name goes into the
// unique original_name_key column.
func (r *Repository) Insert(ctx context.Context, rec Record) error {
	ctx, cancel := context.WithTimeout(ctx, repoTimeout)
	defer cancel()

	query := `
INSERT INTO files (id, stored_name, original_name, original_name_key, display_name, size_bytes, file_type, blob_path, folder_id, uploaded_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10);`

	_, err := r.pool.Exec(ctx, query,
		rec.ID,
		rec.StoredName,
		rec.OriginalName,
		NameKey(rec.OriginalName),
		rec.DisplayName,
		rec.SizeBytes,
		string(rec.Type),
		rec.BlobPath,
		rec.FolderID,
		rec.UploadedAt,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" && pgErr.ConstraintName == "files_pkey" {
			return ErrDuplicateID
		}
		return apperr.Wrap(apperr.KindCatalog, "insert file", err)
	}
	return nil
}

// FindByID fetches a single record.
func (r *Repository) FindByID(ctx context.Context, id uuid.UUID) (Record, error) {
	ctx, cancel := context.WithTimeout(ctx, repoTimeout)
	defer cancel()

	row := r.pool.QueryRow(ctx, `SELECT `+recordColumns+` FROM files WHERE id = $1;`, id)
	rec, err := scanRecord(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Record{}, ErrFileNotFound
		}
		return Record{}, apperr.Wrap(apperr.KindCatalog, "find file", err)
	}
	return rec, nil
}

// FindByOriginalName looks a record up by case-insensitive original name.
func (r *Repository) FindByOriginalName(ctx context.Context, name string) (Record, error) {
	ctx, cancel := context.WithTimeout(ctx, repoTimeout)
	defer cancel()

	row := r.pool.QueryRow(ctx, `SELECT `+recordColumns+` FROM files WHERE original_name_key = $1;`, NameKey(name))
	rec, err := scanRecord(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Record{}, ErrFileNotFound
		}
		return Record{}, apperr.Wrap(apperr.KindCatalog, "find file by name", err)
	}
	return rec, nil
}

// List returns records newest first, narrowed by filter.
func (r *Repository) List(ctx context.Context, filter ListFilter) ([]Record, error) {
	ctx, cancel := context.WithTimeout(ctx, repoTimeout)
	defer cancel()

	var (
		conds []string
		args  []any
	)
	if q := strings.TrimSpace(filter.Query); q != "" {
		args = append(args, "%"+likeEscaper.Replace(q)+"%")
		conds = append(conds, fmt.Sprintf("(display_name ILIKE $%d OR original_name ILIKE $%d)", len(args), len(args)))
	}
	if filter.FolderID != nil {
		args = append(args, *filter.FolderID)
		conds = append(conds, fmt.Sprintf("folder_id = $%d", len(args)))
	}

	query := `SELECT ` + recordColumns + ` FROM files`
	if len(conds) > 0 {
		query += ` WHERE ` + strings.Join(conds, " AND ")
	}
	query += ` ORDER BY uploaded_at DESC, id;`

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, apperr.Wrap(apperr.KindCatalog, "list files", err)
	}
	defer rows.Close()

	records := []Record{}
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, apperr.Wrap(apperr.KindCatalog, "scan file", err)
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, apperr.Wrap(apperr.KindCatalog, "iterate files", err)
	}
	return records, nil
}

// ListByFolder returns the records in a folder, newest first.
func (r *Repository) ListByFolder(ctx context.Context, folderID uuid.UUID) ([]Record, error) {
	return r.List(ctx, ListFilter{FolderID: &folderID})
}

// UpdateDisplayName changes the user-facing label only.
func (r *Repository) UpdateDisplayName(ctx context.Context, id uuid.UUID, name string) error {
	ctx, cancel := context.WithTimeout(ctx, repoTimeout)
	defer cancel()

	tag, err := r.pool.Exec(ctx, `UPDATE files SET display_name = $2 WHERE id = $1;`, id, name)
	if err != nil {
		return apperr.Wrap(apperr.KindCatalog, "rename file", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrFileNotFound
	}
	return nil
}

// UpdateFolder sets or clears the folder reference.
func (r *Repository) UpdateFolder(ctx context.Context, id uuid.UUID, folderID *uuid.UUID) error {
	ctx, cancel := context.WithTimeout(ctx, repoTimeout)
	defer cancel()

	tag, err := r.pool.Exec(ctx, `UPDATE files SET folder_id = $2 WHERE id = $1;`, id, folderID)
	if err != nil {
		return apperr.Wrap(apperr.KindCatalog, "move file", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrFileNotFound
	}
	return nil
}

// Delete removes a single row.
func (r *Repository) Delete(ctx context.Context, id uuid.UUID) error {
	ctx, cancel := context.WithTimeout(ctx, repoTimeout)
	defer cancel()

	tag, err := r.pool.Exec(ctx, `DELETE FROM files WHERE id = $1;`, id)
	if err != nil {
		return apperr.Wrap(apperr.KindCatalog, "delete file", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrFileNotFound
	}
	return nil
}

// DeleteAll removes every row in one statement.
func (r *Repository) DeleteAll(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, repoTimeout)
	defer cancel()

	if _, err := r.pool.Exec(ctx, `DELETE FROM files;`); err != nil {
		return apperr.Wrap(apperr.KindCatalog, "delete all files", err)
	}
	return nil
}

// DeleteByIDs removes the given rows in one statement.
func (r *Repository) DeleteByIDs(ctx context.Context, ids []uuid.UUID) error {
	if len(ids) == 0 {
		return nil
	}
	ctx, cancel := context.WithTimeout(ctx, repoTimeout)
	defer cancel()

	if _, err := r.pool.Exec(ctx, `DELETE FROM files WHERE id = ANY($1);`, ids); err != nil {
		return apperr.Wrap(apperr.KindCatalog, "delete files by id", err)
	}
	return nil
}

// ListObjectsForFolder returns blob paths for a folder cascade.
func (r *Repository) ListObjectsForFolder(ctx context.Context, folderID uuid.UUID) ([]folder.FileObject, error) {
	ctx, cancel := context.WithTimeout(ctx, repoTimeout)
	defer cancel()

	rows, err := r.pool.Query(ctx, `SELECT id, blob_path FROM files WHERE folder_id = $1;`, folderID)
	if err != nil {
		return nil, apperr.Wrap(apperr.KindCatalog, "list objects for folder", err)
	}
	defer rows.Close()

	var objects []folder.FileObject
	for rows.Next() {
		var obj folder.FileObject
		if err := rows.Scan(&obj.ID, &obj.BlobPath); err != nil {
			return nil, apperr.Wrap(apperr.KindCatalog, "scan object", err)
		}
		objects = append(objects, obj)
	}
	if err := rows.Err(); err != nil {
		return nil, apperr.Wrap(apperr.KindCatalog, "iterate objects", err)
	}
	return objects, nil
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func scanRecord(row pgx.Row) (Record, error) {
	var (
		rec      Record
		fileType string
	)
	err := row.Scan(
		&rec.ID,
		&rec.StoredName,
		&rec.OriginalName,
		&rec.DisplayName,
		&rec.SizeBytes,
		&fileType,
		&rec.BlobPath,
		&rec.FolderID,
		&rec.UploadedAt,
	)
	if err != nil {
		return Record{}, err
	}
	rec.Type = Type(fileType)
	return rec, nil
}
