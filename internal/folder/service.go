package folder

import (
	"context"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

const maxNameLength = 255

// FileIndex exposes the documents stored in a folder so a delete can cascade.
type FileIndex interface {
	ListObjectsForFolder(ctx context.Context, folderID uuid.UUID) ([]FileObject, error)
	DeleteByIDs(ctx context.Context, ids []uuid.UUID) error
}

// BlobRemover deletes stored bytes; removing a missing blob must succeed.
type BlobRemover interface {
	Remove(ctx context.Context, blobPath string) error
}

type repository interface {
	Create(ctx context.Context, name string) (Folder, error)
	List(ctx context.Context) ([]Folder, error)
	Get(ctx context.Context, id uuid.UUID) (Folder, error)
	Rename(ctx context.Context, id uuid.UUID, name string) error
	Delete(ctx context.Context, id uuid.UUID) error
}

// Service orchestrates folder operations.
type Service struct {
	repo  repository
	files FileIndex
	blobs BlobRemover
	log   *zap.Logger
}

// NewService constructs a folder service.
func NewService(repo repository, files FileIndex, blobs BlobRemover, log *zap.Logger) *Service {
	if log == nil {
		log = zap.NewNop()
	}
	return &Service{
		repo:  repo,
		files: files,
		blobs: blobs,
		log:   log,
	}
}

// CreateFolder creates a folder with a trimmed, non-empty name.
func (s *Service) CreateFolder(ctx context.Context, name string) (Folder, error) {
	name, err := normalizeName(name)
	if err != nil {
		return Folder{}, err
	}
	return s.repo.Create(ctx, name)
}

// ListFolders returns all folders.
func (s *Service) ListFolders(ctx context.Context) ([]Folder, error) {
	return s.repo.List(ctx)
}

// GetFolder returns a single folder or ErrFolderNotFound.
func (s *Service) GetFolder(ctx context.Context, id uuid.UUID) (Folder, error) {
	return s.repo.Get(ctx, id)
}

// RenameFolder changes the folder label.
func (s *Service) RenameFolder(ctx context.Context, id uuid.UUID, name string) error {
	name, err := normalizeName(name)
	if err != nil {
		return err
	}
	return s.repo.Rename(ctx, id, name)
}

// DeleteFolder removes the folder's blobs, then its file rows, then the
// folder row. Only rows whose blobs were removed are deleted; files that
// land in the folder meanwhile are picked up by the next pass. Any failure
// stops the cascade before the folder row goes, so a retry can pick up
// where it left off.
func (s *Service) DeleteFolder(ctx context.Context, id uuid.UUID) error {
	if _, err := s.repo.Get(ctx, id); err != nil {
		return err
	}

	removed := 0
	for {
		objects, err := s.files.ListObjectsForFolder(ctx, id)
		if err != nil {
			return fmt.Errorf("list folder files: %w", err)
		}
		if len(objects) == 0 {
			break
		}

		ids := make([]uuid.UUID, 0, len(objects))
		for _, obj := range objects {
			if err := s.blobs.Remove(ctx, obj.BlobPath); err != nil {
				return fmt.Errorf("remove blob of file %s: %w", obj.ID, err)
			}
			ids = append(ids, obj.ID)
		}

		if err := s.files.DeleteByIDs(ctx, ids); err != nil {
			return fmt.Errorf("delete folder files: %w", err)
		}
		removed += len(ids)
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}

	s.log.Info("folder deleted",
		zap.String("folder_id", id.String()),
		zap.Int("files_removed", removed),
	)
	return nil
}

func normalizeName(name string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" || utf8.RuneCountInString(name) > maxNameLength {
		return "", ErrInvalidName
	}
	return name, nil
}
