package file

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"path"
	"sort"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/abduss/docshelf/internal/apperr"
	"github.com/abduss/docshelf/internal/blob"
	"github.com/abduss/docshelf/internal/filename"
	"github.com/abduss/docshelf/internal/folder"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	defaultMaxFileSize = 10 * 1024 * 1024 // 10MiB
	maxNameLength      = 255
)

type catalog interface {
	Insert(ctx context.Context, rec Record) error
	FindByID(ctx context.Context, id uuid.UUID) (Record, error)
	FindByOriginalName(ctx context.Context, name string) (Record, error)
	List(ctx context.Context, filter ListFilter) ([]Record, error)
	UpdateDisplayName(ctx context.Context, id uuid.UUID, name string) error
	UpdateFolder(ctx context.Context, id uuid.UUID, folderID *uuid.UUID) error
	Delete(ctx context.Context, id uuid.UUID) error
	DeleteAll(ctx context.Context) error
}

// FolderLookup resolves folder ids when strict folder references are on.
type FolderLookup interface {
	GetFolder(ctx context.Context, id uuid.UUID) (folder.Folder, error)
}

// Recorder receives store events for metrics.
type Recorder interface {
	UploadCompleted(fileType string)
	UploadFailed(fileType, kind string)
	Replaced()
	OrphanBlob()
	BlobRemovalFailed()
}

// Options tunes a Service. Zero values pick the defaults.
type Options struct {
	MaxFileSize int64
	// StrictFolderRefs rejects uploads and moves naming an unknown folder.
	// Requires Folders.
	StrictFolderRefs bool
	Folders          FolderLookup
	Recorder         Recorder
}

// Service keeps blobs and catalog rows consistent across every document
// operation. Each operation runs its blob step and catalog step in sequence;
// there is no shared transaction. Steps are ordered so an interruption leaves
// a catalog row without a blob (visible, fixed by retrying) rather than an
// unreferenced blob.
type Service struct {
	repo        catalog
	blobs       blob.Store
	folders     FolderLookup
	metrics     Recorder
	log         *zap.Logger
	maxFileSize int64
	strict      bool
	now         func() time.Time
}

// NewService constructs a file service.
func NewService(repo catalog, blobs blob.Store, log *zap.Logger, opts Options) *Service {
	if log == nil {
		log = zap.NewNop()
	}
	s := &Service{
		repo:        repo,
		blobs:       blobs,
		folders:     opts.Folders,
		metrics:     opts.Recorder,
		log:         log,
		maxFileSize: opts.MaxFileSize,
		strict:      opts.StrictFolderRefs && opts.Folders != nil,
		now:         time.Now,
	}
	if s.maxFileSize <= 0 {
		s.maxFileSize = defaultMaxFileSize
	}
	if s.metrics == nil {
		s.metrics = nopRecorder{}
	}
	return s
}

// MaxFileSize is the upload limit in bytes.
func (s *Service) MaxFileSize() int64 {
	return s.maxFileSize
}

// UploadInput is one document as received from the transport.
type UploadInput struct {
	// Filename is the client-supplied name, possibly mis-encoded.
	Filename string
	Content  []byte
	FolderID *uuid.UUID
}

// Upload validates, decodes the filename, replaces any record with the same
// case-insensitive name, then writes the blob and commits the new record.
func (s *Service) Upload(ctx context.Context, in UploadInput) (Record, error) {
	rec, err := s.upload(ctx, in)
	if err != nil {
		fileType, ok := TypeFromName(in.Filename)
		if !ok {
			fileType = "unknown"
		}
		s.metrics.UploadFailed(string(fileType), string(apperr.KindOf(err)))
		return Record{}, err
	}
	s.metrics.UploadCompleted(string(rec.Type))
	return rec, nil
}

func (s *Service) upload(ctx context.Context, in UploadInput) (Record, error) {
	fileType, ok := TypeFromName(in.Filename)
	if !ok {
		return Record{}, ErrUnsupportedType
	}
	if int64(len(in.Content)) > s.maxFileSize {
		return Record{}, ErrFileTooLarge
	}

	name := filename.Decode(baseName(in.Filename))

	if err := s.checkFolder(ctx, in.FolderID); err != nil {
		return Record{}, err
	}

	if err := s.replaceExisting(ctx, name); err != nil {
		return Record{}, err
	}

	blobPath, err := s.blobs.Put(ctx, bytes.NewReader(in.Content), name)
	if err != nil {
		return Record{}, blobError("store blob", err)
	}

	rec := Record{
		ID:           uuid.New(),
		StoredName:   path.Base(blobPath),
		OriginalName: name,
		DisplayName:  name,
		SizeBytes:    int64(len(in.Content)),
		Type:         fileType,
		UploadedAt:   s.now().UTC().Truncate(time.Microsecond),
		BlobPath:     blobPath,
		FolderID:     in.FolderID,
	}

	if err := s.repo.Insert(ctx, rec); err != nil {
		s.discardUncommittedBlob(ctx, blobPath, err)
		return Record{}, err
	}

	s.log.Info("file uploaded",
		zap.String("file_id", rec.ID.String()),
		zap.String("name", rec.OriginalName),
		zap.String("type", string(rec.Type)),
		zap.Int64("size", rec.SizeBytes),
	)
	return rec, nil
}

// replaceExisting drops the blob and row of a previous upload with the same
// name. The new upload does not inherit its id, timestamp or display name.
func (s *Service) replaceExisting(ctx context.Context, name string) error {
	existing, err := s.repo.FindByOriginalName(ctx, name)
	if errors.Is(err, ErrFileNotFound) {
		return nil
	}
	if err != nil {
		return err
	}

	if err := s.blobs.Remove(ctx, existing.BlobPath); err != nil {
		return blobError("remove replaced blob", err)
	}
	if err := s.repo.Delete(ctx, existing.ID); err != nil && !errors.Is(err, ErrFileNotFound) {
		return err
	}

	s.metrics.Replaced()
	s.log.Info("replacing file with same name",
		zap.String("replaced_id", existing.ID.String()),
		zap.String("name", name),
	)
	return nil
}

// discardUncommittedBlob removes a blob whose record failed to insert. When
// that also fails the blob is an orphan and is reported for manual cleanup.
func (s *Service) discardUncommittedBlob(ctx context.Context, blobPath string, cause error) {
	err := s.blobs.Remove(ctx, blobPath)
	if err == nil {
		return
	}
	s.metrics.OrphanBlob()
	s.log.Warn("orphan blob left after failed catalog insert",
		zap.String("kind", string(apperr.KindOrphanBlob)),
		zap.String("blob_path", blobPath),
		zap.NamedError("insert_error", cause),
		zap.NamedError("cleanup_error", err),
	)
}

// Get returns a record with its bytes.
func (s *Service) Get(ctx context.Context, id uuid.UUID) (Content, error) {
	rec, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return Content{}, err
	}

	data, err := s.blobs.Get(ctx, rec.BlobPath)
	if err != nil {
		if errors.Is(err, blob.ErrNotFound) {
			s.log.Warn("catalog row has no blob",
				zap.String("file_id", rec.ID.String()),
				zap.String("blob_path", rec.BlobPath),
			)
		}
		return Content{}, blobError("load file "+rec.ID.String(), err)
	}
	return Content{Record: rec, Data: data}, nil
}

// List returns records newest first.
func (s *Service) List(ctx context.Context, filter ListFilter) ([]Record, error) {
	return s.repo.List(ctx, filter)
}

// ListByFolder returns the records in a folder, newest first.
func (s *Service) ListByFolder(ctx context.Context, folderID uuid.UUID) ([]Record, error) {
	return s.repo.List(ctx, ListFilter{FolderID: &folderID})
}

// Delete removes the blob, then the row.
func (s *Service) Delete(ctx context.Context, id uuid.UUID) error {
	rec, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return err
	}

	if err := s.blobs.Remove(ctx, rec.BlobPath); err != nil {
		return blobError("remove blob", err)
	}
	if err := s.repo.Delete(ctx, rec.ID); err != nil {
		return err
	}

	s.log.Info("file deleted", zap.String("file_id", rec.ID.String()))
	return nil
}

// ClearAll removes every blob it can, then every row in one statement. Blob
// failures are logged and skipped so the catalog always ends up empty.
func (s *Service) ClearAll(ctx context.Context) error {
	records, err := s.repo.List(ctx, ListFilter{})
	if err != nil {
		return err
	}

	failed := 0
	for _, rec := range records {
		if err := s.blobs.Remove(ctx, rec.BlobPath); err != nil {
			failed++
			s.metrics.BlobRemovalFailed()
			s.log.Warn("clear all: blob removal failed",
				zap.String("file_id", rec.ID.String()),
				zap.String("blob_path", rec.BlobPath),
				zap.Error(err),
			)
		}
	}

	if err := s.repo.DeleteAll(ctx); err != nil {
		return err
	}

	s.log.Info("all files cleared",
		zap.Int("records", len(records)),
		zap.Int("blob_failures", failed),
	)
	return nil
}

// Rename changes the display name. The original name, and with it duplicate
// detection, is untouched.
func (s *Service) Rename(ctx context.Context, id uuid.UUID, name string) error {
	name = strings.TrimSpace(name)
	if name == "" || utf8.RuneCountInString(name) > maxNameLength {
		return ErrInvalidName
	}
	return s.repo.UpdateDisplayName(ctx, id, name)
}

// Move sets or clears the folder reference.
func (s *Service) Move(ctx context.Context, id uuid.UUID, folderID *uuid.UUID) error {
	if err := s.checkFolder(ctx, folderID); err != nil {
		return err
	}
	return s.repo.UpdateFolder(ctx, id, folderID)
}

// CheckConsistency compares stored blobs with catalog rows. It changes nothing.
func (s *Service) CheckConsistency(ctx context.Context) (ConsistencyReport, error) {
	blobPaths, err := s.blobs.List(ctx)
	if err != nil {
		return ConsistencyReport{}, blobError("list blobs", err)
	}
	records, err := s.repo.List(ctx, ListFilter{})
	if err != nil {
		return ConsistencyReport{}, err
	}

	onDisk := make(map[string]struct{}, len(blobPaths))
	for _, p := range blobPaths {
		onDisk[p] = struct{}{}
	}
	referenced := make(map[string]struct{}, len(records))

	report := ConsistencyReport{
		CheckedAt:    s.now().UTC(),
		BlobCount:    len(blobPaths),
		RecordCount:  len(records),
		OrphanBlobs:  []string{},
		DanglingRows: []uuid.UUID{},
	}
	for _, rec := range records {
		referenced[rec.BlobPath] = struct{}{}
		if _, ok := onDisk[rec.BlobPath]; !ok {
			report.DanglingRows = append(report.DanglingRows, rec.ID)
		}
	}
	for _, p := range blobPaths {
		if _, ok := referenced[p]; !ok {
			report.OrphanBlobs = append(report.OrphanBlobs, p)
		}
	}
	sort.Strings(report.OrphanBlobs)

	if !report.Consistent() {
		s.log.Warn("catalog and blob store disagree",
			zap.Int("orphan_blobs", len(report.OrphanBlobs)),
			zap.Int("dangling_rows", len(report.DanglingRows)),
		)
	}
	return report, nil
}

func (s *Service) checkFolder(ctx context.Context, folderID *uuid.UUID) error {
	if !s.strict || folderID == nil {
		return nil
	}
	_, err := s.folders.GetFolder(ctx, *folderID)
	return err
}

// blobError keeps the kind a blob store assigned and files anything
// unkinded under STORAGE_WRITE_ERROR.
func blobError(op string, err error) error {
	if apperr.KindOf(err) == apperr.KindInternal {
		return apperr.Wrap(apperr.KindStorageWrite, op, err)
	}
	return fmt.Errorf("%s: %w", op, err)
}

// baseName strips any client-side directory and surrounding whitespace.
func baseName(name string) string {
	name = strings.TrimSpace(name)
	if i := strings.LastIndexAny(name, `/\`); i >= 0 {
		name = name[i+1:]
	}
	return name
}

type nopRecorder struct{}

func (nopRecorder) UploadCompleted(string)      {}
func (nopRecorder) UploadFailed(string, string) {}
func (nopRecorder) Replaced()                   {}
func (nopRecorder) OrphanBlob()                 {}
func (nopRecorder) BlobRemovalFailed()          {}
