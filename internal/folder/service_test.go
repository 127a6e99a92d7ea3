package folder

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/abduss/docshelf/internal/apperr"
	"github.com/abduss/docshelf/internal/blob"
	"github.com/google/uuid"
)

func TestCreateAndListFolders(t *testing.T) {
	repo := newFakeRepo()
	service := NewService(repo, &fakeFileIndex{}, &fakeBlobs{}, nil)

	created, err := service.CreateFolder(context.Background(), "  Reports  ")
	if err != nil {
		t.Fatalf("CreateFolder returned error: %v", err)
	}
	if created.Name != "Reports" {
		t.Fatalf("expected trimmed name, got %q", created.Name)
	}

	folders, err := service.ListFolders(context.Background())
	if err != nil {
		t.Fatalf("ListFolders returned error: %v", err)
	}
	if len(folders) != 1 {
		t.Fatalf("expected 1 folder, got %d", len(folders))
	}
}

func TestCreateFolderRejectsBlankName(t *testing.T) {
	service := NewService(newFakeRepo(), &fakeFileIndex{}, &fakeBlobs{}, nil)

	_, err := service.CreateFolder(context.Background(), "   ")
	if !errors.Is(err, ErrInvalidName) {
		t.Fatalf("expected ErrInvalidName, got %v", err)
	}
	if apperr.KindOf(err) != apperr.KindInvalidArgument {
		t.Fatalf("expected INVALID_ARGUMENT, got %s", apperr.KindOf(err))
	}
}

func TestRenameFolder(t *testing.T) {
	repo := newFakeRepo()
	service := NewService(repo, &fakeFileIndex{}, &fakeBlobs{}, nil)

	f, _ := service.CreateFolder(context.Background(), "old")
	if err := service.RenameFolder(context.Background(), f.ID, "new"); err != nil {
		t.Fatalf("RenameFolder returned error: %v", err)
	}
	if repo.folders[f.ID].Name != "new" {
		t.Fatalf("expected rename to persist")
	}
	if err := service.RenameFolder(context.Background(), uuid.New(), "x"); !errors.Is(err, ErrFolderNotFound) {
		t.Fatalf("expected ErrFolderNotFound, got %v", err)
	}
}

func TestDeleteFolderCascadesBlobsThenRowsThenFolder(t *testing.T) {
	repo := newFakeRepo()
	var calls []string
	files := &fakeFileIndex{
		objects: []FileObject{{ID: uuid.New(), BlobPath: "a.md"}, {ID: uuid.New(), BlobPath: "b.pdf"}},
		calls:   &calls,
	}
	blobs := &fakeBlobs{calls: &calls}
	repo.calls = &calls
	service := NewService(repo, files, blobs, nil)

	f, _ := service.CreateFolder(context.Background(), "temp")
	calls = nil

	if err := service.DeleteFolder(context.Background(), f.ID); err != nil {
		t.Fatalf("DeleteFolder returned error: %v", err)
	}

	want := []string{"remove a.md", "remove b.pdf", "delete files", "delete folder"}
	if len(calls) != len(want) {
		t.Fatalf("unexpected call sequence %v", calls)
	}
	for i := range want {
		if calls[i] != want[i] {
			t.Fatalf("call %d = %q, want %q (all: %v)", i, calls[i], want[i], calls)
		}
	}
	if _, ok := repo.folders[f.ID]; ok {
		t.Fatalf("expected folder row removed")
	}
}

func TestDeleteFolderKeepsFolderWhenFileRowsFail(t *testing.T) {
	repo := newFakeRepo()
	files := &fakeFileIndex{
		objects:   []FileObject{{ID: uuid.New(), BlobPath: "a.md"}},
		deleteErr: apperr.Wrap(apperr.KindCatalog, "delete files", errors.New("db down")),
	}
	service := NewService(repo, files, &fakeBlobs{}, nil)

	f, _ := service.CreateFolder(context.Background(), "keep")
	err := service.DeleteFolder(context.Background(), f.ID)
	if apperr.KindOf(err) != apperr.KindCatalog {
		t.Fatalf("expected CATALOG_ERROR, got %v", err)
	}
	if _, ok := repo.folders[f.ID]; !ok {
		t.Fatalf("folder row must survive a failed cascade")
	}
}

func TestDeleteFolderPicksUpFilesAddedDuringCascade(t *testing.T) {
	repo := newFakeRepo()
	var calls []string
	late := FileObject{ID: uuid.New(), BlobPath: "late.md"}
	files := &fakeFileIndex{
		objects:  []FileObject{{ID: uuid.New(), BlobPath: "early.md"}},
		arrivals: []FileObject{late},
		calls:    &calls,
	}
	service := NewService(repo, files, &fakeBlobs{calls: &calls}, nil)

	f, _ := service.CreateFolder(context.Background(), "busy")
	if err := service.DeleteFolder(context.Background(), f.ID); err != nil {
		t.Fatalf("DeleteFolder returned error: %v", err)
	}

	want := []string{"remove early.md", "delete files", "remove late.md", "delete files"}
	if len(calls) != len(want) {
		t.Fatalf("unexpected call sequence %v", calls)
	}
	for i := range want {
		if calls[i] != want[i] {
			t.Fatalf("call %d = %q, want %q (all: %v)", i, calls[i], want[i], calls)
		}
	}
	if len(files.objects) != 0 {
		t.Fatalf("expected no file rows left, got %v", files.objects)
	}
}

func TestDeleteFolderLeavesNoBlobsOnDisk(t *testing.T) {
	store, err := blob.NewDiskStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewDiskStore returned error: %v", err)
	}

	files := &fakeFileIndex{}
	for _, name := range []string{"a.md", "b.pdf", "c.md"} {
		blobPath, err := store.Put(context.Background(), strings.NewReader(name), name)
		if err != nil {
			t.Fatalf("Put returned error: %v", err)
		}
		files.objects = append(files.objects, FileObject{ID: uuid.New(), BlobPath: blobPath})
	}
	unrelated, err := store.Put(context.Background(), strings.NewReader("keep"), "keep.md")
	if err != nil {
		t.Fatalf("Put returned error: %v", err)
	}

	repo := newFakeRepo()
	service := NewService(repo, files, store, nil)
	f, _ := service.CreateFolder(context.Background(), "docs")

	if err := service.DeleteFolder(context.Background(), f.ID); err != nil {
		t.Fatalf("DeleteFolder returned error: %v", err)
	}

	left, err := store.List(context.Background())
	if err != nil {
		t.Fatalf("List returned error: %v", err)
	}
	if len(left) != 1 || left[0] != unrelated {
		t.Fatalf("expected only the unrelated blob left, got %v", left)
	}
	if _, ok := repo.folders[f.ID]; ok {
		t.Fatalf("expected folder row removed")
	}
}

func TestDeleteFolderUnknown(t *testing.T) {
	service := NewService(newFakeRepo(), &fakeFileIndex{}, &fakeBlobs{}, nil)

	if err := service.DeleteFolder(context.Background(), uuid.New()); !errors.Is(err, ErrFolderNotFound) {
		t.Fatalf("expected ErrFolderNotFound, got %v", err)
	}
}

// --- fakes ---

type fakeRepo struct {
	folders map[uuid.UUID]Folder
	calls   *[]string
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{folders: make(map[uuid.UUID]Folder)}
}

func (f *fakeRepo) Create(ctx context.Context, name string) (Folder, error) {
	folder := Folder{ID: uuid.New(), Name: name, CreatedAt: time.Now()}
	f.folders[folder.ID] = folder
	return folder, nil
}

func (f *fakeRepo) List(ctx context.Context) ([]Folder, error) {
	var out []Folder
	for _, folder := range f.folders {
		out = append(out, folder)
	}
	return out, nil
}

func (f *fakeRepo) Get(ctx context.Context, id uuid.UUID) (Folder, error) {
	folder, ok := f.folders[id]
	if !ok {
		return Folder{}, ErrFolderNotFound
	}
	return folder, nil
}

func (f *fakeRepo) Rename(ctx context.Context, id uuid.UUID, name string) error {
	folder, ok := f.folders[id]
	if !ok {
		return ErrFolderNotFound
	}
	folder.Name = name
	f.folders[id] = folder
	return nil
}

func (f *fakeRepo) Delete(ctx context.Context, id uuid.UUID) error {
	if _, ok := f.folders[id]; !ok {
		return ErrFolderNotFound
	}
	delete(f.folders, id)
	if f.calls != nil {
		*f.calls = append(*f.calls, "delete folder")
	}
	return nil
}

type fakeFileIndex struct {
	objects   []FileObject
	deleteErr error
	calls     *[]string
	// arrivals are added to the folder after the first delete, as if moved in.
	arrivals []FileObject
}

func (f *fakeFileIndex) ListObjectsForFolder(ctx context.Context, folderID uuid.UUID) ([]FileObject, error) {
	return append([]FileObject(nil), f.objects...), nil
}

func (f *fakeFileIndex) DeleteByIDs(ctx context.Context, ids []uuid.UUID) error {
	if f.deleteErr != nil {
		return f.deleteErr
	}
	drop := make(map[uuid.UUID]bool, len(ids))
	for _, id := range ids {
		drop[id] = true
	}
	kept := f.objects[:0]
	for _, obj := range f.objects {
		if !drop[obj.ID] {
			kept = append(kept, obj)
		}
	}
	f.objects = append(kept, f.arrivals...)
	f.arrivals = nil
	if f.calls != nil {
		*f.calls = append(*f.calls, "delete files")
	}
	return nil
}

type fakeBlobs struct {
	calls *[]string
}

func (f *fakeBlobs) Remove(ctx context.Context, blobPath string) error {
	if f.calls != nil {
		*f.calls = append(*f.calls, "remove "+blobPath)
	}
	return nil
}
