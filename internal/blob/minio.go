package blob

import (
	"context"
	"fmt"
	"io"
	"mime"
	"path"
	"time"

	"github.com/abduss/docshelf/internal/apperr"
	"github.com/minio/minio-go/v7"
)

// objectClient is the subset of *minio.Client used by MinIOStore.
type objectClient interface {
	PutObject(ctx context.Context, bucketName, objectName string, reader io.Reader, objectSize int64, opts minio.PutObjectOptions) (minio.UploadInfo, error)
	GetObject(ctx context.Context, bucketName, objectName string, opts minio.GetObjectOptions) (*minio.Object, error)
	RemoveObject(ctx context.Context, bucketName, objectName string, opts minio.RemoveObjectOptions) error
	ListObjects(ctx context.Context, bucketName string, opts minio.ListObjectsOptions) <-chan minio.ObjectInfo
}

// MinIOStore keeps blobs as objects in a single MinIO bucket.
type MinIOStore struct {
	client objectClient
	bucket string
	now    func() time.Time
}

// NewMinIOStore constructs an adapter over client for bucket.
func NewMinIOStore(client *minio.Client, bucket string) *MinIOStore {
	return &MinIOStore{client: client, bucket: bucket, now: time.Now}
}

func (s *MinIOStore) Put(ctx context.Context, r io.Reader, suggestedName string) (string, error) {
	name := newBlobName(suggestedName, s.now())

	size := int64(-1)
	if sized, ok := r.(interface{ Len() int }); ok {
		size = int64(sized.Len())
	}

	opts := minio.PutObjectOptions{ContentType: contentType(suggestedName)}
	if _, err := s.client.PutObject(ctx, s.bucket, name, r, size, opts); err != nil {
		return "", apperr.Wrap(apperr.KindStorageWrite, "put object", err)
	}
	return name, nil
}

func (s *MinIOStore) Get(ctx context.Context, blobPath string) ([]byte, error) {
	if !validPath(blobPath) {
		return nil, ErrInvalidPath
	}
	obj, err := s.client.GetObject(ctx, s.bucket, blobPath, minio.GetObjectOptions{})
	if err != nil {
		return nil, translateMinIOError("get object", blobPath, err)
	}
	defer obj.Close()

	data, err := io.ReadAll(obj)
	if err != nil {
		return nil, translateMinIOError("read object", blobPath, err)
	}
	return data, nil
}

func (s *MinIOStore) Remove(ctx context.Context, blobPath string) error {
	if !validPath(blobPath) {
		return ErrInvalidPath
	}
	err := s.client.RemoveObject(ctx, s.bucket, blobPath, minio.RemoveObjectOptions{})
	if err != nil && !isNoSuchKey(err) {
		return apperr.Wrap(apperr.KindStorageWrite, "remove object "+blobPath, err)
	}
	return nil
}

func (s *MinIOStore) List(ctx context.Context) ([]string, error) {
	var names []string
	for obj := range s.client.ListObjects(ctx, s.bucket, minio.ListObjectsOptions{}) {
		if obj.Err != nil {
			return nil, apperr.Wrap(apperr.KindStorageWrite, "list objects", obj.Err)
		}
		names = append(names, obj.Key)
	}
	return names, nil
}

func translateMinIOError(op, blobPath string, err error) error {
	if isNoSuchKey(err) {
		return fmt.Errorf("%s %s: %w", op, blobPath, ErrNotFound)
	}
	return apperr.Wrap(apperr.KindStorageWrite, op+" "+blobPath, err)
}

func isNoSuchKey(err error) bool {
	return minio.ToErrorResponse(err).Code == "NoSuchKey"
}

func contentType(name string) string {
	if ct := mime.TypeByExtension(path.Ext(name)); ct != "" {
		return ct
	}
	return "application/octet-stream"
}
