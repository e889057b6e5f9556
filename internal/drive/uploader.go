package drive

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/minio/minio-go/v7"
	"github.com/warit/linedrive/internal/classify"
	"github.com/warit/linedrive/internal/config"
)

// UploadResult identifies a stored object and its public view link.
type UploadResult struct {
	ID   string
	Link string
}

type objectStore interface {
	PutObject(ctx context.Context, bucketName, objectName string, reader *bytes.Reader, objectSize int64, opts minio.PutObjectOptions) (minio.UploadInfo, error)
}

// Uploader stores relayed files in the object bucket, routed into a folder
// per category. The bucket is made publicly readable at startup, so the
// returned link needs no signing.
type Uploader struct {
	store         objectStore
	bucket        string
	publicBaseURL string
	folders       map[classify.FileType]string
}

// NewUploader constructs a storage gateway over the given object store.
// publicBaseURL should be the externally reachable endpoint of the store,
// without a trailing slash.
func NewUploader(store objectStore, bucket, publicBaseURL string, cfg config.DriveConfig) *Uploader {
	return &Uploader{
		store:         store,
		bucket:        bucket,
		publicBaseURL: strings.TrimRight(publicBaseURL, "/"),
		folders: map[classify.FileType]string{
			classify.TypeImage: cfg.ImagesFolder,
			classify.TypeVideo: cfg.VideosFolder,
			classify.TypePDF:   cfg.DocumentsFolder,
			classify.TypeWord:  cfg.DocumentsFolder,
			classify.TypeExcel: cfg.DocumentsFolder,
			classify.TypeOther: cfg.OthersFolder,
		},
	}
}

// Upload stores data under the category's folder and returns the object key
// and public link. There are no retries; a transport failure surfaces to the
// caller unchanged.
func (u *Uploader) Upload(ctx context.Context, fileName, contentType string, fileType classify.FileType, data []byte) (UploadResult, error) {
	folder := u.folders[fileType]
	if folder == "" {
		return UploadResult{}, fmt.Errorf("no destination folder configured for file type %q", fileType)
	}

	objectName := fmt.Sprintf("%s/%s_%s", folder, uuid.NewString(), fileName)

	opts := minio.PutObjectOptions{ContentType: contentType}
	if _, err := u.store.PutObject(ctx, u.bucket, objectName, bytes.NewReader(data), int64(len(data)), opts); err != nil {
		return UploadResult{}, fmt.Errorf("store object %q: %w", objectName, err)
	}

	return UploadResult{
		ID:   objectName,
		Link: fmt.Sprintf("%s/%s/%s", u.publicBaseURL, u.bucket, objectName),
	}, nil
}
