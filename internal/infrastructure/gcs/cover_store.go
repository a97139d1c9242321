package gcs

import (
	"context"
	"io"
	"path"
	"path/filepath"
	"strings"

	"cloud.google.com/go/storage"
	"github.com/google/uuid"

	"github.com/oksasatya/go-event-finder/pkg/helpers"
)

// CoverStore uploads event cover images into a GCS bucket.
type CoverStore struct {
	client *storage.Client
	bucket string
}

func NewCoverStore(client *storage.Client, bucket string) *CoverStore {
	return &CoverStore{client: client, bucket: bucket}
}

// ObjectPath names a fresh object under events/<id>/ keeping the file extension.
func ObjectPath(eventID, filename string) string {
	ext := strings.ToLower(filepath.Ext(filename))
	return path.Join("events", eventID, uuid.NewString()+ext)
}

func (s *CoverStore) PutCover(ctx context.Context, eventID, filename, contentType string, r io.Reader) (string, error) {
	return helpers.UploadObject(ctx, s.client, s.bucket, ObjectPath(eventID, filename), contentType, r)
}
