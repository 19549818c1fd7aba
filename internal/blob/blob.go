// Package blob wraps the object store collaborator. Buckets are publicly
// readable; writes go through the authenticated backend only.
package blob

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/google/uuid"
)

// Store uploads blobs and composes their public URLs.
type Store interface {
	Upload(ctx context.Context, bucket, key string, body io.Reader, contentType string) (string, error)
	PublicURL(bucket, key string) string
}

// AudioKey returns a time-stamp-derived object key for a recording.
func AudioKey() string {
	return fmt.Sprintf("audio/%d.webm", time.Now().UnixMilli())
}

// ImageKey returns a time-stamp-derived object key for an image. ext must
// include the leading dot.
func ImageKey(ext string) string {
	return fmt.Sprintf("images/%d-%s%s", time.Now().UnixMilli(), uuid.NewString(), ext)
}

// MetadataKey returns the object key for a souvenir's token metadata JSON.
func MetadataKey(souvenirID string) string {
	return fmt.Sprintf("metadata/%s.json", souvenirID)
}
