/*
Package storage handles image hosting on an S3-compatible object store.

Clients submit images inline as base64 data URLs; the service decodes and
validates them, uploads the bytes under a fresh key, and returns the public
URL that gets persisted in place of the raw payload.
*/
package storage

import (
	"context"
	"fmt"
	"strings"

	"chirp/internal/pkg/dataurl"
)

// ServiceConfig holds the settings required to reach the object store.
type ServiceConfig struct {
	S3BucketName      string
	S3Endpoint        string
	S3PublicBaseURL   string
	S3AccessKeyID     string
	S3SecretAccessKey string
}

// ErrInvalidImage reports a data URL that failed decoding or validation.
// It is distinct from upload failures so the handler can answer 400, not 500.
type ErrInvalidImage struct {
	Reason string
}

func (e *ErrInvalidImage) Error() string {
	return fmt.Sprintf("invalid image: %s", e.Reason)
}

// ObjectStore is the public interface for the image hosting service.
type ObjectStore interface {
	// UploadDataURL decodes and validates a base64 data URL, uploads the
	// bytes under keyPrefix, and returns the public URL of the object.
	UploadDataURL(ctx context.Context, keyPrefix string, dataURL string) (string, error)

	// Delete removes the object behind a previously returned public URL.
	// Unknown or foreign URLs are ignored.
	Delete(ctx context.Context, publicURL string) error
}

// NewObjectStore is the factory for ObjectStore. Only S3-compatible
// implementations exist today.
func NewObjectStore(cfg ServiceConfig) (ObjectStore, error) {
	return newS3Client(cfg)
}

// validateImage decodes the data URL and checks type and size. Returns the
// decoded bytes, the MIME type, and the key extension.
func validateImage(dataURLStr string) ([]byte, string, string, error) {
	mimeType, data, err := dataurl.Decode(dataURLStr)
	if err != nil {
		return nil, "", "", &ErrInvalidImage{Reason: err.Error()}
	}

	ext, ok := ImageExtension(mimeType)
	if !ok {
		return nil, "", "", &ErrInvalidImage{Reason: fmt.Sprintf("unsupported type %q", mimeType)}
	}

	if len(data) == 0 {
		return nil, "", "", &ErrInvalidImage{Reason: "empty payload"}
	}

	if len(data) > MaxImageSize {
		return nil, "", "", &ErrInvalidImage{Reason: fmt.Sprintf("larger than %d MB", MaxImageSizeMB)}
	}

	return data, mimeType, ext, nil
}

// keyFromPublicURL recovers the object key from a public URL minted by this
// service. Reports false for URLs outside the public base.
func keyFromPublicURL(publicBaseURL, publicURL string) (string, bool) {
	rest, ok := strings.CutPrefix(publicURL, publicBaseURL+"/")
	if !ok || rest == "" {
		return "", false
	}
	return rest, true
}
