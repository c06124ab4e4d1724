package storage

// MaxImageSizeMB is the maximum allowed decoded image size in megabytes.
const MaxImageSizeMB = 5

// MaxImageSize is the maximum allowed decoded image size in bytes.
const MaxImageSize = MaxImageSizeMB * 1024 * 1024

// extByMIME maps permitted image MIME types to the object key extension.
// Anything absent from this map is rejected before upload.
var extByMIME = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
	"image/webp": ".webp",
	"image/gif":  ".gif",
}

// ImageExtension returns the key extension for an allowed image MIME type.
func ImageExtension(mimeType string) (string, bool) {
	ext, ok := extByMIME[mimeType]
	return ext, ok
}
