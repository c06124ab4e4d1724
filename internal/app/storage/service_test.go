package storage

import (
	"encoding/base64"
	"errors"
	"strings"
	"testing"
)

func pngDataURL(payload []byte) string {
	return "data:image/png;base64," + base64.StdEncoding.EncodeToString(payload)
}

func TestValidateImageAccepted(t *testing.T) {
	data, mimeType, ext, err := validateImage(pngDataURL([]byte("fake png bytes")))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if mimeType != "image/png" {
		t.Errorf(`expected "image/png", got %q`, mimeType)
	}
	if ext != ".png" {
		t.Errorf(`expected ".png", got %q`, ext)
	}
	if len(data) == 0 {
		t.Error("expected decoded bytes")
	}
}

func TestValidateImageRejectsNonDataURL(t *testing.T) {
	_, _, _, err := validateImage("https://example.com/a.png")

	var invalid *ErrInvalidImage
	if !errors.As(err, &invalid) {
		t.Fatalf("expected *ErrInvalidImage, got %v", err)
	}
}

func TestValidateImageRejectsUnsupportedType(t *testing.T) {
	url := "data:application/pdf;base64," + base64.StdEncoding.EncodeToString([]byte("%PDF"))

	_, _, _, err := validateImage(url)

	var invalid *ErrInvalidImage
	if !errors.As(err, &invalid) {
		t.Fatalf("expected *ErrInvalidImage, got %v", err)
	}
	if !strings.Contains(invalid.Reason, "unsupported type") {
		t.Errorf("unexpected reason: %q", invalid.Reason)
	}
}

func TestValidateImageRejectsEmptyPayload(t *testing.T) {
	_, _, _, err := validateImage("data:image/png;base64,")

	var invalid *ErrInvalidImage
	if !errors.As(err, &invalid) {
		t.Fatalf("expected *ErrInvalidImage, got %v", err)
	}
}

func TestValidateImageRejectsOversizedPayload(t *testing.T) {
	oversized := make([]byte, MaxImageSize+1)

	_, _, _, err := validateImage(pngDataURL(oversized))

	var invalid *ErrInvalidImage
	if !errors.As(err, &invalid) {
		t.Fatalf("expected *ErrInvalidImage, got %v", err)
	}
}

func TestImageExtensionCoverage(t *testing.T) {
	cases := map[string]string{
		"image/jpeg": ".jpg",
		"image/png":  ".png",
		"image/webp": ".webp",
		"image/gif":  ".gif",
	}

	for mimeType, want := range cases {
		ext, ok := ImageExtension(mimeType)
		if !ok {
			t.Errorf("%s: expected an extension", mimeType)
			continue
		}
		if ext != want {
			t.Errorf("%s: expected %q, got %q", mimeType, want, ext)
		}
	}

	if _, ok := ImageExtension("image/svg+xml"); ok {
		t.Error("svg must not be an allowed upload type")
	}
}

func TestKeyFromPublicURL(t *testing.T) {
	base := "https://cdn.example.com/chirp-media"

	key, ok := keyFromPublicURL(base, base+"/avatars/abc.png")
	if !ok {
		t.Fatal("expected the key to be recovered")
	}
	if key != "avatars/abc.png" {
		t.Errorf(`expected "avatars/abc.png", got %q`, key)
	}

	if _, ok := keyFromPublicURL(base, "https://elsewhere.example.com/avatars/abc.png"); ok {
		t.Error("foreign URLs must not resolve to a key")
	}

	if _, ok := keyFromPublicURL(base, base+"/"); ok {
		t.Error("the bare base URL must not resolve to a key")
	}
}
