package dataurl

import (
	"encoding/base64"
	"errors"
	"testing"
)

func TestDecodeValid(t *testing.T) {
	payload := []byte("fake image bytes")
	encoded := "data:image/png;base64," + base64.StdEncoding.EncodeToString(payload)

	mimeType, data, err := Decode(encoded)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if mimeType != "image/png" {
		t.Errorf(`expected "image/png", got %q`, mimeType)
	}
	if string(data) != string(payload) {
		t.Errorf("decoded bytes do not match the original payload")
	}
}

func TestDecodeLowercasesMIME(t *testing.T) {
	encoded := "data:IMAGE/JPEG;base64," + base64.StdEncoding.EncodeToString([]byte("x"))

	mimeType, _, err := Decode(encoded)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if mimeType != "image/jpeg" {
		t.Errorf(`expected "image/jpeg", got %q`, mimeType)
	}
}

func TestDecodeRejectsPlainString(t *testing.T) {
	if _, _, err := Decode("not a data url"); !errors.Is(err, ErrNotDataURL) {
		t.Errorf("expected ErrNotDataURL, got %v", err)
	}
}

func TestDecodeRejectsHTTPURL(t *testing.T) {
	if _, _, err := Decode("https://example.com/a.png"); !errors.Is(err, ErrNotDataURL) {
		t.Errorf("expected ErrNotDataURL, got %v", err)
	}
}

func TestDecodeRejectsMissingEncoding(t *testing.T) {
	if _, _, err := Decode("data:image/png,abcd"); !errors.Is(err, ErrUnsupportedEncoding) {
		t.Errorf("expected ErrUnsupportedEncoding, got %v", err)
	}
}

func TestDecodeRejectsEmptyMIME(t *testing.T) {
	if _, _, err := Decode("data:;base64,abcd"); !errors.Is(err, ErrNotDataURL) {
		t.Errorf("expected ErrNotDataURL, got %v", err)
	}
}

func TestDecodeRejectsBadBase64(t *testing.T) {
	if _, _, err := Decode("data:image/png;base64,%%not-base64%%"); !errors.Is(err, ErrInvalidPayload) {
		t.Errorf("expected ErrInvalidPayload, got %v", err)
	}
}
