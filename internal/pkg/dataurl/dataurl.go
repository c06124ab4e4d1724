/*
Package dataurl decodes base64 data URLs of the form
"data:<mime-type>;base64,<payload>".

Clients submit avatar and message images inline as data URLs; the server
decodes them here before handing the bytes to the object store.
*/
package dataurl

import (
	"encoding/base64"
	"errors"
	"strings"
)

var (
	// ErrNotDataURL indicates the string does not carry the data URL scheme.
	ErrNotDataURL = errors.New("dataurl: not a data URL")

	// ErrUnsupportedEncoding indicates a data URL without base64 encoding.
	ErrUnsupportedEncoding = errors.New("dataurl: only base64 encoding is supported")

	// ErrInvalidPayload indicates the base64 payload could not be decoded.
	ErrInvalidPayload = errors.New("dataurl: invalid base64 payload")
)

// Decode parses a data URL and returns its MIME type and decoded bytes.
func Decode(s string) (mimeType string, data []byte, err error) {
	rest, ok := strings.CutPrefix(s, "data:")
	if !ok {
		return "", nil, ErrNotDataURL
	}

	header, payload, ok := strings.Cut(rest, ",")
	if !ok {
		return "", nil, ErrNotDataURL
	}

	mimeType, found := strings.CutSuffix(header, ";base64")
	if !found {
		return "", nil, ErrUnsupportedEncoding
	}

	if mimeType == "" {
		return "", nil, ErrNotDataURL
	}

	data, decodeErr := base64.StdEncoding.DecodeString(payload)
	if decodeErr != nil {
		return "", nil, ErrInvalidPayload
	}

	return strings.ToLower(mimeType), data, nil
}
