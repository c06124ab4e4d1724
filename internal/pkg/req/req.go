/*
Package req provides helpers for HTTP request parsing and data binding.

It encapsulates strict JSON body decoding so handlers receive either a fully
bound struct or a typed error ready for the response boundary.
*/
package req

import (
	"encoding/json"
	"net/http"
	"strings"

	"chirp/internal/pkg/errs"
)

// MaxBodySize is the maximum allowed request body size. Image payloads travel
// as base64 data URLs inside the JSON body, so the cap is generous.
const MaxBodySize int64 = 8 << 20 // 8 MB

// BindJSON binds the JSON request body to dst.
// Unknown fields, malformed JSON, and trailing content are all rejected.
func BindJSON(r *http.Request, dst any) *errs.CustomError {
	contentType := r.Header.Get("Content-Type")
	if !strings.HasPrefix(contentType, "application/json") {
		return errs.NewError(errs.ErrUnsupportedMediaType)
	}

	r.Body = http.MaxBytesReader(nil, r.Body, MaxBodySize)

	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()

	if err := decoder.Decode(dst); err != nil {
		return errs.NewError(errs.ErrInvalidJSONFormat)
	}

	if decoder.More() {
		return errs.NewError(errs.ErrExtraContentInBody)
	}

	return nil
}
