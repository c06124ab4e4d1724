/*
Package errs provides custom error types and application-level error code constants.

This file defines the map from error codes to the CustomError template, used to
standardize HTTP responses and internal error handling.
*/
package errs

import "net/http"

// errorMap stores the CustomError template for every application error code.
// The key is the error code, and the value carries the client message and the
// HTTP status the error maps to.
var errorMap = map[int]CustomError{
	// 1xxx: General Request Handling Errors
	ErrInvalidParams:        {Code: ErrInvalidParams, Message: "Invalid request parameters.", Status: http.StatusBadRequest},
	ErrUnsupportedMediaType: {Code: ErrUnsupportedMediaType, Message: "Unsupported request format.", Status: http.StatusUnsupportedMediaType},
	ErrInvalidJSONFormat:    {Code: ErrInvalidJSONFormat, Message: "Unsupported request format.", Status: http.StatusBadRequest},
	ErrExtraContentInBody:   {Code: ErrExtraContentInBody, Message: "Request contains unexpected data.", Status: http.StatusBadRequest},
	ErrRateLimitExceeded:    {Code: ErrRateLimitExceeded, Message: "Too many requests. Please try again later.", Status: http.StatusTooManyRequests},

	// 2xxx: Messaging and Feed Business Logic Errors
	ErrEmptyMessage:    {Code: ErrEmptyMessage, Message: "Message must include text or an image.", Status: http.StatusBadRequest},
	ErrMessageTooLong:  {Code: ErrMessageTooLong, Message: "Message is too long.", Status: http.StatusBadRequest},
	ErrMessageNotFound: {Code: ErrMessageNotFound, Message: "Message not found.", Status: http.StatusNotFound},
	ErrUserNotFound:    {Code: ErrUserNotFound, Message: "User not found.", Status: http.StatusNotFound},
	ErrPostNotFound:    {Code: ErrPostNotFound, Message: "Post not found.", Status: http.StatusNotFound},
	ErrNotPostAuthor:   {Code: ErrNotPostAuthor, Message: "Not authorized to delete this post.", Status: http.StatusForbidden},
	ErrEmptyPost:       {Code: ErrEmptyPost, Message: "Post content is required.", Status: http.StatusBadRequest},
	ErrEmptyComment:    {Code: ErrEmptyComment, Message: "Comment text is required.", Status: http.StatusBadRequest},

	// 3xxx: Credential and Session Errors
	ErrMissingFields:      {Code: ErrMissingFields, Message: "Missing required fields.", Status: http.StatusBadRequest},
	ErrEmailExists:        {Code: ErrEmailExists, Message: "Account already exists with this email.", Status: http.StatusConflict},
	ErrInvalidCredentials: {Code: ErrInvalidCredentials, Message: "Invalid credentials.", Status: http.StatusUnauthorized},
	ErrUnauthorized:       {Code: ErrUnauthorized, Message: "Please sign in to continue.", Status: http.StatusUnauthorized},
	ErrInvalidImage:       {Code: ErrInvalidImage, Message: "Invalid or unsupported image.", Status: http.StatusBadRequest},

	// 5xxx: Internal System Errors
	ErrUnknown:           {Code: ErrUnknown, Message: "Something went wrong. Please try again.", Status: http.StatusInternalServerError},
	ErrUploadFailed:      {Code: ErrUploadFailed, Message: "Image upload failed. Please try again.", Status: http.StatusInternalServerError},
	ErrPersistenceFailed: {Code: ErrPersistenceFailed, Message: "Something went wrong. Please try again.", Status: http.StatusInternalServerError},
}
