/*
Package errs provides custom error types and application-level error code constants.

These codes identify specific business or system errors both inside the server
and in responses sent to clients.
*/
package errs

// 1xxx: General Request Handling Errors
const (
	// ErrInvalidParams indicates that request parameter validation failed.
	ErrInvalidParams = 1001

	// ErrUnsupportedMediaType indicates that the request Content-Type is not supported.
	ErrUnsupportedMediaType = 1002

	// ErrInvalidJSONFormat indicates that the request body JSON is malformed.
	ErrInvalidJSONFormat = 1003

	// ErrExtraContentInBody indicates trailing content after the JSON document.
	ErrExtraContentInBody = 1004

	// ErrRateLimitExceeded indicates that the request rate exceeded the set limit.
	ErrRateLimitExceeded = 1005
)

// 2xxx: Messaging and Feed Business Logic Errors
const (
	// ErrEmptyMessage indicates a send attempt with neither text nor an image.
	ErrEmptyMessage = 2101

	// ErrMessageTooLong indicates that the message text exceeded the length limit.
	ErrMessageTooLong = 2102

	// ErrMessageNotFound indicates that the requested message id does not exist.
	ErrMessageNotFound = 2103

	// ErrUserNotFound indicates that the requested user id does not exist.
	ErrUserNotFound = 2104

	// ErrPostNotFound indicates that the requested post id does not exist.
	ErrPostNotFound = 2201

	// ErrNotPostAuthor indicates an attempt to delete another user's post.
	ErrNotPostAuthor = 2202

	// ErrEmptyPost indicates a post creation attempt without content.
	ErrEmptyPost = 2203

	// ErrEmptyComment indicates a comment attempt without text.
	ErrEmptyComment = 2204
)

// 3xxx: Credential and Session Errors
const (
	// ErrMissingFields indicates that required signup/profile fields were absent.
	ErrMissingFields = 3001

	// ErrEmailExists indicates that the signup email is already registered.
	ErrEmailExists = 3002

	// ErrInvalidCredentials indicates a bad email/password combination.
	ErrInvalidCredentials = 3003

	// ErrUnauthorized indicates a missing or invalid bearer token.
	ErrUnauthorized = 3004

	// ErrInvalidImage indicates an image payload that is not a valid data URL,
	// has a disallowed type, or exceeds the size limit.
	ErrInvalidImage = 3101
)

// 5xxx: Internal System Errors
const (
	// ErrUnknown represents an unclassified internal server error.
	ErrUnknown = 5000

	// ErrUploadFailed indicates that the external object store rejected an upload.
	ErrUploadFailed = 5001

	// ErrPersistenceFailed indicates that the database rejected an operation.
	ErrPersistenceFailed = 5002
)
