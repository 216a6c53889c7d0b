package errors

import (
	"fmt"
	"net/http"
)

// Code represents an error code with HTTP status and message
type Code struct {
	Code    int    // Business error code
	Status  int    // HTTP status code
	Message string // Error message
}

// Error codes for different modules
const (
	// Success
	Success = 0

	// Common errors (1000-1999)
	ErrInternalServer  = 1000
	ErrInvalidParams   = 1001
	ErrNotFound        = 1002
	ErrUnauthorized    = 1003
	ErrForbidden       = 1004
	ErrConflict        = 1005
	ErrTooManyRequests = 1006
	ErrBadRequest      = 1007
	ErrServiceUnavail  = 1008

	// Auth errors (2000-2999)
	ErrAuthInvalidCredentials = 2000
	ErrAuthInvalidToken       = 2001
	ErrAuthTokenExpired       = 2002
	ErrAuthBadNonce           = 2003

	// Font errors (4000-4999)
	ErrFontNoFile           = 4000
	ErrFontTransport        = 4001
	ErrFontTooLarge         = 4002
	ErrFontEmptyFilename    = 4003
	ErrFontInvalidExtension = 4004
	ErrFontInvalidSignature = 4005
	ErrFontStorageDir       = 4006
	ErrFontMoveFailed       = 4007
	ErrFontDurableWrite     = 4008
	ErrFontNotFound         = 4009
	ErrFontInvalidID        = 4010
)

// codeMap maps error codes to their details
var codeMap = map[int]Code{
	Success: {Success, http.StatusOK, "Success"},

	// Common errors
	ErrInternalServer:  {ErrInternalServer, http.StatusInternalServerError, "Internal server error"},
	ErrInvalidParams:   {ErrInvalidParams, http.StatusBadRequest, "Invalid parameters"},
	ErrNotFound:        {ErrNotFound, http.StatusNotFound, "Resource not found"},
	ErrUnauthorized:    {ErrUnauthorized, http.StatusUnauthorized, "Unauthorized"},
	ErrForbidden:       {ErrForbidden, http.StatusForbidden, "Forbidden"},
	ErrConflict:        {ErrConflict, http.StatusConflict, "Resource conflict"},
	ErrTooManyRequests: {ErrTooManyRequests, http.StatusTooManyRequests, "Too many requests"},
	ErrBadRequest:      {ErrBadRequest, http.StatusBadRequest, "Bad request"},
	ErrServiceUnavail:  {ErrServiceUnavail, http.StatusServiceUnavailable, "Service unavailable"},

	// Auth errors
	ErrAuthInvalidCredentials: {ErrAuthInvalidCredentials, http.StatusUnauthorized, "Invalid username or password"},
	ErrAuthInvalidToken:       {ErrAuthInvalidToken, http.StatusUnauthorized, "Invalid or expired token"},
	ErrAuthTokenExpired:       {ErrAuthTokenExpired, http.StatusUnauthorized, "Token expired"},
	ErrAuthBadNonce:           {ErrAuthBadNonce, http.StatusForbidden, "Invalid or expired authenticity token"},

	// Font errors
	ErrFontNoFile:           {ErrFontNoFile, http.StatusBadRequest, "No file uploaded"},
	ErrFontTransport:        {ErrFontTransport, http.StatusBadRequest, "File upload error"},
	ErrFontTooLarge:         {ErrFontTooLarge, http.StatusBadRequest, "File size exceeds limit"},
	ErrFontEmptyFilename:    {ErrFontEmptyFilename, http.StatusBadRequest, "Empty filename"},
	ErrFontInvalidExtension: {ErrFontInvalidExtension, http.StatusBadRequest, "Invalid file type, expected TTF, OTF, WOFF or WOFF2"},
	ErrFontInvalidSignature: {ErrFontInvalidSignature, http.StatusBadRequest, "File content does not match a known font format"},
	ErrFontStorageDir:       {ErrFontStorageDir, http.StatusInternalServerError, "Font storage directory is not writable"},
	ErrFontMoveFailed:       {ErrFontMoveFailed, http.StatusInternalServerError, "Failed to store uploaded file"},
	ErrFontDurableWrite:     {ErrFontDurableWrite, http.StatusInternalServerError, "Failed to save font information"},
	ErrFontNotFound:         {ErrFontNotFound, http.StatusNotFound, "Font not found"},
	ErrFontInvalidID:        {ErrFontInvalidID, http.StatusBadRequest, "Invalid font ID"},
}

// reasonMap maps error codes to short machine-readable reason slugs
var reasonMap = map[int]string{
	ErrUnauthorized:           "permission-denied",
	ErrForbidden:              "permission-denied",
	ErrAuthInvalidCredentials: "permission-denied",
	ErrAuthInvalidToken:       "permission-denied",
	ErrAuthTokenExpired:       "permission-denied",
	ErrAuthBadNonce:           "bad-authenticity-token",
	ErrFontNoFile:             "no-file",
	ErrFontTransport:          "transport-error",
	ErrFontTooLarge:           "too-large",
	ErrFontEmptyFilename:      "empty-filename",
	ErrFontInvalidExtension:   "invalid-extension",
	ErrFontInvalidSignature:   "invalid-signature",
	ErrFontStorageDir:         "storage-directory-error",
	ErrFontMoveFailed:         "move-failed",
	ErrFontDurableWrite:       "durable-write-failed",
	ErrFontNotFound:           "not-found",
	ErrFontInvalidID:          "invalid-id",
}

// GetReason returns the machine-readable reason slug for a code, if any
func GetReason(code int) string {
	if r, ok := reasonMap[code]; ok {
		return r
	}
	return ""
}

// GetCode returns the Code for a given error code
func GetCode(code int) Code {
	if c, ok := codeMap[code]; ok {
		return c
	}
	return codeMap[ErrInternalServer]
}

// GetHTTPStatus returns HTTP status for a given error code
func GetHTTPStatus(code int) int {
	return GetCode(code).Status
}

// GetMessage returns the message for a given error code
func GetMessage(code int) string {
	return GetCode(code).Message
}

// IsSuccess checks if the code represents success
func IsSuccess(code int) bool {
	return code == Success
}

// IsClientError checks if the code represents a client error (4xx)
func IsClientError(code int) bool {
	status := GetHTTPStatus(code)
	return status >= 400 && status < 500
}

// IsServerError checks if the code represents a server error (5xx)
func IsServerError(code int) bool {
	status := GetHTTPStatus(code)
	return status >= 500
}

// FormatError formats an error message with code
func FormatError(code int, details ...string) string {
	msg := GetMessage(code)
	if len(details) > 0 && details[0] != "" {
		return fmt.Sprintf("%s: %s", msg, details[0])
	}
	return msg
}
