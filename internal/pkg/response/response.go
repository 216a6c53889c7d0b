package response

import (
	"net/http"

	"github.com/gin-gonic/gin"
	apperrors "github.com/typetester/font-tester-backend/internal/pkg/errors"
)

// Response is the unified JSON envelope for all endpoints
type Response struct {
	Code    int         `json:"code"`              // business error code (0 on success)
	Message string      `json:"message,omitempty"` // human-readable message
	Reason  string      `json:"reason,omitempty"`  // machine-readable reason slug (errors only)
	Data    interface{} `json:"data"`              // payload (may be an empty object)
}

// Success sends a 200 response with the given payload
func Success(c *gin.Context, data interface{}) {
	if data == nil {
		data = struct{}{}
	}
	c.JSON(http.StatusOK, Response{
		Code: apperrors.Success,
		Data: data,
	})
}

// Created sends a 201 response with the given payload
func Created(c *gin.Context, data interface{}) {
	if data == nil {
		data = struct{}{}
	}
	c.JSON(http.StatusCreated, Response{
		Code: apperrors.Success,
		Data: data,
	})
}

// Error sends an error response with a raw HTTP status and message
func Error(c *gin.Context, httpStatus int, message string) {
	c.JSON(httpStatus, Response{
		Code:    httpStatus,
		Message: message,
		Data:    struct{}{},
	})
}

// BadRequest sends a 400 error
func BadRequest(c *gin.Context, message string) {
	Error(c, http.StatusBadRequest, message)
}

// Unauthorized sends a 401 error
func Unauthorized(c *gin.Context, message string) {
	Error(c, http.StatusUnauthorized, message)
}

// NotFound sends a 404 error
func NotFound(c *gin.Context, message string) {
	Error(c, http.StatusNotFound, message)
}

// InternalError sends a 500 error
func InternalError(c *gin.Context, message string) {
	Error(c, http.StatusInternalServerError, message)
}

// HandleError maps an AppError (or plain error) onto the envelope
func HandleError(c *gin.Context, err error) {
	if err == nil {
		return
	}

	code := apperrors.ExtractCode(err)
	httpStatus := apperrors.GetHTTPStatus(code)
	message := apperrors.FormatError(code, apperrors.GetDetails(err))

	c.JSON(httpStatus, Response{
		Code:    code,
		Message: message,
		Reason:  apperrors.GetReason(code),
		Data:    struct{}{},
	})
}

// ErrorWithCode sends an error response for a known error code
func ErrorWithCode(c *gin.Context, code int, details ...string) {
	httpStatus := apperrors.GetHTTPStatus(code)
	message := apperrors.FormatError(code, details...)

	c.JSON(httpStatus, Response{
		Code:    code,
		Message: message,
		Reason:  apperrors.GetReason(code),
		Data:    struct{}{},
	})
}
