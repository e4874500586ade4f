package response

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
)

// Response is the unified API response format. Code is a stable,
// machine-readable string ("OK" on success, an error code otherwise).
type Response struct {
	Code    string      `json:"code"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
	Warning string      `json:"warning,omitempty"`
}

// AppError is a structured application error carrying the HTTP status
// and the stable error code exposed to API clients.
type AppError struct {
	HTTPStatus int
	Code       string
	Message    string
}

func (e *AppError) Error() string {
	return e.Message
}

// Error codes returned by this API. These are part of the contract:
// clients branch on the code, not on the message.
const (
	CodeOK                 = "OK"
	CodeValidation         = "VALIDATION_ERROR"
	CodeAuthRequired       = "AUTH_REQUIRED"
	CodeNotOrgMember       = "NOT_ORG_MEMBER"
	CodeWorkspaceDenied    = "WORKSPACE_ACCESS_DENIED"
	CodeInsufficientRole   = "INSUFFICIENT_WORKSPACE_PERMISSIONS"
	CodeSlugTaken          = "SLUG_TAKEN"
	CodeAlreadyMember      = "ALREADY_MEMBER"
	CodeInvitationExists   = "INVITATION_EXISTS"
	CodeAlreadyShared      = "ALREADY_SHARED"
	CodeSeatLimitReached   = "SEAT_LIMIT_REACHED"
	CodeEmailMismatch      = "EMAIL_MISMATCH"
	CodeInvitationNotFound = "INVITATION_NOT_FOUND"
	CodeNotFound           = "NOT_FOUND"
	CodeFeatureUnavailable = "FEATURE_NOT_AVAILABLE"
	CodeLastOwner          = "LAST_OWNER"
	CodeInternal           = "INTERNAL_ERROR"
)

// Pre-defined error constructors

func NewValidation(msg string) *AppError {
	return &AppError{HTTPStatus: http.StatusBadRequest, Code: CodeValidation, Message: msg}
}

func NewAuthRequired(msg string) *AppError {
	return &AppError{HTTPStatus: http.StatusUnauthorized, Code: CodeAuthRequired, Message: msg}
}

func NewNotOrgMember() *AppError {
	return &AppError{HTTPStatus: http.StatusForbidden, Code: CodeNotOrgMember, Message: "not a member of this organization"}
}

func NewWorkspaceDenied() *AppError {
	return &AppError{HTTPStatus: http.StatusForbidden, Code: CodeWorkspaceDenied, Message: "no access to this workspace"}
}

func NewInsufficientRole(required string) *AppError {
	return &AppError{HTTPStatus: http.StatusForbidden, Code: CodeInsufficientRole, Message: "requires workspace role " + required + " or higher"}
}

func NewSlugTaken(slug string) *AppError {
	return &AppError{HTTPStatus: http.StatusConflict, Code: CodeSlugTaken, Message: "slug already in use: " + slug}
}

func NewAlreadyMember() *AppError {
	return &AppError{HTTPStatus: http.StatusConflict, Code: CodeAlreadyMember, Message: "already a member of this organization"}
}

func NewInvitationExists(email string) *AppError {
	return &AppError{HTTPStatus: http.StatusConflict, Code: CodeInvitationExists, Message: "a pending invitation already exists for " + email}
}

func NewAlreadyShared() *AppError {
	return &AppError{HTTPStatus: http.StatusConflict, Code: CodeAlreadyShared, Message: "document is already shared to this workspace"}
}

func NewSeatLimitReached() *AppError {
	return &AppError{HTTPStatus: http.StatusPaymentRequired, Code: CodeSeatLimitReached, Message: "organization seat limit reached"}
}

func NewEmailMismatch() *AppError {
	return &AppError{HTTPStatus: http.StatusForbidden, Code: CodeEmailMismatch, Message: "invitation was issued to a different email address"}
}

// NewInvitationNotFound covers unknown, revoked and expired tokens alike
// so callers cannot probe invitation history.
func NewInvitationNotFound() *AppError {
	return &AppError{HTTPStatus: http.StatusNotFound, Code: CodeInvitationNotFound, Message: "invitation not found"}
}

func NewNotFound(msg string) *AppError {
	return &AppError{HTTPStatus: http.StatusNotFound, Code: CodeNotFound, Message: msg}
}

func NewFeatureUnavailable(feature string) *AppError {
	return &AppError{HTTPStatus: http.StatusServiceUnavailable, Code: CodeFeatureUnavailable, Message: feature + " is not available yet"}
}

func NewLastOwner() *AppError {
	return &AppError{HTTPStatus: http.StatusConflict, Code: CodeLastOwner, Message: "workspace must keep at least one owner"}
}

func NewServerError(msg string) *AppError {
	return &AppError{HTTPStatus: http.StatusInternalServerError, Code: CodeInternal, Message: msg}
}

// --- Gin response helpers ---

// Success sends a 200 OK response with data.
func Success(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, Response{
		Code:    CodeOK,
		Message: "ok",
		Data:    data,
	})
}

// Created sends a 201 Created response with data.
func Created(c *gin.Context, data interface{}) {
	c.JSON(http.StatusCreated, Response{
		Code:    CodeOK,
		Message: "created",
		Data:    data,
	})
}

// CreatedWithWarning sends a 201 response carrying a non-fatal warning
// (e.g. the invitation row exists but the notification mail failed).
func CreatedWithWarning(c *gin.Context, data interface{}, warning string) {
	c.JSON(http.StatusCreated, Response{
		Code:    CodeOK,
		Message: "created",
		Data:    data,
		Warning: warning,
	})
}

// Error sends an error response. If err is an *AppError its status and
// code are used; anything else is a generic 500 so raw database errors
// never leak to clients.
func Error(c *gin.Context, err error) {
	var appErr *AppError
	if errors.As(err, &appErr) {
		c.JSON(appErr.HTTPStatus, Response{
			Code:    appErr.Code,
			Message: appErr.Message,
		})
		return
	}
	c.JSON(http.StatusInternalServerError, Response{
		Code:    CodeInternal,
		Message: "internal server error",
	})
}

// BadRequest sends a 400 validation error (binding failures and the like).
func BadRequest(c *gin.Context, msg string) {
	c.JSON(http.StatusBadRequest, Response{Code: CodeValidation, Message: msg})
}

// Unauthorized sends a 401 AUTH_REQUIRED response.
func Unauthorized(c *gin.Context, msg string) {
	c.JSON(http.StatusUnauthorized, Response{Code: CodeAuthRequired, Message: msg})
}
