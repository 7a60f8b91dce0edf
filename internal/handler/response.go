package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/JesperSolutions/agritectum-platform-sub017/internal/authz"
	"github.com/JesperSolutions/agritectum-platform-sub017/internal/domain"
	"github.com/JesperSolutions/agritectum-platform-sub017/internal/middleware"
)

// APIResponse is the standard envelope for all API responses.
type APIResponse struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   *APIError   `json:"error,omitempty"`
	Meta    *PagMeta    `json:"meta,omitempty"`
}

// APIError holds error details in the response.
type APIError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// PagMeta holds pagination metadata.
type PagMeta struct {
	Total  int `json:"total"`
	Offset int `json:"offset"`
	Limit  int `json:"limit"`
}

// RespondOK sends a 200 success response.
func RespondOK(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, APIResponse{Success: true, Data: data})
}

// RespondCreated sends a 201 success response.
func RespondCreated(c *gin.Context, data interface{}) {
	c.JSON(http.StatusCreated, APIResponse{Success: true, Data: data})
}

// RespondPaginated sends a 200 success response with pagination metadata.
func RespondPaginated(c *gin.Context, data interface{}, meta PagMeta) {
	c.JSON(http.StatusOK, APIResponse{Success: true, Data: data, Meta: &meta})
}

// RespondError sends an error response with the given status code.
func RespondError(c *gin.Context, status int, code, msg string) {
	c.JSON(status, APIResponse{
		Success: false,
		Error:   &APIError{Code: code, Message: msg},
	})
}

// MapDomainError translates domain errors to HTTP status codes and error codes.
func MapDomainError(err error) (status int, code, msg string) {
	switch {
	case errors.Is(err, domain.ErrNotFound):
		return http.StatusNotFound, "NOT_FOUND", "resource not found"
	case errors.Is(err, domain.ErrUnauthorized):
		return http.StatusUnauthorized, "UNAUTHORIZED", "unauthorized"
	case errors.Is(err, domain.ErrForbidden):
		return http.StatusForbidden, "FORBIDDEN", "forbidden"
	case errors.Is(err, domain.ErrInvalidCredentials):
		return http.StatusUnauthorized, "INVALID_CREDENTIALS", "invalid credentials"
	case errors.Is(err, domain.ErrBranchInactive):
		return http.StatusForbidden, "BRANCH_INACTIVE", "branch is inactive"
	case errors.Is(err, domain.ErrUserInactive):
		return http.StatusForbidden, "USER_INACTIVE", "user is inactive"
	case errors.Is(err, domain.ErrTokenRevoked):
		return http.StatusUnauthorized, "TOKEN_REVOKED", "token has been revoked"
	case errors.Is(err, domain.ErrResetTokenInvalid):
		return http.StatusUnauthorized, "INVALID_RESET_TOKEN", "password reset token is invalid or has already been used"
	case errors.Is(err, domain.ErrSocialAuthTokenInvalid):
		return http.StatusUnauthorized, "INVALID_SOCIAL_TOKEN", "social authentication token is invalid or expired"
	case errors.Is(err, domain.ErrDuplicateEmail):
		return http.StatusConflict, "DUPLICATE_EMAIL", "email already exists"
	case errors.Is(err, domain.ErrDuplicateSlug):
		return http.StatusConflict, "DUPLICATE_SLUG", "branch slug already exists"
	case errors.Is(err, domain.ErrBranchRequired):
		return http.StatusBadRequest, "BRANCH_REQUIRED", "branch_id query parameter is required for cross-branch access"
	case errors.Is(err, domain.ErrValidation):
		return http.StatusBadRequest, "VALIDATION_ERROR", err.Error()
	case errors.Is(err, domain.ErrInvalidStatusChange):
		return http.StatusConflict, "INVALID_STATUS_CHANGE", "status change not allowed from the current status"
	case errors.Is(err, domain.ErrReportNotEditable):
		return http.StatusConflict, "REPORT_NOT_EDITABLE", "report can only be edited while in draft"
	case errors.Is(err, domain.ErrReportIncomplete):
		return http.StatusBadRequest, "REPORT_INCOMPLETE", "report needs a summary or at least one finding before completion"
	case errors.Is(err, domain.ErrOfferNotEditable):
		return http.StatusConflict, "OFFER_NOT_EDITABLE", "offer can only be edited while in draft"
	case errors.Is(err, domain.ErrOfferEmpty):
		return http.StatusBadRequest, "OFFER_EMPTY", "offer needs at least one line before sending"
	case errors.Is(err, domain.ErrOfferNotPending):
		return http.StatusConflict, "OFFER_NOT_PENDING", "offer is not pending"
	case errors.Is(err, domain.ErrCustomerNoEmail):
		return http.StatusBadRequest, "CUSTOMER_NO_EMAIL", "customer has no email address on file"
	case errors.Is(err, domain.ErrCustomerInUse):
		return http.StatusConflict, "CUSTOMER_IN_USE", "customer still has reports, offers, appointments or agreements"
	case errors.Is(err, domain.ErrBuildingMismatch):
		return http.StatusBadRequest, "BUILDING_MISMATCH", "building does not belong to the given customer"
	case errors.Is(err, domain.ErrAppointmentConflict):
		return http.StatusConflict, "APPOINTMENT_CONFLICT", "inspector already has an appointment in that interval"
	case errors.Is(err, domain.ErrAppointmentPast):
		return http.StatusBadRequest, "APPOINTMENT_TOO_SOON", "appointment start is too soon or in the past"
	case errors.Is(err, domain.ErrInvalidTimeZone):
		return http.StatusBadRequest, "INVALID_TIME_ZONE", "unknown IANA time zone"
	case errors.Is(err, domain.ErrInvalidTimeRange):
		return http.StatusBadRequest, "INVALID_TIME_RANGE", "end must be after start"
	case errors.Is(err, domain.ErrAgreementNotActive):
		return http.StatusConflict, "AGREEMENT_NOT_ACTIVE", "service agreement is not active"
	case errors.Is(err, domain.ErrVisitAlreadyOpen):
		return http.StatusConflict, "VISIT_ALREADY_OPEN", "agreement already has an open generated visit"
	case errors.Is(err, domain.ErrUnsupportedPhotoType):
		return http.StatusBadRequest, "UNSUPPORTED_PHOTO_TYPE", "unsupported photo type; allowed: jpg, png, webp"
	case errors.Is(err, domain.ErrPhotoTooLarge):
		return http.StatusRequestEntityTooLarge, "PHOTO_TOO_LARGE", "photo exceeds maximum allowed size"
	case errors.Is(err, domain.ErrUploadFailed):
		return http.StatusInternalServerError, "UPLOAD_FAILED", "file upload to storage failed"
	case errors.Is(err, domain.ErrPublicLinkInvalid):
		return http.StatusNotFound, "NOT_FOUND", "resource not found"
	case errors.Is(err, domain.ErrPDFJobNotReady):
		return http.StatusConflict, "PDF_NOT_READY", "pdf render has not finished yet"
	default:
		return http.StatusInternalServerError, "INTERNAL_ERROR", "an internal error occurred"
	}
}

// HandleError maps a domain error and sends the appropriate error response.
// Internal errors are attached to the Gin context so the request logger
// records them.
func HandleError(c *gin.Context, err error) {
	status, code, msg := MapDomainError(err)
	if status >= 500 {
		_ = c.Error(err)
	}
	RespondError(c, status, code, msg)
}

// currentPrincipal extracts the authenticated principal, writing the 401
// itself when missing.
func currentPrincipal(c *gin.Context) (authz.Principal, bool) {
	p, err := middleware.GetPrincipal(c)
	if err != nil {
		RespondError(c, http.StatusUnauthorized, "UNAUTHORIZED", "missing auth context")
		return authz.Principal{}, false
	}
	return p, true
}
