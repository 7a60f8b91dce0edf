package domain

import "errors"

var (
	ErrNotFound           = errors.New("resource not found")
	ErrUnauthorized       = errors.New("unauthorized")
	ErrForbidden          = errors.New("forbidden")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrBranchInactive     = errors.New("branch is inactive")
	ErrUserInactive       = errors.New("user is inactive")
	ErrDuplicateEmail     = errors.New("email already exists")
	ErrDuplicateSlug      = errors.New("branch slug already exists")

	ErrBranchRequired      = errors.New("branch_id is required for cross-branch access")
	ErrValidation          = errors.New("invalid input")
	ErrInvalidStatusChange = errors.New("status change not allowed")
	ErrReportNotEditable   = errors.New("report can only be edited in draft")
	ErrReportIncomplete    = errors.New("report needs a summary or at least one finding")
	ErrOfferNotEditable    = errors.New("offer can only be edited in draft")
	ErrOfferEmpty          = errors.New("offer needs at least one line")
	ErrOfferNotPending     = errors.New("offer is not pending")
	ErrCustomerNoEmail     = errors.New("customer has no email address")
	ErrCustomerInUse       = errors.New("customer has linked documents")
	ErrBuildingMismatch    = errors.New("building does not belong to customer")

	ErrAppointmentConflict = errors.New("inspector already booked in that interval")
	ErrAppointmentPast     = errors.New("appointment start is too soon or in the past")
	ErrInvalidTimeZone     = errors.New("unknown time zone")
	ErrInvalidTimeRange    = errors.New("end must be after start")

	ErrAgreementNotActive = errors.New("service agreement is not active")
	ErrVisitAlreadyOpen   = errors.New("agreement already has an open generated visit")

	ErrUnsupportedPhotoType = errors.New("unsupported photo type")
	ErrPhotoTooLarge        = errors.New("photo exceeds maximum allowed size")
	ErrUploadFailed         = errors.New("file upload to storage failed")

	ErrPublicLinkInvalid      = errors.New("public link is invalid or no longer available")
	ErrResetTokenInvalid      = errors.New("password reset token is invalid or already used")
	ErrTokenRevoked           = errors.New("token has been revoked")
	ErrSocialAuthTokenInvalid = errors.New("social auth token is invalid")

	ErrPDFJobNotReady = errors.New("pdf render has not finished")
)
