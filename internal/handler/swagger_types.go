package handler

import (
	"time"

	"github.com/google/uuid"
)

// Swagger type definitions for API documentation.
// These types are used by swag to generate OpenAPI documentation.

// --- Request Types ---

// LoginRequest represents the login request body.
type LoginRequest struct {
	Email    string `json:"email" binding:"required" example:"kari.nordmann@taklaget.no"`
	Password string `json:"password" binding:"required" example:"securepassword123"`
}

// RefreshRequest represents the token refresh request body.
type RefreshRequest struct {
	RefreshToken string `json:"refresh_token" binding:"required" example:"eyJhbGciOiJIUzI1NiIsInR5cCI6IkpXVCJ9..."`
}

// CreateBranchRequest represents the create branch request body.
type CreateBranchRequest struct {
	Name      string `json:"name" binding:"required" example:"Taklaget Oslo Nord"`
	Slug      string `json:"slug" binding:"required" example:"oslo-nord"`
	OrgNumber string `json:"org_number" example:"987654321"`
	Email     string `json:"email" example:"oslo-nord@taklaget.no"`
	Phone     string `json:"phone" example:"+47 22 00 00 00"`
}

// UpdateBranchRequest represents the update branch request body.
type UpdateBranchRequest struct {
	Name  *string `json:"name" example:"Taklaget Oslo Nord AS"`
	Email *string `json:"email" example:"post@oslo-nord.taklaget.no"`
	Phone *string `json:"phone" example:"+47 22 00 00 01"`
}

// CreateUserRequest represents the create user request body.
type CreateUserRequest struct {
	Email           string     `json:"email" binding:"required" example:"ola.hansen@taklaget.no"`
	FullName        string     `json:"full_name" binding:"required" example:"Ola Hansen"`
	Phone           string     `json:"phone" example:"+47 900 00 000"`
	PermissionLevel int        `json:"permission_level" example:"0"`
	BranchID        *uuid.UUID `json:"branch_id" example:"550e8400-e29b-41d4-a716-446655440000"`
}

// UpdateUserRequest represents the update user request body.
type UpdateUserRequest struct {
	Email           *string `json:"email" example:"ola.hansen@taklaget.no"`
	FullName        *string `json:"full_name" example:"Ola Hansen"`
	Phone           *string `json:"phone" example:"+47 900 00 001"`
	PermissionLevel *int    `json:"permission_level" example:"1"`
}

// SetActiveRequest toggles the active flag on a branch or user.
type SetActiveRequest struct {
	IsActive bool `json:"is_active" binding:"required" example:"false"`
}

// CreateReportRequest represents the create report request body.
type CreateReportRequest struct {
	CustomerID   uuid.UUID  `json:"customer_id" binding:"required" example:"660e8400-e29b-41d4-a716-446655440001"`
	BuildingID   uuid.UUID  `json:"building_id" binding:"required" example:"770e8400-e29b-41d4-a716-446655440002"`
	InspectorID  *uuid.UUID `json:"inspector_id" example:"880e8400-e29b-41d4-a716-446655440003"`
	Title        string     `json:"title" binding:"required" example:"Årlig takinspeksjon 2025"`
	ScheduledFor *time.Time `json:"scheduled_for" example:"2025-05-12T08:00:00Z"`
}

// CreateOfferRequest represents the create offer request body.
type CreateOfferRequest struct {
	CustomerID uuid.UUID          `json:"customer_id" binding:"required" example:"660e8400-e29b-41d4-a716-446655440001"`
	ReportID   *uuid.UUID         `json:"report_id" example:"990e8400-e29b-41d4-a716-446655440004"`
	Title      string             `json:"title" binding:"required" example:"Utbedring av taktekking"`
	IntroText  string             `json:"intro_text" example:"Basert på funnene i inspeksjonsrapporten foreslår vi følgende tiltak."`
	Currency   string             `json:"currency" example:"NOK"`
	Lines      []OfferLineRequest `json:"lines"`
}

// OfferLineRequest represents one priced position on an offer.
type OfferLineRequest struct {
	Description string `json:"description" binding:"required" example:"Utskifting av skadede takstein"`
	Quantity    string `json:"quantity" example:"12"`
	Unit        string `json:"unit" example:"stk"`
	UnitPrice   string `json:"unit_price" example:"450.00"`
	DiscountPct string `json:"discount_pct" example:"0"`
}

// CreateAppointmentRequest represents the create appointment request body.
// Times are wall-clock in the given zone.
type CreateAppointmentRequest struct {
	CustomerID  uuid.UUID  `json:"customer_id" binding:"required" example:"660e8400-e29b-41d4-a716-446655440001"`
	BuildingID  *uuid.UUID `json:"building_id" example:"770e8400-e29b-41d4-a716-446655440002"`
	InspectorID *uuid.UUID `json:"inspector_id" example:"880e8400-e29b-41d4-a716-446655440003"`
	Type        string     `json:"type" binding:"required" example:"inspection"`
	Date        string     `json:"date" binding:"required" example:"2025-05-12"`
	StartTime   string     `json:"start_time" binding:"required" example:"08:00"`
	EndTime     string     `json:"end_time" binding:"required" example:"10:00"`
	TimeZone    string     `json:"time_zone" example:"Europe/Oslo"`
	Notes       string     `json:"notes" example:"Nøkkel hos vaktmester"`
}

// CreateAgreementRequest represents the create service agreement request body.
type CreateAgreementRequest struct {
	CustomerID     uuid.UUID  `json:"customer_id" binding:"required" example:"660e8400-e29b-41d4-a716-446655440001"`
	BuildingID     *uuid.UUID `json:"building_id" example:"770e8400-e29b-41d4-a716-446655440002"`
	Title          string     `json:"title" binding:"required" example:"Serviceavtale tak, halvårlig"`
	IntervalMonths int        `json:"interval_months" binding:"required" example:"6"`
	PricePerVisit  string     `json:"price_per_visit" example:"3500.00"`
	StartDate      string     `json:"start_date" binding:"required" example:"2025-04-01"`
}

// --- Response Types ---

// TokenResponse represents the authentication token response.
type TokenResponse struct {
	AccessToken  string    `json:"access_token" example:"eyJhbGciOiJIUzI1NiIsInR5cCI6IkpXVCJ9..."`
	RefreshToken string    `json:"refresh_token" example:"eyJhbGciOiJIUzI1NiIsInR5cCI6IkpXVCJ9..."`
	ExpiresAt    time.Time `json:"expires_at" example:"2025-01-15T10:30:00Z"`
}

// HealthResponse represents the health check response.
type HealthResponse struct {
	Status string `json:"status" example:"ok"`
	Error  string `json:"error,omitempty" example:"database not reachable"`
}

// MessageResponse represents a simple message response.
type MessageResponse struct {
	Message string `json:"message" example:"operation completed successfully"`
}

// --- Generic Response Wrappers ---

// Response wraps a successful response with data.
type Response struct {
	Success bool        `json:"success" example:"true"`
	Data    interface{} `json:"data,omitempty"`
	Meta    *PagMeta    `json:"meta,omitempty"`
}

// ErrorResponseBody wraps an error response.
type ErrorResponseBody struct {
	Success bool      `json:"success" example:"false"`
	Error   *APIError `json:"error"`
}
