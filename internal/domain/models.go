package domain

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Branch represents an isolated company branch. All customer-facing
// documents are scoped to exactly one branch.
type Branch struct {
	ID          uuid.UUID `db:"id" json:"id"`
	Name        string    `db:"name" json:"name"`
	Slug        string    `db:"slug" json:"slug"`
	OrgNumber   string    `db:"org_number" json:"org_number"`
	Email       string    `db:"email" json:"email"`
	Phone       string    `db:"phone" json:"phone"`
	AddressLine string    `db:"address_line" json:"address_line"`
	PostalCode  string    `db:"postal_code" json:"postal_code"`
	City        string    `db:"city" json:"city"`
	Country     string    `db:"country" json:"country"`
	IsActive    bool      `db:"is_active" json:"is_active"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time `db:"updated_at" json:"updated_at"`
}

// User represents an authenticated staff member. BranchID is nil for
// superadmins, who operate across branches.
type User struct {
	ID              uuid.UUID       `db:"id" json:"id"`
	BranchID        *uuid.UUID      `db:"branch_id" json:"branch_id"`
	Email           string          `db:"email" json:"email"`
	PasswordHash    string          `db:"password_hash" json:"-"`
	FullName        string          `db:"full_name" json:"full_name"`
	Phone           string          `db:"phone" json:"phone"`
	PermissionLevel PermissionLevel `db:"permission_level" json:"permission_level"`
	IsActive        bool            `db:"is_active" json:"is_active"`
	LastLoginAt     *time.Time      `db:"last_login_at" json:"last_login_at"`

	// PasswordResetTokenID holds the JTI of the last issued reset token.
	// A reset consumes it, so each link works at most once.
	PasswordResetTokenID *string `db:"password_reset_token_id" json:"-"`

	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}

// Customer represents a client of a branch, either a company or a person.
type Customer struct {
	ID          uuid.UUID `db:"id" json:"id"`
	BranchID    uuid.UUID `db:"branch_id" json:"branch_id"`
	Name        string    `db:"name" json:"name"`
	OrgNumber   string    `db:"org_number" json:"org_number"`
	ContactName string    `db:"contact_name" json:"contact_name"`
	Email       string    `db:"email" json:"email"`
	Phone       string    `db:"phone" json:"phone"`
	AddressLine string    `db:"address_line" json:"address_line"`
	PostalCode  string    `db:"postal_code" json:"postal_code"`
	City        string    `db:"city" json:"city"`
	Country     string    `db:"country" json:"country"`
	Notes       string    `db:"notes" json:"notes"`
	CreatedBy   uuid.UUID `db:"created_by" json:"created_by"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time `db:"updated_at" json:"updated_at"`
}

// Building represents a roof location belonging to a customer.
type Building struct {
	ID               uuid.UUID `db:"id" json:"id"`
	BranchID         uuid.UUID `db:"branch_id" json:"branch_id"`
	CustomerID       uuid.UUID `db:"customer_id" json:"customer_id"`
	Label            string    `db:"label" json:"label"`
	AddressLine      string    `db:"address_line" json:"address_line"`
	PostalCode       string    `db:"postal_code" json:"postal_code"`
	City             string    `db:"city" json:"city"`
	RoofType         RoofType  `db:"roof_type" json:"roof_type"`
	RoofAreaM2       *float64  `db:"roof_area_m2" json:"roof_area_m2"`
	HeightM          *float64  `db:"height_m" json:"height_m"`
	ConstructionYear *int      `db:"construction_year" json:"construction_year"`
	Latitude         *float64  `db:"latitude" json:"latitude"`
	Longitude        *float64  `db:"longitude" json:"longitude"`
	AccessNotes      string    `db:"access_notes" json:"access_notes"`
	CreatedAt        time.Time `db:"created_at" json:"created_at"`
	UpdatedAt        time.Time `db:"updated_at" json:"updated_at"`
}

// Report represents a roof inspection report.
type Report struct {
	ID                 uuid.UUID    `db:"id" json:"id"`
	BranchID           uuid.UUID    `db:"branch_id" json:"branch_id"`
	CustomerID         uuid.UUID    `db:"customer_id" json:"customer_id"`
	BuildingID         uuid.UUID    `db:"building_id" json:"building_id"`
	InspectorID        uuid.UUID    `db:"inspector_id" json:"inspector_id"`
	Title              string       `db:"title" json:"title"`
	Status             ReportStatus `db:"status" json:"status"`
	Summary            string       `db:"summary" json:"summary"`
	WeatherConditions  string       `db:"weather_conditions" json:"weather_conditions"`
	RoofConditionGrade *int         `db:"roof_condition_grade" json:"roof_condition_grade"`
	ScheduledFor       *time.Time   `db:"scheduled_for" json:"scheduled_for"`
	InspectedAt        *time.Time   `db:"inspected_at" json:"inspected_at"`
	ShareToken         *string      `db:"share_token" json:"-"`
	CompletedAt        *time.Time   `db:"completed_at" json:"completed_at"`
	SentAt             *time.Time   `db:"sent_at" json:"sent_at"`
	ArchivedAt         *time.Time   `db:"archived_at" json:"archived_at"`
	CreatedBy          uuid.UUID    `db:"created_by" json:"created_by"`
	CreatedAt          time.Time    `db:"created_at" json:"created_at"`
	UpdatedAt          time.Time    `db:"updated_at" json:"updated_at"`

	// FindingCount is populated on list queries only; single loads carry
	// the findings themselves.
	FindingCount int `db:"finding_count" json:"finding_count"`

	Findings []ReportFinding `db:"-" json:"findings,omitempty"`
	Photos   []ReportPhoto   `db:"-" json:"photos,omitempty"`
}

// ReportFinding represents a single observed defect or remark within a report.
type ReportFinding struct {
	ID             uuid.UUID       `db:"id" json:"id"`
	ReportID       uuid.UUID       `db:"report_id" json:"report_id"`
	BranchID       uuid.UUID       `db:"branch_id" json:"branch_id"`
	Position       int             `db:"position" json:"position"`
	Component      string          `db:"component" json:"component"`
	Severity       FindingSeverity `db:"severity" json:"severity"`
	Description    string          `db:"description" json:"description"`
	Recommendation string          `db:"recommendation" json:"recommendation"`
	CreatedAt      time.Time       `db:"created_at" json:"created_at"`
	UpdatedAt      time.Time       `db:"updated_at" json:"updated_at"`
}

// ReportPhoto stores metadata about an uploaded inspection photo.
// FindingID is set when the photo documents a specific finding.
type ReportPhoto struct {
	ID          uuid.UUID  `db:"id" json:"id"`
	ReportID    uuid.UUID  `db:"report_id" json:"report_id"`
	FindingID   *uuid.UUID `db:"finding_id" json:"finding_id"`
	BranchID    uuid.UUID  `db:"branch_id" json:"branch_id"`
	S3Key       string     `db:"s3_key" json:"-"`
	ContentType string     `db:"content_type" json:"content_type"`
	FileSize    int64      `db:"file_size" json:"file_size"`
	Caption     string     `db:"caption" json:"caption"`
	UploadedBy  uuid.UUID  `db:"uploaded_by" json:"uploaded_by"`
	CreatedAt   time.Time  `db:"created_at" json:"created_at"`
}

// Offer represents a priced work proposal sent to a customer. Monetary
// fields are recomputed server-side from the lines, never trusted from input.
type Offer struct {
	ID            uuid.UUID       `db:"id" json:"id"`
	BranchID      uuid.UUID       `db:"branch_id" json:"branch_id"`
	CustomerID    uuid.UUID       `db:"customer_id" json:"customer_id"`
	ReportID      *uuid.UUID      `db:"report_id" json:"report_id"`
	Title         string          `db:"title" json:"title"`
	IntroText     string          `db:"intro_text" json:"intro_text"`
	Currency      string          `db:"currency" json:"currency"`
	VATRate       decimal.Decimal `db:"vat_rate" json:"vat_rate"`
	Subtotal      decimal.Decimal `db:"subtotal" json:"subtotal"`
	VATAmount     decimal.Decimal `db:"vat_amount" json:"vat_amount"`
	Total         decimal.Decimal `db:"total" json:"total"`
	ValidUntil    *time.Time      `db:"valid_until" json:"valid_until"`
	Status        OfferStatus     `db:"status" json:"status"`
	PublicToken   *string         `db:"public_token" json:"-"`
	SentAt        *time.Time      `db:"sent_at" json:"sent_at"`
	DecidedAt     *time.Time      `db:"decided_at" json:"decided_at"`
	DeclineReason string          `db:"decline_reason" json:"decline_reason"`
	ArchivedAt    *time.Time      `db:"archived_at" json:"archived_at"`
	CreatedBy     uuid.UUID       `db:"created_by" json:"created_by"`
	CreatedAt     time.Time       `db:"created_at" json:"created_at"`
	UpdatedAt     time.Time       `db:"updated_at" json:"updated_at"`

	Lines []OfferLine `db:"-" json:"lines,omitempty"`

	// IsExpired is derived from ValidUntil at read time. An expired offer
	// stays pending until decided or archived.
	IsExpired bool `db:"-" json:"expired"`
}

// OfferLine represents a single priced position on an offer.
type OfferLine struct {
	ID          uuid.UUID       `db:"id" json:"id"`
	OfferID     uuid.UUID       `db:"offer_id" json:"offer_id"`
	BranchID    uuid.UUID       `db:"branch_id" json:"branch_id"`
	Position    int             `db:"position" json:"position"`
	Description string          `db:"description" json:"description"`
	Quantity    decimal.Decimal `db:"quantity" json:"quantity"`
	Unit        string          `db:"unit" json:"unit"`
	UnitPrice   decimal.Decimal `db:"unit_price" json:"unit_price"`
	DiscountPct decimal.Decimal `db:"discount_pct" json:"discount_pct"`
	LineTotal   decimal.Decimal `db:"line_total" json:"line_total"`
	CreatedAt   time.Time       `db:"created_at" json:"created_at"`
}

// Appointment represents a scheduled visit by an inspector. Instants are
// stored in UTC; TimeZone preserves the wall-clock zone they were booked in.
type Appointment struct {
	ID             uuid.UUID         `db:"id" json:"id"`
	BranchID       uuid.UUID         `db:"branch_id" json:"branch_id"`
	CustomerID     uuid.UUID         `db:"customer_id" json:"customer_id"`
	BuildingID     *uuid.UUID        `db:"building_id" json:"building_id"`
	InspectorID    uuid.UUID         `db:"inspector_id" json:"inspector_id"`
	ReportID       *uuid.UUID        `db:"report_id" json:"report_id"`
	AgreementID    *uuid.UUID        `db:"agreement_id" json:"agreement_id"`
	Type           AppointmentType   `db:"type" json:"type"`
	Status         AppointmentStatus `db:"status" json:"status"`
	StartsAt       time.Time         `db:"starts_at" json:"starts_at"`
	EndsAt         time.Time         `db:"ends_at" json:"ends_at"`
	TimeZone       string            `db:"time_zone" json:"time_zone"`
	Notes          string            `db:"notes" json:"notes"`
	CancelReason   string            `db:"cancel_reason" json:"cancel_reason"`
	ReminderSentAt *time.Time        `db:"reminder_sent_at" json:"reminder_sent_at"`
	CancelledAt    *time.Time        `db:"cancelled_at" json:"cancelled_at"`
	CompletedAt    *time.Time        `db:"completed_at" json:"completed_at"`
	CreatedBy      uuid.UUID         `db:"created_by" json:"created_by"`
	CreatedAt      time.Time         `db:"created_at" json:"created_at"`
	UpdatedAt      time.Time         `db:"updated_at" json:"updated_at"`
}

// ServiceAgreement represents a recurring maintenance contract. NextDueOn
// drives automatic generation of agreement visits.
type ServiceAgreement struct {
	ID             uuid.UUID       `db:"id" json:"id"`
	BranchID       uuid.UUID       `db:"branch_id" json:"branch_id"`
	CustomerID     uuid.UUID       `db:"customer_id" json:"customer_id"`
	BuildingID     *uuid.UUID      `db:"building_id" json:"building_id"`
	Title          string          `db:"title" json:"title"`
	Description    string          `db:"description" json:"description"`
	IntervalMonths int             `db:"interval_months" json:"interval_months"`
	PricePerVisit  decimal.Decimal `db:"price_per_visit" json:"price_per_visit"`
	Currency       string          `db:"currency" json:"currency"`
	Status         AgreementStatus `db:"status" json:"status"`
	StartDate      time.Time       `db:"start_date" json:"start_date"`
	NextDueOn      time.Time       `db:"next_due_on" json:"next_due_on"`
	LastVisitOn    *time.Time      `db:"last_visit_on" json:"last_visit_on"`
	TerminatedAt   *time.Time      `db:"terminated_at" json:"terminated_at"`
	CreatedBy      uuid.UUID       `db:"created_by" json:"created_by"`
	CreatedAt      time.Time       `db:"created_at" json:"created_at"`
	UpdatedAt      time.Time       `db:"updated_at" json:"updated_at"`
}

// AuditEntry records a mutation or portal decision for later review.
// ActorID is nil for unauthenticated portal actions.
type AuditEntry struct {
	ID         uuid.UUID       `db:"id" json:"id"`
	BranchID   *uuid.UUID      `db:"branch_id" json:"branch_id"`
	ActorID    *uuid.UUID      `db:"actor_id" json:"actor_id"`
	ActorEmail string          `db:"actor_email" json:"actor_email"`
	Action     AuditAction     `db:"action" json:"action"`
	EntityType string          `db:"entity_type" json:"entity_type"`
	EntityID   uuid.UUID       `db:"entity_id" json:"entity_id"`
	Metadata   json.RawMessage `db:"metadata" json:"metadata"`
	CreatedAt  time.Time       `db:"created_at" json:"created_at"`
}

// PDFJob represents a queued server-side PDF render of a report or offer.
type PDFJob struct {
	ID           uuid.UUID     `db:"id" json:"id"`
	BranchID     uuid.UUID     `db:"branch_id" json:"branch_id"`
	EntityType   PDFEntityType `db:"entity_type" json:"entity_type"`
	EntityID     uuid.UUID     `db:"entity_id" json:"entity_id"`
	Status       PDFJobStatus  `db:"status" json:"status"`
	Attempts     int           `db:"attempts" json:"attempts"`
	S3Key        string        `db:"s3_key" json:"-"`
	ErrorMessage string        `db:"error_message" json:"error_message"`
	RequestedBy  uuid.UUID     `db:"requested_by" json:"requested_by"`
	ClaimedAt    *time.Time    `db:"claimed_at" json:"claimed_at"`
	CompletedAt  *time.Time    `db:"completed_at" json:"completed_at"`
	CreatedAt    time.Time     `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time     `db:"updated_at" json:"updated_at"`
}
