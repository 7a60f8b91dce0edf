package domain

// PermissionLevel is the flat access level carried in token claims.
// Levels compare numerically; there is no role composition.
type PermissionLevel int

const (
	LevelInspector   PermissionLevel = 0
	LevelBranchAdmin PermissionLevel = 1
	LevelSuperadmin  PermissionLevel = 2
)

// Valid reports whether the level is one of the three known levels.
func (p PermissionLevel) Valid() bool {
	return p >= LevelInspector && p <= LevelSuperadmin
}

// Label returns the human-readable name used in emails and exports.
func (p PermissionLevel) Label() string {
	switch p {
	case LevelInspector:
		return "inspector"
	case LevelBranchAdmin:
		return "branch admin"
	case LevelSuperadmin:
		return "superadmin"
	default:
		return "unknown"
	}
}

// ReportStatus represents the forward-only lifecycle of a report.
type ReportStatus string

const (
	ReportStatusDraft     ReportStatus = "draft"
	ReportStatusCompleted ReportStatus = "completed"
	ReportStatusSent      ReportStatus = "sent"
	ReportStatusArchived  ReportStatus = "archived"
)

// OfferStatus represents the lifecycle of an offer. Pending offers are the
// only ones reachable through the public portal.
type OfferStatus string

const (
	OfferStatusDraft    OfferStatus = "draft"
	OfferStatusPending  OfferStatus = "pending"
	OfferStatusAccepted OfferStatus = "accepted"
	OfferStatusDeclined OfferStatus = "declined"
	OfferStatusArchived OfferStatus = "archived"
)

// AppointmentStatus represents the lifecycle of a scheduled visit.
type AppointmentStatus string

const (
	AppointmentStatusScheduled AppointmentStatus = "scheduled"
	AppointmentStatusCompleted AppointmentStatus = "completed"
	AppointmentStatusCancelled AppointmentStatus = "cancelled"
	AppointmentStatusNoShow    AppointmentStatus = "no_show"
)

// AppointmentType classifies what kind of visit is booked.
type AppointmentType string

const (
	AppointmentTypeInspection     AppointmentType = "inspection"
	AppointmentTypeFollowUp       AppointmentType = "follow_up"
	AppointmentTypeMaintenance    AppointmentType = "maintenance"
	AppointmentTypeAgreementVisit AppointmentType = "agreement_visit"
)

// AgreementStatus represents the lifecycle of a service agreement.
type AgreementStatus string

const (
	AgreementStatusActive     AgreementStatus = "active"
	AgreementStatusPaused     AgreementStatus = "paused"
	AgreementStatusTerminated AgreementStatus = "terminated"
)

// FindingSeverity grades how urgent a report finding is.
type FindingSeverity string

const (
	SeverityLow      FindingSeverity = "low"
	SeverityMedium   FindingSeverity = "medium"
	SeverityHigh     FindingSeverity = "high"
	SeverityCritical FindingSeverity = "critical"
)

// ValidSeverities enumerates the accepted finding severities.
var ValidSeverities = map[FindingSeverity]bool{
	SeverityLow:      true,
	SeverityMedium:   true,
	SeverityHigh:     true,
	SeverityCritical: true,
}

// RoofType classifies the roof construction of a building.
type RoofType string

const (
	RoofTypeFlat    RoofType = "flat"
	RoofTypePitched RoofType = "pitched"
	RoofTypeGreen   RoofType = "green"
	RoofTypeMetal   RoofType = "metal"
	RoofTypeTile    RoofType = "tile"
	RoofTypeOther   RoofType = "other"
)

// PDFJobStatus represents the lifecycle of a queued PDF render.
type PDFJobStatus string

const (
	PDFJobStatusQueued    PDFJobStatus = "queued"
	PDFJobStatusRendering PDFJobStatus = "rendering"
	PDFJobStatusDone      PDFJobStatus = "done"
	PDFJobStatusFailed    PDFJobStatus = "failed"
)

// PDFEntityType names the document kinds the render queue accepts.
type PDFEntityType string

const (
	PDFEntityReport PDFEntityType = "report"
	PDFEntityOffer  PDFEntityType = "offer"
)

// AuditAction names the recorded mutation kinds.
type AuditAction string

const (
	AuditActionCreate        AuditAction = "create"
	AuditActionUpdate        AuditAction = "update"
	AuditActionDelete        AuditAction = "delete"
	AuditActionStatusChange  AuditAction = "status_change"
	AuditActionSend          AuditAction = "send"
	AuditActionPortalAccept  AuditAction = "portal_accept"
	AuditActionPortalDecline AuditAction = "portal_decline"
	AuditActionLogin         AuditAction = "login"
	AuditActionExport        AuditAction = "export"
)

// AllowedPhotoTypes maps accepted photo MIME types to file extensions.
var AllowedPhotoTypes = map[string]string{
	"image/jpeg": "jpg",
	"image/png":  "png",
	"image/webp": "webp",
}

// AuthProvider names a social identity provider accepted at staff login.
type AuthProvider string

const AuthProviderGoogle AuthProvider = "google"
