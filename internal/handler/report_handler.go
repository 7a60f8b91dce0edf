package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/JesperSolutions/agritectum-platform-sub017/internal/authz"
	"github.com/JesperSolutions/agritectum-platform-sub017/internal/domain"
	"github.com/JesperSolutions/agritectum-platform-sub017/internal/service"
)

// ReportHandler handles inspection report endpoints.
type ReportHandler struct {
	reportService service.ReportService
}

// NewReportHandler creates a new ReportHandler.
func NewReportHandler(reportService service.ReportService) *ReportHandler {
	return &ReportHandler{reportService: reportService}
}

// Create handles POST /api/v1/reports
// @Summary Create a draft report
// @Description Create a draft inspection report. The inspector defaults to the caller when not given.
// @Tags reports
// @Accept json
// @Produce json
// @Param branch_id query string false "Branch ID (superadmin only)"
// @Param request body CreateReportRequest true "Report details"
// @Success 201 {object} Response{data=domain.Report} "Report created"
// @Failure 400 {object} ErrorResponseBody "Validation error"
// @Failure 403 {object} ErrorResponseBody "Forbidden"
// @Security BearerAuth
// @Router /reports [post]
func (h *ReportHandler) Create(c *gin.Context) {
	actor, ok := currentPrincipal(c)
	if !ok {
		return
	}

	branchID, err := parseBranchQuery(c)
	if err != nil {
		RespondError(c, http.StatusBadRequest, "INVALID_ID", "invalid branch_id")
		return
	}

	var input service.CreateReportInput
	if err := c.ShouldBindJSON(&input); err != nil {
		RespondError(c, http.StatusBadRequest, "VALIDATION_ERROR", err.Error())
		return
	}

	report, err := h.reportService.Create(c.Request.Context(), actor, branchID, input)
	if err != nil {
		HandleError(c, err)
		return
	}

	RespondCreated(c, report)
}

// List handles GET /api/v1/reports
// @Summary List reports
// @Description List reports in the caller's branch with optional filters. All filtering happens in SQL.
// @Tags reports
// @Produce json
// @Param branch_id query string false "Branch ID (superadmin only)"
// @Param status query string false "Filter by status" Enums(draft, completed, sent, archived)
// @Param customer_id query string false "Filter by customer"
// @Param inspector_id query string false "Filter by inspector"
// @Param from query string false "Created on or after (RFC 3339 or YYYY-MM-DD)"
// @Param to query string false "Created before (RFC 3339 or YYYY-MM-DD)"
// @Param offset query int false "Offset for pagination" default(0)
// @Param limit query int false "Limit for pagination (max 100)" default(20)
// @Success 200 {object} Response{data=[]domain.Report,meta=PagMeta} "List of reports"
// @Failure 401 {object} ErrorResponseBody "Unauthorized"
// @Security BearerAuth
// @Router /reports [get]
func (h *ReportHandler) List(c *gin.Context) {
	actor, ok := currentPrincipal(c)
	if !ok {
		return
	}

	branchID, err := parseBranchQuery(c)
	if err != nil {
		RespondError(c, http.StatusBadRequest, "INVALID_ID", "invalid branch_id")
		return
	}

	filters, ok := parseReportFilters(c)
	if !ok {
		return
	}

	reports, total, err := h.reportService.List(c.Request.Context(), actor, branchID, filters)
	if err != nil {
		HandleError(c, err)
		return
	}

	RespondPaginated(c, reports, PagMeta{Total: total, Offset: filters.Offset, Limit: filters.Limit})
}

// GetByID handles GET /api/v1/reports/:id
func (h *ReportHandler) GetByID(c *gin.Context) {
	actor, ok := currentPrincipal(c)
	if !ok {
		return
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		RespondError(c, http.StatusBadRequest, "INVALID_ID", "invalid report ID")
		return
	}

	report, err := h.reportService.GetByID(c.Request.Context(), actor, id)
	if err != nil {
		HandleError(c, err)
		return
	}

	RespondOK(c, report)
}

// Update handles PUT /api/v1/reports/:id
func (h *ReportHandler) Update(c *gin.Context) {
	actor, ok := currentPrincipal(c)
	if !ok {
		return
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		RespondError(c, http.StatusBadRequest, "INVALID_ID", "invalid report ID")
		return
	}

	var input service.UpdateReportInput
	if err := c.ShouldBindJSON(&input); err != nil {
		RespondError(c, http.StatusBadRequest, "VALIDATION_ERROR", err.Error())
		return
	}

	report, err := h.reportService.Update(c.Request.Context(), actor, id, input)
	if err != nil {
		HandleError(c, err)
		return
	}

	RespondOK(c, report)
}

// AddFinding handles POST /api/v1/reports/:id/findings
func (h *ReportHandler) AddFinding(c *gin.Context) {
	actor, ok := currentPrincipal(c)
	if !ok {
		return
	}

	reportID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		RespondError(c, http.StatusBadRequest, "INVALID_ID", "invalid report ID")
		return
	}

	var input service.FindingInput
	if err := c.ShouldBindJSON(&input); err != nil {
		RespondError(c, http.StatusBadRequest, "VALIDATION_ERROR", err.Error())
		return
	}

	finding, err := h.reportService.AddFinding(c.Request.Context(), actor, reportID, input)
	if err != nil {
		HandleError(c, err)
		return
	}

	RespondCreated(c, finding)
}

// UpdateFinding handles PUT /api/v1/reports/:id/findings/:findingId
func (h *ReportHandler) UpdateFinding(c *gin.Context) {
	actor, ok := currentPrincipal(c)
	if !ok {
		return
	}

	reportID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		RespondError(c, http.StatusBadRequest, "INVALID_ID", "invalid report ID")
		return
	}
	findingID, err := uuid.Parse(c.Param("findingId"))
	if err != nil {
		RespondError(c, http.StatusBadRequest, "INVALID_ID", "invalid finding ID")
		return
	}

	var input service.FindingInput
	if err := c.ShouldBindJSON(&input); err != nil {
		RespondError(c, http.StatusBadRequest, "VALIDATION_ERROR", err.Error())
		return
	}

	finding, err := h.reportService.UpdateFinding(c.Request.Context(), actor, reportID, findingID, input)
	if err != nil {
		HandleError(c, err)
		return
	}

	RespondOK(c, finding)
}

// DeleteFinding handles DELETE /api/v1/reports/:id/findings/:findingId
func (h *ReportHandler) DeleteFinding(c *gin.Context) {
	actor, ok := currentPrincipal(c)
	if !ok {
		return
	}

	reportID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		RespondError(c, http.StatusBadRequest, "INVALID_ID", "invalid report ID")
		return
	}
	findingID, err := uuid.Parse(c.Param("findingId"))
	if err != nil {
		RespondError(c, http.StatusBadRequest, "INVALID_ID", "invalid finding ID")
		return
	}

	if err := h.reportService.DeleteFinding(c.Request.Context(), actor, reportID, findingID); err != nil {
		HandleError(c, err)
		return
	}

	RespondOK(c, gin.H{"message": "finding removed"})
}

// UploadPhoto handles POST /api/v1/reports/:id/photos
// @Summary Attach a photo to a report
// @Description Upload a photo (JPG, PNG or WebP) for a draft report, optionally linked to a finding
// @Tags reports
// @Accept multipart/form-data
// @Produce json
// @Param id path string true "Report ID"
// @Param file formData file true "Photo to upload"
// @Param caption formData string false "Caption shown under the photo"
// @Param finding_id formData string false "Finding the photo belongs to"
// @Success 201 {object} Response{data=domain.ReportPhoto} "Photo uploaded"
// @Failure 400 {object} ErrorResponseBody "Missing file or unsupported type"
// @Failure 409 {object} ErrorResponseBody "Report not editable"
// @Failure 413 {object} ErrorResponseBody "Photo too large"
// @Security BearerAuth
// @Router /reports/{id}/photos [post]
func (h *ReportHandler) UploadPhoto(c *gin.Context) {
	actor, ok := currentPrincipal(c)
	if !ok {
		return
	}

	reportID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		RespondError(c, http.StatusBadRequest, "INVALID_ID", "invalid report ID")
		return
	}

	file, header, err := c.Request.FormFile("file")
	if err != nil {
		RespondError(c, http.StatusBadRequest, "MISSING_FILE", "file field is required")
		return
	}
	defer func() { _ = file.Close() }()

	input := service.PhotoUploadInput{
		ReportID: reportID,
		Caption:  c.PostForm("caption"),
		File:     file,
		Header:   header,
	}
	if raw := c.PostForm("finding_id"); raw != "" {
		findingID, parseErr := uuid.Parse(raw)
		if parseErr != nil {
			RespondError(c, http.StatusBadRequest, "INVALID_ID", "invalid finding_id")
			return
		}
		input.FindingID = &findingID
	}

	photo, err := h.reportService.UploadPhoto(c.Request.Context(), actor, input)
	if err != nil {
		HandleError(c, err)
		return
	}

	RespondCreated(c, photo)
}

// DeletePhoto handles DELETE /api/v1/reports/:id/photos/:photoId
func (h *ReportHandler) DeletePhoto(c *gin.Context) {
	actor, ok := currentPrincipal(c)
	if !ok {
		return
	}

	reportID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		RespondError(c, http.StatusBadRequest, "INVALID_ID", "invalid report ID")
		return
	}
	photoID, err := uuid.Parse(c.Param("photoId"))
	if err != nil {
		RespondError(c, http.StatusBadRequest, "INVALID_ID", "invalid photo ID")
		return
	}

	if err := h.reportService.DeletePhoto(c.Request.Context(), actor, reportID, photoID); err != nil {
		HandleError(c, err)
		return
	}

	RespondOK(c, gin.H{"message": "photo removed"})
}

// GetPhotoURL handles GET /api/v1/reports/:id/photos/:photoId/url
func (h *ReportHandler) GetPhotoURL(c *gin.Context) {
	actor, ok := currentPrincipal(c)
	if !ok {
		return
	}

	reportID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		RespondError(c, http.StatusBadRequest, "INVALID_ID", "invalid report ID")
		return
	}
	photoID, err := uuid.Parse(c.Param("photoId"))
	if err != nil {
		RespondError(c, http.StatusBadRequest, "INVALID_ID", "invalid photo ID")
		return
	}

	url, err := h.reportService.GetPhotoURL(c.Request.Context(), actor, reportID, photoID)
	if err != nil {
		HandleError(c, err)
		return
	}

	RespondOK(c, gin.H{"url": url})
}

// Complete handles POST /api/v1/reports/:id/complete
func (h *ReportHandler) Complete(c *gin.Context) {
	h.transition(c, h.reportService.Complete)
}

// Send handles POST /api/v1/reports/:id/send
// @Summary Send a report to the customer
// @Description Moves a completed report to sent, mints the share token and emails the customer a portal link
// @Tags reports
// @Produce json
// @Param id path string true "Report ID"
// @Success 200 {object} Response{data=domain.Report} "Report sent"
// @Failure 400 {object} ErrorResponseBody "Customer has no email"
// @Failure 409 {object} ErrorResponseBody "Invalid status change"
// @Security BearerAuth
// @Router /reports/{id}/send [post]
func (h *ReportHandler) Send(c *gin.Context) {
	h.transition(c, h.reportService.Send)
}

// Archive handles POST /api/v1/reports/:id/archive
func (h *ReportHandler) Archive(c *gin.Context) {
	h.transition(c, h.reportService.Archive)
}

// transition runs the shared id-parse/respond plumbing of the status
// transition endpoints.
func (h *ReportHandler) transition(c *gin.Context, op func(ctx context.Context, actor authz.Principal, id uuid.UUID) (*domain.Report, error)) {
	actor, ok := currentPrincipal(c)
	if !ok {
		return
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		RespondError(c, http.StatusBadRequest, "INVALID_ID", "invalid report ID")
		return
	}

	report, err := op(c.Request.Context(), actor, id)
	if err != nil {
		HandleError(c, err)
		return
	}

	RespondOK(c, report)
}

// parseReportFilters reads the list filters from the query string, writing
// the 400 itself on a malformed value.
func parseReportFilters(c *gin.Context) (domain.ReportFilters, bool) {
	var filters domain.ReportFilters
	filters.Status = domain.ReportStatus(c.Query("status"))
	filters.Offset, filters.Limit = parsePagination(c)

	if raw := c.Query("customer_id"); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			RespondError(c, http.StatusBadRequest, "INVALID_ID", "invalid customer_id")
			return filters, false
		}
		filters.CustomerID = id
	}
	if raw := c.Query("inspector_id"); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			RespondError(c, http.StatusBadRequest, "INVALID_ID", "invalid inspector_id")
			return filters, false
		}
		filters.InspectorID = id
	}

	from, err := parseTimeQuery(c, "from")
	if err != nil {
		RespondError(c, http.StatusBadRequest, "VALIDATION_ERROR", "invalid from date")
		return filters, false
	}
	to, err := parseTimeQuery(c, "to")
	if err != nil {
		RespondError(c, http.StatusBadRequest, "VALIDATION_ERROR", "invalid to date")
		return filters, false
	}
	filters.From, filters.To = from, to
	return filters, true
}
