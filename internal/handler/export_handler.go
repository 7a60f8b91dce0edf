package handler

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/JesperSolutions/agritectum-platform-sub017/internal/export"
	"github.com/JesperSolutions/agritectum-platform-sub017/internal/service"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// ExportHandler streams xlsx register downloads.
type ExportHandler struct {
	exportService service.ExportService
	logger        *zap.Logger
}

// NewExportHandler creates a new ExportHandler.
func NewExportHandler(exportService service.ExportService, logger *zap.Logger) *ExportHandler {
	return &ExportHandler{exportService: exportService, logger: logger}
}

// ReportsRegister handles GET /api/v1/exports/reports.xlsx
// @Summary Download the reports register
// @Description Download the branch's reports as an xlsx workbook. Accepts the same filters as the report list. Superadmins pass ?branch_id= or omit it for all branches.
// @Tags exports
// @Produce application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Param branch_id query string false "Branch ID (superadmin may omit for all branches)"
// @Param status query string false "Filter by status"
// @Param from query string false "Created on or after (RFC 3339 or YYYY-MM-DD)"
// @Param to query string false "Created before (RFC 3339 or YYYY-MM-DD)"
// @Success 200 {file} file "Workbook"
// @Failure 403 {object} ErrorResponseBody "Forbidden - branch admin required"
// @Security BearerAuth
// @Router /exports/reports.xlsx [get]
func (h *ExportHandler) ReportsRegister(c *gin.Context) {
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

	wb, filename, err := h.exportService.ReportsRegister(c.Request.Context(), actor, branchID, filters)
	if err != nil {
		HandleError(c, err)
		return
	}
	defer func() { _ = wb.Close() }()

	h.stream(c, wb, filename)
}

// OffersRegister handles GET /api/v1/exports/offers.xlsx
func (h *ExportHandler) OffersRegister(c *gin.Context) {
	actor, ok := currentPrincipal(c)
	if !ok {
		return
	}

	branchID, err := parseBranchQuery(c)
	if err != nil {
		RespondError(c, http.StatusBadRequest, "INVALID_ID", "invalid branch_id")
		return
	}

	filters, ok := parseOfferFilters(c)
	if !ok {
		return
	}

	wb, filename, err := h.exportService.OffersRegister(c.Request.Context(), actor, branchID, filters)
	if err != nil {
		HandleError(c, err)
		return
	}
	defer func() { _ = wb.Close() }()

	h.stream(c, wb, filename)
}

// stream writes the workbook straight to the response. Headers must go out
// before the body, so write failures can only be logged.
func (h *ExportHandler) stream(c *gin.Context, wb *export.Workbook, filename string) {
	c.Header("Content-Type", xlsxContentType)
	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, filename))
	if _, err := wb.WriteTo(c.Writer); err != nil {
		h.logger.Error("streaming export failed", zap.String("filename", filename), zap.Error(err))
	}
}
