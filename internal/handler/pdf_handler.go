package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/JesperSolutions/agritectum-platform-sub017/internal/service"
)

// PDFHandler handles the render queue endpoints. Rendering is asynchronous:
// enqueue returns a job, clients poll it and fetch the presigned URL once
// the job is done.
type PDFHandler struct {
	pdfService service.PDFService
}

// NewPDFHandler creates a new PDFHandler.
func NewPDFHandler(pdfService service.PDFService) *PDFHandler {
	return &PDFHandler{pdfService: pdfService}
}

// EnqueueReport handles POST /api/v1/reports/:id/pdf
// @Summary Queue a report PDF render
// @Tags pdf
// @Produce json
// @Param id path string true "Report ID"
// @Success 201 {object} Response{data=domain.PDFJob} "Render job queued"
// @Failure 403 {object} ErrorResponseBody "Forbidden"
// @Failure 404 {object} ErrorResponseBody "Not found"
// @Security BearerAuth
// @Router /reports/{id}/pdf [post]
func (h *PDFHandler) EnqueueReport(c *gin.Context) {
	actor, ok := currentPrincipal(c)
	if !ok {
		return
	}

	reportID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		RespondError(c, http.StatusBadRequest, "INVALID_ID", "invalid report ID")
		return
	}

	job, err := h.pdfService.EnqueueReport(c.Request.Context(), actor, reportID)
	if err != nil {
		HandleError(c, err)
		return
	}

	RespondCreated(c, job)
}

// EnqueueOffer handles POST /api/v1/offers/:id/pdf
func (h *PDFHandler) EnqueueOffer(c *gin.Context) {
	actor, ok := currentPrincipal(c)
	if !ok {
		return
	}

	offerID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		RespondError(c, http.StatusBadRequest, "INVALID_ID", "invalid offer ID")
		return
	}

	job, err := h.pdfService.EnqueueOffer(c.Request.Context(), actor, offerID)
	if err != nil {
		HandleError(c, err)
		return
	}

	RespondCreated(c, job)
}

// GetJob handles GET /api/v1/pdf-jobs/:id
func (h *PDFHandler) GetJob(c *gin.Context) {
	actor, ok := currentPrincipal(c)
	if !ok {
		return
	}

	jobID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		RespondError(c, http.StatusBadRequest, "INVALID_ID", "invalid job ID")
		return
	}

	job, err := h.pdfService.GetJob(c.Request.Context(), actor, jobID)
	if err != nil {
		HandleError(c, err)
		return
	}

	RespondOK(c, job)
}

// Download handles GET /api/v1/pdf-jobs/:id/download
// @Summary Download a rendered PDF
// @Description Returns a presigned URL for a finished render job; 409 while the job is still queued or running
// @Tags pdf
// @Produce json
// @Param id path string true "Job ID"
// @Success 200 {object} Response "Presigned download URL"
// @Failure 409 {object} ErrorResponseBody "Render not finished"
// @Security BearerAuth
// @Router /pdf-jobs/{id}/download [get]
func (h *PDFHandler) Download(c *gin.Context) {
	actor, ok := currentPrincipal(c)
	if !ok {
		return
	}

	jobID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		RespondError(c, http.StatusBadRequest, "INVALID_ID", "invalid job ID")
		return
	}

	url, err := h.pdfService.DownloadURL(c.Request.Context(), actor, jobID)
	if err != nil {
		HandleError(c, err)
		return
	}

	RespondOK(c, gin.H{"url": url})
}
