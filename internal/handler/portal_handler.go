package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/JesperSolutions/agritectum-platform-sub017/internal/service"
)

// PortalHandler serves the unauthenticated customer surface. Everything is
// addressed by opaque token; a token that does not resolve is a plain 404 so
// the routes reveal nothing about what exists.
type PortalHandler struct {
	portalService service.PortalService
}

// NewPortalHandler creates a new PortalHandler.
func NewPortalHandler(portalService service.PortalService) *PortalHandler {
	return &PortalHandler{portalService: portalService}
}

// GetOffer handles GET /portal/offers/:token
func (h *PortalHandler) GetOffer(c *gin.Context) {
	view, err := h.portalService.GetOffer(c.Request.Context(), c.Param("token"))
	if err != nil {
		HandleError(c, err)
		return
	}

	RespondOK(c, view)
}

// AcceptOffer handles POST /portal/offers/:token/accept
func (h *PortalHandler) AcceptOffer(c *gin.Context) {
	if err := h.portalService.AcceptOffer(c.Request.Context(), c.Param("token")); err != nil {
		HandleError(c, err)
		return
	}

	RespondOK(c, gin.H{"message": "offer accepted"})
}

// DeclineOffer handles POST /portal/offers/:token/decline
func (h *PortalHandler) DeclineOffer(c *gin.Context) {
	var input struct {
		Reason string `json:"reason"`
	}
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&input); err != nil {
			RespondError(c, http.StatusBadRequest, "VALIDATION_ERROR", err.Error())
			return
		}
	}

	if err := h.portalService.DeclineOffer(c.Request.Context(), c.Param("token"), input.Reason); err != nil {
		HandleError(c, err)
		return
	}

	RespondOK(c, gin.H{"message": "offer declined"})
}

// GetReport handles GET /portal/reports/:token
func (h *PortalHandler) GetReport(c *gin.Context) {
	view, err := h.portalService.GetReport(c.Request.Context(), c.Param("token"))
	if err != nil {
		HandleError(c, err)
		return
	}

	RespondOK(c, view)
}

// GetReportPDF handles GET /portal/reports/:token/pdf. Redirects to a
// presigned URL when a finished render exists.
func (h *PortalHandler) GetReportPDF(c *gin.Context) {
	url, err := h.portalService.GetReportPDFURL(c.Request.Context(), c.Param("token"))
	if err != nil {
		HandleError(c, err)
		return
	}

	c.Redirect(http.StatusFound, url)
}
