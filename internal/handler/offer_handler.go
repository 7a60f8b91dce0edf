package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/JesperSolutions/agritectum-platform-sub017/internal/domain"
	"github.com/JesperSolutions/agritectum-platform-sub017/internal/service"
)

// OfferHandler handles offer endpoints. Accept and Decline exist here for
// decisions taken over the phone; customers normally decide through the
// public portal.
type OfferHandler struct {
	offerService service.OfferService
}

// NewOfferHandler creates a new OfferHandler.
func NewOfferHandler(offerService service.OfferService) *OfferHandler {
	return &OfferHandler{offerService: offerService}
}

// Create handles POST /api/v1/offers
// @Summary Create a draft offer
// @Description Create a draft offer, optionally prefilled from a completed report's finding recommendations
// @Tags offers
// @Accept json
// @Produce json
// @Param branch_id query string false "Branch ID (superadmin only)"
// @Param request body CreateOfferRequest true "Offer details"
// @Success 201 {object} Response{data=domain.Offer} "Offer created"
// @Failure 400 {object} ErrorResponseBody "Validation error"
// @Failure 403 {object} ErrorResponseBody "Forbidden"
// @Security BearerAuth
// @Router /offers [post]
func (h *OfferHandler) Create(c *gin.Context) {
	actor, ok := currentPrincipal(c)
	if !ok {
		return
	}

	branchID, err := parseBranchQuery(c)
	if err != nil {
		RespondError(c, http.StatusBadRequest, "INVALID_ID", "invalid branch_id")
		return
	}

	var input service.CreateOfferInput
	if err := c.ShouldBindJSON(&input); err != nil {
		RespondError(c, http.StatusBadRequest, "VALIDATION_ERROR", err.Error())
		return
	}

	offer, err := h.offerService.Create(c.Request.Context(), actor, branchID, input)
	if err != nil {
		HandleError(c, err)
		return
	}

	RespondCreated(c, offer)
}

// List handles GET /api/v1/offers
// @Summary List offers
// @Tags offers
// @Produce json
// @Param branch_id query string false "Branch ID (superadmin only)"
// @Param status query string false "Filter by status" Enums(draft, pending, accepted, declined, archived)
// @Param customer_id query string false "Filter by customer"
// @Param from query string false "Created on or after (RFC 3339 or YYYY-MM-DD)"
// @Param to query string false "Created before (RFC 3339 or YYYY-MM-DD)"
// @Param offset query int false "Offset for pagination" default(0)
// @Param limit query int false "Limit for pagination (max 100)" default(20)
// @Success 200 {object} Response{data=[]domain.Offer,meta=PagMeta} "List of offers"
// @Security BearerAuth
// @Router /offers [get]
func (h *OfferHandler) List(c *gin.Context) {
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

	offers, total, err := h.offerService.List(c.Request.Context(), actor, branchID, filters)
	if err != nil {
		HandleError(c, err)
		return
	}

	RespondPaginated(c, offers, PagMeta{Total: total, Offset: filters.Offset, Limit: filters.Limit})
}

// GetByID handles GET /api/v1/offers/:id
func (h *OfferHandler) GetByID(c *gin.Context) {
	actor, ok := currentPrincipal(c)
	if !ok {
		return
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		RespondError(c, http.StatusBadRequest, "INVALID_ID", "invalid offer ID")
		return
	}

	offer, err := h.offerService.GetByID(c.Request.Context(), actor, id)
	if err != nil {
		HandleError(c, err)
		return
	}

	RespondOK(c, offer)
}

// Update handles PUT /api/v1/offers/:id
func (h *OfferHandler) Update(c *gin.Context) {
	actor, ok := currentPrincipal(c)
	if !ok {
		return
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		RespondError(c, http.StatusBadRequest, "INVALID_ID", "invalid offer ID")
		return
	}

	var input service.UpdateOfferInput
	if err := c.ShouldBindJSON(&input); err != nil {
		RespondError(c, http.StatusBadRequest, "VALIDATION_ERROR", err.Error())
		return
	}

	offer, err := h.offerService.Update(c.Request.Context(), actor, id, input)
	if err != nil {
		HandleError(c, err)
		return
	}

	RespondOK(c, offer)
}

// Send handles POST /api/v1/offers/:id/send
// @Summary Send an offer to the customer
// @Description Moves a draft offer to pending, mints the public token and emails the customer a portal link
// @Tags offers
// @Produce json
// @Param id path string true "Offer ID"
// @Success 200 {object} Response{data=domain.Offer} "Offer sent"
// @Failure 400 {object} ErrorResponseBody "Offer has no lines or customer has no email"
// @Failure 409 {object} ErrorResponseBody "Invalid status change"
// @Security BearerAuth
// @Router /offers/{id}/send [post]
func (h *OfferHandler) Send(c *gin.Context) {
	actor, ok := currentPrincipal(c)
	if !ok {
		return
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		RespondError(c, http.StatusBadRequest, "INVALID_ID", "invalid offer ID")
		return
	}

	offer, err := h.offerService.Send(c.Request.Context(), actor, id)
	if err != nil {
		HandleError(c, err)
		return
	}

	RespondOK(c, offer)
}

// Accept handles POST /api/v1/offers/:id/accept
func (h *OfferHandler) Accept(c *gin.Context) {
	actor, ok := currentPrincipal(c)
	if !ok {
		return
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		RespondError(c, http.StatusBadRequest, "INVALID_ID", "invalid offer ID")
		return
	}

	offer, err := h.offerService.Accept(c.Request.Context(), actor, id)
	if err != nil {
		HandleError(c, err)
		return
	}

	RespondOK(c, offer)
}

// Decline handles POST /api/v1/offers/:id/decline
func (h *OfferHandler) Decline(c *gin.Context) {
	actor, ok := currentPrincipal(c)
	if !ok {
		return
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		RespondError(c, http.StatusBadRequest, "INVALID_ID", "invalid offer ID")
		return
	}

	var input service.DeclineOfferInput
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&input); err != nil {
			RespondError(c, http.StatusBadRequest, "VALIDATION_ERROR", err.Error())
			return
		}
	}

	offer, err := h.offerService.Decline(c.Request.Context(), actor, id, input)
	if err != nil {
		HandleError(c, err)
		return
	}

	RespondOK(c, offer)
}

// Archive handles POST /api/v1/offers/:id/archive
func (h *OfferHandler) Archive(c *gin.Context) {
	actor, ok := currentPrincipal(c)
	if !ok {
		return
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		RespondError(c, http.StatusBadRequest, "INVALID_ID", "invalid offer ID")
		return
	}

	offer, err := h.offerService.Archive(c.Request.Context(), actor, id)
	if err != nil {
		HandleError(c, err)
		return
	}

	RespondOK(c, offer)
}

// parseOfferFilters reads the list filters from the query string, writing
// the 400 itself on a malformed value.
func parseOfferFilters(c *gin.Context) (domain.OfferFilters, bool) {
	var filters domain.OfferFilters
	filters.Status = domain.OfferStatus(c.Query("status"))
	filters.Offset, filters.Limit = parsePagination(c)

	if raw := c.Query("customer_id"); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			RespondError(c, http.StatusBadRequest, "INVALID_ID", "invalid customer_id")
			return filters, false
		}
		filters.CustomerID = id
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
