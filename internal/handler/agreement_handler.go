package handler

import (
	"context"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/JesperSolutions/agritectum-platform-sub017/internal/authz"
	"github.com/JesperSolutions/agritectum-platform-sub017/internal/domain"
	"github.com/JesperSolutions/agritectum-platform-sub017/internal/service"
)

// AgreementHandler handles service agreement endpoints.
type AgreementHandler struct {
	agreementService service.AgreementService
}

// NewAgreementHandler creates a new AgreementHandler.
func NewAgreementHandler(agreementService service.AgreementService) *AgreementHandler {
	return &AgreementHandler{agreementService: agreementService}
}

// Create handles POST /api/v1/agreements
func (h *AgreementHandler) Create(c *gin.Context) {
	actor, ok := currentPrincipal(c)
	if !ok {
		return
	}

	branchID, err := parseBranchQuery(c)
	if err != nil {
		RespondError(c, http.StatusBadRequest, "INVALID_ID", "invalid branch_id")
		return
	}

	var input service.CreateAgreementInput
	if err := c.ShouldBindJSON(&input); err != nil {
		RespondError(c, http.StatusBadRequest, "VALIDATION_ERROR", err.Error())
		return
	}

	agreement, err := h.agreementService.Create(c.Request.Context(), actor, branchID, input)
	if err != nil {
		HandleError(c, err)
		return
	}

	RespondCreated(c, agreement)
}

// List handles GET /api/v1/agreements
func (h *AgreementHandler) List(c *gin.Context) {
	actor, ok := currentPrincipal(c)
	if !ok {
		return
	}

	branchID, err := parseBranchQuery(c)
	if err != nil {
		RespondError(c, http.StatusBadRequest, "INVALID_ID", "invalid branch_id")
		return
	}

	var filters domain.AgreementFilters
	filters.Status = domain.AgreementStatus(c.Query("status"))
	filters.Offset, filters.Limit = parsePagination(c)
	if raw := c.Query("customer_id"); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			RespondError(c, http.StatusBadRequest, "INVALID_ID", "invalid customer_id")
			return
		}
		filters.CustomerID = id
	}

	agreements, total, err := h.agreementService.List(c.Request.Context(), actor, branchID, filters)
	if err != nil {
		HandleError(c, err)
		return
	}

	RespondPaginated(c, agreements, PagMeta{Total: total, Offset: filters.Offset, Limit: filters.Limit})
}

// ListDue handles GET /api/v1/agreements/due. Returns the agreements whose
// next visit falls within the horizon, for the planning view.
func (h *AgreementHandler) ListDue(c *gin.Context) {
	actor, ok := currentPrincipal(c)
	if !ok {
		return
	}

	horizon, _ := strconv.Atoi(c.DefaultQuery("horizon_days", "30"))

	agreements, err := h.agreementService.ListDue(c.Request.Context(), actor, horizon)
	if err != nil {
		HandleError(c, err)
		return
	}

	RespondOK(c, agreements)
}

// GetByID handles GET /api/v1/agreements/:id
func (h *AgreementHandler) GetByID(c *gin.Context) {
	actor, ok := currentPrincipal(c)
	if !ok {
		return
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		RespondError(c, http.StatusBadRequest, "INVALID_ID", "invalid agreement ID")
		return
	}

	agreement, err := h.agreementService.GetByID(c.Request.Context(), actor, id)
	if err != nil {
		HandleError(c, err)
		return
	}

	RespondOK(c, agreement)
}

// Update handles PUT /api/v1/agreements/:id
func (h *AgreementHandler) Update(c *gin.Context) {
	actor, ok := currentPrincipal(c)
	if !ok {
		return
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		RespondError(c, http.StatusBadRequest, "INVALID_ID", "invalid agreement ID")
		return
	}

	var input service.UpdateAgreementInput
	if err := c.ShouldBindJSON(&input); err != nil {
		RespondError(c, http.StatusBadRequest, "VALIDATION_ERROR", err.Error())
		return
	}

	agreement, err := h.agreementService.Update(c.Request.Context(), actor, id, input)
	if err != nil {
		HandleError(c, err)
		return
	}

	RespondOK(c, agreement)
}

// Pause handles POST /api/v1/agreements/:id/pause
func (h *AgreementHandler) Pause(c *gin.Context) {
	h.transition(c, h.agreementService.Pause)
}

// Resume handles POST /api/v1/agreements/:id/resume
func (h *AgreementHandler) Resume(c *gin.Context) {
	h.transition(c, h.agreementService.Resume)
}

// Terminate handles POST /api/v1/agreements/:id/terminate
func (h *AgreementHandler) Terminate(c *gin.Context) {
	h.transition(c, h.agreementService.Terminate)
}

// GenerateVisit handles POST /api/v1/agreements/:id/generate-visit
// @Summary Generate the next agreement visit
// @Description Books the next due visit as a draft appointment and advances next_due_on. Refused while an earlier generated visit is still scheduled.
// @Tags agreements
// @Produce json
// @Param id path string true "Agreement ID"
// @Success 201 {object} Response{data=domain.Appointment} "Visit booked"
// @Failure 409 {object} ErrorResponseBody "Agreement not active or visit already open"
// @Security BearerAuth
// @Router /agreements/{id}/generate-visit [post]
func (h *AgreementHandler) GenerateVisit(c *gin.Context) {
	actor, ok := currentPrincipal(c)
	if !ok {
		return
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		RespondError(c, http.StatusBadRequest, "INVALID_ID", "invalid agreement ID")
		return
	}

	appointment, err := h.agreementService.GenerateVisit(c.Request.Context(), actor, id)
	if err != nil {
		HandleError(c, err)
		return
	}

	RespondCreated(c, appointment)
}

func (h *AgreementHandler) transition(c *gin.Context, op func(ctx context.Context, actor authz.Principal, id uuid.UUID) (*domain.ServiceAgreement, error)) {
	actor, ok := currentPrincipal(c)
	if !ok {
		return
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		RespondError(c, http.StatusBadRequest, "INVALID_ID", "invalid agreement ID")
		return
	}

	agreement, err := op(c.Request.Context(), actor, id)
	if err != nil {
		HandleError(c, err)
		return
	}

	RespondOK(c, agreement)
}
