package handler

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/JesperSolutions/agritectum-platform-sub017/internal/service"
)

// CustomerHandler handles customer endpoints.
type CustomerHandler struct {
	customerService service.CustomerService
}

// NewCustomerHandler creates a new CustomerHandler.
func NewCustomerHandler(customerService service.CustomerService) *CustomerHandler {
	return &CustomerHandler{customerService: customerService}
}

// Create handles POST /api/v1/customers
func (h *CustomerHandler) Create(c *gin.Context) {
	actor, ok := currentPrincipal(c)
	if !ok {
		return
	}

	branchID, err := parseBranchQuery(c)
	if err != nil {
		RespondError(c, http.StatusBadRequest, "INVALID_ID", "invalid branch_id")
		return
	}

	var input service.CreateCustomerInput
	if err := c.ShouldBindJSON(&input); err != nil {
		RespondError(c, http.StatusBadRequest, "VALIDATION_ERROR", err.Error())
		return
	}

	customer, err := h.customerService.Create(c.Request.Context(), actor, branchID, input)
	if err != nil {
		HandleError(c, err)
		return
	}

	RespondCreated(c, customer)
}

// List handles GET /api/v1/customers
// @Summary List customers
// @Description List customers in the caller's branch, optionally filtered by a name/email search term
// @Tags customers
// @Produce json
// @Param branch_id query string false "Branch ID (superadmin only)"
// @Param search query string false "Match against name, contact person or email"
// @Param offset query int false "Offset for pagination" default(0)
// @Param limit query int false "Limit for pagination (max 100)" default(20)
// @Success 200 {object} Response{data=[]domain.Customer,meta=PagMeta} "List of customers"
// @Failure 401 {object} ErrorResponseBody "Unauthorized"
// @Security BearerAuth
// @Router /customers [get]
func (h *CustomerHandler) List(c *gin.Context) {
	actor, ok := currentPrincipal(c)
	if !ok {
		return
	}

	branchID, err := parseBranchQuery(c)
	if err != nil {
		RespondError(c, http.StatusBadRequest, "INVALID_ID", "invalid branch_id")
		return
	}
	offset, limit := parsePagination(c)

	customers, total, err := h.customerService.List(c.Request.Context(), actor, branchID, c.Query("search"), offset, limit)
	if err != nil {
		HandleError(c, err)
		return
	}

	RespondPaginated(c, customers, PagMeta{Total: total, Offset: offset, Limit: limit})
}

// GetByID handles GET /api/v1/customers/:id
func (h *CustomerHandler) GetByID(c *gin.Context) {
	actor, ok := currentPrincipal(c)
	if !ok {
		return
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		RespondError(c, http.StatusBadRequest, "INVALID_ID", "invalid customer ID")
		return
	}

	customer, err := h.customerService.GetByID(c.Request.Context(), actor, id)
	if err != nil {
		HandleError(c, err)
		return
	}

	RespondOK(c, customer)
}

// Update handles PUT /api/v1/customers/:id
func (h *CustomerHandler) Update(c *gin.Context) {
	actor, ok := currentPrincipal(c)
	if !ok {
		return
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		RespondError(c, http.StatusBadRequest, "INVALID_ID", "invalid customer ID")
		return
	}

	var input service.UpdateCustomerInput
	if err := c.ShouldBindJSON(&input); err != nil {
		RespondError(c, http.StatusBadRequest, "VALIDATION_ERROR", err.Error())
		return
	}

	customer, err := h.customerService.Update(c.Request.Context(), actor, id, input)
	if err != nil {
		HandleError(c, err)
		return
	}

	RespondOK(c, customer)
}

// Delete handles DELETE /api/v1/customers/:id
// @Summary Delete a customer
// @Description Refused with 409 while reports, offers, appointments or agreements still reference the customer
// @Tags customers
// @Produce json
// @Param id path string true "Customer ID"
// @Success 200 {object} Response{data=MessageResponse} "Customer deleted"
// @Failure 403 {object} ErrorResponseBody "Forbidden"
// @Failure 409 {object} ErrorResponseBody "Customer still referenced"
// @Security BearerAuth
// @Router /customers/{id} [delete]
func (h *CustomerHandler) Delete(c *gin.Context) {
	actor, ok := currentPrincipal(c)
	if !ok {
		return
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		RespondError(c, http.StatusBadRequest, "INVALID_ID", "invalid customer ID")
		return
	}

	if err := h.customerService.Delete(c.Request.Context(), actor, id); err != nil {
		HandleError(c, err)
		return
	}

	RespondOK(c, gin.H{"message": "customer deleted"})
}

// parsePagination extracts offset and limit from query params with defaults.
func parsePagination(c *gin.Context) (offset, limit int) {
	offset, _ = strconv.Atoi(c.DefaultQuery("offset", "0"))
	limit, _ = strconv.Atoi(c.DefaultQuery("limit", "20"))
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}
	return offset, limit
}

// parseBranchQuery reads the optional ?branch_id= superadmin override.
// Absent means uuid.Nil, which scopes to the caller's own branch.
func parseBranchQuery(c *gin.Context) (uuid.UUID, error) {
	raw := c.Query("branch_id")
	if raw == "" {
		return uuid.Nil, nil
	}
	return uuid.Parse(raw)
}

// parseTimeQuery reads an optional RFC 3339 or date-only query parameter.
func parseTimeQuery(c *gin.Context, name string) (*time.Time, error) {
	raw := c.Query(name)
	if raw == "" {
		return nil, nil
	}
	t, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		t, err = time.Parse("2006-01-02", raw)
		if err != nil {
			return nil, err
		}
	}
	return &t, nil
}
