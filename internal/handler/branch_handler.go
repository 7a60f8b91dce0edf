package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/JesperSolutions/agritectum-platform-sub017/internal/service"
)

// BranchHandler handles branch management endpoints.
type BranchHandler struct {
	branchService service.BranchService
}

// NewBranchHandler creates a new BranchHandler.
func NewBranchHandler(branchService service.BranchService) *BranchHandler {
	return &BranchHandler{branchService: branchService}
}

// Create handles POST /api/v1/branches
// @Summary Create a branch
// @Description Create a new branch (superadmin only)
// @Tags branches
// @Accept json
// @Produce json
// @Param request body CreateBranchRequest true "Branch details"
// @Success 201 {object} Response{data=domain.Branch} "Branch created"
// @Failure 400 {object} ErrorResponseBody "Validation error"
// @Failure 403 {object} ErrorResponseBody "Forbidden - superadmin only"
// @Failure 409 {object} ErrorResponseBody "Slug already exists"
// @Security BearerAuth
// @Router /branches [post]
func (h *BranchHandler) Create(c *gin.Context) {
	actor, ok := currentPrincipal(c)
	if !ok {
		return
	}

	var input service.CreateBranchInput
	if err := c.ShouldBindJSON(&input); err != nil {
		RespondError(c, http.StatusBadRequest, "VALIDATION_ERROR", err.Error())
		return
	}

	branch, err := h.branchService.Create(c.Request.Context(), actor, input)
	if err != nil {
		HandleError(c, err)
		return
	}

	RespondCreated(c, branch)
}

// List handles GET /api/v1/branches
// @Summary List branches
// @Description Superadmins see every branch; branch members only their own
// @Tags branches
// @Produce json
// @Success 200 {object} Response{data=[]domain.Branch} "List of branches"
// @Failure 401 {object} ErrorResponseBody "Unauthorized"
// @Security BearerAuth
// @Router /branches [get]
func (h *BranchHandler) List(c *gin.Context) {
	actor, ok := currentPrincipal(c)
	if !ok {
		return
	}

	branches, err := h.branchService.List(c.Request.Context(), actor)
	if err != nil {
		HandleError(c, err)
		return
	}

	RespondOK(c, branches)
}

// GetByID handles GET /api/v1/branches/:id
// @Summary Get a branch
// @Tags branches
// @Produce json
// @Param id path string true "Branch ID"
// @Success 200 {object} Response{data=domain.Branch} "Branch"
// @Failure 403 {object} ErrorResponseBody "Forbidden"
// @Failure 404 {object} ErrorResponseBody "Not found"
// @Security BearerAuth
// @Router /branches/{id} [get]
func (h *BranchHandler) GetByID(c *gin.Context) {
	actor, ok := currentPrincipal(c)
	if !ok {
		return
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		RespondError(c, http.StatusBadRequest, "INVALID_ID", "invalid branch ID")
		return
	}

	branch, err := h.branchService.GetByID(c.Request.Context(), actor, id)
	if err != nil {
		HandleError(c, err)
		return
	}

	RespondOK(c, branch)
}

// Update handles PUT /api/v1/branches/:id
// @Summary Update a branch
// @Description Update branch details (superadmin only)
// @Tags branches
// @Accept json
// @Produce json
// @Param id path string true "Branch ID"
// @Param request body UpdateBranchRequest true "Fields to update"
// @Success 200 {object} Response{data=domain.Branch} "Branch updated"
// @Failure 403 {object} ErrorResponseBody "Forbidden - superadmin only"
// @Failure 404 {object} ErrorResponseBody "Not found"
// @Security BearerAuth
// @Router /branches/{id} [put]
func (h *BranchHandler) Update(c *gin.Context) {
	actor, ok := currentPrincipal(c)
	if !ok {
		return
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		RespondError(c, http.StatusBadRequest, "INVALID_ID", "invalid branch ID")
		return
	}

	var input service.UpdateBranchInput
	if err := c.ShouldBindJSON(&input); err != nil {
		RespondError(c, http.StatusBadRequest, "VALIDATION_ERROR", err.Error())
		return
	}

	branch, err := h.branchService.Update(c.Request.Context(), actor, id, input)
	if err != nil {
		HandleError(c, err)
		return
	}

	RespondOK(c, branch)
}

// SetActive handles PATCH /api/v1/branches/:id/active
// @Summary Activate or deactivate a branch
// @Description Deactivating a branch blocks logins of its members (superadmin only)
// @Tags branches
// @Accept json
// @Produce json
// @Param id path string true "Branch ID"
// @Param request body SetActiveRequest true "Active flag"
// @Success 200 {object} Response{data=MessageResponse} "Branch updated"
// @Failure 403 {object} ErrorResponseBody "Forbidden - superadmin only"
// @Security BearerAuth
// @Router /branches/{id}/active [patch]
func (h *BranchHandler) SetActive(c *gin.Context) {
	actor, ok := currentPrincipal(c)
	if !ok {
		return
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		RespondError(c, http.StatusBadRequest, "INVALID_ID", "invalid branch ID")
		return
	}

	var input struct {
		IsActive *bool `json:"is_active" binding:"required"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		RespondError(c, http.StatusBadRequest, "VALIDATION_ERROR", err.Error())
		return
	}

	if err := h.branchService.SetActive(c.Request.Context(), actor, id, *input.IsActive); err != nil {
		HandleError(c, err)
		return
	}

	RespondOK(c, gin.H{"message": "branch updated"})
}
