package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/JesperSolutions/agritectum-platform-sub017/internal/service"
)

// BuildingHandler handles building endpoints. Buildings always hang off a
// customer, so the list route lives under /customers/:id/buildings.
type BuildingHandler struct {
	buildingService service.BuildingService
}

// NewBuildingHandler creates a new BuildingHandler.
func NewBuildingHandler(buildingService service.BuildingService) *BuildingHandler {
	return &BuildingHandler{buildingService: buildingService}
}

// Create handles POST /api/v1/buildings
func (h *BuildingHandler) Create(c *gin.Context) {
	actor, ok := currentPrincipal(c)
	if !ok {
		return
	}

	var input service.CreateBuildingInput
	if err := c.ShouldBindJSON(&input); err != nil {
		RespondError(c, http.StatusBadRequest, "VALIDATION_ERROR", err.Error())
		return
	}

	building, err := h.buildingService.Create(c.Request.Context(), actor, input)
	if err != nil {
		HandleError(c, err)
		return
	}

	RespondCreated(c, building)
}

// ListByCustomer handles GET /api/v1/customers/:id/buildings
func (h *BuildingHandler) ListByCustomer(c *gin.Context) {
	actor, ok := currentPrincipal(c)
	if !ok {
		return
	}

	customerID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		RespondError(c, http.StatusBadRequest, "INVALID_ID", "invalid customer ID")
		return
	}

	buildings, err := h.buildingService.ListByCustomer(c.Request.Context(), actor, customerID)
	if err != nil {
		HandleError(c, err)
		return
	}

	RespondOK(c, buildings)
}

// GetByID handles GET /api/v1/buildings/:id
func (h *BuildingHandler) GetByID(c *gin.Context) {
	actor, ok := currentPrincipal(c)
	if !ok {
		return
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		RespondError(c, http.StatusBadRequest, "INVALID_ID", "invalid building ID")
		return
	}

	building, err := h.buildingService.GetByID(c.Request.Context(), actor, id)
	if err != nil {
		HandleError(c, err)
		return
	}

	RespondOK(c, building)
}

// Update handles PUT /api/v1/buildings/:id
func (h *BuildingHandler) Update(c *gin.Context) {
	actor, ok := currentPrincipal(c)
	if !ok {
		return
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		RespondError(c, http.StatusBadRequest, "INVALID_ID", "invalid building ID")
		return
	}

	var input service.UpdateBuildingInput
	if err := c.ShouldBindJSON(&input); err != nil {
		RespondError(c, http.StatusBadRequest, "VALIDATION_ERROR", err.Error())
		return
	}

	building, err := h.buildingService.Update(c.Request.Context(), actor, id, input)
	if err != nil {
		HandleError(c, err)
		return
	}

	RespondOK(c, building)
}

// Delete handles DELETE /api/v1/buildings/:id
func (h *BuildingHandler) Delete(c *gin.Context) {
	actor, ok := currentPrincipal(c)
	if !ok {
		return
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		RespondError(c, http.StatusBadRequest, "INVALID_ID", "invalid building ID")
		return
	}

	if err := h.buildingService.Delete(c.Request.Context(), actor, id); err != nil {
		HandleError(c, err)
		return
	}

	RespondOK(c, gin.H{"message": "building deleted"})
}
