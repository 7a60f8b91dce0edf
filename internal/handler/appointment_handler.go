package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/JesperSolutions/agritectum-platform-sub017/internal/domain"
	"github.com/JesperSolutions/agritectum-platform-sub017/internal/service"
)

// AppointmentHandler handles scheduling endpoints. Booking requests speak
// wall-clock time (date + times + zone); responses carry the stored UTC
// instants plus the zone.
type AppointmentHandler struct {
	appointmentService service.AppointmentService
}

// NewAppointmentHandler creates a new AppointmentHandler.
func NewAppointmentHandler(appointmentService service.AppointmentService) *AppointmentHandler {
	return &AppointmentHandler{appointmentService: appointmentService}
}

// Create handles POST /api/v1/appointments
func (h *AppointmentHandler) Create(c *gin.Context) {
	actor, ok := currentPrincipal(c)
	if !ok {
		return
	}

	branchID, err := parseBranchQuery(c)
	if err != nil {
		RespondError(c, http.StatusBadRequest, "INVALID_ID", "invalid branch_id")
		return
	}

	var input service.CreateAppointmentInput
	if err := c.ShouldBindJSON(&input); err != nil {
		RespondError(c, http.StatusBadRequest, "VALIDATION_ERROR", err.Error())
		return
	}

	appointment, err := h.appointmentService.Create(c.Request.Context(), actor, branchID, input)
	if err != nil {
		HandleError(c, err)
		return
	}

	RespondCreated(c, appointment)
}

// List handles GET /api/v1/appointments
func (h *AppointmentHandler) List(c *gin.Context) {
	actor, ok := currentPrincipal(c)
	if !ok {
		return
	}

	branchID, err := parseBranchQuery(c)
	if err != nil {
		RespondError(c, http.StatusBadRequest, "INVALID_ID", "invalid branch_id")
		return
	}

	filters, ok := parseAppointmentFilters(c)
	if !ok {
		return
	}

	appointments, total, err := h.appointmentService.List(c.Request.Context(), actor, branchID, filters)
	if err != nil {
		HandleError(c, err)
		return
	}

	RespondPaginated(c, appointments, PagMeta{Total: total, Offset: filters.Offset, Limit: filters.Limit})
}

// GetByID handles GET /api/v1/appointments/:id
func (h *AppointmentHandler) GetByID(c *gin.Context) {
	actor, ok := currentPrincipal(c)
	if !ok {
		return
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		RespondError(c, http.StatusBadRequest, "INVALID_ID", "invalid appointment ID")
		return
	}

	appointment, err := h.appointmentService.GetByID(c.Request.Context(), actor, id)
	if err != nil {
		HandleError(c, err)
		return
	}

	RespondOK(c, appointment)
}

// Reschedule handles PUT /api/v1/appointments/:id
func (h *AppointmentHandler) Reschedule(c *gin.Context) {
	actor, ok := currentPrincipal(c)
	if !ok {
		return
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		RespondError(c, http.StatusBadRequest, "INVALID_ID", "invalid appointment ID")
		return
	}

	var input service.RescheduleAppointmentInput
	if err := c.ShouldBindJSON(&input); err != nil {
		RespondError(c, http.StatusBadRequest, "VALIDATION_ERROR", err.Error())
		return
	}

	appointment, err := h.appointmentService.Reschedule(c.Request.Context(), actor, id, input)
	if err != nil {
		HandleError(c, err)
		return
	}

	RespondOK(c, appointment)
}

// Cancel handles POST /api/v1/appointments/:id/cancel
func (h *AppointmentHandler) Cancel(c *gin.Context) {
	actor, ok := currentPrincipal(c)
	if !ok {
		return
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		RespondError(c, http.StatusBadRequest, "INVALID_ID", "invalid appointment ID")
		return
	}

	var input service.CancelAppointmentInput
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&input); err != nil {
			RespondError(c, http.StatusBadRequest, "VALIDATION_ERROR", err.Error())
			return
		}
	}

	appointment, err := h.appointmentService.Cancel(c.Request.Context(), actor, id, input)
	if err != nil {
		HandleError(c, err)
		return
	}

	RespondOK(c, appointment)
}

// Complete handles POST /api/v1/appointments/:id/complete
func (h *AppointmentHandler) Complete(c *gin.Context) {
	actor, ok := currentPrincipal(c)
	if !ok {
		return
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		RespondError(c, http.StatusBadRequest, "INVALID_ID", "invalid appointment ID")
		return
	}

	var input service.CompleteAppointmentInput
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&input); err != nil {
			RespondError(c, http.StatusBadRequest, "VALIDATION_ERROR", err.Error())
			return
		}
	}

	appointment, err := h.appointmentService.Complete(c.Request.Context(), actor, id, input)
	if err != nil {
		HandleError(c, err)
		return
	}

	RespondOK(c, appointment)
}

// MarkNoShow handles POST /api/v1/appointments/:id/no-show
func (h *AppointmentHandler) MarkNoShow(c *gin.Context) {
	actor, ok := currentPrincipal(c)
	if !ok {
		return
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		RespondError(c, http.StatusBadRequest, "INVALID_ID", "invalid appointment ID")
		return
	}

	appointment, err := h.appointmentService.MarkNoShow(c.Request.Context(), actor, id)
	if err != nil {
		HandleError(c, err)
		return
	}

	RespondOK(c, appointment)
}

// Availability handles GET /api/v1/appointments/availability
// @Summary Inspector availability
// @Description Free slots for an inspector on a wall-clock date, swept over the branch working window
// @Tags appointments
// @Produce json
// @Param inspector_id query string true "Inspector ID"
// @Param date query string true "Date (YYYY-MM-DD)"
// @Param time_zone query string false "IANA time zone, defaults to the branch zone"
// @Param duration query int false "Slot length in minutes" default(60)
// @Success 200 {object} Response{data=[]domain.Slot} "Free slots"
// @Failure 400 {object} ErrorResponseBody "Missing or invalid parameters"
// @Security BearerAuth
// @Router /appointments/availability [get]
func (h *AppointmentHandler) Availability(c *gin.Context) {
	actor, ok := currentPrincipal(c)
	if !ok {
		return
	}

	inspectorID, err := uuid.Parse(c.Query("inspector_id"))
	if err != nil {
		RespondError(c, http.StatusBadRequest, "INVALID_ID", "inspector_id query parameter is required")
		return
	}
	date := c.Query("date")
	if date == "" {
		RespondError(c, http.StatusBadRequest, "VALIDATION_ERROR", "date query parameter is required")
		return
	}
	duration, _ := strconv.Atoi(c.DefaultQuery("duration", "60"))

	slots, err := h.appointmentService.Availability(c.Request.Context(), actor, inspectorID, date, c.Query("time_zone"), duration)
	if err != nil {
		HandleError(c, err)
		return
	}

	RespondOK(c, slots)
}

// parseAppointmentFilters reads the list filters from the query string,
// writing the 400 itself on a malformed value.
func parseAppointmentFilters(c *gin.Context) (domain.AppointmentFilters, bool) {
	var filters domain.AppointmentFilters
	filters.Status = domain.AppointmentStatus(c.Query("status"))
	filters.Offset, filters.Limit = parsePagination(c)

	if raw := c.Query("inspector_id"); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			RespondError(c, http.StatusBadRequest, "INVALID_ID", "invalid inspector_id")
			return filters, false
		}
		filters.InspectorID = id
	}
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
