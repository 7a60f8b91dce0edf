package handler_test

import (
	"net/http"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/JesperSolutions/agritectum-platform-sub017/internal/authz"
	"github.com/JesperSolutions/agritectum-platform-sub017/internal/domain"
	"github.com/JesperSolutions/agritectum-platform-sub017/internal/handler"
	"github.com/JesperSolutions/agritectum-platform-sub017/internal/service"
	"github.com/JesperSolutions/agritectum-platform-sub017/mocks"
)

func setupAppointmentRoutes(actor authz.Principal) (*gin.Engine, *mocks.MockAppointmentService) {
	svc := new(mocks.MockAppointmentService)
	h := handler.NewAppointmentHandler(svc)
	r := gin.New()
	authed := r.Group("/api/v1", asPrincipal(actor))
	authed.POST("/appointments", h.Create)
	authed.GET("/appointments", h.List)
	authed.GET("/appointments/availability", h.Availability)
	authed.POST("/appointments/:id/cancel", h.Cancel)
	return r, svc
}

func TestAppointmentHandler_Create_ForwardsWallClockFields(t *testing.T) {
	branchID := uuid.New()
	r, svc := setupAppointmentRoutes(branchAdmin(branchID))
	customerID := uuid.New()

	svc.On("Create", mock.Anything, mock.Anything, uuid.Nil, mock.MatchedBy(func(in service.CreateAppointmentInput) bool {
		return in.CustomerID == customerID &&
			in.Type == domain.AppointmentTypeInspection &&
			in.Date == "2030-01-15" &&
			in.StartTime == "10:00" &&
			in.EndTime == "12:00" &&
			in.TimeZone == "Europe/Oslo"
	})).Return(&domain.Appointment{
		ID: uuid.New(), BranchID: branchID, Status: domain.AppointmentStatusScheduled,
		TimeZone: "Europe/Oslo",
	}, nil)

	w := performJSON(r, http.MethodPost, "/api/v1/appointments", gin.H{
		"customer_id": customerID,
		"type":        "inspection",
		"date":        "2030-01-15",
		"start_time":  "10:00",
		"end_time":    "12:00",
		"time_zone":   "Europe/Oslo",
	})

	assert.Equal(t, http.StatusCreated, w.Code)
	resp := decodeResponse(t, w)
	assert.Equal(t, "Europe/Oslo", dataField(t, resp, "time_zone"))
}

func TestAppointmentHandler_Create_ConflictMapped(t *testing.T) {
	r, svc := setupAppointmentRoutes(branchAdmin(uuid.New()))
	svc.On("Create", mock.Anything, mock.Anything, uuid.Nil, mock.Anything).
		Return(nil, domain.ErrAppointmentConflict)

	w := performJSON(r, http.MethodPost, "/api/v1/appointments", gin.H{
		"customer_id": uuid.New(),
		"type":        "inspection",
		"date":        "2030-01-15",
		"start_time":  "10:00",
		"end_time":    "12:00",
	})

	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, "APPOINTMENT_CONFLICT", errorCode(t, w))
}

func TestAppointmentHandler_Create_UnknownZoneMapped(t *testing.T) {
	r, svc := setupAppointmentRoutes(branchAdmin(uuid.New()))
	svc.On("Create", mock.Anything, mock.Anything, uuid.Nil, mock.Anything).
		Return(nil, domain.ErrInvalidTimeZone)

	w := performJSON(r, http.MethodPost, "/api/v1/appointments", gin.H{
		"customer_id": uuid.New(),
		"type":        "inspection",
		"date":        "2030-01-15",
		"start_time":  "10:00",
		"end_time":    "12:00",
		"time_zone":   "Mars/Olympus",
	})

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "INVALID_TIME_ZONE", errorCode(t, w))
}

func TestAppointmentHandler_List_ForwardsStatusFilter(t *testing.T) {
	branchID := uuid.New()
	r, svc := setupAppointmentRoutes(inspector(branchID))

	svc.On("List", mock.Anything, mock.Anything, uuid.Nil, mock.MatchedBy(func(fl domain.AppointmentFilters) bool {
		return fl.Status == domain.AppointmentStatusScheduled
	})).Return([]domain.Appointment{}, 0, nil)

	w := performJSON(r, http.MethodGet, "/api/v1/appointments?status=scheduled", nil)

	assert.Equal(t, http.StatusOK, w.Code)
	svc.AssertExpectations(t)
}

func TestAppointmentHandler_Availability_ReturnsSlots(t *testing.T) {
	branchID := uuid.New()
	r, svc := setupAppointmentRoutes(branchAdmin(branchID))
	inspectorID := uuid.New()

	start := time.Date(2030, 1, 15, 9, 0, 0, 0, time.UTC)
	svc.On("Availability", mock.Anything, mock.Anything, inspectorID, "2030-01-15", "Europe/Oslo", 90).
		Return([]domain.Slot{{StartsAt: start, EndsAt: start.Add(90 * time.Minute)}}, nil)

	w := performJSON(r, http.MethodGet,
		"/api/v1/appointments/availability?inspector_id="+inspectorID.String()+
			"&date=2030-01-15&time_zone=Europe/Oslo&duration=90", nil)

	assert.Equal(t, http.StatusOK, w.Code)
	resp := decodeResponse(t, w)
	slots, ok := resp.Data.([]any)
	require.True(t, ok)
	assert.Len(t, slots, 1)
}

func TestAppointmentHandler_Availability_DefaultsDuration(t *testing.T) {
	r, svc := setupAppointmentRoutes(branchAdmin(uuid.New()))
	inspectorID := uuid.New()

	svc.On("Availability", mock.Anything, mock.Anything, inspectorID, "2030-01-15", "", 60).
		Return([]domain.Slot{}, nil)

	w := performJSON(r, http.MethodGet,
		"/api/v1/appointments/availability?inspector_id="+inspectorID.String()+"&date=2030-01-15", nil)

	assert.Equal(t, http.StatusOK, w.Code)
	svc.AssertExpectations(t)
}

func TestAppointmentHandler_Availability_RequiresDate(t *testing.T) {
	r, svc := setupAppointmentRoutes(branchAdmin(uuid.New()))

	w := performJSON(r, http.MethodGet,
		"/api/v1/appointments/availability?inspector_id="+uuid.NewString(), nil)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	svc.AssertNotCalled(t, "Availability",
		mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestAppointmentHandler_Cancel_BodyOptional(t *testing.T) {
	r, svc := setupAppointmentRoutes(branchAdmin(uuid.New()))
	id := uuid.New()

	svc.On("Cancel", mock.Anything, mock.Anything, id, service.CancelAppointmentInput{}).
		Return(&domain.Appointment{ID: id, Status: domain.AppointmentStatusCancelled}, nil)

	w := performJSON(r, http.MethodPost, "/api/v1/appointments/"+id.String()+"/cancel", nil)

	assert.Equal(t, http.StatusOK, w.Code)
	resp := decodeResponse(t, w)
	assert.Equal(t, "cancelled", dataField(t, resp, "status"))
}

func TestAppointmentHandler_Cancel_ForwardsReason(t *testing.T) {
	r, svc := setupAppointmentRoutes(branchAdmin(uuid.New()))
	id := uuid.New()

	svc.On("Cancel", mock.Anything, mock.Anything, id,
		service.CancelAppointmentInput{Reason: "Kunden utsatte til våren"}).
		Return(&domain.Appointment{ID: id, Status: domain.AppointmentStatusCancelled}, nil)

	w := performJSON(r, http.MethodPost, "/api/v1/appointments/"+id.String()+"/cancel",
		gin.H{"reason": "Kunden utsatte til våren"})

	assert.Equal(t, http.StatusOK, w.Code)
	svc.AssertExpectations(t)
}
