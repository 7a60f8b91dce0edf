package handler_test

import (
	"bytes"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

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

func setupReportRoutes(actor authz.Principal) (*gin.Engine, *mocks.MockReportService) {
	svc := new(mocks.MockReportService)
	h := handler.NewReportHandler(svc)
	r := gin.New()
	authed := r.Group("/api/v1", asPrincipal(actor))
	authed.POST("/reports", h.Create)
	authed.GET("/reports", h.List)
	authed.GET("/reports/:id", h.GetByID)
	authed.PUT("/reports/:id", h.Update)
	authed.POST("/reports/:id/findings", h.AddFinding)
	authed.POST("/reports/:id/photos", h.UploadPhoto)
	authed.POST("/reports/:id/send", h.Send)
	return r, svc
}

func TestReportHandler_Create_ReturnsCreated(t *testing.T) {
	branchID := uuid.New()
	actor := inspector(branchID)
	r, svc := setupReportRoutes(actor)
	customerID := uuid.New()
	buildingID := uuid.New()

	svc.On("Create", mock.Anything, mock.MatchedBy(func(p authz.Principal) bool {
		return p.UserID == actor.UserID
	}), uuid.Nil, service.CreateReportInput{
		CustomerID: customerID,
		BuildingID: buildingID,
		Title:      "Takinspeksjon Solhøydveien 12",
	}).Return(&domain.Report{
		ID: uuid.New(), BranchID: branchID, Title: "Takinspeksjon Solhøydveien 12",
		Status: domain.ReportStatusDraft,
	}, nil)

	w := performJSON(r, http.MethodPost, "/api/v1/reports", gin.H{
		"customer_id": customerID,
		"building_id": buildingID,
		"title":       "Takinspeksjon Solhøydveien 12",
	})

	assert.Equal(t, http.StatusCreated, w.Code)
	resp := decodeResponse(t, w)
	assert.Equal(t, "draft", dataField(t, resp, "status"))
}

func TestReportHandler_Create_RejectsBadBranchQuery(t *testing.T) {
	r, svc := setupReportRoutes(branchAdmin(uuid.New()))

	w := performJSON(r, http.MethodPost, "/api/v1/reports?branch_id=ikke-en-uuid", gin.H{})

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "INVALID_ID", errorCode(t, w))
	svc.AssertNotCalled(t, "Create", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestReportHandler_Create_RequiresTitle(t *testing.T) {
	r, svc := setupReportRoutes(inspector(uuid.New()))

	w := performJSON(r, http.MethodPost, "/api/v1/reports", gin.H{
		"customer_id": uuid.New(),
		"building_id": uuid.New(),
	})

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "VALIDATION_ERROR", errorCode(t, w))
	svc.AssertNotCalled(t, "Create", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestReportHandler_List_EchoesPaginationMeta(t *testing.T) {
	branchID := uuid.New()
	r, svc := setupReportRoutes(inspector(branchID))

	svc.On("List", mock.Anything, mock.Anything, uuid.Nil, mock.MatchedBy(func(fl domain.ReportFilters) bool {
		return fl.Offset == 5 && fl.Limit == 2 && fl.Status == domain.ReportStatusSent
	})).Return([]domain.Report{
		{ID: uuid.New(), BranchID: branchID, Status: domain.ReportStatusSent},
		{ID: uuid.New(), BranchID: branchID, Status: domain.ReportStatusSent},
	}, 7, nil)

	w := performJSON(r, http.MethodGet, "/api/v1/reports?status=sent&offset=5&limit=2", nil)

	assert.Equal(t, http.StatusOK, w.Code)
	resp := decodeResponse(t, w)
	require.NotNil(t, resp.Meta)
	assert.Equal(t, 7, resp.Meta.Total)
	assert.Equal(t, 5, resp.Meta.Offset)
	assert.Equal(t, 2, resp.Meta.Limit)
}

func TestReportHandler_GetByID_RejectsMalformedID(t *testing.T) {
	r, svc := setupReportRoutes(inspector(uuid.New()))

	w := performJSON(r, http.MethodGet, "/api/v1/reports/not-a-uuid", nil)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "INVALID_ID", errorCode(t, w))
	svc.AssertNotCalled(t, "GetByID", mock.Anything, mock.Anything, mock.Anything)
}

func TestReportHandler_GetByID_NotFound(t *testing.T) {
	r, svc := setupReportRoutes(inspector(uuid.New()))
	id := uuid.New()
	svc.On("GetByID", mock.Anything, mock.Anything, id).Return(nil, domain.ErrNotFound)

	w := performJSON(r, http.MethodGet, "/api/v1/reports/"+id.String(), nil)

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestReportHandler_Update_FrozenReportConflicts(t *testing.T) {
	r, svc := setupReportRoutes(inspector(uuid.New()))
	id := uuid.New()
	svc.On("Update", mock.Anything, mock.Anything, id, mock.Anything).
		Return(nil, domain.ErrReportNotEditable)

	w := performJSON(r, http.MethodPut, "/api/v1/reports/"+id.String(),
		gin.H{"summary": "Oppdatert oppsummering"})

	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, "REPORT_NOT_EDITABLE", errorCode(t, w))
}

func TestReportHandler_AddFinding_RequiresSeverity(t *testing.T) {
	r, svc := setupReportRoutes(inspector(uuid.New()))
	id := uuid.New()

	w := performJSON(r, http.MethodPost, "/api/v1/reports/"+id.String()+"/findings", gin.H{
		"component":   "Taktekking",
		"description": "Sprekker i membran",
	})

	assert.Equal(t, http.StatusBadRequest, w.Code)
	svc.AssertNotCalled(t, "AddFinding", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestReportHandler_Send_MapsCustomerNoEmail(t *testing.T) {
	r, svc := setupReportRoutes(branchAdmin(uuid.New()))
	id := uuid.New()
	svc.On("Send", mock.Anything, mock.Anything, id).Return(nil, domain.ErrCustomerNoEmail)

	w := performJSON(r, http.MethodPost, "/api/v1/reports/"+id.String()+"/send", nil)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "CUSTOMER_NO_EMAIL", errorCode(t, w))
}

func TestReportHandler_UploadPhoto_ForwardsMultipart(t *testing.T) {
	branchID := uuid.New()
	r, svc := setupReportRoutes(inspector(branchID))
	reportID := uuid.New()

	svc.On("UploadPhoto", mock.Anything, mock.Anything, mock.MatchedBy(func(in service.PhotoUploadInput) bool {
		return in.ReportID == reportID &&
			in.Caption == "Sluk ved pipe" &&
			in.Header != nil && in.Header.Filename == "tak.jpg"
	})).Return(&domain.ReportPhoto{ID: uuid.New(), ReportID: reportID, Caption: "Sluk ved pipe"}, nil)

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	part, err := mw.CreateFormFile("file", "tak.jpg")
	require.NoError(t, err)
	_, err = part.Write([]byte{0xFF, 0xD8, 0xFF, 0xE0, 0x11, 0x22})
	require.NoError(t, err)
	require.NoError(t, mw.WriteField("caption", "Sluk ved pipe"))
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/v1/reports/"+reportID.String()+"/photos", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusCreated, w.Code)
	svc.AssertExpectations(t)
}

func TestReportHandler_UploadPhoto_MissingFileField(t *testing.T) {
	r, svc := setupReportRoutes(inspector(uuid.New()))
	reportID := uuid.New()

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	require.NoError(t, mw.WriteField("caption", "Sluk"))
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/v1/reports/"+reportID.String()+"/photos", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "MISSING_FILE", errorCode(t, w))
	svc.AssertNotCalled(t, "UploadPhoto", mock.Anything, mock.Anything, mock.Anything)
}

func TestReportHandler_MissingPrincipalIs401(t *testing.T) {
	svc := new(mocks.MockReportService)
	h := handler.NewReportHandler(svc)
	r := gin.New()
	r.GET("/api/v1/reports/:id", h.GetByID)

	w := performJSON(r, http.MethodGet, "/api/v1/reports/"+uuid.NewString(), nil)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	svc.AssertNotCalled(t, "GetByID", mock.Anything, mock.Anything, mock.Anything)
}
