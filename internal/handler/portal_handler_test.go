package handler_test

import (
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/JesperSolutions/agritectum-platform-sub017/internal/domain"
	"github.com/JesperSolutions/agritectum-platform-sub017/internal/handler"
	"github.com/JesperSolutions/agritectum-platform-sub017/internal/service"
	"github.com/JesperSolutions/agritectum-platform-sub017/mocks"
)

func setupPortalRoutes() (*gin.Engine, *mocks.MockPortalService) {
	svc := new(mocks.MockPortalService)
	h := handler.NewPortalHandler(svc)
	r := gin.New()
	r.GET("/portal/offers/:token", h.GetOffer)
	r.POST("/portal/offers/:token/accept", h.AcceptOffer)
	r.POST("/portal/offers/:token/decline", h.DeclineOffer)
	r.GET("/portal/reports/:token", h.GetReport)
	r.GET("/portal/reports/:token/pdf", h.GetReportPDF)
	return r, svc
}

func TestPortalHandler_GetOffer_ReturnsView(t *testing.T) {
	r, svc := setupPortalRoutes()
	svc.On("GetOffer", mock.Anything, "tok123").Return(&service.PortalOfferView{
		Title:        "Omlegging av takmembran",
		CustomerName: "Borettslaget Solhøyden",
		Currency:     "NOK",
		Total:        decimal.RequireFromString("64500"),
	}, nil)

	w := performJSON(r, http.MethodGet, "/portal/offers/tok123", nil)

	assert.Equal(t, http.StatusOK, w.Code)
	resp := decodeResponse(t, w)
	assert.True(t, resp.Success)
	assert.Equal(t, "Omlegging av takmembran", dataField(t, resp, "title"))
}

func TestPortalHandler_GetOffer_DeadLinkIsPlain404(t *testing.T) {
	r, svc := setupPortalRoutes()
	svc.On("GetOffer", mock.Anything, "ukjent").Return(nil, domain.ErrPublicLinkInvalid)

	w := performJSON(r, http.MethodGet, "/portal/offers/ukjent", nil)

	assert.Equal(t, http.StatusNotFound, w.Code)
	resp := decodeResponse(t, w)
	assert.Equal(t, "NOT_FOUND", resp.Error.Code)
	// Indistinguishable from any other missing resource.
	assert.Equal(t, "resource not found", resp.Error.Message)
}

func TestPortalHandler_AcceptOffer_OK(t *testing.T) {
	r, svc := setupPortalRoutes()
	svc.On("AcceptOffer", mock.Anything, "tok123").Return(nil)

	w := performJSON(r, http.MethodPost, "/portal/offers/tok123/accept", nil)

	assert.Equal(t, http.StatusOK, w.Code)
	svc.AssertExpectations(t)
}

func TestPortalHandler_AcceptOffer_LostRaceReads404(t *testing.T) {
	r, svc := setupPortalRoutes()
	svc.On("AcceptOffer", mock.Anything, "tok123").Return(domain.ErrPublicLinkInvalid)

	w := performJSON(r, http.MethodPost, "/portal/offers/tok123/accept", nil)

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestPortalHandler_DeclineOffer_ForwardsReason(t *testing.T) {
	r, svc := setupPortalRoutes()
	svc.On("DeclineOffer", mock.Anything, "tok123", "Venter til våren").Return(nil)

	w := performJSON(r, http.MethodPost, "/portal/offers/tok123/decline",
		gin.H{"reason": "Venter til våren"})

	assert.Equal(t, http.StatusOK, w.Code)
	svc.AssertExpectations(t)
}

func TestPortalHandler_DeclineOffer_BodyOptional(t *testing.T) {
	r, svc := setupPortalRoutes()
	svc.On("DeclineOffer", mock.Anything, "tok123", "").Return(nil)

	w := performJSON(r, http.MethodPost, "/portal/offers/tok123/decline", nil)

	assert.Equal(t, http.StatusOK, w.Code)
	svc.AssertExpectations(t)
}

func TestPortalHandler_GetReport_ReturnsView(t *testing.T) {
	r, svc := setupPortalRoutes()
	svc.On("GetReport", mock.Anything, "tok456").Return(&service.PortalReportView{
		Title:        "Takinspeksjon Solhøydveien 12",
		CustomerName: "Borettslaget Solhøyden",
		Findings: []service.PortalFindingView{
			{Position: 1, Component: "Taktekking", Severity: "high"},
		},
	}, nil)

	w := performJSON(r, http.MethodGet, "/portal/reports/tok456", nil)

	assert.Equal(t, http.StatusOK, w.Code)
	resp := decodeResponse(t, w)
	assert.Equal(t, "Takinspeksjon Solhøydveien 12", dataField(t, resp, "title"))
}

func TestPortalHandler_GetReportPDF_RedirectsToPresignedURL(t *testing.T) {
	r, svc := setupPortalRoutes()
	svc.On("GetReportPDFURL", mock.Anything, "tok456").
		Return("https://s3.example/presigned.pdf", nil)

	w := performJSON(r, http.MethodGet, "/portal/reports/tok456/pdf", nil)

	assert.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, "https://s3.example/presigned.pdf", w.Header().Get("Location"))
}

func TestPortalHandler_GetReportPDF_RenderNotFinished(t *testing.T) {
	r, svc := setupPortalRoutes()
	svc.On("GetReportPDFURL", mock.Anything, "tok456").Return("", domain.ErrPDFJobNotReady)

	w := performJSON(r, http.MethodGet, "/portal/reports/tok456/pdf", nil)

	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, "PDF_NOT_READY", errorCode(t, w))
}
