package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/JesperSolutions/agritectum-platform-sub017/internal/domain"
	"github.com/JesperSolutions/agritectum-platform-sub017/internal/service"
)

// AuditHandler exposes the audit trail to branch admins.
type AuditHandler struct {
	auditService service.AuditService
}

// NewAuditHandler creates a new AuditHandler.
func NewAuditHandler(auditService service.AuditService) *AuditHandler {
	return &AuditHandler{auditService: auditService}
}

// List handles GET /api/v1/audit
// @Summary List audit entries
// @Description List the branch's audit trail, newest first. Branch admin or superadmin required.
// @Tags audit
// @Produce json
// @Param branch_id query string false "Branch ID (superadmin only)"
// @Param entity_type query string false "Filter by entity type (report, offer, user, ...)"
// @Param action query string false "Filter by action" Enums(create, update, delete, status_change, send, portal_accept, portal_decline, login, export)
// @Param from query string false "Recorded on or after (RFC 3339 or YYYY-MM-DD)"
// @Param to query string false "Recorded before (RFC 3339 or YYYY-MM-DD)"
// @Param offset query int false "Offset for pagination" default(0)
// @Param limit query int false "Limit for pagination (max 100)" default(20)
// @Success 200 {object} Response{data=[]domain.AuditEntry,meta=PagMeta} "Audit entries"
// @Failure 403 {object} ErrorResponseBody "Forbidden"
// @Security BearerAuth
// @Router /audit [get]
func (h *AuditHandler) List(c *gin.Context) {
	actor, ok := currentPrincipal(c)
	if !ok {
		return
	}

	branchID, err := parseBranchQuery(c)
	if err != nil {
		RespondError(c, http.StatusBadRequest, "INVALID_ID", "invalid branch_id")
		return
	}

	var filters domain.AuditFilters
	filters.EntityType = c.Query("entity_type")
	filters.Action = domain.AuditAction(c.Query("action"))
	filters.Offset, filters.Limit = parsePagination(c)

	from, err := parseTimeQuery(c, "from")
	if err != nil {
		RespondError(c, http.StatusBadRequest, "VALIDATION_ERROR", "invalid from date")
		return
	}
	to, err := parseTimeQuery(c, "to")
	if err != nil {
		RespondError(c, http.StatusBadRequest, "VALIDATION_ERROR", "invalid to date")
		return
	}
	filters.From, filters.To = from, to

	entries, total, err := h.auditService.List(c.Request.Context(), actor, branchID, filters)
	if err != nil {
		HandleError(c, err)
		return
	}

	RespondPaginated(c, entries, PagMeta{Total: total, Offset: filters.Offset, Limit: filters.Limit})
}
