package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	apperrors "budgetly/internal/errors"
	"budgetly/internal/pagination"
	"budgetly/internal/services"
)

// AuditHandler exposes the user's audit trail.
type AuditHandler struct {
	auditService services.AuditServicer
}

// NewAuditHandler creates a new AuditHandler.
func NewAuditHandler(auditService services.AuditServicer) *AuditHandler {
	return &AuditHandler{auditService: auditService}
}

// GetAuditLogs returns a page of the user's audit trail, newest first.
// @Summary     List audit logs
// @Tags        audit
// @Produce     json
// @Security    CookieAuth
// @Param       page      query int false "Page number" default(1)
// @Param       page_size query int false "Page size"   default(20)
// @Success     200 {object} pagination.PageResponse[models.AuditLog] "Audit logs"
// @Failure     400 {object} ErrorResponse "Invalid pagination"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /audit-logs [get]
func (h *AuditHandler) GetAuditLogs(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var page pagination.PageRequest
	if err := c.ShouldBindQuery(&page); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, "Invalid pagination parameters"))
		return
	}
	page.Defaults()

	logs, err := h.auditService.GetUserAuditLogs(userID, page)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, logs)
}
