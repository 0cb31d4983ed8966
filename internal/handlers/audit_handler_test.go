package handlers

import (
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"

	"budgetly/internal/models"
	"budgetly/internal/pagination"
)

func TestAuditHandler_GetAuditLogs(t *testing.T) {
	t.Run("applies defaults", func(t *testing.T) {
		var got pagination.PageRequest
		audit := &mockAuditService{
			getUserAuditLogs: func(_ uint, page pagination.PageRequest) (*pagination.PageResponse[models.AuditLog], error) {
				got = page
				resp := pagination.NewPageResponse([]models.AuditLog{{ID: 1, Action: "create"}}, page, 1)
				return &resp, nil
			},
		}
		r := gin.New()
		r.GET("/audit-logs", injectUserID(1), NewAuditHandler(audit).GetAuditLogs)

		rec := doRequest(r, http.MethodGet, "/audit-logs", "")

		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", rec.Code)
		}
		if got.Page != 1 || got.PageSize != pagination.DefaultPageSize {
			t.Errorf("expected defaults, got %+v", got)
		}
		result := parseJSON(t, rec)
		if result["total_items"] != float64(1) || len(result["data"].([]interface{})) != 1 {
			t.Errorf("unexpected page %v", result)
		}
	})

	t.Run("passes page parameters", func(t *testing.T) {
		var got pagination.PageRequest
		audit := &mockAuditService{
			getUserAuditLogs: func(_ uint, page pagination.PageRequest) (*pagination.PageResponse[models.AuditLog], error) {
				got = page
				resp := pagination.NewPageResponse[models.AuditLog](nil, page, 0)
				return &resp, nil
			},
		}
		r := gin.New()
		r.GET("/audit-logs", injectUserID(1), NewAuditHandler(audit).GetAuditLogs)

		rec := doRequest(r, http.MethodGet, "/audit-logs?page=3&page_size=5", "")

		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", rec.Code)
		}
		if got.Page != 3 || got.PageSize != 5 {
			t.Errorf("unexpected page request %+v", got)
		}
	})

	t.Run("returns 400 on an oversized page", func(t *testing.T) {
		r := gin.New()
		r.GET("/audit-logs", injectUserID(1), NewAuditHandler(&mockAuditService{}).GetAuditLogs)

		rec := doRequest(r, http.MethodGet, "/audit-logs?page_size=1000", "")

		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", rec.Code)
		}
		assertErrorCode(t, parseJSON(t, rec), "INVALID_INPUT")
	})
}
