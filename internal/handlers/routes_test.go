package handlers

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
)

func newTestRoutes() Routes {
	audit := &mockAuditService{}
	return Routes{
		Auth:       NewAuthHandler(&mockUserService{}, audit),
		Budgets:    NewBudgetHandler(&mockBudgetService{}, audit),
		Expenses:   NewExpenseHandler(&mockExpenseService{}, audit),
		Categories: NewCategoryHandler(&mockCategoryService{}, audit),
		Analytics:  NewAnalyticsHandler(&mockAnalyticsService{}),
		Audit:      NewAuditHandler(audit),
		Live:       NewLiveHandler(&mockLiveServer{}),
	}
}

func TestRoutes_ProtectedWithoutCookie(t *testing.T) {
	r := gin.New()
	newTestRoutes().Register(r.Group("/api"))

	protected := []struct{ method, path string }{
		{http.MethodGet, "/api/profile"},
		{http.MethodGet, "/api/categories"},
		{http.MethodPost, "/api/categories"},
		{http.MethodGet, "/api/budgets"},
		{http.MethodPost, "/api/budgets"},
		{http.MethodGet, "/api/budgets/active"},
		{http.MethodGet, "/api/budgets/1"},
		{http.MethodPut, "/api/budgets/1"},
		{http.MethodPatch, "/api/budgets/1"},
		{http.MethodDelete, "/api/budgets/1"},
		{http.MethodGet, "/api/expenses"},
		{http.MethodPost, "/api/expenses"},
		{http.MethodDelete, "/api/expenses/1"},
		{http.MethodGet, "/api/expenses/export"},
		{http.MethodGet, "/api/analytics"},
		{http.MethodGet, "/api/analytics/alerts"},
		{http.MethodGet, "/api/audit-logs"},
		{http.MethodGet, "/api/ws"},
	}
	for _, route := range protected {
		t.Run(route.method+" "+route.path, func(t *testing.T) {
			rec := doRequest(r, route.method, route.path, "{}")

			if rec.Code != http.StatusUnauthorized {
				t.Fatalf("expected 401, got %d", rec.Code)
			}
			result := parseJSON(t, rec)
			assertErrorMessage(t, result, "Unauthorized")
			assertErrorCode(t, result, "UNAUTHORIZED")
		})
	}
}

func TestRoutes_PublicAuthEndpoints(t *testing.T) {
	r := gin.New()
	newTestRoutes().Register(r.Group("/api"))

	rec := doRequest(r, http.MethodPost, "/api/auth/logout", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	rec = doRequest(r, http.MethodPost, "/api/auth/login", `{"username":"alice","password":"password123"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
}

func TestNewRouter(t *testing.T) {
	r := NewRouter([]string{"http://localhost:3000"}, newTestRoutes())

	t.Run("health", func(t *testing.T) {
		rec := doRequest(r, http.MethodGet, "/api/health", "")
		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", rec.Code)
		}
		if parseJSON(t, rec)["status"] != "ok" {
			t.Error("expected status ok")
		}
	})

	t.Run("preflight allows credentials for configured origins", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodOptions, "/api/budgets", nil)
		req.Header.Set("Origin", "http://localhost:3000")
		req.Header.Set("Access-Control-Request-Method", http.MethodPost)
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, req)

		if rec.Code != http.StatusNoContent {
			t.Fatalf("expected 204, got %d", rec.Code)
		}
		if rec.Header().Get("Access-Control-Allow-Origin") != "http://localhost:3000" {
			t.Errorf("unexpected allow-origin %q", rec.Header().Get("Access-Control-Allow-Origin"))
		}
		if rec.Header().Get("Access-Control-Allow-Credentials") != "true" {
			t.Error("expected credentials to be allowed")
		}
	})

	t.Run("unknown routes get the json error body", func(t *testing.T) {
		rec := doRequest(r, http.MethodGet, "/api/nope", "")
		if rec.Code != http.StatusNotFound {
			t.Fatalf("expected 404, got %d", rec.Code)
		}
		result := parseJSON(t, rec)
		assertErrorCode(t, result, "NOT_FOUND")
		assertErrorMessage(t, result, "Resource not found")
	})

	t.Run("unauthenticated api requests get 401", func(t *testing.T) {
		rec := doRequest(r, http.MethodGet, "/api/budgets", "")
		if rec.Code != http.StatusUnauthorized {
			t.Fatalf("expected 401, got %d", rec.Code)
		}
	})
}
