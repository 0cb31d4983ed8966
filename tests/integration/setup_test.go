package integration

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"budgetly/internal/events"
	"budgetly/internal/handlers"
	"budgetly/internal/logger"
	"budgetly/internal/middleware"
	"budgetly/internal/services"
	"budgetly/internal/testutil"
	"budgetly/internal/validator"
)

// testApp holds the full application stack for integration tests.
type testApp struct {
	DB     *gorm.DB
	Router *gin.Engine
	Events *events.Recorder
	Hub    *events.Hub
}

func init() {
	gin.SetMode(gin.TestMode)
	logger.Init("test")
	validator.Register()
}

// setupApp creates a full application stack backed by an isolated in-memory SQLite.
func setupApp(t *testing.T) *testApp {
	t.Helper()

	db := testutil.SetupTestDB(t)
	t.Cleanup(func() { testutil.TeardownTestDB(t, db) })

	origins := []string{"http://localhost:3000"}
	recorder := &events.Recorder{}
	hub := events.NewHub(origins)
	t.Cleanup(func() { hub.Close() })
	publisher := events.Multi{recorder, hub}

	// Services
	userService := services.NewUserService(db)
	categoryService := services.NewCategoryService(db)
	budgetService := services.NewBudgetService(db, publisher)
	expenseService := services.NewExpenseService(db, publisher)
	analyticsService := services.NewAnalyticsService(db)
	auditService := services.NewAuditService(db)

	// Router
	routes := handlers.Routes{
		Auth:       handlers.NewAuthHandler(userService, auditService),
		Budgets:    handlers.NewBudgetHandler(budgetService, auditService),
		Expenses:   handlers.NewExpenseHandler(expenseService, auditService),
		Categories: handlers.NewCategoryHandler(categoryService, auditService),
		Analytics:  handlers.NewAnalyticsHandler(analyticsService),
		Audit:      handlers.NewAuditHandler(auditService),
		Live:       handlers.NewLiveHandler(hub),
	}
	router := handlers.NewRouter(origins, routes)

	return &testApp{DB: db, Router: router, Events: recorder, Hub: hub}
}

// request makes an HTTP request to the test router and returns the recorder.
// A non-empty token is sent as the session cookie.
func (app *testApp) request(method, path, body, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.AddCookie(&http.Cookie{Name: middleware.AuthCookieName, Value: token})
	}
	rec := httptest.NewRecorder()
	app.Router.ServeHTTP(rec, req)
	return rec
}

// parseJSON parses the response body into a map.
func parseJSON(t *testing.T, rec *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var result map[string]interface{}
	if err := json.Unmarshal(rec.Body.Bytes(), &result); err != nil {
		t.Fatalf("failed to parse JSON: %v\nbody: %s", err, rec.Body.String())
	}
	return result
}

// parseJSONArray parses the response body into a slice.
func parseJSONArray(t *testing.T, rec *httptest.ResponseRecorder) []interface{} {
	t.Helper()
	var result []interface{}
	if err := json.Unmarshal(rec.Body.Bytes(), &result); err != nil {
		t.Fatalf("failed to parse JSON array: %v\nbody: %s", err, rec.Body.String())
	}
	return result
}

// sessionCookie returns the token cookie set by the response, failing the test if absent.
func sessionCookie(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	for _, c := range rec.Result().Cookies() {
		if c.Name == middleware.AuthCookieName && c.Value != "" {
			return c.Value
		}
	}
	t.Fatalf("expected %s cookie in response, got headers %v", middleware.AuthCookieName, rec.Header())
	return ""
}

// registerUser registers a new user and returns the session token and user ID.
func (app *testApp) registerUser(t *testing.T, username, password string) (token string, userID float64) {
	t.Helper()
	body := fmt.Sprintf(`{"username":%q,"email":"%s@test.com","password":%q}`, username, username, password)
	rec := app.request(http.MethodPost, "/api/auth/register", body, "")
	if rec.Code != http.StatusCreated {
		t.Fatalf("register failed: %d %s", rec.Code, rec.Body.String())
	}
	user := parseJSON(t, rec)["user"].(map[string]interface{})
	return sessionCookie(t, rec), user["id"].(float64)
}

// loginUser logs in and returns the session token.
func (app *testApp) loginUser(t *testing.T, identifier, password string) string {
	t.Helper()
	body := fmt.Sprintf(`{"username":%q,"password":%q}`, identifier, password)
	rec := app.request(http.MethodPost, "/api/auth/login", body, "")
	if rec.Code != http.StatusOK {
		t.Fatalf("login failed: %d %s", rec.Code, rec.Body.String())
	}
	return sessionCookie(t, rec)
}

// createBudget posts a budget and returns its id.
func (app *testApp) createBudget(t *testing.T, token, body string) float64 {
	t.Helper()
	rec := app.request(http.MethodPost, "/api/budgets", body, token)
	if rec.Code != http.StatusOK {
		t.Fatalf("create budget failed: %d %s", rec.Code, rec.Body.String())
	}
	return parseJSON(t, rec)["id"].(float64)
}

// createExpense posts an expense and returns its id.
func (app *testApp) createExpense(t *testing.T, token, body string) float64 {
	t.Helper()
	rec := app.request(http.MethodPost, "/api/expenses", body, token)
	if rec.Code != http.StatusOK {
		t.Fatalf("create expense failed: %d %s", rec.Code, rec.Body.String())
	}
	return parseJSON(t, rec)["id"].(float64)
}
