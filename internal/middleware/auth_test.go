package middleware

import (
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"

	"budgetly/internal/config"
	"budgetly/internal/models"
)

func TestMain(m *testing.M) {
	gin.SetMode(gin.TestMode)
	os.Setenv("JWT_SECRET", "middleware-test-secret")
	os.Setenv("JWT_EXPIRES_IN", "1h")
	if _, err := config.Load(); err != nil {
		panic(err)
	}
	os.Exit(m.Run())
}

func newProtectedRouter() *gin.Engine {
	r := gin.New()
	r.GET("/protected", AuthMiddleware(), func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"user_id": c.GetUint("userID"), "username": c.GetString("username")})
	})
	return r
}

func doWithCookie(r *gin.Engine, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	if token != "" {
		req.AddCookie(&http.Cookie{Name: AuthCookieName, Value: token})
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestAuthMiddleware(t *testing.T) {
	user := &models.User{Base: models.Base{ID: 9}, Username: "alice"}
	valid, err := GenerateToken(user)
	if err != nil {
		t.Fatalf("GenerateToken: %v", err)
	}

	foreign := jwt.NewWithClaims(jwt.SigningMethodHS256, &JWTClaims{
		UserID: 9,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    tokenIssuer,
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	})
	forged, _ := foreign.SignedString([]byte("some-other-secret"))

	expired := jwt.NewWithClaims(jwt.SigningMethodHS256, &JWTClaims{
		UserID: 9,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    tokenIssuer,
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(-time.Minute)),
		},
	})
	stale, _ := expired.SignedString(getJWTKey())

	tests := []struct {
		name       string
		token      string
		wantStatus int
	}{
		{"valid", valid, http.StatusOK},
		{"missing", "", http.StatusUnauthorized},
		{"garbage", "not-a-jwt", http.StatusUnauthorized},
		{"wrong_secret", forged, http.StatusUnauthorized},
		{"expired", stale, http.StatusUnauthorized},
	}

	r := newProtectedRouter()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := doWithCookie(r, tt.token)
			if w.Code != tt.wantStatus {
				t.Fatalf("expected %d, got %d: %s", tt.wantStatus, w.Code, w.Body.String())
			}
			if tt.wantStatus == http.StatusOK {
				if !strings.Contains(w.Body.String(), `"user_id":9`) {
					t.Errorf("expected user id in context, got %s", w.Body.String())
				}
				return
			}
			if !strings.Contains(w.Body.String(), `"error":"Unauthorized"`) {
				t.Errorf("expected uniform unauthorized body, got %s", w.Body.String())
			}
		})
	}
}

func TestSetAuthCookie(t *testing.T) {
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodPost, "/login", nil)

	SetAuthCookie(c, "abc")

	header := w.Header().Get("Set-Cookie")
	for _, want := range []string{"token=abc", "Max-Age=3600", "Path=/", "HttpOnly", "SameSite=Strict"} {
		if !strings.Contains(header, want) {
			t.Errorf("expected %q in Set-Cookie header %q", want, header)
		}
	}
	if strings.Contains(header, "Secure") {
		t.Errorf("did not expect Secure outside production: %q", header)
	}
}

func TestClearAuthCookie(t *testing.T) {
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodPost, "/logout", nil)

	ClearAuthCookie(c)

	header := w.Header().Get("Set-Cookie")
	if !strings.Contains(header, "token=;") || !strings.Contains(header, "Max-Age=0") {
		t.Errorf("expected expired token cookie, got %q", header)
	}
}
