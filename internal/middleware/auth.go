package middleware

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"

	"budgetly/internal/config"
	apperrors "budgetly/internal/errors"
	"budgetly/internal/models"
)

// AuthCookieName is the cookie that carries the session JWT.
const AuthCookieName = "token"

const tokenIssuer = "budgetly-api"

// getJWTKey returns the JWT key from configuration
func getJWTKey() []byte {
	return []byte(config.Get().JWTSecret)
}

// JWTClaims represents the claims in the JWT
type JWTClaims struct {
	UserID   uint   `json:"user_id"`
	Username string `json:"username"`
	jwt.RegisteredClaims
}

// GenerateToken signs a session token for the user that expires after the
// configured JWT lifetime.
func GenerateToken(user *models.User) (string, error) {
	now := time.Now()
	claims := &JWTClaims{
		UserID:   user.ID,
		Username: user.Username,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(config.Get().JWTExpirationDur)),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			Issuer:    tokenIssuer,
			Subject:   strconv.FormatUint(uint64(user.ID), 10),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(getJWTKey())
}

// ParseToken validates the signature and expiry of a session token.
func ParseToken(tokenString string) (*JWTClaims, error) {
	claims := &JWTClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return getJWTKey(), nil
	}, jwt.WithIssuer(tokenIssuer))

	if err != nil || !token.Valid {
		return nil, fmt.Errorf("invalid token: %w", err)
	}
	if claims.UserID == 0 {
		return nil, fmt.Errorf("invalid token: missing user id")
	}

	return claims, nil
}

// SetAuthCookie stores the token in an HTTP-only, same-site-strict cookie.
// The cookie is marked Secure in production.
func SetAuthCookie(c *gin.Context, token string) {
	cfg := config.Get()
	c.SetSameSite(http.SameSiteStrictMode)
	c.SetCookie(AuthCookieName, token, int(cfg.JWTExpirationDur.Seconds()), "/", "", cfg.IsProduction(), true)
}

// ClearAuthCookie expires the session cookie.
func ClearAuthCookie(c *gin.Context) {
	c.SetSameSite(http.SameSiteStrictMode)
	c.SetCookie(AuthCookieName, "", -1, "/", "", config.Get().IsProduction(), true)
}

// AuthMiddleware verifies the session cookie and sets the user in the context.
// Missing, malformed and expired tokens all get the same 401 response.
func AuthMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenString, err := c.Cookie(AuthCookieName)
		if err != nil || tokenString == "" {
			abortUnauthorized(c)
			return
		}

		claims, err := ParseToken(tokenString)
		if err != nil {
			abortUnauthorized(c)
			return
		}

		c.Set("userID", claims.UserID)
		c.Set("username", claims.Username)
		c.Next()
	}
}

func abortUnauthorized(c *gin.Context) {
	c.AbortWithStatusJSON(apperrors.ErrUnauthorized.StatusCode, apperrors.ErrUnauthorized)
}
