package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	apperrors "budgetly/internal/errors"
	"budgetly/internal/middleware"
	"budgetly/internal/services"
)

// AuthHandler handles authentication-related requests
type AuthHandler struct {
	userService  services.UserServicer
	auditService services.AuditServicer
}

// NewAuthHandler creates a new AuthHandler
func NewAuthHandler(userService services.UserServicer, auditService services.AuditServicer) *AuthHandler {
	return &AuthHandler{userService: userService, auditService: auditService}
}

// UserResponse represents the user data in the response
type UserResponse struct {
	ID       uint   `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email"`
}

// RegisterResponse is returned after a successful registration.
type RegisterResponse struct {
	Message string       `json:"message"`
	User    UserResponse `json:"user"`
}

// ProfileResponse wraps the authenticated user's profile.
type ProfileResponse struct {
	User UserResponse `json:"user"`
}

// Register handles user registration
// @Summary     Register a new user
// @Description Create an account and start a session through the token cookie
// @Tags        auth
// @Accept      json
// @Produce     json
// @Param       request body services.RegisterInput true "User registration data"
// @Success     201 {object} RegisterResponse "User registered"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     409 {object} ErrorResponse "Username or email already taken"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /auth/register [post]
func (h *AuthHandler) Register(c *gin.Context) {
	var req services.RegisterInput
	if err := bindJSON(c, &req, services.RegisterRules); err != nil {
		respondWithError(c, err)
		return
	}

	user, err := h.userService.CreateUser(req.Username, req.Email, req.Password)
	if err != nil {
		respondWithError(c, err)
		return
	}

	token, err := middleware.GenerateToken(user)
	if err != nil {
		respondWithError(c, apperrors.Wrap(apperrors.ErrInternalServer, err))
		return
	}
	middleware.SetAuthCookie(c, token)

	h.auditService.Log(user.ID, services.AuditActionRegister, services.AuditResourceUser, user.ID, c.ClientIP(),
		map[string]interface{}{"username": user.Username})

	c.JSON(http.StatusCreated, RegisterResponse{
		Message: "User registered successfully",
		User:    UserResponse{ID: user.ID, Username: user.Username, Email: user.Email},
	})
}

// Login handles user login
// @Summary     Login user
// @Description Authenticate with username or email and start a session through the token cookie
// @Tags        auth
// @Accept      json
// @Produce     json
// @Param       request body services.LoginInput true "User login credentials"
// @Success     200 {object} MessageResponse "Login successful"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     401 {object} ErrorResponse "Invalid credentials"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /auth/login [post]
func (h *AuthHandler) Login(c *gin.Context) {
	var req services.LoginInput
	if err := bindJSON(c, &req, services.LoginRules); err != nil {
		respondWithError(c, err)
		return
	}

	user, err := h.userService.AttemptLogin(req.Username, req.Password)
	if err != nil {
		respondWithError(c, err)
		return
	}

	token, err := middleware.GenerateToken(user)
	if err != nil {
		respondWithError(c, apperrors.Wrap(apperrors.ErrInternalServer, err))
		return
	}
	middleware.SetAuthCookie(c, token)

	h.auditService.Log(user.ID, services.AuditActionLogin, services.AuditResourceUser, user.ID, c.ClientIP(), nil)

	c.JSON(http.StatusOK, MessageResponse{Message: "Login successful"})
}

// Logout ends the session
// @Summary     Logout user
// @Description Clear the token cookie
// @Tags        auth
// @Produce     json
// @Success     200 {object} MessageResponse "Logged out"
// @Router      /auth/logout [post]
func (h *AuthHandler) Logout(c *gin.Context) {
	middleware.ClearAuthCookie(c)
	c.JSON(http.StatusOK, MessageResponse{Message: "Logged out successfully"})
}

// GetProfile returns the user's profile
// @Summary     Get user profile
// @Description Get the authenticated user's profile information
// @Tags        user
// @Produce     json
// @Security    CookieAuth
// @Success     200 {object} ProfileResponse "User profile"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     404 {object} ErrorResponse "User not found"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /profile [get]
func (h *AuthHandler) GetProfile(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	user, err := h.userService.GetUserByID(userID)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, ProfileResponse{
		User: UserResponse{ID: user.ID, Username: user.Username, Email: user.Email},
	})
}
