package handlers

import (
	"errors"
	"strconv"

	"github.com/gin-gonic/gin"

	apperrors "budgetly/internal/errors"
	"budgetly/internal/logger"
	"budgetly/internal/services"
	"budgetly/internal/validator"
)

// ErrorResponse represents an error response.
type ErrorResponse struct {
	Error string `json:"error" example:"Budget not found"`
	Code  string `json:"code" example:"BUDGET_NOT_FOUND"`
}

// MessageResponse is returned by mutations that have nothing else to report.
type MessageResponse struct {
	Message string `json:"message" example:"Budget deleted successfully"`
}

// CreatedResponse is returned when a resource was created.
type CreatedResponse struct {
	ID      uint   `json:"id" example:"1"`
	Message string `json:"message" example:"Budget created successfully"`
}

// getUserID extracts the authenticated user ID from the Gin context.
// Returns ErrUnauthorized if not present.
func getUserID(c *gin.Context) (uint, error) {
	userID, exists := c.Get("userID")
	if !exists {
		return 0, apperrors.ErrUnauthorized
	}
	id, ok := userID.(uint)
	if !ok || id == 0 {
		return 0, apperrors.ErrUnauthorized
	}
	return id, nil
}

// parsePathID parses a uint path parameter.
// Returns ErrInvalidInput if the parameter is not a valid positive integer.
func parsePathID(c *gin.Context, param, resource string) (uint, error) {
	id, err := strconv.ParseUint(c.Param(param), 10, 32)
	if err != nil {
		return 0, apperrors.WithMessage(apperrors.ErrInvalidInput, "Invalid "+resource+" id")
	}
	return uint(id), nil
}

// bindJSON decodes and validates the request body, reporting the first
// violated rule.
func bindJSON(c *gin.Context, obj any, rules []validator.Rule) error {
	return services.BindingError(c.ShouldBindJSON(obj), rules)
}

// respondWithError writes the {"error", "code"} body. AppErrors keep their
// status and message; anything else is logged and reported as a generic
// internal error.
func respondWithError(c *gin.Context, err error) {
	var appErr *apperrors.AppError
	if errors.As(err, &appErr) {
		if appErr.Internal != nil {
			logger.Get().Errorw("app error",
				"code", appErr.Code,
				"internal", appErr.Internal.Error(),
				"path", c.Request.URL.Path,
			)
		}
		c.JSON(appErr.StatusCode, ErrorResponse{Error: appErr.Message, Code: appErr.Code})
		return
	}

	logger.Get().Errorw("unexpected error",
		"error", err.Error(),
		"path", c.Request.URL.Path,
		"method", c.Request.Method,
	)
	c.JSON(apperrors.ErrInternalServer.StatusCode, ErrorResponse{
		Error: apperrors.ErrInternalServer.Message,
		Code:  apperrors.ErrInternalServer.Code,
	})
}
