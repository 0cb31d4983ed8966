package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"budgetly/internal/services"
)

// CategoryHandler handles category-related requests
type CategoryHandler struct {
	categoryService services.CategoryServicer
	auditService    services.AuditServicer
}

// NewCategoryHandler creates a new CategoryHandler
func NewCategoryHandler(categoryService services.CategoryServicer, auditService services.AuditServicer) *CategoryHandler {
	return &CategoryHandler{categoryService: categoryService, auditService: auditService}
}

// GetCategories lists the categories visible to the user
// @Summary     List categories
// @Description Get the default categories together with the user's own, ordered by name
// @Tags        categories
// @Produce     json
// @Security    CookieAuth
// @Success     200 {array}  models.Category "Categories"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /categories [get]
func (h *CategoryHandler) GetCategories(c *gin.Context) {
	// Get user ID from context
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	categories, err := h.categoryService.GetUserCategories(userID)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, categories)
}

// CreateCategory handles the creation of a new category
// @Summary     Create a category
// @Description Add a category visible only to the authenticated user
// @Tags        categories
// @Accept      json
// @Produce     json
// @Security    CookieAuth
// @Param       request body services.CategoryInput true "Category details"
// @Success     200 {object} CreatedResponse "Category created"
// @Failure     400 {object} ErrorResponse "Invalid input or category already exists"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /categories [post]
func (h *CategoryHandler) CreateCategory(c *gin.Context) {
	// Get user ID from context
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req services.CategoryInput
	if err := bindJSON(c, &req, services.CategoryRules); err != nil {
		respondWithError(c, err)
		return
	}

	category, err := h.categoryService.CreateCategory(userID, req.Name)
	if err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log(userID, services.AuditActionCreate, services.AuditResourceCategory, category.ID, c.ClientIP(),
		map[string]interface{}{"name": category.Name})

	c.JSON(http.StatusOK, CreatedResponse{ID: category.ID, Message: "Category created successfully"})
}
