package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"budgetly/internal/services"
)

// BudgetHandler handles budget-related requests.
type BudgetHandler struct {
	budgetService services.BudgetServicer
	auditService  services.AuditServicer
}

// NewBudgetHandler creates a new BudgetHandler.
func NewBudgetHandler(budgetService services.BudgetServicer, auditService services.AuditServicer) *BudgetHandler {
	return &BudgetHandler{budgetService: budgetService, auditService: auditService}
}

// BudgetUpdatedResponse is returned after a budget was replaced.
type BudgetUpdatedResponse struct {
	Message string `json:"message" example:"Budget updated successfully"`
	Success bool   `json:"success" example:"true"`
}

// GetBudgets lists the user's budgets.
// @Summary     List budgets
// @Description Get all budgets of the authenticated user, newest first
// @Tags        budgets
// @Produce     json
// @Security    CookieAuth
// @Success     200 {array}  models.Budget "Budgets"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /budgets [get]
func (h *BudgetHandler) GetBudgets(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	budgets, err := h.budgetService.GetUserBudgets(userID)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, budgets)
}

// CreateBudget handles the creation of a new budget.
// @Summary     Create a budget
// @Description Create an inactive budget with its category allocations
// @Tags        budgets
// @Accept      json
// @Produce     json
// @Security    CookieAuth
// @Param       request body services.BudgetInput true "Budget details"
// @Success     200 {object} CreatedResponse "Budget created"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /budgets [post]
func (h *BudgetHandler) CreateBudget(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req services.BudgetInput
	if err := bindJSON(c, &req, services.BudgetRules); err != nil {
		respondWithError(c, err)
		return
	}

	budget, err := h.budgetService.CreateBudget(userID, req)
	if err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log(userID, services.AuditActionCreate, services.AuditResourceBudget, budget.ID, c.ClientIP(),
		map[string]interface{}{"name": budget.Name, "monthly_income": budget.MonthlyIncome, "categories": len(req.Categories)})

	c.JSON(http.StatusOK, CreatedResponse{ID: budget.ID, Message: "Budget created successfully"})
}

// GetActiveBudget returns the user's active budget.
// @Summary     Get the active budget
// @Description Get the active budget with its allocations
// @Tags        budgets
// @Produce     json
// @Security    CookieAuth
// @Success     200 {object} models.Budget "Active budget"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     404 {object} ErrorResponse "No active budget"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /budgets/active [get]
func (h *BudgetHandler) GetActiveBudget(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	budget, err := h.budgetService.GetActiveBudget(userID)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, budget)
}

// GetBudget returns a budget with its allocations and spend.
// @Summary     Get a budget
// @Description Get a budget with its allocations and the spend recorded per category
// @Tags        budgets
// @Produce     json
// @Security    CookieAuth
// @Param       id path int true "Budget ID"
// @Success     200 {object} services.BudgetDetail "Budget"
// @Failure     400 {object} ErrorResponse "Invalid budget id"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     404 {object} ErrorResponse "Budget not found"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /budgets/{id} [get]
func (h *BudgetHandler) GetBudget(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	budgetID, err := parsePathID(c, "id", "budget")
	if err != nil {
		respondWithError(c, err)
		return
	}

	detail, err := h.budgetService.GetBudgetDetail(userID, budgetID)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, detail)
}

// ReplaceBudget overwrites a budget and its allocations.
// @Summary     Replace a budget
// @Description Overwrite a budget's fields and replace its whole allocation set
// @Tags        budgets
// @Accept      json
// @Produce     json
// @Security    CookieAuth
// @Param       id      path int                  true "Budget ID"
// @Param       request body services.BudgetInput true "Budget details"
// @Success     200 {object} BudgetUpdatedResponse "Budget updated"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     404 {object} ErrorResponse "Budget not found"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /budgets/{id} [put]
func (h *BudgetHandler) ReplaceBudget(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	budgetID, err := parsePathID(c, "id", "budget")
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req services.BudgetInput
	if err := bindJSON(c, &req, services.BudgetRules); err != nil {
		respondWithError(c, err)
		return
	}

	if err := h.budgetService.ReplaceBudget(userID, budgetID, req); err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log(userID, services.AuditActionUpdate, services.AuditResourceBudget, budgetID, c.ClientIP(),
		map[string]interface{}{"name": req.Name, "monthly_income": *req.MonthlyIncome, "categories": len(req.Categories)})

	c.JSON(http.StatusOK, BudgetUpdatedResponse{Message: "Budget updated successfully", Success: true})
}

// PatchBudget toggles a budget's active flag.
// @Summary     Activate or deactivate a budget
// @Description Activating a budget deactivates every other budget of the user
// @Tags        budgets
// @Accept      json
// @Produce     json
// @Security    CookieAuth
// @Param       id      path int                     true "Budget ID"
// @Param       request body services.SetActiveInput true "Active flag"
// @Success     200 {object} MessageResponse "Budget updated"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     404 {object} ErrorResponse "Budget not found"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /budgets/{id} [patch]
func (h *BudgetHandler) PatchBudget(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	budgetID, err := parsePathID(c, "id", "budget")
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req services.SetActiveInput
	if err := bindJSON(c, &req, services.SetActiveRules); err != nil {
		respondWithError(c, err)
		return
	}

	if err := h.budgetService.SetBudgetActive(userID, budgetID, *req.IsActive); err != nil {
		respondWithError(c, err)
		return
	}

	action := services.AuditActionDeactivate
	if *req.IsActive {
		action = services.AuditActionActivate
	}
	h.auditService.Log(userID, action, services.AuditResourceBudget, budgetID, c.ClientIP(), nil)

	c.JSON(http.StatusOK, MessageResponse{Message: "Budget updated successfully"})
}

// DeleteBudget removes a budget.
// @Summary     Delete a budget
// @Description Delete a budget and its allocations; its expenses are kept without a budget
// @Tags        budgets
// @Produce     json
// @Security    CookieAuth
// @Param       id path int true "Budget ID"
// @Success     200 {object} MessageResponse "Budget deleted"
// @Failure     400 {object} ErrorResponse "Invalid budget id"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     404 {object} ErrorResponse "Budget not found"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /budgets/{id} [delete]
func (h *BudgetHandler) DeleteBudget(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	budgetID, err := parsePathID(c, "id", "budget")
	if err != nil {
		respondWithError(c, err)
		return
	}

	if err := h.budgetService.DeleteBudget(userID, budgetID); err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log(userID, services.AuditActionDelete, services.AuditResourceBudget, budgetID, c.ClientIP(), nil)

	c.JSON(http.StatusOK, MessageResponse{Message: "Budget deleted successfully"})
}
