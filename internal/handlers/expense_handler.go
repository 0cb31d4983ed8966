package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"budgetly/internal/services"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// ExpenseHandler handles expense-related requests.
type ExpenseHandler struct {
	expenseService services.ExpenseServicer
	auditService   services.AuditServicer
}

// NewExpenseHandler creates a new ExpenseHandler.
func NewExpenseHandler(expenseService services.ExpenseServicer, auditService services.AuditServicer) *ExpenseHandler {
	return &ExpenseHandler{expenseService: expenseService, auditService: auditService}
}

// GetExpenses lists the user's expenses.
// @Summary     List expenses
// @Description Get all expenses of the authenticated user with their budget names, latest first
// @Tags        expenses
// @Produce     json
// @Security    CookieAuth
// @Success     200 {array}  models.Expense "Expenses"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /expenses [get]
func (h *ExpenseHandler) GetExpenses(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	expenses, err := h.expenseService.GetUserExpenses(userID)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, expenses)
}

// CreateExpense records a new expense.
// @Summary     Record an expense
// @Description Record an expense in a known category, optionally against one of the user's budgets
// @Tags        expenses
// @Accept      json
// @Produce     json
// @Security    CookieAuth
// @Param       request body services.ExpenseInput true "Expense details"
// @Success     200 {object} CreatedResponse "Expense added"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /expenses [post]
func (h *ExpenseHandler) CreateExpense(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req services.ExpenseInput
	if err := bindJSON(c, &req, services.ExpenseRules); err != nil {
		respondWithError(c, err)
		return
	}

	expense, err := h.expenseService.CreateExpense(userID, req)
	if err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log(userID, services.AuditActionCreate, services.AuditResourceExpense, expense.ID, c.ClientIP(),
		map[string]interface{}{"category": expense.Category, "amount": expense.Amount, "budget_id": expense.BudgetID})

	c.JSON(http.StatusOK, CreatedResponse{ID: expense.ID, Message: "Expense added successfully"})
}

// DeleteExpense removes an expense.
// @Summary     Delete an expense
// @Tags        expenses
// @Produce     json
// @Security    CookieAuth
// @Param       id path int true "Expense ID"
// @Success     200 {object} MessageResponse "Expense deleted"
// @Failure     400 {object} ErrorResponse "Invalid expense id"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     404 {object} ErrorResponse "Expense not found"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /expenses/{id} [delete]
func (h *ExpenseHandler) DeleteExpense(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	expenseID, err := parsePathID(c, "id", "expense")
	if err != nil {
		respondWithError(c, err)
		return
	}

	if err := h.expenseService.DeleteExpense(userID, expenseID); err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log(userID, services.AuditActionDelete, services.AuditResourceExpense, expenseID, c.ClientIP(), nil)

	c.JSON(http.StatusOK, MessageResponse{Message: "Expense deleted successfully"})
}

// ExportExpenses downloads the user's expenses as a spreadsheet.
// @Summary     Export expenses
// @Description Download all expenses of the authenticated user as an xlsx workbook
// @Tags        expenses
// @Produce     application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Security    CookieAuth
// @Success     200 {file}   file "Workbook"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /expenses/export [get]
func (h *ExpenseHandler) ExportExpenses(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	data, err := h.expenseService.ExportExpenses(userID)
	if err != nil {
		respondWithError(c, err)
		return
	}

	filename := "expenses-" + time.Now().Format("2006-01-02") + ".xlsx"
	c.Header("Content-Disposition", `attachment; filename="`+filename+`"`)
	c.Data(http.StatusOK, xlsxContentType, data)
}
